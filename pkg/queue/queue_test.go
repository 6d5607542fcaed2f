package queue

import (
	"encoding/json"
	"testing"
)

type refreshStub struct {
	ISBN     string `json:"isbn"`
	Category string `json:"category"`
}

func TestParsePayloadStruct(t *testing.T) {
	in := refreshStub{ISBN: "9780000000001", Category: "market"}
	got, err := ParsePayload[refreshStub](in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ISBN != in.ISBN {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestParsePayloadRawJSON(t *testing.T) {
	raw := json.RawMessage(`{"isbn":"9780000000002","category":"metadata"}`)
	got, err := ParsePayload[refreshStub](raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Category != "metadata" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestParsePayloadMap(t *testing.T) {
	m := map[string]interface{}{"isbn": "9780000000003", "category": "vendor_offers"}
	got, err := ParsePayload[refreshStub](m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ISBN != "9780000000003" || got.Category != "vendor_offers" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestParsePayloadRejectsUnknownType(t *testing.T) {
	if _, err := ParsePayload[refreshStub](42); err == nil {
		t.Fatalf("expected error for int payload")
	}
}
