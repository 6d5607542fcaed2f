package kafka

import (
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

func TestEncodeValue(t *testing.T) {
	if b, err := encodeValue([]byte("raw")); err != nil || string(b) != "raw" {
		t.Fatalf("bytes should pass through, got %q err=%v", b, err)
	}
	if b, err := encodeValue("text"); err != nil || string(b) != "text" {
		t.Fatalf("strings should pass through, got %q err=%v", b, err)
	}
	b, err := encodeValue(map[string]string{"isbn": "9780000000001"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(b) != `{"isbn":"9780000000001"}` {
		t.Fatalf("unexpected json %q", b)
	}
}

func TestParseCompressionDefaultsToGzip(t *testing.T) {
	if got := parseCompression("bogus"); got != kafka.Gzip {
		t.Fatalf("unknown codec should fall back to gzip, got %v", got)
	}
	if got := parseCompression("zstd"); got != kafka.Zstd {
		t.Fatalf("zstd not recognized, got %v", got)
	}
}

func TestJitteredBackoffStaysBounded(t *testing.T) {
	min, max := 50*time.Millisecond, 2*time.Second
	for attempt := 1; attempt <= 10; attempt++ {
		d := jitteredBackoff(min, max, attempt)
		if d <= 0 || d > max {
			t.Fatalf("attempt %d produced %v outside (0, %v]", attempt, d, max)
		}
	}
}
