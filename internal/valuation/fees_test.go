package valuation

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEBayFees(t *testing.T) {
	got, err := EBayFees(20.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(got, 20.0*0.1325+0.30) {
		t.Fatalf("unexpected fee %v", got)
	}
}

func TestAmazonFees(t *testing.T) {
	got, err := AmazonFees(10.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(got, 10.0*0.15+1.80) {
		t.Fatalf("unexpected fee %v", got)
	}
}

func TestBuybackFeesZero(t *testing.T) {
	got, err := BuybackFees(12.50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Fatalf("buyback fee should be zero, got %v", got)
	}
}

func TestFeesNegativeGross(t *testing.T) {
	for name, fn := range map[string]func(float64) (float64, error){
		"ebay":    EBayFees,
		"amazon":  AmazonFees,
		"buyback": BuybackFees,
	} {
		if _, err := fn(-1); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestFeesMonotonic(t *testing.T) {
	// Net proceeds must never drop as gross rises.
	prev := math.Inf(-1)
	for gross := 0.0; gross <= 100.0; gross += 0.5 {
		fee, err := EBayFees(gross)
		if err != nil {
			t.Fatalf("unexpected error at %v: %v", gross, err)
		}
		net := gross - fee
		if net < prev {
			t.Fatalf("net decreased at gross=%v: %v < %v", gross, net, prev)
		}
		prev = net
	}
}
