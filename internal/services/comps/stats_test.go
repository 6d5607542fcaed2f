package comps

import "testing"

func TestMedianOdd(t *testing.T) {
	if got := Median([]float64{30, 10, 20}); got != 20 {
		t.Fatalf("unexpected median %v", got)
	}
}

func TestMedianEven(t *testing.T) {
	if got := Median([]float64{10, 20, 30, 40}); got != 25 {
		t.Fatalf("unexpected median %v", got)
	}
}

func TestMedianEmpty(t *testing.T) {
	if got := Median(nil); got != 0 {
		t.Fatalf("unexpected median %v", got)
	}
}

func TestMedianDoesNotMutateInput(t *testing.T) {
	in := []float64{3, 1, 2}
	_ = Median(in)
	if in[0] != 3 || in[1] != 1 || in[2] != 2 {
		t.Fatalf("input mutated: %v", in)
	}
}

func TestSellThroughRate(t *testing.T) {
	if got := SellThroughRate(3, 1); got != 0.75 {
		t.Fatalf("unexpected rate %v", got)
	}
	if got := SellThroughRate(0, 0); got != 0 {
		t.Fatalf("unexpected rate %v", got)
	}
}

func TestTotalComps(t *testing.T) {
	if got := TotalComps(3, 4); got != 7 {
		t.Fatalf("unexpected total %v", got)
	}
}
