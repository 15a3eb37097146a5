package types

import (
	"math"
	"testing"
)

func TestTotalsAppliesTaxRate(t *testing.T) {
	t.Parallel()

	lines := []CartLine{
		{ItemID: "soda", UnitPrice: 2.50, Qty: 2, LineTotal: 5.00},
		{ItemID: "salad", UnitPrice: 9.99, Qty: 1, LineTotal: 9.99},
	}

	subtotal, tax, total := Totals(lines)
	if subtotal != 14.99 {
		t.Fatalf("unexpected subtotal: %v", subtotal)
	}
	if tax != 1.20 {
		t.Fatalf("unexpected tax: %v", tax)
	}
	if math.Abs(total-16.19) > 1e-9 {
		t.Fatalf("unexpected total: %v", total)
	}
}

func TestTotalsEmpty(t *testing.T) {
	t.Parallel()

	subtotal, tax, total := Totals(nil)
	if subtotal != 0 || tax != 0 || total != 0 {
		t.Fatalf("expected zero totals, got %v %v %v", subtotal, tax, total)
	}
}

func TestLineTotalCentsPrecision(t *testing.T) {
	t.Parallel()

	// 3 * 0.1 must not drift above 0.30.
	if got := LineTotal(0.1, 3); got != 0.30 {
		t.Fatalf("unexpected line total: %v", got)
	}
}

func TestNormalizeLinesCollapsesDuplicates(t *testing.T) {
	t.Parallel()

	lines := []CartLine{
		{ItemID: "soda", Name: "Soda", UnitPrice: 2.50, Qty: 1},
		{ItemID: "salad", Name: "Salad", UnitPrice: 8.00, Qty: 2},
		{ItemID: "soda", Name: "Soda", UnitPrice: 2.50, Qty: 1},
	}

	out := NormalizeLines(lines)
	if len(out) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(out))
	}
	if out[0].ItemID != "soda" || out[0].Qty != 2 {
		t.Fatalf("expected soda qty 2 first, got %+v", out[0])
	}
	if out[0].LineTotal != 5.00 {
		t.Fatalf("expected recomputed line total, got %v", out[0].LineTotal)
	}
}

func TestCombineReports(t *testing.T) {
	t.Parallel()

	a := &ConflictReport{Dropped: []ConflictEntry{{ItemID: "salad"}}}
	b := &ConflictReport{Merged: []ConflictEntry{{ItemID: "soda"}}}

	out := CombineReports(a, b)
	if out.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", out.Len())
	}
	if CombineReports(nil, nil) != nil {
		t.Fatal("combining empty reports should yield nil")
	}
	if (&ConflictReport{}).IsEmpty() != true {
		t.Fatal("empty report should report empty")
	}
}

func TestCentsRoundTrip(t *testing.T) {
	t.Parallel()

	if got := Cents(9.99); got != 999 {
		t.Fatalf("unexpected cents: %d", got)
	}
	if got := Dollars(999); got != 9.99 {
		t.Fatalf("unexpected dollars: %v", got)
	}
}
