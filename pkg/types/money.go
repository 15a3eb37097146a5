package types

import "github.com/shopspring/decimal"

// TaxRate is the fixed sales tax applied to every cart subtotal.
const TaxRate = 0.08

var taxRate = decimal.NewFromFloat(TaxRate)

// Round2 rounds a dollar amount to cents precision.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// LineTotal computes qty * unitPrice at cents precision.
func LineTotal(unitPrice float64, qty int) float64 {
	f, _ := decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(qty))).Round(2).Float64()
	return f
}

// Totals derives subtotal, tax and total from the given lines. Totals are
// always re-derived from lines, never patched incrementally.
func Totals(lines []CartLine) (subtotal, tax, total float64) {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(decimal.NewFromFloat(line.LineTotal))
	}
	sum = sum.Round(2)
	taxD := sum.Mul(taxRate).Round(2)
	subtotal, _ = sum.Float64()
	tax, _ = taxD.Float64()
	total, _ = sum.Add(taxD).Float64()
	return subtotal, tax, total
}

// Cents converts a dollar amount to integer cents.
func Cents(v float64) int {
	return int(decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

// Dollars converts integer cents to a dollar amount.
func Dollars(cents int) float64 {
	f, _ := decimal.NewFromInt(int64(cents)).Div(decimal.NewFromInt(100)).Float64()
	return f
}

// NormalizeLines collapses duplicate itemIds (summing quantities, first
// occurrence wins for metadata) and recomputes every line total. Order of
// first appearance is preserved.
func NormalizeLines(lines []CartLine) []CartLine {
	if len(lines) == 0 {
		return nil
	}
	index := make(map[string]int, len(lines))
	out := make([]CartLine, 0, len(lines))
	for _, line := range lines {
		if at, ok := index[line.ItemID]; ok {
			out[at].Qty += line.Qty
			continue
		}
		index[line.ItemID] = len(out)
		out = append(out, line)
	}
	for i := range out {
		out[i].LineTotal = LineTotal(out[i].UnitPrice, out[i].Qty)
	}
	return out
}
