package quotation

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the goods-and-services tax applied to the subtotal
const DefaultTaxRate = 0.18

// Totals are derived on demand and never stored
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
	TaxRate  float64 `json:"tax_rate"`
}

// ComputeTotals sums amounts in sequence order and applies taxRate to the
// subtotal. Full float precision is kept; round only for display.
func ComputeTotals(items []LineItem, taxRate float64) Totals {
	var subtotal float64
	for _, it := range items {
		subtotal += it.Amount
	}
	tax := subtotal * taxRate
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
		TaxRate:  taxRate,
	}
}

// FormatMoney renders v with exactly two decimals, e.g. 295.00
func FormatMoney(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// FormatPercent renders a rate like 0.18 as 18
func FormatPercent(rate float64) string {
	return decimal.NewFromFloat(rate).Shift(2).String()
}
