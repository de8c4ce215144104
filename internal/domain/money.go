package domain

import "github.com/shopspring/decimal"

// TaxRate is the flat sales tax applied to every order and cart.
var TaxRate = decimal.RequireFromString("0.08")

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals sums the lines and derives tax rounded to cents.
func ComputeTotals(lines []OrderLine) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Amount())
	}
	return TotalsFor(subtotal)
}

func TotalsFor(subtotal decimal.Decimal) Totals {
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(TaxRate).Round(2)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}
