// Package pricing computes order line and order level amounts. All amounts
// are fixed point decimals rounded to two places.
package pricing

import (
	"github.com/Hyunju-it/goorm-travel-shopping/internal/model"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits kept on every amount.
const Scale = 2

// LineAmount holds the undiscounted and discounted amounts of one line.
type LineAmount struct {
	Total decimal.Decimal
	Final decimal.Decimal
}

// Round normalises an amount to Scale digits.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// EffectivePrice returns the price a product is sold at.
func EffectivePrice(p *model.Product) decimal.Decimal {
	return Round(p.EffectivePrice())
}

// Line computes base × quantity and effective × quantity.
func Line(base, effective decimal.Decimal, quantity int) LineAmount {
	q := decimal.NewFromInt(int64(quantity))
	return LineAmount{
		Total: Round(base.Mul(q)),
		Final: Round(effective.Mul(q)),
	}
}

// Totals accumulates order level amounts. The zero value is ready to use.
type Totals struct {
	total decimal.Decimal
	final decimal.Decimal
}

// Add includes a line in the totals.
func (t *Totals) Add(l LineAmount) {
	t.total = t.total.Add(l.Total)
	t.final = t.final.Add(l.Final)
}

// TotalAmount is the sum of undiscounted line totals.
func (t *Totals) TotalAmount() decimal.Decimal {
	return Round(t.total)
}

// FinalAmount is the sum of discounted line totals.
func (t *Totals) FinalAmount() decimal.Decimal {
	return Round(t.final)
}

// DiscountAmount is TotalAmount minus FinalAmount.
func (t *Totals) DiscountAmount() decimal.Decimal {
	return Round(t.total.Sub(t.final))
}
