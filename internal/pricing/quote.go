package pricing

import (
	"errors"
	"math"

	"github.com/nurpe/billboards-service/internal/model"
)

type Quote struct {
	BillboardID int64
	Months      int
	Price       float64
	Fallback    bool // monthly price × months, no rate bracket matched
}

// PriceFor prices one board, falling back to its monthly price when the
// table has no bracket for it.
func (t *Table) PriceFor(b model.Billboard, tier Tier, months int) Quote {
	q := Quote{BillboardID: b.ID, Months: months}
	price, err := t.Resolve(b.Size, b.Level, tier, months)
	if errors.Is(err, ErrNoRateMatch) {
		q.Fallback = true
		if months > 0 {
			q.Price = b.MonthlyPrice * float64(months)
		}
		return q
	}
	q.Price = price
	return q
}

func (t *Table) Estimate(boards []model.Billboard, tier Tier, months int) (float64, []Quote) {
	quotes := make([]Quote, 0, len(boards))
	total := 0.0
	for _, b := range boards {
		q := t.PriceFor(b, tier, months)
		quotes = append(quotes, q)
		total += q.Price
	}
	return total, quotes
}

type DiscountKind string

const (
	DiscountPercent DiscountKind = "percent"
	DiscountAmount  DiscountKind = "amount"
)

type Discount struct {
	Kind  DiscountKind
	Value float64
}

// ApplyDiscount returns the discount amount and the final total. Percent
// discounts are clamped to [0,100]; the final total never drops below zero.
func ApplyDiscount(base float64, d Discount) (float64, float64) {
	amount := 0.0
	if d.Value != 0 {
		switch d.Kind {
		case DiscountAmount:
			amount = math.Max(0, d.Value)
		default:
			amount = base * math.Max(0, math.Min(100, d.Value)) / 100
		}
	}
	return amount, math.Max(0, base-amount)
}
