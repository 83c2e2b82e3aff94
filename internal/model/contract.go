package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentType string

const (
	PaymentMonthly   PaymentType = "monthly"
	PaymentBimonthly PaymentType = "bimonthly"
	PaymentQuarterly PaymentType = "quarterly"
)

// Installment is one row of a contract payment plan. Months is the offset
// used for the due date of the row.
type Installment struct {
	Amount      float64
	Months      int
	PaymentType PaymentType
}

type Contract struct {
	ID           uuid.UUID
	Number       int64
	CustomerID   *uuid.UUID
	CustomerName string
	AdType       string
	StartDate    time.Time
	EndDate      time.Time
	RentCost     float64 // final total after discount
	Discount     float64
	TotalPaid    float64
	Installments []Installment
	Billboards   []Billboard
	CreatedAt    time.Time
}

func (c Contract) Remaining() float64 {
	if c.TotalPaid >= c.RentCost {
		return 0
	}
	return c.RentCost - c.TotalPaid
}

type ContractStats struct {
	Total    int
	Active   int
	Expiring int
	Expired  int
	Upcoming int
}
