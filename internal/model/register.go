package model

import "time"

// ContractRegister is the data behind the contracts workbook export.
type ContractRegister struct {
	GeneratedAt time.Time
	Rows        []RegisterRow
}

type RegisterRow struct {
	Contract   Contract
	Status     string
	DaysLeft   int
	Schedule   []ScheduledPayment
	BoardCount int
}

type ScheduledPayment struct {
	Index       int
	Amount      float64
	PaymentType PaymentType
	DueDate     time.Time
}

// ContractDocument is everything the PDF renderer needs for one contract.
type ContractDocument struct {
	Contract     Contract
	CompanyName  string
	Customer     *Customer
	IssuedAt     time.Time
	BaseTotal    float64
	DurationText string
	Schedule     []ScheduledPayment
}
