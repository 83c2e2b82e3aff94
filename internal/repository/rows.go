package repository

import (
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/billboards-service/internal/model"
)

type billboardRow struct {
	ID           int64
	Name         string
	City         string
	District     string
	Municipality string
	Size         string
	Level        string
	MonthlyPrice float64
	Status       string
	Faces        int
	Landmark     string
	ImageURL     string
	GPS          string
	ContractID   *uuid.UUID
	CustomerName *string
	RentStart    *time.Time
	RentEnd      *time.Time
	AdType       string
}

func (r billboardRow) toModel() model.Billboard {
	b := model.Billboard{
		ID:           r.ID,
		Name:         r.Name,
		City:         r.City,
		District:     r.District,
		Municipality: r.Municipality,
		Size:         r.Size,
		Level:        r.Level,
		MonthlyPrice: r.MonthlyPrice,
		Status:       model.BillboardStatus(r.Status),
		Faces:        r.Faces,
		Landmark:     r.Landmark,
		ImageURL:     r.ImageURL,
		GPS:          r.GPS,
		ContractID:   r.ContractID,
		RentStart:    derefTime(r.RentStart),
		RentEnd:      derefTime(r.RentEnd),
		AdType:       r.AdType,
	}
	if r.CustomerName != nil {
		b.CustomerName = *r.CustomerName
	}
	if b.Status == "" {
		b.Status = model.BillboardStatusAvailable
	}
	if b.Faces == 0 {
		b.Faces = 1
	}
	return b
}

type contractRow struct {
	ID             uuid.UUID
	ContractNumber int64
	CustomerID     *uuid.UUID
	CustomerName   string
	AdType         string
	StartDate      *time.Time
	EndDate        *time.Time
	RentCost       float64
	Discount       float64
	TotalPaid      float64
	CreatedAt      time.Time
}

func (r contractRow) toModel() model.Contract {
	return model.Contract{
		ID:           r.ID,
		Number:       r.ContractNumber,
		CustomerID:   r.CustomerID,
		CustomerName: r.CustomerName,
		AdType:       r.AdType,
		StartDate:    derefTime(r.StartDate),
		EndDate:      derefTime(r.EndDate),
		RentCost:     r.RentCost,
		Discount:     r.Discount,
		TotalPaid:    r.TotalPaid,
		CreatedAt:    r.CreatedAt,
	}
}

type installmentRow struct {
	ContractID  uuid.UUID
	Position    int
	Amount      float64
	Months      int
	PaymentType string
}

func (r installmentRow) toModel() model.Installment {
	return model.Installment{
		Amount:      r.Amount,
		Months:      r.Months,
		PaymentType: model.PaymentType(r.PaymentType),
	}
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullableDate keeps zero dates out of DATE columns.
func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
