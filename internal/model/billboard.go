package model

import (
	"time"

	"github.com/google/uuid"
)

type BillboardStatus string

const (
	BillboardStatusAvailable   BillboardStatus = "available"
	BillboardStatusRented      BillboardStatus = "rented"
	BillboardStatusMaintenance BillboardStatus = "maintenance"
)

type Billboard struct {
	ID           int64
	Name         string
	City         string
	District     string
	Municipality string
	Size         string
	Level        string
	MonthlyPrice float64
	Status       BillboardStatus
	Faces        int
	Landmark     string
	ImageURL     string
	GPS          string
	ContractID   *uuid.UUID
	CustomerName string
	RentStart    time.Time
	RentEnd      time.Time
	AdType       string // ad type of the linked contract
}

func (b Billboard) HasContract() bool {
	return b.ContractID != nil && *b.ContractID != uuid.Nil
}

func (b Billboard) DisplayName() string {
	if b.Name != "" {
		return b.Name
	}
	return "Billboard #" + formatID(b.ID)
}
