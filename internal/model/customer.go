package model

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID        uuid.UUID
	Name      string
	Phone     string
	Company   string
	CreatedAt time.Time
}

type Municipality struct {
	ID   uuid.UUID
	Name string
	Code string
}
