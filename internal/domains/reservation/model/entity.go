package model

import (
	"time"

	"github.com/google/uuid"
)

// Reservation maps to the reservations table.
// Amounts are whole won.
type Reservation struct {
	ID              uuid.UUID `json:"id"`
	ProductID       uuid.UUID `json:"product_id"`
	UserID          uuid.UUID `json:"user_id"`
	ReservationDate time.Time `json:"reservation_date"`
	Participants    int       `json:"participants"`
	TotalAmount     int64     `json:"total_amount"`
	SpecialRequests *string   `json:"special_requests,omitempty"`
	Status          Status    `json:"status"`
	CancelReason    *string   `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Product is the read side of the catalogue that reservations need.
type Product struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Price           int64     `json:"price"`
	MaxParticipants int       `json:"max_participants"`
	Location        *string   `json:"location,omitempty"`
	IsActive        bool      `json:"is_active"`
}
