package model

import (
	"time"

	"github.com/google/uuid"

	reservationModel "reservation-backend/internal/domains/reservation/model"
	"reservation-backend/internal/shared"
)

// =====================================================
// PAYMENT ENTITY
// =====================================================

// Payment is one provider transaction recorded against a reservation.
// TransactionID is the provider payment id and is unique.
type Payment struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	ReservationID   uuid.UUID  `json:"reservation_id" db:"reservation_id"`
	Amount          int64      `json:"amount" db:"amount"`
	Currency        string     `json:"currency" db:"currency"`
	PaymentMethod   string     `json:"payment_method" db:"payment_method"`
	PaymentProvider string     `json:"payment_provider" db:"payment_provider"`
	TransactionID   string     `json:"transaction_id" db:"transaction_id"`
	Status          Status     `json:"status" db:"status"`
	PaidAt          *time.Time `json:"paid_at,omitempty" db:"paid_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

func (p *Payment) Summary() reservationModel.PaymentSummary {
	return reservationModel.PaymentSummary{
		ID:            p.ID,
		Amount:        p.Amount,
		PaymentMethod: p.PaymentMethod,
		TransactionID: p.TransactionID,
		Status:        string(p.Status),
		PaidAt:        p.PaidAt,
	}
}

// SettledReservation is the reservation echoed back by a settlement,
// with the product and the resolved customer identity attached.
type SettledReservation struct {
	reservationModel.Reservation
	Product *reservationModel.Product `json:"product,omitempty"`
	User    *shared.UserBasicInfo     `json:"user"`
}
