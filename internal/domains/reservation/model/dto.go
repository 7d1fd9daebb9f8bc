package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"reservation-backend/internal/shared"
)

// =====================================================
// CREATE RESERVATION
// =====================================================

type CreateReservationRequest struct {
	ProductID       string    `json:"productId"`
	ReservationDate time.Time `json:"reservationDate"`
	Participants    int       `json:"participants"`
	SpecialRequests string    `json:"specialRequests,omitempty"`
}

func (r CreateReservationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID,
			validation.Required.Error("필수 정보가 누락되었습니다"),
			is.UUID.Error("productId must be a uuid"),
		),
		validation.Field(&r.ReservationDate, validation.Required.Error("필수 정보가 누락되었습니다")),
		validation.Field(&r.Participants,
			validation.Required.Error("필수 정보가 누락되었습니다"),
			validation.Min(1),
		),
		validation.Field(&r.SpecialRequests, validation.Length(0, 1000)),
	)
}

// =====================================================
// ADMIN ACTIONS
// =====================================================

type RejectReservationRequest struct {
	Reason string `json:"reason"`
}

func (r RejectReservationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Reason, validation.Length(0, 500)),
	)
}

// =====================================================
// RESPONSES
// =====================================================

// PaymentSummary is the slice of a payment row shown on a reservation.
type PaymentSummary struct {
	ID            uuid.UUID  `json:"id"`
	Amount        int64      `json:"amount"`
	PaymentMethod string     `json:"payment_method"`
	TransactionID string     `json:"transaction_id"`
	Status        string     `json:"status"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

type ReservationDetailResponse struct {
	Reservation
	Product  *Product              `json:"product,omitempty"`
	Customer *shared.UserBasicInfo `json:"customer,omitempty"`
	Payments []PaymentSummary      `json:"payments"`
}
