package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const missingFields = "필수 정보가 누락되었습니다."

// =====================================================
// SETTLEMENT
// =====================================================

type SettleOrder struct {
	Amount int64  `json:"amount"`
	Name   string `json:"name,omitempty"`
}

// SettlePaymentRequest is posted by the client after the provider checkout finishes.
type SettlePaymentRequest struct {
	PaymentID     string      `json:"paymentId"`
	ReservationID string      `json:"reservationId"`
	Order         SettleOrder `json:"order"`
}

func (r SettlePaymentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PaymentID, validation.Required.Error(missingFields), validation.Length(1, 200)),
		validation.Field(&r.ReservationID, validation.Required.Error(missingFields), is.UUID),
		validation.Field(&r.Order),
	)
}

func (o SettleOrder) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Amount, validation.Required.Error(missingFields), validation.Min(int64(1))),
	)
}

// SettleResult is written to the client as is.
// Paid settlements carry Reservation; virtual account issuance carries Status instead.
type SettleResult struct {
	Success     bool                `json:"success"`
	Status      string              `json:"status,omitempty"`
	Reservation *SettledReservation `json:"reservation,omitempty"`
	Payment     *Payment            `json:"payment"`
	Message     string              `json:"message,omitempty"`
	Replayed    bool                `json:"replayed,omitempty"`
}

// =====================================================
// REFUND
// =====================================================

type RefundPaymentRequest struct {
	TransactionID string `json:"-"`
	Amount        int64  `json:"amount"`
	Reason        string `json:"reason"`
}

func (r RefundPaymentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TransactionID, validation.Required.Error(missingFields)),
		validation.Field(&r.Amount, validation.Required.Error(missingFields), validation.Min(int64(1))),
		validation.Field(&r.Reason, validation.Length(0, 200)),
	)
}

// RefundData is the provider's post-cancel state plus what happened locally.
type RefundData struct {
	TransactionID        string     `json:"transaction_id"`
	RefundedAmount       int64      `json:"refunded_amount"`
	PaidAmount           int64      `json:"paid_amount"`
	CancellationID       string     `json:"cancellation_id,omitempty"`
	CancellationStatus   string     `json:"cancellation_status,omitempty"`
	CancelledAt          *time.Time `json:"cancelled_at,omitempty"`
	PaymentStatus        Status     `json:"payment_status"`
	ReservationCancelled bool       `json:"reservation_cancelled"`

	// Warning is set when the provider refund succeeded but the local update did not.
	Warning string `json:"warning,omitempty"`
}

type RefundResult struct {
	Data    *RefundData
	Message string
}
