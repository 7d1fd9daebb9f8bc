package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReservationEvent is the task payload for every admin notification.
// Display fields are resolved on the request path; missing values fall back to placeholders.
type ReservationEvent struct {
	ReservationID   uuid.UUID `json:"reservationId"`
	ProductID       uuid.UUID `json:"productId"`
	ProductName     string    `json:"productName"`
	CustomerName    string    `json:"customerName"`
	CustomerEmail   string    `json:"customerEmail"`
	TotalAmount     int64     `json:"amount"`
	ReservationDate time.Time `json:"reservationDate"`
	Participants    int       `json:"participants"`
	Status          string    `json:"status,omitempty"`
	TransactionID   string    `json:"transactionId,omitempty"`
	RefundAmount    int64     `json:"refundAmount,omitempty"`
	Reason          string    `json:"reason,omitempty"`
	OccurredAt      time.Time `json:"occurredAt"`
}

// Data is the JSONB blob stored with each notification.
func (e ReservationEvent) Data() JSONB {
	data := JSONB{
		"reservationId":   e.ReservationID.String(),
		"productId":       e.ProductID.String(),
		"productName":     e.ProductName,
		"customerName":    e.CustomerName,
		"customerEmail":   e.CustomerEmail,
		"amount":          e.TotalAmount,
		"reservationDate": e.ReservationDate,
		"participants":    e.Participants,
	}
	if e.Status != "" {
		data["status"] = e.Status
	}
	if e.TransactionID != "" {
		data["transactionId"] = e.TransactionID
	}
	if e.RefundAmount > 0 {
		data["refundAmount"] = e.RefundAmount
	}
	if e.Reason != "" {
		data["reason"] = e.Reason
	}
	return data
}

// BuildForRecipients renders one notification per admin.
func BuildForRecipients(t Type, e ReservationEvent, recipients []uuid.UUID) []Notification {
	title, message := render(t, e)
	data := e.Data()

	out := make([]Notification, 0, len(recipients))
	for _, id := range recipients {
		out = append(out, Notification{
			ID:          uuid.New(),
			RecipientID: id,
			Type:        t,
			Title:       title,
			Message:     message,
			Data:        data,
		})
	}
	return out
}

func render(t Type, e ReservationEvent) (title, message string) {
	switch t {
	case TypePaymentCompleted:
		return "새로운 예약이 확정되었습니다!",
			fmt.Sprintf("%s님의 \"%s\" 예약이 결제 완료되어 확정되었습니다.", e.CustomerName, e.ProductName)
	case TypeNewReservation:
		return "새로운 예약 요청이 생성되었습니다",
			fmt.Sprintf("%s님이 \"%s\" 예약을 요청했습니다.", e.CustomerName, e.ProductName)
	case TypeCancellation:
		return "예약이 취소되었습니다",
			fmt.Sprintf("%s님의 \"%s\" 예약이 취소되었습니다.", e.CustomerName, e.ProductName)
	default:
		return "시스템 알림", e.Reason
	}
}
