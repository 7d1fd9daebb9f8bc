package model

import (
	"time"

	notifModel "reservation-backend/internal/domains/notification/model"
	"reservation-backend/internal/shared"
)

// Event builds the admin notification payload.
// product and customer may be nil; placeholders are used then.
func (r *Reservation) Event(product *Product, customer *shared.UserBasicInfo) notifModel.ReservationEvent {
	event := notifModel.ReservationEvent{
		ReservationID:   r.ID,
		ProductID:       r.ProductID,
		ProductName:     DefaultProductName,
		CustomerName:    DefaultCustomerName,
		TotalAmount:     r.TotalAmount,
		ReservationDate: r.ReservationDate,
		Participants:    r.Participants,
		Status:          string(r.Status),
		OccurredAt:      time.Now().UTC(),
	}
	if product != nil && product.Title != "" {
		event.ProductName = product.Title
	}
	if customer != nil {
		event.CustomerEmail = customer.Email
		switch {
		case customer.FullName != "":
			event.CustomerName = customer.FullName
		case customer.Email != "":
			event.CustomerName = customer.Email
		}
	}
	return event
}
