package service

import (
	"context"

	"github.com/google/uuid"

	"reservation-backend/internal/domains/notification/model"
)

// ================================================
// SINK (request path)
// ================================================

// Sink is the fire-and-forget side channel used by settlement, refund and reservation flows.
// Methods never return an error: failures are logged and counted, never propagated.
type Sink interface {
	NotifyPaymentCompleted(ctx context.Context, event model.ReservationEvent)
	NotifyReservationCancelled(ctx context.Context, event model.ReservationEvent)
	NotifyNewReservation(ctx context.Context, event model.ReservationEvent)
}

// ================================================
// DELIVERY (worker)
// ================================================

type DeliveryService interface {
	// Deliver resolves the admin roster, persists one notification per admin
	// and publishes the matching broker event.
	Deliver(ctx context.Context, t model.Type, event model.ReservationEvent) (int, error)
}

// Roster resolves the admins to notify.
type Roster interface {
	AdminIDs(ctx context.Context) ([]uuid.UUID, error)
}
