package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"reservation-backend/internal/domains/notification/model"
	"reservation-backend/internal/domains/notification/repository"
	"reservation-backend/internal/infrastructure/broker"
	"reservation-backend/internal/shared"
)

// ================================================
// DELIVERY SERVICE IMPLEMENTATION
// ================================================

type deliveryService struct {
	notifRepo repository.NotificationRepository
	roster    Roster
	publisher broker.Publisher
}

func NewDeliveryService(
	notifRepo repository.NotificationRepository,
	roster Roster,
	publisher broker.Publisher,
) DeliveryService {
	return &deliveryService{
		notifRepo: notifRepo,
		roster:    roster,
		publisher: publisher,
	}
}

func (s *deliveryService) Deliver(ctx context.Context, t model.Type, event model.ReservationEvent) (int, error) {
	// 1. ROSTER
	admins, err := s.roster.AdminIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolve admin roster: %w", err)
	}
	if len(admins) == 0 {
		return 0, model.ErrNoAdmins
	}

	// 2. PERSIST
	notifications := model.BuildForRecipients(t, event, admins)
	written, err := s.notifRepo.BulkCreate(ctx, notifications)
	if err != nil {
		return written, fmt.Errorf("persist notifications: %w", err)
	}

	log.Info().
		Str("type", string(t)).
		Str("reservation_id", event.ReservationID.String()).
		Int("recipients", written).
		Msg("[DeliveryService] admin notifications created")

	// 3. BROKER (best effort, the in-app rows are already durable)
	s.publish(ctx, t, event)

	return written, nil
}

func (s *deliveryService) publish(ctx context.Context, t model.Type, event model.ReservationEvent) {
	var keys []string
	switch t {
	case model.TypePaymentCompleted:
		keys = []string{shared.EventReservationConfirmed}
	case model.TypeCancellation:
		keys = []string{shared.EventReservationCancelled}
		if event.RefundAmount > 0 {
			keys = append(keys, shared.EventPaymentRefunded)
		}
	}

	for _, key := range keys {
		if err := s.publisher.Publish(ctx, key, event); err != nil {
			log.Warn().
				Err(err).
				Str("routing_key", key).
				Str("reservation_id", event.ReservationID.String()).
				Msg("[DeliveryService] broker publish failed")
		}
	}
}
