package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"reservation-backend/internal/domains/notification/model"
	"reservation-backend/internal/domains/notification/service"
	"reservation-backend/internal/shared"
	"reservation-backend/internal/shared/utils"
	"reservation-backend/pkg/logger"
)

// ================================================
// ADMIN NOTIFICATION JOB HANDLER
// ================================================

// AdminNotificationHandler serves all three notification task types.
type AdminNotificationHandler struct {
	delivery service.DeliveryService
}

func NewAdminNotificationHandler(delivery service.DeliveryService) *AdminNotificationHandler {
	return &AdminNotificationHandler{delivery: delivery}
}

var taskTypes = map[string]model.Type{
	shared.TypeNotifyPaymentCompleted:     model.TypePaymentCompleted,
	shared.TypeNotifyReservationCancelled: model.TypeCancellation,
	shared.TypeNotifyNewReservation:       model.TypeNewReservation,
}

// TaskTypes lists the asynq task types this handler is registered for.
func TaskTypes() []string {
	return []string{
		shared.TypeNotifyPaymentCompleted,
		shared.TypeNotifyReservationCancelled,
		shared.TypeNotifyNewReservation,
	}
}

// ProcessTask flow:
// 1. Decode payload (malformed -> SkipRetry)
// 2. Deliver to every active admin
// 3. No admins -> SkipRetry, store errors -> retry with asynq backoff
func (h *AdminNotificationHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	notifType, ok := taskTypes[t.Type()]
	if !ok {
		return fmt.Errorf("%w: %s: %w", model.ErrUnknownTask, t.Type(), asynq.SkipRetry)
	}

	var event model.ReservationEvent
	if err := utils.UnmarshalTask(t, &event); err != nil {
		logger.Error("Invalid notification payload", err)
		return err
	}

	written, err := h.delivery.Deliver(ctx, notifType, event)
	if err != nil {
		if errors.Is(err, model.ErrNoAdmins) {
			logger.Warn("No admin to notify", map[string]interface{}{
				"type":           string(notifType),
				"reservation_id": event.ReservationID.String(),
			})
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("deliver %s: %w", notifType, err)
	}

	logger.Info("Admin notification delivered", map[string]interface{}{
		"type":           string(notifType),
		"reservation_id": event.ReservationID.String(),
		"recipients":     written,
	})
	return nil
}
