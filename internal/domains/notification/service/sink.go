package service

import (
	"context"
	"time"

	"reservation-backend/internal/domains/notification/model"
	"reservation-backend/internal/infrastructure/metrics"
	"reservation-backend/internal/infrastructure/queue"
	"reservation-backend/internal/shared"
	"reservation-backend/pkg/logger"
)

type queueSink struct {
	enqueuer queue.TaskEnqueuer
	timeout  time.Duration
}

// NewQueueSink hands notifications to the worker through asynq.
// Each enqueue is bounded by timeout and detached from the request's cancellation.
func NewQueueSink(enqueuer queue.TaskEnqueuer, timeout time.Duration) Sink {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &queueSink{enqueuer: enqueuer, timeout: timeout}
}

func (s *queueSink) NotifyPaymentCompleted(ctx context.Context, event model.ReservationEvent) {
	s.enqueue(ctx, shared.TypeNotifyPaymentCompleted, event)
}

func (s *queueSink) NotifyReservationCancelled(ctx context.Context, event model.ReservationEvent) {
	s.enqueue(ctx, shared.TypeNotifyReservationCancelled, event)
}

func (s *queueSink) NotifyNewReservation(ctx context.Context, event model.ReservationEvent) {
	s.enqueue(ctx, shared.TypeNotifyNewReservation, event)
}

func (s *queueSink) enqueue(ctx context.Context, taskType string, event model.ReservationEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	// A client disconnect must not drop the notification of a settlement that already committed
	enqueueCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if err := s.enqueuer.Enqueue(enqueueCtx, taskType, event, queue.NotificationOptions(shared.QueueNotification)...); err != nil {
		metrics.ObserveNotification(taskType, "failed")
		logger.ErrorWithFields("Failed to enqueue admin notification", err, map[string]interface{}{
			"task_type":      taskType,
			"reservation_id": event.ReservationID.String(),
		})
		return
	}

	metrics.ObserveNotification(taskType, "enqueued")
}
