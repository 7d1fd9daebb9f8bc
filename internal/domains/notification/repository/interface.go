package repository

import (
	"context"

	"reservation-backend/internal/domains/notification/model"
)

type NotificationRepository interface {
	// BulkCreate inserts all rows in one batch.
	// Returns the number of rows written.
	BulkCreate(ctx context.Context, notifications []model.Notification) (int, error)
}
