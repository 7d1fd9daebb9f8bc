package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"reservation-backend/internal/domains/notification/model"
)

type notificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{db: db}
}

// BulkCreate queues every insert into one pgx batch
func (r *notificationRepository) BulkCreate(ctx context.Context, notifications []model.Notification) (int, error) {
	if len(notifications) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO notifications (
			id, recipient_id, type, title, message, data, is_read
		) VALUES ($1, $2, $3, $4, $5, $6, FALSE)
	`

	batch := &pgx.Batch{}
	for _, n := range notifications {
		batch.Queue(query, n.ID, n.RecipientID, string(n.Type), n.Title, n.Message, n.Data)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	written := 0
	for range notifications {
		tag, err := results.Exec()
		if err != nil {
			return written, fmt.Errorf("bulk create notifications: %w", err)
		}
		written += int(tag.RowsAffected())
	}

	return written, nil
}
