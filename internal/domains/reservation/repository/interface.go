package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"reservation-backend/internal/domains/reservation/model"
)

// Repository is the reservation side of the store.
// Status writes only run inside a caller-owned transaction.
type Repository interface {
	Create(ctx context.Context, r *model.Reservation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	FindProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// FindByIDWithTx locks the row until tx ends
	FindByIDWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Reservation, error)

	// ConfirmWithTx moves pending -> confirmed. Already confirmed rows are returned unchanged.
	ConfirmWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Reservation, error)

	// ApproveWithTx is the admin confirm: pending -> confirmed, only when a completed payment exists
	ApproveWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Reservation, error)

	// TransitionWithTx applies a legal transition to `to` (see model.SourcesFor)
	TransitionWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, to model.Status, reason *string) (*model.Reservation, error)
}
