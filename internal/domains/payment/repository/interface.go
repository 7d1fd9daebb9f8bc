package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"reservation-backend/internal/domains/payment/model"
	reservationModel "reservation-backend/internal/domains/reservation/model"
)

// =====================================================
// PAYMENT REPOSITORY INTERFACE
// =====================================================

// Repository is the only writer of payment rows.
type Repository interface {
	// ============================================
	// TRANSACTION-AWARE METHODS
	// ============================================

	// FindByTransactionIDWithTx locks the row until tx ends
	FindByTransactionIDWithTx(ctx context.Context, tx pgx.Tx, transactionID string) (*model.Payment, error)

	// InsertWithTx inserts p and fills ID and timestamps.
	// Returns model.ErrDuplicateTransaction when the transaction id is taken
	// and model.ErrReservationNotFound when the reservation does not exist.
	InsertWithTx(ctx context.Context, tx pgx.Tx, p *model.Payment) error

	// CompleteWithTx turns a pending (or earlier failed) row into a completed one
	CompleteWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, method string, paidAt time.Time) (*model.Payment, error)

	// UpdateStatusWithTx sets the status of the row with this transaction id
	UpdateStatusWithTx(ctx context.Context, tx pgx.Tx, transactionID string, status model.Status) (*model.Payment, error)

	// ============================================
	// STANDALONE METHODS
	// ============================================

	FindByTransactionID(ctx context.Context, transactionID string) (*model.Payment, error)

	// MarkFailed moves a pending row to failed
	MarkFailed(ctx context.Context, id uuid.UUID) error

	// ListPendingVirtualAccounts returns pending virtual account rows created before now-olderThan, oldest first
	ListPendingVirtualAccounts(ctx context.Context, olderThan time.Duration, limit int) ([]model.Payment, error)

	// ListSummariesByReservation returns a reservation's payments, newest first
	ListSummariesByReservation(ctx context.Context, reservationID uuid.UUID) ([]reservationModel.PaymentSummary, error)
}
