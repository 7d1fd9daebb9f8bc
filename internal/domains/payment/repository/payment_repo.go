package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"reservation-backend/internal/domains/payment/model"
	reservationModel "reservation-backend/internal/domains/reservation/model"
	"reservation-backend/internal/infrastructure/database"
)

const transactionIDConstraint = "payments_transaction_id_key"

// =====================================================
// PAYMENT REPOSITORY IMPLEMENTATION
// =====================================================
type paymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) Repository {
	return &paymentRepository{pool: pool}
}

const paymentColumns = `
	id, reservation_id, amount, currency, payment_method, payment_provider,
	transaction_id, status, paid_at, created_at, updated_at`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(
		&p.ID,
		&p.ReservationID,
		&p.Amount,
		&p.Currency,
		&p.PaymentMethod,
		&p.PaymentProvider,
		&p.TransactionID,
		&p.Status,
		&p.PaidAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

// =====================================================
// TRANSACTION-AWARE METHODS
// =====================================================

func (r *paymentRepository) FindByTransactionIDWithTx(ctx context.Context, tx pgx.Tx, transactionID string) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_id = $1 FOR UPDATE`

	p, err := scanPayment(tx.QueryRow(ctx, query, transactionID))
	if err != nil && !errors.Is(err, model.ErrPaymentNotFound) {
		return nil, fmt.Errorf("failed to lock payment: %w", err)
	}
	return p, err
}

func (r *paymentRepository) InsertWithTx(ctx context.Context, tx pgx.Tx, p *model.Payment) error {
	query := `
		INSERT INTO payments (
			reservation_id, amount, currency, payment_method, payment_provider,
			transaction_id, status, paid_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		p.ReservationID,
		p.Amount,
		p.Currency,
		p.PaymentMethod,
		p.PaymentProvider,
		p.TransactionID,
		p.Status,
		p.PaidAt,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	switch {
	case err == nil:
		return nil
	case database.IsUniqueViolation(err, transactionIDConstraint):
		return model.ErrDuplicateTransaction
	case database.IsForeignKeyViolation(err):
		return model.ErrReservationNotFound
	default:
		return fmt.Errorf("failed to insert payment: %w", err)
	}
}

func (r *paymentRepository) CompleteWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, method string, paidAt time.Time) (*model.Payment, error) {
	query := `
		UPDATE payments
		SET status = 'completed',
			payment_method = $2,
			paid_at = $3,
			updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'failed')
		RETURNING ` + paymentColumns

	p, err := scanPayment(tx.QueryRow(ctx, query, id, method, paidAt))
	if err != nil && !errors.Is(err, model.ErrPaymentNotFound) {
		return nil, fmt.Errorf("failed to complete payment: %w", err)
	}
	return p, err
}

func (r *paymentRepository) UpdateStatusWithTx(ctx context.Context, tx pgx.Tx, transactionID string, status model.Status) (*model.Payment, error) {
	query := `
		UPDATE payments
		SET status = $2, updated_at = NOW()
		WHERE transaction_id = $1
		RETURNING ` + paymentColumns

	p, err := scanPayment(tx.QueryRow(ctx, query, transactionID, status))
	if err != nil && !errors.Is(err, model.ErrPaymentNotFound) {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	return p, err
}

// =====================================================
// STANDALONE METHODS
// =====================================================

func (r *paymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_id = $1`

	p, err := scanPayment(r.pool.QueryRow(ctx, query, transactionID))
	if err != nil && !errors.Is(err, model.ErrPaymentNotFound) {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, err
}

func (r *paymentRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE payments
		SET status = 'failed', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrPaymentNotFound
	}
	return nil
}

func (r *paymentRepository) ListPendingVirtualAccounts(ctx context.Context, olderThan time.Duration, limit int) ([]model.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE status = 'pending'
		  AND payment_method = 'virtual_account'
		  AND created_at < $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, time.Now().Add(-olderThan), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending virtual accounts: %w", err)
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

func (r *paymentRepository) ListSummariesByReservation(ctx context.Context, reservationID uuid.UUID) ([]reservationModel.PaymentSummary, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE reservation_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, reservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	summaries := make([]reservationModel.PaymentSummary, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		summaries = append(summaries, p.Summary())
	}
	return summaries, rows.Err()
}
