package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"reservation-backend/internal/domains/reservation/model"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const reservationColumns = `
	id, product_id, user_id, reservation_date, participants, total_amount,
	special_requests, status, cancel_reason, created_at, updated_at`

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var r model.Reservation
	err := row.Scan(
		&r.ID,
		&r.ProductID,
		&r.UserID,
		&r.ReservationDate,
		&r.Participants,
		&r.TotalAmount,
		&r.SpecialRequests,
		&r.Status,
		&r.CancelReason,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// =====================================================
// CREATE / READ
// =====================================================

func (r *postgresRepository) Create(ctx context.Context, res *model.Reservation) error {
	query := `
		INSERT INTO reservations (
			product_id, user_id, reservation_date, participants,
			total_amount, special_requests, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		res.ProductID,
		res.UserID,
		res.ReservationDate,
		res.Participants,
		res.TotalAmount,
		res.SpecialRequests,
		res.Status,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}

	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	return r.findByID(ctx, r.pool, id, false)
}

func (r *postgresRepository) FindByIDWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Reservation, error) {
	return r.findByID(ctx, tx, id, true)
}

func (r *postgresRepository) findByID(ctx context.Context, q querier, id uuid.UUID, forUpdate bool) (*model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	res, err := scanReservation(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrReservationNotFound
		}
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	return res, nil
}

func (r *postgresRepository) FindProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `
		SELECT id, title, price, max_participants, location, is_active
		FROM products
		WHERE id = $1
	`

	var p model.Product
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Title,
		&p.Price,
		&p.MaxParticipants,
		&p.Location,
		&p.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &p, nil
}

// =====================================================
// STATUS TRANSITIONS (transaction only)
// =====================================================

func (r *postgresRepository) ConfirmWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Reservation, error) {
	query := `
		UPDATE reservations
		SET status = 'confirmed', updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'confirmed')
		RETURNING ` + reservationColumns

	res, err := scanReservation(tx.QueryRow(ctx, query, id))
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("confirm reservation: %w", err)
	}
	return nil, r.explainNoRows(ctx, tx, id, model.StatusConfirmed)
}

func (r *postgresRepository) ApproveWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Reservation, error) {
	query := `
		UPDATE reservations
		SET status = 'confirmed', updated_at = NOW()
		WHERE id = $1
		  AND status = 'pending'
		  AND EXISTS (
			SELECT 1 FROM payments
			WHERE payments.reservation_id = reservations.id AND payments.status = 'completed'
		  )
		RETURNING ` + reservationColumns

	res, err := scanReservation(tx.QueryRow(ctx, query, id))
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("approve reservation: %w", err)
	}

	current, findErr := r.findByID(ctx, tx, id, false)
	if findErr != nil {
		return nil, findErr
	}
	if current.Status == model.StatusPending {
		return nil, model.ErrPaymentRequired
	}
	return nil, fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, current.Status, model.StatusConfirmed)
}

func (r *postgresRepository) TransitionWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, to model.Status, reason *string) (*model.Reservation, error) {
	sources := model.SourcesFor(to)
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: nothing transitions to %s", model.ErrInvalidTransition, to)
	}
	from := make([]string, len(sources))
	for i, s := range sources {
		from[i] = string(s)
	}

	query := `
		UPDATE reservations
		SET status = $2,
		    cancel_reason = COALESCE($3, cancel_reason),
		    updated_at = NOW()
		WHERE id = $1 AND status = ANY($4)
		RETURNING ` + reservationColumns

	res, err := scanReservation(tx.QueryRow(ctx, query, id, string(to), reason, from))
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update reservation status: %w", err)
	}
	return nil, r.explainNoRows(ctx, tx, id, to)
}

// explainNoRows tells a missing reservation apart from an illegal transition.
func (r *postgresRepository) explainNoRows(ctx context.Context, q querier, id uuid.UUID, to model.Status) error {
	current, err := r.findByID(ctx, q, id, false)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, current.Status, to)
}
