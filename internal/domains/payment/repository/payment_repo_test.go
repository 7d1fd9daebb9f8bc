package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reservation-backend/internal/domains/payment/model"
	"reservation-backend/pkg/database/dbtest"
)

func newPayment(reservationID uuid.UUID, txID string, status model.Status) *model.Payment {
	return &model.Payment{
		ReservationID:   reservationID,
		Amount:          150000,
		Currency:        model.CurrencyKRW,
		PaymentMethod:   model.MethodVirtualAccount,
		PaymentProvider: model.ProviderPortOne,
		TransactionID:   txID,
		Status:          status,
	}
}

func TestInsertWithTx_DuplicateAndMissingReservation(t *testing.T) {
	pool := dbtest.NewPostgres(t)
	repo := NewPaymentRepository(pool)
	ctx := context.Background()
	reservationID := dbtest.SeedReservation(t, pool, "pending")

	dbtest.InTx(t, pool, func(tx pgx.Tx) {
		p := newPayment(reservationID, "pay-1", model.StatusPending)
		require.NoError(t, repo.InsertWithTx(ctx, tx, p))
		assert.NotEqual(t, uuid.Nil, p.ID)
	})

	dbtest.InTx(t, pool, func(tx pgx.Tx) {
		require.NoError(t, repo.InsertWithTx(ctx, tx, newPayment(reservationID, "pay-dup", model.StatusPending)))
		err := repo.InsertWithTx(ctx, tx, newPayment(reservationID, "pay-dup", model.StatusCompleted))
		assert.ErrorIs(t, err, model.ErrDuplicateTransaction)
	})

	dbtest.InTx(t, pool, func(tx pgx.Tx) {
		err := repo.InsertWithTx(ctx, tx, newPayment(uuid.New(), "pay-orphan", model.StatusPending))
		assert.ErrorIs(t, err, model.ErrReservationNotFound)
	})
}

func TestCompleteWithTx_OnlyPendingOrFailedRows(t *testing.T) {
	pool := dbtest.NewPostgres(t)
	repo := NewPaymentRepository(pool)
	ctx := context.Background()
	reservationID := dbtest.SeedReservation(t, pool, "pending")
	paidAt := time.Now().UTC().Truncate(time.Second)

	cases := []struct {
		status  model.Status
		allowed bool
	}{
		{model.StatusPending, true},
		{model.StatusFailed, true},
		{model.StatusCompleted, false},
		{model.StatusRefunded, false},
		{model.StatusPartiallyRefunded, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			dbtest.InTx(t, pool, func(tx pgx.Tx) {
				p := newPayment(reservationID, "pay-"+string(tc.status), tc.status)
				require.NoError(t, repo.InsertWithTx(ctx, tx, p))

				got, err := repo.CompleteWithTx(ctx, tx, p.ID, model.MethodCard, paidAt)

				if !tc.allowed {
					assert.ErrorIs(t, err, model.ErrPaymentNotFound)
					assert.Nil(t, got)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, model.StatusCompleted, got.Status)
				assert.Equal(t, model.MethodCard, got.PaymentMethod)
				require.NotNil(t, got.PaidAt)
				assert.True(t, paidAt.Equal(*got.PaidAt))
			})
		})
	}
}

func TestUpdateStatusWithTx(t *testing.T) {
	pool := dbtest.NewPostgres(t)
	repo := NewPaymentRepository(pool)
	ctx := context.Background()
	reservationID := dbtest.SeedReservation(t, pool, "confirmed")

	dbtest.InTx(t, pool, func(tx pgx.Tx) {
		require.NoError(t, repo.InsertWithTx(ctx, tx, newPayment(reservationID, "pay-r", model.StatusCompleted)))

		got, err := repo.UpdateStatusWithTx(ctx, tx, "pay-r", model.StatusPartiallyRefunded)
		require.NoError(t, err)
		assert.Equal(t, model.StatusPartiallyRefunded, got.Status)
		assert.Equal(t, reservationID, got.ReservationID)

		_, err = repo.UpdateStatusWithTx(ctx, tx, "pay-missing", model.StatusRefunded)
		assert.ErrorIs(t, err, model.ErrPaymentNotFound)
	})
}

func TestMarkFailed_OnlyPendingRows(t *testing.T) {
	pool := dbtest.NewPostgres(t)
	repo := NewPaymentRepository(pool)
	ctx := context.Background()
	reservationID := dbtest.SeedReservation(t, pool, "pending")

	pending := newPayment(reservationID, "pay-va", model.StatusPending)
	completed := newPayment(reservationID, "pay-done", model.StatusCompleted)
	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.InsertWithTx(ctx, tx, pending))
	require.NoError(t, repo.InsertWithTx(ctx, tx, completed))
	require.NoError(t, tx.Commit(ctx))

	require.NoError(t, repo.MarkFailed(ctx, pending.ID))
	assert.ErrorIs(t, repo.MarkFailed(ctx, completed.ID), model.ErrPaymentNotFound)

	got, err := repo.FindByTransactionID(ctx, "pay-va")
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, got.Status)
}
