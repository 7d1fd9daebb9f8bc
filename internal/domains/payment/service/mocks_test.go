package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	notifModel "reservation-backend/internal/domains/notification/model"
	"reservation-backend/internal/domains/payment/model"
	reservationModel "reservation-backend/internal/domains/reservation/model"
	userModel "reservation-backend/internal/domains/user/model"
)

// =====================================================
// PAYMENT REPOSITORY
// =====================================================

type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) FindByTransactionIDWithTx(ctx context.Context, tx pgx.Tx, transactionID string) (*model.Payment, error) {
	args := m.Called(ctx, tx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepo) InsertWithTx(ctx context.Context, tx pgx.Tx, p *model.Payment) error {
	args := m.Called(ctx, tx, p)
	if args.Error(0) == nil {
		p.ID = uuid.New()
		p.CreatedAt = time.Now()
		p.UpdatedAt = p.CreatedAt
	}
	return args.Error(0)
}

func (m *MockPaymentRepo) CompleteWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, method string, paidAt time.Time) (*model.Payment, error) {
	args := m.Called(ctx, tx, id, method, paidAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepo) UpdateStatusWithTx(ctx context.Context, tx pgx.Tx, transactionID string, status model.Status) (*model.Payment, error) {
	args := m.Called(ctx, tx, transactionID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepo) FindByTransactionID(ctx context.Context, transactionID string) (*model.Payment, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepo) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPaymentRepo) ListPendingVirtualAccounts(ctx context.Context, olderThan time.Duration, limit int) ([]model.Payment, error) {
	args := m.Called(ctx, olderThan, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Payment), args.Error(1)
}

func (m *MockPaymentRepo) ListSummariesByReservation(ctx context.Context, reservationID uuid.UUID) ([]reservationModel.PaymentSummary, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reservationModel.PaymentSummary), args.Error(1)
}

// =====================================================
// RESERVATION REPOSITORY
// =====================================================

type MockReservationRepo struct {
	mock.Mock
}

func (m *MockReservationRepo) Create(ctx context.Context, r *reservationModel.Reservation) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockReservationRepo) FindByID(ctx context.Context, id uuid.UUID) (*reservationModel.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservationModel.Reservation), args.Error(1)
}

func (m *MockReservationRepo) FindProduct(ctx context.Context, id uuid.UUID) (*reservationModel.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservationModel.Product), args.Error(1)
}

func (m *MockReservationRepo) FindByIDWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*reservationModel.Reservation, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservationModel.Reservation), args.Error(1)
}

func (m *MockReservationRepo) ConfirmWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*reservationModel.Reservation, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservationModel.Reservation), args.Error(1)
}

func (m *MockReservationRepo) ApproveWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*reservationModel.Reservation, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservationModel.Reservation), args.Error(1)
}

func (m *MockReservationRepo) TransitionWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, to reservationModel.Status, reason *string) (*reservationModel.Reservation, error) {
	args := m.Called(ctx, tx, id, to, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservationModel.Reservation), args.Error(1)
}

// =====================================================
// COLLABORATORS
// =====================================================

type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) FindByID(ctx context.Context, id uuid.UUID) (*userModel.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userModel.Profile), args.Error(1)
}

type MockSink struct {
	mock.Mock
}

func (m *MockSink) NotifyPaymentCompleted(ctx context.Context, event notifModel.ReservationEvent) {
	m.Called(ctx, event)
}

func (m *MockSink) NotifyReservationCancelled(ctx context.Context, event notifModel.ReservationEvent) {
	m.Called(ctx, event)
}

func (m *MockSink) NotifyNewReservation(ctx context.Context, event notifModel.ReservationEvent) {
	m.Called(ctx, event)
}
