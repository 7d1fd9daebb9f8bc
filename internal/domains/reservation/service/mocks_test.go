package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	notifModel "reservation-backend/internal/domains/notification/model"
	"reservation-backend/internal/domains/reservation/model"
	userModel "reservation-backend/internal/domains/user/model"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, r *model.Reservation) error {
	args := m.Called(ctx, r)
	if args.Error(0) == nil {
		r.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *MockRepository) FindProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockRepository) FindByIDWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Reservation, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *MockRepository) ConfirmWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Reservation, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *MockRepository) ApproveWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Reservation, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *MockRepository) TransitionWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, to model.Status, reason *string) (*model.Reservation, error) {
	args := m.Called(ctx, tx, id, to, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

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

type MockPayments struct {
	mock.Mock
}

func (m *MockPayments) ListSummariesByReservation(ctx context.Context, reservationID uuid.UUID) ([]model.PaymentSummary, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PaymentSummary), args.Error(1)
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
