package service

import (
	"context"

	"github.com/google/uuid"

	"reservation-backend/internal/domains/reservation/model"
	userModel "reservation-backend/internal/domains/user/model"
)

type ReservationService interface {
	Create(ctx context.Context, userID uuid.UUID, req model.CreateReservationRequest) (*model.Reservation, error)
	GetDetail(ctx context.Context, requesterID uuid.UUID, isAdmin bool, id uuid.UUID) (*model.ReservationDetailResponse, error)

	// Admin actions
	Approve(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	Reject(ctx context.Context, id uuid.UUID, req model.RejectReservationRequest) (*model.Reservation, error)
	Complete(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
}

// IdentityResolver looks up a customer's display identity.
type IdentityResolver interface {
	FindByID(ctx context.Context, id uuid.UUID) (*userModel.Profile, error)
}

// PaymentLister returns the payment rows of a reservation, newest first.
type PaymentLister interface {
	ListSummariesByReservation(ctx context.Context, reservationID uuid.UUID) ([]model.PaymentSummary, error)
}
