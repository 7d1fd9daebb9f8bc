package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	notifService "reservation-backend/internal/domains/notification/service"
	"reservation-backend/internal/domains/reservation/model"
	"reservation-backend/internal/domains/reservation/repository"
	"reservation-backend/internal/shared"
	"reservation-backend/pkg/database"
	"reservation-backend/pkg/logger"
)

type reservationService struct {
	repo      repository.Repository
	txManager database.TxManager
	identity  IdentityResolver
	payments  PaymentLister
	sink      notifService.Sink
}

func NewReservationService(
	repo repository.Repository,
	txManager database.TxManager,
	identity IdentityResolver,
	payments PaymentLister,
	sink notifService.Sink,
) ReservationService {
	return &reservationService{
		repo:      repo,
		txManager: txManager,
		identity:  identity,
		payments:  payments,
		sink:      sink,
	}
}

// =====================================================
// CREATE
// =====================================================

// Create books a reservation in pending status.
// Business Logic:
// - product must exist and be active
// - participants <= product.max_participants
// - total_amount = price * participants, computed server side
func (s *reservationService) Create(ctx context.Context, userID uuid.UUID, req model.CreateReservationRequest) (*model.Reservation, error) {
	// Step 1: Validate
	if err := req.Validate(); err != nil {
		return nil, model.NewInvalidRequestError(err)
	}
	productID := uuid.MustParse(req.ProductID)

	// Step 2: Product
	product, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			return nil, model.NewProductUnavailableError()
		}
		return nil, model.NewStoreError("find product", err)
	}
	if !product.IsActive {
		return nil, model.NewProductUnavailableError()
	}
	if req.Participants > product.MaxParticipants {
		return nil, model.NewTooManyParticipantsError(product.MaxParticipants)
	}

	// Step 3: Insert
	res := &model.Reservation{
		ProductID:       product.ID,
		UserID:          userID,
		ReservationDate: req.ReservationDate,
		Participants:    req.Participants,
		TotalAmount:     product.Price * int64(req.Participants),
		Status:          model.StatusPending,
	}
	if sr := strings.TrimSpace(req.SpecialRequests); sr != "" {
		res.SpecialRequests = &sr
	}

	if err := s.repo.Create(ctx, res); err != nil {
		return nil, model.NewStoreError("create reservation", err)
	}

	logger.Info("Reservation created", map[string]interface{}{
		"reservation_id": res.ID.String(),
		"user_id":        userID.String(),
		"total_amount":   res.TotalAmount,
	})

	// Step 4: Notify admins (best effort)
	s.sink.NotifyNewReservation(ctx, res.Event(product, s.customerInfo(ctx, userID)))

	return res, nil
}

// =====================================================
// DETAIL
// =====================================================

func (s *reservationService) GetDetail(ctx context.Context, requesterID uuid.UUID, isAdmin bool, id uuid.UUID) (*model.ReservationDetailResponse, error) {
	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreError(id, "find reservation", err)
	}
	if !isAdmin && res.UserID != requesterID {
		return nil, model.NewForbiddenError()
	}

	detail := &model.ReservationDetailResponse{Reservation: *res}

	if product, err := s.repo.FindProduct(ctx, res.ProductID); err == nil {
		detail.Product = product
	}
	detail.Customer = s.customerInfo(ctx, res.UserID)

	payments, err := s.payments.ListSummariesByReservation(ctx, id)
	if err != nil {
		return nil, model.NewStoreError("list payments", err)
	}
	detail.Payments = payments

	return detail, nil
}

// =====================================================
// ADMIN ACTIONS
// =====================================================

// Approve confirms a pending reservation that already has a completed payment.
func (s *reservationService) Approve(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	res, err := database.WithTransactionResult(ctx, s.txManager, func(tx pgx.Tx) (*model.Reservation, error) {
		return s.repo.ApproveWithTx(ctx, tx, id)
	})
	if err != nil {
		if errors.Is(err, model.ErrPaymentRequired) {
			return nil, model.NewPaymentRequiredError()
		}
		return nil, s.mapStoreError(id, "approve reservation", err)
	}

	logger.Info("Reservation approved", map[string]interface{}{"reservation_id": id.String()})
	return res, nil
}

// Reject cancels a pending reservation.
// Confirmed reservations are cancelled through a refund instead.
func (s *reservationService) Reject(ctx context.Context, id uuid.UUID, req model.RejectReservationRequest) (*model.Reservation, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewInvalidRequestError(err)
	}

	res, err := database.WithTransactionResult(ctx, s.txManager, func(tx pgx.Tx) (*model.Reservation, error) {
		current, err := s.repo.FindByIDWithTx(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if current.Status != model.StatusPending {
			return nil, model.NewInvalidTransitionError(current.Status, model.StatusCancelled)
		}

		var reason *string
		if r := strings.TrimSpace(req.Reason); r != "" {
			reason = &r
		}
		return s.repo.TransitionWithTx(ctx, tx, id, model.StatusCancelled, reason)
	})
	if err != nil {
		return nil, s.mapStoreError(id, "reject reservation", err)
	}

	logger.Info("Reservation rejected", map[string]interface{}{"reservation_id": id.String()})

	event := res.Event(s.productOrNil(ctx, res.ProductID), s.customerInfo(ctx, res.UserID))
	event.Reason = req.Reason
	s.sink.NotifyReservationCancelled(ctx, event)

	return res, nil
}

// Complete marks a confirmed reservation as used.
func (s *reservationService) Complete(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	res, err := database.WithTransactionResult(ctx, s.txManager, func(tx pgx.Tx) (*model.Reservation, error) {
		return s.repo.TransitionWithTx(ctx, tx, id, model.StatusCompleted, nil)
	})
	if err != nil {
		return nil, s.mapStoreError(id, "complete reservation", err)
	}

	logger.Info("Reservation completed", map[string]interface{}{"reservation_id": id.String()})
	return res, nil
}

// =====================================================
// HELPERS
// =====================================================

func (s *reservationService) customerInfo(ctx context.Context, userID uuid.UUID) *shared.UserBasicInfo {
	profile, err := s.identity.FindByID(ctx, userID)
	if err != nil {
		logger.Warn("Customer identity lookup failed", map[string]interface{}{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
		return nil
	}
	info := profile.BasicInfo()
	return &info
}

func (s *reservationService) productOrNil(ctx context.Context, id uuid.UUID) *model.Product {
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return nil
	}
	return product
}

func (s *reservationService) mapStoreError(id uuid.UUID, op string, err error) error {
	var rsvErr *model.ReservationError
	switch {
	case errors.As(err, &rsvErr):
		return rsvErr
	case errors.Is(err, model.ErrReservationNotFound):
		return model.NewReservationNotFoundError(id.String())
	case errors.Is(err, model.ErrInvalidTransition):
		return model.NewReservationError(model.ErrCodeInvalidTransition, err.Error(), err)
	default:
		return model.NewStoreError(op, err)
	}
}
