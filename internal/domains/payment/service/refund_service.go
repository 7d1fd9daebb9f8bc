package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	notifService "reservation-backend/internal/domains/notification/service"
	"reservation-backend/internal/domains/payment/gateway"
	"reservation-backend/internal/domains/payment/model"
	"reservation-backend/internal/domains/payment/repository"
	reservationModel "reservation-backend/internal/domains/reservation/model"
	reservationRepo "reservation-backend/internal/domains/reservation/repository"
	"reservation-backend/internal/infrastructure/metrics"
	"reservation-backend/internal/shared"
	"reservation-backend/internal/shared/utils"
	"reservation-backend/pkg/database"
	"reservation-backend/pkg/logger"
)

type refundService struct {
	gateway         gateway.PortOneGateway
	paymentRepo     repository.Repository
	reservationRepo reservationRepo.Repository
	txManager       database.TxManager
	identity        IdentityResolver
	sink            notifService.Sink
}

func NewRefundService(
	gw gateway.PortOneGateway,
	paymentRepo repository.Repository,
	reservationRepo reservationRepo.Repository,
	txManager database.TxManager,
	identity IdentityResolver,
	sink notifService.Sink,
) RefundService {
	return &refundService{
		gateway:         gw,
		paymentRepo:     paymentRepo,
		reservationRepo: reservationRepo,
		txManager:       txManager,
		identity:        identity,
		sink:            sink,
	}
}

// =====================================================
// REFUND
// =====================================================

// Refund cancels funds at the provider, then records the outcome locally.
// The ceiling comes from live provider data. Once the provider has refunded,
// local store failures are reported as a warning on a successful result.
// A cancel the provider has only accepted is not recorded.
func (s *refundService) Refund(ctx context.Context, req model.RefundPaymentRequest) (*model.RefundResult, error) {
	// Step 1: Validate
	req.TransactionID = strings.TrimSpace(req.TransactionID)
	if err := req.Validate(); err != nil {
		return nil, model.NewInvalidRequestError(err)
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = model.DefaultRefundReason
	}

	if !s.gateway.Configured() {
		metrics.ObserveRefund("error")
		return nil, model.NewConfigurationError(gateway.ErrNotConfigured)
	}

	// Step 2: Only transactions this store settled are refunded here
	local, err := s.paymentRepo.FindByTransactionID(ctx, req.TransactionID)
	if err != nil {
		metrics.ObserveRefund("error")
		if errors.Is(err, model.ErrPaymentNotFound) {
			return nil, model.NewPaymentNotFoundError(req.TransactionID)
		}
		return nil, model.NewStoreError("get payment", err)
	}

	// Step 3: Live provider state
	provider, err := s.gateway.FetchPayment(ctx, req.TransactionID)
	if err != nil {
		metrics.ObserveRefund("error")
		return nil, translateGatewayError(req.TransactionID, err)
	}

	// Step 4: Only captured funds can be refunded
	if !provider.Status.Refundable() {
		metrics.ObserveRefund("not_refundable")
		return nil, model.NewNotRefundableError(statusLabel(provider))
	}

	// Step 5: Ceiling
	available := provider.Available()
	if req.Amount > available {
		metrics.ObserveRefund("ceiling_exceeded")
		logger.Warn("Refund exceeds available amount", map[string]interface{}{
			"transaction_id": req.TransactionID,
			"requested":      req.Amount,
			"available":      available,
		})
		return nil, model.NewRefundCeilingExceededError(available)
	}

	// Step 6: Cancel at the provider
	cancel, err := s.gateway.RequestCancel(ctx, gateway.CancelRequest{
		TransactionID: req.TransactionID,
		Amount:        req.Amount,
		Reason:        reason,
	})
	if err != nil {
		metrics.ObserveRefund("error")
		return nil, translateGatewayError(req.TransactionID, err)
	}

	// Step 7: Accepted but not yet completed at the provider; nothing to record
	if cancel.Pending() {
		metrics.ObserveRefund("pending")
		logger.Warn("Refund accepted by provider but not completed", map[string]interface{}{
			"transaction_id":          req.TransactionID,
			"cancellation_id":         cancel.CancellationID,
			"amount":                  req.Amount,
			"reconciliation_required": true,
		})
		return &model.RefundResult{
			Data: &model.RefundData{
				TransactionID:      req.TransactionID,
				PaidAmount:         provider.TotalAmount,
				CancellationID:     cancel.CancellationID,
				CancellationStatus: cancel.Status,
				PaymentStatus:      local.Status,
				Warning:            model.RefundPendingWarning,
			},
			Message: utils.FormatWon(req.Amount) + " 환불 요청이 접수되었습니다.",
		}, nil
	}

	// Step 8: Local state
	full := req.Amount == provider.TotalAmount
	status := model.StatusPartiallyRefunded
	if full {
		status = model.StatusRefunded
	}

	data := &model.RefundData{
		TransactionID:      req.TransactionID,
		RefundedAmount:     req.Amount,
		PaidAmount:         provider.TotalAmount,
		CancellationID:     cancel.CancellationID,
		CancellationStatus: cancel.Status,
		CancelledAt:        cancel.CancelledAt,
		PaymentStatus:      status,
	}

	cancelled, err := s.applyRefund(ctx, req.TransactionID, status, full, reason)
	if err != nil {
		partial := model.NewPartialFailureError("update payment status", err)
		data.Warning = partial.Message
		metrics.ObserveRefund("reconciliation_required")
		logger.ErrorWithFields("Refund succeeded at provider but local update failed", err, map[string]interface{}{
			"transaction_id":          req.TransactionID,
			"amount":                  req.Amount,
			"intended_status":         string(status),
			"cascade_cancel":          full,
			"reconciliation_required": true,
		})
	} else {
		if full {
			metrics.ObserveRefund("full")
		} else {
			metrics.ObserveRefund("partial")
		}
		data.ReservationCancelled = cancelled != nil
	}

	logger.Info("Refund completed", map[string]interface{}{
		"transaction_id":        req.TransactionID,
		"amount":                req.Amount,
		"payment_status":        string(status),
		"reservation_cancelled": data.ReservationCancelled,
	})

	// Step 9: Notify on cascade
	if cancelled != nil {
		event := cancelled.Event(s.productOrNil(ctx, cancelled), s.resolveIdentity(ctx, cancelled))
		event.TransactionID = req.TransactionID
		event.RefundAmount = req.Amount
		event.Reason = reason
		s.sink.NotifyReservationCancelled(ctx, event)
	}

	return &model.RefundResult{
		Data:    data,
		Message: utils.FormatWon(req.Amount) + " 환불이 완료되었습니다.",
	}, nil
}

// applyRefund updates the payment row and, on a full refund, cancels the reservation.
// Returns the cancelled reservation, or nil when none was cancelled.
func (s *refundService) applyRefund(ctx context.Context, transactionID string, status model.Status, full bool, reason string) (*reservationModel.Reservation, error) {
	return database.WithTransactionResult(ctx, s.txManager, func(tx pgx.Tx) (*reservationModel.Reservation, error) {
		p, err := s.paymentRepo.UpdateStatusWithTx(ctx, tx, transactionID, status)
		if err != nil {
			return nil, err
		}
		if !full {
			return nil, nil
		}

		res, err := s.reservationRepo.TransitionWithTx(ctx, tx, p.ReservationID, reservationModel.StatusCancelled, &reason)
		if errors.Is(err, reservationModel.ErrInvalidTransition) {
			// completed or already cancelled reservations keep their status
			logger.Warn("Full refund did not cancel reservation", map[string]interface{}{
				"transaction_id": transactionID,
				"reservation_id": p.ReservationID.String(),
				"error":          err.Error(),
			})
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return res, nil
	})
}

func (s *refundService) productOrNil(ctx context.Context, res *reservationModel.Reservation) *reservationModel.Product {
	product, err := s.reservationRepo.FindProduct(ctx, res.ProductID)
	if err != nil {
		return nil
	}
	return product
}

func (s *refundService) resolveIdentity(ctx context.Context, res *reservationModel.Reservation) *shared.UserBasicInfo {
	profile, err := s.identity.FindByID(ctx, res.UserID)
	if err != nil {
		return nil
	}
	info := profile.BasicInfo()
	return &info
}
