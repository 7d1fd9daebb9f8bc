package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	notifService "reservation-backend/internal/domains/notification/service"
	"reservation-backend/internal/domains/payment/gateway"
	"reservation-backend/internal/domains/payment/model"
	"reservation-backend/internal/domains/payment/repository"
	reservationModel "reservation-backend/internal/domains/reservation/model"
	reservationRepo "reservation-backend/internal/domains/reservation/repository"
	"reservation-backend/internal/infrastructure/metrics"
	"reservation-backend/internal/shared"
	"reservation-backend/pkg/database"
	"reservation-backend/pkg/logger"
)

const (
	// a racer's unique violation is resolved by re-reading inside a fresh transaction
	maxSettleAttempts = 2

	// pending virtual accounts younger than this are left to the client flow
	syncMinAge = time.Minute

	confirmedMessage = "예약이 확정되었습니다."
)

type settlementService struct {
	gateway         gateway.PortOneGateway
	paymentRepo     repository.Repository
	reservationRepo reservationRepo.Repository
	txManager       database.TxManager
	identity        IdentityResolver
	sink            notifService.Sink
}

func NewSettlementService(
	gw gateway.PortOneGateway,
	paymentRepo repository.Repository,
	reservationRepo reservationRepo.Repository,
	txManager database.TxManager,
	identity IdentityResolver,
	sink notifService.Sink,
) SettlementService {
	return &settlementService{
		gateway:         gw,
		paymentRepo:     paymentRepo,
		reservationRepo: reservationRepo,
		txManager:       txManager,
		identity:        identity,
		sink:            sink,
	}
}

// =====================================================
// SETTLE
// =====================================================

// Settle verifies a client-reported payment and records it.
// Order: configured -> fetch -> amount check -> status branch -> one transaction -> notify.
// No write happens before the amount check passes.
func (s *settlementService) Settle(ctx context.Context, req model.SettlePaymentRequest) (*model.SettleResult, error) {
	// Step 1: Validate request
	if err := req.Validate(); err != nil {
		return nil, model.NewInvalidRequestError(err)
	}
	reservationID, err := uuid.Parse(req.ReservationID)
	if err != nil {
		return nil, model.NewInvalidRequestError(err)
	}

	// Step 2: Provider credentials
	if !s.gateway.Configured() {
		metrics.ObserveSettlement("error")
		logger.Warn("Settlement attempted without PortOne credentials", map[string]interface{}{
			"transaction_id": req.PaymentID,
		})
		return nil, model.NewConfigurationError(gateway.ErrNotConfigured)
	}

	// Step 3: Authoritative payment state
	provider, err := s.gateway.FetchPayment(ctx, req.PaymentID)
	if err != nil {
		metrics.ObserveSettlement("error")
		return nil, translateGatewayError(req.PaymentID, err)
	}

	// Step 4: Amount verification
	if req.Order.Amount != provider.TotalAmount {
		metrics.ObserveSettlement("amount_mismatch")
		logger.Warn("Payment amount mismatch", map[string]interface{}{
			"transaction_id": req.PaymentID,
			"reservation_id": reservationID.String(),
			"expected":       req.Order.Amount,
			"actual":         provider.TotalAmount,
		})
		return nil, model.NewAmountMismatchError(req.Order.Amount, provider.TotalAmount)
	}

	// Step 5: Branch on provider status
	switch provider.Status {
	case gateway.StatusVirtualAccountIssued:
		return s.recordVirtualAccount(ctx, reservationID, provider)
	case gateway.StatusPaid:
		return s.completePaid(ctx, reservationID, provider)
	default:
		metrics.ObserveSettlement("unsupported_status")
		logger.Warn("Unsupported payment status", map[string]interface{}{
			"transaction_id": req.PaymentID,
			"status":         statusLabel(provider),
		})
		return nil, model.NewUnsupportedStatusError(statusLabel(provider))
	}
}

// =====================================================
// VIRTUAL ACCOUNT ISSUED
// =====================================================

type vaOutcome struct {
	payment  *model.Payment
	replayed bool
}

// recordVirtualAccount stores a pending payment; the reservation is not touched.
func (s *settlementService) recordVirtualAccount(ctx context.Context, reservationID uuid.UUID, provider *gateway.ProviderPayment) (*model.SettleResult, error) {
	var (
		outcome *vaOutcome
		err     error
	)
	for attempt := 0; attempt < maxSettleAttempts; attempt++ {
		outcome, err = database.WithTransactionResult(ctx, s.txManager, func(tx pgx.Tx) (*vaOutcome, error) {
			existing, err := s.lockExisting(ctx, tx, provider.ID, reservationID)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return &vaOutcome{payment: existing, replayed: true}, nil
			}

			p := &model.Payment{
				ReservationID:   reservationID,
				Amount:          provider.TotalAmount,
				Currency:        model.CurrencyKRW,
				PaymentMethod:   model.MethodVirtualAccount,
				PaymentProvider: model.ProviderPortOne,
				TransactionID:   provider.ID,
				Status:          model.StatusPending,
			}
			if err := s.paymentRepo.InsertWithTx(ctx, tx, p); err != nil {
				return nil, err
			}
			return &vaOutcome{payment: p}, nil
		})
		if !errors.Is(err, model.ErrDuplicateTransaction) {
			break
		}
	}
	if err != nil {
		metrics.ObserveSettlement("error")
		return nil, s.mapStoreError(provider.ID, reservationID, err)
	}

	if outcome.replayed {
		metrics.ObserveSettlement("replayed")
	} else {
		metrics.ObserveSettlement("virtual_account_issued")
	}
	logger.Info("Virtual account payment recorded", map[string]interface{}{
		"transaction_id": provider.ID,
		"reservation_id": reservationID.String(),
		"amount":         provider.TotalAmount,
		"replayed":       outcome.replayed,
	})

	return &model.SettleResult{
		Success:  true,
		Status:   model.SettleStatusVirtualAccountIssued,
		Payment:  outcome.payment,
		Replayed: outcome.replayed,
	}, nil
}

// =====================================================
// PAID
// =====================================================

type paidOutcome struct {
	reservation *reservationModel.Reservation
	payment     *model.Payment
	replayed    bool
}

// completePaid confirms the reservation and records the completed payment in one transaction.
// The amount must already be verified against provider.TotalAmount.
func (s *settlementService) completePaid(ctx context.Context, reservationID uuid.UUID, provider *gateway.ProviderPayment) (*model.SettleResult, error) {
	paidAt := time.Now().UTC()
	if provider.PaidAt != nil {
		paidAt = *provider.PaidAt
	}

	var (
		outcome *paidOutcome
		err     error
	)
	for attempt := 0; attempt < maxSettleAttempts; attempt++ {
		outcome, err = database.WithTransactionResult(ctx, s.txManager, func(tx pgx.Tx) (*paidOutcome, error) {
			return s.paidTx(ctx, tx, reservationID, provider, paidAt)
		})
		if !errors.Is(err, model.ErrDuplicateTransaction) {
			break
		}
	}
	if err != nil {
		metrics.ObserveSettlement("error")
		return nil, s.mapStoreError(provider.ID, reservationID, err)
	}

	// Read-only enrichment after commit
	product, err := s.reservationRepo.FindProduct(ctx, outcome.reservation.ProductID)
	if err != nil {
		product = nil
	}
	user := s.resolveIdentity(ctx, outcome.reservation.UserID)

	if outcome.replayed {
		metrics.ObserveSettlement("replayed")
		logger.Info("Settlement replayed", map[string]interface{}{
			"transaction_id": provider.ID,
			"reservation_id": reservationID.String(),
		})
	} else {
		metrics.ObserveSettlement("confirmed")
		logger.Info("Reservation confirmed by payment", map[string]interface{}{
			"transaction_id": provider.ID,
			"reservation_id": reservationID.String(),
			"amount":         outcome.payment.Amount,
			"method":         outcome.payment.PaymentMethod,
		})

		// Best effort: the sink never returns an error
		event := outcome.reservation.Event(product, user)
		event.TotalAmount = outcome.payment.Amount
		event.TransactionID = provider.ID
		s.sink.NotifyPaymentCompleted(ctx, event)
	}

	return &model.SettleResult{
		Success: true,
		Reservation: &model.SettledReservation{
			Reservation: *outcome.reservation,
			Product:     product,
			User:        user,
		},
		Payment:  outcome.payment,
		Message:  confirmedMessage,
		Replayed: outcome.replayed,
	}, nil
}

func (s *settlementService) paidTx(
	ctx context.Context,
	tx pgx.Tx,
	reservationID uuid.UUID,
	provider *gateway.ProviderPayment,
	paidAt time.Time,
) (*paidOutcome, error) {
	existing, err := s.lockExisting(ctx, tx, provider.ID, reservationID)
	if err != nil {
		return nil, err
	}

	// Already settled: return the stored result, write nothing
	if existing != nil && existing.Status.IsSettled() {
		res, err := s.reservationRepo.FindByIDWithTx(ctx, tx, reservationID)
		if err != nil {
			return nil, err
		}
		return &paidOutcome{reservation: res, payment: existing, replayed: true}, nil
	}

	res, err := s.reservationRepo.ConfirmWithTx(ctx, tx, reservationID)
	if err != nil {
		return nil, err
	}

	// Pending virtual account row now paid
	if existing != nil {
		p, err := s.paymentRepo.CompleteWithTx(ctx, tx, existing.ID, provider.Method(), paidAt)
		if err != nil {
			return nil, err
		}
		return &paidOutcome{reservation: res, payment: p}, nil
	}

	p := &model.Payment{
		ReservationID:   reservationID,
		Amount:          provider.TotalAmount,
		Currency:        model.CurrencyKRW,
		PaymentMethod:   provider.Method(),
		PaymentProvider: model.ProviderPortOne,
		TransactionID:   provider.ID,
		Status:          model.StatusCompleted,
		PaidAt:          &paidAt,
	}
	if err := s.paymentRepo.InsertWithTx(ctx, tx, p); err != nil {
		return nil, err
	}
	return &paidOutcome{reservation: res, payment: p}, nil
}

// =====================================================
// VIRTUAL ACCOUNT SYNC (worker)
// =====================================================

// SyncVirtualAccounts polls the provider for pending virtual account payments.
// PAID rows go through the same transactional path as Settle; CANCELLED/FAILED rows are marked failed.
func (s *settlementService) SyncVirtualAccounts(ctx context.Context, limit int) (*SyncSummary, error) {
	if !s.gateway.Configured() {
		return nil, model.NewConfigurationError(gateway.ErrNotConfigured)
	}

	pending, err := s.paymentRepo.ListPendingVirtualAccounts(ctx, syncMinAge, limit)
	if err != nil {
		return nil, model.NewStoreError("list pending virtual accounts", err)
	}

	summary := &SyncSummary{}
	for _, p := range pending {
		summary.Checked++

		provider, err := s.gateway.FetchPayment(ctx, p.TransactionID)
		if err != nil {
			summary.Skipped++
			logger.Warn("Virtual account lookup failed", map[string]interface{}{
				"transaction_id": p.TransactionID,
				"error":          err.Error(),
			})
			continue
		}

		switch provider.Status {
		case gateway.StatusPaid:
			if provider.TotalAmount != p.Amount {
				summary.Skipped++
				logger.ErrorWithFields("Virtual account paid amount differs from recorded amount", nil, map[string]interface{}{
					"transaction_id":          p.TransactionID,
					"expected":                p.Amount,
					"actual":                  provider.TotalAmount,
					"reconciliation_required": true,
				})
				continue
			}
			if _, err := s.completePaid(ctx, p.ReservationID, provider); err != nil {
				summary.Skipped++
				logger.ErrorWithFields("Virtual account settlement failed", err, map[string]interface{}{
					"transaction_id": p.TransactionID,
				})
				continue
			}
			summary.Settled++

		case gateway.StatusCancelled, gateway.StatusFailed:
			if err := s.paymentRepo.MarkFailed(ctx, p.ID); err != nil {
				summary.Skipped++
				logger.ErrorWithFields("Failed to mark virtual account payment failed", err, map[string]interface{}{
					"transaction_id": p.TransactionID,
				})
				continue
			}
			summary.Failed++

		default:
			summary.Skipped++
		}
	}

	logger.Info("Virtual account sync finished", map[string]interface{}{
		"checked": summary.Checked,
		"settled": summary.Settled,
		"failed":  summary.Failed,
		"skipped": summary.Skipped,
	})
	return summary, nil
}

// =====================================================
// HELPERS
// =====================================================

// lockExisting returns the locked row for transactionID, or nil when there is none.
// A row bound to another reservation is an error.
func (s *settlementService) lockExisting(ctx context.Context, tx pgx.Tx, transactionID string, reservationID uuid.UUID) (*model.Payment, error) {
	existing, err := s.paymentRepo.FindByTransactionIDWithTx(ctx, tx, transactionID)
	if errors.Is(err, model.ErrPaymentNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if existing.ReservationID != reservationID {
		return nil, model.ErrTransactionMismatch
	}
	return existing, nil
}

func (s *settlementService) resolveIdentity(ctx context.Context, userID uuid.UUID) *shared.UserBasicInfo {
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

func (s *settlementService) mapStoreError(transactionID string, reservationID uuid.UUID, err error) error {
	fields := map[string]interface{}{
		"transaction_id": transactionID,
		"reservation_id": reservationID.String(),
	}

	switch {
	case errors.Is(err, model.ErrTransactionMismatch):
		logger.Warn("Transaction id already bound to another reservation", fields)
		return model.NewTransactionMismatchError(transactionID)
	case errors.Is(err, reservationModel.ErrReservationNotFound), errors.Is(err, model.ErrReservationNotFound):
		return model.NewReservationNotFoundError(reservationID.String())
	case errors.Is(err, reservationModel.ErrInvalidTransition):
		// money was captured for a reservation that can no longer be confirmed
		fields["reconciliation_required"] = true
		logger.ErrorWithFields("Paid reservation cannot be confirmed", err, fields)
		return model.NewReservationNotConfirmableError(err)
	default:
		logger.ErrorWithFields("Settlement store failure, rolled back", err, fields)
		return model.NewStoreError("settle", err)
	}
}
