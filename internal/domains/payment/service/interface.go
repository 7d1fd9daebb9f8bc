package service

import (
	"context"

	"github.com/google/uuid"

	"reservation-backend/internal/domains/payment/gateway"
	"reservation-backend/internal/domains/payment/model"
	userModel "reservation-backend/internal/domains/user/model"
)

// =====================================================
// SERVICE INTERFACES
// =====================================================

// SettlementService verifies client-reported payments against the provider
// and is the only path that confirms a reservation from a payment.
type SettlementService interface {
	Settle(ctx context.Context, req model.SettlePaymentRequest) (*model.SettleResult, error)

	// SyncVirtualAccounts settles pending virtual account payments the provider now reports as paid
	SyncVirtualAccounts(ctx context.Context, limit int) (*SyncSummary, error)
}

type RefundService interface {
	Refund(ctx context.Context, req model.RefundPaymentRequest) (*model.RefundResult, error)
}

// QueryService is read only.
type QueryService interface {
	GetPayment(ctx context.Context, transactionID string) (*model.Payment, error)
	GetProviderPayment(ctx context.Context, transactionID string) (*gateway.ProviderPayment, error)
}

// IdentityResolver looks up the paying customer's display identity.
type IdentityResolver interface {
	FindByID(ctx context.Context, id uuid.UUID) (*userModel.Profile, error)
}

type SyncSummary struct {
	Checked int `json:"checked"`
	Settled int `json:"settled"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}
