package service

import (
	"context"
	"errors"

	"reservation-backend/internal/domains/payment/gateway"
	"reservation-backend/internal/domains/payment/model"
	"reservation-backend/internal/domains/payment/repository"
)

type queryService struct {
	gateway     gateway.PortOneGateway
	paymentRepo repository.Repository
}

func NewQueryService(gw gateway.PortOneGateway, paymentRepo repository.Repository) QueryService {
	return &queryService{gateway: gw, paymentRepo: paymentRepo}
}

// GetPayment returns the local payment row.
func (s *queryService) GetPayment(ctx context.Context, transactionID string) (*model.Payment, error) {
	p, err := s.paymentRepo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, model.ErrPaymentNotFound) {
			return nil, model.NewPaymentNotFoundError(transactionID)
		}
		return nil, model.NewStoreError("get payment", err)
	}
	return p, nil
}

// GetProviderPayment returns the provider's live record.
func (s *queryService) GetProviderPayment(ctx context.Context, transactionID string) (*gateway.ProviderPayment, error) {
	if !s.gateway.Configured() {
		return nil, model.NewConfigurationError(gateway.ErrNotConfigured)
	}

	p, err := s.gateway.FetchPayment(ctx, transactionID)
	if err != nil {
		return nil, translateGatewayError(transactionID, err)
	}
	return p, nil
}
