package service

import (
	"errors"

	"reservation-backend/internal/domains/payment/gateway"
	"reservation-backend/internal/domains/payment/model"
)

// translateGatewayError turns transport errors into payment errors.
func translateGatewayError(transactionID string, err error) *model.PaymentError {
	switch {
	case errors.Is(err, gateway.ErrNotConfigured):
		return model.NewConfigurationError(err)
	case errors.Is(err, gateway.ErrPaymentNotFound):
		return model.NewProviderPaymentNotFoundError(transactionID, err)
	case errors.Is(err, gateway.ErrRejected):
		return model.NewProviderRejectedError(err)
	default:
		return model.NewProviderUnavailableError(err)
	}
}

func statusLabel(p *gateway.ProviderPayment) string {
	if p.RawStatus != "" {
		return p.RawStatus
	}
	return string(p.Status)
}
