package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"reservation-backend/internal/domains/payment/gateway"
)

// =====================================================
// IN-MEMORY PORTONE GATEWAY
// =====================================================

// PortOneMock keeps provider payments in memory.
// Used by PORTONE_MODE=mock and by service tests.
type PortOneMock struct {
	mu         sync.Mutex
	payments   map[string]gateway.ProviderPayment
	cancels    []gateway.CancelRequest
	configured bool
	fetchErr   error
	cancelErr  error

	// cancellation status returned by RequestCancel; empty means SUCCEEDED
	cancelStatus string
}

func NewPortOneMock() *PortOneMock {
	return &PortOneMock{
		payments:   make(map[string]gateway.ProviderPayment),
		configured: true,
	}
}

// Put stores or replaces a provider payment
func (m *PortOneMock) Put(p gateway.ProviderPayment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.Currency == "" {
		p.Currency = "KRW"
	}
	if p.RawStatus == "" {
		p.RawStatus = string(p.Status)
	}
	m.payments[p.ID] = p
}

// SetConfigured toggles the fail-closed behaviour
func (m *PortOneMock) SetConfigured(configured bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configured = configured
}

// SetFetchError makes every FetchPayment fail with err (nil clears)
func (m *PortOneMock) SetFetchError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchErr = err
}

// SetCancelError makes every RequestCancel fail with err (nil clears)
func (m *PortOneMock) SetCancelError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelErr = err
}

// SetCancelStatus makes RequestCancel answer with the given cancellation status.
// FAILED is returned as a rejection, REQUESTED leaves the payment untouched.
func (m *PortOneMock) SetCancelStatus(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelStatus = status
}

// Cancels returns the cancel requests received so far
func (m *PortOneMock) Cancels() []gateway.CancelRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]gateway.CancelRequest, len(m.cancels))
	copy(out, m.cancels)
	return out
}

func (m *PortOneMock) Configured() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.configured
}

func (m *PortOneMock) FetchPayment(ctx context.Context, transactionID string) (*gateway.ProviderPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.configured {
		return nil, gateway.ErrNotConfigured
	}
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}

	p, ok := m.payments[transactionID]
	if !ok {
		return nil, &gateway.ProviderError{
			Operation:  "fetch",
			StatusCode: 404,
			Type:       "PAYMENT_NOT_FOUND",
			Err:        gateway.ErrPaymentNotFound,
		}
	}
	return &p, nil
}

// RequestCancel applies the cancel to the stored payment the way the provider does:
// the refunded total grows and the status becomes PARTIAL_CANCELLED or CANCELLED.
func (m *PortOneMock) RequestCancel(ctx context.Context, req gateway.CancelRequest) (*gateway.ProviderCancelResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.configured {
		return nil, gateway.ErrNotConfigured
	}
	m.cancels = append(m.cancels, req)
	if m.cancelErr != nil {
		return nil, m.cancelErr
	}

	p, ok := m.payments[req.TransactionID]
	if !ok {
		return nil, &gateway.ProviderError{Operation: "cancel", StatusCode: 404, Err: gateway.ErrPaymentNotFound}
	}
	if req.Amount > p.Available() {
		return nil, &gateway.ProviderError{
			Operation:  "cancel",
			StatusCode: 409,
			Type:       "CANCELLABLE_AMOUNT_CONSISTENCY_BROKEN",
			Message:    fmt.Sprintf("cancellable %d", p.Available()),
			Err:        gateway.ErrRejected,
		}
	}

	now := time.Now().UTC()
	switch m.cancelStatus {
	case gateway.CancellationFailed:
		return nil, &gateway.ProviderError{
			Operation:  "cancel",
			StatusCode: 200,
			Type:       "CANCELLATION_FAILED",
			Err:        gateway.ErrRejected,
		}
	case gateway.CancellationRequested:
		return &gateway.ProviderCancelResult{
			CancellationID: uuid.NewString(),
			Status:         gateway.CancellationRequested,
			TotalAmount:    req.Amount,
			Reason:         req.Reason,
		}, nil
	}

	p.RefundedAmount += req.Amount
	if p.RefundedAmount >= p.TotalAmount {
		p.Status = gateway.StatusCancelled
	} else {
		p.Status = gateway.StatusPartialCancelled
	}
	p.RawStatus = string(p.Status)
	m.payments[p.ID] = p

	return &gateway.ProviderCancelResult{
		CancellationID: uuid.NewString(),
		Status:         gateway.CancellationSucceeded,
		TotalAmount:    req.Amount,
		Reason:         req.Reason,
		CancelledAt:    &now,
	}, nil
}
