package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"reservation-backend/internal/domains/payment/model"
)

// =====================================================
// GATEWAY INTERFACE
// =====================================================

// PortOneGateway is the transport to the payment provider.
// Calls are single attempts; callers dedupe by transaction id.
type PortOneGateway interface {
	// Configured reports whether the API secret is present
	Configured() bool

	// FetchPayment returns the provider's record for a payment id
	FetchPayment(ctx context.Context, transactionID string) (*ProviderPayment, error)

	// RequestCancel refunds amount of a paid payment
	RequestCancel(ctx context.Context, req CancelRequest) (*ProviderCancelResult, error)
}

// =====================================================
// ERRORS
// =====================================================

var (
	ErrNotConfigured   = errors.New("portone api secret not configured")
	ErrUnavailable     = errors.New("portone unavailable")
	ErrPaymentNotFound = errors.New("portone payment not found")
	ErrRejected        = errors.New("portone rejected the request")
)

// ProviderError carries the HTTP status and provider message.
// Unwrap yields one of the sentinels above.
type ProviderError struct {
	Operation  string
	StatusCode int
	Type       string
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s: status %d %s %s: %v", e.Operation, e.StatusCode, e.Type, e.Message, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// =====================================================
// PAYMENT STATUS
// =====================================================

// PaymentStatus is the provider payment state.
// Values outside the known set parse to StatusUnrecognized.
type PaymentStatus string

const (
	StatusReady                PaymentStatus = "READY"
	StatusPayPending           PaymentStatus = "PAY_PENDING"
	StatusPaid                 PaymentStatus = "PAID"
	StatusVirtualAccountIssued PaymentStatus = "VIRTUAL_ACCOUNT_ISSUED"
	StatusPartialCancelled     PaymentStatus = "PARTIAL_CANCELLED"
	StatusCancelled            PaymentStatus = "CANCELLED"
	StatusFailed               PaymentStatus = "FAILED"
	StatusUnrecognized         PaymentStatus = "UNRECOGNIZED"
)

func ParsePaymentStatus(raw string) PaymentStatus {
	switch s := PaymentStatus(strings.ToUpper(strings.TrimSpace(raw))); s {
	case StatusReady, StatusPayPending, StatusPaid, StatusVirtualAccountIssued,
		StatusPartialCancelled, StatusCancelled, StatusFailed:
		return s
	default:
		return StatusUnrecognized
	}
}

// Refundable reports whether the provider still holds captured funds.
func (s PaymentStatus) Refundable() bool {
	return s == StatusPaid || s == StatusPartialCancelled
}

// =====================================================
// PROVIDER TYPES
// =====================================================

type ProviderCustomer struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// ProviderPayment is the subset of the provider payment record the engines consume.
type ProviderPayment struct {
	ID        string        `json:"id"`
	Status    PaymentStatus `json:"status"`
	RawStatus string        `json:"raw_status"`

	TotalAmount    int64  `json:"total_amount"`
	RefundedAmount int64  `json:"refunded_amount"`
	Currency       string `json:"currency"`

	MethodType string     `json:"method_type,omitempty"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	OrderName  string     `json:"order_name,omitempty"`

	Customer ProviderCustomer `json:"customer"`
}

// Available is the amount still refundable.
func (p *ProviderPayment) Available() int64 {
	return p.TotalAmount - p.RefundedAmount
}

// Method maps the provider method type onto the local method set.
func (p *ProviderPayment) Method() string {
	return NormalizeMethod(p.MethodType)
}

// NormalizeMethod maps PortOne method types (PaymentMethodCard, ...) to local values.
// Easy pay and unknown types are recorded as card.
func NormalizeMethod(methodType string) string {
	switch strings.TrimPrefix(methodType, "PaymentMethod") {
	case "Transfer":
		return model.MethodTransfer
	case "Mobile":
		return model.MethodMobile
	case "VirtualAccount":
		return model.MethodVirtualAccount
	default:
		return model.MethodCard
	}
}

type CancelRequest struct {
	TransactionID string
	Amount        int64
	Reason        string
}

// Cancellation states reported by the provider
const (
	CancellationSucceeded = "SUCCEEDED"
	CancellationRequested = "REQUESTED"
	CancellationFailed    = "FAILED"
)

type ProviderCancelResult struct {
	CancellationID string     `json:"cancellation_id"`
	Status         string     `json:"status"`
	TotalAmount    int64      `json:"total_amount"`
	Reason         string     `json:"reason,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
}

// Pending reports a cancel the provider accepted but has not completed.
// No money has moved yet.
func (r *ProviderCancelResult) Pending() bool {
	return r.Status == CancellationRequested
}
