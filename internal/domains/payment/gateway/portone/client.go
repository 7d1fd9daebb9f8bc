package portone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"reservation-backend/internal/domains/payment/gateway"
	"reservation-backend/internal/domains/payment/model"
	"reservation-backend/internal/infrastructure/metrics"
	"reservation-backend/pkg/logger"
)

// =====================================================
// PORTONE CLIENT
// =====================================================

type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates the PortOne V2 client.
// A missing secret is accepted here; every call then fails with gateway.ErrNotConfigured.
func NewClient(config *Config) gateway.PortOneGateway {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Configured() bool {
	return c.config.APISecret != ""
}

// =====================================================
// FETCH PAYMENT
// =====================================================

// FetchPayment calls GET /payments/{id}
func (c *Client) FetchPayment(ctx context.Context, transactionID string) (*gateway.ProviderPayment, error) {
	const op = "fetch"
	if !c.Configured() {
		return nil, gateway.ErrNotConfigured
	}

	started := time.Now()

	// Step 1: Call API
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.PaymentURL(transactionID), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	body, status, err := c.do(req)
	if err != nil {
		metrics.ObserveProvider(op, "transport_error", started)
		return nil, &gateway.ProviderError{Operation: op, Err: fmt.Errorf("%w: %v", gateway.ErrUnavailable, err)}
	}

	// Step 2: Map status
	if status != http.StatusOK {
		metrics.ObserveProvider(op, outcomeFor(status), started)
		perr := providerError(op, status, body)
		logger.Warn("PortOne payment lookup failed", map[string]interface{}{
			"transaction_id": transactionID,
			"status_code":    status,
			"error_type":     perr.Type,
		})
		return nil, perr
	}

	// Step 3: Parse
	var resp paymentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		metrics.ObserveProvider(op, "decode_error", started)
		return nil, &gateway.ProviderError{
			Operation:  op,
			StatusCode: status,
			Err:        fmt.Errorf("%w: decode payment: %v", gateway.ErrUnavailable, err),
		}
	}
	metrics.ObserveProvider(op, "ok", started)

	return toProviderPayment(transactionID, &resp), nil
}

// =====================================================
// REQUEST CANCEL
// =====================================================

// RequestCancel calls POST /payments/{id}/cancel
func (c *Client) RequestCancel(ctx context.Context, cancel gateway.CancelRequest) (*gateway.ProviderCancelResult, error) {
	const op = "cancel"
	if !c.Configured() {
		return nil, gateway.ErrNotConfigured
	}

	started := time.Now()

	payload, err := json.Marshal(cancelRequest{
		Reason:   cancel.Reason,
		Amount:   cancel.Amount,
		Currency: model.CurrencyKRW,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal cancel request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.CancelURL(cancel.TransactionID), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, status, err := c.do(req)
	if err != nil {
		metrics.ObserveProvider(op, "transport_error", started)
		return nil, &gateway.ProviderError{Operation: op, Err: fmt.Errorf("%w: %v", gateway.ErrUnavailable, err)}
	}

	if status < 200 || status > 299 {
		metrics.ObserveProvider(op, outcomeFor(status), started)
		perr := providerError(op, status, body)
		logger.Warn("PortOne cancel failed", map[string]interface{}{
			"transaction_id": cancel.TransactionID,
			"amount":         cancel.Amount,
			"status_code":    status,
			"error_type":     perr.Type,
		})
		return nil, perr
	}

	var resp cancelResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		// money moved; do not turn a successful cancel into an error
		logger.Warn("PortOne cancel response not decodable", map[string]interface{}{
			"transaction_id": cancel.TransactionID,
			"error":          err.Error(),
		})
	}

	// A 2xx reply can still carry a failed cancellation
	if resp.Cancellation.Status == gateway.CancellationFailed {
		metrics.ObserveProvider(op, "cancellation_failed", started)
		logger.Warn("PortOne cancellation failed", map[string]interface{}{
			"transaction_id":  cancel.TransactionID,
			"cancellation_id": resp.Cancellation.ID,
			"amount":          cancel.Amount,
		})
		return nil, &gateway.ProviderError{
			Operation:  op,
			StatusCode: status,
			Type:       "CANCELLATION_FAILED",
			Message:    resp.Cancellation.Reason,
			Err:        gateway.ErrRejected,
		}
	}
	metrics.ObserveProvider(op, "ok", started)

	result := &gateway.ProviderCancelResult{
		CancellationID: resp.Cancellation.ID,
		Status:         resp.Cancellation.Status,
		TotalAmount:    resp.Cancellation.TotalAmount,
		Reason:         resp.Cancellation.Reason,
		CancelledAt:    resp.Cancellation.CancelledAt,
	}
	if result.TotalAmount == 0 {
		result.TotalAmount = cancel.Amount
	}

	logger.Info("PortOne cancel accepted", map[string]interface{}{
		"transaction_id":  cancel.TransactionID,
		"cancellation_id": result.CancellationID,
		"status":          result.Status,
		"amount":          result.TotalAmount,
	})

	return result, nil
}

// =====================================================
// HELPERS
// =====================================================

// do sends one request. No retries.
func (c *Client) do(req *http.Request) ([]byte, int, error) {
	req.Header.Set("Authorization", c.config.authorization())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func providerError(op string, status int, body []byte) *gateway.ProviderError {
	var parsed errorResponse
	_ = json.Unmarshal(body, &parsed)

	perr := &gateway.ProviderError{
		Operation:  op,
		StatusCode: status,
		Type:       parsed.Type,
		Message:    parsed.Message,
	}

	switch {
	case status == http.StatusNotFound:
		perr.Err = gateway.ErrPaymentNotFound
	case status >= 500, status == http.StatusUnauthorized, status == http.StatusForbidden:
		perr.Err = gateway.ErrUnavailable
	case op == "cancel":
		perr.Err = gateway.ErrRejected
	default:
		perr.Err = gateway.ErrUnavailable
	}
	return perr
}

func outcomeFor(status int) string {
	switch {
	case status == http.StatusNotFound:
		return "not_found"
	case status >= 500:
		return "server_error"
	default:
		return "client_error"
	}
}

func toProviderPayment(requestedID string, resp *paymentResponse) *gateway.ProviderPayment {
	p := &gateway.ProviderPayment{
		ID:          resp.ID,
		Status:      gateway.ParsePaymentStatus(resp.Status),
		RawStatus:   resp.Status,
		TotalAmount: resp.Amount.Total,
		Currency:    resp.Currency,
		PaidAt:      resp.PaidAt,
		OrderName:   resp.OrderName,
	}
	if p.ID == "" {
		p.ID = requestedID
	}

	// Refunded total: amount.cancelled when reported, cash receipt total otherwise
	switch {
	case resp.Amount.Cancelled != nil:
		p.RefundedAmount = *resp.Amount.Cancelled
	case resp.CashReceipt != nil:
		p.RefundedAmount = resp.CashReceipt.TotalAmount
	}

	switch {
	case resp.Method != nil:
		p.MethodType = resp.Method.Type
	case resp.PaymentMethod != nil:
		p.MethodType = resp.PaymentMethod.Type
	}

	if resp.Customer != nil {
		p.Customer = gateway.ProviderCustomer{ID: resp.Customer.ID, Email: resp.Customer.Email}
		if resp.Customer.Name != nil {
			p.Customer.Name = resp.Customer.Name.Full
		}
	}

	return p
}

