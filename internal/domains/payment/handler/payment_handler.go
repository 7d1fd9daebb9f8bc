package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"reservation-backend/internal/domains/payment/model"
	"reservation-backend/internal/domains/payment/service"
	"reservation-backend/internal/shared/response"
	"reservation-backend/pkg/logger"
)

// =====================================================
// PAYMENT HANDLER
// =====================================================
type PaymentHandler struct {
	settlementService service.SettlementService
	refundService     service.RefundService
	queryService      service.QueryService
}

func NewPaymentHandler(
	settlementService service.SettlementService,
	refundService service.RefundService,
	queryService service.QueryService,
) *PaymentHandler {
	return &PaymentHandler{
		settlementService: settlementService,
		refundService:     refundService,
		queryService:      queryService,
	}
}

// =====================================================
// SETTLEMENT (client callback after checkout)
// =====================================================

// CompletePayment verifies a payment with PortOne and settles the reservation.
// POST /api/v1/payments/complete
//
// The body is written without the admin envelope: the checkout client reads
// {success, reservation, payment} or {success, status, payment} and {error} on failure.
func (h *PaymentHandler) CompletePayment(c *gin.Context) {
	// Step 1: Bind body
	var req model.SettlePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "필수 정보가 누락되었습니다."})
		return
	}

	// Step 2: Settle
	result, err := h.settlementService.Settle(c.Request.Context(), req)
	if err != nil {
		statusCode, message := mapPaymentError(err)
		c.JSON(statusCode, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, result)
}

// =====================================================
// ADMIN
// =====================================================

// RefundPayment cancels all or part of a payment at PortOne.
// POST /api/v1/admin/payments/:transaction_id/refund
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	var req model.RefundPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, model.ErrCodeInvalidRequest, "필수 정보가 누락되었습니다.")
		return
	}
	req.TransactionID = c.Param("transaction_id")

	result, err := h.refundService.Refund(c.Request.Context(), req)
	if err != nil {
		h.writeAdminError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, result.Message, result.Data)
}

// GetPayment returns the stored payment row.
// GET /api/v1/admin/payments/:transaction_id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	p, err := h.queryService.GetPayment(c.Request.Context(), c.Param("transaction_id"))
	if err != nil {
		h.writeAdminError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// GetProviderPayment returns PortOne's live view of a payment.
// GET /api/v1/admin/payments/:transaction_id/provider
func (h *PaymentHandler) GetProviderPayment(c *gin.Context) {
	p, err := h.queryService.GetProviderPayment(c.Request.Context(), c.Param("transaction_id"))
	if err != nil {
		h.writeAdminError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// =====================================================
// HELPER FUNCTIONS
// =====================================================

func (h *PaymentHandler) writeAdminError(c *gin.Context, err error) {
	statusCode, message := mapPaymentError(err)

	var payErr *model.PaymentError
	if !errors.As(err, &payErr) {
		response.InternalServerError(c, message)
		return
	}
	if len(payErr.Details) > 0 {
		response.ErrorWithDetails(c, statusCode, payErr.Code, message, payErr.Details)
		return
	}
	response.Error(c, statusCode, payErr.Code, message)
}

// mapPaymentError maps payment errors to an HTTP status and a client-safe message.
// Causes are logged, never returned.
func mapPaymentError(err error) (int, string) {
	var payErr *model.PaymentError
	if !errors.As(err, &payErr) {
		logger.Error("Unexpected payment error", err)
		return http.StatusInternalServerError, "결제 처리 중 오류가 발생했습니다."
	}

	switch payErr.Code {
	case model.ErrCodeInvalidRequest,
		model.ErrCodeAmountMismatch,
		model.ErrCodeUnsupportedStatus,
		model.ErrCodeRefundCeilingExceeded,
		model.ErrCodeNotRefundable:
		return http.StatusBadRequest, payErr.Message
	case model.ErrCodePaymentNotFound,
		model.ErrCodeProviderPaymentNotFound,
		model.ErrCodeReservationNotFound:
		return http.StatusNotFound, payErr.Message
	case model.ErrCodeTransactionMismatch,
		model.ErrCodeReservationNotConfirmable:
		return http.StatusConflict, payErr.Message
	default:
		// configuration, provider and store failures
		logger.ErrorWithFields("Payment request failed", payErr, map[string]interface{}{"code": payErr.Code})
		return http.StatusInternalServerError, payErr.Message
	}
}
