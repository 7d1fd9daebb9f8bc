package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"reservation-backend/internal/domains/reservation/model"
	"reservation-backend/internal/domains/reservation/service"
	"reservation-backend/internal/shared/middleware"
	"reservation-backend/internal/shared/response"
	"reservation-backend/pkg/logger"
)

// =====================================================
// RESERVATION HANDLER
// =====================================================
type ReservationHandler struct {
	reservationService service.ReservationService
}

func NewReservationHandler(reservationService service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService}
}

// =====================================================
// CUSTOMER
// =====================================================

// CreateReservation books a product for the authenticated user.
// POST /api/v1/reservations
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "인증이 필요합니다")
		return
	}

	var req model.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, model.ErrCodeInvalidRequest, "필수 정보가 누락되었습니다")
		return
	}

	res, err := h.reservationService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, res)
}

// GetReservation returns a reservation with its product, customer and payments.
// GET /api/v1/reservations/:id
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "인증이 필요합니다")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, model.ErrCodeInvalidRequest, "Reservation ID must be a valid UUID")
		return
	}

	detail, err := h.reservationService.GetDetail(c.Request.Context(), userID, middleware.IsAdmin(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, detail)
}

// =====================================================
// ADMIN
// =====================================================

// ApproveReservation POST /api/v1/admin/reservations/:id/approve
func (h *ReservationHandler) ApproveReservation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, model.ErrCodeInvalidRequest, "Reservation ID must be a valid UUID")
		return
	}

	res, err := h.reservationService.Approve(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "예약이 승인되었습니다.", res)
}

// RejectReservation POST /api/v1/admin/reservations/:id/reject
func (h *ReservationHandler) RejectReservation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, model.ErrCodeInvalidRequest, "Reservation ID must be a valid UUID")
		return
	}

	// body is optional
	var req model.RejectReservationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, model.ErrCodeInvalidRequest, "Invalid request body")
			return
		}
	}

	res, err := h.reservationService.Reject(c.Request.Context(), id, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "예약이 거절되었습니다.", res)
}

// CompleteReservation POST /api/v1/admin/reservations/:id/complete
func (h *ReservationHandler) CompleteReservation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, model.ErrCodeInvalidRequest, "Reservation ID must be a valid UUID")
		return
	}

	res, err := h.reservationService.Complete(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "이용이 완료 처리되었습니다.", res)
}

// =====================================================
// HELPERS
// =====================================================

func getUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(middleware.ContextUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func (h *ReservationHandler) handleServiceError(c *gin.Context, err error) {
	var rsvErr *model.ReservationError
	if !errors.As(err, &rsvErr) {
		logger.Error("Unexpected reservation error", err)
		response.InternalServerError(c, "예약 처리 중 오류가 발생했습니다")
		return
	}

	status := http.StatusInternalServerError
	switch rsvErr.Code {
	case model.ErrCodeInvalidRequest, model.ErrCodeTooManyParticipants:
		status = http.StatusBadRequest
	case model.ErrCodeReservationNotFound, model.ErrCodeProductUnavailable:
		status = http.StatusNotFound
	case model.ErrCodeForbidden:
		status = http.StatusForbidden
	case model.ErrCodeInvalidTransition, model.ErrCodePaymentRequired:
		status = http.StatusConflict
	case model.ErrCodeStore:
		logger.Error("Reservation store error", rsvErr)
	}

	response.Error(c, status, rsvErr.Code, rsvErr.Message)
}
