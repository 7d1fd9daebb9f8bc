package model

import (
	"errors"
	"fmt"

	"reservation-backend/internal/shared/utils"
)

// =====================================================
// PREDEFINED ERRORS
// =====================================================

var (
	ErrPaymentNotFound           = errors.New("payment not found")
	ErrDuplicateTransaction      = errors.New("payment with this transaction id already exists")
	ErrTransactionMismatch       = errors.New("transaction id bound to another reservation")
	ErrReservationNotFound       = errors.New("reservation not found")
	ErrReservationNotConfirmable = errors.New("reservation cannot be confirmed")
)

// =====================================================
// CUSTOM PAYMENT ERROR
// =====================================================

type PaymentError struct {
	Code    string
	Message string
	Err     error
	Details map[string]interface{}
}

func (e *PaymentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

// NewPaymentError creates a new payment error
func NewPaymentError(code, message string, err error) *PaymentError {
	return &PaymentError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// =====================================================
// ERROR CONSTRUCTORS
// =====================================================

func NewPaymentNotFoundError(transactionID string) *PaymentError {
	return NewPaymentError(
		ErrCodePaymentNotFound,
		fmt.Sprintf("결제 정보를 찾을 수 없습니다: %s", transactionID),
		ErrPaymentNotFound,
	)
}

func NewInvalidRequestError(err error) *PaymentError {
	return NewPaymentError(ErrCodeInvalidRequest, missingFields, err)
}

func NewConfigurationError(err error) *PaymentError {
	return NewPaymentError(ErrCodeConfiguration, "포트원 API 설정이 누락되었습니다.", err)
}

func NewProviderUnavailableError(err error) *PaymentError {
	return NewPaymentError(ErrCodeProviderUnavailable, "포트원 API 호출 실패", err)
}

func NewProviderPaymentNotFoundError(transactionID string, err error) *PaymentError {
	return NewPaymentError(
		ErrCodeProviderPaymentNotFound,
		fmt.Sprintf("포트원 결제 내역을 찾을 수 없습니다: %s", transactionID),
		err,
	)
}

func NewProviderRejectedError(err error) *PaymentError {
	return NewPaymentError(ErrCodeProviderRejected, "환불 처리 실패", err)
}

func NewAmountMismatchError(expected, actual int64) *PaymentError {
	e := NewPaymentError(ErrCodeAmountMismatch, "결제 금액이 불일치합니다.", nil)
	e.Details = map[string]interface{}{"expected": expected, "actual": actual}
	return e
}

func NewUnsupportedStatusError(status string) *PaymentError {
	return NewPaymentError(
		ErrCodeUnsupportedStatus,
		fmt.Sprintf("처리할 수 없는 결제 상태입니다: %s", status),
		nil,
	)
}

// NewRefundCeilingExceededError states the refundable amount in the message.
func NewRefundCeilingExceededError(available int64) *PaymentError {
	e := NewPaymentError(
		ErrCodeRefundCeilingExceeded,
		fmt.Sprintf("환불 가능 금액을 초과했습니다. (가능: %s)", utils.FormatWon(available)),
		nil,
	)
	e.Details = map[string]interface{}{"available": available}
	return e
}

func NewNotRefundableError(status string) *PaymentError {
	e := NewPaymentError(ErrCodeNotRefundable, "완료된 결제만 환불이 가능합니다.", nil)
	e.Details = map[string]interface{}{"provider_status": status}
	return e
}

// NewPartialFailureError marks a provider-side change the local store did not record.
func NewPartialFailureError(op string, err error) *PaymentError {
	return NewPaymentError(
		ErrCodePartialFailure,
		"환불은 완료되었으나 결제 상태 반영에 실패했습니다 ("+op+")",
		err,
	)
}

func NewStoreError(op string, err error) *PaymentError {
	return NewPaymentError(ErrCodeStore, "결제 처리 중 오류가 발생했습니다 ("+op+")", err)
}

func NewTransactionMismatchError(transactionID string) *PaymentError {
	return NewPaymentError(
		ErrCodeTransactionMismatch,
		fmt.Sprintf("이미 다른 예약에 사용된 결제입니다: %s", transactionID),
		ErrTransactionMismatch,
	)
}

func NewReservationNotFoundError(reservationID string) *PaymentError {
	return NewPaymentError(
		ErrCodeReservationNotFound,
		fmt.Sprintf("예약을 찾을 수 없습니다: %s", reservationID),
		ErrReservationNotFound,
	)
}

func NewReservationNotConfirmableError(err error) *PaymentError {
	return NewPaymentError(
		ErrCodeReservationNotConfirmable,
		"확정할 수 없는 예약 상태입니다.",
		fmt.Errorf("%w: %v", ErrReservationNotConfirmable, err),
	)
}
