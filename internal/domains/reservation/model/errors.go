package model

import (
	"errors"
	"fmt"
)

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrInvalidTransition   = errors.New("invalid reservation status transition")
	ErrPaymentRequired     = errors.New("reservation has no completed payment")
	ErrForbidden           = errors.New("reservation belongs to another user")
)

type ReservationError struct {
	Code    string
	Message string
	Err     error
}

func (e *ReservationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ReservationError) Unwrap() error {
	return e.Err
}

func NewReservationError(code, message string, err error) *ReservationError {
	return &ReservationError{Code: code, Message: message, Err: err}
}

func NewReservationNotFoundError(id string) *ReservationError {
	return NewReservationError(ErrCodeReservationNotFound, "예약을 찾을 수 없습니다: "+id, ErrReservationNotFound)
}

func NewInvalidRequestError(err error) *ReservationError {
	return NewReservationError(ErrCodeInvalidRequest, err.Error(), err)
}

func NewProductUnavailableError() *ReservationError {
	return NewReservationError(ErrCodeProductUnavailable, "상품 정보를 찾을 수 없습니다", ErrProductNotFound)
}

func NewTooManyParticipantsError(max int) *ReservationError {
	return NewReservationError(ErrCodeTooManyParticipants, fmt.Sprintf("최대 %d명까지 예약 가능합니다", max), nil)
}

func NewInvalidTransitionError(from, to Status) *ReservationError {
	return NewReservationError(
		ErrCodeInvalidTransition,
		fmt.Sprintf("cannot change reservation from %s to %s", from, to),
		ErrInvalidTransition,
	)
}

func NewForbiddenError() *ReservationError {
	return NewReservationError(ErrCodeForbidden, "접근 권한이 없습니다", ErrForbidden)
}

func NewPaymentRequiredError() *ReservationError {
	return NewReservationError(ErrCodePaymentRequired, "결제가 완료되지 않은 예약은 승인할 수 없습니다", ErrPaymentRequired)
}

func NewStoreError(op string, err error) *ReservationError {
	return NewReservationError(ErrCodeStore, "예약 처리 중 오류가 발생했습니다 ("+op+")", err)
}
