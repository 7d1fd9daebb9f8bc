package model

// =====================================================
// PAYMENT STATUS
// =====================================================
type Status string

const (
	StatusPending           Status = "pending"
	StatusCompleted         Status = "completed"
	StatusFailed            Status = "failed"
	StatusRefunded          Status = "refunded"
	StatusPartiallyRefunded Status = "partially_refunded"
)

// IsSettled reports whether money has been captured for this row.
func (s Status) IsSettled() bool {
	return s == StatusCompleted || s == StatusRefunded || s == StatusPartiallyRefunded
}

// =====================================================
// PAYMENT METHODS
// =====================================================
const (
	MethodCard           = "card"
	MethodTransfer       = "transfer"
	MethodMobile         = "mobile"
	MethodVirtualAccount = "virtual_account"
)

const (
	ProviderPortOne = "portone"
	CurrencyKRW     = "KRW"

	DefaultRefundReason = "관리자 환불"

	RefundPendingWarning = "포트원에서 환불이 처리 중입니다. 완료 후 결제 상태를 확인해 주세요."

	// SettleStatusVirtualAccountIssued is echoed to the client for deferred payments
	SettleStatusVirtualAccountIssued = "virtual_account_issued"
)

// =====================================================
// INTERNAL ERROR CODES
// =====================================================
const (
	ErrCodePaymentNotFound = "PAY001"
	ErrCodeInvalidRequest  = "PAY002"

	// Provider errors
	ErrCodeConfiguration           = "PAY003"
	ErrCodeProviderUnavailable     = "PAY004"
	ErrCodeProviderPaymentNotFound = "PAY005"
	ErrCodeProviderRejected        = "PAY006"

	// Verification errors
	ErrCodeAmountMismatch    = "PAY007"
	ErrCodeUnsupportedStatus = "PAY008"

	// Refund errors
	ErrCodeRefundCeilingExceeded = "PAY009"
	ErrCodeNotRefundable         = "PAY010"
	ErrCodePartialFailure        = "PAY011"

	// Store errors
	ErrCodeStore                     = "PAY012"
	ErrCodeTransactionMismatch       = "PAY013"
	ErrCodeReservationNotFound       = "PAY014"
	ErrCodeReservationNotConfirmable = "PAY015"
)
