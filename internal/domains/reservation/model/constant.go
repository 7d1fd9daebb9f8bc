package model

// =====================================================
// RESERVATION STATUS
// =====================================================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// allowedTransitions lists every legal status change.
// pending -> confirmed happens only after a verified payment.
var allowedTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
}

// CanTransition reports whether from -> to is a legal change.
func CanTransition(from, to Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// SourcesFor returns the statuses that may move to `to`.
func SourcesFor(to Status) []Status {
	var out []Status
	for from, targets := range allowedTransitions {
		for _, t := range targets {
			if t == to {
				out = append(out, from)
			}
		}
	}
	return out
}

// =====================================================
// ERROR CODES
// =====================================================

const (
	ErrCodeReservationNotFound = "RSV001"
	ErrCodeInvalidRequest      = "RSV002"
	ErrCodeProductUnavailable  = "RSV003"
	ErrCodeTooManyParticipants = "RSV004"
	ErrCodeInvalidTransition   = "RSV005"
	ErrCodeForbidden           = "RSV006"
	ErrCodePaymentRequired     = "RSV007"
	ErrCodeStore               = "RSV008"
)

const (
	DefaultProductName  = "상품명 없음"
	DefaultCustomerName = "고객명 없음"
)
