package portone

import "time"

// =====================================================
// WIRE TYPES (PortOne V2)
// =====================================================

type paymentAmount struct {
	Total     int64  `json:"total"`
	Paid      int64  `json:"paid"`
	Cancelled *int64 `json:"cancelled"`
}

type paymentMethod struct {
	Type string `json:"type"`
}

type cashReceipt struct {
	TotalAmount int64 `json:"totalAmount"`
}

type customerName struct {
	Full string `json:"full"`
}

type customer struct {
	ID    string        `json:"id"`
	Name  *customerName `json:"name"`
	Email string        `json:"email"`
}

type paymentResponse struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	Amount        paymentAmount  `json:"amount"`
	Currency      string         `json:"currency"`
	Method        *paymentMethod `json:"method"`
	PaymentMethod *paymentMethod `json:"paymentMethod"`
	CashReceipt   *cashReceipt   `json:"cashReceipt"`
	PaidAt        *time.Time     `json:"paidAt"`
	OrderName     string         `json:"orderName"`
	Customer      *customer      `json:"customer"`
}

type cancelRequest struct {
	Reason   string `json:"reason"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type cancellation struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	TotalAmount int64      `json:"totalAmount"`
	Reason      string     `json:"reason"`
	CancelledAt *time.Time `json:"cancelledAt"`
}

type cancelResponse struct {
	Cancellation cancellation `json:"cancellation"`
}

type errorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
