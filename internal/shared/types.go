package shared

// Queues served by the worker, with asynq priority weights in cmd/worker
const (
	QueueCritical     = "critical"
	QueueNotification = "notification"
	QueuePayment      = "payment"
	QueueDefault      = "default"
)

// Task types
const (
	TypeNotifyPaymentCompleted     = "notification:payment_completed"
	TypeNotifyReservationCancelled = "notification:reservation_cancelled"
	TypeNotifyNewReservation       = "notification:new_reservation"
	TypeSyncVirtualAccounts        = "payment:sync_virtual_accounts"
)

// Broker routing keys
const (
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationCancelled = "reservation.cancelled"
	EventPaymentRefunded      = "payment.refunded"
)

// Role values carried in the JWT "role" claim and users.role
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// UserBasicInfo is the display identity of a user, shared across domains to avoid import cycles.
type UserBasicInfo struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// SyncVirtualAccountsPayload is the scheduled job payload.
type SyncVirtualAccountsPayload struct {
	Limit int `json:"limit"`
}
