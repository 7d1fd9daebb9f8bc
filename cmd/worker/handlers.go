package main

import (
	"github.com/hibiken/asynq"

	notifJob "reservation-backend/internal/domains/notification/job"
	paymentJob "reservation-backend/internal/domains/payment/job"
	"reservation-backend/internal/shared"
	"reservation-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	adminNotification   *notifJob.AdminNotificationHandler
	syncVirtualAccounts *paymentJob.SyncVirtualAccountsHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		adminNotification:   notifJob.NewAdminNotificationHandler(c.DeliveryService),
		syncVirtualAccounts: paymentJob.NewSyncVirtualAccountsHandler(c.SettlementService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Admin notifications
	for _, taskType := range notifJob.TaskTypes() {
		mux.Handle(taskType, h.adminNotification)
	}

	// Payments
	mux.Handle(shared.TypeSyncVirtualAccounts, h.syncVirtualAccounts)
}
