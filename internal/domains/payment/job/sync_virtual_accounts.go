package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"reservation-backend/internal/domains/payment/gateway"
	"reservation-backend/internal/domains/payment/service"
	"reservation-backend/internal/shared"
	"reservation-backend/internal/shared/utils"
	"reservation-backend/pkg/logger"
)

const defaultSyncLimit = 50

// ================================================
// SYNC VIRTUAL ACCOUNTS JOB HANDLER
// ================================================

type SyncVirtualAccountsHandler struct {
	settlementService service.SettlementService
}

func NewSyncVirtualAccountsHandler(settlementService service.SettlementService) *SyncVirtualAccountsHandler {
	return &SyncVirtualAccountsHandler{settlementService: settlementService}
}

// ProcessTask settles pending virtual account payments the provider now reports as paid.
// Missing credentials skip retries; store failures retry with asynq backoff.
func (h *SyncVirtualAccountsHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.SyncVirtualAccountsPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		logger.Error("Invalid sync payload", err)
		return err
	}
	if payload.Limit <= 0 {
		payload.Limit = defaultSyncLimit
	}

	summary, err := h.settlementService.SyncVirtualAccounts(ctx, payload.Limit)
	if err != nil {
		if errors.Is(err, gateway.ErrNotConfigured) {
			logger.Warn("Virtual account sync skipped: PortOne not configured", nil)
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("sync virtual accounts: %w", err)
	}

	if summary.Settled > 0 || summary.Failed > 0 {
		logger.Info("Virtual account sync applied changes", map[string]interface{}{
			"settled": summary.Settled,
			"failed":  summary.Failed,
		})
	}
	return nil
}
