package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"reservation-backend/internal/config"
	"reservation-backend/internal/shared"
	"reservation-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(redisOpt asynq.RedisClientOpt, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

func (s *Scheduler) RegisterJobs() error {
	return s.registerSyncVirtualAccountsJob()
}

// ================================================
// Sync pending virtual account deposits
// ================================================
// Virtual account deposits land asynchronously at the provider.
// The job re-checks pending rows and settles the ones the provider now reports as PAID.
func (s *Scheduler) registerSyncVirtualAccountsJob() error {
	payload, err := json.Marshal(shared.SyncVirtualAccountsPayload{
		Limit: s.jobConfig.SyncVirtualAccountsLimit,
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeSyncVirtualAccounts, payload)

	_, err = s.scheduler.Register(
		s.jobConfig.SyncVirtualAccountsCron,
		task,
		asynq.Queue(shared.QueuePayment),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
		asynq.Unique(5*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register SyncVirtualAccounts job", err)
		return err
	}

	logger.Info("Registered SyncVirtualAccounts", map[string]interface{}{
		"cron":  s.jobConfig.SyncVirtualAccountsCron,
		"limit": s.jobConfig.SyncVirtualAccountsLimit,
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
