package jobs

import (
	"context"
	"time"

	"maintenance/internal/core/application/usecases/commands"
	"maintenance/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const approvalReminderJobName = "approval_reminder"

// ApprovalReminderHandler is satisfied by
// commands.RemindPendingApprovalsCommandHandler.
type ApprovalReminderHandler interface {
	Handle(ctx context.Context, cmd commands.RemindPendingApprovalsCommand) (int, error)
}

// ApprovalReminderConfig is filled from the REMINDER_* settings.
type ApprovalReminderConfig struct {
	// Schedule is a cron expression with a leading seconds field.
	Schedule  string
	OlderThan time.Duration
	BatchSize int
	Timeout   time.Duration
}

// ApprovalReminderJob re-notifies target branches about approval requests
// that have been waiting longer than OlderThan.
type ApprovalReminderJob struct {
	handler ApprovalReminderHandler
	cfg     ApprovalReminderConfig
	cron    *cron.Cron
	logger  *zap.Logger
}

// NewApprovalReminderJob defaults the per-run timeout to one minute.
func NewApprovalReminderJob(handler ApprovalReminderHandler, cfg ApprovalReminderConfig, logger *zap.Logger) *ApprovalReminderJob {
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	return &ApprovalReminderJob{
		handler: handler,
		cfg:     cfg,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger: logger.With(zap.String("component", "approval_reminder_job")),
	}
}

func (j *ApprovalReminderJob) Name() string {
	return approvalReminderJobName
}

// Start schedules Run and starts the cron scheduler.
func (j *ApprovalReminderJob) Start() error {
	if _, err := j.cron.AddFunc(j.cfg.Schedule, j.Run); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("approval reminder job scheduled", zap.String("schedule", j.cfg.Schedule))
	return nil
}

// Stop halts the scheduler and waits for a running execution to finish.
func (j *ApprovalReminderJob) Stop() {
	<-j.cron.Stop().Done()
}

// Run performs one reminder pass.
func (j *ApprovalReminderJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.cfg.Timeout)
	defer cancel()

	started := time.Now()
	cmd, err := commands.NewRemindPendingApprovalsCommand(j.cfg.OlderThan, j.cfg.BatchSize)
	if err != nil {
		metrics.RecordJobRun(approvalReminderJobName, false, time.Since(started))
		j.logger.Error("invalid reminder settings", zap.Error(err))
		return
	}

	reminded, err := j.handler.Handle(ctx, cmd)
	metrics.RecordJobRun(approvalReminderJobName, err == nil, time.Since(started))
	if err != nil {
		j.logger.Error("approval reminder run failed", zap.Error(err))
		return
	}
	if reminded > 0 {
		j.logger.Info("reminded target branches of pending approvals", zap.Int("count", reminded))
	}
}
