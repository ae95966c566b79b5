package jobs

import (
	"fmt"

	"go.uber.org/zap"
)

// Job is a scheduled background task.
type Job interface {
	Name() string
	Start() error
	Stop()
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	jobs   []Job
	logger *zap.Logger
}

// NewJobManager keeps the jobs in start order.
func NewJobManager(logger *zap.Logger, jobs ...Job) *JobManager {
	return &JobManager{jobs: jobs, logger: logger}
}

// StartAll starts all scheduled jobs in order. When one fails to start the
// jobs already running are stopped again.
func (jm *JobManager) StartAll() error {
	for i, job := range jm.jobs {
		if err := job.Start(); err != nil {
			for _, started := range jm.jobs[:i] {
				started.Stop()
			}
			return fmt.Errorf("failed to start %s job: %w", job.Name(), err)
		}
		jm.logger.Info("job started", zap.String("job", job.Name()))
	}
	return nil
}

// StopAll stops all scheduled jobs and waits for running executions.
func (jm *JobManager) StopAll() {
	for _, job := range jm.jobs {
		job.Stop()
		jm.logger.Info("job stopped", zap.String("job", job.Name()))
	}
}
