package jobs

import (
	"fmt"
	"log/slog"

	"fooddispatch/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	dispatchJob *DispatchJob
}

// NewJobManager wires the jobs to the command handlers they drive.
func NewJobManager(
	matcher commands.PendingMatcher,
	dispatchSchedule string,
	dispatchBatchSize int,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		dispatchJob: NewDispatchJob(matcher, dispatchSchedule, dispatchBatchSize, logger),
	}
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if err := jm.dispatchJob.Start(); err != nil {
		return fmt.Errorf("failed to start dispatch job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs and waits for running ones.
func (jm *JobManager) StopAll() {
	jm.dispatchJob.Stop()
}
