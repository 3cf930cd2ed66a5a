package jobs

import (
	"context"
	"log/slog"

	"fooddispatch/internal/core/application/usecases/commands"
	"fooddispatch/internal/core/domain/model/access"

	"github.com/robfig/cron/v3"
)

// DefaultDispatchSchedule runs a matching pass every five seconds.
const DefaultDispatchSchedule = "*/5 * * * * *"

// DispatchJob periodically re-offers unassigned ready orders to the dispatch
// matcher. Passes never overlap: a tick that finds the previous pass still
// running is skipped.
type DispatchJob struct {
	matcher   commands.PendingMatcher
	cron      *cron.Cron
	schedule  string
	batchSize int
	logger    *slog.Logger
}

// NewDispatchJob creates the job. schedule is a six-field cron expression
// (with seconds); an empty one means DefaultDispatchSchedule.
func NewDispatchJob(matcher commands.PendingMatcher, schedule string, batchSize int, logger *slog.Logger) *DispatchJob {
	if schedule == "" {
		schedule = DefaultDispatchSchedule
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DispatchJob{
		matcher:   matcher,
		cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		schedule:  schedule,
		batchSize: batchSize,
		logger:    logger.With("component", "dispatch_job"),
	}
}

// Start schedules the job. An invalid schedule is returned as an error.
func (j *DispatchJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		_, _ = j.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Dispatch job started", "schedule", j.schedule)
	return nil
}

// RunOnce performs a single matching pass as the system principal.
func (j *DispatchJob) RunOnce(ctx context.Context) (commands.MatchPendingResult, error) {
	cmd, err := commands.NewMatchPendingCommand(access.SystemPrincipal(), j.batchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "Dispatch job misconfigured", "error", err)
		return commands.MatchPendingResult{}, err
	}

	result, err := j.matcher.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Dispatch job failed", "error", err)
		return result, err
	}
	if result.Considered > 0 {
		j.logger.InfoContext(ctx, "Dispatch pass finished",
			"considered", result.Considered,
			"assigned", result.Assigned,
			"unmatched", result.Unmatched,
			"skipped", result.Skipped,
			"failed", result.Failed,
		)
	}
	return result, nil
}

// Stop unschedules the job and waits for a running pass to finish.
func (j *DispatchJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Dispatch job stopped")
}
