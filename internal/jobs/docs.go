// Package jobs provides scheduled background tasks for the dispatch service.
//
// Jobs use github.com/robfig/cron/v3 with second-level schedules.
//
// # Available Jobs
//
// DispatchJob runs a matching pass over unassigned ready orders. Dispatch is
// attempted inline whenever an order becomes ready or a driver goes on shift;
// the job catches whatever those attempts left unmatched.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(matchPendingHandler, cfg.DispatchSchedule, cfg.DispatchBatchSize, logger)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed pass is logged and the next tick tries again. Orders left without a
// driver are not errors.
package jobs
