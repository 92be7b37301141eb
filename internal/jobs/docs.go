// Package jobs provides scheduled background tasks for the ordering service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to run the periodic work the service needs without a request driving it.
//
// # Available Jobs
//
// 1. DMSSyncJob - Runs a DMS reconciliation pass every DMS_SYNC_INTERVAL_MINUTES
// 2. LockExpiryJob - Releases edit locks whose heartbeat stopped, every EDIT_LOCK_SWEEP_SECONDS
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(syncHandler, coordinator, syncEvery, sweepEvery, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Both jobs use "@every" schedules wrapped in cron.SkipIfStillRunning, so a
// slow DMS never stacks passes. An interval of zero disables the DMS job;
// manual synchronization stays available.
//
// # Error Handling
//
// - A failed pass is logged and retried on the next tick
// - Per-document failures are part of the pass result and only logged
// - Failed job starts will stop any already running jobs
package jobs
