package jobs

import (
	"fmt"
	"log/slog"
	"time"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	dmsSyncJob    *DMSSyncJob
	lockExpiryJob *LockExpiryJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(
	syncHandler SyncDMSHandler,
	sweeper LockSweeper,
	syncInterval time.Duration,
	sweepInterval time.Duration,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		dmsSyncJob:    NewDMSSyncJob(syncHandler, syncInterval, logger),
		lockExpiryJob: NewLockExpiryJob(sweeper, sweepInterval, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.lockExpiryJob.Start(); err != nil {
		return fmt.Errorf("failed to start lock expiry job: %w", err)
	}

	if err := jm.dmsSyncJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.lockExpiryJob.Stop()
		return fmt.Errorf("failed to start DMS sync job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.dmsSyncJob.Stop()
	jm.lockExpiryJob.Stop()
}
