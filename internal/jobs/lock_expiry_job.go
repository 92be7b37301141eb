package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// LockSweeper releases edit locks whose heartbeat is older than their TTL
// and reports how many it released.
type LockSweeper interface {
	ExpireStale(ctx context.Context) int
}

// LockExpiryJob frees the edit locks of clients that went away without
// releasing them.
type LockExpiryJob struct {
	sweeper  LockSweeper
	interval time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewLockExpiryJob(sweeper LockSweeper, interval time.Duration, logger *slog.Logger) *LockExpiryJob {
	logger = logger.With("component", "lock_expiry_job")
	return &LockExpiryJob{
		sweeper:  sweeper,
		interval: interval,
		cron:     newCron(logger),
		logger:   logger,
	}
}

func (j *LockExpiryJob) Start() error {
	if j.interval <= 0 {
		return fmt.Errorf("lock sweep interval must be positive, got %s", j.interval)
	}

	if _, err := j.cron.AddFunc(fmt.Sprintf("@every %s", j.interval), j.run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Lock expiry job started", "interval", j.interval.String())
	return nil
}

func (j *LockExpiryJob) run() {
	ctx := context.Background()
	if released := j.sweeper.ExpireStale(ctx); released > 0 {
		j.logger.InfoContext(ctx, "Expired edit locks released", "count", released)
	}
}

func (j *LockExpiryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Lock expiry job stopped")
}
