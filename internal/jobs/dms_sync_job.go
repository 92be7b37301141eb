package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ordering/internal/core/application/usecases/commands"
	"ordering/internal/core/domain/model/actor"

	"github.com/robfig/cron/v3"
)

// SyncDMSHandler runs one reconciliation pass.
type SyncDMSHandler interface {
	Handle(ctx context.Context, cmd commands.SyncDMSCommand) (commands.SyncDMSResult, error)
}

// DMSSyncJob reconciles orders with the DMS on a fixed interval, as the
// system actor. A pass still running when the next tick fires is not doubled.
// Stop interrupts a running pass between two orders.
type DMSSyncJob struct {
	handler  SyncDMSHandler
	interval time.Duration
	cron     *cron.Cron
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewDMSSyncJob creates the job. An interval of zero or less disables it.
func NewDMSSyncJob(handler SyncDMSHandler, interval time.Duration, logger *slog.Logger) *DMSSyncJob {
	logger = logger.With("component", "dms_sync_job")
	ctx, cancel := context.WithCancel(context.Background())
	return &DMSSyncJob{
		handler:  handler,
		interval: interval,
		cron:     newCron(logger),
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start schedules the job.
func (j *DMSSyncJob) Start() error {
	if j.interval <= 0 {
		j.logger.InfoContext(context.Background(), "DMS sync job disabled")
		return nil
	}

	if _, err := j.cron.AddFunc(fmt.Sprintf("@every %s", j.interval), j.run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "DMS sync job started", "interval", j.interval.String())
	return nil
}

func (j *DMSSyncJob) run() {
	ctx := j.ctx

	cmd, err := commands.NewSyncDMSCommand(actor.SystemActor())
	if err != nil {
		j.logger.ErrorContext(ctx, "DMS sync job failed", "error", err)
		return
	}

	result, err := j.handler.Handle(ctx, cmd)
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		j.logger.InfoContext(ctx, "DMS sync job interrupted by shutdown")
		return
	}
	if err != nil {
		j.logger.ErrorContext(ctx, "DMS sync job failed", "error", err)
		return
	}

	for _, failure := range result.Errors {
		j.logger.WarnContext(ctx, "DMS document not applied",
			"order_id", failure.OrderID,
			"external_ref", failure.ExternalRef,
			"error", failure.Error,
		)
	}
	j.logger.InfoContext(ctx, "DMS sync job finished", "synced", result.Synced, "errors", len(result.Errors))
}

// Stop cancels a running pass, stops the scheduler and waits for the pass to
// return.
func (j *DMSSyncJob) Stop() {
	j.cancel()
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "DMS sync job stopped")
}
