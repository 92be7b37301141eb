// Package audit forwards audit records to the external audit log. Sinks are
// fire and forget: Record never blocks on the remote end and never fails.
package audit

import (
	"context"
	"log/slog"

	"ordering/internal/core/ports"
)

// LogSink writes audit records to a structured logger. Used when no broker
// is configured.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger.With("component", "audit")}
}

func (s *LogSink) Record(ctx context.Context, record ports.AuditRecord) {
	s.logger.InfoContext(ctx, "Audit",
		"action", record.Action,
		"actor_id", record.ActorID,
		"actor_name", record.ActorName,
		"order_id", record.OrderID,
		"at", record.At,
		"details", record.Details)
}
