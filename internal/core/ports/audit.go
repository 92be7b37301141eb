package ports

import (
	"context"
	"time"
)

// AuditRecord is one entry of the audit trail.
type AuditRecord struct {
	Action    string
	ActorID   string
	ActorName string
	OrderID   string
	At        time.Time
	Details   map[string]any
}

// AuditSink forwards audit records to the external audit log. Record is fire
// and forget: it must not block on the remote end and never fails the caller.
type AuditSink interface {
	Record(ctx context.Context, record AuditRecord)
}
