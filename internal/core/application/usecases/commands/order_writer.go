package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ordering/internal/core/domain/model/actor"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/ports"
	"ordering/internal/pkg/keylock"
)

// ErrNothingToApply is returned by a Mutation that decided, after seeing the
// locked order, that there is nothing to write. The transaction is rolled
// back and nothing is broadcast.
var ErrNothingToApply = errors.New("nothing to apply")

// Mutation is one change to one order.
type Mutation struct {
	// Action names the change in the audit trail, e.g. "order.status.changed".
	Action string
	Actor  actor.Actor

	// Apply changes the order loaded under the row lock and returns the
	// statuses it moved through, empty when the status did not change.
	Apply func(o *order.Order, now time.Time) ([]order.Status, error)
}

// OrderWriter is the single write path for orders. Status transitions,
// content updates and reconciliation all go through it, so they share:
//   - the per-order key, taken before the transaction and released after
//     the broadcast, which orders writes and their events per order
//   - SELECT ... FOR UPDATE plus the version check in Update
//   - one orderUpdated event per status passed through, then an audit record
type OrderWriter struct {
	keys     *keylock.Locker
	notifier ports.Notifier
	audit    ports.AuditSink
	clock    kernel.Clock
	logger   *slog.Logger
}

func NewOrderWriter(
	keys *keylock.Locker,
	notifier ports.Notifier,
	audit ports.AuditSink,
	clock kernel.Clock,
	logger *slog.Logger,
) *OrderWriter {
	return &OrderWriter{
		keys:     keys,
		notifier: notifier,
		audit:    audit,
		clock:    clock,
		logger:   logger.With("component", "order_writer"),
	}
}

// Write applies m to orderID inside uow and returns the order as committed.
func (w *OrderWriter) Write(ctx context.Context, uow OrderUoW, orderID kernel.UUID, m Mutation) (*order.Order, error) {
	unlock := w.keys.Lock(orderID.String())
	defer unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()

	o, err := repo.GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}

	from := o.Status()
	now := w.clock.Now()

	steps, err := m.Apply(o, now)
	if err != nil {
		return nil, err
	}

	if err = repo.Update(ctx, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	w.announce(o, steps)
	w.record(ctx, m, o, from, steps, now)

	return o, nil
}

func (w *OrderWriter) announce(o *order.Order, steps []order.Status) {
	event := OrderUpdatedEvent(o)
	if len(steps) == 0 {
		w.notifier.NotifyOrderUpdated(event)
		return
	}
	for _, status := range steps {
		event.Status = status.String()
		w.notifier.NotifyOrderUpdated(event)
	}
}

func (w *OrderWriter) record(
	ctx context.Context,
	m Mutation,
	o *order.Order,
	from order.Status,
	steps []order.Status,
	now time.Time,
) {
	details := map[string]any{
		"status":  o.Status().String(),
		"totalHt": o.TotalHT().StringFixed(2),
	}
	if len(steps) > 0 {
		path := make([]string, 0, len(steps))
		for _, s := range steps {
			path = append(path, s.String())
		}
		details["from"] = from.String()
		details["path"] = path
	}
	if bl := o.BLNumber(); bl != nil {
		details["blNumber"] = *bl
	}
	if inv := o.InvoiceNumber(); inv != nil {
		details["invoiceNumber"] = *inv
	}

	w.audit.Record(ctx, ports.AuditRecord{
		Action:    m.Action,
		ActorID:   m.Actor.ID().String(),
		ActorName: m.Actor.DisplayName(),
		OrderID:   o.ID().String(),
		At:        now,
		Details:   details,
	})

	w.logger.InfoContext(ctx, "Order written",
		"action", m.Action,
		"order_id", o.ID().String(),
		"status", o.Status().String(),
		"actor", m.Actor.ID().String())
}

// OrderUpdatedEvent builds the realtime event describing o.
func OrderUpdatedEvent(o *order.Order) ports.OrderUpdatedEvent {
	return ports.OrderUpdatedEvent{
		OrderID:        o.ID(),
		CompanyID:      o.CompanyID(),
		Status:         o.Status().String(),
		TotalHT:        o.TotalHT(),
		LastModifiedAt: o.LastModifiedAt(),
		BLNumber:       o.BLNumber(),
		InvoiceNumber:  o.InvoiceNumber(),
	}
}
