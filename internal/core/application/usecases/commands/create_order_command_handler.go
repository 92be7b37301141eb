package commands

import (
	"context"

	"ordering/internal/core/domain/model/actor"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/ports"
	"ordering/internal/pkg/errs"
	"ordering/internal/pkg/keylock"
)

// CreateOrderCommandHandler handles the business logic for order creation.
// Creates new orders in PENDING status, announces them on the company channel
// and records an audit entry. The order's key is held from the insert until
// the announcement, like every other write to the order.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(keys, uowFactory, notifier, audit, clock)
//	created, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return fmt.Errorf("order creation failed: %w", err)
//	}
type CreateOrderCommandHandler struct {
	keys       *keylock.Locker
	uowFactory OrderUoWFactory
	notifier   ports.Notifier
	audit      ports.AuditSink
	clock      kernel.Clock
}

// NewCreateOrderCommandHandler creates a handler for order creation operations.
func NewCreateOrderCommandHandler(
	keys *keylock.Locker,
	uowFactory OrderUoWFactory,
	notifier ports.Notifier,
	audit ports.AuditSink,
	clock kernel.Clock,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		keys:       keys,
		uowFactory: uowFactory,
		notifier:   notifier,
		audit:      audit,
		clock:      clock,
	}
}

// Handle processes the order creation command.
// The actor must be allowed to edit content of the target company.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	caller := cmd.Actor()
	if !caller.Can(actor.EditContent, cmd.CompanyID()) {
		return nil, errs.NewForbiddenError("create order", caller.ID().String())
	}

	now := h.clock.Now()
	created, err := order.NewOrder(cmd.OrderID(), cmd.CompanyID(), cmd.DMSRef(), cmd.Items(), now)
	if err != nil {
		return nil, err
	}

	unlock := h.keys.Lock(created.ID().String())
	defer unlock()

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, created); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.notifier.NotifyOrderUpdated(OrderUpdatedEvent(created))
	h.audit.Record(ctx, ports.AuditRecord{
		Action:    "order.created",
		ActorID:   caller.ID().String(),
		ActorName: caller.DisplayName(),
		OrderID:   created.ID().String(),
		At:        now,
		Details: map[string]any{
			"companyId": created.CompanyID().String(),
			"totalHt":   created.TotalHT().StringFixed(2),
			"items":     len(created.Items()),
		},
	})

	return created, nil
}
