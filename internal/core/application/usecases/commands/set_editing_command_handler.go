package commands

import (
	"context"

	"ordering/internal/core/application/editing"
	"ordering/internal/core/domain/model/actor"
	"ordering/internal/core/domain/model/editlock"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/pkg/errs"
)

// EditLockCoordinator is the part of the edit lock coordinator used by
// SetEditingCommandHandler.
type EditLockCoordinator interface {
	LockInspector
	Acquire(ctx context.Context, orderID, companyID kernel.UUID, holder actor.Actor) (editlock.Lock, error)
	Release(ctx context.Context, orderID, userID kernel.UUID) bool
}

// SetEditingCommandHandler opens or closes an editing session.
//
// The order must exist and be visible to the actor. Opening a session held by
// someone else fails with errs.LockHeldError; closing a session the actor does
// not hold changes nothing. The returned state is the lock state after the
// call, whoever holds it.
type SetEditingCommandHandler struct {
	uowFactory  OrderUoWFactory
	coordinator EditLockCoordinator
}

func NewSetEditingCommandHandler(uowFactory OrderUoWFactory, coordinator EditLockCoordinator) SetEditingCommandHandler {
	return SetEditingCommandHandler{
		uowFactory:  uowFactory,
		coordinator: coordinator,
	}
}

func (h *SetEditingCommandHandler) Handle(ctx context.Context, cmd SetEditingCommand) (order.EditingState, error) {
	if err := cmd.Validate(); err != nil {
		return order.EditingState{}, err
	}

	o, err := h.uowFactory.Create().OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return order.EditingState{}, err
	}

	caller := cmd.Actor()
	if !caller.CanSee(o.CompanyID()) {
		// Orders of other companies do not exist for the caller.
		return order.EditingState{}, errs.NewObjectNotFoundError("order", cmd.OrderID().String())
	}

	if !cmd.IsEditing() {
		h.coordinator.Release(ctx, o.ID(), caller.ID())
		lock, held := h.coordinator.Holder(o.ID())
		return editing.State(lock, held), nil
	}

	if !caller.Can(actor.EditContent, o.CompanyID()) {
		return order.EditingState{}, errs.NewForbiddenError(string(actor.EditContent), caller.ID().String())
	}

	lock, err := h.coordinator.Acquire(ctx, o.ID(), o.CompanyID(), caller)
	if err != nil {
		return order.EditingState{}, err
	}
	return editing.State(lock, true), nil
}
