package commands

import (
	"context"
	"time"

	"ordering/internal/core/domain/model/actor"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/pkg/errs"
)

// UpdateOrderItemsCommandHandler replaces the lines of a pending order.
//
// Client users must hold the edit lock of the order; internal users may
// edit without it but never while someone else holds it. A successful update
// touches lastModifiedAt and so restarts the validation cooldown.
type UpdateOrderItemsCommandHandler struct {
	uowFactory OrderUoWFactory
	writer     *OrderWriter
	locks      LockInspector
}

func NewUpdateOrderItemsCommandHandler(
	uowFactory OrderUoWFactory,
	writer *OrderWriter,
	locks LockInspector,
) UpdateOrderItemsCommandHandler {
	return UpdateOrderItemsCommandHandler{
		uowFactory: uowFactory,
		writer:     writer,
		locks:      locks,
	}
}

func (h *UpdateOrderItemsCommandHandler) Handle(ctx context.Context, cmd UpdateOrderItemsCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	caller := cmd.Actor()

	return h.writer.Write(ctx, h.uowFactory.Create(), cmd.OrderID(), Mutation{
		Action: "order.items.updated",
		Actor:  caller,
		Apply: func(o *order.Order, now time.Time) ([]order.Status, error) {
			if !caller.Can(actor.EditContent, o.CompanyID()) {
				return nil, errs.NewForbiddenError(string(actor.EditContent), caller.ID().String())
			}

			lock, held := h.locks.Holder(o.ID())
			switch {
			case held && !lock.IsHeldBy(caller.ID()):
				return nil, errs.NewLockHeldError(lock.HolderID().String(), lock.HolderName())
			case !held && !caller.IsInternal():
				return nil, errs.NewEditLockRequiredError()
			}

			return nil, o.ReplaceItems(cmd.Items(), now)
		},
	})
}
