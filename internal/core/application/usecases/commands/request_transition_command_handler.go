package commands

import (
	"context"
	"time"

	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/domain/services"
)

// RequestTransitionCommandHandler applies a manual status transition.
//
// The order is re-read under its key and row lock, then checked by the
// TransitionGuard against the live edit lock, so a validation can never slip
// in while someone edits the order or before the cooldown has elapsed.
// Status changes are broadcast as orderUpdated and audited.
type RequestTransitionCommandHandler struct {
	uowFactory OrderUoWFactory
	writer     *OrderWriter
	locks      LockInspector
	guard      services.TransitionGuard
}

func NewRequestTransitionCommandHandler(
	uowFactory OrderUoWFactory,
	writer *OrderWriter,
	locks LockInspector,
	guard services.TransitionGuard,
) RequestTransitionCommandHandler {
	return RequestTransitionCommandHandler{
		uowFactory: uowFactory,
		writer:     writer,
		locks:      locks,
		guard:      guard,
	}
}

// Handle returns the order as committed.
func (h *RequestTransitionCommandHandler) Handle(ctx context.Context, cmd RequestTransitionCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.writer.Write(ctx, h.uowFactory.Create(), cmd.OrderID(), Mutation{
		Action: "order.status.changed",
		Actor:  cmd.Actor(),
		Apply: func(o *order.Order, now time.Time) ([]order.Status, error) {
			req := services.TransitionRequest{
				Order:  o,
				Target: cmd.Target(),
				Actor:  cmd.Actor(),
				Now:    now,
			}
			if lock, held := h.locks.Holder(o.ID()); held {
				req.Lock = &lock
			}

			if err := h.guard.Check(req); err != nil {
				return nil, err
			}
			if err := o.TransitionTo(cmd.Target(), now); err != nil {
				return nil, err
			}
			return []order.Status{cmd.Target()}, nil
		},
	})
}
