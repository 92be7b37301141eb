package commands

import (
	"errors"

	"ordering/internal/core/domain/model/actor"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/pkg/guard"
)

var ErrRequestTransitionCommandIsNotConstructed = errors.New(
	"RequestTransitionCommand must be created via NewRequestTransitionCommand constructor",
)

// RequestTransitionCommand asks to move one order to a new lifecycle status
// on behalf of an actor.
//
// Example:
//
//	cmd, err := NewRequestTransitionCommand(orderID, order.Validated, caller)
//	if err != nil {
//	    return fmt.Errorf("invalid transition request: %w", err)
//	}
//	updated, err := handler.Handle(ctx, cmd)
type RequestTransitionCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	target  order.Status
	actor   actor.Actor

	guard guard.ConstructorGuard
}

func NewRequestTransitionCommand(orderID kernel.UUID, target order.Status, caller actor.Actor) (RequestTransitionCommand, error) {
	cmd := RequestTransitionCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setTarget(target),
		cmd.setActor(caller),
	); err != nil {
		return RequestTransitionCommand{}, err
	}

	return cmd, nil
}

func (c RequestTransitionCommand) Validate() error {
	return c.guard.Validate(ErrRequestTransitionCommandIsNotConstructed)
}

func (c RequestTransitionCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c RequestTransitionCommand) Target() order.Status {
	return c.target
}

func (c RequestTransitionCommand) Actor() actor.Actor {
	return c.actor
}

func (c *RequestTransitionCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *RequestTransitionCommand) setTarget(target order.Status) error {
	if err := target.Validate(); err != nil {
		return err
	}

	c.target = target
	return nil
}

func (c *RequestTransitionCommand) setActor(caller actor.Actor) error {
	if err := caller.Validate(); err != nil {
		return err
	}

	c.actor = caller
	return nil
}
