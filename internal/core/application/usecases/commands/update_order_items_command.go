package commands

import (
	"errors"

	"ordering/internal/core/domain/model/actor"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/pkg/errs"
	"ordering/internal/pkg/guard"
)

var ErrUpdateOrderItemsCommandIsNotConstructed = errors.New(
	"UpdateOrderItemsCommand must be created via NewUpdateOrderItemsCommand constructor",
)

// UpdateOrderItemsCommand replaces the lines of a pending order.
type UpdateOrderItemsCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	items   []order.Item
	actor   actor.Actor

	guard guard.ConstructorGuard
}

func NewUpdateOrderItemsCommand(orderID kernel.UUID, items []order.Item, caller actor.Actor) (UpdateOrderItemsCommand, error) {
	cmd := UpdateOrderItemsCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setItems(items),
		cmd.setActor(caller),
	); err != nil {
		return UpdateOrderItemsCommand{}, err
	}

	return cmd, nil
}

func (c UpdateOrderItemsCommand) Validate() error {
	return c.guard.Validate(ErrUpdateOrderItemsCommandIsNotConstructed)
}

func (c UpdateOrderItemsCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Items returns a copy of the new lines.
func (c UpdateOrderItemsCommand) Items() []order.Item {
	items := make([]order.Item, len(c.items))
	copy(items, c.items)
	return items
}

func (c UpdateOrderItemsCommand) Actor() actor.Actor {
	return c.actor
}

func (c *UpdateOrderItemsCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *UpdateOrderItemsCommand) setItems(items []order.Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}

	c.items = make([]order.Item, len(items))
	copy(c.items, items)
	return nil
}

func (c *UpdateOrderItemsCommand) setActor(caller actor.Actor) error {
	if err := caller.Validate(); err != nil {
		return err
	}

	c.actor = caller
	return nil
}
