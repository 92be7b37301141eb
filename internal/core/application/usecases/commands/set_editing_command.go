package commands

import (
	"errors"

	"ordering/internal/core/domain/model/actor"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/pkg/guard"
)

var ErrSetEditingCommandIsNotConstructed = errors.New(
	"SetEditingCommand must be created via NewSetEditingCommand constructor",
)

// SetEditingCommand opens (isEditing true) or closes an editing session of
// the actor on one order.
type SetEditingCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	isEditing bool
	actor     actor.Actor

	guard guard.ConstructorGuard
}

func NewSetEditingCommand(orderID kernel.UUID, isEditing bool, caller actor.Actor) (SetEditingCommand, error) {
	cmd := SetEditingCommand{
		isEditing: isEditing,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setActor(caller),
	); err != nil {
		return SetEditingCommand{}, err
	}

	return cmd, nil
}

func (c SetEditingCommand) Validate() error {
	return c.guard.Validate(ErrSetEditingCommandIsNotConstructed)
}

func (c SetEditingCommand) OrderID() kernel.UUID { return c.orderID }
func (c SetEditingCommand) IsEditing() bool      { return c.isEditing }
func (c SetEditingCommand) Actor() actor.Actor   { return c.actor }

func (c *SetEditingCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *SetEditingCommand) setActor(caller actor.Actor) error {
	if err := caller.Validate(); err != nil {
		return err
	}

	c.actor = caller
	return nil
}
