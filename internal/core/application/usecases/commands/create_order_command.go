package commands

import (
	"errors"
	"strings"

	"ordering/internal/core/domain/model/actor"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/pkg/errs"
	"ordering/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrItemsAreRequired = errs.NewValueIsRequiredError("items")
)

// CreateOrderCommand represents a request to place a new order for a client
// company. The order starts in PENDING and may be edited until validated.
//
// Example:
//
//	item, _ := order.NewItem("P-1", "Brake pad", 2, decimal.RequireFromString("12.50"), nil, order.Available)
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), companyID, "CMD-0042", []order.Item{item}, caller)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	created, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	companyID kernel.UUID
	dmsRef    string
	items     []order.Item
	actor     actor.Actor

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to register a new order.
// Validates the identifiers, that at least one line is given and that the
// actor was properly constructed. dmsRef may be empty.
func NewCreateOrderCommand(
	orderID, companyID kernel.UUID,
	dmsRef string,
	items []order.Item,
	caller actor.Actor,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		dmsRef: strings.TrimSpace(dmsRef),
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCompanyID(companyID),
		cmd.setItems(items),
		cmd.setActor(caller),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CreateOrderCommand) CompanyID() kernel.UUID {
	return c.companyID
}

func (c CreateOrderCommand) DMSRef() string {
	return c.dmsRef
}

func (c CreateOrderCommand) Items() []order.Item {
	items := make([]order.Item, len(c.items))
	copy(items, c.items)
	return items
}

func (c CreateOrderCommand) Actor() actor.Actor {
	return c.actor
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setCompanyID(companyID kernel.UUID) error {
	if err := companyID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("companyID", err)
	}

	c.companyID = companyID
	return nil
}

func (c *CreateOrderCommand) setItems(items []order.Item) error {
	if len(items) == 0 {
		return ErrItemsAreRequired
	}

	c.items = make([]order.Item, len(items))
	copy(c.items, items)
	return nil
}

func (c *CreateOrderCommand) setActor(caller actor.Actor) error {
	if err := caller.Validate(); err != nil {
		return err
	}

	c.actor = caller
	return nil
}
