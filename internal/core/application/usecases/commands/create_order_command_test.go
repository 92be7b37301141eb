package commands_test

import (
	"testing"

	"ordering/internal/core/application/usecases/commands"
	"ordering/internal/core/domain/model/actor"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreateOrderCommand_ValidInput(t *testing.T) {
	id := kernel.NewUUID()
	caller := newActor(t, "Eve", actor.ClientUser, &companyA)

	cmd, err := commands.NewCreateOrderCommand(id, companyA, "  CMD-7 ", []order.Item{newItem(t, "10")}, caller)

	require.NoError(t, err)
	assert.Equal(t, id, cmd.OrderID())
	assert.Equal(t, companyA, cmd.CompanyID())
	assert.Equal(t, "CMD-7", cmd.DMSRef())
	assert.Len(t, cmd.Items(), 1)
	assert.Equal(t, caller.ID(), cmd.Actor().ID())
}

func TestNewCreateOrderCommand_InvalidOrderID(t *testing.T) {
	_, err := commands.NewCreateOrderCommand(kernel.UUID{}, companyA, "", []order.Item{newItem(t, "10")},
		newActor(t, "Eve", actor.ClientUser, &companyA))

	require.Error(t, err)
	assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}

func TestNewCreateOrderCommand_EmptyItems(t *testing.T) {
	_, err := commands.NewCreateOrderCommand(kernel.NewUUID(), companyA, "", nil,
		newActor(t, "Eve", actor.ClientUser, &companyA))

	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrItemsAreRequired)
}

func TestNewCreateOrderCommand_InvalidActor(t *testing.T) {
	_, err := commands.NewCreateOrderCommand(kernel.NewUUID(), companyA, "", []order.Item{newItem(t, "10")}, actor.Actor{})

	require.Error(t, err)
	assert.ErrorIs(t, err, actor.ErrActorIsNotConstructed)
}
