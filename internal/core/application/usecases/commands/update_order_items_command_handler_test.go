package commands_test

import (
	"testing"
	"time"

	"ordering/internal/core/application/usecases/commands"
	"ordering/internal/core/domain/model/actor"
	"ordering/internal/core/domain/model/editlock"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/ports"
	"ordering/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUpdateOrderItemsCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	id := kernel.NewUUID()
	o := restoreOrder(t, id, orderState{status: order.Pending, lastModified: t0.Add(-time.Hour)})
	caller := newActor(t, "Eve", actor.ClientUser, &companyA)
	lock, err := editlock.New(id, companyA, caller.ID(), "Eve", t0.Add(-time.Minute))
	require.NoError(t, err)

	cmd, err := commands.NewUpdateOrderItemsCommand(id, []order.Item{newItem(t, "40"), newItem(t, "2.50")}, caller)
	require.NoError(t, err)

	repo, uow, factory, locks, notifier, audit := transitionMocks()
	factory.On("Create").Return(uow).Once()
	locks.On("Holder", id).Return(lock, true).Once()
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("GetForUpdate", ctx, id).Return(o, nil).Once(),
		repo.On("Update", ctx, o).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		notifier.On("NotifyOrderUpdated", mock.MatchedBy(func(e ports.OrderUpdatedEvent) bool {
			return e.Status == "PENDING" && e.TotalHT.Equal(decimal.RequireFromString("42.50"))
		})).Once(),
		audit.On("Record", ctx, mock.MatchedBy(func(r ports.AuditRecord) bool {
			return r.Action == "order.items.updated"
		})).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	h := commands.NewUpdateOrderItemsCommandHandler(factory, newWriter(notifier, audit, t0), locks)
	updated, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Len(t, updated.Items(), 2)
	assert.Equal(t, t0, updated.LastModifiedAt(), "an update restarts the validation cooldown")
	assert.True(t, decimal.RequireFromString("42.50").Equal(updated.TotalHT()))
	uow.AssertExpectations(t)
	notifier.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestUpdateOrderItemsCommandHandler_Handle_InternalUserWithoutLock(t *testing.T) {
	ctx := t.Context()
	id := kernel.NewUUID()
	o := restoreOrder(t, id, orderState{status: order.Pending})
	cmd, _ := commands.NewUpdateOrderItemsCommand(id, []order.Item{newItem(t, "10")},
		newActor(t, "Carol", actor.Commercial, nil))

	repo, uow, factory, locks, notifier, audit := transitionMocks()
	factory.On("Create").Return(uow).Once()
	locks.On("Holder", id).Return(editlock.Lock{}, false).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(repo).Once()
	repo.On("GetForUpdate", ctx, id).Return(o, nil).Once()
	repo.On("Update", ctx, o).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	notifier.On("NotifyOrderUpdated", mock.Anything).Once()
	audit.On("Record", ctx, mock.Anything).Once()

	h := commands.NewUpdateOrderItemsCommandHandler(factory, newWriter(notifier, audit, t0), locks)
	_, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdateOrderItemsCommandHandler_Handle_Rejections(t *testing.T) {
	eve := newActor(t, "Eve", actor.ClientUser, &companyA)
	outsider := newActor(t, "Mallory", actor.ClientUser, &companyB)

	tests := []struct {
		name     string
		status   order.Status
		caller   actor.Actor
		holder   string
		holderID kernel.UUID
		want     error
	}{
		{name: "client without the lock", status: order.Pending, caller: eve, want: errs.ErrPreconditionFailed},
		{name: "lock held by someone else", status: order.Pending, caller: eve, holder: "Alice", holderID: kernel.NewUUID(), want: errs.ErrLockHeld},
		{name: "other company", status: order.Pending, caller: outsider, want: errs.ErrForbidden},
		{name: "order already validated", status: order.Validated, caller: eve, holder: "Eve", holderID: eve.ID(), want: order.ErrOrderIsNotEditable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			id := kernel.NewUUID()
			o := restoreOrder(t, id, orderState{status: tt.status})
			cmd, err := commands.NewUpdateOrderItemsCommand(id, []order.Item{newItem(t, "1")}, tt.caller)
			require.NoError(t, err)

			repo, uow, factory, locks, notifier, audit := transitionMocks()
			factory.On("Create").Return(uow).Once()
			if tt.holder != "" {
				lock, lockErr := editlock.New(id, companyA, tt.holderID, tt.holder, t0)
				require.NoError(t, lockErr)
				locks.On("Holder", id).Return(lock, true).Maybe()
			} else {
				locks.On("Holder", id).Return(editlock.Lock{}, false).Maybe()
			}
			uow.On("Begin", ctx).Return(nil).Once()
			uow.On("OrderRepository").Return(repo).Once()
			repo.On("GetForUpdate", ctx, id).Return(o, nil).Once()
			uow.On("Rollback", ctx).Return(nil).Once()

			h := commands.NewUpdateOrderItemsCommandHandler(factory, newWriter(notifier, audit, t0), locks)
			_, err = h.Handle(ctx, cmd)

			require.ErrorIs(t, err, tt.want)
			repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			notifier.AssertNotCalled(t, "NotifyOrderUpdated", mock.Anything)
		})
	}
}

func TestNewUpdateOrderItemsCommand_RequiresItems(t *testing.T) {
	_, err := commands.NewUpdateOrderItemsCommand(kernel.NewUUID(), nil, newActor(t, "Carol", actor.Commercial, nil))

	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}
