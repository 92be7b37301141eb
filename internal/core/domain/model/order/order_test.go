package order_test

import (
	"testing"
	"time"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func mustItem(t *testing.T, ref string, qty int, price string, rate *string) order.Item {
	t.Helper()
	var tva *decimal.Decimal
	if rate != nil {
		r := decimal.RequireFromString(*rate)
		tva = &r
	}
	item, err := order.NewItem(ref, "designation "+ref, qty, decimal.RequireFromString(price), tva, order.Available)
	require.NoError(t, err)
	return item
}

func ptr[T any](v T) *T { return &v }

func newPendingOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), "CMD-1",
		[]order.Item{mustItem(t, "P-1", 2, "10.00", ptr("20")), mustItem(t, "P-2", 1, "5.50", nil)}, t0)
	require.NoError(t, err)
	return o
}

func restoreInStatus(t *testing.T, status order.Status) *order.Order {
	t.Helper()
	o, err := order.RestoreOrder(order.Snapshot{
		ID:             kernel.NewUUID(),
		CompanyID:      kernel.NewUUID(),
		Items:          []order.Item{mustItem(t, "P-1", 1, "100", nil)},
		Status:         status,
		CreatedAt:      t0,
		LastModifiedAt: t0,
		Version:        3,
	})
	require.NoError(t, err)
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("should create a pending order", func(t *testing.T) {
		o := newPendingOrder(t)

		require.NoError(t, o.Validate())
		assert.Equal(t, order.Pending, o.Status())
		assert.Equal(t, "CMD-1", o.DMSRef())
		assert.Equal(t, t0, o.CreatedAt())
		assert.Equal(t, t0, o.LastModifiedAt())
		assert.Nil(t, o.BLNumber())
		assert.Nil(t, o.InvoiceNumber())
		assert.False(t, o.Editing().IsEditing())
		assert.Len(t, o.Items(), 2)
	})

	t.Run("should compute totals", func(t *testing.T) {
		o := newPendingOrder(t)

		assert.True(t, decimal.RequireFromString("25.50").Equal(o.TotalHT()), o.TotalHT().String())
		assert.True(t, decimal.RequireFromString("4.00").Equal(o.TotalTVA()), o.TotalTVA().String())
		assert.True(t, decimal.RequireFromString("29.50").Equal(o.TotalTTC()), o.TotalTTC().String())
	})

	t.Run("should collect every validation failure", func(t *testing.T) {
		o, err := order.NewOrder(kernel.UUID{}, kernel.UUID{}, "", nil, time.Time{})

		require.Error(t, err)
		assert.Nil(t, o)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "companyID")
		assert.Contains(t, err.Error(), "items")
		assert.Contains(t, err.Error(), "createdAt")
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var o order.Order
		require.ErrorIs(t, o.Validate(), order.ErrOrderIsNotConstructed)
	})
}

func TestRestoreOrder(t *testing.T) {
	t.Run("should keep persisted state", func(t *testing.T) {
		userID := kernel.NewUUID()
		started := t0.Add(time.Minute)
		o, err := order.RestoreOrder(order.Snapshot{
			ID:             kernel.NewUUID(),
			CompanyID:      kernel.NewUUID(),
			Items:          []order.Item{mustItem(t, "P-1", 1, "1", nil)},
			Status:         order.Shipped,
			BLNumber:       ptr("BL-9"),
			CreatedAt:      t0,
			LastModifiedAt: t0.Add(time.Hour),
			Version:        7,
			Editing:        order.EditingState{UserID: &userID, UserName: "Alice", StartedAt: &started},
		})

		require.NoError(t, err)
		assert.Equal(t, order.Shipped, o.Status())
		assert.Equal(t, "BL-9", *o.BLNumber())
		assert.Equal(t, int64(7), o.Version())
		assert.True(t, o.Editing().IsEditing())
		assert.Equal(t, "Alice", o.Editing().UserName)
	})

	t.Run("should reject an unknown status", func(t *testing.T) {
		_, err := order.RestoreOrder(order.Snapshot{
			ID:        kernel.NewUUID(),
			CompanyID: kernel.NewUUID(),
			Items:     []order.Item{mustItem(t, "P-1", 1, "1", nil)},
			CreatedAt: t0,
		})
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestOrder_TransitionTo(t *testing.T) {
	t.Run("should follow an edge and touch lastModifiedAt", func(t *testing.T) {
		o := newPendingOrder(t)
		later := t0.Add(time.Minute)

		require.NoError(t, o.TransitionTo(order.Validated, later))

		assert.Equal(t, order.Validated, o.Status())
		assert.Equal(t, later, o.LastModifiedAt())
	})

	t.Run("should refuse skipping a state", func(t *testing.T) {
		o := newPendingOrder(t)

		err := o.TransitionTo(order.Shipped, t0.Add(time.Minute))

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, order.Pending, o.Status())
		assert.Equal(t, t0, o.LastModifiedAt())
	})

	t.Run("terminal states have no successors", func(t *testing.T) {
		o := restoreInStatus(t, order.Cancelled)
		require.ErrorIs(t, o.TransitionTo(order.Pending, t0), errs.ErrInvalidTransition)
	})
}

func TestOrder_AdvanceTo(t *testing.T) {
	t.Run("should walk from Validated to Invoiced", func(t *testing.T) {
		o := restoreInStatus(t, order.Validated)

		path, err := o.AdvanceTo(order.Invoiced, t0.Add(time.Hour))

		require.NoError(t, err)
		assert.Equal(t, []order.Status{order.Preparation, order.Shipped, order.Invoiced}, path)
		assert.Equal(t, order.Invoiced, o.Status())
	})

	t.Run("should leave the order untouched on failure", func(t *testing.T) {
		o := restoreInStatus(t, order.Invoiced)

		_, err := o.AdvanceTo(order.Shipped, t0.Add(time.Hour))

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, order.Invoiced, o.Status())
	})
}

func TestOrder_CooldownRemaining(t *testing.T) {
	o := newPendingOrder(t)
	cooldown := 30 * time.Second

	assert.Equal(t, 30*time.Second, o.CooldownRemaining(t0, cooldown))
	assert.Equal(t, 20*time.Second, o.CooldownRemaining(t0.Add(10*time.Second), cooldown))
	assert.Equal(t, time.Duration(0), o.CooldownRemaining(t0.Add(30*time.Second), cooldown))
	assert.Equal(t, time.Duration(0), o.CooldownRemaining(t0.Add(time.Hour), cooldown))
}

func TestOrder_AttachReferences(t *testing.T) {
	t.Run("should attach once and accept the same value again", func(t *testing.T) {
		o := restoreInStatus(t, order.Validated)

		require.NoError(t, o.AttachDeliveryNote(" BL-1 ", t0.Add(time.Minute)))
		require.NoError(t, o.AttachDeliveryNote("BL-1", t0.Add(2*time.Minute)))

		assert.Equal(t, "BL-1", *o.BLNumber())
		assert.True(t, o.HasDeliveryNote())
		assert.Equal(t, t0.Add(time.Minute), o.LastModifiedAt())
	})

	t.Run("should refuse overwriting a different reference", func(t *testing.T) {
		o := restoreInStatus(t, order.Validated)
		require.NoError(t, o.AttachInvoice("FA-1", t0))

		err := o.AttachInvoice("FA-2", t0)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Equal(t, "FA-1", *o.InvoiceNumber())
	})

	t.Run("should require a reference", func(t *testing.T) {
		o := restoreInStatus(t, order.Validated)
		require.ErrorIs(t, o.AttachDeliveryNote("  ", t0), errs.ErrValueIsRequired)
	})

	t.Run("returned pointers are copies", func(t *testing.T) {
		o := restoreInStatus(t, order.Validated)
		require.NoError(t, o.AttachInvoice("FA-1", t0))

		*o.InvoiceNumber() = "tampered"

		assert.Equal(t, "FA-1", *o.InvoiceNumber())
	})
}

func TestOrder_ReplaceItems(t *testing.T) {
	t.Run("should replace lines while pending", func(t *testing.T) {
		o := newPendingOrder(t)
		later := t0.Add(5 * time.Second)

		err := o.ReplaceItems([]order.Item{mustItem(t, "P-9", 3, "2", nil)}, later)

		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(6).Equal(o.TotalHT()))
		assert.Equal(t, later, o.LastModifiedAt())
	})

	t.Run("should refuse outside pending", func(t *testing.T) {
		o := restoreInStatus(t, order.Validated)

		err := o.ReplaceItems([]order.Item{mustItem(t, "P-9", 3, "2", nil)}, t0)

		require.ErrorIs(t, err, order.ErrOrderIsNotEditable)
		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("should refuse an empty order", func(t *testing.T) {
		o := newPendingOrder(t)
		require.ErrorIs(t, o.ReplaceItems(nil, t0), errs.ErrValueIsRequired)
	})

	t.Run("items are copied", func(t *testing.T) {
		o := newPendingOrder(t)
		items := o.Items()
		items[0] = mustItem(t, "X", 100, "100", nil)

		assert.Equal(t, "P-1", o.Items()[0].ProductRef())
	})
}

func TestOrder_ProjectEditing(t *testing.T) {
	o := newPendingOrder(t)
	userID := kernel.NewUUID()

	o.ProjectEditing(order.EditingState{UserID: &userID, UserName: "Bob"})

	assert.True(t, o.Editing().IsEditing())
	assert.Equal(t, t0, o.LastModifiedAt())
}

func TestOrder_Snapshot(t *testing.T) {
	o := restoreInStatus(t, order.Validated)
	require.NoError(t, o.AttachDeliveryNote("BL-1", t0.Add(time.Minute)))

	restored, err := order.RestoreOrder(o.Snapshot())

	require.NoError(t, err)
	assert.True(t, restored.IsEqual(o))
	assert.Equal(t, o.Status(), restored.Status())
	assert.Equal(t, "BL-1", *restored.BLNumber())
	assert.Equal(t, o.LastModifiedAt(), restored.LastModifiedAt())
	assert.Equal(t, int64(3), restored.Version())

	o.MarkStored(4)
	assert.Equal(t, int64(4), o.Version())
	assert.Equal(t, int64(3), restored.Version())
}
