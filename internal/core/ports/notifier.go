package ports

import (
	"time"

	"ordering/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
)

// OrderUpdatedEvent describes the state of an order after a successful write.
type OrderUpdatedEvent struct {
	OrderID        kernel.UUID
	CompanyID      kernel.UUID
	Status         string
	TotalHT        decimal.Decimal
	LastModifiedAt time.Time
	BLNumber       *string
	InvoiceNumber  *string
}

// EditingStatusChangedEvent describes a change of the edit lock on an order.
type EditingStatusChangedEvent struct {
	OrderID   kernel.UUID
	CompanyID kernel.UUID
	IsEditing bool
	UserID    *kernel.UUID
	UserName  string
	StartedAt *time.Time
}

// Notifier pushes events to live connections: subscribers of the order and
// the list views of the owning company. Delivery is best effort and must not
// block the caller.
type Notifier interface {
	NotifyOrderUpdated(event OrderUpdatedEvent)
	NotifyEditingStatusChanged(event EditingStatusChangedEvent)
}
