// Package queries contains read operations. Handlers read the orders tables
// with raw SQL through gorm and overlay the live edit lock state, which is
// the only source of truth for isEditing.
package queries

import (
	"time"

	"ordering/internal/core/application/editing"
	"ordering/internal/core/domain/model/editlock"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LockInspector exposes the live edit lock of an order.
type LockInspector interface {
	Holder(orderID kernel.UUID) (editlock.Lock, bool)
}

// OrderSummary is one row of an order list.
type OrderSummary struct {
	ID             kernel.UUID
	CompanyID      kernel.UUID
	DMSRef         string
	Status         order.Status
	TotalHT        decimal.Decimal
	BLNumber       *string
	InvoiceNumber  *string
	CreatedAt      time.Time
	LastModifiedAt time.Time
	Editing        order.EditingState
}

// OrderItemView is one line of an order.
type OrderItemView struct {
	ProductRef   string
	Designation  string
	Quantity     int
	UnitPrice    decimal.Decimal
	TVARate      *decimal.Decimal
	Availability order.Availability
	TotalHT      decimal.Decimal
}

// OrderView is an order with its lines and totals.
// CooldownRemaining is how long until validation is allowed by the
// cooldown; informational only, RequestTransition enforces it again.
type OrderView struct {
	OrderSummary

	Items             []OrderItemView
	TotalTVA          decimal.Decimal
	TotalTTC          decimal.Decimal
	CooldownRemaining time.Duration
}

type summaryRow struct {
	id             uuid.UUID
	companyID      uuid.UUID
	dmsRef         string
	status         int
	totalHT        decimal.Decimal
	blNumber       *string
	invoiceNumber  *string
	createdAt      time.Time
	lastModifiedAt time.Time
}

func (r *summaryRow) targets() []any {
	return []any{
		&r.id,
		&r.companyID,
		&r.dmsRef,
		&r.status,
		&r.totalHT,
		&r.blNumber,
		&r.invoiceNumber,
		&r.createdAt,
		&r.lastModifiedAt,
	}
}

const summaryColumns = `
	id,
	company_id,
	dms_ref,
	status,
	total_ht,
	bl_number,
	invoice_number,
	created_at,
	last_modified_at`

func (r *summaryRow) toSummary(locks LockInspector) (OrderSummary, error) {
	id, err := kernel.UUIDFromBytes(r.id[:])
	if err != nil {
		return OrderSummary{}, err
	}
	companyID, err := kernel.UUIDFromBytes(r.companyID[:])
	if err != nil {
		return OrderSummary{}, err
	}
	status := order.Status(r.status)
	if err = status.Validate(); err != nil {
		return OrderSummary{}, err
	}

	lock, held := locks.Holder(id)

	return OrderSummary{
		ID:             id,
		CompanyID:      companyID,
		DMSRef:         r.dmsRef,
		Status:         status,
		TotalHT:        r.totalHT,
		BLNumber:       r.blNumber,
		InvoiceNumber:  r.invoiceNumber,
		CreatedAt:      r.createdAt.UTC(),
		LastModifiedAt: r.lastModifiedAt.UTC(),
		Editing:        editing.State(lock, held),
	}, nil
}
