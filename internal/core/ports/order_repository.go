// Package ports defines the contracts between the application core and the
// adapters around it: persistence, the external DMS, realtime delivery and
// the audit trail. The core only ever talks to these interfaces.
package ports

import (
	"context"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate with its lines.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order: status, references,
	// lines and lastModifiedAt. The write is conditional on the version the
	// aggregate was read with and fails with errs.ErrVersionIsInvalid when
	// someone else wrote in between.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by identifier.
	// Returns errs.ErrObjectNotFound when it does not exist.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate is Get plus a row lock held until the surrounding
	// transaction ends. Must be called inside a unit of work.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// ListReconcilable returns the orders of the given companies that DMS
	// reconciliation may act on: status Validated or Preparation.
	ListReconcilable(ctx context.Context, companyIDs []kernel.UUID) ([]*order.Order, error)
}

// EditingProjector writes the edit lock projection onto the orders table.
// It runs outside of any unit of work; a lost write is repaired by the next
// lock change or by ResetAll on startup.
type EditingProjector interface {
	ProjectEditing(ctx context.Context, orderID kernel.UUID, state order.EditingState) error

	// ResetAll clears every projection. Locks do not survive a restart, so
	// neither may their projection.
	ResetAll(ctx context.Context) error
}
