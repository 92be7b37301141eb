// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, per-order serialization,
// transaction management, persistence, then notification.
package commands

import (
	"context"

	"ordering/internal/core/domain/model/editlock"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// DMSRepoFactory provides access to the DMS match repository within a transaction.
	DMSRepoFactory interface {
		DMSRepository() ports.DMSRepository
	}

	// OrderUoW manages transactions for order-only operations.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// UoW manages transactions across orders and DMS match records.
	// Used by reconciliation, which must record a match and advance the
	// order atomically.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   orderRepo := uow.OrderRepository()
	//   dmsRepo := uow.DMSRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		OrderRepoFactory
		DMSRepoFactory
	}

	// UoWFactory creates new unit of work instances for cross-aggregate operations.
	UoWFactory interface {
		Create() UoW
	}
)

// LockInspector exposes the live edit lock of an order. Implementations must
// not take the order key, because callers already hold it.
type LockInspector interface {
	Holder(orderID kernel.UUID) (editlock.Lock, bool)
}
