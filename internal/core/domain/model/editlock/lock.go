// Package editlock holds the value object for an exclusive, advisory edit
// lock on one order. Locks are kept in memory by the edit lock coordinator
// and do not survive a restart.
package editlock

import (
	"errors"
	"time"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/pkg/errs"
)

// Lock is held by exactly one user on exactly one order.
type Lock struct {
	orderID         kernel.UUID
	companyID       kernel.UUID
	holderID        kernel.UUID
	holderName      string
	acquiredAt      time.Time
	lastHeartbeatAt time.Time
}

// New creates a lock acquired at now.
func New(orderID, companyID, holderID kernel.UUID, holderName string, now time.Time) (Lock, error) {
	if err := errors.Join(
		orderID.Validate(),
		companyID.Validate(),
		holderID.Validate(),
	); err != nil {
		return Lock{}, err
	}
	if now.IsZero() {
		return Lock{}, errs.NewValueIsRequiredError("acquiredAt")
	}
	return Lock{
		orderID:         orderID,
		companyID:       companyID,
		holderID:        holderID,
		holderName:      holderName,
		acquiredAt:      now,
		lastHeartbeatAt: now,
	}, nil
}

func (l Lock) OrderID() kernel.UUID       { return l.orderID }
func (l Lock) CompanyID() kernel.UUID     { return l.companyID }
func (l Lock) HolderID() kernel.UUID      { return l.holderID }
func (l Lock) HolderName() string         { return l.holderName }
func (l Lock) AcquiredAt() time.Time      { return l.acquiredAt }
func (l Lock) LastHeartbeatAt() time.Time { return l.lastHeartbeatAt }

// IsHeldBy reports whether userID holds the lock.
func (l Lock) IsHeldBy(userID kernel.UUID) bool {
	return l.holderID.IsEqual(userID)
}

// Heartbeat returns a copy with the heartbeat moved to now.
func (l Lock) Heartbeat(now time.Time) Lock {
	if now.After(l.lastHeartbeatAt) {
		l.lastHeartbeatAt = now
	}
	return l
}

// IsExpired reports whether no heartbeat arrived within ttl before now.
func (l Lock) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(l.lastHeartbeatAt) > ttl
}
