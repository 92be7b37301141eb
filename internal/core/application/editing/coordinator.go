// Package editing implements the edit lock coordinator: a cooperative,
// single-holder editing session per order, kept in process memory.
//
// Every state change is serialized on the order's key in the shared
// keylock.Locker, projected onto the orders table through
// ports.EditingProjector and broadcast as an editing status event.
// A lock whose heartbeat is older than the TTL counts as absent immediately
// and is removed by ExpireStale on the next sweep.
package editing

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"ordering/internal/core/domain/model/actor"
	"ordering/internal/core/domain/model/editlock"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/ports"
	"ordering/internal/pkg/errs"
	"ordering/internal/pkg/keylock"
)

// DefaultTTL is how long a lock survives without a heartbeat.
const DefaultTTL = 90 * time.Second

// Coordinator owns the live edit locks.
type Coordinator struct {
	mu    sync.Mutex
	locks map[kernel.UUID]editlock.Lock

	keys      *keylock.Locker
	clock     kernel.Clock
	ttl       time.Duration
	notifier  ports.Notifier
	projector ports.EditingProjector
	audit     ports.AuditSink
	logger    *slog.Logger
}

// NewCoordinator wires a coordinator. keys must be the Locker shared with
// every other writer of orders.
func NewCoordinator(
	keys *keylock.Locker,
	notifier ports.Notifier,
	projector ports.EditingProjector,
	audit ports.AuditSink,
	clock kernel.Clock,
	ttl time.Duration,
	logger *slog.Logger,
) *Coordinator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Coordinator{
		locks:     make(map[kernel.UUID]editlock.Lock),
		keys:      keys,
		clock:     clock,
		ttl:       ttl,
		notifier:  notifier,
		projector: projector,
		audit:     audit,
		logger:    logger.With("component", "edit_lock_coordinator"),
	}
}

// TTL returns the configured lock time to live.
func (c *Coordinator) TTL() time.Duration {
	return c.ttl
}

// Acquire takes the lock on orderID for holder. Re-acquiring an own lock
// succeeds and only refreshes its heartbeat. Another live holder makes it
// fail with errs.LockHeldError.
func (c *Coordinator) Acquire(ctx context.Context, orderID, companyID kernel.UUID, holder actor.Actor) (editlock.Lock, error) {
	if err := holder.Validate(); err != nil {
		return editlock.Lock{}, err
	}

	unlock := c.keys.Lock(orderID.String())
	defer unlock()

	now := c.clock.Now()

	c.mu.Lock()
	current, held := c.locks[orderID]
	if held && current.IsExpired(now, c.ttl) {
		held = false
	}
	if held && !current.IsHeldBy(holder.ID()) {
		c.mu.Unlock()
		return editlock.Lock{}, errs.NewLockHeldError(current.HolderID().String(), current.HolderName())
	}
	if held {
		refreshed := current.Heartbeat(now)
		c.locks[orderID] = refreshed
		c.mu.Unlock()
		return refreshed, nil
	}

	lock, err := editlock.New(orderID, companyID, holder.ID(), holder.DisplayName(), now)
	if err != nil {
		c.mu.Unlock()
		return editlock.Lock{}, err
	}
	c.locks[orderID] = lock
	c.mu.Unlock()

	c.publish(ctx, lock, true)
	c.record(ctx, "order.editing.acquired", lock)
	return lock, nil
}

// Release drops the lock when userID holds it and reports whether it did.
// Releasing someone else's lock, or no lock, is a no-op so that a late
// release from a stale client cannot evict a newer holder.
func (c *Coordinator) Release(ctx context.Context, orderID, userID kernel.UUID) bool {
	unlock := c.keys.Lock(orderID.String())
	defer unlock()

	c.mu.Lock()
	current, held := c.locks[orderID]
	if !held || !current.IsHeldBy(userID) {
		c.mu.Unlock()
		return false
	}
	delete(c.locks, orderID)
	c.mu.Unlock()

	c.publish(ctx, current, false)
	c.record(ctx, "order.editing.released", current)
	return true
}

// Heartbeat refreshes the lock of userID on orderID. It fails with
// errs.LockHeldError when someone else holds it and errs.ObjectNotFoundError
// when nobody does, in which case the client should acquire again.
func (c *Coordinator) Heartbeat(orderID, userID kernel.UUID) (editlock.Lock, error) {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	current, held := c.locks[orderID]
	if !held || current.IsExpired(now, c.ttl) {
		return editlock.Lock{}, errs.NewObjectNotFoundError("edit lock", orderID.String())
	}
	if !current.IsHeldBy(userID) {
		return editlock.Lock{}, errs.NewLockHeldError(current.HolderID().String(), current.HolderName())
	}
	refreshed := current.Heartbeat(now)
	c.locks[orderID] = refreshed
	return refreshed, nil
}

// Holder returns the live lock on orderID. Expired locks are reported as absent.
// It never takes the order key and is safe to call while holding it.
func (c *Coordinator) Holder(orderID kernel.UUID) (editlock.Lock, bool) {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	current, held := c.locks[orderID]
	if !held || current.IsExpired(now, c.ttl) {
		return editlock.Lock{}, false
	}
	return current, true
}

// IsLocked reports whether anyone holds a live lock on orderID.
func (c *Coordinator) IsLocked(orderID kernel.UUID) bool {
	_, held := c.Holder(orderID)
	return held
}

// ExpireStale removes every lock whose heartbeat is older than the TTL and
// announces each removal like a release. Returns how many were removed.
func (c *Coordinator) ExpireStale(ctx context.Context) int {
	now := c.clock.Now()

	c.mu.Lock()
	stale := make([]kernel.UUID, 0)
	for id, lock := range c.locks {
		if lock.IsExpired(now, c.ttl) {
			stale = append(stale, id)
		}
	}
	c.mu.Unlock()

	sort.Slice(stale, func(i, j int) bool { return stale[i].String() < stale[j].String() })

	expired := 0
	for _, id := range stale {
		if ctx.Err() != nil {
			break
		}
		if c.expire(ctx, id) {
			expired++
		}
	}
	return expired
}

func (c *Coordinator) expire(ctx context.Context, orderID kernel.UUID) bool {
	unlock := c.keys.Lock(orderID.String())
	defer unlock()

	now := c.clock.Now()

	c.mu.Lock()
	current, held := c.locks[orderID]
	if !held || !current.IsExpired(now, c.ttl) {
		c.mu.Unlock()
		return false
	}
	delete(c.locks, orderID)
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "Edit lock expired",
		"order_id", orderID.String(),
		"holder", current.HolderName(),
		"last_heartbeat_at", current.LastHeartbeatAt())

	c.publish(ctx, current, false)
	c.record(ctx, "order.editing.expired", current)
	return true
}

// ResetProjections clears the persisted editing projection of every order.
// Called once on startup, before any lock can be taken.
func (c *Coordinator) ResetProjections(ctx context.Context) error {
	return c.projector.ResetAll(ctx)
}

// Len returns the number of locks currently stored, expired or not.
func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.locks)
}

// State converts a lock into the editing projection of an order.
func State(lock editlock.Lock, held bool) order.EditingState {
	if !held {
		return order.EditingState{}
	}
	holderID := lock.HolderID()
	startedAt := lock.AcquiredAt()
	return order.EditingState{
		UserID:    &holderID,
		UserName:  lock.HolderName(),
		StartedAt: &startedAt,
	}
}

func (c *Coordinator) publish(ctx context.Context, lock editlock.Lock, isEditing bool) {
	state := State(lock, isEditing)

	if err := c.projector.ProjectEditing(ctx, lock.OrderID(), state); err != nil {
		c.logger.WarnContext(ctx, "Failed to project editing state",
			"order_id", lock.OrderID().String(), "error", err)
	}

	c.notifier.NotifyEditingStatusChanged(ports.EditingStatusChangedEvent{
		OrderID:   lock.OrderID(),
		CompanyID: lock.CompanyID(),
		IsEditing: isEditing,
		UserID:    state.UserID,
		UserName:  state.UserName,
		StartedAt: state.StartedAt,
	})
}

func (c *Coordinator) record(ctx context.Context, action string, lock editlock.Lock) {
	if c.audit == nil {
		return
	}
	c.audit.Record(ctx, ports.AuditRecord{
		Action:    action,
		ActorID:   lock.HolderID().String(),
		ActorName: lock.HolderName(),
		OrderID:   lock.OrderID().String(),
		At:        c.clock.Now(),
	})
}
