package services

import (
	"time"

	"ordering/internal/core/domain/model/actor"
	"ordering/internal/core/domain/model/editlock"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/pkg/errs"
)

// DefaultValidationCooldown is the quiet period required after the last
// modification of an order before it may be validated.
const DefaultValidationCooldown = 30 * time.Second

// TransitionGuard decides whether an actor may move an order along one edge
// of the lifecycle state machine.
//
// Checks, in order:
//   - the edge exists (InvalidTransition)
//   - the actor holds the capability for the edge on the owning company (Forbidden)
//   - for Pending -> Validated only: the cooldown since lastModifiedAt has
//     elapsed and nobody holds the edit lock (PreconditionFailed)
//
// Example usage:
//
//	guard := services.NewTransitionGuard(30 * time.Second)
//	err := guard.Check(services.TransitionRequest{
//	    Order:  o,
//	    Target: order.Validated,
//	    Actor:  caller,
//	    Now:    clock.Now(),
//	    Lock:   liveLock, // nil when nobody edits the order
//	})
//	var pre *errs.PreconditionFailedError
//	if errors.As(err, &pre) {
//	    // show a countdown of pre.RemainingSeconds()
//	}
type TransitionGuard struct {
	cooldown time.Duration
}

// NewTransitionGuard returns a guard with the given validation cooldown.
// A non-positive cooldown disables the cooldown check.
func NewTransitionGuard(cooldown time.Duration) TransitionGuard {
	return TransitionGuard{cooldown: cooldown}
}

// TransitionRequest is the input of TransitionGuard.Check.
type TransitionRequest struct {
	Order  *order.Order
	Target order.Status
	Actor  actor.Actor
	Now    time.Time

	// Lock is the live edit lock on the order, nil when free.
	Lock *editlock.Lock
}

// Cooldown returns the configured validation cooldown.
func (g TransitionGuard) Cooldown() time.Duration {
	return g.cooldown
}

// Check returns nil when the transition may be applied.
func (g TransitionGuard) Check(req TransitionRequest) error {
	if err := req.Order.Validate(); err != nil {
		return err
	}
	if err := req.Actor.Validate(); err != nil {
		return err
	}

	from := req.Order.Status()
	if err := from.ValidateTransition(req.Target); err != nil {
		return err
	}

	capability, ok := RequiredCapability(from, req.Target)
	if !ok || !req.Actor.Can(capability, req.Order.CompanyID()) {
		return errs.NewForbiddenError(string(capability), req.Actor.ID().String())
	}

	if from == order.Pending && req.Target == order.Validated {
		if remaining := req.Order.CooldownRemaining(req.Now, g.cooldown); g.cooldown > 0 && remaining > 0 {
			return errs.NewCooldownError(remaining)
		}
		if req.Lock != nil {
			return errs.NewOrderIsBeingEditedError(req.Lock.HolderName())
		}
	}

	return nil
}

// RequiredCapability maps an edge of the state machine to the capability
// needed to take it.
func RequiredCapability(from, to order.Status) (actor.Capability, bool) {
	switch {
	case from == order.Pending && to == order.Validated:
		return actor.ValidateOrder, true
	case from == order.Pending && to == order.Cancelled:
		return actor.CancelOrder, true
	case from == order.Validated && to == order.Preparation:
		return actor.PrepareOrder, true
	case from == order.Preparation && to == order.Shipped:
		return actor.ShipOrder, true
	case from == order.Shipped && to == order.Invoiced:
		return actor.InvoiceOrder, true
	default:
		return "", false
	}
}
