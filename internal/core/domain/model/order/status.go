package order

import (
	"fmt"
	"strings"

	"ordering/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
// It implements a state machine with a fixed set of edges; no state may be
// skipped and no transition leaves a terminal state.
//
// State transitions:
//
//	Pending ──> Validated ──> Preparation ──> Shipped ──> Invoiced
//	   │
//	   └──> Cancelled
//
// Shipped -> Invoiced is only ever taken by DMS reconciliation.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status. Content may be edited and the order
	// may be validated or cancelled.
	Pending

	// Validated means the order was accepted and may go to preparation.
	Validated

	// Preparation means the warehouse is preparing the order.
	Preparation

	// Shipped means a delivery note exists for the order.
	Shipped

	// Invoiced means an invoice exists for the order. Terminal.
	Invoiced

	// Cancelled is terminal.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:     "UNKNOWN",
		Pending:     "PENDING",
		Validated:   "VALIDATED",
		Preparation: "PREPARATION",
		Shipped:     "SHIPPED",
		Invoiced:    "INVOICED",
		Cancelled:   "CANCELLED",
	}
}

// getTransitions returns the edges of the state machine. Statuses absent
// from the map have no successors.
func getTransitions() map[Status][]Status {
	//nolint:exhaustive // terminal statuses have no outgoing edges
	return map[Status][]Status{
		Pending:     {Validated, Cancelled},
		Validated:   {Preparation},
		Preparation: {Shipped},
		Shipped:     {Invoiced},
	}
}

// ParseStatus converts the persisted or wire name of a status back to Status.
// Matching is case-insensitive.
func ParseStatus(s string) (Status, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for status, str := range getStatusStrings() {
		if status != Unknown && str == name {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is one of the defined states.
func (s Status) Validate() error {
	if _, ok := getStatusStrings()[s]; !ok || s == Unknown {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the canonical upper-case name of the status.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsTerminal reports whether the status has no outgoing edges.
func (s Status) IsTerminal() bool {
	return len(getTransitions()[s]) == 0
}

// CanTransitionTo reports whether target is a direct successor of s.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range getTransitions()[s] {
		if next == target {
			return true
		}
	}
	return false
}

// ValidateTransition returns an InvalidTransitionError when target is not a
// direct successor of s.
func (s Status) ValidateTransition(target Status) error {
	if !s.CanTransitionTo(target) {
		return errs.NewInvalidTransitionError(s, target)
	}
	return nil
}

// PathTo returns the chain of statuses that leads from s to target along the
// forward edges, excluding s itself. It fails when target is not reachable
// without passing through Cancelled.
//
// Example:
//
//	Validated.PathTo(Invoiced) // [Preparation Shipped Invoiced]
func (s Status) PathTo(target Status) ([]Status, error) {
	path := make([]Status, 0, 4)
	current := s
	for current != target {
		next, ok := forwardSuccessor(current)
		if !ok {
			return nil, errs.NewInvalidTransitionError(s, target)
		}
		path = append(path, next)
		current = next
	}
	if len(path) == 0 {
		return nil, errs.NewInvalidTransitionError(s, target)
	}
	return path, nil
}

func forwardSuccessor(from Status) (Status, bool) {
	for _, next := range getTransitions()[from] {
		if next != Cancelled {
			return next, true
		}
	}
	return Unknown, false
}
