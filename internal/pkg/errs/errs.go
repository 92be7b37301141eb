package errs

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Sentinel errors. Every typed error below unwraps to exactly one of them so
// callers can classify failures with errors.Is without knowing the concrete type.
var (
	ErrObjectNotFound      = errors.New("object not found")
	ErrValueIsInvalid      = errors.New("value is invalid")
	ErrValueIsOutOfRange   = errors.New("value is out of range")
	ErrValueIsRequired     = errors.New("value is required")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrPreconditionFailed  = errors.New("precondition failed")
	ErrLockHeld            = errors.New("lock is held")
	ErrForbidden           = errors.New("forbidden")
	ErrExternalUnavailable = errors.New("external system unavailable")
	ErrVersionIsInvalid    = errors.New("version is invalid")
)

// sanitize flattens multi-line values so messages stay on a single log line.
func sanitize(v any) string {
	s := fmt.Sprintf("%v", v)
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}

func withCause(msg string, cause error) string {
	if cause == nil {
		return msg
	}
	return fmt.Sprintf("%s (cause: %v)", msg, cause)
}

// ObjectNotFoundError is returned when an aggregate or record cannot be found.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)", ErrObjectNotFound, e.ParamName, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, e.ID)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError is returned when a value fails a domain rule.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName), e.Cause)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError is returned when a numeric value lies outside [Min, Max].
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

func NewValueIsOutOfRangeError(paramName string, value, lo, hi any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: lo, Max: hi}
}

func NewValueIsOutOfRangeErrorWithCause(paramName string, value, lo, hi any, cause error) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: lo, Max: hi, Cause: cause}
}

func (e *ValueIsOutOfRangeError) Error() string {
	msg := fmt.Sprintf("%s: %s is %s, min value is %s, max value is %s",
		ErrValueIsInvalid, sanitize(e.Value), e.ParamName, sanitize(e.Min), sanitize(e.Max))
	return withCause(msg, e.Cause)
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ValueIsRequiredError is returned when a mandatory value is missing.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName), e.Cause)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// InvalidTransitionError reports a state machine edge that does not exist.
// It is never retried.
type InvalidTransitionError struct {
	From string
	To   string
}

func NewInvalidTransitionError(from, to fmt.Stringer) *InvalidTransitionError {
	return &InvalidTransitionError{From: from.String(), To: to.String()}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// PreconditionFailedError reports a guard that may pass later: either the
// validation cooldown has not elapsed (Remaining > 0) or someone is editing
// the order (HolderName set). Callers may retry after Remaining.
type PreconditionFailedError struct {
	Reason     string
	Remaining  time.Duration
	HolderName string
}

func NewCooldownError(remaining time.Duration) *PreconditionFailedError {
	return &PreconditionFailedError{Reason: "validation cooldown not elapsed", Remaining: remaining}
}

func NewOrderIsBeingEditedError(holderName string) *PreconditionFailedError {
	return &PreconditionFailedError{Reason: "order is being edited", HolderName: holderName}
}

func NewEditLockRequiredError() *PreconditionFailedError {
	return &PreconditionFailedError{Reason: "edit lock must be acquired first"}
}

// RemainingSeconds rounds the remaining cooldown up so that a client waiting
// exactly that many seconds is never rejected again.
func (e *PreconditionFailedError) RemainingSeconds() int {
	if e.Remaining <= 0 {
		return 0
	}
	return int(math.Ceil(e.Remaining.Seconds()))
}

func (e *PreconditionFailedError) Error() string {
	switch {
	case e.HolderName != "":
		return fmt.Sprintf("%s: %s by %s", ErrPreconditionFailed, e.Reason, e.HolderName)
	case e.Remaining > 0:
		return fmt.Sprintf("%s: %s, %ds remaining", ErrPreconditionFailed, e.Reason, e.RemainingSeconds())
	default:
		return fmt.Sprintf("%s: %s", ErrPreconditionFailed, e.Reason)
	}
}

func (e *PreconditionFailedError) Unwrap() error {
	return ErrPreconditionFailed
}

// LockHeldError is returned when another user holds the edit lock.
type LockHeldError struct {
	HolderID   string
	HolderName string
}

func NewLockHeldError(holderID, holderName string) *LockHeldError {
	return &LockHeldError{HolderID: holderID, HolderName: holderName}
}

func (e *LockHeldError) Error() string {
	return fmt.Sprintf("%s: %s", ErrLockHeld, e.HolderName)
}

func (e *LockHeldError) Unwrap() error {
	return ErrLockHeld
}

// ForbiddenError is returned when the actor lacks the capability for an action.
type ForbiddenError struct {
	Action  string
	ActorID string
}

func NewForbiddenError(action, actorID string) *ForbiddenError {
	return &ForbiddenError{Action: action, ActorID: actorID}
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s: %s is not allowed for %s", ErrForbidden, e.Action, e.ActorID)
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}

// ExternalUnavailableError wraps a failure talking to an external system.
type ExternalUnavailableError struct {
	System string
	Cause  error
}

func NewExternalUnavailableError(system string, cause error) *ExternalUnavailableError {
	return &ExternalUnavailableError{System: system, Cause: cause}
}

func (e *ExternalUnavailableError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrExternalUnavailable, e.System), e.Cause)
}

func (e *ExternalUnavailableError) Unwrap() error {
	return ErrExternalUnavailable
}

// VersionIsInvalidError is returned when a row was modified by someone else
// between read and write.
type VersionIsInvalidError struct {
	ParamName string
	Expected  int64
}

func NewVersionIsInvalidError(paramName string, expected int64) *VersionIsInvalidError {
	return &VersionIsInvalidError{ParamName: paramName, Expected: expected}
}

func (e *VersionIsInvalidError) Error() string {
	return fmt.Sprintf("%s: %s, expected version %d", ErrVersionIsInvalid, e.ParamName, e.Expected)
}

func (e *VersionIsInvalidError) Unwrap() error {
	return ErrVersionIsInvalid
}
