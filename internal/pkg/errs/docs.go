// Package errs provides the typed error taxonomy shared by the ordering service.
//
// The package includes two families of errors:
//   - validation errors: ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError
//   - lifecycle errors: ObjectNotFoundError, InvalidTransitionError,
//     PreconditionFailedError, LockHeldError, ForbiddenError, ExternalUnavailableError
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrLockHeld)
//   - A struct type carrying the details a caller needs to render a message
//     (remaining cooldown seconds, name of the current editor, ...)
//   - Constructor functions
//   - Error() method for formatting the error message
//   - Unwrap() method returning the sentinel
//
// Lifecycle errors are reported synchronously to callers and are never
// retried automatically; the HTTP adapter maps each sentinel to a status code.
package errs
