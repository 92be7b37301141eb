package errs_test

import (
	"errors"
	"testing"
	"time"

	"ordering/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stringer string

func (s stringer) String() string { return string(s) }

func TestObjectNotFoundError(t *testing.T) {
	t.Run("NewObjectNotFoundError", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("order", "123")

		assert.Equal(t, "order", err.ParamName)
		assert.Equal(t, "123", err.ID)
		require.NoError(t, err.Cause)
		assert.Equal(t, "object not found: 123", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("NewObjectNotFoundErrorWithCause", func(t *testing.T) {
		cause := errors.New("database connection failed")
		err := errs.NewObjectNotFoundErrorWithCause("order", "123", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"object not found: param is: order, ID is: 123 (cause: database connection failed)",
			err.Error())
	})
}

func TestValueErrors(t *testing.T) {
	t.Run("ValueIsInvalid", func(t *testing.T) {
		err := errs.NewValueIsInvalidErrorWithCause("quantity", errors.New("must be positive"))

		assert.Equal(t, "value is invalid: quantity (cause: must be positive)", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("ValueIsOutOfRange", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("tvaRate", 150, 0, 100)

		assert.Equal(t, "value is invalid: 150 is tvaRate, min value is 0, max value is 100", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("ValueIsOutOfRange sanitizes newlines", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("text", "hello\nworld", 0, 10)

		assert.Contains(t, err.Error(), "hello world")
		assert.NotContains(t, err.Error(), "\n")
	})

	t.Run("ValueIsRequired", func(t *testing.T) {
		err := errs.NewValueIsRequiredError("productRef")

		assert.Equal(t, "value is required: productRef", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestInvalidTransitionError(t *testing.T) {
	err := errs.NewInvalidTransitionError(stringer("SHIPPED"), stringer("VALIDATED"))

	assert.Equal(t, "invalid transition: SHIPPED -> VALIDATED", err.Error())
	require.ErrorIs(t, err, errs.ErrInvalidTransition)
}

func TestPreconditionFailedError(t *testing.T) {
	t.Run("cooldown rounds remaining seconds up", func(t *testing.T) {
		err := errs.NewCooldownError(19*time.Second + 100*time.Millisecond)

		assert.Equal(t, 20, err.RemainingSeconds())
		assert.Equal(t, "precondition failed: validation cooldown not elapsed, 20s remaining", err.Error())
		require.ErrorIs(t, err, errs.ErrPreconditionFailed)
	})

	t.Run("being edited names the holder", func(t *testing.T) {
		err := errs.NewOrderIsBeingEditedError("Alice")

		assert.Equal(t, 0, err.RemainingSeconds())
		assert.Equal(t, "precondition failed: order is being edited by Alice", err.Error())
	})

	t.Run("edit lock required carries only a reason", func(t *testing.T) {
		err := errs.NewEditLockRequiredError()

		assert.Equal(t, "precondition failed: edit lock must be acquired first", err.Error())
	})

	t.Run("errors.As exposes the details", func(t *testing.T) {
		var target *errs.PreconditionFailedError
		wrapped := errors.Join(errors.New("validate"), errs.NewCooldownError(5*time.Second))

		require.ErrorAs(t, wrapped, &target)
		assert.Equal(t, 5, target.RemainingSeconds())
	})
}

func TestLockHeldError(t *testing.T) {
	err := errs.NewLockHeldError("u-1", "Alice")

	assert.Equal(t, "lock is held: Alice", err.Error())
	require.ErrorIs(t, err, errs.ErrLockHeld)
}

func TestForbiddenAndExternalErrors(t *testing.T) {
	forbidden := errs.NewForbiddenError("validate order", "u-2")
	assert.Equal(t, "forbidden: validate order is not allowed for u-2", forbidden.Error())
	require.ErrorIs(t, forbidden, errs.ErrForbidden)

	external := errs.NewExternalUnavailableError("dms", errors.New("timeout"))
	assert.Equal(t, "external system unavailable: dms (cause: timeout)", external.Error())
	require.ErrorIs(t, external, errs.ErrExternalUnavailable)
}

func TestVersionIsInvalidError(t *testing.T) {
	err := errs.NewVersionIsInvalidError("order", 3)

	assert.Equal(t, "version is invalid: order, expected version 3", err.Error())
	require.ErrorIs(t, err, errs.ErrVersionIsInvalid)
}
