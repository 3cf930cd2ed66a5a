package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"fooddispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("NewObjectNotFoundError", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("orderId", "123")

		assert.Equal(t, "orderId", err.ParamName)
		assert.Equal(t, "123", err.ID)
		require.NoError(t, err.Cause)
		assert.Equal(t, "object not found: 123", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("NewObjectNotFoundErrorWithCause", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := errs.NewObjectNotFoundErrorWithCause("driverId", "42", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"object not found: param is: driverId, ID is: 42 (cause: connection reset)",
			err.Error())
	})
}

func TestValueErrors(t *testing.T) {
	t.Run("invalid", func(t *testing.T) {
		err := errs.NewValueIsInvalidErrorWithCause("items", errors.New("empty"))

		assert.Equal(t, "value is invalid: items (cause: empty)", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("out of range", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("quantity", 0, 1, 100)

		assert.Equal(t, "value is invalid: 0 is quantity, min value is 1, max value is 100", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("out of range strips newlines", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("plate", "AB\n12", 0, 10)

		assert.NotContains(t, err.Error(), "\n")
		assert.Contains(t, err.Error(), "AB 12")
	})

	t.Run("required", func(t *testing.T) {
		err := errs.NewValueIsRequiredError("customerID")

		assert.Equal(t, "value is required: customerID", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestVersionIsInvalidError(t *testing.T) {
	err := errs.NewVersionIsInvalidError("order")
	assert.Equal(t, "version is invalid: order", err.Error())

	withCause := errs.NewVersionIsInvalidErrorWithCause("order", errors.New("0 rows"))
	assert.Equal(t, "version is invalid: order (cause: 0 rows)", withCause.Error())
	require.ErrorIs(t, withCause, errs.ErrVersionIsInvalid)
}

func TestAccessErrors(t *testing.T) {
	unauthorized := errs.NewUnauthorizedErrorWithCause("token expired", errors.New("exp"))
	assert.Equal(t, "unauthorized: token expired (cause: exp)", unauthorized.Error())
	require.ErrorIs(t, unauthorized, errs.ErrUnauthorized)

	forbidden := errs.NewForbiddenError("driver", "missing capability admin-write")
	assert.Equal(t, "forbidden: role driver: missing capability admin-write", forbidden.Error())
	require.ErrorIs(t, forbidden, errs.ErrForbidden)
}

func TestLifecycleErrors(t *testing.T) {
	transition := errs.NewInvalidTransitionError("delivered", "cancel", "customer")
	assert.Equal(t,
		"invalid transition: cancel is not allowed from delivered for role customer",
		transition.Error())
	require.ErrorIs(t, transition, errs.ErrInvalidTransition)

	assigned := errs.NewAlreadyAssignedError("order", "o-1")
	assert.Equal(t, "already assigned: order o-1", assigned.Error())
	require.ErrorIs(t, assigned, errs.ErrAlreadyAssigned)
}

func TestErrorsSurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("accept order: %w", errs.NewInvalidTransitionError("placed", "dispatch", "admin"))

	var target *errs.InvalidTransitionError
	require.ErrorAs(t, wrapped, &target)
	assert.Equal(t, "placed", target.From)
	require.ErrorIs(t, wrapped, errs.ErrInvalidTransition)
	assert.NotErrorIs(t, wrapped, errs.ErrForbidden)
}

func TestSentinelMessages(t *testing.T) {
	assert.Equal(t, "object not found", errs.ErrObjectNotFound.Error())
	assert.Equal(t, "value is invalid", errs.ErrValueIsInvalid.Error())
	assert.Equal(t, "value is out of range", errs.ErrValueIsOutOfRange.Error())
	assert.Equal(t, "value is required", errs.ErrValueIsRequired.Error())
	assert.Equal(t, "version is invalid", errs.ErrVersionIsInvalid.Error())
	assert.Equal(t, "no driver available", errs.ErrNoDriverAvailable.Error())
}
