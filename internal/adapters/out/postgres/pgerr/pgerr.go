// Package pgerr translates PostgreSQL errors into the domain error taxonomy.
package pgerr

import (
	"errors"

	"fooddispatch/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// SQLSTATE codes the adapters react to.
const (
	UniqueViolation      = "23505"
	SerializationFailure = "40001"
	DeadlockDetected     = "40P01"
)

// Constraint names from the migrations.
const (
	OrderDriverOutForDelivery = "orders_driver_out_for_delivery_key"
	DriverActiveOrder         = "drivers_active_order_id_key"
	DriverUserID              = "drivers_user_id_key"
)

// Code returns the SQLSTATE of err and the violated constraint, if err came
// from the server.
func Code(err error) (code, constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", "", false
	}
	return pgErr.Code, pgErr.ConstraintName, true
}

// Translate maps a driver error to the errs taxonomy. Errors it does not
// recognise are returned unchanged.
//
//	orders_driver_out_for_delivery_key, drivers_active_order_id_key -> AlreadyAssigned
//	any other unique violation                                      -> ValueIsInvalid
//	serialization failure, deadlock                                 -> VersionIsInvalid
func Translate(err error, paramName string, id any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewObjectNotFoundErrorWithCause(paramName, id, err)
	}

	code, constraint, ok := Code(err)
	if !ok {
		return err
	}

	switch code {
	case UniqueViolation:
		switch constraint {
		case OrderDriverOutForDelivery, DriverActiveOrder:
			return errs.NewAlreadyAssignedErrorWithCause(paramName, id, err)
		default:
			return errs.NewValueIsInvalidErrorWithCause(paramName, err)
		}
	case SerializationFailure, DeadlockDetected:
		return errs.NewVersionIsInvalidErrorWithCause(paramName, err)
	default:
		return err
	}
}
