package kernel

import (
	"bytes"
	"fmt"

	"fooddispatch/internal/pkg/errs"

	"github.com/google/uuid"
)

// ErrUUIDIsNotConstructed is returned when validating a zero-value UUID.
var ErrUUIDIsNotConstructed = errs.NewValueIsRequiredError("UUID must be created via NewUUID, UUIDFromString, or UUIDFromBytes")

// UUID identifies orders, drivers, users, restaurants and menu items.
//
// It wraps github.com/google/uuid so the domain never depends on the library
// type directly. The zero value is invalid: build one with NewUUID,
// UUIDFromString or UUIDFromBytes.
//
// Example:
//
//	orderID := kernel.NewUUID()
//	driverID, err := kernel.UUIDFromString("550e8400-e29b-41d4-a716-446655440000")
type UUID struct {
	id uuid.UUID
}

// NewUUID generates a random (version 4) UUID.
func NewUUID() UUID {
	return UUID{id: uuid.New()}
}

// UUIDFromString parses the canonical, braced, urn or unhyphenated form.
func UUIDFromString(s string) (UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, fmt.Errorf("invalid UUID format: %w", err)
	}
	return UUID{id: id}, nil
}

// UUIDFromBytes builds a UUID from exactly 16 bytes. The nil UUID is rejected.
func UUIDFromBytes(b []byte) (UUID, error) {
	id, err := uuid.FromBytes(b)
	if err != nil {
		return UUID{}, fmt.Errorf("invalid UUID format: %w", err)
	}
	newID := UUID{id: id}
	if err = newID.Validate(); err != nil {
		return UUID{}, err
	}
	return newID, nil
}

// UUIDFromGoogle adapts a library UUID, as returned by persistence and
// transport adapters.
func UUIDFromGoogle(id uuid.UUID) UUID {
	return UUID{id: id}
}

func (u UUID) String() string {
	return u.id.String()
}

// Bytes returns the wrapped library value.
func (u UUID) Bytes() uuid.UUID {
	return u.id
}

func (u UUID) IsEqual(other UUID) bool {
	return u.id == other.id
}

// Compare orders UUIDs bytewise. Used as the deterministic tie-breaker when
// ranking dispatch candidates.
func (u UUID) Compare(other UUID) int {
	return bytes.Compare(u.id[:], other.id[:])
}

func (u UUID) IsZero() bool {
	return u.id == uuid.Nil
}

// Validate reports ErrUUIDIsNotConstructed for the nil UUID.
func (u UUID) Validate() error {
	if u.IsZero() {
		return ErrUUIDIsNotConstructed
	}
	return nil
}

func (u UUID) MarshalText() ([]byte, error) {
	return u.id.MarshalText()
}

func (u *UUID) UnmarshalText(data []byte) error {
	return u.id.UnmarshalText(data)
}
