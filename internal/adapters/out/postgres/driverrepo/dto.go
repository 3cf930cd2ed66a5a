// Package driverrepo persists driver aggregates.
package driverrepo

import (
	"time"

	"fooddispatch/internal/core/domain/model/driver"
	"fooddispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// DriverDTO is the drivers row. ActiveOrderID is the single in-flight slot;
// a partial unique index keeps two drivers from holding the same order.
type DriverDTO struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null"`
	IsActive       bool       `gorm:"not null"`
	IsAvailable    bool       `gorm:"not null"`
	AvailableSince time.Time  `gorm:"not null"`
	VehicleType    string     `gorm:"type:varchar(16);not null"`
	LicensePlate   string     `gorm:"type:varchar(16);not null"`
	ActiveOrderID  *uuid.UUID `gorm:"type:uuid"`
}

func (DriverDTO) TableName() string {
	return "drivers"
}

func fromDomain(d *driver.Driver) DriverDTO {
	var activeOrderID *uuid.UUID
	if id := d.ActiveOrderID(); id != nil {
		raw := id.Bytes()
		activeOrderID = &raw
	}

	return DriverDTO{
		ID:             d.ID().Bytes(),
		UserID:         d.UserID().Bytes(),
		IsActive:       d.IsActive(),
		IsAvailable:    d.IsAvailable(),
		AvailableSince: d.AvailableSince().UTC(),
		VehicleType:    d.VehicleType().String(),
		LicensePlate:   d.LicensePlate(),
		ActiveOrderID:  activeOrderID,
	}
}

func toDomain(dto DriverDTO) (*driver.Driver, error) {
	vehicle, err := driver.ParseVehicleType(dto.VehicleType)
	if err != nil {
		return nil, err
	}

	var activeOrderID *kernel.UUID
	if dto.ActiveOrderID != nil {
		id := kernel.UUIDFromGoogle(*dto.ActiveOrderID)
		activeOrderID = &id
	}

	return driver.RestoreDriver(
		kernel.UUIDFromGoogle(dto.ID),
		kernel.UUIDFromGoogle(dto.UserID),
		dto.IsActive,
		dto.IsAvailable,
		dto.AvailableSince.UTC(),
		vehicle,
		dto.LicensePlate,
		activeOrderID,
	)
}
