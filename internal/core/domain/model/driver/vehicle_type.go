package driver

import (
	"fmt"

	"fooddispatch/internal/pkg/errs"
)

type VehicleType int

const (
	UnknownVehicle VehicleType = iota
	Bicycle
	Scooter
	Car
)

func getVehicleTypeStrings() map[VehicleType]string {
	return map[VehicleType]string{
		UnknownVehicle: "unknown",
		Bicycle:        "bicycle",
		Scooter:        "scooter",
		Car:            "car",
	}
}

func ParseVehicleType(s string) (VehicleType, error) {
	for v, str := range getVehicleTypeStrings() {
		if str == s && v != UnknownVehicle {
			return v, nil
		}
	}
	return UnknownVehicle, errs.NewValueIsInvalidErrorWithCause("vehicleType", fmt.Errorf("%q is not a vehicle type", s))
}

func (v VehicleType) String() string {
	if s, ok := getVehicleTypeStrings()[v]; ok {
		return s
	}
	return "unknown"
}

func (v VehicleType) Validate() error {
	if v <= UnknownVehicle || v > Car {
		return errs.NewValueIsInvalidErrorWithCause("vehicleType", fmt.Errorf("%d is not a vehicle type", v))
	}
	return nil
}
