package repository

import (
	"context"

	"carrier/internal/domain"
)

// VehiclePatch carries the optional vehicle fields of a registration call.
type VehiclePatch struct {
	Type         *domain.VehicleType
	Registration *string
	PhotoKeys    []string // nil means unchanged
}

// VehicleRepository defines the persistence operations for carrier vehicles.
type VehicleRepository interface {
	// Current retrieves the most recently created vehicle for a profile.
	Current(ctx context.Context, carrierID string) (*domain.CarrierVehicle, error)

	// Create adds a new vehicle row.
	Create(ctx context.Context, vehicle *domain.CarrierVehicle) error

	// UpdateCurrent applies the patch to the current vehicle in place.
	UpdateCurrent(ctx context.Context, carrierID string, patch VehiclePatch) error
}
