package domain

import (
	"strings"
	"time"
)

// VehicleType represents the kind of vehicle a carrier operates.
type VehicleType string

const (
	VehicleTypeBicycle   VehicleType = "BICYCLE"
	VehicleTypeMotorbike VehicleType = "MOTORBIKE"
	VehicleTypeCar       VehicleType = "CAR"
	VehicleTypeVan       VehicleType = "VAN"
	VehicleTypeTruck     VehicleType = "TRUCK"
)

// MaxVehiclePhotoKeys caps the photo key list stored per vehicle.
const MaxVehiclePhotoKeys = 8

// vehicleAliases maps common spellings onto canonical vehicle types.
var vehicleAliases = map[string]VehicleType{
	"BICYCLE":    VehicleTypeBicycle,
	"BIKE":       VehicleTypeBicycle,
	"MOTORBIKE":  VehicleTypeMotorbike,
	"MOTORCYCLE": VehicleTypeMotorbike,
	"MOTO":       VehicleTypeMotorbike,
	"CAR":        VehicleTypeCar,
	"VAN":        VehicleTypeVan,
	"TRUCK":      VehicleTypeTruck,
	"LORRY":      VehicleTypeTruck,
}

// LookupVehicleType resolves a caller-supplied token against the alias
// table. Matching is case-insensitive.
func LookupVehicleType(token string) (VehicleType, bool) {
	t, ok := vehicleAliases[strings.ToUpper(strings.TrimSpace(token))]
	return t, ok
}

// NormalizeVehicleType resolves a token for registration. Unrecognized
// tokens fall back to MOTORBIKE, the most common carrier vehicle.
func NormalizeVehicleType(token string) VehicleType {
	if t, ok := LookupVehicleType(token); ok {
		return t
	}
	return VehicleTypeMotorbike
}

// VehicleFilter resolves a token for proximity search. Unrecognized
// tokens mean "no filter", never an error.
func VehicleFilter(token string) VehicleType {
	if t, ok := LookupVehicleType(token); ok {
		return t
	}
	return ""
}

// CarrierVehicle represents one vehicle record owned by a carrier profile.
// The "current" vehicle is the most recently created row for the profile.
type CarrierVehicle struct {
	ID           string
	CarrierID    string
	Type         VehicleType
	Registration string
	PhotoKeys    []string
	CreatedAt    time.Time
}
