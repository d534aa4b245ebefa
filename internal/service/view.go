package service

import (
	"time"

	"carrier/internal/domain"
)

// StationView is the declared home base of a carrier, distinct from the
// live position.
type StationView struct {
	Lat   *float64 `json:"lat"`
	Lng   *float64 `json:"lng"`
	Label string   `json:"label"`
}

// EnforcementView reports ban/suspension state back to the profile
// owner, so their client can show the notice.
type EnforcementView struct {
	Banned         bool       `json:"banned"`
	BannedAt       *time.Time `json:"bannedAt"`
	BannedReason   string     `json:"bannedReason,omitempty"`
	Suspended      bool       `json:"suspended"`
	SuspendedUntil *time.Time `json:"suspendedUntil"`
}

// ProfileView is the normalized profile+vehicle+enforcement snapshot
// returned by registration and self-profile reads.
type ProfileView struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"userId"`
	Status             string          `json:"status"`
	PlanTier           string          `json:"planTier"`
	VerificationStatus string          `json:"verificationStatus"`
	Phone              string          `json:"phone"`
	VehicleType        string          `json:"vehicleType"`
	VehiclePlate       string          `json:"vehiclePlate"`
	Station            StationView     `json:"station"`
	Enforcement        EnforcementView `json:"enforcement"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// NewProfileView merges a profile and its current vehicle into the
// caller-facing shape. vehicle may be nil.
func NewProfileView(p *domain.CarrierProfile, vehicle *domain.CarrierVehicle, now time.Time) ProfileView {
	e := p.Enforcement()
	view := ProfileView{
		ID:                 p.ID,
		UserID:             p.UserID,
		Status:             string(p.Status),
		PlanTier:           string(p.PlanTier),
		VerificationStatus: string(p.VerificationStatus),
		Phone:              p.Phone,
		Station: StationView{
			Lat:   p.StationLat,
			Lng:   p.StationLng,
			Label: p.StationLabel,
		},
		Enforcement: EnforcementView{
			Banned:         e.IsBanned(),
			BannedAt:       p.BannedAt,
			BannedReason:   p.BannedReason,
			Suspended:      e.IsSuspended(now),
			SuspendedUntil: p.SuspendedUntil,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if vehicle != nil {
		view.VehicleType = string(vehicle.Type)
		view.VehiclePlate = vehicle.Registration
	}
	return view
}
