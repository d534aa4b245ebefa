package repository

import (
	"context"
	"time"

	"carrier/internal/domain"
	"carrier/internal/geo"
)

// ProfilePatch carries the optional fields of a registration call.
// Nil pointers mean "leave unchanged" (or "use the default" on create).
// Station coordinates are applied as a pair or not at all.
type ProfilePatch struct {
	Phone        *string
	DocPhotoKey  *string
	StationLabel *string
	StationLat   *float64
	StationLng   *float64
}

// NearbyQuery restricts the candidate set for a proximity search.
// The bounding box is a pre-filter only; exact distance filtering
// happens in the matcher after the fetch.
type NearbyQuery struct {
	Box         geo.BoundingBox
	VehicleType domain.VehicleType // empty means no filter
	Now         time.Time
	Limit       int
}

// NearbyCandidate is one row of the bounded candidate fetch, with the
// current vehicle type and the owning user's display name joined in.
type NearbyCandidate struct {
	ID                 string
	UserID             string
	DisplayName        string
	Status             domain.CarrierStatus
	PlanTier           domain.PlanTier
	VerificationStatus domain.VerificationStatus
	VehicleType        domain.VehicleType
	LastSeenAt         time.Time
	LastSeenLat        *float64
	LastSeenLng        *float64
}

// CarrierRepository defines the persistence operations for carrier profiles.
type CarrierRepository interface {
	// GetByUserID retrieves the profile owned by a user.
	GetByUserID(ctx context.Context, userID string) (*domain.CarrierProfile, error)

	// Upsert creates the profile for a user or applies the patch to the
	// existing one, as a single constrained write keyed on the user_id
	// uniqueness constraint. lastSeenAt is touched to now either way.
	// Returns the resulting row.
	Upsert(ctx context.Context, userID string, patch ProfilePatch, now time.Time) (*domain.CarrierProfile, error)

	// UpdateLastSeen records a location ping for a user's profile.
	UpdateLastSeen(ctx context.Context, userID string, lat, lng float64, at time.Time) error

	// UpdateStatus changes the availability status of a user's profile.
	UpdateStatus(ctx context.Context, userID string, status domain.CarrierStatus, at time.Time) error

	// FindNearby returns available, non-enforced candidates inside the
	// bounding box, ordered by (tier desc, lastSeenAt desc), capped at
	// q.Limit rows.
	FindNearby(ctx context.Context, q NearbyQuery) ([]NearbyCandidate, error)
}
