package domain

import "time"

// CarrierStatus represents the availability status of a carrier.
type CarrierStatus string

const (
	CarrierStatusOffline   CarrierStatus = "OFFLINE"
	CarrierStatusAvailable CarrierStatus = "AVAILABLE"
	CarrierStatusOnTrip    CarrierStatus = "ON_TRIP"
)

// ParseCarrierStatus maps a token to a known status.
// Returns false for tokens this subsystem does not accept from callers.
func ParseCarrierStatus(token string) (CarrierStatus, bool) {
	switch CarrierStatus(token) {
	case CarrierStatusOffline, CarrierStatusAvailable:
		return CarrierStatus(token), true
	default:
		// ON_TRIP is owned by the trip flow, never set through this API.
		return "", false
	}
}

// PlanTier represents the subscription tier of a carrier.
type PlanTier string

const (
	PlanTierBasic    PlanTier = "BASIC"
	PlanTierGold     PlanTier = "GOLD"
	PlanTierPlatinum PlanTier = "PLATINUM"
)

// Rank returns the ordinal precedence of a tier for ranking.
// Higher ranks sort first in proximity results.
func (t PlanTier) Rank() int {
	switch t {
	case PlanTierPlatinum:
		return 3
	case PlanTierGold:
		return 2
	default:
		return 1
	}
}

// VerificationStatus represents the document verification state of a carrier.
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "UNVERIFIED"
	VerificationPending    VerificationStatus = "PENDING"
	VerificationVerified   VerificationStatus = "VERIFIED"
	VerificationRejected   VerificationStatus = "REJECTED"
)

// CarrierProfile represents a delivery carrier in the system.
// One profile exists per user; identity is immutable once created.
type CarrierProfile struct {
	ID     string
	UserID string

	Status             CarrierStatus
	PlanTier           PlanTier
	VerificationStatus VerificationStatus

	Phone        string
	StationLat   *float64
	StationLng   *float64
	StationLabel string
	DocPhotoKey  string

	// Live position, written by the ping path. Lat/Lng are meaningful
	// only together: both present or both absent.
	LastSeenAt  time.Time
	LastSeenLat *float64
	LastSeenLng *float64

	BannedAt       *time.Time
	BannedReason   string
	SuspendedUntil *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Enforcement returns the profile's enforcement snapshot.
func (p *CarrierProfile) Enforcement() Enforcement {
	return Enforcement{
		BannedAt:       p.BannedAt,
		BannedReason:   p.BannedReason,
		SuspendedUntil: p.SuspendedUntil,
	}
}
