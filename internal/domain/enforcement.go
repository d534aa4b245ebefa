package domain

import "time"

// Enforcement is the ban/suspension snapshot of a carrier. It is a pure
// value object: both the registry (to block writes) and the matcher (to
// exclude carriers from results) evaluate it against a caller-supplied
// clock, so the rule stays testable in isolation.
type Enforcement struct {
	BannedAt       *time.Time
	BannedReason   string
	SuspendedUntil *time.Time
}

// IsBanned reports whether the carrier is permanently banned.
func (e Enforcement) IsBanned() bool {
	return e.BannedAt != nil
}

// IsSuspended reports whether a temporary suspension is still active.
// Suspensions lift automatically once suspendedUntil passes.
func (e Enforcement) IsSuspended(now time.Time) bool {
	return e.SuspendedUntil != nil && e.SuspendedUntil.After(now)
}

// IsEnforced reports whether the carrier is blocked from matching and
// from profile mutation.
func (e Enforcement) IsEnforced(now time.Time) bool {
	return e.IsBanned() || e.IsSuspended(now)
}
