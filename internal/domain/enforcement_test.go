package domain

import (
	"testing"
	"time"
)

func TestEnforcement_Ban(t *testing.T) {
	t.Parallel()

	now := time.Now()
	bannedAt := now.Add(-365 * 24 * time.Hour)
	e := Enforcement{BannedAt: &bannedAt}

	if !e.IsBanned() {
		t.Error("a set bannedAt means banned")
	}
	// Bans never expire, regardless of how much time passes.
	if !e.IsEnforced(now.Add(10 * 365 * 24 * time.Hour)) {
		t.Error("a ban must enforce forever")
	}
}

func TestEnforcement_SuspensionWindow(t *testing.T) {
	t.Parallel()

	now := time.Now()
	until := now.Add(time.Hour)
	e := Enforcement{SuspendedUntil: &until}

	if !e.IsSuspended(now) {
		t.Error("inside the window the carrier is suspended")
	}
	if !e.IsEnforced(now) {
		t.Error("an active suspension enforces")
	}

	// The boundary instant itself is no longer suspended.
	if e.IsSuspended(until) {
		t.Error("suspension lifts exactly at suspendedUntil")
	}
	if e.IsEnforced(until.Add(time.Second)) {
		t.Error("a lapsed suspension must not enforce")
	}
}

func TestEnforcement_CleanProfile(t *testing.T) {
	t.Parallel()

	var e Enforcement
	if e.IsBanned() || e.IsSuspended(time.Now()) || e.IsEnforced(time.Now()) {
		t.Error("the zero value must not enforce")
	}
}

func TestParseCarrierStatus(t *testing.T) {
	t.Parallel()

	if s, ok := ParseCarrierStatus("AVAILABLE"); !ok || s != CarrierStatusAvailable {
		t.Errorf("AVAILABLE must parse, got %q %v", s, ok)
	}
	if s, ok := ParseCarrierStatus("OFFLINE"); !ok || s != CarrierStatusOffline {
		t.Errorf("OFFLINE must parse, got %q %v", s, ok)
	}
	// Trip-owned and unknown tokens are rejected.
	for _, token := range []string{"ON_TRIP", "BUSY", "available", ""} {
		if _, ok := ParseCarrierStatus(token); ok {
			t.Errorf("%q must not parse", token)
		}
	}
}

func TestPlanTierRank(t *testing.T) {
	t.Parallel()

	if PlanTierPlatinum.Rank() <= PlanTierGold.Rank() {
		t.Error("PLATINUM must outrank GOLD")
	}
	if PlanTierGold.Rank() <= PlanTierBasic.Rank() {
		t.Error("GOLD must outrank BASIC")
	}
	// Unknown tiers degrade to the baseline rather than breaking ranking.
	if PlanTier("LEGACY").Rank() != PlanTierBasic.Rank() {
		t.Error("an unknown tier ranks as BASIC")
	}
}

func TestVehicleTokenResolution(t *testing.T) {
	t.Parallel()

	aliases := map[string]VehicleType{
		"bike":       VehicleTypeBicycle,
		"BICYCLE":    VehicleTypeBicycle,
		"motorcycle": VehicleTypeMotorbike,
		"Moto":       VehicleTypeMotorbike,
		" lorry ":    VehicleTypeTruck,
		"van":        VehicleTypeVan,
	}
	for token, want := range aliases {
		got, ok := LookupVehicleType(token)
		if !ok || got != want {
			t.Errorf("LookupVehicleType(%q) = %q %v, want %q", token, got, ok, want)
		}
	}

	// Registration defaults unknowns; search drops them.
	if got := NormalizeVehicleType("hoverboard"); got != VehicleTypeMotorbike {
		t.Errorf("NormalizeVehicleType fallback = %q, want MOTORBIKE", got)
	}
	if got := VehicleFilter("hoverboard"); got != "" {
		t.Errorf("VehicleFilter for an unknown token = %q, want empty", got)
	}
}
