package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"carrier/internal/domain"
	"carrier/internal/geo"
	"carrier/internal/logger"
	redisstore "carrier/internal/redis"
	"carrier/internal/repository"
)

// Input length caps applied during normalization.
const (
	maxPhoneLen        = 30
	maxPlateLen        = 30
	maxStationLabelLen = 140
	maxVehicleTokenLen = 40
	maxDocPhotoKeyLen  = 240
	maxPhotoKeyLen     = 240
)

// Registry owns the carrier profile/vehicle registration lifecycle.
// Registration is idempotent: repeated calls converge on the same row,
// and enforced carriers get their current state back instead of an
// error, with writes silently refused.
type Registry struct {
	carriers repository.CarrierRepository
	vehicles repository.VehicleRepository
	cache    redisstore.ProfileCacheInterface
	log      logger.ILogger

	// Clock overrides time.Now in tests. Nil means wall clock.
	Clock func() time.Time
}

// NewRegistry creates a new Registry. cache may be nil.
func NewRegistry(
	carriers repository.CarrierRepository,
	vehicles repository.VehicleRepository,
	cache redisstore.ProfileCacheInterface,
	log logger.ILogger,
) *Registry {
	return &Registry{
		carriers: carriers,
		vehicles: vehicles,
		cache:    cache,
		log:      log,
	}
}

func (s *Registry) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// RegisterRequest carries the optional fields of a registration call.
type RegisterRequest struct {
	Phone            string
	VehicleType      string
	VehiclePlate     string
	StationLat       *float64
	StationLng       *float64
	StationLabel     string
	VehiclePhotoKeys []string
	DocPhotoKey      string
}

// normalized trims and caps every string field and drops surplus photo keys.
func (r RegisterRequest) normalized() RegisterRequest {
	r.Phone = trimMax(r.Phone, maxPhoneLen)
	r.VehicleType = trimMax(r.VehicleType, maxVehicleTokenLen)
	r.VehiclePlate = trimMax(r.VehiclePlate, maxPlateLen)
	r.StationLabel = trimMax(r.StationLabel, maxStationLabelLen)
	r.DocPhotoKey = trimMax(r.DocPhotoKey, maxDocPhotoKeyLen)

	if len(r.VehiclePhotoKeys) > 0 {
		keys := make([]string, 0, domain.MaxVehiclePhotoKeys)
		for _, k := range r.VehiclePhotoKeys {
			k = trimMax(k, maxPhotoKeyLen)
			if k == "" {
				continue
			}
			keys = append(keys, k)
			if len(keys) == domain.MaxVehiclePhotoKeys {
				break
			}
		}
		r.VehiclePhotoKeys = keys
	}

	// Station coordinates are meaningful only as a pair.
	if r.StationLat == nil || r.StationLng == nil {
		r.StationLat, r.StationLng = nil, nil
	}
	return r
}

func (r RegisterRequest) wantsProfileUpdate() bool {
	return r.Phone != "" || r.DocPhotoKey != "" || r.StationLabel != "" ||
		(r.StationLat != nil && r.StationLng != nil)
}

func (r RegisterRequest) wantsVehicleUpdate() bool {
	return r.VehicleType != "" || r.VehiclePlate != "" || len(r.VehiclePhotoKeys) > 0
}

func (r RegisterRequest) profilePatch() repository.ProfilePatch {
	patch := repository.ProfilePatch{
		Phone:        optString(r.Phone),
		DocPhotoKey:  optString(r.DocPhotoKey),
		StationLabel: optString(r.StationLabel),
	}
	if r.StationLat != nil && r.StationLng != nil {
		patch.StationLat = r.StationLat
		patch.StationLng = r.StationLng
	}
	return patch
}

func (r RegisterRequest) vehiclePatch() repository.VehiclePatch {
	patch := repository.VehiclePatch{
		Registration: optString(r.VehiclePlate),
		PhotoKeys:    r.VehiclePhotoKeys,
	}
	if r.VehicleType != "" {
		t := domain.NormalizeVehicleType(r.VehicleType)
		patch.Type = &t
	}
	return patch
}

// RegisterResult is the outcome of a registration call.
type RegisterResult struct {
	AlreadyRegistered bool
	UpdateBlocked     bool
	Profile           ProfileView
}

// Register ensures a profile (and best-effort a vehicle) exists for the
// user, applying any supplied fields. Enforced carriers and empty
// payloads short-circuit without a write.
func (s *Registry) Register(ctx context.Context, userID string, req RegisterRequest) (*RegisterResult, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	req = req.normalized()
	now := s.now()

	existing, err := s.carriers.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	wantsProfile := req.wantsProfileUpdate()
	wantsVehicle := req.wantsVehicleUpdate()

	if existing != nil {
		if existing.Enforcement().IsEnforced(now) {
			// Report state back to the enforced carrier; refuse the write.
			return s.snapshot(ctx, existing, now, wantsProfile || wantsVehicle), nil
		}
		if !wantsProfile && !wantsVehicle {
			// "Ensure a profile exists" calls are free of side effects.
			return s.snapshot(ctx, existing, now, false), nil
		}
	}

	profile, err := s.carriers.Upsert(ctx, userID, req.profilePatch(), now)
	if err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}
		// A concurrent registration won the create race; the unique
		// constraint is the authority, so resolve to the existing row.
		profile, err = s.carriers.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	vehicle := s.ensureVehicle(ctx, profile, req, wantsVehicle, now)
	s.invalidate(ctx, userID)

	return &RegisterResult{
		AlreadyRegistered: existing != nil,
		Profile:           NewProfileView(profile, vehicle, now),
	}, nil
}

// snapshot returns the current state without writing anything.
func (s *Registry) snapshot(ctx context.Context, p *domain.CarrierProfile, now time.Time, blocked bool) *RegisterResult {
	vehicle := s.currentVehicle(ctx, p.ID)
	return &RegisterResult{
		AlreadyRegistered: true,
		UpdateBlocked:     blocked,
		Profile:           NewProfileView(p, vehicle, now),
	}
}

// ensureVehicle creates or updates the current vehicle. The vehicle is
// an enhancement, not the operation's contract: failures are logged and
// never surfaced to the caller.
func (s *Registry) ensureVehicle(ctx context.Context, profile *domain.CarrierProfile, req RegisterRequest, wantsVehicle bool, now time.Time) *domain.CarrierVehicle {
	current, err := s.vehicles.Current(ctx, profile.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.log.Warn("current vehicle lookup failed",
			logger.String("carrierId", profile.ID), logger.Error(err))
		return nil
	}

	if current == nil {
		vehicle := &domain.CarrierVehicle{
			ID:           uuid.New().String(),
			CarrierID:    profile.ID,
			Type:         domain.NormalizeVehicleType(req.VehicleType),
			Registration: req.VehiclePlate,
			PhotoKeys:    req.VehiclePhotoKeys,
			CreatedAt:    now,
		}
		if err := s.vehicles.Create(ctx, vehicle); err != nil {
			s.log.Warn("vehicle create failed",
				logger.String("carrierId", profile.ID), logger.Error(err))
			return nil
		}
		return vehicle
	}

	if !wantsVehicle {
		return current
	}

	patch := req.vehiclePatch()
	if err := s.vehicles.UpdateCurrent(ctx, profile.ID, patch); err != nil {
		s.log.Warn("vehicle update failed",
			logger.String("carrierId", profile.ID), logger.Error(err))
		return current
	}

	// Mirror the patch onto the in-memory copy for the response view.
	if patch.Type != nil {
		current.Type = *patch.Type
	}
	if patch.Registration != nil {
		current.Registration = *patch.Registration
	}
	if patch.PhotoKeys != nil {
		current.PhotoKeys = patch.PhotoKeys
	}
	return current
}

// PingResult is the outcome of a location ping.
type PingResult struct {
	Blocked bool
}

// Ping records the carrier's live position. Enforced carriers are
// refused without a write, mirroring the registration contract.
func (s *Registry) Ping(ctx context.Context, userID string, lat, lng float64) (*PingResult, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if !geo.ValidLat(lat) || !geo.ValidLng(lng) {
		return nil, ErrInvalidLocation
	}

	now := s.now()
	profile, err := s.carriers.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, err
	}

	if profile.Enforcement().IsEnforced(now) {
		return &PingResult{Blocked: true}, nil
	}

	if err := s.carriers.UpdateLastSeen(ctx, userID, lat, lng, now); err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return &PingResult{}, nil
}

// SetStatus toggles the carrier between AVAILABLE and OFFLINE. ON_TRIP
// is owned by the trip flow and rejected here.
func (s *Registry) SetStatus(ctx context.Context, userID, statusToken string) (*PingResult, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	status, ok := domain.ParseCarrierStatus(strings.TrimSpace(statusToken))
	if !ok {
		return nil, ErrInvalidStatus
	}

	now := s.now()
	profile, err := s.carriers.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, err
	}

	if profile.Enforcement().IsEnforced(now) {
		return &PingResult{Blocked: true}, nil
	}

	if err := s.carriers.UpdateStatus(ctx, userID, status, now); err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return &PingResult{}, nil
}

// Me returns the user's own profile view, read through the cache.
func (s *Registry) Me(ctx context.Context, userID string) (*ProfileView, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, userID); err == nil && data != nil {
			var view ProfileView
			if json.Unmarshal(data, &view) == nil {
				return &view, nil
			}
		}
	}

	profile, err := s.carriers.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, err
	}

	view := NewProfileView(profile, s.currentVehicle(ctx, profile.ID), s.now())

	if s.cache != nil {
		if data, err := json.Marshal(view); err == nil {
			_ = s.cache.Set(ctx, userID, data)
		}
	}
	return &view, nil
}

// currentVehicle fetches the current vehicle, tolerating absence and
// lookup failures.
func (s *Registry) currentVehicle(ctx context.Context, carrierID string) *domain.CarrierVehicle {
	vehicle, err := s.vehicles.Current(ctx, carrierID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("current vehicle lookup failed",
				logger.String("carrierId", carrierID), logger.Error(err))
		}
		return nil
	}
	return vehicle
}

func (s *Registry) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, userID)
}

// trimMax trims whitespace and caps the result at max runes.
func trimMax(s string, max int) string {
	s = strings.TrimSpace(s)
	if runes := []rune(s); len(runes) > max {
		s = string(runes[:max])
	}
	return s
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
