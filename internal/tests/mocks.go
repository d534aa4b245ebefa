package tests

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"carrier/internal/domain"
	"carrier/internal/repository"
)

// errTestInjected is the failure injected through the mock error hooks.
var errTestInjected = errors.New("injected failure")

// ──────────────────────────────────────────────
// MOCK CARRIER REPOSITORY
// ──────────────────────────────────────────────

// MockCarrierRepository is an in-memory implementation of
// repository.CarrierRepository. FindNearby emulates the SQL predicate:
// availability, enforcement, bounding box, vehicle filter, ordering and
// the row cap all behave like the real query.
type MockCarrierRepository struct {
	mu       sync.RWMutex
	profiles map[string]*domain.CarrierProfile // keyed by userID
	names    map[string]string                 // userID -> display name
	vehicles *MockVehicleRepository            // for the vehicle-type filter

	// Counters for verification
	UpsertCallCount         int32
	UpdateLastSeenCallCount int32
	UpdateStatusCallCount   int32

	// Error injection
	UpsertError     error
	FindNearbyError error

	// MissFirstGet makes the first GetByUserID miss even when the
	// profile is seeded, emulating a read racing a concurrent insert.
	MissFirstGet bool
	getCalls     int32
}

// NewMockCarrierRepository creates a new mock carrier repository.
// vehicles may be nil when the test has no vehicle-type filtering.
func NewMockCarrierRepository(vehicles *MockVehicleRepository) *MockCarrierRepository {
	return &MockCarrierRepository{
		profiles: make(map[string]*domain.CarrierProfile),
		names:    make(map[string]string),
		vehicles: vehicles,
	}
}

// AddProfile seeds a profile.
func (m *MockCarrierRepository) AddProfile(p *domain.CarrierProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.UserID] = p
}

// SetDisplayName seeds the joined user display name.
func (m *MockCarrierRepository) SetDisplayName(userID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names[userID] = name
}

func (m *MockCarrierRepository) GetByUserID(ctx context.Context, userID string) (*domain.CarrierProfile, error) {
	if m.MissFirstGet && atomic.AddInt32(&m.getCalls, 1) == 1 {
		return nil, repository.ErrNotFound
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *p
	return &copy, nil
}

func (m *MockCarrierRepository) Upsert(ctx context.Context, userID string, patch repository.ProfilePatch, now time.Time) (*domain.CarrierProfile, error) {
	atomic.AddInt32(&m.UpsertCallCount, 1)
	if m.UpsertError != nil {
		return nil, m.UpsertError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[userID]
	if !ok {
		p = &domain.CarrierProfile{
			ID:                 uuid.New().String(),
			UserID:             userID,
			Status:             domain.CarrierStatusOffline,
			PlanTier:           domain.PlanTierBasic,
			VerificationStatus: domain.VerificationPending,
			CreatedAt:          now,
		}
		m.profiles[userID] = p
	}

	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	if patch.DocPhotoKey != nil {
		p.DocPhotoKey = *patch.DocPhotoKey
	}
	if patch.StationLabel != nil {
		p.StationLabel = *patch.StationLabel
	}
	if patch.StationLat != nil && patch.StationLng != nil {
		lat, lng := *patch.StationLat, *patch.StationLng
		p.StationLat, p.StationLng = &lat, &lng
	}
	p.LastSeenAt = now
	p.UpdatedAt = now

	copy := *p
	return &copy, nil
}

func (m *MockCarrierRepository) UpdateLastSeen(ctx context.Context, userID string, lat, lng float64, at time.Time) error {
	atomic.AddInt32(&m.UpdateLastSeenCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return repository.ErrNotFound
	}
	p.LastSeenAt = at
	p.LastSeenLat, p.LastSeenLng = &lat, &lng
	p.UpdatedAt = at
	return nil
}

func (m *MockCarrierRepository) UpdateStatus(ctx context.Context, userID string, status domain.CarrierStatus, at time.Time) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return repository.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = at
	return nil
}

func (m *MockCarrierRepository) FindNearby(ctx context.Context, q repository.NearbyQuery) ([]repository.NearbyCandidate, error) {
	if m.FindNearbyError != nil {
		return nil, m.FindNearbyError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var candidates []repository.NearbyCandidate
	for _, p := range m.profiles {
		if p.Status != domain.CarrierStatusAvailable {
			continue
		}
		if p.BannedAt != nil {
			continue
		}
		if p.SuspendedUntil != nil && p.SuspendedUntil.After(q.Now) {
			continue
		}
		if p.LastSeenLat == nil || p.LastSeenLng == nil {
			continue
		}
		lat, lng := *p.LastSeenLat, *p.LastSeenLng
		if lat < q.Box.MinLat || lat > q.Box.MaxLat || lng < q.Box.MinLng || lng > q.Box.MaxLng {
			continue
		}

		vehicleType := m.currentVehicleType(p.ID)
		if q.VehicleType != "" && !m.hasVehicleOfType(p.ID, q.VehicleType) {
			continue
		}

		candidates = append(candidates, repository.NearbyCandidate{
			ID:                 p.ID,
			UserID:             p.UserID,
			DisplayName:        m.names[p.UserID],
			Status:             p.Status,
			PlanTier:           p.PlanTier,
			VerificationStatus: p.VerificationStatus,
			VehicleType:        vehicleType,
			LastSeenAt:         p.LastSeenAt,
			LastSeenLat:        p.LastSeenLat,
			LastSeenLng:        p.LastSeenLng,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if a, b := candidates[i].PlanTier.Rank(), candidates[j].PlanTier.Rank(); a != b {
			return a > b
		}
		return candidates[i].LastSeenAt.After(candidates[j].LastSeenAt)
	})

	if q.Limit > 0 && len(candidates) > q.Limit {
		candidates = candidates[:q.Limit]
	}
	return candidates, nil
}

func (m *MockCarrierRepository) currentVehicleType(carrierID string) domain.VehicleType {
	if m.vehicles == nil {
		return ""
	}
	v := m.vehicles.snapshotCurrent(carrierID)
	if v == nil {
		return ""
	}
	return v.Type
}

func (m *MockCarrierRepository) hasVehicleOfType(carrierID string, t domain.VehicleType) bool {
	if m.vehicles == nil {
		return false
	}
	return m.vehicles.snapshotHasType(carrierID, t)
}

// ──────────────────────────────────────────────
// MOCK VEHICLE REPOSITORY
// ──────────────────────────────────────────────

// MockVehicleRepository is an in-memory implementation of
// repository.VehicleRepository. "Current" resolves by recency, matching
// the schema rule.
type MockVehicleRepository struct {
	mu       sync.RWMutex
	vehicles map[string][]*domain.CarrierVehicle // keyed by carrierID

	// Counters for verification
	CreateCallCount        int32
	UpdateCurrentCallCount int32

	// Error injection
	CreateError        error
	CurrentError       error
	UpdateCurrentError error
}

// NewMockVehicleRepository creates a new mock vehicle repository.
func NewMockVehicleRepository() *MockVehicleRepository {
	return &MockVehicleRepository{
		vehicles: make(map[string][]*domain.CarrierVehicle),
	}
}

// AddVehicle seeds a vehicle row.
func (m *MockVehicleRepository) AddVehicle(v *domain.CarrierVehicle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[v.CarrierID] = append(m.vehicles[v.CarrierID], v)
}

// VehicleCount reports the number of rows stored for a profile.
func (m *MockVehicleRepository) VehicleCount(carrierID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vehicles[carrierID])
}

func (m *MockVehicleRepository) Current(ctx context.Context, carrierID string) (*domain.CarrierVehicle, error) {
	if m.CurrentError != nil {
		return nil, m.CurrentError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v := m.current(carrierID)
	if v == nil {
		return nil, repository.ErrNotFound
	}
	copy := *v
	return &copy, nil
}

func (m *MockVehicleRepository) Create(ctx context.Context, vehicle *domain.CarrierVehicle) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *vehicle
	m.vehicles[vehicle.CarrierID] = append(m.vehicles[vehicle.CarrierID], &copy)
	return nil
}

func (m *MockVehicleRepository) UpdateCurrent(ctx context.Context, carrierID string, patch repository.VehiclePatch) error {
	atomic.AddInt32(&m.UpdateCurrentCallCount, 1)
	if m.UpdateCurrentError != nil {
		return m.UpdateCurrentError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.current(carrierID)
	if v == nil {
		return repository.ErrNotFound
	}
	if patch.Type != nil {
		v.Type = *patch.Type
	}
	if patch.Registration != nil {
		v.Registration = *patch.Registration
	}
	if patch.PhotoKeys != nil {
		v.PhotoKeys = patch.PhotoKeys
	}
	return nil
}

// current returns the most recently created row. Caller holds the lock.
func (m *MockVehicleRepository) current(carrierID string) *domain.CarrierVehicle {
	rows := m.vehicles[carrierID]
	if len(rows) == 0 {
		return nil
	}
	latest := rows[0]
	for _, v := range rows[1:] {
		if v.CreatedAt.After(latest.CreatedAt) {
			latest = v
		}
	}
	return latest
}

func (m *MockVehicleRepository) snapshotCurrent(carrierID string) *domain.CarrierVehicle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current(carrierID)
}

func (m *MockVehicleRepository) snapshotHasType(carrierID string, t domain.VehicleType) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.vehicles[carrierID] {
		if v.Type == t {
			return true
		}
	}
	return false
}

// Ensure mocks satisfy the repository interfaces.
var (
	_ repository.CarrierRepository = (*MockCarrierRepository)(nil)
	_ repository.VehicleRepository = (*MockVehicleRepository)(nil)
)
