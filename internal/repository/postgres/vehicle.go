package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"carrier/internal/domain"
	"carrier/internal/repository"
)

// VehicleRepository is a PostgreSQL implementation of repository.VehicleRepository.
type VehicleRepository struct {
	q Querier
}

// NewVehicleRepository creates a new PostgreSQL vehicle repository.
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{q: db}
}

// Current retrieves the most recently created vehicle for a profile.
// There is no "current" flag in the schema; recency is the rule.
func (r *VehicleRepository) Current(ctx context.Context, carrierID string) (*domain.CarrierVehicle, error) {
	query := `SELECT id, carrier_id, type, registration, photo_keys, created_at
		FROM carrier_vehicles
		WHERE carrier_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	var (
		v    domain.CarrierVehicle
		keys pq.StringArray
	)
	err := r.q.QueryRowContext(ctx, query, carrierID).Scan(
		&v.ID, &v.CarrierID, &v.Type, &v.Registration, &keys, &v.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	v.PhotoKeys = []string(keys)
	return &v, nil
}

// Create adds a new vehicle row.
func (r *VehicleRepository) Create(ctx context.Context, vehicle *domain.CarrierVehicle) error {
	query := `INSERT INTO carrier_vehicles (id, carrier_id, type, registration, photo_keys, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.q.ExecContext(ctx, query,
		vehicle.ID, vehicle.CarrierID, string(vehicle.Type),
		vehicle.Registration, pq.StringArray(vehicle.PhotoKeys), vehicle.CreatedAt,
	)
	return mapError(err)
}

// UpdateCurrent applies the patch to the most recent vehicle in place.
// Absent fields keep their stored value.
func (r *VehicleRepository) UpdateCurrent(ctx context.Context, carrierID string, patch repository.VehiclePatch) error {
	query := `UPDATE carrier_vehicles SET
			type = COALESCE($2, type),
			registration = COALESCE($3, registration),
			photo_keys = COALESCE($4, photo_keys)
		WHERE id = (
			SELECT id FROM carrier_vehicles
			WHERE carrier_id = $1
			ORDER BY created_at DESC
			LIMIT 1
		)`

	var vType *string
	if patch.Type != nil {
		s := string(*patch.Type)
		vType = &s
	}
	var keys interface{}
	if patch.PhotoKeys != nil {
		keys = pq.StringArray(patch.PhotoKeys)
	}

	result, err := r.q.ExecContext(ctx, query, carrierID, vType, patch.Registration, keys)
	if err != nil {
		return mapError(err)
	}
	return requireRow(result)
}
