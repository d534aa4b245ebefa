package postgres

import (
	"context"
	"database/sql"
	"time"

	"carrier/internal/domain"
	"carrier/internal/repository"
)

// CarrierRepository is a PostgreSQL implementation of repository.CarrierRepository.
type CarrierRepository struct {
	q Querier
}

// NewCarrierRepository creates a new PostgreSQL carrier repository.
func NewCarrierRepository(db *sql.DB) *CarrierRepository {
	return &CarrierRepository{q: db}
}

// NewCarrierRepositoryWithTx creates a carrier repository using a transaction.
func NewCarrierRepositoryWithTx(tx *sql.Tx) *CarrierRepository {
	return &CarrierRepository{q: tx}
}

const profileColumns = `id, user_id, status, plan_tier, verification_status,
	phone, doc_photo_key, station_label, station_lat, station_lng,
	last_seen_at, last_seen_lat, last_seen_lng,
	banned_at, banned_reason, suspended_until, created_at, updated_at`

// GetByUserID retrieves the profile owned by a user.
func (r *CarrierRepository) GetByUserID(ctx context.Context, userID string) (*domain.CarrierProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM carrier_profiles WHERE user_id = $1`
	return scanProfile(r.q.QueryRowContext(ctx, query, userID))
}

// Upsert creates or patches the profile for a user in a single write
// constrained by the user_id uniqueness index, so two concurrent
// registration calls resolve to the same row. Absent patch fields keep
// their stored value; lastSeenAt and updatedAt are always touched.
func (r *CarrierRepository) Upsert(ctx context.Context, userID string, patch repository.ProfilePatch, now time.Time) (*domain.CarrierProfile, error) {
	query := `
		INSERT INTO carrier_profiles (
			id, user_id, status, plan_tier, verification_status,
			phone, doc_photo_key, station_label, station_lat, station_lng,
			last_seen_at, created_at, updated_at
		) VALUES (
			$1, $2, 'OFFLINE', 'BASIC', 'PENDING',
			COALESCE($3, ''), COALESCE($4, ''), COALESCE($5, ''), $6, $7,
			$8, $8, $8
		)
		ON CONFLICT (user_id) DO UPDATE SET
			phone         = COALESCE($3, carrier_profiles.phone),
			doc_photo_key = COALESCE($4, carrier_profiles.doc_photo_key),
			station_label = COALESCE($5, carrier_profiles.station_label),
			station_lat   = COALESCE($6, carrier_profiles.station_lat),
			station_lng   = COALESCE($7, carrier_profiles.station_lng),
			last_seen_at  = $8,
			updated_at    = $8
		RETURNING ` + profileColumns

	row := r.q.QueryRowContext(ctx, query,
		newProfileID(), userID,
		patch.Phone, patch.DocPhotoKey, patch.StationLabel,
		patch.StationLat, patch.StationLng,
		now,
	)
	return scanProfile(row)
}

// UpdateLastSeen records a location ping for a user's profile.
func (r *CarrierRepository) UpdateLastSeen(ctx context.Context, userID string, lat, lng float64, at time.Time) error {
	query := `UPDATE carrier_profiles
		SET last_seen_at = $2, last_seen_lat = $3, last_seen_lng = $4, updated_at = $2
		WHERE user_id = $1`

	result, err := r.q.ExecContext(ctx, query, userID, at, lat, lng)
	if err != nil {
		return mapError(err)
	}
	return requireRow(result)
}

// UpdateStatus changes the availability status of a user's profile.
func (r *CarrierRepository) UpdateStatus(ctx context.Context, userID string, status domain.CarrierStatus, at time.Time) error {
	query := `UPDATE carrier_profiles SET status = $2, updated_at = $3 WHERE user_id = $1`

	result, err := r.q.ExecContext(ctx, query, userID, string(status), at)
	if err != nil {
		return mapError(err)
	}
	return requireRow(result)
}

// FindNearby returns available, non-enforced candidates whose last seen
// position falls inside the bounding box, joined with the current
// vehicle and the owning user's display name. Ordering and the row cap
// bound the work done per request; exact distance filtering happens in
// the matcher.
func (r *CarrierRepository) FindNearby(ctx context.Context, q repository.NearbyQuery) ([]repository.NearbyCandidate, error) {
	query := `
		SELECT c.id, c.user_id, COALESCE(u.name, ''),
			c.status, c.plan_tier, c.verification_status,
			COALESCE(v.type, ''), c.last_seen_at, c.last_seen_lat, c.last_seen_lng
		FROM carrier_profiles c
		LEFT JOIN users u ON u.id = c.user_id
		LEFT JOIN LATERAL (
			SELECT type FROM carrier_vehicles
			WHERE carrier_id = c.id ORDER BY created_at DESC LIMIT 1
		) v ON true
		WHERE c.status = 'AVAILABLE'
		  AND c.banned_at IS NULL
		  AND (c.suspended_until IS NULL OR c.suspended_until <= $1)
		  AND c.last_seen_lat BETWEEN $2 AND $3
		  AND c.last_seen_lng BETWEEN $4 AND $5
		  AND ($6 = '' OR EXISTS (
			SELECT 1 FROM carrier_vehicles cv
			WHERE cv.carrier_id = c.id AND cv.type = $6
		  ))
		ORDER BY CASE c.plan_tier
				WHEN 'PLATINUM' THEN 3
				WHEN 'GOLD' THEN 2
				ELSE 1
			END DESC,
			c.last_seen_at DESC
		LIMIT $7`

	rows, err := r.q.QueryContext(ctx, query,
		q.Now,
		q.Box.MinLat, q.Box.MaxLat, q.Box.MinLng, q.Box.MaxLng,
		string(q.VehicleType), q.Limit,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var candidates []repository.NearbyCandidate
	for rows.Next() {
		var (
			c        repository.NearbyCandidate
			vType    string
			lat, lng sql.NullFloat64
		)
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.DisplayName,
			&c.Status, &c.PlanTier, &c.VerificationStatus,
			&vType, &c.LastSeenAt, &lat, &lng,
		); err != nil {
			return nil, err
		}
		c.VehicleType = domain.VehicleType(vType)
		c.LastSeenLat = nullFloat(lat)
		c.LastSeenLng = nullFloat(lng)
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// scanProfile reads one carrier_profiles row.
func scanProfile(row *sql.Row) (*domain.CarrierProfile, error) {
	var (
		p                        domain.CarrierProfile
		stationLat, stationLng   sql.NullFloat64
		lastSeenLat, lastSeenLng sql.NullFloat64
		bannedAt, suspendedUntil sql.NullTime
	)

	err := row.Scan(
		&p.ID, &p.UserID, &p.Status, &p.PlanTier, &p.VerificationStatus,
		&p.Phone, &p.DocPhotoKey, &p.StationLabel, &stationLat, &stationLng,
		&p.LastSeenAt, &lastSeenLat, &lastSeenLng,
		&bannedAt, &p.BannedReason, &suspendedUntil, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}

	p.StationLat = nullFloat(stationLat)
	p.StationLng = nullFloat(stationLng)
	p.LastSeenLat = nullFloat(lastSeenLat)
	p.LastSeenLng = nullFloat(lastSeenLng)
	p.BannedAt = nullTime(bannedAt)
	p.SuspendedUntil = nullTime(suspendedUntil)
	return &p, nil
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
