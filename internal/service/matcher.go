package service

import (
	"context"
	"sort"
	"time"

	"carrier/internal/domain"
	"carrier/internal/geo"
	"carrier/internal/logger"
	"carrier/internal/repository"
)

const (
	// FreshnessCutoff separates live pings from stale ones.
	FreshnessCutoff = 90 * time.Second

	// FreshnessStrategy names the stale-handling policy: stale carriers
	// stay in the result ranked lower, with their exact position withheld.
	FreshnessStrategy = "include-stale-rank-lower"

	// maxCandidates caps the work done per request. It is a performance
	// safeguard, not a pagination contract: under extreme carrier
	// density inside one bounding box the result is not guaranteed to
	// be the exhaustive true top-N.
	maxCandidates = 300
)

// Matcher is the read-only proximity search engine.
type Matcher struct {
	carriers repository.CarrierRepository
	log      logger.ILogger

	// Clock overrides time.Now in tests. Nil means wall clock.
	Clock func() time.Time
}

// NewMatcher creates a new Matcher.
func NewMatcher(carriers repository.CarrierRepository, log logger.ILogger) *Matcher {
	return &Matcher{carriers: carriers, log: log}
}

func (s *Matcher) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// NearbyRequest contains the parameters for a proximity search.
// Coordinates and radius are clamped, not rejected; an unrecognized
// vehicle type token means no filter.
type NearbyRequest struct {
	Lat         float64
	Lng         float64
	RadiusKm    float64
	VehicleType string
	ProductID   string // context for logging only, never used in matching
}

// QueryEcho is the normalized query reflected back to the caller.
type QueryEcho struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	RadiusKm    float64 `json:"radiusKm"`
	VehicleType string  `json:"vehicleType,omitempty"`
	ProductID   string  `json:"productId,omitempty"`
}

// Location is a published carrier position.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CarrierCard is one ranked proximity result. Location is present only
// while the ping is live; a stale carrier might still be reachable, but
// its exact position is not trustworthy enough to publish.
type CarrierCard struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"userId"`
	DisplayName        string     `json:"displayName"`
	PlanTier           string     `json:"planTier"`
	VerificationStatus string     `json:"verificationStatus"`
	Status             string     `json:"status"`
	VehicleType        string     `json:"vehicleType"`
	DistanceKm         float64    `json:"distanceKm"`
	LastSeenAt         time.Time  `json:"lastSeenAt"`
	IsLive             bool       `json:"isLive"`
	IsStale            bool       `json:"isStale"`
	Location           *Location  `json:"location"`

	distance float64 // unrounded, for ranking
	tierRank int
}

// NearbyResult is the outcome of a proximity search.
type NearbyResult struct {
	Query   QueryEcho
	Results []CarrierCard
}

// FindNearby returns available, non-enforced carriers around a point,
// ranked by tier, freshness, distance and recency. The bounding box
// restricts the candidate fetch; the haversine distance decides
// inclusion, since box corners can fall outside the true circle.
func (s *Matcher) FindNearby(ctx context.Context, req NearbyRequest) (*NearbyResult, error) {
	lat := geo.ClampLat(req.Lat)
	lng := geo.ClampLng(req.Lng)
	radiusKm := geo.ClampRadiusKm(req.RadiusKm)
	filter := domain.VehicleFilter(req.VehicleType)
	now := s.now()

	candidates, err := s.carriers.FindNearby(ctx, repository.NearbyQuery{
		Box:         geo.BoxAround(lat, lng, radiusKm),
		VehicleType: filter,
		Now:         now,
		Limit:       maxCandidates,
	})
	if err != nil {
		return nil, err
	}

	cards := make([]CarrierCard, 0, len(candidates))
	for _, c := range candidates {
		if c.LastSeenLat == nil || c.LastSeenLng == nil {
			continue
		}
		cLat, cLng := *c.LastSeenLat, *c.LastSeenLng
		if !geo.IsFinite(cLat) || !geo.IsFinite(cLng) {
			continue
		}

		distance := geo.Haversine(lat, lng, cLat, cLng)
		if distance > radiusKm {
			continue
		}

		live := now.Sub(c.LastSeenAt) <= FreshnessCutoff
		card := CarrierCard{
			ID:                 c.ID,
			UserID:             c.UserID,
			DisplayName:        c.DisplayName,
			PlanTier:           string(c.PlanTier),
			VerificationStatus: string(c.VerificationStatus),
			Status:             string(c.Status),
			VehicleType:        string(c.VehicleType),
			DistanceKm:         geo.RoundKm(distance),
			LastSeenAt:         c.LastSeenAt,
			IsLive:             live,
			IsStale:            !live,
			distance:           distance,
			tierRank:           c.PlanTier.Rank(),
		}
		if live {
			card.Location = &Location{Lat: cLat, Lng: cLng}
		}
		cards = append(cards, card)
	}

	rankCards(cards)

	s.log.Info("proximity search",
		logger.Float64("lat", lat),
		logger.Float64("lng", lng),
		logger.Float64("radiusKm", radiusKm),
		logger.String("vehicleType", string(filter)),
		logger.String("productId", req.ProductID),
		logger.Int("candidates", len(candidates)),
		logger.Int("results", len(cards)),
	)

	return &NearbyResult{
		Query: QueryEcho{
			Lat:         lat,
			Lng:         lng,
			RadiusKm:    radiusKm,
			VehicleType: string(filter),
			ProductID:   req.ProductID,
		},
		Results: cards,
	}, nil
}

// rankCards sorts results into a stable total order: tier rank
// descending, live before stale, distance ascending, then most recently
// seen first.
func rankCards(cards []CarrierCard) {
	sort.SliceStable(cards, func(i, j int) bool {
		a, b := cards[i], cards[j]
		if a.tierRank != b.tierRank {
			return a.tierRank > b.tierRank
		}
		if a.IsLive != b.IsLive {
			return a.IsLive
		}
		if a.distance != b.distance {
			return a.distance < b.distance
		}
		return a.LastSeenAt.After(b.LastSeenAt)
	})
}
