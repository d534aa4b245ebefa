// Package geo holds the coordinate math shared by the proximity matcher:
// haversine distance, bounding-box derivation and input clamping.
package geo

import "math"

const (
	// EarthRadiusKm is the mean earth radius used by the haversine formula.
	EarthRadiusKm = 6371.0

	// Kilometres per degree of latitude, and per degree of longitude at
	// the equator. Longitude degrees shrink with cos(latitude).
	kmPerDegreeLat = 110.574
	kmPerDegreeLng = 111.32
)

// Haversine returns the great-circle distance in kilometres between two
// coordinates.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	rLat1 := radians(lat1)
	rLat2 := radians(lat2)
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// BoundingBox is a rectangular coordinate range used as a cheap,
// indexable pre-filter. It is intentionally a rectangle, not a circle:
// corner candidates can sit outside the true radius and must be
// discarded by an exact distance check afterwards.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// BoxAround returns the bounding box covering radiusKm around a point.
func BoxAround(lat, lng, radiusKm float64) BoundingBox {
	dLat := radiusKm / kmPerDegreeLat

	// Guard against a vanishing cosine near the poles, where a degree of
	// longitude covers no distance.
	cosLat := math.Cos(radians(lat))
	if cosLat < 1e-6 {
		cosLat = 1e-6
	}
	dLng := radiusKm / (kmPerDegreeLng * cosLat)

	return BoundingBox{
		MinLat: lat - dLat,
		MaxLat: lat + dLat,
		MinLng: lng - dLng,
		MaxLng: lng + dLng,
	}
}

// ClampLat clamps a latitude to [-90, 90].
func ClampLat(lat float64) float64 {
	return clamp(lat, -90, 90)
}

// ClampLng clamps a longitude to [-180, 180].
func ClampLng(lng float64) float64 {
	return clamp(lng, -180, 180)
}

// ClampRadiusKm clamps a search radius to [0.5, 50].
func ClampRadiusKm(r float64) float64 {
	return clamp(r, 0.5, 50)
}

// IsFinite reports whether v is a usable coordinate value.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ValidLat reports whether lat is a real latitude.
func ValidLat(lat float64) bool {
	return IsFinite(lat) && lat >= -90 && lat <= 90
}

// ValidLng reports whether lng is a real longitude.
func ValidLng(lng float64) bool {
	return IsFinite(lng) && lng >= -180 && lng <= 180
}

// RoundKm rounds a distance to two decimal places for presentation.
func RoundKm(d float64) float64 {
	return math.Round(d*100) / 100
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
