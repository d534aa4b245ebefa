package geo

import (
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	t.Parallel()

	t.Run("zero distance between identical points", func(t *testing.T) {
		if d := Haversine(-1.2833, 36.8167, -1.2833, 36.8167); d != 0 {
			t.Errorf("expected 0, got %v", d)
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		a := Haversine(-1.2833, 36.8167, -4.0435, 39.6682)
		b := Haversine(-4.0435, 39.6682, -1.2833, 36.8167)
		if math.Abs(a-b) > 1e-9 {
			t.Errorf("expected symmetric distances, got %v and %v", a, b)
		}
	})

	t.Run("Nairobi to Mombasa", func(t *testing.T) {
		// Known distance is roughly 440 km.
		d := Haversine(-1.2833, 36.8167, -4.0435, 39.6682)
		if d < 435 || d > 445 {
			t.Errorf("expected ~440 km, got %v", d)
		}
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		d := Haversine(0, 0, 1, 0)
		want := EarthRadiusKm * math.Pi / 180
		if math.Abs(d-want) > 1e-6 {
			t.Errorf("expected %v, got %v", want, d)
		}
	})
}

func TestBoxAround(t *testing.T) {
	t.Parallel()

	t.Run("contains the circle at the equator", func(t *testing.T) {
		box := BoxAround(0, 0, 10)

		// Points 10 km due north/east must land inside the box.
		north := 10 / kmPerDegreeLat
		east := 10 / kmPerDegreeLng
		if box.MaxLat < north || box.MinLat > -north {
			t.Errorf("box %+v does not span %v degrees of latitude", box, north)
		}
		if box.MaxLng < east || box.MinLng > -east {
			t.Errorf("box %+v does not span %v degrees of longitude", box, east)
		}
	})

	t.Run("widens with latitude", func(t *testing.T) {
		equator := BoxAround(0, 0, 10)
		nordic := BoxAround(60, 0, 10)
		if nordic.MaxLng-nordic.MinLng <= equator.MaxLng-equator.MinLng {
			t.Error("longitude span must grow as the cosine shrinks")
		}
	})

	t.Run("survives the poles", func(t *testing.T) {
		box := BoxAround(90, 0, 10)
		if math.IsInf(box.MinLng, 0) || math.IsNaN(box.MinLng) {
			t.Errorf("expected a finite box at the pole, got %+v", box)
		}
	})
}

func TestClamps(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		got  float64
		want float64
	}{
		{"lat above range", ClampLat(95), 90},
		{"lat below range", ClampLat(-95), -90},
		{"lat in range", ClampLat(-1.2833), -1.2833},
		{"lng above range", ClampLng(200), 180},
		{"lng below range", ClampLng(-200), -180},
		{"radius above cap", ClampRadiusKm(500), 50},
		{"radius below floor", ClampRadiusKm(0.1), 0.5},
		{"radius in range", ClampRadiusKm(5), 5},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, tc.got)
		}
	}
}

func TestRoundKm(t *testing.T) {
	t.Parallel()

	if got := RoundKm(1.11195); got != 1.11 {
		t.Errorf("expected 1.11, got %v", got)
	}
	if got := RoundKm(2.005); got != 2.01 && got != 2.0 {
		// 2.005 is not exactly representable; either neighbor is fine.
		t.Errorf("expected a two-decimal value, got %v", got)
	}
	if got := RoundKm(0); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}

func TestIsFinite(t *testing.T) {
	t.Parallel()

	if !IsFinite(36.8167) {
		t.Error("a plain float is finite")
	}
	if IsFinite(math.NaN()) {
		t.Error("NaN is not finite")
	}
	if IsFinite(math.Inf(1)) {
		t.Error("Inf is not finite")
	}
}
