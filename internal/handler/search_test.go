package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"carrier/internal/logger"
	"carrier/internal/repository"
	"carrier/internal/service"
)

type stubCarrierRepo struct {
	repository.CarrierRepository
	candidates []repository.NearbyCandidate
	err        error
}

func (s *stubCarrierRepo) FindNearby(ctx context.Context, q repository.NearbyQuery) ([]repository.NearbyCandidate, error) {
	return s.candidates, s.err
}

func newNearRouter(repo *stubCarrierRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewSearchHandler(service.NewMatcher(repo, logger.NewNop()))
	router := gin.New()
	router.GET("/carriers/near", h.Near)
	return router
}

func TestNear_MissingParamsNameTheExpectedShape(t *testing.T) {
	t.Parallel()

	router := newNearRouter(&stubCarrierRepo{})

	for _, query := range []string{
		"",
		"lat=1.2",
		"lat=1.2&lng=abc&radiusKm=5",
		"lat=1.2&lng=36.8",
		"lat=NaN&lng=36.8&radiusKm=5",
		"lat=1.2&lng=-Inf&radiusKm=5",
		"lat=1.2&lng=36.8&radiusKm=Infinity",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/carriers/near?"+query, nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("query %q: expected 400, got %d", query, w.Code)
			continue
		}
		var body invalidParamsResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("query %q: unreadable body: %v", query, err)
		}
		if body.Expected["radiusKm"] == "" {
			t.Errorf("query %q: the 400 body must name the expected parameters", query)
		}
	}
}

func TestNear_EchoesQueryAndFreshnessPolicy(t *testing.T) {
	t.Parallel()

	router := newNearRouter(&stubCarrierRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/carriers/near?lat=-1.2833&lng=36.8167&radiusKm=5", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body NearResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unreadable body: %v", err)
	}
	if body.Query.RadiusKm != 5 {
		t.Errorf("expected the radius echoed, got %v", body.Query.RadiusKm)
	}
	if body.Freshness.CutoffSeconds != 90 || body.Freshness.Strategy != service.FreshnessStrategy {
		t.Errorf("unexpected freshness policy: %+v", body.Freshness)
	}
	if body.Results == nil {
		t.Error("results must serialize as an empty list, not null")
	}
}

func TestNear_UnprovisionedStoreMapsTo501(t *testing.T) {
	t.Parallel()

	router := newNearRouter(&stubCarrierRepo{err: repository.ErrNotProvisioned})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/carriers/near?lat=0&lng=0&radiusKm=5", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotImplemented {
		t.Errorf("expected 501, got %d", w.Code)
	}
}
