package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"carrier/internal/geo"
	"carrier/internal/service"
)

// SearchHandler handles HTTP requests for proximity search.
type SearchHandler struct {
	matcher *service.Matcher
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(matcher *service.Matcher) *SearchHandler {
	return &SearchHandler{matcher: matcher}
}

// FreshnessInfo describes the stale-handling policy applied to results.
type FreshnessInfo struct {
	CutoffSeconds int    `json:"cutoffSeconds"`
	Strategy      string `json:"strategy"`
}

// NearResponse is the HTTP response for proximity search.
type NearResponse struct {
	Query     service.QueryEcho     `json:"query"`
	Freshness FreshnessInfo         `json:"freshness"`
	Results   []service.CarrierCard `json:"results"`
}

// invalidParamsResponse names the expected parameter shape so callers
// can fix their request.
type invalidParamsResponse struct {
	Error    string            `json:"error"`
	Expected map[string]string `json:"expected"`
}

var expectedNearParams = map[string]string{
	"lat":      "finite float, required",
	"lng":      "finite float, required",
	"radiusKm": "finite float, required, clamped to 0.5-50",
}

// Near handles GET /carriers/near
func (h *SearchHandler) Near(c *gin.Context) {
	lat, ok1 := floatQuery(c, "lat")
	lng, ok2 := floatQuery(c, "lng")
	radiusKm, ok3 := floatQuery(c, "radiusKm")
	if !ok1 || !ok2 || !ok3 {
		c.JSON(http.StatusBadRequest, invalidParamsResponse{
			Error:    "lat, lng and radiusKm must be finite numbers",
			Expected: expectedNearParams,
		})
		return
	}

	result, err := h.matcher.FindNearby(c.Request.Context(), service.NearbyRequest{
		Lat:         lat,
		Lng:         lng,
		RadiusKm:    radiusKm,
		VehicleType: c.Query("vehicleType"),
		ProductID:   c.Query("productId"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, NearResponse{
		Query: result.Query,
		Freshness: FreshnessInfo{
			CutoffSeconds: int(service.FreshnessCutoff.Seconds()),
			Strategy:      service.FreshnessStrategy,
		},
		Results: result.Results,
	})
}

// floatQuery parses a required numeric query parameter. ParseFloat
// accepts "NaN" and "Inf", which would poison the distance math and
// break JSON rendering, so non-finite values are rejected here.
func floatQuery(c *gin.Context, name string) (float64, bool) {
	raw, exists := c.GetQuery(name)
	if !exists || raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !geo.IsFinite(v) {
		return 0, false
	}
	return v, true
}
