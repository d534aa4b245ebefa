package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"carrier/internal/middleware"
	"carrier/internal/service"
)

// CarrierHandler handles HTTP requests for the carrier profile lifecycle.
type CarrierHandler struct {
	registry *service.Registry
}

// NewCarrierHandler creates a new CarrierHandler.
func NewCarrierHandler(registry *service.Registry) *CarrierHandler {
	return &CarrierHandler{registry: registry}
}

// StationRequest is the optional home-base block of a registration body.
type StationRequest struct {
	Lat   *float64 `json:"lat"`
	Lng   *float64 `json:"lng"`
	Label string   `json:"label"`
}

// RegisterRequest is the HTTP request body for carrier registration.
// Every field is optional; an empty body just ensures the profile exists.
type RegisterRequest struct {
	Phone            string          `json:"phone"`
	VehicleType      string          `json:"vehicleType"`
	VehiclePlate     string          `json:"vehiclePlate"`
	Station          *StationRequest `json:"station"`
	VehiclePhotoKeys []string        `json:"vehiclePhotoKeys"`
	DocPhotoKey      string          `json:"docPhotoKey"`
}

// RegisterResponse is the HTTP response for carrier registration.
type RegisterResponse struct {
	OK                bool                `json:"ok"`
	AlreadyRegistered bool                `json:"alreadyRegistered,omitempty"`
	UpdateBlocked     bool                `json:"updateBlocked,omitempty"`
	Profile           service.ProfileView `json:"profile"`
}

// Register handles POST /carrier/register
func (h *CarrierHandler) Register(c *gin.Context) {
	userID := middleware.UserID(c)

	// An absent body is a valid "ensure my profile exists" call.
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	in := service.RegisterRequest{
		Phone:            req.Phone,
		VehicleType:      req.VehicleType,
		VehiclePlate:     req.VehiclePlate,
		VehiclePhotoKeys: req.VehiclePhotoKeys,
		DocPhotoKey:      req.DocPhotoKey,
	}
	if req.Station != nil {
		in.StationLat = req.Station.Lat
		in.StationLng = req.Station.Lng
		in.StationLabel = req.Station.Label
	}

	result, err := h.registry.Register(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, RegisterResponse{
		OK:                true,
		AlreadyRegistered: result.AlreadyRegistered,
		UpdateBlocked:     result.UpdateBlocked,
		Profile:           result.Profile,
	})
}

// PingRequest is the HTTP request body for a location ping.
type PingRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// MutationResponse is the HTTP response for ping and status changes.
type MutationResponse struct {
	OK      bool `json:"ok"`
	Blocked bool `json:"blocked,omitempty"`
}

// Ping handles POST /carrier/ping
func (h *CarrierHandler) Ping(c *gin.Context) {
	userID := middleware.UserID(c)

	var req PingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.registry.Ping(c.Request.Context(), userID, req.Lat, req.Lng)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MutationResponse{OK: !result.Blocked, Blocked: result.Blocked})
}

// StatusRequest is the HTTP request body for an availability toggle.
type StatusRequest struct {
	Status string `json:"status"`
}

// SetStatus handles POST /carrier/status
func (h *CarrierHandler) SetStatus(c *gin.Context) {
	userID := middleware.UserID(c)

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.registry.SetStatus(c.Request.Context(), userID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MutationResponse{OK: !result.Blocked, Blocked: result.Blocked})
}

// MeResponse is the HTTP response for a self-profile read.
type MeResponse struct {
	OK      bool                `json:"ok"`
	Profile service.ProfileView `json:"profile"`
}

// Me handles GET /carrier/me
func (h *CarrierHandler) Me(c *gin.Context) {
	userID := middleware.UserID(c)

	view, err := h.registry.Me(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MeResponse{OK: true, Profile: *view})
}
