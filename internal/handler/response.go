package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"carrier/internal/repository"
	"carrier/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	if code == http.StatusInternalServerError {
		// Hide internals; the error is in the server log via gin/NR.
		_ = c.Error(err)
		c.JSON(code, ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Auth resolution failures
	case errors.Is(err, service.ErrInvalidUserID):
		return http.StatusUnauthorized

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidStatus):
		return http.StatusBadRequest

	// Missing profile
	case errors.Is(err, service.ErrNotRegistered),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Carrier data model not deployed in this environment
	case errors.Is(err, repository.ErrNotProvisioned):
		return http.StatusNotImplemented

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
