package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"feedbox/backend/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

// Error writes a JSON error body with the given status.
func Error(c echo.Context, status int, message string) error {
	return c.JSON(status, errorResponse{Error: message})
}

// WriteServiceError maps service sentinel errors to HTTP responses.
func WriteServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalid):
		return Error(c, http.StatusBadRequest, "invalid request")
	case errors.Is(err, service.ErrNotFound):
		return Error(c, http.StatusNotFound, "resource not found")
	case errors.Is(err, service.ErrConflict):
		return Error(c, http.StatusConflict, "conflict")
	case errors.Is(err, service.ErrFeedFetch):
		return Error(c, http.StatusBadGateway, "feed fetch failed")
	default:
		return Error(c, http.StatusInternalServerError, "internal error")
	}
}
