// Package handler is the thin HTTP adapter over the engine's services.
// Handlers bind JSON, call one service operation and translate the
// engine's sentinel errors into status codes; no business rules live
// here.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkashlan/muallim/internal/service"
)

// writeError maps the engine's error kinds onto HTTP responses.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyPending),
		errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrSlotUnavailable),
		errors.Is(err, service.ErrConfirmationRequired):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
