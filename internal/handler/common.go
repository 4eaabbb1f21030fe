// Package handler contains the HTTP handlers. All methods assume JWT
// authentication and role validation have already been performed by
// middleware; business rules live in the service layer and handlers
// only translate between HTTP and service calls.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ahmdrza1383/db-project/internal/repository"
	"github.com/ahmdrza1383/db-project/internal/service"
)

// pathID parses a positive uint64 path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	return n, err == nil && n > 0
}

// writeServiceError maps service and repository errors onto HTTP
// responses. Conflicts carry their reason code so clients can branch
// without parsing messages.
func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrTicketNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	case errors.Is(err, repository.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	case errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case errors.Is(err, repository.ErrRequestNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
	}
	if ce := service.AsConflict(err); ce != nil {
		status := http.StatusConflict
		switch ce.Reason {
		case service.ReasonHoldNotFound:
			status = http.StatusNotFound
		case service.ReasonForbidden:
			status = http.StatusForbidden
		}
		return c.JSON(status, echo.Map{"error": ce.Message, "reason": ce.Reason})
	}
	c.Logger().Errorf("internal error: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
