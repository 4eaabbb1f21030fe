package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ahmdrza1383/db-project/internal/middleware"
	"github.com/ahmdrza1383/db-project/internal/service"
)

// AdminHandler exposes ticket creation and request moderation. Routes
// using it sit behind RequireRole(ADMIN).
type AdminHandler struct {
	svc *service.ReservationService
}

// NewAdminHandler constructs the handler. svc must be non-nil.
func NewAdminHandler(svc *service.ReservationService) *AdminHandler {
	if svc == nil {
		panic("nil service passed to NewAdminHandler")
	}
	return &AdminHandler{svc: svc}
}

// CreateTicket handles POST /v1/admin/tickets. Seat rows are created
// together with the ticket, all free.
func (h *AdminHandler) CreateTicket(c echo.Context) error {
	var body struct {
		Origin         string `json:"origin"`
		Destination    string `json:"destination"`
		VehicleType    string `json:"vehicle_type"`
		DepartureStart string `json:"departure_start"`
		Price          int64  `json:"price"`
		TotalCapacity  int    `json:"total_capacity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ticket, err := h.svc.CreateTicket(c.Request().Context(), service.CreateTicketInput{
		Origin:         body.Origin,
		Destination:    body.Destination,
		VehicleType:    body.VehicleType,
		DepartureStart: body.DepartureStart,
		Price:          body.Price,
		TotalCapacity:  body.TotalCapacity,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"ticket_id":          ticket.ID,
		"origin":             ticket.Origin,
		"destination":        ticket.Destination,
		"vehicle_type":       ticket.VehicleType,
		"departure_start":    ticket.DepartureStart,
		"price":              ticket.Price,
		"total_capacity":     ticket.TotalCapacity,
		"remaining_capacity": ticket.RemainingCapacity,
		"status":             ticket.Status,
	})
}

// ApproveRequest handles POST /v1/admin/requests/:id/approve. Approving
// a cancel request refunds with the penalty frozen at submission time.
func (h *AdminHandler) ApproveRequest(c echo.Context) error {
	adminID := middleware.UserID(c)
	if adminID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	requestID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}
	result, err := h.svc.ApproveRequest(c.Request().Context(), requestID, adminID)
	if err != nil {
		return writeServiceError(c, err)
	}
	if result == nil {
		// CHANGE_DATE approvals move no money.
		return c.JSON(http.StatusOK, echo.Map{"request_id": requestID, "accepted": true})
	}
	return c.JSON(http.StatusOK, result)
}

// RejectRequest handles POST /v1/admin/requests/:id/reject.
func (h *AdminHandler) RejectRequest(c echo.Context) error {
	adminID := middleware.UserID(c)
	if adminID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	requestID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}
	if err := h.svc.RejectRequest(c.Request().Context(), requestID, adminID); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"request_id": requestID, "accepted": false})
}
