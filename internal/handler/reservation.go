package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ahmdrza1383/db-project/internal/middleware"
	"github.com/ahmdrza1383/db-project/internal/model"
	"github.com/ahmdrza1383/db-project/internal/service"
)

// ReservationHandler exposes the buyer-facing reservation lifecycle:
// seat holds, payments, cancellation preview and cancellation.
type ReservationHandler struct {
	svc *service.ReservationService
}

// NewReservationHandler constructs the handler. svc must be non-nil.
func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	if svc == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{svc: svc}
}

// HoldSeat handles POST /v1/tickets/:id/reserve. The body names one
// seat; a successful hold returns 201 with the hold details and its
// expiry instant.
func (h *ReservationHandler) HoldSeat(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	var body struct {
		SeatNumber uint32 `json:"seat_number"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SeatNumber == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_number is required"})
	}

	hold, err := h.svc.HoldSeat(c.Request().Context(), ticketID, body.SeatNumber, userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, hold)
}

// Pay handles POST /v1/payments. Wallet payments settle against the
// stored balance; card and crypto payments carry the gateway outcome in
// the body. An unsuccessful settlement is a recorded outcome, not an
// error, and returns 400 with the payment details.
func (h *ReservationHandler) Pay(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		ReservationID uint64 `json:"reservation_id"`
		Method        string `json:"payment_method"`
		Outcome       string `json:"payment_outcome"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	result, err := h.svc.Pay(c.Request().Context(), service.PaymentInput{
		ReservationID:   body.ReservationID,
		UserID:          userID,
		Method:          body.Method,
		AssertedOutcome: body.Outcome,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	if result.Outcome == model.OutcomeUnsuccessful {
		return c.JSON(http.StatusBadRequest, result)
	}
	return c.JSON(http.StatusOK, result)
}

// PreviewCancel handles GET /v1/reservations/:id/cancellation and
// returns the penalty breakdown without changing anything.
func (h *ReservationHandler) PreviewCancel(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reservationID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	quote, err := h.svc.PreviewCancel(c.Request().Context(), reservationID, userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, quote)
}

// Cancel handles DELETE /v1/reservations/:id, refunding the price minus
// the penalty in effect at the time of the call.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reservationID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	result, err := h.svc.Cancel(c.Request().Context(), reservationID, userID, middleware.Role(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// CreateRequest handles POST /v1/reservations/:id/requests, filing a
// CANCEL or CHANGE_DATE request for later admin review.
func (h *ReservationHandler) CreateRequest(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reservationID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body struct {
		Subject string `json:"request_subject"`
		Text    string `json:"request_text"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req, err := h.svc.CreateRequest(c.Request().Context(), reservationID, userID, body.Subject, body.Text)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"request_id":   req.ID,
		"subject":      req.Subject,
		"submitted_at": req.CreatedAt,
	})
}

// Me handles GET /v1/me, returning the caller's account and wallet
// balance.
func (h *ReservationHandler) Me(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	u, err := h.svc.Profile(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":        u.ID,
		"email":          u.Email,
		"name":           u.Name,
		"role":           u.Role,
		"wallet_balance": u.WalletBalance,
	})
}

// ListPayments handles GET /v1/reservations/:id/payments, the settlement
// attempt history of a held reservation.
func (h *ReservationHandler) ListPayments(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reservationID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	payments, err := h.svc.ListPayments(c.Request().Context(), reservationID, userID, middleware.Role(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	out := make([]echo.Map, 0, len(payments))
	for _, p := range payments {
		out = append(out, echo.Map{
			"payment_id":     p.ID,
			"amount":         p.Amount,
			"outcome":        p.Outcome,
			"payment_method": p.Method,
			"paid_at":        p.PaidAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation_id": reservationID, "payments": out})
}

// TicketDetails handles GET /v1/tickets/:id, serving the cached ticket
// document with per-seat status.
func (h *ReservationHandler) TicketDetails(c echo.Context) error {
	ticketID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	det, err := h.svc.TicketDetails(c.Request().Context(), ticketID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, det)
}
