package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mkashlan/muallim/internal/model"
	"github.com/mkashlan/muallim/internal/service"
)

type BookingHandler struct {
	svc *service.BookingService
}

func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func bookingID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

type priceRefBody struct {
	ID         int64 `json:"id"`
	PriceCents int64 `json:"price_cents"`
}

// CreateBooking handles POST /v1/bookings.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var body struct {
		StudentID    int64          `json:"student_id"`
		GuardianID   int64          `json:"guardian_id"`
		InstructorID int64          `json:"instructor_id"`
		ChildID      int64          `json:"child_id"`
		Package      priceRefBody   `json:"package"`
		Extras       []priceRefBody `json:"extras"`
		Date         string         `json:"date"`
		Time         string         `json:"time"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	date, err := time.Parse(time.DateOnly, body.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
	}

	req := service.CreateBookingRequest{
		StudentID:    body.StudentID,
		GuardianID:   body.GuardianID,
		InstructorID: body.InstructorID,
		ChildID:      body.ChildID,
		Package:      service.PriceRef{ID: body.Package.ID, PriceCents: body.Package.PriceCents},
		Date:         date,
		Time:         body.Time,
	}
	for _, extra := range body.Extras {
		req.Extras = append(req.Extras, service.PriceRef{ID: extra.ID, PriceCents: extra.PriceCents})
	}

	booking, err := h.svc.CreateBooking(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, booking)
}

// GetBooking handles GET /v1/bookings/:id.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, ok := bookingID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	booking, err := h.svc.GetBooking(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// ConfirmPayment handles POST /v1/bookings/:id/payment.
func (h *BookingHandler) ConfirmPayment(c echo.Context) error {
	id, ok := bookingID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	var body struct {
		ReceiptRef string `json:"receipt_ref"`
		Shipping   string `json:"shipping"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	if err := h.svc.ConfirmPayment(c.Request().Context(), id, body.ReceiptRef, body.Shipping); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": model.BookingStatusAwaitingReview})
}

// SetStatus handles PATCH /v1/bookings/:id/status.
func (h *BookingHandler) SetStatus(c echo.Context) error {
	id, ok := bookingID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	var body struct {
		Status  string `json:"status"`
		Confirm bool   `json:"confirm"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	if err := h.svc.SetStatus(c.Request().Context(), id, model.BookingStatus(body.Status), body.Confirm); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": body.Status})
}

// IssueSessionLink handles POST /v1/bookings/:id/session-link.
func (h *BookingHandler) IssueSessionLink(c echo.Context) error {
	id, ok := bookingID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	token, err := h.svc.IssueSessionLink(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"session_id": token})
}

// ListGuardianBookings handles GET /v1/guardians/:id/bookings.
func (h *BookingHandler) ListGuardianBookings(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid guardian id"})
	}

	bookings, err := h.svc.ListGuardianBookings(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// ListInstructorAgenda handles GET /v1/instructors/:id/bookings?from=&to=.
func (h *BookingHandler) ListInstructorAgenda(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid instructor id"})
	}

	from, err := time.Parse(time.DateOnly, c.QueryParam("from"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from date"})
	}
	to, err := time.Parse(time.DateOnly, c.QueryParam("to"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to date"})
	}

	bookings, err := h.svc.ListInstructorAgenda(c.Request().Context(), id, from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// SetProgressNotes handles PUT /v1/bookings/:id/progress-notes.
func (h *BookingHandler) SetProgressNotes(c echo.Context) error {
	id, ok := bookingID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	var body struct {
		Notes string `json:"notes"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	if err := h.svc.SetProgressNotes(c.Request().Context(), id, body.Notes); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
