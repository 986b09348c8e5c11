package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mkashlan/muallim/internal/model"
	"github.com/mkashlan/muallim/internal/service"
)

type AvailabilityHandler struct {
	svc *service.AvailabilityService
}

func NewAvailabilityHandler(svc *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc}
}

func instructorID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// CreateInstructor handles POST /v1/instructors.
func (h *AvailabilityHandler) CreateInstructor(c echo.Context) error {
	var body struct {
		Name      string `json:"name"`
		Specialty string `json:"specialty"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	instructor, err := h.svc.CreateInstructor(c.Request().Context(), body.Name, body.Specialty)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, instructor)
}

// GetInstructor handles GET /v1/instructors/:id.
func (h *AvailabilityHandler) GetInstructor(c echo.Context) error {
	id, ok := instructorID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid instructor id"})
	}

	instructor, err := h.svc.GetInstructor(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, instructor)
}

// ProposeSchedule handles POST /v1/instructors/:id/schedule.
func (h *AvailabilityHandler) ProposeSchedule(c echo.Context) error {
	id, ok := instructorID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid instructor id"})
	}

	var body struct {
		Schedule model.WeeklySchedule `json:"schedule"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	if err := h.svc.ProposeWeeklySchedule(c.Request().Context(), id, body.Schedule); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"schedule_status": model.ScheduleStatusPending})
}

// ApproveSchedule handles POST /v1/instructors/:id/schedule/approve.
func (h *AvailabilityHandler) ApproveSchedule(c echo.Context) error {
	id, ok := instructorID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid instructor id"})
	}

	if err := h.svc.ApproveSchedule(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"schedule_status": model.ScheduleStatusApproved})
}

// RejectSchedule handles POST /v1/instructors/:id/schedule/reject.
func (h *AvailabilityHandler) RejectSchedule(c echo.Context) error {
	id, ok := instructorID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid instructor id"})
	}

	if err := h.svc.RejectSchedule(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"schedule_status": model.ScheduleStatusRejected})
}

// SetOverrideSlots handles PUT /v1/instructors/:id/overrides/:day.
func (h *AvailabilityHandler) SetOverrideSlots(c echo.Context) error {
	id, ok := instructorID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid instructor id"})
	}

	var body struct {
		Times []string `json:"times"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	if err := h.svc.SetOverrideSlots(c.Request().Context(), id, c.Param("day"), body.Times); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"day": c.Param("day"), "times": body.Times})
}

// ListBookableSlots handles GET /v1/instructors/:id/slots?from=&to=.
func (h *AvailabilityHandler) ListBookableSlots(c echo.Context) error {
	id, ok := instructorID(c)
	if !ok {
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

	slots, err := h.svc.ListBookableSlots(c.Request().Context(), id, from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"slots": slots})
}
