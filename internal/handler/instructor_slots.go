// This file implements the instructor-facing time slot endpoints:
// viewing one's own schedule, publishing single slots, bulk-generating
// recurring availability and deleting unbooked slots. All routes are
// protected by JWT auth plus the INSTRUCTOR/ADMIN role requirement.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/consultant-booking/internal/model"
	"github.com/iliyamo/consultant-booking/internal/repository"
	"github.com/iliyamo/consultant-booking/internal/schedule"
)

// SlotHandler bundles the repositories for instructor slot management.
type SlotHandler struct {
	Slots *repository.TimeSlotRepo
}

// NewSlotHandler constructs a SlotHandler; the repository must be non-nil.
func NewSlotHandler(slots *repository.TimeSlotRepo) *SlotHandler {
	if slots == nil {
		panic("nil repository passed to NewSlotHandler")
	}
	return &SlotHandler{Slots: slots}
}

type createSlotReq struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Notes     *string   `json:"notes"`
}

type bulkSlotsReq struct {
	StartDate           string `json:"start_date"`      // YYYY-MM-DD
	EndDate             string `json:"end_date"`        // YYYY-MM-DD
	SlotStartTime       string `json:"slot_start_time"` // HH:MM
	SlotEndTime         string `json:"slot_end_time"`   // HH:MM
	SlotDurationMinutes int    `json:"slot_duration_minutes"`
	DaysOfWeek          []int  `json:"days_of_week"` // 0=Sunday .. 6=Saturday, empty = all
}

// MyTimeSlots handles GET /v1/consultants/my-timeslots. It returns the
// caller's slots from seven days back onward, including booking details
// so instructors see who booked what.
func (h *SlotHandler) MyTimeSlots(c echo.Context) error {
	instructorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	slots, err := h.Slots.ListForInstructor(c.Request().Context(), instructorID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": slots})
}

// CreateTimeSlot handles POST /v1/consultants/timeslots. It publishes a
// single availability window for the calling instructor.
func (h *SlotHandler) CreateTimeSlot(c echo.Context) error {
	instructorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createSlotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time and end_time are required"})
	}
	if !req.EndTime.After(req.StartTime) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_time must be after start_time"})
	}
	slot, err := h.Slots.Create(c.Request().Context(), instructorID, req.StartTime, req.EndTime, req.Notes)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create slot failed"})
	}
	return c.JSON(http.StatusCreated, slotResp(slot))
}

// CreateTimeSlotsBulk handles POST /v1/consultants/timeslots/bulk. The
// request describes a recurring availability pattern which the schedule
// generator expands into concrete slots; all of them are persisted in a
// single batch and returned.
func (h *SlotHandler) CreateTimeSlotsBulk(c echo.Context) error {
	instructorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bulkSlotsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	startDate, err1 := time.ParseInLocation("2006-01-02", req.StartDate, time.UTC)
	endDate, err2 := time.ParseInLocation("2006-01-02", req.EndDate, time.UTC)
	if err1 != nil || err2 != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date and end_date must be YYYY-MM-DD"})
	}
	dayStart, err1 := parseTimeOfDay(req.SlotStartTime)
	dayEnd, err2 := parseTimeOfDay(req.SlotEndTime)
	if err1 != nil || err2 != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot_start_time and slot_end_time must be HH:MM"})
	}
	weekdays := make([]time.Weekday, 0, len(req.DaysOfWeek))
	for _, d := range req.DaysOfWeek {
		if d < 0 || d > 6 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "days_of_week values must be 0-6"})
		}
		weekdays = append(weekdays, time.Weekday(d))
	}

	genReq := schedule.Request{
		StartDate:    startDate,
		EndDate:      endDate,
		DayStart:     dayStart,
		DayEnd:       dayEnd,
		SlotDuration: time.Duration(req.SlotDurationMinutes) * time.Minute,
		Weekdays:     weekdays,
	}
	if err := genReq.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	created, err := h.Slots.CreateBatch(c.Request().Context(), instructorID, schedule.Expand(genReq))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create slots failed"})
	}
	items := make([]echo.Map, 0, len(created))
	for _, s := range created {
		items = append(items, slotResp(s))
	}
	return c.JSON(http.StatusCreated, echo.Map{"items": items, "count": len(items)})
}

// DeleteTimeSlot handles DELETE /v1/consultants/timeslots/:id. A slot
// can only be removed by its instructor (or an admin) and only while no
// booking has ever been attached to it; otherwise 409 is returned.
func (h *SlotHandler) DeleteTimeSlot(c echo.Context) error {
	instructorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	err = h.Slots.DeleteByIDAndOwner(c.Request().Context(), id, instructorID, isAdmin(c))
	if err != nil {
		switch err {
		case repository.ErrSlotNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "time slot not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "cannot delete a time slot with an existing booking"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// parseTimeOfDay converts "HH:MM" into an offset from midnight.
func parseTimeOfDay(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// slotResp shapes a TimeSlot for JSON responses.
func slotResp(s model.TimeSlot) echo.Map {
	return echo.Map{
		"id":            s.ID,
		"instructor_id": s.InstructorID,
		"start_time":    s.StartTime,
		"end_time":      s.EndTime,
		"is_available":  s.IsAvailable,
		"notes":         s.Notes,
		"created_at":    s.CreatedAt,
	}
}
