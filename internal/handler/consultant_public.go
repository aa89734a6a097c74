// This file implements the unauthenticated browse endpoints of the
// consultation API: the consultant directory and the list of bookable
// future slots. Both are read-only and sit behind the response cache.
package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/consultant-booking/internal/repository"
)

// ConsultantHandler aggregates the repositories needed for public
// browsing of consultants and their availability.
type ConsultantHandler struct {
	Users *repository.UserRepo
	Slots *repository.TimeSlotRepo
}

// NewConsultantHandler constructs a ConsultantHandler; all dependencies
// must be non-nil.
func NewConsultantHandler(users *repository.UserRepo, slots *repository.TimeSlotRepo) *ConsultantHandler {
	if users == nil || slots == nil {
		panic("nil repository passed to NewConsultantHandler")
	}
	return &ConsultantHandler{Users: users, Slots: slots}
}

// GetConsultants handles GET /v1/consultants. It lists all active
// instructors with the number of open future slots each offers.
func (h *ConsultantHandler) GetConsultants(c echo.Context) error {
	consultants, err := h.Users.ListConsultants(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": consultants})
}

// GetAvailableTimeSlots handles GET /v1/consultants/timeslots. It
// returns open future slots in ascending start order, optionally scoped
// to one instructor via the instructor_id query parameter.
func (h *ConsultantHandler) GetAvailableTimeSlots(c echo.Context) error {
	var instructorID *uint64
	if raw := c.QueryParam("instructor_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid instructor_id"})
		}
		instructorID = &id
	}
	slots, err := h.Slots.ListAvailable(c.Request().Context(), instructorID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": slots})
}
