// This file implements the booking workflow: requesting a consultation
// against an available slot, listing bookings from both sides, the
// instructor status transitions and user-side cancellation. Every
// mutation that touches slot availability runs in a single database
// transaction with the slot row locked, so concurrent attempts on the
// same slot serialize and at most one booking ever wins it.
package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/consultant-booking/internal/model"
	"github.com/iliyamo/consultant-booking/internal/queue"
	"github.com/iliyamo/consultant-booking/internal/repository"
	publisher "github.com/iliyamo/consultant-booking/internal/service"
)

// BookingHandler bundles the repositories used by the booking endpoints.
// Bookings and Slots share the same *sql.DB, which is what transactions
// are opened on.
type BookingHandler struct {
	Bookings *repository.BookingRepo
	Slots    *repository.TimeSlotRepo
}

// NewBookingHandler constructs a BookingHandler; both repositories must
// be non-nil.
func NewBookingHandler(bookings *repository.BookingRepo, slots *repository.TimeSlotRepo) *BookingHandler {
	if bookings == nil || slots == nil {
		panic("nil repository passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings, Slots: slots}
}

type createBookingReq struct {
	TimeSlotID  uint64  `json:"time_slot_id"`
	Topic       string  `json:"topic"`
	Description *string `json:"description"`
}

type updateStatusReq struct {
	Status             string  `json:"status"`
	MeetingURL         *string `json:"meeting_url"`
	CancellationReason *string `json:"cancellation_reason"`
}

type cancelBookingReq struct {
	Reason *string `json:"reason"`
}

// CreateBooking handles POST /v1/consultants/bookings. The slot row is
// locked before the availability check so that of two concurrent
// requests for the same slot exactly one inserts a booking; the other
// observes is_available=0 and receives 409.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.TimeSlotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "time_slot_id is required"})
	}
	if req.Topic == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "topic is required"})
	}

	ctx := c.Request().Context()
	tx, err := h.Slots.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	defer func() { _ = tx.Rollback() }()

	slot, err := h.Slots.GetByIDForUpdateTx(ctx, tx, req.TimeSlotID)
	if err != nil {
		if err == repository.ErrSlotNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "time slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !slot.IsAvailable {
		return c.JSON(http.StatusConflict, echo.Map{"error": repository.ErrSlotUnavailable.Error()})
	}

	if err := h.Slots.SetAvailabilityTx(ctx, tx, slot.ID, false); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	booking := model.Booking{
		TimeSlotID:  slot.ID,
		UserID:      userID,
		Topic:       req.Topic,
		Description: req.Description,
	}
	if err := h.Bookings.CreateTx(ctx, tx, &booking); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	detail, err := h.Bookings.GetDetail(ctx, booking.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	h.publish(queue.KindBookingRequested, detail)
	return c.JSON(http.StatusCreated, detail)
}

// MyBookings handles GET /v1/consultants/bookings and returns the
// caller's bookings, newest slot start first.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// InstructorBookings handles GET /v1/consultants/bookings/instructor
// and returns the bookings made against any of the caller's slots.
func (h *BookingHandler) InstructorBookings(c echo.Context) error {
	instructorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListByInstructor(c.Request().Context(), instructorID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateBookingStatus handles PUT /v1/consultants/bookings/:id/status.
// Only the instructor owning the booked slot (or an admin) may move a
// booking through the workflow. The requested status must be in the
// enum and reachable from the current state; Rejected and Cancelled
// hand the slot back to the available pool in the same transaction.
func (h *BookingHandler) UpdateBookingStatus(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	next, err := model.ParseStatus(req.Status)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown booking status"})
	}

	ctx := c.Request().Context()
	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	defer func() { _ = tx.Rollback() }()

	booking, instructorID, err := h.Bookings.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if instructorID != callerID && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if !booking.Status.CanTransitionTo(next) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
	}

	now := time.Now().UTC()
	switch next {
	case model.StatusApproved:
		err = h.Bookings.ApproveTx(ctx, tx, id, req.MeetingURL, now)
	case model.StatusRejected:
		err = h.Bookings.RejectTx(ctx, tx, id, req.CancellationReason)
	case model.StatusCancelled:
		err = h.Bookings.CancelTx(ctx, tx, id, req.CancellationReason, now)
	case model.StatusCompleted:
		err = h.Bookings.CompleteTx(ctx, tx, id)
	}
	if err == nil && next.ReleasesSlot() {
		err = h.Slots.SetAvailabilityTx(ctx, tx, booking.TimeSlotID, true)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	detail, err := h.Bookings.GetDetail(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	switch next {
	case model.StatusApproved:
		h.publish(queue.KindBookingApproved, detail)
	case model.StatusRejected:
		h.publish(queue.KindBookingRejected, detail)
	case model.StatusCancelled:
		h.publish(queue.KindBookingCancelled, detail)
	}
	return c.JSON(http.StatusOK, detail)
}

// CancelBooking handles POST /v1/consultants/bookings/:id/cancel. Only
// the user who made the booking (or an admin) may cancel, and only
// while the booking is Pending or Approved. The slot is released in the
// same transaction.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req cancelBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	defer func() { _ = tx.Rollback() }()

	booking, _, err := h.Bookings.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if booking.UserID != callerID && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if !booking.Status.CanTransitionTo(model.StatusCancelled) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
	}

	now := time.Now().UTC()
	if err := h.Bookings.CancelTx(ctx, tx, id, req.Reason, now); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	if err := h.Slots.SetAvailabilityTx(ctx, tx, booking.TimeSlotID, true); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	detail, err := h.Bookings.GetDetail(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	h.publish(queue.KindBookingCancelled, detail)
	return c.JSON(http.StatusOK, detail)
}

// publish emits a booking event in the background so broker hiccups
// never delay or fail the HTTP response.
func (h *BookingHandler) publish(kind string, d repository.BookingDetail) {
	ev := queue.BookingEvent{
		Kind:           kind,
		BookingID:      d.ID,
		TimeSlotID:     d.TimeSlotID,
		UserID:         d.UserID,
		UserName:       d.UserName,
		InstructorID:   d.InstructorID,
		InstructorName: d.InstructorName,
		Topic:          d.Topic,
		Status:         d.Status,
		StartsAt:       d.StartTime.UTC().Format(time.RFC3339),
		EndsAt:         d.EndTime.UTC().Format(time.RFC3339),
		MeetingURL:     d.MeetingUrl,
		Reason:         d.CancellationReason,
		OccurredAt:     time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := publisher.PublishBookingEvent(ctx, ev); err != nil {
			log.Printf("booking: publish %s event failed: %v", kind, err)
		}
	}()
}
