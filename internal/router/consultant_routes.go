package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/consultant-booking/internal/handler"
	"github.com/iliyamo/consultant-booking/internal/middleware"
	"github.com/iliyamo/consultant-booking/internal/model"
)

// RegisterConsultant wires the scheduling and booking endpoints.
//
// Three tiers of access:
//   - public browse routes (consultant directory, available slots),
//     optionally served from the response cache;
//   - authenticated routes open to every role (create/list/cancel own
//     bookings);
//   - instructor routes (slot management, status updates), restricted
//     to INSTRUCTOR and ADMIN.
func RegisterConsultant(
	e *echo.Echo,
	jwtSecret string,
	con *handler.ConsultantHandler,
	slots *handler.SlotHandler,
	bookings *handler.BookingHandler,
	cache echo.MiddlewareFunc,
) {
	public := e.Group("/v1/consultants")
	if cache != nil {
		public.Use(cache)
	}
	public.GET("", con.GetConsultants)
	public.GET("/timeslots", con.GetAvailableTimeSlots)

	auth := e.Group("/v1/consultants", middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleNormal, model.RoleInstructor, model.RoleAdmin))
	auth.POST("/bookings", bookings.CreateBooking)
	auth.GET("/bookings", bookings.MyBookings)
	auth.POST("/bookings/:id/cancel", bookings.CancelBooking)

	instructor := e.Group("/v1/consultants", middleware.JWTAuth(jwtSecret))
	instructor.Use(middleware.RequireRole(model.RoleInstructor, model.RoleAdmin))
	instructor.GET("/my-timeslots", slots.MyTimeSlots)
	instructor.POST("/timeslots", slots.CreateTimeSlot)
	instructor.POST("/timeslots/bulk", slots.CreateTimeSlotsBulk)
	instructor.DELETE("/timeslots/:id", slots.DeleteTimeSlot)
	instructor.GET("/bookings/instructor", bookings.InstructorBookings)
	instructor.PUT("/bookings/:id/status", bookings.UpdateBookingStatus)
}
