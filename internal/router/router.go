// Package router maps HTTP routes onto the engine's handlers.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/mkashlan/muallim/internal/handler"
)

// RegisterRoutes wires every endpoint of the booking engine. The engine
// itself owns no wire format; authentication and role checks belong to
// the deployment's gateway.
func RegisterRoutes(e *echo.Echo, availability *handler.AvailabilityHandler, booking *handler.BookingHandler, review *handler.ReviewHandler) {
	e.GET("/healthz", handler.Health)

	v1 := e.Group("/v1")

	v1.POST("/instructors", availability.CreateInstructor)
	v1.GET("/instructors/:id", availability.GetInstructor)
	v1.POST("/instructors/:id/schedule", availability.ProposeSchedule)
	v1.POST("/instructors/:id/schedule/approve", availability.ApproveSchedule)
	v1.POST("/instructors/:id/schedule/reject", availability.RejectSchedule)
	v1.PUT("/instructors/:id/overrides/:day", availability.SetOverrideSlots)
	v1.GET("/instructors/:id/slots", availability.ListBookableSlots)

	v1.POST("/bookings", booking.CreateBooking)
	v1.GET("/bookings/:id", booking.GetBooking)
	v1.POST("/bookings/:id/payment", booking.ConfirmPayment)
	v1.PATCH("/bookings/:id/status", booking.SetStatus)
	v1.POST("/bookings/:id/session-link", booking.IssueSessionLink)
	v1.PUT("/bookings/:id/progress-notes", booking.SetProgressNotes)
	v1.GET("/guardians/:id/bookings", booking.ListGuardianBookings)
	v1.GET("/instructors/:id/bookings", booking.ListInstructorAgenda)

	v1.POST("/instructors/:id/reviews", review.AddReview)
	v1.GET("/instructors/:id/reviews", review.ListReviews)
	v1.GET("/instructors/:id/rating", review.GetAverageRating)
}
