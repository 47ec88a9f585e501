package routes

import (
	"github.com/expertlink/expert_marketplace/handlers"
	"github.com/expertlink/expert_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

func BookingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Creation takes OptionalAuth so guests can book with just an email.
	api.Post("/bookings", middleware.OptionalAuth(), handlers.CreateBooking)

	booking := api.Group("/bookings", middleware.Protected())
	booking.Get("/me", handlers.GetMyBookings)
	booking.Post("/:bookingId/cancel", handlers.CancelBooking)
	booking.Post("/:bookingId/reschedule", handlers.RescheduleBooking)
	booking.Post("/:bookingId/review", handlers.CreateReview)
	booking.Get("/:bookingId/messages", handlers.GetBookingMessages)

	api.Get("/reviews/me", middleware.Protected(), handlers.GetMyReviews)

	expertBooking := api.Group("/expert/bookings", middleware.Protected(), middleware.ExpertRequired())
	expertBooking.Get("", handlers.GetExpertBookings)
	expertBooking.Post("/:bookingId/complete", handlers.MarkBookingAsComplete)
	expertBooking.Post("/:bookingId/notes", handlers.SubmitExpertNotes)
}
