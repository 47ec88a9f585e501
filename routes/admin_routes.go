package routes

import (
	"github.com/expertlink/expert_marketplace/handlers"
	"github.com/expertlink/expert_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	admin.Get("/experts/pending", handlers.GetPendingExperts)
	admin.Post("/experts/:expertId/approve", handlers.ApproveExpert)
	admin.Post("/experts/:expertId/reject", handlers.RejectExpert)
	admin.Put("/experts/:expertId/featured", handlers.SetExpertFeatured)

	users := admin.Group("/users")
	users.Get("", handlers.GetAllUsers)
	users.Put("/:userId/status", handlers.SetUserActive)

	admin.Get("/bookings", handlers.GetAllBookings)
	admin.Post("/bookings/:bookingId/add-link", handlers.AddMeetingLink)

	admin.Get("/payments", handlers.GetAllPayments)
	admin.Post("/payments/:paymentId/refund", handlers.ProcessRefund)

	categories := admin.Group("/categories")
	categories.Post("", handlers.CreateCategory)
	categories.Put("/:categoryId", handlers.UpdateCategory)
	categories.Delete("/:categoryId", handlers.DeleteCategory)
}
