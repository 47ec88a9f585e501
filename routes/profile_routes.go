package routes

import (
	"github.com/expertlink/expert_marketplace/handlers"
	"github.com/expertlink/expert_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

func ProfileRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	profile := api.Group("/profile", middleware.Protected())
	profile.Get("/me", handlers.GetProfile)
	profile.Put("/me", handlers.UpdateProfile)

	notificationsGroup := api.Group("/notifications", middleware.Protected())
	notificationsGroup.Get("", handlers.GetMyNotifications)
	notificationsGroup.Put("/read-all", handlers.MarkAllNotificationsAsRead)
	notificationsGroup.Put("/:notificationId/read", handlers.MarkNotificationAsRead)
}
