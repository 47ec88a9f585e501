package routes

import (
	"github.com/expertlink/expert_marketplace/handlers"
	"github.com/expertlink/expert_marketplace/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func MessagingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	messages := api.Group("/messages", middleware.Protected())
	messages.Get("", handlers.GetInbox)
	messages.Post("", handlers.SendMessage)
	messages.Get("/with/:userId", handlers.GetConversation)
	messages.Put("/:messageId/read", handlers.MarkMessageAsRead)

	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws", websocket.New(handlers.ServeWs))
}
