package routes

import (
	"github.com/expertlink/expert_marketplace/handlers"
	"github.com/gofiber/fiber/v2"
)

func PublicRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/categories", handlers.ListCategories)
}
