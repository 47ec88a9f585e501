package routes

import (
	"github.com/expertlink/expert_marketplace/handlers"
	"github.com/expertlink/expert_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

func ExpertRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Public catalog: anyone can browse approved experts.
	experts := api.Group("/experts")
	experts.Get("", handlers.ListExperts)
	experts.Get("/:expertId", handlers.GetExpertProfile)
	experts.Get("/:expertId/services", handlers.GetExpertServices)
	experts.Get("/:expertId/availability", handlers.GetExpertAvailability)
	experts.Get("/:expertId/reviews", handlers.ListExpertReviews)

	api.Post("/experts/apply", middleware.Protected(), handlers.ApplyToBeAnExpert)

	// The expert's own console.
	me := api.Group("/expert", middleware.Protected(), middleware.ExpertRequired())
	me.Get("/profile", handlers.GetMyExpertProfile)
	me.Put("/profile", handlers.UpdateMyExpertProfile)
	me.Get("/earnings", handlers.GetExpertEarnings)

	servicesGroup := me.Group("/services")
	servicesGroup.Get("", handlers.GetMyServices)
	servicesGroup.Post("", handlers.CreateService)
	servicesGroup.Put("/:serviceId", handlers.UpdateService)
	servicesGroup.Delete("/:serviceId", handlers.DeleteService)

	availability := me.Group("/availability")
	availability.Get("", handlers.GetMyAvailability)
	availability.Post("", handlers.CreateAvailabilitySlot)
	availability.Delete("/:slotId", handlers.DeleteAvailabilitySlot)
}
