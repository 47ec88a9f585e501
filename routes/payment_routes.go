package routes

import (
	"github.com/expertlink/expert_marketplace/handlers"
	"github.com/expertlink/expert_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Verify is public: the confirmation page may belong to a guest, and the
	// order id itself is the capability.
	api.Get("/payments/cashfree/verify/:orderId", handlers.VerifyPayment)
	api.Post("/payments/webhook", handlers.HandleCashfreeWebhook)

	payment := api.Group("/payments", middleware.Protected())
	payment.Get("/me", handlers.GetMyPayments)
	payment.Get("/:paymentId/receipt", handlers.GetPaymentReceipt)
}
