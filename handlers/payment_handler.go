package handlers

import (
	"log"

	"github.com/expertlink/expert_marketplace/database"
	"github.com/expertlink/expert_marketplace/models"
	"github.com/expertlink/expert_marketplace/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// VerifyPayment is polled by the confirmation page after checkout returns.
// It settles the order against Cashfree's records and reports the outcome.
func VerifyPayment(c *fiber.Ctx) error {
	orderID := c.Params("orderId")
	if orderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Order ID is required"})
	}

	status, payment, err := services.SettleOrder(orderID)
	if err != nil {
		log.Printf("🔥 Payment verification failed for order %s: %v", orderID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Could not verify payment, please try again."})
	}

	return c.JSON(fiber.Map{
		"order_id":     orderID,
		"order_status": status,
		"booking_id":   payment.BookingID,
		"payment":      payment,
	})
}

// HandleCashfreeWebhook settles the order named in a payment notification.
// The outcome is re-derived from the payments API rather than trusted from
// the webhook body, so a replayed or malformed notification is harmless.
func HandleCashfreeWebhook(c *fiber.Ctx) error {
	var event struct {
		Data struct {
			Order struct {
				OrderID string `json:"order_id"`
			} `json:"order"`
		} `json:"data"`
	}
	if err := c.BodyParser(&event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if event.Data.Order.OrderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing order id"})
	}

	if _, _, err := services.SettleOrder(event.Data.Order.OrderID); err != nil {
		log.Printf("🔥 Webhook settlement failed for order %s: %v", event.Data.Order.OrderID, err)
		// Non-2xx makes Cashfree retry the notification later.
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Settlement failed"})
	}

	return c.JSON(fiber.Map{"message": "ok"})
}

func GetMyPayments(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var userPayments []models.Payment
	database.DB.
		Preload("Booking.Service").
		Preload("Recipient").
		Where("payer_id = ?", userID).
		Order("created_at desc").
		Find(&userPayments)

	return c.JSON(userPayments)
}

func GetPaymentReceipt(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	paymentID := c.Params("paymentId")

	var payment models.Payment
	if err := database.DB.First(&payment, "id = ?", paymentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
	}
	isPayer := payment.PayerID != nil && *payment.PayerID == userID
	if !isPayer && payment.RecipientID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your payment"})
	}
	if payment.ReceiptURL == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Receipt not available yet"})
	}

	return c.JSON(fiber.Map{"receipt_url": *payment.ReceiptURL})
}
