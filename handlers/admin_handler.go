package handlers

import (
	"fmt"
	"strconv"

	"github.com/expertlink/expert_marketplace/database"
	"github.com/expertlink/expert_marketplace/models"
	"github.com/expertlink/expert_marketplace/notifications"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func GetPendingExperts(c *fiber.Ctx) error {
	var experts []models.Expert
	database.DB.
		Preload("User").
		Where("is_approved = ?", false).
		Order("created_at asc").
		Find(&experts)

	return c.JSON(experts)
}

// ApproveExpert makes the application live: the expert row is approved and
// the backing user gains the expert role.
func ApproveExpert(c *fiber.Ctx) error {
	expertID := c.Params("expertId")

	var expert models.Expert
	if err := database.DB.Preload("User").First(&expert, "user_id = ?", expertID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Expert application not found"})
	}
	if expert.IsApproved {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Expert is already approved"})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&expert).Update("is_approved", true).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", expert.UserID).Update("role", "expert").Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to approve expert"})
	}

	go notifications.SendEmail(expert.User.FullName, expert.User.Email, "Your Expert Application Was Approved",
		"<h1>Congratulations!</h1><p>Your expert profile is now live. Set up your services and availability to start receiving bookings.</p>")
	go notifications.Notify(expert.UserID, "system", "Application approved",
		"Your expert profile is now live.", nil)

	return c.JSON(fiber.Map{"message": "Expert approved successfully"})
}

type RejectExpertRequest struct {
	Reason string `json:"reason" validate:"required,min=5"`
}

func RejectExpert(c *fiber.Ctx) error {
	expertID := c.Params("expertId")

	var req RejectExpertRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var expert models.Expert
	if err := database.DB.Preload("User").First(&expert, "user_id = ?", expertID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Expert application not found"})
	}
	if expert.IsApproved {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot reject an approved expert"})
	}

	if err := database.DB.Delete(&expert).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reject application"})
	}

	go notifications.SendEmail(expert.User.FullName, expert.User.Email, "Update On Your Expert Application",
		fmt.Sprintf("<h1>Application Update</h1><p>Your application was not approved this time.</p><p>Reason: %s</p><p>You are welcome to apply again.</p>", req.Reason))

	return c.JSON(fiber.Map{"message": "Expert application rejected"})
}

func SetExpertFeatured(c *fiber.Ctx) error {
	expertID := c.Params("expertId")

	var req struct {
		IsFeatured bool `json:"is_featured"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	result := database.DB.Model(&models.Expert{}).
		Where("user_id = ? AND is_approved = ?", expertID, true).
		Update("is_featured", req.IsFeatured)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update expert"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Approved expert not found"})
	}

	return c.JSON(fiber.Map{"message": "Expert updated"})
}

func GetAllUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
	offset := (page - 1) * pageSize

	query := database.DB.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var users []models.User
	query.Order("created_at desc").Limit(pageSize).Offset(offset).Find(&users)

	return c.JSON(fiber.Map{"users": users, "total": total, "page": page, "page_size": pageSize})
}

func SetUserActive(c *fiber.Ctx) error {
	userID := c.Params("userId")

	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	if user.Role == "admin" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Admin accounts cannot be deactivated"})
	}

	if err := database.DB.Model(&user).Update("is_active", req.IsActive).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user"})
	}

	return c.JSON(fiber.Map{"message": "User updated"})
}

func GetAllBookings(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
	offset := (page - 1) * pageSize

	query := database.DB.Model(&models.Booking{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var bookings []models.Booking
	query.
		Preload("Client").
		Preload("Expert.User").
		Preload("Service").
		Order("created_at desc").
		Limit(pageSize).
		Offset(offset).
		Find(&bookings)

	return c.JSON(fiber.Map{"bookings": bookings, "total": total, "page": page, "page_size": pageSize})
}

func GetAllPayments(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
	offset := (page - 1) * pageSize

	query := database.DB.Model(&models.Payment{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var allPayments []models.Payment
	query.
		Preload("Payer").
		Preload("Recipient").
		Order("created_at desc").
		Limit(pageSize).
		Offset(offset).
		Find(&allPayments)

	return c.JSON(fiber.Map{"payments": allPayments, "total": total, "page": page, "page_size": pageSize})
}

type MeetingLinkRequest struct {
	MeetingURL string `json:"meeting_url" validate:"required,url"`
}

func AddMeetingLink(c *fiber.Ctx) error {
	bookingID := c.Params("bookingId")

	var req MeetingLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var booking models.Booking
	if err := database.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}
	if booking.Status != "confirmed" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Meeting links can only be added to confirmed bookings"})
	}

	booking.MeetingURL = &req.MeetingURL
	if err := database.DB.Save(&booking).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save meeting link"})
	}

	if booking.ClientID != nil {
		go notifications.Notify(*booking.ClientID, "booking", "Meeting link added",
			"The meeting link for your upcoming session is ready.", map[string]string{"booking_id": booking.ID.String()})
	}

	return c.JSON(fiber.Map{"message": "Meeting link added"})
}

type RefundRequest struct {
	Reason string `json:"reason" validate:"required,min=5"`
}

// ProcessRefund reverses a completed payment after admin review: the payment
// moves to refunded, the expert's credited earnings are clawed back, and the
// booking is cancelled with its slot reopened.
func ProcessRefund(c *fiber.Ctx) error {
	paymentID := c.Params("paymentId")

	var req RefundRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var payment models.Payment
	if err := database.DB.Preload("Booking").First(&payment, "id = ?", paymentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
	}
	if payment.Status != "completed" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Only completed payments can be refunded"})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&payment).Update("status", "refunded").Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Expert{}).
			Where("user_id = ?", payment.RecipientID).
			Updates(map[string]interface{}{
				"total_earnings": gorm.Expr("total_earnings - ?", payment.ExpertEarnings),
				"total_sessions": gorm.Expr("GREATEST(total_sessions - 1, 0)"),
			}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Booking{}).
			Where("id = ?", payment.BookingID).
			Updates(map[string]interface{}{
				"status":              "cancelled",
				"cancellation_reason": req.Reason,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&models.AvailabilitySlot{}).
			Where("id = ? AND status = ?", payment.Booking.AvailabilitySlotID, "booked").
			Update("status", "available").Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process refund"})
	}

	if payment.PayerID != nil {
		go notifications.Notify(*payment.PayerID, "payment", "Refund processed",
			fmt.Sprintf("Your payment of %.2f %s has been refunded.", payment.Amount, payment.Currency),
			map[string]string{"payment_id": payment.ID.String()})
	}
	go notifications.Notify(payment.RecipientID, "payment", "Booking refunded",
		"A booking payment was refunded after review.", map[string]string{"payment_id": payment.ID.String()})

	return c.JSON(fiber.Map{"message": "Refund processed"})
}
