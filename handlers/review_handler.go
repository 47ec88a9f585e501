package handlers

import (
	"github.com/expertlink/expert_marketplace/database"
	"github.com/expertlink/expert_marketplace/models"
	"github.com/expertlink/expert_marketplace/notifications"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateReviewRequest struct {
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Comment  string `json:"comment,omitempty" validate:"omitempty,max=2000"`
	IsPublic *bool  `json:"is_public,omitempty"`
}

// CreateReview records a rating for a completed session and folds it into
// the expert's aggregates in the same transaction.
func CreateReview(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	reviewerID, _ := uuid.Parse(claims["user_id"].(string))

	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var req CreateReviewRequest
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
	if booking.ClientID == nil || *booking.ClientID != reviewerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only review your own bookings"})
	}
	if booking.Status != "completed" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Only completed sessions can be reviewed"})
	}

	var existing models.Review
	if err := database.DB.First(&existing, "booking_id = ?", bookingID).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "This booking has already been reviewed"})
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	review := models.Review{
		BookingID:  bookingID,
		ReviewerID: reviewerID,
		ExpertID:   booking.ExpertID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		IsPublic:   isPublic,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}

		var stats struct {
			Avg   float32
			Count int64
		}
		if err := tx.Model(&models.Review{}).
			Select("COALESCE(AVG(rating), 0) as avg, COUNT(*) as count").
			Where("expert_id = ?", booking.ExpertID).
			Scan(&stats).Error; err != nil {
			return err
		}

		return tx.Model(&models.Expert{}).
			Where("user_id = ?", booking.ExpertID).
			Updates(map[string]interface{}{
				"average_rating": stats.Avg,
				"total_reviews":  stats.Count,
			}).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to submit review"})
	}

	go notifications.Notify(booking.ExpertID, "review", "New review received",
		"A client left a review on one of your sessions.", map[string]string{"review_id": review.ID.String()})

	return c.Status(fiber.StatusCreated).JSON(review)
}

func ListExpertReviews(c *fiber.Ctx) error {
	expertID := c.Params("expertId")

	var reviews []models.Review
	database.DB.
		Preload("Reviewer").
		Where("expert_id = ? AND is_public = ?", expertID, true).
		Order("created_at desc").
		Find(&reviews)

	return c.JSON(reviews)
}

func GetMyReviews(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	reviewerID, _ := uuid.Parse(claims["user_id"].(string))

	var reviews []models.Review
	database.DB.
		Where("reviewer_id = ?", reviewerID).
		Order("created_at desc").
		Find(&reviews)

	return c.JSON(reviews)
}
