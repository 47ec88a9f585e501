package handlers

import (
	"errors"
	"strconv"

	"github.com/expertlink/expert_marketplace/database"
	"github.com/expertlink/expert_marketplace/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListExperts returns approved experts, optionally narrowed by the featured
// flag, a category, or a title search term.
func ListExperts(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := database.DB.Preload("User").Where("is_approved = ?", true)

	if c.Query("featured") == "true" {
		query = query.Where("is_featured = ?", true)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("title ILIKE ?", "%"+search+"%")
	}
	if categoryID := c.Query("category"); categoryID != "" {
		query = query.
			Joins("JOIN services ON services.expert_id = experts.user_id AND services.category_id = ? AND services.is_active = ?", categoryID, true).
			Distinct()
	}

	var experts []models.Expert
	if err := query.
		Order("is_featured desc, average_rating desc").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&experts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch experts"})
	}

	return c.JSON(experts)
}

// GetExpertProfile is the public expert page payload: the profile plus its
// active services and public reviews.
func GetExpertProfile(c *fiber.Ctx) error {
	expertID := c.Params("expertId")

	var expert models.Expert
	if err := database.DB.Preload("User").First(&expert, "user_id = ?", expertID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Expert not found"})
	}
	if !expert.IsApproved {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Expert not found"})
	}

	var services []models.Service
	database.DB.Preload("Category").
		Where("expert_id = ? AND is_active = ?", expertID, true).
		Find(&services)

	var reviews []models.Review
	database.DB.Preload("Reviewer").
		Where("expert_id = ? AND is_public = ?", expertID, true).
		Order("created_at desc").
		Limit(50).
		Find(&reviews)

	return c.JSON(fiber.Map{
		"expert":   expert,
		"services": services,
		"reviews":  reviews,
	})
}

type ExpertApplicationRequest struct {
	Title           string  `json:"title" validate:"required"`
	Bio             string  `json:"bio" validate:"required,min=20"`
	HourlyRate      float64 `json:"hourly_rate" validate:"gte=0"`
	YearsExperience *int    `json:"years_experience"`
}

func ApplyToBeAnExpert(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var req ExpertApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var existing models.Expert
	err := database.DB.Where("user_id = ?", userID).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "You have already submitted an application."})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	application := models.Expert{
		UserID:          userID,
		Title:           req.Title,
		HourlyRate:      req.HourlyRate,
		YearsExperience: req.YearsExperience,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&application).Error; err != nil {
			return err
		}
		// The application bio lands on the user profile so it shows up
		// publicly once approved.
		return tx.Model(&models.User{}).Where("id = ?", userID).Update("bio", req.Bio).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create application"})
	}

	return c.Status(fiber.StatusCreated).JSON(application)
}

func GetMyExpertProfile(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID := claims["user_id"].(string)

	var expert models.Expert
	if err := database.DB.Preload("User").First(&expert, "user_id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Expert profile not found"})
	}

	return c.JSON(expert)
}

type UpdateExpertProfileRequest struct {
	Title             *string  `json:"title"`
	HourlyRate        *float64 `json:"hourly_rate"`
	YearsExperience   *int     `json:"years_experience"`
	ResponseTimeHours *int     `json:"response_time_hours"`
}

func UpdateMyExpertProfile(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID := claims["user_id"].(string)

	var expert models.Expert
	if err := database.DB.First(&expert, "user_id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Expert profile not found"})
	}

	var req UpdateExpertProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if req.Title != nil {
		expert.Title = *req.Title
	}
	if req.HourlyRate != nil {
		expert.HourlyRate = *req.HourlyRate
	}
	if req.YearsExperience != nil {
		expert.YearsExperience = req.YearsExperience
	}
	if req.ResponseTimeHours != nil {
		expert.ResponseTimeHours = req.ResponseTimeHours
	}

	database.DB.Save(&expert)

	return c.JSON(expert)
}

// GetExpertEarnings summarizes the signed-in expert's completed business.
func GetExpertEarnings(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	expertID, _ := uuid.Parse(claims["user_id"].(string))

	var expert models.Expert
	if err := database.DB.First(&expert, "user_id = ?", expertID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Expert profile not found"})
	}

	var pendingPayout float64
	database.DB.Model(&models.Payment{}).
		Where("recipient_id = ? AND status = ?", expertID, "completed").
		Select("COALESCE(SUM(expert_earnings), 0)").
		Row().Scan(&pendingPayout)

	return c.JSON(fiber.Map{
		"total_sessions": expert.TotalSessions,
		"total_earnings": expert.TotalEarnings,
		"completed_payments_total": pendingPayout,
	})
}
