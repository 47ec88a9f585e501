package handlers

import (
	"github.com/expertlink/expert_marketplace/database"
	"github.com/expertlink/expert_marketplace/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// GetExpertServices lists the active services an expert offers.
func GetExpertServices(c *fiber.Ctx) error {
	expertID := c.Params("expertId")

	var services []models.Service
	database.DB.Preload("Category").
		Where("expert_id = ? AND is_active = ?", expertID, true).
		Order("price asc").
		Find(&services)

	return c.JSON(services)
}

type CreateServiceRequest struct {
	Name            string  `json:"name" validate:"required"`
	Description     string  `json:"description"`
	Price           float64 `json:"price" validate:"required,gt=0"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,gt=0"`
	ServiceType     string  `json:"service_type" validate:"required,oneof=1on1 package webinar digital"`
	CategoryID      string  `json:"category_id" validate:"omitempty,uuid"`
	MaxParticipants int     `json:"max_participants"`
}

func CreateService(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	expertID, _ := uuid.Parse(claims["user_id"].(string))

	var req CreateServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	service := models.Service{
		ExpertID:        expertID,
		Name:            req.Name,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		ServiceType:     req.ServiceType,
	}
	if req.Description != "" {
		service.Description = &req.Description
	}
	if req.CategoryID != "" {
		var category models.Category
		if err := database.DB.First(&category, "id = ?", req.CategoryID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Category not found"})
		}
		service.CategoryID = &category.ID
	}
	if req.MaxParticipants > 1 {
		service.MaxParticipants = req.MaxParticipants
	} else {
		service.MaxParticipants = 1
	}

	if err := database.DB.Create(&service).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create service"})
	}

	return c.Status(fiber.StatusCreated).JSON(service)
}

type UpdateServiceRequest struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	Price           *float64 `json:"price"`
	DurationMinutes *int     `json:"duration_minutes"`
	IsActive        *bool    `json:"is_active"`
}

func UpdateService(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	expertID, _ := uuid.Parse(claims["user_id"].(string))
	serviceID := c.Params("serviceId")

	var service models.Service
	if err := database.DB.First(&service, "id = ?", serviceID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Service not found"})
	}
	if service.ExpertID != expertID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your service"})
	}

	var req UpdateServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if req.Name != nil {
		service.Name = *req.Name
	}
	if req.Description != nil {
		service.Description = req.Description
	}
	if req.Price != nil && *req.Price > 0 {
		service.Price = *req.Price
	}
	if req.DurationMinutes != nil && *req.DurationMinutes > 0 {
		service.DurationMinutes = *req.DurationMinutes
	}
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}

	database.DB.Save(&service)

	return c.JSON(service)
}

func DeleteService(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	expertID, _ := uuid.Parse(claims["user_id"].(string))
	serviceID := c.Params("serviceId")

	var service models.Service
	if err := database.DB.First(&service, "id = ?", serviceID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Service not found"})
	}
	if service.ExpertID != expertID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your service"})
	}

	var bookingCount int64
	database.DB.Model(&models.Booking{}).
		Where("service_id = ? AND status IN ?", serviceID, []string{"pending", "confirmed"}).
		Count(&bookingCount)
	if bookingCount > 0 {
		// Deactivate instead of orphaning live bookings.
		service.IsActive = false
		database.DB.Save(&service)
		return c.JSON(fiber.Map{"message": "Service has open bookings and was deactivated instead of deleted."})
	}

	if err := database.DB.Delete(&service).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete service"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func GetMyServices(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	expertID := claims["user_id"].(string)

	var services []models.Service
	database.DB.Preload("Category").
		Where("expert_id = ?", expertID).
		Order("created_at desc").
		Find(&services)

	return c.JSON(services)
}
