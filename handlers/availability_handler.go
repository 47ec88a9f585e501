package handlers

import (
	"time"

	"github.com/expertlink/expert_marketplace/database"
	"github.com/expertlink/expert_marketplace/models"
	"github.com/expertlink/expert_marketplace/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

type CreateAvailabilityRequest struct {
	StartTime string `json:"start_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	EndTime   string `json:"end_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

func CreateAvailabilitySlot(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	expertID, _ := uuid.Parse(claims["user_id"].(string))

	var req CreateAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	startTime, _ := time.Parse(time.RFC3339, req.StartTime)
	endTime, _ := time.Parse(time.RFC3339, req.EndTime)

	if !startTime.Before(endTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Start time must be before end time"})
	}
	if startTime.Before(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot create a slot in the past"})
	}

	var overlapping int64
	database.DB.Model(&models.AvailabilitySlot{}).
		Where("expert_id = ? AND start_time < ? AND end_time > ?", expertID, endTime, startTime).
		Count(&overlapping)
	if overlapping > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "This slot overlaps an existing one"})
	}

	newSlot := models.AvailabilitySlot{
		ExpertID:  expertID,
		StartTime: startTime,
		EndTime:   endTime,
	}

	if err := database.DB.Create(&newSlot).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create availability slot"})
	}

	return c.Status(fiber.StatusCreated).JSON(newSlot)
}

func GetMyAvailability(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	expertID := claims["user_id"].(string)

	var slots []models.AvailabilitySlot
	database.DB.Where("expert_id = ?", expertID).Order("start_time asc").Find(&slots)

	return c.JSON(slots)
}

// GetExpertAvailability lists an expert's open future slots. With ?date= it
// narrows to one calendar date; without it the bookable dates are included
// so a caller can disable empty days up front.
func GetExpertAvailability(c *fiber.Ctx) error {
	expertID := c.Params("expertId")

	var slots []models.AvailabilitySlot
	database.DB.Where("expert_id = ? AND status = ? AND start_time > ?", expertID, "available", time.Now()).
		Order("start_time asc").
		Find(&slots)

	if dateParam := c.Query("date"); dateParam != "" {
		date, err := time.Parse("2006-01-02", dateParam)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, expected YYYY-MM-DD"})
		}
		return c.JSON(utils.SlotsOnDate(slots, date, time.UTC))
	}

	return c.JSON(fiber.Map{
		"slots":           slots,
		"available_dates": utils.AvailableDates(slots, time.UTC),
	})
}

func DeleteAvailabilitySlot(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	expertID, _ := uuid.Parse(claims["user_id"].(string))
	slotID := c.Params("slotId")

	var slot models.AvailabilitySlot
	if err := database.DB.First(&slot, "id = ?", slotID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Availability slot not found"})
	}
	if slot.ExpertID != expertID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your slot"})
	}
	if slot.Status != "available" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot delete a booked slot"})
	}

	if err := database.DB.Delete(&slot).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete slot"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
