package handlers

import (
	"errors"

	"github.com/expertlink/expert_marketplace/database"
	"github.com/expertlink/expert_marketplace/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func ListCategories(c *fiber.Ctx) error {
	var categories []models.Category
	database.DB.
		Where("is_active = ?", true).
		Order("sort_order asc, name asc").
		Find(&categories)

	return c.JSON(categories)
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color,omitempty"`
	SortOrder   *int   `json:"sort_order,omitempty"`
}

func CreateCategory(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	category := models.Category{Name: req.Name, IsActive: true}
	if req.Description != "" {
		category.Description = &req.Description
	}
	if req.Icon != "" {
		category.Icon = &req.Icon
	}
	if req.Color != "" {
		category.Color = &req.Color
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}

	if err := database.DB.Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A category with this name already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create category"})
	}

	return c.Status(fiber.StatusCreated).JSON(category)
}

func UpdateCategory(c *fiber.Ctx) error {
	categoryID := c.Params("categoryId")

	var category models.Category
	if err := database.DB.First(&category, "id = ?", categoryID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Category not found"})
	}

	var req struct {
		Name        *string `json:"name,omitempty"`
		Description *string `json:"description,omitempty"`
		Icon        *string `json:"icon,omitempty"`
		Color       *string `json:"color,omitempty"`
		SortOrder   *int    `json:"sort_order,omitempty"`
		IsActive    *bool   `json:"is_active,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = req.Description
	}
	if req.Icon != nil {
		category.Icon = req.Icon
	}
	if req.Color != nil {
		category.Color = req.Color
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := database.DB.Save(&category).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update category"})
	}

	return c.JSON(category)
}

// DeleteCategory deactivates a category that still has services; otherwise
// it removes the row.
func DeleteCategory(c *fiber.Ctx) error {
	categoryID := c.Params("categoryId")

	var category models.Category
	if err := database.DB.First(&category, "id = ?", categoryID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Category not found"})
	}

	var serviceCount int64
	database.DB.Model(&models.Service{}).Where("category_id = ?", category.ID).Count(&serviceCount)
	if serviceCount > 0 {
		category.IsActive = false
		if err := database.DB.Save(&category).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate category"})
		}
		return c.JSON(fiber.Map{"message": "Category has services and was deactivated instead of deleted."})
	}

	if err := database.DB.Delete(&category).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete category"})
	}

	return c.JSON(fiber.Map{"message": "Category deleted."})
}
