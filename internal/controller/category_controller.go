package controller

import (
	"github.com/gofiber/fiber/v2"

	"cteskills_backend/internal/model"
	"cteskills_backend/pkg/database"
)

type CategoryInput struct {
	Name string `json:"name" validate:"required"`
}

func GetCategories(c *fiber.Ctx) error {
	var categories []model.Category
	if err := database.GetDB().Order("name ASC").Find(&categories).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch categories",
		})
	}

	return c.JSON(fiber.Map{
		"categories": categories,
	})
}

// CreateCategory creates a category. Admin only.
func CreateCategory(c *fiber.Ctx) error {
	input := new(CategoryInput)
	if err := c.BodyParser(input); err != nil || input.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name is required",
		})
	}

	category := model.Category{Name: input.Name}
	if err := database.GetDB().Create(&category).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create category",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"category": category,
	})
}

// DeleteCategory removes a category, detaching its videos.
func DeleteCategory(c *fiber.Ctx) error {
	id := c.Params("id")

	var category model.Category
	if err := database.GetDB().First(&category, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Category not found",
		})
	}

	database.GetDB().Model(&model.Video{}).
		Where("category_id = ?", category.ID).
		Update("category_id", nil)

	if err := database.GetDB().Delete(&category).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete category",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Category deleted",
	})
}
