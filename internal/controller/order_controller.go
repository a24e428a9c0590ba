package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"cteskills_backend/internal/model"
	"cteskills_backend/pkg/database"
	"cteskills_backend/pkg/utils/jwt"
)

// GetMyOrders lists the caller's payment history, newest first.
func GetMyOrders(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var orders []model.Order
	if err := database.GetDB().
		Where("user_id = ?", claims.UserID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch orders",
		})
	}

	return c.JSON(fiber.Map{
		"orders": orders,
	})
}

// AdminListOrders pages through all orders. Admin only.
func AdminListOrders(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit < 1 || limit > 100 {
		limit = 50
	}

	query := database.GetDB().Model(&model.Order{}).Preload("User")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if refunded := c.Query("refunded"); refunded == "true" {
		query = query.Where("refunded = ?", true)
	}

	var total int64
	query.Count(&total)

	var orders []model.Order
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch orders",
		})
	}

	return c.JSON(fiber.Map{
		"orders": orders,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}
