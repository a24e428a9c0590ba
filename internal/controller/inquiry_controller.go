package controller

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"cteskills_backend/internal/model"
	"cteskills_backend/pkg/database"
	"cteskills_backend/pkg/email"
)

type InquiryInput struct {
	Name      string `json:"name" validate:"required"`
	WorkEmail string `json:"work_email" validate:"required,email"`
	School    string `json:"school" validate:"required"`
	Role      string `json:"role"`
	Message   string `json:"message"`
}

type InquiryStatusInput struct {
	Status string `json:"status" validate:"required"` // new, contacted, closed
}

// CreateInquiry accepts a school licensing inquiry from the public site.
func CreateInquiry(c *fiber.Ctx) error {
	input := new(InquiryInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	if input.Name == "" || input.WorkEmail == "" || input.School == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name, work_email and school are required",
		})
	}

	inquiry := model.SchoolInquiry{
		Name:      input.Name,
		WorkEmail: input.WorkEmail,
		School:    input.School,
		Role:      input.Role,
		Message:   input.Message,
	}
	if err := database.GetDB().Create(&inquiry).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save inquiry",
		})
	}

	if email.GlobalEmailService != nil {
		adminEmail := os.Getenv("ADMIN_EMAIL")
		if adminEmail == "" {
			adminEmail = "sales@cteskills.com"
		}
		err := email.GlobalEmailService.SendInquiryNotification(
			adminEmail,
			inquiry.Name,
			inquiry.WorkEmail,
			inquiry.School,
			inquiry.Role,
			inquiry.Message,
		)
		if err != nil {
			log.Printf("Could not send inquiry notification: %v", err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Inquiry received",
	})
}

// GetInquiries lists inquiries for the back office. Admin only.
func GetInquiries(c *fiber.Ctx) error {
	query := database.GetDB().Model(&model.SchoolInquiry{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var inquiries []model.SchoolInquiry
	if err := query.Order("created_at DESC").Find(&inquiries).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch inquiries",
		})
	}

	return c.JSON(fiber.Map{
		"inquiries": inquiries,
	})
}

// UpdateInquiryStatus moves an inquiry through the contact workflow.
// Admin only.
func UpdateInquiryStatus(c *fiber.Ctx) error {
	id := c.Params("id")

	var inquiry model.SchoolInquiry
	if err := database.GetDB().First(&inquiry, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Inquiry not found",
		})
	}

	input := new(InquiryStatusInput)
	if err := c.BodyParser(input); err != nil || input.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Status is required",
		})
	}

	switch input.Status {
	case "new", "contacted", "closed":
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown status",
		})
	}

	updates := map[string]interface{}{
		"status": input.Status,
	}
	if input.Status == "contacted" && inquiry.ContactedAt == nil {
		now := time.Now()
		updates["contacted_at"] = &now
	}

	if err := database.GetDB().Model(&inquiry).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update inquiry",
		})
	}

	return c.JSON(fiber.Map{"inquiry": inquiry})
}

// MarkInquiryRead flags an inquiry as read. Admin only.
func MarkInquiryRead(c *fiber.Ctx) error {
	id := c.Params("id")

	result := database.GetDB().Model(&model.SchoolInquiry{}).
		Where("id = ?", id).
		Update("read_status", true)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update inquiry",
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Inquiry not found",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Inquiry marked as read",
	})
}
