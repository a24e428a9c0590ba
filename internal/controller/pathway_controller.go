package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"cteskills_backend/internal/model"
	"cteskills_backend/pkg/database"
)

type PathwayInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// GetPathways lists active pathways with their video counts.
func GetPathways(c *fiber.Ctx) error {
	var pathways []model.Pathway
	if err := database.GetDB().Where("is_active = ?", true).
		Order("name ASC").Find(&pathways).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch pathways",
		})
	}

	responses := make([]fiber.Map, 0, len(pathways))
	for _, pathway := range pathways {
		var videoCount int64
		database.GetDB().Model(&model.Video{}).
			Where("pathway_id = ? AND is_active = ?", pathway.ID, true).
			Count(&videoCount)

		responses = append(responses, fiber.Map{
			"id":          pathway.ID,
			"name":        pathway.Name,
			"slug":        pathway.Slug,
			"description": pathway.Description,
			"icon":        pathway.Icon,
			"video_count": videoCount,
		})
	}

	return c.JSON(fiber.Map{
		"pathways": responses,
	})
}

// GetPathwayVideos lists a pathway's active videos. Playback URLs are
// withheld; the detail route handles gating.
func GetPathwayVideos(c *fiber.Ctx) error {
	slug := c.Params("slug")

	var pathway model.Pathway
	if err := database.GetDB().Where("slug = ? AND is_active = ?", slug, true).
		First(&pathway).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Pathway not found",
		})
	}

	var videos []model.Video
	if err := database.GetDB().
		Preload("Category").
		Where("pathway_id = ? AND is_active = ?", pathway.ID, true).
		Order("created_at ASC").
		Find(&videos).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch videos",
		})
	}

	responses := make([]fiber.Map, 0, len(videos))
	for i := range videos {
		resp := videoResponse(&videos[i], false)
		resp["locked"] = !videos[i].IsFree
		delete(resp, "video_url")
		responses = append(responses, resp)
	}

	return c.JSON(fiber.Map{
		"pathway": pathway,
		"videos":  responses,
	})
}

// CreatePathway creates a pathway. Admin only.
func CreatePathway(c *fiber.Ctx) error {
	input := new(PathwayInput)
	if err := c.BodyParser(input); err != nil || input.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name is required",
		})
	}

	pathway := model.Pathway{
		Name:        input.Name,
		Description: input.Description,
		Icon:        input.Icon,
		IsActive:    true,
	}
	if err := database.GetDB().Create(&pathway).Error; err != nil {
		log.Printf("Could not create pathway: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create pathway",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"pathway": pathway,
	})
}

// UpdatePathway updates a pathway. Admin only.
func UpdatePathway(c *fiber.Ctx) error {
	id := c.Params("id")

	var pathway model.Pathway
	if err := database.GetDB().First(&pathway, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Pathway not found",
		})
	}

	input := new(PathwayInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	updates := map[string]interface{}{}
	if input.Name != "" {
		updates["name"] = input.Name
	}
	if input.Description != "" {
		updates["description"] = input.Description
	}
	if input.Icon != "" {
		updates["icon"] = input.Icon
	}

	if len(updates) > 0 {
		if err := database.GetDB().Model(&pathway).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not update pathway",
			})
		}
	}

	return c.JSON(fiber.Map{"pathway": pathway})
}

// DeletePathway removes a pathway. Videos keep existing with a null
// pathway reference; access grants for the pathway are dropped.
func DeletePathway(c *fiber.Ctx) error {
	id := c.Params("id")

	var pathway model.Pathway
	if err := database.GetDB().First(&pathway, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Pathway not found",
		})
	}

	database.GetDB().Model(&model.Video{}).
		Where("pathway_id = ?", pathway.ID).
		Update("pathway_id", nil)
	database.GetDB().Where("pathway_id = ?", pathway.ID).Delete(&model.VideoAccess{})

	if err := database.GetDB().Delete(&pathway).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete pathway",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Pathway deleted",
	})
}
