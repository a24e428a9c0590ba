package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"cteskills_backend/internal/model"
	"cteskills_backend/pkg/database"
	"cteskills_backend/pkg/utils/cloudflare"
	"cteskills_backend/pkg/utils/image"
	"cteskills_backend/pkg/utils/validation"
)

// UploadVideoThumbnail replaces a video's thumbnail. The image is
// validated, re-encoded and pushed to R2; the old object is removed
// best-effort. Admin only.
func UploadVideoThumbnail(c *fiber.Ctx) error {
	id := c.Params("id")

	var video model.Video
	if err := database.GetDB().First(&video, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Video not found",
		})
	}

	file, err := c.FormFile("thumbnail")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No thumbnail file provided",
		})
	}

	if err := validation.ValidateImage(file); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	buf, contentType, err := image.ProcessImage(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Could not process image",
		})
	}

	result, err := cloudflare.UploadThumbnail(cloudflare.UploadThumbnailConfig{
		Body:        buf,
		ContentType: contentType,
		VideoSlug:   video.Slug,
		Filename:    file.Filename,
	})
	if err != nil {
		log.Printf("Could not upload thumbnail for video %d: %v", video.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not upload thumbnail",
		})
	}

	oldURL := video.ThumbnailURL
	if err := database.GetDB().Model(&video).Update("thumbnail_url", result.URL).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save thumbnail URL",
		})
	}

	if oldURL != "" {
		if err := cloudflare.DeleteObject(oldURL); err != nil {
			log.Printf("Could not delete old thumbnail %s: %v", oldURL, err)
		}
	}

	return c.JSON(fiber.Map{
		"thumbnail_url": result.URL,
	})
}
