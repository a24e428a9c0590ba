package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cteskills_backend/internal/model"
	"cteskills_backend/pkg/database"
	"cteskills_backend/pkg/utils/jwt"
)

type CreateVideoInput struct {
	Title           string   `json:"title" validate:"required"`
	Description     string   `json:"description"`
	VideoURL        string   `json:"video_url" validate:"required"`
	ThumbnailURL    string   `json:"thumbnail_url"`
	DurationMinutes int      `json:"duration_minutes"`
	Level           string   `json:"level"`
	IsFree          bool     `json:"is_free"`
	PathwayID       *uint    `json:"pathway_id"`
	CategoryID      *uint    `json:"category_id"`
	Tags            []string `json:"tags"`
}

type UpdateVideoInput struct {
	Title           *string  `json:"title"`
	Description     *string  `json:"description"`
	VideoURL        *string  `json:"video_url"`
	ThumbnailURL    *string  `json:"thumbnail_url"`
	DurationMinutes *int     `json:"duration_minutes"`
	Level           *string  `json:"level"`
	IsFree          *bool    `json:"is_free"`
	PathwayID       *uint    `json:"pathway_id"`
	CategoryID      *uint    `json:"category_id"`
	Tags            []string `json:"tags"`
	IsActive        *bool    `json:"is_active"`
}

// callerCanWatch reports whether the authenticated caller may play gated
// videos in the given pathway. Anonymous callers never can.
func callerCanWatch(c *fiber.Ctx, pathwayID *uint) bool {
	claims, ok := c.Locals("user").(*jwt.Claims)
	if !ok || claims == nil {
		return false
	}

	now := time.Now()

	if pathwayID != nil {
		var access model.VideoAccess
		err := database.GetDB().
			Where("user_id = ? AND pathway_id = ?", claims.UserID, *pathwayID).
			First(&access).Error
		if err == nil && access.IsValid(now) {
			return true
		}
	}

	var count int64
	database.GetDB().Model(&model.Subscription{}).
		Where("user_id = ? AND status IN ? AND (current_period_end IS NULL OR current_period_end > ?)",
			claims.UserID, []string{"active", "trialing"}, now).
		Count(&count)
	return count > 0
}

// videoResponse shapes a video for the public API, blanking the playback
// URL when the caller is not entitled to it.
func videoResponse(video *model.Video, playable bool) fiber.Map {
	resp := fiber.Map{
		"id":               video.ID,
		"title":            video.Title,
		"slug":             video.Slug,
		"description":      video.Description,
		"thumbnail_url":    video.ThumbnailURL,
		"duration_minutes": video.DurationMinutes,
		"level":            video.Level,
		"is_free":          video.IsFree,
		"pathway_id":       video.PathwayID,
		"category_id":      video.CategoryID,
		"tags":             video.Tags,
		"view_count":       video.ViewCount,
		"created_at":       video.CreatedAt,
		"locked":           !playable,
		"video_url":        "",
	}
	if playable {
		resp["video_url"] = video.VideoURL
	}
	if video.Pathway != nil {
		resp["pathway"] = video.Pathway
	}
	if video.Category != nil {
		resp["category"] = video.Category
	}
	return resp
}

// GetVideos lists active videos with optional pathway, category, level
// and search filters. Playback URLs are never included here.
func GetVideos(c *fiber.Ctx) error {
	query := database.GetDB().Model(&model.Video{}).
		Preload("Pathway").
		Preload("Category").
		Where("is_active = ?", true)

	if pathway := c.Query("pathway"); pathway != "" {
		query = query.Joins("JOIN pathways ON pathways.id = videos.pathway_id").
			Where("pathways.slug = ?", pathway)
	}
	if category := c.Query("category"); category != "" {
		query = query.Joins("JOIN categories ON categories.id = videos.category_id").
			Where("categories.slug = ?", category)
	}
	if level := c.Query("level"); level != "" {
		query = query.Where("videos.level = ?", level)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("videos.title ILIKE ? OR videos.description ILIKE ?",
			"%"+search+"%", "%"+search+"%")
	}
	if free := c.Query("free"); free == "true" {
		query = query.Where("videos.is_free = ?", true)
	}

	var videos []model.Video
	if err := query.Order("videos.created_at DESC").Find(&videos).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch videos",
		})
	}

	responses := make([]fiber.Map, 0, len(videos))
	for i := range videos {
		resp := videoResponse(&videos[i], false)
		// List entries carry no playback URL at all; lockedness still
		// reflects whether the video is free.
		resp["locked"] = !videos[i].IsFree
		delete(resp, "video_url")
		responses = append(responses, resp)
	}

	return c.JSON(fiber.Map{
		"videos": responses,
		"total":  len(responses),
	})
}

// GetVideoBySlug returns one video. Free videos include the playback
// URL for everyone; gated videos include it only for entitled callers
// and otherwise come back locked with an empty URL.
func GetVideoBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")

	var video model.Video
	if err := database.GetDB().
		Preload("Pathway").
		Preload("Category").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&video).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Video not found",
		})
	}

	playable := video.Playable(callerCanWatch(c, video.PathwayID))
	return c.JSON(fiber.Map{
		"video": videoResponse(&video, playable),
	})
}

// RecordVideoView logs a view for stats. Uniqueness per IP per day is
// handled by the model hook.
func RecordVideoView(c *fiber.Ctx) error {
	slug := c.Params("slug")

	var video model.Video
	if err := database.GetDB().Where("slug = ? AND is_active = ?", slug, true).
		First(&video).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Video not found",
		})
	}

	view := model.VideoView{
		VideoID:   video.ID,
		IP:        c.IP(),
		UserAgent: c.Get("User-Agent"),
		ViewedAt:  time.Now(),
	}
	if claims, ok := c.Locals("user").(*jwt.Claims); ok && claims != nil {
		view.UserID = &claims.UserID
	}

	if err := database.GetDB().Create(&view).Error; err != nil {
		log.Printf("Could not record view for video %d: %v", video.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not record view",
		})
	}

	return c.SendStatus(fiber.StatusCreated)
}

// CreateVideo creates a video. Admin only.
func CreateVideo(c *fiber.Ctx) error {
	input := new(CreateVideoInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	if input.Title == "" || input.VideoURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title and video_url are required",
		})
	}

	level := model.VideoLevel(input.Level)
	if level == "" {
		level = model.VideoLevelBeginner
	}

	video := model.Video{
		Title:           input.Title,
		Description:     input.Description,
		VideoURL:        input.VideoURL,
		ThumbnailURL:    input.ThumbnailURL,
		DurationMinutes: input.DurationMinutes,
		Level:           level,
		IsFree:          input.IsFree,
		PathwayID:       input.PathwayID,
		CategoryID:      input.CategoryID,
		IsActive:        true,
	}
	if err := video.SetTags(input.Tags); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid tags",
		})
	}

	if err := database.GetDB().Create(&video).Error; err != nil {
		log.Printf("Could not create video: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create video",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"video": video,
	})
}

// UpdateVideo partially updates a video. Admin only.
func UpdateVideo(c *fiber.Ctx) error {
	id := c.Params("id")

	var video model.Video
	if err := database.GetDB().First(&video, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Video not found",
		})
	}

	input := new(UpdateVideoInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.VideoURL != nil {
		updates["video_url"] = *input.VideoURL
	}
	if input.ThumbnailURL != nil {
		updates["thumbnail_url"] = *input.ThumbnailURL
	}
	if input.DurationMinutes != nil {
		updates["duration_minutes"] = *input.DurationMinutes
	}
	if input.Level != nil {
		updates["level"] = *input.Level
	}
	if input.IsFree != nil {
		updates["is_free"] = *input.IsFree
	}
	if input.PathwayID != nil {
		updates["pathway_id"] = *input.PathwayID
	}
	if input.CategoryID != nil {
		updates["category_id"] = *input.CategoryID
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.Tags != nil {
		if err := video.SetTags(input.Tags); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid tags",
			})
		}
		updates["tags"] = video.Tags
	}

	if len(updates) == 0 {
		return c.JSON(fiber.Map{"video": video})
	}

	if err := database.GetDB().Model(&video).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update video",
		})
	}

	return c.JSON(fiber.Map{"video": video})
}

// DeleteVideo removes a video and its stats rows. Admin only.
func DeleteVideo(c *fiber.Ctx) error {
	id := c.Params("id")

	var video model.Video
	if err := database.GetDB().First(&video, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Video not found",
		})
	}

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("video_id = ?", video.ID).Delete(&model.VideoView{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", video.ID).Delete(&model.VideoStats{}).Error; err != nil {
			return err
		}
		return tx.Delete(&video).Error
	})
	if err != nil {
		log.Printf("Could not delete video %d: %v", video.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete video",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Video deleted",
	})
}

// GetAdminDashboardStats summarizes catalog and business counters for
// the back office.
func GetAdminDashboardStats(c *fiber.Ctx) error {
	db := database.GetDB()

	var totalVideos, freeVideos, totalUsers, activeSubscriptions, openInquiries int64
	db.Model(&model.Video{}).Where("is_active = ?", true).Count(&totalVideos)
	db.Model(&model.Video{}).Where("is_active = ? AND is_free = ?", true, true).Count(&freeVideos)
	db.Model(&model.User{}).Count(&totalUsers)
	db.Model(&model.Subscription{}).
		Where("status IN ?", []string{"active", "trialing"}).
		Count(&activeSubscriptions)
	db.Model(&model.SchoolInquiry{}).Where("status = ?", "new").Count(&openInquiries)

	var revenue struct {
		Total    int64
		Refunded int64
	}
	db.Model(&model.Order{}).
		Select("COALESCE(SUM(amount), 0) as total, COALESCE(SUM(refund_amount), 0) as refunded").
		Where("status = ?", model.OrderStatusCompleted).
		Scan(&revenue)

	var topVideos []model.Video
	db.Where("is_active = ?", true).
		Order("view_count DESC").
		Limit(5).
		Find(&topVideos)

	return c.JSON(fiber.Map{
		"videos": fiber.Map{
			"total": totalVideos,
			"free":  freeVideos,
		},
		"users":                totalUsers,
		"active_subscriptions": activeSubscriptions,
		"open_inquiries":       openInquiries,
		"revenue_cents":        revenue.Total - revenue.Refunded,
		"top_videos":           topVideos,
	})
}
