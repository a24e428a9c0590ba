package model

import (
	"time"

	"gorm.io/gorm"
)

// VideoView is a single playback-page view.
type VideoView struct {
	gorm.Model
	VideoID   uint      `json:"video_id" gorm:"index"`
	UserID    *uint     `json:"user_id" gorm:"index"`
	IP        string    `json:"ip" gorm:"index"`
	SessionID string    `json:"session_id" gorm:"index"`
	UserAgent string    `json:"user_agent"`
	ViewedAt  time.Time `json:"viewed_at" gorm:"index"`
	IsUnique  bool      `json:"is_unique" gorm:"default:true"`

	Video Video `json:"-" gorm:"foreignKey:VideoID"`
	User  *User `json:"-" gorm:"foreignKey:UserID"`
}

// VideoStats holds aggregated counters per video.
type VideoStats struct {
	gorm.Model
	VideoID      uint      `json:"video_id" gorm:"uniqueIndex"`
	TotalViews   int64     `json:"total_views"`
	UniqueViews  int64     `json:"unique_views"`
	DailyViews   int64     `json:"daily_views"`
	WeeklyViews  int64     `json:"weekly_views"`
	MonthlyViews int64     `json:"monthly_views"`
	LastUpdated  time.Time `json:"last_updated"`

	Video Video `json:"-" gorm:"foreignKey:VideoID"`
}

// BeforeCreate marks repeat views from the same IP within 24 hours as
// non-unique.
func (vv *VideoView) BeforeCreate(tx *gorm.DB) error {
	var count int64
	tx.Model(&VideoView{}).
		Where("video_id = ? AND ip = ? AND viewed_at > ?",
			vv.VideoID,
			vv.IP,
			time.Now().Add(-24*time.Hour)).
		Count(&count)

	if count > 0 {
		vv.IsUnique = false
	}

	return nil
}

// AfterCreate bumps the aggregated counters.
func (vv *VideoView) AfterCreate(tx *gorm.DB) error {
	var stats VideoStats
	tx.FirstOrCreate(&stats, VideoStats{VideoID: vv.VideoID})

	updates := map[string]interface{}{
		"total_views":   gorm.Expr("total_views + ?", 1),
		"daily_views":   gorm.Expr("daily_views + ?", 1),
		"weekly_views":  gorm.Expr("weekly_views + ?", 1),
		"monthly_views": gorm.Expr("monthly_views + ?", 1),
		"last_updated":  time.Now(),
	}

	if vv.IsUnique {
		updates["unique_views"] = gorm.Expr("unique_views + ?", 1)
	}

	if err := tx.Model(&stats).Updates(updates).Error; err != nil {
		return err
	}

	// Denormalized counter used for catalog sorting.
	return tx.Model(&Video{}).Where("id = ?", vv.VideoID).
		Update("view_count", gorm.Expr("view_count + ?", 1)).Error
}
