package model

import (
	"encoding/json"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Video Levels
type VideoLevel string

const (
	VideoLevelBeginner     VideoLevel = "beginner"
	VideoLevelIntermediate VideoLevel = "intermediate"
	VideoLevelAdvanced     VideoLevel = "advanced"
)

// Pathway is a named grouping of training videos (e.g. "Health Science").
type Pathway struct {
	gorm.Model
	Name        string `json:"name" gorm:"not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text"`
	Icon        string `json:"icon"`
	IsActive    bool   `json:"is_active" gorm:"default:true;index"`

	Videos []Video `json:"videos,omitempty" gorm:"foreignKey:PathwayID;constraint:OnDelete:SET NULL"`
}

type Category struct {
	gorm.Model
	Name string `json:"name" gorm:"not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;not null"`

	Videos []Video `json:"-" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
}

type Video struct {
	gorm.Model
	Title           string         `json:"title" gorm:"not null"`
	Slug            string         `json:"slug" gorm:"uniqueIndex;not null"`
	Description     string         `json:"description" gorm:"type:text"`
	ThumbnailURL    string         `json:"thumbnail_url"`
	VideoURL        string         `json:"video_url"`
	DurationMinutes int            `json:"duration_minutes"`
	Level           VideoLevel     `json:"level" gorm:"default:'beginner'"`
	IsFree          bool           `json:"is_free" gorm:"default:false"`
	PathwayID       *uint          `json:"pathway_id" gorm:"index"`
	CategoryID      *uint          `json:"category_id" gorm:"index"`
	Tags            datatypes.JSON `json:"tags"`
	IsActive        bool           `json:"is_active" gorm:"default:true;index"`
	ViewCount       int64          `json:"view_count" gorm:"default:0"`

	Pathway  *Pathway  `json:"pathway,omitempty" gorm:"foreignKey:PathwayID"`
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// VideoAccess grants a user access to a pathway's paid videos until
// expires_at. One row per (user, pathway); the sync workflow upserts the
// expiry to the owning subscription's period end.
type VideoAccess struct {
	gorm.Model
	UserID     uint       `json:"user_id" gorm:"uniqueIndex:idx_user_pathway;not null"`
	PathwayID  uint       `json:"pathway_id" gorm:"uniqueIndex:idx_user_pathway;not null"`
	AccessType string     `json:"access_type" gorm:"default:'subscription'"` // subscription, school_license
	ExpiresAt  *time.Time `json:"expires_at" gorm:"index"`

	User    User    `json:"-" gorm:"foreignKey:UserID"`
	Pathway Pathway `json:"-" gorm:"foreignKey:PathwayID"`
}

// BeforeCreate derives a unique slug from the title when none was given.
func (v *Video) BeforeCreate(tx *gorm.DB) error {
	if v.Slug == "" {
		s := slug.Make(v.Title)

		var count int64
		tx.Model(&Video{}).Where("slug = ?", s).Count(&count)
		if count > 0 {
			s = s + "-" + time.Now().Format("20060102150405")
		}

		v.Slug = s
	}
	return nil
}

func (p *Pathway) BeforeCreate(tx *gorm.DB) error {
	if p.Slug == "" {
		p.Slug = slug.Make(p.Name)
	}
	return nil
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.Slug == "" {
		c.Slug = slug.Make(c.Name)
	}
	return nil
}

// SetTags stores the tag list in the JSON column.
func (v *Video) SetTags(tags []string) error {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	v.Tags = datatypes.JSON(raw)
	return nil
}

// Playable reports whether a caller may watch this video. Free videos are
// always playable; everything else requires an active subscription or an
// unexpired access grant.
func (v *Video) Playable(subscribed bool) bool {
	return v.IsFree || subscribed
}

// IsValid reports whether the access grant is still usable at the given
// instant. A nil expiry never expires (school licenses).
func (a *VideoAccess) IsValid(now time.Time) bool {
	return a.ExpiresAt == nil || a.ExpiresAt.After(now)
}
