package model

import (
	"time"

	"gorm.io/gorm"
)

// SchoolInquiry is a "contact sales" lead from the schools/districts
// licensing form.
type SchoolInquiry struct {
	gorm.Model
	Name        string     `json:"name" gorm:"not null"`
	WorkEmail   string     `json:"work_email" gorm:"not null"`
	School      string     `json:"school"`
	Role        string     `json:"role"`
	Message     string     `json:"message" gorm:"type:text"`
	Status      string     `json:"status" gorm:"default:'new'"` // new, contacted, closed
	ReadStatus  bool       `json:"read_status" gorm:"default:false"`
	ContactedAt *time.Time `json:"contacted_at"`
}
