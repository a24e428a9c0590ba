package cron

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"cteskills_backend/internal/model"
	"cteskills_backend/pkg/database"
)

// InitVideoStatsCron resets the rolling view counters: daily at midnight,
// weekly on Mondays, monthly on the 1st.
func InitVideoStatsCron() {
	c := cron.New()

	if _, err := c.AddFunc("0 0 * * *", func() { resetCounter("daily_views") }); err != nil {
		log.Printf("Could not initialize daily stats cron: %v", err)
		return
	}
	if _, err := c.AddFunc("0 0 * * 1", func() { resetCounter("weekly_views") }); err != nil {
		log.Printf("Could not initialize weekly stats cron: %v", err)
		return
	}
	if _, err := c.AddFunc("0 0 1 * *", func() { resetCounter("monthly_views") }); err != nil {
		log.Printf("Could not initialize monthly stats cron: %v", err)
		return
	}

	c.Start()
}

func resetCounter(column string) {
	err := database.DB.Model(&model.VideoStats{}).
		Where(column+" > ?", 0).
		Updates(map[string]interface{}{
			column:         0,
			"last_updated": time.Now(),
		}).Error
	if err != nil {
		log.Printf("Error resetting %s: %v", column, err)
	}
}
