package cron

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"cteskills_backend/internal/model"
	"cteskills_backend/pkg/database"
	"cteskills_backend/pkg/email"
	"cteskills_backend/pkg/subscription"
)

func InitSubscriptionExpiryCron() {
	c := cron.New()

	_, err := c.AddFunc("0 9 * * *", func() {
		warnExpiringSubscriptions()
		expireLapsedSubscriptions()
	})

	if err != nil {
		log.Printf("Could not initialize subscription expiry cron: %v", err)
		return
	}

	c.Start()
}

func warnExpiringSubscriptions() {
	log.Println("Checking for expiring subscriptions...")

	warningDays := []int{7, 3}

	for _, days := range warningDays {
		var subs []model.Subscription
		targetDate := time.Now().AddDate(0, 0, days).Format("2006-01-02")

		err := database.DB.
			Where("DATE(current_period_end) = ? AND status IN ? AND cancel_at_period_end = ?",
				targetDate, []string{"active", "trialing"}, false).
			Preload("User").
			Find(&subs).Error

		if err != nil {
			log.Printf("Error fetching expiring subscriptions: %v", err)
			continue
		}

		log.Printf("Found %d subscriptions expiring in %d days", len(subs), days)

		for _, sub := range subs {
			if email.GlobalEmailService == nil || sub.CurrentPeriodEnd == nil {
				continue
			}

			err := email.GlobalEmailService.SendSubscriptionExpiryWarning(
				sub.User.Email,
				sub.User.FullName,
				string(subscription.PlanForPrice(sub.PriceID)),
				*sub.CurrentPeriodEnd,
				days,
			)
			if err != nil {
				log.Printf("Error sending expiry warning to %s: %v", sub.User.Email, err)
			}
		}
	}
}

// expireLapsedSubscriptions flags mirrored subscriptions whose period end
// has passed and drops the subscription-type access grants that expired
// with them. Grants with nil expiry (school licenses) are untouched.
func expireLapsedSubscriptions() {
	now := time.Now()

	res := database.DB.Model(&model.Subscription{}).
		Where("current_period_end < ? AND status IN ?", now, []string{"active", "trialing"}).
		Update("status", "expired")
	if res.Error != nil {
		log.Printf("Error expiring lapsed subscriptions: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("Marked %d subscriptions as expired", res.RowsAffected)
	}

	del := database.DB.
		Where("access_type = ? AND expires_at IS NOT NULL AND expires_at < ?", "subscription", now).
		Delete(&model.VideoAccess{})
	if del.Error != nil {
		log.Printf("Error removing expired access grants: %v", del.Error)
		return
	}
	if del.RowsAffected > 0 {
		log.Printf("Removed %d expired access grants", del.RowsAffected)
	}
}
