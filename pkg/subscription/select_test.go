package subscription

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v74"
)

func sub(id string, status stripe.SubscriptionStatus, periodEnd int64) *stripe.Subscription {
	return &stripe.Subscription{
		ID:               id,
		Status:           status,
		CurrentPeriodEnd: periodEnd,
	}
}

func TestSelectCurrentPicksGreatestPeriodEnd(t *testing.T) {
	selected := SelectCurrent([]*stripe.Subscription{
		sub("sub_a", stripe.SubscriptionStatusActive, 1000),
		sub("sub_b", stripe.SubscriptionStatusActive, 2000),
	})

	assert.NotNil(t, selected)
	assert.Equal(t, "sub_b", selected.ID)
}

func TestSelectCurrentIgnoresIrrelevantStatuses(t *testing.T) {
	selected := SelectCurrent([]*stripe.Subscription{
		sub("sub_canceled", stripe.SubscriptionStatusCanceled, 9000),
		sub("sub_past_due", stripe.SubscriptionStatusPastDue, 8000),
		sub("sub_trial", stripe.SubscriptionStatusTrialing, 1500),
	})

	assert.NotNil(t, selected)
	assert.Equal(t, "sub_trial", selected.ID)
}

func TestSelectCurrentNoQualifyingSubscriptions(t *testing.T) {
	assert.Nil(t, SelectCurrent(nil))
	assert.Nil(t, SelectCurrent([]*stripe.Subscription{
		sub("sub_canceled", stripe.SubscriptionStatusCanceled, 9000),
		nil,
	}))
}

func TestSelectCurrentFirstEncounteredWinsTies(t *testing.T) {
	selected := SelectCurrent([]*stripe.Subscription{
		sub("sub_first", stripe.SubscriptionStatusActive, 2000),
		sub("sub_second", stripe.SubscriptionStatusTrialing, 2000),
	})

	assert.NotNil(t, selected)
	assert.Equal(t, "sub_first", selected.ID)
}
