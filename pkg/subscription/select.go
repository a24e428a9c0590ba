package subscription

import (
	"github.com/stripe/stripe-go/v74"
)

func isRelevantStatus(status stripe.SubscriptionStatus) bool {
	return status == stripe.SubscriptionStatusActive || status == stripe.SubscriptionStatusTrialing
}

// SelectCurrent picks the authoritative subscription from a customer's
// list: active/trialing only, greatest current_period_end wins. The
// comparison is strict, so when two subscriptions share a period end the
// first one encountered is kept.
func SelectCurrent(subs []*stripe.Subscription) *stripe.Subscription {
	var best *stripe.Subscription
	for _, sub := range subs {
		if sub == nil || !isRelevantStatus(sub.Status) {
			continue
		}
		if best == nil || sub.CurrentPeriodEnd > best.CurrentPeriodEnd {
			best = sub
		}
	}
	return best
}
