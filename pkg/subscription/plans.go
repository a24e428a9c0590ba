package subscription

type Plan string

const (
	PlanMonthly Plan = "monthly"
	PlanAnnual  Plan = "annual"
	PlanUnknown Plan = "unknown"
)

var planPrices = map[Plan]string{}

// ConfigurePlans registers the Stripe price IDs for the public plans.
// Called once from main with values from the environment.
func ConfigurePlans(monthlyPriceID, annualPriceID string) {
	planPrices = map[Plan]string{
		PlanMonthly: monthlyPriceID,
		PlanAnnual:  annualPriceID,
	}
}

func PriceForPlan(plan Plan) (string, bool) {
	priceID, ok := planPrices[plan]
	return priceID, ok && priceID != ""
}

func PlanForPrice(priceID string) Plan {
	for plan, id := range planPrices {
		if id != "" && id == priceID {
			return plan
		}
	}
	return PlanUnknown
}
