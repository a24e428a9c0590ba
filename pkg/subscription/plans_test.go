package subscription

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanPriceMapping(t *testing.T) {
	ConfigurePlans("price_monthly_123", "price_annual_456")

	priceID, ok := PriceForPlan(PlanMonthly)
	assert.True(t, ok)
	assert.Equal(t, "price_monthly_123", priceID)

	assert.Equal(t, PlanAnnual, PlanForPrice("price_annual_456"))
	assert.Equal(t, PlanUnknown, PlanForPrice("price_other"))
}

func TestPlanPriceMappingUnconfigured(t *testing.T) {
	ConfigurePlans("", "")

	_, ok := PriceForPlan(PlanMonthly)
	assert.False(t, ok)
	assert.Equal(t, PlanUnknown, PlanForPrice(""))
}
