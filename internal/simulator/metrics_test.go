package simulator

import (
	"testing"

	"github.com/linqiyu/coffeesim/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCalculateMetrics(t *testing.T) {
	m := CalculateMetrics(models.Point{X: 1000, Y: 1000}, models.Point{X: 1000, Y: 1050})
	assert.Equal(t, 50, m.Distance)
	assert.Equal(t, 1, m.WalkTime, "walk time is at least one minute")
	assert.Equal(t, 30, m.DeliveryTime)

	m = CalculateMetrics(models.Point{X: 0, Y: 0}, models.Point{X: 0, Y: 1600})
	assert.Equal(t, 1600, m.Distance)
	assert.Equal(t, 20, m.WalkTime)
	assert.Equal(t, 33, m.DeliveryTime)

	// distance truncates toward zero
	m = CalculateMetrics(models.Point{X: 0, Y: 0}, models.Point{X: 3, Y: 4})
	assert.Equal(t, 5, m.Distance)
	m = CalculateMetrics(models.Point{X: 0, Y: 0}, models.Point{X: 1, Y: 1})
	assert.Equal(t, 1, m.Distance)
}

func TestResolveQuoteDeliverability(t *testing.T) {
	rules := models.PlatformRules{CouponThreshold: 999}

	for _, d := range []int{3001, 5000, 100000} {
		quote := ResolveQuote(20, d, rules)
		assert.False(t, quote.CanDeliver, "distance %d", d)
		assert.Equal(t, float64(999), quote.DeliveryFee, "distance %d", d)
	}

	for _, tc := range []struct {
		distance int
		fee      float64
	}{
		{0, 3}, {999, 3}, {1000, 4}, {2999, 5}, {3000, 6},
	} {
		quote := ResolveQuote(20, tc.distance, rules)
		assert.True(t, quote.CanDeliver, "distance %d", tc.distance)
		assert.Equal(t, tc.fee, quote.DeliveryFee, "distance %d", tc.distance)
	}
}

func TestResolveQuoteTieredCoupon(t *testing.T) {
	rules := models.PlatformRules{CouponThreshold: 999, DeliveryCouponsEnabled: true}

	for _, tc := range []struct {
		price  float64
		coupon float64
	}{
		{30, 10}, // only the highest tier, never stacked
		{29, 5},
		{15, 5},
		{14.9, 3},
		{10, 3},
		{9, 0},
	} {
		quote := ResolveQuote(tc.price, 500, rules)
		assert.Equal(t, tc.coupon, quote.DeliveryCoupon, "price %v", tc.price)
		// pickup price never sees the delivery coupon
		assert.Equal(t, tc.price, quote.PickupPrice, "price %v", tc.price)
	}

	// re-evaluation yields the same quote
	first := ResolveQuote(30, 500, rules)
	second := ResolveQuote(30, 500, rules)
	assert.Equal(t, first, second)
}

func TestResolveQuoteFreeDelivery(t *testing.T) {
	rules := models.PlatformRules{
		FreeDelivery:           true,
		DeliveryCouponsEnabled: true,
		CouponThreshold:        25,
		CouponAmount:           5,
	}

	quote := ResolveQuote(30, 2500, rules)
	assert.True(t, quote.CanDeliver)
	assert.Equal(t, float64(0), quote.DeliveryFee, "campaign overrides the distance-based fee")
	// generic coupon still reduces both sides
	assert.Equal(t, 25.0, quote.PickupPrice)
	// 30 - 5 generic = 25 subtotal, tier ≥15 gives 5 off, fee zeroed
	assert.Equal(t, 5.0, quote.DeliveryCoupon)
	assert.Equal(t, 20.0, quote.DeliveryPrice)
	assert.Contains(t, quote.DiscountTags, "免运费")
	assert.Contains(t, quote.DiscountTags, "满减-5")
	assert.Contains(t, quote.DiscountTags, "外卖满15减5")
}

func TestResolveQuoteClampsOnlyAtTheEnd(t *testing.T) {
	// coupon larger than the price must not go negative in the result,
	// and eligibility is checked against the pre-clamp base price
	rules := models.PlatformRules{CouponThreshold: 10, CouponAmount: 15}
	quote := ResolveQuote(12, 100, rules)
	assert.Equal(t, 0.0, quote.PickupPrice)
	// 12 - 15 = -3 subtotal, +3 fee = 0 after clamp
	assert.Equal(t, 0.0, quote.DeliveryPrice)
}

func TestResolveQuoteBaselineScenario(t *testing.T) {
	rules := models.PlatformRules{CouponThreshold: 999}
	quote := ResolveQuote(22.0, 50, rules)

	assert.True(t, quote.CanDeliver)
	assert.Equal(t, 22.0, quote.PickupPrice)
	assert.Equal(t, float64(3), quote.DeliveryFee)
	assert.Equal(t, 25.0, quote.DeliveryPrice)
	assert.Empty(t, quote.DiscountTags)
}
