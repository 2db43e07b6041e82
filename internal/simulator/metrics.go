package simulator

import (
	"math"

	"github.com/linqiyu/coffeesim/internal/models"
)

const (
	walkSpeed            = 80   // metres per minute
	maxWalkDistance      = 2500 // beyond this no pickup option is shown
	maxDeliveryDistance  = 3000 // beyond this a shop cannot deliver
	baseDeliveryFee      = 3
	feeDistanceUnit      = 1000 // +1 yuan per started kilometre
	deliveryBaseMinutes  = 30
	deliveryDistanceUnit = 500
	undeliverableFee     = 999 // sentinel fee for out-of-range shops
)

// Metrics are the geometric figures for one (customer, shop) pair.
type Metrics struct {
	Distance     int // straight-line metres, truncated
	WalkTime     int // minutes, at least 1
	DeliveryTime int // estimated delivery minutes
}

// CalculateMetrics computes distance, walk time and delivery ETA between a
// customer and a shop. Pure and total.
func CalculateMetrics(customer, shop models.Point) Metrics {
	dx := float64(customer.X - shop.X)
	dy := float64(customer.Y - shop.Y)
	distance := int(math.Sqrt(dx*dx + dy*dy))

	walkTime := distance / walkSpeed
	if walkTime < 1 {
		walkTime = 1
	}
	return Metrics{
		Distance:     distance,
		WalkTime:     walkTime,
		DeliveryTime: deliveryBaseMinutes + distance/deliveryDistanceUnit,
	}
}

// PriceQuote is the fully discount-resolved price pair for one
// (customer, shop, item) evaluation.
type PriceQuote struct {
	PickupPrice    float64
	DeliveryPrice  float64
	DeliveryFee    float64
	DeliveryCoupon float64
	CanDeliver     bool
	DiscountTags   []string
}

// ResolveQuote applies the platform's marketing rules to a base price.
// Order of operations: generic coupon, then the single best delivery tier on
// the post-coupon subtotal, then the free-delivery fee override. Negative
// subtotals are clamped to zero only at the end so coupon eligibility always
// sees pre-clamp values. Deterministic: same inputs, same quote.
func ResolveQuote(basePrice float64, distance int, rules models.PlatformRules) PriceQuote {
	quote := PriceQuote{CanDeliver: distance <= maxDeliveryDistance}
	if quote.CanDeliver {
		quote.DeliveryFee = float64(baseDeliveryFee + distance/feeDistanceUnit)
	} else {
		quote.DeliveryFee = undeliverableFee
	}

	pickupPrice := basePrice
	deliverySubtotal := basePrice

	// platform-wide coupon, applies to pickup and delivery alike
	if basePrice >= rules.CouponThreshold {
		pickupPrice -= rules.CouponAmount
		deliverySubtotal -= rules.CouponAmount
		quote.DiscountTags = append(quote.DiscountTags, genericCouponTag(rules.CouponAmount))
	}

	// delivery-only tiered coupon, highest qualifying tier wins
	if rules.DeliveryCouponsEnabled {
		switch {
		case deliverySubtotal >= 30:
			quote.DeliveryCoupon = 10
			quote.DiscountTags = append(quote.DiscountTags, "外卖满30减10")
		case deliverySubtotal >= 15:
			quote.DeliveryCoupon = 5
			quote.DiscountTags = append(quote.DiscountTags, "外卖满15减5")
		case deliverySubtotal >= 10:
			quote.DeliveryCoupon = 3
			quote.DiscountTags = append(quote.DiscountTags, "外卖满10减3")
		}
	}

	if rules.FreeDelivery {
		quote.DeliveryFee = 0
		quote.DiscountTags = append(quote.DiscountTags, "免运费")
	}

	quote.PickupPrice = round1(math.Max(0, pickupPrice))
	quote.DeliveryPrice = round1(math.Max(0, deliverySubtotal-quote.DeliveryCoupon+quote.DeliveryFee))
	return quote
}

func genericCouponTag(amount float64) string {
	return "满减-" + formatYuan(amount)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
