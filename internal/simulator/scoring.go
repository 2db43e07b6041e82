package simulator

import (
	"sort"
	"strings"

	"github.com/linqiyu/coffeesim/internal/models"
)

// TopNShops is the shortlist size presented to the oracle.
const TopNShops = 3

// defaultMenuItem backs shops whose menu could not be represented.
var defaultMenuItem = models.MenuItem{Name: "默认咖啡", Price: 20.0}

// preferenceKeywords matches a customer's stated flavour category against
// localized menu item names.
var preferenceKeywords = map[string][]string{
	"Latte":     {"拿铁", "奶"},
	"Americano": {"美式", "清咖"},
	"Specialty": {"特调", "创意"},
}

// PickMenuItem selects the first menu entry matching the customer's flavour
// preference, falling back to the menu's first item, then to the default
// item for an empty menu. Menu order is the brand library's document order.
func PickMenuItem(menu models.Menu, preference string) models.MenuItem {
	if len(menu) == 0 {
		return defaultMenuItem
	}
	for _, item := range menu {
		for _, keyword := range preferenceKeywords[preference] {
			if strings.Contains(item.Name, keyword) {
				return item
			}
		}
	}
	return menu[0]
}

// ScoredCandidate is a shop annotated with its score and supporting figures.
type ScoredCandidate struct {
	Score   float64
	Shop    *models.ShopInstance
	Metrics Metrics
	Item    models.MenuItem
	Quote   PriceQuote
}

// ScoreShop ranks one shop for one customer: brand affinity weighted by
// loyalty, plus distance, queue and price terms. The returned value keeps
// full precision; round2 is applied only for presentation.
func ScoreShop(shop *models.ShopInstance, customer *models.CustomerProfile, metrics Metrics, itemPrice float64) float64 {
	var score float64
	if customer.PreferredBrand != "" && shop.BrandID == customer.PreferredBrand {
		score += 60.0 * customer.BrandLoyalty
	} else {
		score += 5.0 * (1.0 - customer.BrandLoyalty)
	}
	score += max0(30.0 - float64(metrics.Distance)/100.0)
	score += max0(12.0 - float64(shop.QueueTime))
	score += max0(20.0 - itemPrice)
	return score
}

// SelectTopK returns the k best candidates by score, descending. The sort is
// stable so equal scores keep their input order.
func SelectTopK(candidates []ScoredCandidate, k int) []ScoredCandidate {
	ranked := make([]ScoredCandidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
