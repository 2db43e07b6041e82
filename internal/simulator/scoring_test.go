package simulator

import (
	"testing"

	"github.com/linqiyu/coffeesim/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestScoreShop(t *testing.T) {
	shop := &models.ShopInstance{BrandID: "Luckin", QueueTime: 5}
	metrics := Metrics{Distance: 1000}

	loyal := &models.CustomerProfile{PreferredBrand: "Luckin", BrandLoyalty: 0.8}
	// 60*0.8 + (30-10) + (12-5) + (20-16) = 79
	assert.InDelta(t, 79.0, ScoreShop(shop, loyal, metrics, 16), 1e-9)

	other := &models.CustomerProfile{PreferredBrand: "Manner", BrandLoyalty: 0.8}
	// 5*(1-0.8) + 20 + 7 + 4 = 32
	assert.InDelta(t, 32.0, ScoreShop(shop, other, metrics, 16), 1e-9)

	noBrand := &models.CustomerProfile{}
	// 5*1 + 20 + 7 + 4 = 36
	assert.InDelta(t, 36.0, ScoreShop(shop, noBrand, metrics, 16), 1e-9)

	// negative terms clamp to zero
	far := Metrics{Distance: 9000}
	crowded := &models.ShopInstance{QueueTime: 40}
	assert.InDelta(t, 5.0, ScoreShop(crowded, noBrand, far, 50), 1e-9)
}

func TestSelectTopK(t *testing.T) {
	candidates := []ScoredCandidate{
		{Score: 10, Shop: &models.ShopInstance{ID: "Shop_1"}},
		{Score: 50, Shop: &models.ShopInstance{ID: "Shop_2"}},
		{Score: 30, Shop: &models.ShopInstance{ID: "Shop_3"}},
		{Score: 30, Shop: &models.ShopInstance{ID: "Shop_4"}},
		{Score: 40, Shop: &models.ShopInstance{ID: "Shop_5"}},
	}

	top := SelectTopK(candidates, 3)
	assert.Len(t, top, 3)
	assert.Equal(t, "Shop_2", top[0].Shop.ID)
	assert.Equal(t, "Shop_5", top[1].Shop.ID)
	// tie between Shop_3 and Shop_4 keeps input order
	assert.Equal(t, "Shop_3", top[2].Shop.ID)

	// input order is untouched
	assert.Equal(t, "Shop_1", candidates[0].Shop.ID)

	assert.Len(t, SelectTopK(candidates[:2], 3), 2, "never more than available")
	assert.Empty(t, SelectTopK(nil, 3))
}

func TestPickMenuItem(t *testing.T) {
	menu := models.Menu{
		{Name: "标准美式", Price: 13},
		{Name: "生椰拿铁", Price: 16},
		{Name: "橙C特调", Price: 18},
	}

	assert.Equal(t, "生椰拿铁", PickMenuItem(menu, "Latte").Name)
	assert.Equal(t, "标准美式", PickMenuItem(menu, "Americano").Name)
	assert.Equal(t, "橙C特调", PickMenuItem(menu, "Specialty").Name)

	// unknown preference falls back to the first menu entry
	assert.Equal(t, "标准美式", PickMenuItem(menu, "Tea").Name)

	// empty menu falls back to the default item
	item := PickMenuItem(nil, "Latte")
	assert.Equal(t, "默认咖啡", item.Name)
	assert.Equal(t, 20.0, item.Price)
}
