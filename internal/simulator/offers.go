package simulator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/linqiyu/coffeesim/internal/models"
)

// RenderedOffer is the full decision surface for one customer: the option
// blocks shown to the oracle plus the tokens it may answer with.
type RenderedOffer struct {
	Prompt      string
	ValidTokens map[string]ScoredCandidate // option token -> supporting candidate
}

// RenderOffers turns the shortlist into the ordered natural-language option
// set handed to the oracle. A walk block appears only within walking range;
// a delivery block only when the quote is deliverable and the shop supports
// delivery. The terminal decline option is always present. Pure.
func RenderOffers(customer *models.CustomerProfile, shortlist []ScoredCandidate, rules models.PlatformRules) RenderedOffer {
	var options strings.Builder
	tokens := make(map[string]ScoredCandidate, len(shortlist)*2)

	for _, cand := range shortlist {
		score := round2(cand.Score)
		promo := ""
		if tags := strings.Join(cand.Quote.DiscountTags, ", "); tags != "" {
			promo = fmt.Sprintf("(当前优惠: %s)", tags)
		}

		if cand.Metrics.Distance <= maxWalkDistance {
			token := cand.Shop.ID + "_Walk"
			tokens[token] = cand
			fmt.Fprintf(&options,
				"【选项 %s】步行去 %s (%s)\n"+
					"   - 品牌调性: %s\n"+
					"   - 常驻活动: %s\n"+
					"   - 推荐商品: %s (原价: %s元, 叠加平台优惠后到手估算: %s元)\n"+
					"   - 物理距离: %d米 (需步行约 %d 分钟) | 排队: 约 %d 分钟\n"+
					"   - 综合评分: %v\n\n",
				token, cand.Shop.BrandName, cand.Shop.Category,
				cand.Shop.BusinessModel,
				cand.Shop.Promotions,
				cand.Item.Name, formatPrice(cand.Item.Price), formatPrice(cand.Quote.PickupPrice),
				cand.Metrics.Distance, cand.Metrics.WalkTime, cand.Shop.QueueTime,
				score,
			)
		}

		if cand.Quote.CanDeliver && cand.Shop.SupportsDelivery {
			token := cand.Shop.ID + "_Delivery"
			tokens[token] = cand
			couponInfo := ""
			if cand.Quote.DeliveryCoupon > 0 {
				couponInfo = fmt.Sprintf(", 已减红包 %s元", formatYuan(cand.Quote.DeliveryCoupon))
			}
			fmt.Fprintf(&options,
				"【选项 %s】点 %s (外卖) %s\n"+
					"   - 推荐商品: %s (原价: %s元, 外卖到手总价: %s元, 含运费 %s元%s)\n"+
					"   - 预估等待: %d 分钟\n"+
					"   - 综合评分: %v\n\n",
				token, cand.Shop.BrandName, promo,
				cand.Item.Name, formatPrice(cand.Item.Price), formatPrice(cand.Quote.DeliveryPrice),
				formatYuan(cand.Quote.DeliveryFee), couponInfo,
				cand.Metrics.DeliveryTime,
				score,
			)
		}
	}

	options.WriteString("【选项 None】不买了 (原因：都不想喝、嫌贵或太远)\n")

	var prompt strings.Builder
	if rules.EventName != "" {
		fmt.Fprintf(&prompt, "!!! 注意：现在是【%s】活动期间 !!!\n", rules.EventName)
	}
	fmt.Fprintf(&prompt, "你当前在地图上的坐标是: %s。\n", customer.Location)
	fmt.Fprintf(&prompt, "系统已根据【品牌偏好/距离/排队/价格】进行初筛，仅展示Top %d 个候选。\n", TopNShops)
	if name := customer.PreferredBrandName(); name != "" {
		fmt.Fprintf(&prompt, "你对%s有明显偏好，请优先考虑该品牌。\n", name)
	}
	fmt.Fprintf(&prompt, "根据你的位置，你眼前的咖啡消费方案如下：\n\n%s\n", options.String())
	prompt.WriteString(
		"【决策任务】\n" +
			"请综合考虑你的【消费水平】、【口味偏好】、【步行意愿】以及商家的【品牌调性】做出最符合你人设的选择。\n" +
			"请严格返回 JSON 格式数据，包含以下字段：\n" +
			"{\n" +
			"  \"decision\": \"选中的选项ID (如 Shop_1_Walk, Shop_2_Delivery 或 None)\",\n" +
			"  \"brand\": \"购买的品牌名称 (如果不买，请填 null)\",\n" +
			"  \"method\": \"购买方式，填 '自提' 或 '外卖' (如果不买，请填 null)\",\n" +
			"  \"item\": \"购买的具体单品名称 (如果不买，请填 null)\",\n" +
			"  \"price\": 最终需要支付的金额数字 (如果不买，请填 0),\n" +
			"  \"reason\": \"你的理由 (请用简体中文，限制在15个字以内，必须符合你的人设)\"\n" +
			"}",
	)

	return RenderedOffer{Prompt: prompt.String(), ValidTokens: tokens}
}

// formatPrice renders resolved prices with one decimal, matching the quote
// rounding (22 -> "22.0").
func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// formatYuan renders whole-yuan amounts without a trailing decimal.
func formatYuan(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
