package simulator

import (
	"context"
	"log"
	"strings"

	"github.com/linqiyu/coffeesim/internal/models"
	"github.com/linqiyu/coffeesim/internal/oracle"
)

// DecisionPipeline runs one customer through option generation, scoring,
// offer rendering and the oracle call. It never fails past the oracle
// boundary: any error becomes a canonical decline record so a single
// customer cannot abort the run.
type DecisionPipeline struct {
	Oracle oracle.Decider
	Rules  models.PlatformRules
}

// Decide produces the customer's decision record over the given shops.
func (p *DecisionPipeline) Decide(ctx context.Context, customer *models.CustomerProfile, shops []*models.ShopInstance) models.DecisionRecord {
	candidates := make([]ScoredCandidate, 0, len(shops))
	for _, shop := range shops {
		metrics := CalculateMetrics(customer.Location, shop.Location)
		item := PickMenuItem(shop.Menu, customer.Preference)
		quote := ResolveQuote(item.Price, metrics.Distance, p.Rules)
		candidates = append(candidates, ScoredCandidate{
			Score:   ScoreShop(shop, customer, metrics, item.Price),
			Shop:    shop,
			Metrics: metrics,
			Item:    item,
			Quote:   quote,
		})
	}

	shortlist := SelectTopK(candidates, TopNShops)
	offer := RenderOffers(customer, shortlist, p.Rules)
	if len(offer.ValidTokens) == 0 {
		// nothing purchasable in range, no point asking the oracle
		return models.Decline(models.ReasonNoOptions)
	}

	raw, err := p.Oracle.Decide(ctx, customer.SystemPrompt(), offer.Prompt)
	if err != nil {
		log.Printf("oracle call failed for customer %s: %v", customer.ID, err)
		return models.Decline(models.ReasonAPIError)
	}

	record, err := oracle.ParseDecision(raw)
	if err != nil {
		log.Printf("unparsable oracle reply for customer %s: %v", customer.ID, err)
		return models.Decline(models.ReasonBadJSON)
	}
	return normalizeDecision(record, offer)
}

// normalizeDecision keeps the oracle honest: the decision token must be one
// of the rendered options or None, the method must match the token's side,
// and a declined record carries no purchase fields.
func normalizeDecision(record models.DecisionRecord, offer RenderedOffer) models.DecisionRecord {
	if record.Declined() {
		return models.DecisionRecord{
			Decision: models.DecisionNone,
			Reason:   record.Reason,
		}
	}

	cand, ok := offer.ValidTokens[record.Decision]
	if !ok {
		log.Printf("oracle chose unknown option %q, treating as decline", record.Decision)
		return models.Decline(models.ReasonBadJSON)
	}

	// trust the computed surface over the oracle's echo for identity fields
	record.Brand = cand.Shop.BrandName
	if record.Item == "" {
		record.Item = cand.Item.Name
	}
	if strings.HasSuffix(record.Decision, "_Walk") {
		record.Method = models.MethodPickup
	} else {
		record.Method = models.MethodDelivery
	}
	if record.Price < 0 {
		record.Price = 0
	}
	return record
}
