package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/linqiyu/coffeesim/internal/models"
)

// ParseDecision cleans the oracle's raw reply and decodes the decision
// payload. Even with json_object enabled some models still wrap the body in
// markdown fences, so those are stripped before decoding.
func ParseDecision(raw string) (models.DecisionRecord, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var payload struct {
		Decision string      `json:"decision"`
		Brand    *string     `json:"brand"`
		Method   *string     `json:"method"`
		Item     *string     `json:"item"`
		Price    json.Number `json:"price"`
		Reason   string      `json:"reason"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return models.DecisionRecord{}, fmt.Errorf("parse decision payload: %w", err)
	}
	if payload.Decision == "" {
		return models.DecisionRecord{}, fmt.Errorf("decision payload missing decision field")
	}

	record := models.DecisionRecord{
		Decision: payload.Decision,
		Reason:   payload.Reason,
	}
	if payload.Brand != nil {
		record.Brand = *payload.Brand
	}
	if payload.Method != nil {
		record.Method = *payload.Method
	}
	if payload.Item != nil {
		record.Item = *payload.Item
	}
	if payload.Price != "" {
		price, err := payload.Price.Float64()
		if err != nil {
			return models.DecisionRecord{}, fmt.Errorf("decision price %q: %w", payload.Price, err)
		}
		record.Price = price
	}
	return record, nil
}
