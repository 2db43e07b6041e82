package oracle

import (
	"testing"

	"github.com/linqiyu/coffeesim/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecisionPlainJSON(t *testing.T) {
	record, err := ParseDecision(`{"decision": "Shop_1_Walk", "brand": "瑞幸咖啡", "method": "自提", "item": "生椰拿铁", "price": 16.0, "reason": "便宜顺路"}`)
	require.NoError(t, err)
	assert.Equal(t, "Shop_1_Walk", record.Decision)
	assert.Equal(t, "瑞幸咖啡", record.Brand)
	assert.Equal(t, "自提", record.Method)
	assert.Equal(t, "生椰拿铁", record.Item)
	assert.Equal(t, 16.0, record.Price)
	assert.Equal(t, "便宜顺路", record.Reason)
}

func TestParseDecisionStripsMarkdownFences(t *testing.T) {
	raw := "```json\n{\"decision\": \"Shop_2_Delivery\", \"price\": 21.5, \"reason\": \"懒得出门\"}\n```"
	record, err := ParseDecision(raw)
	require.NoError(t, err)
	assert.Equal(t, "Shop_2_Delivery", record.Decision)
	assert.Equal(t, 21.5, record.Price)
}

func TestParseDecisionNullFields(t *testing.T) {
	record, err := ParseDecision(`{"decision": "None", "brand": null, "method": null, "item": null, "price": 0, "reason": "不想喝"}`)
	require.NoError(t, err)
	assert.True(t, record.Declined())
	assert.Empty(t, record.Brand)
	assert.Empty(t, record.Method)
	assert.Empty(t, record.Item)
	assert.Equal(t, 0.0, record.Price)
}

func TestParseDecisionIntegerPrice(t *testing.T) {
	record, err := ParseDecision(`{"decision": "Shop_1_Walk", "price": 20, "reason": "ok"}`)
	require.NoError(t, err)
	assert.Equal(t, 20.0, record.Price)
}

func TestParseDecisionErrors(t *testing.T) {
	cases := map[string]string{
		"not json":      "随便挑一家吧",
		"truncated":     `{"decision": "Shop_1_`,
		"empty":         "",
		"missing field": `{"brand": "瑞幸咖啡", "price": 16}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDecision(raw)
			assert.Error(t, err)
		})
	}
}

func TestDeclineRecord(t *testing.T) {
	record := models.Decline(models.ReasonAPIError)
	assert.True(t, record.Declined())
	assert.Equal(t, models.ReasonAPIError, record.Reason)
	assert.Zero(t, record.Price)
}
