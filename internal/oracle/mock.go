package oracle

import (
	"context"
	"encoding/json"
	"regexp"

	"github.com/linqiyu/coffeesim/internal/models"
)

var optionTokenPattern = regexp.MustCompile(`【选项 (Shop_\d+_(Walk|Delivery))】`)

// MockDecider answers offline by taking the first rendered option, or
// declining when no shop is in range. Useful for dry runs and tests where no
// API credential is available.
type MockDecider struct{}

func (MockDecider) Decide(_ context.Context, _, userPrompt string) (string, error) {
	match := optionTokenPattern.FindStringSubmatch(userPrompt)
	record := models.DecisionRecord{Decision: models.DecisionNone, Reason: "没有合适的选项"}
	if match != nil {
		record.Decision = match[1]
		if match[2] == "Walk" {
			record.Method = models.MethodPickup
		} else {
			record.Method = models.MethodDelivery
		}
		record.Reason = "离线模式选择首个方案"
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}
