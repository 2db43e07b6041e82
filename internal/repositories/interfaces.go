package repositories

import (
	"context"

	"github.com/linqiyu/coffeesim/internal/models"
)

// ResultRepository persists finished simulation logs for later analysis.
type ResultRepository interface {
	CreateSchema(ctx context.Context) error
	BulkCreate(ctx context.Context, runID string, rows []models.SimulationRow) error
	CountByDecision(ctx context.Context, runID string) (models.DecisionTally, error)
}
