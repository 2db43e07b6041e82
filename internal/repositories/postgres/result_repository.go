package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linqiyu/coffeesim/internal/models"
	"github.com/linqiyu/coffeesim/internal/repositories"
)

type ResultRepository struct {
	pool *pgxpool.Pool
}

var _ repositories.ResultRepository = (*ResultRepository)(nil)

func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Connect builds a pgx pool from the database configuration.
func Connect(ctx context.Context, cfg models.DatabaseConfig) (*pgxpool.Pool, error) {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, cfg.SSLMode,
	)
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	return pool, nil
}

func (r *ResultRepository) CreateSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS simulation_results (
            run_id            TEXT NOT NULL,
            seq               INT NOT NULL,
            customer_id       TEXT NOT NULL,
            age_group         TEXT,
            occupation        TEXT,
            income            INT,
            preference        TEXT,
            price_sensitivity TEXT,
            decision          TEXT,
            brand             TEXT,
            method            TEXT,
            item              TEXT,
            price             DOUBLE PRECISION,
            reason            TEXT,
            PRIMARY KEY (run_id, seq)
        )`)
	return err
}

func (r *ResultRepository) BulkCreate(ctx context.Context, runID string, rows []models.SimulationRow) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	stmt := `
        INSERT INTO simulation_results (
            run_id, seq, customer_id, age_group, occupation, income,
            preference, price_sensitivity, decision, brand, method, item,
            price, reason
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	for i, row := range rows {
		_, err = tx.Exec(ctx, stmt,
			runID,
			i,
			row.CustomerID,
			row.AgeGroup,
			row.Occupation,
			row.Income,
			row.Preference,
			row.PriceSensitivity,
			row.Decision,
			row.Brand,
			row.Method,
			row.Item,
			row.Price,
			row.Reason,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *ResultRepository) CountByDecision(ctx context.Context, runID string) (models.DecisionTally, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT decision, COUNT(*) FROM simulation_results WHERE run_id = $1 GROUP BY decision`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tally := make(models.DecisionTally)
	for rows.Next() {
		var decision string
		var count int
		if err := rows.Scan(&decision, &count); err != nil {
			return nil, err
		}
		tally[decision] = count
	}
	return tally, rows.Err()
}
