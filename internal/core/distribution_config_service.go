package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DistributionConfigService manages the cost-type → method mapping consumed
// by the landed cost calculator.
type DistributionConfigService interface {
	// SetMethod activates method for costType, deactivating any previous
	// configuration for the same label.
	SetMethod(ctx context.Context, costType string, method DistributionMethod) (*DistributionConfig, error)

	// ListConfigs returns the active configurations.
	ListConfigs(ctx context.Context) ([]DistributionConfig, error)

	// ActiveMethods resolves the current configuration into a MethodResolver
	// for the calculator. Labels without an active row resolve to unidades.
	ActiveMethods(ctx context.Context) (MethodResolver, error)
}

type distributionConfigService struct {
	pool *pgxpool.Pool
}

func NewDistributionConfigService(pool *pgxpool.Pool) DistributionConfigService {
	return &distributionConfigService{pool: pool}
}

func (s *distributionConfigService) SetMethod(ctx context.Context, costType string, method DistributionMethod) (*DistributionConfig, error) {
	if costType == "" {
		return nil, validationErrorf("tipo_costo", "cost type is required")
	}
	if !method.Valid() {
		return nil, validationErrorf("metodo",
			"unknown method %q, want one of peso, volumen, valor_fob, unidades", method)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Deactivate-then-insert keeps the partial unique index happy and leaves
	// an audit trail of previous configurations.
	if _, err := tx.Exec(ctx,
		"UPDATE distribution_configs SET active = FALSE WHERE cost_type = $1 AND active", costType); err != nil {
		return nil, fmt.Errorf("deactivate previous config: %w", err)
	}

	cfg := &DistributionConfig{CostType: costType, Method: method, Active: true}
	err = tx.QueryRow(ctx, `
		INSERT INTO distribution_configs (cost_type, method, active)
		VALUES ($1, $2, TRUE)
		RETURNING id, created_at
	`, costType, method).Scan(&cfg.ID, &cfg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert config: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit config: %w", err)
	}
	return cfg, nil
}

func (s *distributionConfigService) ListConfigs(ctx context.Context) ([]DistributionConfig, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, cost_type, method, active, created_at
		FROM distribution_configs
		WHERE active
		ORDER BY cost_type
	`)
	if err != nil {
		return nil, fmt.Errorf("query configs: %w", err)
	}
	defer rows.Close()

	var configs []DistributionConfig
	for rows.Next() {
		var c DistributionConfig
		if err := rows.Scan(&c.ID, &c.CostType, &c.Method, &c.Active, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

func (s *distributionConfigService) ActiveMethods(ctx context.Context) (MethodResolver, error) {
	return activeMethods(ctx, s.pool)
}

func activeMethods(ctx context.Context, q querier) (MethodResolver, error) {
	rows, err := q.Query(ctx,
		"SELECT cost_type, method FROM distribution_configs WHERE active")
	if err != nil {
		return nil, fmt.Errorf("query active methods: %w", err)
	}
	defer rows.Close()

	methods := make(map[string]DistributionMethod)
	for rows.Next() {
		var ct string
		var m DistributionMethod
		if err := rows.Scan(&ct, &m); err != nil {
			return nil, fmt.Errorf("scan active method: %w", err)
		}
		methods[ct] = m
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ResolverFromMap(methods), nil
}
