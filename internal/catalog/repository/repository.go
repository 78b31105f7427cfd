// Package repository persists the tenant reference data the lead pipeline
// classifies against: brands, commercial statuses, loss reasons, operators.
package repository

import (
	"context"
	"errors"
	"fmt"

	"leadcapture_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("catalog entry not found")

type Repo struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ListBrands returns the tenant's brands ordered by name.
func (r *Repo) ListBrands(ctx context.Context, tenantID uuid.UUID) ([]domain.Brand, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, name, investment_min, investment_max
		FROM brands
		WHERE tenant_id = $1
		ORDER BY name
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	var brands []domain.Brand
	for rows.Next() {
		var b domain.Brand
		if err := rows.Scan(&b.ID, &b.TenantID, &b.Name, &b.InvestmentMin, &b.InvestmentMax); err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

// ListStatuses returns the tenant's commercial statuses in pipeline order.
func (r *Repo) ListStatuses(ctx context.Context, tenantID uuid.UUID) ([]domain.CommercialStatus, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, slug, label
		FROM commercial_statuses
		WHERE tenant_id = $1
		ORDER BY position
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list statuses: %w", err)
	}
	defer rows.Close()

	var statuses []domain.CommercialStatus
	for rows.Next() {
		var s domain.CommercialStatus
		if err := rows.Scan(&s.ID, &s.TenantID, &s.Slug, &s.Label); err != nil {
			return nil, fmt.Errorf("scan status: %w", err)
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

// StatusBySlug resolves one commercial status by its slug.
func (r *Repo) StatusBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (domain.CommercialStatus, error) {
	var s domain.CommercialStatus
	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, slug, label
		FROM commercial_statuses
		WHERE tenant_id = $1 AND slug = $2
	`, tenantID, slug).Scan(&s.ID, &s.TenantID, &s.Slug, &s.Label)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CommercialStatus{}, ErrNotFound
	}
	if err != nil {
		return domain.CommercialStatus{}, fmt.Errorf("status by slug: %w", err)
	}
	return s, nil
}

// ListLossReasons returns the tenant's loss reasons ordered by name.
func (r *Repo) ListLossReasons(ctx context.Context, tenantID uuid.UUID) ([]domain.LossReason, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, name
		FROM loss_reasons
		WHERE tenant_id = $1
		ORDER BY name
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list loss reasons: %w", err)
	}
	defer rows.Close()

	var reasons []domain.LossReason
	for rows.Next() {
		var lr domain.LossReason
		if err := rows.Scan(&lr.ID, &lr.TenantID, &lr.Name); err != nil {
			return nil, fmt.Errorf("scan loss reason: %w", err)
		}
		reasons = append(reasons, lr)
	}
	return reasons, rows.Err()
}

// ListOperators returns the tenant's operators ordered by name.
func (r *Repo) ListOperators(ctx context.Context, tenantID uuid.UUID) ([]domain.Operator, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, name, email
		FROM operators
		WHERE tenant_id = $1
		ORDER BY name
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list operators: %w", err)
	}
	defer rows.Close()

	var operators []domain.Operator
	for rows.Next() {
		var o domain.Operator
		if err := rows.Scan(&o.ID, &o.TenantID, &o.Name, &o.Email); err != nil {
			return nil, fmt.Errorf("scan operator: %w", err)
		}
		operators = append(operators, o)
	}
	return operators, rows.Err()
}
