package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadcapture_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// SnapshotLead is one row of the analytics snapshot: the lead joined with
// the reference labels the aggregator groups by. Statuses are classified by
// slug, never by label.
type SnapshotLead struct {
	ID               uuid.UUID
	BrandID          uuid.UUID
	BrandName        string
	StatusSlug       string
	StatusLabel      string
	Category         domain.Category
	Score            int
	CapitalAvailable int64
	Source           string
	City             string
	State            string
	OperatorID       *uuid.UUID
	OperatorName     *string
	LossReasonName   *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SnapshotFilters narrows an analytics snapshot. Zero values mean no filter.
type SnapshotFilters struct {
	BrandID    *uuid.UUID
	OperatorID *uuid.UUID
	StatusSlug string
}

// ErrSnapshotTooLarge signals that the requested window holds more rows than
// the configured bound. Callers narrow the period or the filters.
var ErrSnapshotTooLarge = errors.New("analytics window exceeds the row limit")

// analyticsSnapshotQuery is a named const so tests can assert tenant scoping
// and the deleted_at filter.
const analyticsSnapshotQuery = `
	SELECT l.id, l.brand_id, b.name, cs.slug, cs.label, l.category, l.score,
		l.capital_available, l.source, l.city, l.state,
		l.operator_id, o.name, lr.name,
		l.created_at, l.updated_at
	FROM leads l
	JOIN brands b ON b.id = l.brand_id
	JOIN commercial_statuses cs ON cs.id = l.commercial_status_id
	LEFT JOIN operators o ON o.id = l.operator_id
	LEFT JOIN loss_reasons lr ON lr.id = l.loss_reason_id
	WHERE l.tenant_id = $1
		AND l.deleted_at IS NULL
		AND l.created_at >= $2
	ORDER BY l.created_at ASC
	LIMIT $3`

// AnalyticsSnapshot loads every non-deleted lead created at or after the
// window start. The aggregator computes all metrics from this one read so
// every number in a report describes the same data. Windows holding more
// than maxRows rows are rejected with ErrSnapshotTooLarge, never truncated:
// a truncated snapshot would produce silently wrong metrics.
func (r *Repository) AnalyticsSnapshot(ctx context.Context, tenantID uuid.UUID, since time.Time, filters SnapshotFilters, maxRows int) ([]SnapshotLead, error) {
	query := analyticsSnapshotQuery
	args := []any{tenantID, since, maxRows + 1}

	if filters.BrandID != nil {
		args = append(args, *filters.BrandID)
		query = snapshotWithFilter(query, fmt.Sprintf("l.brand_id = $%d", len(args)))
	}
	if filters.OperatorID != nil {
		args = append(args, *filters.OperatorID)
		query = snapshotWithFilter(query, fmt.Sprintf("l.operator_id = $%d", len(args)))
	}
	if filters.StatusSlug != "" {
		args = append(args, filters.StatusSlug)
		query = snapshotWithFilter(query, fmt.Sprintf("cs.slug = $%d", len(args)))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("analytics snapshot: %w", err)
	}
	defer rows.Close()

	leads := make([]SnapshotLead, 0, 256)
	for rows.Next() {
		var l SnapshotLead
		var category string
		err := rows.Scan(
			&l.ID, &l.BrandID, &l.BrandName, &l.StatusSlug, &l.StatusLabel,
			&category, &l.Score, &l.CapitalAvailable, &l.Source, &l.City, &l.State,
			&l.OperatorID, &l.OperatorName, &l.LossReasonName,
			&l.CreatedAt, &l.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		l.Category = domain.Category(category)
		leads = append(leads, l)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	if len(leads) > maxRows {
		return nil, ErrSnapshotTooLarge
	}

	return leads, nil
}

// snapshotWithFilter injects an extra predicate before the ORDER BY clause.
func snapshotWithFilter(query, predicate string) string {
	const marker = "ORDER BY"
	idx := len(query)
	for i := 0; i+len(marker) <= len(query); i++ {
		if query[i:i+len(marker)] == marker {
			idx = i
			break
		}
	}
	return query[:idx] + "AND " + predicate + "\n\t" + query[idx:]
}
