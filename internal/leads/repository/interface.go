package repository

import (
	"context"
	"time"

	"leadcapture_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// LeadStore is the persistence surface the lead services consume. Every
// method takes the tenant explicitly; there is no ambient tenant state.
type LeadStore interface {
	Create(ctx context.Context, params CreateLeadParams) (domain.Lead, error)
	CreateIfNoRecent(ctx context.Context, params CreateLeadParams, window time.Duration) (domain.Lead, bool, error)
	FindMostRecent(ctx context.Context, tenantID uuid.UUID, email string, brandID uuid.UUID) (domain.Lead, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (domain.Lead, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, params UpdateLeadParams) (domain.Lead, error)
	SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error
	Query(ctx context.Context, tenantID uuid.UUID, filters QueryFilters, orderBy string, page Pagination) ([]domain.Lead, int, error)
}

// SnapshotStore is the read surface the analytics service consumes.
type SnapshotStore interface {
	AnalyticsSnapshot(ctx context.Context, tenantID uuid.UUID, since time.Time, filters SnapshotFilters, maxRows int) ([]SnapshotLead, error)
}

var (
	_ LeadStore     = (*Repository)(nil)
	_ SnapshotStore = (*Repository)(nil)
)
