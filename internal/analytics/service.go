// Package analytics computes dashboard metrics and named reports over the
// tenant's leads.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadcapture_backend/internal/analytics/aggregator"
	"leadcapture_backend/internal/analytics/report"
	"leadcapture_backend/internal/events"
	"leadcapture_backend/internal/leads/repository"
	"leadcapture_backend/platform/apperr"
	"leadcapture_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// allowedPeriods are the period lengths (days) the API accepts.
var allowedPeriods = map[int]bool{7: true, 15: true, 30: true, 60: true, 90: true}

// DefaultPeriodDays is used when the request names no period.
const DefaultPeriodDays = 30

// Params identifies one analytics request.
type Params struct {
	PeriodDays int
	BrandID    *uuid.UUID
	OperatorID *uuid.UUID
	StatusSlug string
}

// Overview is the dashboard headline view: the current period's metrics plus
// the change against the previous period of the same length.
type Overview struct {
	aggregator.Metrics
	PreviousTotal int     `json:"previousTotal"`
	GrowthRate    float64 `json:"growthRate"`
}

type Service struct {
	store   repository.SnapshotStore
	cache   *Cache
	log     *logger.Logger
	maxRows int
	now     func() time.Time
}

func NewService(store repository.SnapshotStore, cache *Cache, log *logger.Logger, maxRows int) *Service {
	return &Service{
		store:   store,
		cache:   cache,
		log:     log,
		maxRows: maxRows,
		now:     time.Now,
	}
}

// ValidatePeriod normalizes and checks the requested period.
func ValidatePeriod(period int) (int, error) {
	if period == 0 {
		return DefaultPeriodDays, nil
	}
	if !allowedPeriods[period] {
		return 0, apperr.Validation("period must be one of 7, 15, 30, 60, 90", "period")
	}
	return period, nil
}

// Metrics loads the snapshot for the period and computes the aggregate,
// going through the cache. A cache failure is invisible to the caller; a
// snapshot read failure fails the whole request so no partial numbers are
// ever served.
func (s *Service) Metrics(ctx context.Context, tenantID uuid.UUID, params Params) (aggregator.Metrics, bool, error) {
	filterKey := cacheFilterKey(params)

	if m, ok := s.cache.Get(ctx, tenantID, params.PeriodDays, filterKey); ok {
		return m, true, nil
	}

	now := s.now()
	snapshot, err := s.loadSnapshot(ctx, tenantID, params, now)
	if err != nil {
		return aggregator.Metrics{}, false, err
	}

	m := aggregator.Compute(snapshot, params.PeriodDays, now)
	s.cache.Set(ctx, tenantID, params.PeriodDays, filterKey, m)
	return m, false, nil
}

// Overview computes the current and previous period in parallel.
func (s *Service) Overview(ctx context.Context, tenantID uuid.UUID, params Params) (Overview, error) {
	now := s.now()

	var current, previous []repository.SnapshotLead
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.loadSnapshot(gctx, tenantID, params, now)
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = s.loadPreviousSnapshot(gctx, tenantID, params, now)
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	overview := Overview{
		Metrics:       aggregator.Compute(current, params.PeriodDays, now),
		PreviousTotal: len(previous),
	}
	if overview.PreviousTotal > 0 {
		growth := float64(overview.TotalLeads-overview.PreviousTotal) / float64(overview.PreviousTotal) * 100
		overview.GrowthRate = roundTenth(growth)
	}
	return overview, nil
}

// Report builds one named report over the period's metrics.
func (s *Service) Report(ctx context.Context, tenantID uuid.UUID, reportType string, params Params) (report.Report, bool, error) {
	m, cached, err := s.Metrics(ctx, tenantID, params)
	if err != nil {
		return report.Report{}, false, err
	}
	r, err := report.Assemble(reportType, m)
	if err != nil {
		return report.Report{}, false, err
	}
	return r, cached, nil
}

func (s *Service) loadSnapshot(ctx context.Context, tenantID uuid.UUID, params Params, now time.Time) ([]repository.SnapshotLead, error) {
	since := now.AddDate(0, 0, -params.PeriodDays)
	snapshot, err := s.store.AnalyticsSnapshot(ctx, tenantID, since, snapshotFilters(params), s.maxRows)
	if err != nil {
		if errors.Is(err, repository.ErrSnapshotTooLarge) {
			return nil, apperr.BadRequest("too many leads in the requested window, narrow the period or filters")
		}
		return nil, fmt.Errorf("load analytics snapshot: %w", err)
	}
	return snapshot, nil
}

// loadPreviousSnapshot loads the period immediately before the current one
// and trims rows that belong to the current period.
func (s *Service) loadPreviousSnapshot(ctx context.Context, tenantID uuid.UUID, params Params, now time.Time) ([]repository.SnapshotLead, error) {
	currentStart := now.AddDate(0, 0, -params.PeriodDays)
	previousStart := now.AddDate(0, 0, -2*params.PeriodDays)

	rows, err := s.store.AnalyticsSnapshot(ctx, tenantID, previousStart, snapshotFilters(params), s.maxRows)
	if err != nil {
		if errors.Is(err, repository.ErrSnapshotTooLarge) {
			return nil, apperr.BadRequest("too many leads in the requested window, narrow the period or filters")
		}
		return nil, fmt.Errorf("load previous snapshot: %w", err)
	}

	previous := rows[:0:0]
	for _, r := range rows {
		if r.CreatedAt.Before(currentStart) {
			previous = append(previous, r)
		}
	}
	return previous, nil
}

// InvalidateOnLeadEvents subscribes the cache to every lead write so the
// next dashboard read recomputes.
func (s *Service) InvalidateOnLeadEvents(bus events.Bus) {
	invalidate := events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		switch e := event.(type) {
		case events.LeadCreated:
			s.cache.Invalidate(ctx, e.TenantID)
		case events.LeadStatusChanged:
			s.cache.Invalidate(ctx, e.TenantID)
		case events.LeadDeleted:
			s.cache.Invalidate(ctx, e.TenantID)
		}
		return nil
	})

	bus.Subscribe(events.LeadCreated{}.EventName(), invalidate)
	bus.Subscribe(events.LeadStatusChanged{}.EventName(), invalidate)
	bus.Subscribe(events.LeadDeleted{}.EventName(), invalidate)
}

func snapshotFilters(params Params) repository.SnapshotFilters {
	return repository.SnapshotFilters{
		BrandID:    params.BrandID,
		OperatorID: params.OperatorID,
		StatusSlug: params.StatusSlug,
	}
}

func cacheFilterKey(params Params) string {
	brand, operator, status := "all", "all", "all"
	if params.BrandID != nil {
		brand = params.BrandID.String()
	}
	if params.OperatorID != nil {
		operator = params.OperatorID.String()
	}
	if params.StatusSlug != "" {
		status = params.StatusSlug
	}
	return "b:" + brand + ":o:" + operator + ":s:" + status
}

func roundTenth(v float64) float64 {
	if v < 0 {
		return float64(int(v*10-0.5)) / 10
	}
	return float64(int(v*10+0.5)) / 10
}
