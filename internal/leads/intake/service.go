package intake

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"leadcapture_backend/internal/events"
	"leadcapture_backend/internal/leads/domain"
	"leadcapture_backend/internal/leads/repository"
	"leadcapture_backend/internal/leads/scoring"
	"leadcapture_backend/platform/apperr"
	"leadcapture_backend/platform/logger"
	"leadcapture_backend/platform/phone"

	"github.com/google/uuid"
)

// DedupWindow is how far back a matching (tenant, email, brand) submission
// suppresses a new insert. A lead exactly this old no longer suppresses.
const DedupWindow = 24 * time.Hour

const minNameLen = 3

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// StatusFinder resolves tenant-scoped commercial statuses by slug. The
// catalog module implements it.
type StatusFinder interface {
	StatusBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (domain.CommercialStatus, error)
}

// Submission is a raw intake request: the tenant and brand from the route,
// the untyped payload from the body, and the channel the lead arrived by.
type Submission struct {
	TenantID uuid.UUID
	BrandID  uuid.UUID
	Payload  map[string]any
	Channel  string
}

// Result is the intake outcome. Duplicate means an equivalent recent lead
// already existed; the submission is still a success and Lead points at the
// existing record.
type Result struct {
	Lead      domain.Lead
	Duplicate bool
}

// Service runs the intake pipeline: normalize, validate, score, dedup,
// persist, publish.
type Service struct {
	store    repository.LeadStore
	statuses StatusFinder
	bus      events.Bus
	log      *logger.Logger
}

func NewService(store repository.LeadStore, statuses StatusFinder, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, statuses: statuses, bus: bus, log: log}
}

// Submit processes one intake submission end to end. Validation failures
// return a typed error before anything is persisted.
func (s *Service) Submit(ctx context.Context, sub Submission) (Result, error) {
	draft := Normalize(sub.Payload, sub.Channel)

	if err := validateDraft(sub, draft); err != nil {
		return Result{}, err
	}

	score, category := scoring.Classify(draft.Capital)

	status, err := s.statuses.StatusBySlug(ctx, sub.TenantID, domain.StatusNew)
	if err != nil {
		return Result{}, fmt.Errorf("resolve initial status: %w", err)
	}

	params := repository.CreateLeadParams{
		TenantID:           sub.TenantID,
		BrandID:            sub.BrandID,
		Name:               draft.Name,
		Email:              draft.Email,
		Phone:              draft.Phone,
		City:               draft.City,
		State:              draft.State,
		Source:             draft.Source,
		Document:           draft.Document,
		DocumentType:       draft.DocumentType(),
		CapitalAvailable:   draft.Capital,
		Score:              score,
		Category:           category,
		CommercialStatusID: status.ID,
		Message:            draft.Message,
	}

	lead, created, err := s.store.CreateIfNoRecent(ctx, params, DedupWindow)
	if err != nil {
		return Result{}, fmt.Errorf("persist lead: %w", err)
	}

	if !created {
		existing, err := s.store.FindMostRecent(ctx, sub.TenantID, draft.Email, sub.BrandID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// The duplicate was removed between the two reads. Treat the
				// submission as suppressed anyway; the client retries.
				return Result{}, apperr.Conflict("duplicate submission")
			}
			return Result{}, fmt.Errorf("load duplicate lead: %w", err)
		}
		s.log.WithContext(ctx).LeadEvent("lead_duplicate",
			sub.TenantID.String(), existing.ID.String(), existing.Score, string(existing.Category))
		return Result{Lead: existing, Duplicate: true}, nil
	}

	s.log.WithContext(ctx).LeadEvent("lead_created",
		sub.TenantID.String(), lead.ID.String(), lead.Score, string(lead.Category))

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		TenantID:  lead.TenantID,
		BrandID:   lead.BrandID,
		Name:      lead.Name,
		Email:     lead.Email,
		Source:    lead.Source,
		Score:     lead.Score,
		Category:  string(lead.Category),
		Capital:   lead.CapitalAvailable,
	})

	return Result{Lead: lead}, nil
}

func validateDraft(sub Submission, draft LeadDraft) error {
	if sub.TenantID == uuid.Nil {
		return apperr.Validation("tenant is required", "tenant_id")
	}
	if sub.BrandID == uuid.Nil {
		return apperr.Validation("brand is required", "brand_id")
	}
	if len(draft.Name) < minNameLen {
		return apperr.Validation("name must have at least 3 characters", "name")
	}
	if draft.Email == "" {
		return apperr.Validation("email is required", "email")
	}
	if !emailPattern.MatchString(draft.Email) {
		return apperr.Validation("email is not valid", "email")
	}
	if !phone.IsPlausible(draft.Phone) {
		return apperr.Validation("phone must have at least 10 digits", "phone")
	}
	if draft.Document != "" && len(draft.Document) != 11 && len(draft.Document) != 14 {
		return apperr.Validation("document must be a CPF (11 digits) or CNPJ (14 digits)", "document")
	}
	return nil
}
