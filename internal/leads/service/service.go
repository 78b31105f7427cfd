// Package service implements lead management operations for authenticated
// dashboard users. Intake has its own pipeline under internal/leads/intake.
package service

import (
	"context"
	"errors"
	"fmt"

	"leadcapture_backend/internal/events"
	"leadcapture_backend/internal/leads/domain"
	"leadcapture_backend/internal/leads/repository"
	"leadcapture_backend/internal/leads/scoring"
	"leadcapture_backend/platform/apperr"
	"leadcapture_backend/platform/logger"
	"leadcapture_backend/platform/phone"
	"leadcapture_backend/platform/validator"

	"github.com/google/uuid"
)

// StatusFinder resolves tenant-scoped commercial statuses by slug.
type StatusFinder interface {
	StatusBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (domain.CommercialStatus, error)
}

type Service struct {
	store    repository.LeadStore
	statuses StatusFinder
	bus      events.Bus
	val      *validator.Validator
	log      *logger.Logger
}

func New(store repository.LeadStore, statuses StatusFinder, bus events.Bus, val *validator.Validator, log *logger.Logger) *Service {
	return &Service{store: store, statuses: statuses, bus: bus, val: val, log: log}
}

// ListParams mirrors the listing query after parsing.
type ListParams struct {
	Filters repository.QueryFilters
	OrderBy string
	Page    repository.Pagination
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, params ListParams) ([]domain.Lead, int, error) {
	leads, total, err := s.store.Query(ctx, tenantID, params.Filters, params.OrderBy, params.Page)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	return leads, total, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (domain.Lead, error) {
	lead, err := s.store.GetByID(ctx, tenantID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Lead{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

// CreateFields describes a lead entered manually through the dashboard.
// Score and category are always derived from the capital, like on intake.
type CreateFields struct {
	BrandID          uuid.UUID
	Name             string
	Email            string
	Phone            string
	City             string
	State            string
	Source           string
	Document         string
	CapitalAvailable int64
	Message          string
	OperatorID       *uuid.UUID
}

// Create persists a manually entered lead. Manual entry skips the dedup
// window: an operator typing a lead in is deliberate, not a webhook retry.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, fields CreateFields) (domain.Lead, error) {
	if fields.BrandID == uuid.Nil {
		return domain.Lead{}, apperr.Validation("brand is required", "brandId")
	}
	if err := s.val.Var(fields.Name, "required,min=3,max=255"); err != nil {
		return domain.Lead{}, apperr.Validation("name must have at least 3 characters", "name")
	}
	if err := s.val.Var(fields.Email, "required,email"); err != nil {
		return domain.Lead{}, apperr.Validation("email is not valid", "email")
	}
	digits := phone.Digits(fields.Phone)
	if len(digits) < 10 {
		return domain.Lead{}, apperr.Validation("phone must have at least 10 digits", "phone")
	}
	document := phone.Digits(fields.Document)
	if document != "" && len(document) != 11 && len(document) != 14 {
		return domain.Lead{}, apperr.Validation("document must be a CPF (11 digits) or CNPJ (14 digits)", "document")
	}

	status, err := s.statuses.StatusBySlug(ctx, tenantID, domain.StatusNew)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("resolve initial status: %w", err)
	}

	source := fields.Source
	if source == "" {
		source = "manual"
	}
	score, category := scoring.Classify(fields.CapitalAvailable)

	params := repository.CreateLeadParams{
		TenantID:           tenantID,
		BrandID:            fields.BrandID,
		Name:               fields.Name,
		Email:              fields.Email,
		Phone:              digits,
		City:               fields.City,
		State:              fields.State,
		Source:             source,
		Document:           document,
		CapitalAvailable:   fields.CapitalAvailable,
		Score:              score,
		Category:           category,
		CommercialStatusID: status.ID,
		OperatorID:         fields.OperatorID,
		Message:            fields.Message,
	}
	if document != "" {
		dt := domain.DocumentTypeFor(document)
		params.DocumentType = &dt
	}

	lead, err := s.store.Create(ctx, params)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("create lead: %w", err)
	}

	s.log.WithContext(ctx).LeadEvent("lead_created",
		tenantID.String(), lead.ID.String(), lead.Score, string(lead.Category))

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

	return lead, nil
}

// UpdateFields is the service-level partial update. A capital change
// recomputes score and category; clients never set those directly.
type UpdateFields struct {
	Name             *string
	Email            *string
	Phone            *string
	City             *string
	State            *string
	CapitalAvailable *int64
	Message          *string
}

func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, fields UpdateFields) (domain.Lead, error) {
	if fields.Email != nil {
		if err := s.val.Var(*fields.Email, "required,email"); err != nil {
			return domain.Lead{}, apperr.Validation("email is not valid", "email")
		}
	}
	if fields.Name != nil {
		if err := s.val.Var(*fields.Name, "required,min=3,max=255"); err != nil {
			return domain.Lead{}, apperr.Validation("name must have at least 3 characters", "name")
		}
	}

	params := repository.UpdateLeadParams{
		Name:             fields.Name,
		Email:            fields.Email,
		City:             fields.City,
		State:            fields.State,
		CapitalAvailable: fields.CapitalAvailable,
		Message:          fields.Message,
	}

	if fields.Phone != nil {
		digits := phone.Digits(*fields.Phone)
		if len(digits) < 10 {
			return domain.Lead{}, apperr.Validation("phone must have at least 10 digits", "phone")
		}
		params.Phone = &digits
	}

	if fields.CapitalAvailable != nil {
		score, category := scoring.Classify(*fields.CapitalAvailable)
		params.Score = &score
		params.Category = &category
	}

	lead, err := s.store.Update(ctx, tenantID, id, params)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Lead{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("update lead: %w", err)
	}
	return lead, nil
}

// UpdateStatus moves a lead to the status identified by slug. A loss reason
// is only accepted when the target status is a loss; it is cleared otherwise.
func (s *Service) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, statusSlug string, lossReasonID *uuid.UUID) (domain.Lead, error) {
	status, err := s.statuses.StatusBySlug(ctx, tenantID, statusSlug)
	if err != nil {
		return domain.Lead{}, apperr.Validation("unknown status "+statusSlug, "statusSlug")
	}

	params := repository.UpdateLeadParams{
		CommercialStatusID: &status.ID,
		LossReasonIDSet:    true,
	}
	if statusSlug == domain.StatusLost {
		params.LossReasonID = lossReasonID
	}

	lead, err := s.store.Update(ctx, tenantID, id, params)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Lead{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("update lead status: %w", err)
	}

	s.bus.Publish(ctx, events.LeadStatusChanged{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     lead.ID,
		TenantID:   lead.TenantID,
		StatusSlug: statusSlug,
	})

	return lead, nil
}

// Assign sets or clears the operator working the lead.
func (s *Service) Assign(ctx context.Context, tenantID, id uuid.UUID, operatorID *uuid.UUID) (domain.Lead, error) {
	lead, err := s.store.Update(ctx, tenantID, id, repository.UpdateLeadParams{
		OperatorID:    operatorID,
		OperatorIDSet: true,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Lead{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("assign lead: %w", err)
	}
	return lead, nil
}

// Delete soft-deletes a lead. Analytics and listings stop seeing it; the row
// stays for audit.
func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	err := s.store.SoftDelete(ctx, tenantID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found")
	}
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}

	s.bus.Publish(ctx, events.LeadDeleted{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    id,
		TenantID:  tenantID,
	})

	return nil
}
