// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadcapture_backend/platform/events"
	"leadcapture_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when the intake pipeline persists a new lead.
type LeadCreated struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	TenantID uuid.UUID `json:"tenantId"`
	BrandID  uuid.UUID `json:"brandId"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Source   string    `json:"source"`
	Score    int       `json:"score"`
	Category string    `json:"category"`
	Capital  int64     `json:"capital"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStatusChanged is published when an operator moves a lead through the
// commercial pipeline.
type LeadStatusChanged struct {
	BaseEvent
	LeadID     uuid.UUID `json:"leadId"`
	TenantID   uuid.UUID `json:"tenantId"`
	StatusSlug string    `json:"statusSlug"`
}

func (e LeadStatusChanged) EventName() string { return "leads.lead.status_changed" }

// LeadDeleted is published when a lead is soft-deleted.
type LeadDeleted struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	TenantID uuid.UUID `json:"tenantId"`
}

func (e LeadDeleted) EventName() string { return "leads.lead.deleted" }
