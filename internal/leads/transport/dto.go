// Package transport defines the request and response shapes of the lead
// management API.
package transport

import (
	"time"

	"leadcapture_backend/internal/leads/domain"
	"leadcapture_backend/platform/phone"

	"github.com/google/uuid"
)

// ListLeadsQuery binds the listing filters. All fields are optional.
type ListLeadsQuery struct {
	BrandID    string `form:"brandId"`
	OperatorID string `form:"operatorId"`
	Status     string `form:"status"`
	Category   string `form:"category" binding:"omitempty,oneof=hot warm cold"`
	Source     string `form:"source"`
	OrderBy    string `form:"orderBy" binding:"omitempty,oneof=created_at score capital_available name"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PerPage    int    `form:"perPage" binding:"omitempty,min=1,max=200"`
}

// CreateLeadRequest carries a lead entered manually through the dashboard.
// Score and category are derived server-side and cannot be set.
type CreateLeadRequest struct {
	BrandID          string  `json:"brandId" binding:"required,uuid"`
	Name             string  `json:"name" binding:"required,min=3,max=255"`
	Email            string  `json:"email" binding:"required,email"`
	Phone            string  `json:"phone" binding:"required,min=10"`
	City             string  `json:"city" binding:"omitempty,max=255"`
	State            string  `json:"state" binding:"omitempty,max=255"`
	Source           string  `json:"source" binding:"omitempty,max=100"`
	Document         string  `json:"document" binding:"omitempty,max=20"`
	CapitalAvailable int64   `json:"capitalAvailable" binding:"omitempty,min=0"`
	Message          string  `json:"message" binding:"omitempty,max=1000"`
	OperatorID       *string `json:"operatorId" binding:"omitempty,uuid"`
}

// UpdateLeadRequest carries a partial lead update. Nil fields are left
// unchanged. Capital changes trigger a rescore server-side.
type UpdateLeadRequest struct {
	Name             *string `json:"name" binding:"omitempty,min=3,max=255"`
	Email            *string `json:"email" binding:"omitempty,email"`
	Phone            *string `json:"phone" binding:"omitempty,min=10"`
	City             *string `json:"city" binding:"omitempty,max=255"`
	State            *string `json:"state" binding:"omitempty,max=255"`
	CapitalAvailable *int64  `json:"capitalAvailable" binding:"omitempty,min=0"`
	Message          *string `json:"message" binding:"omitempty,max=1000"`
}

// UpdateStatusRequest moves a lead through the commercial pipeline. The loss
// reason is only meaningful when the target status is a loss.
type UpdateStatusRequest struct {
	StatusSlug   string  `json:"statusSlug" binding:"required"`
	LossReasonID *string `json:"lossReasonId" binding:"omitempty,uuid"`
}

// AssignRequest sets or clears the operator responsible for a lead.
type AssignRequest struct {
	OperatorID *string `json:"operatorId" binding:"omitempty,uuid"`
}

// LeadResponse is the API representation of a lead.
type LeadResponse struct {
	ID                 uuid.UUID  `json:"id"`
	TenantID           uuid.UUID  `json:"tenantId"`
	BrandID            uuid.UUID  `json:"brandId"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone"`
	PhoneE164          string     `json:"phoneE164,omitempty"`
	City               string     `json:"city,omitempty"`
	State              string     `json:"state,omitempty"`
	Source             string     `json:"source"`
	Document           string     `json:"document,omitempty"`
	DocumentType       *string    `json:"documentType,omitempty"`
	CapitalAvailable   int64      `json:"capitalAvailable"`
	Score              int        `json:"score"`
	Category           string     `json:"category"`
	CommercialStatusID uuid.UUID  `json:"commercialStatusId"`
	LossReasonID       *uuid.UUID `json:"lossReasonId,omitempty"`
	OperatorID         *uuid.UUID `json:"operatorId,omitempty"`
	Message            string     `json:"message,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// ListLeadsResponse is a paginated lead listing.
type ListLeadsResponse struct {
	Leads   []LeadResponse `json:"leads"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"perPage"`
}

// FromLead converts a domain lead to its API shape.
func FromLead(lead domain.Lead) LeadResponse {
	resp := LeadResponse{
		ID:                 lead.ID,
		TenantID:           lead.TenantID,
		BrandID:            lead.BrandID,
		Name:               lead.Name,
		Email:              lead.Email,
		Phone:              lead.Phone,
		PhoneE164:          phoneE164(lead.Phone),
		City:               lead.City,
		State:              lead.State,
		Source:             lead.Source,
		Document:           lead.Document,
		CapitalAvailable:   lead.CapitalAvailable,
		Score:              lead.Score,
		Category:           string(lead.Category),
		CommercialStatusID: lead.CommercialStatusID,
		LossReasonID:       lead.LossReasonID,
		OperatorID:         lead.OperatorID,
		Message:            lead.Message,
		CreatedAt:          lead.CreatedAt,
		UpdatedAt:          lead.UpdatedAt,
	}
	if lead.DocumentType != nil {
		dt := string(*lead.DocumentType)
		resp.DocumentType = &dt
	}
	return resp
}

// phoneE164 renders the stored digits in E.164 when they form a valid
// number, empty otherwise.
func phoneE164(digits string) string {
	formatted := phone.NormalizeE164(digits)
	if formatted == digits {
		return ""
	}
	return formatted
}

// FromLeads converts a slice of domain leads.
func FromLeads(leads []domain.Lead) []LeadResponse {
	out := make([]LeadResponse, len(leads))
	for i, l := range leads {
		out[i] = FromLead(l)
	}
	return out
}
