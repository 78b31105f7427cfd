// Package domain holds the core lead types shared by the intake and
// analytics pipelines.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category is the qualitative quality bucket derived from the score.
type Category string

const (
	CategoryHot  Category = "hot"
	CategoryWarm Category = "warm"
	CategoryCold Category = "cold"
)

// Rank orders categories cold < warm < hot for monotonicity checks.
func (c Category) Rank() int {
	switch c {
	case CategoryHot:
		return 2
	case CategoryWarm:
		return 1
	default:
		return 0
	}
}

// DocumentType identifies the Brazilian tax document kind.
type DocumentType string

const (
	DocumentCPF  DocumentType = "CPF"
	DocumentCNPJ DocumentType = "CNPJ"
)

// DocumentTypeFor derives the document type from the digit count.
// 11 digits is a CPF; anything else is treated as a CNPJ. Check digits are
// not validated here.
func DocumentTypeFor(document string) DocumentType {
	if len(document) == 11 {
		return DocumentCPF
	}
	return DocumentCNPJ
}

// Commercial status slugs the aggregator classifies by. Labels are display
// text and never used for classification.
const (
	StatusNew         = "novo"
	StatusContacted   = "contato"
	StatusScheduled   = "agendado"
	StatusNegotiating = "negociacao"
	StatusProposal    = "proposta"
	StatusInTalks     = "em_negociacao"
	StatusConverted   = "convertido"
	StatusSold        = "vendido"
	StatusLost        = "perdido"
)

// ConvertedSlugs are the outcome slugs counted as a conversion.
var ConvertedSlugs = map[string]bool{
	StatusConverted: true,
	StatusSold:      true,
}

// PipelineSlugs are the outcome slugs counted as open pipeline.
var PipelineSlugs = map[string]bool{
	StatusNegotiating: true,
	StatusProposal:    true,
	StatusInTalks:     true,
}

// Lead is a persisted lead record. Phone and document are stored digits-only.
type Lead struct {
	ID                 uuid.UUID
	TenantID           uuid.UUID
	BrandID            uuid.UUID
	Name               string
	Email              string
	Phone              string
	City               string
	State              string
	Source             string
	Document           string
	DocumentType       *DocumentType
	CapitalAvailable   int64
	Score              int
	Category           Category
	CommercialStatusID uuid.UUID
	LossReasonID       *uuid.UUID
	OperatorID         *uuid.UUID
	Message            string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          *time.Time
}

// Brand is tenant reference data describing a franchise brand.
type Brand struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	Name          string
	InvestmentMin int64
	InvestmentMax int64
}

// CommercialStatus is tenant reference data for pipeline stages.
type CommercialStatus struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Slug     string
	Label    string
}

// LossReason is tenant reference data for lost-lead diagnostics.
type LossReason struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Name     string
}

// Operator is a consultant who works leads for a tenant.
type Operator struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Name     string
	Email    string
}
