package report

import (
	"testing"
	"time"

	"leadcapture_backend/internal/analytics/aggregator"
	"leadcapture_backend/internal/leads/domain"
	"leadcapture_backend/internal/leads/repository"
	"leadcapture_backend/platform/apperr"
)

func sampleMetrics() aggregator.Metrics {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	snapshot := []repository.SnapshotLead{
		{StatusSlug: domain.StatusConverted, StatusLabel: "Convertido", Category: domain.CategoryHot, Score: 95, CapitalAvailable: 500_000, BrandName: "A", Source: "form", State: "SP", CreatedAt: now.AddDate(0, 0, -2)},
		{StatusSlug: domain.StatusNew, StatusLabel: "Novo", Category: domain.CategoryCold, Score: 50, CapitalAvailable: 50_000, BrandName: "B", Source: "api", State: "RJ", CreatedAt: now.AddDate(0, 0, -1)},
	}
	return aggregator.Compute(snapshot, 30, now)
}

func TestAssembleKnowsEveryType(t *testing.T) {
	m := sampleMetrics()
	for _, reportType := range Types {
		r, err := Assemble(reportType, m)
		if err != nil {
			t.Errorf("Assemble(%q): %v", reportType, err)
			continue
		}
		if r.Type != reportType {
			t.Errorf("report type = %q, want %q", r.Type, reportType)
		}
		if r.Data == nil {
			t.Errorf("Assemble(%q) produced nil data", reportType)
		}
		if r.TotalLeads != m.TotalLeads {
			t.Errorf("Assemble(%q) total = %d, want %d", reportType, r.TotalLeads, m.TotalLeads)
		}
	}
}

func TestAssembleRejectsUnknownType(t *testing.T) {
	_, err := Assemble("by-moon-phase", sampleMetrics())
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestFunnelReportAgreesWithConversionReport(t *testing.T) {
	m := sampleMetrics()

	funnel, err := Assemble(TypeFunnel, m)
	if err != nil {
		t.Fatal(err)
	}
	conversion, err := Assemble(TypeConversion, m)
	if err != nil {
		t.Fatal(err)
	}

	funnelData := funnel.Data.(FunnelReport)
	conversionData := conversion.Data.(ConversionReport)

	converted := 0
	for _, stage := range funnelData.Stages {
		if stage.Stage == "converted" {
			converted = stage.Count
		}
	}
	if converted != conversionData.Converted {
		t.Errorf("funnel converted %d != conversion report %d", converted, conversionData.Converted)
	}
	if funnelData.ConversionRate != conversionData.ConversionRate {
		t.Errorf("rates disagree: %v vs %v", funnelData.ConversionRate, conversionData.ConversionRate)
	}
}

func TestFunnelStagePercentsCoverTheSnapshot(t *testing.T) {
	r, err := Assemble(TypeFunnel, sampleMetrics())
	if err != nil {
		t.Fatal(err)
	}

	data := r.Data.(FunnelReport)
	if len(data.Stages) != 6 {
		t.Fatalf("stage count = %d, want 6", len(data.Stages))
	}
	var total float64
	for _, stage := range data.Stages {
		total += stage.Percent
	}
	// One converted and one new lead: 50% each.
	if total != 100.0 {
		t.Errorf("stage percents sum to %v, want 100.0", total)
	}
}

func TestCapitalReportPartitionsCapital(t *testing.T) {
	m := sampleMetrics()
	r, err := Assemble(TypeCapitalAnalysis, m)
	if err != nil {
		t.Fatal(err)
	}

	data := r.Data.(CapitalReport)
	if data.CapitalTotal != 550_000 {
		t.Errorf("CapitalTotal = %d, want 550000", data.CapitalTotal)
	}
	if data.CapitalConverted != 500_000 {
		t.Errorf("CapitalConverted = %d, want 500000", data.CapitalConverted)
	}
	if data.CapitalLost != 0 || data.CapitalPipeline != 0 {
		t.Errorf("lost/pipeline capital = %d/%d, want 0/0", data.CapitalLost, data.CapitalPipeline)
	}
}
