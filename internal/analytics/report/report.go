// Package report assembles named report views from computed metrics. Each
// report is a projection of one Metrics value, so every report served for
// the same snapshot agrees on totals.
package report

import (
	"math"

	"leadcapture_backend/internal/analytics/aggregator"
	"leadcapture_backend/platform/apperr"
)

// Report type identifiers, matching the :type route parameter.
const (
	TypeFunnel            = "funnel"
	TypeConversion        = "conversion"
	TypeByConsultant      = "by-consultant"
	TypeByBrand           = "by-brand"
	TypeTemporal          = "temporal"
	TypeBySource          = "by-source"
	TypeLossAnalysis      = "loss-analysis"
	TypeByRegion          = "by-region"
	TypeScoreDistribution = "score-distribution"
	TypeCapitalAnalysis   = "capital-analysis"
)

// Types lists every known report type.
var Types = []string{
	TypeFunnel, TypeConversion, TypeByConsultant, TypeByBrand, TypeTemporal,
	TypeBySource, TypeLossAnalysis, TypeByRegion, TypeScoreDistribution,
	TypeCapitalAnalysis,
}

// Report is one assembled report: the type, the period it covers, and the
// type-specific data payload.
type Report struct {
	Type       string `json:"type"`
	PeriodDays int    `json:"periodDays"`
	TotalLeads int    `json:"totalLeads"`
	Data       any    `json:"data"`
}

// FunnelStage is one step of the pipeline with its share of the total.
type FunnelStage struct {
	Stage   string  `json:"stage"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// FunnelReport lists the stages in pipeline order.
type FunnelReport struct {
	Stages         []FunnelStage `json:"stages"`
	ConversionRate float64       `json:"conversionRate"`
}

// ConversionReport carries the closing and forecast numbers.
type ConversionReport struct {
	Converted       int     `json:"converted"`
	Lost            int     `json:"lost"`
	ConversionRate  float64 `json:"conversionRate"`
	LossRate        float64 `json:"lossRate"`
	AvgCycleDays    float64 `json:"avgCycleDays"`
	Forecast30      int     `json:"forecast30"`
	Pace90          float64 `json:"pace90"`
	RevenueForecast int64   `json:"revenueForecast"`
}

// LossReport breaks lost leads down by reason.
type LossReport struct {
	Lost     int                     `json:"lost"`
	LossRate float64                 `json:"lossRate"`
	Reasons  []aggregator.GroupCount `json:"reasons"`
}

// ScoreReport pairs the distribution buckets with the category split.
type ScoreReport struct {
	AvgScore   int                      `json:"avgScore"`
	Buckets    []aggregator.ScoreBucket `json:"buckets"`
	ByCategory map[string]int           `json:"byCategory"`
}

// CapitalReport splits declared capital by pipeline outcome.
type CapitalReport struct {
	CapitalTotal     int64   `json:"capitalTotal"`
	CapitalConverted int64   `json:"capitalConverted"`
	CapitalLost      int64   `json:"capitalLost"`
	CapitalPipeline  int64   `json:"capitalPipeline"`
	CapitalAvg       int64   `json:"capitalAvg"`
	RevenueForecast  int64   `json:"revenueForecast"`
	ConversionRate   float64 `json:"conversionRate"`
}

// Assemble builds the requested report from metrics. Unknown types return a
// validation error naming the offending field.
func Assemble(reportType string, m aggregator.Metrics) (Report, error) {
	r := Report{
		Type:       reportType,
		PeriodDays: m.PeriodDays,
		TotalLeads: m.TotalLeads,
	}

	switch reportType {
	case TypeFunnel:
		r.Data = FunnelReport{
			Stages:         funnelStages(m),
			ConversionRate: m.ConversionRate,
		}
	case TypeConversion:
		r.Data = ConversionReport{
			Converted:       m.Funnel.Converted,
			Lost:            m.Funnel.Lost,
			ConversionRate:  m.ConversionRate,
			LossRate:        m.LossRate,
			AvgCycleDays:    m.AvgCycleDays,
			Forecast30:      m.Forecast30,
			Pace90:          m.Pace90,
			RevenueForecast: m.RevenueForecast,
		}
	case TypeByConsultant:
		r.Data = m.ByOperator
	case TypeByBrand:
		r.Data = m.ByBrand
	case TypeTemporal:
		r.Data = m.TimeSeries
	case TypeBySource:
		r.Data = m.BySource
	case TypeLossAnalysis:
		r.Data = LossReport{
			Lost:     m.Funnel.Lost,
			LossRate: m.LossRate,
			Reasons:  m.LossReasons,
		}
	case TypeByRegion:
		r.Data = m.ByState
	case TypeScoreDistribution:
		r.Data = ScoreReport{
			AvgScore:   m.AvgScore,
			Buckets:    m.ScoreDistribution,
			ByCategory: m.ByCategory,
		}
	case TypeCapitalAnalysis:
		r.Data = CapitalReport{
			CapitalTotal:     m.CapitalTotal,
			CapitalConverted: m.CapitalConverted,
			CapitalLost:      m.CapitalLost,
			CapitalPipeline:  m.CapitalPipeline,
			CapitalAvg:       m.CapitalAvg,
			RevenueForecast:  m.RevenueForecast,
			ConversionRate:   m.ConversionRate,
		}
	default:
		return Report{}, apperr.Validation("unknown report type "+reportType, "type")
	}

	return r, nil
}

// funnelStages lays the funnel out in pipeline order with each stage's share
// of the period total.
func funnelStages(m aggregator.Metrics) []FunnelStage {
	stages := []FunnelStage{
		{Stage: "new", Count: m.Funnel.New},
		{Stage: "contacted", Count: m.Funnel.Contacted},
		{Stage: "scheduled", Count: m.Funnel.Scheduled},
		{Stage: "negotiating", Count: m.Funnel.Negotiating},
		{Stage: "converted", Count: m.Funnel.Converted},
		{Stage: "lost", Count: m.Funnel.Lost},
	}
	if m.TotalLeads == 0 {
		return stages
	}
	for i := range stages {
		stages[i].Percent = math.Round(float64(stages[i].Count)/float64(m.TotalLeads)*1000) / 10
	}
	return stages
}
