// Package aggregator computes dashboard metrics from a lead snapshot. Every
// function here is pure: one snapshot in, one Metrics out, no storage access.
// All counts in a Metrics describe the same snapshot, so totals always
// reconcile across views.
package aggregator

import (
	"math"
	"sort"
	"time"

	"leadcapture_backend/internal/leads/domain"
	"leadcapture_backend/internal/leads/repository"
)

// maxTimeSeriesDays caps the daily series length regardless of period.
const maxTimeSeriesDays = 30

// forecastHorizonDays is the projection window for volume and revenue.
const forecastHorizonDays = 30

// Funnel counts leads by pipeline stage. Stages are classified by status
// slug; a lead sits in exactly one stage.
type Funnel struct {
	New         int `json:"new"`
	Contacted   int `json:"contacted"`
	Scheduled   int `json:"scheduled"`
	Negotiating int `json:"negotiating"`
	Converted   int `json:"converted"`
	Lost        int `json:"lost"`
}

// TimeSeriesPoint is one day of intake activity. Cumulative counts every
// lead created in the period up to and including the day, so the last point
// always matches the period total.
type TimeSeriesPoint struct {
	Date             string `json:"date"`
	Leads            int    `json:"leads"`
	Converted        int    `json:"converted"`
	CapitalConverted int64  `json:"capitalConverted"`
	Cumulative       int    `json:"cumulative"`
}

// GroupCount is a generic named bucket used by the grouped views.
type GroupCount struct {
	Key          string  `json:"key"`
	Leads        int     `json:"leads"`
	Converted    int     `json:"converted"`
	Lost         int     `json:"lost"`
	Rate         float64 `json:"rate"`
	CapitalTotal int64   `json:"capitalTotal"`
}

// ScoreBucket is one slice of the score distribution.
type ScoreBucket struct {
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Count int    `json:"count"`
}

// Metrics is the full aggregation result for one tenant and period.
type Metrics struct {
	PeriodDays        int               `json:"periodDays"`
	TotalLeads        int               `json:"totalLeads"`
	Funnel            Funnel            `json:"funnel"`
	ConversionRate    float64           `json:"conversionRate"`
	LossRate          float64           `json:"lossRate"`
	AvgCycleDays      float64           `json:"avgCycleDays"`
	AvgScore          int               `json:"avgScore"`
	CapitalTotal      int64             `json:"capitalTotal"`
	CapitalConverted  int64             `json:"capitalConverted"`
	CapitalLost       int64             `json:"capitalLost"`
	CapitalPipeline   int64             `json:"capitalPipeline"`
	CapitalAvg        int64             `json:"capitalAvg"`
	Forecast30        int               `json:"forecast30"`
	Pace90            float64           `json:"pace90"`
	RevenueForecast   int64             `json:"revenueForecast"`
	TimeSeries        []TimeSeriesPoint `json:"timeSeries"`
	ByCategory        map[string]int    `json:"byCategory"`
	ByBrand           []GroupCount      `json:"byBrand"`
	ByOperator        []GroupCount      `json:"byOperator"`
	BySource          []GroupCount      `json:"bySource"`
	ByState           []GroupCount      `json:"byState"`
	ByStatus          []GroupCount      `json:"byStatus"`
	LossReasons       []GroupCount      `json:"lossReasons"`
	ScoreDistribution []ScoreBucket     `json:"scoreDistribution"`
}

// Compute aggregates a snapshot into Metrics. The snapshot is expected to be
// pre-filtered to the period; now anchors the time series and cycle ages.
func Compute(snapshot []repository.SnapshotLead, periodDays int, now time.Time) Metrics {
	m := Metrics{
		PeriodDays:        periodDays,
		TotalLeads:        len(snapshot),
		ByCategory:        map[string]int{"hot": 0, "warm": 0, "cold": 0},
		ScoreDistribution: newScoreBuckets(),
	}

	brands := newGrouper()
	operators := newGrouper()
	sources := newGrouper()
	states := newGrouper()
	statuses := newGrouper()
	losses := newGrouper()

	var cycleSum float64
	var cycleCount int
	var scoreSum int

	for _, lead := range snapshot {
		converted := domain.ConvertedSlugs[lead.StatusSlug]
		lost := lead.StatusSlug == domain.StatusLost

		switch {
		case converted:
			m.Funnel.Converted++
			m.CapitalConverted += lead.CapitalAvailable
		case lost:
			m.Funnel.Lost++
			m.CapitalLost += lead.CapitalAvailable
		case domain.PipelineSlugs[lead.StatusSlug]:
			m.Funnel.Negotiating++
			m.CapitalPipeline += lead.CapitalAvailable
		case lead.StatusSlug == domain.StatusScheduled:
			m.Funnel.Scheduled++
		case lead.StatusSlug == domain.StatusContacted:
			m.Funnel.Contacted++
		default:
			m.Funnel.New++
		}

		m.CapitalTotal += lead.CapitalAvailable
		m.ByCategory[string(lead.Category)]++
		bucketScore(m.ScoreDistribution, lead.Score)
		scoreSum += lead.Score

		brands.add(lead.BrandName, lead.CapitalAvailable, converted, lost)
		sources.add(orUnknown(lead.Source), lead.CapitalAvailable, converted, lost)
		states.add(orUnknown(lead.State), lead.CapitalAvailable, converted, lost)
		statuses.add(lead.StatusLabel, lead.CapitalAvailable, converted, lost)
		if lead.OperatorName != nil {
			operators.add(*lead.OperatorName, lead.CapitalAvailable, converted, lost)
		} else {
			operators.add("unassigned", lead.CapitalAvailable, converted, lost)
		}
		if lost {
			reason := "unspecified"
			if lead.LossReasonName != nil {
				reason = *lead.LossReasonName
			}
			losses.add(reason, lead.CapitalAvailable, false, true)
		}

		if converted {
			age := now.Sub(lead.CreatedAt).Hours() / 24
			cycleSum += math.Ceil(age)
			cycleCount++
		}
	}

	if m.TotalLeads > 0 {
		m.ConversionRate = roundRate(float64(m.Funnel.Converted) / float64(m.TotalLeads) * 100)
		m.LossRate = roundRate(float64(m.Funnel.Lost) / float64(m.TotalLeads) * 100)
		m.AvgScore = int(math.Round(float64(scoreSum) / float64(m.TotalLeads)))
		m.CapitalAvg = m.CapitalTotal / int64(m.TotalLeads)
		dailyRate := float64(m.TotalLeads) / float64(periodDays)
		m.Forecast30 = int(math.Round(dailyRate * forecastHorizonDays))
		m.Pace90 = dailyRate * 90
		m.RevenueForecast = int64(math.Round(
			float64(m.Forecast30) * m.ConversionRate / 100 * float64(m.CapitalTotal) / float64(m.TotalLeads)))
	}
	if cycleCount > 0 {
		m.AvgCycleDays = roundRate(cycleSum / float64(cycleCount))
	}

	m.TimeSeries = buildTimeSeries(snapshot, periodDays, now)
	m.ByBrand = brands.sorted()
	m.ByOperator = operators.sortedByConverted()
	m.BySource = sources.sorted()
	m.ByState = states.sorted()
	m.ByStatus = statuses.sorted()
	m.LossReasons = losses.sorted()

	return m
}

// buildTimeSeries produces one point per day for the trailing
// min(periodDays, 30) days, oldest first. Days without leads appear with
// zero counts so charts have no gaps.
func buildTimeSeries(snapshot []repository.SnapshotLead, periodDays int, now time.Time) []TimeSeriesPoint {
	days := periodDays
	if days > maxTimeSeriesDays {
		days = maxTimeSeriesDays
	}
	if days < 1 {
		return nil
	}

	points := make([]TimeSeriesPoint, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := now.AddDate(0, 0, -(days - 1 - i)).Format("2006-01-02")
		points[i] = TimeSeriesPoint{Date: date}
		index[date] = i
	}

	// Leads created in the period but before the first series day still count
	// toward the cumulative line.
	carried := 0
	for _, lead := range snapshot {
		date := lead.CreatedAt.Format("2006-01-02")
		i, ok := index[date]
		if !ok {
			if date < points[0].Date {
				carried++
			}
			continue
		}
		points[i].Leads++
		if domain.ConvertedSlugs[lead.StatusSlug] {
			points[i].Converted++
			points[i].CapitalConverted += lead.CapitalAvailable
		}
	}

	running := carried
	for i := range points {
		running += points[i].Leads
		points[i].Cumulative = running
	}

	return points
}

func newScoreBuckets() []ScoreBucket {
	return []ScoreBucket{
		{Label: "0-20", Min: 0, Max: 20},
		{Label: "21-40", Min: 21, Max: 40},
		{Label: "41-60", Min: 41, Max: 60},
		{Label: "61-80", Min: 61, Max: 80},
		{Label: "81-100", Min: 81, Max: 100},
	}
}

func bucketScore(buckets []ScoreBucket, score int) {
	for i := range buckets {
		if score >= buckets[i].Min && score <= buckets[i].Max {
			buckets[i].Count++
			return
		}
	}
}

// grouper accumulates per-key counts in insertion-independent form.
type grouper struct {
	groups map[string]*GroupCount
}

func newGrouper() *grouper {
	return &grouper{groups: make(map[string]*GroupCount)}
}

func (g *grouper) add(key string, capital int64, converted, lost bool) {
	gc, ok := g.groups[key]
	if !ok {
		gc = &GroupCount{Key: key}
		g.groups[key] = gc
	}
	gc.Leads++
	gc.CapitalTotal += capital
	if converted {
		gc.Converted++
	}
	if lost {
		gc.Lost++
	}
}

// sorted returns groups largest first, ties broken by key so output is
// deterministic.
func (g *grouper) sorted() []GroupCount {
	return g.collect(func(a, b GroupCount) bool {
		if a.Leads != b.Leads {
			return a.Leads > b.Leads
		}
		return a.Key < b.Key
	})
}

// sortedByConverted ranks groups by conversions first; the consultant view
// rewards closing, not volume.
func (g *grouper) sortedByConverted() []GroupCount {
	return g.collect(func(a, b GroupCount) bool {
		if a.Converted != b.Converted {
			return a.Converted > b.Converted
		}
		if a.Leads != b.Leads {
			return a.Leads > b.Leads
		}
		return a.Key < b.Key
	})
}

func (g *grouper) collect(less func(a, b GroupCount) bool) []GroupCount {
	out := make([]GroupCount, 0, len(g.groups))
	for _, gc := range g.groups {
		if gc.Leads > 0 {
			gc.Rate = roundRate(float64(gc.Converted) / float64(gc.Leads) * 100)
		}
		out = append(out, *gc)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// roundRate rounds to one decimal place, the precision the dashboard shows.
func roundRate(v float64) float64 {
	return math.Round(v*10) / 10
}
