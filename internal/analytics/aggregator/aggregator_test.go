package aggregator

import (
	"testing"
	"time"

	"leadcapture_backend/internal/leads/domain"
	"leadcapture_backend/internal/leads/repository"

	"github.com/google/uuid"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func lead(statusSlug string, capital int64, score int, ageDays int) repository.SnapshotLead {
	return repository.SnapshotLead{
		ID:               uuid.New(),
		BrandID:          uuid.New(),
		BrandName:        "BrandA",
		StatusSlug:       statusSlug,
		StatusLabel:      statusSlug,
		Category:         domain.CategoryWarm,
		Score:            score,
		CapitalAvailable: capital,
		Source:           "form",
		State:            "SP",
		CreatedAt:        testNow.AddDate(0, 0, -ageDays),
	}
}

func TestComputeEmptySnapshot(t *testing.T) {
	m := Compute(nil, 30, testNow)

	if m.TotalLeads != 0 {
		t.Errorf("TotalLeads = %d", m.TotalLeads)
	}
	if m.ConversionRate != 0.0 {
		t.Errorf("ConversionRate = %v, want 0.0", m.ConversionRate)
	}
	if m.Forecast30 != 0 || m.RevenueForecast != 0 {
		t.Errorf("forecasts = (%d, %d), want zero", m.Forecast30, m.RevenueForecast)
	}
	if len(m.TimeSeries) != 30 {
		t.Errorf("len(TimeSeries) = %d, want 30 zero-filled points", len(m.TimeSeries))
	}
	for _, p := range m.TimeSeries {
		if p.Leads != 0 || p.Converted != 0 {
			t.Fatalf("empty snapshot produced non-zero point %+v", p)
		}
	}
}

func TestTimeSeriesLengthIsCappedAt30(t *testing.T) {
	for _, period := range []int{7, 15, 30, 60, 90} {
		m := Compute(nil, period, testNow)
		want := period
		if want > 30 {
			want = 30
		}
		if len(m.TimeSeries) != want {
			t.Errorf("period %d: len(TimeSeries) = %d, want %d", period, len(m.TimeSeries), want)
		}
	}
}

func TestTimeSeriesBucketsByDayOldestFirst(t *testing.T) {
	snapshot := []repository.SnapshotLead{
		lead(domain.StatusNew, 0, 50, 0),
		lead(domain.StatusNew, 0, 50, 0),
		lead(domain.StatusConverted, 0, 50, 2),
	}
	m := Compute(snapshot, 7, testNow)

	if len(m.TimeSeries) != 7 {
		t.Fatalf("len(TimeSeries) = %d", len(m.TimeSeries))
	}
	last := m.TimeSeries[6]
	if last.Date != "2025-06-15" || last.Leads != 2 {
		t.Errorf("today's point = %+v, want 2 leads on 2025-06-15", last)
	}
	twoDaysAgo := m.TimeSeries[4]
	if twoDaysAgo.Leads != 1 || twoDaysAgo.Converted != 1 {
		t.Errorf("point two days back = %+v, want 1 lead 1 converted", twoDaysAgo)
	}
}

func TestFunnelPartitionsSnapshot(t *testing.T) {
	snapshot := []repository.SnapshotLead{
		lead(domain.StatusNew, 0, 50, 1),
		lead(domain.StatusContacted, 0, 50, 1),
		lead(domain.StatusScheduled, 0, 50, 1),
		lead(domain.StatusNegotiating, 0, 50, 1),
		lead(domain.StatusProposal, 0, 50, 1),
		lead(domain.StatusInTalks, 0, 50, 1),
		lead(domain.StatusConverted, 0, 50, 1),
		lead(domain.StatusSold, 0, 50, 1),
		lead(domain.StatusLost, 0, 50, 1),
	}
	m := Compute(snapshot, 30, testNow)

	f := m.Funnel
	sum := f.New + f.Contacted + f.Scheduled + f.Negotiating + f.Converted + f.Lost
	if sum != m.TotalLeads {
		t.Errorf("funnel sum %d != total %d", sum, m.TotalLeads)
	}
	if f.Negotiating != 3 {
		t.Errorf("Negotiating = %d, want 3 (negociacao, proposta, em_negociacao)", f.Negotiating)
	}
	if f.Converted != 2 {
		t.Errorf("Converted = %d, want 2 (convertido, vendido)", f.Converted)
	}
	if f.Lost != 1 {
		t.Errorf("Lost = %d, want 1", f.Lost)
	}
}

func TestConversionRateAndForecast(t *testing.T) {
	snapshot := make([]repository.SnapshotLead, 0, 62)
	for i := 0; i < 50; i++ {
		snapshot = append(snapshot, lead(domain.StatusNew, 100_000, 60, 1))
	}
	for i := 0; i < 12; i++ {
		snapshot = append(snapshot, lead(domain.StatusConverted, 100_000, 60, 1))
	}
	m := Compute(snapshot, 30, testNow)

	if m.TotalLeads != 62 {
		t.Fatalf("TotalLeads = %d", m.TotalLeads)
	}
	// 12/62 = 19.35..., shown with one decimal.
	if m.ConversionRate != 19.4 {
		t.Errorf("ConversionRate = %v, want 19.4", m.ConversionRate)
	}
	// 62 leads over 30 days project to 62 over the next 30.
	if m.Forecast30 != 62 {
		t.Errorf("Forecast30 = %d, want 62", m.Forecast30)
	}
	// forecast30 * rate/100 * avg capital = 62 * 0.194 * 100000.
	if m.RevenueForecast != 1_202_800 {
		t.Errorf("RevenueForecast = %d, want 1202800", m.RevenueForecast)
	}
}

func TestAvgCycleDaysUsesCeilOfAge(t *testing.T) {
	snapshot := []repository.SnapshotLead{
		lead(domain.StatusConverted, 0, 50, 2),
		lead(domain.StatusConverted, 0, 50, 4),
		lead(domain.StatusNew, 0, 50, 10),
	}
	m := Compute(snapshot, 30, testNow)

	if m.AvgCycleDays != 3.0 {
		t.Errorf("AvgCycleDays = %v, want 3.0 (mean of 2 and 4)", m.AvgCycleDays)
	}
}

func TestScoreDistributionPartition(t *testing.T) {
	snapshot := []repository.SnapshotLead{
		lead(domain.StatusNew, 0, 0, 1),
		lead(domain.StatusNew, 0, 20, 1),
		lead(domain.StatusNew, 0, 21, 1),
		lead(domain.StatusNew, 0, 55, 1),
		lead(domain.StatusNew, 0, 60, 1),
		lead(domain.StatusNew, 0, 61, 1),
		lead(domain.StatusNew, 0, 80, 1),
		lead(domain.StatusNew, 0, 81, 1),
		lead(domain.StatusNew, 0, 95, 1),
		lead(domain.StatusNew, 0, 100, 1),
	}
	m := Compute(snapshot, 30, testNow)

	counts := make([]int, len(m.ScoreDistribution))
	total := 0
	for i, b := range m.ScoreDistribution {
		counts[i] = b.Count
		total += b.Count
	}
	if total != len(snapshot) {
		t.Errorf("distribution total = %d, want %d", total, len(snapshot))
	}
	want := []int{2, 1, 2, 2, 3}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("bucket %s count = %d, want %d", m.ScoreDistribution[i].Label, counts[i], want[i])
		}
	}
}

func TestGroupCountsAreDeterministic(t *testing.T) {
	snapshot := []repository.SnapshotLead{
		lead(domain.StatusNew, 0, 50, 1),
		lead(domain.StatusNew, 0, 50, 1),
	}
	snapshot[0].Source = "form"
	snapshot[1].Source = "api"

	first := Compute(snapshot, 30, testNow)
	second := Compute(snapshot, 30, testNow)
	for i := range first.BySource {
		if first.BySource[i] != second.BySource[i] {
			t.Fatalf("BySource order not deterministic: %+v vs %+v", first.BySource, second.BySource)
		}
	}
	// Equal counts tie-break by key.
	if first.BySource[0].Key != "api" {
		t.Errorf("tie-break order = %q first, want api", first.BySource[0].Key)
	}
}

func TestLossReasonsOnlyCountLostLeads(t *testing.T) {
	reason := "price"
	lost := lead(domain.StatusLost, 0, 50, 1)
	lost.LossReasonName = &reason
	snapshot := []repository.SnapshotLead{
		lost,
		lead(domain.StatusLost, 0, 50, 1),
		lead(domain.StatusConverted, 0, 50, 1),
	}
	m := Compute(snapshot, 30, testNow)

	totalLoss := 0
	for _, g := range m.LossReasons {
		totalLoss += g.Leads
	}
	if totalLoss != 2 {
		t.Errorf("loss reason total = %d, want 2", totalLoss)
	}
	found := map[string]int{}
	for _, g := range m.LossReasons {
		found[g.Key] = g.Leads
	}
	if found["price"] != 1 || found["unspecified"] != 1 {
		t.Errorf("loss reasons = %v, want price:1 unspecified:1", found)
	}
}

func TestLossRateAndAvgScore(t *testing.T) {
	snapshot := []repository.SnapshotLead{
		lead(domain.StatusLost, 0, 50, 1),
		lead(domain.StatusConverted, 0, 95, 1),
		lead(domain.StatusNew, 0, 60, 1),
	}
	m := Compute(snapshot, 30, testNow)

	// 1/3 = 33.33..., shown with one decimal.
	if m.LossRate != 33.3 {
		t.Errorf("LossRate = %v, want 33.3", m.LossRate)
	}
	// (50+95+60)/3 = 68.33, rounded to nearest.
	if m.AvgScore != 68 {
		t.Errorf("AvgScore = %v, want 68", m.AvgScore)
	}
}

func TestCapitalPartitionsByOutcome(t *testing.T) {
	snapshot := []repository.SnapshotLead{
		lead(domain.StatusConverted, 300_000, 90, 1),
		lead(domain.StatusLost, 100_000, 60, 1),
		lead(domain.StatusNegotiating, 150_000, 70, 1),
		lead(domain.StatusNew, 50_000, 50, 1),
	}
	m := Compute(snapshot, 30, testNow)

	if m.CapitalTotal != 600_000 {
		t.Errorf("CapitalTotal = %d, want 600000", m.CapitalTotal)
	}
	if m.CapitalConverted != 300_000 || m.CapitalLost != 100_000 || m.CapitalPipeline != 150_000 {
		t.Errorf("capital partitions = (%d, %d, %d), want (300000, 100000, 150000)",
			m.CapitalConverted, m.CapitalLost, m.CapitalPipeline)
	}
}

func TestPace90FollowsDailyRate(t *testing.T) {
	snapshot := make([]repository.SnapshotLead, 0, 60)
	for i := 0; i < 60; i++ {
		snapshot = append(snapshot, lead(domain.StatusNew, 0, 50, 1))
	}
	m := Compute(snapshot, 30, testNow)

	// 2 leads per day over 90 days.
	if m.Pace90 != 180.0 {
		t.Errorf("Pace90 = %v, want 180.0", m.Pace90)
	}
}

func TestTimeSeriesCumulativeReachesPeriodTotal(t *testing.T) {
	snapshot := []repository.SnapshotLead{
		lead(domain.StatusConverted, 200_000, 80, 2),
		lead(domain.StatusNew, 0, 50, 1),
		lead(domain.StatusNew, 0, 50, 0),
		// Created in the period but before the 30-day series window.
		lead(domain.StatusNew, 0, 50, 45),
	}
	m := Compute(snapshot, 60, testNow)

	last := m.TimeSeries[len(m.TimeSeries)-1]
	if last.Cumulative != 4 {
		t.Errorf("final Cumulative = %d, want 4 including the pre-window lead", last.Cumulative)
	}
	twoDaysAgo := m.TimeSeries[len(m.TimeSeries)-3]
	if twoDaysAgo.CapitalConverted != 200_000 {
		t.Errorf("CapitalConverted two days back = %d, want 200000", twoDaysAgo.CapitalConverted)
	}
	for i := 1; i < len(m.TimeSeries); i++ {
		if m.TimeSeries[i].Cumulative < m.TimeSeries[i-1].Cumulative {
			t.Fatal("cumulative series decreased")
		}
	}
}

func TestOperatorsRankByConversions(t *testing.T) {
	closer, hustler := "closer", "hustler"
	snapshot := []repository.SnapshotLead{
		lead(domain.StatusConverted, 0, 80, 1),
		lead(domain.StatusNew, 0, 50, 1),
		lead(domain.StatusNew, 0, 50, 1),
		lead(domain.StatusNew, 0, 50, 1),
	}
	snapshot[0].OperatorName = &closer
	for i := 1; i < 4; i++ {
		snapshot[i].OperatorName = &hustler
	}
	m := Compute(snapshot, 30, testNow)

	if m.ByOperator[0].Key != "closer" {
		t.Errorf("top operator = %q, want the one with conversions, not volume", m.ByOperator[0].Key)
	}
	if m.ByOperator[1].Leads != 3 {
		t.Errorf("second operator leads = %d, want 3", m.ByOperator[1].Leads)
	}
}

func TestGroupCountsTrackLostLeads(t *testing.T) {
	snapshot := []repository.SnapshotLead{
		lead(domain.StatusLost, 0, 50, 1),
		lead(domain.StatusConverted, 0, 80, 1),
		lead(domain.StatusNew, 0, 50, 1),
	}
	m := Compute(snapshot, 30, testNow)

	if len(m.ByBrand) != 1 {
		t.Fatalf("ByBrand groups = %d, want 1", len(m.ByBrand))
	}
	g := m.ByBrand[0]
	if g.Leads != 3 || g.Converted != 1 || g.Lost != 1 {
		t.Errorf("brand group = %+v, want 3 leads, 1 converted, 1 lost", g)
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	snapshot := []repository.SnapshotLead{
		lead(domain.StatusConverted, 250_000, 80, 3),
		lead(domain.StatusNew, 90_000, 55, 1),
	}
	a := Compute(snapshot, 15, testNow)
	b := Compute(snapshot, 15, testNow)

	if a.TotalLeads != b.TotalLeads || a.ConversionRate != b.ConversionRate ||
		a.RevenueForecast != b.RevenueForecast || a.AvgCycleDays != b.AvgCycleDays {
		t.Error("repeated Compute over the same snapshot differed")
	}
}
