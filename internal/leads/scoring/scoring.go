// Package scoring derives a lead quality score from declared capital and a
// category from the score. Both functions are pure, total, and monotonic.
package scoring

import "leadcapture_backend/internal/leads/domain"

// Band is one row of the scoring table: any capital at or above Min earns
// Score. Bands are ordered descending by Min so the highest band reached wins.
type Band struct {
	Min   int64
	Score int
	Label string
}

// bands maps declared capital (BRL) to a score. Keep ordered descending.
var bands = []Band{
	{Min: 500_000, Score: 95, Label: "500k+"},
	{Min: 300_000, Score: 90, Label: "300k-500k"},
	{Min: 200_000, Score: 80, Label: "200k-300k"},
	{Min: 150_000, Score: 70, Label: "150k-200k"},
	{Min: 100_000, Score: 60, Label: "100k-150k"},
	{Min: 80_000, Score: 55, Label: "80k-100k"},
	{Min: 0, Score: 50, Label: "<80k"},
}

// Category thresholds over the score.
const (
	hotThreshold  = 80
	warmThreshold = 60
)

// Score returns the score for the given declared capital. Defined for every
// input; negative capital falls into the lowest band.
func Score(capital int64) int {
	for _, b := range bands {
		if capital >= b.Min {
			return b.Score
		}
	}
	return bands[len(bands)-1].Score
}

// CategoryForScore buckets a score into hot/warm/cold.
func CategoryForScore(score int) domain.Category {
	switch {
	case score >= hotThreshold:
		return domain.CategoryHot
	case score >= warmThreshold:
		return domain.CategoryWarm
	default:
		return domain.CategoryCold
	}
}

// Classify computes score and category in one call.
func Classify(capital int64) (int, domain.Category) {
	score := Score(capital)
	return score, CategoryForScore(score)
}

// Table returns the scoring table with the category each band lands in,
// useful for documentation endpoints and tests.
func Table() []struct {
	Band
	Category domain.Category
} {
	out := make([]struct {
		Band
		Category domain.Category
	}, len(bands))
	for i, b := range bands {
		out[i].Band = b
		out[i].Category = CategoryForScore(b.Score)
	}
	return out
}
