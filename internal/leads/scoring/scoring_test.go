package scoring

import (
	"testing"

	"leadcapture_backend/internal/leads/domain"
)

func TestScoreBands(t *testing.T) {
	cases := []struct {
		capital int64
		want    int
	}{
		{0, 50},
		{79_999, 50},
		{80_000, 55},
		{90_000, 55},
		{99_999, 55},
		{100_000, 60},
		{150_000, 70},
		{200_000, 80},
		{300_000, 90},
		{499_999, 90},
		{500_000, 95},
		{550_000, 95},
		{10_000_000, 95},
	}

	for _, tc := range cases {
		if got := Score(tc.capital); got != tc.want {
			t.Errorf("Score(%d) = %d, want %d", tc.capital, got, tc.want)
		}
	}
}

func TestScoreIsMonotonicAndBounded(t *testing.T) {
	prev := 0
	for capital := int64(0); capital <= 600_000; capital += 1_000 {
		score := Score(capital)
		if score < 50 || score > 95 {
			t.Fatalf("Score(%d) = %d out of [50,95]", capital, score)
		}
		if score < prev {
			t.Fatalf("Score(%d) = %d decreased from %d", capital, score, prev)
		}
		prev = score
	}
}

func TestCategoryForScore(t *testing.T) {
	cases := []struct {
		score int
		want  domain.Category
	}{
		{0, domain.CategoryCold},
		{50, domain.CategoryCold},
		{55, domain.CategoryCold},
		{59, domain.CategoryCold},
		{60, domain.CategoryWarm},
		{70, domain.CategoryWarm},
		{79, domain.CategoryWarm},
		{80, domain.CategoryHot},
		{95, domain.CategoryHot},
		{100, domain.CategoryHot},
	}

	for _, tc := range cases {
		if got := CategoryForScore(tc.score); got != tc.want {
			t.Errorf("CategoryForScore(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestCategoryRankIsMonotonicInCapital(t *testing.T) {
	prev := -1
	for capital := int64(0); capital <= 600_000; capital += 5_000 {
		_, cat := Classify(capital)
		if cat.Rank() < prev {
			t.Fatalf("category rank decreased at capital %d", capital)
		}
		prev = cat.Rank()
	}
}

func TestClassifyExamples(t *testing.T) {
	score, cat := Classify(90_000)
	if score != 55 || cat != domain.CategoryCold {
		t.Errorf("Classify(90000) = (%d, %q), want (55, cold)", score, cat)
	}

	score, cat = Classify(550_000)
	if score != 95 || cat != domain.CategoryHot {
		t.Errorf("Classify(550000) = (%d, %q), want (95, hot)", score, cat)
	}
}

func TestTableCoversAllCategories(t *testing.T) {
	seen := map[domain.Category]bool{}
	for _, row := range Table() {
		seen[row.Category] = true
	}
	for _, cat := range []domain.Category{domain.CategoryHot, domain.CategoryWarm, domain.CategoryCold} {
		if !seen[cat] {
			t.Errorf("scoring table has no band landing in category %q", cat)
		}
	}
}
