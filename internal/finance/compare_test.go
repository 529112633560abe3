package finance

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"fintel/internal/errs"
)

// comparisonFixture returns three companies with hand-checked health
// scores: Alfa 57 (Fair), Beta 100 (Excellent), Gama 0 (Critical).
func comparisonFixture() []CompanyFinancials {
	return []CompanyFinancials{
		{
			TaxID: "12345678",
			Name:  "Alfa SRL",
			Record: Record{
				Year:               2023,
				Revenue:            ptr(1000),
				NetIncome:          ptr(50),
				EBIT:               ptr(80),
				InterestExpense:    ptr(40),
				CurrentAssets:      ptr(150),
				CurrentLiabilities: ptr(100),
				TotalAssets:        ptr(2000),
				TotalEquity:        ptr(1000),
				TotalDebt:          ptr(800),
			},
		},
		{
			TaxID: "23456789",
			Name:  "Beta SA",
			Record: Record{
				Year:               2023,
				Revenue:            ptr(2000),
				NetIncome:          ptr(400),
				EBIT:               ptr(500),
				InterestExpense:    ptr(100),
				CurrentAssets:      ptr(400),
				CurrentLiabilities: ptr(200),
				TotalAssets:        ptr(1000),
				TotalEquity:        ptr(800),
				TotalDebt:          ptr(400),
			},
		},
		{
			TaxID:  "34567890",
			Name:   "Gama SRL",
			Record: Record{Year: 2023},
		},
	}
}

func TestCompare_BoundsValidation(t *testing.T) {
	single := comparisonFixture()[:1]
	if _, err := Compare(single); !errs.IsValidation(err) {
		t.Errorf("Compare(1 company) error = %v, want validation error", err)
	}

	var crowd []CompanyFinancials
	for i := 0; i < MaxCompareEntities+1; i++ {
		crowd = append(crowd, CompanyFinancials{
			TaxID: fmt.Sprintf("%d", 10000000+i),
			Name:  fmt.Sprintf("Company %d", i),
		})
	}
	if _, err := Compare(crowd); !errs.IsValidation(err) {
		t.Errorf("Compare(11 companies) error = %v, want validation error", err)
	}
}

func TestCompare_EntriesEchoInputOrder(t *testing.T) {
	got, err := Compare(comparisonFixture())
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if got.CompaniesCompared != 3 {
		t.Errorf("companies_compared = %d, want 3", got.CompaniesCompared)
	}
	wantOrder := []string{"Alfa SRL", "Beta SA", "Gama SRL"}
	for i, e := range got.Companies {
		if e.Name != wantOrder[i] {
			t.Errorf("companies[%d] = %q, want %q", i, e.Name, wantOrder[i])
		}
	}

	alfa := got.Companies[0]
	if alfa.HealthScore != 57 || alfa.HealthRating != RatingFair {
		t.Errorf("Alfa health = %d %q, want 57 %q", alfa.HealthScore, alfa.HealthRating, RatingFair)
	}
	beta := got.Companies[1]
	if beta.HealthScore != 100 || beta.HealthRating != RatingExcellent {
		t.Errorf("Beta health = %d %q, want 100 %q", beta.HealthScore, beta.HealthRating, RatingExcellent)
	}
	gama := got.Companies[2]
	if gama.HealthScore != 0 || gama.HealthRating != RatingCritical {
		t.Errorf("Gama health = %d %q, want 0 %q", gama.HealthScore, gama.HealthRating, RatingCritical)
	}
}

func TestCompare_Rankings(t *testing.T) {
	got, err := Compare(comparisonFixture())
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	wantRankings := Rankings{
		ByRevenue: []RevenueRank{
			{Rank: 1, TaxID: "23456789", Name: "Beta SA", Revenue: 2000},
			{Rank: 2, TaxID: "12345678", Name: "Alfa SRL", Revenue: 1000},
			{Rank: 3, TaxID: "34567890", Name: "Gama SRL", Revenue: 0},
		},
		ByHealth: []HealthRank{
			{Rank: 1, TaxID: "23456789", Name: "Beta SA", Score: 100},
			{Rank: 2, TaxID: "12345678", Name: "Alfa SRL", Score: 57},
			{Rank: 3, TaxID: "34567890", Name: "Gama SRL", Score: 0},
		},
	}
	if diff := cmp.Diff(wantRankings, got.Rankings); diff != "" {
		t.Errorf("rankings mismatch (-want +got):\n%s", diff)
	}

	wantLeader := Leaders{ByRevenue: "Beta SA", ByHealth: "Beta SA"}
	if diff := cmp.Diff(wantLeader, got.Leader); diff != "" {
		t.Errorf("leader mismatch (-want +got):\n%s", diff)
	}
}

func TestCompare_Statistics(t *testing.T) {
	got, err := Compare(comparisonFixture())
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	// Revenue stats cover the two positive reporters only; Gama's missing
	// revenue stays out of the population.
	wantRevenue := RevenueStats{
		Mean:   1500,
		Median: 1500,
		StdDev: 707.11,
		Min:    1000,
		Max:    2000,
	}
	if diff := cmp.Diff(wantRevenue, got.Statistics.Revenue); diff != "" {
		t.Errorf("revenue stats mismatch (-want +got):\n%s", diff)
	}

	// Health stats cover all three: mean of {57, 100, 0}.
	wantHealth := ScoreStats{Mean: 52.3, Median: 57, StdDev: 50.2}
	if diff := cmp.Diff(wantHealth, got.Statistics.Health); diff != "" {
		t.Errorf("health stats mismatch (-want +got):\n%s", diff)
	}
}

func TestCompare_TiesKeepInputOrder(t *testing.T) {
	got, err := Compare([]CompanyFinancials{
		{TaxID: "111", Name: "First", Record: Record{Revenue: ptr(500)}},
		{TaxID: "222", Name: "Second", Record: Record{Revenue: ptr(500)}},
	})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if got.Rankings.ByRevenue[0].Name != "First" || got.Rankings.ByRevenue[1].Name != "Second" {
		t.Errorf("revenue ranking broke the tie: %+v", got.Rankings.ByRevenue)
	}
	if got.Rankings.ByHealth[0].Name != "First" {
		t.Errorf("health ranking broke the tie: %+v", got.Rankings.ByHealth)
	}
	if got.Leader.ByRevenue != "First" {
		t.Errorf("leader = %q, want First", got.Leader.ByRevenue)
	}
}

func TestCompare_NoPositiveRevenue(t *testing.T) {
	got, err := Compare([]CompanyFinancials{
		{TaxID: "111", Name: "Dormant One", Record: Record{Revenue: ptr(0)}},
		{TaxID: "222", Name: "Dormant Two", Record: Record{}},
	})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if diff := cmp.Diff(RevenueStats{}, got.Statistics.Revenue); diff != "" {
		t.Errorf("revenue stats mismatch (-want +got):\n%s", diff)
	}
	// Health stddev still computes over the population of scores.
	if got.Statistics.Health.StdDev != 0 {
		t.Errorf("health stddev = %v, want 0 for identical scores", got.Statistics.Health.StdDev)
	}
}

func TestSampleStdDev(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want float64
	}{
		{"empty", nil, 0},
		{"single", []float64{42}, 0},
		{"pair", []float64{1000, 2000}, 707.11},
		{"identical", []float64{5, 5, 5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := round2(sampleStdDev(tt.in)); got != tt.want {
				t.Errorf("sampleStdDev(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want float64
	}{
		{"odd", []float64{3, 1, 2}, 2},
		{"even", []float64{4, 1, 3, 2}, 2.5},
		{"single", []float64{7}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := median(tt.in); got != tt.want {
				t.Errorf("median(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
