package finance

import (
	"math"
	"sort"

	"fintel/internal/errs"
)

// =============================================================================
// MULTI-COMPANY COMPARISON
// =============================================================================
// Side-by-side analysis of 2-10 companies: per-company ratios and health
// scores, cross-company revenue and score statistics, and stable
// descending rankings. Ties keep input order.

// Comparison set size bounds.
const (
	MinCompareEntities = 2
	MaxCompareEntities = 10
)

// CompanyFinancials pairs a company identity with its latest filed record.
type CompanyFinancials struct {
	TaxID  string
	Name   string
	Record Record
}

// Comparison is the cross-company analysis result.
type Comparison struct {
	CompaniesCompared int               `json:"companies_compared"`
	Companies         []ComparisonEntry `json:"companies"`
	Rankings          Rankings          `json:"rankings"`
	Statistics        ComparisonStats   `json:"statistical_summary"`
	Leader            Leaders           `json:"leader"`
}

// ComparisonEntry is one company's summary within a comparison.
type ComparisonEntry struct {
	TaxID        string   `json:"tax_id"`
	Name         string   `json:"company_name"`
	Revenue      float64  `json:"revenue"`
	NetIncome    float64  `json:"net_income"`
	TotalAssets  float64  `json:"total_assets"`
	Ratios       RatioSet `json:"ratios"`
	HealthScore  int      `json:"health_score"`
	HealthRating string   `json:"health_rating"`
}

// Rankings holds the two independent orderings.
type Rankings struct {
	ByRevenue []RevenueRank `json:"by_revenue"`
	ByHealth  []HealthRank  `json:"by_financial_health"`
}

// RevenueRank is one row of the revenue ranking.
type RevenueRank struct {
	Rank    int     `json:"rank"`
	TaxID   string  `json:"tax_id"`
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
}

// HealthRank is one row of the health score ranking.
type HealthRank struct {
	Rank  int    `json:"rank"`
	TaxID string `json:"tax_id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// ComparisonStats summarizes the compared population.
type ComparisonStats struct {
	Revenue RevenueStats `json:"revenue"`
	Health  ScoreStats   `json:"health_score"`
}

// RevenueStats covers companies with positive revenue only; all zeros when
// none reported revenue.
type RevenueStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// ScoreStats covers every compared company.
type ScoreStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// Leaders names the top company of each ranking.
type Leaders struct {
	ByRevenue string `json:"by_revenue"`
	ByHealth  string `json:"by_health"`
}

// Compare analyzes 2-10 companies side by side.
func Compare(companies []CompanyFinancials) (Comparison, error) {
	if len(companies) < MinCompareEntities || len(companies) > MaxCompareEntities {
		return Comparison{}, errs.Validationf("comparison requires between %d and %d companies, got %d",
			MinCompareEntities, MaxCompareEntities, len(companies))
	}

	entries := make([]ComparisonEntry, 0, len(companies))
	for _, c := range companies {
		rs := Ratios(c.Record)
		health := Health(rs)
		entries = append(entries, ComparisonEntry{
			TaxID:        c.TaxID,
			Name:         c.Name,
			Revenue:      val(c.Record.Revenue),
			NetIncome:    val(c.Record.NetIncome),
			TotalAssets:  val(c.Record.TotalAssets),
			Ratios:       rs,
			HealthScore:  health.Score,
			HealthRating: health.Rating,
		})
	}

	byRevenue := make([]ComparisonEntry, len(entries))
	copy(byRevenue, entries)
	sort.SliceStable(byRevenue, func(i, j int) bool {
		return byRevenue[i].Revenue > byRevenue[j].Revenue
	})

	byHealth := make([]ComparisonEntry, len(entries))
	copy(byHealth, entries)
	sort.SliceStable(byHealth, func(i, j int) bool {
		return byHealth[i].HealthScore > byHealth[j].HealthScore
	})

	rankings := Rankings{
		ByRevenue: make([]RevenueRank, 0, len(byRevenue)),
		ByHealth:  make([]HealthRank, 0, len(byHealth)),
	}
	for i, e := range byRevenue {
		rankings.ByRevenue = append(rankings.ByRevenue, RevenueRank{
			Rank: i + 1, TaxID: e.TaxID, Name: e.Name, Revenue: e.Revenue,
		})
	}
	for i, e := range byHealth {
		rankings.ByHealth = append(rankings.ByHealth, HealthRank{
			Rank: i + 1, TaxID: e.TaxID, Name: e.Name, Score: e.HealthScore,
		})
	}

	return Comparison{
		CompaniesCompared: len(entries),
		Companies:         entries,
		Rankings:          rankings,
		Statistics: ComparisonStats{
			Revenue: revenueStats(entries),
			Health:  scoreStats(entries),
		},
		Leader: Leaders{
			ByRevenue: byRevenue[0].Name,
			ByHealth:  byHealth[0].Name,
		},
	}, nil
}

func revenueStats(entries []ComparisonEntry) RevenueStats {
	var revenues []float64
	for _, e := range entries {
		if e.Revenue > 0 {
			revenues = append(revenues, e.Revenue)
		}
	}
	if len(revenues) == 0 {
		return RevenueStats{}
	}
	minRev, maxRev := revenues[0], revenues[0]
	for _, r := range revenues[1:] {
		minRev = math.Min(minRev, r)
		maxRev = math.Max(maxRev, r)
	}
	return RevenueStats{
		Mean:   round2(mean(revenues)),
		Median: round2(median(revenues)),
		StdDev: round2(sampleStdDev(revenues)),
		Min:    round2(minRev),
		Max:    round2(maxRev),
	}
}

func scoreStats(entries []ComparisonEntry) ScoreStats {
	scores := make([]float64, len(entries))
	for i, e := range entries {
		scores[i] = float64(e.HealthScore)
	}
	return ScoreStats{
		Mean:   round1(mean(scores)),
		Median: round1(median(scores)),
		StdDev: round1(sampleStdDev(scores)),
	}
}

func mean(vs []float64) float64 {
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func median(vs []float64) float64 {
	sorted := make([]float64, len(vs))
	copy(sorted, vs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// sampleStdDev is the n-1 form; zero for fewer than two samples.
func sampleStdDev(vs []float64) float64 {
	if len(vs) < 2 {
		return 0
	}
	m := mean(vs)
	sum := 0.0
	for _, v := range vs {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vs)-1))
}
