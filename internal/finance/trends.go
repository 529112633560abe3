package finance

import (
	"math"
	"sort"
	"strconv"

	"fintel/internal/errs"
)

// =============================================================================
// TREND ANALYSIS
// =============================================================================
// Time-series view over a multi-year history: year-over-year growth and
// revenue CAGR for revenue, net income, and total assets. A metric block
// is absent entirely when its previous-period base makes growth
// undefined (zero base, or negative base for strictly-positive metrics).

// Trend direction labels. Zero growth counts as decreasing: the split is
// deliberately two-way, with no "stable" band.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
)

// TrendSeries is the full time-series analysis for one company.
type TrendSeries struct {
	PeriodsAnalyzed int           `json:"periods_analyzed"`
	Periods         []TrendPeriod `json:"periods"`
	Revenue         *TrendMetric  `json:"revenue,omitempty"`
	NetIncome       *TrendMetric  `json:"net_income,omitempty"`
	TotalAssets     *TrendMetric  `json:"total_assets,omitempty"`
}

// TrendPeriod echoes the headline figures of one analyzed year.
type TrendPeriod struct {
	Year        int     `json:"year"`
	Revenue     float64 `json:"revenue"`
	NetIncome   float64 `json:"net_income"`
	TotalAssets float64 `json:"total_assets"`
}

// TrendMetric is the growth analysis for a single figure.
type TrendMetric struct {
	Values    []float64 `json:"values"`
	YoYGrowth float64   `json:"yoy_growth_pct"`
	CAGR      *float64  `json:"cagr_pct,omitempty"`
	Direction string    `json:"trend"`
}

// TrendSummary condenses the per-metric directions for quick scanning.
type TrendSummary struct {
	RevenueTrend       string `json:"revenue_trend"`
	ProfitabilityTrend string `json:"profitability_trend"`
	AssetGrowth        string `json:"asset_growth"`
}

// RatioSnapshot is the per-year ratio excerpt used in evolution tables.
type RatioSnapshot struct {
	CurrentRatio    *float64 `json:"current_ratio"`
	NetProfitMargin *float64 `json:"net_profit_margin"`
	ROE             *float64 `json:"roe"`
}

// Trends analyzes a multi-year history. Records are reordered by year
// internally, so callers may pass them as fetched. Fewer than two periods
// is a validation failure, distinct from the nil-metric case.
func Trends(records []Record) (TrendSeries, error) {
	if len(records) < 2 {
		return TrendSeries{}, errs.Validationf("insufficient historical data for trend analysis: at least 2 years required")
	}

	history := sortedByYear(records)
	series := TrendSeries{
		PeriodsAnalyzed: len(history),
		Periods:         make([]TrendPeriod, 0, len(history)),
	}

	revenues := make([]float64, len(history))
	incomes := make([]float64, len(history))
	assets := make([]float64, len(history))
	for i, rec := range history {
		revenues[i] = val(rec.Revenue)
		incomes[i] = val(rec.NetIncome)
		assets[i] = val(rec.TotalAssets)
		series.Periods = append(series.Periods, TrendPeriod{
			Year:        rec.Year,
			Revenue:     revenues[i],
			NetIncome:   incomes[i],
			TotalAssets: assets[i],
		})
	}

	n := len(history)
	if prev := revenues[n-2]; prev > 0 {
		yoy := (revenues[n-1] - prev) / prev * 100
		metric := &TrendMetric{
			Values:    revenues,
			YoYGrowth: round2(yoy),
			Direction: directionOf(yoy),
		}
		if first := revenues[0]; first > 0 {
			cagr := (math.Pow(revenues[n-1]/first, 1/float64(n-1)) - 1) * 100
			metric.CAGR = round2p(cagr)
		}
		series.Revenue = metric
	}

	// Net income can legitimately be negative, so growth is measured
	// against the magnitude of the base year.
	if prev := incomes[n-2]; prev != 0 {
		yoy := (incomes[n-1] - prev) / math.Abs(prev) * 100
		series.NetIncome = &TrendMetric{
			Values:    incomes,
			YoYGrowth: round2(yoy),
			Direction: directionOf(yoy),
		}
	}

	if prev := assets[n-2]; prev > 0 {
		yoy := (assets[n-1] - prev) / prev * 100
		series.TotalAssets = &TrendMetric{
			Values:    assets,
			YoYGrowth: round2(yoy),
			Direction: directionOf(yoy),
		}
	}

	return series, nil
}

// Summary reads the per-metric directions, "unknown" where a metric block
// could not be computed.
func (ts TrendSeries) Summary() TrendSummary {
	return TrendSummary{
		RevenueTrend:       directionOrUnknown(ts.Revenue),
		ProfitabilityTrend: directionOrUnknown(ts.NetIncome),
		AssetGrowth:        directionOrUnknown(ts.TotalAssets),
	}
}

// TrendInsights derives headline observations from a computed series.
func TrendInsights(ts TrendSeries) []string {
	var insights []string

	revGrowth := 0.0
	if ts.Revenue != nil {
		revGrowth = ts.Revenue.YoYGrowth
		if revGrowth > 15 {
			insights = append(insights, "Strong revenue growth momentum")
		} else if revGrowth < 0 {
			insights = append(insights, "Revenue decline - investigate market conditions")
		}
	}

	if ts.NetIncome != nil {
		profitGrowth := ts.NetIncome.YoYGrowth
		if math.Abs(profitGrowth) > math.Abs(revGrowth)+10 {
			if profitGrowth > 0 {
				insights = append(insights, "Profit growing faster than revenue - improving efficiency")
			} else {
				insights = append(insights, "Profit declining faster than revenue - margin compression")
			}
		}
	}

	if len(insights) == 0 {
		insights = append(insights, "Stable financial trajectory")
	}
	return insights
}

// RatioEvolution computes the per-year liquidity and profitability
// excerpt keyed by year. Years the registry did not label key under
// "unknown".
func RatioEvolution(records []Record) map[string]RatioSnapshot {
	evolution := make(map[string]RatioSnapshot, len(records))
	for _, rec := range sortedByYear(records) {
		key := "unknown"
		if rec.Year != 0 {
			key = strconv.Itoa(rec.Year)
		}
		liq := liquidityRatios(rec)
		prof := profitabilityRatios(rec)
		evolution[key] = RatioSnapshot{
			CurrentRatio:    liq.CurrentRatio,
			NetProfitMargin: prof.NetProfitMargin,
			ROE:             prof.ROE,
		}
	}
	return evolution
}

func sortedByYear(records []Record) []Record {
	history := make([]Record, len(records))
	copy(history, records)
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Year < history[j].Year
	})
	return history
}

func directionOf(yoy float64) string {
	if yoy > 0 {
		return TrendIncreasing
	}
	return TrendDecreasing
}

func directionOrUnknown(m *TrendMetric) string {
	if m == nil {
		return "unknown"
	}
	return m.Direction
}
