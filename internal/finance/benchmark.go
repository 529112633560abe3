package finance

import (
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"fintel/internal/errs"
)

// =============================================================================
// INDUSTRY BENCHMARKING
// =============================================================================
// Positions a company's ratios against industry percentile tables. The
// built-in tables carry representative Romanian market figures for three
// broad sectors; deployments can override them from a YAML file (see the
// benchmark watcher in internal/intel).

// Quartile position labels. Leverage reads inverted: lower debt places
// higher.
const (
	PositionTopQuartile    = "Top Quartile"
	PositionAboveMedian    = "Above Median"
	PositionBelowMedian    = "Below Median"
	PositionBottomQuartile = "Bottom Quartile"
)

// DefaultIndustry is assumed when the caller does not name one.
const DefaultIndustry = "manufacturing"

// BenchmarkStats is the percentile profile of one metric in one industry.
type BenchmarkStats struct {
	P25    float64 `json:"p25" yaml:"p25"`
	Median float64 `json:"median" yaml:"median"`
	P75    float64 `json:"p75" yaml:"p75"`
	Mean   float64 `json:"mean" yaml:"mean"`
}

// IndustryBenchmarks carries the benchmarked metrics for one industry.
type IndustryBenchmarks struct {
	CurrentRatio    BenchmarkStats `json:"current_ratio" yaml:"current_ratio"`
	NetProfitMargin BenchmarkStats `json:"net_profit_margin" yaml:"net_profit_margin"`
	ROE             BenchmarkStats `json:"roe" yaml:"roe"`
	DebtToEquity    BenchmarkStats `json:"debt_to_equity" yaml:"debt_to_equity"`
}

// BenchmarkSet maps industry name to its benchmark table.
type BenchmarkSet map[string]IndustryBenchmarks

// BenchmarkComparison positions one company against its industry.
type BenchmarkComparison struct {
	Industry              string             `json:"industry"`
	CompanyMetrics        RatioSet           `json:"company_metrics"`
	IndustryBenchmarks    IndustryBenchmarks `json:"industry_benchmarks"`
	RelativePosition      map[string]string  `json:"relative_position"`
	CompetitiveAdvantages []string           `json:"competitive_advantages"`
	ImprovementAreas      []string           `json:"improvement_areas"`
}

// DefaultBenchmarks returns the built-in sector tables.
func DefaultBenchmarks() BenchmarkSet {
	return BenchmarkSet{
		"retail": {
			CurrentRatio:    BenchmarkStats{P25: 1.2, Median: 1.5, P75: 2.0, Mean: 1.6},
			NetProfitMargin: BenchmarkStats{P25: 2.0, Median: 4.0, P75: 7.0, Mean: 4.5},
			ROE:             BenchmarkStats{P25: 8.0, Median: 12.0, P75: 18.0, Mean: 13.0},
			DebtToEquity:    BenchmarkStats{P25: 0.5, Median: 1.0, P75: 1.8, Mean: 1.1},
		},
		"manufacturing": {
			CurrentRatio:    BenchmarkStats{P25: 1.3, Median: 1.7, P75: 2.2, Mean: 1.8},
			NetProfitMargin: BenchmarkStats{P25: 3.0, Median: 6.0, P75: 10.0, Mean: 6.5},
			ROE:             BenchmarkStats{P25: 10.0, Median: 15.0, P75: 22.0, Mean: 16.0},
			DebtToEquity:    BenchmarkStats{P25: 0.6, Median: 1.2, P75: 2.0, Mean: 1.3},
		},
		"services": {
			CurrentRatio:    BenchmarkStats{P25: 1.0, Median: 1.4, P75: 1.9, Mean: 1.5},
			NetProfitMargin: BenchmarkStats{P25: 5.0, Median: 8.0, P75: 12.0, Mean: 8.5},
			ROE:             BenchmarkStats{P25: 12.0, Median: 18.0, P75: 25.0, Mean: 18.5},
			DebtToEquity:    BenchmarkStats{P25: 0.4, Median: 0.9, P75: 1.5, Mean: 1.0},
		},
	}
}

// Industries lists the set's industry names, sorted.
func (bs BenchmarkSet) Industries() []string {
	names := make([]string, 0, len(bs))
	for name := range bs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseBenchmarks decodes a YAML override file into a BenchmarkSet. Every
// metric must keep p25 <= median <= p75 so quartile labeling stays
// coherent.
func ParseBenchmarks(data []byte) (BenchmarkSet, error) {
	var set BenchmarkSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, errs.Validationf("malformed benchmark file: %v", err)
	}
	if len(set) == 0 {
		return nil, errs.Validationf("benchmark file defines no industries")
	}
	for industry, table := range set {
		for metric, stats := range map[string]BenchmarkStats{
			"current_ratio":     table.CurrentRatio,
			"net_profit_margin": table.NetProfitMargin,
			"roe":               table.ROE,
			"debt_to_equity":    table.DebtToEquity,
		} {
			if stats.P25 > stats.Median || stats.Median > stats.P75 {
				return nil, errs.Validationf("benchmark %s.%s: percentiles out of order (p25 %.2f, median %.2f, p75 %.2f)",
					industry, metric, stats.P25, stats.Median, stats.P75)
			}
		}
	}
	return set, nil
}

// CompareToIndustry positions a ratio set within an industry's benchmark
// table. An empty industry falls back to DefaultIndustry; an unknown one
// is a validation failure naming the valid set. Metrics whose ratio is
// nil get no position entry.
func CompareToIndustry(rs RatioSet, industry string, bs BenchmarkSet) (BenchmarkComparison, error) {
	if industry == "" {
		industry = DefaultIndustry
	}
	table, ok := bs[industry]
	if !ok {
		return BenchmarkComparison{}, errs.Validationf("unknown industry %q (valid: %s)",
			industry, strings.Join(bs.Industries(), ", "))
	}

	cmp := BenchmarkComparison{
		Industry:              industry,
		CompanyMetrics:        rs,
		IndustryBenchmarks:    table,
		RelativePosition:      map[string]string{},
		CompetitiveAdvantages: []string{},
		ImprovementAreas:      []string{},
	}

	if cr := rs.Liquidity.CurrentRatio; cr != nil {
		pos := positionAbove(*cr, table.CurrentRatio)
		cmp.RelativePosition["liquidity"] = pos
		switch pos {
		case PositionTopQuartile:
			cmp.CompetitiveAdvantages = append(cmp.CompetitiveAdvantages, "Superior liquidity position")
		case PositionBottomQuartile:
			cmp.ImprovementAreas = append(cmp.ImprovementAreas, "Improve working capital management")
		}
	}

	if npm := rs.Profitability.NetProfitMargin; npm != nil {
		pos := positionAbove(*npm, table.NetProfitMargin)
		cmp.RelativePosition["profitability"] = pos
		switch pos {
		case PositionTopQuartile:
			cmp.CompetitiveAdvantages = append(cmp.CompetitiveAdvantages, "Excellent profit margins")
		case PositionBelowMedian:
			cmp.ImprovementAreas = append(cmp.ImprovementAreas, "Enhance operational efficiency")
		case PositionBottomQuartile:
			cmp.ImprovementAreas = append(cmp.ImprovementAreas, "Critical: address profitability issues")
		}
	}

	if roe := rs.Profitability.ROE; roe != nil {
		pos := positionAbove(*roe, table.ROE)
		cmp.RelativePosition["returns"] = pos
		switch pos {
		case PositionTopQuartile:
			cmp.CompetitiveAdvantages = append(cmp.CompetitiveAdvantages, "Superior returns on equity")
		case PositionBottomQuartile:
			cmp.ImprovementAreas = append(cmp.ImprovementAreas, "Strengthen returns on equity")
		}
	}

	if dte := rs.Solvency.DebtToEquity; dte != nil {
		pos := positionBelow(*dte, table.DebtToEquity)
		cmp.RelativePosition["leverage"] = pos
		switch pos {
		case PositionTopQuartile:
			cmp.CompetitiveAdvantages = append(cmp.CompetitiveAdvantages, "Conservative capital structure")
		case PositionBottomQuartile:
			cmp.ImprovementAreas = append(cmp.ImprovementAreas, "Reduce reliance on debt financing")
		}
	}

	if len(cmp.CompetitiveAdvantages) == 0 {
		cmp.CompetitiveAdvantages = append(cmp.CompetitiveAdvantages, "Performance in line with industry")
	}

	return cmp, nil
}

// positionAbove labels a metric where higher is better.
func positionAbove(v float64, stats BenchmarkStats) string {
	switch {
	case v >= stats.P75:
		return PositionTopQuartile
	case v >= stats.Median:
		return PositionAboveMedian
	case v >= stats.P25:
		return PositionBelowMedian
	default:
		return PositionBottomQuartile
	}
}

// positionBelow labels a metric where lower is better.
func positionBelow(v float64, stats BenchmarkStats) string {
	switch {
	case v <= stats.P25:
		return PositionTopQuartile
	case v <= stats.Median:
		return PositionAboveMedian
	case v <= stats.P75:
		return PositionBelowMedian
	default:
		return PositionBottomQuartile
	}
}
