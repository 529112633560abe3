package finance

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"fintel/internal/errs"
)

func TestCompareToIndustry_Manufacturing(t *testing.T) {
	rs := ratioSetWith(ptr(2.5), ptr(6.5), ptr(9.0), ptr(0.5), nil, nil)

	got, err := CompareToIndustry(rs, "manufacturing", DefaultBenchmarks())
	if err != nil {
		t.Fatalf("CompareToIndustry() error = %v", err)
	}

	if got.Industry != "manufacturing" {
		t.Errorf("industry = %q, want manufacturing", got.Industry)
	}
	if diff := cmp.Diff(rs, got.CompanyMetrics); diff != "" {
		t.Errorf("company metrics mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(DefaultBenchmarks()["manufacturing"], got.IndustryBenchmarks); diff != "" {
		t.Errorf("benchmark table mismatch (-want +got):\n%s", diff)
	}

	wantPositions := map[string]string{
		"liquidity":     PositionTopQuartile,
		"profitability": PositionAboveMedian,
		"returns":       PositionBottomQuartile,
		"leverage":      PositionTopQuartile,
	}
	if diff := cmp.Diff(wantPositions, got.RelativePosition); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}

	wantAdvantages := []string{"Superior liquidity position", "Conservative capital structure"}
	if diff := cmp.Diff(wantAdvantages, got.CompetitiveAdvantages); diff != "" {
		t.Errorf("advantages mismatch (-want +got):\n%s", diff)
	}
	wantImprovements := []string{"Strengthen returns on equity"}
	if diff := cmp.Diff(wantImprovements, got.ImprovementAreas); diff != "" {
		t.Errorf("improvements mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareToIndustry_EmptyIndustryDefaults(t *testing.T) {
	got, err := CompareToIndustry(RatioSet{}, "", DefaultBenchmarks())
	if err != nil {
		t.Fatalf("CompareToIndustry() error = %v", err)
	}
	if got.Industry != DefaultIndustry {
		t.Errorf("industry = %q, want %q", got.Industry, DefaultIndustry)
	}
}

func TestCompareToIndustry_UnknownIndustry(t *testing.T) {
	_, err := CompareToIndustry(RatioSet{}, "mining", DefaultBenchmarks())
	if !errs.IsValidation(err) {
		t.Fatalf("error = %v, want validation error", err)
	}
	want := `unknown industry "mining" (valid: manufacturing, retail, services)`
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestCompareToIndustry_NilMetricsGetNoPosition(t *testing.T) {
	got, err := CompareToIndustry(RatioSet{}, "services", DefaultBenchmarks())
	if err != nil {
		t.Fatalf("CompareToIndustry() error = %v", err)
	}

	if len(got.RelativePosition) != 0 {
		t.Errorf("positions = %v, want none", got.RelativePosition)
	}
	if diff := cmp.Diff([]string{"Performance in line with industry"}, got.CompetitiveAdvantages); diff != "" {
		t.Errorf("advantages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{}, got.ImprovementAreas); diff != "" {
		t.Errorf("improvements mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareToIndustry_ProfitabilityImprovements(t *testing.T) {
	// Manufacturing margins: p25 3.0, median 6.0.
	tests := []struct {
		name    string
		npm     float64
		wantPos string
		want    []string
	}{
		{"below median", 4.0, PositionBelowMedian, []string{"Enhance operational efficiency"}},
		{"bottom quartile", 2.0, PositionBottomQuartile, []string{"Critical: address profitability issues"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := ratioSetWith(nil, ptr(tt.npm), nil, nil, nil, nil)
			got, err := CompareToIndustry(rs, "manufacturing", DefaultBenchmarks())
			if err != nil {
				t.Fatalf("CompareToIndustry() error = %v", err)
			}
			if got.RelativePosition["profitability"] != tt.wantPos {
				t.Errorf("position = %q, want %q", got.RelativePosition["profitability"], tt.wantPos)
			}
			if diff := cmp.Diff(tt.want, got.ImprovementAreas); diff != "" {
				t.Errorf("improvements mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPositionAbove(t *testing.T) {
	stats := BenchmarkStats{P25: 1.3, Median: 1.7, P75: 2.2}
	tests := []struct {
		value float64
		want  string
	}{
		{2.2, PositionTopQuartile},
		{2.19, PositionAboveMedian},
		{1.7, PositionAboveMedian},
		{1.69, PositionBelowMedian},
		{1.3, PositionBelowMedian},
		{1.29, PositionBottomQuartile},
	}
	for _, tt := range tests {
		if got := positionAbove(tt.value, stats); got != tt.want {
			t.Errorf("positionAbove(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestPositionBelow(t *testing.T) {
	stats := BenchmarkStats{P25: 0.6, Median: 1.2, P75: 2.0}
	tests := []struct {
		value float64
		want  string
	}{
		{0.6, PositionTopQuartile},
		{0.61, PositionAboveMedian},
		{1.2, PositionAboveMedian},
		{1.21, PositionBelowMedian},
		{2.0, PositionBelowMedian},
		{2.01, PositionBottomQuartile},
	}
	for _, tt := range tests {
		if got := positionBelow(tt.value, stats); got != tt.want {
			t.Errorf("positionBelow(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestDefaultBenchmarks_Industries(t *testing.T) {
	got := DefaultBenchmarks().Industries()
	want := []string{"manufacturing", "retail", "services"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("industries mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBenchmarks(t *testing.T) {
	doc := `
tech:
  current_ratio: {p25: 1.1, median: 1.6, p75: 2.3, mean: 1.7}
  net_profit_margin: {p25: 4.0, median: 9.0, p75: 15.0, mean: 9.5}
  roe: {p25: 11.0, median: 17.0, p75: 26.0, mean: 18.0}
  debt_to_equity: {p25: 0.3, median: 0.8, p75: 1.4, mean: 0.9}
`
	set, err := ParseBenchmarks([]byte(doc))
	if err != nil {
		t.Fatalf("ParseBenchmarks() error = %v", err)
	}

	table, ok := set["tech"]
	if !ok {
		t.Fatalf("industries = %v, want tech", set.Industries())
	}
	want := BenchmarkStats{P25: 1.1, Median: 1.6, P75: 2.3, Mean: 1.7}
	if diff := cmp.Diff(want, table.CurrentRatio); diff != "" {
		t.Errorf("current ratio stats mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBenchmarks_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantMsg string
	}{
		{"empty file", "", "defines no industries"},
		{"not yaml", "{: nope", "malformed benchmark file"},
		{
			"percentiles out of order",
			`
tech:
  current_ratio: {p25: 2.0, median: 1.0, p75: 2.3, mean: 1.7}
`,
			"percentiles out of order",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBenchmarks([]byte(tt.doc))
			if !errs.IsValidation(err) {
				t.Fatalf("error = %v, want validation error", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantMsg)
			}
		})
	}
}
