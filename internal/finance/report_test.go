package finance

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"fintel/internal/errs"
)

func reportClock() time.Time {
	return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
}

func TestBuildReport_FullHistory(t *testing.T) {
	older := Record{
		Year:        2022,
		Revenue:     ptr(900000),
		NetIncome:   ptr(80000),
		TotalAssets: ptr(1100000),
	}
	overview := map[string]any{"company_name": "Alfa SRL", "county": "Cluj"}

	got, err := BuildReport(ReportInput{
		TaxID:       "12345678",
		CompanyName: "Alfa SRL",
		Overview:    overview,
		History:     []Record{older, fullRecord()},
		GeneratedAt: reportClock(),
	})
	if err != nil {
		t.Fatalf("BuildReport() error = %v", err)
	}

	if got.ReportType != ReportType {
		t.Errorf("report_type = %q, want %q", got.ReportType, ReportType)
	}
	if got.TaxID != "12345678" {
		t.Errorf("tax_id = %q, want 12345678", got.TaxID)
	}
	if !got.GeneratedAt.Equal(reportClock()) {
		t.Errorf("generated_at = %v, want %v", got.GeneratedAt, reportClock())
	}

	// The 2023 record drives every verdict: health 76 (Good), credit 90
	// (AAA), both above the approval bars.
	wantSummary := ExecutiveSummary{
		CompanyName:    "Alfa SRL",
		HealthScore:    76,
		HealthRating:   RatingGood,
		CreditScore:    90,
		CreditRating:   "AAA",
		KeyFinding:     "Financial health rated as Good with score of 76/100",
		Recommendation: "Approved for investment",
	}
	if diff := cmp.Diff(wantSummary, got.ExecutiveSummary); diff != "" {
		t.Errorf("executive summary mismatch (-want +got):\n%s", diff)
	}

	wantPosition := FinancialPosition{
		Revenue:     1000000,
		NetIncome:   100000,
		TotalAssets: 1200000,
		TotalEquity: 700000,
		TotalDebt:   300000,
	}
	if diff := cmp.Diff(wantPosition, got.FinancialPosition); diff != "" {
		t.Errorf("financial position mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(overview, got.CompanyOverview); diff != "" {
		t.Errorf("overview mismatch (-want +got):\n%s", diff)
	}

	if got.TrendAnalysis == nil {
		t.Fatal("trend analysis missing for a two-year history")
	}
	if got.TrendAnalysis.PeriodsAnalyzed != 2 {
		t.Errorf("trend periods = %d, want 2", got.TrendAnalysis.PeriodsAnalyzed)
	}
	if got.TrendAnalysis.Revenue == nil {
		t.Error("revenue trend missing")
	}

	if got.FinancialHealth.Score != 76 {
		t.Errorf("health score = %d, want 76", got.FinancialHealth.Score)
	}
	if !got.CreditAssessment.InvestmentGrade {
		t.Error("credit 90 must be investment grade")
	}
}

func TestBuildReport_EmptyHistory(t *testing.T) {
	_, err := BuildReport(ReportInput{TaxID: "12345678", GeneratedAt: reportClock()})
	if !errs.IsValidation(err) {
		t.Fatalf("BuildReport(no history) error = %v, want validation error", err)
	}
}

func TestBuildReport_SinglePeriodSkipsTrends(t *testing.T) {
	got, err := BuildReport(ReportInput{
		TaxID:       "12345678",
		CompanyName: "Alfa SRL",
		History:     []Record{fullRecord()},
		GeneratedAt: reportClock(),
	})
	if err != nil {
		t.Fatalf("BuildReport() error = %v", err)
	}
	if got.TrendAnalysis != nil {
		t.Errorf("trend analysis = %+v, want absent for one period", got.TrendAnalysis)
	}
}

func TestBuildReport_MissingNameAndProfile(t *testing.T) {
	got, err := BuildReport(ReportInput{
		TaxID:       "12345678",
		History:     []Record{fullRecord()},
		GeneratedAt: reportClock(),
	})
	if err != nil {
		t.Fatalf("BuildReport() error = %v", err)
	}

	if got.ExecutiveSummary.CompanyName != "Unknown" {
		t.Errorf("company name = %q, want Unknown", got.ExecutiveSummary.CompanyName)
	}
	want := map[string]string{"note": "Profile data unavailable"}
	if diff := cmp.Diff(want, got.CompanyOverview); diff != "" {
		t.Errorf("overview mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildReport_LatestYearDrivesPosition(t *testing.T) {
	newest := fullRecord()
	older := Record{Year: 2021, Revenue: ptr(500000)}

	// Newest first: assembly must reorder by year, not trust input order.
	got, err := BuildReport(ReportInput{
		TaxID:       "12345678",
		History:     []Record{newest, older},
		GeneratedAt: reportClock(),
	})
	if err != nil {
		t.Fatalf("BuildReport() error = %v", err)
	}
	if got.FinancialPosition.Revenue != 1000000 {
		t.Errorf("position revenue = %v, want the 2023 figure", got.FinancialPosition.Revenue)
	}
}

func TestOverallRecommendation(t *testing.T) {
	tests := []struct {
		health int
		credit int
		want   string
	}{
		{70, 65, "Approved for investment"},
		{65, 60, "Approved for investment"},
		{70, 59, "Requires additional due diligence"},
		{64, 90, "Requires additional due diligence"},
		{50, 0, "Requires additional due diligence"},
		{49, 100, "Not recommended"},
		{0, 0, "Not recommended"},
	}
	for _, tt := range tests {
		if got := overallRecommendation(tt.health, tt.credit); got != tt.want {
			t.Errorf("overallRecommendation(%d, %d) = %q, want %q", tt.health, tt.credit, got, tt.want)
		}
	}
}

func TestBuildDashboard(t *testing.T) {
	rs := Ratios(fullRecord())
	got := buildDashboard(rs)

	if got.Liquidity.Status != "Healthy" {
		t.Errorf("liquidity status = %q, want Healthy", got.Liquidity.Status)
	}
	if got.Liquidity.CurrentRatio == nil || *got.Liquidity.CurrentRatio != 2.0 {
		t.Errorf("dashboard current ratio = %v, want 2.0", got.Liquidity.CurrentRatio)
	}
	// ROE 14.29 sits in the moderate band.
	if got.Profitability.Status != "Moderate" {
		t.Errorf("profitability status = %q, want Moderate", got.Profitability.Status)
	}
	if got.Leverage.Status != "Conservative" {
		t.Errorf("leverage status = %q, want Conservative", got.Leverage.Status)
	}
}

func TestBuildDashboard_EmptyRatiosStillLabeled(t *testing.T) {
	got := buildDashboard(RatioSet{})

	if got.Liquidity.Status != "Concerning" {
		t.Errorf("liquidity status = %q, want Concerning", got.Liquidity.Status)
	}
	if got.Profitability.Status != "Weak" {
		t.Errorf("profitability status = %q, want Weak", got.Profitability.Status)
	}
	if got.Leverage.Status != "Conservative" {
		t.Errorf("leverage status = %q, want Conservative", got.Leverage.Status)
	}
	if got.Liquidity.CurrentRatio != nil {
		t.Errorf("current ratio = %v, want nil passthrough", got.Liquidity.CurrentRatio)
	}
}

func TestBuildSWOT(t *testing.T) {
	tests := []struct {
		name           string
		rs             RatioSet
		wantStrengths  []string
		wantWeaknesses []string
	}{
		{
			"strong company",
			ratioSetWith(ptr(2.0), ptr(12.0), nil, ptr(0.5), nil, nil),
			[]string{"Strong liquidity position", "Excellent profitability", "Conservative leverage"},
			[]string{},
		},
		{
			"distressed company",
			ratioSetWith(ptr(0.5), ptr(-5.0), nil, ptr(3.0), nil, nil),
			[]string{},
			[]string{"Liquidity concerns", "Operating losses", "High leverage"},
		},
		{
			"nothing computable",
			RatioSet{},
			[]string{},
			[]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSWOT(tt.rs)
			if diff := cmp.Diff(tt.wantStrengths, got.Strengths); diff != "" {
				t.Errorf("strengths mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantWeaknesses, got.Weaknesses); diff != "" {
				t.Errorf("weaknesses mismatch (-want +got):\n%s", diff)
			}
			wantOpportunities := []string{"Leverage strong metrics for growth", "Optimize capital structure"}
			if diff := cmp.Diff(wantOpportunities, got.Opportunities); diff != "" {
				t.Errorf("opportunities mismatch (-want +got):\n%s", diff)
			}
			wantThreats := []string{"Market competition", "Economic conditions"}
			if diff := cmp.Diff(wantThreats, got.Threats); diff != "" {
				t.Errorf("threats mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
