package finance

import (
	"fmt"
	"time"

	"fintel/internal/errs"
)

// =============================================================================
// COMPREHENSIVE REPORT ASSEMBLY
// =============================================================================
// Folds every analysis over one company into a single executive-level
// report: position snapshot, full ratio analysis, health and credit
// verdicts, trends when history allows, a metrics dashboard, and a SWOT
// sketch.

// ReportType identifies the report schema in the envelope.
const ReportType = "comprehensive_financial_intelligence"

// ReportInput carries everything the assembly needs; the caller supplies
// the clock and any profile payload it fetched.
type ReportInput struct {
	TaxID       string
	CompanyName string
	Overview    any
	History     []Record
	GeneratedAt time.Time
}

// Report is the assembled financial intelligence document.
type Report struct {
	ReportType        string            `json:"report_type"`
	TaxID             string            `json:"tax_id"`
	GeneratedAt       time.Time         `json:"generated_at"`
	ExecutiveSummary  ExecutiveSummary  `json:"executive_summary"`
	CompanyOverview   any               `json:"company_overview"`
	FinancialPosition FinancialPosition `json:"financial_position"`
	RatioAnalysis     RatioSet          `json:"ratio_analysis"`
	FinancialHealth   HealthScore       `json:"financial_health"`
	CreditAssessment  CreditAssessment  `json:"credit_assessment"`
	TrendAnalysis     *TrendSeries      `json:"trend_analysis,omitempty"`
	Dashboard         Dashboard         `json:"key_metrics_dashboard"`
	SWOT              SWOT              `json:"strengths_and_weaknesses"`
}

// ExecutiveSummary is the report's headline block.
type ExecutiveSummary struct {
	CompanyName    string `json:"company_name"`
	HealthScore    int    `json:"financial_health_score"`
	HealthRating   string `json:"financial_health_rating"`
	CreditScore    int    `json:"credit_score"`
	CreditRating   string `json:"credit_rating"`
	KeyFinding     string `json:"key_finding"`
	Recommendation string `json:"recommendation"`
}

// FinancialPosition snapshots the latest filed headline figures.
type FinancialPosition struct {
	Revenue     float64 `json:"revenue"`
	NetIncome   float64 `json:"net_income"`
	TotalAssets float64 `json:"total_assets"`
	TotalEquity float64 `json:"total_equity"`
	TotalDebt   float64 `json:"total_debt"`
}

// Dashboard condenses the three metrics an executive scans first.
type Dashboard struct {
	Liquidity     DashboardLiquidity     `json:"liquidity"`
	Profitability DashboardProfitability `json:"profitability"`
	Leverage      DashboardLeverage      `json:"leverage"`
}

// DashboardLiquidity labels the current ratio.
type DashboardLiquidity struct {
	CurrentRatio *float64 `json:"current_ratio"`
	Status       string   `json:"status"`
}

// DashboardProfitability labels margin and returns.
type DashboardProfitability struct {
	NetMarginPct *float64 `json:"net_margin_pct"`
	ROEPct       *float64 `json:"roe_pct"`
	Status       string   `json:"status"`
}

// DashboardLeverage labels the capital structure.
type DashboardLeverage struct {
	DebtToEquity *float64 `json:"debt_to_equity"`
	Status       string   `json:"status"`
}

// SWOT is the strengths/weaknesses sketch. Opportunities and threats are
// generic prompts for the analyst, not computed.
type SWOT struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
}

// BuildReport assembles the full report from a company's history. At
// least one financial record is required; trend analysis appears only
// with two or more.
func BuildReport(in ReportInput) (Report, error) {
	history := sortedByYear(in.History)
	if len(history) == 0 {
		return Report{}, errs.Validationf("at least one financial record is required")
	}
	latest := history[len(history)-1]

	rs := Ratios(latest)
	health := Health(rs)
	credit := Credit(rs)

	name := in.CompanyName
	if name == "" {
		name = "Unknown"
	}

	report := Report{
		ReportType:  ReportType,
		TaxID:       in.TaxID,
		GeneratedAt: in.GeneratedAt,
		ExecutiveSummary: ExecutiveSummary{
			CompanyName:    name,
			HealthScore:    health.Score,
			HealthRating:   health.Rating,
			CreditScore:    credit.Score,
			CreditRating:   credit.Rating,
			KeyFinding:     keyFinding(health),
			Recommendation: overallRecommendation(health.Score, credit.Score),
		},
		CompanyOverview: in.Overview,
		FinancialPosition: FinancialPosition{
			Revenue:     val(latest.Revenue),
			NetIncome:   val(latest.NetIncome),
			TotalAssets: val(latest.TotalAssets),
			TotalEquity: val(latest.TotalEquity),
			TotalDebt:   val(latest.TotalDebt),
		},
		RatioAnalysis:    rs,
		FinancialHealth:  health,
		CreditAssessment: credit,
		Dashboard:        buildDashboard(rs),
		SWOT:             buildSWOT(rs),
	}

	if report.CompanyOverview == nil {
		report.CompanyOverview = map[string]string{"note": "Profile data unavailable"}
	}

	if len(history) >= 2 {
		if trends, err := Trends(history); err == nil {
			report.TrendAnalysis = &trends
		}
	}

	return report, nil
}

func keyFinding(health HealthScore) string {
	return fmt.Sprintf("Financial health rated as %s with score of %d/100", health.Rating, health.Score)
}

// overallRecommendation requires both verdicts to clear their bars before
// approving: health alone is not a lending decision.
func overallRecommendation(healthScore, creditScore int) string {
	switch {
	case healthScore >= 65 && creditScore >= investmentGradeFloor:
		return "Approved for investment"
	case healthScore >= 50:
		return "Requires additional due diligence"
	default:
		return "Not recommended"
	}
}

// buildDashboard labels the three headline metrics, reading an absent
// ratio as zero so the dashboard always shows a status.
func buildDashboard(rs RatioSet) Dashboard {
	var liqStatus string
	switch cr := val(rs.Liquidity.CurrentRatio); {
	case cr >= 1.5:
		liqStatus = "Healthy"
	case cr >= 1.0:
		liqStatus = "Adequate"
	default:
		liqStatus = "Concerning"
	}

	var profStatus string
	switch roe := val(rs.Profitability.ROE); {
	case roe >= 15:
		profStatus = "Strong"
	case roe >= 10:
		profStatus = "Moderate"
	default:
		profStatus = "Weak"
	}

	var levStatus string
	switch dte := val(rs.Solvency.DebtToEquity); {
	case dte <= 1.0:
		levStatus = "Conservative"
	case dte <= 2.0:
		levStatus = "Moderate"
	default:
		levStatus = "Aggressive"
	}

	return Dashboard{
		Liquidity: DashboardLiquidity{
			CurrentRatio: rs.Liquidity.CurrentRatio,
			Status:       liqStatus,
		},
		Profitability: DashboardProfitability{
			NetMarginPct: rs.Profitability.NetProfitMargin,
			ROEPct:       rs.Profitability.ROE,
			Status:       profStatus,
		},
		Leverage: DashboardLeverage{
			DebtToEquity: rs.Solvency.DebtToEquity,
			Status:       levStatus,
		},
	}
}

func buildSWOT(rs RatioSet) SWOT {
	swot := SWOT{
		Strengths:     []string{},
		Weaknesses:    []string{},
		Opportunities: []string{"Leverage strong metrics for growth", "Optimize capital structure"},
		Threats:       []string{"Market competition", "Economic conditions"},
	}

	if cr := rs.Liquidity.CurrentRatio; cr != nil {
		if *cr >= 1.5 {
			swot.Strengths = append(swot.Strengths, "Strong liquidity position")
		} else if *cr < 1.0 {
			swot.Weaknesses = append(swot.Weaknesses, "Liquidity concerns")
		}
	}
	if npm := rs.Profitability.NetProfitMargin; npm != nil {
		if *npm >= 10 {
			swot.Strengths = append(swot.Strengths, "Excellent profitability")
		} else if *npm < 0 {
			swot.Weaknesses = append(swot.Weaknesses, "Operating losses")
		}
	}
	if dte := rs.Solvency.DebtToEquity; dte != nil {
		if *dte <= 1.0 {
			swot.Strengths = append(swot.Strengths, "Conservative leverage")
		} else if *dte > 2.0 {
			swot.Weaknesses = append(swot.Weaknesses, "High leverage")
		}
	}

	return swot
}
