package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"

	"fintel/internal/finance"
)

// fmtRatio renders an optional ratio with two decimals. Absent values show
// as n/a so the table keeps its shape on sparse filings.
func fmtRatio(v *float64, suffix string) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%s", *v, suffix)
}

// fmtMoney renders an amount from the filings. Registry figures are RON.
func fmtMoney(v float64) string {
	return humanize.Comma(int64(v)) + " RON"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// =============================================================================
// TABLES
// =============================================================================

// RatioTable lays out every computed ratio family.
func RatioTable(rs finance.RatioSet) *Table {
	t := NewTable("Financial Ratios", "Category", "Ratio", "Value")
	t.AddRow("Liquidity", "Current Ratio", fmtRatio(rs.Liquidity.CurrentRatio, ""))
	t.AddRow("", "Quick Ratio", fmtRatio(rs.Liquidity.QuickRatio, ""))
	t.AddRow("", "Cash Ratio", fmtRatio(rs.Liquidity.CashRatio, ""))
	t.AddRow("Profitability", "Gross Margin", fmtRatio(rs.Profitability.GrossProfitMargin, "%"))
	t.AddRow("", "Operating Margin", fmtRatio(rs.Profitability.OperatingProfitMargin, "%"))
	t.AddRow("", "Net Margin", fmtRatio(rs.Profitability.NetProfitMargin, "%"))
	t.AddRow("", "Return on Assets", fmtRatio(rs.Profitability.ROA, "%"))
	t.AddRow("", "Return on Equity", fmtRatio(rs.Profitability.ROE, "%"))
	t.AddRow("Solvency", "Debt to Equity", fmtRatio(rs.Solvency.DebtToEquity, ""))
	t.AddRow("", "Debt to Assets", fmtRatio(rs.Solvency.DebtToAssets, ""))
	t.AddRow("", "Equity Ratio", fmtRatio(rs.Solvency.EquityRatio, ""))
	t.AddRow("", "Interest Coverage", fmtRatio(rs.Solvency.InterestCoverage, "x"))
	t.AddRow("Efficiency", "Asset Turnover", fmtRatio(rs.Efficiency.AssetTurnover, "x"))
	t.AddRow("", "Inventory Turnover", fmtRatio(rs.Efficiency.InventoryTurnover, "x"))
	t.AddRow("", "Receivables Turnover", fmtRatio(rs.Efficiency.ReceivablesTurnover, "x"))
	t.AddRow("", "Days Sales Outstanding", fmtRatio(rs.Efficiency.DaysSalesOutstanding, " days"))
	return t
}

// Scorecard condenses the report's headline verdicts and the latest filed
// position.
func Scorecard(rep finance.Report) *Table {
	t := NewTable("Scorecard", "Metric", "Value")
	t.AddRow("Health Score", fmt.Sprintf("%d/100 (%s)", rep.FinancialHealth.Score, rep.FinancialHealth.Rating))
	t.AddRow("Credit Rating", fmt.Sprintf("%s (%s risk)", rep.CreditAssessment.Rating, rep.CreditAssessment.RiskLevel))
	t.AddRow("Default Probability", rep.CreditAssessment.DefaultProbability)
	t.AddRow("Investment Grade", yesNo(rep.CreditAssessment.InvestmentGrade))
	t.AddRow("Revenue", fmtMoney(rep.FinancialPosition.Revenue))
	t.AddRow("Net Income", fmtMoney(rep.FinancialPosition.NetIncome))
	t.AddRow("Total Assets", fmtMoney(rep.FinancialPosition.TotalAssets))
	return t
}

// BenchmarkTable positions the company's benchmark metrics inside the
// industry percentile bands.
func BenchmarkTable(cmp finance.BenchmarkComparison) *Table {
	t := NewTable(fmt.Sprintf("Industry Position (%s)", cmp.Industry),
		"Metric", "Company", "P25", "Median", "P75", "Position")

	add := func(name string, v *float64, b finance.BenchmarkStats, key string) {
		t.AddRow(name, fmtRatio(v, ""),
			fmt.Sprintf("%.2f", b.P25),
			fmt.Sprintf("%.2f", b.Median),
			fmt.Sprintf("%.2f", b.P75),
			cmp.RelativePosition[key])
	}
	add("Current Ratio", cmp.CompanyMetrics.Liquidity.CurrentRatio, cmp.IndustryBenchmarks.CurrentRatio, "liquidity")
	add("Net Margin", cmp.CompanyMetrics.Profitability.NetProfitMargin, cmp.IndustryBenchmarks.NetProfitMargin, "profitability")
	add("Return on Equity", cmp.CompanyMetrics.Profitability.ROE, cmp.IndustryBenchmarks.ROE, "returns")
	add("Debt to Equity", cmp.CompanyMetrics.Solvency.DebtToEquity, cmp.IndustryBenchmarks.DebtToEquity, "leverage")
	return t
}

// =============================================================================
// NARRATIVE
// =============================================================================

// ReportMarkdown writes the narrative sections of a report as Markdown for
// the terminal renderer.
func ReportMarkdown(rep finance.Report) string {
	var b strings.Builder

	b.WriteString("## Executive Summary\n\n")
	fmt.Fprintf(&b, "%s\n\n", rep.ExecutiveSummary.KeyFinding)
	fmt.Fprintf(&b, "**Recommendation:** %s\n\n", rep.ExecutiveSummary.Recommendation)

	if len(rep.SWOT.Strengths) > 0 {
		b.WriteString("## Strengths\n\n")
		for _, s := range rep.SWOT.Strengths {
			fmt.Fprintf(&b, "- %s\n", s)
		}
		b.WriteString("\n")
	}
	if len(rep.SWOT.Weaknesses) > 0 {
		b.WriteString("## Weaknesses\n\n")
		for _, w := range rep.SWOT.Weaknesses {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	if tr := rep.TrendAnalysis; tr != nil {
		b.WriteString("## Trends\n\n")
		if tr.Revenue != nil {
			fmt.Fprintf(&b, "- Revenue: %s (%.1f%% YoY)\n", tr.Revenue.Direction, tr.Revenue.YoYGrowth)
		}
		if tr.NetIncome != nil {
			fmt.Fprintf(&b, "- Net income: %s (%.1f%% YoY)\n", tr.NetIncome.Direction, tr.NetIncome.YoYGrowth)
		}
		if tr.TotalAssets != nil {
			fmt.Fprintf(&b, "- Total assets: %s (%.1f%% YoY)\n", tr.TotalAssets.Direction, tr.TotalAssets.YoYGrowth)
		}
		b.WriteString("\n")
	}

	if len(rep.CreditAssessment.Recommendations) > 0 {
		b.WriteString("## Credit Recommendations\n\n")
		for _, r := range rep.CreditAssessment.Recommendations {
			fmt.Fprintf(&b, "- %s\n", r)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// Markdown renders Markdown for the terminal. When the renderer cannot be
// built or fails, the source text is returned unchanged.
func Markdown(src string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return src
	}
	out, err := r.Render(src)
	if err != nil {
		return src
	}
	return out
}
