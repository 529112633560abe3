package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"fintel/internal/intel"
)

func (s *Server) registerAnalysisTools() {
	ratiosTool := mcp.NewTool("analyze_financial_ratios",
		mcp.WithDescription("[ANALYSIS] Calculate comprehensive financial ratios and the health score"),
		mcp.WithString("tax_id", mcp.Required(), mcp.Description("Romanian company tax ID (CUI/CIF)")),
	)
	s.addTool(ratiosTool, s.handleAnalyzeRatios)

	compareTool := mcp.NewTool("compare_financial_performance",
		mcp.WithDescription("[ANALYSIS] Compare financial performance across multiple companies"),
		mcp.WithArray("tax_ids", mcp.Required(), mcp.Description("2 to 10 Romanian tax IDs to compare"), mcp.WithStringItems()),
	)
	s.addTool(compareTool, s.handleComparePerformance)

	creditTool := mcp.NewTool("assess_credit_risk",
		mcp.WithDescription("[ANALYSIS] Assess credit risk and financial stability"),
		mcp.WithString("tax_id", mcp.Required(), mcp.Description("Romanian company tax ID (CUI/CIF)")),
	)
	s.addTool(creditTool, s.handleAssessCredit)

	trendsTool := mcp.NewTool("analyze_financial_trends",
		mcp.WithDescription("[ANALYSIS] Analyze financial trends over time"),
		mcp.WithString("tax_id", mcp.Required(), mcp.Description("Romanian company tax ID (CUI/CIF)")),
		mcp.WithNumber("years", mcp.Description("Number of most recent years to analyze (default: 3)")),
	)
	s.addTool(trendsTool, s.handleAnalyzeTrends)

	reportTool := mcp.NewTool("generate_financial_report",
		mcp.WithDescription("[ANALYSIS] Generate a comprehensive financial intelligence report"),
		mcp.WithString("tax_id", mcp.Required(), mcp.Description("Romanian company tax ID (CUI/CIF)")),
	)
	s.addTool(reportTool, s.handleGenerateReport)

	benchmarkTool := mcp.NewTool("benchmark_against_industry",
		mcp.WithDescription("[ANALYSIS] Benchmark company performance against industry percentiles"),
		mcp.WithString("tax_id", mcp.Required(), mcp.Description("Romanian company tax ID (CUI/CIF)")),
		mcp.WithString("industry", mcp.Description("Industry table to benchmark against, e.g. 'retail', 'manufacturing', 'services' (default: manufacturing)")),
	)
	s.addTool(benchmarkTool, s.handleBenchmarkIndustry)
}

func (s *Server) handleAnalyzeRatios(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := taxIDArg(request)
	if err != nil {
		return errorResult(err), nil
	}

	analysis, err := s.svc.AnalyzeRatios(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	message := fmt.Sprintf("Financial ratio analysis completed - Health Score: %d/100 (%s)",
		analysis.Health.Score, analysis.Health.Rating)
	return successResult(message, analysis), nil
}

func (s *Server) handleComparePerformance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids := request.GetStringSlice("tax_ids", nil)

	comparison, err := s.svc.ComparePerformance(ctx, ids)
	if err != nil {
		return errorResult(err), nil
	}
	message := fmt.Sprintf("Compared %d companies successfully", comparison.CompaniesCompared)
	return successResult(message, comparison), nil
}

func (s *Server) handleAssessCredit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := taxIDArg(request)
	if err != nil {
		return errorResult(err), nil
	}

	risk, err := s.svc.AssessCredit(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	message := fmt.Sprintf("Credit assessment: %s rating (%s risk)", risk.Rating, risk.RiskLevel)
	return successResult(message, risk), nil
}

func (s *Server) handleAnalyzeTrends(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := taxIDArg(request)
	if err != nil {
		return errorResult(err), nil
	}
	years := request.GetInt("years", intel.DefaultTrendYears)

	trends, err := s.svc.AnalyzeTrends(ctx, id, years)
	if err != nil {
		return errorResult(err), nil
	}
	message := fmt.Sprintf("Trend analysis completed for %d periods", trends.PeriodsAnalyzed)
	return successResult(message, trends), nil
}

func (s *Server) handleGenerateReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := taxIDArg(request)
	if err != nil {
		return errorResult(err), nil
	}

	report, err := s.svc.Report(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	message := fmt.Sprintf("Comprehensive financial report generated - Health Score: %d/100",
		report.FinancialHealth.Score)
	return successResult(message, report), nil
}

func (s *Server) handleBenchmarkIndustry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := taxIDArg(request)
	if err != nil {
		return errorResult(err), nil
	}
	industry := request.GetString("industry", "")

	benchmark, err := s.svc.BenchmarkIndustry(ctx, id, industry)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult("Industry benchmarking analysis completed", benchmark), nil
}
