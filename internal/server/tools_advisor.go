package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerAdvisorTools() {
	reportTool := mcp.NewTool("ai_company_report",
		mcp.WithDescription("[AI] Generate a model-written business intelligence report for a company"),
		mcp.WithString("tax_id", mcp.Required(), mcp.Description("Romanian company tax ID (CUI/CIF)")),
	)
	s.addTool(reportTool, s.handleCompanyReport)

	riskTool := mcp.NewTool("ai_risk_assessment",
		mcp.WithDescription("[AI] Assess company risk factors with a model-written summary"),
		mcp.WithString("tax_id", mcp.Required(), mcp.Description("Romanian company tax ID (CUI/CIF)")),
	)
	s.addTool(riskTool, s.handleRiskAssessment)
}

func (s *Server) handleCompanyReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := taxIDArg(request)
	if err != nil {
		return errorResult(err), nil
	}

	report, err := s.svc.CompanyReport(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult("Comprehensive report generated", report), nil
}

func (s *Server) handleRiskAssessment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := taxIDArg(request)
	if err != nil {
		return errorResult(err), nil
	}

	assessment, err := s.svc.RiskAssessment(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult("Risk assessment completed", assessment), nil
}
