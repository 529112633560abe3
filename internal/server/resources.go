package server

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerResources() {
	info := mcp.NewResource("config://server-info", "Server Info",
		mcp.WithResourceDescription("Server configuration and capabilities"),
		mcp.WithMIMEType("application/json"),
	)
	s.mcp.AddResource(info, s.handleServerInfo)

	guide := mcp.NewResource("docs://analysis-guide", "Analysis Guide",
		mcp.WithResourceDescription("Guide to the ratio families, score rubrics, and analysis workflows"),
		mcp.WithMIMEType("text/markdown"),
	)
	s.mcp.AddResource(guide, s.handleAnalysisGuide)
}

type serverInfo struct {
	ServerName     string            `json:"server_name"`
	Version        string            `json:"version"`
	Transport      string            `json:"transport"`
	Specialization string            `json:"specialization"`
	TotalTools     int               `json:"total_tools"`
	ToolCategories map[string]int    `json:"tool_categories"`
	Upstreams      map[string]string `json:"upstream_base_urls"`
	Capabilities   map[string]bool   `json:"capabilities"`
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	info := serverInfo{
		ServerName:     s.cfg.Name,
		Version:        s.cfg.Version,
		Transport:      s.cfg.Server.Transport,
		Specialization: "Romanian Company Financial Intelligence",
		TotalTools:     s.tools,
		ToolCategories: map[string]int{
			"company_search":        1,
			"core_financial_data":   7,
			"financial_analysis":    6,
			"location_intelligence": 7,
			"ai_advisory":           2,
		},
		Upstreams: map[string]string{
			"registry": s.cfg.Targetare.BaseURL,
			"search":   s.cfg.Search.BaseURL,
			"maps":     s.cfg.Maps.BaseURL,
		},
		Capabilities: map[string]bool{
			"company_lookup":        s.cfg.HasSearch(),
			"location_intelligence": s.cfg.HasMaps(),
			"ai_advisory":           s.cfg.HasGenAI(),
		},
	}

	body, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "config://server-info",
			MIMEType: "application/json",
			Text:     string(body),
		},
	}, nil
}

const analysisGuide = `# Financial Analysis Guide

## Ratio families

Every analysis computes four fixed families. A ratio is omitted (null) when
its denominator is non-positive or an input field is missing; null is never
reported as zero.

- **Liquidity** - current ratio, quick ratio, cash ratio.
- **Profitability** - gross/operating/net margin, ROA, ROE.
- **Solvency** - debt-to-equity, debt-to-assets, equity ratio,
  interest coverage.
- **Efficiency** - asset turnover, inventory turnover, receivables
  turnover, days sales outstanding.

## Health score

Ratios earn points against fixed bands and the total is normalized to 0-100
over the bands that could be evaluated. Ratings: Excellent (80+), Good (65+),
Fair (50+), Poor (35+), Critical (below 35).

## Credit score

An independent 0-100 rubric over liquidity, profitability, leverage, and
scale, mapped to letter ratings AAA through D with a default-probability band
and an investment-grade flag. Risk factors list every rubric component that
lost points.

## Typical workflows

### Complete financial analysis

1. find_company_cui_by_name(company_name='Target Company SRL')
2. Extract the CUI from best_match
3. generate_financial_report(tax_id=extracted_cui)
4. analyze_financial_ratios(tax_id=extracted_cui) for detailed metrics
5. assess_credit_risk(tax_id=extracted_cui) for creditworthiness

### Competitive analysis

1. Find CUIs for all target companies
2. compare_financial_performance(tax_ids=[cui1, cui2, cui3])
3. benchmark_against_industry(tax_id=cui1) for each company

### Site assessment

1. geocode_address(address='...') for the candidate site
2. analyze_competitor_density(latitude, longitude, business_type='...')
3. calculate_accessibility_score(latitude, longitude)
4. get_travel_matrix(origins=[...], destinations=[...]) for reach

All tools return a JSON envelope: status, message, data, timestamp, and a
trace id. Errors carry the triggering condition in the message.
`

func (s *Server) handleAnalysisGuide(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "docs://analysis-guide",
			MIMEType: "text/markdown",
			Text:     analysisGuide,
		},
	}, nil
}
