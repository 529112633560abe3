package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"fintel/internal/cui"
	"fintel/internal/finance"
	"fintel/internal/targetare"
)

// ============================================================================
// TOOL REGISTRATION
// ============================================================================

func (s *Server) registerSearchTools() {
	findTool := mcp.NewTool("find_company_cui_by_name",
		mcp.WithDescription("[SEARCH] Find a Romanian company's CUI by searching official sources. Essential first step when only the company name is known."),
		mcp.WithString("company_name", mcp.Required(), mcp.Description("Full company name (e.g., 'Dedeman SRL')")),
		mcp.WithNumber("max_results", mcp.Description("Maximum candidates to return (default: 5)")),
	)
	s.addTool(findTool, s.handleFindCompany)
}

func (s *Server) registerCompanyTools() {
	profileTool := mcp.NewTool("get_company_profile",
		mcp.WithDescription("[CORE] Get the company registration profile for context in financial analysis"),
		mcp.WithString("tax_id", mcp.Required(), mcp.Description("Romanian company tax ID (CUI/CIF), e.g. '12345678' or 'RO12345678'")),
	)
	s.addTool(profileTool, s.handleCompanyProfile)

	financialsTool := mcp.NewTool("get_company_financials",
		mcp.WithDescription("[CORE] Get raw multi-year financial statements from the official registry"),
		mcp.WithString("tax_id", mcp.Required(), mcp.Description("Romanian company tax ID (CUI/CIF)")),
	)
	s.addTool(financialsTool, s.handleCompanyFinancials)

	phonesTool := mcp.NewTool("get_company_phones",
		mcp.WithDescription("[REGISTRY] Get company phone numbers"),
		mcp.WithString("tax_id", mcp.Required(), mcp.Description("Romanian company tax ID (CUI/CIF)")),
	)
	s.addTool(phonesTool, s.handleCompanyPhones)

	emailsTool := mcp.NewTool("get_company_emails",
		mcp.WithDescription("[REGISTRY] Get company email addresses"),
		mcp.WithString("tax_id", mcp.Required(), mcp.Description("Romanian company tax ID (CUI/CIF)")),
	)
	s.addTool(emailsTool, s.handleCompanyEmails)

	administratorsTool := mcp.NewTool("get_company_administrators",
		mcp.WithDescription("[REGISTRY] Get company administrators and their roles"),
		mcp.WithString("tax_id", mcp.Required(), mcp.Description("Romanian company tax ID (CUI/CIF)")),
	)
	s.addTool(administratorsTool, s.handleCompanyAdministrators)

	websitesTool := mcp.NewTool("get_company_websites",
		mcp.WithDescription("[REGISTRY] Get company website addresses"),
		mcp.WithString("tax_id", mcp.Required(), mcp.Description("Romanian company tax ID (CUI/CIF)")),
	)
	s.addTool(websitesTool, s.handleCompanyWebsites)

	registeredTool := mcp.NewTool("search_companies_by_registration_date",
		mcp.WithDescription("[REGISTRY] List companies registered on a specific date"),
		mcp.WithString("registration_date", mcp.Required(), mcp.Description("Registration date in YYYY-MM-DD format")),
	)
	s.addTool(registeredTool, s.handleRegisteredOn)
}

// ============================================================================
// ENVELOPE PAYLOADS
// ============================================================================

type companyMatch struct {
	CUI        string `json:"cui"`
	Confidence string `json:"confidence"`
	Source     string `json:"source"`
	NextStep   string `json:"next_step"`
}

type companySearch struct {
	CompanyName     string          `json:"company_name"`
	CandidatesFound int             `json:"candidates_found"`
	Candidates      []cui.Candidate `json:"candidates"`
	BestMatch       companyMatch    `json:"best_match"`
}

type financialHistory struct {
	TaxID          string           `json:"tax_id"`
	YearsAvailable int              `json:"years_available"`
	Records        []finance.Record `json:"financial_data"`
}

type phoneList struct {
	TaxID  string   `json:"tax_id"`
	Total  int      `json:"total"`
	Phones []string `json:"phones"`
}

type emailList struct {
	TaxID  string   `json:"tax_id"`
	Total  int      `json:"total"`
	Emails []string `json:"emails"`
}

type websiteList struct {
	TaxID    string   `json:"tax_id"`
	Total    int      `json:"total"`
	Websites []string `json:"websites"`
}

type administratorList struct {
	TaxID          string                    `json:"tax_id"`
	Total          int                       `json:"total"`
	Administrators []targetare.Administrator `json:"administrators"`
}

type registrationMatches struct {
	RegistrationDate string                     `json:"registration_date"`
	Total            int                        `json:"total"`
	Companies        []targetare.CompanyProfile `json:"companies"`
}

// ============================================================================
// HANDLERS
// ============================================================================

// taxIDArg extracts and normalizes the tax_id argument. Every registry
// identifier is validated at the rim before any service call.
func taxIDArg(request mcp.CallToolRequest) (string, error) {
	raw, err := request.RequireString("tax_id")
	if err != nil {
		return "", err
	}
	return cui.Normalize(raw)
}

func (s *Server) handleFindCompany(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("company_name")
	if err != nil {
		return errorResult(err), nil
	}
	limit := request.GetInt("max_results", 5)

	candidates, err := s.svc.FindCompany(ctx, name, limit)
	if err != nil {
		return errorResult(err), nil
	}

	best := candidates[0]
	data := companySearch{
		CompanyName:     name,
		CandidatesFound: len(candidates),
		Candidates:      candidates,
		BestMatch: companyMatch{
			CUI:        best.CUI,
			Confidence: best.Confidence.Label(),
			Source:     best.Source,
			NextStep:   fmt.Sprintf("Use get_company_financials(tax_id='%s') for financial analysis", best.CUI),
		},
	}
	return successResult(fmt.Sprintf("Found CUI: %s (%s confidence)", best.CUI, best.Confidence.Label()), data), nil
}

func (s *Server) handleCompanyProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := taxIDArg(request)
	if err != nil {
		return errorResult(err), nil
	}

	profile, err := s.svc.Profile(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(fmt.Sprintf("Company profile retrieved for CUI %s", id), profile), nil
}

func (s *Server) handleCompanyFinancials(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := taxIDArg(request)
	if err != nil {
		return errorResult(err), nil
	}

	records, err := s.svc.Financials(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	data := financialHistory{TaxID: id, YearsAvailable: len(records), Records: records}
	return successResult(fmt.Sprintf("Financial data retrieved for CUI %s", id), data), nil
}

// stringFacet runs the shared extract-normalize-fetch sequence for the
// tools that return a plain string list.
func (s *Server) stringFacet(ctx context.Context, request mcp.CallToolRequest, fetch func(context.Context, string) ([]string, error)) (string, []string, *mcp.CallToolResult) {
	id, err := taxIDArg(request)
	if err != nil {
		return "", nil, errorResult(err)
	}
	values, err := fetch(ctx, id)
	if err != nil {
		return "", nil, errorResult(err)
	}
	return id, values, nil
}

func (s *Server) handleCompanyPhones(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, phones, fail := s.stringFacet(ctx, request, s.svc.Phones)
	if fail != nil {
		return fail, nil
	}
	return successResult("Phone numbers retrieved", phoneList{TaxID: id, Total: len(phones), Phones: phones}), nil
}

func (s *Server) handleCompanyEmails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, emails, fail := s.stringFacet(ctx, request, s.svc.Emails)
	if fail != nil {
		return fail, nil
	}
	return successResult("Email addresses retrieved", emailList{TaxID: id, Total: len(emails), Emails: emails}), nil
}

func (s *Server) handleCompanyWebsites(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, websites, fail := s.stringFacet(ctx, request, s.svc.Websites)
	if fail != nil {
		return fail, nil
	}
	return successResult("Website information retrieved", websiteList{TaxID: id, Total: len(websites), Websites: websites}), nil
}

func (s *Server) handleCompanyAdministrators(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := taxIDArg(request)
	if err != nil {
		return errorResult(err), nil
	}

	administrators, err := s.svc.Administrators(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	data := administratorList{TaxID: id, Total: len(administrators), Administrators: administrators}
	return successResult("Administrators retrieved", data), nil
}

func (s *Server) handleRegisteredOn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := request.RequireString("registration_date")
	if err != nil {
		return errorResult(err), nil
	}

	companies, err := s.svc.RegisteredOn(ctx, date)
	if err != nil {
		return errorResult(err), nil
	}
	data := registrationMatches{RegistrationDate: date, Total: len(companies), Companies: companies}
	return successResult(fmt.Sprintf("Companies registered on %s", date), data), nil
}
