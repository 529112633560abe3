// Package intel orchestrates the upstream clients into the analysis
// operations the tool server exposes. It owns no math of its own: ratio,
// scoring, and benchmark work lives in internal/finance, geospatial work in
// internal/location, and narrative generation in internal/advisor. What this
// package adds is fetching, fan-out, and the composition of their results
// into dated payloads.
package intel

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"fintel/internal/advisor"
	"fintel/internal/cui"
	"fintel/internal/errs"
	"fintel/internal/finance"
	"fintel/internal/location"
	"fintel/internal/logging"
	"fintel/internal/search"
	"fintel/internal/targetare"
)

// DefaultTrendYears bounds trend analysis when the caller does not say how
// far back to look.
const DefaultTrendYears = 3

// Deps carries the clients a Service orchestrates. Registry must be set;
// Finder, Maps, and Advisor may be unconfigured (their operations then
// report their package's not-configured error). A nil Bench falls back to
// the built-in benchmark tables.
type Deps struct {
	Registry *targetare.Client
	Finder   *search.Client
	Maps     *location.Client
	Advisor  *advisor.Advisor
	Bench    *Benchmarks
}

// Service is the analysis facade. All exported methods normalize tax IDs
// before touching the network and return the typed errors from
// internal/errs, so callers can map failures without string matching.
type Service struct {
	registry *targetare.Client
	finder   *search.Client
	maps     *location.Client
	advisor  *advisor.Advisor
	bench    *Benchmarks
}

// New assembles a Service from its dependencies.
func New(d Deps) *Service {
	s := &Service{
		registry: d.Registry,
		finder:   d.Finder,
		maps:     d.Maps,
		advisor:  d.Advisor,
		bench:    d.Bench,
	}
	if s.bench == nil {
		s.bench = NewBenchmarks("")
	}
	return s
}

// analysisDate stamps payloads the same way regardless of host timezone.
func analysisDate() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// =============================================================================
// REGISTRY AND SEARCH PASS-THROUGHS
// =============================================================================

// FindCompany resolves a company name to tax ID candidates via web search.
func (s *Service) FindCompany(ctx context.Context, name string, limit int) ([]cui.Candidate, error) {
	return s.finder.FindCompanyCUI(ctx, name, limit)
}

// Profile fetches the registry profile for a company.
func (s *Service) Profile(ctx context.Context, taxID string) (targetare.CompanyProfile, error) {
	return s.registry.Profile(ctx, taxID)
}

// Financials fetches the multi-year financial history, oldest year first.
func (s *Service) Financials(ctx context.Context, taxID string) ([]finance.Record, error) {
	return s.registry.FinancialHistory(ctx, taxID)
}

// Phones lists the registered phone numbers for a company.
func (s *Service) Phones(ctx context.Context, taxID string) ([]string, error) {
	return s.registry.Phones(ctx, taxID)
}

// Emails lists the registered email addresses for a company.
func (s *Service) Emails(ctx context.Context, taxID string) ([]string, error) {
	return s.registry.Emails(ctx, taxID)
}

// Websites lists the registered websites for a company.
func (s *Service) Websites(ctx context.Context, taxID string) ([]string, error) {
	return s.registry.Websites(ctx, taxID)
}

// Administrators lists the registered administrators for a company.
func (s *Service) Administrators(ctx context.Context, taxID string) ([]targetare.Administrator, error) {
	return s.registry.Administrators(ctx, taxID)
}

// RegisteredOn lists companies first registered on a YYYY-MM-DD date.
func (s *Service) RegisteredOn(ctx context.Context, date string) ([]targetare.CompanyProfile, error) {
	return s.registry.RegisteredOn(ctx, date)
}

// =============================================================================
// SINGLE-COMPANY ANALYSIS
// =============================================================================

// RatioAnalysis is the full ratio breakdown for one company's latest year.
type RatioAnalysis struct {
	TaxID        string              `json:"tax_id"`
	AnalysisDate string              `json:"analysis_date"`
	Ratios       finance.RatioSet    `json:"ratios"`
	Health       finance.HealthScore `json:"financial_health"`
	finance.RatioInsights
}

// AnalyzeRatios computes liquidity, profitability, solvency, and efficiency
// ratios from the most recent financial year, plus the composite health
// score and its qualitative reading.
func (s *Service) AnalyzeRatios(ctx context.Context, taxID string) (RatioAnalysis, error) {
	id, latest, err := s.latestRecord(ctx, taxID)
	if err != nil {
		return RatioAnalysis{}, err
	}

	ratios := finance.Ratios(latest)
	health := finance.Health(ratios)
	logging.Metrics("Ratio analysis for %s: health %d/100 (%s)", id, health.Score, health.Rating)

	return RatioAnalysis{
		TaxID:         id,
		AnalysisDate:  analysisDate(),
		Ratios:        ratios,
		Health:        health,
		RatioInsights: finance.Insights(ratios),
	}, nil
}

// CreditRisk is a credit assessment stamped with when it was made.
type CreditRisk struct {
	TaxID          string `json:"tax_id"`
	AssessmentDate string `json:"assessment_date"`
	finance.CreditAssessment
}

// AssessCredit scores creditworthiness from the latest financial year.
func (s *Service) AssessCredit(ctx context.Context, taxID string) (CreditRisk, error) {
	id, latest, err := s.latestRecord(ctx, taxID)
	if err != nil {
		return CreditRisk{}, err
	}

	assessment := finance.Credit(finance.Ratios(latest))
	logging.Metrics("Credit assessment for %s: %s (%s risk)", id, assessment.Rating, assessment.RiskLevel)

	return CreditRisk{
		TaxID:            id,
		AssessmentDate:   analysisDate(),
		CreditAssessment: assessment,
	}, nil
}

// TrendAnalysis bundles growth trends with the year-by-year ratio evolution.
type TrendAnalysis struct {
	TaxID           string                           `json:"tax_id"`
	AnalysisDate    string                           `json:"analysis_date"`
	PeriodsAnalyzed int                              `json:"periods_analyzed"`
	Trends          finance.TrendSeries              `json:"trends"`
	RatioEvolution  map[string]finance.RatioSnapshot `json:"ratio_evolution"`
	Summary         finance.TrendSummary             `json:"summary"`
	Insights        []string                         `json:"insights"`
}

// AnalyzeTrends studies the last years annual records (default three, the
// whole history when shorter). Fewer than two usable periods is a
// validation failure because growth rates need a comparison point.
func (s *Service) AnalyzeTrends(ctx context.Context, taxID string, years int) (TrendAnalysis, error) {
	id, history, err := s.history(ctx, taxID)
	if err != nil {
		return TrendAnalysis{}, err
	}

	if years <= 0 {
		years = DefaultTrendYears
	}
	if len(history) > years {
		history = history[len(history)-years:]
	}

	series, err := finance.Trends(history)
	if err != nil {
		return TrendAnalysis{}, err
	}
	logging.Metrics("Trend analysis for %s: %d periods", id, series.PeriodsAnalyzed)

	return TrendAnalysis{
		TaxID:           id,
		AnalysisDate:    analysisDate(),
		PeriodsAnalyzed: series.PeriodsAnalyzed,
		Trends:          series,
		RatioEvolution:  finance.RatioEvolution(history),
		Summary:         series.Summary(),
		Insights:        finance.TrendInsights(series),
	}, nil
}

// Report assembles the comprehensive financial intelligence report. The
// profile and the financial history are fetched in parallel; a missing
// profile degrades the overview section, while missing financials fail the
// report outright.
func (s *Service) Report(ctx context.Context, taxID string) (finance.Report, error) {
	id, err := cui.Normalize(taxID)
	if err != nil {
		return finance.Report{}, err
	}

	timer := logging.StartTimer(logging.CategoryMetrics, "comprehensive_report")
	defer timer.Stop()

	var (
		g       errgroup.Group
		profile targetare.CompanyProfile
		profErr error
		history []finance.Record
		histErr error
	)
	g.Go(func() error {
		profile, profErr = s.registry.Profile(ctx, id)
		return nil
	})
	g.Go(func() error {
		history, histErr = s.registry.FinancialHistory(ctx, id)
		return nil
	})
	_ = g.Wait()

	if histErr != nil {
		return finance.Report{}, histErr
	}
	if len(history) == 0 {
		return finance.Report{}, &errs.NotFoundError{Resource: "financial data", ID: id}
	}

	input := finance.ReportInput{
		TaxID:       id,
		History:     history,
		GeneratedAt: time.Now().UTC(),
	}
	if profErr == nil {
		input.CompanyName = profile.Name
		input.Overview = profile
	} else {
		logging.MetricsWarn("Report for %s proceeds without profile: %v", id, profErr)
	}
	return finance.BuildReport(input)
}

// IndustryBenchmark positions one company against its industry's tables.
type IndustryBenchmark struct {
	TaxID        string `json:"tax_id"`
	AnalysisDate string `json:"analysis_date"`
	finance.BenchmarkComparison
}

// BenchmarkIndustry compares the latest-year ratios against the current
// benchmark tables. An empty industry falls back to the finance package
// default; an unknown one is a validation failure listing the valid names.
func (s *Service) BenchmarkIndustry(ctx context.Context, taxID, industry string) (IndustryBenchmark, error) {
	id, latest, err := s.latestRecord(ctx, taxID)
	if err != nil {
		return IndustryBenchmark{}, err
	}

	comparison, err := finance.CompareToIndustry(finance.Ratios(latest), industry, s.bench.Current())
	if err != nil {
		return IndustryBenchmark{}, err
	}
	logging.Metrics("Benchmarked %s against %s", id, comparison.Industry)

	return IndustryBenchmark{
		TaxID:               id,
		AnalysisDate:        analysisDate(),
		BenchmarkComparison: comparison,
	}, nil
}

// history normalizes the tax ID and fetches the financial history, turning
// an empty history into a NotFoundError so callers see one failure mode.
func (s *Service) history(ctx context.Context, taxID string) (string, []finance.Record, error) {
	id, err := cui.Normalize(taxID)
	if err != nil {
		return "", nil, err
	}
	history, err := s.registry.FinancialHistory(ctx, id)
	if err != nil {
		return "", nil, err
	}
	if len(history) == 0 {
		return "", nil, &errs.NotFoundError{Resource: "financial data", ID: id}
	}
	return id, history, nil
}

// latestRecord is history narrowed to the most recent year.
func (s *Service) latestRecord(ctx context.Context, taxID string) (string, finance.Record, error) {
	id, history, err := s.history(ctx, taxID)
	if err != nil {
		return "", finance.Record{}, err
	}
	latest, ok := finance.Latest(history)
	if !ok {
		return "", finance.Record{}, &errs.NotFoundError{Resource: "financial data", ID: id}
	}
	return id, latest, nil
}
