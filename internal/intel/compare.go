package intel

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"fintel/internal/cui"
	"fintel/internal/errs"
	"fintel/internal/finance"
	"fintel/internal/logging"
	"fintel/internal/targetare"
)

// ComparisonFailure records why one requested company was left out of a
// comparison.
type ComparisonFailure struct {
	TaxID  string `json:"tax_id"`
	Reason string `json:"reason"`
}

// PeerComparison is a multi-company comparison. Failures lists companies
// that were requested but could not be included; the comparison itself is
// built from the survivors.
type PeerComparison struct {
	ComparisonDate string `json:"comparison_date"`
	finance.Comparison
	Failures []ComparisonFailure `json:"failed_companies,omitempty"`
}

// ComparePerformance ranks up to ten companies against each other on their
// latest financial year. Every profile and history is fetched in parallel.
// A company missing either its profile or its financials is dropped and
// reported in Failures; the comparison still runs as long as at least two
// companies survive.
func (s *Service) ComparePerformance(ctx context.Context, taxIDs []string) (PeerComparison, error) {
	if len(taxIDs) < finance.MinCompareEntities {
		return PeerComparison{}, errs.Validationf("provide at least %d companies to compare", finance.MinCompareEntities)
	}
	if len(taxIDs) > finance.MaxCompareEntities {
		return PeerComparison{}, errs.Validationf("maximum %d companies allowed for comparison", finance.MaxCompareEntities)
	}

	ids := make([]string, len(taxIDs))
	for i, raw := range taxIDs {
		id, err := cui.Normalize(raw)
		if err != nil {
			return PeerComparison{}, err
		}
		ids[i] = id
	}

	type fetched struct {
		profile targetare.CompanyProfile
		profErr error
		history []finance.Record
		histErr error
	}
	results := make([]fetched, len(ids))

	timer := logging.StartTimer(logging.CategoryMetrics, "compare_performance")
	defer timer.Stop()

	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			results[i].profile, results[i].profErr = s.registry.Profile(ctx, id)
			return nil
		})
		g.Go(func() error {
			results[i].history, results[i].histErr = s.registry.FinancialHistory(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	companies := make([]finance.CompanyFinancials, 0, len(ids))
	var failures []ComparisonFailure
	for i, id := range ids {
		r := results[i]
		switch {
		case r.profErr != nil:
			failures = append(failures, ComparisonFailure{TaxID: id, Reason: r.profErr.Error()})
		case r.histErr != nil:
			failures = append(failures, ComparisonFailure{TaxID: id, Reason: r.histErr.Error()})
		default:
			latest, ok := finance.Latest(r.history)
			if !ok {
				failures = append(failures, ComparisonFailure{TaxID: id, Reason: "no financial records"})
				continue
			}
			companies = append(companies, finance.CompanyFinancials{
				TaxID:  id,
				Name:   r.profile.Name,
				Record: latest,
			})
		}
	}

	if len(companies) < finance.MinCompareEntities {
		return PeerComparison{}, errs.Validationf(
			"could not retrieve financial data for enough companies: %s", joinFailures(failures))
	}

	comparison, err := finance.Compare(companies)
	if err != nil {
		return PeerComparison{}, err
	}
	logging.Metrics("Compared %d companies (%d requested)", len(companies), len(ids))

	return PeerComparison{
		ComparisonDate: analysisDate(),
		Comparison:     comparison,
		Failures:       failures,
	}, nil
}

func joinFailures(failures []ComparisonFailure) string {
	parts := make([]string, len(failures))
	for i, f := range failures {
		parts[i] = f.TaxID + " (" + f.Reason + ")"
	}
	return strings.Join(parts, "; ")
}
