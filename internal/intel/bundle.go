package intel

import (
	"context"

	"golang.org/x/sync/errgroup"

	"fintel/internal/advisor"
	"fintel/internal/cui"
	"fintel/internal/errs"
	"fintel/internal/logging"
)

// buildBundle gathers every data facet the advisor prompts on, in parallel.
// Contact facets are best-effort and stay empty on failure; the bundle only
// fails when both the profile and the financial history are unavailable.
func (s *Service) buildBundle(ctx context.Context, id string) (advisor.Bundle, error) {
	var (
		g       errgroup.Group
		bundle  = advisor.Bundle{TaxID: id}
		profErr error
		finErr  error
	)
	g.Go(func() error {
		profile, err := s.registry.Profile(ctx, id)
		if err != nil {
			profErr = err
			return nil
		}
		bundle.Profile = &profile
		return nil
	})
	g.Go(func() error {
		records, err := s.registry.FinancialHistory(ctx, id)
		if err != nil {
			finErr = err
			return nil
		}
		bundle.Financials = records
		return nil
	})
	g.Go(func() error {
		bundle.Phones, _ = s.registry.Phones(ctx, id)
		return nil
	})
	g.Go(func() error {
		bundle.Emails, _ = s.registry.Emails(ctx, id)
		return nil
	})
	g.Go(func() error {
		bundle.Administrators, _ = s.registry.Administrators(ctx, id)
		return nil
	})
	g.Go(func() error {
		bundle.Websites, _ = s.registry.Websites(ctx, id)
		return nil
	})
	_ = g.Wait()

	if profErr != nil && finErr != nil {
		return advisor.Bundle{}, &errs.NotFoundError{Resource: "company data", ID: id}
	}
	return bundle, nil
}

// CompanyReport asks the reasoning model for a narrative intelligence
// report over every facet the registry exposes for the company.
func (s *Service) CompanyReport(ctx context.Context, taxID string) (advisor.Report, error) {
	id, err := cui.Normalize(taxID)
	if err != nil {
		return advisor.Report{}, err
	}
	if !s.advisor.Configured() {
		return advisor.Report{}, advisor.ErrNotConfigured
	}

	bundle, err := s.buildBundle(ctx, id)
	if err != nil {
		return advisor.Report{}, err
	}
	logging.Advisor("Company report bundle ready for %s (%d financial years)", id, len(bundle.Financials))
	report, err := s.advisor.ComprehensiveReport(ctx, bundle)
	if err != nil {
		return advisor.Report{}, err
	}
	return *report, nil
}

// RiskAssessment asks the fast model for a structured risk read. Only the
// profile and the financial history feed this prompt.
func (s *Service) RiskAssessment(ctx context.Context, taxID string) (advisor.Assessment, error) {
	id, err := cui.Normalize(taxID)
	if err != nil {
		return advisor.Assessment{}, err
	}
	if !s.advisor.Configured() {
		return advisor.Assessment{}, advisor.ErrNotConfigured
	}

	var (
		g       errgroup.Group
		bundle  = advisor.Bundle{TaxID: id}
		profErr error
		finErr  error
	)
	g.Go(func() error {
		profile, err := s.registry.Profile(ctx, id)
		if err != nil {
			profErr = err
			return nil
		}
		bundle.Profile = &profile
		return nil
	})
	g.Go(func() error {
		records, err := s.registry.FinancialHistory(ctx, id)
		if err != nil {
			finErr = err
			return nil
		}
		bundle.Financials = records
		return nil
	})
	_ = g.Wait()

	if profErr != nil && finErr != nil {
		return advisor.Assessment{}, &errs.NotFoundError{Resource: "company data", ID: id}
	}
	assessment, err := s.advisor.RiskAssessment(ctx, bundle)
	if err != nil {
		return advisor.Assessment{}, err
	}
	return *assessment, nil
}
