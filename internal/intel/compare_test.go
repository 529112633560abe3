package intel

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintel/internal/errs"
)

func peerRoutes(ids ...string) map[string]string {
	routes := make(map[string]string)
	for i, id := range ids {
		revenue := 500000 * (i + 1)
		routes["/companies/"+id] = `{"name": "PEER ` + id + ` SRL", "cui": "` + id + `"}`
		routes["/companies/"+id+"/financial"] = `[{
			"year": 2023,
			"revenue": ` + strconv.Itoa(revenue) + `,
			"net_income": ` + strconv.Itoa(revenue/10) + `,
			"current_assets": 400000, "current_liabilities": 200000,
			"total_assets": 1000000, "total_equity": 600000, "total_debt": 300000
		}]`
	}
	return routes
}

func TestComparePerformance(t *testing.T) {
	srv, _ := registryServer(t, peerRoutes("11111111", "22222222", "33333333"))
	s := newTestService(t, srv.URL, "")

	comparison, err := s.ComparePerformance(context.Background(), []string{"11111111", "22222222", "33333333"})
	require.NoError(t, err)

	assert.Equal(t, 3, comparison.CompaniesCompared)
	assert.Empty(t, comparison.Failures)
	require.Len(t, comparison.Rankings.ByRevenue, 3)
	assert.Equal(t, "33333333", comparison.Rankings.ByRevenue[0].TaxID, "highest revenue ranks first")
	assert.Equal(t, "PEER 33333333 SRL", comparison.Leader.ByRevenue)

	raw, err := json.Marshal(comparison)
	require.NoError(t, err)
	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &payload))
	for _, key := range []string{
		"comparison_date", "companies_compared", "companies",
		"rankings", "statistical_summary", "leader",
	} {
		assert.Contains(t, payload, key)
	}
	assert.NotContains(t, payload, "failed_companies", "omitted when every company survives")
}

func TestComparePerformanceBounds(t *testing.T) {
	srv, calls := registryServer(t, nil)
	s := newTestService(t, srv.URL, "")
	ctx := context.Background()

	t.Run("too few", func(t *testing.T) {
		_, err := s.ComparePerformance(ctx, []string{"11111111"})
		assert.True(t, errs.IsValidation(err), "want validation error, got %v", err)
		assert.ErrorContains(t, err, "at least 2")
	})

	t.Run("too many", func(t *testing.T) {
		ids := make([]string, 11)
		for i := range ids {
			ids[i] = strconv.Itoa(11111111 + i)
		}
		_, err := s.ComparePerformance(ctx, ids)
		assert.True(t, errs.IsValidation(err), "want validation error, got %v", err)
		assert.ErrorContains(t, err, "maximum 10")
	})

	t.Run("invalid id anywhere rejects the request", func(t *testing.T) {
		_, err := s.ComparePerformance(ctx, []string{"11111111", "bogus"})
		assert.True(t, errs.IsValidation(err), "want validation error, got %v", err)
	})

	assert.Zero(t, calls.Load(), "bound checks must run before any fetch")
}

func TestComparePerformanceDropsFailures(t *testing.T) {
	routes := peerRoutes("11111111", "22222222", "33333333")
	delete(routes, "/companies/33333333/financial")
	srv, _ := registryServer(t, routes)
	s := newTestService(t, srv.URL, "")

	comparison, err := s.ComparePerformance(context.Background(), []string{"11111111", "22222222", "33333333"})
	require.NoError(t, err, "two survivors are enough to compare")

	assert.Equal(t, 2, comparison.CompaniesCompared)
	require.Len(t, comparison.Failures, 1)
	assert.Equal(t, "33333333", comparison.Failures[0].TaxID)
	assert.Contains(t, comparison.Failures[0].Reason, "not found")
}

func TestComparePerformanceTooFewSurvivors(t *testing.T) {
	routes := peerRoutes("11111111", "22222222")
	delete(routes, "/companies/22222222/financial")
	srv, _ := registryServer(t, routes)
	s := newTestService(t, srv.URL, "")

	_, err := s.ComparePerformance(context.Background(), []string{"11111111", "22222222"})
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err), "want validation error, got %v", err)
	assert.ErrorContains(t, err, "could not retrieve financial data for enough companies")
	assert.ErrorContains(t, err, "22222222", "the failing company must be named")
}

func TestComparePerformanceEmptyHistory(t *testing.T) {
	routes := peerRoutes("11111111", "22222222", "33333333")
	routes["/companies/22222222/financial"] = `[]`
	srv, _ := registryServer(t, routes)
	s := newTestService(t, srv.URL, "")

	comparison, err := s.ComparePerformance(context.Background(), []string{"11111111", "22222222", "33333333"})
	require.NoError(t, err)

	assert.Equal(t, 2, comparison.CompaniesCompared)
	require.Len(t, comparison.Failures, 1)
	assert.Equal(t, "no financial records", comparison.Failures[0].Reason)
}
