// Package search discovers a company's fiscal identifier from its name by
// querying the Custom Search JSON API and mining the results for labeled
// CUI mentions. When the snippets carry no identifier, the top result page
// is fetched and parsed as a fallback at reduced confidence.
package search

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"fintel/internal/config"
	"fintel/internal/cui"
	"fintel/internal/errs"
	"fintel/internal/logging"
	"fintel/internal/upstream"
)

// DefaultBaseURL is the Custom Search JSON API endpoint.
const DefaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// DefaultLimit caps how many candidates a lookup returns when the caller
// does not say.
const DefaultLimit = 5

// MaxLimit is the hard ceiling on returned candidates.
const MaxLimit = 10

// ErrNotConfigured is returned when the search credentials are absent.
// Lookup is an optional capability; the rest of the system works without it.
var ErrNotConfigured = errors.New("web search not configured: set search.api_key and search.engine_id")

// ErrNoCandidates is returned when results exist but none carries a labeled
// identifier, even after the page-fetch fallback. The text is surfaced
// verbatim to callers.
var ErrNoCandidates = errors.New("Could not extract CUI from search results")

// NoResultsError is returned when the search engine has nothing at all for
// the name. The text is surfaced verbatim to callers.
type NoResultsError struct {
	Name string
}

func (e *NoResultsError) Error() string {
	return "No results found for: " + e.Name
}

// Client performs CUI discovery lookups. The JSON API goes through the
// shared executor; fallback page fetches use the session pool directly so
// the body cap applies while reading.
type Client struct {
	exec     *upstream.Executor
	sessions *upstream.Manager
	cfg      config.SearchConfig
	base     string
}

// NewClient wires a search client. The client is usable with empty
// credentials; lookups then fail with ErrNotConfigured.
func NewClient(exec *upstream.Executor, sessions *upstream.Manager, cfg config.SearchConfig) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{exec: exec, sessions: sessions, cfg: cfg, base: base}
}

// Configured reports whether lookups can run. A nil client counts as
// unconfigured.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.APIKey != "" && c.cfg.EngineID != ""
}

type searchItem struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

type searchResponse struct {
	Items []searchItem `json:"items"`
}

// FindCompanyCUI looks up candidates for name, best first. limit is
// clamped to 1..10; zero or negative means the configured default.
func (c *Client) FindCompanyCUI(ctx context.Context, name string, limit int) ([]cui.Candidate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.Validationf("company name is required")
	}
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	limit = clampLimit(limit, c.cfg.MaxResults)

	timer := logging.StartTimer(logging.CategorySearch, "FindCompanyCUI")
	defer timer.Stop()

	query := `"` + name + `" CUI cod fiscal`
	logging.Search("CUI lookup: %s (limit %d)", query, limit)

	var resp searchResponse
	spec := upstream.RequestSpec{
		URL:      c.base,
		Endpoint: "/customsearch/v1",
		Query: map[string][]string{
			"key": {c.cfg.APIKey},
			"cx":  {c.cfg.EngineID},
			"q":   {query},
			"gl":  {"ro"},
			"lr":  {"lang_ro"},
			"num": {strconv.Itoa(resultCount(limit))},
		},
	}
	if err := c.exec.DoJSON(ctx, spec, &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, &NoResultsError{Name: name}
	}

	var candidates []cui.Candidate
	for _, item := range resp.Items {
		text := strings.Join([]string{item.Title, item.Snippet, item.Link}, " ")
		candidates = append(candidates, cui.ExtractCandidates(text, item.Link)...)
	}

	// Snippets came up empty: read the most promising page itself.
	if len(candidates) == 0 && c.cfg.FetchFallback {
		candidates = c.fallbackExtract(ctx, resp.Items[0].Link)
	}

	best := cui.DedupeBest(candidates)
	if len(best) == 0 {
		return nil, ErrNoCandidates
	}

	sortByConfidence(best)
	if len(best) > limit {
		best = best[:limit]
	}
	logging.Search("CUI lookup for %q: %d candidates, best %s (%s)",
		name, len(best), best[0].CUI, best[0].Confidence.Label())
	return best, nil
}

// resultCount asks the engine for twice the candidate budget, within the
// API's ten-result page.
func resultCount(limit int) int {
	n := limit * 2
	if n > 10 {
		n = 10
	}
	return n
}

func clampLimit(limit, configured int) int {
	if limit <= 0 {
		limit = configured
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return limit
}

// sortByConfidence orders best-first while preserving discovery order
// within a confidence level.
func sortByConfidence(candidates []cui.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
}
