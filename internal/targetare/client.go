package targetare

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fintel/internal/config"
	"fintel/internal/cui"
	"fintel/internal/errs"
	"fintel/internal/finance"
	"fintel/internal/logging"
	"fintel/internal/store"
	"fintel/internal/upstream"
)

// DefaultBaseURL is the production registry endpoint.
const DefaultBaseURL = "https://api.targetare.ro/v1"

// Client is the typed registry client. Every method normalizes its tax ID
// before touching the wire, so callers can hand over raw user input
// ("RO 12345678") directly. Profile and financial reads go through the
// response cache; contact sub-resources are always fetched live.
type Client struct {
	exec    *upstream.Executor
	cache   *store.Cache
	base    string
	key     string
	timeout time.Duration
}

// NewClient wires a registry client over the shared executor. cache may be
// nil to disable read-through caching.
func NewClient(exec *upstream.Executor, cache *store.Cache, cfg config.TargetareConfig) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		exec:    exec,
		cache:   cache,
		base:    base,
		key:     cfg.APIKey,
		timeout: cfg.RequestTimeout(),
	}
}

// ============================================================================
// COMPANY DATA
// ============================================================================

// Profile fetches the registry identity card for taxID.
func (c *Client) Profile(ctx context.Context, taxID string) (CompanyProfile, error) {
	id, err := cui.Normalize(taxID)
	if err != nil {
		return CompanyProfile{}, err
	}

	path := "/companies/" + id
	body, err := c.get(ctx, c.spec(path, "company", id), "profile:"+id)
	if err != nil {
		return CompanyProfile{}, err
	}

	var profile CompanyProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return CompanyProfile{}, malformed(path, err)
	}
	logging.Registry("Profile retrieved for CUI %s", id)
	return profile, nil
}

// FinancialHistory fetches every filed fiscal year for taxID, oldest
// first. Companies with a single filing come back as a one-element slice.
func (c *Client) FinancialHistory(ctx context.Context, taxID string) ([]finance.Record, error) {
	id, err := cui.Normalize(taxID)
	if err != nil {
		return nil, err
	}

	path := "/companies/" + id + "/financial"
	body, err := c.get(ctx, c.spec(path, "financial data", id), "financial:"+id)
	if err != nil {
		return nil, err
	}

	records, err := decodeHistory(body)
	if err != nil {
		return nil, malformed(path, err)
	}
	logging.Registry("Financial history for CUI %s: %d periods", id, len(records))
	return records, nil
}

// RegisteredOn lists companies first registered on the given date, which
// must be formatted YYYY-MM-DD.
func (c *Client) RegisteredOn(ctx context.Context, date string) ([]CompanyProfile, error) {
	date = strings.TrimSpace(date)
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, errs.Validationf("invalid registration date %q: use the YYYY-MM-DD format", date)
	}

	spec := c.spec("/companies/", "companies", date)
	spec.Query = url.Values{"registration_date": {date}}
	body, err := c.get(ctx, spec, "")
	if err != nil {
		return nil, err
	}

	profiles, err := decodeProfiles(body)
	if err != nil {
		return nil, malformed("/companies/", err)
	}
	logging.Registry("Registration date %s: %d companies", date, len(profiles))
	return profiles, nil
}

// ============================================================================
// CONTACT SUB-RESOURCES
// ============================================================================

// Phones fetches the registered phone numbers for taxID.
func (c *Client) Phones(ctx context.Context, taxID string) ([]string, error) {
	return c.stringList(ctx, taxID, "phones", "phone", "number", "value")
}

// Emails fetches the registered email addresses for taxID.
func (c *Client) Emails(ctx context.Context, taxID string) ([]string, error) {
	return c.stringList(ctx, taxID, "emails", "email", "address", "value")
}

// Websites fetches the registered web addresses for taxID.
func (c *Client) Websites(ctx context.Context, taxID string) ([]string, error) {
	return c.stringList(ctx, taxID, "websites", "website", "url", "value")
}

// Administrators fetches the registered officers for taxID.
func (c *Client) Administrators(ctx context.Context, taxID string) ([]Administrator, error) {
	id, err := cui.Normalize(taxID)
	if err != nil {
		return nil, err
	}

	path := "/companies/" + id + "/administrators"
	body, err := c.get(ctx, c.spec(path, "administrators", id), "")
	if err != nil {
		return nil, err
	}

	admins, err := decodeAdministrators(body)
	if err != nil {
		return nil, malformed(path, err)
	}
	return admins, nil
}

func (c *Client) stringList(ctx context.Context, taxID, resource string, itemKeys ...string) ([]string, error) {
	id, err := cui.Normalize(taxID)
	if err != nil {
		return nil, err
	}

	path := "/companies/" + id + "/" + resource
	body, err := c.get(ctx, c.spec(path, resource, id), "")
	if err != nil {
		return nil, err
	}

	items, err := decodeStringList(body, resource, itemKeys...)
	if err != nil {
		return nil, malformed(path, err)
	}
	return items, nil
}

// ============================================================================
// PLUMBING
// ============================================================================

func (c *Client) spec(path, resource, resourceID string) upstream.RequestSpec {
	return upstream.RequestSpec{
		URL:        c.base + path,
		Header:     c.header(),
		Endpoint:   path,
		Resource:   resource,
		ResourceID: resourceID,
		Timeout:    c.timeout,
	}
}

func (c *Client) header() http.Header {
	h := http.Header{}
	if c.key != "" {
		h.Set("Authorization", "Bearer "+c.key)
	}
	h.Set("Accept", "application/json")
	return h
}

// get runs spec through the executor, consulting and filling the response
// cache when cacheKey is non-empty.
func (c *Client) get(ctx context.Context, spec upstream.RequestSpec, cacheKey string) ([]byte, error) {
	if cacheKey != "" {
		if body, ok := c.cache.Get(ctx, cacheKey); ok {
			return body, nil
		}
	}

	body, err := c.exec.Do(ctx, spec)
	if err != nil {
		return nil, err
	}
	if cacheKey != "" {
		c.cache.Put(ctx, cacheKey, body)
	}
	return body, nil
}

func malformed(endpoint string, err error) error {
	return &errs.RequestFailedError{
		Endpoint: endpoint,
		Cause:    fmt.Errorf("malformed JSON response: %w", err),
	}
}
