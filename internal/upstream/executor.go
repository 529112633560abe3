package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"fintel/internal/errs"
	"fintel/internal/logging"
)

// errorBodyLimit caps how much of a failed response body is read for
// diagnostics.
const errorBodyLimit = 512

// RequestSpec describes one logical upstream call.
type RequestSpec struct {
	Method string // defaults to GET
	URL    string
	Query  url.Values
	Header http.Header
	Body   []byte

	// Endpoint is the logical name used in errors and logs. Defaults to
	// the URL path.
	Endpoint string

	// Resource and ResourceID shape the NotFoundError on a 404.
	Resource   string
	ResourceID string

	// Timeout bounds each attempt. Zero leaves only the session pool's
	// client timeout in force; a value above it cannot extend it.
	Timeout time.Duration
}

func (s *RequestSpec) endpoint() string {
	if s.Endpoint != "" {
		return s.Endpoint
	}
	if u, err := url.Parse(s.URL); err == nil && u.Path != "" {
		return u.Path
	}
	return s.URL
}

// ExecutorSettings tunes the retry loop.
type ExecutorSettings struct {
	MaxRetries    int
	BackoffFactor float64

	// BackoffUnit scales the computed backoff. Production keeps the
	// one-second unit; tests shrink it.
	BackoffUnit time.Duration
}

// DefaultExecutorSettings returns the production retry budget.
func DefaultExecutorSettings() ExecutorSettings {
	return ExecutorSettings{
		MaxRetries:    3,
		BackoffFactor: 2.0,
		BackoffUnit:   time.Second,
	}
}

// Executor performs authenticated upstream calls with bounded retries and
// typed outcome classification. Transient failures (429, other non-2xx,
// transport errors) are retried with exponential backoff; permanent ones
// (401, 404) fail fast.
type Executor struct {
	sessions *Manager
	settings ExecutorSettings
}

// NewExecutor wires an Executor onto the shared session pool.
func NewExecutor(sessions *Manager, settings ExecutorSettings) *Executor {
	def := DefaultExecutorSettings()
	if settings.MaxRetries < 0 {
		settings.MaxRetries = def.MaxRetries
	}
	if settings.BackoffFactor < 1 {
		settings.BackoffFactor = def.BackoffFactor
	}
	if settings.BackoffUnit <= 0 {
		settings.BackoffUnit = def.BackoffUnit
	}
	return &Executor{sessions: sessions, settings: settings}
}

// Do executes the request and returns the response body on a 2xx status.
//
// Outcome classification:
//   - 401 returns AuthenticationError without retrying
//   - 404 returns NotFoundError without retrying
//   - 429 retries with exponential backoff, then RateLimitExceededError
//   - any other non-2xx or transport fault retries, then RequestFailedError
func (e *Executor) Do(ctx context.Context, spec RequestSpec) ([]byte, error) {
	endpoint := spec.endpoint()
	reqID := uuid.NewString()[:8]
	log := logging.WithRequestID(logging.CategoryUpstream, reqID)
	audit := logging.AuditWithRequest(reqID, logging.CategoryUpstream)

	var lastStatus int
	var lastErr error

	// The budget covers max_retries retries after the initial attempt.
	for attempt := 0; attempt <= e.settings.MaxRetries; attempt++ {
		body, status, err := e.attempt(ctx, spec, endpoint, attempt, log, audit)
		switch {
		case err == nil && status >= 200 && status < 300:
			return body, nil

		case err == nil && status == http.StatusUnauthorized:
			log.Error("authentication rejected by %s", endpoint)
			return nil, &errs.AuthenticationError{Endpoint: endpoint}

		case err == nil && status == http.StatusNotFound:
			log.Info("%s has no record (404)", endpoint)
			resource := spec.Resource
			if resource == "" {
				resource = endpoint
			}
			return nil, &errs.NotFoundError{Resource: resource, ID: spec.ResourceID}

		case err == nil && status == http.StatusTooManyRequests:
			lastStatus = status
			if attempt == e.settings.MaxRetries {
				log.Error("rate limit budget exhausted for %s after %d attempts", endpoint, attempt+1)
				return nil, &errs.RateLimitExceededError{Endpoint: endpoint, Attempts: attempt + 1}
			}
			if err := e.backoff(ctx, attempt, log); err != nil {
				return nil, err
			}

		default:
			// Transport fault or a retryable status.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if err != nil {
				lastErr = err
				lastStatus = 0
			} else {
				lastStatus = status
				lastErr = nil
			}
			if attempt == e.settings.MaxRetries {
				log.Error("request to %s failed after %d attempts (status=%d err=%v)",
					endpoint, attempt+1, lastStatus, lastErr)
				return nil, &errs.RequestFailedError{
					Endpoint:   endpoint,
					StatusCode: lastStatus,
					Cause:      lastErr,
				}
			}
			if err := e.backoff(ctx, attempt, log); err != nil {
				return nil, err
			}
		}
	}

	// Unreachable: the loop always returns on the final attempt.
	return nil, &errs.RequestFailedError{Endpoint: endpoint, StatusCode: lastStatus, Cause: lastErr}
}

// DoJSON executes the request and decodes the body into out.
func (e *Executor) DoJSON(ctx context.Context, spec RequestSpec, out interface{}) error {
	body, err := e.Do(ctx, spec)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &errs.RequestFailedError{
			Endpoint: spec.endpoint(),
			Cause:    fmt.Errorf("malformed JSON response: %w", err),
		}
	}
	return nil
}

// attempt performs exactly one HTTP round trip. A nil error with a non-zero
// status means the server answered; the caller classifies the status.
func (e *Executor) attempt(ctx context.Context, spec RequestSpec, endpoint string, attempt int, log *logging.RequestLogger, audit *logging.AuditLogger) ([]byte, int, error) {
	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	session, err := e.sessions.Acquire(ctx)
	if err != nil {
		return nil, 0, err
	}

	method := spec.Method
	if method == "" {
		method = http.MethodGet
	}

	reqURL := spec.URL
	if len(spec.Query) > 0 {
		u, err := url.Parse(spec.URL)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid URL %q: %w", spec.URL, err)
		}
		q := u.Query()
		for k, vs := range spec.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
		reqURL = u.String()
	}

	var bodyReader io.Reader
	if len(spec.Body) > 0 {
		bodyReader = bytes.NewReader(spec.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("build request for %s: %w", endpoint, err)
	}
	for k, vs := range spec.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := session.Client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		log.Warn("attempt %d against %s failed in %v: %v", attempt, endpoint, elapsed, err)
		audit.UpstreamRequest(endpoint, 0, attempt, elapsed)
		return nil, 0, err
	}
	defer resp.Body.Close()

	log.Debug("attempt %d against %s -> %d in %v", attempt, endpoint, resp.StatusCode, elapsed)
	audit.UpstreamRequest(endpoint, resp.StatusCode, attempt, elapsed)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, 0, fmt.Errorf("read response from %s: %w", endpoint, err)
		}
		return body, resp.StatusCode, nil
	}

	// Drain a bounded slice of the error body so the connection can be
	// reused, and keep it out of the success path entirely.
	io.CopyN(io.Discard, resp.Body, errorBodyLimit)
	return nil, resp.StatusCode, nil
}

// backoff sleeps factor^attempt units without blocking sibling requests.
func (e *Executor) backoff(ctx context.Context, attempt int, log *logging.RequestLogger) error {
	wait := time.Duration(math.Pow(e.settings.BackoffFactor, float64(attempt)) * float64(e.settings.BackoffUnit))
	log.Debug("backing off %v before retry %d", wait, attempt+1)

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
