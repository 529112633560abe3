// Package upstream owns outbound HTTP: a pooled session manager shared by
// every client, and a resilient executor that classifies responses into the
// typed error taxonomy and retries transient failures with exponential
// backoff.
package upstream

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"fintel/internal/logging"
)

// PoolSettings bounds the shared HTTP session.
type PoolSettings struct {
	MaxSessions  int           // total connection pool size
	MaxPerHost   int           // per-host connection cap
	IdleTTL      time.Duration // idle connection expiry
	Timeout      time.Duration // per-request timeout
	ReleaseGrace time.Duration // settle time for in-flight connections on release
}

// DefaultPoolSettings returns the production pool bounds.
func DefaultPoolSettings() PoolSettings {
	return PoolSettings{
		MaxSessions:  100,
		MaxPerHost:   30,
		IdleTTL:      300 * time.Second,
		Timeout:      15 * time.Second,
		ReleaseGrace: 250 * time.Millisecond,
	}
}

// Session is the shared pooled HTTP client handle. All outbound calls reuse
// one Session; per-request clients are never constructed.
type Session struct {
	ID        string
	Client    *http.Client
	CreatedAt time.Time

	transport *http.Transport
}

// Stats reports pool lifecycle counters.
type Stats struct {
	Acquires int64
	Creates  int64
	Releases int64
}

// Manager lazily constructs and hands out the shared Session. Construction
// under concurrent first use is guarded by a double-checked read lock plus a
// single-flight group, so exactly one pool exists no matter how many callers
// race on a cold start.
type Manager struct {
	settings PoolSettings

	mu      sync.RWMutex
	session *Session

	acquires atomic.Int64
	creates  atomic.Int64
	releases atomic.Int64

	group singleflight.Group
}

// NewManager returns a Manager with the given bounds. Zero-value fields fall
// back to the defaults.
func NewManager(settings PoolSettings) *Manager {
	def := DefaultPoolSettings()
	if settings.MaxSessions <= 0 {
		settings.MaxSessions = def.MaxSessions
	}
	if settings.MaxPerHost <= 0 {
		settings.MaxPerHost = def.MaxPerHost
	}
	if settings.IdleTTL <= 0 {
		settings.IdleTTL = def.IdleTTL
	}
	if settings.Timeout <= 0 {
		settings.Timeout = def.Timeout
	}
	if settings.ReleaseGrace <= 0 {
		settings.ReleaseGrace = def.ReleaseGrace
	}
	return &Manager{settings: settings}
}

// Acquire returns the live shared session, constructing it on first use.
// Concurrent first callers all observe the same instance.
func (m *Manager) Acquire(ctx context.Context) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	s := m.session
	m.mu.RUnlock()
	if s != nil {
		m.acquires.Add(1)
		return s, nil
	}

	// Single-flight collapses the stampede on a cold pool. The winner
	// constructs; everyone else shares the result.
	v, err, _ := m.group.Do("session", func() (interface{}, error) {
		m.mu.Lock()
		defer m.mu.Unlock()

		// Double-check: a previous flight may have installed it already.
		if m.session != nil {
			return m.session, nil
		}

		s := m.newSession()
		m.session = s
		m.creates.Add(1)
		logging.Session("created pooled session %s (max=%d per_host=%d idle_ttl=%v timeout=%v)",
			s.ID, m.settings.MaxSessions, m.settings.MaxPerHost, m.settings.IdleTTL, m.settings.Timeout)
		return s, nil
	})
	if err != nil {
		return nil, err
	}

	m.acquires.Add(1)
	return v.(*Session), nil
}

func (m *Manager) newSession() *Session {
	transport := &http.Transport{
		MaxIdleConns:        m.settings.MaxSessions,
		MaxConnsPerHost:     m.settings.MaxPerHost,
		MaxIdleConnsPerHost: m.settings.MaxPerHost,
		IdleConnTimeout:     m.settings.IdleTTL,
	}
	return &Session{
		ID:        uuid.NewString()[:8],
		CreatedAt: time.Now(),
		transport: transport,
		Client: &http.Client{
			Transport: transport,
			Timeout:   m.settings.Timeout,
		},
	}
}

// Release closes the shared session and its connection pool. In-flight
// connections get a brief grace period to settle before Release returns.
// Calling Release with nothing acquired is a no-op, and repeated calls are
// safe. The next Acquire constructs a fresh pool.
func (m *Manager) Release(ctx context.Context) error {
	m.mu.Lock()
	s := m.session
	m.session = nil
	m.mu.Unlock()

	if s == nil {
		return nil
	}

	m.releases.Add(1)
	s.transport.CloseIdleConnections()
	logging.Session("released pooled session %s (lived %v)", s.ID, time.Since(s.CreatedAt))

	select {
	case <-time.After(m.settings.ReleaseGrace):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns a snapshot of the pool counters.
func (m *Manager) Stats() Stats {
	return Stats{
		Acquires: m.acquires.Load(),
		Creates:  m.creates.Load(),
		Releases: m.releases.Load(),
	}
}

// Settings returns the bounds this manager was constructed with.
func (m *Manager) Settings() PoolSettings {
	return m.settings
}
