// Package config loads and validates fintel configuration. Configuration
// lives in a YAML file under the fintel home directory and can be overridden
// by environment variables, which always win over file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all fintel configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// MCP server settings
	Server ServerConfig `yaml:"server"`

	// Company registry API
	Targetare TargetareConfig `yaml:"targetare"`

	// Web search for CUI discovery
	Search SearchConfig `yaml:"search"`

	// Maps web services for location analysis
	Maps MapsConfig `yaml:"maps"`

	// Generative model advisory
	GenAI GenAIConfig `yaml:"genai"`

	// Upstream HTTP session pool
	Pool PoolConfig `yaml:"pool"`

	// Response cache
	Cache CacheConfig `yaml:"cache"`

	// Industry benchmark tables
	Benchmarks BenchmarksConfig `yaml:"benchmarks"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the MCP transport.
type ServerConfig struct {
	Transport       string `yaml:"transport"` // stdio, http
	Addr            string `yaml:"addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// TargetareConfig configures the Romanian company registry client.
type TargetareConfig struct {
	APIKey        string  `yaml:"api_key"`
	BaseURL       string  `yaml:"base_url"`
	Timeout       string  `yaml:"timeout"`
	MaxRetries    int     `yaml:"max_retries"`
	BackoffFactor float64 `yaml:"backoff_factor"`
}

// SearchConfig configures programmatic web search.
type SearchConfig struct {
	APIKey          string `yaml:"api_key"`
	EngineID        string `yaml:"engine_id"`
	BaseURL         string `yaml:"base_url"`
	MaxResults      int    `yaml:"max_results"`
	FetchFallback   bool   `yaml:"fetch_fallback"`
	FetchLimitBytes int64  `yaml:"fetch_limit_bytes"`
}

// MapsConfig configures the maps web services client.
type MapsConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// GenAIConfig configures the advisory model calls.
type GenAIConfig struct {
	APIKey         string  `yaml:"api_key"`
	ReasoningModel string  `yaml:"reasoning_model"`
	FastModel      string  `yaml:"fast_model"`
	MaxTokens      int32   `yaml:"max_tokens"`
	Temperature    float32 `yaml:"temperature"`
	Timeout        string  `yaml:"timeout"`
}

// PoolConfig configures the upstream HTTP session pool.
type PoolConfig struct {
	MaxSessions  int    `yaml:"max_sessions"`
	MaxPerHost   int    `yaml:"max_per_host"`
	IdleTTL      string `yaml:"idle_ttl"`
	Timeout      string `yaml:"timeout"`
	ReleaseGrace string `yaml:"release_grace"`
}

// CacheConfig configures the SQLite response cache.
type CacheConfig struct {
	Enabled      bool   `yaml:"enabled"`
	DatabasePath string `yaml:"database_path"`
	TTL          string `yaml:"ttl"`
}

// BenchmarksConfig configures industry benchmark overrides.
type BenchmarksConfig struct {
	Path        string `yaml:"path"`
	WatchReload bool   `yaml:"watch_reload"`
}

// LoggingConfig configures the category debug logging. The yaml tags here
// must stay aligned with the mirror struct in internal/logging, which reads
// this section directly to avoid an import cycle.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	JSONFormat bool            `yaml:"json_format"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "fintel",
		Version: "1.0.0",

		Server: ServerConfig{
			Transport:       "stdio",
			Addr:            ":8930",
			ShutdownTimeout: "10s",
		},

		Targetare: TargetareConfig{
			BaseURL:       "https://api.targetare.ro/v1",
			Timeout:       "15s",
			MaxRetries:    3,
			BackoffFactor: 2.0,
		},

		Search: SearchConfig{
			BaseURL:         "https://www.googleapis.com/customsearch/v1",
			MaxResults:      10,
			FetchFallback:   true,
			FetchLimitBytes: 1 << 20,
		},

		Maps: MapsConfig{
			BaseURL: "https://maps.googleapis.com/maps/api",
			Timeout: "15s",
		},

		GenAI: GenAIConfig{
			ReasoningModel: "gemini-2.5-flash",
			FastModel:      "gemini-2.5-flash-lite",
			MaxTokens:      8000,
			Temperature:    0.5,
			Timeout:        "60s",
		},

		Pool: PoolConfig{
			MaxSessions:  100,
			MaxPerHost:   30,
			IdleTTL:      "300s",
			Timeout:      "15s",
			ReleaseGrace: "250ms",
		},

		Cache: CacheConfig{
			Enabled:      true,
			DatabasePath: "", // resolved against the home dir when empty
			TTL:          "15m",
		},

		Benchmarks: BenchmarksConfig{
			Path:        "",
			WatchReload: true,
		},

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Home returns the fintel home directory. FINTEL_HOME wins; otherwise
// ~/.fintel.
func Home() string {
	if h := os.Getenv("FINTEL_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fintel"
	}
	return filepath.Join(home, ".fintel")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Home(), "config.yaml")
}

// Load loads configuration from a YAML file. A missing file is not an
// error; defaults plus environment overrides are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("TARGETARE_API_KEY"); key != "" {
		c.Targetare.APIKey = key
	}
	if key := os.Getenv("GOOGLE_CUSTOM_SEARCH_API_KEY"); key != "" {
		c.Search.APIKey = key
	}
	if id := os.Getenv("GOOGLE_CSE_ID"); id != "" {
		c.Search.EngineID = id
	}
	if key := os.Getenv("GOOGLE_MAPS_API_KEY"); key != "" {
		c.Maps.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.GenAI.APIKey = key
	}
	if path := os.Getenv("FINTEL_DB"); path != "" {
		c.Cache.DatabasePath = path
	}
	if path := os.Getenv("FINTEL_BENCHMARKS"); path != "" {
		c.Benchmarks.Path = path
	}
	if addr := os.Getenv("FINTEL_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
}

// CachePath resolves the cache database path, defaulting into the home dir.
func (c *Config) CachePath() string {
	if c.Cache.DatabasePath != "" {
		return c.Cache.DatabasePath
	}
	return filepath.Join(Home(), "cache.db")
}

// RequestTimeout returns the per-attempt registry request budget.
func (t TargetareConfig) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(t.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// RequestTimeout returns the per-attempt maps request budget.
func (m MapsConfig) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(m.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// RequestTimeout returns the advisory call budget.
func (g GenAIConfig) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(g.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// GetPoolIdleTTL returns the session idle expiry as a duration.
func (c *Config) GetPoolIdleTTL() time.Duration {
	d, err := time.ParseDuration(c.Pool.IdleTTL)
	if err != nil {
		return 300 * time.Second
	}
	return d
}

// GetPoolTimeout returns the per-request pool timeout as a duration.
func (c *Config) GetPoolTimeout() time.Duration {
	d, err := time.ParseDuration(c.Pool.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// GetReleaseGrace returns the session release grace period as a duration.
func (c *Config) GetReleaseGrace() time.Duration {
	d, err := time.ParseDuration(c.Pool.ReleaseGrace)
	if err != nil {
		return 250 * time.Millisecond
	}
	return d
}

// GetCacheTTL returns the response cache TTL as a duration.
func (c *Config) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

// GetShutdownTimeout returns the graceful shutdown budget as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// ValidTransports lists the supported MCP transports.
var ValidTransports = []string{"stdio", "http"}

// Validate validates the configuration for serving.
func (c *Config) Validate() error {
	if c.Targetare.APIKey == "" {
		return fmt.Errorf("registry API key not configured (set TARGETARE_API_KEY or targetare.api_key)")
	}

	validTransport := false
	for _, tr := range ValidTransports {
		if c.Server.Transport == tr {
			validTransport = true
			break
		}
	}
	if !validTransport {
		return fmt.Errorf("invalid transport: %s (valid: %v)", c.Server.Transport, ValidTransports)
	}

	if c.Targetare.MaxRetries < 0 {
		return fmt.Errorf("targetare.max_retries must be >= 0, got %d", c.Targetare.MaxRetries)
	}
	if c.Targetare.BackoffFactor < 1 {
		return fmt.Errorf("targetare.backoff_factor must be >= 1, got %v", c.Targetare.BackoffFactor)
	}
	if c.Pool.MaxSessions <= 0 {
		return fmt.Errorf("pool.max_sessions must be > 0, got %d", c.Pool.MaxSessions)
	}
	if c.Pool.MaxPerHost <= 0 || c.Pool.MaxPerHost > c.Pool.MaxSessions {
		return fmt.Errorf("pool.max_per_host must be in 1..%d, got %d", c.Pool.MaxSessions, c.Pool.MaxPerHost)
	}

	return nil
}

// HasSearch reports whether web search is configured.
func (c *Config) HasSearch() bool {
	return c.Search.APIKey != "" && c.Search.EngineID != ""
}

// HasMaps reports whether the maps services are configured.
func (c *Config) HasMaps() bool {
	return c.Maps.APIKey != ""
}

// HasGenAI reports whether advisory model calls are configured.
func (c *Config) HasGenAI() bool {
	return c.GenAI.APIKey != ""
}
