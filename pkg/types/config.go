package types

import "time"

// HTTPConfig holds shared HTTP settings used by every extractor.
type HTTPConfig struct {
	// Timeout is the per-request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxBodyBytes caps the size of a fetched page (default 8 MiB).
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" mapstructure:"max_body_bytes"`

	// MaxRetries is the number of retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// RequestsPerSecond bounds the request rate per host. Zero disables the limiter.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`

	// Burst is the per-host limiter burst size (default 1).
	Burst int `json:"burst" yaml:"burst" mapstructure:"burst"`

	// RespectRobots enables robots.txt checks before each fetch.
	RespectRobots bool `json:"respect_robots" yaml:"respect_robots" mapstructure:"respect_robots"`

	// CacheTTL keeps fetched pages in memory for reuse within a process.
	// Zero disables the page cache.
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// SourceConfig holds per-source overrides.
type SourceConfig struct {
	// Enabled controls whether the source runs (default true).
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty" mapstructure:"enabled"`

	// BaseURL replaces the site root, mainly for mirrors and tests.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// Delay is the pause between consecutive requests to the source.
	// Zero falls back to ExtractionConfig.RequestDelay.
	Delay time.Duration `json:"delay,omitempty" yaml:"delay,omitempty" mapstructure:"delay"`

	// InsecureTLS skips certificate verification for sites with broken chains.
	InsecureTLS bool `json:"insecure_tls,omitempty" yaml:"insecure_tls,omitempty" mapstructure:"insecure_tls"`

	// MaxPages stops pagination after this many index pages. Zero means no cap.
	MaxPages int `json:"max_pages,omitempty" yaml:"max_pages,omitempty" mapstructure:"max_pages"`
}

// IsEnabled reports whether the source should run.
func (c SourceConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// ExtractionConfig holds settings for the extraction stage.
type ExtractionConfig struct {
	// RequestDelay is the default pause between requests to the same source (default 2s).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay" mapstructure:"request_delay"`

	// SourceTimeout bounds a single extractor run. Zero means no bound.
	SourceTimeout time.Duration `json:"source_timeout" yaml:"source_timeout" mapstructure:"source_timeout"`

	// Sources holds per-source overrides keyed by source name.
	Sources map[string]SourceConfig `json:"sources,omitempty" yaml:"sources,omitempty" mapstructure:"sources"`
}

// Source returns the settings for name with RequestDelay applied as the default delay.
func (c ExtractionConfig) Source(name string) SourceConfig {
	sc := c.Sources[name]
	if sc.Delay == 0 {
		sc.Delay = c.RequestDelay
	}
	return sc
}

// CorpusConfig holds settings for the corpus store.
type CorpusConfig struct {
	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// ScheduleConfig holds cron specs for the schedule command.
type ScheduleConfig struct {
	// Ingest is the cron spec for full ingestion runs.
	Ingest string `json:"ingest" yaml:"ingest" mapstructure:"ingest"`

	// Expire is the cron spec for the expired-deadline sweep. Empty disables it.
	Expire string `json:"expire" yaml:"expire" mapstructure:"expire"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is the minimum level: debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups every setting of the ingestion pipeline.
type Config struct {
	// Timezone names the location whose calendar date counts as "today"
	// when deciding expiry (default Asia/Manila).
	Timezone string `json:"timezone" yaml:"timezone" mapstructure:"timezone"`

	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
	HTTP       HTTPConfig       `json:"http" yaml:"http" mapstructure:"http"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	Corpus     CorpusConfig     `json:"corpus" yaml:"corpus" mapstructure:"corpus"`
	Schedule   ScheduleConfig   `json:"schedule" yaml:"schedule" mapstructure:"schedule"`
}

// Location resolves Timezone, falling back to UTC when it is empty.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}
