package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Env vars understood by the watcher. Credentials are never read from the
// config file so a checked-in config stays secret-free.
const (
	EnvUserAgent = "USAJOBS_USER_AGENT"
	EnvAPIKey    = "USAJOBS_API_KEY"
	EnvWebhook   = "DISCORD_WEBHOOK"
	EnvGate      = "ENFORCE_LOCAL_HOUR"
)

// Config is the root configuration for a single watcher run.
type Config struct {
	UserAgent  string // identifying user-agent (your email, required by USAJOBS)
	APIKey     string // resolved by cmd from env or the OS keychain
	WebhookURL string // empty disables delivery; messages are logged instead
	DataDir    string // seen file, archive DB, and run lock live here

	Query  QueryConfig
	Retry  RetryConfig
	Gate   GateConfig
	Filter FilterConfig
	Notify NotifyConfig
}

// QueryConfig holds the fixed search criteria. The defaults reproduce the
// original watch query (series 1176/1173 around Camp Pendleton, GS-09..12).
type QueryConfig struct {
	CategoryCodes  []string // joined with ":" on the wire
	LocationName   string
	Radius         string
	PayGradeLow    string
	PayGradeHigh   string
	Fields         string
	WhoMayApply    string
	SortField      string
	SortDirection  string
	ResultsPerPage int
}

// RetryConfig controls the fetch retry loop.
type RetryConfig struct {
	Attempts int           // total attempts, not extra retries
	Backoff  time.Duration // first sleep; doubled after each failure
	Timeout  time.Duration // per-request HTTP timeout
}

// GateConfig restricts execution to one local hour of the day.
type GateConfig struct {
	Enabled  bool
	Hour     int    // 0..23 in Timezone
	Timezone string // IANA zone name
}

// FilterConfig is the inclusion rule applied to not-yet-seen postings.
// Both lists empty means every posting matches.
type FilterConfig struct {
	TitlePhrases []string // case-insensitive substring match on the title
	GradePattern string   // regexp matched against each grade code
}

// NotifyConfig toggles the informational alerts.
type NotifyConfig struct {
	FetchFailure bool
	ZeroResults  bool
	NoNewItems   bool
}

// rawConfig mirrors the YAML layout (snake_case, durations as strings).
type rawConfig struct {
	DataDir string          `yaml:"data_dir"`
	Query   rawQueryConfig  `yaml:"query"`
	Retry   rawRetryConfig  `yaml:"retry"`
	Gate    rawGateConfig   `yaml:"gate"`
	Filter  rawFilterConfig `yaml:"filter"`
	Notify  rawNotifyConfig `yaml:"notify"`
}

type rawQueryConfig struct {
	CategoryCodes  []string `yaml:"category_codes"`
	LocationName   string   `yaml:"location_name"`
	Radius         string   `yaml:"radius"`
	PayGradeLow    string   `yaml:"pay_grade_low"`
	PayGradeHigh   string   `yaml:"pay_grade_high"`
	Fields         string   `yaml:"fields"`
	WhoMayApply    string   `yaml:"who_may_apply"`
	SortField      string   `yaml:"sort_field"`
	SortDirection  string   `yaml:"sort_direction"`
	ResultsPerPage int      `yaml:"results_per_page"`
}

type rawRetryConfig struct {
	Attempts int    `yaml:"attempts"`
	Backoff  string `yaml:"backoff"`
	Timeout  string `yaml:"timeout"`
}

type rawGateConfig struct {
	Enabled  *bool  `yaml:"enabled"`
	Hour     *int   `yaml:"hour"`
	Timezone string `yaml:"timezone"`
}

type rawFilterConfig struct {
	TitlePhrases []string `yaml:"title_phrases"`
	GradePattern string   `yaml:"grade_pattern"`
}

type rawNotifyConfig struct {
	FetchFailure *bool `yaml:"fetch_failure"`
	ZeroResults  *bool `yaml:"zero_results"`
	NoNewItems   *bool `yaml:"no_new_items"`
}

// Default returns the built-in configuration, matching the historical
// constants of the watcher. A missing config file yields exactly this.
func Default() *Config {
	return &Config{
		DataDir: ".",
		Query: QueryConfig{
			CategoryCodes:  []string{"1176", "1173"},
			LocationName:   "92055",
			Radius:         "25",
			PayGradeLow:    "09",
			PayGradeHigh:   "12",
			Fields:         "All",
			WhoMayApply:    "all",
			SortField:      "openingdate",
			SortDirection:  "desc",
			ResultsPerPage: 50,
		},
		Retry: RetryConfig{
			Attempts: 3,
			Backoff:  5 * time.Second,
			Timeout:  30 * time.Second,
		},
		Gate: GateConfig{
			Enabled:  true,
			Hour:     20,
			Timezone: "America/Los_Angeles",
		},
		Notify: NotifyConfig{
			FetchFailure: true,
			ZeroResults:  true,
			NoNewItems:   true,
		},
	}
}

// Load reads the YAML config at path, overlays it on the defaults, applies
// env overrides, and validates the result. A missing file is fine when the
// path was not explicitly requested (explicit=false).
func Load(path string, explicit bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			applyEnv(cfg)
			return cfg, validate(cfg)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables before parsing.
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := overlay(cfg, raw); err != nil {
		return nil, err
	}

	applyEnv(cfg)
	return cfg, validate(cfg)
}

func overlay(cfg *Config, raw rawConfig) error {
	if raw.DataDir != "" {
		cfg.DataDir = raw.DataDir
	}

	q := raw.Query
	if len(q.CategoryCodes) > 0 {
		cfg.Query.CategoryCodes = q.CategoryCodes
	}
	if q.LocationName != "" {
		cfg.Query.LocationName = q.LocationName
	}
	if q.Radius != "" {
		cfg.Query.Radius = q.Radius
	}
	if q.PayGradeLow != "" {
		cfg.Query.PayGradeLow = q.PayGradeLow
	}
	if q.PayGradeHigh != "" {
		cfg.Query.PayGradeHigh = q.PayGradeHigh
	}
	if q.Fields != "" {
		cfg.Query.Fields = q.Fields
	}
	if q.WhoMayApply != "" {
		cfg.Query.WhoMayApply = q.WhoMayApply
	}
	if q.SortField != "" {
		cfg.Query.SortField = q.SortField
	}
	if q.SortDirection != "" {
		cfg.Query.SortDirection = q.SortDirection
	}
	if q.ResultsPerPage != 0 {
		cfg.Query.ResultsPerPage = q.ResultsPerPage
	}

	if raw.Retry.Attempts != 0 {
		cfg.Retry.Attempts = raw.Retry.Attempts
	}
	if raw.Retry.Backoff != "" {
		d, err := time.ParseDuration(raw.Retry.Backoff)
		if err != nil {
			return fmt.Errorf("parse retry.backoff %q: %w", raw.Retry.Backoff, err)
		}
		cfg.Retry.Backoff = d
	}
	if raw.Retry.Timeout != "" {
		d, err := time.ParseDuration(raw.Retry.Timeout)
		if err != nil {
			return fmt.Errorf("parse retry.timeout %q: %w", raw.Retry.Timeout, err)
		}
		cfg.Retry.Timeout = d
	}

	if raw.Gate.Enabled != nil {
		cfg.Gate.Enabled = *raw.Gate.Enabled
	}
	if raw.Gate.Hour != nil {
		cfg.Gate.Hour = *raw.Gate.Hour
	}
	if raw.Gate.Timezone != "" {
		cfg.Gate.Timezone = raw.Gate.Timezone
	}

	cfg.Filter.TitlePhrases = raw.Filter.TitlePhrases
	cfg.Filter.GradePattern = raw.Filter.GradePattern

	if raw.Notify.FetchFailure != nil {
		cfg.Notify.FetchFailure = *raw.Notify.FetchFailure
	}
	if raw.Notify.ZeroResults != nil {
		cfg.Notify.ZeroResults = *raw.Notify.ZeroResults
	}
	if raw.Notify.NoNewItems != nil {
		cfg.Notify.NoNewItems = *raw.Notify.NoNewItems
	}

	return nil
}

// applyEnv pulls credentials and the gate override out of the environment.
func applyEnv(cfg *Config) {
	cfg.UserAgent = strings.TrimSpace(os.Getenv(EnvUserAgent))
	cfg.APIKey = strings.TrimSpace(os.Getenv(EnvAPIKey))
	cfg.WebhookURL = strings.TrimSpace(os.Getenv(EnvWebhook))
	if v := os.Getenv(EnvGate); v != "" {
		cfg.Gate.Enabled = v == "1"
	}
}

func validate(cfg *Config) error {
	if cfg.Retry.Attempts < 1 {
		return fmt.Errorf("retry.attempts must be at least 1, got %d", cfg.Retry.Attempts)
	}
	if cfg.Retry.Backoff <= 0 {
		return fmt.Errorf("retry.backoff must be positive, got %v", cfg.Retry.Backoff)
	}
	if cfg.Retry.Timeout <= 0 {
		return fmt.Errorf("retry.timeout must be positive, got %v", cfg.Retry.Timeout)
	}
	if cfg.Gate.Hour < 0 || cfg.Gate.Hour > 23 {
		return fmt.Errorf("gate.hour must be 0..23, got %d", cfg.Gate.Hour)
	}
	if cfg.Query.ResultsPerPage < 1 || cfg.Query.ResultsPerPage > 500 {
		return fmt.Errorf("query.results_per_page must be 1..500, got %d", cfg.Query.ResultsPerPage)
	}
	if len(cfg.Query.CategoryCodes) == 0 {
		return errors.New("query.category_codes must not be empty")
	}
	return nil
}

// SeenPath is the durable dedup state file.
func (c *Config) SeenPath() string {
	return filepath.Join(c.DataDir, "seen_usajobs.json")
}

// ArchivePath is the best-effort posting history database.
func (c *Config) ArchivePath() string {
	return filepath.Join(c.DataDir, "postings.db")
}

// LockPath guards against overlapping runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.DataDir, ".usajobs-watch.lock")
}
