package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix for environment overrides (QUOTEBOOK_DATA_DIR, ...).
const EnvPrefix = "QUOTEBOOK"

// Recency cache backends.
const (
	RecencyMemory = "memory"
	RecencySQLite = "sqlite"
	RecencyOff    = "off"
)

// Config holds application configuration.
type Config struct {
	// DataDir is the storage root for attachments, one file per quote id.
	DataDir string `json:"data_dir,omitempty" envconfig:"DATA_DIR"`

	// PageSize is the number of quotes per listing page.
	PageSize int `json:"page_size,omitempty" envconfig:"PAGE_SIZE"`

	// MaxImageSize is the attachment ceiling in KiB.
	MaxImageSize int `json:"max_image_size,omitempty" envconfig:"MAX_IMAGE_SIZE"`

	// MinImageSize is the integrity floor in bytes. Smaller files are
	// treated as failed downloads (error pages, truncated streams).
	MinImageSize int `json:"min_image_size,omitempty" envconfig:"MIN_IMAGE_SIZE"`

	// LessRepetition is the percent chance (0-100) that a draw already shown
	// recently in the scope is redrawn. 0 turns redraws off. A pointer so that
	// 0 survives Merge.
	LessRepetition *int `json:"less_repetition,omitempty" envconfig:"LESS_REPETITION"`

	// RetryAttempts is the number of download retries after the first attempt.
	RetryAttempts int `json:"retry_attempts,omitempty" envconfig:"RETRY_ATTEMPTS"`

	// RetryDelayMS is the fixed delay between download retries.
	RetryDelayMS int `json:"retry_delay_ms,omitempty" envconfig:"RETRY_DELAY_MS"`

	// CleanupDelayMS is how long a broken quote lingers before removal.
	CleanupDelayMS int `json:"cleanup_delay_ms,omitempty" envconfig:"CLEANUP_DELAY_MS"`

	// RecentTTLSeconds is how long a surfaced quote counts as recent.
	RecentTTLSeconds int `json:"recent_ttl_seconds,omitempty" envconfig:"RECENT_TTL_SECONDS"`

	// RecencyCache selects the anti-repetition backend: memory, sqlite or off.
	RecencyCache string `json:"recency_cache,omitempty" envconfig:"RECENCY_CACHE"`

	// CancelKeyword aborts a waiting capture when sent as a whole message.
	CancelKeyword string `json:"cancel_keyword,omitempty" envconfig:"CANCEL_KEYWORD"`

	// FetchTimeoutSeconds bounds a single attachment download.
	FetchTimeoutSeconds int `json:"fetch_timeout_seconds,omitempty" envconfig:"FETCH_TIMEOUT_SECONDS"`

	// NotifyWebhook receives asynchronous notices (capture finished, removed, ...)
	// as JSON POSTs. Empty means notices are only logged.
	NotifyWebhook string `json:"notify_webhook,omitempty" envconfig:"NOTIFY_WEBHOOK"`

	// HTTPBind and HTTPPort configure the event intake server.
	HTTPBind string `json:"http_bind,omitempty" envconfig:"HTTP_BIND"`
	HTTPPort int    `json:"http_port,omitempty" envconfig:"HTTP_PORT"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty" envconfig:"DB_MAX_OPEN_CONNS"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty" envconfig:"DB_MAX_IDLE_CONNS"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty" envconfig:"DISABLED_TOOLS"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataDir:             "./data/quotes",
		PageSize:            10,
		MaxImageSize:        1000,
		MinImageSize:        100,
		LessRepetition:      intPtr(80),
		RetryAttempts:       10,
		RetryDelayMS:        2000,
		CleanupDelayMS:      1000,
		RecentTTLSeconds:    500,
		RecencyCache:        RecencyMemory,
		CancelKeyword:       "cancel",
		FetchTimeoutSeconds: 30,
		HTTPBind:            "127.0.0.1",
		HTTPPort:            8787,
	}
}

// Load loads configuration from baseDir/config.json and applies environment
// overrides. Returns defaults if the file doesn't exist.
func Load(baseDir string) (*Config, error) {
	file, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}

	env, err := loadEnv()
	if err != nil {
		return nil, err
	}

	cfg := Merge(Merge(DefaultConfig(), file), env)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	return cfg, nil
}

// loadEnv reads QUOTEBOOK_* variables into a zero-valued config.
func loadEnv() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.DataDir = pickString(overlay.DataDir, base.DataDir)
	result.RecencyCache = pickString(overlay.RecencyCache, base.RecencyCache)
	result.CancelKeyword = pickString(overlay.CancelKeyword, base.CancelKeyword)
	result.NotifyWebhook = pickString(overlay.NotifyWebhook, base.NotifyWebhook)
	result.HTTPBind = pickString(overlay.HTTPBind, base.HTTPBind)

	result.PageSize = pickInt(overlay.PageSize, base.PageSize)
	result.MaxImageSize = pickInt(overlay.MaxImageSize, base.MaxImageSize)
	result.MinImageSize = pickInt(overlay.MinImageSize, base.MinImageSize)
	result.RetryAttempts = pickInt(overlay.RetryAttempts, base.RetryAttempts)
	result.RetryDelayMS = pickInt(overlay.RetryDelayMS, base.RetryDelayMS)
	result.CleanupDelayMS = pickInt(overlay.CleanupDelayMS, base.CleanupDelayMS)
	result.RecentTTLSeconds = pickInt(overlay.RecentTTLSeconds, base.RecentTTLSeconds)
	result.FetchTimeoutSeconds = pickInt(overlay.FetchTimeoutSeconds, base.FetchTimeoutSeconds)
	result.HTTPPort = pickInt(overlay.HTTPPort, base.HTTPPort)
	result.DBMaxOpenConns = pickInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = pickInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns)

	// Pointer: overlay wins if set, even to 0
	switch {
	case overlay.LessRepetition != nil:
		result.LessRepetition = intPtr(*overlay.LessRepetition)
	case base.LessRepetition != nil:
		result.LessRepetition = intPtr(*base.LessRepetition)
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// Validate rejects out-of-range values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("data_dir must not be empty")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.MaxImageSize < 1 {
		return fmt.Errorf("max_image_size must be positive, got %d", c.MaxImageSize)
	}
	if lr := c.LessRepetitionPercent(); lr < 0 || lr > 100 {
		return fmt.Errorf("less_repetition must be within 0-100, got %d", lr)
	}
	switch c.RecencyCache {
	case RecencyMemory, RecencySQLite, RecencyOff:
	default:
		return fmt.Errorf("recency_cache must be one of: memory, sqlite, off (got %q)", c.RecencyCache)
	}
	return nil
}

// LessRepetitionPercent returns the configured percentage, defaulting to 80.
func (c *Config) LessRepetitionPercent() int {
	if c.LessRepetition == nil {
		return 80
	}
	return *c.LessRepetition
}

// MaxImageBytes returns the attachment ceiling in bytes.
func (c *Config) MaxImageBytes() int64 {
	return int64(c.MaxImageSize) * 1024
}

// RetryDelay returns the delay between download retries.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMS) * time.Millisecond
}

// CleanupDelay returns the delay before a broken quote is removed.
func (c *Config) CleanupDelay() time.Duration {
	return time.Duration(c.CleanupDelayMS) * time.Millisecond
}

// RecentTTL returns how long a surfaced quote counts as recent.
func (c *Config) RecentTTL() time.Duration {
	return time.Duration(c.RecentTTLSeconds) * time.Second
}

// FetchTimeout returns the per-download timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

func pickString(overlay, base string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

func intPtr(v int) *int {
	return &v
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
