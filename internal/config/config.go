// Package config defines the top-level configuration for the market
// aggregation service and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/marketlens/marketlens/internal/domain"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by MARKETLENS_* environment
// variables.
type Config struct {
	Polymarket PolymarketConfig `toml:"polymarket"`
	Kalshi     KalshiConfig     `toml:"kalshi"`
	Limitless  LimitlessConfig  `toml:"limitless"`
	Matching   MatchingConfig   `toml:"matching"`
	Tracker    TrackerConfig    `toml:"tracker"`
	Postgres   PostgresConfig   `toml:"postgres"`
	Redis      RedisConfig      `toml:"redis"`
	S3         S3Config         `toml:"s3"`
	Server     ServerConfig     `toml:"server"`
	Notify     NotifyConfig     `toml:"notify"`
	Mappings   []MappingConfig  `toml:"mappings"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// PolymarketConfig holds Polymarket Gamma API parameters.
type PolymarketConfig struct {
	Enabled   bool   `toml:"enabled"`
	GammaHost string `toml:"gamma_host"`
}

// KalshiConfig holds Kalshi exchange API parameters.
type KalshiConfig struct {
	Enabled           bool   `toml:"enabled"`
	BaseURL           string `toml:"base_url"`
	ApiKey            string `toml:"api_key"`
	RsaPrivateKeyPath string `toml:"rsa_private_key_path"`
}

// LimitlessConfig holds Limitless exchange API parameters.
type LimitlessConfig struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
}

// MatchingConfig exposes the similarity thresholds as tunable knobs. The
// scores are integers on the 0-100 scale used by the matching engine.
type MatchingConfig struct {
	TitleRatio      int `toml:"title_ratio"`
	PartialRatio    int `toml:"partial_ratio"`
	TeamRatio       int `toml:"team_ratio"`
	TokenSortRatio  int `toml:"token_sort_ratio"`
	TimeWindowHours int `toml:"time_window_hours"`
}

// TrackerConfig holds the polling-loop parameters.
type TrackerConfig struct {
	Interval       duration `toml:"interval"`
	LimitPerVenue  int      `toml:"limit_per_venue"`
	HistorySize    int      `toml:"history_size"`
	PersistResults bool     `toml:"persist_results"`
	ArchiveCSV     bool     `toml:"archive_csv"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for CSV snapshots.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string `toml:"telegram_token"`
	TelegramChatID    string `toml:"telegram_chat_id"`
	DiscordWebhookURL string `toml:"discord_webhook_url"`
}

// MappingConfig is one curated cross-venue identity override as written in
// the TOML file. Curation happens offline in the config; the running service
// only ever reads these.
type MappingConfig struct {
	Category     string `toml:"category"`
	PolymarketID string `toml:"polymarket_id"`
	KalshiID     string `toml:"kalshi_id"`
	LimitlessID  string `toml:"limitless_id"`
	Description  string `toml:"description"`
}

// MappingTable converts the configured overrides into the immutable table
// the matching engine consumes.
func (c *Config) MappingTable() domain.MappingTable {
	byCategory := make(map[string][]domain.ManualMapping)
	for _, m := range c.Mappings {
		cat := strings.ToLower(strings.TrimSpace(m.Category))
		if cat == "" {
			continue
		}
		ids := make(map[domain.Venue]string)
		if m.PolymarketID != "" {
			ids[domain.VenuePolymarket] = m.PolymarketID
		}
		if m.KalshiID != "" {
			ids[domain.VenueKalshi] = m.KalshiID
		}
		if m.LimitlessID != "" {
			ids[domain.VenueLimitless] = m.LimitlessID
		}
		if len(ids) == 0 {
			continue
		}
		byCategory[cat] = append(byCategory[cat], domain.ManualMapping{
			VenueIDs:    ids,
			Description: m.Description,
		})
	}
	return domain.NewMappingTable(byCategory)
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5s", "2m").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Polymarket: PolymarketConfig{
			Enabled:   true,
			GammaHost: "https://gamma-api.polymarket.com",
		},
		Kalshi: KalshiConfig{
			Enabled: true,
			BaseURL: "https://api.elections.kalshi.com/trade-api/v2",
		},
		Limitless: LimitlessConfig{
			Enabled: false,
			BaseURL: "https://api.limitless.exchange",
		},
		Matching: MatchingConfig{
			TitleRatio:      80,
			PartialRatio:    90,
			TeamRatio:       85,
			TokenSortRatio:  85,
			TimeWindowHours: 24,
		},
		Tracker: TrackerConfig{
			Interval:       duration{5 * time.Second},
			LimitPerVenue:  100,
			HistorySize:    1000,
			PersistResults: true,
			ArchiveCSV:     false,
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "marketlens",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "marketlens-data",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"track":  true, // polling loop only
	"server": true, // HTTP/WS API only, serving persisted data
	"once":   true, // single aggregation cycle, print and exit
	"full":   true, // tracker + server
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: track, server, once, full)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if !c.Polymarket.Enabled && !c.Kalshi.Enabled && !c.Limitless.Enabled {
		errs = append(errs, "venues: at least one venue must be enabled")
	}
	if c.Polymarket.Enabled && c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}
	if c.Kalshi.Enabled && c.Kalshi.BaseURL == "" {
		errs = append(errs, "kalshi: base_url must not be empty")
	}
	if c.Limitless.Enabled && c.Limitless.BaseURL == "" {
		errs = append(errs, "limitless: base_url must not be empty")
	}

	for name, v := range map[string]int{
		"title_ratio":      c.Matching.TitleRatio,
		"partial_ratio":    c.Matching.PartialRatio,
		"team_ratio":       c.Matching.TeamRatio,
		"token_sort_ratio": c.Matching.TokenSortRatio,
	} {
		if v < 0 || v > 100 {
			errs = append(errs, fmt.Sprintf("matching: %s must be 0-100, got %d", name, v))
		}
	}
	if c.Matching.TimeWindowHours <= 0 {
		errs = append(errs, "matching: time_window_hours must be > 0")
	}

	if c.Tracker.Interval.Duration <= 0 {
		errs = append(errs, "tracker: interval must be > 0")
	}
	if c.Tracker.LimitPerVenue <= 0 {
		errs = append(errs, "tracker: limit_per_venue must be > 0")
	}
	if c.Tracker.HistorySize <= 0 {
		errs = append(errs, "tracker: history_size must be > 0")
	}

	if c.Tracker.PersistResults {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 || c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must be 0..pool_max_conns")
		}
	}

	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	if c.Tracker.ArchiveCSV {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when archive_csv is enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when archive_csv is enabled")
		}
	}

	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	// Mappings naming fewer than two venue ids are legal but can never
	// resolve; the engine skips them per cycle. Only a missing category is a
	// configuration error.
	for i, m := range c.Mappings {
		if m.Category == "" {
			errs = append(errs, fmt.Sprintf("mappings[%d]: category must not be empty", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
