package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies MARKETLENS_* environment variable overrides,
// and returns the final Config. The returned Config has NOT been validated;
// the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known MARKETLENS_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	setBool(&cfg.Polymarket.Enabled, "MARKETLENS_POLYMARKET_ENABLED")
	setStr(&cfg.Polymarket.GammaHost, "MARKETLENS_POLYMARKET_GAMMA_HOST")

	setBool(&cfg.Kalshi.Enabled, "MARKETLENS_KALSHI_ENABLED")
	setStr(&cfg.Kalshi.BaseURL, "MARKETLENS_KALSHI_BASE_URL")
	setStr(&cfg.Kalshi.ApiKey, "MARKETLENS_KALSHI_API_KEY")
	setStr(&cfg.Kalshi.RsaPrivateKeyPath, "MARKETLENS_KALSHI_RSA_PRIVATE_KEY_PATH")

	setBool(&cfg.Limitless.Enabled, "MARKETLENS_LIMITLESS_ENABLED")
	setStr(&cfg.Limitless.BaseURL, "MARKETLENS_LIMITLESS_BASE_URL")

	setInt(&cfg.Matching.TitleRatio, "MARKETLENS_MATCHING_TITLE_RATIO")
	setInt(&cfg.Matching.PartialRatio, "MARKETLENS_MATCHING_PARTIAL_RATIO")
	setInt(&cfg.Matching.TeamRatio, "MARKETLENS_MATCHING_TEAM_RATIO")
	setInt(&cfg.Matching.TokenSortRatio, "MARKETLENS_MATCHING_TOKEN_SORT_RATIO")
	setInt(&cfg.Matching.TimeWindowHours, "MARKETLENS_MATCHING_TIME_WINDOW_HOURS")

	setDuration(&cfg.Tracker.Interval, "MARKETLENS_TRACKER_INTERVAL")
	setInt(&cfg.Tracker.LimitPerVenue, "MARKETLENS_TRACKER_LIMIT_PER_VENUE")
	setInt(&cfg.Tracker.HistorySize, "MARKETLENS_TRACKER_HISTORY_SIZE")
	setBool(&cfg.Tracker.PersistResults, "MARKETLENS_TRACKER_PERSIST_RESULTS")
	setBool(&cfg.Tracker.ArchiveCSV, "MARKETLENS_TRACKER_ARCHIVE_CSV")

	setStr(&cfg.Postgres.DSN, "MARKETLENS_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "MARKETLENS_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "MARKETLENS_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "MARKETLENS_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "MARKETLENS_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "MARKETLENS_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "MARKETLENS_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "MARKETLENS_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "MARKETLENS_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "MARKETLENS_POSTGRES_RUN_MIGRATIONS")

	setStr(&cfg.Redis.Addr, "MARKETLENS_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "MARKETLENS_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "MARKETLENS_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "MARKETLENS_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "MARKETLENS_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "MARKETLENS_REDIS_TLS_ENABLED")

	setStr(&cfg.S3.Endpoint, "MARKETLENS_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "MARKETLENS_S3_REGION")
	setStr(&cfg.S3.Bucket, "MARKETLENS_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "MARKETLENS_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "MARKETLENS_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "MARKETLENS_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "MARKETLENS_S3_FORCE_PATH_STYLE")

	setBool(&cfg.Server.Enabled, "MARKETLENS_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "MARKETLENS_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "MARKETLENS_SERVER_CORS_ORIGINS")

	setStr(&cfg.Notify.TelegramToken, "MARKETLENS_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "MARKETLENS_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "MARKETLENS_NOTIFY_DISCORD_WEBHOOK_URL")

	setStr(&cfg.Mode, "MARKETLENS_MODE")
	setStr(&cfg.LogLevel, "MARKETLENS_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
