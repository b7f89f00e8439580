package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	s3blob "github.com/marketlens/marketlens/internal/blob/s3"
	"github.com/marketlens/marketlens/internal/cache/redis"
	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/match"
	"github.com/marketlens/marketlens/internal/notify"
	"github.com/marketlens/marketlens/internal/platform/kalshi"
	"github.com/marketlens/marketlens/internal/platform/limitless"
	"github.com/marketlens/marketlens/internal/platform/polymarket"
	"github.com/marketlens/marketlens/internal/store/postgres"
)

// Dependencies bundles everything the application modes need. Optional
// backends (Postgres, Redis, S3, notifications) are nil when their
// configuration is absent; the tracker and server degrade gracefully.
type Dependencies struct {
	Clients []domain.VenueClient
	Engine  *match.Engine

	ComparisonStore domain.ComparisonStore
	HistoryStore    domain.PriceHistoryStore

	ComparisonCache domain.ComparisonCache
	PriceCache      domain.PriceCache
	SignalBus       domain.SignalBus

	BlobWriter domain.BlobWriter
	Archiver   *s3blob.Archiver

	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Venue clients ---
	if cfg.Polymarket.Enabled {
		deps.Clients = append(deps.Clients, polymarket.NewClient(cfg.Polymarket.GammaHost, logger))
	}
	if cfg.Kalshi.Enabled {
		client := kalshi.NewClient(cfg.Kalshi.BaseURL, cfg.Kalshi.ApiKey, logger)
		if cfg.Kalshi.RsaPrivateKeyPath != "" {
			pemBytes, err := os.ReadFile(cfg.Kalshi.RsaPrivateKeyPath)
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: read kalshi private key: %w", err)
			}
			if err := client.SetRSAPrivateKey(pemBytes); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: kalshi private key: %w", err)
			}
		}
		deps.Clients = append(deps.Clients, client)
	}
	if cfg.Limitless.Enabled {
		deps.Clients = append(deps.Clients, limitless.NewClient(cfg.Limitless.BaseURL, logger))
	}
	if len(deps.Clients) == 0 {
		cleanup()
		return nil, nil, fmt.Errorf("wire: no venue clients enabled")
	}

	// --- Matching engine ---
	deps.Engine = match.NewEngine(cfg.MappingTable(), match.Thresholds{
		TitleRatio:     cfg.Matching.TitleRatio,
		PartialRatio:   cfg.Matching.PartialRatio,
		TeamRatio:      cfg.Matching.TeamRatio,
		TokenSortRatio: cfg.Matching.TokenSortRatio,
		TimeWindow:     time.Duration(cfg.Matching.TimeWindowHours) * time.Hour,
	}, logger)

	// --- PostgreSQL (optional) ---
	if cfg.Postgres.DSN != "" || cfg.Postgres.Host != "" {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		pool := pgClient.Pool()
		deps.ComparisonStore = postgres.NewComparisonStore(pool)
		deps.HistoryStore = postgres.NewPriceHistoryStore(pool)
	}

	// --- Redis (optional) ---
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.ComparisonCache = redis.NewComparisonCache(redisClient)
		deps.PriceCache = redis.NewPriceCache(redisClient)
		deps.SignalBus = redis.NewSignalBus(redisClient)
	}

	// --- S3 blob storage (optional) ---
	if cfg.Tracker.ArchiveCSV && cfg.S3.Bucket != "" {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}

		deps.BlobWriter = s3blob.NewWriter(s3Client)
		deps.Archiver = s3blob.NewArchiver(deps.BlobWriter)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	if len(senders) > 0 {
		deps.Notifier = notify.NewNotifier(senders, logger)
	}

	return deps, cleanup, nil
}
