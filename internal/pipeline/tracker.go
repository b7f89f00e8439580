// Package pipeline runs the fetch/match/compare cycle and fans results out
// to storage, caches, the signal bus, and alerting.
package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/marketlens/marketlens/internal/compare"
	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/match"
)

// CycleArchiver uploads one cycle's comparisons to object storage.
type CycleArchiver interface {
	ArchiveCycle(ctx context.Context, cycleID string, ts time.Time, comps []domain.Comparison) (string, error)
}

// ArbitrageAlerter pushes operator alerts for arbitrage findings.
type ArbitrageAlerter interface {
	AlertArbitrage(ctx context.Context, comps []domain.Comparison) error
}

// Config holds the tracker's loop parameters.
type Config struct {
	Interval       time.Duration
	LimitPerVenue  int
	HistorySize    int
	PersistResults bool
	ArchiveCSV     bool
}

// Deps collects the tracker's collaborators. Clients and Engine are
// required; everything else is optional and skipped when nil.
type Deps struct {
	Clients  []domain.VenueClient
	Engine   *match.Engine
	Cache    domain.ComparisonCache
	Prices   domain.PriceCache
	Store    domain.ComparisonStore
	History  domain.PriceHistoryStore
	Bus      domain.SignalBus
	Archiver CycleArchiver
	Alerter  ArbitrageAlerter
}

// Tracker repeatedly snapshots every venue, matches markets into groups,
// computes comparisons with deltas against the prior cycle, and distributes
// the results. It also holds the in-memory view the API handlers serve.
type Tracker struct {
	cfg    Config
	deps   Deps
	ring   *compare.HistoryRing
	logger *slog.Logger

	mu            sync.RWMutex
	latestComps   []domain.Comparison
	latestMarkets []domain.Market
	previous      []domain.Comparison
}

// NewTracker creates a Tracker.
func NewTracker(cfg Config, deps Deps, logger *slog.Logger) *Tracker {
	size := cfg.HistorySize
	if size <= 0 {
		size = compare.DefaultHistorySize
	}
	return &Tracker{
		cfg:    cfg,
		deps:   deps,
		ring:   compare.NewHistoryRing(size),
		logger: logger.With(slog.String("component", "tracker")),
	}
}

// RunLoop executes one cycle immediately, then one per interval until the
// context is cancelled. Cycle errors are logged, never fatal: a venue outage
// must not stop tracking.
func (t *Tracker) RunLoop(ctx context.Context) error {
	if err := t.RunOnce(ctx); err != nil {
		t.logger.Error("cycle failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(t.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := t.RunOnce(ctx); err != nil {
				t.logger.Error("cycle failed", slog.String("error", err.Error()))
			}
		}
	}
}

// RunOnce executes a single fetch/match/compare/distribute cycle.
func (t *Tracker) RunOnce(ctx context.Context) error {
	cycleID := uuid.NewString()
	started := time.Now().UTC()
	log := t.logger.With(slog.String("cycle_id", cycleID))

	markets := t.fetchAll(ctx, log)
	if len(markets) == 0 {
		log.Warn("no markets fetched, skipping cycle")
		return nil
	}

	groups := t.deps.Engine.Match(markets)

	comps := make([]domain.Comparison, 0, len(groups))
	for _, g := range groups {
		if c := compare.BuildComparison(g); c != nil {
			c.LastUpdated = started
			comps = append(comps, *c)
		}
	}

	previous := t.loadPrevious(ctx)
	comps = compare.ApplyDeltas(comps, previous)

	t.mu.Lock()
	entries := t.ring.Record(comps, started)
	t.latestComps = comps
	t.latestMarkets = markets
	t.previous = comps
	t.mu.Unlock()

	t.distribute(ctx, log, cycleID, started, comps, entries)

	arbs := 0
	for i := range comps {
		if comps[i].Arbitrage {
			arbs++
		}
	}
	log.Info("cycle complete",
		slog.Int("markets", len(markets)),
		slog.Int("groups", len(groups)),
		slog.Int("comparisons", len(comps)),
		slog.Int("arbitrage", arbs),
		slog.Duration("duration", time.Since(started)),
	)
	return nil
}

// fetchAll queries every venue concurrently and merges the results. A venue
// that errors contributes nothing; the cycle proceeds with whatever arrived.
func (t *Tracker) fetchAll(ctx context.Context, log *slog.Logger) []domain.Market {
	var (
		mu      sync.Mutex
		markets []domain.Market
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, client := range t.deps.Clients {
		g.Go(func() error {
			fetched, err := client.FetchMarkets(gctx, t.cfg.LimitPerVenue)
			if err != nil {
				log.Error("venue fetch failed",
					slog.String("venue", string(client.Venue())),
					slog.String("error", err.Error()),
				)
				return nil
			}
			mu.Lock()
			markets = append(markets, fetched...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return markets
}

// loadPrevious returns the prior cycle's comparisons, preferring the
// in-memory copy and falling back to the cache after a restart.
func (t *Tracker) loadPrevious(ctx context.Context) []domain.Comparison {
	t.mu.RLock()
	previous := t.previous
	t.mu.RUnlock()
	if previous != nil || t.deps.Cache == nil {
		return previous
	}

	cached, err := t.deps.Cache.GetPrevious(ctx)
	if err != nil {
		if err != domain.ErrNotFound {
			t.logger.Warn("previous cycle cache read failed", slog.String("error", err.Error()))
		}
		return nil
	}
	return cached
}

// distribute pushes the cycle's results to every configured sink. Sink
// failures are logged individually and never abort the cycle.
func (t *Tracker) distribute(ctx context.Context, log *slog.Logger, cycleID string, ts time.Time, comps []domain.Comparison, entries []domain.PriceHistoryEntry) {
	if t.deps.Cache != nil {
		if err := t.deps.Cache.SetPrevious(ctx, comps); err != nil {
			log.Error("previous cycle cache write failed", slog.String("error", err.Error()))
		}
	}

	if t.deps.Prices != nil {
		for _, e := range entries {
			key := domain.MarketKey{Venue: e.Venue, MarketID: e.MarketID}
			if err := t.deps.Prices.SetPrice(ctx, key, e.OutcomeName, e.Price, e.Timestamp); err != nil {
				log.Error("price cache write failed",
					slog.String("market", key.String()),
					slog.String("error", err.Error()),
				)
				break
			}
		}
	}

	if t.cfg.PersistResults && t.deps.Store != nil {
		if err := t.deps.Store.InsertBatch(ctx, cycleID, comps); err != nil {
			log.Error("comparison persist failed", slog.String("error", err.Error()))
		}
	}
	if t.cfg.PersistResults && t.deps.History != nil {
		if err := t.deps.History.AppendBatch(ctx, entries); err != nil {
			log.Error("price history persist failed", slog.String("error", err.Error()))
		}
	}

	if t.deps.Bus != nil {
		t.publish(ctx, log, cycleID, ts, comps)
	}

	if t.deps.Alerter != nil {
		if err := t.deps.Alerter.AlertArbitrage(ctx, comps); err != nil {
			log.Error("arbitrage alert failed", slog.String("error", err.Error()))
		}
	}

	if t.cfg.ArchiveCSV && t.deps.Archiver != nil {
		path, err := t.deps.Archiver.ArchiveCycle(ctx, cycleID, ts, comps)
		if err != nil {
			log.Error("cycle archive failed", slog.String("error", err.Error()))
		} else if path != "" {
			log.Debug("cycle archived", slog.String("path", path))
		}
	}
}

// publish sends the full cycle on "comparisons" and the arbitrage subset on
// "arbitrage".
func (t *Tracker) publish(ctx context.Context, log *slog.Logger, cycleID string, ts time.Time, comps []domain.Comparison) {
	arbs := make([]domain.Comparison, 0)
	for i := range comps {
		if comps[i].Arbitrage {
			arbs = append(arbs, comps[i])
		}
	}

	envelope := func(kind string, payload []domain.Comparison) []byte {
		data, err := json.Marshal(map[string]any{
			"type":        kind,
			"cycle_id":    cycleID,
			"timestamp":   ts.Format(time.RFC3339),
			"comparisons": payload,
		})
		if err != nil {
			log.Error("cycle payload marshal failed", slog.String("error", err.Error()))
			return nil
		}
		return data
	}

	if data := envelope("comparisons", comps); data != nil {
		if err := t.deps.Bus.Publish(ctx, "comparisons", data); err != nil {
			log.Error("publish comparisons failed", slog.String("error", err.Error()))
		}
	}
	if len(arbs) > 0 {
		if data := envelope("arbitrage", arbs); data != nil {
			if err := t.deps.Bus.Publish(ctx, "arbitrage", data); err != nil {
				log.Error("publish arbitrage failed", slog.String("error", err.Error()))
			}
		}
	}
}

// LatestComparisons returns the most recent cycle's comparisons.
func (t *Tracker) LatestComparisons() []domain.Comparison {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.latestComps
}

// LatestMarkets returns the most recent cycle's unified market snapshot.
func (t *Tracker) LatestMarkets() []domain.Market {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.latestMarkets
}

// HistoryEntries returns recent ring observations for one market.
func (t *Tracker) HistoryEntries(venue domain.Venue, marketID string, limit int) []domain.PriceHistoryEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ring.Entries(venue, marketID, limit)
}
