package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/match"
)

type fakeVenueClient struct {
	venue   domain.Venue
	markets []domain.Market
	err     error
}

func (f *fakeVenueClient) Venue() domain.Venue { return f.venue }

func (f *fakeVenueClient) FetchMarkets(context.Context, int) ([]domain.Market, error) {
	return f.markets, f.err
}

type fakeComparisonCache struct {
	mu       sync.Mutex
	previous []domain.Comparison
	sets     int
}

func (f *fakeComparisonCache) SetPrevious(_ context.Context, comps []domain.Comparison) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.previous = comps
	f.sets++
	return nil
}

func (f *fakeComparisonCache) GetPrevious(context.Context) ([]domain.Comparison, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.previous == nil {
		return nil, domain.ErrNotFound
	}
	return f.previous, nil
}

type fakeBus struct {
	mu       sync.Mutex
	payloads map[string][][]byte
}

func (f *fakeBus) Publish(_ context.Context, channel string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.payloads == nil {
		f.payloads = make(map[string][][]byte)
	}
	f.payloads[channel] = append(f.payloads[channel], payload)
	return nil
}

func (f *fakeBus) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeBus) count(channel string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads[channel])
}

func venueMarket(venue domain.Venue, id, question string, price float64) domain.Market {
	return domain.Market{
		Venue:    venue,
		MarketID: id,
		Question: question,
		Category: domain.CategoryPolitics,
		Outcomes: []domain.Outcome{
			domain.NewOutcome("Yes", price),
			domain.NewOutcome("No", 1-price),
		},
		Active:          true,
		NormalizedTitle: match.NormalizeTitle(question),
		FetchedAt:       time.Now().UTC(),
	}
}

func newTestTracker(cfg Config, deps Deps) *Tracker {
	if deps.Engine == nil {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		deps.Engine = match.NewEngine(domain.NewMappingTable(nil), match.DefaultThresholds(), logger)
	}
	return NewTracker(cfg, deps, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRunOnceBuildsSnapshot(t *testing.T) {
	question := "Will Trump win the 2028 election?"
	bus := &fakeBus{}
	tr := newTestTracker(Config{LimitPerVenue: 100}, Deps{
		Clients: []domain.VenueClient{
			&fakeVenueClient{venue: domain.VenuePolymarket, markets: []domain.Market{
				venueMarket(domain.VenuePolymarket, "p1", question, 0.5),
			}},
			&fakeVenueClient{venue: domain.VenueKalshi, markets: []domain.Market{
				venueMarket(domain.VenueKalshi, "k1", question, 0.5),
			}},
		},
		Bus: bus,
	})

	if err := tr.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error: %v", err)
	}

	comps := tr.LatestComparisons()
	if len(comps) != 1 {
		t.Fatalf("LatestComparisons() = %d rows, want 1", len(comps))
	}
	if len(comps[0].PriceDeltas) != 0 {
		t.Errorf("first cycle has deltas: %v", comps[0].PriceDeltas)
	}
	if got := tr.LatestMarkets(); len(got) != 2 {
		t.Errorf("LatestMarkets() = %d, want 2", len(got))
	}
	// One history entry per outcome per member market.
	if got := tr.HistoryEntries("", "", 0); len(got) != 4 {
		t.Errorf("HistoryEntries() = %d, want 4", len(got))
	}
	if bus.count("comparisons") != 1 {
		t.Errorf("comparisons channel got %d publishes, want 1", bus.count("comparisons"))
	}
	if bus.count("arbitrage") != 0 {
		t.Errorf("arbitrage channel got %d publishes, want 0", bus.count("arbitrage"))
	}
}

func TestRunOnceComputesDeltasAgainstPriorCycle(t *testing.T) {
	question := "Will Trump win the 2028 election?"
	pm := &fakeVenueClient{venue: domain.VenuePolymarket, markets: []domain.Market{
		venueMarket(domain.VenuePolymarket, "p1", question, 0.5),
	}}
	ks := &fakeVenueClient{venue: domain.VenueKalshi, markets: []domain.Market{
		venueMarket(domain.VenueKalshi, "k1", question, 0.5),
	}}
	tr := newTestTracker(Config{LimitPerVenue: 100}, Deps{
		Clients: []domain.VenueClient{pm, ks},
	})

	if err := tr.RunOnce(context.Background()); err != nil {
		t.Fatalf("first RunOnce() error: %v", err)
	}

	pm.markets = []domain.Market{venueMarket(domain.VenuePolymarket, "p1", question, 0.55)}
	if err := tr.RunOnce(context.Background()); err != nil {
		t.Fatalf("second RunOnce() error: %v", err)
	}

	comps := tr.LatestComparisons()
	if len(comps) != 1 {
		t.Fatalf("LatestComparisons() = %d rows, want 1", len(comps))
	}
	if got := comps[0].PriceDeltas["polymarket"]; got != 5 {
		t.Errorf("polymarket delta = %v, want 5", got)
	}
	if got := comps[0].PriceDeltas["kalshi"]; got != 0 {
		t.Errorf("kalshi delta = %v, want 0", got)
	}
}

func TestRunOnceRecoversPreviousFromCache(t *testing.T) {
	question := "Will Trump win the 2028 election?"
	cache := &fakeComparisonCache{}

	// A prior process run left the last cycle in the cache.
	seed := newTestTracker(Config{LimitPerVenue: 100}, Deps{
		Clients: []domain.VenueClient{
			&fakeVenueClient{venue: domain.VenuePolymarket, markets: []domain.Market{
				venueMarket(domain.VenuePolymarket, "p1", question, 0.5),
			}},
			&fakeVenueClient{venue: domain.VenueKalshi, markets: []domain.Market{
				venueMarket(domain.VenueKalshi, "k1", question, 0.5),
			}},
		},
		Cache: cache,
	})
	if err := seed.RunOnce(context.Background()); err != nil {
		t.Fatalf("seed RunOnce() error: %v", err)
	}

	restarted := newTestTracker(Config{LimitPerVenue: 100}, Deps{
		Clients: []domain.VenueClient{
			&fakeVenueClient{venue: domain.VenuePolymarket, markets: []domain.Market{
				venueMarket(domain.VenuePolymarket, "p1", question, 0.55),
			}},
			&fakeVenueClient{venue: domain.VenueKalshi, markets: []domain.Market{
				venueMarket(domain.VenueKalshi, "k1", question, 0.5),
			}},
		},
		Cache: cache,
	})
	if err := restarted.RunOnce(context.Background()); err != nil {
		t.Fatalf("restarted RunOnce() error: %v", err)
	}

	comps := restarted.LatestComparisons()
	if len(comps) != 1 {
		t.Fatalf("LatestComparisons() = %d rows, want 1", len(comps))
	}
	if got := comps[0].PriceDeltas["polymarket"]; got != 5 {
		t.Errorf("polymarket delta after restart = %v, want 5", got)
	}
}

func TestRunOnceToleratesVenueOutage(t *testing.T) {
	question := "Will Trump win the 2028 election?"
	tr := newTestTracker(Config{LimitPerVenue: 100}, Deps{
		Clients: []domain.VenueClient{
			&fakeVenueClient{venue: domain.VenuePolymarket, markets: []domain.Market{
				venueMarket(domain.VenuePolymarket, "p1", question, 0.5),
			}},
			&fakeVenueClient{venue: domain.VenueKalshi, err: errors.New("kalshi 502")},
		},
	})

	if err := tr.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error with one venue down: %v", err)
	}
	if got := tr.LatestMarkets(); len(got) != 1 {
		t.Errorf("LatestMarkets() = %d, want 1 from the healthy venue", len(got))
	}
}

func TestRunOnceSkipsEmptyFetch(t *testing.T) {
	tr := newTestTracker(Config{LimitPerVenue: 100}, Deps{
		Clients: []domain.VenueClient{
			&fakeVenueClient{venue: domain.VenuePolymarket, err: errors.New("down")},
		},
	})

	if err := tr.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error: %v", err)
	}
	if got := tr.LatestComparisons(); got != nil {
		t.Errorf("LatestComparisons() = %v after empty fetch, want nil", got)
	}
}

func TestRunOncePublishesArbitrage(t *testing.T) {
	question := "Will Trump win the 2028 election?"
	pmMarket := venueMarket(domain.VenuePolymarket, "p1", question, 0.45)
	pmMarket.Outcomes = pmMarket.Outcomes[:1] // only the underpriced side trades
	ksMarket := venueMarket(domain.VenueKalshi, "k1", question, 0.52)
	ksMarket.Outcomes = ksMarket.Outcomes[:1]

	bus := &fakeBus{}
	tr := newTestTracker(Config{LimitPerVenue: 100}, Deps{
		Clients: []domain.VenueClient{
			&fakeVenueClient{venue: domain.VenuePolymarket, markets: []domain.Market{pmMarket}},
			&fakeVenueClient{venue: domain.VenueKalshi, markets: []domain.Market{ksMarket}},
		},
		Bus: bus,
	})

	if err := tr.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error: %v", err)
	}

	comps := tr.LatestComparisons()
	if len(comps) != 1 || !comps[0].Arbitrage {
		t.Fatalf("expected one arbitrage comparison, got %+v", comps)
	}
	if bus.count("arbitrage") != 1 {
		t.Errorf("arbitrage channel got %d publishes, want 1", bus.count("arbitrage"))
	}
}
