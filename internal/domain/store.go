package domain

import (
	"context"
	"io"
	"time"
)

// VenueClient fetches a venue's current listings as unified Markets. Clients
// own all venue-specific authentication, pagination, and price sanitization:
// every Outcome they emit carries a probability strictly inside (0,1).
type VenueClient interface {
	Venue() Venue
	FetchMarkets(ctx context.Context, limit int) ([]Market, error)
}

// ComparisonStore persists comparison rows per cycle.
type ComparisonStore interface {
	InsertBatch(ctx context.Context, cycleID string, comps []Comparison) error
	Latest(ctx context.Context, limit int) ([]Comparison, error)
	LatestByCategory(ctx context.Context, category MarketCategory, limit int) ([]Comparison, error)
}

// PriceHistoryStore persists append-only price observations.
type PriceHistoryStore interface {
	AppendBatch(ctx context.Context, entries []PriceHistoryEntry) error
	Recent(ctx context.Context, venue Venue, marketID string, limit int) ([]PriceHistoryEntry, error)
}

// ComparisonCache holds the previous cycle's comparisons so the delta tracker
// survives process restarts.
type ComparisonCache interface {
	SetPrevious(ctx context.Context, comps []Comparison) error
	GetPrevious(ctx context.Context) ([]Comparison, error)
}

// PriceCache caches the latest observed first-outcome price per market.
type PriceCache interface {
	SetPrice(ctx context.Context, key MarketKey, outcome string, price float64, ts time.Time) error
	GetPrice(ctx context.Context, key MarketKey, outcome string) (float64, time.Time, error)
}

// SignalBus is the pub/sub fabric carrying cycle results to live consumers
// (the websocket hub, notifiers running out of process).
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// BlobWriter uploads snapshot exports to object storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}
