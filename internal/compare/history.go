package compare

import (
	"time"

	"github.com/marketlens/marketlens/internal/domain"
)

// DefaultHistorySize bounds the in-memory price history ring.
const DefaultHistorySize = 1000

// HistoryRing keeps the most recent price observations in a fixed-size
// window. It is not safe for concurrent use; the tracker owns one and
// touches it from a single goroutine.
type HistoryRing struct {
	entries []domain.PriceHistoryEntry
	max     int
}

// NewHistoryRing creates a ring bounded to max entries. A non-positive max
// falls back to DefaultHistorySize.
func NewHistoryRing(max int) *HistoryRing {
	if max <= 0 {
		max = DefaultHistorySize
	}
	return &HistoryRing{max: max}
}

// Record appends one observation per outcome per member market of every
// comparison, all stamped with the same timestamp, then trims the ring to
// its bound.
func (r *HistoryRing) Record(comps []domain.Comparison, ts time.Time) []domain.PriceHistoryEntry {
	var added []domain.PriceHistoryEntry
	for _, c := range comps {
		for _, m := range c.Markets {
			for _, o := range m.Outcomes {
				added = append(added, domain.PriceHistoryEntry{
					Venue:       m.Venue,
					MarketID:    m.MarketID,
					OutcomeName: o.Name,
					Timestamp:   ts,
					Price:       o.Price,
					Volume:      o.Volume,
				})
			}
		}
	}

	r.entries = append(r.entries, added...)
	if len(r.entries) > r.max {
		r.entries = r.entries[len(r.entries)-r.max:]
	}
	return added
}

// Entries returns the retained window, oldest first, optionally filtered by
// venue and market id. limit <= 0 means no limit; otherwise the most recent
// limit entries are returned.
func (r *HistoryRing) Entries(venue domain.Venue, marketID string, limit int) []domain.PriceHistoryEntry {
	filtered := make([]domain.PriceHistoryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if venue != "" && e.Venue != venue {
			continue
		}
		if marketID != "" && e.MarketID != marketID {
			continue
		}
		filtered = append(filtered, e)
	}
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[len(filtered)-limit:]
	}
	return filtered
}

// Len returns the number of retained entries.
func (r *HistoryRing) Len() int {
	return len(r.entries)
}
