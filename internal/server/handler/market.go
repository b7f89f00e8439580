package handler

import (
	"log/slog"
	"net/http"

	"github.com/marketlens/marketlens/internal/domain"
)

// MarketHandler serves the latest unified market snapshot from the tracker.
type MarketHandler struct {
	source SnapshotSource
	logger *slog.Logger
}

// NewMarketHandler creates a MarketHandler.
func NewMarketHandler(source SnapshotSource, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		source: source,
		logger: logger.With(slog.String("handler", "markets")),
	}
}

// ListMarkets returns the latest fetched markets, optionally filtered by
// venue.
// GET /api/markets?venue=kalshi&limit=100
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		writeError(w, http.StatusServiceUnavailable, "no tracker running in this process")
		return
	}

	limit := parseLimit(r)
	venue := r.URL.Query().Get("venue")
	if venue != "" && !domain.Venue(venue).Valid() {
		writeError(w, http.StatusBadRequest, "unknown venue: "+venue)
		return
	}

	markets := h.source.LatestMarkets()
	if venue != "" {
		filtered := markets[:0:0]
		for _, m := range markets {
			if m.Venue == domain.Venue(venue) {
				filtered = append(filtered, m)
			}
		}
		markets = filtered
	}
	if len(markets) > limit {
		markets = markets[:limit]
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"markets": markets,
		"count":   len(markets),
	})
}
