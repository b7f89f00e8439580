package handler

import (
	"log/slog"
	"net/http"

	"github.com/marketlens/marketlens/internal/domain"
)

// ComparisonHandler serves the latest cross-venue comparisons. It prefers
// the tracker's in-memory snapshot and falls back to the persistent store
// when no tracker runs in this process.
type ComparisonHandler struct {
	source SnapshotSource
	store  domain.ComparisonStore
	logger *slog.Logger
}

// NewComparisonHandler creates a ComparisonHandler. Either source or store
// may be nil, but not both.
func NewComparisonHandler(source SnapshotSource, store domain.ComparisonStore, logger *slog.Logger) *ComparisonHandler {
	return &ComparisonHandler{
		source: source,
		store:  store,
		logger: logger.With(slog.String("handler", "comparisons")),
	}
}

// ListComparisons returns the latest comparisons, optionally filtered by
// category.
// GET /api/comparisons?category=sports&limit=100
func (h *ComparisonHandler) ListComparisons(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r)
	category := r.URL.Query().Get("category")
	if category != "" && !validCategory(category) {
		writeError(w, http.StatusBadRequest, "unknown category: "+category)
		return
	}

	comps, err := h.fetch(r, category, limit)
	if err != nil {
		h.logger.Error("list comparisons failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to load comparisons")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"comparisons": comps,
		"count":       len(comps),
	})
}

// ListArbitrage returns only comparisons where an arbitrage condition holds.
// GET /api/arbitrage?limit=100
func (h *ComparisonHandler) ListArbitrage(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r)

	comps, err := h.fetch(r, "", limit)
	if err != nil {
		h.logger.Error("list arbitrage failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to load comparisons")
		return
	}

	arbs := comps[:0:0]
	for _, c := range comps {
		if c.Arbitrage {
			arbs = append(arbs, c)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"arbitrage": arbs,
		"count":     len(arbs),
	})
}

func (h *ComparisonHandler) fetch(r *http.Request, category string, limit int) ([]domain.Comparison, error) {
	if h.source != nil {
		comps := h.source.LatestComparisons()
		if category != "" {
			filtered := comps[:0:0]
			for _, c := range comps {
				if c.Category == domain.MarketCategory(category) {
					filtered = append(filtered, c)
				}
			}
			comps = filtered
		}
		if len(comps) > limit {
			comps = comps[:limit]
		}
		return comps, nil
	}

	if h.store == nil {
		return nil, nil
	}
	if category != "" {
		return h.store.LatestByCategory(r.Context(), domain.MarketCategory(category), limit)
	}
	return h.store.Latest(r.Context(), limit)
}

func validCategory(s string) bool {
	for _, c := range domain.Categories {
		if string(c) == s {
			return true
		}
	}
	return false
}
