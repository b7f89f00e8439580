package handler

import (
	"log/slog"
	"net/http"

	"github.com/marketlens/marketlens/internal/domain"
)

// HistoryHandler serves per-market price observations. Like the comparison
// handler it prefers the tracker's in-memory ring and falls back to the
// persistent store.
type HistoryHandler struct {
	source SnapshotSource
	store  domain.PriceHistoryStore
	logger *slog.Logger
}

// NewHistoryHandler creates a HistoryHandler. Either source or store may be
// nil, but not both.
func NewHistoryHandler(source SnapshotSource, store domain.PriceHistoryStore, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{
		source: source,
		store:  store,
		logger: logger.With(slog.String("handler", "history")),
	}
}

// GetHistory returns recent price observations for one market.
// GET /api/history/{venue}/{id}?limit=100
func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	venue := domain.Venue(r.PathValue("venue"))
	marketID := r.PathValue("id")
	if !venue.Valid() {
		writeError(w, http.StatusBadRequest, "unknown venue: "+string(venue))
		return
	}
	if marketID == "" {
		writeError(w, http.StatusBadRequest, "market id is required")
		return
	}
	limit := parseLimit(r)

	var (
		entries []domain.PriceHistoryEntry
		err     error
	)
	switch {
	case h.source != nil:
		entries = h.source.HistoryEntries(venue, marketID, limit)
	case h.store != nil:
		entries, err = h.store.Recent(r.Context(), venue, marketID, limit)
	}
	if err != nil {
		h.logger.Error("get history failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"venue":     venue,
		"market_id": marketID,
		"entries":   entries,
		"count":     len(entries),
	})
}
