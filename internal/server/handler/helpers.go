package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/marketlens/marketlens/internal/domain"
)

// SnapshotSource exposes the tracker's in-memory view of the latest cycle.
// It is nil in server-only deployments, where handlers fall back to the
// persistent stores.
type SnapshotSource interface {
	LatestComparisons() []domain.Comparison
	LatestMarkets() []domain.Market
	HistoryEntries(venue domain.Venue, marketID string, limit int) []domain.PriceHistoryEntry
}

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseLimit extracts the limit query parameter. Defaults to 50, capped at
// 500.
func parseLimit(r *http.Request) int {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 500 {
		limit = 500
	}
	return limit
}
