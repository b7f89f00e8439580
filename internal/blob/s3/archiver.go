package s3blob

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/marketlens/marketlens/internal/domain"
)

// Archiver uploads per-cycle comparison snapshots as CSV objects. One object
// is written per cycle at snapshots/YYYY/MM/DD/<cycleID>.csv.
type Archiver struct {
	writer domain.BlobWriter
}

// NewArchiver creates an Archiver writing through the given BlobWriter.
func NewArchiver(writer domain.BlobWriter) *Archiver {
	return &Archiver{writer: writer}
}

// ArchiveCycle serializes the cycle's comparisons to CSV and uploads the
// object. Cycles with no comparisons are skipped without an upload.
func (a *Archiver) ArchiveCycle(ctx context.Context, cycleID string, ts time.Time, comps []domain.Comparison) (string, error) {
	if len(comps) == 0 {
		return "", nil
	}

	buf, err := marshalCSV(comps)
	if err != nil {
		return "", fmt.Errorf("s3blob: archive cycle marshal: %w", err)
	}

	path := fmt.Sprintf("snapshots/%s/%s.csv", ts.UTC().Format("2006/01/02"), cycleID)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "text/csv"); err != nil {
		return "", fmt.Errorf("s3blob: archive cycle upload: %w", err)
	}

	return path, nil
}

// marshalCSV renders comparisons as a flat CSV table, one row per
// comparison. Per-venue delta columns follow the fixed venue order so the
// header is stable across cycles.
func marshalCSV(comps []domain.Comparison) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"question", "category", "venues",
		"best_venue", "best_outcome", "best_price", "best_odds",
		"price_spread", "arbitrage", "arbitrage_percent", "multi_outcome",
		"last_updated",
	}
	for _, v := range domain.Venues {
		header = append(header, "delta_"+string(v))
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for i := range comps {
		c := &comps[i]

		venues := make([]string, 0, len(c.Markets))
		for _, m := range c.Markets {
			venues = append(venues, string(m.Venue))
		}
		sort.Strings(venues)

		arbPct := ""
		if c.ArbitragePercent != nil {
			arbPct = strconv.FormatFloat(*c.ArbitragePercent, 'f', 2, 64)
		}

		row := []string{
			c.Question,
			string(c.Category),
			strings.Join(venues, "|"),
			string(c.BestVenue),
			c.BestOutcomeName,
			strconv.FormatFloat(c.BestPrice, 'f', -1, 64),
			c.BestOdds,
			strconv.FormatFloat(c.PriceSpread, 'f', 2, 64),
			strconv.FormatBool(c.Arbitrage),
			arbPct,
			strconv.FormatBool(c.MultiOutcome),
			c.LastUpdated.UTC().Format(time.RFC3339),
		}
		for _, v := range domain.Venues {
			if delta, ok := c.PriceDeltas[string(v)]; ok {
				row = append(row, strconv.FormatFloat(delta, 'f', 2, 64))
			} else {
				row = append(row, "")
			}
		}

		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
