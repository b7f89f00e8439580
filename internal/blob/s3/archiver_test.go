package s3blob

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"testing"
	"time"

	"github.com/marketlens/marketlens/internal/domain"
)

type fakeWriter struct {
	path        string
	contentType string
	body        []byte
}

func (f *fakeWriter) Put(_ context.Context, path string, data io.Reader, contentType string) error {
	f.path = path
	f.contentType = contentType
	body, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.body = body
	return nil
}

func TestArchiveCycle(t *testing.T) {
	writer := &fakeWriter{}
	archiver := NewArchiver(writer)

	ts := time.Date(2026, 8, 26, 14, 30, 0, 0, time.UTC)
	profit := 3.0
	comps := []domain.Comparison{
		{
			Question:         "Will Trump win the 2028 election?",
			Category:         domain.CategoryPolitics,
			BestVenue:        domain.VenueKalshi,
			BestOutcomeName:  "Yes",
			BestPrice:        0.45,
			BestOdds:         "+122",
			PriceSpread:      5,
			Arbitrage:        true,
			ArbitragePercent: &profit,
			PriceDeltas:      map[string]float64{"polymarket": 5, "kalshi": -2},
			LastUpdated:      ts,
			Markets: []domain.Market{
				{Venue: domain.VenueKalshi, MarketID: "k1"},
				{Venue: domain.VenuePolymarket, MarketID: "p1"},
			},
		},
	}

	path, err := archiver.ArchiveCycle(context.Background(), "cycle-1", ts, comps)
	if err != nil {
		t.Fatalf("ArchiveCycle() error: %v", err)
	}
	if path != "snapshots/2026/08/26/cycle-1.csv" {
		t.Errorf("path = %q", path)
	}
	if writer.contentType != "text/csv" {
		t.Errorf("content type = %q", writer.contentType)
	}

	records, err := csv.NewReader(bytes.NewReader(writer.body)).ReadAll()
	if err != nil {
		t.Fatalf("parse uploaded CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("CSV has %d rows, want header + 1", len(records))
	}

	header, row := records[0], records[1]
	byCol := make(map[string]string, len(header))
	for i, name := range header {
		byCol[name] = row[i]
	}

	checks := map[string]string{
		"question":          "Will Trump win the 2028 election?",
		"category":          "politics",
		"venues":            "kalshi|polymarket",
		"best_venue":        "kalshi",
		"best_price":        "0.45",
		"price_spread":      "5.00",
		"arbitrage":         "true",
		"arbitrage_percent": "3.00",
		"delta_polymarket":  "5.00",
		"delta_kalshi":      "-2.00",
		"delta_limitless":   "",
	}
	for col, want := range checks {
		if got, ok := byCol[col]; !ok || got != want {
			t.Errorf("column %q = %q, want %q", col, got, want)
		}
	}
}

func TestArchiveCycleEmpty(t *testing.T) {
	writer := &fakeWriter{}
	archiver := NewArchiver(writer)

	path, err := archiver.ArchiveCycle(context.Background(), "cycle-2", time.Now(), nil)
	if err != nil {
		t.Fatalf("ArchiveCycle() error: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q for empty cycle, want empty", path)
	}
	if writer.body != nil {
		t.Error("empty cycle still uploaded an object")
	}
}
