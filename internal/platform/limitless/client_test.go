package limitless

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetchMarketsBareArray(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`[
			{"id": 7, "title": "Will Bitcoin reach $100k?", "prices": [0.75, 0.25], "outcomes": ["Yes", "No"]}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	markets, err := c.FetchMarkets(context.Background(), 50)
	if err != nil {
		t.Fatalf("FetchMarkets() error: %v", err)
	}
	if gotPath != "/markets/active/2" {
		t.Errorf("path = %q, want /markets/active/2", gotPath)
	}
	if len(markets) != 1 || markets[0].MarketID != "7" {
		t.Fatalf("markets = %+v", markets)
	}
}

func TestFetchMarketsDataEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [
			{"id": "a1", "title": "Question one"},
			{"id": "a2", "title": "Question two"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	markets, err := c.FetchMarkets(context.Background(), 50)
	if err != nil {
		t.Fatalf("FetchMarkets() error: %v", err)
	}
	if len(markets) != 2 {
		t.Fatalf("FetchMarkets() = %d markets, want 2", len(markets))
	}
}

func TestFetchMarketsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	if _, err := c.FetchMarkets(context.Background(), 10); err == nil {
		t.Fatal("FetchMarkets() = nil error on HTTP 503, want error")
	}
}
