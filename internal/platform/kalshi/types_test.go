package kalshi

import (
	"testing"
	"time"

	"github.com/marketlens/marketlens/internal/domain"
)

func TestToDomainMarket(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	api := APIMarket{
		Ticker:                 "KXNFLGAME-26SEP13KCJAX-KC",
		EventTicker:            "KXNFLGAME-26SEP13KCJAX",
		SeriesTicker:           "KXNFLGAME",
		Title:                  "Chiefs vs Jaguars Winner?",
		Status:                 "open",
		YesBid:                 54,
		YesAsk:                 56,
		NoBid:                  44,
		NoAsk:                  46,
		LastPrice:              55,
		Volume:                 10000,
		ExpectedExpirationTime: "2026-09-13T20:00:00Z",
		CloseTime:              "2026-09-13T23:00:00Z",
	}

	m, ok := api.ToDomainMarket(now)
	if !ok {
		t.Fatal("ToDomainMarket() = false, want true")
	}
	if m.Venue != domain.VenueKalshi || m.MarketID != api.Ticker {
		t.Errorf("identity = %s/%s", m.Venue, m.MarketID)
	}
	if len(m.Outcomes) != 2 {
		t.Fatalf("Outcomes = %+v", m.Outcomes)
	}
	if m.Outcomes[0].Name != "Yes" || m.Outcomes[0].Price != 0.56 {
		t.Errorf("yes outcome = %+v, want ask 0.56", m.Outcomes[0])
	}
	if m.Outcomes[1].Price != 0.46 {
		t.Errorf("no price = %v, want ask 0.46", m.Outcomes[1].Price)
	}
	if m.Outcomes[0].BestBid == nil || *m.Outcomes[0].BestBid != 0.54 {
		t.Errorf("yes best bid = %v, want 0.54", m.Outcomes[0].BestBid)
	}
	if m.Category != domain.CategorySports {
		t.Errorf("Category = %q, want sports from the ticker", m.Category)
	}
	if !m.Active || m.Closed {
		t.Errorf("Active/Closed = %v/%v for an open market", m.Active, m.Closed)
	}
	if m.StartTime == nil || !m.StartTime.Equal(time.Date(2026, 9, 13, 20, 0, 0, 0, time.UTC)) {
		t.Errorf("StartTime = %v, want expected expiration time", m.StartTime)
	}
}

func TestToDomainMarketPriceFallbacks(t *testing.T) {
	api := APIMarket{
		Ticker:    "T-1",
		Title:     "Quoteless market",
		Status:    "open",
		LastPrice: 75,
	}
	m, ok := api.ToDomainMarket(time.Now())
	if !ok {
		t.Fatal("ToDomainMarket() = false, want true")
	}
	if m.Outcomes[0].Price != 0.75 {
		t.Errorf("yes price = %v, want last_price fallback 0.75", m.Outcomes[0].Price)
	}
	if m.Outcomes[1].Price != 0.25 {
		t.Errorf("no price = %v, want 1 - yes = 0.25", m.Outcomes[1].Price)
	}

	// No quotes at all: both sides settle at 0.5.
	blank := APIMarket{Ticker: "T-2", Title: "Dead market", Status: "open"}
	m, ok = blank.ToDomainMarket(time.Now())
	if !ok {
		t.Fatal("ToDomainMarket() = false, want true")
	}
	if m.Outcomes[0].Price != 0.5 || m.Outcomes[1].Price != 0.5 {
		t.Errorf("prices = %v/%v, want 0.5/0.5", m.Outcomes[0].Price, m.Outcomes[1].Price)
	}
}

func TestToDomainMarketQuestionIncludesSubtitle(t *testing.T) {
	api := APIMarket{
		Ticker:   "T-3",
		Title:    "High temperature in NYC",
		Subtitle: "Above 90F",
		Status:   "settled",
		YesAsk:   30,
	}
	m, ok := api.ToDomainMarket(time.Now())
	if !ok {
		t.Fatal("ToDomainMarket() = false, want true")
	}
	if m.Question != "High temperature in NYC: Above 90F" {
		t.Errorf("Question = %q", m.Question)
	}
	if m.Active || !m.Closed {
		t.Errorf("Active/Closed = %v/%v for a settled market", m.Active, m.Closed)
	}
}

func TestToDomainMarketRejectsMissingIdentity(t *testing.T) {
	if _, ok := (&APIMarket{Title: "no ticker"}).ToDomainMarket(time.Now()); ok {
		t.Error("accepted a market without a ticker")
	}
	if _, ok := (&APIMarket{Ticker: "T"}).ToDomainMarket(time.Now()); ok {
		t.Error("accepted a market without a title")
	}
}

func TestInferCategory(t *testing.T) {
	tests := []struct {
		name string
		api  APIMarket
		want domain.MarketCategory
	}{
		{"nfl ticker", APIMarket{Ticker: "KXNFLGAME-X"}, domain.CategorySports},
		{"election title", APIMarket{Ticker: "T", Title: "Presidential election winner"}, domain.CategoryPolitics},
		{"btc ticker", APIMarket{Ticker: "KXBTC-100K"}, domain.CategoryCrypto},
		{"oscars", APIMarket{Category: "Oscars"}, domain.CategoryEntertainment},
		{"unclassified", APIMarket{Ticker: "T", Title: "Rainfall in Seattle"}, domain.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.api.inferCategory(); got != tt.want {
				t.Errorf("inferCategory() = %q, want %q", got, tt.want)
			}
		})
	}
}
