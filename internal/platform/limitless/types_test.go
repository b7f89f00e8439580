package limitless

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/marketlens/marketlens/internal/domain"
)

func TestFlexID(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"abc-123"`, "abc-123"},
		{`42`, "42"},
		{`42.5`, "42.5"},
	}
	for _, tt := range tests {
		var f flexID
		if err := json.Unmarshal([]byte(tt.raw), &f); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.raw, err)
		}
		if f.String() != tt.want {
			t.Errorf("flexID(%s) = %q, want %q", tt.raw, f, tt.want)
		}
	}
}

func TestToDomainMarket(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	api := APIMarket{
		ID:       flexID("77"),
		Title:    "Will Bitcoin reach $100k?",
		Outcomes: []string{"Yes", "No"},
		Prices:   []float64{0.75, 0.25},
		Tags:     []string{"Crypto"},
		Status:   "active",
		Deadline: "2026-12-31T00:00:00Z",
	}

	m, ok := api.ToDomainMarket(now)
	if !ok {
		t.Fatal("ToDomainMarket() = false, want true")
	}
	if m.Venue != domain.VenueLimitless || m.MarketID != "77" {
		t.Errorf("identity = %s/%s", m.Venue, m.MarketID)
	}
	if m.Outcomes[0].Price != 0.75 || m.Outcomes[1].Price != 0.25 {
		t.Errorf("prices = %v/%v", m.Outcomes[0].Price, m.Outcomes[1].Price)
	}
	if m.Category != domain.CategoryCrypto {
		t.Errorf("Category = %q, want crypto from the tag", m.Category)
	}
	if m.CategoryLabel != "Crypto" {
		t.Errorf("CategoryLabel = %q, want the first tag", m.CategoryLabel)
	}
	if !m.Active || m.Closed {
		t.Errorf("Active/Closed = %v/%v", m.Active, m.Closed)
	}
	if m.EndTime == nil || !m.EndTime.Equal(time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("EndTime = %v, want the deadline", m.EndTime)
	}
}

func TestToDomainMarketDefaultsAndFallbacks(t *testing.T) {
	last := 0.625
	api := APIMarket{
		ID:             flexID("9"),
		Question:       "Question field only?",
		LastPrice:      &last,
		ExpirationDate: "2026-10-01T00:00:00Z",
	}

	m, ok := api.ToDomainMarket(time.Now())
	if !ok {
		t.Fatal("ToDomainMarket() = false, want true")
	}
	if m.Question != "Question field only?" {
		t.Errorf("Question = %q", m.Question)
	}
	// No explicit outcomes: binary defaults, both priced from lastPrice.
	if len(m.Outcomes) != 2 || m.Outcomes[0].Name != "Yes" || m.Outcomes[1].Name != "No" {
		t.Fatalf("Outcomes = %+v", m.Outcomes)
	}
	if m.Outcomes[0].Price != 0.625 {
		t.Errorf("price = %v, want lastPrice 0.625", m.Outcomes[0].Price)
	}
	if m.EndTime == nil {
		t.Error("EndTime = nil, want expirationDate fallback")
	}
}

func TestToDomainMarketSanitizesDegeneratePrices(t *testing.T) {
	api := APIMarket{
		ID:       flexID("3"),
		Title:    "Settled market",
		Outcomes: []string{"Yes", "No"},
		Prices:   []float64{1.0, 0},
	}
	m, ok := api.ToDomainMarket(time.Now())
	if !ok {
		t.Fatal("ToDomainMarket() = false, want true")
	}
	for _, o := range m.Outcomes {
		if o.Price != 0.5 {
			t.Errorf("outcome %q price = %v, want 0.5", o.Name, o.Price)
		}
	}
}

func TestToDomainMarketRejectsMissingIdentity(t *testing.T) {
	if _, ok := (&APIMarket{Title: "no id"}).ToDomainMarket(time.Now()); ok {
		t.Error("accepted a market without an id")
	}
	if _, ok := (&APIMarket{ID: flexID("1")}).ToDomainMarket(time.Now()); ok {
		t.Error("accepted a market without a title or question")
	}
}

func TestClosedStatus(t *testing.T) {
	api := APIMarket{ID: flexID("5"), Title: "Done", Status: "closed"}
	m, ok := api.ToDomainMarket(time.Now())
	if !ok {
		t.Fatal("ToDomainMarket() = false, want true")
	}
	if m.Active || !m.Closed {
		t.Errorf("Active/Closed = %v/%v for status closed", m.Active, m.Closed)
	}
}
