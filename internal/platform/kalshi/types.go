package kalshi

import (
	"strings"
	"time"

	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/match"
)

// APIMarket represents a market as returned by the Kalshi REST API. Prices
// are in cents (1-99).
type APIMarket struct {
	Ticker                 string  `json:"ticker"`
	EventTicker            string  `json:"event_ticker"`
	SeriesTicker           string  `json:"series_ticker"`
	Title                  string  `json:"title"`
	Subtitle               string  `json:"subtitle"`
	Status                 string  `json:"status"` // "open", "closed", "settled"
	YesBid                 float64 `json:"yes_bid"`
	YesAsk                 float64 `json:"yes_ask"`
	NoBid                  float64 `json:"no_bid"`
	NoAsk                  float64 `json:"no_ask"`
	LastPrice              float64 `json:"last_price"`
	Volume                 float64 `json:"volume"`
	Liquidity              float64 `json:"liquidity"`
	Category               string  `json:"category"`
	OpenTime               string  `json:"open_time"`
	CloseTime              string  `json:"close_time"`
	ExpectedExpirationTime string  `json:"expected_expiration_time"`
}

// APIErrorResponse is the error envelope Kalshi returns on non-2xx status.
type APIErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ToDomainMarket converts a Kalshi binary market into the unified model.
// Ask prices are used (what a buyer pays), with last_price as fallback and
// 0.5 when no usable quote exists.
func (a *APIMarket) ToDomainMarket(now time.Time) (domain.Market, bool) {
	if a.Ticker == "" || a.Title == "" {
		return domain.Market{}, false
	}

	question := a.Title
	if a.Subtitle != "" && a.Subtitle != a.Title {
		question = a.Title + ": " + a.Subtitle
	}

	yesPrice := a.YesAsk / 100.0
	if yesPrice == 0 {
		yesPrice = a.LastPrice / 100.0
	}
	noPrice := a.NoAsk / 100.0
	if noPrice == 0 {
		noPrice = 1.0 - yesPrice
	}
	if yesPrice <= 0 || yesPrice >= 1 {
		yesPrice = 0.5
	}
	if noPrice <= 0 || noPrice >= 1 {
		noPrice = 0.5
	}

	yes := domain.NewOutcome("Yes", yesPrice)
	no := domain.NewOutcome("No", noPrice)
	if a.YesBid > 0 {
		bid := a.YesBid / 100.0
		yes.BestBid = &bid
	}
	if a.YesAsk > 0 {
		ask := a.YesAsk / 100.0
		yes.BestAsk = &ask
	}
	if a.NoBid > 0 {
		bid := a.NoBid / 100.0
		no.BestBid = &bid
	}
	if a.NoAsk > 0 {
		ask := a.NoAsk / 100.0
		no.BestAsk = &ask
	}
	if a.Volume > 0 {
		vol := a.Volume
		yes.Volume = &vol
		no.Volume = &vol
	}

	m := domain.Market{
		Venue:           domain.VenueKalshi,
		MarketID:        a.Ticker,
		Question:        question,
		Outcomes:        []domain.Outcome{yes, no},
		Category:        a.inferCategory(),
		CategoryLabel:   a.Category,
		Subcategory:     a.SeriesTicker,
		Active:          a.Status == "open",
		Closed:          a.Status == "closed" || a.Status == "settled",
		NormalizedTitle: match.NormalizeTitle(question),
		NormalizedTeams: match.ExtractTeamNames(question),
		FetchedAt:       now,
		Raw: map[string]any{
			"event_ticker": a.EventTicker,
			"status":       a.Status,
		},
	}

	if a.Volume > 0 {
		vol := a.Volume
		m.TotalVolume = &vol
	}
	if a.Liquidity > 0 {
		liq := a.Liquidity
		m.Liquidity = &liq
	}

	// expected_expiration_time is the actual game time; open_time is just
	// market creation.
	if t, err := time.Parse(time.RFC3339, a.ExpectedExpirationTime); err == nil {
		m.StartTime = &t
	}
	if t, err := time.Parse(time.RFC3339, a.CloseTime); err == nil {
		m.EndTime = &t
	}

	return m, true
}

// inferCategory classifies a Kalshi market from its category label, tickers,
// and title text.
func (a *APIMarket) inferCategory() domain.MarketCategory {
	haystack := strings.ToLower(a.Category + " " + a.EventTicker + " " + a.Ticker + " " + a.Title)

	for _, kw := range []string{"nfl", "nba", "mlb", "nhl", "game", "match", "football", "basketball", "soccer"} {
		if strings.Contains(haystack, kw) {
			return domain.CategorySports
		}
	}
	for _, kw := range []string{"election", "president", "senate", "congress", "politics"} {
		if strings.Contains(haystack, kw) {
			return domain.CategoryPolitics
		}
	}
	for _, kw := range []string{"crypto", "bitcoin", "btc", "ethereum", "eth"} {
		if strings.Contains(haystack, kw) {
			return domain.CategoryCrypto
		}
	}
	if strings.Contains(haystack, "entertainment") || strings.Contains(haystack, "oscars") {
		return domain.CategoryEntertainment
	}

	return domain.CategoryOther
}
