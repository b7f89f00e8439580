package limitless

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/match"
)

// flexID unmarshals from a JSON number or string; the Limitless API has sent
// both over time.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

func (f flexID) String() string { return string(f) }

// APIMarket represents a market as returned by the Limitless Exchange API.
type APIMarket struct {
	ID             flexID    `json:"id"`
	Title          string    `json:"title"`
	Question       string    `json:"question"`
	Outcomes       []string  `json:"outcomes"`
	Prices         []float64 `json:"prices"`
	LastPrice      *float64  `json:"lastPrice"`
	Category       string    `json:"category"`
	Tags           []string  `json:"tags"`
	CreatedAt      string    `json:"createdAt"`
	Deadline       string    `json:"deadline"`
	ExpirationDate string    `json:"expirationDate"`
	Volume         *float64  `json:"volumeFormatted"`
	Liquidity      *float64  `json:"liquidity"`
	Status         string    `json:"status"`
	Active         *bool     `json:"active"`
	Closed         bool      `json:"closed"`
}

// ToDomainMarket converts a Limitless market into the unified model. Markets
// without explicit outcomes are treated as binary Yes/No; prices outside
// (0,1) fall back to 0.5.
func (a *APIMarket) ToDomainMarket(now time.Time) (domain.Market, bool) {
	question := a.Title
	if question == "" {
		question = a.Question
	}
	if a.ID.String() == "" || question == "" {
		return domain.Market{}, false
	}

	names := a.Outcomes
	if len(names) == 0 {
		names = []string{"Yes", "No"}
	}

	outcomes := make([]domain.Outcome, 0, len(names))
	for i, name := range names {
		price := 0.5
		switch {
		case i < len(a.Prices):
			price = a.Prices[i]
		case a.LastPrice != nil:
			price = *a.LastPrice
		}
		if price <= 0 || price >= 1 {
			price = 0.5
		}
		outcomes = append(outcomes, domain.NewOutcome(name, price))
	}

	active := a.Status != "closed"
	if a.Active != nil {
		active = active && *a.Active
	}

	m := domain.Market{
		Venue:           domain.VenueLimitless,
		MarketID:        a.ID.String(),
		Question:        question,
		Outcomes:        outcomes,
		Category:        a.inferCategory(),
		CategoryLabel:   a.categoryLabel(),
		Active:          active,
		Closed:          a.Status == "closed" || a.Closed,
		TotalVolume:     a.Volume,
		Liquidity:       a.Liquidity,
		NormalizedTitle: match.NormalizeTitle(question),
		NormalizedTeams: match.ExtractTeamNames(question),
		FetchedAt:       now,
	}

	if t, err := time.Parse(time.RFC3339, a.CreatedAt); err == nil {
		m.StartTime = &t
	}
	deadline := a.Deadline
	if deadline == "" {
		deadline = a.ExpirationDate
	}
	if t, err := time.Parse(time.RFC3339, deadline); err == nil {
		m.EndTime = &t
	}

	return m, true
}

// categoryLabel picks the venue-native category string, falling back to the
// first tag.
func (a *APIMarket) categoryLabel() string {
	if a.Category != "" {
		return a.Category
	}
	if len(a.Tags) > 0 {
		return a.Tags[0]
	}
	return ""
}

// inferCategory classifies a Limitless market from its category, tags, and
// title text.
func (a *APIMarket) inferCategory() domain.MarketCategory {
	haystack := strings.ToLower(a.Category + " " + a.Title + " " + strings.Join(a.Tags, " "))

	for _, kw := range []string{"nfl", "nba", "mlb", "nhl", "soccer", "football", "basketball", "sports"} {
		if strings.Contains(haystack, kw) {
			return domain.CategorySports
		}
	}
	for _, kw := range []string{"election", "president", "politics", "senate"} {
		if strings.Contains(haystack, kw) {
			return domain.CategoryPolitics
		}
	}
	for _, kw := range []string{"crypto", "bitcoin", "btc", "ethereum", "eth", "solana"} {
		if strings.Contains(haystack, kw) {
			return domain.CategoryCrypto
		}
	}
	if strings.Contains(haystack, "entertainment") || strings.Contains(haystack, "music") || strings.Contains(haystack, "movie") {
		return domain.CategoryEntertainment
	}

	return domain.CategoryOther
}
