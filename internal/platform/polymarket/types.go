package polymarket

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/match"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// APITag is a category label attached to a Gamma market.
type APITag struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

// APIEvent groups related markets and carries the sport/league metadata the
// markets themselves lack.
type APIEvent struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	SportLabel string `json:"sportLabel"`
	LeagueName string `json:"leagueName"`
}

// APIMarket represents a market as returned by the Polymarket Gamma API.
type APIMarket struct {
	ID            string     `json:"id"`
	ConditionID   string     `json:"conditionId"`
	Question      string     `json:"question"`
	Slug          string     `json:"slug"`
	Active        flexBool   `json:"active"` // API may send bool or "true"/"false" string
	Closed        bool       `json:"closed"`
	Outcomes      string     `json:"outcomes"`      // JSON-encoded: e.g. "[\"Yes\",\"No\"]"
	OutcomePrices string     `json:"outcomePrices"` // JSON-encoded: e.g. "[\"0.5\",\"0.5\"]"
	Category      string     `json:"category"`
	Tags          []APITag   `json:"tags"`
	Events        []APIEvent `json:"events"`
	VolumeNum     *float64   `json:"volumeNum"`
	LiquidityNum  *float64   `json:"liquidityNum"`
	GameStartTime string     `json:"gameStartTime"`
	EndDate       string     `json:"endDate"`
	Description   string     `json:"description"`
}

// ToDomainMarket converts an APIMarket into the unified model. It returns
// false when the market is unusable: missing identity, malformed outcome
// arrays, or no outcome left after price sanitization.
func (a *APIMarket) ToDomainMarket(now time.Time) (domain.Market, bool) {
	marketID := a.ConditionID
	if marketID == "" {
		marketID = a.ID
	}
	if marketID == "" || a.Question == "" {
		return domain.Market{}, false
	}

	var names []string
	var priceStrs []string
	if err := json.Unmarshal([]byte(a.Outcomes), &names); err != nil {
		return domain.Market{}, false
	}
	if err := json.Unmarshal([]byte(a.OutcomePrices), &priceStrs); err != nil {
		return domain.Market{}, false
	}
	if len(names) == 0 || len(names) != len(priceStrs) {
		return domain.Market{}, false
	}

	outcomes := make([]domain.Outcome, 0, len(names))
	for i, name := range names {
		var price float64
		if err := json.Unmarshal([]byte(priceStrs[i]), &price); err != nil {
			continue
		}
		if price <= 0 || price >= 1 {
			price = 0.5
		}
		outcomes = append(outcomes, domain.NewOutcome(name, price))
	}
	if len(outcomes) == 0 {
		return domain.Market{}, false
	}

	m := domain.Market{
		Venue:           domain.VenuePolymarket,
		MarketID:        marketID,
		Question:        a.Question,
		Outcomes:        outcomes,
		Category:        a.inferCategory(),
		CategoryLabel:   a.Category,
		Active:          bool(a.Active),
		Closed:          a.Closed,
		TotalVolume:     a.VolumeNum,
		Liquidity:       a.LiquidityNum,
		NormalizedTitle: match.NormalizeTitle(a.Question),
		NormalizedTeams: match.ExtractTeamNames(a.Question),
		FetchedAt:       now,
		Raw: map[string]any{
			"id":   a.ID,
			"slug": a.Slug,
		},
	}

	if len(a.Tags) > 0 {
		m.Subcategory = a.Tags[0].Label
	}
	if len(a.Events) > 0 {
		m.Sport = a.Events[0].SportLabel
		m.League = a.Events[0].LeagueName
	}
	if t, err := time.Parse(time.RFC3339, a.GameStartTime); err == nil {
		m.StartTime = &t
	}
	if t, err := time.Parse(time.RFC3339, a.EndDate); err == nil {
		m.EndTime = &t
	}

	return m, true
}

// inferCategory classifies a Gamma market from its tags, events, and
// category label, in that priority order.
func (a *APIMarket) inferCategory() domain.MarketCategory {
	for _, tag := range a.Tags {
		label := strings.ToLower(tag.Label)
		for _, kw := range sportsTagKeywords {
			if strings.Contains(label, kw) {
				return domain.CategorySports
			}
		}
		if strings.Contains(label, "politics") || strings.Contains(label, "election") {
			return domain.CategoryPolitics
		}
		if strings.Contains(label, "crypto") || strings.Contains(label, "bitcoin") || strings.Contains(label, "ethereum") {
			return domain.CategoryCrypto
		}
		if strings.Contains(label, "entertainment") || strings.Contains(label, "pop culture") {
			return domain.CategoryEntertainment
		}
	}

	// Markets attached to an event are game markets.
	if len(a.Events) > 0 {
		return domain.CategorySports
	}

	category := strings.ToLower(a.Category)
	switch {
	case strings.Contains(category, "sports"):
		return domain.CategorySports
	case strings.Contains(category, "politics"):
		return domain.CategoryPolitics
	case strings.Contains(category, "crypto"):
		return domain.CategoryCrypto
	case strings.Contains(category, "entertainment"):
		return domain.CategoryEntertainment
	}

	return domain.CategoryOther
}

var sportsTagKeywords = []string{
	"nfl", "nba", "mlb", "nhl", "soccer", "football", "basketball",
	"tennis", "ufc", "mma",
}
