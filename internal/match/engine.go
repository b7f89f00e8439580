package match

import (
	"log/slog"
	"time"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/marketlens/marketlens/internal/domain"
)

// Thresholds are the similarity knobs for the heuristic pass. All scores are
// integers on the 0-100 scale.
type Thresholds struct {
	TitleRatio     int           // rule a: exact-title character ratio
	PartialRatio   int           // rule b: best-substring alignment ratio
	TeamRatio      int           // rule d: per-team-pair character ratio
	TokenSortRatio int           // rule e: order-insensitive token ratio
	TimeWindow     time.Duration // max start-time gap for time-gated rules
}

// DefaultThresholds mirror the tuning the service has run with in production.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TitleRatio:     80,
		PartialRatio:   90,
		TeamRatio:      85,
		TokenSortRatio: 85,
		TimeWindow:     24 * time.Hour,
	}
}

// Engine partitions a flat market snapshot into same-event groups. It is
// stateless between calls: the manual-mapping table is injected at
// construction and never mutated, and the "consumed" set lives inside a
// single Match invocation.
type Engine struct {
	mappings   domain.MappingTable
	thresholds Thresholds
	logger     *slog.Logger
}

// NewEngine creates a matching engine with the given override table and
// thresholds.
func NewEngine(mappings domain.MappingTable, thresholds Thresholds, logger *slog.Logger) *Engine {
	return &Engine{
		mappings:   mappings,
		thresholds: thresholds,
		logger:     logger.With(slog.String("component", "match_engine")),
	}
}

// Match partitions markets into MatchGroups: first the manual-override pass,
// then the heuristic pass over whatever the overrides did not consume.
// Category partitions are walked in the fixed domain.Categories order and
// markets in their original order, so output is deterministic for a given
// snapshot.
func (e *Engine) Match(markets []domain.Market) []domain.MatchGroup {
	if len(markets) == 0 {
		return nil
	}

	byKey := make(map[domain.MarketKey]domain.Market, len(markets))
	for _, m := range markets {
		byKey[m.Key()] = m
	}

	consumed := make(map[domain.MarketKey]bool)
	groups := e.overridePass(byKey, consumed)

	byCategory := make(map[domain.MarketCategory][]domain.Market)
	for _, m := range markets {
		byCategory[m.Category] = append(byCategory[m.Category], m)
	}

	for _, cat := range domain.Categories {
		partition := byCategory[cat]
		if len(partition) == 0 {
			continue
		}
		groups = append(groups, e.heuristicPass(partition, consumed)...)
	}

	return groups
}

// overridePass resolves every manual mapping against the current snapshot.
// A mapping that finds at least two distinct-venue markets becomes a group
// and consumes its members; anything thinner is skipped silently, since the
// referenced market may simply be outside the current fetch window.
func (e *Engine) overridePass(byKey map[domain.MarketKey]domain.Market, consumed map[domain.MarketKey]bool) []domain.MatchGroup {
	var groups []domain.MatchGroup

	for _, category := range e.mappings.Categories() {
		for _, mapping := range e.mappings.MappingsFor(category) {
			var members []domain.Market
			for _, venue := range domain.Venues {
				id, ok := mapping.VenueIDs[venue]
				if !ok || id == "" {
					continue
				}
				if m, ok := byKey[domain.MarketKey{Venue: venue, MarketID: id}]; ok {
					members = append(members, m)
				}
			}
			if len(members) < 2 {
				continue
			}
			for _, m := range members {
				consumed[m.Key()] = true
			}
			groups = append(groups, domain.MatchGroup{Markets: members})
			e.logger.Debug("manual mapping matched",
				slog.String("category", category),
				slog.String("description", mapping.Description),
				slog.Int("members", len(members)),
			)
		}
	}

	return groups
}

// heuristicPass scans one category partition in order, opening a candidate
// group per unconsumed market and greedily pulling in later similar markets
// from other venues. Singleton groups are discarded.
func (e *Engine) heuristicPass(partition []domain.Market, consumed map[domain.MarketKey]bool) []domain.MatchGroup {
	var groups []domain.MatchGroup

	for i, anchor := range partition {
		if consumed[anchor.Key()] {
			continue
		}
		group := []domain.Market{anchor}
		consumed[anchor.Key()] = true

		for _, candidate := range partition[i+1:] {
			if consumed[candidate.Key()] {
				continue
			}
			// A group never holds two markets from the same venue.
			if candidate.Venue == anchor.Venue {
				continue
			}
			if candidate.Category != anchor.Category {
				continue
			}
			if e.areSimilar(anchor, candidate) {
				group = append(group, candidate)
				consumed[candidate.Key()] = true
			}
		}

		if len(group) > 1 {
			groups = append(groups, domain.MatchGroup{Markets: group})
		}
	}

	return groups
}

// areSimilar decides whether two markets reference the same event. The rules
// form an ordered short-circuit chain; the first satisfied rule decides and
// later rules are never evaluated. Any failure inside a rule is treated as
// inconclusive, never as a mismatch.
func (e *Engine) areSimilar(a, b domain.Market) (similar bool) {
	defer func() {
		// Malformed text must not take down a matching pass; an unscorable
		// pair is simply not a match.
		if r := recover(); r != nil {
			e.logger.Warn("similarity check panicked",
				slog.String("a", a.Key().String()),
				slog.String("b", b.Key().String()),
				slog.Any("panic", r),
			)
			similar = false
		}
	}()

	if a.Category != b.Category {
		return false
	}

	// Rule a: exact-title character ratio.
	if fuzzy.Ratio(a.NormalizedTitle, b.NormalizedTitle) >= e.thresholds.TitleRatio {
		return true
	}

	// Rule b: one normalized title aligned inside the other.
	if fuzzy.PartialRatio(a.NormalizedTitle, b.NormalizedTitle) >= e.thresholds.PartialRatio {
		return true
	}

	if a.Category == domain.CategorySports {
		// Rule c: canonical mascot sets extracted from the raw questions.
		// City-vs-mascot wording differs per venue, so this path catches
		// pairs the title ratios miss. Extraction yielding nothing falls
		// through; it is inconclusive, not a rejection.
		teamsA := ExtractNFLTeams(a.Question)
		teamsB := ExtractNFLTeams(b.Question)
		if len(teamsA) >= 1 && len(teamsB) >= 1 && SameNFLTeams(teamsA, teamsB) && e.timeProximity(a, b) {
			return true
		}

		// Rule d: generic team-pair scoring over the normalized team lists.
		if len(a.NormalizedTeams) > 0 && len(b.NormalizedTeams) > 0 {
			teamMatches := 0
			for _, ta := range a.NormalizedTeams {
				for _, tb := range b.NormalizedTeams {
					if fuzzy.Ratio(ta, tb) >= e.thresholds.TeamRatio {
						teamMatches++
						break
					}
				}
			}
			if teamMatches >= 2 && e.timeProximity(a, b) {
				return true
			}
		}
	}

	// Rule e: order-insensitive token similarity, time-gated.
	if fuzzy.TokenSortRatio(a.NormalizedTitle, b.NormalizedTitle) >= e.thresholds.TokenSortRatio {
		if e.timeProximity(a, b) {
			return true
		}
	}

	return false
}

// timeProximity passes when the markets' start times are within the
// configured window. Missing data never blocks a match: if either side has
// no start time the check passes vacuously.
func (e *Engine) timeProximity(a, b domain.Market) bool {
	if a.StartTime == nil || b.StartTime == nil {
		return true
	}
	diff := a.StartTime.Sub(*b.StartTime)
	if diff < 0 {
		diff = -diff
	}
	return diff <= e.thresholds.TimeWindow
}
