package domain

import "sort"

// ManualMapping is one curator-authored identity override: up to one native
// market id per venue, plus a human description. When at least two of the
// referenced markets are present in a fetch cycle they are grouped
// unconditionally, bypassing heuristic matching.
type ManualMapping struct {
	VenueIDs    map[Venue]string
	Description string
}

// MappingTable is the full curated override set, keyed by category name
// (free-form, e.g. "politics", "nfl", "crypto"). It is built once at process
// start from configuration and never mutated at runtime; curation happens
// offline in the config file.
type MappingTable struct {
	byCategory map[string][]ManualMapping
	categories []string
}

// NewMappingTable builds an immutable table from the given category map.
// Category iteration order is fixed to the lexicographically sorted key set
// so override-pass output is reproducible.
func NewMappingTable(mappings map[string][]ManualMapping) MappingTable {
	byCat := make(map[string][]ManualMapping, len(mappings))
	cats := make([]string, 0, len(mappings))
	for cat, list := range mappings {
		if len(list) == 0 {
			continue
		}
		copied := make([]ManualMapping, len(list))
		copy(copied, list)
		byCat[cat] = copied
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	return MappingTable{byCategory: byCat, categories: cats}
}

// Categories returns the mapped category names in fixed order.
func (t MappingTable) Categories() []string {
	return t.categories
}

// MappingsFor returns the mappings for one category. The returned slice must
// not be modified.
func (t MappingTable) MappingsFor(category string) []ManualMapping {
	return t.byCategory[category]
}

// Len returns the total number of mappings across categories.
func (t MappingTable) Len() int {
	n := 0
	for _, list := range t.byCategory {
		n += len(list)
	}
	return n
}
