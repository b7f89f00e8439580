// Package match implements the identity layer: title and team-name
// normalization plus the engine that partitions unified markets into
// same-event groups.
package match

import "strings"

// titlePrefixes are interrogative lead-ins stripped from market questions.
// Only the first matching prefix is removed, once per call.
var titlePrefixes = []string{
	"will ", "who will ", "which ", "does ", "is ", "are ", "what ",
}

// titleSuffixes are trailing fragments stripped from market questions. Only
// the first matching suffix is removed, once per call.
var titleSuffixes = []string{
	" win", " beat", " defeat", "?", ".", " win?", " beat?",
}

// NormalizeTitle canonicalizes a market question for comparison: lowercase,
// strip one leading prefix and one trailing suffix, collapse whitespace.
// The single-pass affix stripping is deliberate; titles with stacked affixes
// keep the remainder, and matching thresholds tolerate it.
func NormalizeTitle(title string) string {
	normalized := strings.ToLower(title)

	for _, prefix := range titlePrefixes {
		if strings.HasPrefix(normalized, prefix) {
			normalized = normalized[len(prefix):]
			break
		}
	}

	for _, suffix := range titleSuffixes {
		if strings.HasSuffix(normalized, suffix) {
			normalized = normalized[:len(normalized)-len(suffix)]
			break
		}
	}

	return strings.Join(strings.Fields(normalized), " ")
}

// teamDelimiters are checked in priority order; only the first one found in
// the title is used to split.
var teamDelimiters = []string{" vs. ", " vs ", " @ "}

// ExtractTeamNames splits a title into participant names on the first
// matching delimiter and normalizes each segment. A title with no delimiter
// yields nil: the caller treats that as "no team info available".
func ExtractTeamNames(title string) []string {
	for _, delim := range teamDelimiters {
		if !strings.Contains(title, delim) {
			continue
		}
		parts := strings.Split(title, delim)
		teams := make([]string, 0, len(parts))
		for _, p := range parts {
			teams = append(teams, NormalizeTitle(strings.TrimSpace(p)))
		}
		return teams
	}
	return nil
}
