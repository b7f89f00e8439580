package match

import "strings"

// nflTeams lists lowercased NFL city keys with their canonical mascot
// tokens. The two-team cities carry a disambiguating initial ("new york j"
// for the Jets) so containment checks stay unambiguous. Containment scans
// walk this slice in order, so resolution is deterministic for inputs that
// could match more than one entry.
var nflTeams = []struct {
	city, mascot string
}{
	// AFC East
	{"buffalo", "bills"},
	{"miami", "dolphins"},
	{"new england", "patriots"},
	{"new york j", "jets"},

	// AFC North
	{"baltimore", "ravens"},
	{"cincinnati", "bengals"},
	{"cleveland", "browns"},
	{"pittsburgh", "steelers"},

	// AFC South
	{"houston", "texans"},
	{"indianapolis", "colts"},
	{"jacksonville", "jaguars"},
	{"tennessee", "titans"},

	// AFC West
	{"denver", "broncos"},
	{"kansas city", "chiefs"},
	{"las vegas", "raiders"},
	{"los angeles c", "chargers"},

	// NFC East
	{"dallas", "cowboys"},
	{"new york g", "giants"},
	{"philadelphia", "eagles"},
	{"washington", "commanders"},

	// NFC North
	{"chicago", "bears"},
	{"detroit", "lions"},
	{"green bay", "packers"},
	{"minnesota", "vikings"},

	// NFC South
	{"atlanta", "falcons"},
	{"carolina", "panthers"},
	{"new orleans", "saints"},
	{"tampa bay", "buccaneers"},

	// NFC West
	{"arizona", "cardinals"},
	{"los angeles r", "rams"},
	{"san francisco", "49ers"},
	{"seattle", "seahawks"},
}

// nflMascots holds the canonical mascot tokens for exact lookup.
var nflMascots = func() map[string]bool {
	m := make(map[string]bool, len(nflTeams))
	for _, t := range nflTeams {
		m[t.mascot] = true
	}
	return m
}()

// nflMascotAliases maps alternative spellings to canonical mascots.
var nflMascotAliases = map[string]string{
	"bucs":          "buccaneers",
	"niners":        "49ers",
	"football team": "commanders", // pre-2022 Washington name
}

// NormalizeNFLTeamName resolves a city, mascot, or "City Mascot" string to a
// canonical mascot token. Resolution order: exact mascot, alias, city
// containment (both directions, so "Kansas City Chiefs" and bare "Kansas"
// both hit), mascot containment. Unmapped input is returned lowercased, a
// stable token that simply matches nothing; this function never fails.
func NormalizeNFLTeamName(team string) string {
	t := strings.ToLower(strings.TrimSpace(team))
	t = strings.ReplaceAll(t, " at ", " ")
	t = strings.ReplaceAll(t, " vs ", " ")
	t = strings.ReplaceAll(t, " vs. ", " ")

	if nflMascots[t] {
		return t
	}
	if mascot, ok := nflMascotAliases[t]; ok {
		return mascot
	}
	for _, team := range nflTeams {
		if strings.Contains(t, team.city) || strings.Contains(team.city, t) {
			return team.mascot
		}
	}
	for _, team := range nflTeams {
		if strings.Contains(t, team.mascot) {
			return team.mascot
		}
	}
	return t
}

// nflSeparators is the broader split set used for sport titles; " at " shows
// up in sportsbook-style wording where generic titles use "@".
var nflSeparators = []string{" vs. ", " vs ", " at ", " @ "}

// nflBoilerplate phrases are stripped from each segment before lookup.
var nflBoilerplate = []string{"winner?", "winner", "spread:", "o/u", "over/under"}

// ExtractNFLTeams pulls canonical mascot tokens out of a sports market title.
// City-vs-mascot wording differs systematically between venues for the same
// game, so both spellings resolve to the same token set. Segments that name
// no known franchise contribute nothing.
func ExtractNFLTeams(title string) []string {
	lower := strings.ToLower(title)

	parts := []string{lower}
	for _, sep := range nflSeparators {
		if strings.Contains(lower, sep) {
			parts = strings.Split(lower, sep)
			break
		}
	}

	var teams []string
	seen := make(map[string]bool)
	add := func(mascot string) {
		if !seen[mascot] {
			seen[mascot] = true
			teams = append(teams, mascot)
		}
	}

	for _, part := range parts {
		for _, phrase := range nflBoilerplate {
			part = strings.ReplaceAll(part, phrase, "")
		}
		part = strings.TrimSpace(part)

		matched := false
		for _, team := range nflTeams {
			if strings.Contains(part, team.city) {
				add(team.mascot)
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		for _, team := range nflTeams {
			if strings.Contains(part, team.mascot) {
				add(team.mascot)
				break
			}
		}
	}

	return teams
}

// SameNFLTeams reports whether two extracted team lists resolve to identical
// canonical mascot sets. Empty lists never match.
func SameNFLTeams(teams1, teams2 []string) bool {
	if len(teams1) == 0 || len(teams2) == 0 {
		return false
	}
	set1 := make(map[string]bool, len(teams1))
	for _, t := range teams1 {
		set1[NormalizeNFLTeamName(t)] = true
	}
	set2 := make(map[string]bool, len(teams2))
	for _, t := range teams2 {
		set2[NormalizeNFLTeamName(t)] = true
	}
	if len(set1) != len(set2) {
		return false
	}
	for t := range set1 {
		if !set2[t] {
			return false
		}
	}
	return true
}
