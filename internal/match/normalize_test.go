package match

import (
	"reflect"
	"testing"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{
			name:  "lowercases",
			title: "Chiefs VS Jaguars",
			want:  "chiefs vs jaguars",
		},
		{
			name:  "strips will prefix and question mark",
			title: "Will Bitcoin reach $100k?",
			want:  "bitcoin reach $100k",
		},
		{
			name:  "strips who will prefix",
			title: "Who will win the 2028 election?",
			want:  "win the 2028 election",
		},
		{
			name:  "strips only one suffix",
			title: "Will the Lakers win?",
			want:  "the lakers win",
		},
		{
			name:  "collapses internal whitespace",
			title: "Is  Bitcoin   above $100k?",
			want:  "bitcoin above $100k",
		},
		{
			name:  "no affixes leaves title intact",
			title: "Chiefs vs. Jaguars",
			want:  "chiefs vs. jaguars",
		},
		{
			name:  "empty input",
			title: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTitle(tt.title); got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestExtractTeamNames(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  []string
	}{
		{
			name:  "vs dot delimiter",
			title: "Lakers vs. Celtics",
			want:  []string{"lakers", "celtics"},
		},
		{
			name:  "bare vs delimiter",
			title: "Chiefs vs Jaguars",
			want:  []string{"chiefs", "jaguars"},
		},
		{
			name:  "at delimiter",
			title: "Jets @ Patriots",
			want:  []string{"jets", "patriots"},
		},
		{
			name:  "segments are normalized",
			title: "Will Chiefs vs Jaguars win?",
			want:  []string{"chiefs", "jaguars win"},
		},
		{
			name:  "no delimiter yields nil",
			title: "Bitcoin above 100k by March",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTeamNames(tt.title)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractTeamNames(%q) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}
