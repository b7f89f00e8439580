package domain

import (
	"reflect"
	"testing"
)

func TestNewMappingTableOrderAndLen(t *testing.T) {
	table := NewMappingTable(map[string][]ManualMapping{
		"politics": {
			{VenueIDs: map[Venue]string{VenuePolymarket: "p1", VenueKalshi: "k1"}},
			{VenueIDs: map[Venue]string{VenuePolymarket: "p2", VenueLimitless: "l1"}},
		},
		"nfl": {
			{VenueIDs: map[Venue]string{VenueKalshi: "k2", VenueLimitless: "l2"}},
		},
		"empty": nil,
	})

	want := []string{"nfl", "politics"}
	if got := table.Categories(); !reflect.DeepEqual(got, want) {
		t.Errorf("Categories() = %v, want %v (sorted, empties dropped)", got, want)
	}
	if table.Len() != 3 {
		t.Errorf("Len() = %d, want 3", table.Len())
	}
	if got := table.MappingsFor("politics"); len(got) != 2 {
		t.Errorf("MappingsFor(politics) returned %d mappings, want 2", len(got))
	}
	if got := table.MappingsFor("unknown"); got != nil {
		t.Errorf("MappingsFor(unknown) = %v, want nil", got)
	}
}

func TestNewMappingTableCopiesInput(t *testing.T) {
	src := map[string][]ManualMapping{
		"politics": {
			{VenueIDs: map[Venue]string{VenuePolymarket: "p1"}, Description: "original"},
		},
	}
	table := NewMappingTable(src)

	src["politics"][0].Description = "mutated"

	if got := table.MappingsFor("politics")[0].Description; got != "original" {
		t.Errorf("table saw caller mutation, Description = %q", got)
	}
}

func TestZeroMappingTable(t *testing.T) {
	var table MappingTable
	if table.Len() != 0 {
		t.Errorf("zero table Len() = %d, want 0", table.Len())
	}
	if got := table.Categories(); len(got) != 0 {
		t.Errorf("zero table Categories() = %v, want empty", got)
	}
}
