package fold

import (
	"slices"
	"testing"

	"github.com/solatis/rulefold/internal/types"
)

func TestAssemble(t *testing.T) {
	d := day("2001-01-01")
	clusters := []Consolidated{
		{
			Cluster:  Cluster{Entries: []types.FileEntry{{Date: d, File: "f1"}}},
			Patterns: []types.MatchTuple{tup("WFC", "CLEAR|F606W")},
			Folded:   true,
		},
		{
			Cluster:  Cluster{Entries: []types.FileEntry{{Date: d, File: "f2"}}},
			Patterns: []types.MatchTuple{tup("HRC", "CLEAR")},
			Folded:   true,
		},
	}

	table, warnings := Assemble(clusters)
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	want := []types.MatchTuple{tup("HRC", "CLEAR"), tup("WFC", "CLEAR|F606W")}
	if got := table.Patterns(); !sameTuples(got, want) {
		t.Errorf("Patterns() = %v, want %v", got, want)
	}
	if rules := table.Rules(); !slices.Equal(rules[0].Clusters, []int{1}) || !slices.Equal(rules[1].Clusters, []int{0}) {
		t.Errorf("Rules() clusters = %v, %v, want [1], [0]", rules[0].Clusters, rules[1].Clusters)
	}
	if _, ok := table.Lookup(tup("ACS", "CLEAR")); ok {
		t.Errorf("Lookup(unknown) found, want not found")
	}
}

func TestAssemble_MergesCollidingPatterns(t *testing.T) {
	d := day("2001-01-01")
	clusters := []Consolidated{
		{
			Cluster:  Cluster{Entries: []types.FileEntry{{Date: d, File: "f1"}}},
			Patterns: []types.MatchTuple{tup("WFC", "CLEAR")},
		},
		{
			Cluster:  Cluster{Entries: []types.FileEntry{{Date: d, File: "f2"}}},
			Patterns: []types.MatchTuple{tup("WFC", "CLEAR")},
		},
	}

	table, warnings := Assemble(clusters)
	if table.Len() != 1 {
		t.Fatalf("Len() = %v, want 1", table.Len())
	}
	if n := countKind(warnings, types.WarnTableCollision); n != 1 {
		t.Errorf("table_collision warnings = %v, want 1", n)
	}
	if got := table.Rules()[0].Clusters; !slices.Equal(got, []int{0, 1}) {
		t.Errorf("Clusters = %v, want [0 1]", got)
	}
	entries, _ := table.Lookup(tup("WFC", "CLEAR"))
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %v, want 2", len(entries))
	}
	if entries[0].Ambiguous() || !entries[1].Ambiguous() {
		t.Errorf("entries = %v, want only the second marked", entries)
	}
}

func TestRuleTable_CopiesAreIndependent(t *testing.T) {
	clusters := []Consolidated{{
		Cluster:  Cluster{Entries: []types.FileEntry{{Date: day("2001-01-01"), File: "f1"}}},
		Patterns: []types.MatchTuple{tup("WFC")},
	}}
	table, _ := Assemble(clusters)

	rules := table.Rules()
	rules[0].Entries[0].File = "changed"
	entries, _ := table.Lookup(tup("WFC"))
	entries[0].Comment = "changed"

	again, _ := table.Lookup(tup("WFC"))
	if again[0].File != "f1" || again[0].Comment != "" {
		t.Errorf("Lookup() = %v, table was mutated through a copy", again)
	}
}

func TestRuleTable_Records(t *testing.T) {
	d := day("2001-01-01")
	params := []string{"detector", "filter"}
	clusters := []Consolidated{{
		Cluster: Cluster{Entries: []types.FileEntry{
			{Date: d, File: "f1", Comment: "c1"},
			{Date: day("2002-01-01"), File: "f2"},
		}},
		Patterns: []types.MatchTuple{tup("WFC", "CLEAR|F606W")},
	}}
	table, _ := Assemble(clusters)

	records := table.Records(params)
	if len(records) != 2 {
		t.Fatalf("len(Records()) = %v, want 2", len(records))
	}
	r := records[0]
	if r.Values["detector"] != "WFC" || r.Values["filter"] != "CLEAR|F606W" {
		t.Errorf("Values = %v, want detector=WFC filter=CLEAR|F606W", r.Values)
	}
	if r.File != "f1" || r.Comment != "c1" || !r.Date.Equal(d) {
		t.Errorf("record = %+v, want f1 c1 2001-01-01", r)
	}
}
