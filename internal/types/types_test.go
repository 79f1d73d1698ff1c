package types

import (
	"testing"
	"time"
)

func TestValue_Alternatives(t *testing.T) {
	tests := []struct {
		in   Value
		want []string
	}{
		{"WFC", []string{"WFC"}},
		{"F606W|CLEAR", []string{"CLEAR", "F606W"}},
		{"B | A | B", []string{"A", "B"}},
		{"*", []string{"*"}},
		{"", []string{""}},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			got := tt.in.Alternatives()
			if len(got) != len(tt.want) {
				t.Fatalf("Alternatives() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Alternatives()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestValue_Predicates(t *testing.T) {
	if !Value("B|A").Equal("A|B|A") {
		t.Errorf("Equal() = false for the same alternative set")
	}
	if Value("A|B").Equal("A") {
		t.Errorf("Equal() = true for different sets")
	}
	if got := Value("F606W|CLEAR").Canonical(); got != "CLEAR|F606W" {
		t.Errorf("Canonical() = %q, want %q", got, "CLEAR|F606W")
	}
	if !Value("A|B").IsOr() || Value("A").IsOr() {
		t.Errorf("IsOr() wrong")
	}
	if !Wildcard.IsWildcard() || Value("A|*").IsWildcard() {
		t.Errorf("IsWildcard() wrong")
	}
	if !NotApplicable.IsNotApplicable() {
		t.Errorf("IsNotApplicable() = false for N/A")
	}
	if got := UnionAlternatives([]string{"C", "A"}, []string{"B", "A"}); len(got) != 3 || got[0] != "A" || got[2] != "C" {
		t.Errorf("UnionAlternatives() = %v, want [A B C]", got)
	}
}

func TestMatchTuple(t *testing.T) {
	a := NewMatchTuple("WFC", "CLEAR")
	b := NewMatchTuple("WFC", "F606W")
	c := NewMatchTuple("HRC", "F606W")

	if a.Len() != 2 || a.At(1) != "CLEAR" {
		t.Errorf("Len()/At() = %d/%q, want 2/CLEAR", a.Len(), a.At(1))
	}
	if a.String() != "(WFC, CLEAR)" {
		t.Errorf("String() = %q, want %q", a.String(), "(WFC, CLEAR)")
	}
	if a != NewMatchTuple("WFC", "CLEAR") {
		t.Errorf("equal tuples compare unequal")
	}
	if a.Compare(b) >= 0 || c.Compare(a) >= 0 || a.Compare(a) != 0 {
		t.Errorf("Compare() ordering wrong")
	}
	if NewMatchTuple("A").Compare(NewMatchTuple("A", "B")) >= 0 {
		t.Errorf("shorter tuple must sort first")
	}
	if NewMatchTuple().Values() != nil {
		t.Errorf("empty tuple Values() not nil")
	}

	if !a.DifferByOne(b, 1) {
		t.Errorf("DifferByOne(b, 1) = false, want true")
	}
	if a.DifferByOne(b, 0) {
		t.Errorf("DifferByOne(b, 0) = true, want false")
	}
	if a.DifferByOne(c, 1) {
		t.Errorf("DifferByOne(c, 1) = true, want false (two positions differ)")
	}
	if NewMatchTuple("A|B", "X").DifferByOne(NewMatchTuple("B|A", "Y"), 1) != true {
		t.Errorf("DifferByOne must compare alternative sets")
	}
	if a.DifferByOne(b, 5) {
		t.Errorf("DifferByOne out of range = true")
	}
}

func TestMatchTuple_SeparatorInValue(t *testing.T) {
	tests := [][]Value{
		{"X\x1fY", "Z"},
		{"\x1e", "\x1f"},
		{"A\x1e\x1dB", ""},
		{"\x1e\x1e\x1f\x1f"},
	}
	for _, vals := range tests {
		tup := NewMatchTuple(vals...)
		if tup.Len() != len(vals) {
			t.Fatalf("Len() = %d, want %d for %q", tup.Len(), len(vals), vals)
		}
		got := tup.Values()
		if len(got) != len(vals) {
			t.Fatalf("Values() = %q, want %q", got, vals)
		}
		for i := range vals {
			if got[i] != vals[i] {
				t.Errorf("Values()[%d] = %q, want %q", i, got[i], vals[i])
			}
		}
	}
	if NewMatchTuple("X\x1fY", "Z") == NewMatchTuple("X", "Y\x1fZ") {
		t.Errorf("distinct tuples share a key")
	}
}

func TestFileEntry(t *testing.T) {
	d := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	e := FileEntry{Date: d, File: "f1", Comment: "note"}

	m := e.MarkAmbiguous()
	if m.Comment != "*** note" || !m.Ambiguous() {
		t.Errorf("MarkAmbiguous() = %q", m.Comment)
	}
	if m.MarkAmbiguous().Comment != "*** note" {
		t.Errorf("MarkAmbiguous() not idempotent")
	}
	if got := (FileEntry{}).MarkAmbiguous().Comment; got != AmbiguityMarker {
		t.Errorf("MarkAmbiguous() on empty comment = %q, want %q", got, AmbiguityMarker)
	}

	local := FileEntry{Date: d.In(time.FixedZone("X", 3600)), File: "f1", Comment: "other"}
	if e.Key() != local.Key() {
		t.Errorf("Key() differs for equal instants or comments")
	}
	if got := e.Key().String(); got != "2001-01-01 00:00:00 f1" {
		t.Errorf("EntryKey.String() = %q", got)
	}

	entries := []FileEntry{
		{Date: d.AddDate(1, 0, 0), File: "a"},
		{Date: d, File: "b", Comment: "1"},
		{Date: d, File: "a"},
		{Date: d, File: "b", Comment: "2"},
	}
	SortEntries(entries)
	if entries[0].File != "a" || entries[1].Comment != "1" || entries[2].Comment != "2" || !entries[3].Date.After(d) {
		t.Errorf("SortEntries() = %v", entries)
	}
}

func TestWarning_String(t *testing.T) {
	tp := NewMatchTuple("WFC", "N/A")
	w := NewWarning(WarnMissingParameter, "parameter %q missing", "filter").WithTuple(tp).WithSource("row-1")
	if w.Position != -1 {
		t.Errorf("Position = %d, want -1", w.Position)
	}
	want := `[missing_parameter] parameter "filter" missing source=row-1 tuple=(WFC, N/A)`
	if got := w.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestRunID(t *testing.T) {
	before := time.Now().Add(-time.Second)
	id := NewRunID()

	parsed, err := ParseRunID(string(id))
	if err != nil || parsed != id {
		t.Fatalf("ParseRunID(%q) = %q, %v", id, parsed, err)
	}
	ts := RunIDTime(id)
	if ts.Before(before) || ts.After(time.Now().Add(time.Second)) {
		t.Errorf("RunIDTime() = %v, want around now", ts)
	}
	if _, err := ParseRunID("not-a-uuid"); err == nil {
		t.Errorf("ParseRunID(invalid) error = nil")
	}
	if !RunIDTime("bogus").IsZero() {
		t.Errorf("RunIDTime(invalid) not zero")
	}
	if a, b := NewRunID(), NewRunID(); a == b {
		t.Errorf("NewRunID() returned duplicate %q", a)
	}
}
