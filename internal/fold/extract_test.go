package fold

import (
	"testing"

	"github.com/solatis/rulefold/internal/types"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		params   []string
		values   map[string]string
		want     types.MatchTuple
		warnings int
	}{
		{
			name:   "declared order",
			params: []string{"filter", "detector"},
			values: map[string]string{"detector": "WFC", "filter": "CLEAR"},
			want:   tup("CLEAR", "WFC"),
		},
		{
			name:   "trimmed and canonical",
			params: []string{"detector", "filter"},
			values: map[string]string{"detector": " WFC ", "filter": "F606W|CLEAR|F606W"},
			want:   tup("WFC", "CLEAR|F606W"),
		},
		{
			name:   "case-insensitive fallback",
			params: []string{"detector"},
			values: map[string]string{"DETECTOR": "HRC"},
			want:   tup("HRC"),
		},
		{
			name:     "missing becomes N/A",
			params:   []string{"detector", "filter"},
			values:   map[string]string{"detector": "WFC"},
			want:     tup("WFC", "N/A"),
			warnings: 1,
		},
		{
			name:   "wildcard kept literal",
			params: []string{"detector"},
			values: map[string]string{"detector": "*"},
			want:   tup("*"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warnings := Extract(tt.params, types.Record{Values: tt.values, Source: "row"})
			if got != tt.want {
				t.Errorf("Extract() = %v, want %v", got, tt.want)
			}
			if len(warnings) != tt.warnings {
				t.Fatalf("len(warnings) = %v, want %v", len(warnings), tt.warnings)
			}
			for _, w := range warnings {
				if w.Kind != types.WarnMissingParameter || w.Source != "row" || w.Position != 1 {
					t.Errorf("warning = %+v, want missing_parameter at position 1 from row", w)
				}
			}
		})
	}
}

func TestExtract_ControlCharactersKeepArity(t *testing.T) {
	rec := types.Record{Values: map[string]string{"a": "X\x1fY", "b": "Z"}, Source: "row"}
	got, warnings := Extract([]string{"a", "b"}, rec)
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none", warnings)
	}
	if got.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", got.Len())
	}
	if got.At(0) != "X\x1fY" || got.At(1) != "Z" {
		t.Errorf("Extract() = %q, want [X\\x1fY Z]", got.Values())
	}
}
