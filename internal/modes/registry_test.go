package modes

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/solatis/rulefold/internal/types"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		instrument, filekind string
		columns, params      []string
	}{
		{
			"acs", "biasfile",
			[]string{"detector", "ccdamp", "ccdgain", "aperture", "binaxis1", "binaxis2", "ltv1", "ltv2"},
			[]string{"detector", "ccdamp", "ccdgain", "aperture", "binaxis1", "binaxis2", "ltv1", "ltv2"},
		},
		{
			"wfpc2", "flatfile",
			[]string{"mode", "filter1", "filter2"},
			[]string{"mode", "filter1", "filter2"},
		},
		{
			"wfc3", "biasfile",
			[]string{"detector", "ccdamp", "binaxis1", "binaxis2"},
			[]string{"detector", "ccdamp", "binaxis1", "binaxis2"},
		},
		{
			"COS", "SPWCSTAB",
			[]string{"opt_elem", "cenwave", "aperture"},
			[]string{"opt_elem", "cenwave", "aperture"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.instrument+"/"+tt.filekind, func(t *testing.T) {
			p, err := r.Lookup(tt.instrument, tt.filekind)
			if err != nil {
				t.Fatalf("Lookup() error = %v, want nil", err)
			}
			if got := p.Columns(); !reflect.DeepEqual(got, tt.columns) {
				t.Errorf("Columns() = %v, want %v", got, tt.columns)
			}
			if got := p.Params(); !reflect.DeepEqual(got, tt.params) {
				t.Errorf("Params() = %v, want %v", got, tt.params)
			}
		})
	}

	if got := r.Filekinds("acs"); !reflect.DeepEqual(got, []string{"biasfile", "darkfile", "pfltfile"}) {
		t.Errorf("Filekinds(acs) = %v", got)
	}
	if got := r.Instruments(); !reflect.DeepEqual(got, []string{"acs", "cos", "wfc3", "wfpc2"}) {
		t.Errorf("Instruments() = %v", got)
	}
	if len(r.Plans()) != 6 {
		t.Errorf("len(Plans()) = %v, want 6", len(r.Plans()))
	}
}

func TestRegistry_LookupUnknown(t *testing.T) {
	_, err := DefaultRegistry().Lookup("stis", "biasfile")
	if !errors.Is(err, types.ErrUnknownMode) {
		t.Errorf("Lookup() error = %v, want ErrUnknownMode", err)
	}
}

func TestRegistry_RegisterErrors(t *testing.T) {
	tests := []struct {
		name    string
		mode    Mode
		wantErr string
	}{
		{"no parkeys", Mode{Instrument: "x", Filekind: "y"}, "no match parameters"},
		{"no instrument", Mode{Filekind: "y", Parkeys: []string{"a"}}, "required"},
		{"duplicate", Mode{Instrument: "x", Filekind: "y", Parkeys: []string{"a", "A"}}, "duplicate"},
		{"all ignored", Mode{Instrument: "x", Filekind: "y", Parkeys: []string{"a"}, Ignore: []string{"a"}}, "ignored"},
		{"bad relevance", Mode{Instrument: "x", Filekind: "y", Parkeys: []string{"a"}, Relevance: map[string]string{"a": "B =="}}, "syntax"},
		{"unknown filter", Mode{Instrument: "x", Filekind: "y", Parkeys: []string{"a"}, Filter: "nope"}, "unknown filter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegistry().Register(tt.mode)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Register() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestRegistry_LoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modes.yaml")
	doc := `modes:
  - instrument: acs
    filekind: biasfile
    reftype: bia
    parkeys: [detector, ccdamp, xcorner]
  - instrument: stis
    filekind: darkfile
    reftype: drk
    parkeys: [detector, ccdamp]
    filter: drop_all_na
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	r := DefaultRegistry()
	if err := r.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v, want nil", err)
	}

	acs, err := r.Lookup("acs", "biasfile")
	if err != nil {
		t.Fatalf("Lookup(acs) error = %v", err)
	}
	// Built-in ignore list still applies to the override.
	if got := acs.Params(); !reflect.DeepEqual(got, []string{"detector", "ccdamp"}) {
		t.Errorf("Params() = %v, want [detector ccdamp]", got)
	}

	stis, err := r.Lookup("stis", "darkfile")
	if err != nil {
		t.Fatalf("Lookup(stis) error = %v", err)
	}
	if stis.Filter() == nil {
		t.Errorf("Filter() = nil, want drop_all_na")
	}
}

func TestRegistry_LoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	if err := NewRegistry().LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Errorf("LoadFile(missing) error = nil")
	}

	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("modes:\n  - instrument: x\n    bogus: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := NewRegistry().LoadFile(path); err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Errorf("LoadFile(unknown field) error = %v, want mention of bogus", err)
	}
}

func TestEncodeParse_RoundTrip(t *testing.T) {
	modes, err := Parse(defaultModes)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	var b strings.Builder
	if err := Encode(&b, modes); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	again, err := Parse([]byte(b.String()))
	if err != nil {
		t.Fatalf("Parse(Encode()) error = %v", err)
	}
	if !reflect.DeepEqual(modes, again) {
		t.Errorf("round trip changed modes:\n%v\n%v", modes, again)
	}

	empty, err := Parse(nil)
	if err != nil || empty != nil {
		t.Errorf("Parse(nil) = %v, %v, want nil, nil", empty, err)
	}
}
