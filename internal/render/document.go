// Package render converts consolidation results to and from the documents
// exchanged by the CLI and the gRPC service: YAML rule tables, JSON result
// documents, JSONL catalog rows and colored warning reports.
package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/solatis/rulefold/internal/fold"
	"github.com/solatis/rulefold/internal/types"
)

// Result is the serialized form of one consolidation run.
type Result struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	Mode       string    `json:"mode,omitempty" yaml:"mode,omitempty"`
	Parameters []string  `json:"parameters" yaml:"parameters"`
	Rules      []Rule    `json:"rules" yaml:"rules"`
	Warnings   []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Stats      Stats     `json:"stats" yaml:"stats"`
}

// Rule is one pattern with its useafter history.
type Rule struct {
	Pattern []string `json:"pattern" yaml:"pattern,flow"`
	Entries []Entry  `json:"entries" yaml:"entries"`
}

// Entry is one useafter choice.
type Entry struct {
	Date    string `json:"date" yaml:"date"`
	File    string `json:"file" yaml:"file"`
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Warning is a serialized types.Warning.
type Warning struct {
	Kind     string   `json:"kind" yaml:"kind"`
	Message  string   `json:"message" yaml:"message"`
	Source   string   `json:"source,omitempty" yaml:"source,omitempty"`
	Tuple    []string `json:"tuple,omitempty" yaml:"tuple,omitempty,flow"`
	Other    []string `json:"other,omitempty" yaml:"other,omitempty,flow"`
	Position *int     `json:"position,omitempty" yaml:"position,omitempty"`
}

// Stats mirrors fold.Stats with the duration in milliseconds.
type Stats struct {
	Records    int   `json:"records" yaml:"records"`
	Tuples     int   `json:"tuples" yaml:"tuples"`
	Clusters   int   `json:"clusters" yaml:"clusters"`
	Patterns   int   `json:"patterns" yaml:"patterns"`
	Concrete   int   `json:"concrete" yaml:"concrete"`
	Folds      int   `json:"folds" yaml:"folds"`
	Fallbacks  int   `json:"fallbacks" yaml:"fallbacks"`
	Overlaps   int   `json:"overlaps" yaml:"overlaps"`
	DurationMs int64 `json:"duration_ms" yaml:"duration_ms"`
}

// NewResult converts an engine result. mode may be empty.
func NewResult(mode string, res *fold.Result) Result {
	out := Result{
		RunID:      string(res.RunID),
		Mode:       mode,
		Parameters: append([]string(nil), res.Parameters...),
		Rules:      []Rule{},
		Stats: Stats{
			Records:    res.Stats.Records,
			Tuples:     res.Stats.Tuples,
			Clusters:   res.Stats.Clusters,
			Patterns:   res.Stats.Patterns,
			Concrete:   res.Stats.Concrete,
			Folds:      res.Stats.Folds,
			Fallbacks:  res.Stats.Fallbacks,
			Overlaps:   res.Stats.Overlaps,
			DurationMs: res.Stats.Duration.Milliseconds(),
		},
	}
	if res.Table != nil {
		for _, r := range res.Table.Rules() {
			rule := Rule{Pattern: tupleStrings(r.Pattern)}
			for _, e := range r.Entries {
				rule.Entries = append(rule.Entries, Entry{
					Date:    FormatDate(e.Date),
					File:    e.File,
					Comment: e.Comment,
				})
			}
			out.Rules = append(out.Rules, rule)
		}
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, NewWarning(w))
	}
	return out
}

// NewWarning converts a warning.
func NewWarning(w types.Warning) Warning {
	out := Warning{Kind: string(w.Kind), Message: w.Message, Source: w.Source}
	if w.Tuple != nil {
		out.Tuple = tupleStrings(*w.Tuple)
	}
	if w.Other != nil {
		out.Other = tupleStrings(*w.Other)
	}
	if w.Position >= 0 {
		p := w.Position
		out.Position = &p
	}
	return out
}

func tupleStrings(t types.MatchTuple) []string {
	vals := t.Values()
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = string(v)
	}
	return out
}

// dateLayouts are accepted on input; output always uses types.DateFormat.
var dateLayouts = []string{
	types.DateFormat,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"Jan 02 2006 15:04:05",
}

// ParseDate parses a useafter date. Zoneless dates are read as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized useafter date %q", s)
}

// FormatDate renders a useafter date in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(types.DateFormat)
}

// scalar renders a decoded JSON or YAML scalar as a catalog value.
func scalar(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case bool:
		if x {
			return "T", nil
		}
		return "F", nil
	case nil:
		return string(types.NotApplicable), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
