package types

import "fmt"

// WarningKind classifies non-fatal conditions raised during consolidation.
type WarningKind string

const (
	WarnMissingParameter   WarningKind = "missing_parameter"
	WarnDateCollision      WarningKind = "date_collision"
	WarnFoldFallback       WarningKind = "fold_fallback"
	WarnOverlap            WarningKind = "overlap"
	WarnRelevanceError     WarningKind = "relevance_error"
	WarnTableCollision     WarningKind = "table_collision"
	WarnUnexpandedWildcard WarningKind = "unexpanded_wildcard"
	WarnFiltered           WarningKind = "filtered"
)

// Warning is a structured, non-fatal report for the caller to log or surface.
type Warning struct {
	Kind     WarningKind
	Message  string
	Source   string      // originating record, if any
	Tuple    *MatchTuple // tuple or pattern concerned, if any
	Other    *MatchTuple // second pattern for overlaps
	Position int         // parameter position, -1 when not applicable
}

// String renders the warning on a single line.
func (w Warning) String() string {
	s := fmt.Sprintf("[%s] %s", w.Kind, w.Message)
	if w.Source != "" {
		s += " source=" + w.Source
	}
	if w.Tuple != nil {
		s += " tuple=" + w.Tuple.String()
	}
	if w.Other != nil {
		s += " other=" + w.Other.String()
	}
	return s
}

// NewWarning builds a warning with no position.
func NewWarning(kind WarningKind, format string, args ...any) Warning {
	return Warning{Kind: kind, Message: fmt.Sprintf(format, args...), Position: -1}
}

// WithTuple returns w annotated with a tuple.
func (w Warning) WithTuple(t MatchTuple) Warning {
	w.Tuple = &t
	return w
}

// WithSource returns w annotated with a record source.
func (w Warning) WithSource(source string) Warning {
	w.Source = source
	return w
}
