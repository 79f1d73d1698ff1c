package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/solatis/rulefold/internal/types"
)

// Reporter prints human-readable run summaries and warnings.
type Reporter struct {
	w     io.Writer
	kind  map[types.WarningKind]*color.Color
	title *color.Color
	dim   *color.Color
}

// NewReporter writes to w. Colors follow color.NoColor unless noColor is set.
func NewReporter(w io.Writer, noColor bool) *Reporter {
	r := &Reporter{
		w:     w,
		title: color.New(color.Bold),
		dim:   color.New(color.Faint),
		kind: map[types.WarningKind]*color.Color{
			types.WarnFoldFallback:       color.New(color.FgRed, color.Bold),
			types.WarnTableCollision:     color.New(color.FgRed),
			types.WarnDateCollision:      color.New(color.FgYellow),
			types.WarnOverlap:            color.New(color.FgMagenta),
			types.WarnMissingParameter:   color.New(color.FgYellow),
			types.WarnRelevanceError:     color.New(color.FgYellow),
			types.WarnUnexpandedWildcard: color.New(color.FgCyan),
			types.WarnFiltered:           color.New(color.FgCyan),
		},
	}
	if noColor {
		r.title.DisableColor()
		r.dim.DisableColor()
		for _, c := range r.kind {
			c.DisableColor()
		}
	}
	return r
}

// Report prints one run: a summary line, per-kind counts and every warning.
func (r *Reporter) Report(res Result) error {
	name := res.Mode
	if name == "" {
		name = "run"
	}
	s := res.Stats
	if _, err := r.title.Fprintf(r.w, "%s %s\n", name, res.RunID); err != nil {
		return err
	}
	fmt.Fprintf(r.w, "  records=%d tuples=%d clusters=%d patterns=%d concrete=%d folds=%d fallbacks=%d overlaps=%d (%dms)\n",
		s.Records, s.Tuples, s.Clusters, s.Patterns, s.Concrete, s.Folds, s.Fallbacks, s.Overlaps, s.DurationMs)

	counts := make(map[string]int)
	for _, w := range res.Warnings {
		counts[w.Kind]++
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		r.color(k).Fprintf(r.w, "  %-20s %d\n", k, counts[k])
	}

	for _, w := range res.Warnings {
		r.color(w.Kind).Fprintf(r.w, "  [%s]", w.Kind)
		fmt.Fprintf(r.w, " %s", w.Message)
		if w.Source != "" {
			r.dim.Fprintf(r.w, " source=%s", w.Source)
		}
		if len(w.Tuple) > 0 {
			r.dim.Fprintf(r.w, " tuple=%v", w.Tuple)
		}
		if len(w.Other) > 0 {
			r.dim.Fprintf(r.w, " other=%v", w.Other)
		}
		if _, err := fmt.Fprintln(r.w); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reporter) color(kind string) *color.Color {
	if c, ok := r.kind[types.WarningKind(kind)]; ok {
		return c
	}
	return r.dim
}
