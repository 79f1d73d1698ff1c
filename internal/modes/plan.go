// internal/modes/plan.go
package modes

import (
	"context"
	"strings"

	"github.com/solatis/rulefold/internal/fold"
	"github.com/solatis/rulefold/internal/rules"
	"github.com/solatis/rulefold/internal/types"
)

// Plan is a registered mode compiled for use. Immutable; safe for
// concurrent use.
type Plan struct {
	mode       Mode
	adjustment Adjustment
	columns    []string
	params     []string
	relevance  *rules.Engine
	filter     fold.GroupFilter
}

// Mode returns the normalized declaration the plan was built from.
func (p *Plan) Mode() Mode {
	return p.mode
}

// Name returns "instrument/filekind".
func (p *Plan) Name() string {
	return p.mode.Name()
}

// Reftype returns the catalog reference file type of the mode.
func (p *Plan) Reftype() string {
	return p.mode.Reftype
}

// Columns returns the catalog columns a row source must read, in order.
func (p *Plan) Columns() []string {
	return append([]string(nil), p.columns...)
}

// Params returns the match parameters in declared order.
func (p *Plan) Params() []string {
	return append([]string(nil), p.params...)
}

// Filter returns the mode's group filter, or nil.
func (p *Plan) Filter() fold.GroupFilter {
	return p.filter
}

// Prepare conditions raw catalog rows for consolidation.
//
// Per row: keys are lower-cased, values trimmed and the file name
// lower-cased; extra keys missing from the row default to N/A; a row still
// carrying an unexpanded wildcard is dropped with an unexpanded_wildcard
// warning; relevance expressions then map irrelevant parameters to N/A.
// A relevance expression that cannot be evaluated leaves the value alone
// and raises a relevance_error warning.
func (p *Plan) Prepare(records []types.Record) ([]types.Record, []types.Warning) {
	out := make([]types.Record, 0, len(records))
	var warnings []types.Warning

	for _, rec := range records {
		vals := make(map[string]string, len(rec.Values)+len(p.adjustment.Extra))
		for k, v := range rec.Values {
			vals[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
		}
		for _, k := range p.adjustment.Extra {
			if _, ok := vals[k]; !ok {
				vals[k] = string(types.NotApplicable)
			}
		}

		if w, ok := p.unexpanded(vals); ok {
			warnings = append(warnings, w.WithSource(rec.Source))
			continue
		}

		vals, errs := p.relevance.Apply(vals)
		for _, err := range errs {
			w := types.NewWarning(types.WarnRelevanceError, "%s: %v", p.Name(), err)
			warnings = append(warnings, w.WithSource(rec.Source))
		}

		rec.Values = vals
		rec.File = strings.ToLower(strings.TrimSpace(rec.File))
		out = append(out, rec)
	}
	return out, warnings
}

// unexpanded reports the first parameter still holding a wildcard the
// catalog should have expanded.
func (p *Plan) unexpanded(vals map[string]string) (types.Warning, bool) {
	for _, key := range sortedKeys(p.mode.Substitutions) {
		v, ok := vals[key]
		if !ok {
			continue
		}
		for _, wild := range sortedKeys(p.mode.Substitutions[key]) {
			if strings.EqualFold(v, wild) {
				return types.NewWarning(types.WarnUnexpandedWildcard,
					"%s: deleting row with %s=%s, expands to %s",
					p.Name(), key, v, p.mode.Substitutions[key][wild]), true
			}
		}
	}
	return types.Warning{}, false
}

// Consolidate prepares records and folds them with e under this plan's
// parameters and filter. Preparation warnings lead the result's warnings.
func (p *Plan) Consolidate(ctx context.Context, e *fold.Engine, records []types.Record) (*fold.Result, error) {
	prepared, warnings := p.Prepare(records)
	res, err := e.WithFilter(p.filter).Consolidate(ctx, p.params, prepared)
	if err != nil {
		return nil, err
	}
	res.Warnings = append(warnings, res.Warnings...)
	res.Stats.Records = len(records)
	return res, nil
}
