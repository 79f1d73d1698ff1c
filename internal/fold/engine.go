// Package fold consolidates discrete catalog tuples into OR-valued match
// rules that match exactly the same concrete inputs.
//
// Pipeline: Extract -> Grouping -> (GroupFilter) -> Invert -> Rollup per
// cluster -> Assemble -> DetectOverlaps. Every stage sorts explicitly, so
// output never depends on map iteration or input order.
package fold

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/solatis/rulefold/internal/types"
	"golang.org/x/sync/errgroup"
)

// Options configures an Engine.
type Options struct {
	Workers        int         // concurrent cluster rollups; < 1 means 1
	MaxExpansion   int         // per-cluster OR-expansion cap; <= 0 disables
	DetectOverlaps bool        // scan finished patterns for overlaps
	CacheSize      int         // alternative-set LRU entries; <= 0 disables
	Filter         GroupFilter // optional per-mode adjustment
	Logger         *slog.Logger
}

// DefaultOptions returns options matching config defaults.
func DefaultOptions() Options {
	return Options{
		Workers:        4,
		MaxExpansion:   types.DefaultMaxExpansion,
		DetectOverlaps: true,
		CacheSize:      4096,
	}
}

// Stats summarizes one run.
type Stats struct {
	Records   int
	Tuples    int
	Clusters  int
	Patterns  int
	Concrete  int
	Folds     int
	Fallbacks int
	Overlaps  int
	Duration  time.Duration
}

// Result is the output of Consolidate.
type Result struct {
	RunID      types.RunID
	Parameters []string
	Table      *RuleTable
	Clusters   []Consolidated
	Overlaps   []Overlap
	Warnings   []types.Warning
	Stats      Stats
}

// Engine runs consolidation batches. Safe for concurrent use; runs share
// only the alternative-set cache.
type Engine struct {
	opts Options
	alts *lru.Cache[types.Value, []string]
	log  *slog.Logger
}

// New creates an engine.
func New(opts Options) (*Engine, error) {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	e := &Engine{opts: opts, log: opts.Logger}
	if e.log == nil {
		e.log = slog.Default()
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[types.Value, []string](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create alternatives cache: %w", err)
		}
		e.alts = cache
	}
	return e, nil
}

// WithFilter returns a copy of the engine using filter for subsequent runs.
// The alternative-set cache is shared with the original.
func (e *Engine) WithFilter(filter GroupFilter) *Engine {
	cp := *e
	cp.opts.Filter = filter
	return &cp
}

// Consolidate folds records into a rule table.
// Data problems never fail the run; they are returned as warnings. Errors are
// returned only for an empty parameter list or context cancellation.
func (e *Engine) Consolidate(ctx context.Context, params []string, records []types.Record) (*Result, error) {
	if len(params) == 0 {
		return nil, types.ErrNoParameters
	}
	start := time.Now()
	res := &Result{
		RunID:      types.NewRunID(),
		Parameters: append([]string(nil), params...),
	}

	g := NewGrouping()
	for _, rec := range records {
		tuple, warnings := Extract(params, rec)
		res.Warnings = append(res.Warnings, warnings...)
		entry := types.FileEntry{Date: rec.Date, File: rec.File, Comment: rec.Comment}
		res.Warnings = append(res.Warnings, g.Add(tuple, entry)...)
	}
	if e.opts.Filter != nil {
		res.Warnings = append(res.Warnings, e.opts.Filter(g)...)
	}

	clusters := Invert(g)
	consolidated, warnings, err := e.rollupAll(ctx, clusters)
	if err != nil {
		return nil, err
	}
	res.Clusters = consolidated
	res.Warnings = append(res.Warnings, warnings...)

	table, warnings := Assemble(consolidated)
	res.Table = table
	res.Warnings = append(res.Warnings, warnings...)

	if e.opts.DetectOverlaps {
		res.Overlaps = DetectOverlaps(table.rules)
		for _, o := range res.Overlaps {
			e.log.Info("overlap", "left", o.Left.String(), "right", o.Right.String())
			res.Warnings = append(res.Warnings, o.Warning())
		}
	}

	res.Stats = Stats{
		Records:  len(records),
		Tuples:   g.Len(),
		Clusters: len(clusters),
		Patterns: table.Len(),
		Overlaps: len(res.Overlaps),
		Duration: time.Since(start),
	}
	for _, c := range consolidated {
		res.Stats.Concrete += c.Rollup.Concrete
		res.Stats.Folds += c.Rollup.Folds
		if !c.Folded {
			res.Stats.Fallbacks++
		}
	}

	e.log.Info("consolidated",
		"run_id", res.RunID,
		"records", res.Stats.Records,
		"tuples", res.Stats.Tuples,
		"clusters", res.Stats.Clusters,
		"patterns", res.Stats.Patterns,
		"fallbacks", res.Stats.Fallbacks,
		"overlaps", res.Stats.Overlaps,
		"warnings", len(res.Warnings),
		"duration", res.Stats.Duration,
	)
	return res, nil
}

// rollupAll consolidates clusters on a bounded worker pool.
// Results land at their cluster index so scheduling never affects output.
func (e *Engine) rollupAll(ctx context.Context, clusters []Cluster) ([]Consolidated, []types.Warning, error) {
	out := make([]Consolidated, len(clusters))
	warns := make([]*types.Warning, len(clusters))

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(e.opts.Workers)
	for i := range clusters {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			out[i], warns[i] = e.consolidateCluster(i, clusters[i])
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	var warnings []types.Warning
	for _, w := range warns {
		if w != nil {
			warnings = append(warnings, *w)
		}
	}
	return out, warnings, nil
}

// consolidateCluster rolls up one cluster, falling back to its unfolded
// tuples on any failure, including a panic inside the fold.
func (e *Engine) consolidateCluster(idx int, c Cluster) (cc Consolidated, warn *types.Warning) {
	cc = Consolidated{Cluster: c, Patterns: c.Tuples}

	defer func() {
		if r := recover(); r != nil {
			cc = Consolidated{Cluster: c, Patterns: c.Tuples}
			w := types.NewWarning(types.WarnFoldFallback, "cluster %d: fold panicked: %v", idx, r)
			warn = &w
		}
	}()

	x := &expander{alts: e.alts, limit: e.opts.MaxExpansion}
	res, err := x.rollup(c.Tuples)
	if err != nil {
		e.log.Warn("fold fallback", "cluster", idx, "tuples", len(c.Tuples), "error", err)
		cc.Rollup = res
		w := types.NewWarning(types.WarnFoldFallback, "cluster %d: %v; emitting %d unfolded tuples", idx, err, len(c.Tuples))
		if len(c.Tuples) > 0 {
			w = w.WithTuple(c.Tuples[0])
		}
		return cc, &w
	}

	cc.Patterns = res.Patterns
	cc.Folded = true
	cc.Rollup = res
	if res.Input != len(res.Patterns) {
		e.log.Debug("clustered",
			"cluster", idx,
			"discrete", res.Input,
			"concrete", res.Concrete,
			"patterns", len(res.Patterns),
			"rejected", res.Rejected,
		)
	}
	return cc, nil
}
