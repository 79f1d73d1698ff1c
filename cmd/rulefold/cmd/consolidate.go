package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/solatis/rulefold/internal/fold"
	"github.com/solatis/rulefold/internal/modes"
	"github.com/solatis/rulefold/internal/render"
	"github.com/solatis/rulefold/internal/types"
	"github.com/spf13/cobra"
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Fold catalog rows into match rules",
	Long: `Fold catalog rows into match rules.

Rows come from the catalog database (--db-url) or a JSONL file (--rows).
With --instrument alone every filekind of the instrument is consolidated.
With --params the rows are folded on the listed parameters without a mode.`,
	Example: `  rulefold consolidate --db-url sqlite://cdbs.db --instrument acs
  rulefold consolidate --rows darks.jsonl --instrument acs --filekind darkfile
  rulefold consolidate --rows rows.jsonl --params detector,filter --format json`,
	RunE: runConsolidate,
}

func init() {
	rootCmd.AddCommand(consolidateCmd)
	f := consolidateCmd.Flags()
	f.String("instrument", "", "instrument to consolidate")
	f.String("filekind", "", "filekind to consolidate (default: every filekind of the instrument)")
	f.StringSlice("params", nil, "match parameters for a run without a mode")
	f.String("rows", "", "JSONL rows file instead of the database ('-' for stdin)")
	f.StringP("output", "o", "-", "rule table output path ('-' for stdout)")
	f.String("format", "yaml", "output format (yaml, json)")
	f.Bool("report", true, "print a warning report to stderr")
	f.Bool("no-color", false, "disable colors in the report")
	f.Int("workers", 0, "cluster workers (default from config)")
}

func runConsolidate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	flags := cmd.Flags()
	instrument, _ := flags.GetString("instrument")
	filekind, _ := flags.GetString("filekind")
	params, _ := flags.GetStringSlice("params")
	rowsPath, _ := flags.GetString("rows")
	output, _ := flags.GetString("output")
	format, _ := flags.GetString("format")
	report, _ := flags.GetBool("report")
	noColor, _ := flags.GetBool("no-color")

	if flags.Changed("workers") {
		cfg.Engine.Workers, _ = flags.GetInt("workers")
	}
	if format != "yaml" && format != "json" {
		return fmt.Errorf("invalid format %q (expected yaml or json)", format)
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}

	var results []render.Result
	switch {
	case len(params) > 0:
		if instrument != "" || filekind != "" {
			return fmt.Errorf("--params cannot be combined with --instrument or --filekind")
		}
		if rowsPath == "" {
			return fmt.Errorf("--params requires --rows")
		}
		records, err := readRows(rowsPath)
		if err != nil {
			return err
		}
		res, err := engine.Consolidate(ctx, lowerAll(params), records)
		if err != nil {
			return err
		}
		results = append(results, render.NewResult("", res))
	default:
		results, err = consolidateModes(ctx, engine, instrument, filekind, rowsPath)
		if err != nil {
			return err
		}
	}

	if err := writeResults(output, format, results); err != nil {
		return err
	}
	if report {
		reporter := render.NewReporter(os.Stderr, noColor)
		for _, r := range results {
			if err := reporter.Report(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// consolidateModes runs every selected mode of one instrument.
func consolidateModes(ctx context.Context, engine *fold.Engine, instrument, filekind, rowsPath string) ([]render.Result, error) {
	if instrument == "" {
		return nil, fmt.Errorf("--instrument or --params required")
	}
	reg, err := newRegistry()
	if err != nil {
		return nil, err
	}
	plans, err := selectPlans(reg, instrument, filekind)
	if err != nil {
		return nil, err
	}

	var load func(ctx context.Context, p *modes.Plan) ([]types.Record, error)
	if rowsPath != "" {
		if len(plans) > 1 {
			return nil, fmt.Errorf("--rows requires --filekind")
		}
		load = func(context.Context, *modes.Plan) ([]types.Record, error) {
			return readRows(rowsPath)
		}
	} else {
		database, catalog, err := openCatalog(ctx)
		if err != nil {
			return nil, err
		}
		defer database.Close()
		load = func(ctx context.Context, p *modes.Plan) ([]types.Record, error) {
			return catalog.LoadRecords(ctx, p.Mode().Instrument, p.Reftype(), p.Columns())
		}
	}

	var results []render.Result
	for _, p := range plans {
		records, err := load(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to load rows for %s: %w", p.Name(), err)
		}
		slog.Info("consolidating", "mode", p.Name(), "rows", len(records), "parameters", p.Params())
		res, err := p.Consolidate(ctx, engine, records)
		if err != nil {
			return nil, fmt.Errorf("failed to consolidate %s: %w", p.Name(), err)
		}
		results = append(results, render.NewResult(p.Name(), res))
	}
	return results, nil
}

func selectPlans(reg *modes.Registry, instrument, filekind string) ([]*modes.Plan, error) {
	if filekind != "" {
		p, err := reg.Lookup(instrument, filekind)
		if err != nil {
			return nil, err
		}
		return []*modes.Plan{p}, nil
	}
	kinds := reg.Filekinds(instrument)
	if len(kinds) == 0 {
		return nil, fmt.Errorf("%w: no filekinds for instrument %s", types.ErrUnknownMode, instrument)
	}
	plans := make([]*modes.Plan, 0, len(kinds))
	for _, k := range kinds {
		p, err := reg.Lookup(instrument, k)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func readRows(path string) ([]types.Record, error) {
	if path == "-" {
		return render.ReadRecords(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rows file: %w", err)
	}
	defer f.Close()
	return render.ReadRecords(f)
}

func writeResults(path, format string, results []render.Result) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if format == "json" {
		return render.WriteJSON(w, results...)
	}
	return render.WriteYAML(w, results...)
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}
