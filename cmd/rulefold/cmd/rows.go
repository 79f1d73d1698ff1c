package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/solatis/rulefold/internal/core/db"
	"github.com/solatis/rulefold/internal/modes"
	"github.com/solatis/rulefold/internal/render"
	"github.com/spf13/cobra"
)

var rowsCmd = &cobra.Command{
	Use:   "rows",
	Short: "Export catalog rows for one mode as JSONL",
	Long: `Export the usable catalog rows of one mode as JSONL, the format
accepted by 'consolidate --rows'.`,
	RunE: runRows,
}

func init() {
	rootCmd.AddCommand(rowsCmd)
	rowsCmd.Flags().String("instrument", "", "instrument")
	rowsCmd.Flags().String("filekind", "", "filekind")
	rowsCmd.MarkFlagRequired("instrument")
	rowsCmd.MarkFlagRequired("filekind")
}

func runRows(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	instrument, _ := cmd.Flags().GetString("instrument")
	filekind, _ := cmd.Flags().GetString("filekind")

	reg, err := newRegistry()
	if err != nil {
		return err
	}
	plan, err := reg.Lookup(instrument, filekind)
	if err != nil {
		return err
	}

	database, catalog, err := openCatalog(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	n, err := dumpRows(ctx, catalog, os.Stdout, plan)
	if err != nil {
		return fmt.Errorf("failed to export rows: %w", err)
	}
	slog.Info("exported rows", "mode", plan.Name(), "rows", n)
	return nil
}

// dumpRows writes catalog rows to w as JSONL.
func dumpRows(ctx context.Context, catalog *db.Catalog, w io.Writer, p *modes.Plan) (int, error) {
	records, err := catalog.LoadRecords(ctx, p.Mode().Instrument, p.Reftype(), p.Columns())
	if err != nil {
		return 0, err
	}
	return len(records), render.WriteRecords(w, records)
}
