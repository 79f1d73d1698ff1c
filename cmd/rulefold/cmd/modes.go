package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/solatis/rulefold/internal/modes"
	"github.com/spf13/cobra"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "Inspect instrument/filekind modes",
}

var modesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List modes with their catalog columns and match parameters",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MODE\tREFTYPE\tPARAMETERS\tFILTER")
		for _, p := range reg.Plans() {
			filter := p.Mode().Filter
			if filter == "" {
				filter = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name(), p.Reftype(), strings.Join(p.Params(), ","), filter)
		}
		return w.Flush()
	},
}

var modesDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the effective modes as a YAML modes file",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry()
		if err != nil {
			return err
		}
		plans := reg.Plans()
		out := make([]modes.Mode, len(plans))
		for i, p := range plans {
			out[i] = p.Mode()
		}
		return modes.Encode(os.Stdout, out)
	},
}

func init() {
	rootCmd.AddCommand(modesCmd)
	modesCmd.AddCommand(modesListCmd, modesDumpCmd)
}
