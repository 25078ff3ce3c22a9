package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/holdings/internal/report"
	"github.com/mesh-intelligence/holdings/pkg/dispatch"
	"github.com/mesh-intelligence/holdings/pkg/types"
)

type statsView struct {
	Summary report.Summary       `json:"summary"`
	Laptops []report.BrandStats `json:"laptops"`
}

func newStatsCmd(a *app) *cobra.Command {
	var jsonMode bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print ownership totals and laptop figures per brand",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDispatcher(cmd.Context(), func(_ types.Config, d *dispatch.Dispatcher) error {
				pop, err := d.Load(cmd.Context())
				if err != nil {
					return err
				}
				view := statsView{
					Summary: report.Summarize(pop),
					Laptops: report.LaptopStats(pop.Laptops),
				}
				if jsonMode {
					return writeJSON(cmd.OutOrStdout(), view)
				}
				return printStats(cmd.OutOrStdout(), view)
			})
		},
	}
	cmd.Flags().BoolVar(&jsonMode, "json", false, "output in JSON format")
	return cmd
}

func printStats(w io.Writer, view statsView) error {
	s := view.Summary
	fmt.Fprintf(w, "%s %d, bicycles %d, laptops %d\n", color.CyanString("people"), s.People, s.Bicycles, s.Laptops)
	fmt.Fprintf(w, "unowned bicycles %d, unowned laptops %d, people without items %d\n",
		s.OrphanBicycles, s.OrphanLaptops, s.Idle)
	if len(view.Laptops) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BRAND\tCOUNT\tAVG RAM\tAVG VRAM\tSHARE")
	for _, b := range view.Laptops {
		fmt.Fprintf(tw, "%s\t%d\t%.1f\t%.1f\t%.1f%%\n", b.Brand, b.Count, b.AvgRAM, b.AvgVRAM, b.Share*100)
	}
	return tw.Flush()
}
