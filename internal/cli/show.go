package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/holdings/internal/codec"
	"github.com/mesh-intelligence/holdings/pkg/dispatch"
	"github.com/mesh-intelligence/holdings/pkg/link"
	"github.com/mesh-intelligence/holdings/pkg/types"
)

// personView is the --json shape of one person with the items they own.
type personView struct {
	codec.PersonRecord
	Bicycles []codec.BicycleRecord `json:"bicycles"`
	Laptops  []codec.LaptopRecord  `json:"laptops"`
}

// showView is the --json document printed by show.
type showView struct {
	People          []personView          `json:"people"`
	UnownedBicycles []codec.BicycleRecord `json:"unowned_bicycles"`
	UnownedLaptops  []codec.LaptopRecord  `json:"unowned_laptops"`
}

func newShowCmd(a *app) *cobra.Command {
	var jsonMode bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print every person with the bicycles and laptops they own",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDispatcher(cmd.Context(), func(_ types.Config, d *dispatch.Dispatcher) error {
				pop, err := d.Load(cmd.Context())
				if err != nil {
					return err
				}
				view, err := buildShowView(pop)
				if err != nil {
					return err
				}
				if jsonMode {
					return writeJSON(cmd.OutOrStdout(), view)
				}
				printShow(cmd.OutOrStdout(), view)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonMode, "json", false, "output in JSON format")
	return cmd
}

func buildShowView(pop types.Population) (showView, error) {
	idx := link.BuildIndex(pop.People, pop.Bicycles, pop.Laptops)
	view := showView{People: make([]personView, 0, len(pop.People))}
	for _, p := range pop.People {
		pv := personView{
			PersonRecord: codec.PersonRecord{ID: p.ID, Name: p.Name, Age: p.Age, Male: p.Male},
			Bicycles:     []codec.BicycleRecord{},
			Laptops:      []codec.LaptopRecord{},
		}
		if err := appendRecords(&pv.Bicycles, types.BicyclesBatch(idx.BicyclesOf(p.ID))); err != nil {
			return view, err
		}
		if err := appendRecords(&pv.Laptops, types.LaptopsBatch(idx.LaptopsOf(p.ID))); err != nil {
			return view, err
		}
		view.People = append(view.People, pv)
	}

	orphanBicycles, orphanLaptops := idx.Orphans()
	view.UnownedBicycles = []codec.BicycleRecord{}
	view.UnownedLaptops = []codec.LaptopRecord{}
	if err := appendRecords(&view.UnownedBicycles, types.BicyclesBatch(orphanBicycles)); err != nil {
		return view, err
	}
	if err := appendRecords(&view.UnownedLaptops, types.LaptopsBatch(orphanLaptops)); err != nil {
		return view, err
	}
	return view, nil
}

func appendRecords[R any](dst *[]R, batch types.Batch) error {
	recs, err := codec.Records(batch)
	if err != nil {
		return err
	}
	*dst = append(*dst, recs.([]R)...)
	return nil
}

func printShow(w io.Writer, view showView) {
	bold := color.New(color.Bold)
	for _, p := range view.People {
		sex := "female"
		if p.Male {
			sex = "male"
		}
		bold.Fprintf(w, "%s", p.Name)
		fmt.Fprintf(w, " (%s), %d, %s\n", p.ID, p.Age, sex)
		for _, b := range p.Bicycles {
			fmt.Fprintf(w, "  bicycle  %s %s (%d)\n", b.Brand, b.Model, b.Year)
		}
		for _, l := range p.Laptops {
			fmt.Fprintf(w, "  laptop   %s %s (%d, %d GB RAM, %d GB VRAM)\n", l.Brand, l.Model, l.Year, l.RAM, l.VRAM)
		}
	}
	if len(view.UnownedBicycles)+len(view.UnownedLaptops) == 0 {
		return
	}
	fmt.Fprintln(w, color.YellowString("unowned"))
	for _, b := range view.UnownedBicycles {
		fmt.Fprintf(w, "  bicycle  %s %s (%d) owner %q\n", b.Brand, b.Model, b.Year, ownerLabel(b.OwnerID))
	}
	for _, l := range view.UnownedLaptops {
		fmt.Fprintf(w, "  laptop   %s %s (%d) owner %q\n", l.Brand, l.Model, l.Year, ownerLabel(l.OwnerID))
	}
}

func ownerLabel(id *string) string {
	if id == nil {
		return ""
	}
	return *id
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
