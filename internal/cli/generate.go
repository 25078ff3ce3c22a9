package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/holdings/internal/generator"
	"github.com/mesh-intelligence/holdings/pkg/dispatch"
	"github.com/mesh-intelligence/holdings/pkg/types"
)

type generateFlags struct {
	people    int
	bicycles  int
	laptops   int
	seed      uint64
	idStyle   string
	maleRatio float64
	minAge    int
	maxAge    int
	unique    bool
	appendTo  bool
}

func newGenerateCmd(a *app) *cobra.Command {
	var f generateFlags
	defaults := generator.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate people, bicycles and laptops and save them",
		Long: "Generate a population, give every bicycle and laptop a random owner and save\n" +
			"it through the configured backend. Existing data is replaced unless --append\n" +
			"is set; only the sql backend can append.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := generator.Options{
				Seed:        f.seed,
				MaleRatio:   f.maleRatio,
				MinAge:      f.minAge,
				MaxAge:      f.maxAge,
				IDStyle:     generator.IDStyle(f.idStyle),
				UniqueNames: f.unique,
			}
			g, err := generator.New(opts)
			if err != nil {
				return err
			}
			pop, err := g.Population(f.people, f.bicycles, f.laptops)
			if err != nil {
				return err
			}

			return a.withDispatcher(cmd.Context(), func(cfg types.Config, d *dispatch.Dispatcher) error {
				if err := d.Save(cmd.Context(), pop, !f.appendTo); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d people, %d bicycles, %d laptops (%s backend)\n",
					color.GreenString("saved"), len(pop.People), len(pop.Bicycles), len(pop.Laptops), cfg.Backend)
				return nil
			})
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&f.people, "people", 10, "number of people")
	fl.IntVar(&f.bicycles, "bicycles", 10, "number of bicycles")
	fl.IntVar(&f.laptops, "laptops", 10, "number of laptops")
	fl.Uint64Var(&f.seed, "seed", 1, "random seed")
	fl.StringVar(&f.idStyle, "id-style", string(generator.IDSequential), "id style: sequential or uuid")
	fl.Float64Var(&f.maleRatio, "male-ratio", defaults.MaleRatio, "probability that a person is male")
	fl.IntVar(&f.minAge, "min-age", defaults.MinAge, "minimum age")
	fl.IntVar(&f.maxAge, "max-age", defaults.MaxAge, "maximum age")
	fl.BoolVar(&f.unique, "unique-names", false, "never repeat a person name")
	fl.BoolVar(&f.appendTo, "append", false, "append to existing sql tables instead of recreating them")
	return cmd
}
