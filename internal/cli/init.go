package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/holdings/pkg/dispatch"
	"github.com/mesh-intelligence/holdings/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize holdings configuration and storage",
		Long:  "Create the configuration directory with a default config.yaml and the data\ndirectory, then open the configured backend once to check it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd)
		},
	}
}

func (a *app) runInit(cmd *cobra.Command) error {
	cfg, err := a.resolveConfig()
	if err != nil {
		return err
	}
	if cfg.Blob.Driver == types.BlobDriverFS || cfg.Backend == types.BackendSQL {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}

	err = dispatch.With(cmd.Context(), cfg, a.log, func(*dispatch.Dispatcher) error { return nil })
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "holdings initialized\nconfig: %s\ndata:   %s\nbackend: %s\n",
		a.configDir, cfg.DataDir, cfg.Backend)
	return nil
}
