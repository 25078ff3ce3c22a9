// Package cli implements the holdings command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/holdings/internal/generator"
	"github.com/mesh-intelligence/holdings/internal/logging"
	"github.com/mesh-intelligence/holdings/pkg/dispatch"
	"github.com/mesh-intelligence/holdings/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	backend   string
	logLevel  string
	logFormat string
}

// app is the state shared by one command tree.
type app struct {
	flags     rootFlags
	configDir string
	log       *logrus.Entry
}

// NewRootCmd creates the top-level "holdings" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "holdings",
		Short: "Generate and persist people with their bicycles and laptops",
		Long: "holdings generates synthetic people, bicycles and laptops and stores them\n" +
			"as delimited text, JSON, YAML, a spreadsheet workbook or SQL tables.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log, err := logging.New(a.flags.logLevel, a.flags.logFormat, cmd.ErrOrStderr())
			if err != nil {
				return userError{err}
			}
			a.log = log
			return nil
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return userError{err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir, or $HOLDINGS_CONFIG_DIR)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: .holdings-data, or $HOLDINGS_DATA_DIR)")
	pf.StringVar(&a.flags.backend, "backend", "", "storage backend: delimited, json, yaml, sheet or sql")
	pf.StringVar(&a.flags.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	pf.StringVar(&a.flags.logFormat, "log-format", logging.FormatText, "log format: text or json")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newGenerateCmd(a))
	root.AddCommand(newShowCmd(a))
	root.AddCommand(newStatsCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("holdings: %s", err))
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// withDispatcher resolves the configuration and runs fn against an open
// dispatcher.
func (a *app) withDispatcher(ctx context.Context, fn func(types.Config, *dispatch.Dispatcher) error) error {
	cfg, err := a.resolveConfig()
	if err != nil {
		return err
	}
	logging.OrDiscard(a.log).WithField(logging.FieldBackend, cfg.Backend).
		WithField(logging.FieldTarget, cfg.DataDir).
		Info("using backend")
	return dispatch.With(ctx, cfg, a.log, func(d *dispatch.Dispatcher) error {
		return fn(cfg, d)
	})
}

// userError marks failures caused by input the user can fix.
type userError struct{ err error }

func (e userError) Error() string { return e.err.Error() }
func (e userError) Unwrap() error { return e.err }

var userSentinels = []error{
	types.ErrBackendEmpty,
	types.ErrBackendUnknown,
	types.ErrDelimiterInvalid,
	types.ErrSQLDriverUnknown,
	types.ErrBlobDriverUnknown,
	types.ErrBlobBucketRequired,
	types.ErrInvalidName,
	types.ErrUnknownType,
	types.ErrNotFound,
	types.ErrEmptyInput,
	generator.ErrInvalidGeneratorConfig,
}

// exitCode maps an error to exitUserError for bad flags, configuration or
// missing data, and exitSysError for everything else.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ue userError
	if errors.As(err, &ue) {
		return exitUserError
	}
	for _, sentinel := range userSentinels {
		if errors.Is(err, sentinel) {
			return exitUserError
		}
	}
	return exitSysError
}
