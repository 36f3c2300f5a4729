// Package commands implements the kakeibo command line
package commands

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/config"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/logger"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/ui"
)

// Version is overridden at build time with -ldflags
var Version = "0.1.0"

// app is the state shared by subcommands, filled in before any of them run
type app struct {
	cfg    *config.Config
	logger *log.Logger

	envFile  string
	verbose  bool
	logLevel string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "kakeibo",
		Short:   "Import Japanese bank and card statements into a household ledger",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", ".env", "environment file to load if present")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log debug output")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides KAKEIBO_LOG_LEVEL)")

	rootCmd.AddCommand(
		newFormatsCommand(a),
		newParseCommand(a),
		newImportCommand(a),
		newServeCommand(a),
	)
	return rootCmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch {
	case a.verbose:
		cfg.LogLevel = "debug"
	case a.logLevel != "":
		if _, err := logger.ParseLevelStrict(a.logLevel); err != nil {
			return err
		}
		cfg.LogLevel = a.logLevel
	}

	a.cfg = cfg
	a.logger = logger.New(cfg.LogLevel, cmd.ErrOrStderr())
	ui.SetOutput(cmd.ErrOrStderr())
	return nil
}
