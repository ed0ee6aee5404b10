package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/acta-lineup/internal/config"
	"github.com/pfrederiksen/acta-lineup/internal/logger"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// rootOptions holds flags shared by every subcommand
type rootOptions struct {
	envFile  string
	logLevel string
	dataDir  string
	verbose  bool

	cfg config.Config
	log *logger.Logger
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "acta-lineup",
		Short: "Import football line-ups from FCF match reports",
		Long: `A tool to import the two team sheets from a Federació Catalana de Futbol
match report (acta) and to track a live match against them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.envFile, "env-file", ".env", "Optional .env file with ACTA_* settings")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides ACTA_LOG_LEVEL)")
	flags.StringVar(&opts.dataDir, "data-dir", "", "Data directory for saved rosters and exports (overrides ACTA_DATA_DIR)")
	flags.BoolVar(&opts.verbose, "verbose", false, "Enable verbose output")

	cmd.AddCommand(
		newScrapeCmd(opts),
		newServeCmd(opts),
		newExportCmd(opts),
	)

	return cmd
}

// load resolves configuration and installs the logger
func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return err
	}

	if o.logLevel != "" {
		level, err := logger.ParseLevel(o.logLevel)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	} else if o.verbose {
		cfg.LogLevel = logger.LevelDebug
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}

	o.cfg = cfg
	o.log = logger.New(cfg.LogLevel, cmd.ErrOrStderr())
	logger.SetDefault(o.log)
	return nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
