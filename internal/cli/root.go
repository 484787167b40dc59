package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/smartinvoice/internal/config"
	applog "github.com/roach88/smartinvoice/internal/log"
	"github.com/roach88/smartinvoice/internal/offline"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	DataDir    string // overrides storage.data_dir from config

	// Resolved in PersistentPreRunE.
	logger  *slog.Logger
	dataDir string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the smartinvoice CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "smartinvoice",
		Short: "SmartInvoice offline invoice store",
		Long: `Manage invoices kept in the local offline store (SmartInvoiceDB).

Invoices are JSON objects identified by their "id" attribute. Saving an
invoice with an existing id replaces it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.resolve(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (default $"+config.EnvConfigPath+")")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "directory holding the offline database")

	// Add subcommands
	cmd.AddCommand(NewSaveCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewClearCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))

	return cmd
}

// resolve loads configuration and builds the logger. Flags win over config.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	logOpts := cfg.LogOptions()
	if o.Verbose {
		logOpts.Level = "debug"
	}
	logOpts.Writer = cmd.ErrOrStderr()
	o.logger = applog.New(logOpts)

	o.dataDir = cfg.Storage.DataDir
	if o.DataDir != "" {
		o.dataDir = o.DataDir
	}
	return nil
}

// openStore returns a store for the resolved data directory. Callers close it.
func (o *RootOptions) openStore() *offline.Store {
	l := o.logger
	if l == nil {
		l = applog.Discard()
	}
	return offline.New(o.dataDir, offline.WithLogger(l.With(slog.String("component", "offline"))))
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
