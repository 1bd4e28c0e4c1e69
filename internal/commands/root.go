package commands

import (
	"fmt"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/spf13/cobra"

	"github.com/maconomy-cli/maconomy/internal/config"
	"github.com/maconomy-cli/maconomy/internal/db"
	"github.com/maconomy-cli/maconomy/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfg       *config.Config
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "maconomy",
	Short: "Register time in Maconomy from the terminal",
	Long: `maconomy is a command-line client for Maconomy time registration.
Show your time sheet, register and clear hours, remove lines and submit weeks
without leaving the terminal.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return db.Close()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "maconomy %s (commit %s, built %s)\n", version, commit, date)
	},
}

// setup loads configuration and puts the logger in the command context.
// Flags take precedence over the config file.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		loaded.Log.Level = logLevel
	}
	if cmd.Flags().Changed("log-format") {
		loaded.Log.Format = logFormat
	}

	format, err := logging.ParseFormat(loaded.Log.Format)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(loaded.Log.Level)
	if err != nil {
		return err
	}
	logger := logging.New(level, os.Stderr, format)

	cfg = loaded
	cmd.SetContext(ctxlog.With(cmd.Context(), logger))
	logger.Debug("Loaded configuration",
		"maconomy_url", cfg.MaconomyURL,
		"company_id", cfg.CompanyID,
		"storage", cfg.Storage.Path,
	)
	return nil
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "auto", "Log format: auto|console|json")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(lineCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.SetHelpCommand(helpCmd)
}
