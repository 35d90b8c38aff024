package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/mdb2json/internal/config"
	"github.com/dbsmedya/mdb2json/internal/converter"
	"github.com/dbsmedya/mdb2json/internal/logger"
	"github.com/dbsmedya/mdb2json/internal/mdbtools"
	"github.com/dbsmedya/mdb2json/internal/report"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile        string
	logLevel       string
	logFormat      string
	listCommand    string
	exportCommand  string
	timeoutSeconds int
	noColor        bool
)

var rootCmd = &cobra.Command{
	Use:   "mdb2json",
	Short: "Microsoft Access to JSON converter",
	Long: `Convert Microsoft Access (.mdb/.accdb) files to JSON using the mdbtools
utilities, or load their tables into a SQL database.

Every table is exported with mdb-export and each field is typed:
  - empty fields become null
  - true/false become booleans
  - numeric text becomes a number, anything else stays a string

A table that cannot be exported is written as an empty list and the
conversion continues.`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "mdb2json.yaml",
		"Path to configuration file (optional)")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Tool overrides
	rootCmd.PersistentFlags().StringVar(&listCommand, "list-command", "",
		"Override the table listing command (default mdb-tables)")
	rootCmd.PersistentFlags().StringVar(&exportCommand, "export-command", "",
		"Override the table export command (default mdb-export)")
	rootCmd.PersistentFlags().IntVar(&timeoutSeconds, "timeout", 0,
		"Override the per-command timeout in seconds (0 = none)")

	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colored output")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// GetCLIOverrides returns the persistent flag values as config overrides.
func GetCLIOverrides() config.Overrides {
	return config.Overrides{
		LogLevel:       logLevel,
		LogFormat:      logFormat,
		ListCommand:    listCommand,
		ExportCommand:  exportCommand,
		TimeoutSeconds: timeoutSeconds,
	}
}

// loadConfig reads the optional config file and applies overrides.
func loadConfig(overrides config.Overrides) (*config.Config, error) {
	cfg, err := config.LoadOptional(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.ApplyOverrides(overrides)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newConverter wires the mdbtools toolset, logger and printer into a converter.
func newConverter(cfg *config.Config, log *logger.Logger, progress converter.Progress) (*converter.Converter, error) {
	tools := mdbtools.New(cfg.Tools)
	return converter.New(tools, cfg.Tools.DelimiterRune(), log, progress)
}

func newPrinter(cmd *cobra.Command) *report.Printer {
	out := cmd.OutOrStdout()
	return report.NewPrinter(out, !noColor && report.ColorEnabled(out))
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(log *logger.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			log.Warn("Received shutdown signal - stopping")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
