package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cfgpkg "github.com/KaramelBytes/basketloom-cli/internal/config"
	"github.com/KaramelBytes/basketloom-cli/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagLogLevel  string
	flagLogFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
	// Logger built from config and flags; diagnostics go to stderr.
	logger = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "basketloom",
	Short: "basketloom: market-basket analysis for retail transactions",
	Long: `basketloom reads retail transaction tables (CSV, TSV or XLSX), mines the sets of
products frequently bought together with Apriori and reports the association
rules between them ranked by support, confidence, lift, leverage or conviction.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.basketloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output (same as --log-level debug)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands that need config report it themselves
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		logger = logging.New("info", "text", rootCmd.ErrOrStderr())
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("log-level") && flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if f.Changed("log-format") && flagLogFormat != "" {
		cfg.LogFormat = flagLogFormat
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	if err := logging.ValidateFormat(cfg.LogFormat); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v; using text\n", err)
		cfg.LogFormat = "text"
	}
	logger = logging.New(cfg.LogLevel, cfg.LogFormat, rootCmd.ErrOrStderr())
	logger.Debug("configuration loaded", "config", cfgFile, "cache_path", cfg.CachePath)
}

// requireConfig returns the loaded configuration or an error explaining why
// it is missing.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg == nil {
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	return cfg, nil
}
