// Package cmd contains all CLI commands for LocaleDrift
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/k0ns0l/localedrift/internal/config"
	"github.com/k0ns0l/localedrift/internal/deprecation"
	ldErrors "github.com/k0ns0l/localedrift/internal/errors"
	"github.com/k0ns0l/localedrift/internal/logging"
	"github.com/k0ns0l/localedrift/internal/report"
	"github.com/k0ns0l/localedrift/internal/version"
)

// Exit codes returned by Execute
const (
	ExitOK    = 0
	ExitError = 1
	ExitDrift = 3
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *logging.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "localedrift",
	Short: "Detect key drift between localization files",
	Long: `LocaleDrift compares localization files and reports translation keys
that exist in one file but not the other.

Nested keys are reported as dotted paths, for example
"root.home.subtitle missing in second file". Only key presence is
compared; translated values are never inspected.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		versionFlag, err := cmd.Flags().GetBool("version")
		if err != nil {
			return fmt.Errorf("failed to get version flag: %w", err)
		}
		if versionFlag {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetVersionString())
			return nil
		}
		return cmd.Help()
	},
}

// DriftError is returned when --fail-on-drift is set and differences exist
type DriftError struct {
	Differences int
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("locale drift detected: %d difference(s)", e.Differences)
}

// Execute runs the root command and exits with the matching status code.
// This is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	code := exitCode(err)
	if code == ExitError {
		printError(rootCmd.ErrOrStderr(), err)
	}
	_ = logging.CloseGlobalLogger()
	os.Exit(code)
}

func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var driftErr *DriftError
	if errors.As(err, &driftErr) {
		return ExitDrift
	}
	return ExitError
}

// printError writes the error and any recovery guidance for the user
func printError(w io.Writer, err error) {
	var ldErr *ldErrors.LocaleDriftError
	if !errors.As(err, &ldErr) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(w, "Error: %s\n", ldErr.Message)
	if path, ok := ldErr.Context["path"]; ok {
		fmt.Fprintf(w, "File: %v\n", path)
	}
	if ldErr.Cause != nil {
		fmt.Fprintf(w, "Cause: %v\n", ldErr.Cause)
	}
	if ldErr.Guidance != "" {
		fmt.Fprintf(w, "Guidance: %s\n", ldErr.Guidance)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .localedrift.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format (text, json, yaml, csv); defaults to compare.output_format")

	rootCmd.Flags().BoolP("version", "", false, "show version information")
}

// initConfig loads the configuration and builds the logger before any
// command runs.
func initConfig(cmd *cobra.Command, args []string) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}

	// A bootstrap logger reports config problems before the configured one exists
	bootstrap := logging.DefaultLoggerConfig()
	if verbose {
		bootstrap.Level = logging.LogLevelDebug
	}
	logger = logging.NewLoggerWithWriter(bootstrap, cmd.ErrOrStderr())

	cfg, err = config.LoadConfig(cfgFile)
	if err != nil {
		logger.LogError(cmd.Context(), err, "Failed to load configuration")
		return err
	}

	logConfig := cfg.Logging
	if verbose {
		logConfig.Level = logging.LogLevelDebug
	}

	if logConfig.Output == "" || logConfig.Output == "stderr" {
		logger = logging.NewLoggerWithWriter(logConfig, cmd.ErrOrStderr())
	} else {
		if err := logging.InitGlobalLogger(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = logging.GetGlobalLogger()
	}

	deprecation.NewManager(logger).WarnKeys(cfg.DeprecatedKeys())

	if verbose {
		configPath := config.GetConfigFilePath(cfgFile)
		if config.ConfigExists(configPath) {
			logger.Info("Using config file", "path", configPath)
		} else {
			logger.Info("Using default configuration (no config file found)")
		}
	}

	return nil
}

// skipConfig stands in for initConfig on commands that must work without
// a valid configuration file, such as init and config validate.
func skipConfig(cmd *cobra.Command, args []string) error {
	return nil
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return cfg
}

// GetLogger returns the initialized logger
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return logger
}

// outputFormat resolves the report format from --output or the config
func outputFormat(cmd *cobra.Command) (report.Format, error) {
	value, err := cmd.Flags().GetString("output")
	if err != nil {
		return "", fmt.Errorf("failed to get %s flag: %w", "output", err)
	}
	if value == "" {
		value = GetConfig().Compare.OutputFormat
	}
	return report.ParseFormat(value)
}

// failOnDrift reports whether drift should produce a non-zero exit
func failOnDrift(cmd *cobra.Command) (bool, error) {
	flag, err := cmd.Flags().GetBool("fail-on-drift")
	if err != nil {
		return false, fmt.Errorf("failed to get %s flag: %w", "fail-on-drift", err)
	}
	return flag || GetConfig().Compare.FailOnDrift, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
