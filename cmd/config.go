package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/k0ns0l/localedrift/internal/config"
	"github.com/k0ns0l/localedrift/internal/deprecation"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage LocaleDrift configuration including viewing, validating, and initializing config files.

Examples:
  localedrift config show          # Show current configuration
  localedrift config validate      # Validate configuration
  localedrift config init          # Initialize default configuration file`,
}

// configShowCmd shows the current configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective LocaleDrift configuration, after defaults and environment overrides, as YAML or JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf := GetConfig()

		outputFormat, err := cmd.Flags().GetString("output")
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", "output", err)
		}

		switch outputFormat {
		case "json":
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(conf)
		case "yaml", "":
			encoder := yaml.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent(2)
			defer encoder.Close()
			return encoder.Encode(conf)
		default:
			return fmt.Errorf("unsupported output format: %s (supported: json, yaml)", outputFormat)
		}
	},
}

// configValidateCmd validates the configuration
var configValidateCmd = &cobra.Command{
	Use:               "validate",
	Short:             "Validate configuration",
	Long:              `Validate the LocaleDrift configuration and report every problem found.`,
	PersistentPreRunE: skipConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := config.LoadConfig(cfgFile)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Configuration validation failed:\n%v\n", err)
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration is valid ✓\n")
		fmt.Fprintf(out, "- Project: %s\n", conf.Project.Name)
		fmt.Fprintf(out, "- Locales: %s (reference %s, extensions %s)\n",
			conf.Locales.Directory, conf.Locales.Reference, strings.Join(conf.Locales.Extensions, " "))
		fmt.Fprintf(out, "- Root label: %q\n", conf.Compare.RootLabel)
		fmt.Fprintf(out, "- Watch schedule: %s\n", conf.Watch.Schedule)

		for _, key := range conf.DeprecatedKeys() {
			if notice, ok := deprecation.Lookup(key); ok {
				fmt.Fprintf(out, "\n%s\n", deprecation.FormatNotice(notice))
			}
		}

		return nil
	},
}

// configInitCmd initializes a default configuration file
var configInitCmd = &cobra.Command{
	Use:               "init",
	Short:             "Initialize default configuration file",
	Long:              `Create a default LocaleDrift configuration file.`,
	PersistentPreRunE: skipConfig,
	RunE:              runInit,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().BoolP("force", "f", false, "overwrite existing configuration file")
}
