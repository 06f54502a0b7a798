package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/k0ns0l/localedrift/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new LocaleDrift project",
	Long: `Initialize a new LocaleDrift project by creating a default configuration file.

This command creates a .localedrift.yaml configuration file in the current
directory with sensible defaults.

Examples:
  localedrift init                    # Create config in current directory
  localedrift init --config my.yaml   # Create config with custom filename
  localedrift init --force            # Overwrite existing config file`,
	PersistentPreRunE: skipConfig,
	RunE:              runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolP("force", "f", false, "overwrite existing configuration file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := config.GetConfigFilePath(cfgFile)

	if config.ConfigExists(configPath) {
		force, err := cmd.Flags().GetBool("force")
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", "force", err)
		}
		if !force {
			return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", configPath)
		}
	}

	if err := config.CreateDefaultConfigFile(configPath); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Configuration file created at %s\n", configPath)
	fmt.Fprintf(out, "\nNext steps:\n")
	fmt.Fprintf(out, "1. Point locales.directory at your translation files\n")
	fmt.Fprintf(out, "2. Set locales.reference to the locale others are checked against\n")
	fmt.Fprintf(out, "3. Validate your configuration: localedrift config validate\n")
	fmt.Fprintf(out, "4. Run an audit: localedrift audit\n")

	return nil
}
