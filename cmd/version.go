package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/k0ns0l/localedrift/internal/version"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Print the LocaleDrift version, git commit, build date, Go version and
platform. Builds without a release commit report the VCS stamp recorded by
the Go toolchain.

The global -o/--output flag selects json or yaml; any other value prints
text. No configuration file is read.

Examples:
  localedrift version                # One-line version
  localedrift version --detailed     # Every field on its own line
  localedrift version -o json        # Machine-readable build information`,
	PersistentPreRunE: skipConfig,
	RunE:              runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolP("detailed", "d", false, "show detailed version information")
}

func runVersion(cmd *cobra.Command, args []string) error {
	outputFormat, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get %s flag: %w", "output", err)
	}
	detailed, err := cmd.Flags().GetBool("detailed")
	if err != nil {
		return fmt.Errorf("failed to get %s flag: %w", "detailed", err)
	}

	out := cmd.OutOrStdout()
	info := version.GetVersion()

	switch outputFormat {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(info)
	case "yaml":
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(info)
	}

	if detailed {
		fmt.Fprintln(out, version.GetDetailedVersionString())
	} else {
		fmt.Fprintln(out, version.GetVersionString())
	}
	return nil
}
