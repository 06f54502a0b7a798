package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/k0ns0l/localedrift/internal/audit"
	"github.com/k0ns0l/localedrift/internal/report"
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit [dir]",
	Short: "Compare every locale in a directory against the reference locale",
	Long: `Audit a locale directory: the reference locale is compared with every
other locale file found directly inside the directory.

For each locale, "missing in second file" means the locale lacks a key the
reference has, and "missing in first file" means the locale has a key the
reference lacks. Key paths start with the locale name unless --root is set.

The directory defaults to locales.directory and the reference to
locales.reference from the configuration.

Examples:
  localedrift audit
  localedrift audit ./src/i18n --reference en.json
  localedrift audit -o json --out audit.json --fail-on-drift`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().String("reference", "", "reference locale name or file (default from locales.reference)")
	auditCmd.Flags().String("root", "", "root label for every key path (default is the locale name)")
	auditCmd.Flags().String("out", "", "write the report to a file instead of stdout")
	auditCmd.Flags().Bool("fail-on-drift", false, "exit with status 3 when any locale drifts")
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	dir, reference, err := auditTarget(cmd, args)
	if err != nil {
		return err
	}

	rootLabel, err := cmd.Flags().GetString("root")
	if err != nil {
		return fmt.Errorf("failed to get %s flag: %w", "root", err)
	}

	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	auditor := audit.New(audit.Options{
		Extensions: GetConfig().Locales.Extensions,
		RootLabel:  rootLabel,
	}, GetLogger())

	result, err := auditor.Run(ctx, dir, reference)
	if err != nil {
		return err
	}

	render := func(w io.Writer) error {
		return report.RenderAudit(w, result.Reference, result.Pairs, format)
	}
	if err := emit(cmd, render); err != nil {
		return err
	}

	fail, err := failOnDrift(cmd)
	if err != nil {
		return err
	}
	if fail && result.Drifted() {
		return &DriftError{Differences: result.Summary().Total}
	}
	return nil
}

// auditTarget resolves the directory and reference locale from arguments,
// flags and configuration, in that order.
func auditTarget(cmd *cobra.Command, args []string) (dir, reference string, err error) {
	locales := GetConfig().Locales

	dir = locales.Directory
	if len(args) > 0 {
		dir = args[0]
	}

	reference, err = cmd.Flags().GetString("reference")
	if err != nil {
		return "", "", fmt.Errorf("failed to get %s flag: %w", "reference", err)
	}
	if reference == "" {
		reference = locales.Reference
	}

	return dir, reference, nil
}
