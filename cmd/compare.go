package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/k0ns0l/localedrift/internal/keydiff"
	"github.com/k0ns0l/localedrift/internal/loader"
	"github.com/k0ns0l/localedrift/internal/report"
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare <first> <second>",
	Short: "Report keys present in only one of two locale files",
	Long: `Compare two localization files and list every key path that exists in
one file but not the other.

Keys holding a mapping in both files are compared recursively. A key whose
mapping is missing from the other file is reported once, without listing
its children. Values are never compared.

The input format is chosen from the file extension (.json, .yaml, .yml,
.toml); unknown extensions are read as JSON.

Examples:
  localedrift compare locales/en.json locales/pt.json
  localedrift compare en.yaml es.yaml --root translation
  localedrift compare en.json pt.json -o json --out drift.json
  localedrift compare en.json pt.json --fail-on-drift   # exit 3 on drift`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().String("root", "", "root label prepended to every key path (default from compare.root_label)")
	compareCmd.Flags().String("format", "", "force the input format of both files (json, yaml, toml)")
	compareCmd.Flags().String("out", "", "write the report to a file instead of stdout")
	compareCmd.Flags().Bool("fail-on-drift", false, "exit with status 3 when differences are found")
}

func runCompare(cmd *cobra.Command, args []string) error {
	start := time.Now()
	log := GetLogger().WithComponent("compare")

	rootLabel := GetConfig().Compare.RootLabel
	if cmd.Flags().Changed("root") {
		label, err := cmd.Flags().GetString("root")
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", "root", err)
		}
		rootLabel = label
	}

	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	load, err := documentLoader(cmd, loader.New(log))
	if err != nil {
		return err
	}

	log.LogOperation(cmd.Context(), "compare", "first", args[0], "second", args[1])

	first, err := load(args[0])
	if err != nil {
		log.LogError(cmd.Context(), err, "Failed to load first file")
		return err
	}
	second, err := load(args[1])
	if err != nil {
		log.LogError(cmd.Context(), err, "Failed to load second file")
		return err
	}

	records := keydiff.Diff(first.Tree, second.Tree, rootLabel)
	summary := keydiff.Summarize(records)

	log.LogOperationSuccess(cmd.Context(), "compare", time.Since(start),
		"differences", summary.Total,
		"missing_in_second", summary.FirstOnly,
		"missing_in_first", summary.SecondOnly)

	render := func(w io.Writer) error {
		return report.Render(w, records, format)
	}
	if err := emit(cmd, render); err != nil {
		return err
	}

	fail, err := failOnDrift(cmd)
	if err != nil {
		return err
	}
	if fail && summary.Total > 0 {
		return &DriftError{Differences: summary.Total}
	}
	return nil
}

// documentLoader returns a load function honoring --format
func documentLoader(cmd *cobra.Command, l *loader.Loader) (func(string) (*loader.Document, error), error) {
	value, err := cmd.Flags().GetString("format")
	if err != nil {
		return nil, fmt.Errorf("failed to get %s flag: %w", "format", err)
	}
	if value == "" {
		return l.Load, nil
	}

	format, err := loader.ParseFormat(value)
	if err != nil {
		return nil, err
	}
	return func(path string) (*loader.Document, error) {
		return l.LoadWithFormat(path, format)
	}, nil
}

// emit sends a rendered report to --out or to stdout
func emit(cmd *cobra.Command, render func(io.Writer) error) error {
	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get %s flag: %w", "out", err)
	}
	if out == "" {
		return render(cmd.OutOrStdout())
	}

	if err := report.WriteFile(out, render); err != nil {
		return err
	}
	GetLogger().Info("Report written", "path", out)
	return nil
}
