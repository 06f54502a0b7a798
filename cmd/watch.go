package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/k0ns0l/localedrift/internal/alerting"
	"github.com/k0ns0l/localedrift/internal/audit"
	"github.com/k0ns0l/localedrift/internal/watch"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Re-run the locale audit on a schedule",
	Long: `Watch a locale directory by re-running the audit on a cron schedule until
interrupted. A report is printed whenever a run finds drift; clean runs
are only logged. When alerting is enabled, each new set of differences
is also sent to the configured Slack or webhook channels.

The schedule accepts standard 5-field cron expressions and descriptors
such as "@hourly" or "@every 10m".

Examples:
  localedrift watch
  localedrift watch ./locales --schedule "@every 1m"
  localedrift watch --schedule "0 9 * * 1-5" -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("reference", "", "reference locale name or file (default from locales.reference)")
	watchCmd.Flags().String("schedule", "", "cron schedule (default from watch.schedule)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	conf := GetConfig()
	log := GetLogger()

	dir, reference, err := auditTarget(cmd, args)
	if err != nil {
		return err
	}

	schedule, err := cmd.Flags().GetString("schedule")
	if err != nil {
		return fmt.Errorf("failed to get %s flag: %w", "schedule", err)
	}
	if schedule == "" {
		schedule = conf.Watch.Schedule
	}

	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	opts := watch.Options{
		Schedule:   schedule,
		Directory:  dir,
		Reference:  reference,
		Format:     format,
		Output:     cmd.OutOrStdout(),
		RunOnStart: conf.Watch.RunOnStart,
		Retry:      conf.Watch.Retry,
		Project:    conf.Project.Name,
		MaxPaths:   conf.Alerting.MaxPaths,
	}
	if conf.Alerting.Enabled {
		notifier, err := alerting.New(conf.Alerting, log)
		if err != nil {
			return err
		}
		opts.Notifier = notifier
	}

	auditor := audit.New(audit.Options{Extensions: conf.Locales.Extensions}, log)
	watcher, err := watch.New(auditor, opts, log)
	if err != nil {
		return err
	}

	if err := watcher.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	watcher.Stop()

	status := watcher.Status()
	fmt.Fprintf(cmd.ErrOrStderr(), "Stopped after %d run(s), %d with drift, %d failed; last run %s\n",
		status.RunCount, status.DriftedRuns, status.ErrorCount, status.LastRunAge())
	if opts.Notifier != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Alerts: %d sent, %d failed\n", status.AlertsSent, status.AlertErrors)
	}

	return nil
}
