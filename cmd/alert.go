package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/k0ns0l/localedrift/internal/alerting"
)

// alertCmd represents the alert command
var alertCmd = &cobra.Command{
	Use:   "alert",
	Short: "Inspect and test drift alert channels",
	Long: `The alert command lists the channels watch notifies about locale drift
and sends test messages to verify their settings.

Examples:
  localedrift alert channels             # List configured alert channels
  localedrift alert test                 # Test all enabled channels
  localedrift alert test --channel team  # Test one channel`,
}

// alertChannelsCmd lists alert channels
var alertChannelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List configured alert channels",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf := GetConfig()
		out := cmd.OutOrStdout()

		if len(conf.Alerting.Channels) == 0 {
			fmt.Fprintln(out, "No alert channels configured.")
			return nil
		}

		state := "disabled"
		if conf.Alerting.Enabled {
			state = "enabled"
		}
		fmt.Fprintf(out, "Alerting is %s\n\n", state)

		fmt.Fprintf(out, "%-20s %-10s %s\n", "NAME", "TYPE", "ENABLED")
		for _, channel := range conf.Alerting.Channels {
			fmt.Fprintf(out, "%-20s %-10s %t\n", channel.Name, channel.Type, channel.Enabled)
		}
		return nil
	},
}

// alertTestCmd sends a test message
var alertTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test message to alert channels",
	Long: `Send a test alert to every enabled channel, or to the one named with
--channel, to verify that webhook URLs and credentials are correct. The
test is sent even when alerting is disabled so channels can be checked
before switching it on.`,
	RunE: runAlertTest,
}

func init() {
	rootCmd.AddCommand(alertCmd)
	alertCmd.AddCommand(alertChannelsCmd)
	alertCmd.AddCommand(alertTestCmd)

	alertTestCmd.Flags().String("channel", "", "test only the named channel")
}

func runAlertTest(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	conf := GetConfig()
	channelName, err := cmd.Flags().GetString("channel")
	if err != nil {
		return fmt.Errorf("failed to get %s flag: %w", "channel", err)
	}

	notifier, err := alerting.New(conf.Alerting, GetLogger())
	if err != nil {
		return fmt.Errorf("failed to create alert channels: %w", err)
	}
	if len(notifier.Channels()) == 0 {
		return fmt.Errorf("no enabled alert channels configured")
	}

	out := cmd.OutOrStdout()
	message := alerting.TestMessage(conf.Project.Name)

	if channelName != "" {
		if err := notifier.NotifyChannel(ctx, channelName, message); err != nil {
			fmt.Fprintf(out, "✗ %s: %v\n", channelName, err)
			return err
		}
		fmt.Fprintf(out, "✓ %s\n", channelName)
		return nil
	}

	failed := 0
	for _, channel := range notifier.Channels() {
		if err := notifier.NotifyChannel(ctx, channel.Name(), message); err != nil {
			fmt.Fprintf(out, "✗ %s (%s): %v\n", channel.Name(), channel.Type(), err)
			failed++
			continue
		}
		fmt.Fprintf(out, "✓ %s (%s)\n", channel.Name(), channel.Type())
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d alert channel(s) failed", failed, len(notifier.Channels()))
	}
	return nil
}
