package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/k0ns0l/localedrift/internal/config"
)

// SlackChannel posts messages to a Slack incoming webhook
type SlackChannel struct {
	name       string
	webhookURL string
	channel    string
	username   string
	iconEmoji  string
	client     *http.Client
}

// SlackMessage represents a Slack webhook message
type SlackMessage struct {
	Channel   string       `json:"channel,omitempty"`
	Username  string       `json:"username,omitempty"`
	IconEmoji string       `json:"icon_emoji,omitempty"`
	Text      string       `json:"text,omitempty"`
	Blocks    []SlackBlock `json:"blocks,omitempty"`
}

// SlackBlock represents a Slack block element
type SlackBlock struct {
	Type   string      `json:"type"`
	Text   *SlackText  `json:"text,omitempty"`
	Fields []SlackText `json:"fields,omitempty"`
}

// SlackText represents Slack text element
type SlackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewSlackChannel creates a Slack channel. Settings: webhook_url
// (required), channel, username and icon_emoji.
func NewSlackChannel(channelConfig config.AlertChannelConfig, client *http.Client) (*SlackChannel, error) {
	settings := channelConfig.Settings

	webhookURL, ok := settings["webhook_url"].(string)
	if !ok || webhookURL == "" {
		return nil, fmt.Errorf("webhook_url is required for Slack channel")
	}

	channel := &SlackChannel{
		name:       channelConfig.Name,
		webhookURL: webhookURL,
		username:   "LocaleDrift",
		iconEmoji:  ":earth_africa:",
		client:     client,
	}

	if ch, ok := settings["channel"].(string); ok {
		channel.channel = ch
	}
	if username, ok := settings["username"].(string); ok && username != "" {
		channel.username = username
	}
	if iconEmoji, ok := settings["icon_emoji"].(string); ok && iconEmoji != "" {
		channel.iconEmoji = iconEmoji
	}

	return channel, nil
}

// Send posts the message to Slack
func (sc *SlackChannel) Send(ctx context.Context, message *Message) error {
	payload, err := json.Marshal(sc.formatMessage(message))
	if err != nil {
		return fmt.Errorf("failed to marshal Slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sc.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent())

	return do(sc.client, req)
}

// Type returns the channel type
func (sc *SlackChannel) Type() string {
	return "slack"
}

// Name returns the channel name
func (sc *SlackChannel) Name() string {
	return sc.name
}

// formatMessage renders a Message as Slack blocks
func (sc *SlackChannel) formatMessage(message *Message) *SlackMessage {
	emoji := ":warning:"
	if message.Test {
		emoji = ":white_check_mark:"
	}

	blocks := []SlackBlock{
		{
			Type: "section",
			Text: &SlackText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("%s *%s*\n%s", emoji, message.Title, message.Summary),
			},
		},
		{
			Type: "section",
			Fields: []SlackText{
				{Type: "mrkdwn", Text: fmt.Sprintf("*Reference:*\n%s", message.Reference)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Differences:*\n%d", message.Total)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Detected:*\n%s", message.DetectedAt.UTC().Format("2006-01-02 15:04:05 UTC"))},
			},
		},
	}

	if message.Project != "" {
		blocks[1].Fields = append(blocks[1].Fields, SlackText{Type: "mrkdwn", Text: fmt.Sprintf("*Project:*\n%s", message.Project)})
	}

	for _, change := range message.Locales {
		var b strings.Builder
		fmt.Fprintf(&b, "*%s* `%s`: %d missing, %d extra\n", change.Locale, change.File, change.Missing, change.Extra)
		for _, path := range change.Paths {
			fmt.Fprintf(&b, "• `%s`\n", path)
		}
		if change.Truncated > 0 {
			fmt.Fprintf(&b, "… and %d more\n", change.Truncated)
		}

		blocks = append(blocks, SlackBlock{
			Type: "section",
			Text: &SlackText{Type: "mrkdwn", Text: b.String()},
		})
	}

	return &SlackMessage{
		Channel:   sc.channel,
		Username:  sc.username,
		IconEmoji: sc.iconEmoji,
		Text:      fmt.Sprintf("%s %s", emoji, message.Title),
		Blocks:    blocks,
	}
}
