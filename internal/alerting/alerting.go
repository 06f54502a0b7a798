// Package alerting delivers locale drift notifications to chat and webhook
// channels
package alerting

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/k0ns0l/localedrift/internal/audit"
	"github.com/k0ns0l/localedrift/internal/config"
	"github.com/k0ns0l/localedrift/internal/logging"
	"github.com/k0ns0l/localedrift/internal/version"
)

// Source identifies LocaleDrift in outgoing payloads
const Source = "localedrift"

const defaultTimeout = 30 * time.Second

// Channel delivers messages to one destination
type Channel interface {
	Send(ctx context.Context, message *Message) error
	Type() string
	Name() string
}

// Message is a drift notification built from one audit run
type Message struct {
	// ID is unique per message so receivers can drop redeliveries
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Summary    string         `json:"summary"`
	Project    string         `json:"project,omitempty"`
	Directory  string         `json:"directory"`
	Reference  string         `json:"reference"`
	Total      int            `json:"total"`
	Locales    []LocaleChange `json:"locales"`
	DetectedAt time.Time      `json:"detected_at"`
	Test       bool           `json:"test,omitempty"`
}

// LocaleChange summarizes the drift of one locale against the reference
type LocaleChange struct {
	Locale string `json:"locale"`
	File   string `json:"file"`
	// Missing counts reference keys the locale lacks; Extra counts keys
	// only the locale has.
	Missing   int      `json:"missing"`
	Extra     int      `json:"extra"`
	Paths     []string `json:"paths"`
	Truncated int      `json:"truncated,omitempty"`
}

// NewMessage builds a notification for the drifted locales of result.
// At most maxPaths rendered records are listed per locale; zero lists none.
func NewMessage(project string, result *audit.Result, maxPaths int) *Message {
	summary := result.Summary()
	message := &Message{
		ID:         uuid.NewString(),
		Project:    project,
		Directory:  result.Directory,
		Reference:  result.Reference,
		Total:      summary.Total,
		DetectedAt: time.Now(),
	}

	for _, pair := range result.Pairs {
		if !pair.Drifted() {
			continue
		}
		change := LocaleChange{
			Locale:  pair.Locale,
			File:    pair.File,
			Missing: pair.Summary.FirstOnly,
			Extra:   pair.Summary.SecondOnly,
		}
		for i, record := range pair.Records {
			if i >= maxPaths {
				change.Truncated = len(pair.Records) - maxPaths
				break
			}
			change.Paths = append(change.Paths, record.String())
		}
		message.Locales = append(message.Locales, change)
	}

	message.Title = fmt.Sprintf("Locale drift in %d of %d locale(s)", len(message.Locales), len(result.Pairs))
	message.Summary = fmt.Sprintf("%d difference(s) against reference %q in %s",
		summary.Total, result.Reference, result.Directory)
	return message
}

// TestMessage is sent by 'alert test' to verify channel settings
func TestMessage(project string) *Message {
	return &Message{
		ID:         uuid.NewString(),
		Title:      "LocaleDrift test alert",
		Summary:    "This is a test message to verify the alert channel is configured correctly.",
		Project:    project,
		Reference:  "en",
		Total:      1,
		DetectedAt: time.Now(),
		Test:       true,
		Locales: []LocaleChange{
			{Locale: "test", File: "locales/test.json", Missing: 1, Paths: []string{"test.greeting missing in second file"}},
		},
	}
}

// Notifier fans messages out to every enabled channel
type Notifier struct {
	channels []Channel
	logger   *logging.Logger
}

// New creates a notifier from configuration. Disabled channels are skipped.
func New(cfg config.AlertingConfig, logger *logging.Logger) (*Notifier, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	n := &Notifier{logger: logger.WithComponent("alerting")}

	client := &http.Client{Timeout: defaultTimeout}
	for _, channelConfig := range cfg.Channels {
		if !channelConfig.Enabled {
			continue
		}

		var channel Channel
		var err error

		switch channelConfig.Type {
		case "slack":
			channel, err = NewSlackChannel(channelConfig, client)
		case "webhook":
			channel, err = NewWebhookChannel(channelConfig, client)
		default:
			return nil, fmt.Errorf("unsupported alert channel type: %s", channelConfig.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create %s channel '%s': %w",
				channelConfig.Type, channelConfig.Name, err)
		}

		n.channels = append(n.channels, channel)
	}

	return n, nil
}

// Channels returns the enabled channels in configuration order
func (n *Notifier) Channels() []Channel {
	return n.channels
}

// Notify sends message to every channel. A failing channel does not stop
// the others; all failures are returned together.
func (n *Notifier) Notify(ctx context.Context, message *Message) error {
	var errs []error
	for _, channel := range n.channels {
		if err := n.send(ctx, channel, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NotifyChannel sends message to the named channel only
func (n *Notifier) NotifyChannel(ctx context.Context, name string, message *Message) error {
	for _, channel := range n.channels {
		if channel.Name() == name {
			return n.send(ctx, channel, message)
		}
	}
	return fmt.Errorf("alert channel %q is not configured or not enabled", name)
}

func (n *Notifier) send(ctx context.Context, channel Channel, message *Message) error {
	start := time.Now()
	if err := channel.Send(ctx, message); err != nil {
		n.logger.LogError(ctx, err, "Failed to send alert",
			"channel", channel.Name(),
			"type", channel.Type())
		return fmt.Errorf("channel %s: %w", channel.Name(), err)
	}

	n.logger.Info("Alert sent",
		"channel", channel.Name(),
		"type", channel.Type(),
		"locales", len(message.Locales),
		"duration", time.Since(start))
	return nil
}

// userAgent is set on every outgoing request
func userAgent() string {
	return fmt.Sprintf("%s/%s", Source, version.Version)
}
