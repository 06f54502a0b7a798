package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/k0ns0l/localedrift/internal/config"
	"github.com/k0ns0l/localedrift/internal/version"
)

// WebhookChannel posts the message as JSON to an arbitrary endpoint
type WebhookChannel struct {
	name    string
	url     string
	method  string
	headers map[string]string
	client  *http.Client
}

// WebhookPayload represents the payload sent to webhook endpoints
type WebhookPayload struct {
	Alert     *Message  `json:"alert"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
	Channel   string    `json:"channel"`
}

// NewWebhookChannel creates a webhook channel. Settings: url (required),
// method (default POST) and headers.
func NewWebhookChannel(channelConfig config.AlertChannelConfig, client *http.Client) (*WebhookChannel, error) {
	settings := channelConfig.Settings

	url, ok := settings["url"].(string)
	if !ok || url == "" {
		return nil, fmt.Errorf("url is required for webhook channel")
	}

	channel := &WebhookChannel{
		name:    channelConfig.Name,
		url:     url,
		method:  http.MethodPost,
		headers: make(map[string]string),
		client:  client,
	}

	if method, ok := settings["method"].(string); ok && method != "" {
		channel.method = strings.ToUpper(method)
	}

	if headers, ok := settings["headers"].(map[string]interface{}); ok {
		for key, value := range headers {
			if str, ok := value.(string); ok {
				channel.headers[key] = str
			}
		}
	}

	return channel, nil
}

// Send posts the message to the webhook endpoint
func (wc *WebhookChannel) Send(ctx context.Context, message *Message) error {
	payload := &WebhookPayload{
		Alert:     message,
		Timestamp: time.Now(),
		Source:    Source,
		Version:   version.Version,
		Channel:   wc.name,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, wc.method, wc.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent())
	for key, value := range wc.headers {
		req.Header.Set(key, value)
	}

	return do(wc.client, req)
}

// Type returns the channel type
func (wc *WebhookChannel) Type() string {
	return "webhook"
}

// Name returns the channel name
func (wc *WebhookChannel) Name() string {
	return wc.name
}

// do sends req and treats any non-2xx status as a failure
func do(client *http.Client, req *http.Request) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s request: %w", req.Method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
