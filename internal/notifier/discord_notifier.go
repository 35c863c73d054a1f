package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/aleister1102/meshhound/internal/httpclient"
	"github.com/aleister1102/meshhound/internal/models"
	"github.com/rs/zerolog"
)

// DiscordNotifier posts alerts to a Discord webhook as a single embed.
type DiscordNotifier struct {
	webhookURL string
	username   string
	client     *httpclient.HTTPClient
	now        func() time.Time
	logger     zerolog.Logger
}

// NewDiscordNotifier validates the webhook URL up front.
func NewDiscordNotifier(webhookURL, username string, client *httpclient.HTTPClient, logger zerolog.Logger) (*DiscordNotifier, error) {
	if _, err := url.ParseRequestURI(webhookURL); err != nil {
		return nil, fmt.Errorf("invalid DiscordWebhookURL: %w", err)
	}
	if client == nil {
		c, err := httpclient.NewHTTPClientBuilder(logger).WithTimeout(20 * time.Second).Build()
		if err != nil {
			return nil, err
		}
		client = c
	}
	if username == "" {
		username = DiscordUsername
	}
	return &DiscordNotifier{
		webhookURL: webhookURL,
		username:   username,
		client:     client,
		now:        time.Now,
		logger:     logger.With().Str("component", "DiscordNotifier").Logger(),
	}, nil
}

// BuildPayload renders a notification as a webhook payload.
func (dn *DiscordNotifier) BuildPayload(n models.Notification) models.DiscordMessagePayload {
	embed := NewDiscordEmbedBuilder().
		WithTitle(n.Title).
		WithDescription(n.Message).
		WithColor(DetectEmbedColor).
		WithTimestamp(dn.now()).
		WithFooter(dn.username).
		AddField("URL", n.URL, false).
		Build()

	return models.DiscordMessagePayload{
		Username: dn.username,
		Embeds:   []models.DiscordEmbed{embed},
	}
}

// Notify sends the alert. Non-2xx responses are errors.
func (dn *DiscordNotifier) Notify(ctx context.Context, n models.Notification) error {
	body, err := json.Marshal(dn.BuildPayload(n))
	if err != nil {
		return fmt.Errorf("failed to marshal discord payload: %w", err)
	}

	resp, err := dn.client.Do(&httpclient.HTTPRequest{
		URL:     dn.webhookURL,
		Method:  http.MethodPost,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    bytes.NewReader(body),
		Context: ctx,
	})
	if err != nil {
		return fmt.Errorf("failed to send discord notification: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		dn.logger.Error().Int("status_code", resp.StatusCode).Str("response_body", string(resp.Body)).Msg("Discord notification failed")
		return fmt.Errorf("discord notification failed with status %d", resp.StatusCode)
	}

	dn.logger.Debug().Int("status_code", resp.StatusCode).Str("title", n.Title).Msg("Discord notification sent")
	return nil
}
