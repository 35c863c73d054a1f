package notifier

import (
	"context"
	"fmt"
	"sync"

	"github.com/aleister1102/meshhound/internal/config"
	"github.com/aleister1102/meshhound/internal/httpclient"
	"github.com/aleister1102/meshhound/internal/models"
	"github.com/rs/zerolog"
)

// NotificationHelper turns discovery events into alerts and sends them in
// the background so the detection path never waits on delivery.
type NotificationHelper struct {
	notifier Notifier
	logger   zerolog.Logger
	wg       sync.WaitGroup
}

// NewNotificationHelper wraps an existing notifier.
func NewNotificationHelper(n Notifier, logger zerolog.Logger) *NotificationHelper {
	return &NotificationHelper{
		notifier: n,
		logger:   logger.With().Str("component", "NotificationHelper").Logger(),
	}
}

// NewNotificationHelperFromConfig picks Discord when a webhook is configured
// and the log otherwise.
func NewNotificationHelperFromConfig(cfg config.NotificationConfig, client *httpclient.HTTPClient, logger zerolog.Logger) (*NotificationHelper, error) {
	if cfg.DiscordWebhookURL == "" {
		return NewNotificationHelper(NewLogNotifier(logger), logger), nil
	}
	dn, err := NewDiscordNotifier(cfg.DiscordWebhookURL, cfg.Username, client, logger)
	if err != nil {
		return nil, err
	}
	return NewNotificationHelper(dn, logger), nil
}

// DiscoveryNotification builds the alert for a newly catalogued file.
func DiscoveryNotification(event models.DiscoveryEvent) models.Notification {
	return models.Notification{
		Title:   DiscoveryTitle,
		Message: fmt.Sprintf(discoveryMessageFormat, event.Format),
		URL:     event.URL,
	}
}

// NotifyDiscovery sends the discovery alert without blocking the caller.
// Delivery failures are logged and dropped.
func (nh *NotificationHelper) NotifyDiscovery(event models.DiscoveryEvent) {
	if nh == nil || nh.notifier == nil {
		return
	}
	n := DiscoveryNotification(event)

	nh.wg.Add(1)
	go func() {
		defer nh.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), defaultSendTimeout)
		defer cancel()
		if err := nh.notifier.Notify(ctx, n); err != nil {
			nh.logger.Warn().Err(err).Str("url", event.URL).Msg("Failed to deliver discovery notification")
		}
	}()
}

// Wait blocks until in-flight notifications finish or ctx ends.
func (nh *NotificationHelper) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		nh.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
