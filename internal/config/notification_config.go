package config

// NotificationConfig defines configuration for discovery alerts
type NotificationConfig struct {
	Enabled           bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	DiscordWebhookURL string `json:"discord_webhook_url,omitempty" yaml:"discord_webhook_url,omitempty" toml:"discord_webhook_url,omitempty" validate:"omitempty,url"`
	Username          string `json:"username,omitempty" yaml:"username,omitempty" toml:"username,omitempty"`
}

// NewDefaultNotificationConfig creates default notification configuration
func NewDefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		Enabled:           DefaultNotificationsEnabled,
		DiscordWebhookURL: "",
		Username:          DefaultNotificationUsername,
	}
}
