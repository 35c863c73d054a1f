package models

// Notification is a user-facing alert request.
type Notification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	// URL is attached by notifiers that can link to the resource.
	URL string `json:"url,omitempty"`
}

// DiscordMessagePayload represents the JSON payload sent to a Discord webhook.
type DiscordMessagePayload struct {
	Content   string         `json:"content,omitempty"`    // Message content (text)
	Username  string         `json:"username,omitempty"`   // Override the default webhook username
	AvatarURL string         `json:"avatar_url,omitempty"` // Override the default webhook avatar
	Embeds    []DiscordEmbed `json:"embeds,omitempty"`     // Array of embed objects
}

// DiscordEmbed represents a Discord embed object.
type DiscordEmbed struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	URL         string              `json:"url,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"` // ISO8601 timestamp
	Color       int                 `json:"color,omitempty"`
	Footer      *DiscordEmbedFooter `json:"footer,omitempty"`
	Fields      []DiscordEmbedField `json:"fields,omitempty"`
}

// DiscordEmbedFooter represents the footer of an embed.
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

// DiscordEmbedField represents a field in an embed.
type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}
