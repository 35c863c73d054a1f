package notifier

import "time"

// Discord formatting constants
const (
	DiscordUsername   = "meshhound"
	DefaultEmbedColor = 0x2B2D31
	DetectEmbedColor  = 0x6F42C1
)

// Discovery alert text
const (
	DiscoveryTitle         = "3D File Detected!"
	discoveryMessageFormat = "Found a %s file."
)

const (
	defaultSendTimeout  = 15 * time.Second
	maxEmbedFieldLength = 1024
)
