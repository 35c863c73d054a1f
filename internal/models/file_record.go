package models

import (
	"time"
)

// UnknownOrigin is stored when the descriptor carried no initiator.
const UnknownOrigin = "Unknown Origin"

// UnknownSize is displayed when no content length was declared.
const UnknownSize = "Unknown"

// FileRecord is one discovered 3D-model resource. The URL is its identity
// within the catalog; a record is never modified after insertion.
type FileRecord struct {
	URL          string    `json:"url"`
	Format       FormatTag `json:"format"`
	Origin       string    `json:"origin"`
	SizeBytes    *int64    `json:"size_bytes,omitempty"`
	Size         string    `json:"size"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// Event converts the record into the payload published to consumers.
func (r FileRecord) Event() DiscoveryEvent {
	return DiscoveryEvent{
		URL:           r.URL,
		Format:        r.Format,
		Origin:        r.Origin,
		SizeFormatted: r.Size,
		DiscoveredAt:  r.DiscoveredAt,
	}
}

// DiscoveryEvent is emitted once per newly catalogued URL.
type DiscoveryEvent struct {
	URL           string    `json:"url"`
	Format        FormatTag `json:"format"`
	Origin        string    `json:"origin"`
	SizeFormatted string    `json:"size_formatted"`
	DiscoveredAt  time.Time `json:"discovered_at"`
}
