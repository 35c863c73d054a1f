package models

import (
	"context"
)

// PrefixFunc fetches at most limit leading bytes of the described resource.
type PrefixFunc func(ctx context.Context, limit int) ([]byte, error)

// ResponseDescriptor describes one observed HTTP response. Only the URL is
// required; absent headers are represented by empty strings and nil pointers.
type ResponseDescriptor struct {
	URL           string `json:"url"`
	Origin        string `json:"origin,omitempty"`
	ContentLength *int64 `json:"content_length,omitempty"`
	ContentType   string `json:"content_type,omitempty"`
	// ResourceType mirrors the browser request type (main_frame, sub_frame,
	// xmlhttprequest, other, ...). Empty means the feed does not know.
	ResourceType string `json:"resource_type,omitempty"`

	// FetchPrefix is the feed's own range-fetch capability. When nil the
	// pipeline falls back to its default fetcher.
	FetchPrefix PrefixFunc `json:"-"`
}

// Int64Ptr is a small helper for optional sizes.
func Int64Ptr(v int64) *int64 {
	return &v
}
