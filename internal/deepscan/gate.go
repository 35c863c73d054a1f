package deepscan

import (
	"strings"
)

// DefaultMaxSizeBytes bounds the responses eligible for a prefix fetch.
const DefaultMaxSizeBytes int64 = 100 * 1024 * 1024

// DefaultGenericContentTypes are the declared types that say nothing about the
// payload and therefore justify sniffing it.
var DefaultGenericContentTypes = []string{
	"application/octet-stream",
	"application/binary",
	"application/x-unknown-content-type",
}

// Policy is the deep-scan section of the detection settings.
type Policy struct {
	Enabled             bool
	MaxSizeBytes        int64
	GenericContentTypes []string
}

// DefaultPolicy returns a disabled policy with the built-in bound and markers.
func DefaultPolicy() Policy {
	return Policy{
		Enabled:             false,
		MaxSizeBytes:        DefaultMaxSizeBytes,
		GenericContentTypes: append([]string(nil), DefaultGenericContentTypes...),
	}
}

// ShouldDeepScan reports whether a response qualifies for a prefix
// fetch-and-sniff. All three conditions must hold: the feature is enabled, the
// declared content type contains a generic marker, and the declared size is
// known, positive and within the bound.
func ShouldDeepScan(policy Policy, contentType string, sizeBytes *int64) bool {
	if !policy.Enabled {
		return false
	}
	if !IsGenericContentType(policy.GenericContentTypes, contentType) {
		return false
	}
	if sizeBytes == nil || *sizeBytes <= 0 {
		return false
	}
	maxSize := policy.MaxSizeBytes
	if maxSize <= 0 {
		maxSize = DefaultMaxSizeBytes
	}
	return *sizeBytes <= maxSize
}

// IsGenericContentType matches markers by containment so parameters such as
// "; charset=binary" do not defeat the check. An empty type never matches.
func IsGenericContentType(markers []string, contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if ct == "" {
		return false
	}
	if len(markers) == 0 {
		markers = DefaultGenericContentTypes
	}
	for _, marker := range markers {
		marker = strings.ToLower(strings.TrimSpace(marker))
		if marker != "" && strings.Contains(ct, marker) {
			return true
		}
	}
	return false
}
