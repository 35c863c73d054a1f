package config

import "time"

// DetectionConfig defines how responses are classified.
type DetectionConfig struct {
	DeepScanEnabled      bool              `json:"deep_scan_enabled" yaml:"deep_scan_enabled" toml:"deep_scan_enabled"`
	DeepScanMaxSizeBytes int64             `json:"deep_scan_max_size_bytes,omitempty" yaml:"deep_scan_max_size_bytes,omitempty" toml:"deep_scan_max_size_bytes,omitempty" validate:"min=1"`
	GenericContentTypes  []string          `json:"generic_content_types,omitempty" yaml:"generic_content_types,omitempty" toml:"generic_content_types,omitempty" validate:"dive,mimetype"`
	PrefixBytes          int               `json:"prefix_bytes,omitempty" yaml:"prefix_bytes,omitempty" toml:"prefix_bytes,omitempty" validate:"min=1,max=65536"`
	FetchTimeoutSecs     int               `json:"fetch_timeout_secs,omitempty" yaml:"fetch_timeout_secs,omitempty" toml:"fetch_timeout_secs,omitempty" validate:"min=1"`
	Workers              int               `json:"workers,omitempty" yaml:"workers,omitempty" toml:"workers,omitempty" validate:"min=1,max=1024"`
	ResourceTypes        []string          `json:"resource_types,omitempty" yaml:"resource_types,omitempty" toml:"resource_types,omitempty"`
	ExtraExtensions      map[string]string `json:"extra_extensions,omitempty" yaml:"extra_extensions,omitempty" toml:"extra_extensions,omitempty"`
}

// NewDefaultDetectionConfig creates default detection configuration
func NewDefaultDetectionConfig() DetectionConfig {
	return DetectionConfig{
		DeepScanEnabled:      DefaultDeepScanEnabled,
		DeepScanMaxSizeBytes: DefaultDeepScanMaxSizeBytes,
		GenericContentTypes:  append([]string(nil), DefaultGenericContentTypes...),
		PrefixBytes:          DefaultPrefixBytes,
		FetchTimeoutSecs:     DefaultFetchTimeoutSecs,
		Workers:              DefaultDetectionWorkers,
		ResourceTypes:        append([]string(nil), DefaultResourceTypes...),
		ExtraExtensions:      map[string]string{},
	}
}

// FetchTimeout returns the prefix fetch timeout as a duration.
func (dc DetectionConfig) FetchTimeout() time.Duration {
	return time.Duration(dc.FetchTimeoutSecs) * time.Second
}
