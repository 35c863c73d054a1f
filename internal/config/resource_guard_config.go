package config

import "time"

// ResourceGuardConfig configures memory-based admission of deep scans
type ResourceGuardConfig struct {
	Enabled            bool    `json:"enabled" yaml:"enabled" toml:"enabled"`
	MaxMemoryPercent   float64 `json:"max_memory_percent,omitempty" yaml:"max_memory_percent,omitempty" toml:"max_memory_percent,omitempty" validate:"gt=0,lte=100"`
	MaxAllocMB         int64   `json:"max_alloc_mb,omitempty" yaml:"max_alloc_mb,omitempty" toml:"max_alloc_mb,omitempty" validate:"min=0"`
	SampleIntervalSecs int     `json:"sample_interval_secs,omitempty" yaml:"sample_interval_secs,omitempty" toml:"sample_interval_secs,omitempty" validate:"min=1"`
}

// NewDefaultResourceGuardConfig creates default resource guard configuration
func NewDefaultResourceGuardConfig() ResourceGuardConfig {
	return ResourceGuardConfig{
		Enabled:            DefaultResourceGuardEnabled,
		MaxMemoryPercent:   DefaultResourceGuardMaxMemoryPercent,
		SampleIntervalSecs: DefaultResourceGuardSampleIntervalSecs,
	}
}

// SampleInterval returns how long one memory sample is reused.
func (rc ResourceGuardConfig) SampleInterval() time.Duration {
	return time.Duration(rc.SampleIntervalSecs) * time.Second
}
