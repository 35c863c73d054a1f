package config

// ProbeConfig configures the httpx probe feed
type ProbeConfig struct {
	Threads         int    `json:"threads,omitempty" yaml:"threads,omitempty" toml:"threads,omitempty" validate:"min=1"`
	TimeoutSecs     int    `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" toml:"timeout_secs,omitempty" validate:"min=1"`
	Retries         int    `json:"retries,omitempty" yaml:"retries,omitempty" toml:"retries,omitempty" validate:"min=0"`
	Method          string `json:"method,omitempty" yaml:"method,omitempty" toml:"method,omitempty" validate:"omitempty,oneof=GET HEAD"`
	FollowRedirects bool   `json:"follow_redirects" yaml:"follow_redirects" toml:"follow_redirects"`
	Proxy           string `json:"proxy,omitempty" yaml:"proxy,omitempty" toml:"proxy,omitempty" validate:"omitempty,url"`
}

// NewDefaultProbeConfig creates default probe configuration
func NewDefaultProbeConfig() ProbeConfig {
	return ProbeConfig{
		Threads:         DefaultProbeThreads,
		TimeoutSecs:     DefaultProbeTimeoutSecs,
		Retries:         DefaultProbeRetries,
		Method:          DefaultProbeMethod,
		FollowRedirects: true,
	}
}
