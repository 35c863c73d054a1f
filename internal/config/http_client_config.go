package config

// HTTPClientConfig configures the client used for prefix fetches
type HTTPClientConfig struct {
	TimeoutSecs        int      `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" toml:"timeout_secs,omitempty" validate:"min=1"`
	InsecureSkipVerify bool     `json:"insecure_skip_verify" yaml:"insecure_skip_verify" toml:"insecure_skip_verify"`
	FollowRedirects    bool     `json:"follow_redirects" yaml:"follow_redirects" toml:"follow_redirects"`
	MaxRedirects       int      `json:"max_redirects,omitempty" yaml:"max_redirects,omitempty" toml:"max_redirects,omitempty" validate:"min=0"`
	UserAgent          string   `json:"user_agent,omitempty" yaml:"user_agent,omitempty" toml:"user_agent,omitempty"`
	Proxy              string   `json:"proxy,omitempty" yaml:"proxy,omitempty" toml:"proxy,omitempty" validate:"omitempty,url"`
	EnableHTTP2        bool     `json:"enable_http2" yaml:"enable_http2" toml:"enable_http2"`
	MaxRetries         int      `json:"max_retries,omitempty" yaml:"max_retries,omitempty" toml:"max_retries,omitempty" validate:"min=0,max=10"`
	RetryBaseDelayMs   int      `json:"retry_base_delay_ms,omitempty" yaml:"retry_base_delay_ms,omitempty" toml:"retry_base_delay_ms,omitempty" validate:"min=0"`
	RetryMaxDelayMs    int      `json:"retry_max_delay_ms,omitempty" yaml:"retry_max_delay_ms,omitempty" toml:"retry_max_delay_ms,omitempty" validate:"min=0"`
	RetryStatusCodes   []int    `json:"retry_status_codes,omitempty" yaml:"retry_status_codes,omitempty" toml:"retry_status_codes,omitempty" validate:"dive,min=100,max=599"`
	CustomHeaders      []string `json:"custom_headers,omitempty" yaml:"custom_headers,omitempty" toml:"custom_headers,omitempty"`
}

// NewDefaultHTTPClientConfig creates default HTTP client configuration
func NewDefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		TimeoutSecs:        DefaultHTTPTimeoutSecs,
		InsecureSkipVerify: false,
		FollowRedirects:    DefaultHTTPFollowRedirects,
		MaxRedirects:       DefaultHTTPMaxRedirects,
		UserAgent:          DefaultUserAgent,
		EnableHTTP2:        DefaultHTTPEnableHTTP2,
		MaxRetries:         DefaultHTTPMaxRetries,
		RetryBaseDelayMs:   DefaultHTTPRetryBaseDelayMs,
		RetryMaxDelayMs:    DefaultHTTPRetryMaxDelayMs,
		RetryStatusCodes:   append([]int(nil), DefaultRetryStatusCodes...),
	}
}
