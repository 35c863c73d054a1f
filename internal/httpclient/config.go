package httpclient

import (
	"time"

	"github.com/aleister1102/meshhound/internal/config"
)

// HTTPClientConfig holds configuration for HTTP clients
type HTTPClientConfig struct {
	Timeout               time.Duration     // Request timeout
	InsecureSkipVerify    bool              // Skip TLS verification
	FollowRedirects       bool              // Whether to follow redirects
	MaxRedirects          int               // Maximum number of redirects to follow
	Proxy                 string            // Proxy URL (HTTP/SOCKS)
	UserAgent             string            // User-Agent sent with every request
	CustomHeaders         map[string]string // Headers added to all requests
	MaxContentSize        int64             // Body read cap in bytes, 0 for no limit
	MaxIdleConns          int               // Maximum idle connections
	MaxIdleConnsPerHost   int               // Maximum idle connections per host
	MaxConnsPerHost       int               // Maximum connections per host
	IdleConnTimeout       time.Duration     // Idle connection timeout
	TLSHandshakeTimeout   time.Duration     // TLS handshake timeout
	ExpectContinueTimeout time.Duration     // Expect 100-continue timeout
	DialTimeout           time.Duration     // Connection dial timeout
	KeepAlive             time.Duration     // Keep-alive duration
	EnableHTTP2           bool              // Enable HTTP/2 support
	Retry                 RetryHandlerConfig
}

// DefaultHTTPClientConfig returns the default HTTP client configuration
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:               15 * time.Second,
		FollowRedirects:       true,
		MaxRedirects:          10,
		UserAgent:             config.DefaultUserAgent,
		MaxContentSize:        10 * 1024 * 1024,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		DialTimeout:           10 * time.Second,
		KeepAlive:             30 * time.Second,
		EnableHTTP2:           true,
		CustomHeaders: map[string]string{
			"Accept":          "*/*",
			"Accept-Language": "en-US,en;q=0.9",
		},
	}
}

// FromAppConfig maps the http_client_config section onto a client config.
func FromAppConfig(cfg config.HTTPClientConfig) HTTPClientConfig {
	c := DefaultHTTPClientConfig()
	if cfg.TimeoutSecs > 0 {
		c.Timeout = time.Duration(cfg.TimeoutSecs) * time.Second
	}
	c.InsecureSkipVerify = cfg.InsecureSkipVerify
	c.FollowRedirects = cfg.FollowRedirects
	c.MaxRedirects = cfg.MaxRedirects
	c.Proxy = cfg.Proxy
	c.EnableHTTP2 = cfg.EnableHTTP2
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	for _, header := range cfg.CustomHeaders {
		if key, value, ok := splitHeader(header); ok {
			c.CustomHeaders[key] = value
		}
	}
	c.Retry = RetryHandlerConfig{
		MaxRetries:       cfg.MaxRetries,
		BaseDelay:        time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond,
		MaxDelay:         time.Duration(cfg.RetryMaxDelayMs) * time.Millisecond,
		EnableJitter:     true,
		RetryStatusCodes: append([]int(nil), cfg.RetryStatusCodes...),
	}
	return c
}
