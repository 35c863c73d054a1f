package config

// CrawlerConfig configures the crawl feed
type CrawlerConfig struct {
	MaxDepth              int      `json:"max_depth,omitempty" yaml:"max_depth,omitempty" toml:"max_depth,omitempty" validate:"min=0"`
	MaxConcurrentRequests int      `json:"max_concurrent_requests,omitempty" yaml:"max_concurrent_requests,omitempty" toml:"max_concurrent_requests,omitempty" validate:"min=1"`
	RequestTimeoutSecs    int      `json:"request_timeout_secs,omitempty" yaml:"request_timeout_secs,omitempty" toml:"request_timeout_secs,omitempty" validate:"min=1"`
	MaxBodySizeMB         int      `json:"max_body_size_mb,omitempty" yaml:"max_body_size_mb,omitempty" toml:"max_body_size_mb,omitempty" validate:"min=1"`
	AllowedDomains        []string `json:"allowed_domains,omitempty" yaml:"allowed_domains,omitempty" toml:"allowed_domains,omitempty"`
	RespectRobotsTxt      bool     `json:"respect_robots_txt" yaml:"respect_robots_txt" toml:"respect_robots_txt"`
	ExtractJSLinks        bool     `json:"extract_js_links" yaml:"extract_js_links" toml:"extract_js_links"`
	UserAgent             string   `json:"user_agent,omitempty" yaml:"user_agent,omitempty" toml:"user_agent,omitempty"`
}

// NewDefaultCrawlerConfig creates default crawler configuration
func NewDefaultCrawlerConfig() CrawlerConfig {
	return CrawlerConfig{
		MaxDepth:              DefaultCrawlerMaxDepth,
		MaxConcurrentRequests: DefaultCrawlerMaxConcurrentRequests,
		RequestTimeoutSecs:    DefaultCrawlerRequestTimeoutSecs,
		MaxBodySizeMB:         DefaultCrawlerMaxBodySizeMB,
		AllowedDomains:        []string{},
		RespectRobotsTxt:      DefaultCrawlerRespectRobotsTxt,
		ExtractJSLinks:        DefaultCrawlerExtractJSLinks,
		UserAgent:             DefaultUserAgent,
	}
}
