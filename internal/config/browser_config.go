package config

// BrowserConfig configures the headless browser feed
type BrowserConfig struct {
	ChromePath          string `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty" toml:"chrome_path,omitempty"`
	UserDataDir         string `json:"user_data_dir,omitempty" yaml:"user_data_dir,omitempty" toml:"user_data_dir,omitempty"`
	Headless            bool   `json:"headless" yaml:"headless" toml:"headless"`
	PageLoadTimeoutSecs int    `json:"page_load_timeout_secs,omitempty" yaml:"page_load_timeout_secs,omitempty" toml:"page_load_timeout_secs,omitempty" validate:"min=1"`
	WaitAfterLoadMs     int    `json:"wait_after_load_ms,omitempty" yaml:"wait_after_load_ms,omitempty" toml:"wait_after_load_ms,omitempty" validate:"min=0"`
}

// NewDefaultBrowserConfig creates default browser configuration
func NewDefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless:            DefaultBrowserHeadless,
		PageLoadTimeoutSecs: DefaultBrowserPageLoadTimeoutSecs,
		WaitAfterLoadMs:     DefaultBrowserWaitAfterLoadMs,
	}
}
