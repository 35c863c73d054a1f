package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aleister1102/meshhound/internal/common"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// maxConfigFileSize caps how much of a config file is read.
const maxConfigFileSize = 10 * 1024 * 1024

// GlobalConfig is the root of the meshhound configuration file.
type GlobalConfig struct {
	LogConfig           LogConfig           `json:"log_config,omitempty" yaml:"log_config,omitempty" toml:"log_config,omitempty"`
	DetectionConfig     DetectionConfig     `json:"detection_config,omitempty" yaml:"detection_config,omitempty" toml:"detection_config,omitempty"`
	NotificationConfig  NotificationConfig  `json:"notification_config,omitempty" yaml:"notification_config,omitempty" toml:"notification_config,omitempty"`
	StorageConfig       StorageConfig       `json:"storage_config,omitempty" yaml:"storage_config,omitempty" toml:"storage_config,omitempty"`
	HTTPClientConfig    HTTPClientConfig    `json:"http_client_config,omitempty" yaml:"http_client_config,omitempty" toml:"http_client_config,omitempty"`
	CrawlerConfig       CrawlerConfig       `json:"crawler_config,omitempty" yaml:"crawler_config,omitempty" toml:"crawler_config,omitempty"`
	BrowserConfig       BrowserConfig       `json:"browser_config,omitempty" yaml:"browser_config,omitempty" toml:"browser_config,omitempty"`
	ProbeConfig         ProbeConfig         `json:"probe_config,omitempty" yaml:"probe_config,omitempty" toml:"probe_config,omitempty"`
	ResourceGuardConfig ResourceGuardConfig `json:"resource_guard_config,omitempty" yaml:"resource_guard_config,omitempty" toml:"resource_guard_config,omitempty"`
}

func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		LogConfig:           NewDefaultLogConfig(),
		DetectionConfig:     NewDefaultDetectionConfig(),
		NotificationConfig:  NewDefaultNotificationConfig(),
		StorageConfig:       NewDefaultStorageConfig(),
		HTTPClientConfig:    NewDefaultHTTPClientConfig(),
		CrawlerConfig:       NewDefaultCrawlerConfig(),
		BrowserConfig:       NewDefaultBrowserConfig(),
		ProbeConfig:         NewDefaultProbeConfig(),
		ResourceGuardConfig: NewDefaultResourceGuardConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// Values missing from the file keep their defaults. The format is chosen by
// file extension: .yaml/.yml, .toml, anything else is parsed as JSON.
func LoadGlobalConfig(providedPath string) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	if providedPath != "" && !fileExists(providedPath) {
		return nil, common.NewValidationError("config_file", providedPath, "config file does not exist")
	}

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		return cfg, nil
	}

	data, err := readConfigFile(filePath)
	if err != nil {
		return nil, common.WrapError(err, "failed to load config file content")
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, common.WrapError(err, "failed to parse config content")
	}

	return cfg, nil
}

func readConfigFile(filePath string) ([]byte, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxConfigFileSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", filePath, maxConfigFileSize)
	}
	return data, nil
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return common.WrapErrorf(err, "failed to parse YAML config file %s", filePath)
		}
	case ".toml":
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(cfg); err != nil {
			return common.WrapErrorf(err, "failed to parse TOML config file %s", filePath)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return common.WrapErrorf(err, "failed to parse JSON config file %s", filePath)
		}
	}
	return nil
}
