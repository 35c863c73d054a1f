package config

import "time"

// StorageConfig defines where the catalog snapshot lives
type StorageConfig struct {
	Backend          string `json:"backend,omitempty" yaml:"backend,omitempty" toml:"backend,omitempty" validate:"storagebackend"`
	Path             string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty" validate:"required"`
	CompressionCodec string `json:"compression_codec,omitempty" yaml:"compression_codec,omitempty" toml:"compression_codec,omitempty" validate:"omitempty,codec"`
	WriteTimeoutSecs int    `json:"write_timeout_secs,omitempty" yaml:"write_timeout_secs,omitempty" toml:"write_timeout_secs,omitempty" validate:"min=1"`
	LockFile         bool   `json:"lock_file" yaml:"lock_file" toml:"lock_file"`
}

// NewDefaultStorageConfig creates default storage configuration
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		Backend:          DefaultStorageBackend,
		Path:             DefaultStoragePath,
		CompressionCodec: DefaultStorageCompressionCodec,
		WriteTimeoutSecs: DefaultStorageWriteTimeoutSecs,
		LockFile:         DefaultStorageLockFile,
	}
}

// WriteTimeout returns the snapshot write timeout as a duration.
func (sc StorageConfig) WriteTimeout() time.Duration {
	return time.Duration(sc.WriteTimeoutSecs) * time.Second
}
