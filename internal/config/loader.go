package config

import (
	"os"
	"path/filepath"
)

// ConfigPathEnv names the environment variable consulted for a config path.
const ConfigPathEnv = "MESHHOUND_CONFIG_PATH"

var defaultConfigFiles = []string{"config.yaml", "config.yml", "config.json", "config.toml"}

// GetConfigPath determines the configuration file path.
// Priority:
// 1. --config command-line flag
// 2. MESHHOUND_CONFIG_PATH environment variable
// 3. config.{yaml,yml,json,toml} in the current working directory
// 4. config.{yaml,yml,json,toml} in the executable's directory
// An empty result means no config file was found and defaults apply.
func GetConfigPath(configFilePathFlag string) string {
	if configFilePathFlag != "" && fileExists(configFilePathFlag) {
		return configFilePathFlag
	}

	if envPath := os.Getenv(ConfigPathEnv); envPath != "" && fileExists(envPath) {
		return envPath
	}

	var locations []string
	cwd, errCwd := os.Getwd()
	if errCwd == nil {
		locations = append(locations, cwd)
	}
	if exePath, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exePath)
		if exeDir != "" && exeDir != cwd {
			locations = append(locations, exeDir)
		}
	}

	for _, loc := range locations {
		for _, file := range defaultConfigFiles {
			path := filepath.Join(loc, file)
			if fileExists(path) {
				return path
			}
		}
	}
	return ""
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
