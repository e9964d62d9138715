package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"wbdeps/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/wbdeps"
	configFileName = "config.yaml"
)

// GetDefaultConfigPath returns ~/.config/wbdeps.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}

	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig loads config.yaml from configPath over the defaults. A missing
// file is not an error. Parse and validation failures are returned as
// ConfigurationError.
func LoadConfig(configPath string) (Config, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		return Config{}, NewConfigurationError(configFilePath, "io", "failed to read configuration", err.Error())
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, NewConfigurationError(configFilePath, "parse", "configuration is not valid YAML", err.Error())
	}

	if err := config.Validate(); err != nil {
		return Config{}, NewConfigurationError(configFilePath, "validation", "configuration is invalid", err.Error())
	}

	logging.Debug("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}
