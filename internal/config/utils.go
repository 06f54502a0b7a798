package config

import (
	"fmt"
	"os"

	"github.com/k0ns0l/localedrift/internal/security"
	"gopkg.in/yaml.v3"
)

// SaveConfig saves the configuration to a YAML file
func SaveConfig(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := security.SafeWriteFile(filename, data); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file
func CreateDefaultConfigFile(filename string) error {
	return SaveConfig(DefaultConfig(), filename)
}

// GetConfigFilePath returns the path to the configuration file
func GetConfigFilePath(configFile string) string {
	if configFile != "" {
		return configFile
	}
	return DefaultConfigFile
}

// ConfigExists checks if a configuration file exists
func ConfigExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
