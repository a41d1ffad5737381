package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"mcpforge/pkg/logging"
)

const (
	userConfigDir  = ".config/mcpforge"
	configFileName = "config.yaml"
)

// GetDefaultConfigPathOrPanic returns the per-user configuration directory.
func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}
	return filepath.Join(homeDir, userConfigDir)
}

// GetDefaultConfig returns the built-in defaults.
func GetDefaultConfig() ForgeConfig {
	return ForgeConfig{
		DataDir: filepath.Join(GetDefaultConfigPathOrPanic(), "data"),
		Gateway: GatewayConfig{
			Port:      8090,
			Host:      "localhost",
			Transport: TransportStreamableHTTP,
		},
		Assistant: AssistantConfig{
			Timeout: 30 * time.Second,
		},
		Timeouts: TimeoutConfig{
			Assemble: time.Minute,
			Config:   30 * time.Second,
			Deploy:   10 * time.Minute,
		},
	}
}

// LoadConfig loads configuration from the specified directory. A missing
// config.yaml is not an error; defaults apply. Fields absent from the
// file keep their default values.
func LoadConfig(configPath string) (ForgeConfig, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		return ForgeConfig{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return ForgeConfig{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}

	applyDefaults(&config)
	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}

// applyDefaults fills zero values left by a partial config file.
func applyDefaults(config *ForgeConfig) {
	defaults := GetDefaultConfig()
	if config.DataDir == "" {
		config.DataDir = defaults.DataDir
	}
	if config.Gateway.Port == 0 {
		config.Gateway.Port = defaults.Gateway.Port
	}
	if config.Gateway.Host == "" {
		config.Gateway.Host = defaults.Gateway.Host
	}
	if config.Gateway.Transport == "" {
		config.Gateway.Transport = defaults.Gateway.Transport
	}
	if config.Assistant.Timeout == 0 {
		config.Assistant.Timeout = defaults.Assistant.Timeout
	}
	if config.Timeouts.Assemble == 0 {
		config.Timeouts.Assemble = defaults.Timeouts.Assemble
	}
	if config.Timeouts.Config == 0 {
		config.Timeouts.Config = defaults.Timeouts.Config
	}
	if config.Timeouts.Deploy == 0 {
		config.Timeouts.Deploy = defaults.Timeouts.Deploy
	}
}
