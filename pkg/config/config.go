// Package config provides configuration loading and management for brkraw.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Conversion parameters
	Convert struct {
		// SubjectType overrides the metadata-recorded subject type
		// (Biped, Quadruped, Phantom); empty keeps the recorded value
		SubjectType string `yaml:"subjectType"`

		// SubjectPosition overrides the recorded subject position, e.g.
		// Head_Supine; empty keeps the recorded value
		SubjectPosition string `yaml:"subjectPosition"`

		// ApplyScale controls whether the CLI rescales decoded values with
		// the recorded slope/offset pair when printing statistics
		ApplyScale bool `yaml:"applyScale"`
	} `yaml:"convert"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`

		// ShowWarns prints the accumulated extraction warnings per scan
		ShowWarns bool `yaml:"showWarns"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Convert.SubjectType = ""
	cfg.Convert.SubjectPosition = ""
	cfg.Convert.ApplyScale = true

	cfg.Output.Verbose = false
	cfg.Output.ShowWarns = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
