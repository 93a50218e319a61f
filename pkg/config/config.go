// Package config provides configuration loading and management for
// cellinspect. It handles loading configuration from YAML files and provides
// default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Inspection parameters
	Inspection struct {
		// HalfWindowSize controls the crop planner: the preferred crop
		// window is 2*halfWindowSize pixels per axis
		HalfWindowSize int `yaml:"halfWindowSize"`

		// LineWidth is the stroke width of boundary overlays in pixels
		LineWidth float64 `yaml:"lineWidth"`

		// CrosshairArm is the half-length of the representative-plane marker
		CrosshairArm float64 `yaml:"crosshairArm"`
	} `yaml:"inspection"`

	// Output parameters
	Output struct {
		// PlotFormat is the figure file format ("png" or "jpg")
		PlotFormat string `yaml:"plotFormat"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default inspection parameters
	cfg.Inspection.HalfWindowSize = 200
	cfg.Inspection.LineWidth = 3
	cfg.Inspection.CrosshairArm = 15

	// Set default output parameters
	cfg.Output.PlotFormat = "png"
	cfg.Output.Verbose = true

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
