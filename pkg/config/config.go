// Package config provides configuration loading and management for
// tedeval. It handles loading configuration from YAML files and provides
// default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"tedeval/pkg/volume"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Evaluation parameters
	Evaluation struct {
		// DistanceThreshold is the maximum allowed distance for a
		// boundary shift, in physical units
		DistanceThreshold float64 `yaml:"distanceThreshold"`

		// VoxelSize is the physical size of one voxel per axis
		VoxelSize volume.VoxelSize `yaml:"voxelSize"`

		// NumWorkers specifies how many workers the tolerance analysis
		// may use
		NumWorkers int `yaml:"numWorkers"`

		// ComputeCorrected enables the corrected reconstruction and the
		// error-location masks
		ComputeCorrected bool `yaml:"computeCorrected"`

		// HaveBackground enables false-positive/false-negative masks
		// for the background labels below
		HaveBackground           bool    `yaml:"haveBackground"`
		GroundTruthBackground    float64 `yaml:"groundTruthBackground"`
		ReconstructionBackground float64 `yaml:"reconstructionBackground"`
	} `yaml:"evaluation"`

	// Solver parameters
	Solver struct {
		// MaxNodes caps the branch-and-bound search
		MaxNodes int `yaml:"maxNodes"`
	} `yaml:"solver"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`

		// ReportPath is where the YAML report is written; empty
		// disables the report file
		ReportPath string `yaml:"reportPath"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Evaluation.DistanceThreshold = 100
	cfg.Evaluation.VoxelSize = volume.DefaultVoxelSize()
	cfg.Evaluation.NumWorkers = runtime.NumCPU()
	cfg.Evaluation.ComputeCorrected = false

	cfg.Solver.MaxNodes = 200000

	cfg.Output.Verbose = false
	cfg.Output.ReportPath = ""

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the
// specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
