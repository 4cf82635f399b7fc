// Package config provides configuration loading and management for spineridge.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"spineridge/pkg/geodesic"
	"spineridge/pkg/medialness"
	"spineridge/pkg/pipeline"
	"spineridge/pkg/ridge"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Medialness controls depth smoothing and the speed-map exponent
	Medialness medialness.Options `yaml:"medialness"`

	// Geodesic controls endpoint relocation and backtracking
	Geodesic geodesic.Options `yaml:"geodesic"`

	// Ridge detection, thinning and vectorization parameters
	Ridge struct {
		// Detect controls Hessian curvature detection
		Detect ridge.DetectOptions `yaml:"detect"`

		// Thin controls non-maximum suppression and hysteresis
		Thin ridge.ThinOptions `yaml:"thin"`

		// SimplifyAmount is the Douglas-Peucker tolerance as a fraction of arc length
		SimplifyAmount float64 `yaml:"simplifyAmount"`

		// Points is the number of points each ridge curve is resampled to (0 = keep)
		Points int `yaml:"points"`
	} `yaml:"ridge"`

	// Output parameters
	Output struct {
		// SpinePoints is the number of points the spine is resampled to (0 = keep)
		SpinePoints int `yaml:"spinePoints"`

		// ZScale multiplies sampled depth when lifting the spine to 3D
		ZScale float64 `yaml:"zScale"`

		// HeatmapScale is the upscaling factor for saved heat-map images
		HeatmapScale float64 `yaml:"heatmapScale"`

		// Verbose enables debug-level logging
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	params := pipeline.DefaultParams()
	cfg := &Config{
		Medialness: params.Medialness,
		Geodesic:   params.Geodesic,
	}

	// Set default ridge parameters
	cfg.Ridge.Detect = params.Detect
	cfg.Ridge.Thin = params.Thin
	cfg.Ridge.SimplifyAmount = params.SimplifyAmount
	cfg.Ridge.Points = params.RidgePoints

	// Set default output parameters
	cfg.Output.SpinePoints = params.SpinePoints
	cfg.Output.ZScale = params.ZScale
	cfg.Output.HeatmapScale = 4
	cfg.Output.Verbose = false

	return cfg
}

// Params converts the configuration into pipeline parameters
func (c *Config) Params() pipeline.Params {
	return pipeline.Params{
		Medialness:     c.Medialness,
		Geodesic:       c.Geodesic,
		Detect:         c.Ridge.Detect,
		Thin:           c.Ridge.Thin,
		SimplifyAmount: c.Ridge.SimplifyAmount,
		SpinePoints:    c.Output.SpinePoints,
		RidgePoints:    c.Ridge.Points,
		ZScale:         c.Output.ZScale,
	}
}

// Validate rejects values no stage can run with
func (c *Config) Validate() error {
	if c.Medialness.SigmaDepth < 0 || c.Ridge.Detect.Sigma < 0 {
		return fmt.Errorf("smoothing sigmas must be non-negative")
	}
	if c.Geodesic.StepSize <= 0 {
		return fmt.Errorf("geodesic step size must be positive, got %v", c.Geodesic.StepSize)
	}
	if c.Output.SpinePoints < 0 || c.Ridge.Points < 0 {
		return fmt.Errorf("point counts must be non-negative")
	}
	switch c.Ridge.Thin.Skeletonize {
	case ridge.SkeletonNone, ridge.SkeletonZhangSuen:
	default:
		return fmt.Errorf("unknown skeletonize mode %q", c.Ridge.Thin.Skeletonize)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
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

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
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

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
