package config

import (
	"os"
	"strconv"

	"designspace/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `validate:"required"`
	Paths     PathConfig      `validate:"required"`
	Composite CompositeConfig `validate:"required"`
	Roster    RosterConfig
	LogLevel  string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `validate:"required,numeric"`
	GinMode string `validate:"oneof=debug release test"`
}

// PathConfig holds file system paths
type PathConfig struct {
	DesignFile      string
	OutputDir       string `validate:"required"`
	ExportInput     string `validate:"required"`
	ExportOutputDir string `validate:"required"`
	FacesInputDir   string `validate:"required"`
	FacesOutputDir  string `validate:"required"`
}

// CompositeConfig holds image compositing settings
type CompositeConfig struct {
	Workers int `validate:"gt=0,lte=64"`
}

// RosterConfig holds stimulus roster settings
type RosterConfig struct {
	Seed   uint64
	Output string `validate:"required"`
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		Paths:     *loadPathConfig(),
		Composite: *loadCompositeConfig(),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	roster, err := loadRosterConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load roster configuration")
	}
	config.Roster = *roster

	if err := validateStruct(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadPathConfig() *PathConfig {
	return &PathConfig{
		DesignFile:      getEnvOrDefault("DESIGN_FILE", ""),
		OutputDir:       getEnvOrDefault("OUTPUT_DIR", "docs"),
		ExportInput:     getEnvOrDefault("EXPORT_INPUT", "data/firebase_export.json"),
		ExportOutputDir: getEnvOrDefault("EXPORT_OUTPUT_DIR", "data/csv_exports"),
		FacesInputDir:   getEnvOrDefault("FACES_INPUT_DIR", "stimuli/fg_faces"),
		FacesOutputDir:  getEnvOrDefault("FACES_OUTPUT_DIR", "stimuli/faces"),
	}
}

func loadCompositeConfig() *CompositeConfig {
	return &CompositeConfig{
		Workers: getEnvIntOrDefault("COMPOSITE_WORKERS", 4),
	}
}

func loadRosterConfig() (*RosterConfig, error) {
	seed := uint64(42)
	if v := os.Getenv("ROSTER_SEED"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, errors.ConfigInvalid("ROSTER_SEED must be a non-negative integer, got " + strconv.Quote(v))
		}
		seed = parsed
	}
	return &RosterConfig{
		Seed:   seed,
		Output: getEnvOrDefault("ROSTER_OUTPUT", "stimuli"),
	}, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
