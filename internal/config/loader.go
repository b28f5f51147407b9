package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (CODESIFT_*)
// 2. Config file (.codesift/config.yml or .codesift/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".codesift")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("CODESIFT")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., CODESIFT_ENGINE_REGION_WORKERS)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("engine.region_workers")
	v.BindEnv("engine.parse_timeout_ms")
	v.BindEnv("engine.detect_top_k")
	v.BindEnv("engine.cache_capacity")

	v.BindEnv("scoring.ast_base")
	v.BindEnv("scoring.fallback_base")
	v.BindEnv("scoring.fallback_ceiling")
	v.BindEnv("scoring.unknown_ceiling")

	v.BindEnv("ingest.max_file_size_kb")
	v.BindEnv("ingest.file_workers")
	v.BindEnv("ingest.batch_timeout_s")

	v.BindEnv("storage.path")
	v.BindEnv("search.index_path")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("engine.region_workers", defaults.Engine.RegionWorkers)
	v.SetDefault("engine.parse_timeout_ms", defaults.Engine.ParseTimeoutMS)
	v.SetDefault("engine.detect_top_k", defaults.Engine.DetectTopK)
	v.SetDefault("engine.cache_capacity", defaults.Engine.CacheCapacity)

	v.SetDefault("scoring.ast_base", defaults.Scoring.ASTBase)
	v.SetDefault("scoring.fallback_base", defaults.Scoring.FallbackBase)
	v.SetDefault("scoring.fallback_ceiling", defaults.Scoring.FallbackCeiling)
	v.SetDefault("scoring.ast_bonus_max", defaults.Scoring.ASTBonusMax)
	v.SetDefault("scoring.fallback_bonus_max", defaults.Scoring.FallbackBonusMax)
	v.SetDefault("scoring.short_region_lines", defaults.Scoring.ShortRegionLines)
	v.SetDefault("scoring.short_region_penalty", defaults.Scoring.ShortRegionPenalty)
	v.SetDefault("scoring.large_region_fraction", defaults.Scoring.LargeRegionFraction)
	v.SetDefault("scoring.large_region_penalty", defaults.Scoring.LargeRegionPenalty)
	v.SetDefault("scoring.unknown_ceiling", defaults.Scoring.UnknownCeiling)

	v.SetDefault("segmenter.min_block_lines", defaults.Segmenter.MinBlockLines)
	v.SetDefault("segmenter.density_window", defaults.Segmenter.DensityWindow)
	v.SetDefault("segmenter.density_threshold", defaults.Segmenter.DensityThreshold)

	v.SetDefault("filter.min_lines", defaults.Filter.MinLines)
	v.SetDefault("filter.min_chars", defaults.Filter.MinChars)
	v.SetDefault("filter.min_confidence", defaults.Filter.MinConfidence)
	v.SetDefault("filter.prose_ratio", defaults.Filter.ProseRatio)

	v.SetDefault("ingest.ignore", defaults.Ingest.Ignore)
	v.SetDefault("ingest.max_file_size_kb", defaults.Ingest.MaxFileSizeKB)
	v.SetDefault("ingest.file_workers", defaults.Ingest.FileWorkers)
	v.SetDefault("ingest.batch_timeout_s", defaults.Ingest.BatchTimeoutS)

	v.SetDefault("storage.path", defaults.Storage.Path)
	v.SetDefault("search.index_path", defaults.Search.IndexPath)
}

// LoadConfig is a convenience function that creates a loader and loads
// config from the current working directory.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}

// LoadConfigFile loads configuration from an explicit file path, still
// applying defaults and CODESIFT_* environment overrides.
func LoadConfigFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("CODESIFT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
