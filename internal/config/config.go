package config

// Config is the complete codesift configuration. It can be loaded from
// .codesift/config.yml with CODESIFT_* environment variable overrides.
type Config struct {
	Engine    EngineConfig    `yaml:"engine" mapstructure:"engine"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Segmenter SegmenterConfig `yaml:"segmenter" mapstructure:"segmenter"`
	Filter    FilterConfig    `yaml:"filter" mapstructure:"filter"`
	Ingest    IngestConfig    `yaml:"ingest" mapstructure:"ingest"`
	Storage   StorageConfig   `yaml:"storage" mapstructure:"storage"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
}

// EngineConfig bounds one extraction run.
type EngineConfig struct {
	RegionWorkers  int `yaml:"region_workers" mapstructure:"region_workers"`     // parallel region validations per run
	ParseTimeoutMS int `yaml:"parse_timeout_ms" mapstructure:"parse_timeout_ms"` // per-region grammar budget
	DetectTopK     int `yaml:"detect_top_k" mapstructure:"detect_top_k"`         // candidate languages tried for undeclared regions
	CacheCapacity  int `yaml:"cache_capacity" mapstructure:"cache_capacity"`     // parse report cache entries, 0 disables
}

// ScoringConfig holds the confidence weights. These are product-tuned
// parameters, not derived constants; validation only enforces the ordering
// invariants between them.
type ScoringConfig struct {
	ASTBase          float64 `yaml:"ast_base" mapstructure:"ast_base"`
	FallbackBase     float64 `yaml:"fallback_base" mapstructure:"fallback_base"`
	FallbackCeiling  float64 `yaml:"fallback_ceiling" mapstructure:"fallback_ceiling"`
	ASTBonusMax      float64 `yaml:"ast_bonus_max" mapstructure:"ast_bonus_max"`
	FallbackBonusMax float64 `yaml:"fallback_bonus_max" mapstructure:"fallback_bonus_max"`

	ShortRegionLines    int     `yaml:"short_region_lines" mapstructure:"short_region_lines"`
	ShortRegionPenalty  float64 `yaml:"short_region_penalty" mapstructure:"short_region_penalty"`
	LargeRegionFraction float64 `yaml:"large_region_fraction" mapstructure:"large_region_fraction"`
	LargeRegionPenalty  float64 `yaml:"large_region_penalty" mapstructure:"large_region_penalty"`

	UnknownCeiling float64 `yaml:"unknown_ceiling" mapstructure:"unknown_ceiling"`
}

// SegmenterConfig tunes mixed-content segmentation.
type SegmenterConfig struct {
	MinBlockLines    int     `yaml:"min_block_lines" mapstructure:"min_block_lines"`
	DensityWindow    int     `yaml:"density_window" mapstructure:"density_window"`
	DensityThreshold float64 `yaml:"density_threshold" mapstructure:"density_threshold"`
}

// FilterConfig tunes the precision filter applied to heuristic candidates
// in mixed-content documents.
type FilterConfig struct {
	MinLines      int     `yaml:"min_lines" mapstructure:"min_lines"`
	MinChars      int     `yaml:"min_chars" mapstructure:"min_chars"`
	MinConfidence float64 `yaml:"min_confidence" mapstructure:"min_confidence"`
	ProseRatio    float64 `yaml:"prose_ratio" mapstructure:"prose_ratio"`
}

// IngestConfig bounds repository ingestion.
type IngestConfig struct {
	Ignore        []string `yaml:"ignore" mapstructure:"ignore"` // glob patterns to skip
	MaxFileSizeKB int      `yaml:"max_file_size_kb" mapstructure:"max_file_size_kb"`
	FileWorkers   int      `yaml:"file_workers" mapstructure:"file_workers"`       // concurrent files in a batch
	BatchTimeoutS int      `yaml:"batch_timeout_s" mapstructure:"batch_timeout_s"` // pool-wide budget, 0 = none
}

// StorageConfig locates the block store.
type StorageConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// SearchConfig locates the search index.
type SearchConfig struct {
	IndexPath string `yaml:"index_path" mapstructure:"index_path"`
}

// Default returns a configuration with production defaults.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			RegionWorkers:  4,
			ParseTimeoutMS: 2000,
			DetectTopK:     3,
			CacheCapacity:  4096,
		},
		Scoring: ScoringConfig{
			ASTBase:          0.78,
			FallbackBase:     0.40,
			FallbackCeiling:  0.60,
			ASTBonusMax:      0.20,
			FallbackBonusMax: 0.20,

			ShortRegionLines:    5,
			ShortRegionPenalty:  0.12,
			LargeRegionFraction: 0.90,
			LargeRegionPenalty:  0.10,

			UnknownCeiling: 0.25,
		},
		Segmenter: SegmenterConfig{
			MinBlockLines:    3,
			DensityWindow:    5,
			DensityThreshold: 0.15,
		},
		Filter: FilterConfig{
			MinLines:      3,
			MinChars:      30,
			MinConfidence: 0.20,
			ProseRatio:    0.20,
		},
		Ingest: IngestConfig{
			Ignore: []string{
				".git/**",
				"node_modules/**",
				"vendor/**",
				"dist/**",
				"build/**",
				"target/**",
				"__pycache__/**",
				"*.min.js",
			},
			MaxFileSizeKB: 1024,
			FileWorkers:   8,
			BatchTimeoutS: 0,
		},
		Storage: StorageConfig{
			Path: ".codesift/blocks.db",
		},
		Search: SearchConfig{
			IndexPath: ".codesift/search.bleve",
		},
	}
}
