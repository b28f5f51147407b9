package config

import "fmt"

// Validate checks configuration invariants. Scoring weights are tunable,
// but their ordering is not: the AST floor must stay at or above the
// fallback ceiling or search ranking inverts.
func Validate(cfg *Config) error {
	if cfg.Engine.RegionWorkers < 1 {
		return fmt.Errorf("engine.region_workers must be >= 1, got %d", cfg.Engine.RegionWorkers)
	}
	if cfg.Engine.ParseTimeoutMS < 1 {
		return fmt.Errorf("engine.parse_timeout_ms must be >= 1, got %d", cfg.Engine.ParseTimeoutMS)
	}
	if cfg.Engine.DetectTopK < 1 {
		return fmt.Errorf("engine.detect_top_k must be >= 1, got %d", cfg.Engine.DetectTopK)
	}
	if cfg.Engine.CacheCapacity < 0 {
		return fmt.Errorf("engine.cache_capacity must be >= 0, got %d", cfg.Engine.CacheCapacity)
	}

	s := cfg.Scoring
	for name, v := range map[string]float64{
		"scoring.ast_base":         s.ASTBase,
		"scoring.fallback_base":    s.FallbackBase,
		"scoring.fallback_ceiling": s.FallbackCeiling,
		"scoring.unknown_ceiling":  s.UnknownCeiling,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0,1], got %v", name, v)
		}
	}
	if s.ASTBase < s.FallbackCeiling {
		return fmt.Errorf("scoring.ast_base (%v) must be >= scoring.fallback_ceiling (%v)", s.ASTBase, s.FallbackCeiling)
	}
	if s.FallbackBase > s.FallbackCeiling {
		return fmt.Errorf("scoring.fallback_base (%v) must be <= scoring.fallback_ceiling (%v)", s.FallbackBase, s.FallbackCeiling)
	}
	if s.UnknownCeiling > s.FallbackCeiling {
		return fmt.Errorf("scoring.unknown_ceiling (%v) must be <= scoring.fallback_ceiling (%v)", s.UnknownCeiling, s.FallbackCeiling)
	}
	if s.LargeRegionFraction <= 0 || s.LargeRegionFraction > 1 {
		return fmt.Errorf("scoring.large_region_fraction must be in (0,1], got %v", s.LargeRegionFraction)
	}

	if cfg.Segmenter.MinBlockLines < 1 {
		return fmt.Errorf("segmenter.min_block_lines must be >= 1, got %d", cfg.Segmenter.MinBlockLines)
	}
	if cfg.Segmenter.DensityWindow < 1 {
		return fmt.Errorf("segmenter.density_window must be >= 1, got %d", cfg.Segmenter.DensityWindow)
	}
	if cfg.Segmenter.DensityThreshold <= 0 || cfg.Segmenter.DensityThreshold >= 1 {
		return fmt.Errorf("segmenter.density_threshold must be in (0,1), got %v", cfg.Segmenter.DensityThreshold)
	}

	if cfg.Ingest.FileWorkers < 1 {
		return fmt.Errorf("ingest.file_workers must be >= 1, got %d", cfg.Ingest.FileWorkers)
	}
	if cfg.Ingest.MaxFileSizeKB < 1 {
		return fmt.Errorf("ingest.max_file_size_kb must be >= 1, got %d", cfg.Ingest.MaxFileSizeKB)
	}
	if cfg.Ingest.BatchTimeoutS < 0 {
		return fmt.Errorf("ingest.batch_timeout_s must be >= 0, got %d", cfg.Ingest.BatchTimeoutS)
	}

	return nil
}
