// Package engine implements the hybrid extraction pipeline: normalized
// documents are segmented into candidate regions, validated against
// language grammars where possible, degraded to heuristic fallback where
// not, scored, and assembled into an ordered block list that accounts for
// every byte of input.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/codesift/codesift/internal/config"
	"github.com/codesift/codesift/internal/document"
	"github.com/codesift/codesift/internal/lang"
	"github.com/codesift/codesift/internal/segment"
)

// Engine runs extraction. One Engine is safe for concurrent use: the
// registry and weights are read-only, and each Extract call owns all of
// its per-run state.
type Engine struct {
	registry  *lang.Registry
	cfg       *config.Config
	segmenter *segment.Segmenter
	validator *validator
	scorer    *scorer
	filter    *precisionFilter
	asm       assembler
	cache     *lang.ReportCache
}

// New creates an Engine over a validated registry. A nil cfg uses
// defaults.
func New(registry *lang.Registry, cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	var cache *lang.ReportCache
	if cfg.Engine.CacheCapacity > 0 {
		var err error
		cache, err = lang.NewReportCache(cfg.Engine.CacheCapacity)
		if err != nil {
			return nil, err
		}
	}

	return &Engine{
		registry: registry,
		cfg:      cfg,
		segmenter: segment.New(segment.Config{
			MinBlockLines:    cfg.Segmenter.MinBlockLines,
			DensityWindow:    cfg.Segmenter.DensityWindow,
			DensityThreshold: cfg.Segmenter.DensityThreshold,
		}),
		validator: newValidator(
			registry,
			time.Duration(cfg.Engine.ParseTimeoutMS)*time.Millisecond,
			cfg.Engine.DetectTopK,
			cache,
		),
		scorer: newScorer(cfg.Scoring),
		filter: newPrecisionFilter(cfg.Filter),
		cache:  cache,
	}, nil
}

// Close releases the parse cache, if any.
func (e *Engine) Close() {
	e.cache.Close()
}

// Extract runs the full pipeline over one input. It fails only on
// unreadable input (document.ErrBinaryInput) or caller cancellation;
// per-region problems degrade to fallback blocks and warnings.
func (e *Engine) Extract(ctx context.Context, in Input) (*Result, error) {
	fileID := in.FileID
	if fileID == "" {
		fileID = uuid.NewString()
	}

	doc, docWarnings, err := document.Normalize(in.Raw, in.Path)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", in.Path, err)
	}

	result := &Result{FileID: fileID, Path: in.Path}
	for _, w := range docWarnings {
		result.Warnings = append(result.Warnings, w.String())
	}

	regions := e.segmentInput(doc, in)
	if len(regions) == 0 {
		if doc.Len() > 0 {
			result.Filler = []FillerSpan{{StartOffset: 0, EndOffset: doc.Len(), Reason: "non-code"}}
		}
		return result, nil
	}

	outcomes, err := e.validateRegions(ctx, doc, regions)
	if err != nil {
		return nil, err
	}

	for i := range outcomes {
		o := &outcomes[i]
		o.confidence = e.scorer.score(o, doc.Len())
		if ok, reason := e.filter.check(o); !ok {
			o.filtered = true
			o.filterReason = reason
		}
	}

	blocks, filler, stats, asmWarnings := e.asm.assemble(doc, in.Path, fileID, outcomes)
	result.Blocks = blocks
	result.Filler = filler
	result.Stats = stats
	result.Warnings = append(result.Warnings, asmWarnings...)

	return result, nil
}

// segmentInput picks the segmentation mode. A declared language or a
// path-resolved profile puts the file in whole-file mode; repository
// ingestion forces whole-file mode even for unresolvable paths, so an
// unregistered extension still yields one (unknown) block.
func (e *Engine) segmentInput(doc *document.SourceDocument, in Input) []segment.Region {
	declared := in.DeclaredLanguage
	if declared == "" && in.WholeFile {
		if p := e.registry.ByPath(in.Path); p != nil {
			declared = p.ID
		}
	}

	if declared != "" || in.WholeFile {
		return e.segmenter.WholeFile(doc, declared)
	}
	return e.segmenter.MixedContent(doc)
}

// validateRegions runs the validation path over all regions with bounded
// parallelism. Outcomes land in their region's slot, so worker completion
// order never affects output.
func (e *Engine) validateRegions(ctx context.Context, doc *document.SourceDocument, regions []segment.Region) ([]outcome, error) {
	outcomes := make([]outcome, len(regions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Engine.RegionWorkers)

	for i, region := range regions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content := doc.Slice(region.StartOffset, region.EndOffset)
			outcomes[i] = e.validator.validate(gctx, region, content)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
