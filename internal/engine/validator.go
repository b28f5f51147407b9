package engine

import (
	"context"
	"errors"
	"time"

	"github.com/codesift/codesift/internal/lang"
	"github.com/codesift/codesift/internal/segment"
)

// validator runs the AST validation path for one candidate region and
// decides which path (ast or fallback) the region takes. It never returns
// an error: every failure mode degrades to a fallback outcome so the run
// keeps its coverage guarantee.
type validator struct {
	registry *lang.Registry
	timeout  time.Duration
	topK     int
	cache    *lang.ReportCache // optional
}

func newValidator(registry *lang.Registry, timeout time.Duration, topK int, cache *lang.ReportCache) *validator {
	return &validator{
		registry: registry,
		timeout:  timeout,
		topK:     topK,
		cache:    cache,
	}
}

// validate classifies one region. A region is accepted as an AST block
// only when its grammar parses the text with zero unrecoverable errors;
// recoverable/partial parses are downgraded to fallback so the confidence
// signal stays honest. Truncated regions never take the grammar path: a
// fragment cut mid-construct can still parse cleanly (the cut may fall on
// a statement boundary), and treating it as validated would overstate
// certainty about content that is known to be incomplete.
func (v *validator) validate(ctx context.Context, region segment.Region, content string) outcome {
	o := outcome{region: region, content: content}

	if region.DeclaredLanguage != "" {
		if profile, ok := v.registry.ByID(region.DeclaredLanguage); ok {
			if !region.Truncated {
				if report, ok := v.tryGrammar(ctx, profile, content); ok {
					return v.astOutcome(o, profile, report)
				}
			}
			// Declared but unparseable, truncated, or no grammar: the
			// declaration still names the language; only the path degrades.
			return v.fallbackOutcome(o, profile)
		}
		// Declared language not in the table: unsupported, not an error.
	}

	candidates := v.registry.DetectByContent(content, v.topK)

	if !region.Truncated {
		for _, c := range candidates {
			if report, ok := v.tryGrammar(ctx, c.Profile, content); ok {
				return v.astOutcome(o, c.Profile, report)
			}
		}
	}

	// No clean parse anywhere: hand the region to the fallback path,
	// labeled with the strongest candidate whose ruleset actually claims
	// the content, or "unknown" if none does.
	for _, c := range candidates {
		if ev := c.Profile.Fallback.Evaluate(content); ev.Claimed {
			o.evidence = ev
			o.profile = c.Profile
			o.language = c.Profile.ID
			o.blockType = BlockFallback
			return o
		}
	}

	return v.fallbackOutcome(o, v.registry.Unknown())
}

// tryGrammar parses content with the profile's grammar under the region
// budget. Returns (report, true) only for a clean parse. Timeouts, parser
// panics and partial parses all report false.
func (v *validator) tryGrammar(ctx context.Context, profile *lang.Profile, content string) (lang.ParseReport, bool) {
	if !profile.HasGrammar() {
		return lang.ParseReport{}, false
	}

	source := []byte(content)
	if report, hit := v.cache.Get(profile.ID, source); hit {
		return report, report.OK
	}

	parseCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	report, err := profile.Grammar.Parse(parseCtx, source)
	if err != nil {
		// Timeouts are not cached: a slow region gets a fresh budget if
		// it comes around again. Settled failures below are cached.
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return lang.ParseReport{}, false
		}
		report = lang.ParseReport{}
	}

	v.cache.Put(profile.ID, source, report)
	return report, report.OK
}

func (v *validator) astOutcome(o outcome, profile *lang.Profile, report lang.ParseReport) outcome {
	o.profile = profile
	o.language = profile.ID
	o.blockType = BlockAST
	o.report = report
	return o
}

func (v *validator) fallbackOutcome(o outcome, profile *lang.Profile) outcome {
	o.profile = profile
	o.language = profile.ID
	o.blockType = BlockFallback
	o.evidence = profile.Fallback.Evaluate(o.content)
	return o
}
