package lang

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/maypok86/otter"
)

// ReportCache memoizes parse reports keyed by (language, content hash).
// Repository batches frequently contain identical regions (vendored files,
// generated code); caching skips the re-parse without changing results,
// since adapters are pure functions of their input.
type ReportCache struct {
	cache otter.Cache[string, ParseReport]
}

// NewReportCache builds a cache bounded to capacity entries.
func NewReportCache(capacity int) (*ReportCache, error) {
	c, err := otter.MustBuilder[string, ParseReport](capacity).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build parse report cache: %w", err)
	}
	return &ReportCache{cache: c}, nil
}

// Get returns a previously recorded report for the exact same language and
// content, if any.
func (rc *ReportCache) Get(langID string, source []byte) (ParseReport, bool) {
	if rc == nil {
		return ParseReport{}, false
	}
	return rc.cache.Get(cacheKey(langID, source))
}

// Put records a report. Only settled outcomes should be cached; timeouts
// are not, so a slow region gets a fresh budget on the next encounter.
func (rc *ReportCache) Put(langID string, source []byte, report ParseReport) {
	if rc == nil {
		return
	}
	rc.cache.Set(cacheKey(langID, source), report)
}

// Close releases the cache's resources.
func (rc *ReportCache) Close() {
	if rc != nil {
		rc.cache.Close()
	}
}

func cacheKey(langID string, source []byte) string {
	sum := sha256.Sum256(source)
	return langID + ":" + hex.EncodeToString(sum[:])
}
