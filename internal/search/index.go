// Package search provides full-text search over extracted blocks using a
// persistent bleve index. Only block content is analyzed for matching;
// language, type and status are keyword fields for exact filtering.
package search

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/codesift/codesift/internal/engine"
)

// Result is one search hit. Score is bleve's match quality, not the
// block's extraction confidence; the latter is returned alongside so
// callers can rank or filter on either.
type Result struct {
	BlockID    string   `json:"block_id"`
	Language   string   `json:"language"`
	BlockType  string   `json:"block_type"`
	Path       string   `json:"path"`
	Snippet    string   `json:"snippet"`
	Score      float64  `json:"score"`
	Confidence float64  `json:"confidence"`
	Highlights []string `json:"highlights,omitempty"`
}

// Options narrows a query.
type Options struct {
	Language  string
	BlockType string
	Limit     int
}

// Index is a persistent full-text index over blocks.
type Index struct {
	index bleve.Index
	mu    sync.RWMutex
}

// Open opens the index at path, creating it if missing.
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("failed to open search index: %w", err)
		}
		idx, err = bleve.New(path, buildMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create search index: %w", err)
		}
	}
	return &Index{index: idx}, nil
}

// OpenMemory returns an in-memory index, used by tests and one-shot runs.
func OpenMemory() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}
	return &Index{index: idx}, nil
}

func buildMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	contentMapping := bleve.NewTextFieldMapping()
	contentMapping.Analyzer = "standard"
	contentMapping.Store = true
	contentMapping.Index = true
	contentMapping.IncludeTermVectors = true

	keyword := func() *mapping.FieldMapping {
		m := bleve.NewTextFieldMapping()
		m.Analyzer = "keyword"
		m.Store = true
		m.Index = true
		return m
	}

	pathMapping := bleve.NewTextFieldMapping()
	pathMapping.Analyzer = "standard"
	pathMapping.Store = true
	pathMapping.Index = true

	confMapping := bleve.NewNumericFieldMapping()
	confMapping.Store = true
	confMapping.Index = true

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("content", contentMapping)
	docMapping.AddFieldMappingsAt("language", keyword())
	docMapping.AddFieldMappingsAt("block_type", keyword())
	docMapping.AddFieldMappingsAt("path", pathMapping)
	docMapping.AddFieldMappingsAt("confidence", confMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

func blockDocument(path string, b engine.ExtractedBlock) map[string]interface{} {
	return map[string]interface{}{
		"content":    b.Content,
		"language":   b.Language,
		"block_type": string(b.Type),
		"path":       path,
		"confidence": b.Confidence,
	}
}

// IndexResult adds every block of one extraction result. Re-indexing the
// same blocks overwrites in place since ids are content-derived.
func (ix *Index) IndexResult(ctx context.Context, res *engine.Result) error {
	const batchSize = 1000

	ix.mu.Lock()
	defer ix.mu.Unlock()

	batch := ix.index.NewBatch()
	for i, b := range res.Blocks {
		if i%batchSize == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		if err := batch.Index(b.ID, blockDocument(res.Path, b)); err != nil {
			return fmt.Errorf("failed to add block %s to batch: %w", b.ID, err)
		}
		if batch.Size() >= batchSize {
			if err := ix.index.Batch(batch); err != nil {
				return fmt.Errorf("failed to execute batch: %w", err)
			}
			batch = ix.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := ix.index.Batch(batch); err != nil {
			return fmt.Errorf("failed to execute batch: %w", err)
		}
	}
	return nil
}

// Delete removes blocks by id, used when a block is rejected.
func (ix *Index) Delete(blockIDs []string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	batch := ix.index.NewBatch()
	for _, id := range blockIDs {
		batch.Delete(id)
	}
	if err := ix.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to delete blocks: %w", err)
	}
	return nil
}

// Search runs a QueryStringQuery over block content with optional
// language and type filters combined as a conjunction.
func (ix *Index) Search(ctx context.Context, queryStr string, opts Options) ([]Result, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 100 {
		limit = 15
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var queries []query.Query
	queries = append(queries, bleve.NewQueryStringQuery(queryStr))

	if opts.Language != "" {
		q := bleve.NewMatchQuery(opts.Language)
		q.SetField("language")
		queries = append(queries, q)
	}
	if opts.BlockType != "" {
		q := bleve.NewMatchQuery(opts.BlockType)
		q.SetField("block_type")
		queries = append(queries, q)
	}

	var finalQuery query.Query = queries[0]
	if len(queries) > 1 {
		finalQuery = bleve.NewConjunctionQuery(queries...)
	}

	req := bleve.NewSearchRequestOptions(finalQuery, limit, 0, false)
	highlightStyle := "html"
	req.Highlight = bleve.NewHighlight()
	req.Highlight.Style = &highlightStyle
	req.Highlight.Fields = []string{"content"}
	req.Fields = []string{"content", "language", "block_type", "path", "confidence"}

	res, err := ix.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		content, _ := hit.Fields["content"].(string)
		language, _ := hit.Fields["language"].(string)
		blockType, _ := hit.Fields["block_type"].(string)
		path, _ := hit.Fields["path"].(string)
		confidence, _ := hit.Fields["confidence"].(float64)

		results = append(results, Result{
			BlockID:    hit.ID,
			Language:   language,
			BlockType:  blockType,
			Path:       path,
			Snippet:    snippet(content),
			Score:      hit.Score,
			Confidence: confidence,
			Highlights: extractHighlights(hit.Fragments),
		})
	}
	return results, nil
}

// Close releases the underlying index.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.index != nil {
		return ix.index.Close()
	}
	return nil
}

const maxSnippetLen = 200

func snippet(content string) string {
	if len(content) <= maxSnippetLen {
		return content
	}
	return content[:maxSnippetLen] + "..."
}

func extractHighlights(fragments map[string][]string) []string {
	var highlights []string
	for _, snippets := range fragments {
		highlights = append(highlights, snippets...)
	}
	if len(highlights) > 3 {
		highlights = highlights[:3]
	}
	return highlights
}
