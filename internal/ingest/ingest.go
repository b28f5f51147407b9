// Package ingest turns a local source tree into extraction inputs and
// runs them through the engine as one bounded batch. Retrieving the tree
// (cloning, unpacking) is a transport concern and happens before this
// package sees it; the trust-boundary helpers here are what that
// transport is required to apply.
package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gobwas/glob"

	"github.com/codesift/codesift/internal/config"
	"github.com/codesift/codesift/internal/engine"
)

// Ingestor walks source trees and feeds them to the engine.
type Ingestor struct {
	engine  *engine.Engine
	cfg     config.IngestConfig
	ignores []glob.Glob
}

// New compiles the configured ignore patterns and returns an Ingestor.
func New(eng *engine.Engine, cfg config.IngestConfig) (*Ingestor, error) {
	ignores := make([]glob.Glob, 0, len(cfg.Ignore))
	for _, pattern := range cfg.Ignore {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		ignores = append(ignores, g)
	}
	return &Ingestor{engine: eng, cfg: cfg, ignores: ignores}, nil
}

// Progress is called after each file is collected, before extraction.
type Progress func(path string)

// IngestTree walks root, collects eligible files and extracts them as one
// batch under the configured concurrency and time budget.
func (ing *Ingestor) IngestTree(ctx context.Context, root string, progress Progress) (*engine.BatchResult, error) {
	inputs, err := ing.Collect(root, progress)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no eligible files under %s", root)
	}

	opts := engine.BatchOptions{Workers: ing.cfg.FileWorkers}
	if ing.cfg.BatchTimeoutS > 0 {
		opts.Timeout = secondsToDuration(ing.cfg.BatchTimeoutS)
	}
	return ing.engine.ExtractBatch(ctx, inputs, opts)
}

// Collect walks root and reads every eligible file into an engine Input.
// Files are read in deterministic (walk) order; .git, ignored globs,
// oversized files and unreadable files are skipped.
func (ing *Ingestor) Collect(root string, progress Progress) ([]engine.Input, error) {
	maxSize := int64(ing.cfg.MaxFileSizeKB) * 1024
	var inputs []engine.Input

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if d.Name() == ".git" || ing.ignored(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if ing.ignored(rel) {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil || info.Size() > maxSize {
			return nil
		}

		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}

		if progress != nil {
			progress(rel)
		}
		inputs = append(inputs, engine.Input{
			Raw:       raw,
			Path:      rel,
			WholeFile: true,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return inputs, nil
}

func (ing *Ingestor) ignored(rel string) bool {
	for _, g := range ing.ignores {
		if g.Match(rel) || g.Match(strings.TrimSuffix(rel, "/")) {
			return true
		}
	}
	return false
}

func secondsToDuration(s int) time.Duration {
	return time.Duration(s) * time.Second
}
