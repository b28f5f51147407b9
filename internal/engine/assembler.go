package engine

import (
	"fmt"
	"sort"

	"github.com/codesift/codesift/internal/document"
)

// assembler merges region outcomes into the final ordered block list plus
// filler spans and aggregate statistics. Output order is a total function
// of input offsets: whatever order the outcomes were validated in, the
// assembled result is identical.
type assembler struct{}

func (assembler) assemble(doc *document.SourceDocument, path, fileID string, outcomes []outcome) ([]ExtractedBlock, []FillerSpan, Stats, []string) {
	var warnings []string

	sort.SliceStable(outcomes, func(i, j int) bool {
		if outcomes[i].region.StartOffset != outcomes[j].region.StartOffset {
			return outcomes[i].region.StartOffset < outcomes[j].region.StartOffset
		}
		return outcomes[i].region.EndOffset > outcomes[j].region.EndOffset
	})

	// Residual overlaps can survive segmentation when heuristics disagree;
	// the higher-confidence outcome wins and the loser is discarded with a
	// coverage warning.
	kept := make([]outcome, 0, len(outcomes))
	for _, o := range outcomes {
		if len(kept) == 0 {
			kept = append(kept, o)
			continue
		}
		prev := &kept[len(kept)-1]
		if o.region.StartOffset >= prev.region.EndOffset {
			kept = append(kept, o)
			continue
		}
		if betterOutcome(&o, prev) {
			warnings = append(warnings, coverageWarning(prev))
			kept[len(kept)-1] = o
		} else {
			warnings = append(warnings, coverageWarning(&o))
		}
	}

	var blocks []ExtractedBlock
	var filler []FillerSpan
	var stats Stats
	cursor := 0

	addFiller := func(start, end int, reason string) {
		if end > start {
			filler = append(filler, FillerSpan{StartOffset: start, EndOffset: end, Reason: reason})
		}
	}

	for _, o := range kept {
		addFiller(cursor, o.region.StartOffset, "non-code")

		if o.filtered {
			addFiller(o.region.StartOffset, o.region.EndOffset, o.filterReason)
			cursor = o.region.EndOffset
			continue
		}

		blocks = append(blocks, ExtractedBlock{
			ID:           blockID(path, o.region.StartLine, o.content),
			SourceFileID: fileID,
			Language:     o.language,
			Type:         o.blockType,
			Method:       string(o.region.Method),
			Content:      o.content,
			StartLine:    o.region.StartLine,
			EndLine:      o.region.EndLine,
			StartOffset:  o.region.StartOffset,
			EndOffset:    o.region.EndOffset,
			Confidence:   o.confidence,
			Status:       StatusPending,
		})

		switch o.blockType {
		case BlockAST:
			stats.ASTParsed++
		case BlockFallback:
			stats.FallbackExtracted++
		}
		stats.TotalExtracted++
		cursor = o.region.EndOffset
	}
	addFiller(cursor, doc.Len(), "non-code")

	return blocks, filler, stats, warnings
}

// betterOutcome decides overlap ties: confidence first, then the
// grammar-validated block, then the earlier and longer region.
func betterOutcome(a, b *outcome) bool {
	if a.confidence != b.confidence {
		return a.confidence > b.confidence
	}
	if a.blockType != b.blockType {
		return a.blockType == BlockAST
	}
	if a.region.StartOffset != b.region.StartOffset {
		return a.region.StartOffset < b.region.StartOffset
	}
	return a.region.EndOffset-a.region.StartOffset > b.region.EndOffset-b.region.StartOffset
}

func coverageWarning(o *outcome) string {
	return fmt.Sprintf("discarded overlapping %s candidate at lines %d-%d; span reclassified as filler",
		o.blockType, o.region.StartLine, o.region.EndLine)
}
