package document

import (
	"sort"
	"strings"
)

// SourceDocument is the immutable normalized text buffer handed to the
// extraction engine, plus a line-offset index mapping byte offsets to
// 1-based line numbers. It is created once per ingested file and owned by
// the extraction run that produced it.
type SourceDocument struct {
	text        string
	lineOffsets []int // byte offset of each line start
}

func newSourceDocument(text string) *SourceDocument {
	offsets := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' && i+1 < len(text) {
			offsets = append(offsets, i+1)
		}
	}
	return &SourceDocument{text: text, lineOffsets: offsets}
}

// Text returns the full normalized buffer. Line endings are LF.
func (d *SourceDocument) Text() string {
	return d.text
}

// Len returns the buffer length in bytes.
func (d *SourceDocument) Len() int {
	return len(d.text)
}

// LineCount returns the number of lines in the buffer.
func (d *SourceDocument) LineCount() int {
	if d.text == "" {
		return 0
	}
	return len(d.lineOffsets)
}

// LineAt maps a byte offset to its 1-based line number. Offsets past the
// end of the buffer map to the last line; line numbers are monotonic with
// offsets.
func (d *SourceDocument) LineAt(offset int) int {
	if offset < 0 {
		offset = 0
	}
	// First line start greater than offset; the offset belongs to the
	// line before it.
	i := sort.SearchInts(d.lineOffsets, offset+1)
	if i == 0 {
		return 1
	}
	return i
}

// LineStartOffset returns the byte offset of the start of a 1-based line.
func (d *SourceDocument) LineStartOffset(line int) int {
	if line < 1 {
		line = 1
	}
	if line > len(d.lineOffsets) {
		return len(d.text)
	}
	return d.lineOffsets[line-1]
}

// Slice returns the buffer content in [start, end). Bounds are clamped.
func (d *SourceDocument) Slice(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(d.text) {
		end = len(d.text)
	}
	if start >= end {
		return ""
	}
	return d.text[start:end]
}

// Lines returns the buffer split into lines without terminators.
func (d *SourceDocument) Lines() []string {
	if d.text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(d.text, "\n"), "\n")
}
