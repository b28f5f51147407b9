package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/codesift/codesift/internal/lang"
	"github.com/codesift/codesift/internal/segment"
)

// BlockType says which extraction path produced a block.
type BlockType string

const (
	// BlockAST marks blocks whose language grammar parsed the region
	// with zero unrecoverable errors.
	BlockAST BlockType = "ast"
	// BlockFallback marks blocks produced by heuristic rulesets, either
	// because no grammar exists or because the parse failed.
	BlockFallback BlockType = "fallback"
)

// Status is the review state of a block. The engine always emits
// StatusPending; accept/reject is downstream feedback.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// ExtractedBlock is the externally visible unit of extraction. Content and
// boundaries are immutable once created; downstream edits produce new
// records and never re-score.
type ExtractedBlock struct {
	// ID is stable and content-derived: identical path, position and
	// content always produce the same id.
	ID string `json:"id"`

	SourceFileID string    `json:"source_file_id"`
	Language     string    `json:"language"`
	Type         BlockType `json:"block_type"`
	Method       string    `json:"detection_method"`
	Content      string    `json:"content"`
	StartLine    int       `json:"start_line"`
	EndLine      int       `json:"end_line"`
	StartOffset  int       `json:"-"`
	EndOffset    int       `json:"-"`

	// Confidence is a deterministic score in [0,1].
	Confidence float64 `json:"confidence_score"`

	Status Status `json:"status"`
}

// FillerSpan is a byte range explicitly classified as non-code. Together
// with the block spans, filler tiles the document exactly once.
type FillerSpan struct {
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
	Reason      string `json:"reason"`
}

// Stats aggregates one file's extraction outcome. It is the sole basis for
// the engine's user-facing success/warning signal.
type Stats struct {
	ASTParsed         int `json:"ast_parsed"`
	FallbackExtracted int `json:"fallback_extracted"`
	TotalExtracted    int `json:"total_extracted"`
}

// Result is the output of one extraction run.
type Result struct {
	FileID   string           `json:"file_id"`
	Path     string           `json:"path"`
	Blocks   []ExtractedBlock `json:"blocks"`
	Filler   []FillerSpan     `json:"filler"`
	Stats    Stats            `json:"stats"`
	Warnings []string         `json:"warnings,omitempty"`
}

// Input is one document or file handed to the engine. The caller performs
// all I/O; the engine only ever sees bytes.
type Input struct {
	Raw  []byte
	Path string

	// DeclaredLanguage forces whole-file extraction under the given
	// language id. Optional.
	DeclaredLanguage string

	// WholeFile selects whole-file mode even without a declared
	// language (repository ingestion). A file whose language cannot be
	// resolved still yields one block, language "unknown".
	WholeFile bool

	// FileID identifies the source file in emitted blocks. Generated
	// when empty.
	FileID string
}

// outcome is the post-validation state of one candidate region, before
// scoring and assembly.
type outcome struct {
	region   segment.Region
	content  string
	language string
	profile  *lang.Profile

	blockType BlockType
	report    lang.ParseReport
	evidence  lang.Evidence

	// filtered regions become filler instead of blocks.
	filtered     bool
	filterReason string

	confidence float64
}

// blockID derives a stable block identifier from position and content.
func blockID(path string, startLine int, content string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%d\x00%s", path, startLine, content)))
	return hex.EncodeToString(sum[:16])
}
