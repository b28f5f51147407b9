package lang

import (
	"context"
	"regexp"
)

// Family groups languages that share fallback heuristics.
type Family string

const (
	FamilyCLike      Family = "c-like"      // brace/semicolon languages
	FamilyPythonLike Family = "python-like" // indentation + colon languages
	FamilyShell      Family = "shell"
	FamilySQL        Family = "sql"
	FamilyMarkup     Family = "markup"
	FamilyConfig     Family = "config"
	FamilyLog        Family = "log"
	FamilyData       Family = "data" // json/yaml/xml
	FamilyUnknown    Family = "unknown"
)

// ParseReport summarizes one grammar parse of a region.
type ParseReport struct {
	// OK is true only when the tree contains zero ERROR nodes and zero
	// missing nodes. Partial/recoverable parses report OK=false.
	OK bool

	ErrorNodeCount   int
	MissingNodeCount int
	NamedNodeCount   int
}

// GrammarAdapter performs a full structural parse of text against one
// language's syntax rules. Adapters are pure functions of their input and
// safe for concurrent use.
type GrammarAdapter interface {
	// Parse parses source and reports whether it is syntactically valid.
	// The context deadline bounds the parse; an expired context returns
	// context.DeadlineExceeded rather than a partial report.
	Parse(ctx context.Context, source []byte) (ParseReport, error)
}

// ContentSignature is a weighted pattern used to rank candidate languages
// for an undeclared region.
type ContentSignature struct {
	Pattern *regexp.Regexp
	Weight  float64
}

// Profile describes one supported language. Profiles are static data: the
// registry is built once at startup and never mutated, so concurrent
// readers need no synchronization.
type Profile struct {
	ID          string
	DisplayName string
	Family      Family

	// Detection signals.
	Extensions []string // with leading dot, lowercase (".py")
	Filenames  []string // exact basenames ("Dockerfile", "Makefile")
	Shebangs   []string // interpreter basenames ("python3", "bash")
	Signatures []ContentSignature

	// Grammar is nil for languages validated only by heuristics.
	Grammar GrammarAdapter

	// Fallback is never nil; every profile can produce a block even when
	// no grammar adapter exists or the parse fails.
	Fallback *Ruleset
}

// HasGrammar reports whether the profile carries a structural parser.
func (p *Profile) HasGrammar() bool {
	return p.Grammar != nil
}

// Unknown is the language id assigned to regions whose language cannot be
// inferred at all. The unknown profile is always registered.
const Unknown = "unknown"
