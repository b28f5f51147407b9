package lang

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Registry is the process-wide language profile table. It is built once at
// startup, validated, and never mutated afterwards, so it is safe to share
// across concurrent extraction runs without locking.
type Registry struct {
	profiles   map[string]*Profile
	byExt      map[string]*Profile
	byFilename map[string]*Profile
	byShebang  map[string]*Profile
	ordered    []*Profile
}

// NewRegistry builds and validates a registry from a closed set of
// profiles. Runtime plugin loading is deliberately unsupported: adding a
// language means adding one profile entry to the table.
func NewRegistry(profiles []*Profile) (*Registry, error) {
	r := &Registry{
		profiles:   make(map[string]*Profile, len(profiles)),
		byExt:      make(map[string]*Profile),
		byFilename: make(map[string]*Profile),
		byShebang:  make(map[string]*Profile),
	}

	for _, p := range profiles {
		if p.ID == "" {
			return nil, fmt.Errorf("profile with empty id")
		}
		if _, dup := r.profiles[p.ID]; dup {
			return nil, fmt.Errorf("duplicate language profile %q", p.ID)
		}
		if p.Fallback == nil {
			// The coverage guarantee depends on every profile being
			// able to emit a block without a grammar.
			return nil, fmt.Errorf("profile %q has no fallback ruleset", p.ID)
		}
		r.profiles[p.ID] = p
		r.ordered = append(r.ordered, p)

		for _, ext := range p.Extensions {
			ext = strings.ToLower(ext)
			if prev, dup := r.byExt[ext]; dup {
				return nil, fmt.Errorf("extension %q claimed by both %q and %q", ext, prev.ID, p.ID)
			}
			r.byExt[ext] = p
		}
		for _, name := range p.Filenames {
			r.byFilename[name] = p
		}
		for _, sb := range p.Shebangs {
			r.byShebang[sb] = p
		}
	}

	if _, ok := r.profiles[Unknown]; !ok {
		return nil, fmt.Errorf("registry is missing the %q profile", Unknown)
	}

	sort.Slice(r.ordered, func(i, j int) bool { return r.ordered[i].ID < r.ordered[j].ID })
	return r, nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the built-in registry. The table is constructed exactly
// once; a broken built-in table is a programming error and panics at
// startup rather than surfacing per-request.
func Default() *Registry {
	defaultOnce.Do(func() {
		reg, err := NewRegistry(builtinProfiles())
		if err != nil {
			panic(fmt.Sprintf("lang: invalid built-in profile table: %v", err))
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}

// ByID returns the profile for a language id.
func (r *Registry) ByID(id string) (*Profile, bool) {
	p, ok := r.profiles[normalizeID(id)]
	return p, ok
}

// ByPath resolves a profile from a file path, by exact basename first and
// extension second. Returns nil if neither matches.
func (r *Registry) ByPath(path string) *Profile {
	base := filepath.Base(path)
	if p, ok := r.byFilename[base]; ok {
		return p
	}
	ext := strings.ToLower(filepath.Ext(base))
	if ext == "" {
		return nil
	}
	return r.byExt[ext]
}

// ByShebang resolves a profile from the first line of a document.
func (r *Registry) ByShebang(firstLine string) *Profile {
	interp := shebangInterpreter(firstLine)
	if interp == "" {
		return nil
	}
	return r.byShebang[interp]
}

// Profiles returns all profiles in deterministic (id) order.
func (r *Registry) Profiles() []*Profile {
	return r.ordered
}

// Unknown returns the catch-all profile used when no language can be
// inferred.
func (r *Registry) Unknown() *Profile {
	return r.profiles[Unknown]
}

// normalizeID folds common aliases onto canonical profile ids so fence
// info strings like "py" or "js" resolve.
func normalizeID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if canonical, ok := aliases[id]; ok {
		return canonical
	}
	return id
}

var aliases = map[string]string{
	"py":      "python",
	"python3": "python",
	"js":      "javascript",
	"jsx":     "javascript",
	"ts":      "typescript",
	"rb":      "ruby",
	"rs":      "rust",
	"golang":  "go",
	"c++":     "c",
	"sh":      "shell",
	"bash":    "shell",
	"zsh":     "shell",
	"yml":     "yaml",
	"htm":     "html",
}

// shebangInterpreter extracts the interpreter basename from a "#!" line.
// "#!/usr/bin/env python3" and "#!/usr/bin/python3" both yield "python3".
func shebangInterpreter(line string) string {
	if !strings.HasPrefix(line, "#!") {
		return ""
	}
	fields := strings.Fields(strings.TrimPrefix(line, "#!"))
	if len(fields) == 0 {
		return ""
	}
	interp := filepath.Base(fields[0])
	if interp == "env" && len(fields) > 1 {
		interp = filepath.Base(fields[1])
	}
	return interp
}
