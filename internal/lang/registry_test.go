package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Registry:
// - Default() returns a valid registry containing the built-in table
// - NewRegistry rejects empty ids, duplicate ids, missing fallback rulesets
// - NewRegistry rejects extension collisions between profiles
// - NewRegistry requires the "unknown" profile
// - ByID resolves canonical ids and common aliases (py, js, sh, yml)
// - ByPath resolves by exact basename before extension
// - ByShebang resolves env-style and direct interpreter lines
// - Profiles() is ordered by id

func TestDefault_ContainsBuiltinProfiles(t *testing.T) {
	t.Parallel()

	reg := Default()
	require.NotNil(t, reg)

	for _, id := range []string{"python", "javascript", "go", "sql", "cisco", "nginx", "log", Unknown} {
		p, ok := reg.ByID(id)
		require.True(t, ok, "missing profile %q", id)
		assert.Equal(t, id, p.ID)
		assert.NotNil(t, p.Fallback)
	}
}

func TestNewRegistry_RejectsInvalidTables(t *testing.T) {
	t.Parallel()

	unknown := &Profile{ID: Unknown, Fallback: unknownRuleset}

	tests := []struct {
		name     string
		profiles []*Profile
		wantErr  string
	}{
		{
			name:     "empty id",
			profiles: []*Profile{{ID: "", Fallback: unknownRuleset}, unknown},
			wantErr:  "empty id",
		},
		{
			name: "duplicate id",
			profiles: []*Profile{
				{ID: "python", Fallback: pythonRuleset},
				{ID: "python", Fallback: pythonRuleset},
				unknown,
			},
			wantErr: "duplicate",
		},
		{
			name:     "missing fallback",
			profiles: []*Profile{{ID: "python"}, unknown},
			wantErr:  "no fallback ruleset",
		},
		{
			name: "extension collision",
			profiles: []*Profile{
				{ID: "a", Extensions: []string{".x"}, Fallback: unknownRuleset},
				{ID: "b", Extensions: []string{".x"}, Fallback: unknownRuleset},
				unknown,
			},
			wantErr: "claimed by both",
		},
		{
			name:     "missing unknown profile",
			profiles: []*Profile{{ID: "python", Fallback: pythonRuleset}},
			wantErr:  "missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewRegistry(tt.profiles)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestByID_ResolvesAliases(t *testing.T) {
	t.Parallel()

	reg := Default()

	tests := []struct {
		alias string
		want  string
	}{
		{"py", "python"},
		{"Python3", "python"},
		{"js", "javascript"},
		{"ts", "typescript"},
		{"sh", "shell"},
		{"bash", "shell"},
		{"yml", "yaml"},
		{"rb", "ruby"},
		{"  python ", "python"},
	}
	for _, tt := range tests {
		p, ok := reg.ByID(tt.alias)
		require.True(t, ok, "alias %q did not resolve", tt.alias)
		assert.Equal(t, tt.want, p.ID)
	}

	_, ok := reg.ByID("klingon")
	assert.False(t, ok)
}

func TestByPath_BasenameBeforeExtension(t *testing.T) {
	t.Parallel()

	reg := Default()

	tests := []struct {
		path string
		want string
	}{
		{"src/app.py", "python"},
		{"lib/util.RS", "rust"},
		{"deploy/Dockerfile", "dockerfile"},
		{"Makefile", "makefile"},
		{"Gemfile", "ruby"},
		{"site/index.html", "html"},
	}
	for _, tt := range tests {
		p := reg.ByPath(tt.path)
		require.NotNil(t, p, "path %q did not resolve", tt.path)
		assert.Equal(t, tt.want, p.ID)
	}

	assert.Nil(t, reg.ByPath("notes.xyz"))
	assert.Nil(t, reg.ByPath("LICENSE"))
}

func TestByShebang_ResolvesInterpreter(t *testing.T) {
	t.Parallel()

	reg := Default()

	tests := []struct {
		line string
		want string
	}{
		{"#!/usr/bin/python3", "python"},
		{"#!/usr/bin/env python", "python"},
		{"#!/bin/bash", "shell"},
		{"#!/usr/bin/env zsh", "shell"},
		{"#!/usr/bin/env node", "javascript"},
	}
	for _, tt := range tests {
		p := reg.ByShebang(tt.line)
		require.NotNil(t, p, "shebang %q did not resolve", tt.line)
		assert.Equal(t, tt.want, p.ID)
	}

	assert.Nil(t, reg.ByShebang("#!/usr/bin/env perl"))
	assert.Nil(t, reg.ByShebang("not a shebang"))
}

func TestProfiles_OrderedByID(t *testing.T) {
	t.Parallel()

	profiles := Default().Profiles()
	require.NotEmpty(t, profiles)
	for i := 1; i < len(profiles); i++ {
		assert.Less(t, profiles[i-1].ID, profiles[i].ID)
	}
}
