// Package git retrieves remote repositories for ingestion. Every ref and
// URL is validated before it reaches a git command, and retrieved trees
// are permission-hardened before extraction sees them.
package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/codesift/codesift/internal/ingest"
)

// Operations defines the interface for git retrieval.
// This allows mocking git commands in tests.
type Operations interface {
	// Clone performs a shallow clone of url into dest. An empty ref
	// clones the default branch. The cloned tree is hardened: no file
	// keeps execute permission.
	Clone(ctx context.Context, url, ref, dest string) error

	// HeadCommit returns the full commit hash at HEAD of a local clone.
	// Returns "unknown" if the git command fails.
	HeadCommit(repoPath string) string
}

// gitOps is the real implementation using exec.Command.
type gitOps struct{}

// NewOperations returns the default git operations implementation.
func NewOperations() Operations {
	return &gitOps{}
}

func (g *gitOps) Clone(ctx context.Context, url, ref, dest string) error {
	if err := ingest.SanitizeRef(url); err != nil {
		return fmt.Errorf("refusing to clone: %w", err)
	}
	if ref != "" {
		if err := ingest.SanitizeRef(ref); err != nil {
			return fmt.Errorf("refusing to clone: %w", err)
		}
	}

	args := []string{"clone", "--depth", "1", "--single-branch"}
	if ref != "" {
		args = append(args, "--branch", ref)
	}
	args = append(args, "--", url, dest)

	cmd := exec.CommandContext(ctx, "git", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git clone failed: %w: %s", err, strings.TrimSpace(string(output)))
	}

	if err := ingest.HardenTree(dest); err != nil {
		return fmt.Errorf("failed to harden clone: %w", err)
	}
	return nil
}

func (g *gitOps) HeadCommit(repoPath string) string {
	cmd := exec.Command("git", "rev-parse", "HEAD")
	cmd.Dir = repoPath
	output, err := cmd.Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(output))
}
