package watch

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// GitDirtySource discovers a dirty-path batch from git history instead
// of live filesystem events: "what changed since this ref" or "what's
// currently staged/unstaged", for CI-style incremental builds that
// react to a diff rather than to a running watch session.
type GitDirtySource struct {
	repoRoot string
}

// NewGitDirtySource returns a dirty-set source rooted at repoRoot.
func NewGitDirtySource(repoRoot string) *GitDirtySource {
	return &GitDirtySource{repoRoot: repoRoot}
}

// IsRepository reports whether repoRoot is inside a git working tree.
func (g *GitDirtySource) IsRepository() bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = g.repoRoot
	return cmd.Run() == nil
}

// ChangedSince returns the absolute paths of files that differ between
// ref and the working tree.
func (g *GitDirtySource) ChangedSince(ref string) ([]string, error) {
	out, err := g.run("diff", "--name-only", ref)
	if err != nil {
		return nil, fmt.Errorf("watch: git diff against %s: %w", ref, err)
	}
	return g.toAbsolute(out), nil
}

// UncommittedChanges returns files with staged or unstaged modifications.
func (g *GitDirtySource) UncommittedChanges() ([]string, error) {
	cmd := exec.Command("git", "status", "--porcelain")
	cmd.Dir = g.repoRoot

	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("watch: git status: %s: %w", stderr.String(), err)
	}

	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	files := make([]string, 0, len(lines))
	for _, line := range lines {
		if len(line) < 4 {
			continue
		}
		name := strings.TrimSpace(line[3:])
		if idx := strings.Index(name, " -> "); idx != -1 {
			name = name[idx+4:]
		}
		if name != "" {
			files = append(files, filepath.Join(g.repoRoot, name))
		}
	}
	return files, nil
}

func (g *GitDirtySource) run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = g.repoRoot

	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w", stderr.String(), err)
	}
	return stdout.String(), nil
}

func (g *GitDirtySource) toAbsolute(output string) []string {
	output = strings.TrimSpace(output)
	if output == "" {
		return nil
	}
	lines := strings.Split(output, "\n")
	files := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			files = append(files, filepath.Join(g.repoRoot, line))
		}
	}
	return files
}
