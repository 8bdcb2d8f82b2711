// Package gitstate provides the git-backed commit-state provider: it
// captures the current HEAD hash for new entries and, in git-entry mode,
// creates a commit carrying the entry text as its message.
package gitstate

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"scribe-go/internal/scribe"
)

// GitProvider shells out to git in a fixed working directory. The strings it
// returns (short commit hashes) are opaque to the rest of the system.
type GitProvider struct {
	dir string
}

// NewGitProvider creates a provider running git commands in dir.
func NewGitProvider(dir string) *GitProvider {
	return &GitProvider{dir: dir}
}

// run executes a git command and returns its trimmed stdout.
func (g *GitProvider) run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = g.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", args[0], msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Head returns the current HEAD commit hash in short form. Errors when the
// directory is not inside a git repository or has no commits yet.
func (g *GitProvider) Head() (string, error) {
	return g.run("rev-parse", "--short", "HEAD")
}

// Commit stages all modified tracked files and commits them with subject as
// the commit subject and message as the body, returning the new short hash.
// Untracked files are never staged. Refuses to create an empty commit.
func (g *GitProvider) Commit(subject, message string) (string, error) {
	if _, err := g.run("add", "-u"); err != nil {
		return "", fmt.Errorf("staging files: %w", err)
	}

	staged, err := g.hasStagedChanges()
	if err != nil {
		return "", err
	}
	if !staged {
		return "", fmt.Errorf("no changes staged for git-entry mode")
	}

	if _, err := g.run("commit", "-m", subject+"\n\n"+message); err != nil {
		return "", fmt.Errorf("creating commit: %w", err)
	}
	return g.Head()
}

// hasStagedChanges reports whether the index differs from HEAD.
// git diff --cached --quiet exits 1 when changes are staged.
func (g *GitProvider) hasStagedChanges() (bool, error) {
	cmd := exec.Command("git", "diff", "--cached", "--quiet")
	cmd.Dir = g.dir

	err := cmd.Run()
	if err == nil {
		return false, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return true, nil
	}
	return false, fmt.Errorf("checking staged changes: %w", err)
}

// Compile-time check that GitProvider implements the CommitStateProvider interface.
var _ scribe.CommitStateProvider = (*GitProvider)(nil)
