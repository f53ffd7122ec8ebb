// Package gitops versions a data directory with the git command line.
package gitops

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNoChanges is returned by Commit when the working tree is clean.
var ErrNoChanges = errors.New("nothing to commit")

// Repo is a git working tree rooted at Dir.
type Repo struct {
	Dir         string
	AuthorName  string
	AuthorEmail string
}

// IsRepo reports whether dir is the root of a git working tree.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// Available reports whether a git binary is on PATH.
func Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// Init creates the repository if it does not exist yet.
func (r Repo) Init(ctx context.Context) error {
	if IsRepo(r.Dir) {
		return nil
	}
	if _, err := r.git(ctx, "init", "--quiet"); err != nil {
		return err
	}
	return nil
}

// Commit stages everything and commits it with message. It returns the short
// hash of the new commit, or ErrNoChanges when there was nothing to record.
func (r Repo) Commit(ctx context.Context, message string) (string, error) {
	if _, err := r.git(ctx, "add", "-A"); err != nil {
		return "", err
	}
	status, err := r.git(ctx, "status", "--porcelain")
	if err != nil {
		return "", err
	}
	if status == "" {
		return "", ErrNoChanges
	}

	args := []string{"commit", "--quiet", "-m", message}
	if r.AuthorName != "" {
		args = append(args, "--author", fmt.Sprintf("%s <%s>", r.AuthorName, r.AuthorEmail))
	}
	if _, err := r.git(ctx, args...); err != nil {
		return "", err
	}
	return r.git(ctx, "rev-parse", "--short", "HEAD")
}

// git runs one subcommand in r.Dir and returns its trimmed stdout.
func (r Repo) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir
	// Commits must work on machines with no global git identity.
	if r.AuthorName != "" {
		cmd.Env = append(os.Environ(),
			"GIT_COMMITTER_NAME="+r.AuthorName,
			"GIT_COMMITTER_EMAIL="+r.AuthorEmail,
		)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(stderr.String()), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
