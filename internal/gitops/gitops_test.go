package gitops

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) Repo {
	t.Helper()
	if !Available() {
		t.Skip("git not installed")
	}
	r := Repo{Dir: t.TempDir(), AuthorName: "Tally Test", AuthorEmail: "test@example.com"}
	require.NoError(t, r.Init(context.Background()))
	return r
}

func lastCommit(t *testing.T, dir, format string) string {
	t.Helper()
	cmd := exec.Command("git", "log", "--format="+format, "-1")
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err)
	return string(out)
}

func TestInit(t *testing.T) {
	r := newRepo(t)
	assert.True(t, IsRepo(r.Dir))

	// A second Init is a no-op.
	require.NoError(t, r.Init(context.Background()))
}

func TestIsRepo(t *testing.T) {
	assert.False(t, IsRepo(t.TempDir()), "empty dir should not be a repo")
}

func TestCommit(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(filepath.Join(r.Dir, "transactions.json"), []byte("[]"), 0o644))

	hash, err := r.Commit(ctx, "tx add: Groceries")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.Contains(t, lastCommit(t, r.Dir, "%s"), "tx add: Groceries")
	assert.Contains(t, lastCommit(t, r.Dir, "%an <%ae>"), "Tally Test <test@example.com>")
}

func TestCommit_Clean(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(filepath.Join(r.Dir, "a"), []byte("1"), 0o644))
	_, err := r.Commit(ctx, "first")
	require.NoError(t, err)

	_, err = r.Commit(ctx, "second")
	assert.ErrorIs(t, err, ErrNoChanges)
}

func TestCommit_NotARepo(t *testing.T) {
	if !Available() {
		t.Skip("git not installed")
	}
	r := Repo{Dir: t.TempDir()}
	_, err := r.Commit(context.Background(), "x")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoChanges)
}
