package gitinfo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

func commitFile(t *testing.T, repo *git.Repository, root, name, content string, when time.Time) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add(name)
	require.NoError(t, err)
	sig := &object.Signature{Name: "Test User", Email: "test@example.com", When: when}
	_, err = w.Commit("update "+name, &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)
}

func TestRepo_LastModified(t *testing.T) {
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)

	t1 := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	t2 := t1.Add(48 * time.Hour)
	commitFile(t, repo, root, "content/a.md", "# A", t1)
	commitFile(t, repo, root, "content/b.md", "# B", t1.Add(time.Hour))
	commitFile(t, repo, root, "content/a.md", "# A2", t2)

	r, err := Open(filepath.Join(root, "content"))
	require.NoError(t, err)

	got, err := r.LastModified(filepath.Join(root, "content", "a.md"))
	require.NoError(t, err)
	assert.True(t, got.Equal(t2), got)

	got, err = r.LastModified("content/b.md")
	require.NoError(t, err)
	assert.True(t, got.Equal(t1.Add(time.Hour)), got)

	head, err := r.Head()
	require.NoError(t, err)
	assert.Len(t, head, 40)
}

func TestRepo_LastModified_Untracked(t *testing.T) {
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)
	commitFile(t, repo, root, "a.md", "# A", time.Now())

	r, err := Open(root)
	require.NoError(t, err)
	_, err = r.LastModified("missing.md")
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestOpen_NotARepository(t *testing.T) {
	_, err := Open(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryGit))
}
