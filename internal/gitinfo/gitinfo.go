// Package gitinfo reads page history from the git repository holding the
// site sources.
package gitinfo

import (
	stderrors "errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// ErrNoHistory is returned for files without any commit.
var ErrNoHistory = stderrors.New("no commits touch this file")

// Repo answers history questions about files of one working tree.
// Results are cached; it is safe for concurrent use.
type Repo struct {
	repo *git.Repository
	root string

	mu      sync.Mutex
	lastmod map[string]time.Time
}

// Open finds the repository containing dir, walking up parent folders.
func Open(dir string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryGit, "open repository").
			WithContext("path", dir).
			Build()
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryGit, "repository has no worktree").
			WithContext("path", dir).
			Build()
	}
	return &Repo{
		repo:    repo,
		root:    wt.Filesystem.Root(),
		lastmod: make(map[string]time.Time),
	}, nil
}

// Root returns the working tree folder.
func (r *Repo) Root() string {
	return r.root
}

// Head returns the commit hash HEAD points at.
func (r *Repo) Head() (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryGit, "resolve HEAD").Build()
	}
	return ref.Hash().String(), nil
}

// LastModified returns the committer time of the newest commit touching
// path, an absolute path or one relative to the working tree.
func (r *Repo) LastModified(path string) (time.Time, error) {
	rel, err := r.relPath(path)
	if err != nil {
		return time.Time{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.lastmod[rel]; ok {
		return t, nil
	}

	iter, err := r.repo.Log(&git.LogOptions{FileName: &rel, Order: git.LogOrderCommitterTime})
	if err != nil {
		return time.Time{}, errors.WrapError(err, errors.CategoryGit, "read history").
			WithContext("file", rel).
			Build()
	}
	defer iter.Close()

	commit, err := iter.Next()
	if err != nil || commit == nil {
		return time.Time{}, ErrNoHistory
	}
	t := commit.Committer.When
	r.lastmod[rel] = t
	return t, nil
}

func (r *Repo) relPath(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(filepath.Clean(path)), nil
	}
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryGit, "file is outside the repository").
			WithContext("file", path).
			Build()
	}
	return filepath.ToSlash(rel), nil
}
