// Package gitsrc reads file contents from a git revision so a committed
// version of a file can be submitted for scanning without checking it out.
package gitsrc

import (
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNotFound is returned when the path does not exist at the revision.
var ErrNotFound = errors.New("file not found at revision")

// File is a file blob at a specific revision.
type File struct {
	Name     string // repository-relative, forward slashes
	Revision string
	Hash     string // commit hash the revision resolved to
	Size     int64
	blob     *object.File
}

// Open returns a reader over the blob contents.
func (f File) Open() (io.ReadCloser, error) {
	if f.blob == nil {
		return nil, errors.New("gitsrc: file has no blob")
	}
	return f.blob.Reader()
}

// Lookup resolves rev in the repository containing repoPath and returns the
// blob for name. A relative name is interpreted relative to repoPath, which
// may be a subdirectory of the worktree.
func Lookup(repoPath, rev, name string) (File, error) {
	if strings.ContainsRune(name, 0) || strings.ContainsRune(rev, 0) {
		return File{}, fmt.Errorf("invalid path or revision: contains null byte")
	}
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return File{}, fmt.Errorf("open repository %q: %w", repoPath, err)
	}
	rel, err := repoRelative(repo, repoPath, name)
	if err != nil {
		return File{}, err
	}
	if rev == "" {
		rev = "HEAD"
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return File{}, fmt.Errorf("resolve revision %q: %w", rev, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return File{}, fmt.Errorf("load commit %s: %w", hash, err)
	}
	blob, err := commit.File(rel)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return File{}, fmt.Errorf("%s@%s: %w", rel, rev, ErrNotFound)
		}
		return File{}, fmt.Errorf("%s@%s: %w", rel, rev, err)
	}
	return File{
		Name:     rel,
		Revision: rev,
		Hash:     hash.String(),
		Size:     blob.Size,
		blob:     blob,
	}, nil
}

func repoRelative(repo *git.Repository, base, name string) (string, error) {
	wt, err := repo.Worktree()
	if err != nil {
		if filepath.IsAbs(name) {
			return "", fmt.Errorf("absolute path needs a worktree: %w", err)
		}
		// Bare repository: names are already tree paths.
		return path.Clean(filepath.ToSlash(name)), nil
	}
	root, err := filepath.Abs(wt.Filesystem.Root())
	if err != nil {
		return "", err
	}
	abs := name
	if !filepath.IsAbs(abs) {
		dir, err := filepath.Abs(base)
		if err != nil {
			return "", err
		}
		abs = filepath.Join(dir, name)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the repository", name)
	}
	return filepath.ToSlash(rel), nil
}
