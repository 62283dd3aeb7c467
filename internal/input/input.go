package input

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	doublestar "github.com/bmatcuk/doublestar/v4"
	xxhash "github.com/cespare/xxhash/v2"

	"github.com/codeguardian/codeguardian/internal/gitsrc"
	"github.com/codeguardian/codeguardian/internal/types"
)

// MaxFileBytes is the largest blob AcceptFile will read.
const MaxFileBytes = 1 << 20

var (
	ErrSizeExceeded  = errors.New("file size must be less than 1MB")
	ErrUnknownSample = errors.New("unknown sample")
	ErrUnknownLang   = errors.New("unsupported language")
)

// Blob is a named byte source of known size, such as an uploaded file.
type Blob struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// FileBlob describes a file on disk without reading it.
func FileBlob(path string) (Blob, error) {
	st, err := os.Stat(path)
	if err != nil {
		return Blob{}, err
	}
	if st.IsDir() {
		return Blob{}, fmt.Errorf("%s is a directory", path)
	}
	return Blob{
		Name: filepath.Base(path),
		Size: st.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// BytesBlob wraps in-memory content.
func BytesBlob(name string, b []byte) Blob {
	return Blob{
		Name: name,
		Size: int64(len(b)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(b)), nil },
	}
}

// FileLoaded is the result of ReadBlob, applied with Acquirer.ApplyFile.
type FileLoaded struct {
	Name    string
	Content string
	Err     error
}

// ReadBlob reads b's content. It is the only blocking step of file input and
// touches no Acquirer state, so it may run off the owning goroutine.
func ReadBlob(ctx context.Context, b Blob) FileLoaded {
	if err := ctx.Err(); err != nil {
		return FileLoaded{Name: b.Name, Err: err}
	}
	if b.Open == nil {
		return FileLoaded{Name: b.Name, Err: errors.New("blob has no content")}
	}
	rc, err := b.Open()
	if err != nil {
		return FileLoaded{Name: b.Name, Err: err}
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, MaxFileBytes+1))
	if err != nil {
		return FileLoaded{Name: b.Name, Err: err}
	}
	if len(data) > MaxFileBytes {
		return FileLoaded{Name: b.Name, Err: fmt.Errorf("%s: %w", b.Name, ErrSizeExceeded)}
	}
	if err := ctx.Err(); err != nil {
		return FileLoaded{Name: b.Name, Err: err}
	}
	return FileLoaded{Name: b.Name, Content: string(data)}
}

// Acquirer owns the current source artifact and the last input error.
// It is not safe for concurrent use; all calls happen on the owning goroutine.
type Acquirer struct {
	artifact types.Artifact
	err      error

	readClipboard func() (string, error)
}

// NewAcquirer returns an Acquirer holding an empty artifact.
func NewAcquirer() *Acquirer {
	return &Acquirer{readClipboard: clipboard.ReadAll}
}

// Artifact returns the current artifact value.
func (a *Acquirer) Artifact() types.Artifact { return a.artifact }

// Err returns the error recorded by the last input event, if any.
func (a *Acquirer) Err() error { return a.err }

// AcceptCode replaces the code, keeping the declared language and filename.
func (a *Acquirer) AcceptCode(text string) {
	a.artifact = types.Artifact{Code: text, Language: a.artifact.Language, Filename: a.artifact.Filename}
	a.err = nil
}

// AcceptClipboard pastes the system clipboard as code.
func (a *Acquirer) AcceptClipboard() error {
	text, err := a.readClipboard()
	if err != nil {
		a.err = fmt.Errorf("read clipboard: %w", err)
		return a.err
	}
	a.AcceptCode(text)
	return nil
}

// CheckBlob enforces the upload size limit before any read happens.
func (a *Acquirer) CheckBlob(b Blob) error {
	if b.Size > MaxFileBytes {
		a.err = fmt.Errorf("%s is %d bytes: %w", b.Name, b.Size, ErrSizeExceeded)
		return a.err
	}
	return nil
}

// ApplyFile installs a completed read. A failed read records its error and
// leaves the artifact untouched.
func (a *Acquirer) ApplyFile(res FileLoaded) error {
	if res.Err != nil {
		a.err = res.Err
		return res.Err
	}
	a.artifact = types.Artifact{
		Code:     res.Content,
		Language: DetectLanguage(res.Name),
		Filename: res.Name,
	}
	a.err = nil
	return nil
}

// AcceptFile checks, reads and applies b in one call.
func (a *Acquirer) AcceptFile(ctx context.Context, b Blob) error {
	if err := a.CheckBlob(b); err != nil {
		return err
	}
	return a.ApplyFile(ReadBlob(ctx, b))
}

// AcceptRevision loads name as committed at rev in the repository at repoPath.
func (a *Acquirer) AcceptRevision(ctx context.Context, repoPath, rev, name string) error {
	f, err := gitsrc.Lookup(repoPath, rev, name)
	if err != nil {
		a.err = err
		return err
	}
	return a.AcceptFile(ctx, Blob{Name: filepath.Base(f.Name), Size: f.Size, Open: f.Open})
}

// LoadSample replaces the artifact with a built-in example.
func (a *Acquirer) LoadSample(key string) error {
	art, ok := Sample(key)
	if !ok {
		return fmt.Errorf("%q: %w (have %s)", key, ErrUnknownSample, strings.Join(SampleKeys(), ", "))
	}
	a.artifact = art
	a.err = nil
	return nil
}

// SetLanguage records a manual language choice. The empty language clears it.
func (a *Acquirer) SetLanguage(lang types.Language) error {
	if lang != "" && !KnownLanguage(lang) {
		return fmt.Errorf("%q: %w", lang, ErrUnknownLang)
	}
	a.artifact = types.Artifact{Code: a.artifact.Code, Language: lang, Filename: a.artifact.Filename}
	return nil
}

// Clear resets the artifact and error.
func (a *Acquirer) Clear() {
	a.artifact = types.Artifact{}
	a.err = nil
}

// Stats returns the line and character counts of the current code.
func (a *Acquirer) Stats() (lines, chars int) {
	code := a.artifact.Code
	if code == "" {
		return 0, 0
	}
	return strings.Count(code, "\n") + 1, utf8.RuneCountInString(code)
}

// Fingerprint is a short content hash of the current code.
func (a *Acquirer) Fingerprint() string {
	return Fingerprint(a.artifact.Code)
}

// Fingerprint hashes code to 16 hex digits.
func Fingerprint(code string) string {
	if code == "" {
		return "0000000000000000"
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(code))
}

// ExpandGlob returns files under root matching pattern that have an
// accepted upload extension, sorted. A pattern without glob metacharacters
// is returned as-is so the caller sees the usual stat error for a bad path.
func ExpandGlob(root, pattern string) ([]string, error) {
	if !strings.ContainsAny(pattern, "*?[{") {
		if filepath.IsAbs(pattern) {
			return []string{pattern}, nil
		}
		return []string{filepath.Join(root, pattern)}, nil
	}
	pattern = filepath.ToSlash(pattern)
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	if filepath.IsAbs(filepath.FromSlash(pattern)) {
		base, rest := doublestar.SplitPattern(pattern)
		root, pattern = filepath.FromSlash(base), rest
	}
	matches, err := doublestar.Glob(os.DirFS(root), strings.TrimPrefix(pattern, "./"), doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	var out []string
	for _, m := range matches {
		if Accepted(m) {
			out = append(out, filepath.Join(root, filepath.FromSlash(m)))
		}
	}
	sort.Strings(out)
	return out, nil
}
