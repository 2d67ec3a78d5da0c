// Package storage holds uploaded post images.
package storage

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

var allowedExtensions = map[string]struct{}{
	"txt":  {},
	"pdf":  {},
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
}

// ErrInvalidFilename is returned by Save for names that are empty or not sanitized.
var ErrInvalidFilename = errors.New("invalid upload filename")

// AllowedFile reports whether name has an allow-listed extension.
func AllowedFile(name string) bool {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(name[i+1:])]
	return ok
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename flattens a client supplied name into a single safe path
// component. It may return "" (for example for "../../").
func SecureFilename(name string) string {
	for _, sep := range []string{"/", "\\"} {
		name = strings.ReplaceAll(name, sep, " ")
	}
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// Store writes uploads into a directory of an afero filesystem.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore roots a store at dir on fs, creating the directory if needed.
func NewStore(fs afero.Fs, dir string) (*Store, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload folder %q: %w", dir, err)
	}
	return &Store{fs: fs, dir: dir}, nil
}

// NewOSStore is a Store on the host filesystem.
func NewOSStore(dir string) (*Store, error) {
	return NewStore(afero.NewOsFs(), dir)
}

// Save writes r to <dir>/<name>, replacing any existing file of that name.
// name must already be sanitized.
func (s *Store) Save(name string, r io.Reader) error {
	if name == "" || name != SecureFilename(name) {
		return ErrInvalidFilename
	}
	f, err := s.fs.OpenFile(path.Join(s.dir, name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open upload %q: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("write upload %q: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close upload %q: %w", name, err)
	}
	return nil
}

// Exists reports whether a file of that name has been saved.
func (s *Store) Exists(name string) bool {
	ok, err := afero.Exists(s.fs, path.Join(s.dir, name))
	return err == nil && ok
}

// FileSystem serves the upload folder over HTTP.
func (s *Store) FileSystem() http.FileSystem {
	return afero.NewHttpFs(s.fs).Dir(s.dir)
}
