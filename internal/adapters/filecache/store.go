package filecache

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/atvirokodosprendimai/validate-json-schema/internal/core/domain"
)

const (
	appDirName     = "validate-json-schema"
	schemasDirName = "schemas"
	stateFileName  = "state.sqlite"
)

// DefaultDir resolves <user cache dir>/validate-json-schema/schemas.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", &domain.CacheDirectoryError{Op: "resolve", Err: err}
	}
	return filepath.Join(base, appDirName, schemasDirName), nil
}

// DefaultStatePath resolves the state database next to the schemas directory,
// so clearing the cache does not remove it.
func DefaultStatePath() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", &domain.CacheDirectoryError{Op: "resolve", Err: err}
	}
	return filepath.Join(base, appDirName, stateFileName), nil
}

// Store keeps one file per cache key under dir.
type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(key domain.CacheKey) string {
	return filepath.Join(s.dir, string(key))
}

func (s *Store) Get(key domain.CacheKey) (string, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, &domain.CacheDirectoryError{Op: "read", Path: s.path(key), Err: err}
	}
	return string(data), true, nil
}

func (s *Store) Has(key domain.CacheKey) (bool, error) {
	_, err := os.Stat(s.path(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, &domain.CacheDirectoryError{Op: "read", Path: s.path(key), Err: err}
}

// Put writes schemaText to a temporary file and renames it into place, so a
// failed write never leaves a truncated entry behind.
func (s *Store) Put(key domain.CacheKey, schemaText string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return &domain.CacheDirectoryError{Op: "create", Path: s.dir, Err: err}
	}

	tmp, err := os.CreateTemp(s.dir, "."+string(key)+".*.tmp")
	if err != nil {
		return &domain.CacheDirectoryError{Op: "write", Path: s.dir, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(schemaText); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &domain.CacheDirectoryError{Op: "write", Path: tmpName, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &domain.CacheDirectoryError{Op: "write", Path: tmpName, Err: err}
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return &domain.CacheDirectoryError{Op: "write", Path: s.path(key), Err: err}
	}
	return nil
}

// Clear removes the whole cache tree. A missing directory is not an error.
func (s *Store) Clear() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return &domain.CacheDirectoryError{Op: "remove", Path: s.dir, Err: err}
	}
	return nil
}
