package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// FileStore is a Store persisted as a flat TOML table. Every Set and
// Delete rewrites the file through a temporary file and rename.
type FileStore struct {
	*MemoryStore

	path string

	// writeMu serializes writes to the file.
	writeMu sync.Mutex
}

// Open loads the store at path. A missing file yields an empty store that
// is created on the first write.
func Open(path string) (*FileStore, error) {
	s := &FileStore{MemoryStore: NewMemoryStore(), path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Reload re-reads the backing file, discarding in-memory values.
func (s *FileStore) Reload() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.replace(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading prefs %s: %w", s.path, err)
	}

	values := make(map[string]any)
	if err := toml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parsing prefs %s: %w", s.path, err)
	}
	s.replace(values)
	return nil
}

// SetBool stores a boolean preference and writes the file.
func (s *FileStore) SetBool(key string, value bool) error {
	if err := s.MemoryStore.SetBool(key, value); err != nil {
		return err
	}
	return s.flush()
}

// SetString stores a string preference and writes the file.
func (s *FileStore) SetString(key string, value string) error {
	if err := s.MemoryStore.SetString(key, value); err != nil {
		return err
	}
	return s.flush()
}

// SetLong stores an integer preference and writes the file.
func (s *FileStore) SetLong(key string, value int64) error {
	if err := s.MemoryStore.SetLong(key, value); err != nil {
		return err
	}
	return s.flush()
}

// Delete removes a preference and writes the file.
func (s *FileStore) Delete(key string) error {
	if err := s.MemoryStore.Delete(key); err != nil {
		return err
	}
	return s.flush()
}

func (s *FileStore) flush() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	data, err := toml.Marshal(s.snapshot())
	if err != nil {
		return fmt.Errorf("encoding prefs: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating prefs dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prefs-*.toml")
	if err != nil {
		return fmt.Errorf("writing prefs: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing prefs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing prefs: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing prefs: %w", err)
	}
	return nil
}
