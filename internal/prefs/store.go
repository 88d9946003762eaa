package prefs

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Store errors.
var (
	// ErrNotFound indicates the preference does not exist.
	ErrNotFound = errors.New("prefs: preference not found")

	// ErrTypeMismatch indicates the preference holds a different type.
	ErrTypeMismatch = errors.New("prefs: type mismatch")

	// ErrInvalidKey indicates an empty preference name.
	ErrInvalidKey = errors.New("prefs: invalid key")
)

// Store is a typed preference store.
type Store interface {
	GetBool(key string) (bool, error)
	SetBool(key string, value bool) error
	GetString(key string) (string, error)
	SetString(key string, value string) error
	GetLong(key string) (int64, error)
	SetLong(key string, value int64) error
	Has(key string) bool
	Delete(key string) error
	Keys() []string
}

// MemoryStore keeps preferences in memory. It is the base of FileStore and
// is used directly in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]any)}
}

func (s *MemoryStore) get(key string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return v, nil
}

func (s *MemoryStore) set(key string, value any) error {
	if key == "" {
		return ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// GetBool returns a boolean preference.
func (s *MemoryStore) GetBool(key string) (bool, error) {
	v, err := s.get(key)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s is %T, not bool", ErrTypeMismatch, key, v)
	}
	return b, nil
}

// SetBool stores a boolean preference.
func (s *MemoryStore) SetBool(key string, value bool) error {
	return s.set(key, value)
}

// GetString returns a string preference.
func (s *MemoryStore) GetString(key string) (string, error) {
	v, err := s.get(key)
	if err != nil {
		return "", err
	}
	str, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T, not string", ErrTypeMismatch, key, v)
	}
	return str, nil
}

// SetString stores a string preference.
func (s *MemoryStore) SetString(key string, value string) error {
	return s.set(key, value)
}

// GetLong returns an integer preference.
func (s *MemoryStore) GetLong(key string) (int64, error) {
	v, err := s.get(key)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("%w: %s is %T, not long", ErrTypeMismatch, key, v)
	}
}

// SetLong stores an integer preference.
func (s *MemoryStore) SetLong(key string, value int64) error {
	return s.set(key, value)
}

// Has reports whether the preference exists.
func (s *MemoryStore) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok
}

// Delete removes a preference. Deleting a missing key is not an error.
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Keys returns all preference names in sorted order.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// snapshot copies the current values.
func (s *MemoryStore) snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// replace swaps in a new value table, keeping only supported types.
func (s *MemoryStore) replace(values map[string]any) {
	clean := make(map[string]any, len(values))
	for k, v := range values {
		switch n := v.(type) {
		case bool, string, int64:
			clean[k] = n
		case int:
			clean[k] = int64(n)
		}
	}
	s.mu.Lock()
	s.values = clean
	s.mu.Unlock()
}
