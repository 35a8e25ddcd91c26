// Package memory is a small persistent key-value store for values the CLI
// remembers between runs, such as the last .env file a user copied from.
// Values are encrypted at rest with XChaCha20-Poly1305; the key lives in a
// separate 0600 file next to the store.
package memory

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"gopkg.in/yaml.v3"

	"github.com/reliverse/reliverse/internal/defs"
	"github.com/reliverse/reliverse/internal/fsutil"
)

// Sentinel errors for the memory package.
var (
	// ErrCorrupt means a stored value could not be decrypted.
	ErrCorrupt = errors.New("memory: value cannot be decrypted")

	// ErrInvalidKeyFile means the key file exists but has the wrong size.
	ErrInvalidKeyFile = errors.New("memory: invalid key file")
)

// fileFormat is the on-disk YAML layout.
type fileFormat struct {
	Version int               `yaml:"version"`
	Entries map[string]string `yaml:"entries"`
}

const formatVersion = 1

// Store is a file-backed encrypted key-value store. It is safe for
// concurrent use within one process.
type Store struct {
	mu       sync.Mutex
	path     string
	keyPath  string
	aeadKey  []byte
	entries  map[string]string
	loadOnce bool
}

// Open returns the store in dir, creating dir and the key file on first use.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("memory: create %s: %w", dir, err)
	}
	s := &Store{
		path:    filepath.Join(dir, defs.MemoryFile),
		keyPath: filepath.Join(dir, defs.MemoryKeyFile),
	}
	key, err := loadOrCreateKey(s.keyPath)
	if err != nil {
		return nil, err
	}
	s.aeadKey = key
	return s, nil
}

func loadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	switch {
	case err == nil:
		if len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("%w: %s has %d bytes", ErrInvalidKeyFile, path, len(key))
		}
		return key, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("memory: read key: %w", err)
	}

	key = make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("memory: generate key: %w", err)
	}
	if err := fsutil.WriteFileAtomic(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("memory: write key: %w", err)
	}
	return key, nil
}

// load reads the store file once. Callers hold s.mu.
func (s *Store) load() error {
	if s.loadOnce {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.entries = make(map[string]string)
		s.loadOnce = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("memory: read %s: %w", s.path, err)
	}

	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("memory: parse %s: %w", s.path, err)
	}
	if f.Entries == nil {
		f.Entries = make(map[string]string)
	}
	s.entries = f.Entries
	s.loadOnce = true
	return nil
}

func (s *Store) flush() error {
	data, err := yaml.Marshal(fileFormat{Version: formatVersion, Entries: s.entries})
	if err != nil {
		return fmt.Errorf("memory: encode: %w", err)
	}
	if err := fsutil.WriteFileAtomic(s.path, data, 0o600); err != nil {
		return fmt.Errorf("memory: write %s: %w", s.path, err)
	}
	return nil
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return "", false, err
	}
	sealed, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	v, err := s.open(key, sealed)
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set stores value under key and persists the store.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}
	sealed, err := s.seal(key, value)
	if err != nil {
		return err
	}
	s.entries[key] = sealed
	return s.flush()
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}
	if _, ok := s.entries[key]; !ok {
		return nil
	}
	delete(s.entries, key)
	return s.flush()
}

// seal encrypts value with key as associated data, so a ciphertext cannot
// be moved to another key.
func (s *Store) seal(key, value string) (string, error) {
	aead, err := chacha20poly1305.NewX(s.aeadKey)
	if err != nil {
		return "", fmt.Errorf("memory: cipher: %w", err)
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(value)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("memory: nonce: %w", err)
	}
	out := aead.Seal(nonce, nonce, []byte(value), []byte(key))
	return base64.StdEncoding.EncodeToString(out), nil
}

func (s *Store) open(key, sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrCorrupt, key)
	}
	aead, err := chacha20poly1305.NewX(s.aeadKey)
	if err != nil {
		return "", fmt.Errorf("memory: cipher: %w", err)
	}
	if len(raw) < aead.NonceSize() {
		return "", fmt.Errorf("%w: %s", ErrCorrupt, key)
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrCorrupt, key)
	}
	return string(plain), nil
}
