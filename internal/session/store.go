// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kyzylzhar/docflow/internal/logging"
	"github.com/kyzylzhar/docflow/internal/util"
)

var (
	// ErrCorrupt means a token file exists but cannot be read back: a sealed
	// token without a usable key, or a tampered ciphertext.
	ErrCorrupt = errors.New("stored token is unreadable")

	// ErrEmptyToken is returned by Save for a blank token.
	ErrEmptyToken = errors.New("token is empty")
)

// Store is durable single-slot storage of the bearer token.
type Store interface {
	// Load returns the persisted token. A missing token is ("", false, nil).
	Load() (string, bool, error)
	// Save persists token, replacing any previous value.
	Save(token string) error
	// Clear removes the persisted token. Clearing nothing is not an error.
	Clear() error
}

// =============================================================================
// FILE STORE
// =============================================================================

// FileStore keeps the token in a single file.
type FileStore struct {
	mu     sync.Mutex
	path   string
	sealer *Sealer
	log    *logging.Logger
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithSealer seals tokens at rest. Plaintext files written before sealing
// was enabled are still readable.
func WithSealer(s *Sealer) FileOption {
	return func(fs *FileStore) { fs.sealer = s }
}

// WithLogger sets the logger used by Watch.
func WithLogger(l *logging.Logger) FileOption {
	return func(fs *FileStore) { fs.log = l }
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string, opts ...FileOption) *FileStore {
	fs := &FileStore{path: filepath.Clean(path), log: logging.Discard()}
	for _, opt := range opts {
		opt(fs)
	}
	return fs
}

// Path returns the token file path.
func (s *FileStore) Path() string { return s.path }

// Sealed reports whether tokens are written sealed.
func (s *FileStore) Sealed() bool { return s.sealer != nil }

func (s *FileStore) Load() (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read token: %w", err)
	}

	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return "", false, nil
	}

	if IsSealed(raw) {
		if s.sealer == nil {
			return "", false, fmt.Errorf("%w: token is sealed but sealing is disabled", ErrCorrupt)
		}
		token, err := s.sealer.Open(raw)
		if err != nil {
			return "", false, err
		}
		return token, true, nil
	}
	return raw, true, nil
}

func (s *FileStore) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := token
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(token)
		if err != nil {
			return err
		}
		out = sealed
	}
	if err := util.WriteFileAtomic(s.path, []byte(out+"\n"), 0o600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := util.RemoveIfExists(s.path); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// =============================================================================
// MEMORY STORE
// =============================================================================

// MemoryStore keeps the token in memory only.
type MemoryStore struct {
	mu    sync.Mutex
	token string
	ok    bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.ok, nil
}

func (m *MemoryStore) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.ok = token, true
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.ok = "", false
	return nil
}
