// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testIterations keeps PBKDF2 fast in tests.
const testIterations = 1000

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	store := NewFileStore(path)

	token, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok, "missing file is absent, not an error")
	assert.Empty(t, token)

	require.NoError(t, store.Save("abc"))
	token, ok, err = store.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	require.NoError(t, store.Save("def"))
	token, _, _ = store.Load()
	assert.Equal(t, "def", token, "save overwrites")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	require.NoError(t, store.Clear())
	_, ok, err = store.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	// Clearing an absent token is a no-op.
	require.NoError(t, store.Clear())
}

func TestFileStore_SaveRejectsEmpty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "token"))
	assert.ErrorIs(t, store.Save("  "), ErrEmptyToken)
}

func TestFileStore_BlankFileIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0o600))

	_, ok, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_Sealed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token")
	keyPath := filepath.Join(dir, "token.key")

	sealer, err := OpenSealer(keyPath, testIterations)
	require.NoError(t, err)
	store := NewFileStore(path, WithSealer(sealer))

	require.NoError(t, store.Save("secret-token"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), SealedPrefix))
	assert.NotContains(t, string(raw), "secret-token")

	// Reopening with the same key file reads the token back.
	sealer2, err := OpenSealer(keyPath, testIterations)
	require.NoError(t, err)
	token, ok, err := NewFileStore(path, WithSealer(sealer2)).Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "secret-token", token)
}

func TestFileStore_SealedReadsLegacyPlaintext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(path, []byte("plain\n"), 0o600))

	sealer, err := OpenSealer(filepath.Join(dir, "token.key"), testIterations)
	require.NoError(t, err)

	token, ok, err := NewFileStore(path, WithSealer(sealer)).Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "plain", token)
}

func TestFileStore_Corrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token")

	sealer, err := OpenSealer(filepath.Join(dir, "token.key"), testIterations)
	require.NoError(t, err)
	require.NoError(t, NewFileStore(path, WithSealer(sealer)).Save("abc"))

	t.Run("different key", func(t *testing.T) {
		other, err := OpenSealer(filepath.Join(dir, "other.key"), testIterations)
		require.NoError(t, err)
		_, _, err = NewFileStore(path, WithSealer(other)).Load()
		assert.True(t, errors.Is(err, ErrCorrupt), "got %v", err)
	})

	t.Run("sealing disabled", func(t *testing.T) {
		_, _, err := NewFileStore(path).Load()
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("garbage", func(t *testing.T) {
		garbage := filepath.Join(dir, "garbage")
		require.NoError(t, os.WriteFile(garbage, []byte(SealedPrefix+"!!!not-base64"), 0o600))
		_, _, err := NewFileStore(garbage, WithSealer(sealer)).Load()
		assert.ErrorIs(t, err, ErrCorrupt)
	})
}

func TestOpenSealer_BadKeyFile(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "token.key")
	require.NoError(t, os.WriteFile(keyPath, []byte("short"), 0o600))

	_, err := OpenSealer(keyPath, testIterations)
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()

	_, ok, err := m.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Save("abc"))
	token, ok, _ := m.Load()
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	require.NoError(t, m.Clear())
	require.NoError(t, m.Clear())
	_, ok, _ = m.Load()
	assert.False(t, ok)
}

func TestFileStore_Watch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token")
	store := NewFileStore(path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := store.Watch(ctx)
	require.NoError(t, err)

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("x"), 0o600))

	require.NoError(t, store.Save("abc"))
	waitFor(t, changes, TokenWritten)

	require.NoError(t, store.Clear())
	waitFor(t, changes, TokenRemoved)

	cancel()
	select {
	case _, ok := <-changes:
		for ok {
			_, ok = <-changes
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func waitFor(t *testing.T, ch <-chan Change, kind ChangeKind) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case c, ok := <-ch:
			require.True(t, ok, "watch channel closed early")
			if c.Kind == kind {
				return
			}
		case <-deadline:
			t.Fatalf("no %s event within deadline", kind)
		}
	}
}
