// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/kyzylzhar/docflow/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// SealedPrefix marks a sealed token file.
const SealedPrefix = "ENC:"

const (
	// KeySize is the AES-256 key length.
	KeySize = 32
	// SaltSize is the PBKDF2 salt length stored in the key file.
	SaltSize = 32
	// PBKDF2Iterations is the default work factor (OWASP 2023, SHA-256).
	PBKDF2Iterations = 600000
)

// keyFileSize is secret || salt.
const keyFileSize = KeySize + SaltSize

// zeroBytes overwrites key material before it is released.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// =============================================================================
// SEALER
// =============================================================================

// Sealer encrypts tokens with AES-256-GCM under a key derived from a
// per-install key file.
type Sealer struct {
	aead cipher.AEAD
}

// OpenSealer loads the key file at keyPath, creating it with fresh random
// material (0600) when missing, and derives the AES key with PBKDF2-SHA-256.
func OpenSealer(keyPath string, iterations int) (*Sealer, error) {
	if iterations < 1 {
		iterations = PBKDF2Iterations
	}

	material, err := os.ReadFile(keyPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		material = make([]byte, keyFileSize)
		if _, err := io.ReadFull(rand.Reader, material); err != nil {
			return nil, fmt.Errorf("generate key material: %w", err)
		}
		if err := util.WriteFileAtomic(keyPath, material, 0o600); err != nil {
			return nil, fmt.Errorf("write key file: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("read key file: %w", err)
	case len(material) != keyFileSize:
		return nil, fmt.Errorf("key file %s: expected %d bytes, got %d", keyPath, keyFileSize, len(material))
	}
	defer zeroBytes(material)

	key := pbkdf2.Key(material[:KeySize], material[KeySize:], iterations, KeySize, sha256.New)
	defer zeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM cipher: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal returns "ENC:" + base64(nonce || ciphertext || tag).
func (s *Sealer) Seal(token string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	out := s.aead.Seal(nonce, nonce, []byte(token), nil)
	return SealedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open reverses Seal. Any failure is reported as ErrCorrupt.
func (s *Sealer) Open(sealed string) (string, error) {
	if !IsSealed(sealed) {
		return "", fmt.Errorf("%w: missing %s prefix", ErrCorrupt, SealedPrefix)
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, SealedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	n := s.aead.NonceSize()
	if len(data) < n {
		return "", fmt.Errorf("%w: ciphertext too short", ErrCorrupt)
	}
	plain, err := s.aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return string(plain), nil
}

// IsSealed reports whether s carries the sealed prefix.
func IsSealed(s string) bool {
	return strings.HasPrefix(s, SealedPrefix)
}
