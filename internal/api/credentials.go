// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "sync"

// Credentials holds the bearer token attached to outgoing requests.
// The auth controller writes it; the pipeline reads it and clears it on 401.
type Credentials struct {
	mu    sync.RWMutex
	token string
}

// NewCredentials returns empty credentials.
func NewCredentials() *Credentials {
	return &Credentials{}
}

// Set replaces the token.
func (c *Credentials) Set(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current token, if any.
func (c *Credentials) Token() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token, c.token != ""
}

// Clear drops the token.
func (c *Credentials) Clear() {
	c.Set("")
}
