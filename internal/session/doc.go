// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session persists the bearer token between docflow runs.
//
// The store is a single slot: Load, Save and Clear operate on one token and
// perform no validation. Validation against the backend is the auth
// controller's job.
//
// # Key Types
//
//   - Store: the single-slot interface used by the api and auth packages
//   - FileStore: token file under ~/.docflow, written atomically with 0600
//   - MemoryStore: process-local store for tests and ephemeral runs
//   - Sealer: optional AES-256-GCM sealing of the token at rest
//
// # Usage
//
//	sealer, err := session.OpenSealer(cfg.Session.KeyPath, session.PBKDF2Iterations)
//	if err != nil {
//	    return err
//	}
//	store := session.NewFileStore(cfg.Session.TokenPath, session.WithSealer(sealer))
//	token, ok, err := store.Load()
//
// A FileStore can also be watched for changes made by other docflow
// processes, so a running TUI notices `docflow logout` in another terminal.
package session
