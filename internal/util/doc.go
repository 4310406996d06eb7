// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small filesystem and text helpers shared by docflow
// packages.
//
// # Files
//
//   - WriteFileAtomic: temp file + fsync + rename, used for the token file,
//     the token key and the config file
//   - DataDir: the ~/.docflow directory all local state lives in
//
// # Text
//
//   - Truncate / PadRight: display-width aware helpers for table cells.
//     Client names and addresses are mostly Cyrillic, so byte or rune
//     counting is not enough.
package util
