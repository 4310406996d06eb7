// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kyzylzhar/docflow/internal/api"
)

type downloader func(ctx context.Context, id int64, w io.Writer) (api.Download, error)

// DownloadContract saves the contract file into dir and returns its path.
// An empty dir means the working directory.
func (a *App) DownloadContract(ctx context.Context, id int64, dir string) (string, error) {
	return save(ctx, a.Client.Contracts.Download, id, dir, fmt.Sprintf("contract_%d", id))
}

// DownloadDocument saves the document file into dir and returns its path.
func (a *App) DownloadDocument(ctx context.Context, id int64, dir string) (string, error) {
	return save(ctx, a.Client.Documents.Download, id, dir, fmt.Sprintf("document_%d", id))
}

// save streams into a temp file next to the target and renames it once the
// body is complete, so a failed download never leaves a partial file.
func save(ctx context.Context, fetch downloader, id int64, dir, fallback string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}

	f, err := os.CreateTemp(dir, ".download-")
	if err != nil {
		return "", fmt.Errorf("create download file: %w", err)
	}
	tmp := f.Name()
	done := false
	defer func() {
		if !done {
			f.Close()
			os.Remove(tmp)
		}
	}()

	d, err := fetch(ctx, id, f)
	if err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close download file: %w", err)
	}

	path := filepath.Join(dir, SafeFilename(d.Filename, fallback))
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("save download: %w", err)
	}
	done = true
	return path, nil
}

// SafeFilename reduces a server-suggested name to its base component.
// Empty, hidden or parent-relative names become fallback.
func SafeFilename(name, fallback string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" || name == "" || strings.HasPrefix(name, ".") {
		return fallback
	}
	return name
}
