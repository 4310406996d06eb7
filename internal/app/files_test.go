// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "report.pdf", "report.pdf"},
		{"cyrillic", "Договор-7.pdf", "Договор-7.pdf"},
		{"parent path", "../../etc/passwd", "passwd"},
		{"windows path", `C:\Users\x\file.docx`, "file.docx"},
		{"empty", "", "fallback"},
		{"dot dot", "..", "fallback"},
		{"hidden", ".bashrc", "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeFilename(tt.in, "fallback"))
		})
	}
}

func TestDownloadContract_SavesUnderServerName(t *testing.T) {
	a, _ := newTestApp(t)
	require.NoError(t, a.Auth.Login(context.Background(), "admin@kyzylzhar.kz", "admin123"))

	dir := t.TempDir()
	path, err := a.DownloadContract(context.Background(), 7, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Договор-7.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 contract", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestDownloadContract_FailureLeavesNothing(t *testing.T) {
	a, _ := newTestApp(t)

	dir := t.TempDir()
	_, err := a.DownloadContract(context.Background(), 7, dir)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
