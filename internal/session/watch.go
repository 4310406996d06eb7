// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind classifies a token file change.
type ChangeKind int

const (
	// TokenWritten: the file was created or replaced.
	TokenWritten ChangeKind = iota
	// TokenRemoved: the file was deleted or moved away.
	TokenRemoved
)

func (k ChangeKind) String() string {
	if k == TokenRemoved {
		return "removed"
	}
	return "written"
}

// Change is one observed modification of the token file.
type Change struct {
	Kind ChangeKind
	Path string
}

// Watch reports changes to the token file until ctx is cancelled, then
// closes the returned channel. The parent directory is watched rather than
// the file itself because atomic saves replace the inode.
func (s *FileStore) Watch(ctx context.Context) (<-chan Change, error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create token directory: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	out := make(chan Change, 4)
	go s.processEvents(ctx, w, out)
	return out, nil
}

func (s *FileStore) processEvents(ctx context.Context, w *fsnotify.Watcher, out chan<- Change) {
	defer close(out)
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}

			var change Change
			switch {
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				change = Change{Kind: TokenRemoved, Path: s.path}
			case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
				change = Change{Kind: TokenWritten, Path: s.path}
			default:
				continue
			}
			s.log.Debug("token file changed", "kind", change.Kind.String())

			select {
			case out <- change:
			case <-ctx.Done():
				return
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.log.Warn("token watcher error", "error", err)
		}
	}
}
