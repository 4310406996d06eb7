// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kyzylzhar/docflow/internal/app"
)

// Run starts the interactive program and blocks until the user quits or
// ctx is cancelled. The token watch runs for the program's lifetime.
func Run(ctx context.Context, a *app.App, opts ...Option) error {
	if err := a.WatchToken(ctx); err != nil {
		a.Log.Warn("token watch unavailable", "error", err)
	}

	m := New(ctx, a, opts...)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	m.cancel()
	m.unsubscribe()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("run terminal UI: %w", err)
	}
	return nil
}
