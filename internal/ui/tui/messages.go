// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kyzylzhar/docflow/internal/api"
	"github.com/kyzylzhar/docflow/internal/app"
	"github.com/kyzylzhar/docflow/internal/auth"
)

// =============================================================================
// SESSION MESSAGES
// =============================================================================

// authEventMsg carries one controller transition into the program.
type authEventMsg auth.Event

// pollUpdateMsg: the poller's list or loading state changed.
type pollUpdateMsg struct{}

// restoreDoneMsg: the startup token check finished. The outcome arrives as
// an authEventMsg; this only reports a failure for the log.
type restoreDoneMsg struct {
	err error
}

// loginDoneMsg: a login attempt finished.
type loginDoneMsg struct {
	err error
}

// =============================================================================
// DATA MESSAGES
// =============================================================================

// Every load carries the navigation sequence it was started for. Results
// for a view the user already left are dropped.

type dashboardMsg struct {
	seq     int
	summary *app.Summary
	err     error
}

type contractsMsg struct {
	seq       int
	contracts []api.Contract
	err       error
}

type contractMsg struct {
	seq       int
	contract  *api.Contract
	documents []api.Document
	err       error
}

type documentsMsg struct {
	seq       int
	documents []api.Document
	err       error
}

// actionDoneMsg reports a mutation or download. ok is shown as a success
// toast; reload refetches the current view and back returns to the
// contract list.
type actionDoneMsg struct {
	ok     string
	err    error
	reload bool
	back   bool
}

// =============================================================================
// COMMANDS
// =============================================================================

// waitForAuth delivers the next controller event. It returns nil once the
// subscription is closed, which ends the loop.
func waitForAuth(events <-chan auth.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return authEventMsg(ev)
	}
}

// waitForPoll delivers the next poller update signal.
func waitForPoll(ctx context.Context, updates <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-updates:
			return pollUpdateMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}
