// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package tui is the interactive docflow client built on Bubble Tea.

# Key Components

## Model (model.go)

The root model owns the rendered route and every view's state. Navigation
always goes through the gate: a request for a protected view while the
session is being restored shows the loading screen, and without a session
it shows the login form. The requested route is remembered and retried when
the session settles, so an expired session returns to the same page after
signing in again.

## Session events (messages.go)

Auth controller transitions and poller updates arrive as messages. Each
wait command re-arms itself after delivery. Forced logouts (401 from any
resource, token removed by another process) show a toast and land on the
login form.

## Views

  - login.go: email and password inputs, password echo disabled
  - dashboard.go: stat cards, expiry alert, recent lists, profile page
  - contracts.go: contract table with status filter
  - detail.go: contract summary rendered as markdown with glamour
  - documents.go: document table with download and delete
  - notifications.go: poller-backed list with unread markers

# Usage

	a, _ := app.New(cfg, app.WithLogger(log))
	defer a.Close()
	err := tui.Run(ctx, a)
*/
package tui
