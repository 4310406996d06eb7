// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the docflow TUI.

# Components

Header (header.go) - Title bar with brand, navigation tabs, the signed-in
user and an unread-notification badge.

ToastManager (toast.go) - Non-blocking notifications that auto-dismiss.
Errors stay longer than successes so backend details can be read.

# Helpers

Truncate, Pad and Wrap (helpers.go) measure text in terminal cells with
go-runewidth, so Cyrillic names and addresses line up in tables.

# Usage

	header := components.NewHeader(theme, "Кызыл Жар", tabs)
	header.SetUser(user.FullName, loc.Role(string(user.Role)))
	header.SetUnread(poller.UnreadCount())

	toasts := components.NewToastManager()
	toasts.AddError(api.DetailOf(err))
*/
package components
