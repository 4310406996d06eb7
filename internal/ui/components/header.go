// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kyzylzhar/docflow/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Tab is one navigation entry.
type Tab struct {
	Key   string // shortcut shown before the label
	Label string
}

// Header is the title bar: brand, navigation tabs, user and unread badge.
type Header struct {
	Brand  string
	Tabs   []Tab
	Active int // index into Tabs, -1 for none
	User   string
	Role   string
	Unread int
	Width  int
	theme  *styles.Theme
}

// NewHeader creates a Header.
func NewHeader(theme *styles.Theme, brand string, tabs []Tab) *Header {
	return &Header{
		Brand:  brand,
		Tabs:   tabs,
		Active: -1,
		Width:  80,
		theme:  theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) { h.Width = width }

// SetUser updates the signed-in user shown on the right.
func (h *Header) SetUser(name, role string) {
	h.User = name
	h.Role = role
}

// SetUnread updates the badge count.
func (h *Header) SetUnread(n int) { h.Unread = n }

// View renders the header on one line. In narrow layouts tab labels are
// reduced to their shortcut keys.
func (h *Header) View() string {
	t := h.theme
	width := h.Width
	if width < 40 {
		width = 40
	}
	narrow := width < 100

	left := t.HeaderBrand.Render(h.Brand)

	tabs := make([]string, 0, len(h.Tabs))
	for i, tab := range h.Tabs {
		label := tab.Key + " " + tab.Label
		if narrow {
			label = tab.Key
		}
		style := t.Tab
		if i == h.Active {
			style = t.TabActive
		}
		tabs = append(tabs, style.Render(label))
	}
	nav := strings.Join(tabs, "")

	var right []string
	if h.Unread > 0 {
		right = append(right, t.Badge.Render(styles.StatusIndicators.Unread+" "+strconv.Itoa(h.Unread)))
	}
	if h.User != "" {
		user := t.HeaderUser.Render(Truncate(h.User, 24))
		if h.Role != "" && !narrow {
			user += " " + t.HeaderMuted.Render("("+h.Role+")")
		}
		right = append(right, user)
	}
	rightText := strings.Join(right, " ")

	inner := width - 2
	gap := inner - lipgloss.Width(left) - lipgloss.Width(nav) - lipgloss.Width(rightText) - 2
	if gap < 1 {
		gap = 1
	}
	line := left + "  " + nav + strings.Repeat(" ", gap) + rightText
	return t.Header.Width(width).MaxWidth(width).Render(line)
}
