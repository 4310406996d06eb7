// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - shared styling for every docflow subcommand.
//
// Colors are disabled for non-TTY output and when NO_COLOR is set.
// FORCE_COLOR overrides detection.

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kyzylzhar/docflow/internal/api"
)

func init() {
	lipgloss.SetColorProfile(ColorProfile())
}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	// TitleStyle is used for command titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	// LabelStyle is used for field labels in detail output.
	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(22)

	// ValueStyle is used for regular values.
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	// HeaderStyle is used for table headers.
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	// DimStyle is used for secondary text such as hints and empty lists.
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))

	// SeparatorStyle is used for horizontal rules.
	SeparatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// statusColors mirror the badge colors of the web client.
var statusColors = map[api.ContractStatus]lipgloss.Color{
	api.StatusDraft:      lipgloss.Color("245"),
	api.StatusActive:     lipgloss.Color("42"),
	api.StatusCompleted:  lipgloss.Color("39"),
	api.StatusTerminated: lipgloss.Color("196"),
}

// =============================================================================
// RENDER HELPERS
// =============================================================================

// RenderSeparator renders a horizontal rule of the given width.
func RenderSeparator(width int) string {
	return SeparatorStyle.Render(strings.Repeat("─", max(width, 1)))
}

// RenderLabel renders a "label  value" line for detail output.
func RenderLabel(label, value string) string {
	if value == "" {
		value = "-"
	}
	return LabelStyle.Render(label+":") + ValueStyle.Render(value)
}

// RenderStatus colors a contract status label.
func RenderStatus(status api.ContractStatus, label string) string {
	color, ok := statusColors[status]
	if !ok {
		return label
	}
	return lipgloss.NewStyle().Foreground(color).Render(label)
}
