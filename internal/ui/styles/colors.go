// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the docflow TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// BRAND COLORS
// =============================================================================

// Blue - Primary accent, selections, links
var Blue = lipgloss.AdaptiveColor{Light: "#1677FF", Dark: "#4096FF"}

// Navy - Header and navigation background
var Navy = lipgloss.AdaptiveColor{Light: "#E6F4FF", Dark: "#001529"}

// Purple - Informational notifications
var Purple = lipgloss.AdaptiveColor{Light: "#722ED1", Dark: "#B37FEB"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Green - Success, active contracts, uploads
var Green = lipgloss.AdaptiveColor{Light: "#389E0D", Dark: "#73D13D"}

// Red - Errors, terminated contracts, expiring contracts
var Red = lipgloss.AdaptiveColor{Light: "#CF1322", Dark: "#FF7875"}

// Orange - Warnings, drafts, payment reminders
var Orange = lipgloss.AdaptiveColor{Light: "#D46B08", Dark: "#FFA940"}

// Gold - Unread badge
var Gold = lipgloss.AdaptiveColor{Light: "#D48806", Dark: "#FFC53D"}

// =============================================================================
// SURFACE AND TEXT COLORS
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#141414"}

// SurfaceDim - Headers, footers, toasts
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#1F1F1F"}

// Overlay - Borders and separators
var Overlay = lipgloss.AdaptiveColor{Light: "#D9D9D9", Dark: "#424242"}

// SelectionBg - Highlighted table row
var SelectionBg = lipgloss.AdaptiveColor{Light: "#BAE0FF", Dark: "#111D2C"}

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F1F1F", Dark: "#E8E8E8"}

// TextSecondary - Labels
var TextSecondary = lipgloss.AdaptiveColor{Light: "#595959", Dark: "#A6A6A6"}

// TextMuted - Hints, timestamps, read notifications
var TextMuted = lipgloss.AdaptiveColor{Light: "#8C8C8C", Dark: "#6B6B6B"}

// TextInverse - Text on colored backgrounds
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#141414"}

// =============================================================================
// DOMAIN COLORS
// =============================================================================

// StatusColor maps a contract status to its tag color. Unknown statuses are
// muted.
func StatusColor(status string) lipgloss.AdaptiveColor {
	switch status {
	case "active":
		return Green
	case "draft":
		return Orange
	case "completed":
		return Blue
	case "terminated":
		return Red
	}
	return TextMuted
}

// NotificationColor maps a notification type to its accent. Unknown types
// use the info color.
func NotificationColor(typ string) lipgloss.AdaptiveColor {
	switch typ {
	case "contract_expiry":
		return Red
	case "payment_due":
		return Orange
	case "document_expiry":
		return Blue
	case "document_upload":
		return Green
	}
	return Purple
}

// =============================================================================
// ACCESSIBILITY: Shapes alongside colors
// =============================================================================

// StatusIndicatorSet contains text indicators for status states so meaning
// never depends on color alone.
type StatusIndicatorSet struct {
	Success string
	Error   string
	Warning string
	Info    string
	Unread  string
	Read    string
}

// StatusIndicators are ASCII-only for maximum compatibility.
var StatusIndicators = StatusIndicatorSet{
	Success: "[OK]",
	Error:   "[X]",
	Warning: "[!]",
	Info:    "[i]",
	Unread:  "[*]",
	Read:    "[ ]",
}

// RenderSuccess renders a success message with its indicator.
func RenderSuccess(message string) string {
	return lipgloss.NewStyle().Foreground(Green).Bold(true).
		Render(StatusIndicators.Success + " " + message)
}

// RenderError renders an error message with its indicator.
func RenderError(message string) string {
	return lipgloss.NewStyle().Foreground(Red).Bold(true).
		Render(StatusIndicators.Error + " " + message)
}

// RenderWarning renders a warning message with its indicator.
func RenderWarning(message string) string {
	return lipgloss.NewStyle().Foreground(Orange).Bold(true).
		Render(StatusIndicators.Warning + " " + message)
}

// RenderInfo renders an info message with its indicator.
func RenderInfo(message string) string {
	return lipgloss.NewStyle().Foreground(Blue).Bold(true).
		Render(StatusIndicators.Info + " " + message)
}

// RenderStatus picks RenderSuccess or RenderError.
func RenderStatus(success bool, message string) string {
	if success {
		return RenderSuccess(message)
	}
	return RenderError(message)
}
