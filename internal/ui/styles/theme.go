// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER AND NAVIGATION
	// ==========================================================================

	Header      lipgloss.Style
	HeaderBrand lipgloss.Style
	HeaderUser  lipgloss.Style
	HeaderMuted lipgloss.Style
	Badge       lipgloss.Style
	Tab         lipgloss.Style
	TabActive   lipgloss.Style

	// ==========================================================================
	// CONTENT
	// ==========================================================================

	Container lipgloss.Style
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Muted     lipgloss.Style
	Card      lipgloss.Style
	StatLabel lipgloss.Style
	StatValue lipgloss.Style

	// ==========================================================================
	// LOGIN FORM
	// ==========================================================================

	LoginBox     lipgloss.Style
	LoginTitle   lipgloss.Style
	InputPrompt  lipgloss.Style
	InputFocused lipgloss.Style
	Button       lipgloss.Style
	ButtonActive lipgloss.Style

	// ==========================================================================
	// TABLES AND LISTS
	// ==========================================================================

	TableHeader   lipgloss.Style
	TableSelected lipgloss.Style
	Unread        lipgloss.Style
	Read          lipgloss.Style

	// ==========================================================================
	// FOOTER
	// ==========================================================================

	StatusBar lipgloss.Style
	Help      lipgloss.Style

	// ==========================================================================
	// ACCESSIBILITY: Status styles paired with StatusIndicators
	// ==========================================================================

	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	InfoStyle    lipgloss.Style
}

// NewTheme creates a theme. mode "dark" or "light" forces the background;
// anything else uses the terminal's reported background.
func NewTheme(mode string) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch mode {
	case "dark":
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case "light":
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		Background(Navy).
		Foreground(TextPrimary).
		Padding(0, 1)

	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Blue)

	t.HeaderUser = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.HeaderMuted = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.Badge = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Red).
		Padding(0, 1)

	t.Tab = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)

	t.TabActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Blue).
		Padding(0, 1)

	// Content
	t.Container = lipgloss.NewStyle().Padding(1, 2)

	t.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary).
		MarginBottom(1)

	t.Subtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.Label = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Width(22)

	t.Value = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Card = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 2).
		MarginRight(1)

	t.StatLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.StatValue = lipgloss.NewStyle().
		Bold(true).
		Foreground(Blue)

	// Login
	t.LoginBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Blue).
		Padding(1, 4)

	t.LoginTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Blue).
		MarginBottom(1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.InputFocused = lipgloss.NewStyle().
		Foreground(Blue).
		Bold(true)

	t.Button = lipgloss.NewStyle().
		Foreground(TextSecondary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Overlay).
		Padding(0, 3)

	t.ButtonActive = t.Button.
		Foreground(TextInverse).
		Background(Blue).
		BorderForeground(Blue)

	// Tables
	t.TableHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Overlay).
		BorderBottom(true)

	t.TableSelected = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SelectionBg).
		Bold(true)

	t.Unread = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)

	t.Read = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Footer
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.Help = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 1)

	// Accessibility
	t.SuccessStyle = lipgloss.NewStyle().Foreground(Green).Bold(true)
	t.ErrorStyle = lipgloss.NewStyle().Foreground(Red).Bold(true)
	t.WarningStyle = lipgloss.NewStyle().Foreground(Orange).Bold(true)
	t.InfoStyle = lipgloss.NewStyle().Foreground(Blue).Bold(true)
}

// Status renders a contract status tag with its localized label.
func (t *Theme) Status(status, label string) string {
	return lipgloss.NewStyle().
		Foreground(StatusColor(status)).
		Bold(true).
		Render(label)
}

// NotificationType renders a notification type label in its accent color.
func (t *Theme) NotificationType(typ, label string) string {
	return lipgloss.NewStyle().
		Foreground(NotificationColor(typ)).
		Render(label)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
