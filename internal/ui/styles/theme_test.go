// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// THEME CREATION TESTS
// =============================================================================

func TestNewTheme_ForcedModes(t *testing.T) {
	if theme := NewTheme("dark"); !theme.IsDark {
		t.Error("NewTheme(dark) should report a dark background")
	}
	if theme := NewTheme("light"); theme.IsDark {
		t.Error("NewTheme(light) should report a light background")
	}
}

func TestThemeInitStyles(t *testing.T) {
	theme := NewTheme("dark")

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Header", theme.Header},
		{"TabActive", theme.TabActive},
		{"LoginBox", theme.LoginBox},
		{"Card", theme.Card},
		{"TableSelected", theme.TableSelected},
		{"StatusBar", theme.StatusBar},
		{"ErrorStyle", theme.ErrorStyle},
	}

	for _, s := range styles {
		if rendered := s.style.Render("test"); !strings.Contains(rendered, "test") {
			t.Errorf("%s style lost its content: %q", s.name, rendered)
		}
	}
}

func TestThemeStatusKeepsLabel(t *testing.T) {
	theme := NewTheme("dark")
	if got := theme.Status("active", "Активный"); !strings.Contains(got, "Активный") {
		t.Errorf("Status() = %q, want label preserved", got)
	}
	if got := theme.NotificationType("mystery", "Информация"); !strings.Contains(got, "Информация") {
		t.Errorf("NotificationType() = %q, want label preserved", got)
	}
}

// =============================================================================
// LAYOUT TESTS
// =============================================================================

func TestGetLayoutMode(t *testing.T) {
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
		{200, LayoutWide},
	}

	theme := NewTheme("dark")
	for _, tt := range tests {
		theme.SetSize(tt.width, 40)
		if got := theme.GetLayoutMode(); got != tt.want {
			t.Errorf("GetLayoutMode() at width %d = %v, want %v", tt.width, got, tt.want)
		}
	}
}
