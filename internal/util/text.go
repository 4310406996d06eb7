// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Ellipsis is appended by Truncate when a string is cut.
const Ellipsis = "…"

// Truncate shortens s to at most width display columns, appending an
// ellipsis when something was cut. Wide runes count as two columns.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return Ellipsis
	}
	return runewidth.Truncate(s, width, Ellipsis)
}

// PadRight truncates s to width and pads it with spaces to exactly width
// display columns.
func PadRight(s string, width int) string {
	s = Truncate(s, width)
	if gap := width - runewidth.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// Width returns the display width of s.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// SplitList splits a comma separated list, trimming blanks and dropping
// empty entries. "a, b,,c " yields [a b c].
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
