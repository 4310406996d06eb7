// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	"context"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kyzylzhar/docflow/internal/api"
	"github.com/kyzylzhar/docflow/internal/app"
	"github.com/kyzylzhar/docflow/internal/locale"
	"github.com/kyzylzhar/docflow/internal/ui/components"
	"github.com/kyzylzhar/docflow/internal/ui/styles"
)

// =============================================================================
// DASHBOARD VIEW
// =============================================================================

func loadDashboard(ctx context.Context, a *app.App, seq int) tea.Cmd {
	return func() tea.Msg {
		s, err := a.Dashboard(ctx)
		return dashboardMsg{seq: seq, summary: s, err: err}
	}
}

// renderDashboard lays out the stat cards, the expiry alert and the two
// recent lists. Cards wrap to two rows on narrow terminals.
func renderDashboard(s *app.Summary, user *api.UserProfile, theme *styles.Theme, loc *locale.Localizer, width int) string {
	var b strings.Builder
	if user != nil {
		b.WriteString(theme.Title.Render(loc.T(locale.Welcome, displayName(user))))
		b.WriteString("\n")
	}
	if s == nil {
		return b.String()
	}

	card := func(label, value string) string {
		return theme.Card.Render(theme.StatLabel.Render(label) + "\n" + theme.StatValue.Render(value))
	}
	cards := []string{
		card(loc.T(locale.StatTotalContracts), strconv.Itoa(s.TotalContracts)),
		card(loc.T(locale.StatActiveContracts), strconv.Itoa(s.ActiveContracts)),
		card(loc.T(locale.StatTotalDocuments), strconv.Itoa(s.TotalDocuments)),
		card(loc.T(locale.StatUnread), strconv.Itoa(s.UnreadNotifications)),
		card(loc.T(locale.StatRevenue), loc.MoneyRat(s.MonthlyRevenue)),
	}
	if theme.GetLayoutMode() == styles.LayoutWide {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	} else {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards[:3]...))
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards[3:]...))
	}
	b.WriteString("\n\n")

	if len(s.Expiring) > 0 {
		b.WriteString(styles.RenderWarning(loc.T(locale.ExpiringSoon, len(s.Expiring))))
		b.WriteString("\n")
		for _, c := range s.Expiring {
			b.WriteString("  " + c.ContractNumber + "  " + components.Truncate(c.ClientName, 30) +
				"  " + theme.Muted.Render(loc.Date(c.EndDate.Time)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	lineWidth := max(width-8, 30)
	b.WriteString(theme.Subtitle.Render(loc.T(locale.RecentContracts)))
	b.WriteString("\n")
	if len(s.RecentContracts) == 0 {
		b.WriteString(theme.Muted.Render(loc.T(locale.NoData)) + "\n")
	}
	for _, c := range s.RecentContracts {
		line := c.ContractNumber + "  " + c.ClientName + "  " + loc.Money(string(c.RentalAmount))
		b.WriteString("  " + components.Truncate(line, lineWidth-14) + "  " +
			theme.Status(string(c.Status), loc.ContractStatus(string(c.Status))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render(loc.T(locale.RecentNotifications)))
	b.WriteString("\n")
	if len(s.RecentNotifications) == 0 {
		b.WriteString(theme.Muted.Render(loc.T(locale.NoData)) + "\n")
	}
	for _, n := range s.RecentNotifications {
		marker := styles.StatusIndicators.Read
		if !n.IsRead {
			marker = styles.StatusIndicators.Unread
		}
		b.WriteString("  " + marker + " " + components.Truncate(n.Title, lineWidth-6))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// displayName prefers the full name over the email.
func displayName(u *api.UserProfile) string {
	if u == nil {
		return ""
	}
	if strings.TrimSpace(u.FullName) != "" {
		return u.FullName
	}
	return u.Email
}

// =============================================================================
// PROFILE VIEW
// =============================================================================

func renderProfile(u *api.UserProfile, theme *styles.Theme, loc *locale.Localizer) string {
	if u == nil {
		return theme.Muted.Render(loc.T(locale.NoData))
	}
	account := loc.T(locale.AccountActive)
	if !u.IsActive {
		account = loc.T(locale.AccountDisabled)
	}
	rows := [][2]string{
		{loc.T(locale.FieldFullName), displayName(u)},
		{loc.T(locale.FieldEmail), u.Email},
		{loc.T(locale.FieldRole), loc.Role(string(u.Role))},
		{loc.T(locale.FieldAccount), account},
		{loc.T(locale.FieldCreated), loc.DateTime(u.CreatedAt.Time)},
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render(loc.T(locale.NavProfile)))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(theme.Label.Render(r[0]) + theme.Value.Render(r[1]))
	}
	return b.String()
}
