// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kyzylzhar/docflow/internal/gate"
	"github.com/kyzylzhar/docflow/internal/locale"
	"github.com/kyzylzhar/docflow/internal/ui/components"
	"github.com/kyzylzhar/docflow/internal/ui/styles"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the current route.
func (m *Model) View() string {
	switch m.route.View {
	case gate.ViewLoading:
		return m.overlayToasts(m.loadingView())
	case gate.ViewLogin:
		form := m.login.view(m.theme, m.loc, m.spinner.View(), m.width, m.height-2)
		return m.overlayToasts(form + "\n" + m.theme.Help.Render(m.help.View(m.login.keys)))
	}

	var b strings.Builder
	b.WriteString(m.header.View())
	b.WriteString("\n")
	b.WriteString(m.theme.Container.Render(m.body()))
	b.WriteString("\n")
	b.WriteString(m.footer())
	return m.overlayToasts(b.String())
}

func (m *Model) loadingView() string {
	text := m.spinner.View() + " " + m.loc.T(locale.Loading)
	if m.width <= 0 || m.height <= 0 {
		return text
	}
	return lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, text)
}

func (m *Model) body() string {
	var content string
	switch m.route.View {
	case gate.ViewDashboard:
		content = renderDashboard(m.summary, m.app.Auth.User(), m.theme, m.loc, m.width)
	case gate.ViewContracts:
		content = m.contracts.view(m.theme, m.loc)
	case gate.ViewContractDetail:
		content = m.detail.view()
	case gate.ViewDocuments:
		content = m.documents.view(m.theme, m.loc)
	case gate.ViewNotifications:
		content = m.notifications.view(m.theme, m.loc, m.app.Poller.UnreadCount(),
			m.app.Poller.Loading(), m.spinner.View(), m.width)
	case gate.ViewProfile:
		content = renderProfile(m.app.Auth.User(), m.theme, m.loc)
	}

	if m.loadErr != "" {
		content = styles.RenderError(m.loadErr) + "\n\n" + content
	}
	if m.loading {
		content = m.spinner.View() + " " + m.theme.Muted.Render(m.loc.T(locale.Loading)) + "\n" + content
	}
	return content
}

// footer shows the pending confirmation when there is one, the key help
// otherwise.
func (m *Model) footer() string {
	if m.confirm != nil {
		return m.theme.StatusBar.Width(max(m.width, 1)).Render(
			styles.RenderWarning(m.confirm.prompt))
	}
	return m.theme.Help.Render(m.help.View(m.keys))
}

// overlayToasts puts the toast stack above the content.
func (m *Model) overlayToasts(content string) string {
	toasts := m.toasts.Toasts()
	if len(toasts) == 0 {
		return content
	}
	return components.RenderToastStack(toasts, m.width) + "\n" + content
}
