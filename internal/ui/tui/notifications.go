// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	"strings"

	"github.com/kyzylzhar/docflow/internal/api"
	"github.com/kyzylzhar/docflow/internal/locale"
	"github.com/kyzylzhar/docflow/internal/ui/components"
	"github.com/kyzylzhar/docflow/internal/ui/styles"
)

// =============================================================================
// NOTIFICATIONS VIEW
// =============================================================================

// notificationsView renders the poller's list. It never owns the data: the
// poller snapshot is re-read on every update.
type notificationsView struct {
	all        []api.Notification
	visible    []api.Notification
	cursor     int
	offset     int
	unreadOnly bool
	height     int
}

func newNotificationsView() *notificationsView {
	return &notificationsView{height: 10}
}

// sync replaces the list and keeps the cursor on the same notification when
// it still exists.
func (v *notificationsView) sync(items []api.Notification) {
	var selectedID int64
	if n, ok := v.selected(); ok {
		selectedID = n.ID
	}
	v.all = items
	v.filter()

	v.cursor = min(v.cursor, max(len(v.visible)-1, 0))
	for i, n := range v.visible {
		if n.ID == selectedID {
			v.cursor = i
			break
		}
	}
	v.clampOffset()
}

func (v *notificationsView) filter() {
	if !v.unreadOnly {
		v.visible = v.all
		return
	}
	v.visible = make([]api.Notification, 0, len(v.all))
	for _, n := range v.all {
		if !n.IsRead {
			v.visible = append(v.visible, n)
		}
	}
}

func (v *notificationsView) toggleFilter() {
	v.unreadOnly = !v.unreadOnly
	v.cursor, v.offset = 0, 0
	v.filter()
}

func (v *notificationsView) reset() {
	v.all, v.visible = nil, nil
	v.cursor, v.offset = 0, 0
}

func (v *notificationsView) selected() (api.Notification, bool) {
	if v.cursor < 0 || v.cursor >= len(v.visible) {
		return api.Notification{}, false
	}
	return v.visible[v.cursor], true
}

func (v *notificationsView) moveUp() {
	if v.cursor > 0 {
		v.cursor--
	}
	v.clampOffset()
}

func (v *notificationsView) moveDown() {
	if v.cursor < len(v.visible)-1 {
		v.cursor++
	}
	v.clampOffset()
}

// Each notification takes two lines.
func (v *notificationsView) pageSize() int {
	return max(v.height/2, 1)
}

func (v *notificationsView) clampOffset() {
	page := v.pageSize()
	if v.cursor < v.offset {
		v.offset = v.cursor
	}
	if v.cursor >= v.offset+page {
		v.offset = v.cursor - page + 1
	}
	v.offset = max(v.offset, 0)
}

func (v *notificationsView) resize(height int) {
	v.height = max(height, 2)
	v.clampOffset()
}

func (v *notificationsView) view(theme *styles.Theme, loc *locale.Localizer, unread int, loading bool, spinner string, width int) string {
	filter := loc.T(locale.FilterAll)
	if v.unreadOnly {
		filter = loc.T(locale.FilterUnread)
	}
	title := theme.Title.Render(loc.T(locale.NavNotifications)) + "  " +
		theme.Muted.Render(loc.T(locale.UnreadCount, unread)+" | "+filter)
	if loading {
		title += " " + spinner
	}

	if len(v.visible) == 0 {
		return title + "\n" + theme.Muted.Render(loc.T(locale.NoData))
	}

	lineWidth := max(width-4, 20)
	var b strings.Builder
	b.WriteString(title)
	end := min(v.offset+v.pageSize(), len(v.visible))
	for i := v.offset; i < end; i++ {
		n := v.visible[i]
		marker, style := styles.StatusIndicators.Read, theme.Read
		if !n.IsRead {
			marker, style = styles.StatusIndicators.Unread, theme.Unread
		}

		head := marker + " " + theme.NotificationType(string(n.Type), loc.NotificationType(string(n.Type))) +
			"  " + style.Render(components.Truncate(n.Title, lineWidth/2)) +
			"  " + theme.Muted.Render(loc.DateTime(n.CreatedAt.Time))
		body := "    " + theme.Muted.Render(components.Truncate(n.Message, lineWidth-4))

		if i == v.cursor {
			head = theme.TableSelected.Render(">") + " " + head
		} else {
			head = "  " + head
		}
		b.WriteString("\n")
		b.WriteString(head)
		b.WriteString("\n")
		b.WriteString(body)
	}
	return b.String()
}
