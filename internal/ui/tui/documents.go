// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/kyzylzhar/docflow/internal/api"
	"github.com/kyzylzhar/docflow/internal/locale"
	"github.com/kyzylzhar/docflow/internal/ui/styles"
)

const documentListLimit = 100

// =============================================================================
// DOCUMENTS VIEW
// =============================================================================

type documentsView struct {
	table  table.Model
	items  []api.Document
	loaded bool
}

func newDocumentsView(theme *styles.Theme) *documentsView {
	return &documentsView{table: newTable(theme)}
}

func (v *documentsView) setItems(items []api.Document, loc *locale.Localizer) {
	v.items = items
	v.loaded = true
	rows := make([]table.Row, 0, len(items))
	for _, d := range items {
		rows = append(rows, table.Row{
			d.Title,
			strings.ToUpper(d.FileType),
			fileSize(d.FileSize),
			strings.Join(d.Tags, ", "),
			loc.Date(d.ExpiryDate.Time),
			loc.DateTime(d.CreatedAt.Time),
		})
	}
	v.table.SetRows(rows)
	clampCursor(&v.table)
}

func (v *documentsView) reset() {
	v.items = nil
	v.loaded = false
	v.table.SetCursor(0)
	v.table.SetRows(nil)
}

func (v *documentsView) selected() (api.Document, bool) {
	i := v.table.Cursor()
	if i < 0 || i >= len(v.items) {
		return api.Document{}, false
	}
	return v.items[i], true
}

func (v *documentsView) resize(width, height int, loc *locale.Localizer) {
	fixed := 6 + 10 + 14 + 18
	flex := max(width-fixed-8, 20)
	v.table.SetColumns([]table.Column{
		{Title: loc.T(locale.FieldTitle), Width: flex * 3 / 5},
		{Title: loc.T(locale.FieldType), Width: 6},
		{Title: loc.T(locale.FieldSize), Width: 10},
		{Title: loc.T(locale.FieldTags), Width: flex - flex*3/5},
		{Title: loc.T(locale.FieldExpiry), Width: 14},
		{Title: loc.T(locale.FieldUploaded), Width: 18},
	})
	v.table.SetWidth(width)
	v.table.SetHeight(max(height, 3))
}

func (v *documentsView) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return cmd
}

func (v *documentsView) view(theme *styles.Theme, loc *locale.Localizer) string {
	title := theme.Title.Render(loc.T(locale.NavDocuments))
	if v.loaded && len(v.items) == 0 {
		return title + "\n" + theme.Muted.Render(loc.T(locale.NoData))
	}
	return title + "\n" + v.table.View()
}

// fileSize renders a byte count; unknown sizes show as "-".
func fileSize(n int64) string {
	if n <= 0 {
		return "-"
	}
	return humanize.Bytes(uint64(n))
}

// =============================================================================
// COMMANDS
// =============================================================================

func loadDocuments(ctx context.Context, svc *api.DocumentsService, seq int) tea.Cmd {
	return func() tea.Msg {
		items, err := svc.List(ctx, api.DocumentFilter{Limit: documentListLimit})
		return documentsMsg{seq: seq, documents: items, err: err}
	}
}
