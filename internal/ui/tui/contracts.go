// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kyzylzhar/docflow/internal/api"
	"github.com/kyzylzhar/docflow/internal/locale"
	"github.com/kyzylzhar/docflow/internal/ui/styles"
)

// contractListLimit matches the original list page size.
const contractListLimit = 100

// =============================================================================
// CONTRACTS VIEW
// =============================================================================

type contractsView struct {
	table  table.Model
	items  []api.Contract
	status api.ContractStatus // empty means all
	loaded bool
}

func newContractsView(theme *styles.Theme) *contractsView {
	return &contractsView{table: newTable(theme)}
}

// newTable builds a focused table styled with the theme.
func newTable(theme *styles.Theme) table.Model {
	s := table.DefaultStyles()
	s.Header = theme.TableHeader
	s.Selected = theme.TableSelected
	return table.New(
		table.WithFocused(true),
		table.WithStyles(s),
		table.WithHeight(10),
	)
}

// clampCursor keeps the cursor on a row once rows exist. bubbles clamps
// SetCursor on an empty table to -1, which would leave nothing selected.
func clampCursor(t *table.Model) {
	n := len(t.Rows())
	switch {
	case n == 0:
	case t.Cursor() < 0:
		t.SetCursor(0)
	case t.Cursor() >= n:
		t.SetCursor(n - 1)
	}
}

// cycleFilter steps through all statuses and back to no filter.
func (v *contractsView) cycleFilter() {
	if v.status == "" {
		v.status = api.ContractStatuses[0]
		return
	}
	for i, st := range api.ContractStatuses {
		if st == v.status {
			if i+1 < len(api.ContractStatuses) {
				v.status = api.ContractStatuses[i+1]
			} else {
				v.status = ""
			}
			return
		}
	}
	v.status = ""
}

func (v *contractsView) filterLabel(loc *locale.Localizer) string {
	if v.status == "" {
		return loc.T(locale.FilterAll)
	}
	return loc.ContractStatus(string(v.status))
}

func (v *contractsView) setItems(items []api.Contract, loc *locale.Localizer) {
	v.items = items
	v.loaded = true
	rows := make([]table.Row, 0, len(items))
	for _, c := range items {
		rows = append(rows, table.Row{
			c.ContractNumber,
			c.ClientName,
			c.PropertyAddress,
			loc.Money(string(c.RentalAmount)),
			loc.Date(c.StartDate.Time) + " - " + loc.Date(c.EndDate.Time),
			loc.ContractStatus(string(c.Status)),
		})
	}
	v.table.SetRows(rows)
	clampCursor(&v.table)
}

func (v *contractsView) reset() {
	v.items = nil
	v.loaded = false
	v.table.SetCursor(0)
	v.table.SetRows(nil)
}

func (v *contractsView) selected() (api.Contract, bool) {
	i := v.table.Cursor()
	if i < 0 || i >= len(v.items) {
		return api.Contract{}, false
	}
	return v.items[i], true
}

// resize spreads width over the columns; address and client absorb the
// slack.
func (v *contractsView) resize(width, height int, loc *locale.Localizer) {
	fixed := 14 + 18 + 25 + 12
	flex := max(width-fixed-8, 20)
	v.table.SetColumns([]table.Column{
		{Title: loc.T(locale.FieldContractNumber), Width: 14},
		{Title: loc.T(locale.FieldClient), Width: flex * 2 / 5},
		{Title: loc.T(locale.FieldAddress), Width: flex - flex*2/5},
		{Title: loc.T(locale.FieldRent), Width: 18},
		{Title: loc.T(locale.FieldPeriod), Width: 25},
		{Title: loc.T(locale.FieldStatus), Width: 12},
	})
	v.table.SetWidth(width)
	v.table.SetHeight(max(height, 3))
}

func (v *contractsView) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return cmd
}

func (v *contractsView) view(theme *styles.Theme, loc *locale.Localizer) string {
	title := theme.Title.Render(loc.T(locale.NavContracts)) + "  " +
		theme.Muted.Render(loc.T(locale.FieldStatus)+": "+v.filterLabel(loc))
	if v.loaded && len(v.items) == 0 {
		return title + "\n" + theme.Muted.Render(loc.T(locale.NoData))
	}
	return title + "\n" + v.table.View()
}

// =============================================================================
// COMMANDS
// =============================================================================

func loadContracts(ctx context.Context, svc *api.ContractsService, seq int, status api.ContractStatus) tea.Cmd {
	return func() tea.Msg {
		items, err := svc.List(ctx, api.ContractFilter{Limit: contractListLimit, Status: status})
		return contractsMsg{seq: seq, contracts: items, err: err}
	}
}
