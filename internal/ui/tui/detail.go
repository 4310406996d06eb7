// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/kyzylzhar/docflow/internal/api"
	"github.com/kyzylzhar/docflow/internal/locale"
)

// =============================================================================
// CONTRACT DETAIL VIEW
// =============================================================================

type detailView struct {
	viewport  viewport.Model
	contract  *api.Contract
	documents []api.Document
	width     int
	dark      bool
}

func newDetailView(dark bool) *detailView {
	return &detailView{viewport: viewport.New(80, 20), width: 80, dark: dark}
}

func (v *detailView) set(c *api.Contract, docs []api.Document, loc *locale.Localizer) {
	v.contract = c
	v.documents = docs
	v.render(loc)
	v.viewport.GotoTop()
}

func (v *detailView) reset() {
	v.contract = nil
	v.documents = nil
	v.viewport.SetContent("")
}

func (v *detailView) resize(width, height int, loc *locale.Localizer) {
	v.width = max(width, 40)
	v.viewport.Width = v.width
	v.viewport.Height = max(height, 3)
	if v.contract != nil {
		v.render(loc)
	}
}

// render runs the markdown through glamour. A renderer failure falls back
// to the plain markdown so the data is still readable.
func (v *detailView) render(loc *locale.Localizer) {
	md := contractMarkdown(v.contract, v.documents, loc)
	style := "light"
	if v.dark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(v.width-4),
	)
	if err == nil {
		if out, err := r.Render(md); err == nil {
			v.viewport.SetContent(out)
			return
		}
	}
	v.viewport.SetContent(md)
}

func (v *detailView) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return cmd
}

func (v *detailView) view() string {
	return v.viewport.View()
}

// contractMarkdown builds the detail page. User-entered text is escaped so
// it cannot change the page structure.
func contractMarkdown(c *api.Contract, docs []api.Document, loc *locale.Localizer) string {
	if c == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", loc.T(locale.ContractTitle, escapeMarkdown(c.ContractNumber)))
	fmt.Fprintf(&b, "**%s**\n\n", loc.ContractStatus(string(c.Status)))

	field := func(label, value string) {
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(&b, "- **%s:** %s\n", label, escapeMarkdown(value))
	}
	field(loc.T(locale.FieldClient), c.ClientName)
	field(loc.T(locale.FieldPhone), c.ClientPhone)
	field(loc.T(locale.FieldEmail), c.ClientEmail)
	field(loc.T(locale.FieldAddress), c.PropertyAddress)
	field(loc.T(locale.FieldPropertyType), c.PropertyType)
	field(loc.T(locale.FieldRent), loc.T(locale.PerMonth, loc.Money(string(c.RentalAmount))))
	field(loc.T(locale.FieldDeposit), depositText(c.DepositAmount, loc))
	field(loc.T(locale.FieldPeriod), loc.Date(c.StartDate.Time)+" - "+loc.Date(c.EndDate.Time))
	field(loc.T(locale.FieldCreated), loc.DateTime(c.CreatedAt.Time))

	fmt.Fprintf(&b, "\n## %s\n\n", loc.T(locale.LinkedDocuments))
	if len(docs) == 0 {
		fmt.Fprintf(&b, "_%s_\n", loc.T(locale.NoData))
		return b.String()
	}
	for _, d := range docs {
		fmt.Fprintf(&b, "- **%s** (%s, %s)", escapeMarkdown(d.Title), escapeMarkdown(strings.ToUpper(d.FileType)), fileSize(d.FileSize))
		if !d.ExpiryDate.IsZero() {
			fmt.Fprintf(&b, " %s: %s", loc.T(locale.FieldExpiry), loc.Date(d.ExpiryDate.Time))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func depositText(d api.Decimal, loc *locale.Localizer) string {
	if d == "" {
		return ""
	}
	return loc.Money(string(d))
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
	"#", `\#`, "|", `\|`, "<", `\<`, ">", `\>`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// =============================================================================
// COMMANDS
// =============================================================================

// loadContract fetches the contract and its documents. A failed document
// list still shows the contract.
func loadContract(ctx context.Context, client *api.Client, seq int, id int64) tea.Cmd {
	return func() tea.Msg {
		c, err := client.Contracts.Get(ctx, id)
		if err != nil {
			return contractMsg{seq: seq, err: err}
		}
		docs, err := client.Documents.List(ctx, api.DocumentFilter{ContractID: id, Limit: documentListLimit})
		if err != nil && api.IsUnauthorized(err) {
			return contractMsg{seq: seq, err: err}
		}
		return contractMsg{seq: seq, contract: c, documents: docs}
	}
}
