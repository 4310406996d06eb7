// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// output.go - machine-readable output for every subcommand.
//
// --output json and --output yaml wrap the command's data in one envelope
// so scripts can check success without parsing human text. Human messages
// go to stderr in those modes.

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

// Format selects how results are printed.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates an --output value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	}
	return "", invalid("output", s, "must be table, json or yaml", "--output json")
}

// =============================================================================
// RESPONSE ENVELOPE
// =============================================================================

// Response is the envelope printed in json and yaml modes.
type Response struct {
	// Success is false when the command failed; Error then holds the message.
	Success   bool    `json:"success" yaml:"success"`
	Data      any     `json:"data" yaml:"data"`
	Error     *string `json:"error" yaml:"error"`
	Timestamp string  `json:"timestamp" yaml:"timestamp"`
	Command   string  `json:"command,omitempty" yaml:"command,omitempty"`
}

// NewResponse creates a successful response.
func NewResponse(command string, data any) *Response {
	return &Response{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewErrorResponse creates a failed response carrying msg.
func NewErrorResponse(command, msg string) *Response {
	return &Response{
		Success:   false,
		Error:     &msg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Write encodes r in format f.
func (r *Response) Write(w io.Writer, f Format) error {
	if f == FormatYAML {
		return writeYAML(w, r)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// writeYAML encodes v with the field names of its JSON tags. API types only
// carry JSON tags, so the value goes through JSON first.
func writeYAML(w io.Writer, v any) error {
	generic, err := toGeneric(v)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func toGeneric(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode data: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	return generic, nil
}

// =============================================================================
// PRINTER
// =============================================================================

// printer writes one command's result in the selected format.
type printer struct {
	format  Format
	command string
	out     io.Writer
	errOut  io.Writer
}

// print writes data as an envelope, or calls human in table mode.
func (p *printer) print(data any, human func(w io.Writer)) error {
	if p.format == FormatTable {
		human(p.out)
		return nil
	}
	return NewResponse(p.command, data).Write(p.out, p.format)
}

// stream writes one item of a continuous feed: a JSON line, a YAML
// document, or whatever human prints.
func (p *printer) stream(item any, human func(w io.Writer)) error {
	switch p.format {
	case FormatJSON:
		return json.NewEncoder(p.out).Encode(item)
	case FormatYAML:
		fmt.Fprintln(p.out, "---")
		return writeYAML(p.out, item)
	}
	human(p.out)
	return nil
}

// note prints a human message. In json and yaml modes it goes to stderr so
// stdout stays parseable.
func (p *printer) note(msg string) {
	if p.format == FormatTable {
		fmt.Fprintln(p.out, msg)
		return
	}
	fmt.Fprintln(p.errOut, msg)
}

// =============================================================================
// TABLES
// =============================================================================

// renderTable lays out rows under headers. Cell text may already carry
// styles.
func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderStyle(SeparatorStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle.PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})
	return t.String()
}

// printList prints a table, or a dimmed placeholder when there are no rows.
func printList(w io.Writer, empty string, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, DimStyle.Render(empty))
		return
	}
	fmt.Fprintln(w, renderTable(headers, rows))
}
