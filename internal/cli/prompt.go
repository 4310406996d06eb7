// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// prompt.go - interactive input for login and destructive commands.
//
// On a terminal prompts use liner: line editing, Ctrl+C aborts, and the
// password prompt does not echo. Otherwise answers are read line by line
// from stdin so scripts can pipe them in.

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
)

// prompter asks for one line of input.
type prompter interface {
	Prompt(label string) (string, error)
	Password(label string) (string, error)
	Close() error
}

// =============================================================================
// TERMINAL PROMPTS
// =============================================================================

type linerPrompter struct {
	line *liner.State
}

func newLinerPrompter() *linerPrompter {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return &linerPrompter{line: line}
}

func (p *linerPrompter) Prompt(label string) (string, error) {
	s, err := p.line.Prompt(label)
	return strings.TrimSpace(s), promptError(err)
}

func (p *linerPrompter) Password(label string) (string, error) {
	s, err := p.line.PasswordPrompt(label)
	return s, promptError(err)
}

func (p *linerPrompter) Close() error {
	return p.line.Close()
}

// promptError turns Ctrl+C into context.Canceled so it exits 130.
func promptError(err error) error {
	if errors.Is(err, liner.ErrPromptAborted) {
		return context.Canceled
	}
	return err
}

// =============================================================================
// PIPED INPUT
// =============================================================================

// lineReader answers prompts from a non-terminal reader. Labels are still
// written so transcripts read naturally.
type lineReader struct {
	in  *bufio.Reader
	out io.Writer
}

func newLineReader(in io.Reader, out io.Writer) *lineReader {
	return &lineReader{in: bufio.NewReader(in), out: out}
}

func (r *lineReader) Prompt(label string) (string, error) {
	s, err := r.readLine(label)
	return strings.TrimSpace(s), err
}

func (r *lineReader) Password(label string) (string, error) {
	return r.readLine(label)
}

func (r *lineReader) readLine(label string) (string, error) {
	fmt.Fprint(r.out, label)
	line, err := r.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", errors.New("no input")
		}
		return "", err
	}
	fmt.Fprintln(r.out)
	return strings.TrimRight(line, "\r\n"), nil
}

func (r *lineReader) Close() error { return nil }

// =============================================================================
// CONFIRMATION
// =============================================================================

// confirm asks before a destructive action. --yes skips the question.
// Without a terminal, or in json and yaml modes, --yes is required.
func (e *env) confirm(yes bool, action string) (bool, error) {
	if yes {
		return true, nil
	}
	if e.format != FormatTable {
		return false, usageErrorf("confirmation required: use --yes with --output %s", e.format)
	}
	if !isTerminal(e.opts.Stdin) {
		return false, usageErrorf("confirmation required but stdin is not a terminal; use --yes")
	}

	p, err := e.prompter()
	if err != nil {
		return false, err
	}
	answer, err := p.Prompt(fmt.Sprintf("%s %s [y/N]: ", WarningStyle.Render("?"), action))
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes", "д", "да":
		return true, nil
	}
	return false, nil
}
