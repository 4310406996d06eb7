// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kyzylzhar/docflow/internal/locale"
	"github.com/kyzylzhar/docflow/internal/ui/styles"
)

// =============================================================================
// LOGIN FORM
// =============================================================================

const (
	fieldEmail = iota
	fieldPassword
	fieldCount
)

// loginForm is the email/password form. The password never leaves the
// textinput except when submitted.
type loginForm struct {
	inputs     [fieldCount]textinput.Model
	focus      int
	submitting bool
	err        string
	keys       loginKeys
}

func newLoginForm(theme *styles.Theme) *loginForm {
	f := &loginForm{keys: defaultLoginKeys()}

	email := textinput.New()
	email.Placeholder = "admin@kyzylzhar.kz"
	email.CharLimit = 254
	email.Width = 32
	email.Prompt = "> "
	email.PromptStyle = theme.InputFocused
	f.inputs[fieldEmail] = email

	password := textinput.New()
	password.Placeholder = "••••••••"
	password.CharLimit = 128
	password.Width = 32
	password.Prompt = "> "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.PromptStyle = theme.InputPrompt
	f.inputs[fieldPassword] = password

	return f
}

// reset clears the password and focuses the first empty field. The email
// is kept so a failed or expired session only asks for the password again.
func (f *loginForm) reset() tea.Cmd {
	f.submitting = false
	f.inputs[fieldPassword].SetValue("")
	if strings.TrimSpace(f.inputs[fieldEmail].Value()) == "" {
		return f.setFocus(fieldEmail)
	}
	return f.setFocus(fieldPassword)
}

func (f *loginForm) setFocus(i int) tea.Cmd {
	f.focus = (i + fieldCount) % fieldCount
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == f.focus {
			cmd = f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	return cmd
}

// credentials returns the normalized email and the raw password.
func (f *loginForm) credentials() (string, string) {
	return locale.NormalizeInput(f.inputs[fieldEmail].Value()), f.inputs[fieldPassword].Value()
}

// submitAction is what a key press asks the model to do.
type submitAction int

const (
	actionNone submitAction = iota
	actionSubmit
	actionQuit
)

// update handles a key. Typing clears the previous error.
func (f *loginForm) update(msg tea.KeyMsg) (submitAction, tea.Cmd) {
	switch {
	case key.Matches(msg, f.keys.Quit):
		return actionQuit, nil
	case key.Matches(msg, f.keys.Next):
		return actionNone, f.setFocus(f.focus + 1)
	case key.Matches(msg, f.keys.Prev):
		return actionNone, f.setFocus(f.focus - 1)
	case key.Matches(msg, f.keys.Submit):
		if f.submitting {
			return actionNone, nil
		}
		if f.focus == fieldEmail && f.inputs[fieldPassword].Value() == "" {
			return actionNone, f.setFocus(fieldPassword)
		}
		return actionSubmit, nil
	}

	if f.submitting {
		return actionNone, nil
	}
	f.err = ""
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return actionNone, cmd
}

// updateOther forwards non-key messages such as cursor blinks.
func (f *loginForm) updateOther(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *loginForm) view(theme *styles.Theme, loc *locale.Localizer, spinner string, width, height int) string {
	var b strings.Builder
	b.WriteString(theme.LoginTitle.Render(loc.T(locale.Brand)))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render(loc.T(locale.LoginTitle)))
	b.WriteString("\n\n")

	labels := [fieldCount]string{loc.T(locale.FieldEmail), loc.T(locale.FieldPassword)}
	for i := range f.inputs {
		style := theme.InputPrompt
		if i == f.focus {
			style = theme.InputFocused
		}
		b.WriteString(style.Render(labels[i]))
		b.WriteString("\n")
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n\n")
	}

	button := theme.Button.Render(loc.T(locale.SignIn))
	if f.submitting {
		button = theme.ButtonActive.Render(spinner + " " + loc.T(locale.SignIn))
	}
	b.WriteString(button)

	if f.err != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.RenderError(f.err))
	}

	box := theme.LoginBox.Render(b.String())
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
