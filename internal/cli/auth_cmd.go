// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kyzylzhar/docflow/internal/api"
	"github.com/kyzylzhar/docflow/internal/locale"
)

// =============================================================================
// LOGIN
// =============================================================================

func newLoginCmd(e *env) *cobra.Command {
	var (
		email         string
		passwordStdin bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session token",
		Long: `Sign in with email and password. The token is saved under ~/.docflow
and reused by every later command until it expires or you log out.

The password is never echoed. For scripts, pass --email and pipe the
password with --password-stdin.`,
		Example: `  docflow login
  docflow login --email admin@kyzylzhar.kz
  printf '%s' "$PASSWORD" | docflow login --email admin@kyzylzhar.kz --password-stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if passwordStdin && email == "" {
				return usageErrorf("--password-stdin requires --email")
			}
			if _, err := e.open(false); err != nil {
				return err
			}

			if passwordStdin {
				raw, err := io.ReadAll(e.opts.Stdin)
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				return e.login(cmd, email, strings.TrimRight(string(raw), "\r\n"))
			}

			p, err := e.prompter()
			if err != nil {
				return err
			}
			if email == "" {
				if email, err = p.Prompt(e.loc.T(locale.FieldEmail) + ": "); err != nil {
					return err
				}
			}
			password, err := p.Password(e.loc.T(locale.FieldPassword) + ": ")
			if err != nil {
				return err
			}
			return e.login(cmd, email, password)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (prompted when empty)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func (e *env) login(cmd *cobra.Command, email, password string) error {
	email = locale.NormalizeInput(email)
	if email == "" || password == "" {
		return usageErrorf("%s", e.loc.T(locale.EmailRequired))
	}
	if err := e.app.Auth.Login(cmd.Context(), email, password); err != nil {
		return err
	}

	user := e.app.Auth.User()
	return e.printer(cmd).print(user, func(w io.Writer) {
		fmt.Fprintln(w, SuccessStyle.Render(e.loc.T(locale.LoginSuccess)))
		e.writeProfile(w, user)
	})
}

// =============================================================================
// LOGOUT
// =============================================================================

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and remove the saved token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.open(false)
			if err != nil {
				return err
			}
			a.Auth.Logout()
			return e.printer(cmd).print(map[string]bool{"signed_out": true}, func(w io.Writer) {
				fmt.Fprintln(w, SuccessStyle.Render(e.loc.T(locale.LogoutDone)))
			})
		},
	}
}

// =============================================================================
// WHOAMI
// =============================================================================

func newWhoamiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			user := a.Auth.User()
			return e.printer(cmd).print(user, func(w io.Writer) {
				e.writeProfile(w, user)
			})
		},
	}
}

func (e *env) writeProfile(w io.Writer, u *api.UserProfile) {
	if u == nil {
		return
	}
	account := e.loc.T(locale.AccountActive)
	if !u.IsActive {
		account = e.loc.T(locale.AccountDisabled)
	}
	fmt.Fprintln(w, RenderLabel(e.loc.T(locale.FieldFullName), u.FullName))
	fmt.Fprintln(w, RenderLabel(e.loc.T(locale.FieldEmail), u.Email))
	fmt.Fprintln(w, RenderLabel(e.loc.T(locale.FieldRole), e.loc.Role(string(u.Role))))
	fmt.Fprintln(w, RenderLabel(e.loc.T(locale.FieldAccount), account))
	if !u.CreatedAt.IsZero() {
		fmt.Fprintln(w, RenderLabel(e.loc.T(locale.FieldCreated), e.loc.Date(u.CreatedAt.Time)))
	}
}
