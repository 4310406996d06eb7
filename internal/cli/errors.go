// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - error classification for docflow subcommands.
//
// Commands always return errors and never print-and-exit. Execute maps the
// returned error to a process exit code and a one-line message.

package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/kyzylzhar/docflow/internal/api"
	"github.com/kyzylzhar/docflow/internal/auth"
	"github.com/kyzylzhar/docflow/internal/locale"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0
	// ExitFailure indicates any failure not covered below.
	ExitFailure = 1
	// ExitUsage indicates invalid arguments or flags.
	ExitUsage = 2
	// ExitAuth indicates a missing, expired or rejected session.
	ExitAuth = 3
	// ExitInterrupted indicates the run was cancelled by a signal.
	ExitInterrupted = 130
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError wraps a problem with the command line itself.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

// usageErrorf builds a UsageError.
func usageErrorf(format string, args ...any) error {
	return &UsageError{Err: fmt.Errorf(format, args...)}
}

// ValidationError reports an invalid flag or argument value.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Example string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// invalid builds a ValidationError classified as a usage error.
func invalid(field, value, reason, example string) error {
	return &UsageError{Err: &ValidationError{Field: field, Value: value, Reason: reason, Example: example}}
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// ExitCode maps err to the process exit code.
func ExitCode(err error) int {
	var (
		usage    *UsageError
		loginErr *auth.LoginError
	)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.As(err, &usage), isCobraUsage(err):
		return ExitUsage
	case errors.Is(err, auth.ErrNotAuthenticated),
		errors.Is(err, api.ErrUnauthorized),
		errors.As(err, &loginErr):
		return ExitAuth
	default:
		return ExitFailure
	}
}

// isCobraUsage recognises the argument errors cobra returns as plain
// strings.
func isCobraUsage(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag") ||
		strings.HasPrefix(msg, "accepts ") ||
		strings.HasPrefix(msg, "requires at least")
}

// ErrorMessage renders err for the terminal: the backend detail when there
// is one, a localised hint for auth and network failures, the error text
// otherwise.
func ErrorMessage(err error, loc *locale.Localizer) string {
	var (
		loginErr *auth.LoginError
		netErr   net.Error
	)
	switch {
	case errors.As(err, &loginErr):
		return loginErr.Message
	case errors.Is(err, auth.ErrNotAuthenticated):
		return loc.T(locale.NotAuthenticated)
	case errors.Is(err, api.ErrUnauthorized):
		return loc.T(locale.SessionExpired)
	}
	if detail := api.DetailOf(err); detail != "" {
		return detail
	}
	if errors.As(err, &netErr) {
		return loc.T(locale.NetworkError) + ": " + err.Error()
	}
	return err.Error()
}
