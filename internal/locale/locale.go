// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package locale holds user-facing strings in Russian and English and
// formats tenge amounts and dates for display.
package locale

import (
	"math/big"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/unicode/norm"
)

// Currency is appended to every formatted amount.
const Currency = "₸"

// Localizer renders messages for one language.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Localizer for lang ("ru" or "en"). Anything else falls back
// to Russian.
func New(lang string) *Localizer {
	tag := language.Russian
	if t, err := language.Parse(strings.TrimSpace(lang)); err == nil {
		if base, _ := t.Base(); base.String() == "en" {
			tag = language.English
		}
	}
	return &Localizer{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(defaultCatalog)),
	}
}

// Language returns "ru" or "en".
func (l *Localizer) Language() string {
	base, _ := l.tag.Base()
	return base.String()
}

// T renders key with optional fmt-style args.
func (l *Localizer) T(key Key, args ...any) string {
	return l.printer.Sprintf(string(key), args...)
}

// ContractStatus labels a contract status; unknown values pass through.
func (l *Localizer) ContractStatus(status string) string {
	switch status {
	case "draft":
		return l.T(StatusDraft)
	case "active":
		return l.T(StatusActive)
	case "completed":
		return l.T(StatusCompleted)
	case "terminated":
		return l.T(StatusTerminated)
	}
	return status
}

// NotificationType labels a notification type; unknown values read as info.
func (l *Localizer) NotificationType(typ string) string {
	switch typ {
	case "contract_expiry":
		return l.T(TypeContractExpiry)
	case "payment_due":
		return l.T(TypePaymentDue)
	case "document_expiry":
		return l.T(TypeDocumentExpiry)
	case "document_upload":
		return l.T(TypeDocumentUpload)
	}
	return l.T(TypeInfo)
}

// Role labels a user role; unknown values pass through.
func (l *Localizer) Role(role string) string {
	switch role {
	case "admin":
		return l.T(RoleAdmin)
	case "manager":
		return l.T(RoleManager)
	case "user":
		return l.T(RoleUser)
	}
	return role
}

// Money formats a decimal amount string with two fractional digits, digit
// grouping and the tenge sign: "150000" -> "150 000,00 ₸" (ru) or
// "150,000.00 ₸" (en). Unparseable input is returned unchanged.
func (l *Localizer) Money(amount string) string {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(amount))
	if !ok {
		return amount
	}
	return l.MoneyRat(r)
}

// MoneyRat formats an exact amount; see Money.
func (l *Localizer) MoneyRat(r *big.Rat) string {
	s := r.FloatString(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	group, decimal := " ", ","
	if l.Language() == "en" {
		group, decimal = ",", "."
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(group)
		}
		b.WriteRune(c)
	}
	b.WriteString(decimal)
	b.WriteString(frac)
	b.WriteString(" ")
	b.WriteString(Currency)
	return b.String()
}

// Date formats a calendar date: 02.01.2006 (ru) or 2006-01-02 (en).
func (l *Localizer) Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	if l.Language() == "en" {
		return t.Format("2006-01-02")
	}
	return t.Format("02.01.2006")
}

// DateTime formats a timestamp in local time.
func (l *Localizer) DateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	t = t.Local()
	if l.Language() == "en" {
		return t.Format("2006-01-02 15:04")
	}
	return t.Format("02.01.2006 15:04")
}

// NormalizeInput NFC-normalises and trims text typed by the user so that
// composed and decomposed Cyrillic (й, ё) compare equal.
func NormalizeInput(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
