// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// =============================================================================
// WIRE SCALARS
// =============================================================================

// DateLayout is the backend's calendar date format.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day.
type Date struct {
	time.Time
}

// NewDate returns the date of y-m-d in UTC.
func NewDate(y int, m time.Month, d int) Date {
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalText keeps YAML and other text encoders on YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	// Some endpoints serialise dates as full timestamps.
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// timestampLayouts covers timezone-aware and naive ISO-8601 output.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// Timestamp is an ISO-8601 instant. Naive values are read as UTC.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = Timestamp{parsed}
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

// Decimal is a money amount kept as its exact decimal text. The backend
// may send it as a JSON string or number; it is always sent as a string.
type Decimal string

// Rat returns the exact value, or zero when the text does not parse.
func (d Decimal) Rat() *big.Rat {
	r, ok := new(big.Rat).SetString(string(d))
	if !ok {
		return new(big.Rat)
	}
	return r
}

// Valid reports whether d parses as a decimal number.
func (d Decimal) Valid() bool {
	_, ok := new(big.Rat).SetString(string(d))
	return ok
}

func (d Decimal) MarshalJSON() ([]byte, error) {
	if d == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(d))
}

func (d *Decimal) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = Decimal(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid decimal %s", b)
	}
	*d = Decimal(n.String())
	return nil
}

// =============================================================================
// USERS
// =============================================================================

// Role is a user's permission level.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// UserProfile is the authenticated user as returned by /api/auth/me.
type UserProfile struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// TokenResponse is the body of POST /api/auth/token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// =============================================================================
// CONTRACTS
// =============================================================================

// ContractStatus is a contract's lifecycle state.
type ContractStatus string

const (
	StatusDraft      ContractStatus = "draft"
	StatusActive     ContractStatus = "active"
	StatusCompleted  ContractStatus = "completed"
	StatusTerminated ContractStatus = "terminated"
)

// ContractStatuses lists every known status in display order.
var ContractStatuses = []ContractStatus{StatusDraft, StatusActive, StatusCompleted, StatusTerminated}

// ParseContractStatus validates s.
func ParseContractStatus(s string) (ContractStatus, error) {
	for _, st := range ContractStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown contract status %q", s)
}

// PropertyTypes are the property kinds offered by the original forms.
var PropertyTypes = []string{"квартира", "офис", "торговое помещение", "склад", "гараж"}

// Contract is a rental contract.
type Contract struct {
	ID               int64          `json:"id"`
	ContractNumber   string         `json:"contract_number"`
	ClientName       string         `json:"client_name"`
	ClientPhone      string         `json:"client_phone,omitempty"`
	ClientEmail      string         `json:"client_email,omitempty"`
	PropertyAddress  string         `json:"property_address"`
	PropertyType     string         `json:"property_type"`
	RentalAmount     Decimal        `json:"rental_amount"`
	DepositAmount    Decimal        `json:"deposit_amount"`
	StartDate        Date           `json:"start_date"`
	EndDate          Date           `json:"end_date"`
	Status           ContractStatus `json:"status"`
	ContractFilePath string         `json:"contract_file_path,omitempty"`
	CreatedBy        int64          `json:"created_by"`
	CreatedAt        Timestamp      `json:"created_at"`
	UpdatedAt        Timestamp      `json:"updated_at"`
}

// ContractCreate is the body of POST /api/contracts/.
type ContractCreate struct {
	ClientName      string  `json:"client_name"`
	ClientPhone     string  `json:"client_phone,omitempty"`
	ClientEmail     string  `json:"client_email,omitempty"`
	PropertyAddress string  `json:"property_address"`
	PropertyType    string  `json:"property_type"`
	RentalAmount    Decimal `json:"rental_amount"`
	DepositAmount   Decimal `json:"deposit_amount,omitempty"`
	StartDate       Date    `json:"start_date"`
	EndDate         Date    `json:"end_date"`
}

// ContractUpdate is the body of PUT /api/contracts/{id}. Nil fields are
// left unchanged.
type ContractUpdate struct {
	ClientName      *string         `json:"client_name,omitempty"`
	ClientPhone     *string         `json:"client_phone,omitempty"`
	ClientEmail     *string         `json:"client_email,omitempty"`
	PropertyAddress *string         `json:"property_address,omitempty"`
	PropertyType    *string         `json:"property_type,omitempty"`
	RentalAmount    *Decimal        `json:"rental_amount,omitempty"`
	DepositAmount   *Decimal        `json:"deposit_amount,omitempty"`
	StartDate       *Date           `json:"start_date,omitempty"`
	EndDate         *Date           `json:"end_date,omitempty"`
	Status          *ContractStatus `json:"status,omitempty"`
}

// ContractFilter holds list query parameters.
type ContractFilter struct {
	Skip         int
	Limit        int
	Status       ContractStatus
	ExpiringSoon bool
}

// =============================================================================
// DOCUMENTS
// =============================================================================

// Document is an uploaded file with metadata.
type Document struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	FilePath    string    `json:"file_path"`
	FileType    string    `json:"file_type"`
	FileSize    int64     `json:"file_size,omitempty"`
	ContractID  *int64    `json:"contract_id,omitempty"`
	UploadedBy  int64     `json:"uploaded_by"`
	Tags        []string  `json:"tags"`
	ExpiryDate  Date      `json:"expiry_date"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
}

// DocumentUpdate is the body of PUT /api/documents/{id}.
type DocumentUpdate struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	ExpiryDate  *Date     `json:"expiry_date,omitempty"`
}

// DocumentFilter holds list query parameters.
type DocumentFilter struct {
	Skip       int
	Limit      int
	ContractID int64
	Search     string
	Tags       []string
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

// NotificationType classifies a notification. Unknown values are kept
// verbatim.
type NotificationType string

const (
	TypeInfo           NotificationType = "info"
	TypeContractExpiry NotificationType = "contract_expiry"
	TypePaymentDue     NotificationType = "payment_due"
	TypeDocumentExpiry NotificationType = "document_expiry"
	TypeDocumentUpload NotificationType = "document_upload"
)

// Known reports whether t is one of the documented types.
func (t NotificationType) Known() bool {
	switch t {
	case TypeInfo, TypeContractExpiry, TypePaymentDue, TypeDocumentExpiry, TypeDocumentUpload:
		return true
	}
	return false
}

// Notification is one item of the user's notification list.
type Notification struct {
	ID                int64            `json:"id"`
	UserID            int64            `json:"user_id"`
	Title             string           `json:"title"`
	Message           string           `json:"message"`
	Type              NotificationType `json:"type"`
	IsRead            bool             `json:"is_read"`
	RelatedContractID *int64           `json:"related_contract_id,omitempty"`
	RelatedDocumentID *int64           `json:"related_document_id,omitempty"`
	ScheduledDate     *Timestamp       `json:"scheduled_date,omitempty"`
	CreatedAt         Timestamp        `json:"created_at"`
}

// NotificationCreate is the body of POST /api/notifications/.
type NotificationCreate struct {
	UserID            int64            `json:"user_id"`
	Title             string           `json:"title"`
	Message           string           `json:"message"`
	Type              NotificationType `json:"type,omitempty"`
	RelatedContractID *int64           `json:"related_contract_id,omitempty"`
	RelatedDocumentID *int64           `json:"related_document_id,omitempty"`
	ScheduledDate     *Timestamp       `json:"scheduled_date,omitempty"`
}

// NotificationUpdate is the body of PUT /api/notifications/{id}.
type NotificationUpdate struct {
	IsRead *bool `json:"is_read,omitempty"`
}

// NotificationFilter holds list query parameters.
type NotificationFilter struct {
	Skip       int
	Limit      int
	UnreadOnly bool
}
