// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/kyzylzhar/docflow/internal/logging"
	"github.com/kyzylzhar/docflow/internal/session"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultTimeout bounds every request unless WithTimeout overrides it.
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize caps JSON bodies. Downloads stream and are not capped.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB

	// RequestIDHeader carries a per-request UUID for backend log correlation.
	RequestIDHeader = "X-Request-ID"
)

// Version is reported in the User-Agent header. Set by main.
var Version = "dev"

// Group names a backend resource group. All groups share one pipeline.
type Group string

const (
	GroupAuth          Group = "auth"
	GroupContracts     Group = "contracts"
	GroupDocuments     Group = "documents"
	GroupNotifications Group = "notifications"
)

// Groups lists every resource group.
var Groups = []Group{GroupAuth, GroupContracts, GroupDocuments, GroupNotifications}

// =============================================================================
// CLIENT
// =============================================================================

// Client is the authenticated request pipeline and its resource services.
type Client struct {
	baseURL   string
	http      *http.Client
	creds     *Credentials
	store     session.Store
	limiter   *rate.Limiter
	log       *logging.Logger
	userAgent string

	mu             sync.RWMutex
	onUnauthorized func(Group)

	Auth          *AuthService
	Contracts     *ContractsService
	Documents     *DocumentsService
	Notifications *NotificationsService
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout. There are no retries.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit caps outbound requests per second. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithStore sets the session store cleared on 401.
func WithStore(s session.Store) Option {
	return func(c *Client) { c.store = s }
}

// WithLogger sets the request logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l.With("component", "api")
		}
	}
}

// NewClient returns a client for the backend at baseURL.
func NewClient(baseURL string, creds *Credentials, opts ...Option) *Client {
	if creds == nil {
		creds = NewCredentials()
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: DefaultTimeout},
		creds:     creds,
		log:       logging.Discard(),
		userAgent: "docflow/" + Version,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Auth = &AuthService{c: c}
	c.Contracts = &ContractsService{c: c}
	c.Documents = &DocumentsService{c: c}
	c.Notifications = &NotificationsService{c: c}
	return c
}

// BaseURL returns the backend origin.
func (c *Client) BaseURL() string { return c.baseURL }

// Credentials returns the credentials the pipeline reads.
func (c *Client) Credentials() *Credentials { return c.creds }

// OnUnauthorized registers fn to run synchronously after any 401, once the
// store and credentials have been cleared. fn must not block on a request
// made through this client.
func (c *Client) OnUnauthorized(fn func(Group)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

// =============================================================================
// PIPELINE
// =============================================================================

// request describes one call relative to /api/<group>.
type request struct {
	group       Group
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

func (c *Client) endpoint(r request) string {
	u := c.baseURL + "/api/" + string(r.group) + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	return u
}

// setHeaders attaches identity, correlation and, when present, the token.
func (c *Client) setHeaders(req *http.Request, r request) string {
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, requestID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if token, ok := c.creds.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return requestID
}

// do sends r and returns a 2xx response whose body the caller must close.
// Non-2xx responses become *Error; 401 additionally clears the session.
func (c *Client) do(ctx context.Context, r request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s %s: rate limit: %w", r.method, r.path, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.endpoint(r), r.body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	requestID := c.setHeaders(req, r)

	start := time.Now()
	resp, err := c.http.Do(req)
	// Keep the token out of anything that might log the request later.
	req.Header.Del("Authorization")
	if err != nil {
		c.log.Debug("request failed", "group", r.group, "method", r.method, "path", r.path,
			"request_id", requestID, "error", err)
		return nil, fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	c.log.Debug("request", "group", r.group, "method", r.method, "path", r.path,
		"status", resp.StatusCode, "duration", time.Since(start), "request_id", requestID)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	apiErr := &Error{
		Status:    resp.StatusCode,
		Detail:    parseDetail(body),
		RequestID: requestID,
		Method:    r.method,
		Path:      "/api/" + string(r.group) + r.path,
	}
	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized(r.group)
	}
	return nil, apiErr
}

// handleUnauthorized clears persisted and in-memory credentials, then
// signals. Safe to run any number of times.
func (c *Client) handleUnauthorized(group Group) {
	if c.store != nil {
		if err := c.store.Clear(); err != nil {
			c.log.Warn("failed to clear stored token after 401", "error", err)
		}
	}
	c.creds.Clear()
	c.log.Info("session rejected by backend", "group", group)

	c.mu.RLock()
	fn := c.onUnauthorized
	c.mu.RUnlock()
	if fn != nil {
		fn(group)
	}
}

// doJSON sends in (if non-nil) as JSON and decodes the response into out
// (if non-nil).
func (c *Client) doJSON(ctx context.Context, r request, in, out any) error {
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		r.body = bytes.NewReader(data)
		r.contentType = "application/json"
	}

	resp, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// readResponse reads a JSON body up to MaxResponseSize.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrResponseTooLarge, MaxResponseSize)
	}
	return body, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// IsUnauthorized reports whether err came from a 401.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// idPath renders "/{id}".
func idPath(id int64) string {
	return fmt.Sprintf("/%d", id)
}

// pageQuery adds skip/limit when set.
func pageQuery(q url.Values, skip, limit int) {
	if skip > 0 {
		q.Set("skip", fmt.Sprint(skip))
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
}
