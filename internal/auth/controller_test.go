// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyzylzhar/docflow/internal/api"
	"github.com/kyzylzhar/docflow/internal/session"
)

// =============================================================================
// FAKE BACKEND
// =============================================================================

type account struct {
	password string
	profile  string
}

// fakeBackend implements /api/auth/token, /api/auth/me and a protected
// /api/contracts/ list.
type fakeBackend struct {
	mu       sync.Mutex
	accounts map[string]account
	tokens   map[string]string // token -> email
	meStatus int               // when non-zero, /me answers with it

	meAuth  []string
	meCalls int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		accounts: map[string]account{
			"admin@kyzylzhar.kz": {
				password: "admin123",
				profile: `{"id":1,"email":"admin@kyzylzhar.kz","full_name":"Администратор Системы",
					"role":"admin","is_active":true,"created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-01T00:00:00Z"}`,
			},
		},
		tokens: map[string]string{},
	}
}

func (b *fakeBackend) issue(token, email string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[token] = email
}

func (b *fakeBackend) setMeStatus(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.meStatus = status
}

func (b *fakeBackend) profileCalls() (int, []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.meCalls, append([]string(nil), b.meAuth...)
}

func (b *fakeBackend) revokeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = map[string]string{}
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api/auth/token":
		_ = r.ParseForm()
		acct, ok := b.accounts[r.PostForm.Get("username")]
		if !ok || acct.password != r.PostForm.Get("password") {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"detail":"Incorrect username or password"}`)
			return
		}
		b.tokens["abc"] = r.PostForm.Get("username")
		io.WriteString(w, `{"access_token":"abc","token_type":"bearer"}`)

	case "/api/auth/me":
		b.meCalls++
		b.meAuth = append(b.meAuth, r.Header.Get("Authorization"))
		if b.meStatus != 0 {
			w.WriteHeader(b.meStatus)
			return
		}
		email, ok := b.tokens[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"detail":"Could not validate credentials"}`)
			return
		}
		io.WriteString(w, b.accounts[email].profile)

	case "/api/contracts/":
		if _, ok := b.tokens[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]; !ok {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"detail":"Not authenticated"}`)
			return
		}
		io.WriteString(w, `[]`)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type fixture struct {
	backend *fakeBackend
	server  *httptest.Server
	store   *session.MemoryStore
	client  *api.Client
	ctrl    *Controller
	events  <-chan Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{backend: newFakeBackend(), store: session.NewMemoryStore()}
	f.server = httptest.NewServer(f.backend)
	t.Cleanup(f.server.Close)

	creds := api.NewCredentials()
	f.client = api.NewClient(f.server.URL, creds, api.WithStore(f.store))
	f.ctrl = New(f.store, creds, f.client.Auth)
	f.client.OnUnauthorized(f.ctrl.HandleUnauthorized)

	events, cancel := f.ctrl.Subscribe()
	t.Cleanup(cancel)
	f.events = events
	return f
}

// drain returns the events emitted so far.
func (f *fixture) drain() []Event {
	var out []Event
	for {
		select {
		case ev := <-f.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func transitions(events []Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, fmt.Sprintf("%s->%s(%s)", ev.From, ev.To, ev.Reason))
	}
	return out
}

// =============================================================================
// LOGIN
// =============================================================================

func TestLogin_AdminScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.ctrl.Restore(ctx))
	assert.Equal(t, Unauthenticated, f.ctrl.State())

	err := f.ctrl.Login(ctx, "admin@kyzylzhar.kz", "admin123")
	require.NoError(t, err)

	assert.Equal(t, Authenticated, f.ctrl.State())
	assert.True(t, f.ctrl.IsAuthenticated())

	token, ok, _ := f.store.Load()
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	credToken, ok := f.client.Credentials().Token()
	assert.True(t, ok)
	assert.Equal(t, "abc", credToken)

	user := f.ctrl.User()
	require.NotNil(t, user)
	assert.Equal(t, api.RoleAdmin, user.Role)

	// The profile fetch already carried the new token.
	_, seen := f.backend.profileCalls()
	assert.Equal(t, []string{"Bearer abc"}, seen)

	evs := f.drain()
	assert.Equal(t, []string{
		"restoring->unauthenticated(restore)",
		"unauthenticated->authenticated(login)",
	}, transitions(evs))
	require.NotNil(t, evs[1].User)
	assert.Equal(t, "admin@kyzylzhar.kz", evs[1].User.Email)
}

func TestLogin_BackendDetail(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.Restore(context.Background()))

	err := f.ctrl.Login(context.Background(), "admin@kyzylzhar.kz", "wrong")
	require.Error(t, err)

	var loginErr *LoginError
	require.True(t, errors.As(err, &loginErr))
	assert.Equal(t, "Incorrect username or password", loginErr.Message)
	assert.True(t, errors.Is(err, api.ErrUnauthorized))

	assert.Equal(t, Unauthenticated, f.ctrl.State())
	assert.False(t, f.ctrl.IsAuthenticated())
	_, ok, _ := f.store.Load()
	assert.False(t, ok)
	calls, _ := f.backend.profileCalls()
	assert.Zero(t, calls, "no profile fetch without a token")
}

func TestLogin_GenericMessageWithoutDetail(t *testing.T) {
	f := newFixture(t)
	f.server.Close() // transport failure, no detail

	err := f.ctrl.Login(context.Background(), "admin@kyzylzhar.kz", "admin123")
	var loginErr *LoginError
	require.True(t, errors.As(err, &loginErr))
	assert.Equal(t, DefaultLoginFailure, loginErr.Message)
	assert.Equal(t, Unauthenticated, f.ctrl.State())
}

func TestLogin_CustomFailureMessage(t *testing.T) {
	f := newFixture(t)
	f.server.Close()
	f.ctrl.loginFailure = "Sign-in failed"

	err := f.ctrl.Login(context.Background(), "a", "b")
	assert.EqualError(t, err, "Sign-in failed")
}

func TestLogin_ProfileFailureReverts(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.Restore(context.Background()))
	f.drain()
	f.backend.setMeStatus(http.StatusInternalServerError)

	err := f.ctrl.Login(context.Background(), "admin@kyzylzhar.kz", "admin123")
	require.Error(t, err)

	assert.Equal(t, Unauthenticated, f.ctrl.State())
	assert.False(t, f.ctrl.IsAuthenticated())
	assert.Nil(t, f.ctrl.User())
	_, ok, _ := f.store.Load()
	assert.False(t, ok, "token reverted")
	_, ok = f.client.Credentials().Token()
	assert.False(t, ok, "credentials reverted")
	assert.Empty(t, f.drain(), "never observable as authenticated")
}

// =============================================================================
// RESTORE
// =============================================================================

func TestRestore_NoToken(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, Restoring, f.ctrl.State())

	require.NoError(t, f.ctrl.Restore(context.Background()))
	assert.Equal(t, Unauthenticated, f.ctrl.State())
	calls, _ := f.backend.profileCalls()
	assert.Zero(t, calls)
}

func TestRestore_ValidToken(t *testing.T) {
	f := newFixture(t)
	f.backend.issue("abc", "admin@kyzylzhar.kz")
	require.NoError(t, f.store.Save("abc"))

	require.NoError(t, f.ctrl.Restore(context.Background()))
	assert.Equal(t, Authenticated, f.ctrl.State())
	assert.True(t, f.ctrl.IsAuthenticated())
	assert.Equal(t, []string{"restoring->authenticated(restore)"}, transitions(f.drain()))
}

func TestRestore_RejectedToken(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Save("stale"))

	err := f.ctrl.Restore(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnauthorized)

	assert.Equal(t, Unauthenticated, f.ctrl.State())
	_, ok, _ := f.store.Load()
	assert.False(t, ok)
	_, ok = f.client.Credentials().Token()
	assert.False(t, ok)
}

func TestRestore_NetworkFailureClearsToken(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Save("abc"))
	f.server.Close()

	err := f.ctrl.Restore(context.Background())
	require.Error(t, err)
	assert.Equal(t, Unauthenticated, f.ctrl.State())
	_, ok, _ := f.store.Load()
	assert.False(t, ok)
}

type corruptStore struct {
	session.MemoryStore
	cleared bool
}

func (s *corruptStore) Load() (string, bool, error) {
	return "", false, session.ErrCorrupt
}

func (s *corruptStore) Clear() error {
	s.cleared = true
	return nil
}

func TestRestore_CorruptStore(t *testing.T) {
	store := &corruptStore{}
	ctrl := New(store, api.NewCredentials(), api.NewClient("http://127.0.0.1:1", nil).Auth)

	err := ctrl.Restore(context.Background())
	assert.ErrorIs(t, err, session.ErrCorrupt)
	assert.True(t, store.cleared)
	assert.Equal(t, Unauthenticated, ctrl.State())
}

// =============================================================================
// LOGOUT
// =============================================================================

func TestLogout_Idempotent(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.Login(context.Background(), "admin@kyzylzhar.kz", "admin123"))
	f.drain()

	f.ctrl.Logout()
	assert.Equal(t, Unauthenticated, f.ctrl.State())
	assert.Nil(t, f.ctrl.User())
	_, ok, _ := f.store.Load()
	assert.False(t, ok)
	_, ok = f.client.Credentials().Token()
	assert.False(t, ok)
	assert.Equal(t, []string{"authenticated->unauthenticated(logout)"}, transitions(f.drain()))

	f.ctrl.Logout()
	assert.Empty(t, f.drain(), "second logout emits nothing")
}

func TestForcedLogout_OnUnauthorizedResponse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.ctrl.Login(ctx, "admin@kyzylzhar.kz", "admin123"))
	f.drain()

	f.backend.revokeAll()
	_, err := f.client.Contracts.List(ctx, api.ContractFilter{})
	require.ErrorIs(t, err, api.ErrUnauthorized)

	assert.Equal(t, Unauthenticated, f.ctrl.State())
	assert.False(t, f.ctrl.IsAuthenticated())
	evs := f.drain()
	require.Len(t, evs, 1)
	assert.Equal(t, ReasonUnauthorized, evs[0].Reason)
	assert.True(t, evs[0].Reason.Forced())

	// A second 401 is a no-op for the controller.
	_, _ = f.client.Contracts.List(ctx, api.ContractFilter{})
	assert.Empty(t, f.drain())
}

func TestHandleTokenRemoved(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.Login(context.Background(), "admin@kyzylzhar.kz", "admin123"))
	f.drain()

	// Token still present: ignored.
	f.ctrl.HandleTokenRemoved()
	assert.Equal(t, Authenticated, f.ctrl.State())

	require.NoError(t, f.store.Clear())
	f.ctrl.HandleTokenRemoved()
	assert.Equal(t, Unauthenticated, f.ctrl.State())
	assert.Equal(t, []string{"authenticated->unauthenticated(token_removed)"}, transitions(f.drain()))
}

func TestOnTransition_RunsBeforeLogoutReturns(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.Login(context.Background(), "admin@kyzylzhar.kz", "admin123"))

	var seen []Event
	f.ctrl.OnTransition(func(ev Event) { seen = append(seen, ev) })

	f.ctrl.Logout()
	assert.Equal(t, []string{"authenticated->unauthenticated(logout)"}, transitions(seen))

	// A forced logout runs the hook inside the failing request.
	require.NoError(t, f.ctrl.Login(context.Background(), "admin@kyzylzhar.kz", "admin123"))
	f.backend.revokeAll()
	_, err := f.client.Contracts.List(context.Background(), api.ContractFilter{})
	require.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, []string{
		"authenticated->unauthenticated(logout)",
		"unauthenticated->authenticated(login)",
		"authenticated->unauthenticated(unauthorized)",
	}, transitions(seen))
}

// =============================================================================
// CONCURRENT LOGINS
// =============================================================================

// scriptedAuthn issues token for every password except slow, which blocks
// until release is closed and then answers with slowToken or slowErr.
type scriptedAuthn struct {
	creds *api.Credentials
	token string

	slow      string
	slowToken string
	slowErr   error
	entered   chan struct{}
	release   chan struct{}

	mu   sync.Mutex
	seen []string
}

func newScriptedAuthn(creds *api.Credentials, token string) *scriptedAuthn {
	return &scriptedAuthn{
		creds:   creds,
		token:   token,
		slow:    "slow",
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (a *scriptedAuthn) Token(ctx context.Context, email, password string) (string, error) {
	if password != a.slow {
		return a.token, nil
	}
	a.entered <- struct{}{}
	<-a.release
	return a.slowToken, a.slowErr
}

func (a *scriptedAuthn) Me(ctx context.Context) (*api.UserProfile, error) {
	token, _ := a.creds.Token()
	a.mu.Lock()
	a.seen = append(a.seen, token)
	a.mu.Unlock()
	return &api.UserProfile{ID: 1, Email: "admin@kyzylzhar.kz", Role: api.RoleAdmin}, nil
}

func (a *scriptedAuthn) profileTokens() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.seen...)
}

func TestLogin_TrimsTokenOnce(t *testing.T) {
	store, creds := session.NewMemoryStore(), api.NewCredentials()
	authn := newScriptedAuthn(creds, " tok-b \n")
	ctrl := New(store, creds, authn)

	require.NoError(t, ctrl.Login(context.Background(), "admin@kyzylzhar.kz", "admin123"))

	stored, ok, err := store.Load()
	require.NoError(t, err)
	require.True(t, ok)
	current, ok := creds.Token()
	require.True(t, ok)
	assert.Equal(t, "tok-b", stored)
	assert.Equal(t, stored, current, "store and pipeline carry the same token")
	assert.Equal(t, []string{"tok-b"}, authn.profileTokens())
}

func TestLogin_StaleFailureKeepsNewerSession(t *testing.T) {
	store, creds := session.NewMemoryStore(), api.NewCredentials()
	authn := newScriptedAuthn(creds, "tok-b")
	authn.slowErr = errors.New("connection reset")
	ctrl := New(store, creds, authn)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- ctrl.Login(ctx, "admin@kyzylzhar.kz", "slow") }()
	<-authn.entered

	require.NoError(t, ctrl.Login(ctx, "admin@kyzylzhar.kz", "admin123"))
	close(authn.release)
	require.Error(t, <-done)

	assert.Equal(t, Authenticated, ctrl.State())
	assert.True(t, ctrl.IsAuthenticated())
	stored, ok, _ := store.Load()
	assert.True(t, ok)
	assert.Equal(t, "tok-b", stored)
	current, _ := creds.Token()
	assert.Equal(t, "tok-b", current)
}

func TestLogin_SupersededSuccessKeepsNewerSession(t *testing.T) {
	store, creds := session.NewMemoryStore(), api.NewCredentials()
	authn := newScriptedAuthn(creds, "tok-b")
	authn.slowToken = "tok-a"
	ctrl := New(store, creds, authn)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- ctrl.Login(ctx, "admin@kyzylzhar.kz", "slow") }()
	<-authn.entered

	require.NoError(t, ctrl.Login(ctx, "admin@kyzylzhar.kz", "admin123"))
	close(authn.release)

	err := <-done
	assert.ErrorIs(t, err, ErrSuperseded)
	stored, _, _ := store.Load()
	assert.Equal(t, "tok-b", stored)
	current, _ := creds.Token()
	assert.Equal(t, "tok-b", current)
	assert.Equal(t, []string{"tok-b"}, authn.profileTokens(), "the superseded login never fetched a profile")
}

func TestLogout_SupersedesLoginInFlight(t *testing.T) {
	store, creds := session.NewMemoryStore(), api.NewCredentials()
	authn := newScriptedAuthn(creds, "tok-b")
	authn.slowToken = "tok-a"
	ctrl := New(store, creds, authn)

	done := make(chan error, 1)
	go func() { done <- ctrl.Login(context.Background(), "admin@kyzylzhar.kz", "slow") }()
	<-authn.entered

	ctrl.Logout()
	close(authn.release)

	assert.ErrorIs(t, <-done, ErrSuperseded)
	assert.Equal(t, Unauthenticated, ctrl.State())
	_, ok, _ := store.Load()
	assert.False(t, ok)
	_, ok = creds.Token()
	assert.False(t, ok)
}

func TestSubscribe_CancelClosesChannel(t *testing.T) {
	ctrl := New(session.NewMemoryStore(), api.NewCredentials(), nil)
	ch, cancel := ctrl.Subscribe()
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	// Emitting after cancel must not panic.
	ctrl.Logout()
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "restoring", Restoring.String())
	assert.Equal(t, "state(9)", State(9).String())
}
