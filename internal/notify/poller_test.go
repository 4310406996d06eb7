// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyzylzhar/docflow/internal/api"
	"github.com/kyzylzhar/docflow/internal/auth"
	"github.com/kyzylzhar/docflow/internal/session"
)

// fakeSource is an in-memory notifications backend.
type fakeSource struct {
	mu        sync.Mutex
	items     []api.Notification
	listCalls int
	calls     []string
	failWith  error

	// gate, when set, blocks List until closed; entered is signalled first.
	gate    chan struct{}
	entered chan struct{}

	onDelete func(id int64)
	onList   func()
}

func newFakeSource(items ...api.Notification) *fakeSource {
	return &fakeSource{items: items}
}

func (f *fakeSource) List(ctx context.Context, _ api.NotificationFilter) ([]api.Notification, error) {
	f.mu.Lock()
	f.listCalls++
	gate, entered, hook := f.gate, f.entered, f.onList
	out := make([]api.Notification, len(f.items))
	copy(out, f.items)
	f.mu.Unlock()

	if hook != nil {
		hook()
	}

	if gate != nil {
		if entered != nil {
			entered <- struct{}{}
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return out, nil
}

func (f *fakeSource) MarkRead(_ context.Context, id int64) error {
	return f.record(fmt.Sprintf("PUT /%d", id))
}

func (f *fakeSource) MarkAllRead(context.Context) error {
	return f.record("PUT /mark-all-read")
}

func (f *fakeSource) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	hook := f.onDelete
	f.mu.Unlock()
	if hook != nil {
		hook(id)
	}
	return f.record(fmt.Sprintf("DELETE /%d", id))
}

func (f *fakeSource) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.failWith
}

func (f *fakeSource) lists() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeSource) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func note(id int64, read bool) api.Notification {
	return api.Notification{ID: id, Title: fmt.Sprintf("n%d", id), Type: api.TypeInfo, IsRead: read}
}

func ids(items []api.Notification) []int64 {
	out := make([]int64, 0, len(items))
	for _, n := range items {
		out = append(out, n.ID)
	}
	return out
}

// startLoaded starts p and waits for the first fetch to land.
func startLoaded(t *testing.T, p *Poller, want int) {
	t.Helper()
	p.Start()
	t.Cleanup(p.Close)
	require.Eventually(t, func() bool { return len(p.Items()) == want }, time.Second, 5*time.Millisecond)
}

// =============================================================================
// OPTIMISTIC MUTATIONS
// =============================================================================

func TestDelete_RemovesBeforeBackendCall(t *testing.T) {
	src := newFakeSource(note(3, false), note(5, false), note(7, true))
	p := New(src, WithInterval(time.Hour))
	startLoaded(t, p, 3)

	var seenDuringCall []int64
	src.onDelete = func(int64) { seenDuringCall = ids(p.Items()) }

	require.NoError(t, p.Delete(context.Background(), 5))

	assert.Equal(t, []int64{3, 7}, seenDuringCall)
	assert.Equal(t, []int64{3, 7}, ids(p.Items()))
	assert.Equal(t, []string{"DELETE /5"}, src.recorded())
	assert.Equal(t, 1, p.UnreadCount())
}

func TestDelete_FailureKeepsLocalRemoval(t *testing.T) {
	src := newFakeSource(note(3, false), note(5, false))
	p := New(src, WithInterval(time.Hour))
	startLoaded(t, p, 2)

	backendErr := &api.Error{Status: 500, Detail: "boom"}
	src.failWith = backendErr

	err := p.Delete(context.Background(), 5)
	require.Error(t, err)
	var apiErr *api.Error
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, []int64{3}, ids(p.Items()))
}

func TestMarkAsRead_UpdatesCount(t *testing.T) {
	src := newFakeSource(note(1, false), note(2, false), note(3, true))
	p := New(src, WithInterval(time.Hour))
	startLoaded(t, p, 3)
	assert.Equal(t, 2, p.UnreadCount())

	require.NoError(t, p.MarkAsRead(context.Background(), 2))
	assert.Equal(t, 1, p.UnreadCount())
	assert.Equal(t, []string{"PUT /2"}, src.recorded())

	require.NoError(t, p.MarkAllAsRead(context.Background()))
	assert.Equal(t, 0, p.UnreadCount())
	assert.Equal(t, []string{"PUT /2", "PUT /mark-all-read"}, src.recorded())
}

func TestMutations_DoNotAlterSnapshots(t *testing.T) {
	src := newFakeSource(note(1, false))
	p := New(src, WithInterval(time.Hour))
	startLoaded(t, p, 1)

	before := p.Items()
	require.NoError(t, p.MarkAsRead(context.Background(), 1))
	assert.False(t, before[0].IsRead)
	assert.True(t, p.Items()[0].IsRead)
}

// =============================================================================
// LIFETIME
// =============================================================================

func TestStop_NoFetchAfterLogout(t *testing.T) {
	src := newFakeSource(note(1, false))
	p := New(src, WithInterval(5*time.Millisecond))
	p.Start()
	require.Eventually(t, func() bool { return src.lists() >= 3 }, time.Second, time.Millisecond)

	p.Stop()
	after := src.lists()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, after, src.lists())
	assert.Empty(t, p.Items())
	assert.False(t, p.Active())

	require.NoError(t, p.Load(context.Background()))
	assert.Equal(t, after, src.lists(), "Load without a session must not fetch")
}

func TestLoad_StaleResultDiscarded(t *testing.T) {
	src := newFakeSource(note(1, false), note(2, false))
	p := New(src, WithInterval(time.Hour))
	startLoaded(t, p, 2)

	src.mu.Lock()
	src.gate = make(chan struct{})
	src.entered = make(chan struct{}, 1)
	src.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- p.Load(context.Background()) }()
	<-src.entered
	assert.True(t, p.Loading())

	p.Stop()
	close(src.gate)
	require.NoError(t, <-done)

	assert.Empty(t, p.Items())
	assert.Zero(t, p.UnreadCount())
	assert.False(t, p.Loading())
}

func TestStart_IsIdempotent(t *testing.T) {
	src := newFakeSource()
	p := New(src, WithInterval(time.Hour))
	p.Start()
	p.Start()
	t.Cleanup(p.Close)
	require.Eventually(t, func() bool { return src.lists() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, src.lists())
}

func TestUpdates_SignalsAfterFetch(t *testing.T) {
	src := newFakeSource(note(1, false))
	p := New(src, WithInterval(time.Hour))
	p.Start()
	t.Cleanup(p.Close)

	deadline := time.After(time.Second)
	for len(p.Items()) == 0 {
		select {
		case <-p.Updates():
		case <-deadline:
			t.Fatal("no update signal")
		}
	}
	assert.Equal(t, []int64{1}, ids(p.Items()))
}

// =============================================================================
// BINDING
// =============================================================================

type fakeSubscriber struct {
	ch   chan auth.Event
	once sync.Once
}

func (s *fakeSubscriber) Subscribe() (<-chan auth.Event, func()) {
	return s.ch, func() { s.once.Do(func() { close(s.ch) }) }
}

func TestBind_FollowsAuthTransitions(t *testing.T) {
	src := newFakeSource(note(1, false))
	p := New(src, WithInterval(time.Hour))
	sub := &fakeSubscriber{ch: make(chan auth.Event, 4)}
	p.Bind(sub)
	t.Cleanup(p.Close)

	sub.ch <- auth.Event{From: auth.Restoring, To: auth.Authenticated, Reason: auth.ReasonRestore}
	require.Eventually(t, func() bool { return len(p.Items()) == 1 }, time.Second, 5*time.Millisecond)

	sub.ch <- auth.Event{From: auth.Authenticated, To: auth.Unauthenticated, Reason: auth.ReasonUnauthorized}
	require.Eventually(t, func() bool { return !p.Active() }, time.Second, 5*time.Millisecond)
	assert.Empty(t, p.Items())
}

func TestBind_WithController(t *testing.T) {
	src := newFakeSource(note(9, false))
	p := New(src, WithInterval(time.Hour))

	ctrl := auth.New(session.NewMemoryStore(), api.NewCredentials(), nil)
	p.Bind(ctrl)
	t.Cleanup(p.Close)

	// Logout from Restoring emits a transition away from a non-authenticated
	// state, which must not start polling.
	ctrl.Logout()
	time.Sleep(20 * time.Millisecond)
	assert.False(t, p.Active())
	assert.Zero(t, src.lists())
}

// stubAuthn accepts any password.
type stubAuthn struct{}

func (stubAuthn) Token(context.Context, string, string) (string, error) { return "abc", nil }

func (stubAuthn) Me(context.Context) (*api.UserProfile, error) {
	return &api.UserProfile{ID: 1, Email: "admin@kyzylzhar.kz", Role: api.RoleAdmin}, nil
}

func TestHandleTransition_ClearsBeforeLogoutReturns(t *testing.T) {
	src := newFakeSource(note(1, false), note(2, false))
	p := New(src, WithInterval(time.Hour))

	ctrl := auth.New(session.NewMemoryStore(), api.NewCredentials(), stubAuthn{})
	p.Bind(ctrl)
	ctrl.OnTransition(p.HandleTransition)
	t.Cleanup(p.Close)

	require.NoError(t, ctrl.Login(context.Background(), "admin@kyzylzhar.kz", "admin123"))
	require.Eventually(t, func() bool { return len(p.Items()) == 2 }, time.Second, 5*time.Millisecond)

	ctrl.Logout()
	assert.False(t, p.Active())
	assert.Empty(t, p.Items())
	assert.Zero(t, p.UnreadCount())

	// The next user starts from an empty list of their own.
	require.NoError(t, ctrl.Login(context.Background(), "admin@kyzylzhar.kz", "admin123"))
	require.Eventually(t, func() bool { return p.Active() && len(p.Items()) == 2 }, time.Second, 5*time.Millisecond)
}

func TestHandleTransition_IgnoresOtherTransitions(t *testing.T) {
	src := newFakeSource(note(1, false))
	p := New(src, WithInterval(time.Hour))
	startLoaded(t, p, 1)

	p.HandleTransition(auth.Event{From: auth.Restoring, To: auth.Unauthenticated, Reason: auth.ReasonRestore})
	p.HandleTransition(auth.Event{From: auth.Unauthenticated, To: auth.Authenticated, Reason: auth.ReasonLogin})
	assert.True(t, p.Active())
	assert.Len(t, p.Items(), 1)
}

func TestHalt_FromInsideFetch(t *testing.T) {
	src := newFakeSource(note(1, false))
	p := New(src, WithInterval(time.Hour))
	startLoaded(t, p, 1)

	// A 401 inside the polling goroutine ends the session from that same
	// goroutine; halting must not wait for it.
	halted := make(chan struct{})
	src.mu.Lock()
	src.onList = func() {
		p.HandleTransition(auth.Event{From: auth.Authenticated, To: auth.Unauthenticated, Reason: auth.ReasonUnauthorized})
		close(halted)
	}
	src.mu.Unlock()

	go func() { _ = p.Load(context.Background()) }()
	select {
	case <-halted:
	case <-time.After(time.Second):
		t.Fatal("halt blocked inside a fetch")
	}

	assert.False(t, p.Active())
	assert.Empty(t, p.Items())
	assert.Nil(t, p.LastError())

	src.mu.Lock()
	src.onList = nil
	src.mu.Unlock()
	p.Stop()
	assert.Empty(t, p.Items(), "the in-flight result was dropped")
}
