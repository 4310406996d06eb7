// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth owns the session lifecycle: restoring a persisted token at
// startup, logging in and out, and reacting to forced logouts from the
// request pipeline or from another process removing the token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kyzylzhar/docflow/internal/api"
	"github.com/kyzylzhar/docflow/internal/logging"
	"github.com/kyzylzhar/docflow/internal/session"
)

// =============================================================================
// STATES AND EVENTS
// =============================================================================

// State is the controller's lifecycle state.
type State int

const (
	// Unauthenticated: no usable session.
	Unauthenticated State = iota
	// Restoring: a persisted token is being validated.
	Restoring
	// Authenticated: token and profile are both present.
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Restoring:
		return "restoring"
	case Authenticated:
		return "authenticated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Reason explains a transition.
type Reason string

const (
	ReasonLogin        Reason = "login"
	ReasonRestore      Reason = "restore"
	ReasonLogout       Reason = "logout"
	ReasonUnauthorized Reason = "unauthorized"
	ReasonTokenRemoved Reason = "token_removed"
)

// Forced reports whether the transition was not requested by the user.
func (r Reason) Forced() bool {
	return r == ReasonUnauthorized || r == ReasonTokenRemoved
}

// Event is one state transition.
type Event struct {
	From   State
	To     State
	Reason Reason
	// User is set when To is Authenticated.
	User *api.UserProfile
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrNotAuthenticated is returned by operations that need a session.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrSuperseded: a logout or a newer login or restore happened while a
// login or restore was in flight.
var ErrSuperseded = errors.New("session changed while signing in")

// DefaultLoginFailure is shown when the backend gives no detail.
const DefaultLoginFailure = "Ошибка входа. Проверьте email и пароль."

// LoginError is a failed login. Message is user-facing.
type LoginError struct {
	Message string
	Err     error
}

func (e *LoginError) Error() string { return e.Message }
func (e *LoginError) Unwrap() error { return e.Err }

// Authenticator is the slice of the backend the controller needs.
// *api.AuthService implements it.
type Authenticator interface {
	Token(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context) (*api.UserProfile, error)
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller is the auth state machine. It never holds its lock across a
// backend call, so pipeline callbacks may re-enter it.
type Controller struct {
	store session.Store
	creds *api.Credentials
	authn Authenticator
	log   *logging.Logger

	loginFailure string

	mu    sync.RWMutex
	state State
	user  *api.UserProfile
	// epoch increments on every login, restore and session end; in-flight
	// results from an older epoch are discarded.
	epoch uint64
	// installed is the epoch whose token is in the store and credentials.
	installed uint64

	subMu sync.Mutex
	subs  map[int]chan Event
	next  int
	hooks []func(Event)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the audit logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l.With("component", "auth")
		}
	}
}

// WithLoginFailureMessage overrides the generic invalid-credentials text.
func WithLoginFailureMessage(msg string) Option {
	return func(c *Controller) {
		if msg != "" {
			c.loginFailure = msg
		}
	}
}

// New returns a controller in the Restoring state; call Restore next.
func New(store session.Store, creds *api.Credentials, authn Authenticator, opts ...Option) *Controller {
	c := &Controller{
		store:        store,
		creds:        creds,
		authn:        authn,
		log:          logging.Discard(),
		loginFailure: DefaultLoginFailure,
		state:        Restoring,
		subs:         make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// User returns a copy of the current profile, or nil.
func (c *Controller) User() *api.UserProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// IsAuthenticated is token present AND profile present.
func (c *Controller) IsAuthenticated() bool {
	c.mu.RLock()
	hasUser := c.state == Authenticated && c.user != nil
	c.mu.RUnlock()
	_, hasToken := c.creds.Token()
	return hasUser && hasToken
}

// Restore validates a persisted token. Without one the controller becomes
// Unauthenticated and nil is returned. Any validation failure clears the
// token and is returned for logging; the state is Unauthenticated either way.
func (c *Controller) Restore(ctx context.Context) error {
	epoch := c.enter(Restoring, ReasonRestore)

	token, ok, err := c.store.Load()
	if err != nil {
		c.log.Warn("stored token unreadable, discarding", "error", err)
		c.fail(epoch, ReasonRestore)
		return fmt.Errorf("restore session: %w", err)
	}
	if !ok {
		c.fail(epoch, ReasonRestore)
		return nil
	}

	if err := c.install(epoch, token, false); err != nil {
		return ErrSuperseded
	}
	user, err := c.authn.Me(ctx)
	if err != nil {
		c.log.Info("stored token rejected", "error", err)
		c.fail(epoch, ReasonRestore)
		return fmt.Errorf("restore session: %w", err)
	}

	if !c.commit(epoch, user, ReasonRestore) {
		return ErrSuperseded
	}
	return nil
}

// Login authenticates with email and password. On success the token is
// persisted, Credentials is set before the profile is fetched, and the
// controller becomes Authenticated. Failures return *LoginError and leave
// the controller Unauthenticated with nothing persisted. A newer Login,
// Restore or Logout supersedes one still in flight.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	epoch := c.begin()

	token, err := c.authn.Token(ctx, email, password)
	if err != nil {
		c.log.Info("login rejected", "email", email, "error", err)
		c.fail(epoch, ReasonLogin)
		return c.loginError(err)
	}

	// The store and the pipeline must carry the same token.
	token = strings.TrimSpace(token)
	if err := c.install(epoch, token, true); err != nil {
		if errors.Is(err, ErrSuperseded) {
			return &LoginError{Message: c.loginFailure, Err: ErrSuperseded}
		}
		c.log.Error("failed to persist token", "error", err)
		c.fail(epoch, ReasonLogin)
		return &LoginError{Message: err.Error(), Err: err}
	}

	user, err := c.authn.Me(ctx)
	if err != nil {
		c.log.Warn("profile fetch failed after login, reverting", "email", email, "error", err)
		c.fail(epoch, ReasonLogin)
		return c.loginError(err)
	}

	if !c.commit(epoch, user, ReasonLogin) {
		c.revert(epoch)
		return &LoginError{Message: c.loginFailure, Err: ErrSuperseded}
	}
	return nil
}

// Logout ends the session. It never fails; when already Unauthenticated it
// still clears storage but emits nothing.
func (c *Controller) Logout() {
	c.end(ReasonLogout)
}

// ForceLogout ends the session for a reason outside the user's control.
func (c *Controller) ForceLogout(reason Reason) {
	c.end(reason)
}

// HandleUnauthorized is the pipeline's 401 callback.
func (c *Controller) HandleUnauthorized(group api.Group) {
	c.log.Info("forced logout", "group", group)
	c.end(ReasonUnauthorized)
}

// HandleTokenRemoved reacts to another process removing the token file.
// A token that reappeared before the event was handled wins.
func (c *Controller) HandleTokenRemoved() {
	if _, ok, err := c.store.Load(); err == nil && ok {
		return
	}
	c.end(ReasonTokenRemoved)
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// OnTransition registers fn to run synchronously on every transition,
// before subscribers are notified. Logout and the forced logouts return
// only after fn has run. fn must not block on the controller's own
// operations.
func (c *Controller) OnTransition(fn func(Event)) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	c.hooks = append(c.hooks, fn)
}

// Subscribe returns a channel of transitions and a cancel func that closes
// it. Slow subscribers lose events rather than block the controller.
func (c *Controller) Subscribe() (<-chan Event, func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	id := c.next
	c.next++
	ch := make(chan Event, 32)
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.subMu.Lock()
			defer c.subMu.Unlock()
			delete(c.subs, id)
			close(ch)
		})
	}
}

func (c *Controller) emit(ev Event) {
	c.log.Info("auth transition", "from", ev.From.String(), "to", ev.To.String(), "reason", string(ev.Reason))

	c.subMu.Lock()
	hooks := c.hooks
	c.subMu.Unlock()
	for _, fn := range hooks {
		fn(ev)
	}

	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
			c.log.Warn("dropping auth event for slow subscriber", "reason", string(ev.Reason))
		}
	}
}

// =============================================================================
// INTERNAL TRANSITIONS
// =============================================================================

// begin starts a new epoch and returns it.
func (c *Controller) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	return c.epoch
}

// enter moves to state in a new epoch and returns that epoch.
func (c *Controller) enter(state State, reason Reason) uint64 {
	c.mu.Lock()
	from := c.state
	c.state = state
	if state != Authenticated {
		c.user = nil
	}
	c.epoch++
	epoch := c.epoch
	c.mu.Unlock()

	if from != state {
		c.emit(Event{From: from, To: state, Reason: reason})
	}
	return epoch
}

// commit publishes a validated session unless the epoch moved on.
func (c *Controller) commit(epoch uint64, user *api.UserProfile, reason Reason) bool {
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return false
	}
	from := c.state
	c.state = Authenticated
	c.user = user
	c.mu.Unlock()

	snapshot := *user
	c.log.Info("signed in", "user_id", user.ID, "email", user.Email, "role", string(user.Role))
	c.emit(Event{From: from, To: Authenticated, Reason: reason, User: &snapshot})
	return true
}

// install hands token to the pipeline, and to the store when persist is
// set, unless epoch was superseded.
func (c *Controller) install(epoch uint64, token string, persist bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return ErrSuperseded
	}
	if persist {
		if err := c.store.Save(token); err != nil {
			return err
		}
	}
	c.creds.Set(token)
	c.installed = epoch
	return nil
}

// fail clears everything and settles on Unauthenticated. A failure from a
// superseded epoch changes nothing. The check and the clear share one
// critical section so a newer session is never wiped.
func (c *Controller) fail(epoch uint64, reason Reason) {
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return
	}
	from := c.state
	c.state = Unauthenticated
	c.user = nil
	c.clearStorage()
	c.mu.Unlock()

	if from != Unauthenticated {
		c.emit(Event{From: from, To: Unauthenticated, Reason: reason})
	}
}

// end implements Logout and forced logouts.
func (c *Controller) end(reason Reason) {
	c.mu.Lock()
	from := c.state
	c.epoch++
	c.state = Unauthenticated
	c.user = nil
	c.clearStorage()
	c.mu.Unlock()

	if from != Unauthenticated {
		c.emit(Event{From: from, To: Unauthenticated, Reason: reason})
	}
}

// clearStorage must be called with mu held.
func (c *Controller) clearStorage() {
	if err := c.store.Clear(); err != nil {
		c.log.Warn("failed to clear stored token", "error", err)
	}
	c.creds.Clear()
}

// revert undoes a superseded login's writes unless a newer login or
// restore installed its own token since.
func (c *Controller) revert(epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.installed != epoch {
		return
	}
	c.clearStorage()
}

func (c *Controller) loginError(err error) *LoginError {
	msg := api.DetailOf(err)
	if msg == "" {
		msg = c.loginFailure
	}
	return &LoginError{Message: msg, Err: err}
}
