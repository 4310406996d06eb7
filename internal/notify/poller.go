// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notify keeps the signed-in user's notification list fresh.
//
// A Poller runs one polling goroutine per authenticated lifetime. The
// lifetime starts when the auth controller reports Authenticated and ends on
// any transition away from it; ending it cancels the goroutine and bumps a
// generation counter so results still in flight are dropped.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kyzylzhar/docflow/internal/api"
	"github.com/kyzylzhar/docflow/internal/auth"
	"github.com/kyzylzhar/docflow/internal/logging"
)

const (
	// DefaultInterval matches the web client's refresh period.
	DefaultInterval = 30 * time.Second
	// DefaultLimit is the page size requested on every poll.
	DefaultLimit = 100
)

// Source is the slice of the notifications API the poller needs.
// *api.NotificationsService implements it.
type Source interface {
	List(ctx context.Context, f api.NotificationFilter) ([]api.Notification, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id int64) error
}

// Subscriber delivers auth transitions. *auth.Controller implements it.
type Subscriber interface {
	Subscribe() (<-chan auth.Event, func())
}

// =============================================================================
// POLLER
// =============================================================================

// Poller owns the in-memory notification list.
type Poller struct {
	src      Source
	interval time.Duration
	limit    int
	log      *logging.Logger

	// life serialises Start, Stop and Bind.
	life   sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
	unbind func()

	mu       sync.Mutex
	active   bool
	gen      uint64
	halt     context.CancelFunc
	items    []api.Notification
	inflight int
	lastErr  error

	updates chan struct{}
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval sets the polling period. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLimit sets the page size. Non-positive values are ignored.
func WithLimit(n int) Option {
	return func(p *Poller) {
		if n > 0 {
			p.limit = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.log = l.With("component", "notify")
		}
	}
}

// New returns an idle poller.
func New(src Source, opts ...Option) *Poller {
	p := &Poller{
		src:      src,
		interval: DefaultInterval,
		limit:    DefaultLimit,
		log:      logging.Discard(),
		updates:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// =============================================================================
// LIFETIME
// =============================================================================

// Bind follows sub's transitions: entering Authenticated starts a fresh
// lifetime, leaving it stops the current one. A previous binding is
// replaced.
func (p *Poller) Bind(sub Subscriber) {
	events, cancel := sub.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			p.apply(ev)
		}
	}()

	p.life.Lock()
	prev := p.unbind
	p.unbind = func() {
		cancel()
		<-done
	}
	p.life.Unlock()

	if prev != nil {
		prev()
	}
}

// HandleTransition ends the lifetime as soon as the session leaves
// Authenticated, without waiting for the subscription to deliver the
// event. It is meant for auth.Controller.OnTransition.
func (p *Poller) HandleTransition(ev auth.Event) {
	if ev.From == auth.Authenticated && ev.To != auth.Authenticated {
		p.Halt()
	}
}

func (p *Poller) apply(ev auth.Event) {
	switch {
	case ev.To == auth.Authenticated:
		// A lost logout event must not carry one user's list into the next.
		p.Stop()
		p.Start()
	case ev.From == auth.Authenticated:
		p.Stop()
	}
}

// Start begins a lifetime: fetch now, then every interval. Starting an
// active poller does nothing.
func (p *Poller) Start() {
	p.life.Lock()
	defer p.life.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.active = true
	p.halt = cancel
	p.lastErr = nil
	p.mu.Unlock()

	p.cancel = cancel
	p.wg.Add(1)
	go p.run(ctx, gen)
	p.log.Debug("polling started", "interval", p.interval.String())
}

// Stop ends the lifetime and clears the list. When Stop returns the polling
// goroutine has exited and no later result can reach the list.
func (p *Poller) Stop() {
	p.life.Lock()
	defer p.life.Unlock()
	if p.cancel == nil {
		return
	}

	p.Halt()
	p.cancel()
	p.cancel = nil
	p.wg.Wait()
	p.log.Debug("polling stopped")
}

// Halt ends the lifetime without waiting for the polling goroutine: the
// list is empty and Active is false when it returns, and results still in
// flight are dropped. It is safe to call from inside a fetch, such as a
// forced logout raised by a 401. Stop still has to run to reclaim the
// goroutine.
func (p *Poller) Halt() {
	p.mu.Lock()
	halt := p.halt
	p.halt = nil
	if p.active {
		p.active = false
		p.gen++
	}
	p.items = nil
	p.lastErr = nil
	p.mu.Unlock()

	if halt != nil {
		halt()
	}
	p.signal()
}

// Close unbinds from the controller and stops polling.
func (p *Poller) Close() {
	p.life.Lock()
	unbind := p.unbind
	p.unbind = nil
	p.life.Unlock()

	if unbind != nil {
		unbind()
	}
	p.Stop()
}

func (p *Poller) run(ctx context.Context, gen uint64) {
	defer p.wg.Done()

	_ = p.fetch(ctx, gen)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = p.fetch(ctx, gen)
		}
	}
}

// =============================================================================
// FETCHING
// =============================================================================

// Load refreshes the list now. Without an active lifetime it does nothing.
// Overlapping loads are not coalesced; the last to finish wins.
func (p *Poller) Load(ctx context.Context) error {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return nil
	}
	gen := p.gen
	p.mu.Unlock()
	return p.fetch(ctx, gen)
}

func (p *Poller) fetch(ctx context.Context, gen uint64) error {
	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		return nil
	}
	p.inflight++
	p.mu.Unlock()
	p.signal()

	items, err := p.src.List(ctx, api.NotificationFilter{Limit: p.limit})

	p.mu.Lock()
	p.inflight--
	if p.gen != gen {
		p.mu.Unlock()
		p.log.Debug("discarding notifications from ended session", "error", err)
		p.signal()
		return nil
	}
	if err == nil {
		p.items = items
	}
	p.lastErr = err
	p.mu.Unlock()
	p.signal()

	if err != nil {
		p.log.Warn("failed to load notifications", "error", err)
		return fmt.Errorf("load notifications: %w", err)
	}
	return nil
}

// =============================================================================
// OPTIMISTIC MUTATIONS
// =============================================================================

// MarkAsRead flips id to read locally, then tells the backend. A backend
// failure is logged and returned; the local change stays until the next
// poll replaces the list.
func (p *Poller) MarkAsRead(ctx context.Context, id int64) error {
	p.mutate(func(items []api.Notification) []api.Notification {
		for i := range items {
			if items[i].ID == id {
				items[i].IsRead = true
			}
		}
		return items
	})

	if err := p.src.MarkRead(ctx, id); err != nil {
		p.log.Warn("failed to mark notification read", "id", id, "error", err)
		return fmt.Errorf("mark notification %d read: %w", id, err)
	}
	return nil
}

// MarkAllAsRead flips every item locally, then issues one mark-all-read.
func (p *Poller) MarkAllAsRead(ctx context.Context) error {
	p.mutate(func(items []api.Notification) []api.Notification {
		for i := range items {
			items[i].IsRead = true
		}
		return items
	})

	if err := p.src.MarkAllRead(ctx); err != nil {
		p.log.Warn("failed to mark all notifications read", "error", err)
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

// Delete removes id locally, then on the backend.
func (p *Poller) Delete(ctx context.Context, id int64) error {
	p.mutate(func(items []api.Notification) []api.Notification {
		kept := items[:0]
		for _, n := range items {
			if n.ID != id {
				kept = append(kept, n)
			}
		}
		return kept
	})

	if err := p.src.Delete(ctx, id); err != nil {
		p.log.Warn("failed to delete notification", "id", id, "error", err)
		return fmt.Errorf("delete notification %d: %w", id, err)
	}
	return nil
}

// mutate applies fn to a private copy so earlier Items snapshots stay intact.
func (p *Poller) mutate(fn func([]api.Notification) []api.Notification) {
	p.mu.Lock()
	next := make([]api.Notification, len(p.items))
	copy(next, p.items)
	p.items = fn(next)
	p.mu.Unlock()
	p.signal()
}

// =============================================================================
// READ ACCESS
// =============================================================================

// Items returns a copy of the current list.
func (p *Poller) Items() []api.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]api.Notification, len(p.items))
	copy(out, p.items)
	return out
}

// UnreadCount counts unread items in the current list.
func (p *Poller) UnreadCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, item := range p.items {
		if !item.IsRead {
			n++
		}
	}
	return n
}

// Loading reports whether a fetch of the current lifetime is in flight.
func (p *Poller) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active && p.inflight > 0
}

// Active reports whether a lifetime is running.
func (p *Poller) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// LastError is the error of the most recent fetch in this lifetime, or nil.
func (p *Poller) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Updates receives a value after list or loading changes. Signals coalesce;
// read the current state with Items after each receive.
func (p *Poller) Updates() <-chan struct{} {
	return p.updates
}

func (p *Poller) signal() {
	select {
	case p.updates <- struct{}{}:
	default:
	}
}
