// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app wires the session store, request pipeline, auth controller
// and notification poller into one value shared by the TUI and the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/kyzylzhar/docflow/internal/api"
	"github.com/kyzylzhar/docflow/internal/auth"
	"github.com/kyzylzhar/docflow/internal/config"
	"github.com/kyzylzhar/docflow/internal/gate"
	"github.com/kyzylzhar/docflow/internal/locale"
	"github.com/kyzylzhar/docflow/internal/logging"
	"github.com/kyzylzhar/docflow/internal/notify"
	"github.com/kyzylzhar/docflow/internal/session"
)

// App holds the wired components. Fields are read-only after New.
type App struct {
	Config *config.Config
	Log    *logging.Logger
	Locale *locale.Localizer

	Store  session.Store
	Creds  *api.Credentials
	Client *api.Client
	Auth   *auth.Controller
	Poller *notify.Poller

	mu          sync.Mutex
	watchCancel context.CancelFunc
	watchDone   chan struct{}
	closeOnce   sync.Once
}

type options struct {
	log        *logging.Logger
	store      session.Store
	httpClient *http.Client
}

// Option customises New.
type Option func(*options)

// WithLogger overrides the logger built from the config.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithStore replaces the file-backed token store.
func WithStore(s session.Store) Option {
	return func(o *options) { o.store = s }
}

// WithHTTPClient replaces the pipeline's http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// New builds every component from cfg. The controller starts in Restoring;
// call Restore before using the session.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	log := o.log
	if log == nil {
		log = logging.Discard()
	}
	loc := locale.New(cfg.UI.Language)

	store := o.store
	if store == nil {
		var err error
		store, err = openStore(cfg, log)
		if err != nil {
			return nil, err
		}
	}

	creds := api.NewCredentials()
	clientOpts := []api.Option{
		api.WithStore(store),
		api.WithLogger(log),
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, api.WithHTTPClient(o.httpClient))
	}
	clientOpts = append(clientOpts,
		api.WithTimeout(cfg.API.Timeout()),
		api.WithRateLimit(cfg.API.RequestsPerSecond, cfg.API.Burst),
	)
	client := api.NewClient(cfg.API.BaseURL, creds, clientOpts...)

	ctrl := auth.New(store, creds, client.Auth,
		auth.WithLogger(log),
		auth.WithLoginFailureMessage(loc.T(locale.LoginFailed)),
	)
	client.OnUnauthorized(ctrl.HandleUnauthorized)

	poller := notify.New(client.Notifications,
		notify.WithInterval(cfg.Notifications.PollInterval()),
		notify.WithLimit(cfg.Notifications.Limit),
		notify.WithLogger(log),
	)
	poller.Bind(ctrl)
	ctrl.OnTransition(poller.HandleTransition)

	return &App{
		Config: cfg,
		Log:    log,
		Locale: loc,
		Store:  store,
		Creds:  creds,
		Client: client,
		Auth:   ctrl,
		Poller: poller,
	}, nil
}

func openStore(cfg *config.Config, log *logging.Logger) (session.Store, error) {
	fileOpts := []session.FileOption{session.WithLogger(log)}
	if cfg.Session.EncryptToken {
		sealer, err := session.OpenSealer(cfg.Session.KeyPath, session.PBKDF2Iterations)
		if err != nil {
			return nil, fmt.Errorf("open token key: %w", err)
		}
		fileOpts = append(fileOpts, session.WithSealer(sealer))
	}
	return session.NewFileStore(cfg.Session.TokenPath, fileOpts...), nil
}

// OpenLogger builds the logger for a run mode. The TUI always logs to a
// file so output never reaches the terminal. CLI commands log to stderr at
// warn unless verbose, or to the configured file when one is set.
func OpenLogger(cfg *config.Config, interactive, verbose bool) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	path := cfg.Logging.File
	if interactive && path == "" {
		if path, err = config.DefaultLogFile(); err != nil {
			return nil, err
		}
	}
	if path != "" {
		return logging.Open(path, level, format)
	}

	if !verbose && level < slog.LevelWarn {
		level = slog.LevelWarn
	}
	if verbose && level > slog.LevelDebug {
		level = slog.LevelDebug
	}
	return logging.New(logging.Options{Level: level, Format: format, Output: os.Stderr}), nil
}

// =============================================================================
// SESSION
// =============================================================================

// Restore validates the persisted token. Failures leave the app
// Unauthenticated and are logged, not returned; the error is only for
// callers that want to report why.
func (a *App) Restore(ctx context.Context) error {
	if err := a.Auth.Restore(ctx); err != nil {
		a.Log.Info("session not restored", "error", err)
		return err
	}
	return nil
}

// RequireSession restores the session and fails with
// auth.ErrNotAuthenticated when there is none.
func (a *App) RequireSession(ctx context.Context) error {
	_ = a.Restore(ctx)
	if !a.Auth.IsAuthenticated() {
		return auth.ErrNotAuthenticated
	}
	return nil
}

// Route passes a navigation request through the gate.
func (a *App) Route(want gate.Route) gate.Decision {
	return gate.Resolve(a.Auth.State(), want)
}

// WatchToken turns removal of the token file by another process into a
// forced logout. It does nothing for non-file stores or when disabled.
func (a *App) WatchToken(ctx context.Context) error {
	fs, ok := a.Store.(*session.FileStore)
	if !ok || !a.Config.Session.WatchToken {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.watchCancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	changes, err := fs.Watch(ctx)
	if err != nil {
		cancel()
		return err
	}
	done := make(chan struct{})
	a.watchCancel = cancel
	a.watchDone = done

	go func() {
		defer close(done)
		for change := range changes {
			a.Log.Debug("token file changed", "kind", change.Kind.String())
			if change.Kind == session.TokenRemoved {
				a.Auth.HandleTokenRemoved()
			}
		}
	}()
	return nil
}

// Close stops polling and the token watch. Safe to call more than once.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		a.Poller.Close()

		a.mu.Lock()
		cancel, done := a.watchCancel, a.watchDone
		a.watchCancel = nil
		a.mu.Unlock()
		if cancel != nil {
			cancel()
			<-done
		}
	})
	return nil
}
