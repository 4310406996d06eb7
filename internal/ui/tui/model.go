// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kyzylzhar/docflow/internal/api"
	"github.com/kyzylzhar/docflow/internal/app"
	"github.com/kyzylzhar/docflow/internal/auth"
	"github.com/kyzylzhar/docflow/internal/gate"
	"github.com/kyzylzhar/docflow/internal/locale"
	"github.com/kyzylzhar/docflow/internal/logging"
	"github.com/kyzylzhar/docflow/internal/ui/components"
	"github.com/kyzylzhar/docflow/internal/ui/styles"
)

// maxRedirects bounds gate redirect chains; the longest real chain is two.
const maxRedirects = 3

// chromeHeight is the header, title, help and padding around a view body.
const chromeHeight = 7

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// Model is the root bubbletea model. All mutable state is owned by the
// program goroutine; background work reports back through messages.
type Model struct {
	app    *app.App
	log    *logging.Logger
	ctx    context.Context
	cancel context.CancelFunc

	theme   *styles.Theme
	loc     *locale.Localizer
	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	header  *components.Header
	toasts  *components.ToastManager

	width  int
	height int

	// route is what is rendered; requested is what the user last asked
	// for and is retried once the session settles.
	route     gate.Route
	requested gate.Route
	// seq increments on every navigation so late results are dropped.
	seq int

	authEvents  <-chan auth.Event
	unsubscribe func()

	login         *loginForm
	summary       *app.Summary
	contracts     *contractsView
	detail        *detailView
	documents     *documentsView
	notifications *notificationsView

	loading bool
	loadErr string
	confirm *confirmation

	// downloadDir receives saved files; empty is the working directory.
	downloadDir string
}

// confirmation is a pending destructive action awaiting y/n.
type confirmation struct {
	prompt string
	run    tea.Cmd
}

// Option customises New.
type Option func(*Model)

// WithDownloadDir sets where downloaded files are saved.
func WithDownloadDir(dir string) Option {
	return func(m *Model) { m.downloadDir = dir }
}

// New builds the model. It subscribes to auth events immediately so no
// transition between New and Init is missed.
func New(ctx context.Context, a *app.App, opts ...Option) *Model {
	ctx, cancel := context.WithCancel(ctx)
	theme := styles.NewTheme(a.Config.UI.Theme)
	loc := a.Locale

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.InfoStyle

	events, unsubscribe := a.Auth.Subscribe()

	m := &Model{
		app:           a,
		log:           a.Log.With("component", "tui"),
		ctx:           ctx,
		cancel:        cancel,
		theme:         theme,
		loc:           loc,
		keys:          DefaultKeyMap(),
		help:          help.New(),
		spinner:       sp,
		header:        components.NewHeader(theme, loc.T(locale.Brand), navTabs(loc)),
		toasts:        components.NewToastManager(),
		authEvents:    events,
		unsubscribe:   unsubscribe,
		login:         newLoginForm(theme),
		contracts:     newContractsView(theme),
		detail:        newDetailView(theme.IsDark),
		documents:     newDocumentsView(theme),
		notifications: newNotificationsView(),
	}
	for _, opt := range opts {
		opt(m)
	}
	// Tables need columns before their first rows; the real size arrives
	// with the first WindowSizeMsg.
	m.resize(80, 24)
	m.navigate(gate.Route{View: gate.ViewRoot})
	return m
}

func navTabs(loc *locale.Localizer) []components.Tab {
	return []components.Tab{
		{Key: "1", Label: loc.T(locale.NavDashboard)},
		{Key: "2", Label: loc.T(locale.NavContracts)},
		{Key: "3", Label: loc.T(locale.NavDocuments)},
		{Key: "4", Label: loc.T(locale.NavNotifications)},
		{Key: "5", Label: loc.T(locale.NavProfile)},
	}
}

func tabIndex(v gate.View) int {
	switch v {
	case gate.ViewDashboard:
		return 0
	case gate.ViewContracts, gate.ViewContractDetail:
		return 1
	case gate.ViewDocuments:
		return 2
	case gate.ViewNotifications:
		return 3
	case gate.ViewProfile:
		return 4
	}
	return -1
}

// Route returns the rendered route.
func (m *Model) Route() gate.Route { return m.route }

// Init restores the session and starts the event loops.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.restore(),
		waitForAuth(m.authEvents),
		waitForPoll(m.ctx, m.app.Poller.Updates()),
		components.ToastTickCmd(),
	)
}

func (m *Model) restore() tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		return restoreDoneMsg{err: a.Restore(ctx)}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case components.ToastTickMsg:
		m.toasts.Tick()
		return m, components.ToastTickCmd()

	case authEventMsg:
		return m.handleAuthEvent(auth.Event(msg))

	case pollUpdateMsg:
		m.syncNotifications()
		return m, waitForPoll(m.ctx, m.app.Poller.Updates())

	case restoreDoneMsg:
		if msg.err != nil {
			m.log.Debug("restore finished without session", "error", msg.err)
		}
		return m, nil

	case loginDoneMsg:
		return m.handleLoginDone(msg)

	case dashboardMsg:
		if msg.seq == m.seq {
			m.loading = false
			if m.setLoadErr(msg.err) {
				m.summary = msg.summary
			}
		}
		return m, nil

	case contractsMsg:
		if msg.seq == m.seq {
			m.loading = false
			if m.setLoadErr(msg.err) {
				m.contracts.setItems(msg.contracts, m.loc)
			}
		}
		return m, nil

	case contractMsg:
		if msg.seq == m.seq {
			m.loading = false
			if m.setLoadErr(msg.err) {
				m.detail.set(msg.contract, msg.documents, m.loc)
			}
		}
		return m, nil

	case documentsMsg:
		if msg.seq == m.seq {
			m.loading = false
			if m.setLoadErr(msg.err) {
				m.documents.setItems(msg.documents, m.loc)
			}
		}
		return m, nil

	case actionDoneMsg:
		return m.handleActionDone(msg)
	}

	if m.route.View == gate.ViewLogin {
		return m, m.login.updateOther(msg)
	}
	return m, nil
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.theme.SetSize(width, height)
	m.header.SetWidth(width)
	m.help.Width = width

	body := max(height-chromeHeight, 3)
	m.contracts.resize(width-4, body, m.loc)
	m.documents.resize(width-4, body, m.loc)
	m.detail.resize(width-4, body, m.loc)
	m.notifications.resize(body)
}

// setLoadErr records a view load failure and reports whether the load
// succeeded. 401s are not shown here; the session toast covers them.
func (m *Model) setLoadErr(err error) bool {
	if err == nil {
		m.loadErr = ""
		return true
	}
	if errors.Is(err, context.Canceled) || api.IsUnauthorized(err) {
		return false
	}
	m.log.Warn("view load failed", "view", string(m.route.View), "error", err)
	m.loadErr = m.errorText(err)
	return false
}

// errorText turns an error into something a user can act on: backend
// detail when there is one, a generic network message otherwise.
func (m *Model) errorText(err error) string {
	var le *auth.LoginError
	if errors.As(err, &le) {
		return le.Message
	}
	if d := api.DetailOf(err); d != "" {
		return d
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return m.loc.T(locale.NetworkError)
}

// =============================================================================
// NAVIGATION
// =============================================================================

// navigate sends want through the gate and enters the resulting view.
func (m *Model) navigate(want gate.Route) tea.Cmd {
	m.requested = want
	d := m.app.Route(want)
	for i := 0; d.Action == gate.Redirect && i < maxRedirects; i++ {
		d = m.app.Route(d.Route)
	}

	m.seq++
	m.route = d.Route
	m.confirm = nil
	m.loadErr = ""
	m.loading = false
	m.header.Active = tabIndex(d.Route.View)

	if d.Action != gate.Render {
		return nil
	}
	return m.enter()
}

// reload refetches the current view without changing the route.
func (m *Model) reload() tea.Cmd {
	m.seq++
	m.loadErr = ""
	return m.enter()
}

// enter starts whatever the current view needs.
func (m *Model) enter() tea.Cmd {
	client := m.app.Client
	switch m.route.View {
	case gate.ViewLogin:
		return m.login.reset()
	case gate.ViewDashboard:
		m.loading = true
		return loadDashboard(m.ctx, m.app, m.seq)
	case gate.ViewContracts:
		m.loading = true
		return loadContracts(m.ctx, client.Contracts, m.seq, m.contracts.status)
	case gate.ViewContractDetail:
		m.loading = true
		m.detail.reset()
		return loadContract(m.ctx, client, m.seq, m.route.ID)
	case gate.ViewDocuments:
		m.loading = true
		return loadDocuments(m.ctx, client.Documents, m.seq)
	case gate.ViewNotifications:
		m.syncNotifications()
		return m.loadNotifications()
	}
	return nil
}

func (m *Model) loadNotifications() tea.Cmd {
	ctx, p := m.ctx, m.app.Poller
	return func() tea.Msg {
		if err := p.Load(ctx); err != nil {
			return actionDoneMsg{err: err}
		}
		return nil
	}
}

func (m *Model) syncNotifications() {
	m.header.SetUnread(m.app.Poller.UnreadCount())
	m.notifications.sync(m.app.Poller.Items())
}

// resetData forgets everything fetched for the previous user.
func (m *Model) resetData() {
	m.summary = nil
	m.contracts.reset()
	m.documents.reset()
	m.detail.reset()
	m.notifications.reset()
	m.header.SetUser("", "")
	m.header.SetUnread(0)
}

// =============================================================================
// SESSION EVENTS
// =============================================================================

func (m *Model) handleAuthEvent(ev auth.Event) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{waitForAuth(m.authEvents)}

	switch ev.To {
	case auth.Authenticated:
		if ev.User != nil {
			m.header.SetUser(displayName(ev.User), m.loc.Role(string(ev.User.Role)))
		}
		m.header.SetUnread(m.app.Poller.UnreadCount())
		cmds = append(cmds, m.navigate(m.requested))

	case auth.Unauthenticated:
		m.resetData()
		switch ev.Reason {
		case auth.ReasonUnauthorized:
			m.toasts.AddWarning(m.loc.T(locale.SessionExpired))
		case auth.ReasonTokenRemoved:
			m.toasts.AddWarning(m.loc.T(locale.SessionRemoved))
		case auth.ReasonLogout:
			m.requested = gate.Route{View: gate.ViewRoot}
		}
		cmds = append(cmds, m.navigate(m.requested))

	default:
		cmds = append(cmds, m.navigate(m.requested))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) submitLogin() tea.Cmd {
	email, password := m.login.credentials()
	if email == "" || password == "" {
		m.login.err = m.loc.T(locale.EmailRequired)
		return nil
	}
	m.login.submitting = true
	m.login.err = ""

	ctx, ctrl := m.ctx, m.app.Auth
	return func() tea.Msg {
		return loginDoneMsg{err: ctrl.Login(ctx, email, password)}
	}
}

func (m *Model) handleLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	m.login.submitting = false
	if msg.err != nil {
		m.login.err = m.errorText(msg.err)
		return m, m.login.reset()
	}
	m.toasts.AddSuccess(m.loc.T(locale.LoginSuccess))
	return m, nil
}

// handleActionDone reports mutations. Optimistic notification failures
// only reach the log: the next poll reconciles the list.
func (m *Model) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) || api.IsUnauthorized(msg.err) {
			return m, nil
		}
		m.log.Warn("action failed", "view", string(m.route.View), "error", msg.err)
		if m.route.View != gate.ViewNotifications {
			m.toasts.AddError(m.errorText(msg.err))
		}
		return m, nil
	}
	if msg.ok != "" {
		m.toasts.AddSuccess(msg.ok)
	}
	switch {
	case msg.back:
		return m, m.navigate(gate.Route{View: gate.ViewContracts})
	case msg.reload:
		return m, m.reload()
	}
	return m, nil
}

func (m *Model) quit() tea.Cmd {
	m.cancel()
	m.unsubscribe()
	return tea.Quit
}

// =============================================================================
// KEYS
// =============================================================================

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, m.quit()
	}

	if m.route.View == gate.ViewLogin {
		action, cmd := m.login.update(msg)
		switch action {
		case actionQuit:
			return m, m.quit()
		case actionSubmit:
			return m, m.submitLogin()
		}
		return m, cmd
	}

	if m.confirm != nil {
		c := m.confirm
		m.confirm = nil
		if msg.String() == "y" || msg.String() == "Y" {
			return m, c.run
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.route.View == gate.ViewLoading {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Dashboard):
		return m, m.navigate(gate.Route{View: gate.ViewDashboard})
	case key.Matches(msg, m.keys.Contracts):
		return m, m.navigate(gate.Route{View: gate.ViewContracts})
	case key.Matches(msg, m.keys.Documents):
		return m, m.navigate(gate.Route{View: gate.ViewDocuments})
	case key.Matches(msg, m.keys.Notifications):
		return m, m.navigate(gate.Route{View: gate.ViewNotifications})
	case key.Matches(msg, m.keys.Profile):
		return m, m.navigate(gate.Route{View: gate.ViewProfile})
	case key.Matches(msg, m.keys.Logout):
		m.app.Auth.Logout()
		m.toasts.AddStatus(m.loc.T(locale.LogoutDone))
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		return m, m.reload()
	}

	switch m.route.View {
	case gate.ViewContracts:
		return m.contractsKey(msg)
	case gate.ViewContractDetail:
		return m.detailKey(msg)
	case gate.ViewDocuments:
		return m.documentsKey(msg)
	case gate.ViewNotifications:
		return m.notificationsKey(msg)
	}
	return m, nil
}

func (m *Model) contractsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Filter):
		m.contracts.cycleFilter()
		return m, m.reload()
	case key.Matches(msg, m.keys.Open):
		if c, ok := m.contracts.selected(); ok {
			return m, m.navigate(gate.Route{View: gate.ViewContractDetail, ID: c.ID})
		}
		return m, nil
	case key.Matches(msg, m.keys.Download):
		if c, ok := m.contracts.selected(); ok {
			return m, m.downloadContract(c.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if c, ok := m.contracts.selected(); ok {
			m.askDelete(c.ContractNumber, m.deleteContract(c.ID, false))
		}
		return m, nil
	}
	return m, m.contracts.update(msg)
}

func (m *Model) detailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.route.ID
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, m.navigate(gate.Route{View: gate.ViewContracts})
	case key.Matches(msg, m.keys.Download):
		return m, m.downloadContract(id)
	case key.Matches(msg, m.keys.Delete):
		if m.detail.contract != nil {
			m.askDelete(m.detail.contract.ContractNumber, m.deleteContract(id, true))
		}
		return m, nil
	}
	return m, m.detail.update(msg)
}

func (m *Model) documentsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Open):
		if d, ok := m.documents.selected(); ok && d.ContractID != nil {
			return m, m.navigate(gate.Route{View: gate.ViewContractDetail, ID: *d.ContractID})
		}
		return m, nil
	case key.Matches(msg, m.keys.Download):
		if d, ok := m.documents.selected(); ok {
			return m, m.downloadDocument(d.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if d, ok := m.documents.selected(); ok {
			m.askDelete(d.Title, m.deleteDocument(d.ID))
		}
		return m, nil
	}
	return m, m.documents.update(msg)
}

func (m *Model) notificationsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.app.Poller
	switch {
	case key.Matches(msg, m.keys.Up):
		m.notifications.moveUp()
	case key.Matches(msg, m.keys.Down):
		m.notifications.moveDown()
	case key.Matches(msg, m.keys.Filter):
		m.notifications.toggleFilter()
	case key.Matches(msg, m.keys.MarkRead):
		if n, ok := m.notifications.selected(); ok && !n.IsRead {
			return m, m.mutateNotifications(func(ctx context.Context) error { return p.MarkAsRead(ctx, n.ID) })
		}
	case key.Matches(msg, m.keys.MarkAllRead):
		if p.UnreadCount() > 0 {
			return m, m.mutateNotifications(p.MarkAllAsRead)
		}
	case key.Matches(msg, m.keys.Delete):
		if n, ok := m.notifications.selected(); ok {
			m.askDelete(n.Title, m.mutateNotifications(func(ctx context.Context) error { return p.Delete(ctx, n.ID) }))
		}
	case key.Matches(msg, m.keys.Open):
		if n, ok := m.notifications.selected(); ok && n.RelatedContractID != nil {
			return m, m.navigate(gate.Route{View: gate.ViewContractDetail, ID: *n.RelatedContractID})
		}
	}
	return m, nil
}

func (m *Model) askDelete(what string, run tea.Cmd) {
	m.confirm = &confirmation{prompt: what + ": " + m.loc.T(locale.ConfirmDelete), run: run}
}

// =============================================================================
// ACTIONS
// =============================================================================

// mutateNotifications runs an optimistic poller mutation. The local list
// changes before the request, so the view is synced right away.
func (m *Model) mutateNotifications(fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{err: fn(ctx)}
	}
}

// deleteContract removes a contract. From the detail view a success goes
// back to the list; from the list it reloads.
func (m *Model) deleteContract(id int64, fromDetail bool) tea.Cmd {
	ctx, svc, ok := m.ctx, m.app.Client.Contracts, m.loc.T(locale.ContractDeleted)
	return func() tea.Msg {
		if err := svc.Delete(ctx, id); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{ok: ok, reload: !fromDetail, back: fromDetail}
	}
}

func (m *Model) deleteDocument(id int64) tea.Cmd {
	ctx, svc, ok := m.ctx, m.app.Client.Documents, m.loc.T(locale.DocumentDeleted)
	return func() tea.Msg {
		if err := svc.Delete(ctx, id); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{ok: ok, reload: true}
	}
}

func (m *Model) downloadContract(id int64) tea.Cmd {
	ctx, a, dir, loc := m.ctx, m.app, m.downloadDir, m.loc
	return func() tea.Msg {
		path, err := a.DownloadContract(ctx, id, dir)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{ok: loc.T(locale.DownloadSaved, path)}
	}
}

func (m *Model) downloadDocument(id int64) tea.Cmd {
	ctx, a, dir, loc := m.ctx, m.app, m.downloadDir, m.loc
	return func() tea.Msg {
		path, err := a.DownloadDocument(ctx, id, dir)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{ok: loc.T(locale.DownloadSaved, path)}
	}
}
