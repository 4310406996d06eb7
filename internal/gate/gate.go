// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gate decides which view may be shown for a given auth state.
// Every navigation in the TUI goes through Resolve.
package gate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kyzylzhar/docflow/internal/auth"
)

// View names a screen.
type View string

const (
	ViewRoot           View = ""
	ViewLoading        View = "loading"
	ViewLogin          View = "login"
	ViewDashboard      View = "dashboard"
	ViewContracts      View = "contracts"
	ViewContractDetail View = "contract"
	ViewDocuments      View = "documents"
	ViewNotifications  View = "notifications"
	ViewProfile        View = "profile"
)

// Route is a requested view plus its record id, if any.
type Route struct {
	View View
	ID   int64
}

// Path renders r the way the web client addressed it.
func (r Route) Path() string {
	switch r.View {
	case ViewRoot:
		return "/"
	case ViewContractDetail:
		return fmt.Sprintf("/contracts/%d", r.ID)
	}
	return "/" + string(r.View)
}

func (r Route) String() string { return r.Path() }

// ParsePath maps a path such as "/contracts/12" to a Route. Unknown paths
// resolve to the root.
func ParsePath(path string) Route {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch parts[0] {
	case "":
		return Route{View: ViewRoot}
	case "contracts":
		if len(parts) > 1 {
			if id, err := strconv.ParseInt(parts[1], 10, 64); err == nil && id > 0 {
				return Route{View: ViewContractDetail, ID: id}
			}
		}
		return Route{View: ViewContracts}
	}
	switch v := View(parts[0]); v {
	case ViewLogin, ViewDashboard, ViewDocuments, ViewNotifications, ViewProfile:
		return Route{View: v}
	}
	return Route{View: ViewRoot}
}

// Action is what the caller must do with a request.
type Action int

const (
	// Wait: show only a loading indication.
	Wait Action = iota
	// Redirect: show Decision.Route instead of the requested one.
	Redirect
	// Render: show the requested route.
	Render
)

func (a Action) String() string {
	switch a {
	case Wait:
		return "wait"
	case Redirect:
		return "redirect"
	case Render:
		return "render"
	}
	return "action(" + strconv.Itoa(int(a)) + ")"
}

// Decision is the outcome of Resolve.
type Decision struct {
	Action Action
	Route  Route
}

// Resolve applies the access rules:
//
//	Restoring        -> loading, whatever was asked for
//	Unauthenticated  -> login (the login view itself renders)
//	Authenticated    -> the requested view; root and login go to the dashboard
func Resolve(state auth.State, want Route) Decision {
	switch state {
	case auth.Authenticated:
		switch want.View {
		case ViewRoot, ViewLogin, ViewLoading:
			return Decision{Action: Redirect, Route: Route{View: ViewDashboard}}
		case ViewContractDetail:
			if want.ID <= 0 {
				return Decision{Action: Redirect, Route: Route{View: ViewContracts}}
			}
		}
		return Decision{Action: Render, Route: want}
	case auth.Unauthenticated:
		if want.View == ViewLogin {
			return Decision{Action: Render, Route: want}
		}
		return Decision{Action: Redirect, Route: Route{View: ViewLogin}}
	default:
		return Decision{Action: Wait, Route: Route{View: ViewLoading}}
	}
}

// Protected reports whether v needs a session.
func Protected(v View) bool {
	return v != ViewLogin && v != ViewLoading
}
