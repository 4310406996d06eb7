// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the Kyzyl Zhar document backend.
//
// Every call to the four resource groups (auth, contracts, documents,
// notifications) passes through one pipeline that attaches the current
// bearer token from Credentials and reacts to HTTP 401 the same way for
// every group: the persisted token is cleared, Credentials is cleared, and
// the registered unauthorized callback runs before the error is returned.
//
// # Key Types
//
//   - Client: the pipeline plus the resource services
//   - Credentials: the bearer token shared by the pipeline and the auth controller
//   - Error: a non-2xx response, carrying the backend's detail message
//   - AuthService, ContractsService, DocumentsService, NotificationsService
//
// # Usage
//
//	creds := api.NewCredentials()
//	client := api.NewClient(cfg.API.BaseURL, creds,
//	    api.WithStore(store),
//	    api.WithTimeout(cfg.API.Timeout()),
//	    api.WithRateLimit(cfg.API.RequestsPerSecond, cfg.API.Burst),
//	)
//	client.OnUnauthorized(func(g api.Group) { controller.ForceLogout(auth.ReasonUnauthorized) })
//	contracts, err := client.Contracts.List(ctx, api.ContractFilter{Status: api.StatusActive})
//
// # Security
//
// Tokens and passwords are never logged. Requests are logged by method,
// path, status, duration and request id only.
package api
