// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// ErrNoToken: the token endpoint answered 2xx without an access_token.
var ErrNoToken = errors.New("token response has no access_token")

// AuthService covers /api/auth.
type AuthService struct {
	c *Client
}

// Token exchanges email and password for a bearer token. The backend
// expects an OAuth2 password form with the email in "username".
func (s *AuthService) Token(ctx context.Context, email, password string) (string, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var out TokenResponse
	err := s.c.doJSON(ctx, request{
		group:       GroupAuth,
		method:      http.MethodPost,
		path:        "/token",
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}, nil, &out)
	if err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", ErrNoToken
	}
	return out.AccessToken, nil
}

// Me returns the profile of the user owning the current token.
func (s *AuthService) Me(ctx context.Context) (*UserProfile, error) {
	var out UserProfile
	if err := s.c.doJSON(ctx, request{group: GroupAuth, method: http.MethodGet, path: "/me"}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
