// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyzylzhar/docflow/internal/session"
)

// newTestClient starts server with handler and returns a client with a
// memory store pre-loaded with token "abc".
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *session.MemoryStore) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := session.NewMemoryStore()
	require.NoError(t, store.Save("abc"))
	creds := NewCredentials()
	creds.Set("abc")

	opts = append([]Option{WithStore(store)}, opts...)
	return NewClient(server.URL, creds, opts...), store
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

// =============================================================================
// HEADER INJECTION
// =============================================================================

func TestPipeline_AttachesBearerAndRequestID(t *testing.T) {
	var gotAuth, gotID, gotUA string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotID = r.Header.Get(RequestIDHeader)
		gotUA = r.Header.Get("User-Agent")
		writeJSON(w, http.StatusOK, `[]`)
	})

	_, err := client.Contracts.List(context.Background(), ContractFilter{})
	require.NoError(t, err)

	assert.Equal(t, "Bearer abc", gotAuth)
	_, perr := uuid.Parse(gotID)
	assert.NoError(t, perr, "request id should be a UUID, got %q", gotID)
	assert.True(t, strings.HasPrefix(gotUA, "docflow/"))
}

func TestPipeline_NoTokenNoHeader(t *testing.T) {
	var sawHeader atomic.Bool
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["Authorization"]; ok {
			sawHeader.Store(true)
		}
		writeJSON(w, http.StatusOK, `[]`)
	})
	client.Credentials().Clear()

	_, err := client.Notifications.List(context.Background(), NotificationFilter{})
	require.NoError(t, err)
	assert.False(t, sawHeader.Load())
}

func TestPipeline_UniqueRequestIDs(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.Header.Get(RequestIDHeader)] = true
		mu.Unlock()
		writeJSON(w, http.StatusOK, `[]`)
	})

	for i := 0; i < 5; i++ {
		_, err := client.Documents.List(context.Background(), DocumentFilter{})
		require.NoError(t, err)
	}
	assert.Len(t, seen, 5)
}

// =============================================================================
// 401 HANDLING
// =============================================================================

func TestPipeline_UnauthorizedOnEveryGroup(t *testing.T) {
	calls := map[Group]func(ctx context.Context, c *Client) error{
		GroupAuth: func(ctx context.Context, c *Client) error {
			_, err := c.Auth.Me(ctx)
			return err
		},
		GroupContracts: func(ctx context.Context, c *Client) error {
			_, err := c.Contracts.Get(ctx, 1)
			return err
		},
		GroupDocuments: func(ctx context.Context, c *Client) error {
			return c.Documents.Delete(ctx, 2)
		},
		GroupNotifications: func(ctx context.Context, c *Client) error {
			return c.Notifications.MarkAllRead(ctx)
		},
	}

	for _, group := range Groups {
		t.Run(string(group), func(t *testing.T) {
			client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.True(t, strings.HasPrefix(r.URL.Path, "/api/"+string(group)+"/"), r.URL.Path)
				writeJSON(w, http.StatusUnauthorized, `{"detail":"Could not validate credentials"}`)
			})

			var signalled []Group
			client.OnUnauthorized(func(g Group) {
				// Store and credentials are already cleared when the signal runs.
				_, ok, _ := store.Load()
				assert.False(t, ok)
				_, ok = client.Credentials().Token()
				assert.False(t, ok)
				signalled = append(signalled, g)
			})

			err := calls[group](context.Background(), client)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnauthorized))
			assert.True(t, IsUnauthorized(err))

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
			assert.Equal(t, "Could not validate credentials", apiErr.Detail)
			assert.NotEmpty(t, apiErr.RequestID)

			assert.Equal(t, []Group{group}, signalled)
		})
	}
}

func TestPipeline_UnauthorizedIsIdempotent(t *testing.T) {
	client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"detail":"expired"}`)
	})
	var count atomic.Int32
	client.OnUnauthorized(func(Group) { count.Add(1) })

	for i := 0; i < 3; i++ {
		_, err := client.Notifications.List(context.Background(), NotificationFilter{})
		assert.ErrorIs(t, err, ErrUnauthorized)
	}
	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int32(3), count.Load())
}

func TestPipeline_OtherErrorsKeepSession(t *testing.T) {
	client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"detail":"Contract not found"}`)
	})
	client.OnUnauthorized(func(Group) { t.Error("unauthorized signal on 404") })

	_, err := client.Contracts.Get(context.Background(), 42)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Contract not found", DetailOf(err))

	token, ok, _ := store.Load()
	assert.True(t, ok)
	assert.Equal(t, "abc", token)
	_, ok = client.Credentials().Token()
	assert.True(t, ok)
}

// =============================================================================
// ERROR DETAIL
// =============================================================================

func TestParseDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string", `{"detail":"Incorrect username or password"}`, "Incorrect username or password"},
		{"validation list", `{"detail":[{"loc":["body","rental_amount"],"msg":"field required","type":"value_error.missing"},{"loc":["query","limit"],"msg":"value is not a valid integer"}]}`,
			"rental_amount: field required; limit: value is not a valid integer"},
		{"no detail", `{"error":"x"}`, ""},
		{"not json", `<html>Bad Gateway</html>`, ""},
		{"empty", ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDetail([]byte(tt.body)))
		})
	}
}

func TestError_MessageFallsBackToStatusText(t *testing.T) {
	err := &Error{Status: 502, Method: "GET", Path: "/api/contracts/"}
	assert.Equal(t, "GET /api/contracts/: HTTP 502: Bad Gateway", err.Error())
	assert.Nil(t, err.Unwrap())
}

// =============================================================================
// TRANSPORT
// =============================================================================

func TestPipeline_TransportErrorIsWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, NewCredentials(), WithTimeout(2*time.Second))
	_, err := client.Auth.Me(context.Background())
	require.Error(t, err)
	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr), "transport errors are not *Error")
	assert.False(t, IsUnauthorized(err))
}

func TestPipeline_RateLimitHonoursContext(t *testing.T) {
	var hits atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusOK, `[]`)
	}, WithRateLimit(0.01, 1))

	_, err := client.Contracts.List(context.Background(), ContractFilter{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.Contracts.List(ctx, ContractFilter{})
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestReadResponse_TooLarge(t *testing.T) {
	resp := &http.Response{Body: io.NopCloser(bytes.NewReader(make([]byte, MaxResponseSize+1)))}
	_, err := readResponse(resp)
	assert.ErrorIs(t, err, ErrResponseTooLarge)
}

func TestNewClient_TrimsBaseURL(t *testing.T) {
	c := NewClient("http://localhost:8000/", nil)
	assert.Equal(t, "http://localhost:8000", c.BaseURL())
	assert.Equal(t, "http://localhost:8000/api/contracts/5",
		c.endpoint(request{group: GroupContracts, path: idPath(5)}))
	assert.NotNil(t, c.Credentials())
}

func ExampleClient_OnUnauthorized() {
	client := NewClient("http://localhost:8000", NewCredentials())
	client.OnUnauthorized(func(g Group) {
		fmt.Println("session ended by", g)
	})
	client.handleUnauthorized(GroupNotifications)
	// Output: session ended by notifications
}
