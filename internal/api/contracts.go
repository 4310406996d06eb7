// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
)

// ContractsService covers /api/contracts.
type ContractsService struct {
	c *Client
}

// List returns contracts matching f.
func (s *ContractsService) List(ctx context.Context, f ContractFilter) ([]Contract, error) {
	q := url.Values{}
	pageQuery(q, f.Skip, f.Limit)
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.ExpiringSoon {
		q.Set("expiring_soon", "true")
	}

	var out []Contract
	err := s.c.doJSON(ctx, request{group: GroupContracts, method: http.MethodGet, path: "/", query: q}, nil, &out)
	return out, err
}

// Get returns one contract.
func (s *ContractsService) Get(ctx context.Context, id int64) (*Contract, error) {
	var out Contract
	if err := s.c.doJSON(ctx, request{group: GroupContracts, method: http.MethodGet, path: idPath(id)}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create creates a contract; the backend assigns the number and status.
func (s *ContractsService) Create(ctx context.Context, in ContractCreate) (*Contract, error) {
	var out Contract
	if err := s.c.doJSON(ctx, request{group: GroupContracts, method: http.MethodPost, path: "/"}, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update applies the non-nil fields of in.
func (s *ContractsService) Update(ctx context.Context, id int64, in ContractUpdate) (*Contract, error) {
	var out Contract
	if err := s.c.doJSON(ctx, request{group: GroupContracts, method: http.MethodPut, path: idPath(id)}, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a contract.
func (s *ContractsService) Delete(ctx context.Context, id int64) error {
	return s.c.doJSON(ctx, request{group: GroupContracts, method: http.MethodDelete, path: idPath(id)}, nil, nil)
}

// Download streams the generated contract file into w and returns the
// server-suggested filename.
func (s *ContractsService) Download(ctx context.Context, id int64, w io.Writer) (Download, error) {
	return s.c.download(ctx, request{group: GroupContracts, method: http.MethodGet, path: idPath(id) + "/download"}, w)
}

// Download describes a streamed file.
type Download struct {
	Filename    string
	ContentType string
	Bytes       int64
}

// download streams a 2xx body into w without the JSON size cap.
func (c *Client) download(ctx context.Context, r request, w io.Writer) (Download, error) {
	resp, err := c.do(ctx, r)
	if err != nil {
		return Download{}, err
	}
	defer resp.Body.Close()

	d := Download{ContentType: resp.Header.Get("Content-Type")}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			d.Filename = params["filename"]
		}
	}

	n, err := io.Copy(w, resp.Body)
	d.Bytes = n
	if err != nil {
		return d, fmt.Errorf("download %s: %w", r.path, err)
	}
	return d, nil
}
