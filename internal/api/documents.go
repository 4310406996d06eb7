// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// ErrNoFile: Upload was called without a file.
var ErrNoFile = errors.New("no file to upload")

// DocumentsService covers /api/documents.
type DocumentsService struct {
	c *Client
}

// Upload is a new document. File is streamed; it is not closed.
type Upload struct {
	File        io.Reader
	Filename    string
	Title       string
	Description string
	ContractID  int64
	Tags        []string
	ExpiryDate  Date
}

// fields returns the metadata as name/value pairs, omitting empty values.
func (u Upload) fields() url.Values {
	v := url.Values{}
	if u.Title != "" {
		v.Set("title", u.Title)
	}
	if u.Description != "" {
		v.Set("description", u.Description)
	}
	if u.ContractID > 0 {
		v.Set("contract_id", fmt.Sprint(u.ContractID))
	}
	if len(u.Tags) > 0 {
		v.Set("tags", strings.Join(u.Tags, ","))
	}
	if !u.ExpiryDate.IsZero() {
		v.Set("expiry_date", u.ExpiryDate.String())
	}
	return v
}

// List returns documents matching f.
func (s *DocumentsService) List(ctx context.Context, f DocumentFilter) ([]Document, error) {
	q := url.Values{}
	pageQuery(q, f.Skip, f.Limit)
	if f.ContractID > 0 {
		q.Set("contract_id", fmt.Sprint(f.ContractID))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if len(f.Tags) > 0 {
		q.Set("tags", strings.Join(f.Tags, ","))
	}

	var out []Document
	err := s.c.doJSON(ctx, request{group: GroupDocuments, method: http.MethodGet, path: "/", query: q}, nil, &out)
	return out, err
}

// Get returns one document's metadata.
func (s *DocumentsService) Get(ctx context.Context, id int64) (*Document, error) {
	var out Document
	if err := s.c.doJSON(ctx, request{group: GroupDocuments, method: http.MethodGet, path: idPath(id)}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Upload sends u as multipart/form-data. The metadata goes both into the
// form and the query string: the backend binds plain parameters from the
// query.
func (s *DocumentsService) Upload(ctx context.Context, u Upload) (*Document, error) {
	if u.File == nil || u.Filename == "" {
		return nil, ErrNoFile
	}
	fields := u.fields()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeUpload(mw, u, fields))
	}()

	var out Document
	err := s.c.doJSON(ctx, request{
		group:       GroupDocuments,
		method:      http.MethodPost,
		path:        "/upload",
		query:       fields,
		body:        pr,
		contentType: mw.FormDataContentType(),
	}, nil, &out)
	// Unblocks the writer if the request ended before reading the body.
	pr.Close()
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func writeUpload(mw *multipart.Writer, u Upload, fields url.Values) error {
	part, err := mw.CreateFormFile("file", u.Filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, u.File); err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	for name, values := range fields {
		for _, v := range values {
			if err := mw.WriteField(name, v); err != nil {
				return err
			}
		}
	}
	return mw.Close()
}

// Update applies the non-nil fields of in.
func (s *DocumentsService) Update(ctx context.Context, id int64, in DocumentUpdate) (*Document, error) {
	var out Document
	if err := s.c.doJSON(ctx, request{group: GroupDocuments, method: http.MethodPut, path: idPath(id)}, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a document and its file.
func (s *DocumentsService) Delete(ctx context.Context, id int64) error {
	return s.c.doJSON(ctx, request{group: GroupDocuments, method: http.MethodDelete, path: idPath(id)}, nil, nil)
}

// Download streams the stored file into w.
func (s *DocumentsService) Download(ctx context.Context, id int64, w io.Writer) (Download, error) {
	return s.c.download(ctx, request{group: GroupDocuments, method: http.MethodGet, path: idPath(id) + "/download"}, w)
}
