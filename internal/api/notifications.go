// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"
)

// NotificationsService covers /api/notifications.
type NotificationsService struct {
	c *Client
}

// List returns the current user's notifications, newest first.
func (s *NotificationsService) List(ctx context.Context, f NotificationFilter) ([]Notification, error) {
	q := url.Values{}
	pageQuery(q, f.Skip, f.Limit)
	if f.UnreadOnly {
		q.Set("unread_only", "true")
	}

	var out []Notification
	err := s.c.doJSON(ctx, request{group: GroupNotifications, method: http.MethodGet, path: "/", query: q}, nil, &out)
	return out, err
}

// Get returns one notification.
func (s *NotificationsService) Get(ctx context.Context, id int64) (*Notification, error) {
	var out Notification
	if err := s.c.doJSON(ctx, request{group: GroupNotifications, method: http.MethodGet, path: idPath(id)}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create adds a notification for in.UserID.
func (s *NotificationsService) Create(ctx context.Context, in NotificationCreate) (*Notification, error) {
	var out Notification
	if err := s.c.doJSON(ctx, request{group: GroupNotifications, method: http.MethodPost, path: "/"}, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update applies in to one notification.
func (s *NotificationsService) Update(ctx context.Context, id int64, in NotificationUpdate) (*Notification, error) {
	var out Notification
	if err := s.c.doJSON(ctx, request{group: GroupNotifications, method: http.MethodPut, path: idPath(id)}, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkRead is Update with is_read=true.
func (s *NotificationsService) MarkRead(ctx context.Context, id int64) error {
	read := true
	_, err := s.Update(ctx, id, NotificationUpdate{IsRead: &read})
	return err
}

// MarkAllRead marks every notification of the user as read. No body.
func (s *NotificationsService) MarkAllRead(ctx context.Context) error {
	return s.c.doJSON(ctx, request{group: GroupNotifications, method: http.MethodPut, path: "/mark-all-read"}, nil, nil)
}

// Delete removes one notification.
func (s *NotificationsService) Delete(ctx context.Context, id int64) error {
	return s.c.doJSON(ctx, request{group: GroupNotifications, method: http.MethodDelete, path: idPath(id)}, nil, nil)
}
