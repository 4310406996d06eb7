// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kyzylzhar/docflow/internal/api"
	"github.com/kyzylzhar/docflow/internal/auth"
	"github.com/kyzylzhar/docflow/internal/locale"
)

func newNotificationsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notification", "notify"},
		Short:   "Read and manage notifications",
	}
	cmd.AddCommand(
		newNotificationsListCmd(e),
		newNotificationsReadCmd(e),
		newNotificationsReadAllCmd(e),
		newNotificationsDeleteCmd(e),
		newNotificationsWatchCmd(e),
	)
	return cmd
}

func newNotificationsListCmd(e *env) *cobra.Command {
	var (
		unread bool
		skip   int
		limit  int
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notifications, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			items, err := a.Client.Notifications.List(cmd.Context(), api.NotificationFilter{
				Skip:       skip,
				Limit:      limit,
				UnreadOnly: unread,
			})
			if err != nil {
				return err
			}
			return e.printer(cmd).print(items, func(w io.Writer) {
				e.writeNotifications(w, items)
			})
		},
	}
	cmd.Flags().BoolVar(&unread, "unread", false, "only unread notifications")
	cmd.Flags().IntVar(&skip, "skip", 0, "number of notifications to skip")
	cmd.Flags().IntVar(&limit, "limit", defaultListLimit, "maximum number of notifications")
	return cmd
}

func (e *env) writeNotifications(w io.Writer, items []api.Notification) {
	headers := []string{"ID", "", e.loc.T(locale.FieldType), e.loc.T(locale.FieldTitle), e.loc.T(locale.FieldCreated)}
	rows := make([][]string, 0, len(items))
	unread := 0
	for _, n := range items {
		marker := ""
		if !n.IsRead {
			marker = WarningStyle.Render("●")
			unread++
		}
		rows = append(rows, []string{
			strconv.FormatInt(n.ID, 10),
			marker,
			e.loc.NotificationType(string(n.Type)),
			n.Title,
			e.loc.DateTime(n.CreatedAt.Time),
		})
	}
	printList(w, e.loc.T(locale.NoData), headers, rows)
	if len(items) > 0 {
		fmt.Fprintln(w, DimStyle.Render(e.loc.T(locale.UnreadCount, unread)))
	}
}

// =============================================================================
// MUTATIONS
// =============================================================================

func newNotificationsReadCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>",
		Short: "Mark a notification as read",
		Args:  exactArgs(1, "a notification id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("notification", args[0])
			if err != nil {
				return err
			}
			a, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Poller.MarkAsRead(cmd.Context(), id); err != nil {
				return err
			}
			return e.printer(cmd).print(map[string]int64{"read": id}, func(w io.Writer) {
				fmt.Fprintln(w, SuccessStyle.Render(e.loc.T(locale.MarkedRead)))
			})
		},
	}
}

func newNotificationsReadAllCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Poller.MarkAllAsRead(cmd.Context()); err != nil {
				return err
			}
			return e.printer(cmd).print(map[string]bool{"read_all": true}, func(w io.Writer) {
				fmt.Fprintln(w, SuccessStyle.Render(e.loc.T(locale.MarkedAllRead)))
			})
		},
	}
}

func newNotificationsDeleteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a notification",
		Args:    exactArgs(1, "a notification id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("notification", args[0])
			if err != nil {
				return err
			}
			a, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Poller.Delete(cmd.Context(), id); err != nil {
				return err
			}
			return e.printer(cmd).print(map[string]int64{"deleted": id}, func(w io.Writer) {
				fmt.Fprintln(w, SuccessStyle.Render(e.loc.T(locale.NotificationGone)))
			})
		},
	}
}

// =============================================================================
// WATCH
// =============================================================================

func newNotificationsWatchCmd(e *env) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print notifications as they arrive",
		Long: `Poll for notifications and print each one once, as it first appears.
Already read notifications are skipped unless --all is given. The
interval is notifications.poll_interval_secs. Stops on Ctrl+C, or with
exit code 3 when the session ends.`,
		Example: `  docflow notifications watch
  docflow notifications watch --output json | jq .title`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := e.session(ctx)
			if err != nil {
				return err
			}
			events, unsubscribe := a.Auth.Subscribe()
			defer unsubscribe()

			// The poller may have started before the subscription existed.
			if !a.Auth.IsAuthenticated() {
				return api.ErrUnauthorized
			}

			p := e.printer(cmd)
			seen := make(map[int64]bool)
			for {
				for _, n := range a.Poller.Items() {
					if seen[n.ID] || (n.IsRead && !all) {
						continue
					}
					seen[n.ID] = true
					if err := p.stream(n, func(w io.Writer) { e.writeNotification(w, n) }); err != nil {
						return err
					}
				}

				select {
				case <-ctx.Done():
					return ctx.Err()
				case ev, ok := <-events:
					if !ok || ev.To == auth.Unauthenticated {
						return api.ErrUnauthorized
					}
				case <-a.Poller.Updates():
				}
			}
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "also print notifications that are already read")
	return cmd
}

func (e *env) writeNotification(w io.Writer, n api.Notification) {
	fmt.Fprintf(w, "%s %s %s\n",
		DimStyle.Render(e.loc.DateTime(n.CreatedAt.Time)),
		WarningStyle.Render("["+e.loc.NotificationType(string(n.Type))+"]"),
		TitleStyle.Render(n.Title))
	if n.Message != "" {
		fmt.Fprintln(w, "  "+n.Message)
	}
}
