// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/kyzylzhar/docflow/internal/api"
)

const (
	// ExpiryWindow is how far ahead a contract counts as expiring.
	ExpiryWindow = 30 * 24 * time.Hour
	// RecentCount caps the recent contract and notification lists.
	RecentCount = 5

	dashboardListLimit         = 100
	dashboardNotificationLimit = 10
)

// Summary is the dashboard's derived view of the three lists.
type Summary struct {
	TotalContracts      int
	ActiveContracts     int
	TotalDocuments      int
	UnreadNotifications int
	// MonthlyRevenue is the sum of rental amounts over active contracts.
	MonthlyRevenue      *big.Rat
	Expiring            []api.Contract
	RecentContracts     []api.Contract
	RecentNotifications []api.Notification
}

// Summarize computes a Summary as of now. Expiring contracts are active and
// end after today but no later than 30 days from today.
func Summarize(contracts []api.Contract, documents []api.Document, notifications []api.Notification, now time.Time) Summary {
	s := Summary{
		TotalContracts: len(contracts),
		TotalDocuments: len(documents),
		MonthlyRevenue: new(big.Rat),
	}

	today := api.NewDate(now.Year(), now.Month(), now.Day())
	horizon := today.Add(ExpiryWindow)

	for _, c := range contracts {
		if c.Status != api.StatusActive {
			continue
		}
		s.ActiveContracts++
		s.MonthlyRevenue.Add(s.MonthlyRevenue, c.RentalAmount.Rat())
		if c.EndDate.After(today.Time) && !c.EndDate.After(horizon) {
			s.Expiring = append(s.Expiring, c)
		}
	}

	for _, n := range notifications {
		if !n.IsRead {
			s.UnreadNotifications++
		}
	}

	s.RecentContracts = head(contracts, RecentCount)
	s.RecentNotifications = head(notifications, RecentCount)
	return s
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		items = items[:n]
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}

// Dashboard fetches the lists the dashboard needs and summarises them.
func (a *App) Dashboard(ctx context.Context) (*Summary, error) {
	contracts, err := a.Client.Contracts.List(ctx, api.ContractFilter{Limit: dashboardListLimit})
	if err != nil {
		return nil, fmt.Errorf("load contracts: %w", err)
	}
	documents, err := a.Client.Documents.List(ctx, api.DocumentFilter{Limit: dashboardListLimit})
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	notifications, err := a.Client.Notifications.List(ctx, api.NotificationFilter{Limit: dashboardNotificationLimit})
	if err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}

	s := Summarize(contracts, documents, notifications, time.Now())
	return &s, nil
}
