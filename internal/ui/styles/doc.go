// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the docflow TUI.

# Color System (colors.go)

Brand and semantic colors are Lip Gloss AdaptiveColor values so they follow
the terminal background. Domain colors mirror the web client's tags:

	StatusColor("active")               - green
	StatusColor("draft")                - orange
	StatusColor("completed")            - blue
	StatusColor("terminated")           - red
	NotificationColor("contract_expiry") - red, unknown types are purple

Colors are never the only carrier of meaning; StatusIndicators supplies an
ASCII shape for every state.

# Theme System (theme.go)

	theme := styles.NewTheme(cfg.UI.Theme)
	header := theme.Header.Render(title)
	tag := theme.Status("active", loc.ContractStatus("active"))
*/
package styles
