// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestStatusColor(t *testing.T) {
	tests := map[string]string{
		"active":     Green.Dark,
		"draft":      Orange.Dark,
		"completed":  Blue.Dark,
		"terminated": Red.Dark,
		"archived":   TextMuted.Dark,
	}
	for status, want := range tests {
		if got := StatusColor(status).Dark; got != want {
			t.Errorf("StatusColor(%q) = %s, want %s", status, got, want)
		}
	}
}

func TestNotificationColorFallsBackToInfo(t *testing.T) {
	if NotificationColor("something_new") != Purple {
		t.Error("unknown notification types should use the info color")
	}
	if NotificationColor("contract_expiry") != Red {
		t.Error("contract_expiry should be red")
	}
}

func TestRenderHelpersIncludeIndicators(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"success", RenderSuccess("saved"), StatusIndicators.Success},
		{"error", RenderError("failed"), StatusIndicators.Error},
		{"warning", RenderWarning("careful"), StatusIndicators.Warning},
		{"info", RenderInfo("note"), StatusIndicators.Info},
		{"status false", RenderStatus(false, "x"), StatusIndicators.Error},
	}
	for _, tt := range tests {
		if !strings.Contains(tt.got, tt.want) {
			t.Errorf("%s: %q does not contain %q", tt.name, tt.got, tt.want)
		}
	}
}
