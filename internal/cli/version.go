// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// VersionData is the version command's output.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func newVersionCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationConfigOptional: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			b := e.opts.Build
			data := VersionData{
				Version:   orUnknown(b.Version),
				GitCommit: orUnknown(b.Commit),
				BuildDate: orUnknown(b.Date),
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}
			return e.printer(cmd).print(data, func(w io.Writer) {
				fmt.Fprintf(w, "docflow %s\n", data.Version)
				fmt.Fprintln(w, RenderLabel("Commit", data.GitCommit))
				fmt.Fprintln(w, RenderLabel("Built", data.BuildDate))
				fmt.Fprintln(w, RenderLabel("Go", data.GoVersion))
				fmt.Fprintln(w, RenderLabel("Platform", data.Platform))
			})
		},
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
