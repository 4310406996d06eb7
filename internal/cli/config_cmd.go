// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kyzylzhar/docflow/internal/config"
)

func newConfigCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Show and change configuration",
		Annotations: map[string]string{annotationConfigOptional: "true"},
		Long: `Show and change ~/.docflow/config.toml. Keys use dot notation, for
example api.base_url or notifications.poll_interval_secs. Environment
overrides (DOCFLOW_*) apply to show and get but are never written.`,
	}
	cmd.AddCommand(
		newConfigShowCmd(e),
		newConfigGetCmd(e),
		newConfigSetCmd(e),
		newConfigPathCmd(e),
	)
	return cmd
}

// configEntry is one key of the show output.
type configEntry struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

func newConfigShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show every setting in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries := make([]configEntry, 0, len(config.Keys()))
			for _, key := range config.Keys() {
				v, err := e.cfg.Get(key)
				if err != nil {
					return err
				}
				entries = append(entries, configEntry{Key: key, Value: v})
			}
			return e.printer(cmd).print(entries, func(w io.Writer) {
				for _, entry := range entries {
					fmt.Fprintln(w, RenderLabel(entry.Key, fmt.Sprint(entry.Value)))
				}
			})
		},
	}
}

func newConfigGetCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  exactArgs(1, "a key"),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := e.cfg.Get(args[0])
			if err != nil {
				return unknownKey(args[0], err)
			}
			return e.printer(cmd).print(configEntry{Key: args[0], Value: v}, func(w io.Writer) {
				fmt.Fprintln(w, v)
			})
		},
	}
}

func newConfigSetCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "set <key> <value>",
		Short:   "Change one setting and save the file",
		Example: `  docflow config set api.base_url https://docs.kyzylzhar.kz
  docflow config set ui.language en`,
		Args: exactArgs(2, "a key and a value"),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := e.configFile()
			if err != nil {
				return err
			}
			if strings.HasSuffix(path, ".json") {
				return usageErrorf("config set only writes TOML; convert %s first", path)
			}
			// Start from the file alone so environment overrides are not saved.
			cfg := config.Default()
			if _, err := os.Stat(path); err == nil {
				if err := config.LoadTOML(cfg, path); err != nil {
					return err
				}
			} else if !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			if err := cfg.Set(args[0], args[1]); err != nil {
				return unknownKey(args[0], err)
			}
			if err := cfg.Validate(); err != nil {
				return &UsageError{Err: err}
			}
			if err := config.SaveTOML(cfg, path); err != nil {
				return err
			}

			v, _ := cfg.Get(args[0])
			return e.printer(cmd).print(configEntry{Key: args[0], Value: v}, func(w io.Writer) {
				fmt.Fprintf(w, "%s %s = %v\n", SuccessStyle.Render("✓"), args[0], v)
			})
		},
	}
}

func newConfigPathCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := e.configFile()
			if err != nil {
				return err
			}
			_, statErr := os.Stat(path)
			data := map[string]any{"path": path, "exists": statErr == nil}
			return e.printer(cmd).print(data, func(w io.Writer) {
				fmt.Fprintln(w, path)
			})
		},
	}
}

// configFile is --config, or the default TOML path.
func (e *env) configFile() (string, error) {
	if e.configPath != "" {
		return e.configPath, nil
	}
	return config.ConfigPathTOML()
}

func unknownKey(key string, err error) error {
	return invalid("key", key, err.Error(), "docflow config get api.base_url")
}
