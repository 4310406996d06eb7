// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kyzylzhar/docflow/internal/app"
	"github.com/kyzylzhar/docflow/internal/config"
	"github.com/kyzylzhar/docflow/internal/locale"
	"github.com/kyzylzhar/docflow/internal/logging"
	"github.com/kyzylzhar/docflow/internal/ui/tui"
)

// BuildInfo is set by main from linker flags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// Options configures a command tree. Zero values use the process's stdio.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Build  BuildInfo
	// AppOptions are appended to the options every command passes to
	// app.New.
	AppOptions []app.Option
}

// env is the state shared by every command of one run.
type env struct {
	opts Options

	configPath  string
	output      string
	verbose     bool
	downloadDir string

	format Format
	cfg    *config.Config
	loc    *locale.Localizer
	app    *app.App
	log    *logging.Logger
	prompt prompter
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCommand builds the docflow command tree.
func NewRootCommand(o Options) *cobra.Command {
	root, _ := newRoot(o)
	return root
}

func newRoot(o Options) (*cobra.Command, *env) {
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	e := &env{opts: o, format: FormatTable, loc: locale.New("")}

	root := &cobra.Command{
		Use:   "docflow",
		Short: "Rental contract and document management client",
		Long: `docflow manages rental contracts, their documents and notifications
on a docflow backend.

Without a subcommand it opens the interactive terminal client. Subcommands
print tables by default, or JSON and YAML with --output for scripting.`,
		Example: `  docflow                          # interactive client
  docflow login
  docflow contracts list --status active
  docflow documents upload act.pdf --contract 7 --tags акт,2024
  docflow notifications watch --output json`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: e.setup,
		RunE:              e.runInteractive,
	}
	root.SetIn(o.Stdin)
	root.SetOut(o.Stdout)
	root.SetErr(o.Stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&e.configPath, "config", "", "config file (default ~/.docflow/config.toml)")
	pf.StringVarP(&e.output, "output", "o", string(FormatTable), "output format: table, json or yaml")
	pf.BoolVarP(&e.verbose, "verbose", "v", false, "log debug output to stderr")
	root.Flags().StringVar(&e.downloadDir, "download-dir", "", "directory for downloaded files (default: current directory)")

	root.AddCommand(
		newLoginCmd(e),
		newLogoutCmd(e),
		newWhoamiCmd(e),
		newContractsCmd(e),
		newDocumentsCmd(e),
		newNotificationsCmd(e),
		newConfigCmd(e),
		newVersionCmd(e),
	)
	return root, e
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, o Options) int {
	root, e := newRoot(o)
	root.SetArgs(args)

	cmd, err := root.ExecuteContextC(ctx)
	e.close()
	if err == nil {
		return ExitSuccess
	}
	if ctx.Err() != nil && !errors.Is(err, context.Canceled) {
		err = fmt.Errorf("%w: %v", context.Canceled, err)
	}
	e.report(cmd, err)
	return ExitCode(err)
}

// report prints err in the selected output format.
func (e *env) report(cmd *cobra.Command, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	msg := ErrorMessage(err, e.loc)
	if e.format != FormatTable {
		name := ""
		if cmd != nil {
			name = cmd.CommandPath()
		}
		if werr := NewErrorResponse(name, msg).Write(e.opts.Stdout, e.format); werr == nil {
			return
		}
	}
	fmt.Fprintln(e.opts.Stderr, ErrorStyle.Render("Error:")+" "+msg)
	var usage *UsageError
	if cmd != nil && errors.As(err, &usage) {
		fmt.Fprintln(e.opts.Stderr, DimStyle.Render("Run '"+cmd.CommandPath()+" --help' for usage."))
	}
}

// =============================================================================
// SETUP
// =============================================================================

// setup loads the configuration before any command runs.
func (e *env) setup(cmd *cobra.Command, _ []string) error {
	format, err := ParseFormat(e.output)
	if err != nil {
		return err
	}
	e.format = format

	var cfg *config.Config
	if e.configPath != "" {
		cfg, err = config.LoadFromPath(e.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		if !configOptional(cmd) {
			return err
		}
		fmt.Fprintln(e.opts.Stderr, WarningStyle.Render("Warning:")+" "+err.Error())
		cfg = config.Default()
		if err := cfg.SetDefaults(); err != nil {
			return err
		}
	}
	e.cfg = cfg
	e.loc = locale.New(cfg.UI.Language)
	return nil
}

// annotationConfigOptional marks commands that still run when the config
// file is broken, so it can be inspected and repaired.
const annotationConfigOptional = "docflow/config-optional"

func configOptional(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationConfigOptional] == "true" {
			return true
		}
	}
	return false
}

// open wires the application. interactive selects file logging.
func (e *env) open(interactive bool) (*app.App, error) {
	if e.app != nil {
		return e.app, nil
	}
	log, err := app.OpenLogger(e.cfg, interactive, e.verbose)
	if err != nil {
		return nil, err
	}
	logging.SetDefault(log)

	opts := append([]app.Option{app.WithLogger(log)}, e.opts.AppOptions...)
	a, err := app.New(e.cfg, opts...)
	if err != nil {
		log.Close()
		return nil, err
	}
	e.log = log
	e.app = a
	return a, nil
}

// session wires the application and restores the saved session. It fails
// with auth.ErrNotAuthenticated when there is none.
func (e *env) session(ctx context.Context) (*app.App, error) {
	a, err := e.open(false)
	if err != nil {
		return nil, err
	}
	if err := a.RequireSession(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// prompter returns the prompt for this run, creating it on first use.
func (e *env) prompter() (prompter, error) {
	if e.prompt != nil {
		return e.prompt, nil
	}
	if isTerminal(e.opts.Stdin) && isTerminal(e.opts.Stdout) {
		e.prompt = newLinerPrompter()
	} else {
		e.prompt = newLineReader(e.opts.Stdin, e.opts.Stderr)
	}
	return e.prompt, nil
}

func (e *env) printer(cmd *cobra.Command) *printer {
	return &printer{
		format:  e.format,
		command: cmd.CommandPath(),
		out:     e.opts.Stdout,
		errOut:  e.opts.Stderr,
	}
}

func (e *env) close() {
	if e.prompt != nil {
		e.prompt.Close()
	}
	if e.app != nil {
		e.app.Close()
	}
	if e.log != nil {
		e.log.Close()
	}
}

// =============================================================================
// INTERACTIVE CLIENT
// =============================================================================

func (e *env) runInteractive(cmd *cobra.Command, _ []string) error {
	if !isTerminal(e.opts.Stdout) || !isTerminal(e.opts.Stdin) {
		return &TTYRequiredError{
			Operation: "the interactive client",
			Hint:      "use a subcommand such as 'docflow contracts list'",
		}
	}
	a, err := e.open(true)
	if err != nil {
		return err
	}
	var opts []tui.Option
	if e.downloadDir != "" {
		opts = append(opts, tui.WithDownloadDir(e.downloadDir))
	}
	return tui.Run(cmd.Context(), a, opts...)
}

// =============================================================================
// ARGUMENT HELPERS
// =============================================================================

// parseID parses a positive resource ID argument.
func parseID(resource, arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid(resource+" id", arg, "must be a positive integer", "docflow "+resource+"s show 7")
	}
	return id, nil
}

// exactArgs is cobra.ExactArgs with a usage error.
func exactArgs(n int, names string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return usageErrorf("expected %s, got %d argument(s)", names, len(args))
		}
		return nil
	}
}
