// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kyzylzhar/docflow/internal/api"
	"github.com/kyzylzhar/docflow/internal/locale"
	"github.com/kyzylzhar/docflow/internal/util"
)

func newDocumentsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"document", "docs"},
		Short:   "List, upload and manage documents",
	}
	cmd.AddCommand(
		newDocumentsListCmd(e),
		newDocumentsShowCmd(e),
		newDocumentsUploadCmd(e),
		newDocumentsUpdateCmd(e),
		newDocumentsDeleteCmd(e),
		newDocumentsDownloadCmd(e),
	)
	return cmd
}

// =============================================================================
// LIST / SHOW
// =============================================================================

func newDocumentsListCmd(e *env) *cobra.Command {
	var (
		contract int64
		search   string
		tags     string
		skip     int
		limit    int
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List documents",
		Example: `  docflow documents list --search акт
  docflow documents list --contract 7 --tags акт,2024`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			docs, err := a.Client.Documents.List(cmd.Context(), api.DocumentFilter{
				Skip:       skip,
				Limit:      limit,
				ContractID: contract,
				Search:     search,
				Tags:       util.SplitList(tags),
			})
			if err != nil {
				return err
			}
			return e.printer(cmd).print(docs, func(w io.Writer) {
				e.writeDocuments(w, docs)
			})
		},
	}
	cmd.Flags().Int64Var(&contract, "contract", 0, "only documents of this contract")
	cmd.Flags().StringVar(&search, "search", "", "match title or description")
	cmd.Flags().StringVar(&tags, "tags", "", "comma separated tags, all must match")
	cmd.Flags().IntVar(&skip, "skip", 0, "number of documents to skip")
	cmd.Flags().IntVar(&limit, "limit", defaultListLimit, "maximum number of documents")
	return cmd
}

func (e *env) writeDocuments(w io.Writer, docs []api.Document) {
	headers := []string{
		"ID",
		e.loc.T(locale.FieldTitle),
		e.loc.T(locale.FieldType),
		e.loc.T(locale.FieldSize),
		e.loc.T(locale.FieldTags),
		e.loc.T(locale.FieldExpiry),
		e.loc.T(locale.FieldUploaded),
	}
	rows := make([][]string, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, []string{
			strconv.FormatInt(d.ID, 10),
			util.Truncate(d.Title, 40),
			strings.ToUpper(d.FileType),
			sizeText(d.FileSize),
			strings.Join(d.Tags, ", "),
			e.loc.Date(d.ExpiryDate.Time),
			e.loc.Date(d.CreatedAt.Time),
		})
	}
	printList(w, e.loc.T(locale.NoData), headers, rows)
}

func sizeText(n int64) string {
	if n <= 0 {
		return "-"
	}
	return humanize.Bytes(uint64(n))
}

func newDocumentsShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "show <id>",
		Aliases: []string{"get"},
		Short:   "Show one document",
		Args:    exactArgs(1, "a document id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("document", args[0])
			if err != nil {
				return err
			}
			a, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			d, err := a.Client.Documents.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return e.printer(cmd).print(d, func(w io.Writer) {
				e.writeDocument(w, d)
			})
		},
	}
}

func (e *env) writeDocument(w io.Writer, d *api.Document) {
	fmt.Fprintln(w, TitleStyle.Render(d.Title))
	if d.Description != "" {
		fmt.Fprintln(w, d.Description)
	}
	contract := ""
	if d.ContractID != nil {
		contract = strconv.FormatInt(*d.ContractID, 10)
	}
	fmt.Fprintln(w, RenderLabel(e.loc.T(locale.FieldType), strings.ToUpper(d.FileType)))
	fmt.Fprintln(w, RenderLabel(e.loc.T(locale.FieldSize), sizeText(d.FileSize)))
	fmt.Fprintln(w, RenderLabel(e.loc.T(locale.NavContracts), contract))
	fmt.Fprintln(w, RenderLabel(e.loc.T(locale.FieldTags), strings.Join(d.Tags, ", ")))
	fmt.Fprintln(w, RenderLabel(e.loc.T(locale.FieldExpiry), e.loc.Date(d.ExpiryDate.Time)))
	fmt.Fprintln(w, RenderLabel(e.loc.T(locale.FieldUploaded), e.loc.DateTime(d.CreatedAt.Time)))
}

// =============================================================================
// UPLOAD / UPDATE
// =============================================================================

func newDocumentsUploadCmd(e *env) *cobra.Command {
	var (
		title, description, tags, expiry string
		contract                         int64
	)
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a document",
		Long: `Upload a file as a new document. The title defaults to the file name
without its extension.`,
		Example: `  docflow documents upload act.pdf --contract 7 --tags акт,2024 --expiry 2025-01-31`,
		Args:    exactArgs(1, "a file path"),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			up := api.Upload{
				Filename:    filepath.Base(path),
				Title:       title,
				Description: description,
				ContractID:  contract,
				Tags:        util.SplitList(tags),
			}
			if up.Title == "" {
				up.Title = strings.TrimSuffix(up.Filename, filepath.Ext(up.Filename))
			}
			if expiry != "" {
				d, err := parseDate("expiry", expiry)
				if err != nil {
					return err
				}
				up.ExpiryDate = d
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open upload: %w", err)
			}
			defer f.Close()
			up.File = f

			a, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			d, err := a.Client.Documents.Upload(cmd.Context(), up)
			if err != nil {
				return err
			}
			return e.printer(cmd).print(d, func(w io.Writer) {
				fmt.Fprintf(w, "%s %s (ID %d)\n", SuccessStyle.Render(e.loc.T(locale.DocumentUploaded)), d.Title, d.ID)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "document title")
	cmd.Flags().StringVar(&description, "description", "", "document description")
	cmd.Flags().Int64Var(&contract, "contract", 0, "link to this contract")
	cmd.Flags().StringVar(&tags, "tags", "", "comma separated tags")
	cmd.Flags().StringVar(&expiry, "expiry", "", "expiry date, YYYY-MM-DD")
	return cmd
}

func newDocumentsUpdateCmd(e *env) *cobra.Command {
	var title, description, tags, expiry string
	cmd := &cobra.Command{
		Use:     "update <id>",
		Aliases: []string{"edit"},
		Short:   "Change document metadata",
		Long:    `Change document metadata. Only the flags you pass are sent; --tags "" clears the tags.`,
		Args:    exactArgs(1, "a document id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("document", args[0])
			if err != nil {
				return err
			}
			fs := cmd.Flags()
			var in api.DocumentUpdate
			if fs.Changed("title") {
				in.Title = &title
			}
			if fs.Changed("description") {
				in.Description = &description
			}
			if fs.Changed("tags") {
				list := util.SplitList(tags)
				if list == nil {
					list = []string{}
				}
				in.Tags = &list
			}
			if fs.Changed("expiry") {
				d, err := parseDate("expiry", expiry)
				if err != nil {
					return err
				}
				in.ExpiryDate = &d
			}
			if in == (api.DocumentUpdate{}) {
				return usageErrorf("nothing to update: pass at least one field flag")
			}

			a, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			d, err := a.Client.Documents.Update(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			return e.printer(cmd).print(d, func(w io.Writer) {
				fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render(e.loc.T(locale.DocumentSaved)), d.Title)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&tags, "tags", "", "comma separated tags, replacing the current ones")
	cmd.Flags().StringVar(&expiry, "expiry", "", "new expiry date, YYYY-MM-DD")
	return cmd
}

// =============================================================================
// DELETE / DOWNLOAD
// =============================================================================

func newDocumentsDeleteCmd(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a document",
		Args:    exactArgs(1, "a document id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("document", args[0])
			if err != nil {
				return err
			}
			a, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			ok, err := e.confirm(yes, fmt.Sprintf("delete document %d", id))
			if err != nil || !ok {
				return err
			}
			if err := a.Client.Documents.Delete(cmd.Context(), id); err != nil {
				return err
			}
			return e.printer(cmd).print(map[string]int64{"deleted": id}, func(w io.Writer) {
				fmt.Fprintln(w, SuccessStyle.Render(e.loc.T(locale.DocumentDeleted)))
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newDocumentsDownloadCmd(e *env) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download a document file",
		Args:  exactArgs(1, "a document id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("document", args[0])
			if err != nil {
				return err
			}
			a, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			path, err := a.DownloadDocument(cmd.Context(), id, dir)
			if err != nil {
				return err
			}
			return e.printer(cmd).print(map[string]string{"path": path}, func(w io.Writer) {
				fmt.Fprintln(w, SuccessStyle.Render(e.loc.T(locale.DownloadSaved, path)))
			})
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "directory to save into")
	return cmd
}
