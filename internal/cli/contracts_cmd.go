// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kyzylzhar/docflow/internal/api"
	"github.com/kyzylzhar/docflow/internal/locale"
)

const defaultListLimit = 100

func newContractsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contracts",
		Aliases: []string{"contract"},
		Short:   "List, inspect and edit rental contracts",
	}
	cmd.AddCommand(
		newContractsListCmd(e),
		newContractsShowCmd(e),
		newContractsCreateCmd(e),
		newContractsUpdateCmd(e),
		newContractsDeleteCmd(e),
		newContractsDownloadCmd(e),
	)
	return cmd
}

// =============================================================================
// LIST / SHOW
// =============================================================================

func newContractsListCmd(e *env) *cobra.Command {
	var (
		status   string
		expiring bool
		skip     int
		limit    int
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List contracts",
		Example: `  docflow contracts list
  docflow contracts list --status active --expiring`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := api.ContractFilter{Skip: skip, Limit: limit, ExpiringSoon: expiring}
			if status != "" {
				st, err := api.ParseContractStatus(status)
				if err != nil {
					return invalid("status", status, "must be draft, active, completed or terminated", "--status active")
				}
				f.Status = st
			}
			a, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			contracts, err := a.Client.Contracts.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			return e.printer(cmd).print(contracts, func(w io.Writer) {
				e.writeContracts(w, contracts)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only contracts with this status")
	cmd.Flags().BoolVar(&expiring, "expiring", false, "only contracts ending within 30 days")
	cmd.Flags().IntVar(&skip, "skip", 0, "number of contracts to skip")
	cmd.Flags().IntVar(&limit, "limit", defaultListLimit, "maximum number of contracts")
	return cmd
}

func (e *env) writeContracts(w io.Writer, contracts []api.Contract) {
	headers := []string{
		"ID",
		e.loc.T(locale.FieldContractNumber),
		e.loc.T(locale.FieldClient),
		e.loc.T(locale.FieldAddress),
		e.loc.T(locale.FieldRent),
		e.loc.T(locale.FieldPeriod),
		e.loc.T(locale.FieldStatus),
	}
	rows := make([][]string, 0, len(contracts))
	for _, c := range contracts {
		rows = append(rows, []string{
			strconv.FormatInt(c.ID, 10),
			c.ContractNumber,
			c.ClientName,
			c.PropertyAddress,
			e.loc.Money(string(c.RentalAmount)),
			e.period(c.StartDate, c.EndDate),
			RenderStatus(c.Status, e.loc.ContractStatus(string(c.Status))),
		})
	}
	printList(w, e.loc.T(locale.NoData), headers, rows)
}

func (e *env) period(start, end api.Date) string {
	return e.loc.Date(start.Time) + " - " + e.loc.Date(end.Time)
}

// contractDetail is the show output: the contract and its documents.
type contractDetail struct {
	Contract  *api.Contract  `json:"contract"`
	Documents []api.Document `json:"documents"`
}

func newContractsShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "show <id>",
		Aliases: []string{"get"},
		Short:   "Show one contract with its documents",
		Args:    exactArgs(1, "a contract id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("contract", args[0])
			if err != nil {
				return err
			}
			a, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			c, err := a.Client.Contracts.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			docs, err := a.Client.Documents.List(cmd.Context(), api.DocumentFilter{ContractID: id, Limit: defaultListLimit})
			if err != nil {
				return err
			}
			if docs == nil {
				docs = []api.Document{}
			}
			detail := contractDetail{Contract: c, Documents: docs}
			return e.printer(cmd).print(detail, func(w io.Writer) {
				e.writeContract(w, detail)
			})
		},
	}
}

func (e *env) writeContract(w io.Writer, d contractDetail) {
	c := d.Contract
	fmt.Fprintln(w, TitleStyle.Render(e.loc.T(locale.ContractTitle, c.ContractNumber)))
	fmt.Fprintln(w, RenderLabel(e.loc.T(locale.FieldStatus), RenderStatus(c.Status, e.loc.ContractStatus(string(c.Status)))))
	fmt.Fprintln(w, RenderLabel(e.loc.T(locale.FieldClient), c.ClientName))
	fmt.Fprintln(w, RenderLabel(e.loc.T(locale.FieldPhone), c.ClientPhone))
	fmt.Fprintln(w, RenderLabel(e.loc.T(locale.FieldEmail), c.ClientEmail))
	fmt.Fprintln(w, RenderLabel(e.loc.T(locale.FieldAddress), c.PropertyAddress))
	fmt.Fprintln(w, RenderLabel(e.loc.T(locale.FieldPropertyType), c.PropertyType))
	fmt.Fprintln(w, RenderLabel(e.loc.T(locale.FieldRent), e.loc.T(locale.PerMonth, e.loc.Money(string(c.RentalAmount)))))
	deposit := ""
	if c.DepositAmount != "" {
		deposit = e.loc.Money(string(c.DepositAmount))
	}
	fmt.Fprintln(w, RenderLabel(e.loc.T(locale.FieldDeposit), deposit))
	fmt.Fprintln(w, RenderLabel(e.loc.T(locale.FieldPeriod), e.period(c.StartDate, c.EndDate)))
	if !c.CreatedAt.IsZero() {
		fmt.Fprintln(w, RenderLabel(e.loc.T(locale.FieldCreated), e.loc.DateTime(c.CreatedAt.Time)))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render(e.loc.T(locale.LinkedDocuments)))
	e.writeDocuments(w, d.Documents)
}

// =============================================================================
// CREATE / UPDATE
// =============================================================================

// contractFlags holds the editable contract fields.
type contractFlags struct {
	client, phone, email, address, propertyType string
	rent, deposit, start, end, status           string
}

func (f *contractFlags) register(fs *pflag.FlagSet, withStatus bool) {
	fs.StringVar(&f.client, "client", "", "client name")
	fs.StringVar(&f.phone, "phone", "", "client phone")
	fs.StringVar(&f.email, "email", "", "client email")
	fs.StringVar(&f.address, "address", "", "property address")
	fs.StringVar(&f.propertyType, "property-type", "", "property type, e.g. квартира, офис, склад")
	fs.StringVar(&f.rent, "rent", "", "monthly rent in tenge, e.g. 150000.00")
	fs.StringVar(&f.deposit, "deposit", "", "deposit in tenge")
	fs.StringVar(&f.start, "start", "", "start date, YYYY-MM-DD")
	fs.StringVar(&f.end, "end", "", "end date, YYYY-MM-DD")
	if withStatus {
		fs.StringVar(&f.status, "status", "", "draft, active, completed or terminated")
	}
}

func parseDecimal(field, s string) (api.Decimal, error) {
	d := api.Decimal(s)
	if !d.Valid() || d.Rat().Sign() < 0 {
		return "", invalid(field, s, "must be a non-negative amount", "--"+field+" 150000.00")
	}
	return d, nil
}

func parseDate(field, s string) (api.Date, error) {
	d, err := api.ParseDate(s)
	if err != nil {
		return api.Date{}, invalid(field, s, "must be a date", "--"+field+" 2024-01-31")
	}
	return d, nil
}

func (f *contractFlags) create() (api.ContractCreate, error) {
	in := api.ContractCreate{
		ClientName:      f.client,
		ClientPhone:     f.phone,
		ClientEmail:     f.email,
		PropertyAddress: f.address,
		PropertyType:    f.propertyType,
	}
	required := []struct{ flag, value string }{
		{"client", f.client},
		{"address", f.address},
		{"property-type", f.propertyType},
		{"rent", f.rent},
		{"start", f.start},
		{"end", f.end},
	}
	for _, r := range required {
		if r.value == "" {
			return in, usageErrorf("--%s is required", r.flag)
		}
	}

	var err error
	if in.RentalAmount, err = parseDecimal("rent", f.rent); err != nil {
		return in, err
	}
	if f.deposit != "" {
		if in.DepositAmount, err = parseDecimal("deposit", f.deposit); err != nil {
			return in, err
		}
	}
	if in.StartDate, err = parseDate("start", f.start); err != nil {
		return in, err
	}
	if in.EndDate, err = parseDate("end", f.end); err != nil {
		return in, err
	}
	if !in.EndDate.After(in.StartDate.Time) {
		return in, invalid("end", f.end, "must be after the start date", "")
	}
	return in, nil
}

// update returns the fields whose flags were set.
func (f *contractFlags) update(fs *pflag.FlagSet) (api.ContractUpdate, error) {
	var in api.ContractUpdate
	set := func(name string, dst **string, v string) {
		if fs.Changed(name) {
			*dst = &v
		}
	}
	set("client", &in.ClientName, f.client)
	set("phone", &in.ClientPhone, f.phone)
	set("email", &in.ClientEmail, f.email)
	set("address", &in.PropertyAddress, f.address)
	set("property-type", &in.PropertyType, f.propertyType)

	changed := in != (api.ContractUpdate{})
	if fs.Changed("rent") {
		d, err := parseDecimal("rent", f.rent)
		if err != nil {
			return in, err
		}
		in.RentalAmount, changed = &d, true
	}
	if fs.Changed("deposit") {
		d, err := parseDecimal("deposit", f.deposit)
		if err != nil {
			return in, err
		}
		in.DepositAmount, changed = &d, true
	}
	if fs.Changed("start") {
		d, err := parseDate("start", f.start)
		if err != nil {
			return in, err
		}
		in.StartDate, changed = &d, true
	}
	if fs.Changed("end") {
		d, err := parseDate("end", f.end)
		if err != nil {
			return in, err
		}
		in.EndDate, changed = &d, true
	}
	if fs.Changed("status") {
		st, err := api.ParseContractStatus(f.status)
		if err != nil {
			return in, invalid("status", f.status, "must be draft, active, completed or terminated", "--status active")
		}
		in.Status, changed = &st, true
	}
	if !changed {
		return in, usageErrorf("nothing to update: pass at least one field flag")
	}
	return in, nil
}

func newContractsCreateCmd(e *env) *cobra.Command {
	var f contractFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a contract",
		Long: `Create a contract. The backend assigns the contract number and starts
it as a draft.`,
		Example: `  docflow contracts create --client "ТОО Алтын" --address "пр. Абая 1" \
    --property-type офис --rent 150000 --start 2024-01-01 --end 2024-12-31`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := f.create()
			if err != nil {
				return err
			}
			a, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			c, err := a.Client.Contracts.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return e.printer(cmd).print(c, func(w io.Writer) {
				fmt.Fprintf(w, "%s %s (ID %d)\n", SuccessStyle.Render(e.loc.T(locale.ContractCreated)), c.ContractNumber, c.ID)
			})
		},
	}
	f.register(cmd.Flags(), false)
	return cmd
}

func newContractsUpdateCmd(e *env) *cobra.Command {
	var f contractFlags
	cmd := &cobra.Command{
		Use:     "update <id>",
		Aliases: []string{"edit"},
		Short:   "Change contract fields",
		Long:    `Change contract fields. Only the flags you pass are sent.`,
		Example: `  docflow contracts update 7 --status active
  docflow contracts update 7 --rent 175000 --end 2025-06-30`,
		Args: exactArgs(1, "a contract id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("contract", args[0])
			if err != nil {
				return err
			}
			in, err := f.update(cmd.Flags())
			if err != nil {
				return err
			}
			a, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			c, err := a.Client.Contracts.Update(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			return e.printer(cmd).print(c, func(w io.Writer) {
				fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render(e.loc.T(locale.ContractSaved)), c.ContractNumber)
			})
		},
	}
	f.register(cmd.Flags(), true)
	return cmd
}

// =============================================================================
// DELETE / DOWNLOAD
// =============================================================================

func newContractsDeleteCmd(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a contract",
		Args:    exactArgs(1, "a contract id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("contract", args[0])
			if err != nil {
				return err
			}
			a, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			ok, err := e.confirm(yes, fmt.Sprintf("delete contract %d", id))
			if err != nil || !ok {
				return err
			}
			if err := a.Client.Contracts.Delete(cmd.Context(), id); err != nil {
				return err
			}
			return e.printer(cmd).print(map[string]int64{"deleted": id}, func(w io.Writer) {
				fmt.Fprintln(w, SuccessStyle.Render(e.loc.T(locale.ContractDeleted)))
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newContractsDownloadCmd(e *env) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download the contract file",
		Long: `Download the contract file into --dir under the name the server gives
it.`,
		Args: exactArgs(1, "a contract id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("contract", args[0])
			if err != nil {
				return err
			}
			a, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			path, err := a.DownloadContract(cmd.Context(), id, dir)
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
