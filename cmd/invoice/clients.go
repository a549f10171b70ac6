package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/invoice/internal/models"
	"github.com/jesses-code-adventures/invoice/internal/service"
)

func newClientCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage clients",
		Long:  "Clients are billed under an account, in their own billing unit, on a day of the month.",
	}
	cmd.AddCommand(
		newClientAddCmd(a),
		newClientListCmd(a),
		newClientShowCmd(a),
		newClientEditCmd(a),
		newClientRemoveCmd(a),
		newClientPeriodsCmd(a),
	)
	return cmd
}

func newClientAddCmd(a *app) *cobra.Command {
	var in service.ClientInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.svc.CreateClient(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created client '%s' under account '%s'\n", client.Name, client.AccountName)
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.Name, "name", "n", "", "Name of client")
	cmd.Flags().StringVarP(&in.Account, "account", "a", "", "Account the client is billed under")
	cmd.Flags().StringVarP(&in.BillingUnit, "bunit", "b", "", "Unit to bill in (e.g. INR)")
	cmd.Flags().StringVar(&in.Address, "address", "", "Client billing address")
	cmd.Flags().IntVarP(&in.PeriodDay, "period", "p", 0, "Day of month on which the client is billed (1-31)")
	for _, name := range []string{"name", "account", "bunit", "address", "period"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newClientListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clients, err := a.svc.ListClients(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list clients: %w", err)
			}
			if len(clients) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No clients found.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tACCOUNT\tUNIT\tPERIOD DAY")
			for _, c := range clients {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", c.Name, c.AccountName, c.BillingUnit, c.PeriodDay)
			}
			return w.Flush()
		},
	}
}

func newClientShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show details of a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.svc.GetClient(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printClient(cmd.OutOrStdout(), client, a.svc.Today())
		},
	}
}

func newClientEditCmd(a *app) *cobra.Command {
	var account, bunit, address string
	var period int

	cmd := &cobra.Command{
		Use:   "edit NAME",
		Short: "Edit a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.svc.EditClient(cmd.Context(), args[0], service.ClientEdit{
				Account:     changed(cmd, "account", account),
				BillingUnit: changed(cmd, "bunit", bunit),
				Address:     changed(cmd, "address", address),
				PeriodDay:   changed(cmd, "period", period),
			})
			if err != nil {
				return fmt.Errorf("failed to update client: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated client '%s'\n", client.Name)
			return printClient(cmd.OutOrStdout(), client, a.svc.Today())
		},
	}

	cmd.Flags().StringVarP(&account, "account", "a", "", "Account the client is billed under")
	cmd.Flags().StringVarP(&bunit, "bunit", "b", "", "Unit to bill in")
	cmd.Flags().StringVar(&address, "address", "", "Client billing address")
	cmd.Flags().IntVarP(&period, "period", "p", 0, "Day of month on which the client is billed (1-31)")
	return cmd
}

func newClientRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm NAME",
		Short: "Delete a client with no timesheets or invoices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.svc.DeleteClient(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete client: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted client '%s'\n", args[0])
			return nil
		},
	}
}

func newClientPeriodsCmd(a *app) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "periods NAME",
		Short: "List a client's billing periods in a date range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := service.DateRange(from, to, a.svc.Today())
			if err != nil {
				return err
			}
			periods, err := a.svc.ClientPeriods(cmd.Context(), args[0], start, end)
			if err != nil {
				return err
			}
			for _, p := range periods {
				fmt.Fprintln(cmd.OutOrStdout(), p.String())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&from, "from", "f", "", "Start date (01/Jun/2024), default 30 days ago")
	cmd.Flags().StringVarP(&to, "to", "t", "", "End date (30/Jun/2024), default today")
	return cmd
}

func printClient(out io.Writer, client *models.Client, today time.Time) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Name:\t%s\n", client.Name)
	fmt.Fprintf(w, "Account:\t%s\n", client.AccountName)
	fmt.Fprintf(w, "Billing unit:\t%s\n", client.BillingUnit)
	fmt.Fprintf(w, "Address:\t%s\n", indent(orDash(client.Address)))
	fmt.Fprintf(w, "Billing day:\t%d\n", client.PeriodDay)
	if p, err := service.PeriodContaining(client.PeriodDay, today); err == nil {
		fmt.Fprintf(w, "Current period:\t%s\n", p)
	}
	return w.Flush()
}
