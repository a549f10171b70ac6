package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/invoice/internal/models"
	"github.com/jesses-code-adventures/invoice/internal/service"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialise the invoice database",
		Long:  "Create the database if it does not exist and bring its schema up to date.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _, err := a.svc.SchemaVersion()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialised database %s (schema version %d)\n", a.cfg.DatabaseURL, schema)
			return nil
		},
	}
}

func newDBCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the invoice database",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Summarise database status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			schema, dirty, err := a.svc.SchemaVersion()
			if err != nil {
				return err
			}
			counts, err := a.svc.Counts(ctx)
			if err != nil {
				return err
			}

			a.cfg.Dump(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout())

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Schema version:\t%d%s\n", schema, dirtyMarker(dirty))
			fmt.Fprintf(w, "Formats:\t%v\n", a.formats.Names())
			fmt.Fprintf(w, "Accounts:\t%d\n", counts.Accounts)
			fmt.Fprintf(w, "Clients:\t%d\n", counts.Clients)
			fmt.Fprintf(w, "Timesheets:\t%d (%d generated)\n", counts.Timesheets, counts.TimesheetsGenerated)
			fmt.Fprintf(w, "Invoices:\t%d draft, %d generated, %d cancelled\n",
				counts.Invoices[models.InvoiceDraft],
				counts.Invoices[models.InvoiceGenerated],
				counts.Invoices[models.InvoiceCancelled])
			return w.Flush()
		},
	})
	return cmd
}

func newSummaryCmd(a *app) *cobra.Command {
	var chronological, verbose bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print a summary of the database contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sum, err := a.svc.Summarise(cmd.Context(), chronological)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Accounts: %d  Clients: %d  Templates: %d  Timesheets: %d  Invoices: %d\n",
				len(sum.Accounts), len(sum.Clients), len(sum.Templates), len(sum.Timesheets), len(sum.Invoices))
			if !verbose {
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "\nACCOUNT\tPREFIX\tEMAIL")
			for _, acc := range sum.Accounts {
				fmt.Fprintf(w, "%s\t%s\t%s\n", acc.Name, acc.EffectivePrefix(a.cfg.DefaultPrefix), orDash(acc.Email))
			}
			fmt.Fprintln(w, "\nCLIENT\tACCOUNT\tUNIT\tPERIOD DAY")
			for _, c := range sum.Clients {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", c.Name, c.AccountName, c.BillingUnit, c.PeriodDay)
			}
			fmt.Fprintln(w, "\nTIMESHEET\tDATE\tCLIENT\tEMPLOYEE\tGENERATED")
			for _, ts := range sum.Timesheets {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", ts.ID, service.FormatDate(ts.Date), ts.ClientName, ts.Employee, derefOrDash(ts.GeneratedPath))
			}
			fmt.Fprintln(w, "\nINVOICE\tNUMBER\tDATE\tCLIENT\tSTATUS\tPARTICULARS")
			for _, inv := range sum.Invoices {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", inv.ID, orDash(inv.Number()), service.FormatDate(inv.Date), inv.ClientName, inv.Status, inv.Particulars)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVarP(&chronological, "chronological", "c", false, "Order by date rather than id")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed summary")
	return cmd
}
