package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/invoice/internal/models"
	"github.com/jesses-code-adventures/invoice/internal/service"
)

func newInvoiceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "invoice",
		Aliases: []string{"inv"},
		Short:   "Manage invoices",
		Long: `Invoices are drafts until first generated, when they are issued the next
number in their account's sequence. A numbered invoice can be cancelled but
never deleted, and its number is never reused.`,
	}
	cmd.AddCommand(
		newInvoiceAddCmd(a),
		newInvoiceEditCmd(a),
		newInvoiceListCmd(a),
		newInvoiceShowCmd(a),
		newInvoiceRemoveCmd(a),
		newInvoiceCancelCmd(a),
		newInvoiceCheckCmd(a),
		newInvoiceItemCmd(a),
		newInvoiceGenerateCmd(a),
	)
	return cmd
}

func newInvoiceAddCmd(a *app) *cobra.Command {
	var in service.InvoiceInput
	var date string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a draft invoice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseOptionalDate(date)
			if err != nil {
				return err
			}
			in.Date = d
			inv, err := a.svc.AddInvoice(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("failed to add invoice: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added invoice %d for %s on %s\n", inv.ID, in.Client, service.FormatDate(inv.Date))
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.Client, "client", "c", "", "Client to bill")
	cmd.Flags().StringVarP(&in.Template, "template", "t", "", "Template to generate with")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Invoice date (01/Jun/2024), default today")
	cmd.Flags().StringVarP(&in.Particulars, "particulars", "p", "", "What the invoice is for")
	cmd.Flags().StringArrayVarP(&in.Tags, "tag", "g", nil, "Tag the invoice (repeatable)")
	for _, name := range []string{"client", "template", "particulars"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newInvoiceEditCmd(a *app) *cobra.Command {
	var client, template, date, particulars string
	var addTags, replaceTags []string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit an invoice",
		Long: `Edit an invoice. An issued number never changes. A file already generated
stays as it is until regenerated with --overwrite.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			d, err := changedDate(cmd, "date", date)
			if err != nil {
				return err
			}
			edit := service.InvoiceEdit{
				Client:      changed(cmd, "client", client),
				Template:    changed(cmd, "template", template),
				Date:        d,
				Particulars: changed(cmd, "particulars", particulars),
			}
			if cmd.Flags().Changed("add-tags") {
				edit.AddTags = append([]string{}, addTags...)
			}
			if cmd.Flags().Changed("replace-tags") {
				edit.ReplaceTags = append([]string{}, replaceTags...)
			}
			inv, err := a.svc.EditInvoice(cmd.Context(), id, edit)
			if err != nil {
				return fmt.Errorf("failed to update invoice: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated invoice %d\n", inv.ID)
			if inv.GeneratedPath != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "The generated file is now out of date; regenerate with --overwrite.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&client, "client", "c", "", "Client to bill")
	cmd.Flags().StringVarP(&template, "template", "t", "", "Template to generate with")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Invoice date")
	cmd.Flags().StringVarP(&particulars, "particulars", "p", "", "What the invoice is for")
	cmd.Flags().StringArrayVarP(&addTags, "add-tags", "a", nil, "Add a tag (repeatable)")
	cmd.Flags().StringArrayVarP(&replaceTags, "replace-tags", "r", nil, "Replace all tags (repeatable)")
	cmd.MarkFlagsMutuallyExclusive("add-tags", "replace-tags")
	return cmd
}

func newInvoiceListCmd(a *app) *cobra.Command {
	var from, to, client string
	var tags []string
	var all bool

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List invoices in a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := service.DateRange(from, to, a.svc.Today())
			if err != nil {
				return err
			}
			invoices, err := a.svc.ListInvoices(cmd.Context(), service.Criteria{
				ID:               models.NoID,
				From:             start,
				To:               end,
				Client:           client,
				Tags:             tags,
				IncludeCancelled: all,
			})
			if err != nil {
				return fmt.Errorf("failed to list invoices: %w", err)
			}
			if len(invoices) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No invoices found.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNUMBER\tDATE\tCLIENT\tSTATUS\tTOTAL\tTAGS\tPARTICULARS")
			for _, inv := range invoices {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					inv.ID, orDash(inv.Number()), service.FormatDate(inv.Date), inv.ClientName, inv.Status,
					invoiceTotal(inv).StringFixed(2), orDash(strings.Join(inv.Tags, ",")), inv.Particulars)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&from, "from", "f", "", "Start date, or 'a' for all (default 30 days ago)")
	cmd.Flags().StringVarP(&to, "to", "t", "", "End date (default today)")
	cmd.Flags().StringVarP(&client, "client", "c", "", "Only this client")
	cmd.Flags().StringArrayVarP(&tags, "tag", "g", nil, "Only invoices with this tag (repeatable)")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include cancelled invoices")
	return cmd
}

func newInvoiceShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show an invoice and its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			inv, err := a.svc.GetInvoice(cmd.Context(), id)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "ID:\t%d\n", inv.ID)
			fmt.Fprintf(w, "Number:\t%s\n", orDash(inv.Number()))
			fmt.Fprintf(w, "Status:\t%s\n", inv.Status)
			fmt.Fprintf(w, "Date:\t%s\n", service.FormatDate(inv.Date))
			fmt.Fprintf(w, "Client:\t%s\n", inv.ClientName)
			fmt.Fprintf(w, "Template:\t%s\n", inv.TemplateName)
			fmt.Fprintf(w, "Particulars:\t%s\n", indent(inv.Particulars))
			fmt.Fprintf(w, "Tags:\t%s\n", orDash(strings.Join(inv.Tags, ", ")))
			fmt.Fprintf(w, "Generated:\t%s\n", derefOrDash(inv.GeneratedPath))
			if len(inv.Items) > 0 {
				fmt.Fprintln(w, "\n#\tDESCRIPTION\tQTY\tUNIT PRICE\tAMOUNT")
				for _, it := range inv.Items {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
						it.Position, it.Description, it.Quantity.String(), it.UnitPrice.StringFixed(2), it.Amount().StringFixed(2))
				}
				fmt.Fprintf(w, "\tTOTAL\t\t\t%s\n", invoiceTotal(inv).StringFixed(2))
			}
			return w.Flush()
		},
	}
}

func newInvoiceRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a draft invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.svc.DeleteInvoice(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete invoice: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted invoice %d\n", id)
			return nil
		},
	}
}

func newInvoiceCancelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel an invoice, keeping its number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			inv, err := a.svc.CancelInvoice(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to cancel invoice: %w", err)
			}
			if inv.Numbered() {
				fmt.Fprintf(cmd.OutOrStdout(), "Cancelled invoice %d (%s)\n", inv.ID, inv.Number())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Cancelled invoice %d\n", inv.ID)
			}
			return nil
		},
	}
}

func newInvoiceCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Find generated invoices whose file is missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			missing, err := a.svc.MissingArtifacts(cmd.Context())
			if err != nil {
				return err
			}
			if len(missing) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "All generated invoices are present.")
				return nil
			}
			for _, inv := range missing {
				fmt.Fprintf(cmd.OutOrStdout(), "Missing invoice %d (%s): %s\n", inv.ID, inv.Number(), derefOrDash(inv.GeneratedPath))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Regenerate them with: invoice generate --id ID --overwrite")
			return fmt.Errorf("%d generated invoice(s) missing", len(missing))
		},
	}
}

func newInvoiceItemCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage the line items of an invoice",
	}

	var desc, qty, price string
	add := &cobra.Command{
		Use:   "add ID",
		Short: "Append a line item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			item, err := a.svc.AddInvoiceItem(cmd.Context(), id, desc, qty, price)
			if err != nil {
				return fmt.Errorf("failed to add item: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added item %d to invoice %d: %s x %s = %s\n",
				item.Position, id, item.Quantity.String(), item.UnitPrice.StringFixed(2), item.Amount().StringFixed(2))
			return nil
		},
	}
	add.Flags().StringVarP(&desc, "desc", "s", "", "Description of the item")
	add.Flags().StringVarP(&qty, "qty", "q", "1", "Quantity")
	add.Flags().StringVarP(&price, "price", "u", "", "Unit price")
	_ = add.MarkFlagRequired("desc")
	_ = add.MarkFlagRequired("price")

	rm := &cobra.Command{
		Use:   "rm ID POSITION",
		Short: "Remove a line item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			position, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[1])
			}
			if err := a.svc.RemoveInvoiceItem(cmd.Context(), id, position); err != nil {
				return fmt.Errorf("failed to remove item: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed item %d from invoice %d\n", position, id)
			return nil
		},
	}

	cmd.AddCommand(add, rm)
	return cmd
}

func newInvoiceGenerateCmd(a *app) *cobra.Command {
	var id int64
	var from, to, client string
	var tags []string
	var overwrite, all bool
	var format *formatFlag

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate invoice documents",
		Long: `Generate a document for each selected invoice, in date order. Drafts are
issued the next number for their account as they are generated. An existing
file is left alone unless --overwrite is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := service.DateRange(from, to, a.svc.Today())
			if err != nil {
				return err
			}
			return runGenerate(cmd, a, service.Request{
				Criteria: service.Criteria{
					Kind:             models.KindInvoice,
					ID:               id,
					From:             start,
					To:               end,
					Client:           client,
					Tags:             tags,
					IncludeCancelled: all,
				},
				Format:    format.String(),
				Overwrite: overwrite,
			})
		},
	}

	cmd.Flags().Int64VarP(&id, "id", "i", models.NoID, "Generate only this invoice")
	cmd.Flags().StringVarP(&from, "from", "f", "", "Start date, or 'a' for all (default 30 days ago)")
	cmd.Flags().StringVarP(&to, "to", "t", "", "End date (default today)")
	cmd.Flags().StringVarP(&client, "client", "c", "", "Only this client")
	cmd.Flags().StringArrayVarP(&tags, "tag", "g", nil, "Only invoices with this tag (repeatable)")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include cancelled invoices (regenerated only with --overwrite)")
	cmd.Flags().BoolVarP(&overwrite, "overwrite", "w", false, "Replace files that already exist")
	format = addFormatFlag(cmd, a.formats)
	return cmd
}

func invoiceTotal(inv *models.Invoice) decimal.Decimal {
	total := decimal.Zero
	for _, it := range inv.Items {
		total = total.Add(it.Amount())
	}
	return total
}
