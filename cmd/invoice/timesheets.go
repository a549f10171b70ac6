package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/invoice/internal/models"
	"github.com/jesses-code-adventures/invoice/internal/service"
)

func newTimesheetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "timesheet",
		Aliases: []string{"ts"},
		Short:   "Manage timesheets",
	}
	cmd.AddCommand(
		newTimesheetAddCmd(a),
		newTimesheetImportCmd(a),
		newTimesheetParseCmd(),
		newTimesheetEditCmd(a),
		newTimesheetListCmd(a),
		newTimesheetShowCmd(a),
		newTimesheetRemoveCmd(a),
		newTimesheetGenerateCmd(a),
	)
	return cmd
}

// timesheetFlags are shared by add and import.
type timesheetFlags struct {
	in   service.TimesheetInput
	date string
}

func (f *timesheetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "Timesheet date (01/Jun/2024), default today")
	cmd.Flags().StringVarP(&f.in.Employee, "employee", "e", "", "Employee the timesheet is for")
	cmd.Flags().StringVarP(&f.in.Client, "client", "c", "", "Client the work was done for")
	cmd.Flags().StringVarP(&f.in.Description, "desc", "s", "", "Description of the work")
	cmd.Flags().StringVarP(&f.in.Template, "template", "t", "", "Template to generate with")
	for _, name := range []string{"employee", "client", "desc", "template"} {
		_ = cmd.MarkFlagRequired(name)
	}
}

func (f *timesheetFlags) input() (service.TimesheetInput, error) {
	in := f.in
	date, err := parseOptionalDate(f.date)
	if err != nil {
		return in, err
	}
	in.Date = date
	return in, nil
}

func newTimesheetAddCmd(a *app) *cobra.Command {
	var f timesheetFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a timesheet with no content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := f.input()
			if err != nil {
				return err
			}
			ts, err := a.svc.AddTimesheet(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("failed to add timesheet: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added timesheet %d for %s on %s\n", ts.ID, ts.Employee, service.FormatDate(ts.Date))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newTimesheetImportCmd(a *app) *cobra.Command {
	var f timesheetFlags

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Add a timesheet from a file of 'date | hours | note' lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := f.input()
			if err != nil {
				return err
			}
			ts, err := a.svc.ImportTimesheet(cmd.Context(), in, args[0])
			if err != nil {
				return fmt.Errorf("failed to import timesheet: %w", err)
			}
			entries := service.ParseTimesheetContent(ts.Content)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported timesheet %d for %s: %d entries, %s hours\n",
				ts.ID, ts.Employee, len(entries), service.TotalHours(entries).StringFixed(2))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newTimesheetParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "parse FILE",
		Short:       "Check a timesheet file without storing it",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{skipStore: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := service.ParseTimesheetFile(args[0])
			if err != nil {
				return err
			}
			printEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}
}

func newTimesheetEditCmd(a *app) *cobra.Command {
	var date, employee, client, desc, content string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a timesheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			d, err := changedDate(cmd, "date", date)
			if err != nil {
				return err
			}
			ts, err := a.svc.EditTimesheet(cmd.Context(), id, service.TimesheetEdit{
				Date:        d,
				Employee:    changed(cmd, "employee", employee),
				Client:      changed(cmd, "client", client),
				Description: changed(cmd, "desc", desc),
				ContentPath: changed(cmd, "content", content),
			})
			if err != nil {
				return fmt.Errorf("failed to update timesheet: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated timesheet %d\n", ts.ID)
			if ts.Generated() {
				fmt.Fprintln(cmd.OutOrStdout(), "The generated file is now out of date; regenerate with --overwrite.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Timesheet date")
	cmd.Flags().StringVarP(&employee, "employee", "e", "", "Employee the timesheet is for")
	cmd.Flags().StringVarP(&client, "client", "c", "", "Client the work was done for")
	cmd.Flags().StringVarP(&desc, "desc", "s", "", "Description of the work")
	cmd.Flags().StringVar(&content, "content", "", "Replace the content with this file")
	return cmd
}

func newTimesheetListCmd(a *app) *cobra.Command {
	var from, to, client, employee string

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List timesheets in a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := service.DateRange(from, to, a.svc.Today())
			if err != nil {
				return err
			}
			timesheets, err := a.svc.SelectTimesheets(cmd.Context(), service.Criteria{
				Kind:     models.KindTimesheet,
				ID:       models.NoID,
				From:     start,
				To:       end,
				Client:   client,
				Employee: changed(cmd, "employee", employee),
			})
			if err != nil {
				return fmt.Errorf("failed to list timesheets: %w", err)
			}
			if len(timesheets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No timesheets found.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tCLIENT\tEMPLOYEE\tDESCRIPTION\tGENERATED")
			for _, ts := range timesheets {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					ts.ID, service.FormatDate(ts.Date), ts.ClientName, ts.Employee, ts.Description, derefOrDash(ts.GeneratedPath))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&from, "from", "f", "", "Start date, or 'a' for all (default 30 days ago)")
	cmd.Flags().StringVarP(&to, "to", "t", "", "End date (default today)")
	cmd.Flags().StringVarP(&client, "client", "c", "", "Only this client")
	cmd.Flags().StringVarP(&employee, "employee", "e", "", "Only this employee")
	return cmd
}

func newTimesheetShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a timesheet and its entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ts, err := a.svc.GetTimesheet(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "ID:\t%d\n", ts.ID)
			fmt.Fprintf(w, "Date:\t%s\n", service.FormatDate(ts.Date))
			fmt.Fprintf(w, "Employee:\t%s\n", ts.Employee)
			fmt.Fprintf(w, "Client:\t%s\n", ts.ClientName)
			fmt.Fprintf(w, "Template:\t%s\n", ts.TemplateName)
			fmt.Fprintf(w, "Description:\t%s\n", ts.Description)
			fmt.Fprintf(w, "Generated:\t%s\n", derefOrDash(ts.GeneratedPath))
			if err := w.Flush(); err != nil {
				return err
			}
			if strings.TrimSpace(ts.Content) != "" {
				fmt.Fprintln(out)
				printEntries(out, service.ParseTimesheetContent(ts.Content))
			}
			return nil
		},
	}
}

func newTimesheetRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a timesheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.svc.DeleteTimesheet(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete timesheet: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted timesheet %d\n", id)
			return nil
		},
	}
}

func newTimesheetGenerateCmd(a *app) *cobra.Command {
	var id int64
	var from, to, client, employee string
	var overwrite bool
	var format *formatFlag

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate timesheet documents",
		Long: `Generate a document for each selected timesheet, in date order.
An existing file is left alone unless --overwrite is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := service.DateRange(from, to, a.svc.Today())
			if err != nil {
				return err
			}
			return runGenerate(cmd, a, service.Request{
				Criteria: service.Criteria{
					Kind:     models.KindTimesheet,
					ID:       id,
					From:     start,
					To:       end,
					Client:   client,
					Employee: changed(cmd, "employee", employee),
				},
				Format:    format.String(),
				Overwrite: overwrite,
			})
		},
	}

	cmd.Flags().Int64VarP(&id, "id", "i", models.NoID, "Generate only this timesheet")
	cmd.Flags().StringVarP(&from, "from", "f", "", "Start date, or 'a' for all (default 30 days ago)")
	cmd.Flags().StringVarP(&to, "to", "t", "", "End date (default today)")
	cmd.Flags().StringVarP(&client, "client", "c", "", "Only this client")
	cmd.Flags().StringVarP(&employee, "employee", "e", "", "Only this employee")
	cmd.Flags().BoolVarP(&overwrite, "overwrite", "w", false, "Replace files that already exist")
	format = addFormatFlag(cmd, a.formats)
	return cmd
}

func printEntries(out io.Writer, entries []service.TimesheetEntry) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tHOURS\tNOTE")
	for _, e := range entries {
		row := e.Row()
		fmt.Fprintf(w, "%s\t%s\t%s\n", orDash(row[0]), orDash(row[1]), row[2])
	}
	fmt.Fprintf(w, "TOTAL\t%s\t\n", service.TotalHours(entries).StringFixed(2))
	_ = w.Flush()
}
