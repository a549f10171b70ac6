package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/invoice/internal/service"
)

// runGenerate generates the selected records and prints one line per record.
// Any failed record makes the command exit non-zero.
func runGenerate(cmd *cobra.Command, a *app, req service.Request) error {
	report, err := a.svc.Generate(cmd.Context(), req)
	if report == nil {
		return err
	}
	printReport(cmd.OutOrStdout(), report)
	if err != nil {
		return err
	}
	return report.Err()
}

func printReport(out io.Writer, report *service.Report) {
	if report.Total() == 0 {
		fmt.Fprintln(out, "Nothing to generate.")
		return
	}
	for _, o := range report.Succeeded {
		if o.Number != "" {
			fmt.Fprintf(out, "Generated %s (%s) -> %s\n", o.Ref, o.Number, o.Path)
		} else {
			fmt.Fprintf(out, "Generated %s -> %s\n", o.Ref, o.Path)
		}
	}
	for _, o := range report.Skipped {
		fmt.Fprintf(out, "Skipped %s: %s\n", o.Ref, o.Reason)
	}
	for _, f := range report.Failed {
		fmt.Fprintf(out, "Failed %s: %v\n", f.Ref, f.Err)
	}
	fmt.Fprintf(out, "%d generated, %d skipped, %d failed (%s)\n",
		len(report.Succeeded), len(report.Skipped), len(report.Failed), report.Format)
}
