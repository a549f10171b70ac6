package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/invoice/internal/service"
)

func newTemplateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage document templates",
		Long:  "Templates choose which fields appear on a generated document and carry an optional letterhead image.",
	}
	cmd.AddCommand(
		newTemplateAddCmd(a),
		newTemplateEditCmd(a),
		newTemplateListCmd(a),
		newTemplateShowCmd(a),
		newTemplateRemoveCmd(a),
	)
	return cmd
}

func newTemplateAddCmd(a *app) *cobra.Command {
	var in service.TemplateInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := a.svc.CreateTemplate(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("failed to create template: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created template '%s'\n", tmpl.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.Name, "name", "n", "", "Name of template")
	cmd.Flags().StringVarP(&in.Description, "desc", "d", "", "Description of template")
	cmd.Flags().StringVarP(&in.LetterheadPath, "letterhead", "l", "", "PNG or JPEG letterhead image")
	cmd.Flags().StringSliceVar(&in.Slots, "slots", nil, "Fields to print, in order (default: every field)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newTemplateEditCmd(a *app) *cobra.Command {
	var desc, letterhead string
	var slots []string

	cmd := &cobra.Command{
		Use:   "edit NAME",
		Short: "Edit a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			edit := service.TemplateEdit{
				Description:    changed(cmd, "desc", desc),
				LetterheadPath: changed(cmd, "letterhead", letterhead),
			}
			if cmd.Flags().Changed("slots") {
				edit.Slots = append([]string{}, slots...)
			}
			tmpl, err := a.svc.EditTemplate(cmd.Context(), args[0], edit)
			if err != nil {
				return fmt.Errorf("failed to update template: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated template '%s'\n", tmpl.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&desc, "desc", "d", "", "Description of template")
	cmd.Flags().StringVarP(&letterhead, "letterhead", "l", "", "PNG or JPEG letterhead image")
	cmd.Flags().StringSliceVar(&slots, "slots", nil, "Fields to print, in order")
	return cmd
}

func newTemplateListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := a.svc.ListTemplates(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list templates: %w", err)
			}
			if len(templates) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No templates found.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tLETTERHEAD\tDESCRIPTION")
			for _, t := range templates {
				letterhead := "no"
				if len(t.Letterhead) > 0 {
					letterhead = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", t.Name, letterhead, orDash(t.Description))
			}
			return w.Flush()
		},
	}
}

func newTemplateShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := a.svc.GetTemplate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			slots := "(all fields)"
			if len(tmpl.Slots) > 0 {
				slots = strings.Join(tmpl.Slots, ", ")
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Name:\t%s\n", tmpl.Name)
			fmt.Fprintf(w, "Description:\t%s\n", orDash(tmpl.Description))
			fmt.Fprintf(w, "Letterhead:\t%d bytes\n", len(tmpl.Letterhead))
			fmt.Fprintf(w, "Slots:\t%s\n", slots)
			return w.Flush()
		},
	}
}

func newTemplateRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm NAME",
		Short: "Delete a template no record uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.svc.DeleteTemplate(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete template: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted template '%s'\n", args[0])
			return nil
		},
	}
}
