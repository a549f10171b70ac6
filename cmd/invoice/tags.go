package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTagCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage invoice tags",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME...",
		Short: "Add tags",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				tag, err := a.svc.CreateTag(cmd.Context(), name)
				if err != nil {
					return fmt.Errorf("failed to create tag: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created tag '%s'\n", tag.Name)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm NAME...",
		Short: "Delete tags and detach them from invoices",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				if err := a.svc.DeleteTag(cmd.Context(), name); err != nil {
					return fmt.Errorf("failed to delete tag: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted tag '%s'\n", name)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, err := a.svc.ListTags(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list tags: %w", err)
			}
			if len(tags) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tags found.")
				return nil
			}
			for _, tag := range tags {
				fmt.Fprintln(cmd.OutOrStdout(), tag.Name)
			}
			return nil
		},
	})

	return cmd
}
