package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/invoice/internal/models"
	"github.com/jesses-code-adventures/invoice/internal/service"
)

func newAccountCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
		Long:  "Accounts are the businesses invoices are issued from. Each has its own invoice number prefix.",
	}
	cmd.AddCommand(
		newAccountAddCmd(a),
		newAccountEditCmd(a),
		newAccountListCmd(a),
		newAccountShowCmd(a),
		newAccountRemoveCmd(a),
	)
	return cmd
}

func newAccountAddCmd(a *app) *cobra.Command {
	var in service.AccountInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := a.svc.CreateAccount(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("failed to create account: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created account '%s' (invoice prefix %s)\n", account.Name, account.EffectivePrefix(a.cfg.DefaultPrefix))
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.Name, "name", "n", "", "Name of account")
	cmd.Flags().StringVarP(&in.Signatory, "signatory", "s", "", "Name of signatory")
	cmd.Flags().StringVarP(&in.Address, "address", "a", "", "Billing address of the account")
	cmd.Flags().StringVarP(&in.Phone, "phone", "p", "", "Phone number")
	cmd.Flags().StringVarP(&in.Email, "email", "e", "", "Email address")
	cmd.Flags().StringVar(&in.PAN, "pan", "", "PAN number")
	cmd.Flags().StringVar(&in.ServiceTax, "serv", "", "Service tax number")
	cmd.Flags().StringVar(&in.BankDetails, "bank-details", "", "Bank details: bank name, address, account number, holder and IFSC code")
	cmd.Flags().StringVar(&in.Prefix, "prefix", "", "Invoice number prefix")
	for _, name := range []string{"name", "signatory", "address", "phone", "email", "bank-details"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newAccountEditCmd(a *app) *cobra.Command {
	var signatory, address, phone, email, pan, serv, bankDetails, prefix string

	cmd := &cobra.Command{
		Use:   "edit NAME",
		Short: "Edit an existing account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := a.svc.EditAccount(cmd.Context(), args[0], service.AccountEdit{
				Signatory:   changed(cmd, "signatory", signatory),
				Address:     changed(cmd, "address", address),
				Phone:       changed(cmd, "phone", phone),
				Email:       changed(cmd, "email", email),
				PAN:         changed(cmd, "pan", pan),
				ServiceTax:  changed(cmd, "serv", serv),
				BankDetails: changed(cmd, "bank-details", bankDetails),
				Prefix:      changed(cmd, "prefix", prefix),
			})
			if err != nil {
				return fmt.Errorf("failed to update account: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated account '%s'\n", account.Name)
			return printAccount(cmd.OutOrStdout(), account, a.cfg.DefaultPrefix)
		},
	}

	cmd.Flags().StringVarP(&signatory, "signatory", "s", "", "Name of signatory")
	cmd.Flags().StringVarP(&address, "address", "a", "", "Billing address of the account")
	cmd.Flags().StringVarP(&phone, "phone", "p", "", "Phone number")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address")
	cmd.Flags().StringVar(&pan, "pan", "", "PAN number")
	cmd.Flags().StringVar(&serv, "serv", "", "Service tax number")
	cmd.Flags().StringVar(&bankDetails, "bank-details", "", "Bank details")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Invoice number prefix for invoices numbered from now on")
	return cmd
}

func newAccountListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			accounts, err := a.svc.ListAccounts(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list accounts: %w", err)
			}
			if len(accounts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No accounts found.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPREFIX\tSIGNATORY\tEMAIL")
			for _, account := range accounts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", account.Name, account.EffectivePrefix(a.cfg.DefaultPrefix), orDash(account.Signatory), orDash(account.Email))
			}
			return w.Flush()
		},
	}
}

func newAccountShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := a.svc.GetAccount(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printAccount(cmd.OutOrStdout(), account, a.cfg.DefaultPrefix)
		},
	}
}

func newAccountRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm NAME",
		Short: "Delete an account that no client uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.svc.DeleteAccount(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete account: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted account '%s'\n", args[0])
			return nil
		},
	}
}

func printAccount(out io.Writer, account *models.Account, defaultPrefix string) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Name:\t%s\n", account.Name)
	fmt.Fprintf(w, "Signatory:\t%s\n", orDash(account.Signatory))
	fmt.Fprintf(w, "Address:\t%s\n", indent(orDash(account.Address)))
	fmt.Fprintf(w, "Phone:\t%s\n", orDash(account.Phone))
	fmt.Fprintf(w, "Email:\t%s\n", orDash(account.Email))
	fmt.Fprintf(w, "PAN:\t%s\n", derefOrDash(account.PAN))
	fmt.Fprintf(w, "Service tax:\t%s\n", derefOrDash(account.ServiceTax))
	fmt.Fprintf(w, "Bank details:\t%s\n", indent(orDash(account.BankDetails)))
	fmt.Fprintf(w, "Invoice prefix:\t%s\n", account.EffectivePrefix(defaultPrefix))
	return w.Flush()
}
