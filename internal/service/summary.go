package service

import (
	"context"
	"sort"

	"github.com/jesses-code-adventures/invoice/internal/database"
	"github.com/jesses-code-adventures/invoice/internal/models"
)

type Summary struct {
	Counts     *database.Counts
	Accounts   []*models.Account
	Clients    []*models.Client
	Templates  []*models.Template
	Timesheets []*models.Timesheet
	Invoices   []*models.Invoice
}

// Summarise gathers the database contents. Records are ordered by id unless
// chronological is set, in which case they are ordered by date.
func (s *BillingService) Summarise(ctx context.Context, chronological bool) (*Summary, error) {
	var (
		sum Summary
		err error
	)
	if sum.Counts, err = s.db.Counts(ctx); err != nil {
		return nil, err
	}
	if sum.Accounts, err = s.db.ListAccounts(ctx); err != nil {
		return nil, err
	}
	if sum.Clients, err = s.db.ListClients(ctx); err != nil {
		return nil, err
	}
	if sum.Templates, err = s.db.ListTemplates(ctx); err != nil {
		return nil, err
	}

	from, to := allTime()
	if sum.Timesheets, err = s.db.SelectTimesheets(ctx, database.TimesheetFilter{From: from, To: to}); err != nil {
		return nil, err
	}
	if sum.Invoices, err = s.db.SelectInvoices(ctx, database.InvoiceFilter{From: from, To: to, IncludeCancelled: true}); err != nil {
		return nil, err
	}

	if !chronological {
		sort.Slice(sum.Timesheets, func(i, j int) bool { return sum.Timesheets[i].ID < sum.Timesheets[j].ID })
		sort.Slice(sum.Invoices, func(i, j int) bool { return sum.Invoices[i].ID < sum.Invoices[j].ID })
	}
	return &sum, nil
}
