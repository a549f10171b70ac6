package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jesses-code-adventures/invoice/internal/database"
	"github.com/jesses-code-adventures/invoice/internal/models"
)

// Criteria selects the timesheets or invoices an operation applies to.
// A set ID overrides every other filter.
type Criteria struct {
	Kind             models.RecordKind
	ID               int64
	From             time.Time
	To               time.Time
	Client           string
	Employee         *string
	Tags             []string
	IncludeCancelled bool
}

// Ref identifies a selected record.
type Ref struct {
	Kind models.RecordKind
	ID   int64
	Date time.Time
}

func (r Ref) String() string {
	return fmt.Sprintf("%s %d", r.Kind, r.ID)
}

// Select resolves criteria to records ordered by date then id.
func (s *BillingService) Select(ctx context.Context, c Criteria) ([]Ref, error) {
	switch c.Kind {
	case models.KindInvoice:
		invoices, err := s.SelectInvoices(ctx, c)
		if err != nil {
			return nil, err
		}
		refs := make([]Ref, len(invoices))
		for i, inv := range invoices {
			refs[i] = Ref{Kind: models.KindInvoice, ID: inv.ID, Date: inv.Date}
		}
		return refs, nil
	case models.KindTimesheet:
		timesheets, err := s.SelectTimesheets(ctx, c)
		if err != nil {
			return nil, err
		}
		refs := make([]Ref, len(timesheets))
		for i, ts := range timesheets {
			refs[i] = Ref{Kind: models.KindTimesheet, ID: ts.ID, Date: ts.Date}
		}
		return refs, nil
	}
	return nil, fmt.Errorf("unknown record kind %q", c.Kind)
}

func (s *BillingService) SelectInvoices(ctx context.Context, c Criteria) ([]*models.Invoice, error) {
	if c.ID != models.NoID {
		inv, err := s.db.GetInvoiceByID(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		return []*models.Invoice{inv}, nil
	}
	return s.db.SelectInvoices(ctx, database.InvoiceFilter{
		From:             c.From,
		To:               c.To,
		Client:           c.Client,
		Tags:             c.Tags,
		IncludeCancelled: c.IncludeCancelled,
	})
}

func (s *BillingService) SelectTimesheets(ctx context.Context, c Criteria) ([]*models.Timesheet, error) {
	if c.ID != models.NoID {
		ts, err := s.db.GetTimesheetByID(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		return []*models.Timesheet{ts}, nil
	}
	return s.db.SelectTimesheets(ctx, database.TimesheetFilter{
		From:     c.From,
		To:       c.To,
		Client:   c.Client,
		Employee: c.Employee,
	})
}
