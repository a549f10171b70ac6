package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jesses-code-adventures/invoice/internal/database"
	"github.com/jesses-code-adventures/invoice/internal/models"
)

type InvoiceInput struct {
	Client      string `flag:"client" validate:"required"`
	Template    string `flag:"template" validate:"required"`
	Date        time.Time
	Particulars string `flag:"particulars" validate:"required"`
	Tags        []string
}

type InvoiceEdit struct {
	Client      *string
	Template    *string
	Date        *time.Time
	Particulars *string
	AddTags     []string
	ReplaceTags []string
}

// AddInvoice stores a draft invoice. Numbers are issued when the invoice is
// first generated.
func (s *BillingService) AddInvoice(ctx context.Context, in InvoiceInput) (*models.Invoice, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		in.Date = s.Today()
	}
	client, err := s.db.GetClientByName(ctx, in.Client)
	if err != nil {
		return nil, err
	}
	tmpl, err := s.db.GetTemplate(ctx, in.Template)
	if err != nil {
		return nil, err
	}
	return s.db.CreateInvoice(ctx, &models.Invoice{
		ClientID:    client.ID,
		TemplateID:  tmpl.ID,
		Date:        dateOnly(in.Date),
		Particulars: in.Particulars,
		Tags:        cleanList(in.Tags),
	})
}

func (s *BillingService) GetInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	return s.db.GetInvoiceByID(ctx, id)
}

// EditInvoice updates an invoice. The number, once issued, never changes.
func (s *BillingService) EditInvoice(ctx context.Context, id int64, edit InvoiceEdit) (*models.Invoice, error) {
	if edit.AddTags != nil && edit.ReplaceTags != nil {
		return nil, fmt.Errorf("%w: add-tags and replace-tags cannot be combined", models.ErrInvalidInput)
	}
	inv, err := s.db.GetInvoiceByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := &database.InvoiceUpdateDetails{Particulars: edit.Particulars}
	if edit.Date != nil {
		d := dateOnly(*edit.Date)
		updates.Date = &d
	}
	if edit.Client != nil {
		client, err := s.db.GetClientByName(ctx, *edit.Client)
		if err != nil {
			return nil, err
		}
		updates.ClientID = &client.ID
	}
	if edit.Template != nil {
		tmpl, err := s.db.GetTemplate(ctx, *edit.Template)
		if err != nil {
			return nil, err
		}
		updates.TemplateID = &tmpl.ID
	}
	switch {
	case edit.ReplaceTags != nil:
		updates.Tags = cleanList(edit.ReplaceTags)
	case edit.AddTags != nil:
		updates.Tags = cleanList(append(append([]string{}, inv.Tags...), edit.AddTags...))
	}
	return s.db.UpdateInvoice(ctx, id, updates)
}

// DeleteInvoice removes a draft. Numbered invoices can only be cancelled.
func (s *BillingService) DeleteInvoice(ctx context.Context, id int64) error {
	return s.db.DeleteInvoice(ctx, id)
}

// CancelInvoice marks an invoice cancelled. It keeps any number it holds.
func (s *BillingService) CancelInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	var cancelled *models.Invoice
	err := s.db.WithTx(ctx, func(tx database.Store) error {
		inv, err := tx.GetInvoiceByID(ctx, id)
		if err != nil {
			return err
		}
		if inv.Status != models.InvoiceCancelled {
			if err := tx.SetInvoiceStatus(ctx, id, models.InvoiceCancelled); err != nil {
				return err
			}
			inv.Status = models.InvoiceCancelled
		}
		cancelled = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("invoice_id", id).Str("number", cancelled.Number()).Msg("invoice cancelled")
	return cancelled, nil
}

func (s *BillingService) ListInvoices(ctx context.Context, c Criteria) ([]*models.Invoice, error) {
	c.Kind = models.KindInvoice
	return s.SelectInvoices(ctx, c)
}

// MissingArtifacts lists invoices recorded as generated whose file is gone,
// as left behind by a crash between commit and rename.
func (s *BillingService) MissingArtifacts(ctx context.Context) ([]*models.Invoice, error) {
	var missing []*models.Invoice
	for _, status := range []models.InvoiceStatus{models.InvoiceGenerated, models.InvoiceCancelled} {
		invoices, err := s.db.ListInvoicesByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		for _, inv := range invoices {
			if inv.GeneratedPath == nil {
				continue
			}
			if _, err := os.Stat(*inv.GeneratedPath); errors.Is(err, os.ErrNotExist) {
				missing = append(missing, inv)
			}
		}
	}
	return missing, nil
}

func (s *BillingService) AddInvoiceItem(ctx context.Context, invoiceID int64, description, quantity, unitPrice string) (*models.InvoiceItem, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("%w: item description is required", models.ErrInvalidInput)
	}
	qty, err := decimal.NewFromString(quantity)
	if err != nil || !qty.IsPositive() {
		return nil, fmt.Errorf("%w: quantity %q must be a positive number", models.ErrInvalidInput, quantity)
	}
	price, err := decimal.NewFromString(unitPrice)
	if err != nil || price.IsNegative() {
		return nil, fmt.Errorf("%w: unit price %q must be a non-negative number", models.ErrInvalidInput, unitPrice)
	}
	return s.db.AddInvoiceItem(ctx, invoiceID, description, qty, price)
}

func (s *BillingService) RemoveInvoiceItem(ctx context.Context, invoiceID int64, position int) error {
	return s.db.DeleteInvoiceItem(ctx, invoiceID, position)
}
