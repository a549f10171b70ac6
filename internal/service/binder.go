package service

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jesses-code-adventures/invoice/internal/models"
)

var (
	DefaultInvoiceSlots = []string{
		"number", "date", "particulars", "status", "tags",
		"account.name", "account.signatory", "account.address", "account.phone",
		"account.email", "account.pan", "account.service_tax", "account.bank_details",
		"client.name", "client.address", "client.billing_unit",
		"period.start", "period.end",
		"subtotal", "total",
	}

	DefaultTimesheetSlots = []string{
		"id", "date", "employee", "description",
		"account.name", "client.name", "client.address",
		"period.start", "period.end",
		"total_hours",
	}
)

// Record is a timesheet or invoice with the client and account it bills.
type Record interface {
	Kind() models.RecordKind
	RecordID() int64
	record()
}

type InvoiceRecord struct {
	Invoice *models.Invoice
	Client  *models.Client
	Account *models.Account
}

func (r *InvoiceRecord) Kind() models.RecordKind { return models.KindInvoice }
func (r *InvoiceRecord) RecordID() int64         { return r.Invoice.ID }
func (r *InvoiceRecord) record()                 {}

type TimesheetRecord struct {
	Timesheet *models.Timesheet
	Client    *models.Client
	Account   *models.Account
}

func (r *TimesheetRecord) Kind() models.RecordKind { return models.KindTimesheet }
func (r *TimesheetRecord) RecordID() int64         { return r.Timesheet.ID }
func (r *TimesheetRecord) record()                 {}

// invoiceRequired lists the invoice attributes every template needs.
type invoiceRequired struct {
	Number        string `slot:"number" validate:"required"`
	Date          string `slot:"date" validate:"required"`
	Particulars   string `slot:"particulars" validate:"required"`
	AccountName   string `slot:"account.name" validate:"required"`
	ClientName    string `slot:"client.name" validate:"required"`
	ClientAddress string `slot:"client.address" validate:"required"`
	BillingUnit   string `slot:"client.billing_unit" validate:"required"`
}

type timesheetRequired struct {
	ID          string `slot:"id" validate:"required"`
	Date        string `slot:"date" validate:"required"`
	Employee    string `slot:"employee" validate:"required"`
	Description string `slot:"description" validate:"required"`
	ClientName  string `slot:"client.name" validate:"required"`
}

// Binder merges records into template slots.
type Binder struct {
	validate *validator.Validate
}

func NewBinder() *Binder {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("slot")
	})
	return &Binder{validate: v}
}

// Bind produces the binding for rec under tmpl. It fails with an
// *models.IncompleteRecordError when rec lacks a required attribute.
func (b *Binder) Bind(tmpl *models.Template, rec Record) (*models.Binding, error) {
	switch r := rec.(type) {
	case *InvoiceRecord:
		return b.bindInvoice(tmpl, r)
	case *TimesheetRecord:
		return b.bindTimesheet(tmpl, r)
	}
	return nil, fmt.Errorf("cannot bind record of type %T", rec)
}

func (b *Binder) check(kind models.RecordKind, id int64, required interface{}) error {
	err := b.validate.Struct(required)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &models.IncompleteRecordError{Kind: string(kind), ID: id, Field: verrs[0].Field()}
	}
	return err
}

func (b *Binder) bindInvoice(tmpl *models.Template, r *InvoiceRecord) (*models.Binding, error) {
	inv, client, account := r.Invoice, r.Client, r.Account
	if client == nil || account == nil {
		return nil, fmt.Errorf("invoice %d: client and account are required", inv.ID)
	}

	required := invoiceRequired{
		Number:        inv.Number(),
		Particulars:   strings.TrimSpace(inv.Particulars),
		AccountName:   account.Name,
		ClientName:    client.Name,
		ClientAddress: strings.TrimSpace(client.Address),
		BillingUnit:   client.BillingUnit,
	}
	if !inv.Date.IsZero() {
		required.Date = FormatDate(inv.Date)
	}
	if err := b.check(models.KindInvoice, inv.ID, required); err != nil {
		return nil, err
	}

	fields := map[string]string{
		"number":              required.Number,
		"date":                required.Date,
		"particulars":         required.Particulars,
		"status":              string(inv.Status),
		"tags":                strings.Join(inv.Tags, ", "),
		"client.name":         client.Name,
		"client.address":      required.ClientAddress,
		"client.billing_unit": client.BillingUnit,
		"client.period_day":   strconv.Itoa(client.PeriodDay),
	}
	addAccountFields(fields, account)
	if err := addPeriodFields(fields, client.PeriodDay, inv.Date); err != nil {
		return nil, fmt.Errorf("invoice %d: %w", inv.ID, err)
	}

	table := models.Table{
		Headers: []string{"#", "Description", "Qty", "Unit Price", "Amount"},
		Wide:    1,
	}
	subtotal := decimal.Zero
	for i, item := range inv.Items {
		amount := item.Amount()
		subtotal = subtotal.Add(amount)
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(i + 1),
			item.Description,
			item.Quantity.String(),
			item.UnitPrice.StringFixed(2),
			amount.StringFixed(2),
		})
	}
	total := client.BillingUnit + " " + subtotal.StringFixed(2)
	fields["subtotal"] = total
	fields["total"] = total

	slots := slotsFor(tmpl, DefaultInvoiceSlots)
	return &models.Binding{
		Kind:   models.KindInvoice,
		Title:  "Invoice " + required.Number,
		Date:   inv.Date,
		Slots:  slots,
		Fields: project(fields, slots),
		Table:  table,
	}, nil
}

func (b *Binder) bindTimesheet(tmpl *models.Template, r *TimesheetRecord) (*models.Binding, error) {
	ts, client, account := r.Timesheet, r.Client, r.Account
	if client == nil {
		return nil, fmt.Errorf("timesheet %d: client is required", ts.ID)
	}

	required := timesheetRequired{
		Employee:    ts.Employee,
		Description: strings.TrimSpace(ts.Description),
		ClientName:  client.Name,
	}
	if ts.ID > 0 {
		required.ID = strconv.FormatInt(ts.ID, 10)
	}
	if !ts.Date.IsZero() {
		required.Date = FormatDate(ts.Date)
	}
	if err := b.check(models.KindTimesheet, ts.ID, required); err != nil {
		return nil, err
	}

	fields := map[string]string{
		"id":             required.ID,
		"date":           required.Date,
		"employee":       ts.Employee,
		"description":    required.Description,
		"client.name":    client.Name,
		"client.address": strings.TrimSpace(client.Address),
	}
	if account != nil {
		addAccountFields(fields, account)
	}
	if err := addPeriodFields(fields, client.PeriodDay, ts.Date); err != nil {
		return nil, fmt.Errorf("timesheet %d: %w", ts.ID, err)
	}

	table := models.Table{
		Headers: []string{"Date", "Hours", "Note"},
		Wide:    2,
	}
	entries := ParseTimesheetContent(ts.Content)
	for _, e := range entries {
		table.Rows = append(table.Rows, e.Row())
	}
	fields["total_hours"] = TotalHours(entries).StringFixed(2)

	slots := slotsFor(tmpl, DefaultTimesheetSlots)
	return &models.Binding{
		Kind:   models.KindTimesheet,
		Title:  "Timesheet " + required.ID,
		Date:   ts.Date,
		Slots:  slots,
		Fields: project(fields, slots),
		Table:  table,
	}, nil
}

func addAccountFields(fields map[string]string, a *models.Account) {
	fields["account.name"] = a.Name
	fields["account.signatory"] = a.Signatory
	fields["account.address"] = strings.TrimSpace(a.Address)
	fields["account.phone"] = a.Phone
	fields["account.email"] = a.Email
	fields["account.pan"] = deref(a.PAN)
	fields["account.service_tax"] = deref(a.ServiceTax)
	fields["account.bank_details"] = strings.TrimSpace(a.BankDetails)
}

func addPeriodFields(fields map[string]string, periodDay int, date time.Time) error {
	p, err := PeriodContaining(periodDay, date)
	if err != nil {
		return err
	}
	fields["period.start"] = FormatDate(p.Start)
	fields["period.end"] = FormatDate(p.LastDay())
	return nil
}

func slotsFor(tmpl *models.Template, defaults []string) []string {
	if tmpl != nil && len(tmpl.Slots) > 0 {
		return tmpl.Slots
	}
	return defaults
}

// project keeps the declared slots; slots the record does not know bind to "".
func project(known map[string]string, slots []string) map[string]string {
	out := make(map[string]string, len(slots))
	for _, s := range slots {
		out[s] = known[s]
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// TimesheetEntry is one line of timesheet content.
type TimesheetEntry struct {
	Date  string
	Hours *decimal.Decimal
	Note  string
}

func (e TimesheetEntry) Row() []string {
	hours := ""
	if e.Hours != nil {
		hours = e.Hours.StringFixed(2)
	}
	return []string{e.Date, hours, e.Note}
}

// ParseTimesheetContent reads "date | hours | note" lines. Lines that do not
// fit the form are kept as note-only entries; blank lines are dropped.
func ParseTimesheetContent(content string) []TimesheetEntry {
	var entries []TimesheetEntry
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 3)
		if len(parts) != 3 {
			entries = append(entries, TimesheetEntry{Note: line})
			continue
		}
		date, err := ParseDate(parts[0])
		if err != nil {
			entries = append(entries, TimesheetEntry{Note: line})
			continue
		}
		hours, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
		if err != nil || hours.IsNegative() {
			entries = append(entries, TimesheetEntry{Note: line})
			continue
		}
		entries = append(entries, TimesheetEntry{
			Date:  FormatDate(date),
			Hours: &hours,
			Note:  strings.TrimSpace(parts[2]),
		})
	}
	return entries
}

func TotalHours(entries []TimesheetEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.Hours != nil {
			total = total.Add(*e.Hours)
		}
	}
	return total
}
