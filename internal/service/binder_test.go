package service

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesses-code-adventures/invoice/internal/models"
	"github.com/jesses-code-adventures/invoice/internal/utils"
)

func invoiceRecord() *InvoiceRecord {
	return &InvoiceRecord{
		Invoice: &models.Invoice{
			ID:           7,
			NumberPrefix: utils.ToPtr("AC-"),
			NumberSeq:    utils.ToPtr(int64(1)),
			Date:         day(2024, 6, 1),
			Particulars:  "Website redesign",
			Status:       models.InvoiceGenerated,
			Tags:         []string{"web", "q2"},
			Items: []*models.InvoiceItem{
				{Position: 1, Description: "Design", Quantity: decimal.RequireFromString("2.5"), UnitPrice: decimal.RequireFromString("100")},
				{Position: 2, Description: "Hosting", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("49.99")},
			},
		},
		Client: &models.Client{
			Name:        "Beta",
			BillingUnit: "INR",
			Address:     "4 Long Rd",
			PeriodDay:   1,
		},
		Account: &models.Account{Name: "studio", PAN: utils.ToPtr("ABCDE1234F")},
	}
}

func TestBindInvoiceDefaults(t *testing.T) {
	b, err := NewBinder().Bind(&models.Template{Name: "basic"}, invoiceRecord())
	require.NoError(t, err)

	assert.Equal(t, models.KindInvoice, b.Kind)
	assert.Equal(t, "Invoice AC-1", b.Title)
	assert.Equal(t, DefaultInvoiceSlots, b.Slots)
	assert.Equal(t, "AC-1", b.Field("number"))
	assert.Equal(t, "01/Jun/2024", b.Field("date"))
	assert.Equal(t, "web, q2", b.Field("tags"))
	assert.Equal(t, "ABCDE1234F", b.Field("account.pan"))
	assert.Equal(t, "", b.Field("account.service_tax"))
	assert.Equal(t, "01/Jun/2024", b.Field("period.start"))
	assert.Equal(t, "30/Jun/2024", b.Field("period.end"))
	assert.Equal(t, "INR 299.99", b.Field("total"))

	require.Len(t, b.Table.Rows, 2)
	assert.Equal(t, []string{"1", "Design", "2.5", "100.00", "250.00"}, b.Table.Rows[0])
	assert.Equal(t, 1, b.Table.Wide)
}

func TestBindUsesTemplateSlots(t *testing.T) {
	tmpl := &models.Template{Slots: []string{"number", "client.name", "purchase_order"}}
	b, err := NewBinder().Bind(tmpl, invoiceRecord())
	require.NoError(t, err)

	assert.Equal(t, tmpl.Slots, b.Slots)
	assert.Len(t, b.Fields, 3)
	assert.Equal(t, "Beta", b.Field("client.name"))
	value, ok := b.Fields["purchase_order"]
	assert.True(t, ok)
	assert.Equal(t, "", value)
}

func TestBindIncompleteInvoice(t *testing.T) {
	tests := []struct {
		field  string
		breaks func(r *InvoiceRecord)
	}{
		{"client.address", func(r *InvoiceRecord) { r.Client.Address = "  " }},
		{"number", func(r *InvoiceRecord) { r.Invoice.NumberSeq = nil }},
		{"client.billing_unit", func(r *InvoiceRecord) { r.Client.BillingUnit = "" }},
		{"particulars", func(r *InvoiceRecord) { r.Invoice.Particulars = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			rec := invoiceRecord()
			tt.breaks(rec)

			_, err := NewBinder().Bind(nil, rec)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrIncompleteRecord)

			var incomplete *models.IncompleteRecordError
			require.True(t, errors.As(err, &incomplete))
			assert.Equal(t, tt.field, incomplete.Field)
			assert.Equal(t, int64(7), incomplete.ID)
		})
	}
}

func TestBindTimesheet(t *testing.T) {
	rec := &TimesheetRecord{
		Timesheet: &models.Timesheet{
			ID:          3,
			Date:        day(2024, 6, 1),
			Employee:    "Kim",
			Description: "June support",
			Content:     "01/Jun/2024 | 2.5 | triage\n\n02/Jun/2024 | 3 | deploy\ncalled client about access\n",
		},
		Client:  &models.Client{Name: "Acme", PeriodDay: 15},
		Account: &models.Account{Name: "studio"},
	}

	b, err := NewBinder().Bind(nil, rec)
	require.NoError(t, err)

	assert.Equal(t, "Timesheet 3", b.Title)
	assert.Equal(t, "5.50", b.Field("total_hours"))
	assert.Equal(t, "15/May/2024", b.Field("period.start"))
	assert.Equal(t, "14/Jun/2024", b.Field("period.end"))
	require.Len(t, b.Table.Rows, 3)
	assert.Equal(t, []string{"02/Jun/2024", "3.00", "deploy"}, b.Table.Rows[1])
	assert.Equal(t, []string{"", "", "called client about access"}, b.Table.Rows[2])
}

func TestBindIncompleteTimesheet(t *testing.T) {
	rec := &TimesheetRecord{
		Timesheet: &models.Timesheet{ID: 4, Date: day(2024, 6, 1), Description: "June"},
		Client:    &models.Client{Name: "Acme", PeriodDay: 1},
	}
	_, err := NewBinder().Bind(nil, rec)

	var incomplete *models.IncompleteRecordError
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, "employee", incomplete.Field)
}

func TestParseTimesheetContent(t *testing.T) {
	entries := ParseTimesheetContent("2024-06-03 | 1.25 | review\nbad | x | y\n03/Jun/2024 | -1 | refund")
	require.Len(t, entries, 3)

	assert.Equal(t, "03/Jun/2024", entries[0].Date)
	assert.True(t, entries[0].Hours.Equal(decimal.RequireFromString("1.25")))
	assert.Nil(t, entries[1].Hours)
	assert.Equal(t, "bad | x | y", entries[1].Note)
	assert.Nil(t, entries[2].Hours)
	assert.True(t, TotalHours(entries).Equal(decimal.RequireFromString("1.25")))
}
