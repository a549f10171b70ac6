package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesses-code-adventures/invoice/internal/config"
	"github.com/jesses-code-adventures/invoice/internal/models"
	"github.com/jesses-code-adventures/invoice/internal/utils"
)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	cfg := &config.Config{
		DatabaseURL:    filepath.Join(t.TempDir(), "test.db"),
		DatabaseDriver: "sqlite3",
	}
	store, err := NewDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

type fixture struct {
	account  *models.Account
	client   *models.Client
	template *models.Template
}

func seed(t *testing.T, store *SQLiteDB) fixture {
	t.Helper()
	ctx := context.Background()

	account, err := store.CreateAccount(ctx, &models.Account{
		Name:        "studio",
		Signatory:   "J. Doe",
		Address:     "1 Main St",
		Phone:       "555-0100",
		Email:       "billing@studio.test",
		BankDetails: "ACME BANK 0001",
		Prefix:      utils.ToPtr("AC-"),
	})
	require.NoError(t, err)

	client, err := store.CreateClient(ctx, &models.Client{
		Name:        "Acme",
		AccountID:   account.ID,
		BillingUnit: "INR",
		Address:     "2 Side St",
		PeriodDay:   1,
	})
	require.NoError(t, err)

	template, err := store.CreateTemplate(ctx, &models.Template{Name: "basic"})
	require.NoError(t, err)

	return fixture{account: account, client: client, template: template}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewDBMigrates(t *testing.T) {
	store := newTestDB(t)

	version, dirty, err := store.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	// Re-running migrations on an up-to-date schema is a no-op.
	require.NoError(t, Migrate(store.GetConnection()))
}

func TestAccountCRUD(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	f := seed(t, store)

	got, err := store.GetAccountByName(ctx, "studio")
	require.NoError(t, err)
	assert.Equal(t, f.account.ID, got.ID)
	assert.Equal(t, "AC-", got.EffectivePrefix("INV-"))
	assert.Nil(t, got.PAN)

	updated, err := store.UpdateAccount(ctx, got.ID, &AccountUpdateDetails{PAN: utils.ToPtr("ABCDE1234F")})
	require.NoError(t, err)
	assert.Equal(t, "ABCDE1234F", utils.FromPtr(updated.PAN))
	assert.Equal(t, "J. Doe", updated.Signatory)

	_, err = store.CreateAccount(ctx, &models.Account{Name: "studio"})
	assert.ErrorIs(t, err, models.ErrAlreadyExists)

	_, err = store.CreateAccount(ctx, &models.Account{Name: "other", Prefix: utils.ToPtr("AC-")})
	assert.ErrorIs(t, err, models.ErrAlreadyExists)

	err = store.DeleteAccount(ctx, got.ID)
	assert.ErrorIs(t, err, models.ErrInUse)

	_, err = store.GetAccountByID(ctx, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestClientLookupCarriesAccountName(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	f := seed(t, store)

	client, err := store.GetClientByName(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, "studio", client.AccountName)
	assert.Equal(t, 1, client.PeriodDay)

	updated, err := store.UpdateClient(ctx, f.client.ID, &ClientUpdateDetails{PeriodDay: utils.ToPtr(15)})
	require.NoError(t, err)
	assert.Equal(t, 15, updated.PeriodDay)
	assert.Equal(t, "INR", updated.BillingUnit)
}

func TestTemplateSlotsAndDeleteGuard(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	f := seed(t, store)

	tmpl, err := store.CreateTemplate(ctx, &models.Template{
		Name:       "custom",
		Slots:      []string{"number", "total"},
		Letterhead: []byte{0x89, 'P', 'N', 'G'},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"number", "total"}, tmpl.Slots)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, tmpl.Letterhead)

	basic, err := store.GetTemplate(ctx, "basic")
	require.NoError(t, err)
	assert.Empty(t, basic.Slots)
	assert.Nil(t, basic.Letterhead)

	_, err = store.CreateInvoice(ctx, &models.Invoice{
		ClientID:    f.client.ID,
		TemplateID:  f.template.ID,
		Date:        date(2024, 3, 5),
		Particulars: "consulting",
	})
	require.NoError(t, err)

	err = store.DeleteTemplate(ctx, f.template.ID)
	assert.ErrorIs(t, err, models.ErrTemplateInUse)

	require.NoError(t, store.DeleteTemplate(ctx, tmpl.ID))
	_, err = store.GetTemplate(ctx, "custom")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSelectTimesheetsOrderAndFilters(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	f := seed(t, store)

	add := func(d time.Time, employee string) int64 {
		ts, err := store.CreateTimesheet(ctx, &models.Timesheet{
			Date:        d,
			Employee:    employee,
			ClientID:    f.client.ID,
			Description: "work",
			TemplateID:  f.template.ID,
		})
		require.NoError(t, err)
		return ts.ID
	}
	late := add(date(2024, 3, 20), "alice")
	early := add(date(2024, 3, 2), "bob")
	sameDay := add(date(2024, 3, 20), "bob")
	add(date(2024, 4, 2), "alice")

	got, err := store.SelectTimesheets(ctx, TimesheetFilter{From: date(2024, 3, 1), To: date(2024, 3, 31)})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int64{early, late, sameDay}, []int64{got[0].ID, got[1].ID, got[2].ID})

	got, err = store.SelectTimesheets(ctx, TimesheetFilter{From: date(2024, 3, 1), To: date(2024, 3, 31), Employee: utils.ToPtr("bob")})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, early, got[0].ID)

	got, err = store.SelectTimesheets(ctx, TimesheetFilter{From: date(2024, 3, 1), To: date(2024, 3, 31), Client: "Nobody"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelectInvoicesTagsAndCancelled(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	f := seed(t, store)

	create := func(d time.Time, tags ...string) *models.Invoice {
		inv, err := store.CreateInvoice(ctx, &models.Invoice{
			ClientID:    f.client.ID,
			TemplateID:  f.template.ID,
			Date:        d,
			Particulars: "retainer",
			Tags:        tags,
		})
		require.NoError(t, err)
		return inv
	}
	a := create(date(2024, 3, 1), "retainer", "q1")
	b := create(date(2024, 3, 2))
	c := create(date(2024, 3, 3), "q1")
	require.NoError(t, store.SetInvoiceStatus(ctx, c.ID, models.InvoiceCancelled))

	assert.Equal(t, []string{"q1", "retainer"}, a.Tags)
	assert.Equal(t, models.InvoiceDraft, b.Status)

	window := InvoiceFilter{From: date(2024, 3, 1), To: date(2024, 3, 31)}

	got, err := store.SelectInvoices(ctx, window)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, b.ID}, invoiceIDs(got))

	window.IncludeCancelled = true
	got, err = store.SelectInvoices(ctx, window)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, b.ID, c.ID}, invoiceIDs(got))

	window.Tags = []string{"q1"}
	got, err = store.SelectInvoices(ctx, window)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, c.ID}, invoiceIDs(got))
}

func TestAssignInvoiceNumberSequencesPerPrefix(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	f := seed(t, store)

	var numbers []int64
	for i := 0; i < 3; i++ {
		inv, err := store.CreateInvoice(ctx, &models.Invoice{
			ClientID:    f.client.ID,
			TemplateID:  f.template.ID,
			Date:        date(2024, 3, 1+i),
			Particulars: "work",
		})
		require.NoError(t, err)

		err = store.WithTx(ctx, func(tx Store) error {
			seq, err := tx.AssignInvoiceNumber(ctx, inv.ID, "AC-")
			numbers = append(numbers, seq)
			return err
		})
		require.NoError(t, err)
	}
	assert.Equal(t, []int64{1, 2, 3}, numbers)

	other, err := store.CreateInvoice(ctx, &models.Invoice{
		ClientID:    f.client.ID,
		TemplateID:  f.template.ID,
		Date:        date(2024, 3, 9),
		Particulars: "work",
	})
	require.NoError(t, err)
	seq, err := store.AssignInvoiceNumber(ctx, other.ID, "ZZ-")
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	// A second assignment to the same invoice is refused.
	_, err = store.AssignInvoiceNumber(ctx, other.ID, "ZZ-")
	assert.ErrorIs(t, err, models.ErrNumberingConflict)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	f := seed(t, store)

	inv, err := store.CreateInvoice(ctx, &models.Invoice{
		ClientID:    f.client.ID,
		TemplateID:  f.template.ID,
		Date:        date(2024, 3, 1),
		Particulars: "work",
	})
	require.NoError(t, err)

	boom := errors.New("render exploded")
	err = store.WithTx(ctx, func(tx Store) error {
		if _, err := tx.AssignInvoiceNumber(ctx, inv.ID, "AC-"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.GetInvoiceByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.False(t, got.Numbered())
}

func TestDeleteInvoiceRefusesIssuedNumbers(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	f := seed(t, store)

	numbered, err := store.CreateInvoice(ctx, &models.Invoice{ClientID: f.client.ID, TemplateID: f.template.ID, Date: date(2024, 3, 1), Particulars: "a"})
	require.NoError(t, err)
	draft, err := store.CreateInvoice(ctx, &models.Invoice{ClientID: f.client.ID, TemplateID: f.template.ID, Date: date(2024, 3, 2), Particulars: "b"})
	require.NoError(t, err)

	_, err = store.AssignInvoiceNumber(ctx, numbered.ID, "AC-")
	require.NoError(t, err)

	assert.ErrorIs(t, store.DeleteInvoice(ctx, numbered.ID), models.ErrNumberIssued)
	require.NoError(t, store.DeleteInvoice(ctx, draft.ID))
	assert.ErrorIs(t, store.DeleteInvoice(ctx, draft.ID), models.ErrNotFound)
}

func TestInvoiceItemsKeepPositionOrder(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	f := seed(t, store)

	inv, err := store.CreateInvoice(ctx, &models.Invoice{
		ClientID:    f.client.ID,
		TemplateID:  f.template.ID,
		Date:        date(2024, 3, 1),
		Particulars: "work",
		Items: []*models.InvoiceItem{
			{Description: "design", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("100.50")},
		},
	})
	require.NoError(t, err)

	_, err = store.AddInvoiceItem(ctx, inv.ID, "build", decimal.RequireFromString("1.5"), decimal.NewFromInt(80))
	require.NoError(t, err)

	got, err := store.GetInvoiceByID(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, 1, got.Items[0].Position)
	assert.Equal(t, "build", got.Items[1].Description)
	assert.True(t, got.Items[0].Amount().Equal(decimal.RequireFromString("201")))

	require.NoError(t, store.DeleteInvoiceItem(ctx, inv.ID, 1))
	assert.ErrorIs(t, store.DeleteInvoiceItem(ctx, inv.ID, 1), models.ErrNotFound)
}

func TestCounts(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	f := seed(t, store)

	ts, err := store.CreateTimesheet(ctx, &models.Timesheet{Date: date(2024, 3, 1), Employee: "a", ClientID: f.client.ID, Description: "d", TemplateID: f.template.ID})
	require.NoError(t, err)
	require.NoError(t, store.MarkTimesheetGenerated(ctx, ts.ID, "/tmp/timesheet-1.pdf"))
	_, err = store.CreateInvoice(ctx, &models.Invoice{ClientID: f.client.ID, TemplateID: f.template.ID, Date: date(2024, 3, 1), Particulars: "p"})
	require.NoError(t, err)

	counts, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Accounts)
	assert.Equal(t, int64(1), counts.Clients)
	assert.Equal(t, int64(1), counts.Timesheets)
	assert.Equal(t, int64(1), counts.TimesheetsGenerated)
	assert.Equal(t, int64(1), counts.Invoices[models.InvoiceDraft])
}

func invoiceIDs(invoices []*models.Invoice) []int64 {
	ids := make([]int64, len(invoices))
	for i, inv := range invoices {
		ids[i] = inv.ID
	}
	return ids
}
