package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	_ "github.com/tursodatabase/libsql-client-go/libsql"

	"github.com/jesses-code-adventures/invoice/internal/config"
	"github.com/jesses-code-adventures/invoice/internal/db"
	"github.com/jesses-code-adventures/invoice/internal/models"
)

const (
	DateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"

	sqliteParams = "_txlock=immediate&_busy_timeout=5000&_foreign_keys=on"
)

type SQLiteDB struct {
	conn    *sql.DB
	queries *db.Queries
	tx      *sql.Tx
}

func NewDB(cfg *config.Config) (*SQLiteDB, error) {
	conn, err := sql.Open(cfg.DatabaseDriver, dataSourceName(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}
	s := SQLiteDB{
		conn:    conn,
		queries: db.New(conn),
	}
	return &s, nil
}

// dataSourceName opens local sqlite files with immediate write transactions so
// concurrent writers serialise at BEGIN rather than failing at COMMIT.
func dataSourceName(cfg *config.Config) string {
	if cfg.DatabaseDriver != "sqlite3" {
		return cfg.DatabaseURL
	}
	sep := "?"
	if strings.Contains(cfg.DatabaseURL, "?") {
		sep = "&"
	}
	return cfg.DatabaseURL + sep + sqliteParams
}

func (s *SQLiteDB) Close() error {
	return s.conn.Close()
}

func (s *SQLiteDB) GetConnection() *sql.DB {
	return s.conn
}

func (s *SQLiteDB) SchemaVersion() (uint, bool, error) {
	return schemaVersion(s.conn)
}

func (s *SQLiteDB) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return txError("begin transaction", err)
	}
	txDB := &SQLiteDB{
		conn:    s.conn,
		queries: s.queries.WithTx(tx),
		tx:      tx,
	}

	if err := fn(txDB); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		if isBusy(err) && !errors.Is(err, models.ErrNumberingConflict) {
			return fmt.Errorf("%w: %w", models.ErrNumberingConflict, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return txError("commit transaction", err)
	}
	return nil
}

func (s *SQLiteDB) atomically(ctx context.Context, fn func(tx *SQLiteDB) error) error {
	return s.WithTx(ctx, func(tx Store) error {
		return fn(tx.(*SQLiteDB))
	})
}

func txError(op string, err error) error {
	if isBusy(err) {
		return fmt.Errorf("failed to %s: %w: %v", op, models.ErrNumberingConflict, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return err != nil && strings.Contains(err.Error(), "database is locked")
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf(format+": %w", append(args, models.ErrNotFound)...)
	}
	return fmt.Errorf("failed to get "+format+": %w", append(args, err)...)
}

func alreadyExists(err error, format string, args ...interface{}) error {
	if isUniqueViolation(err) {
		return fmt.Errorf(format+": %w", append(args, models.ErrAlreadyExists)...)
	}
	return fmt.Errorf("failed to create "+format+": %w", append(args, err)...)
}

// Accounts

func (s *SQLiteDB) CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	row, err := s.queries.CreateAccount(ctx, db.CreateAccountParams{
		Name:        account.Name,
		Signatory:   account.Signatory,
		Address:     account.Address,
		Phone:       account.Phone,
		Email:       account.Email,
		Pan:         ptrToNullString(account.PAN),
		ServiceTax:  ptrToNullString(account.ServiceTax),
		BankDetails: account.BankDetails,
		Prefix:      ptrToNullString(account.Prefix),
	})
	if err != nil {
		return nil, alreadyExists(err, "account %q", account.Name)
	}
	return convertDBAccountToModel(row), nil
}

func (s *SQLiteDB) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	row, err := s.queries.GetAccountByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "account %d", id)
	}
	return convertDBAccountToModel(row), nil
}

func (s *SQLiteDB) GetAccountByName(ctx context.Context, name string) (*models.Account, error) {
	row, err := s.queries.GetAccountByName(ctx, name)
	if err != nil {
		return nil, notFound(err, "account %q", name)
	}
	return convertDBAccountToModel(row), nil
}

func (s *SQLiteDB) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	rows, err := s.queries.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	result := make([]*models.Account, len(rows))
	for i, row := range rows {
		result[i] = convertDBAccountToModel(row)
	}
	return result, nil
}

func (s *SQLiteDB) UpdateAccount(ctx context.Context, id int64, updates *AccountUpdateDetails) (*models.Account, error) {
	row, err := s.queries.UpdateAccount(ctx, db.UpdateAccountParams{
		ID:          id,
		Signatory:   ptrToNullString(updates.Signatory),
		Address:     ptrToNullString(updates.Address),
		Phone:       ptrToNullString(updates.Phone),
		Email:       ptrToNullString(updates.Email),
		Pan:         ptrToNullString(updates.PAN),
		ServiceTax:  ptrToNullString(updates.ServiceTax),
		BankDetails: ptrToNullString(updates.BankDetails),
		Prefix:      ptrToNullString(updates.Prefix),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("account %d prefix: %w", id, models.ErrAlreadyExists)
		}
		return nil, notFound(err, "account %d", id)
	}
	return convertDBAccountToModel(row), nil
}

func (s *SQLiteDB) DeleteAccount(ctx context.Context, id int64) error {
	clients, err := s.queries.CountAccountClients(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count account clients: %w", err)
	}
	if clients > 0 {
		return fmt.Errorf("account %d has %d clients: %w", id, clients, models.ErrInUse)
	}
	n, err := s.queries.DeleteAccount(ctx, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("account %d: %w", id, models.ErrInUse)
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("account %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// Clients

func (s *SQLiteDB) CreateClient(ctx context.Context, client *models.Client) (*models.Client, error) {
	id, err := s.queries.CreateClient(ctx, db.CreateClientParams{
		Name:        client.Name,
		AccountID:   client.AccountID,
		BillingUnit: client.BillingUnit,
		Address:     client.Address,
		PeriodDay:   int64(client.PeriodDay),
	})
	if err != nil {
		return nil, alreadyExists(err, "client %q", client.Name)
	}
	return s.GetClientByID(ctx, id)
}

func (s *SQLiteDB) GetClientByID(ctx context.Context, id int64) (*models.Client, error) {
	row, err := s.queries.GetClientByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "client %d", id)
	}
	return convertDBClientToModel(row), nil
}

func (s *SQLiteDB) GetClientByName(ctx context.Context, name string) (*models.Client, error) {
	row, err := s.queries.GetClientByName(ctx, name)
	if err != nil {
		return nil, notFound(err, "client %q", name)
	}
	return convertDBClientToModel(row), nil
}

func (s *SQLiteDB) ListClients(ctx context.Context) ([]*models.Client, error) {
	rows, err := s.queries.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	result := make([]*models.Client, len(rows))
	for i, row := range rows {
		result[i] = convertDBClientToModel(row)
	}
	return result, nil
}

func (s *SQLiteDB) UpdateClient(ctx context.Context, id int64, updates *ClientUpdateDetails) (*models.Client, error) {
	var periodDay sql.NullInt64
	if updates.PeriodDay != nil {
		periodDay = sql.NullInt64{Int64: int64(*updates.PeriodDay), Valid: true}
	}
	err := s.queries.UpdateClient(ctx, db.UpdateClientParams{
		ID:          id,
		AccountID:   ptrToNullInt64(updates.AccountID),
		BillingUnit: ptrToNullString(updates.BillingUnit),
		Address:     ptrToNullString(updates.Address),
		PeriodDay:   periodDay,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return s.GetClientByID(ctx, id)
}

func (s *SQLiteDB) DeleteClient(ctx context.Context, id int64) error {
	records, err := s.queries.CountClientRecords(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count client records: %w", err)
	}
	if records > 0 {
		return fmt.Errorf("client %d has %d invoices and timesheets: %w", id, records, models.ErrInUse)
	}
	n, err := s.queries.DeleteClient(ctx, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("client %d: %w", id, models.ErrInUse)
		}
		return fmt.Errorf("failed to delete client: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("client %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// Templates

func (s *SQLiteDB) CreateTemplate(ctx context.Context, template *models.Template) (*models.Template, error) {
	slots, err := encodeSlots(template.Slots)
	if err != nil {
		return nil, err
	}
	row, err := s.queries.CreateTemplate(ctx, db.CreateTemplateParams{
		Name:        template.Name,
		Description: template.Description,
		Letterhead:  template.Letterhead,
		Slots:       slots,
	})
	if err != nil {
		return nil, alreadyExists(err, "template %q", template.Name)
	}
	return convertDBTemplateToModel(row)
}

func (s *SQLiteDB) GetTemplateByID(ctx context.Context, id int64) (*models.Template, error) {
	row, err := s.queries.GetTemplateByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "template %d", id)
	}
	return convertDBTemplateToModel(row)
}

func (s *SQLiteDB) GetTemplate(ctx context.Context, name string) (*models.Template, error) {
	row, err := s.queries.GetTemplateByName(ctx, name)
	if err != nil {
		return nil, notFound(err, "template %q", name)
	}
	return convertDBTemplateToModel(row)
}

func (s *SQLiteDB) ListTemplates(ctx context.Context) ([]*models.Template, error) {
	rows, err := s.queries.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	result := make([]*models.Template, len(rows))
	for i, row := range rows {
		t, err := convertDBTemplateToModel(row)
		if err != nil {
			return nil, err
		}
		result[i] = t
	}
	return result, nil
}

func (s *SQLiteDB) UpdateTemplate(ctx context.Context, id int64, updates *TemplateUpdateDetails) (*models.Template, error) {
	var slots sql.NullString
	if updates.Slots != nil {
		encoded, err := encodeSlots(updates.Slots)
		if err != nil {
			return nil, err
		}
		slots = sql.NullString{String: encoded, Valid: true}
	}
	row, err := s.queries.UpdateTemplate(ctx, db.UpdateTemplateParams{
		ID:          id,
		Description: ptrToNullString(updates.Description),
		Letterhead:  updates.Letterhead,
		Slots:       slots,
	})
	if err != nil {
		return nil, notFound(err, "template %d", id)
	}
	return convertDBTemplateToModel(row)
}

func (s *SQLiteDB) DeleteTemplate(ctx context.Context, id int64) error {
	refs, err := s.queries.CountTemplateReferences(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count template references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("template %d is used by %d records: %w", id, refs, models.ErrTemplateInUse)
	}
	n, err := s.queries.DeleteTemplate(ctx, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("template %d: %w", id, models.ErrTemplateInUse)
		}
		return fmt.Errorf("failed to delete template: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("template %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// Tags

func (s *SQLiteDB) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	row, err := s.queries.CreateTag(ctx, name)
	if err != nil {
		return nil, alreadyExists(err, "tag %q", name)
	}
	return convertDBTagToModel(row), nil
}

func (s *SQLiteDB) ListTags(ctx context.Context) ([]*models.Tag, error) {
	rows, err := s.queries.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	result := make([]*models.Tag, len(rows))
	for i, row := range rows {
		result[i] = convertDBTagToModel(row)
	}
	return result, nil
}

func (s *SQLiteDB) DeleteTag(ctx context.Context, name string) error {
	n, err := s.queries.DeleteTag(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("tag %q: %w", name, models.ErrNotFound)
	}
	return nil
}

func (s *SQLiteDB) setInvoiceTags(ctx context.Context, invoiceID int64, tags []string) error {
	if err := s.queries.ClearInvoiceTags(ctx, invoiceID); err != nil {
		return fmt.Errorf("failed to clear invoice tags: %w", err)
	}
	for _, name := range tags {
		tag, err := s.queries.GetTagByName(ctx, name)
		if errors.Is(err, sql.ErrNoRows) {
			tag, err = s.queries.CreateTag(ctx, name)
		}
		if err != nil {
			return fmt.Errorf("failed to resolve tag %q: %w", name, err)
		}
		if err := s.queries.AddInvoiceTag(ctx, db.AddInvoiceTagParams{InvoiceID: invoiceID, TagID: tag.ID}); err != nil {
			return fmt.Errorf("failed to tag invoice: %w", err)
		}
	}
	return nil
}

// Timesheets

func (s *SQLiteDB) CreateTimesheet(ctx context.Context, timesheet *models.Timesheet) (*models.Timesheet, error) {
	id, err := s.queries.CreateTimesheet(ctx, db.CreateTimesheetParams{
		Date:        timesheet.Date.Format(DateLayout),
		Employee:    timesheet.Employee,
		ClientID:    timesheet.ClientID,
		Description: timesheet.Description,
		TemplateID:  timesheet.TemplateID,
		Content:     timesheet.Content,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create timesheet: %w", err)
	}
	return s.GetTimesheetByID(ctx, id)
}

func (s *SQLiteDB) GetTimesheetByID(ctx context.Context, id int64) (*models.Timesheet, error) {
	row, err := s.queries.GetTimesheetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "timesheet %d", id)
	}
	return convertDBTimesheetToModel(row)
}

func (s *SQLiteDB) SelectTimesheets(ctx context.Context, filter TimesheetFilter) ([]*models.Timesheet, error) {
	rows, err := s.queries.SelectTimesheets(ctx, db.SelectTimesheetsParams{
		FromDate:   filter.From.Format(DateLayout),
		ToDate:     filter.To.Format(DateLayout),
		ClientName: filter.Client,
		Employee:   ptrToNullString(filter.Employee),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to select timesheets: %w", err)
	}
	result := make([]*models.Timesheet, len(rows))
	for i, row := range rows {
		t, err := convertDBTimesheetToModel(row)
		if err != nil {
			return nil, err
		}
		result[i] = t
	}
	return result, nil
}

func (s *SQLiteDB) UpdateTimesheet(ctx context.Context, id int64, updates *TimesheetUpdateDetails) (*models.Timesheet, error) {
	err := s.queries.UpdateTimesheet(ctx, db.UpdateTimesheetParams{
		ID:          id,
		Date:        ptrToNullDate(updates.Date),
		Employee:    ptrToNullString(updates.Employee),
		ClientID:    ptrToNullInt64(updates.ClientID),
		Description: ptrToNullString(updates.Description),
		TemplateID:  ptrToNullInt64(updates.TemplateID),
		Content:     ptrToNullString(updates.Content),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update timesheet: %w", err)
	}
	return s.GetTimesheetByID(ctx, id)
}

func (s *SQLiteDB) MarkTimesheetGenerated(ctx context.Context, id int64, path string) error {
	if err := s.queries.MarkTimesheetGenerated(ctx, db.MarkTimesheetGeneratedParams{GeneratedPath: path, ID: id}); err != nil {
		return fmt.Errorf("failed to mark timesheet generated: %w", err)
	}
	return nil
}

func (s *SQLiteDB) DeleteTimesheet(ctx context.Context, id int64) error {
	n, err := s.queries.DeleteTimesheet(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete timesheet: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("timesheet %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// Invoices

func (s *SQLiteDB) CreateInvoice(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	var created *models.Invoice
	err := s.atomically(ctx, func(tx *SQLiteDB) error {
		id, err := tx.queries.CreateInvoice(ctx, db.CreateInvoiceParams{
			ClientID:    invoice.ClientID,
			TemplateID:  invoice.TemplateID,
			Date:        invoice.Date.Format(DateLayout),
			Particulars: invoice.Particulars,
		})
		if err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		if err := tx.setInvoiceTags(ctx, id, invoice.Tags); err != nil {
			return err
		}
		for _, item := range invoice.Items {
			if _, err := tx.AddInvoiceItem(ctx, id, item.Description, item.Quantity, item.UnitPrice); err != nil {
				return err
			}
		}
		created, err = tx.GetInvoiceByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *SQLiteDB) GetInvoiceByID(ctx context.Context, id int64) (*models.Invoice, error) {
	row, err := s.queries.GetInvoiceByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "invoice %d", id)
	}
	return s.hydrateInvoice(ctx, row)
}

func (s *SQLiteDB) SelectInvoices(ctx context.Context, filter InvoiceFilter) ([]*models.Invoice, error) {
	tags := filter.Tags
	if tags == nil {
		tags = []string{}
	}
	encodedTags, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tag filter: %w", err)
	}

	rows, err := s.queries.SelectInvoices(ctx, db.SelectInvoicesParams{
		FromDate:         filter.From.Format(DateLayout),
		ToDate:           filter.To.Format(DateLayout),
		ClientName:       filter.Client,
		IncludeCancelled: filter.IncludeCancelled,
		Tags:             string(encodedTags),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to select invoices: %w", err)
	}
	return s.hydrateInvoices(ctx, rows)
}

func (s *SQLiteDB) ListInvoicesByStatus(ctx context.Context, status models.InvoiceStatus) ([]*models.Invoice, error) {
	rows, err := s.queries.ListInvoicesByStatus(ctx, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return s.hydrateInvoices(ctx, rows)
}

func (s *SQLiteDB) UpdateInvoice(ctx context.Context, id int64, updates *InvoiceUpdateDetails) (*models.Invoice, error) {
	var updated *models.Invoice
	err := s.atomically(ctx, func(tx *SQLiteDB) error {
		if _, err := tx.queries.GetInvoiceByID(ctx, id); err != nil {
			return notFound(err, "invoice %d", id)
		}
		err := tx.queries.UpdateInvoice(ctx, db.UpdateInvoiceParams{
			ID:          id,
			ClientID:    ptrToNullInt64(updates.ClientID),
			TemplateID:  ptrToNullInt64(updates.TemplateID),
			Date:        ptrToNullDate(updates.Date),
			Particulars: ptrToNullString(updates.Particulars),
		})
		if err != nil {
			return fmt.Errorf("failed to update invoice: %w", err)
		}
		if updates.Tags != nil {
			if err := tx.setInvoiceTags(ctx, id, updates.Tags); err != nil {
				return err
			}
		}
		updated, err = tx.GetInvoiceByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *SQLiteDB) SetInvoiceStatus(ctx context.Context, id int64, status models.InvoiceStatus) error {
	if err := s.queries.SetInvoiceStatus(ctx, db.SetInvoiceStatusParams{Status: string(status), ID: id}); err != nil {
		return fmt.Errorf("failed to set invoice status: %w", err)
	}
	return nil
}

// AssignInvoiceNumber issues the next sequence under prefix to an unnumbered
// invoice. It must run inside the transaction that marks the invoice generated.
func (s *SQLiteDB) AssignInvoiceNumber(ctx context.Context, id int64, prefix string) (int64, error) {
	next, err := s.queries.NextInvoiceSeq(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("failed to compute next invoice number: %w", err)
	}
	n, err := s.queries.AssignInvoiceNumber(ctx, db.AssignInvoiceNumberParams{
		NumberPrefix: prefix,
		NumberSeq:    next,
		ID:           id,
	})
	if err != nil {
		if isUniqueViolation(err) || isBusy(err) {
			return 0, fmt.Errorf("invoice %d number %s: %w", id, models.FormatNumber(prefix, next), models.ErrNumberingConflict)
		}
		return 0, fmt.Errorf("failed to assign invoice number: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("invoice %d was numbered concurrently: %w", id, models.ErrNumberingConflict)
	}
	return next, nil
}

func (s *SQLiteDB) MarkInvoiceGenerated(ctx context.Context, id int64, path string) error {
	if err := s.queries.MarkInvoiceGenerated(ctx, db.MarkInvoiceGeneratedParams{GeneratedPath: path, ID: id}); err != nil {
		return fmt.Errorf("failed to mark invoice generated: %w", err)
	}
	return nil
}

func (s *SQLiteDB) DeleteInvoice(ctx context.Context, id int64) error {
	return s.atomically(ctx, func(tx *SQLiteDB) error {
		row, err := tx.queries.GetInvoiceByID(ctx, id)
		if err != nil {
			return notFound(err, "invoice %d", id)
		}
		if row.NumberSeq.Valid {
			return fmt.Errorf("invoice %d: %w", id, models.ErrNumberIssued)
		}
		n, err := tx.queries.DeleteInvoice(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to delete invoice: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("invoice %d: %w", id, models.ErrNumberIssued)
		}
		return nil
	})
}

func (s *SQLiteDB) AddInvoiceItem(ctx context.Context, invoiceID int64, description string, quantity, unitPrice decimal.Decimal) (*models.InvoiceItem, error) {
	row, err := s.queries.CreateInvoiceItem(ctx, db.CreateInvoiceItemParams{
		InvoiceID:   invoiceID,
		Description: description,
		Quantity:    quantity.String(),
		UnitPrice:   unitPrice.String(),
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("invoice %d: %w", invoiceID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to add invoice item: %w", err)
	}
	return convertDBInvoiceItemToModel(row)
}

func (s *SQLiteDB) DeleteInvoiceItem(ctx context.Context, invoiceID int64, position int) error {
	n, err := s.queries.DeleteInvoiceItem(ctx, db.DeleteInvoiceItemParams{InvoiceID: invoiceID, Position: int64(position)})
	if err != nil {
		return fmt.Errorf("failed to delete invoice item: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("invoice %d item %d: %w", invoiceID, position, models.ErrNotFound)
	}
	return nil
}

func (s *SQLiteDB) hydrateInvoices(ctx context.Context, rows []db.InvoiceRow) ([]*models.Invoice, error) {
	result := make([]*models.Invoice, len(rows))
	for i, row := range rows {
		inv, err := s.hydrateInvoice(ctx, row)
		if err != nil {
			return nil, err
		}
		result[i] = inv
	}
	return result, nil
}

func (s *SQLiteDB) hydrateInvoice(ctx context.Context, row db.InvoiceRow) (*models.Invoice, error) {
	inv, err := convertDBInvoiceToModel(row)
	if err != nil {
		return nil, err
	}

	tags, err := s.queries.ListInvoiceTags(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoice tags: %w", err)
	}
	inv.Tags = tags

	items, err := s.queries.ListInvoiceItems(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoice items: %w", err)
	}
	for _, item := range items {
		it, err := convertDBInvoiceItemToModel(item)
		if err != nil {
			return nil, err
		}
		inv.Items = append(inv.Items, it)
	}
	return inv, nil
}

func (s *SQLiteDB) Counts(ctx context.Context) (*Counts, error) {
	accounts, err := s.queries.CountAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}
	clients, err := s.queries.CountClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count clients: %w", err)
	}
	timesheets, err := s.queries.CountTimesheets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count timesheets: %w", err)
	}
	invoices, err := s.queries.CountInvoicesByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}

	c := &Counts{
		Accounts:            accounts,
		Clients:             clients,
		Timesheets:          timesheets.Total,
		TimesheetsGenerated: timesheets.Generated,
		Invoices:            make(map[models.InvoiceStatus]int64, len(invoices)),
	}
	for _, row := range invoices {
		c.Invoices[models.InvoiceStatus(row.Status)] = row.Count
	}
	return c, nil
}

// Conversions

func nullStringToPtr(ns sql.NullString) *string {
	if ns.Valid {
		return &ns.String
	}
	return nil
}

func ptrToNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func ptrToNullInt64(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

func ptrToNullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(DateLayout), Valid: true}
}

func parseTimestamp(s string) time.Time {
	for _, layout := range []string{timestampLayout, time.RFC3339Nano, DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored date %q: %w", s, err)
	}
	return t, nil
}

func encodeSlots(slots []string) (string, error) {
	if slots == nil {
		slots = []string{}
	}
	b, err := json.Marshal(slots)
	if err != nil {
		return "", fmt.Errorf("failed to encode template slots: %w", err)
	}
	return string(b), nil
}

func convertDBAccountToModel(a db.Account) *models.Account {
	return &models.Account{
		ID:          a.ID,
		Name:        a.Name,
		Signatory:   a.Signatory,
		Address:     a.Address,
		Phone:       a.Phone,
		Email:       a.Email,
		PAN:         nullStringToPtr(a.Pan),
		ServiceTax:  nullStringToPtr(a.ServiceTax),
		BankDetails: a.BankDetails,
		Prefix:      nullStringToPtr(a.Prefix),
		CreatedAt:   parseTimestamp(a.CreatedAt),
		UpdatedAt:   parseTimestamp(a.UpdatedAt),
	}
}

func convertDBClientToModel(c db.ClientRow) *models.Client {
	return &models.Client{
		ID:          c.ID,
		Name:        c.Name,
		AccountID:   c.AccountID,
		BillingUnit: c.BillingUnit,
		Address:     c.Address,
		PeriodDay:   int(c.PeriodDay),
		CreatedAt:   parseTimestamp(c.CreatedAt),
		UpdatedAt:   parseTimestamp(c.UpdatedAt),
		AccountName: c.AccountName,
	}
}

func convertDBTemplateToModel(t db.Template) (*models.Template, error) {
	var slots []string
	if t.Slots != "" {
		if err := json.Unmarshal([]byte(t.Slots), &slots); err != nil {
			return nil, fmt.Errorf("invalid slots on template %q: %w", t.Name, err)
		}
	}
	return &models.Template{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Letterhead:  t.Letterhead,
		Slots:       slots,
		CreatedAt:   parseTimestamp(t.CreatedAt),
		UpdatedAt:   parseTimestamp(t.UpdatedAt),
	}, nil
}

func convertDBTagToModel(t db.Tag) *models.Tag {
	return &models.Tag{
		ID:        t.ID,
		Name:      t.Name,
		CreatedAt: parseTimestamp(t.CreatedAt),
	}
}

func convertDBTimesheetToModel(t db.TimesheetRow) (*models.Timesheet, error) {
	date, err := parseDate(t.Date)
	if err != nil {
		return nil, err
	}
	return &models.Timesheet{
		ID:            t.ID,
		Date:          date,
		Employee:      t.Employee,
		ClientID:      t.ClientID,
		Description:   t.Description,
		TemplateID:    t.TemplateID,
		Content:       t.Content,
		GeneratedPath: nullStringToPtr(t.GeneratedPath),
		CreatedAt:     parseTimestamp(t.CreatedAt),
		UpdatedAt:     parseTimestamp(t.UpdatedAt),
		ClientName:    t.ClientName,
		TemplateName:  t.TemplateName,
	}, nil
}

func convertDBInvoiceToModel(i db.InvoiceRow) (*models.Invoice, error) {
	date, err := parseDate(i.Date)
	if err != nil {
		return nil, err
	}
	var seq *int64
	if i.NumberSeq.Valid {
		seq = &i.NumberSeq.Int64
	}
	return &models.Invoice{
		ID:            i.ID,
		NumberPrefix:  nullStringToPtr(i.NumberPrefix),
		NumberSeq:     seq,
		ClientID:      i.ClientID,
		TemplateID:    i.TemplateID,
		Date:          date,
		Particulars:   i.Particulars,
		Status:        models.InvoiceStatus(i.Status),
		GeneratedPath: nullStringToPtr(i.GeneratedPath),
		CreatedAt:     parseTimestamp(i.CreatedAt),
		UpdatedAt:     parseTimestamp(i.UpdatedAt),
		ClientName:    i.ClientName,
		TemplateName:  i.TemplateName,
	}, nil
}

func convertDBInvoiceItemToModel(it db.InvoiceItem) (*models.InvoiceItem, error) {
	quantity, err := decimal.NewFromString(it.Quantity)
	if err != nil {
		return nil, fmt.Errorf("invalid quantity on invoice item %d: %w", it.ID, err)
	}
	unitPrice, err := decimal.NewFromString(it.UnitPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid unit price on invoice item %d: %w", it.ID, err)
	}
	return &models.InvoiceItem{
		ID:          it.ID,
		InvoiceID:   it.InvoiceID,
		Position:    int(it.Position),
		Description: it.Description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	}, nil
}
