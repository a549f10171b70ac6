package database

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jesses-code-adventures/invoice/internal/models"
)

// Store is the set of entity operations available both on the open database
// and inside a transaction.
type Store interface {
	CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error)
	GetAccountByID(ctx context.Context, id int64) (*models.Account, error)
	GetAccountByName(ctx context.Context, name string) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]*models.Account, error)
	UpdateAccount(ctx context.Context, id int64, updates *AccountUpdateDetails) (*models.Account, error)
	DeleteAccount(ctx context.Context, id int64) error

	CreateClient(ctx context.Context, client *models.Client) (*models.Client, error)
	GetClientByID(ctx context.Context, id int64) (*models.Client, error)
	GetClientByName(ctx context.Context, name string) (*models.Client, error)
	ListClients(ctx context.Context) ([]*models.Client, error)
	UpdateClient(ctx context.Context, id int64, updates *ClientUpdateDetails) (*models.Client, error)
	DeleteClient(ctx context.Context, id int64) error

	CreateTemplate(ctx context.Context, template *models.Template) (*models.Template, error)
	GetTemplateByID(ctx context.Context, id int64) (*models.Template, error)
	GetTemplate(ctx context.Context, name string) (*models.Template, error)
	ListTemplates(ctx context.Context) ([]*models.Template, error)
	UpdateTemplate(ctx context.Context, id int64, updates *TemplateUpdateDetails) (*models.Template, error)
	DeleteTemplate(ctx context.Context, id int64) error

	CreateTag(ctx context.Context, name string) (*models.Tag, error)
	ListTags(ctx context.Context) ([]*models.Tag, error)
	DeleteTag(ctx context.Context, name string) error

	CreateTimesheet(ctx context.Context, timesheet *models.Timesheet) (*models.Timesheet, error)
	GetTimesheetByID(ctx context.Context, id int64) (*models.Timesheet, error)
	SelectTimesheets(ctx context.Context, filter TimesheetFilter) ([]*models.Timesheet, error)
	UpdateTimesheet(ctx context.Context, id int64, updates *TimesheetUpdateDetails) (*models.Timesheet, error)
	MarkTimesheetGenerated(ctx context.Context, id int64, path string) error
	DeleteTimesheet(ctx context.Context, id int64) error

	CreateInvoice(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error)
	GetInvoiceByID(ctx context.Context, id int64) (*models.Invoice, error)
	SelectInvoices(ctx context.Context, filter InvoiceFilter) ([]*models.Invoice, error)
	ListInvoicesByStatus(ctx context.Context, status models.InvoiceStatus) ([]*models.Invoice, error)
	UpdateInvoice(ctx context.Context, id int64, updates *InvoiceUpdateDetails) (*models.Invoice, error)
	SetInvoiceStatus(ctx context.Context, id int64, status models.InvoiceStatus) error
	AssignInvoiceNumber(ctx context.Context, id int64, prefix string) (int64, error)
	MarkInvoiceGenerated(ctx context.Context, id int64, path string) error
	DeleteInvoice(ctx context.Context, id int64) error

	AddInvoiceItem(ctx context.Context, invoiceID int64, description string, quantity, unitPrice decimal.Decimal) (*models.InvoiceItem, error)
	DeleteInvoiceItem(ctx context.Context, invoiceID int64, position int) error

	Counts(ctx context.Context) (*Counts, error)
}

// DB is an open store. WithTx runs fn inside a single write transaction,
// committing when fn returns nil and rolling back otherwise.
type DB interface {
	Store
	WithTx(ctx context.Context, fn func(tx Store) error) error
	SchemaVersion() (uint, bool, error)
	Close() error
}

type AccountUpdateDetails struct {
	Signatory   *string
	Address     *string
	Phone       *string
	Email       *string
	PAN         *string
	ServiceTax  *string
	BankDetails *string
	Prefix      *string
}

type ClientUpdateDetails struct {
	AccountID   *int64
	BillingUnit *string
	Address     *string
	PeriodDay   *int
}

type TemplateUpdateDetails struct {
	Description *string
	Letterhead  []byte
	Slots       []string
}

type TimesheetUpdateDetails struct {
	Date        *time.Time
	Employee    *string
	ClientID    *int64
	Description *string
	TemplateID  *int64
	Content     *string
}

type InvoiceUpdateDetails struct {
	ClientID    *int64
	TemplateID  *int64
	Date        *time.Time
	Particulars *string
	// Tags replaces the invoice's tag set when non-nil.
	Tags []string
}

type TimesheetFilter struct {
	From     time.Time
	To       time.Time
	Client   string
	Employee *string
}

type InvoiceFilter struct {
	From             time.Time
	To               time.Time
	Client           string
	Tags             []string
	IncludeCancelled bool
}

type Counts struct {
	Accounts            int64
	Clients             int64
	Timesheets          int64
	TimesheetsGenerated int64
	Invoices            map[models.InvoiceStatus]int64
}
