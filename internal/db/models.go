package db

import (
	"database/sql"
)

type Account struct {
	ID          int64
	Name        string
	Signatory   string
	Address     string
	Phone       string
	Email       string
	Pan         sql.NullString
	ServiceTax  sql.NullString
	BankDetails string
	Prefix      sql.NullString
	CreatedAt   string
	UpdatedAt   string
}

type Client struct {
	ID          int64
	Name        string
	AccountID   int64
	BillingUnit string
	Address     string
	PeriodDay   int64
	CreatedAt   string
	UpdatedAt   string
}

type Template struct {
	ID          int64
	Name        string
	Description string
	Letterhead  []byte
	Slots       string
	CreatedAt   string
	UpdatedAt   string
}

type Timesheet struct {
	ID            int64
	Date          string
	Employee      string
	ClientID      int64
	Description   string
	TemplateID    int64
	Content       string
	GeneratedPath sql.NullString
	CreatedAt     string
	UpdatedAt     string
}

type Invoice struct {
	ID            int64
	NumberPrefix  sql.NullString
	NumberSeq     sql.NullInt64
	ClientID      int64
	TemplateID    int64
	Date          string
	Particulars   string
	Status        string
	GeneratedPath sql.NullString
	CreatedAt     string
	UpdatedAt     string
}

type InvoiceItem struct {
	ID          int64
	InvoiceID   int64
	Position    int64
	Description string
	Quantity    string
	UnitPrice   string
}

type Tag struct {
	ID        int64
	Name      string
	CreatedAt string
}
