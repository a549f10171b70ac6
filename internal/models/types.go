package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NoID marks an unset id override on selection and generation requests.
const NoID int64 = -1

type Account struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Signatory   string    `json:"signatory" db:"signatory"`
	Address     string    `json:"address" db:"address"`
	Phone       string    `json:"phone" db:"phone"`
	Email       string    `json:"email" db:"email"`
	PAN         *string   `json:"pan,omitempty" db:"pan"`
	ServiceTax  *string   `json:"service_tax,omitempty" db:"service_tax"`
	BankDetails string    `json:"bank_details" db:"bank_details"`
	Prefix      *string   `json:"prefix,omitempty" db:"prefix"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// EffectivePrefix is the namespace this account's invoice numbers are issued under.
func (a *Account) EffectivePrefix(fallback string) string {
	if a.Prefix != nil && *a.Prefix != "" {
		return *a.Prefix
	}
	return fallback
}

type Client struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	AccountID   int64     `json:"account_id" db:"account_id"`
	BillingUnit string    `json:"billing_unit" db:"billing_unit"`
	Address     string    `json:"address" db:"address"`
	PeriodDay   int       `json:"period_day" db:"period_day"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	AccountName string `json:"account_name,omitempty" db:"account_name"`
}

type Template struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Letterhead  []byte    `json:"-" db:"letterhead"`
	Slots       []string  `json:"slots,omitempty" db:"slots"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type Timesheet struct {
	ID            int64     `json:"id" db:"id"`
	Date          time.Time `json:"date" db:"date"`
	Employee      string    `json:"employee" db:"employee"`
	ClientID      int64     `json:"client_id" db:"client_id"`
	Description   string    `json:"description" db:"description"`
	TemplateID    int64     `json:"template_id" db:"template_id"`
	Content       string    `json:"content" db:"content"`
	GeneratedPath *string   `json:"generated_path,omitempty" db:"generated_path"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`

	ClientName   string `json:"client_name,omitempty" db:"client_name"`
	TemplateName string `json:"template_name,omitempty" db:"template_name"`
}

func (t *Timesheet) Generated() bool {
	return t.GeneratedPath != nil
}

type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceGenerated InvoiceStatus = "generated"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

type Invoice struct {
	ID            int64          `json:"id" db:"id"`
	NumberPrefix  *string        `json:"number_prefix,omitempty" db:"number_prefix"`
	NumberSeq     *int64         `json:"number_seq,omitempty" db:"number_seq"`
	ClientID      int64          `json:"client_id" db:"client_id"`
	TemplateID    int64          `json:"template_id" db:"template_id"`
	Date          time.Time      `json:"date" db:"date"`
	Particulars   string         `json:"particulars" db:"particulars"`
	Status        InvoiceStatus  `json:"status" db:"status"`
	GeneratedPath *string        `json:"generated_path,omitempty" db:"generated_path"`
	Tags          []string       `json:"tags,omitempty"`
	Items         []*InvoiceItem `json:"items,omitempty"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`

	ClientName   string `json:"client_name,omitempty" db:"client_name"`
	TemplateName string `json:"template_name,omitempty" db:"template_name"`
}

// Numbered reports whether the invoice has been issued a number.
func (i *Invoice) Numbered() bool {
	return i.NumberSeq != nil
}

// Number renders the issued invoice number, or "" for an unissued invoice.
func (i *Invoice) Number() string {
	if i.NumberSeq == nil {
		return ""
	}
	prefix := ""
	if i.NumberPrefix != nil {
		prefix = *i.NumberPrefix
	}
	return FormatNumber(prefix, *i.NumberSeq)
}

func FormatNumber(prefix string, seq int64) string {
	return prefix + strconv.FormatInt(seq, 10)
}

// ValidatePrefix checks an invoice number prefix. It must end in a non-digit
// so that no two prefixes can render the same number, and may only use
// characters that appear unchanged in a file name.
func ValidatePrefix(prefix string) error {
	if prefix == "" {
		return nil
	}
	for _, r := range prefix {
		if !isFilenameRune(r) {
			return fmt.Errorf("%w: prefix %q may only contain letters, digits, '-', '_' and '.'", ErrInvalidInput, prefix)
		}
	}
	if last := prefix[len(prefix)-1]; last >= '0' && last <= '9' {
		return fmt.Errorf("%w: prefix %q must not end in a digit", ErrInvalidInput, prefix)
	}
	return nil
}

func isFilenameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-', r == '_', r == '.':
		return true
	}
	return false
}

type InvoiceItem struct {
	ID          int64           `json:"id" db:"id"`
	InvoiceID   int64           `json:"invoice_id" db:"invoice_id"`
	Position    int             `json:"position" db:"position"`
	Description string          `json:"description" db:"description"`
	Quantity    decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
}

func (it *InvoiceItem) Amount() decimal.Decimal {
	return it.Quantity.Mul(it.UnitPrice)
}

type Tag struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func NewUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}
