package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jesses-code-adventures/invoice/internal/database"
	"github.com/jesses-code-adventures/invoice/internal/models"
	"github.com/jesses-code-adventures/invoice/internal/utils"
)

type AccountInput struct {
	Name        string `flag:"name" validate:"required"`
	Signatory   string `flag:"signatory"`
	Address     string `flag:"address"`
	Phone       string `flag:"phone"`
	Email       string `flag:"email" validate:"omitempty,email"`
	PAN         string `flag:"pan"`
	ServiceTax  string `flag:"serv"`
	BankDetails string `flag:"bank-details"`
	Prefix      string `flag:"prefix"`
}

type AccountEdit struct {
	Signatory   *string
	Address     *string
	Phone       *string
	Email       *string `flag:"email" validate:"omitempty,email"`
	PAN         *string
	ServiceTax  *string
	BankDetails *string
	Prefix      *string
}

func (s *BillingService) CreateAccount(ctx context.Context, in AccountInput) (*models.Account, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	if err := s.checkPrefix(ctx, in.Prefix, 0); err != nil {
		return nil, err
	}
	return s.db.CreateAccount(ctx, &models.Account{
		Name:        in.Name,
		Signatory:   in.Signatory,
		Address:     in.Address,
		Phone:       in.Phone,
		Email:       in.Email,
		PAN:         utils.ToPtrNil(in.PAN),
		ServiceTax:  utils.ToPtrNil(in.ServiceTax),
		BankDetails: in.BankDetails,
		Prefix:      utils.ToPtrNil(in.Prefix),
	})
}

func (s *BillingService) GetAccount(ctx context.Context, name string) (*models.Account, error) {
	return s.db.GetAccountByName(ctx, name)
}

func (s *BillingService) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	return s.db.ListAccounts(ctx)
}

// EditAccount changes an account's details. A new prefix only affects
// invoices numbered from then on.
func (s *BillingService) EditAccount(ctx context.Context, name string, edit AccountEdit) (*models.Account, error) {
	if err := s.validateInput(edit); err != nil {
		return nil, err
	}
	account, err := s.db.GetAccountByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if edit.Prefix != nil {
		if err := s.checkPrefix(ctx, *edit.Prefix, account.ID); err != nil {
			return nil, err
		}
	}
	return s.db.UpdateAccount(ctx, account.ID, &database.AccountUpdateDetails{
		Signatory:   edit.Signatory,
		Address:     edit.Address,
		Phone:       edit.Phone,
		Email:       edit.Email,
		PAN:         edit.PAN,
		ServiceTax:  edit.ServiceTax,
		BankDetails: edit.BankDetails,
		Prefix:      edit.Prefix,
	})
}

func (s *BillingService) DeleteAccount(ctx context.Context, name string) error {
	account, err := s.db.GetAccountByName(ctx, name)
	if err != nil {
		return err
	}
	return s.db.DeleteAccount(ctx, account.ID)
}

// checkPrefix rejects a prefix whose numbers or file names could collide with
// another account's. Case is ignored since file names may be case-insensitive.
// Sharing the default prefix exactly means sharing its sequence, which is allowed.
func (s *BillingService) checkPrefix(ctx context.Context, prefix string, accountID int64) error {
	if err := models.ValidatePrefix(prefix); err != nil {
		return err
	}
	if prefix == "" {
		return nil
	}
	if prefix != s.cfg.DefaultPrefix && strings.EqualFold(prefix, s.cfg.DefaultPrefix) {
		return fmt.Errorf("%w: prefix %q clashes with the default prefix %q", models.ErrInvalidInput, prefix, s.cfg.DefaultPrefix)
	}
	accounts, err := s.db.ListAccounts(ctx)
	if err != nil {
		return err
	}
	for _, other := range accounts {
		if other.ID == accountID || other.Prefix == nil {
			continue
		}
		if strings.EqualFold(prefix, *other.Prefix) {
			return fmt.Errorf("%w: prefix %q clashes with account '%s' (%s)", models.ErrInvalidInput, prefix, other.Name, *other.Prefix)
		}
	}
	return nil
}
