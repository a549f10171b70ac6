package service

import (
	"context"
	"strings"
	"time"

	"github.com/jesses-code-adventures/invoice/internal/database"
	"github.com/jesses-code-adventures/invoice/internal/models"
)

type ClientInput struct {
	Name        string `flag:"name" validate:"required"`
	Account     string `flag:"account" validate:"required"`
	BillingUnit string `flag:"bunit" validate:"required"`
	Address     string `flag:"address"`
	PeriodDay   int    `flag:"period"`
}

type ClientEdit struct {
	Account     *string
	BillingUnit *string
	Address     *string
	PeriodDay   *int
}

func (s *BillingService) CreateClient(ctx context.Context, in ClientInput) (*models.Client, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	if err := validatePeriodDay(in.PeriodDay); err != nil {
		return nil, err
	}
	account, err := s.db.GetAccountByName(ctx, in.Account)
	if err != nil {
		return nil, err
	}
	return s.db.CreateClient(ctx, &models.Client{
		Name:        in.Name,
		AccountID:   account.ID,
		BillingUnit: strings.ToUpper(in.BillingUnit),
		Address:     in.Address,
		PeriodDay:   in.PeriodDay,
	})
}

func (s *BillingService) GetClient(ctx context.Context, name string) (*models.Client, error) {
	return s.db.GetClientByName(ctx, name)
}

func (s *BillingService) ListClients(ctx context.Context) ([]*models.Client, error) {
	return s.db.ListClients(ctx)
}

func (s *BillingService) EditClient(ctx context.Context, name string, edit ClientEdit) (*models.Client, error) {
	client, err := s.db.GetClientByName(ctx, name)
	if err != nil {
		return nil, err
	}

	updates := &database.ClientUpdateDetails{
		Address:   edit.Address,
		PeriodDay: edit.PeriodDay,
	}
	if edit.PeriodDay != nil {
		if err := validatePeriodDay(*edit.PeriodDay); err != nil {
			return nil, err
		}
	}
	if edit.BillingUnit != nil {
		unit := strings.ToUpper(*edit.BillingUnit)
		updates.BillingUnit = &unit
	}
	if edit.Account != nil {
		account, err := s.db.GetAccountByName(ctx, *edit.Account)
		if err != nil {
			return nil, err
		}
		updates.AccountID = &account.ID
	}
	return s.db.UpdateClient(ctx, client.ID, updates)
}

func (s *BillingService) DeleteClient(ctx context.Context, name string) error {
	client, err := s.db.GetClientByName(ctx, name)
	if err != nil {
		return err
	}
	return s.db.DeleteClient(ctx, client.ID)
}

// ClientPeriods lists the client's billing periods overlapping [from, to].
func (s *BillingService) ClientPeriods(ctx context.Context, name string, from, to time.Time) ([]Period, error) {
	client, err := s.db.GetClientByName(ctx, name)
	if err != nil {
		return nil, err
	}
	seq, err := PeriodsFor(client.PeriodDay, from, to)
	if err != nil {
		return nil, err
	}
	return seq.All(), nil
}
