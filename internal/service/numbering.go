package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jesses-code-adventures/invoice/internal/database"
	"github.com/jesses-code-adventures/invoice/internal/models"
)

const retryBackoff = 25 * time.Millisecond

// AssignNumber issues inv the next number under its account's prefix, or
// returns the number it already holds. It must run inside the transaction
// that records the invoice as generated.
func (s *BillingService) AssignNumber(ctx context.Context, tx database.Store, inv *models.Invoice) (string, error) {
	if inv.Numbered() {
		return inv.Number(), nil
	}
	if inv.Status == models.InvoiceCancelled {
		return "", fmt.Errorf("invoice %d is cancelled and was never numbered", inv.ID)
	}

	client, err := tx.GetClientByID(ctx, inv.ClientID)
	if err != nil {
		return "", err
	}
	account, err := tx.GetAccountByID(ctx, client.AccountID)
	if err != nil {
		return "", err
	}

	prefix := account.EffectivePrefix(s.cfg.DefaultPrefix)
	seq, err := tx.AssignInvoiceNumber(ctx, inv.ID, prefix)
	if err != nil {
		return "", err
	}
	inv.NumberPrefix = &prefix
	inv.NumberSeq = &seq

	s.log.Debug().Int64("invoice_id", inv.ID).Str("number", inv.Number()).Msg("assigned invoice number")
	return inv.Number(), nil
}

// withRetry reruns fn while it fails with ErrNumberingConflict, up to the
// configured number of retries.
func (s *BillingService) withRetry(ctx context.Context, what string, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !errors.Is(err, models.ErrNumberingConflict) || attempt >= s.cfg.NumberingRetries {
			return err
		}
		s.log.Debug().Err(err).Str("record", what).Int("attempt", attempt+1).Msg("numbering conflict, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * retryBackoff):
		}
	}
}
