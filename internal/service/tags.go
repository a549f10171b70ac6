package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jesses-code-adventures/invoice/internal/models"
)

func (s *BillingService) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: tag name is required", models.ErrInvalidInput)
	}
	return s.db.CreateTag(ctx, name)
}

func (s *BillingService) ListTags(ctx context.Context) ([]*models.Tag, error) {
	return s.db.ListTags(ctx)
}

func (s *BillingService) DeleteTag(ctx context.Context, name string) error {
	return s.db.DeleteTag(ctx, name)
}
