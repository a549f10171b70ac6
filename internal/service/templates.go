package service

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/jesses-code-adventures/invoice/internal/database"
	"github.com/jesses-code-adventures/invoice/internal/models"
)

type TemplateInput struct {
	Name           string `flag:"name" validate:"required"`
	Description    string `flag:"desc"`
	LetterheadPath string `flag:"letterhead" validate:"omitempty,file"`
	Slots          []string
}

type TemplateEdit struct {
	Description    *string
	LetterheadPath *string
	Slots          []string
}

func (s *BillingService) CreateTemplate(ctx context.Context, in TemplateInput) (*models.Template, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	var letterhead []byte
	if in.LetterheadPath != "" {
		var err error
		if letterhead, err = readLetterhead(in.LetterheadPath); err != nil {
			return nil, err
		}
	}
	return s.db.CreateTemplate(ctx, &models.Template{
		Name:        in.Name,
		Description: in.Description,
		Letterhead:  letterhead,
		Slots:       cleanList(in.Slots),
	})
}

// GetTemplate looks a template up by name.
func (s *BillingService) GetTemplate(ctx context.Context, name string) (*models.Template, error) {
	return s.db.GetTemplate(ctx, name)
}

func (s *BillingService) ListTemplates(ctx context.Context) ([]*models.Template, error) {
	return s.db.ListTemplates(ctx)
}

func (s *BillingService) EditTemplate(ctx context.Context, name string, edit TemplateEdit) (*models.Template, error) {
	tmpl, err := s.db.GetTemplate(ctx, name)
	if err != nil {
		return nil, err
	}
	updates := &database.TemplateUpdateDetails{Description: edit.Description}
	if edit.LetterheadPath != nil {
		if updates.Letterhead, err = readLetterhead(*edit.LetterheadPath); err != nil {
			return nil, err
		}
	}
	if edit.Slots != nil {
		updates.Slots = cleanList(edit.Slots)
	}
	return s.db.UpdateTemplate(ctx, tmpl.ID, updates)
}

func (s *BillingService) DeleteTemplate(ctx context.Context, name string) error {
	tmpl, err := s.db.GetTemplate(ctx, name)
	if err != nil {
		return err
	}
	return s.db.DeleteTemplate(ctx, tmpl.ID)
}

func readLetterhead(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read letterhead: %w", err)
	}
	switch contentType := http.DetectContentType(data); contentType {
	case "image/png", "image/jpeg":
		return data, nil
	default:
		return nil, fmt.Errorf("%w: letterhead %s is %s, expected a PNG or JPEG image", models.ErrInvalidInput, path, contentType)
	}
}

// cleanList trims entries and drops empty ones and repeats, keeping order.
func cleanList(items []string) []string {
	if items == nil {
		return nil
	}
	seen := make(map[string]bool, len(items))
	out := []string{}
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
