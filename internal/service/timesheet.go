package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jesses-code-adventures/invoice/internal/database"
	"github.com/jesses-code-adventures/invoice/internal/models"
)

type TimesheetInput struct {
	Date        time.Time
	Employee    string `flag:"employee" validate:"required"`
	Client      string `flag:"client" validate:"required"`
	Description string `flag:"description" validate:"required"`
	Template    string `flag:"template" validate:"required"`
	Content     string
}

type TimesheetEdit struct {
	Date        *time.Time
	Employee    *string
	Client      *string
	Description *string
	ContentPath *string
}

func (s *BillingService) AddTimesheet(ctx context.Context, in TimesheetInput) (*models.Timesheet, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		in.Date = s.Today()
	}
	client, err := s.db.GetClientByName(ctx, in.Client)
	if err != nil {
		return nil, err
	}
	tmpl, err := s.db.GetTemplate(ctx, in.Template)
	if err != nil {
		return nil, err
	}
	return s.db.CreateTimesheet(ctx, &models.Timesheet{
		Date:        dateOnly(in.Date),
		Employee:    in.Employee,
		ClientID:    client.ID,
		Description: in.Description,
		TemplateID:  tmpl.ID,
		Content:     in.Content,
	})
}

// ImportTimesheet adds a timesheet whose content is read from path.
func (s *BillingService) ImportTimesheet(ctx context.Context, in TimesheetInput, path string) (*models.Timesheet, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timesheet: %w", err)
	}
	in.Content = string(content)
	return s.AddTimesheet(ctx, in)
}

// ParseTimesheetFile reads a timesheet file without storing it.
func ParseTimesheetFile(path string) ([]TimesheetEntry, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timesheet: %w", err)
	}
	return ParseTimesheetContent(string(content)), nil
}

func (s *BillingService) GetTimesheet(ctx context.Context, id int64) (*models.Timesheet, error) {
	return s.db.GetTimesheetByID(ctx, id)
}

// EditTimesheet updates a timesheet. An artifact already generated from it
// stays as it is until the timesheet is regenerated with overwrite.
func (s *BillingService) EditTimesheet(ctx context.Context, id int64, edit TimesheetEdit) (*models.Timesheet, error) {
	if _, err := s.db.GetTimesheetByID(ctx, id); err != nil {
		return nil, err
	}
	updates := &database.TimesheetUpdateDetails{
		Employee:    edit.Employee,
		Description: edit.Description,
	}
	if edit.Date != nil {
		d := dateOnly(*edit.Date)
		updates.Date = &d
	}
	if edit.Client != nil {
		client, err := s.db.GetClientByName(ctx, *edit.Client)
		if err != nil {
			return nil, err
		}
		updates.ClientID = &client.ID
	}
	if edit.ContentPath != nil {
		content, err := os.ReadFile(*edit.ContentPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read timesheet: %w", err)
		}
		c := string(content)
		updates.Content = &c
	}
	return s.db.UpdateTimesheet(ctx, id, updates)
}

func (s *BillingService) DeleteTimesheet(ctx context.Context, id int64) error {
	return s.db.DeleteTimesheet(ctx, id)
}

// ListTimesheets returns every timesheet in date order.
func (s *BillingService) ListTimesheets(ctx context.Context) ([]*models.Timesheet, error) {
	from, to := allTime()
	return s.db.SelectTimesheets(ctx, database.TimesheetFilter{From: from, To: to})
}
