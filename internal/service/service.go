package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/jesses-code-adventures/invoice/internal/config"
	"github.com/jesses-code-adventures/invoice/internal/database"
	"github.com/jesses-code-adventures/invoice/internal/formatter"
	"github.com/jesses-code-adventures/invoice/internal/logger"
	"github.com/jesses-code-adventures/invoice/internal/models"
)

// Archiver mirrors a generated artifact somewhere durable.
type Archiver interface {
	Put(ctx context.Context, name string, body []byte) error
}

type BillingService struct {
	db      database.DB
	cfg     *config.Config
	formats *formatter.Registry
	binder  *Binder
	inputs  *validator.Validate
	archive Archiver
	log     zerolog.Logger
	now     func() time.Time
}

type Option func(*BillingService)

func WithArchive(a Archiver) Option {
	return func(s *BillingService) {
		s.archive = a
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *BillingService) {
		s.now = now
	}
}

func NewBillingService(db database.DB, cfg *config.Config, formats *formatter.Registry, log zerolog.Logger, opts ...Option) *BillingService {
	s := &BillingService{
		db:      db,
		cfg:     cfg,
		formats: formats,
		binder:  NewBinder(),
		inputs:  newInputValidator(),
		log:     logger.WithComponent(log, "service"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BillingService) Today() time.Time {
	return dateOnly(s.now())
}

func (s *BillingService) SchemaVersion() (uint, bool, error) {
	return s.db.SchemaVersion()
}

func (s *BillingService) Counts(ctx context.Context) (*database.Counts, error) {
	return s.db.Counts(ctx)
}

// newInputValidator reports failures by the command-line flag that carries
// the value.
func newInputValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("flag")
	})
	return v
}

func (s *BillingService) validateInput(in interface{}) error {
	err := s.inputs.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: --%s is required", models.ErrInvalidInput, fe.Field())
	case "email":
		return fmt.Errorf("%w: --%s %q is not an email address", models.ErrInvalidInput, fe.Field(), fe.Value())
	}
	return fmt.Errorf("%w: --%s fails %s", models.ErrInvalidInput, fe.Field(), fe.Tag())
}

// allTime spans every date a record can carry.
func allTime() (time.Time, time.Time) {
	return time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
}
