package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jesses-code-adventures/invoice/internal/database"
	"github.com/jesses-code-adventures/invoice/internal/formatter"
	"github.com/jesses-code-adventures/invoice/internal/models"
)

type Request struct {
	Criteria  Criteria
	Format    string
	OutputDir string
	Overwrite bool
}

// Outcome describes a record that was generated or deliberately skipped.
type Outcome struct {
	Ref    Ref
	Number string
	Path   string
	Reason string
}

type Failure struct {
	Ref Ref
	Err error
}

type Report struct {
	RunID     uuid.UUID
	Format    string
	Succeeded []Outcome
	Skipped   []Outcome
	Failed    []Failure
}

func (r *Report) Total() int {
	return len(r.Succeeded) + len(r.Skipped) + len(r.Failed)
}

// Err joins every record failure, or returns nil when none failed.
func (r *Report) Err() error {
	var result *multierror.Error
	for _, f := range r.Failed {
		result = multierror.Append(result, fmt.Errorf("%s: %w", f.Ref, f.Err))
	}
	return result.ErrorOrNil()
}

type skipError struct {
	reason string
}

func (e *skipError) Error() string {
	return "skipped: " + e.reason
}

type job struct {
	ref              Ref
	renderer         formatter.Renderer
	outputDir        string
	overwrite        bool
	includeCancelled bool
}

// staged is an artifact written to a temp file but not yet moved into place.
type staged struct {
	tmp  string
	data []byte
}

type result struct {
	outcome Outcome
	skipped bool
	err     error
}

// Generate renders every record the criteria select. A record that fails
// never aborts the batch; its error is collected in the report. When the
// criteria name a single record by id, that record's error is also returned.
func (s *BillingService) Generate(ctx context.Context, req Request) (*Report, error) {
	renderer, err := s.formats.Get(req.Format)
	if err != nil {
		return nil, err
	}
	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = s.cfg.OutputDir
	}

	refs, err := s.Select(ctx, req.Criteria)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create output directory %s: %v", models.ErrIO, outputDir, err)
	}

	report := &Report{RunID: uuid.Must(uuid.NewV7()), Format: renderer.Name()}
	log := s.log.With().
		Str("run_id", report.RunID.String()).
		Str("format", renderer.Name()).
		Str("kind", string(req.Criteria.Kind)).
		Logger()
	log.Debug().Int("selected", len(refs)).Str("output_dir", outputDir).Msg("starting generation")

	results := make([]result, len(refs))
	var g errgroup.Group
	g.SetLimit(max(s.cfg.Workers, 1))
	for i, ref := range refs {
		g.Go(func() error {
			outcome, err := s.generateOne(ctx, log, job{
				ref:              ref,
				renderer:         renderer,
				outputDir:        outputDir,
				overwrite:        req.Overwrite,
				includeCancelled: req.Criteria.IncludeCancelled,
			})
			var skip *skipError
			switch {
			case errors.As(err, &skip):
				outcome.Reason = skip.reason
				results[i] = result{outcome: outcome, skipped: true}
			default:
				results[i] = result{outcome: outcome, err: err}
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		switch {
		case r.err != nil:
			report.Failed = append(report.Failed, Failure{Ref: r.outcome.Ref, Err: r.err})
		case r.skipped:
			report.Skipped = append(report.Skipped, r.outcome)
		default:
			report.Succeeded = append(report.Succeeded, r.outcome)
		}
	}

	log.Info().
		Int("generated", len(report.Succeeded)).
		Int("skipped", len(report.Skipped)).
		Int("failed", len(report.Failed)).
		Msg("generation finished")

	if req.Criteria.ID != models.NoID && len(report.Failed) == 1 {
		return report, report.Failed[0].Err
	}
	return report, nil
}

func (s *BillingService) generateOne(ctx context.Context, log zerolog.Logger, j job) (Outcome, error) {
	out := Outcome{Ref: j.ref}
	var artifact staged

	err := s.withRetry(ctx, j.ref.String(), func() error {
		artifact = staged{}
		err := s.db.WithTx(ctx, func(tx database.Store) error {
			return s.stage(ctx, tx, j, &out, &artifact)
		})
		if err != nil {
			removeTemp(artifact.tmp)
			return err
		}
		if err := os.Rename(artifact.tmp, out.Path); err != nil {
			removeTemp(artifact.tmp)
			return fmt.Errorf("%w: move into place %s: %v", models.ErrIO, out.Path, err)
		}
		return nil
	})
	if err != nil {
		var skip *skipError
		if errors.As(err, &skip) {
			log.Debug().Str("record", j.ref.String()).Str("reason", skip.reason).Msg("skipped")
		} else {
			log.Warn().Err(err).Str("record", j.ref.String()).Msg("generation failed")
		}
		return out, err
	}

	log.Debug().Str("record", j.ref.String()).Str("path", out.Path).Str("number", out.Number).Msg("generated")
	if s.archive != nil {
		if err := s.archive.Put(ctx, filepath.Base(out.Path), artifact.data); err != nil {
			log.Warn().Err(err).Str("path", out.Path).Msg("archive mirror failed")
		}
	}
	return out, nil
}

// stage does everything short of moving the artifact into place. Any error,
// including a skip, rolls back the transaction so no number is consumed.
func (s *BillingService) stage(ctx context.Context, tx database.Store, j job, out *Outcome, artifact *staged) error {
	var (
		rec  Record
		tmpl *models.Template
		name string
		mark func(path string) error
		// fresh is set when this transaction issues the number.
		fresh bool
	)

	switch j.ref.Kind {
	case models.KindInvoice:
		inv, err := tx.GetInvoiceByID(ctx, j.ref.ID)
		if err != nil {
			return err
		}
		if inv.Status == models.InvoiceCancelled {
			if !j.includeCancelled || !j.overwrite {
				return &skipError{reason: "invoice is cancelled"}
			}
			if !inv.Numbered() {
				return &skipError{reason: "invoice was cancelled before it was numbered"}
			}
		}
		client, account, err := billedParties(ctx, tx, inv.ClientID)
		if err != nil {
			return err
		}
		if tmpl, err = tx.GetTemplateByID(ctx, inv.TemplateID); err != nil {
			return err
		}
		fresh = !inv.Numbered()
		if out.Number, err = s.AssignNumber(ctx, tx, inv); err != nil {
			return err
		}
		// Bind the state the invoice is about to be committed in.
		if inv.Status == models.InvoiceDraft {
			inv.Status = models.InvoiceGenerated
		}
		rec = &InvoiceRecord{Invoice: inv, Client: client, Account: account}
		name = sanitiseFilename(out.Number)
		mark = func(path string) error { return tx.MarkInvoiceGenerated(ctx, inv.ID, path) }

	case models.KindTimesheet:
		ts, err := tx.GetTimesheetByID(ctx, j.ref.ID)
		if err != nil {
			return err
		}
		client, account, err := billedParties(ctx, tx, ts.ClientID)
		if err != nil {
			return err
		}
		if tmpl, err = tx.GetTemplateByID(ctx, ts.TemplateID); err != nil {
			return err
		}
		rec = &TimesheetRecord{Timesheet: ts, Client: client, Account: account}
		name = "timesheet-" + strconv.FormatInt(ts.ID, 10)
		mark = func(path string) error { return tx.MarkTimesheetGenerated(ctx, ts.ID, path) }

	default:
		return fmt.Errorf("unknown record kind %q", j.ref.Kind)
	}

	out.Path = filepath.Join(j.outputDir, name+"."+j.renderer.Extension())
	if _, err := os.Stat(out.Path); err == nil {
		if !j.overwrite {
			// The rollback takes back a number issued in this transaction.
			if fresh {
				out.Number = ""
			}
			return &skipError{reason: "already generated at " + out.Path}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %v", models.ErrIO, err)
	}

	binding, err := s.binder.Bind(tmpl, rec)
	if err != nil {
		return err
	}
	data, err := j.renderer.Render(binding, tmpl.Letterhead)
	if err != nil {
		return &models.RenderError{Format: j.renderer.Name(), Err: err}
	}

	tmp, err := writeTemp(j.outputDir, data)
	if err != nil {
		return err
	}
	artifact.tmp = tmp
	artifact.data = data

	return mark(out.Path)
}

func billedParties(ctx context.Context, tx database.Store, clientID int64) (*models.Client, *models.Account, error) {
	client, err := tx.GetClientByID(ctx, clientID)
	if err != nil {
		return nil, nil, err
	}
	account, err := tx.GetAccountByID(ctx, client.AccountID)
	if err != nil {
		return nil, nil, err
	}
	return client, account, nil
}

func writeTemp(dir string, data []byte) (string, error) {
	tmp := filepath.Join(dir, "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		removeTemp(tmp)
		return "", fmt.Errorf("%w: %v", models.ErrIO, err)
	}
	return tmp, nil
}

func removeTemp(path string) {
	if path != "" {
		_ = os.Remove(path)
	}
}

// sanitiseFilename keeps an invoice number usable as a file name.
func sanitiseFilename(number string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, number)
}
