package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesses-code-adventures/invoice/internal/models"
)

type memArchive struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (a *memArchive) Put(ctx context.Context, name string, body []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.names = append(a.names, name)
	return nil
}

func june() Criteria {
	return Criteria{Kind: models.KindInvoice, ID: models.NoID, From: day(2024, 6, 1), To: day(2024, 6, 30)}
}

func TestGenerateNumbersInSelectionOrder(t *testing.T) {
	archive := &memArchive{}
	s := newTestService(t, 1, WithArchive(archive))
	seed(t, s)
	ctx := context.Background()

	addInvoice(t, s, "Beta", day(2024, 6, 10))
	addInvoice(t, s, "Acme", day(2024, 6, 1))

	report, err := s.Generate(ctx, Request{Criteria: june(), Format: "txt"})
	require.NoError(t, err)
	require.NoError(t, report.Err())
	require.Len(t, report.Succeeded, 2)

	assert.Equal(t, "AC-1", report.Succeeded[0].Number)
	assert.Equal(t, int64(2), report.Succeeded[0].Ref.ID)
	assert.Equal(t, "AC-2", report.Succeeded[1].Number)
	assert.Equal(t, filepath.Join(s.cfg.OutputDir, "AC-1.txt"), report.Succeeded[0].Path)
	assert.Equal(t, []string{"AC-1.txt", "AC-2.txt"}, archive.names)

	body, err := os.ReadFile(report.Succeeded[0].Path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Invoice AC-1")
	assert.Contains(t, string(body), "INR 251.00")

	inv, err := s.GetInvoice(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceGenerated, inv.Status)
	require.NotNil(t, inv.GeneratedPath)
	assert.Equal(t, report.Succeeded[0].Path, *inv.GeneratedPath)

	leftovers, err := filepath.Glob(filepath.Join(s.cfg.OutputDir, ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestRegenerateSkipsThenOverwritesIdentically(t *testing.T) {
	s := newTestService(t, 1)
	seed(t, s)
	ctx := context.Background()
	addInvoice(t, s, "Acme", day(2024, 6, 1))

	first, err := s.Generate(ctx, Request{Criteria: june(), Format: "pdf"})
	require.NoError(t, err)
	require.Len(t, first.Succeeded, 1)
	original, err := os.ReadFile(first.Succeeded[0].Path)
	require.NoError(t, err)

	again, err := s.Generate(ctx, Request{Criteria: june(), Format: "pdf"})
	require.NoError(t, err)
	assert.Empty(t, again.Succeeded)
	require.Len(t, again.Skipped, 1)
	assert.Contains(t, again.Skipped[0].Reason, "already generated")

	overwritten, err := s.Generate(ctx, Request{Criteria: june(), Format: "pdf", Overwrite: true})
	require.NoError(t, err)
	require.Len(t, overwritten.Succeeded, 1)
	assert.Equal(t, "AC-1", overwritten.Succeeded[0].Number)

	rewritten, err := os.ReadFile(overwritten.Succeeded[0].Path)
	require.NoError(t, err)
	assert.Equal(t, original, rewritten)

	// The skipped run consumed nothing.
	next := addInvoice(t, s, "Acme", day(2024, 6, 5))
	report, err := s.Generate(ctx, Request{Criteria: Criteria{Kind: models.KindInvoice, ID: next.ID}, Format: "pdf"})
	require.NoError(t, err)
	assert.Equal(t, "AC-2", report.Succeeded[0].Number)
}

func TestSkipOnExistingFileDoesNotConsumeNumber(t *testing.T) {
	s := newTestService(t, 1)
	seed(t, s)
	ctx := context.Background()
	inv := addInvoice(t, s, "Acme", day(2024, 6, 1))

	require.NoError(t, os.MkdirAll(s.cfg.OutputDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(s.cfg.OutputDir, "AC-1.txt"), []byte("stale"), 0o644))

	report, err := s.Generate(ctx, Request{Criteria: june(), Format: "txt"})
	require.NoError(t, err)
	require.Len(t, report.Skipped, 1)
	assert.Empty(t, report.Skipped[0].Number)

	reloaded, err := s.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.Numbered())
	assert.Equal(t, models.InvoiceDraft, reloaded.Status)
}

func TestCancellationNeverFreesNumber(t *testing.T) {
	s := newTestService(t, 1)
	seed(t, s)
	ctx := context.Background()

	first := addInvoice(t, s, "Acme", day(2024, 6, 1))
	_, err := s.Generate(ctx, Request{Criteria: june(), Format: "txt"})
	require.NoError(t, err)

	cancelled, err := s.CancelInvoice(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "AC-1", cancelled.Number())
	assert.ErrorIs(t, s.DeleteInvoice(ctx, first.ID), models.ErrNumberIssued)

	draft := addInvoice(t, s, "Acme", day(2024, 6, 2))
	_, err = s.CancelInvoice(ctx, draft.ID)
	require.NoError(t, err)
	addInvoice(t, s, "Acme", day(2024, 6, 3))

	report, err := s.Generate(ctx, Request{Criteria: june(), Format: "txt"})
	require.NoError(t, err)
	require.Len(t, report.Succeeded, 1)
	assert.Equal(t, "AC-2", report.Succeeded[0].Number)

	c := june()
	c.IncludeCancelled = true
	report, err = s.Generate(ctx, Request{Criteria: c, Format: "txt", Overwrite: true})
	require.NoError(t, err)
	require.NoError(t, report.Err())

	numbers := map[int64]string{}
	for _, o := range report.Succeeded {
		numbers[o.Ref.ID] = o.Number
	}
	assert.Equal(t, "AC-1", numbers[first.ID])
	assert.NotContains(t, numbers, draft.ID)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, draft.ID, report.Skipped[0].Ref.ID)

	reloaded, err := s.GetInvoice(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceCancelled, reloaded.Status)

	// Explicitly naming a cancelled invoice without the flags skips it.
	report, err = s.Generate(ctx, Request{Criteria: Criteria{Kind: models.KindInvoice, ID: first.ID}, Format: "txt", Overwrite: true})
	require.NoError(t, err)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "invoice is cancelled", report.Skipped[0].Reason)
}

func TestGenerateCollectsFailuresWithoutAborting(t *testing.T) {
	s := newTestService(t, 1)
	seed(t, s)
	ctx := context.Background()

	_, err := s.CreateClient(ctx, ClientInput{Name: "Nowhere", Account: "studio", BillingUnit: "INR", PeriodDay: 1})
	require.NoError(t, err)
	broken := addInvoice(t, s, "Nowhere", day(2024, 6, 1))
	addInvoice(t, s, "Acme", day(2024, 6, 2))

	report, err := s.Generate(ctx, Request{Criteria: june(), Format: "txt"})
	require.NoError(t, err)
	require.Len(t, report.Failed, 1)
	require.Len(t, report.Succeeded, 1)
	assert.Equal(t, broken.ID, report.Failed[0].Ref.ID)
	assert.ErrorIs(t, report.Err(), models.ErrIncompleteRecord)
	assert.Equal(t, "AC-1", report.Succeeded[0].Number)

	reloaded, err := s.GetInvoice(ctx, broken.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.Numbered())

	// A single named record returns its failure directly.
	_, err = s.Generate(ctx, Request{Criteria: Criteria{Kind: models.KindInvoice, ID: broken.ID}, Format: "txt"})
	var incomplete *models.IncompleteRecordError
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, "client.address", incomplete.Field)
}

// hookRenderer renders plain text, running before first if it is set.
type hookRenderer struct {
	name   string
	before func() error
}

func (r *hookRenderer) Name() string      { return r.name }
func (r *hookRenderer) Extension() string { return "txt" }

func (r *hookRenderer) Render(b *models.Binding, letterhead []byte) ([]byte, error) {
	if r.before != nil {
		if err := r.before(); err != nil {
			return nil, err
		}
	}
	return []byte(b.Title), nil
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	leftovers, err := filepath.Glob(filepath.Join(dir, ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestRenderFailureRollsBackNumber(t *testing.T) {
	s := newTestService(t, 1)
	seed(t, s)
	ctx := context.Background()
	s.formats.Register(&hookRenderer{name: "broken", before: func() error { return errors.New("font missing") }})
	inv := addInvoice(t, s, "Acme", day(2024, 6, 1))

	report, err := s.Generate(ctx, Request{Criteria: june(), Format: "broken"})
	require.NoError(t, err)
	require.Len(t, report.Failed, 1)
	assert.ErrorIs(t, report.Err(), models.ErrRender)
	var renderErr *models.RenderError
	require.True(t, errors.As(report.Failed[0].Err, &renderErr))
	assert.Equal(t, "broken", renderErr.Format)

	reloaded, err := s.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.Numbered())
	assert.Equal(t, models.InvoiceDraft, reloaded.Status)
	assert.Nil(t, reloaded.GeneratedPath)

	entries, err := os.ReadDir(s.cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	report, err = s.Generate(ctx, Request{Criteria: june(), Format: "txt"})
	require.NoError(t, err)
	require.Len(t, report.Succeeded, 1)
	assert.Equal(t, "AC-1", report.Succeeded[0].Number)
}

func TestWriteFailureRollsBackNumber(t *testing.T) {
	s := newTestService(t, 1)
	seed(t, s)
	ctx := context.Background()
	dir := s.cfg.OutputDir

	// Swap the output directory for a plain file once rendering starts, so
	// the temp file cannot be created.
	s.formats.Register(&hookRenderer{name: "unwritable", before: func() error {
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
		return os.WriteFile(dir, []byte("not a directory"), 0o644)
	}})
	inv := addInvoice(t, s, "Acme", day(2024, 6, 1))

	report, err := s.Generate(ctx, Request{Criteria: june(), Format: "unwritable"})
	require.NoError(t, err)
	require.Len(t, report.Failed, 1)
	assert.ErrorIs(t, report.Err(), models.ErrIO)

	reloaded, err := s.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.Numbered())
	assert.Equal(t, models.InvoiceDraft, reloaded.Status)

	require.NoError(t, os.Remove(dir))
	report, err = s.Generate(ctx, Request{Criteria: june(), Format: "txt"})
	require.NoError(t, err)
	require.Len(t, report.Succeeded, 1)
	assert.Equal(t, "AC-1", report.Succeeded[0].Number)
	assertNoTempFiles(t, dir)
}

func TestGenerateUnsupportedFormat(t *testing.T) {
	s := newTestService(t, 1)
	_, err := s.Generate(context.Background(), Request{Criteria: june(), Format: "docx"})
	assert.ErrorIs(t, err, models.ErrUnsupportedFormat)
}

func TestGenerateWithWorkersIsGapFree(t *testing.T) {
	s := newTestService(t, 4)
	seed(t, s)
	ctx := context.Background()

	const n = 12
	for i := 0; i < n; i++ {
		addInvoice(t, s, []string{"Acme", "Beta"}[i%2], day(2024, 6, 1+i))
	}

	report, err := s.Generate(ctx, Request{Criteria: june(), Format: "html"})
	require.NoError(t, err)
	require.NoError(t, report.Err())
	require.Len(t, report.Succeeded, n)

	var seqs []int64
	for i, o := range report.Succeeded {
		assert.Equal(t, int64(i+1), o.Ref.ID, "report keeps selection order")
		inv, err := s.GetInvoice(ctx, o.Ref.ID)
		require.NoError(t, err)
		seqs = append(seqs, *inv.NumberSeq)
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	for i, seq := range seqs {
		assert.Equal(t, int64(i+1), seq)
	}
}

func TestGenerateTimesheets(t *testing.T) {
	s := newTestService(t, 1)
	seed(t, s)
	ctx := context.Background()

	ts, err := s.AddTimesheet(ctx, TimesheetInput{
		Date:        day(2024, 6, 3),
		Employee:    "Kim",
		Client:      "Acme",
		Description: "June support",
		Template:    "basic",
		Content:     "03/Jun/2024 | 4 | migrations\n04/Jun/2024 | 1.5 | review",
	})
	require.NoError(t, err)
	_, err = s.AddTimesheet(ctx, TimesheetInput{Date: day(2024, 6, 4), Employee: "Lee", Client: "Acme", Description: "x", Template: "basic"})
	require.NoError(t, err)

	kim := "Kim"
	c := Criteria{Kind: models.KindTimesheet, ID: models.NoID, From: day(2024, 6, 1), To: day(2024, 6, 30), Employee: &kim}
	report, err := s.Generate(ctx, Request{Criteria: c, Format: "txt"})
	require.NoError(t, err)
	require.Len(t, report.Succeeded, 1)
	assert.Equal(t, filepath.Join(s.cfg.OutputDir, "timesheet-1.txt"), report.Succeeded[0].Path)

	body, err := os.ReadFile(report.Succeeded[0].Path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "5.50")
	assert.Contains(t, string(body), "migrations")

	reloaded, err := s.GetTimesheet(ctx, ts.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Generated())
}

func TestArchiveFailureIsNotAGenerationFailure(t *testing.T) {
	s := newTestService(t, 1, WithArchive(&memArchive{err: errors.New("offline")}))
	seed(t, s)
	addInvoice(t, s, "Acme", day(2024, 6, 1))

	report, err := s.Generate(context.Background(), Request{Criteria: june(), Format: "txt"})
	require.NoError(t, err)
	assert.Len(t, report.Succeeded, 1)
	assert.NoError(t, report.Err())
}

func TestMissingArtifacts(t *testing.T) {
	s := newTestService(t, 1)
	seed(t, s)
	ctx := context.Background()
	addInvoice(t, s, "Acme", day(2024, 6, 1))
	addInvoice(t, s, "Acme", day(2024, 6, 2))

	report, err := s.Generate(ctx, Request{Criteria: june(), Format: "txt"})
	require.NoError(t, err)
	require.NoError(t, os.Remove(report.Succeeded[1].Path))

	missing, err := s.MissingArtifacts(ctx)
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "AC-2", missing[0].Number())

	// Regenerating puts the artifact back under the same number.
	report, err = s.Generate(ctx, Request{Criteria: june(), Format: "txt"})
	require.NoError(t, err)
	require.Len(t, report.Succeeded, 1)
	assert.Equal(t, "AC-2", report.Succeeded[0].Number)
}
