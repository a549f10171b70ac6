package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t      *testing.T
	dbPath string
	outDir string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ARCHIVE_S3_BUCKET", "")
	t.Setenv("GENERATE_WORKERS", "1")
	t.Setenv("LOG_LEVEL", "error")
	return &cli{t: t, dbPath: filepath.Join(dir, "test.db"), outDir: filepath.Join(dir, "out")}
}

// run executes one invocation on a fresh command tree so flag values never
// carry over between runs.
func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	out, _, err := c.runApp(args...)
	return out, err
}

func (c *cli) runApp(args ...string) (string, *app, error) {
	c.t.Helper()
	var out bytes.Buffer
	a := newApp()
	rootCmd := a.newRootCmd()
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--file", c.dbPath, "-o", c.outDir}, args...))
	err := a.execute(context.Background(), rootCmd)
	return out.String(), a, err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, "invoice %v\n%s", args, out)
	return out
}

func setupBilling(c *cli) {
	c.mustRun("init")
	c.mustRun("account", "add", "-n", "Acme", "-s", "R. Rao", "-a", "1 Main St", "-p", "555-0100",
		"-e", "billing@acme.test", "--bank-details", "First Bank 0001", "--prefix", "AC-")
	c.mustRun("client", "add", "-n", "Beta", "-a", "Acme", "-b", "inr", "--address", "2 Side St", "-p", "15")
	c.mustRun("template", "add", "-n", "T1", "-d", "Standard")
}

func TestIntegrationInvoiceGeneration(t *testing.T) {
	c := newCLI(t)
	setupBilling(c)

	out := c.mustRun("timesheet", "add", "-d", "01/Jun/2024", "-e", "Ravi", "-c", "Beta", "-s", "Site visit", "-t", "T1")
	assert.Contains(t, out, "Added timesheet 1")

	out = c.mustRun("invoice", "add", "--client", "Beta", "--template", "T1", "--particulars", "June work", "--date", "01/Jun/2024")
	assert.Contains(t, out, "Added invoice 1")
	c.mustRun("invoice", "item", "add", "1", "-s", "Consulting", "-q", "2", "-u", "1500")

	artifact := filepath.Join(c.outDir, "AC-1.pdf")

	t.Run("first generation issues AC-1", func(t *testing.T) {
		out := c.mustRun("invoice", "generate", "--from", "01/Jun/2024", "--to", "30/Jun/2024", "--format", "pdf")
		assert.Contains(t, out, "Generated invoice 1 (AC-1)")
		assert.Contains(t, out, "1 generated, 0 skipped, 0 failed")
		assert.FileExists(t, artifact)

		out = c.mustRun("invoice", "show", "1")
		assert.Contains(t, out, "AC-1")
		assert.Contains(t, out, "generated")
	})

	t.Run("rerun without overwrite skips", func(t *testing.T) {
		before, err := os.ReadFile(artifact)
		require.NoError(t, err)

		out := c.mustRun("invoice", "generate", "--from", "01/Jun/2024", "--to", "30/Jun/2024", "--format", "pdf")
		assert.Contains(t, out, "Skipped invoice 1")
		assert.Contains(t, out, "0 generated, 1 skipped, 0 failed")

		after, err := os.ReadFile(artifact)
		require.NoError(t, err)
		assert.Equal(t, before, after)

		entries, err := os.ReadDir(c.outDir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("overwrite keeps the number", func(t *testing.T) {
		out := c.mustRun("invoice", "generate", "--id", "1", "--overwrite", "--format", "pdf")
		assert.Contains(t, out, "Generated invoice 1 (AC-1)")
	})

	t.Run("cancelled number is never reused", func(t *testing.T) {
		out := c.mustRun("invoice", "cancel", "1")
		assert.Contains(t, out, "Cancelled invoice 1 (AC-1)")

		c.mustRun("invoice", "add", "-c", "Beta", "-t", "T1", "-p", "July work", "-d", "02/Jun/2024")
		out = c.mustRun("invoice", "generate", "-f", "01/Jun/2024", "-t", "30/Jun/2024", "--format", "html")
		assert.Contains(t, out, "Generated invoice 2 (AC-2)")
		assert.FileExists(t, filepath.Join(c.outDir, "AC-2.html"))
	})

	t.Run("numbered invoices cannot be deleted", func(t *testing.T) {
		_, err := c.run("invoice", "rm", "2")
		assert.Error(t, err)
	})

	t.Run("unsupported format is rejected before any record", func(t *testing.T) {
		_, err := c.run("invoice", "generate", "-f", "a", "--format", "docx")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "docx")
	})

	t.Run("missing artifacts are reported", func(t *testing.T) {
		out := c.mustRun("invoice", "check")
		assert.Contains(t, out, "All generated invoices are present")

		require.NoError(t, os.Remove(filepath.Join(c.outDir, "AC-2.html")))
		out, err := c.run("invoice", "check")
		assert.Error(t, err)
		assert.Contains(t, out, "Missing invoice 2 (AC-2)")

		c.mustRun("invoice", "generate", "--id", "2", "--overwrite", "--format", "html")
		c.mustRun("invoice", "check")
	})

	t.Run("failed commands still close the store", func(t *testing.T) {
		_, a, err := c.runApp("invoice", "generate", "--id", "99", "--format", "txt")
		require.Error(t, err)
		assert.Nil(t, a.db)

		_, a, err = c.runApp("invoice", "show", "1")
		require.NoError(t, err)
		assert.Nil(t, a.db)
	})
}

func TestIntegrationTimesheets(t *testing.T) {
	c := newCLI(t)
	setupBilling(c)

	source := filepath.Join(t.TempDir(), "june.txt")
	require.NoError(t, os.WriteFile(source, []byte("03/Jun/2024 | 4.5 | design review\n04/Jun/2024 | 1 | call\n\ntravel day\n"), 0o644))

	out := c.mustRun("timesheet", "parse", source)
	assert.Contains(t, out, "design review")
	assert.Contains(t, out, "5.50")

	out = c.mustRun("timesheet", "import", source, "-d", "05/Jun/2024", "-e", "Ravi", "-c", "Beta", "-s", "June", "-t", "T1")
	assert.Contains(t, out, "3 entries, 5.50 hours")

	out = c.mustRun("timesheet", "ls", "-f", "a", "-e", "Ravi")
	assert.Contains(t, out, "Ravi")

	out = c.mustRun("timesheet", "generate", "-f", "01/Jun/2024", "-t", "30/Jun/2024", "--format", "txt")
	assert.Contains(t, out, "Generated timesheet 1")
	content, err := os.ReadFile(filepath.Join(c.outDir, "timesheet-1.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "5.50")

	out, err = c.run("timesheet", "generate", "--id", "9", "--format", "txt")
	assert.Error(t, err)
	assert.NotContains(t, out, "Generated")
}

func TestIntegrationVersion(t *testing.T) {
	c := newCLI(t)
	out := c.mustRun("-v")
	assert.Contains(t, out, "invoice dev")
	assert.Contains(t, out, "database schema version")

	out = c.mustRun("db", "info")
	assert.Contains(t, out, "Database URL: "+c.dbPath)
	assert.Contains(t, out, "0 draft, 0 generated, 0 cancelled")
}
