package formatter

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesses-code-adventures/invoice/internal/models"
)

func sampleBinding() *models.Binding {
	return &models.Binding{
		Kind:  models.KindInvoice,
		Title: "Invoice AC-1",
		Date:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Slots: []string{"number", "client.name", "client.address", "subtotal", "total", "unknown"},
		Fields: map[string]string{
			"number":         "AC-1",
			"client.name":    "Beta",
			"client.address": "4 Long Rd\nPune",
			"subtotal":       "INR 250.00",
			"total":          "INR 250.00",
			"unknown":        "",
		},
		Table: models.Table{
			Headers: []string{"#", "Description", "Qty", "Unit Price", "Amount"},
			Rows:    [][]string{{"1", "Design | build", "2.5", "100.00", "250.00"}},
			Wide:    1,
		},
	}
}

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 10))
	for x := 0; x < 40; x++ {
		img.Set(x, 5, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRegistryNamesAndLookup(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"html", "pdf", "txt"}, r.Names())

	pdf, err := r.Get("PDF")
	require.NoError(t, err)
	assert.Equal(t, "pdf", pdf.Extension())

	_, err = r.Get("docx")
	assert.ErrorIs(t, err, models.ErrUnsupportedFormat)
}

func TestTextRenderer(t *testing.T) {
	out, err := NewTextRenderer().Render(sampleBinding(), nil)
	require.NoError(t, err)

	text := string(out)
	assert.True(t, strings.HasPrefix(text, "Invoice AC-1\n============"))
	assert.Contains(t, text, "Client:")
	assert.Contains(t, text, "Pune")
	assert.Contains(t, text, "Design | build")
	assert.Contains(t, text, "INR 250.00")
	assert.Contains(t, text, "Unknown:")
}

func TestPDFRendererIsDeterministic(t *testing.T) {
	r := NewPDFRenderer()
	letterhead := samplePNG(t)

	first, err := r.Render(sampleBinding(), letterhead)
	require.NoError(t, err)
	second, err := r.Render(sampleBinding(), letterhead)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(first, []byte("%PDF-")))
	assert.Equal(t, first, second)
}

func TestPDFRendererRejectsNonImageLetterhead(t *testing.T) {
	_, err := NewPDFRenderer().Render(sampleBinding(), []byte("not an image at all"))
	assert.Error(t, err)
}

func TestHTMLRenderer(t *testing.T) {
	b := sampleBinding()
	b.Fields["client.name"] = "<Beta & Co>"

	out, err := NewHTMLRenderer().Render(b, samplePNG(t))
	require.NoError(t, err)

	page := string(out)
	assert.Contains(t, page, "<title>Invoice AC-1</title>")
	assert.Contains(t, page, "data:image/png;base64,")
	assert.Contains(t, page, "Beta")
	assert.NotContains(t, page, "<Beta")
	assert.Contains(t, page, "<table>")

	again, err := NewHTMLRenderer().Render(b, samplePNG(t))
	require.NoError(t, err)
	assert.Equal(t, out, again)
}
