package formatter

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/jung-kurt/gofpdf"

	"github.com/jesses-code-adventures/invoice/internal/models"
)

const (
	pageWidth   = 190.0
	leftMargin  = 10.0
	labelWidth  = 45.0
	lineHeight  = 6.0
	letterheadH = 35.0
)

type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) Name() string      { return "pdf" }
func (r *PDFRenderer) Extension() string { return "pdf" }

func (r *PDFRenderer) Render(b *models.Binding, letterhead []byte) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Pinned dates and a sorted catalog keep output byte-identical across runs.
	pdf.SetCreationDate(b.Date)
	pdf.SetModificationDate(b.Date)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(b.Title, true)
	pdf.SetCreator("invoice", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	if len(letterhead) > 0 {
		if err := drawLetterhead(pdf, letterhead); err != nil {
			return nil, err
		}
	}

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(pageWidth, 10, tr(b.Title), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for _, slot := range b.HeaderSlots() {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(labelWidth, lineHeight, tr(models.SlotLabel(slot)+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(pageWidth-labelWidth, lineHeight, tr(b.Field(slot)), "", "L", false)
	}

	if len(b.Table.Rows) > 0 {
		pdf.Ln(6)
		drawTable(pdf, b.Table, tr)
	}

	if totals := b.TotalSlots(); len(totals) > 0 {
		pdf.Ln(5)
		pdf.SetFont("Arial", "B", 11)
		for _, slot := range totals {
			pdf.CellFormat(pageWidth-50, 8, tr(models.SlotLabel(slot)+":"), "", 0, "R", false, 0, "")
			pdf.CellFormat(50, 8, tr(b.Field(slot)), "", 1, "R", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func drawLetterhead(pdf *gofpdf.Fpdf, letterhead []byte) error {
	imageType, err := letterheadType(letterhead)
	if err != nil {
		return err
	}
	opts := gofpdf.ImageOptions{ImageType: imageType}
	info := pdf.RegisterImageOptionsReader("letterhead", opts, bytes.NewReader(letterhead))
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("letterhead: %w", err)
	}

	w := pageWidth
	h := w * info.Height() / info.Width()
	if h > letterheadH {
		h = letterheadH
		w = h * info.Width() / info.Height()
	}
	pdf.ImageOptions("letterhead", leftMargin, 10, w, h, false, opts, 0, "")
	pdf.SetY(10 + h + 5)
	return nil
}

func letterheadType(data []byte) (string, error) {
	switch http.DetectContentType(data) {
	case "image/png":
		return "PNG", nil
	case "image/jpeg":
		return "JPG", nil
	case "image/gif":
		return "GIF", nil
	}
	return "", fmt.Errorf("letterhead must be a PNG, JPEG or GIF image")
}

func drawTable(pdf *gofpdf.Fpdf, t models.Table, tr func(string) string) {
	widths := columnWidths(len(t.Headers), t.Wide)

	pdf.SetFont("Arial", "B", 9)
	for i, h := range t.Headers {
		pdf.CellFormat(widths[i], 8, tr(h), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range t.Rows {
		for i, cell := range row {
			align := "R"
			if i == t.Wide {
				align = "L"
			}
			pdf.CellFormat(widths[i], 7, tr(cell), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// columnWidths gives the free-text column whatever the fixed-width columns leave.
func columnWidths(n, wide int) []float64 {
	widths := make([]float64, n)
	if n == 0 {
		return widths
	}
	const fixed = 28.0
	rest := pageWidth - fixed*float64(n-1)
	for i := range widths {
		widths[i] = fixed
	}
	if wide >= 0 && wide < n && rest >= fixed {
		widths[wide] = rest
		return widths
	}
	for i := range widths {
		widths[i] = pageWidth / float64(n)
	}
	return widths
}
