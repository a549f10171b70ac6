package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/jesses-code-adventures/invoice/internal/models"
)

type TextRenderer struct{}

func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

func (r *TextRenderer) Name() string      { return "txt" }
func (r *TextRenderer) Extension() string { return "txt" }

// Render ignores the letterhead; plain text has nowhere to put it.
func (r *TextRenderer) Render(b *models.Binding, _ []byte) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, b.Title)
	fmt.Fprintln(&buf, strings.Repeat("=", len(b.Title)))
	fmt.Fprintln(&buf)

	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	for _, slot := range b.HeaderSlots() {
		lines := strings.Split(b.Field(slot), "\n")
		fmt.Fprintf(w, "%s:\t%s\n", models.SlotLabel(slot), lines[0])
		for _, line := range lines[1:] {
			fmt.Fprintf(w, "\t%s\n", line)
		}
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}

	if len(b.Table.Rows) > 0 {
		fmt.Fprintln(&buf)
		w = tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, strings.Join(b.Table.Headers, "\t"))
		for _, row := range b.Table.Rows {
			fmt.Fprintln(w, strings.Join(row, "\t"))
		}
		if err := w.Flush(); err != nil {
			return nil, err
		}
	}

	if totals := b.TotalSlots(); len(totals) > 0 {
		fmt.Fprintln(&buf)
		w = tabwriter.NewWriter(&buf, 0, 4, 2, ' ', tabwriter.AlignRight)
		for _, slot := range totals {
			fmt.Fprintf(w, "%s:\t%s\t\n", models.SlotLabel(slot), b.Field(slot))
		}
		if err := w.Flush(); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}
