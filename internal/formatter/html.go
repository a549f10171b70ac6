package formatter

import (
	"encoding/base64"
	"fmt"
	stdhtml "html"
	"net/http"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/jesses-code-adventures/invoice/internal/models"
)

// HTMLRenderer lays the binding out as markdown and renders it into a
// complete HTML page.
type HTMLRenderer struct{}

func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{}
}

func (r *HTMLRenderer) Name() string      { return "html" }
func (r *HTMLRenderer) Extension() string { return "html" }

func (r *HTMLRenderer) Render(b *models.Binding, letterhead []byte) ([]byte, error) {
	md, err := bindingMarkdown(b, letterhead)
	if err != nil {
		return nil, err
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: b.Title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML([]byte(md), p, renderer), nil
}

func bindingMarkdown(b *models.Binding, letterhead []byte) (string, error) {
	var sb strings.Builder

	if len(letterhead) > 0 {
		mime := http.DetectContentType(letterhead)
		if !strings.HasPrefix(mime, "image/") {
			return "", fmt.Errorf("letterhead is not an image (%s)", mime)
		}
		fmt.Fprintf(&sb, "![letterhead](data:%s;base64,%s)\n\n", mime, base64.StdEncoding.EncodeToString(letterhead))
	}

	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(b.Title))

	if slots := b.HeaderSlots(); len(slots) > 0 {
		sb.WriteString("| | |\n|---|---|\n")
		for _, slot := range slots {
			fmt.Fprintf(&sb, "| **%s** | %s |\n", models.SlotLabel(slot), escapeCell(b.Field(slot)))
		}
		sb.WriteString("\n")
	}

	if len(b.Table.Rows) > 0 {
		sb.WriteString("|")
		for _, h := range b.Table.Headers {
			fmt.Fprintf(&sb, " %s |", escapeCell(h))
		}
		sb.WriteString("\n|")
		for i := range b.Table.Headers {
			if i == b.Table.Wide {
				sb.WriteString("---|")
			} else {
				sb.WriteString("---:|")
			}
		}
		sb.WriteString("\n")
		for _, row := range b.Table.Rows {
			sb.WriteString("|")
			for _, cell := range row {
				fmt.Fprintf(&sb, " %s |", escapeCell(cell))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	for _, slot := range b.TotalSlots() {
		fmt.Fprintf(&sb, "**%s:** %s\n\n", models.SlotLabel(slot), escapeMarkdown(b.Field(slot)))
	}

	return sb.String(), nil
}

// escapeMarkdown neutralises markdown syntax first and HTML second, so the
// entities HTML escaping introduces are left intact.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "#", `\#`)
	return stdhtml.EscapeString(r.Replace(s))
}

func escapeCell(s string) string {
	s = escapeMarkdown(s)
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "<br>")
}
