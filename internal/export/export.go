// Package export renders an aggregated shopping list into downloadable files.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/franciscosanchezn/gin-recipes-api/internal/services"
)

const title = "Shopping list:"

// Renderer writes shopping list lines in one file format
type Renderer interface {
	ContentType() string
	Extension() string
	Render(w io.Writer, lines []services.ShoppingListLine) error
}

// ForFormat returns the renderer registered for name. An empty name selects PDF.
func ForFormat(name string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "pdf":
		return PDF{}, nil
	case "txt", "text":
		return Text{}, nil
	default:
		return nil, fmt.Errorf("unsupported shopping list format %q", name)
	}
}

// Text renders one "name (unit) - total" line per ingredient
type Text struct{}

func (Text) ContentType() string { return "text/plain; charset=utf-8" }
func (Text) Extension() string   { return "txt" }

func (Text) Render(w io.Writer, lines []services.ShoppingListLine) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, title)
	for _, line := range lines {
		fmt.Fprintln(bw, line.String())
	}
	return bw.Flush()
}

// PDF renders the list on A4 pages with the core Helvetica font
type PDF struct{}

func (PDF) ContentType() string { return "application/pdf" }
func (PDF) Extension() string   { return "pdf" }

func (PDF) Render(w io.Writer, lines []services.ShoppingListLine) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Shopping list", true)
	pdf.AddPage()

	// core fonts are cp1252, so non-ASCII names go through the translator
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	for _, line := range lines {
		pdf.CellFormat(0, 8, tr(line.String()), "", 1, "L", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render shopping list pdf: %w", err)
	}
	return pdf.Output(w)
}
