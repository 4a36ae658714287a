package shoppinglist

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/go-pdf/fpdf"
)

const (
	Title       = "Shopping list"
	emptyNotice = "Your shopping cart is empty."
	fontFamily  = "shopping"
)

// FormatLine renders a single numbered report entry, e.g. "1. eggs - 5 pcs"
func FormatLine(n int, line Line) string {
	return fmt.Sprintf("%d. %s - %d %s", n, line.Name, line.Amount, line.Unit)
}

// WriteText writes the report as plain text, one entry per line
func WriteText(w io.Writer, lines []Line) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n\n", Title)
	if len(lines) == 0 {
		fmt.Fprintln(bw, emptyNotice)
	}
	for i, line := range lines {
		fmt.Fprintln(bw, FormatLine(i+1, line))
	}
	return bw.Flush()
}

// Renderer produces PDF reports. Without a TrueType font only
// characters of the cp1252 code page are printable.
type Renderer struct {
	font []byte
}

// NewRenderer loads the optional TrueType font at fontPath
func NewRenderer(fontPath string) (*Renderer, error) {
	if fontPath == "" {
		return &Renderer{}, nil
	}
	font, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read shopping list font: %w", err)
	}
	return &Renderer{font: font}, nil
}

// WritePDF renders the report as a single PDF document
func (r *Renderer) WritePDF(w io.Writer, lines []Line) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(Title, true)

	family := "Helvetica"
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	if len(r.font) > 0 {
		pdf.AddUTF8FontFromBytes(fontFamily, "", r.font)
		family = fontFamily
		translate = func(s string) string { return s }
	}

	pdf.AddPage()
	pdf.SetFont(family, "", 24)
	pdf.CellFormat(0, 14, translate(Title), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont(family, "", 14)
	if len(lines) == 0 {
		pdf.CellFormat(0, 9, translate(emptyNotice), "", 1, "L", false, 0, "")
	}
	for i, line := range lines {
		pdf.CellFormat(0, 9, translate(FormatLine(i+1, line)), "", 1, "L", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render shopping list: %w", err)
	}
	return pdf.Output(w)
}
