package export

import (
	"bytes"
	"fmt"
	"strings"

	"recipebox/internal/models"

	"github.com/jung-kurt/gofpdf"
)

const (
	PDFFileName  = "shopping_cart.pdf"
	TextFileName = "shopping_cart.txt"

	title        = "Shopping list"
	emptyMessage = "The shopping cart is empty."
)

// FormatRow renders one aggregate row as "<name> - <amount> <unit>".
func FormatRow(row models.ShoppingListRow) string {
	return fmt.Sprintf("%s - %d %s", row.Name, row.TotalAmount, row.MeasurementUnit)
}

// RenderPDF formats aggregate rows into an A4 PDF, one row per line,
// starting a new page when the current one is full. Pure formatting, no
// recomputation of amounts.
func RenderPDF(rows []models.ShoppingListRow) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, title, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 14)
	if len(rows) == 0 {
		pdf.CellFormat(0, 8, emptyMessage, "", 1, "L", false, 0, "")
	}
	for _, row := range rows {
		pdf.CellFormat(0, 8, FormatRow(row), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderText formats aggregate rows as plain text, one row per line.
func RenderText(rows []models.ShoppingListRow) []byte {
	var b strings.Builder
	b.WriteString(title + "\n\n")

	if len(rows) == 0 {
		b.WriteString(emptyMessage + "\n")
		return []byte(b.String())
	}

	for _, row := range rows {
		b.WriteString(FormatRow(row))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
