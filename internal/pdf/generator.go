package pdf

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/billboards-service/internal/model"
)

const unicodeFont = "ContractFont"

type Generator struct {
	fontName string
	fontData []byte
}

// NewGenerator renders with the TTF at fontPath when given, so that Arabic
// names print. Without it the core Helvetica font is used.
func NewGenerator(fontPath string) (*Generator, error) {
	if fontPath == "" {
		return &Generator{fontName: "Helvetica"}, nil
	}
	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("font data is empty")
	}
	return &Generator{fontName: unicodeFont, fontData: data}, nil
}

func (g *Generator) Generate(doc model.ContractDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)

	text := func(s string) string { return s }
	if g.fontData != nil {
		pdf.AddUTF8FontFromBytes(g.fontName, "", g.fontData)
		pdf.AddUTF8FontFromBytes(g.fontName, "B", g.fontData)
	} else {
		text = pdf.UnicodeTranslatorFromDescriptor("")
	}
	w := writer{pdf: pdf, family: g.fontName, text: text}

	pdf.AddPage()
	c := doc.Contract

	w.font("B", 15)
	w.line(0, 10, fmt.Sprintf("Billboard rental contract No. %d", c.Number), "C")
	w.font("", 10)
	w.line(0, 6, "Issued "+formatDate(doc.IssuedAt), "C")
	pdf.Ln(4)

	w.section("Parties")
	w.line(0, 6, "Lessor: "+safeValue(doc.CompanyName), "L")
	w.line(0, 6, "Lessee: "+safeValue(c.CustomerName), "L")
	if doc.Customer != nil {
		w.line(0, 6, "Company: "+safeValue(doc.Customer.Company), "L")
		w.line(0, 6, "Phone: "+safeValue(doc.Customer.Phone), "L")
	}
	if c.AdType != "" {
		w.line(0, 6, "Advertisement: "+c.AdType, "L")
	}
	pdf.Ln(2)

	w.section("Rental period")
	period := fmt.Sprintf("From %s to %s", formatDate(c.StartDate), formatDate(c.EndDate))
	if doc.DurationText != "" {
		period += " (" + doc.DurationText + ")"
	}
	w.line(0, 6, period, "L")
	pdf.Ln(2)

	w.section("Billboards")
	widths := []float64{15, 65, 35, 20, 15, 30}
	w.row([]string{"No.", "Name", "City", "Size", "Level", "Landmark"}, widths, true)
	for _, b := range c.Billboards {
		w.row([]string{
			fmt.Sprintf("%d", b.ID),
			b.DisplayName(),
			safeValue(b.City),
			safeValue(b.Size),
			safeValue(b.Level),
			safeValue(b.Landmark),
		}, widths, false)
	}
	pdf.Ln(3)

	w.section("Totals")
	w.line(0, 6, "Base total: "+formatAmount(doc.BaseTotal), "R")
	if c.Discount > 0 {
		w.line(0, 6, "Discount: "+formatAmount(c.Discount), "R")
	}
	w.font("B", 11)
	w.line(0, 6, "Total: "+formatAmount(c.RentCost), "R")
	w.font("", 10)
	w.line(0, 6, fmt.Sprintf("Paid: %s, remaining: %s", formatAmount(c.TotalPaid), formatAmount(c.Remaining())), "R")
	pdf.Ln(3)

	if len(doc.Schedule) > 0 {
		w.section("Payment schedule")
		widths := []float64{15, 50, 50, 65}
		w.row([]string{"#", "Amount", "Type", "Due date"}, widths, true)
		for _, p := range doc.Schedule {
			w.row([]string{
				fmt.Sprintf("%d", p.Index),
				formatAmount(p.Amount),
				string(p.PaymentType),
				formatDate(p.DueDate),
			}, widths, false)
		}
		pdf.Ln(3)
	}

	pdf.Ln(6)
	w.section("Signatures")
	w.line(0, 8, "Lessor: ______________________ /"+safeValue(doc.CompanyName)+"/", "L")
	w.line(0, 8, "Lessee: ______________________ /"+safeValue(c.CustomerName)+"/", "L")

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type writer struct {
	pdf    *gofpdf.Fpdf
	family string
	text   func(string) string
}

func (w writer) font(style string, size float64) {
	w.pdf.SetFont(w.family, style, size)
}

func (w writer) line(width, height float64, s, align string) {
	w.pdf.CellFormat(width, height, w.text(s), "", 1, align, false, 0, "")
}

func (w writer) section(title string) {
	w.font("B", 12)
	w.line(0, 8, title, "L")
	w.font("", 10)
}

func (w writer) row(cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	w.font(style, 9)
	for i, col := range cols {
		w.pdf.CellFormat(widths[i], 7, w.text(col), "1", 0, "L", header, 0, "")
	}
	w.pdf.Ln(-1)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatAmount(value float64) string {
	return fmt.Sprintf("%.2f LYD", value)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}
