// Package pdf renders invoice documents with gofpdf.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	billingapp "github.com/invoicing/backend/internal/application/billing"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
	"github.com/jung-kurt/gofpdf/v2"
	"github.com/shopspring/decimal"
)

// Ensure GofpdfRenderer implements PDFRenderer
var _ billingapp.PDFRenderer = (*GofpdfRenderer)(nil)

// GofpdfRenderer renders invoices as A4 PDFs
type GofpdfRenderer struct{}

// NewGofpdfRenderer creates a new GofpdfRenderer
func NewGofpdfRenderer() *GofpdfRenderer {
	return &GofpdfRenderer{}
}

// RenderInvoice renders the document into PDF bytes
func (r *GofpdfRenderer) RenderInvoice(ctx context.Context, doc billingapp.InvoiceDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(120, 10, doc.OrgName, "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(60, 10, "INVOICE", "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, line := range splitLines(doc.OrgAddress) {
		pdf.CellFormat(120, 4.5, line, "", 1, "L", false, 0, "")
	}
	if doc.OrgEmail != "" {
		pdf.CellFormat(120, 4.5, doc.OrgEmail, "", 1, "L", false, 0, "")
	}
	if doc.OrgPhone != "" {
		pdf.CellFormat(120, 4.5, doc.OrgPhone, "", 1, "L", false, 0, "")
	}
	if doc.OrgTaxID != "" {
		pdf.CellFormat(120, 4.5, "Tax ID: "+doc.OrgTaxID, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Invoice metadata
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "Number:", "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	number := doc.InvoiceNumber
	if number == "" {
		number = "(draft)"
	}
	pdf.CellFormat(60, 6, number, "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "Issue date:", "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(60, 6, doc.IssueDate.Format("2006-01-02"), "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "Status:", "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(60, 6, strings.ToUpper(doc.Status), "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "Due date:", "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(60, 6, doc.DueDate.Format("2006-01-02"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Bill-to block
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(180, 7, "Bill To", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(180, 6, doc.ClientName, "LR", 1, "L", false, 0, "")
	for _, line := range splitLines(doc.ClientAddress) {
		pdf.CellFormat(180, 5, line, "LR", 1, "L", false, 0, "")
	}
	bottom := doc.ClientEmail
	if doc.ClientTaxID != "" {
		if bottom != "" {
			bottom += "  "
		}
		bottom += "Tax ID: " + doc.ClientTaxID
	}
	pdf.CellFormat(180, 6, bottom, "LRB", 1, "L", false, 0, "")
	pdf.Ln(6)

	// Line items table
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(70, 7, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 7, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(28, 7, "Unit Price", "1", 0, "C", true, 0, "")
	pdf.CellFormat(17, 7, "Disc %", "1", 0, "C", true, 0, "")
	pdf.CellFormat(17, 7, "Tax %", "1", 0, "C", true, 0, "")
	pdf.CellFormat(28, 7, "Total", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, line := range doc.Lines {
		desc := line.Description
		if len(desc) > 45 {
			desc = desc[:42] + "..."
		}
		pdf.CellFormat(70, 6, desc, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, line.Quantity.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(28, 6, money(line.UnitPrice, doc.Currency), "1", 0, "R", false, 0, "")
		pdf.CellFormat(17, 6, line.DiscountPercent.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(17, 6, line.TaxRate.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(28, 6, money(line.Total, doc.Currency), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// Totals block, right aligned
	r.totalRow(pdf, "Subtotal", money(doc.Subtotal, doc.Currency), false)
	if doc.DiscountTotal.IsPositive() {
		r.totalRow(pdf, "Discount", "-"+money(doc.DiscountTotal, doc.Currency), false)
	}
	r.totalRow(pdf, "Tax", money(doc.TaxTotal, doc.Currency), false)
	r.totalRow(pdf, "Total", money(doc.Total, doc.Currency), true)
	if doc.AmountPaid.IsPositive() {
		r.totalRow(pdf, "Amount Paid", money(doc.AmountPaid, doc.Currency), false)
		r.totalRow(pdf, "Balance Due", money(doc.BalanceDue, doc.Currency), true)
	}
	pdf.Ln(6)

	// Notes, terms and footer
	r.textBlock(pdf, "Notes", doc.Notes)
	r.textBlock(pdf, "Terms", doc.Terms)
	if doc.Footer != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "I", 8)
		pdf.MultiCell(180, 4, doc.Footer, "", "C", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *GofpdfRenderer) totalRow(pdf *gofpdf.Fpdf, label, value string, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	pdf.SetFont("Arial", style, 10)
	pdf.CellFormat(124, 6, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(28, 6, label, "", 0, "R", false, 0, "")
	pdf.CellFormat(28, 6, value, "", 1, "R", false, 0, "")
}

func (r *GofpdfRenderer) textBlock(pdf *gofpdf.Fpdf, title, body string) {
	if body == "" {
		return
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(180, 6, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.MultiCell(180, 4.5, body, "", "L", false)
	pdf.Ln(2)
}

// money formats an amount through the Money value object so the PDF shows
// the same "0.00 USD" shape as the rest of the system
func money(d decimal.Decimal, currency string) string {
	m, err := valueobject.NewMoney(d, valueobject.Currency(currency))
	if err != nil {
		return d.StringFixed(2) + " " + currency
	}
	return m.String()
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
