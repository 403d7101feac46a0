package billing

import (
	"fmt"
	"strings"

	"github.com/invoicing/backend/internal/domain/billing"
	"github.com/invoicing/backend/internal/domain/identity"
	"github.com/invoicing/backend/internal/domain/partner"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// buildInvoiceDocument flattens the aggregate and its parties into the
// renderer's input
func buildInvoiceDocument(inv *billing.Invoice, org *identity.Organization, client *partner.Client) InvoiceDocument {
	lines := make([]DocumentLine, 0, len(inv.Items))
	for i := range inv.Items {
		it := &inv.Items[i]
		lines = append(lines, DocumentLine{
			Description:     it.Description,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			DiscountPercent: it.DiscountPercent,
			TaxRate:         it.TaxRate,
			Total:           it.Total(),
		})
	}
	return InvoiceDocument{
		InvoiceNumber: inv.InvoiceNumber,
		Status:        inv.Status.String(),
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		Currency:      inv.Currency,
		OrgName:       org.Name,
		OrgAddress:    org.FullAddress(),
		OrgEmail:      org.Email,
		OrgPhone:      org.Phone,
		OrgTaxID:      org.TaxID,
		LogoURL:       org.LogoURL,
		ClientName:    client.DisplayName(),
		ClientAddress: client.FullAddress(),
		ClientEmail:   client.Email,
		ClientTaxID:   client.TaxID,
		Lines:         lines,
		Subtotal:      inv.Subtotal,
		DiscountTotal: inv.DiscountTotal,
		TaxTotal:      inv.TaxTotal,
		Total:         inv.Total,
		AmountPaid:    inv.AmountPaid,
		BalanceDue:    inv.BalanceDue(),
		Notes:         inv.Notes,
		Terms:         inv.Terms,
		Footer:        inv.Footer,
	}
}

// renderInvoiceEmailHTML produces the notification body. Kept deliberately
// simple; the attached PDF is the document of record.
func renderInvoiceEmailHTML(inv *billing.Invoice, org *identity.Organization, client *partner.Client) string {
	var b strings.Builder
	b.WriteString("<div style=\"font-family:sans-serif;max-width:600px\">")
	b.WriteString(fmt.Sprintf("<h2>Invoice %s</h2>", inv.InvoiceNumber))
	b.WriteString(fmt.Sprintf("<p>Hi %s,</p>", client.Name))
	b.WriteString(fmt.Sprintf("<p>%s has sent you an invoice for <strong>%s</strong>, due on %s.</p>",
		org.Name, formatAmount(inv.Total, inv.Currency), inv.DueDate.Format("January 2, 2006")))
	if inv.Notes != "" {
		b.WriteString(fmt.Sprintf("<p>%s</p>", inv.Notes))
	}
	b.WriteString("<p>The invoice is attached as a PDF.</p>")
	b.WriteString(fmt.Sprintf("<p>Thanks,<br>%s</p>", org.Name))
	b.WriteString("</div>")
	return b.String()
}

// formatAmount renders a total through the Money value object so email
// bodies show the same "0.00 USD" shape as the PDF
func formatAmount(d decimal.Decimal, currency string) string {
	m, err := valueobject.NewMoney(d, valueobject.Currency(currency))
	if err != nil {
		return d.StringFixed(2) + " " + currency
	}
	return m.String()
}
