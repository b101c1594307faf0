package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/nurpe/dumpster-rentals/internal/invoice"
	"github.com/nurpe/dumpster-rentals/internal/model"
)

const (
	fontName    = "Helvetica"
	displayDate = "Jan 2, 2006"
)

var dumpsterUseRules = []string{
	"Substances hazardous to health such as toxic or corrosive materials or liquids.",
	"Liquids of any kind whether contained or not.",
	"Cans, drums or other containers of any kind unless emptied, crushed and incapable of carrying any liquid.",
	"Medical waste or animal carcasses of any kind.",
	"Any material considered unsuitable for containment, e.g. malodorous waste, asbestos, paint, tires, gas bottles, fluorescent tubes, light bulbs, vehicle batteries and household appliances.",
	"Extremely heavy material such as rock, dirt or concrete. Let us know and we can help you dispose of heavy items more efficiently.",
}

// Generator renders two-page A4 invoices with the company letterhead.
type Generator struct {
	company model.Company
}

func NewGenerator(company model.Company) *Generator {
	return &Generator{company: company}
}

func (g *Generator) Invoice(c model.Contract, b invoice.Breakdown, issued time.Time) ([]byte, error) {
	pdf := g.render(c, b, issued)
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) render(c model.Contract, b invoice.Breakdown, issued time.Time) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("{nb}")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontName, "", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	number := invoice.Number(c.InvoiceNumber)
	issuedOn := issued.Format(displayDate)

	pdf.AddPage()
	g.letterhead(pdf, tr, number, issuedOn)

	pdf.SetFont(fontName, "", 10)
	summary := [][2]string{
		{"Customer:", c.Customer.Name},
		{"Phone:", c.Customer.Phone},
		{"Address:", c.WorkAddress.Address},
		{"Service:", fmt.Sprintf("%d yd dumpster", c.Dumpster.Size)},
		{"Duration:", fmt.Sprintf("%s to %s", c.StartDate.Format(displayDate), c.EndDate.Format(displayDate))},
	}
	for _, row := range summary {
		labeledLine(pdf, tr, row[0], row[1])
	}
	pdf.Ln(3)

	fix := c.FixContract.Fix
	weight := c.BaseWeight.String()
	section(pdf, tr, "Pricing & Payments:")
	numbered(pdf, tr, []string{
		fmt.Sprintf("Customer agrees to pay %s (base fee) for the %d yd. container which includes up to %s tons of materials as well as any overages incurred due to overloading or additional days requested by the Customer. Due to strict weight limitations and associated dump fees any additional materials will be billed at %s per ton above %s tons.",
			money(b.BaseFee), c.Dumpster.Size, weight, money(fix.TonsOverWeightAmount), weight),
		"Customer is responsible for any additional fees assessed by the landfill for certain items such as tires, appliances, etc.",
		fmt.Sprintf("The container rental includes use for up to %d days. If the container is kept longer than %d days there will be an additional fee of %s a day.",
			b.IncludedDays, b.IncludedDays, money(fix.DaysOverTimeAmount)),
		"Payment for all base fees as well as any known additional rental time is due upon delivery of the container. Any additional fees not paid upon delivery are due within 14 days of container pick up. Any unpaid balance after 7 days will accrue 15% interest from the date of pick up until paid in full, with a minimum late fee of $25.",
		"If paying by check and the check is returned for insufficient funds the Customer is responsible for any returned check fees.",
	})

	section(pdf, tr, "Dumpster Use:")
	pdf.SetFont(fontName, "", 9)
	pdf.MultiCell(0, 4.5, tr("1. While refuse dumpsters are in your possession, you will NOT place or allow to be placed into the dumpster:"), "", "L", false)
	for _, rule := range dumpsterUseRules {
		pdf.SetX(22)
		pdf.MultiCell(0, 4.5, tr("- "+rule), "", "L", false)
	}
	pdf.MultiCell(0, 4.5, tr("2. All refuse shall remain within the confines of the dumpster and shall not exceed the top or sides. The weight of the refuse shall be dispersed equally within the dumpster."), "", "L", false)
	pdf.MultiCell(0, 4.5, tr("3. Customer shall be liable for any loss or damage to rented equipment in excess of reasonable wear and tear."), "", "L", false)

	section(pdf, tr, "Access and Ground Conditions:")
	pdf.SetFont(fontName, "", 9)
	pdf.MultiCell(0, 4.5, tr("1. The Customer is responsible for free and suitable access to and from the delivery site, including the removal and reinstatement of local obstructions, and for ensuring suitable ground conditions."), "", "L", false)
	pdf.Ln(4)

	g.summaryColumns(pdf, tr, c, number, issuedOn, b.TotalDue)
	g.payOnline(pdf, tr)

	pdf.AddPage()
	g.letterhead(pdf, tr, number, issuedOn)
	itemsTable(pdf, tr, b)
	pdf.Ln(4)
	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Total Due: "+money(b.TotalDue)), "", 1, "R", false, 0, "")
	pdf.Ln(4)
	g.payOnline(pdf, tr)
	return pdf
}

func (g *Generator) letterhead(pdf *gofpdf.Fpdf, tr func(string) string, number, issuedOn string) {
	top := pdf.GetY()
	pdf.SetFont(fontName, "B", 14)
	pdf.CellFormat(100, 7, tr(g.company.Name), "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 9)
	for _, line := range []string{g.company.Street, g.company.CityLine} {
		if strings.TrimSpace(line) != "" {
			pdf.CellFormat(100, 5, tr(line), "", 1, "L", false, 0, "")
		}
	}
	bottom := pdf.GetY()

	pdf.SetXY(115, top)
	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(80, 7, "Invoice #"+number, "", 2, "R", false, 0, "")
	pdf.SetFont(fontName, "B", 9)
	pdf.CellFormat(80, 5, "Issue date", "", 2, "R", false, 0, "")
	pdf.SetFont(fontName, "", 9)
	pdf.CellFormat(80, 5, issuedOn, "", 2, "R", false, 0, "")

	if pdf.GetY() > bottom {
		bottom = pdf.GetY()
	}
	pdf.SetXY(15, bottom+6)
}

// summaryColumns prints the customer, invoice and payment blocks side by side.
func (g *Generator) summaryColumns(pdf *gofpdf.Fpdf, tr func(string) string, c model.Contract, number, issuedOn string, total decimal.Decimal) {
	columns := [][]string{
		{"Customer", c.Customer.Name, c.Customer.Phone},
		{"Invoice", "PDF created " + issuedOn, "#" + number},
		{"Payment", "Due " + issuedOn, money(total)},
	}
	width := 60.0
	top := pdf.GetY()
	for i, col := range columns {
		pdf.SetXY(15+float64(i)*width, top)
		pdf.SetFont(fontName, "B", 9)
		pdf.CellFormat(width, 5, col[0], "", 2, "L", false, 0, "")
		pdf.SetFont(fontName, "", 9)
		for _, line := range col[1:] {
			pdf.CellFormat(width, 5, tr(line), "", 2, "L", false, 0, "")
		}
	}
	pdf.SetXY(15, top+20)
}

func (g *Generator) payOnline(pdf *gofpdf.Fpdf, tr func(string) string) {
	if strings.TrimSpace(g.company.PaymentURL) == "" {
		return
	}
	pdf.SetFont(fontName, "B", 9)
	pdf.CellFormat(0, 5, "Pay online", "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 9)
	pdf.MultiCell(0, 4.5, tr("To pay your invoice go to "+g.company.PaymentURL), "", "L", false)
}

func itemsTable(pdf *gofpdf.Fpdf, tr func(string) string, b invoice.Breakdown) {
	widths := []float64{90, 25, 35, 30}
	drawTableRow(pdf, tr, []string{"Items", "Quantity", "Price", "Amount"}, widths, true)
	for _, line := range b.Lines {
		drawTableRow(pdf, tr, []string{
			line.Label,
			fmt.Sprintf("%d", line.Quantity),
			money(line.UnitPrice),
			money(line.Amount),
		}, widths, false)
	}
	drawTableRow(pdf, tr, []string{"Subtotal", "", "", money(b.TotalDue)}, widths, true)
}

func drawTableRow(pdf *gofpdf.Fpdf, tr func(string) string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, tr(col), "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func section(pdf *gofpdf.Fpdf, tr func(string) string, title string) {
	pdf.Ln(2)
	pdf.SetFont(fontName, "B", 11)
	pdf.CellFormat(0, 7, tr(title), "", 1, "L", false, 0, "")
}

func numbered(pdf *gofpdf.Fpdf, tr func(string) string, items []string) {
	pdf.SetFont(fontName, "", 9)
	for i, item := range items {
		pdf.MultiCell(0, 4.5, tr(fmt.Sprintf("%d. %s", i+1, item)), "", "L", false)
	}
}

func labeledLine(pdf *gofpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.SetFont(fontName, "B", 10)
	pdf.CellFormat(22, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	pdf.CellFormat(0, 6, tr(safeValue(value)), "", 1, "L", false, 0, "")
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
