package excel

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/dumpster-rentals/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate writes a report as a workbook with a summary sheet followed by
// one sheet per breakdown table.
func (g *Generator) Generate(kind model.ReportKind, filter model.ReportFilter, data interface{}) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	w, err := newWorkbook(file)
	if err != nil {
		return nil, err
	}

	switch report := data.(type) {
	case model.DashboardReport:
		err = w.dashboard(report)
	case model.RevenueReport:
		err = w.revenue(report, filter)
	case model.ContractReport:
		err = w.contracts(report, filter)
	case model.UtilizationReport:
		err = w.utilization(report)
	case model.ExpenseReport:
		err = w.expenses(report, filter)
	default:
		err = fmt.Errorf("unsupported report %q (%T)", kind, data)
	}
	if err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type workbook struct {
	file   *excelize.File
	bold   int
	sheets int
}

func newWorkbook(file *excelize.File) (*workbook, error) {
	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	return &workbook{file: file, bold: bold}, nil
}

// sheet returns a named sheet, renaming the default one on first use.
func (w *workbook) sheet(name string) (string, error) {
	w.sheets++
	if w.sheets == 1 {
		return name, w.file.SetSheetName("Sheet1", name)
	}
	_, err := w.file.NewSheet(name)
	return name, err
}

// pairs writes label/value rows starting at A1.
func (w *workbook) pairs(sheet string, rows [][2]interface{}) {
	for i, row := range rows {
		a, _ := excelize.CoordinatesToCellName(1, i+1)
		b, _ := excelize.CoordinatesToCellName(2, i+1)
		_ = w.file.SetCellValue(sheet, a, row[0])
		_ = w.file.SetCellValue(sheet, b, value(row[1]))
		_ = w.file.SetCellStyle(sheet, a, a, w.bold)
	}
	_ = w.file.SetColWidth(sheet, "A", "A", 32)
	_ = w.file.SetColWidth(sheet, "B", "B", 18)
}

// table writes a header row and data rows on a fresh sheet.
func (w *workbook) table(name string, headers []string, rows [][]interface{}) error {
	sheet, err := w.sheet(name)
	if err != nil {
		return err
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = w.file.SetCellValue(sheet, cell, header)
		_ = w.file.SetCellStyle(sheet, cell, cell, w.bold)
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = w.file.SetCellValue(sheet, cell, value(v))
		}
	}
	last, _ := excelize.ColumnNumberToName(len(headers))
	return w.file.SetColWidth(sheet, "A", last, 20)
}

func (w *workbook) summary(rows [][2]interface{}) error {
	sheet, err := w.sheet("Summary")
	if err != nil {
		return err
	}
	w.pairs(sheet, rows)
	return nil
}

func (w *workbook) dashboard(r model.DashboardReport) error {
	f, o, c, d := r.FinancialMetrics, r.OperationalMetrics, r.CustomerMetrics, r.DriverMetrics
	if err := w.summary([][2]interface{}{
		{"Current month revenue", f.CurrentMonthRevenue},
		{"Pending payments", f.PendingPayments},
		{"Additional charges", f.AdditionalCharges},
		{"Total revenue", f.TotalRevenue},
		{"Current month expenses", f.CurrentMonthExpenses},
		{"Total expenses", f.TotalExpenses},
		{"Active contracts", o.ActiveContracts},
		{"Total dumpsters", o.TotalDumpsters},
		{"Dumpsters in use", o.DumpstersInUse},
		{"Dumpsters available", o.DumpstersAvailable},
		{"Today transfers", o.TodayTransfers},
		{"Utilization rate %", o.UtilizationRate},
		{"Active customers", c.TotalActiveCustomers},
		{"New customers this month", c.NewCustomersThisMonth},
		{"Customers with overdue payments", c.CustomersWithOverduePayments},
		{"Active drivers", d.ActiveDrivers},
		{"Pending transfers", d.PendingTransfers},
		{"Pending driver payments", d.PendingDriverPayments},
	}); err != nil {
		return err
	}

	months := make([][]interface{}, 0, len(r.RevenueChart))
	for _, m := range r.RevenueChart {
		months = append(months, []interface{}{m.Month, m.Revenue})
	}
	if err := w.table("Revenue by month", []string{"Month", "Revenue"}, months); err != nil {
		return err
	}
	if err := w.table("Contract status", statusHeaders, statusRows(r.ContractDistribution)); err != nil {
		return err
	}
	return w.table("Top customers", customerHeaders, customerRows(r.TopCustomers))
}

func (w *workbook) revenue(r model.RevenueReport, filter model.ReportFilter) error {
	s := r.Summary
	rows := append(filterRows(filter),
		[2]interface{}{"Total revenue", s.TotalRevenue},
		[2]interface{}{"Paid amount", s.PaidAmount},
		[2]interface{}{"Pending amount", s.PendingAmount},
		[2]interface{}{"Total contracts", s.TotalContracts},
		[2]interface{}{"Paid contracts", s.PaidContracts},
		[2]interface{}{"Pending contracts", s.PendingContracts},
		[2]interface{}{"Average contract value", s.AverageContractValue},
	)
	if err := w.summary(rows); err != nil {
		return err
	}
	if err := w.table("By customer", customerHeaders, customerRows(r.RevenueByCustomer)); err != nil {
		return err
	}

	months := make([][]interface{}, 0, len(r.RevenueByMonth))
	for _, m := range r.RevenueByMonth {
		months = append(months, []interface{}{m.Month, m.Revenue, m.ContractCount})
	}
	if err := w.table("By month", []string{"Month", "Revenue", "Contracts"}, months); err != nil {
		return err
	}

	charges := make([][]interface{}, 0, len(r.AdditionalCharges))
	for _, c := range r.AdditionalCharges {
		charges = append(charges, []interface{}{c.ChargeType, c.TotalAmount, c.Count})
	}
	return w.table("Additional charges", []string{"Charge", "Total amount", "Count"}, charges)
}

func (w *workbook) contracts(r model.ContractReport, filter model.ReportFilter) error {
	s := r.Summary
	rows := append(filterRows(filter),
		[2]interface{}{"Total contracts", s.TotalContracts},
		[2]interface{}{"Active", s.ActiveContracts},
		[2]interface{}{"Finalized", s.FinalizedContracts},
		[2]interface{}{"Pending", s.PendingContracts},
		[2]interface{}{"Cancelled", s.CancelledContracts},
		[2]interface{}{"Average duration (days)", s.AverageDuration},
		[2]interface{}{"Expiring in 30 days", s.ExpiringIn30Days},
	)
	if err := w.summary(rows); err != nil {
		return err
	}

	details := make([][]interface{}, 0, len(r.Contracts))
	for _, c := range r.Contracts {
		details = append(details, []interface{}{
			fmt.Sprintf("%06d", c.InvoiceNumber), c.CustomerName, c.StartDate.String(), c.EndDate.String(),
			string(c.ContractStatus), c.Amount, c.DumpsterSize,
		})
	}
	if err := w.table("Contracts", []string{"Invoice", "Customer", "Start", "End", "Status", "Amount", "Dumpster"}, details); err != nil {
		return err
	}
	if err := w.table("Status", statusHeaders, statusRows(r.StatusDistribution)); err != nil {
		return err
	}

	expiring := make([][]interface{}, 0, len(r.ExpiringContracts))
	for _, c := range r.ExpiringContracts {
		expiring = append(expiring, []interface{}{c.CustomerName, c.EndDate.String(), c.DaysUntilExpiry})
	}
	return w.table("Expiring", []string{"Customer", "End date", "Days until expiry"}, expiring)
}

func (w *workbook) utilization(r model.UtilizationReport) error {
	s := r.Summary
	if err := w.summary([][2]interface{}{
		{"Total dumpsters", s.TotalDumpsters},
		{"In use", s.InUse},
		{"Available", s.Available},
		{"Maintenance", s.Maintenance},
		{"Utilization rate %", s.UtilizationRate},
		{"Average usage days", s.AverageUsageDays},
	}); err != nil {
		return err
	}
	if err := w.table("Status", statusHeaders, statusRows(r.StatusBreakdown)); err != nil {
		return err
	}

	sizes := make([][]interface{}, 0, len(r.SizeBreakdown))
	for _, b := range r.SizeBreakdown {
		sizes = append(sizes, []interface{}{b.Size, b.Total, b.InUse, b.Available})
	}
	if err := w.table("By size", []string{"Size", "Total", "In use", "Available"}, sizes); err != nil {
		return err
	}

	locations := make([][]interface{}, 0, len(r.LocationBreakdown))
	for _, l := range r.LocationBreakdown {
		locations = append(locations, []interface{}{l.Location, l.DumpsterCount, l.UtilizationRate})
	}
	if err := w.table("By location", []string{"Location", "Dumpsters", "Utilization rate %"}, locations); err != nil {
		return err
	}

	details := make([][]interface{}, 0, len(r.DumpsterDetails))
	for _, d := range r.DumpsterDetails {
		current := ""
		if d.CurrentContract != nil {
			current = *d.CurrentContract
		}
		details = append(details, []interface{}{d.Name, d.Size, d.Status, d.Location, current, d.DaysInUse})
	}
	return w.table("Dumpsters", []string{"Name", "Size", "Status", "Location", "Current contract", "Days in use"}, details)
}

func (w *workbook) expenses(r model.ExpenseReport, filter model.ReportFilter) error {
	rows := append(filterRows(filter),
		[2]interface{}{"Total amount", r.TotalAmount},
		[2]interface{}{"Expenses", r.Count},
	)
	if err := w.summary(rows); err != nil {
		return err
	}
	headers := []string{"Group", "Total amount", "Count"}
	if err := w.table("By area", headers, groupRows(r.ByArea)); err != nil {
		return err
	}
	if err := w.table("By payment method", headers, groupRows(r.ByPaymentMethod)); err != nil {
		return err
	}
	return w.table("By month", headers, groupRows(r.ByMonth))
}

var (
	statusHeaders   = []string{"Status", "Count", "Percentage"}
	customerHeaders = []string{"Customer", "Contracts", "Total revenue"}
)

func statusRows(counts []model.StatusCount) [][]interface{} {
	rows := make([][]interface{}, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []interface{}{c.Status, c.Count, c.Percentage})
	}
	return rows
}

func customerRows(customers []model.TopCustomer) [][]interface{} {
	rows := make([][]interface{}, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []interface{}{c.CustomerName, c.ContractCount, c.TotalRevenue})
	}
	return rows
}

func groupRows(groups []model.AmountGroup) [][]interface{} {
	rows := make([][]interface{}, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []interface{}{g.Key, g.TotalAmount, g.Count})
	}
	return rows
}

func filterRows(f model.ReportFilter) [][2]interface{} {
	var rows [][2]interface{}
	if !f.StartDate.IsZero() {
		rows = append(rows, [2]interface{}{"Start date", f.StartDate.String()})
	}
	if !f.EndDate.IsZero() {
		rows = append(rows, [2]interface{}{"End date", f.EndDate.String()})
	}
	if f.Status != "" {
		rows = append(rows, [2]interface{}{"Status", string(f.Status)})
	}
	return rows
}

// value converts decimals so cells stay numeric.
func value(v interface{}) interface{} {
	if d, ok := v.(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return v
}
