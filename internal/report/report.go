// Package report computes the read-only dashboard reports from a loaded
// ReportSource. Contract revenue is always the invoice total due, so reports
// agree with the PDF and the contract list.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/dumpster-rentals/internal/invoice"
	"github.com/nurpe/dumpster-rentals/internal/model"
)

const (
	monthLayout       = "2006-01"
	revenueChartSpan  = 6
	topCustomerLimit  = 5
	expiryWindowDays  = 30
	unassignedAddress = "Unassigned"
)

var hundred = decimal.NewFromInt(100)

var contractStatuses = []model.ContractStatus{
	model.ContractStatusActive,
	model.ContractStatusInactive,
	model.ContractStatusPending,
	model.ContractStatusCancelled,
}

func percentage(part, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).Mul(hundred).Div(decimal.NewFromInt(int64(total))).Round(2)
}

func average(sum decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(n))).Round(2)
}

func sameMonth(d, ref model.Date) bool {
	return !d.IsZero() && d.Year() == ref.Year() && d.Month() == ref.Month()
}

func monthKey(d model.Date) string {
	return d.Format(monthLayout)
}

func inRange(d model.Date, f model.ReportFilter) bool {
	if !f.StartDate.IsZero() && d.Before(f.StartDate.Time) {
		return false
	}
	if !f.EndDate.IsZero() && d.After(f.EndDate.Time) {
		return false
	}
	return true
}

func filterContracts(contracts []model.Contract, f model.ReportFilter) []model.Contract {
	out := make([]model.Contract, 0, len(contracts))
	for _, c := range contracts {
		if !inRange(c.StartDate, f) {
			continue
		}
		if f.Status != "" && c.ContractStatus != f.Status {
			continue
		}
		out = append(out, c)
	}
	return out
}

func billable(c model.Contract) bool {
	return c.ContractStatus != model.ContractStatusCancelled
}

func paid(c model.Contract) decimal.Decimal {
	return invoice.PaidAmount(c.FixContract.Fix, c.FixContract)
}

func additional(c model.Contract) decimal.Decimal {
	total := decimal.Zero
	if charge, ok := invoice.OverTimeCharge(c.FixContract.Fix, c.FixContract); ok {
		total = total.Add(charge)
	}
	if charge, ok := invoice.OverWeightCharge(c.FixContract.Fix, c.FixContract); ok {
		total = total.Add(charge)
	}
	return total
}

// activeByDumpster maps each dumpster on an ACTIVE contract to that contract.
func activeByDumpster(contracts []model.Contract) map[uuid.UUID]model.Contract {
	out := make(map[uuid.UUID]model.Contract)
	for _, c := range contracts {
		if c.ContractStatus == model.ContractStatusActive {
			out[c.DumpsterID] = c
		}
	}
	return out
}

func statusDistribution(contracts []model.Contract) []model.StatusCount {
	counts := make(map[model.ContractStatus]int)
	for _, c := range contracts {
		counts[c.ContractStatus]++
	}
	out := make([]model.StatusCount, 0, len(contractStatuses))
	for _, status := range contractStatuses {
		out = append(out, model.StatusCount{
			Status:     string(status),
			Count:      counts[status],
			Percentage: percentage(counts[status], len(contracts)),
		})
	}
	return out
}

func revenueByCustomer(contracts []model.Contract) []model.TopCustomer {
	index := make(map[uuid.UUID]int)
	out := make([]model.TopCustomer, 0)
	for _, c := range contracts {
		if !billable(c) {
			continue
		}
		pos, ok := index[c.CustomerID]
		if !ok {
			out = append(out, model.TopCustomer{CustomerID: c.CustomerID, CustomerName: c.Customer.Name, TotalRevenue: decimal.Zero})
			pos = len(out) - 1
			index[c.CustomerID] = pos
		}
		out[pos].ContractCount++
		out[pos].TotalRevenue = out[pos].TotalRevenue.Add(invoice.ContractTotal(c))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].TotalRevenue.Equal(out[j].TotalRevenue) {
			return out[i].TotalRevenue.GreaterThan(out[j].TotalRevenue)
		}
		return out[i].CustomerName < out[j].CustomerName
	})
	return out
}

// Dashboard summarizes the whole data set as of today.
func Dashboard(src model.ReportSource, today model.Date) model.DashboardReport {
	var (
		fin     = model.FinancialMetrics{}
		active  = 0
		overdue = make(map[uuid.UUID]struct{})
		current = make(map[uuid.UUID]struct{})
	)
	fin.CurrentMonthRevenue = decimal.Zero
	fin.PendingPayments = decimal.Zero
	fin.AdditionalCharges = decimal.Zero
	fin.TotalRevenue = decimal.Zero
	fin.CurrentMonthExpenses = decimal.Zero
	fin.TotalExpenses = decimal.Zero

	byID := make(map[uuid.UUID]model.Contract, len(src.Contracts))
	for _, c := range src.Contracts {
		byID[c.ID] = c
		if c.ContractStatus == model.ContractStatusActive {
			active++
			current[c.CustomerID] = struct{}{}
		}
		if c.ContractPaymentStatus == model.PaymentStatusDelay {
			overdue[c.CustomerID] = struct{}{}
		}
		if !billable(c) {
			continue
		}
		total := invoice.ContractTotal(c)
		fin.TotalRevenue = fin.TotalRevenue.Add(total)
		fin.AdditionalCharges = fin.AdditionalCharges.Add(additional(c))
		if sameMonth(c.StartDate, today) {
			fin.CurrentMonthRevenue = fin.CurrentMonthRevenue.Add(total)
		}
		if c.ContractPaymentStatus != model.PaymentStatusPaid {
			fin.PendingPayments = fin.PendingPayments.Add(total.Sub(paid(c)))
		}
	}
	for _, e := range src.Expenses {
		fin.TotalExpenses = fin.TotalExpenses.Add(e.TotalAmount)
		if sameMonth(e.Date, today) {
			fin.CurrentMonthExpenses = fin.CurrentMonthExpenses.Add(e.TotalAmount)
		}
	}

	inUse := len(activeByDumpster(src.Contracts))
	ops := model.OperationalMetrics{
		ActiveContracts:    active,
		TotalDumpsters:     len(src.Dumpsters),
		DumpstersInUse:     inUse,
		DumpstersAvailable: max(len(src.Dumpsters)-inUse, 0),
		UtilizationRate:    percentage(inUse, len(src.Dumpsters)),
	}

	drivers := model.DriverMetrics{PendingDriverPayments: decimal.Zero}
	for _, d := range src.Drivers {
		if d.IsActive {
			drivers.ActiveDrivers++
		}
	}
	for _, t := range src.Transfers {
		if t.TransferDate.Equal(today.Time) {
			ops.TodayTransfers++
		}
		if t.PaymentStatus != model.TransferPending {
			continue
		}
		drivers.PendingTransfers++
		if c, ok := byID[t.ContractID]; ok {
			share := invoice.ContractTotal(c).Mul(t.PaymentPercentage).Div(hundred)
			drivers.PendingDriverPayments = drivers.PendingDriverPayments.Add(share)
		}
	}
	drivers.PendingDriverPayments = drivers.PendingDriverPayments.Round(2)

	customers := model.CustomerMetrics{
		TotalActiveCustomers:         len(current),
		CustomersWithOverduePayments: len(overdue),
	}
	for _, c := range src.Customers {
		if sameMonth(model.DateOf(c.CreatedAt), today) {
			customers.NewCustomersThisMonth++
		}
	}

	top := revenueByCustomer(src.Contracts)
	if len(top) > topCustomerLimit {
		top = top[:topCustomerLimit]
	}

	return model.DashboardReport{
		FinancialMetrics:     fin,
		OperationalMetrics:   ops,
		CustomerMetrics:      customers,
		DriverMetrics:        drivers,
		RevenueChart:         revenueChart(src.Contracts, today),
		ContractDistribution: statusDistribution(src.Contracts),
		TopCustomers:         top,
	}
}

// revenueChart covers the last six months up to and including today's.
func revenueChart(contracts []model.Contract, today model.Date) []model.MonthlyRevenue {
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(revenueChartSpan - 1), 0)
	out := make([]model.MonthlyRevenue, revenueChartSpan)
	index := make(map[string]int, revenueChartSpan)
	for i := range out {
		key := first.AddDate(0, i, 0).Format(monthLayout)
		out[i] = model.MonthlyRevenue{Month: key, Revenue: decimal.Zero}
		index[key] = i
	}
	for _, c := range contracts {
		if !billable(c) || c.StartDate.IsZero() {
			continue
		}
		if pos, ok := index[monthKey(c.StartDate)]; ok {
			out[pos].Revenue = out[pos].Revenue.Add(invoice.ContractTotal(c))
		}
	}
	return out
}

func Revenue(src model.ReportSource, f model.ReportFilter) model.RevenueReport {
	contracts := filterContracts(src.Contracts, f)
	summary := model.RevenueSummary{
		TotalRevenue:  decimal.Zero,
		PaidAmount:    decimal.Zero,
		PendingAmount: decimal.Zero,
	}
	overtime := model.AdditionalCharge{ChargeType: string(invoice.LineDaysOverTime), TotalAmount: decimal.Zero}
	overweight := model.AdditionalCharge{ChargeType: string(invoice.LineTonsOverWeight), TotalAmount: decimal.Zero}

	months := make(map[string]*model.RevenueByMonth)
	for _, c := range contracts {
		if !billable(c) {
			continue
		}
		total := invoice.ContractTotal(c)
		paidAmount := paid(c)
		summary.TotalContracts++
		summary.TotalRevenue = summary.TotalRevenue.Add(total)
		summary.PaidAmount = summary.PaidAmount.Add(paidAmount)
		summary.PendingAmount = summary.PendingAmount.Add(total.Sub(paidAmount))
		if c.ContractPaymentStatus == model.PaymentStatusPaid {
			summary.PaidContracts++
		} else {
			summary.PendingContracts++
		}

		if charge, ok := invoice.OverTimeCharge(c.FixContract.Fix, c.FixContract); ok {
			overtime.Count++
			overtime.TotalAmount = overtime.TotalAmount.Add(charge)
		}
		if charge, ok := invoice.OverWeightCharge(c.FixContract.Fix, c.FixContract); ok {
			overweight.Count++
			overweight.TotalAmount = overweight.TotalAmount.Add(charge)
		}

		key := monthKey(c.StartDate)
		m, ok := months[key]
		if !ok {
			m = &model.RevenueByMonth{Month: key, Revenue: decimal.Zero}
			months[key] = m
		}
		m.Revenue = m.Revenue.Add(total)
		m.ContractCount++
	}
	summary.AverageContractValue = average(summary.TotalRevenue, summary.TotalContracts)

	byMonth := make([]model.RevenueByMonth, 0, len(months))
	for _, m := range months {
		byMonth = append(byMonth, *m)
	}
	sort.Slice(byMonth, func(i, j int) bool { return byMonth[i].Month < byMonth[j].Month })

	return model.RevenueReport{
		Summary:           summary,
		RevenueByCustomer: revenueByCustomer(contracts),
		RevenueByMonth:    byMonth,
		AdditionalCharges: []model.AdditionalCharge{overtime, overweight},
	}
}

func Contracts(src model.ReportSource, f model.ReportFilter, today model.Date) model.ContractReport {
	contracts := filterContracts(src.Contracts, f)
	summary := model.ContractSummary{TotalContracts: len(contracts)}

	details := make([]model.ContractDetail, 0, len(contracts))
	expiring := make([]model.ExpiringContract, 0)
	durations := decimal.Zero
	for _, c := range contracts {
		switch c.ContractStatus {
		case model.ContractStatusActive:
			summary.ActiveContracts++
		case model.ContractStatusInactive:
			summary.FinalizedContracts++
		case model.ContractStatusPending:
			summary.PendingContracts++
		case model.ContractStatusCancelled:
			summary.CancelledContracts++
		}
		durations = durations.Add(decimal.NewFromInt(int64(invoice.IncludedDays(c.StartDate, c.EndDate))))

		details = append(details, model.ContractDetail{
			ContractID:     c.ID,
			InvoiceNumber:  c.InvoiceNumber,
			CustomerName:   c.Customer.Name,
			StartDate:      c.StartDate,
			EndDate:        c.EndDate,
			ContractStatus: c.ContractStatus,
			Amount:         invoice.ContractTotal(c),
			DumpsterSize:   sizeLabel(c.Dumpster.Size),
		})

		if c.ContractStatus != model.ContractStatusActive {
			continue
		}
		left := today.DaysUntil(c.EndDate)
		if left >= 0 && left <= expiryWindowDays {
			expiring = append(expiring, model.ExpiringContract{
				ContractID:      c.ID,
				CustomerName:    c.Customer.Name,
				EndDate:         c.EndDate,
				DaysUntilExpiry: left,
			})
		}
	}
	summary.AverageDuration = average(durations, len(contracts))
	summary.ExpiringIn30Days = len(expiring)

	sort.Slice(details, func(i, j int) bool { return details[i].InvoiceNumber < details[j].InvoiceNumber })
	sort.SliceStable(expiring, func(i, j int) bool { return expiring[i].DaysUntilExpiry < expiring[j].DaysUntilExpiry })

	return model.ContractReport{
		Summary:            summary,
		Contracts:          details,
		StatusDistribution: statusDistribution(contracts),
		ExpiringContracts:  expiring,
	}
}

func sizeLabel(size int) string {
	return fmt.Sprintf("%d yd", size)
}

func inMaintenance(d model.Dumpster) bool {
	return strings.Contains(strings.ToLower(d.DumpsterStatus.Name), "maint")
}

// Utilization reports dumpster usage. A dumpster is in use while an ACTIVE
// contract holds it; otherwise it is in maintenance when its status says so,
// and available in every other case.
func Utilization(src model.ReportSource, today model.Date) model.UtilizationReport {
	active := activeByDumpster(src.Contracts)
	summary := model.UtilizationSummary{TotalDumpsters: len(src.Dumpsters)}

	statusCounts := make(map[string]int)
	statusOrder := make([]string, 0)
	sizes := make(map[int]*model.SizeBreakdown)
	locations := make(map[string]int)
	details := make([]model.DumpsterDetail, 0, len(src.Dumpsters))
	usageDays := 0

	for _, d := range src.Dumpsters {
		name := d.DumpsterStatus.Name
		if _, seen := statusCounts[name]; !seen {
			statusOrder = append(statusOrder, name)
		}
		statusCounts[name]++

		sb, ok := sizes[d.Size]
		if !ok {
			sb = &model.SizeBreakdown{Size: sizeLabel(d.Size)}
			sizes[d.Size] = sb
		}
		sb.Total++

		detail := model.DumpsterDetail{
			DumpsterID: d.ID,
			Name:       d.Name,
			Size:       sizeLabel(d.Size),
			Status:     name,
		}
		if c, ok := active[d.ID]; ok {
			summary.InUse++
			sb.InUse++
			location := c.WorkAddress.AddressCity
			if location == "" {
				location = unassignedAddress
			}
			locations[location]++
			number := invoice.Number(c.InvoiceNumber)
			detail.Location = location
			detail.CurrentContract = &number
			detail.DaysInUse = max(c.StartDate.DaysUntil(today), 0)
			usageDays += detail.DaysInUse
		} else if inMaintenance(d) {
			summary.Maintenance++
		} else {
			summary.Available++
			sb.Available++
		}
		details = append(details, detail)
	}
	summary.UtilizationRate = percentage(summary.InUse, summary.TotalDumpsters)
	summary.AverageUsageDays = average(decimal.NewFromInt(int64(usageDays)), summary.InUse)

	statuses := make([]model.StatusCount, 0, len(statusOrder))
	for _, name := range statusOrder {
		statuses = append(statuses, model.StatusCount{
			Status:     name,
			Count:      statusCounts[name],
			Percentage: percentage(statusCounts[name], summary.TotalDumpsters),
		})
	}

	sizeKeys := make([]int, 0, len(sizes))
	for size := range sizes {
		sizeKeys = append(sizeKeys, size)
	}
	sort.Ints(sizeKeys)
	sizeOut := make([]model.SizeBreakdown, 0, len(sizeKeys))
	for _, size := range sizeKeys {
		sizeOut = append(sizeOut, *sizes[size])
	}

	locationOut := make([]model.LocationBreakdown, 0, len(locations))
	for location, count := range locations {
		locationOut = append(locationOut, model.LocationBreakdown{
			Location:        location,
			DumpsterCount:   count,
			UtilizationRate: percentage(count, summary.TotalDumpsters),
		})
	}
	sort.Slice(locationOut, func(i, j int) bool {
		if locationOut[i].DumpsterCount != locationOut[j].DumpsterCount {
			return locationOut[i].DumpsterCount > locationOut[j].DumpsterCount
		}
		return locationOut[i].Location < locationOut[j].Location
	})

	return model.UtilizationReport{
		Summary:           summary,
		StatusBreakdown:   statuses,
		SizeBreakdown:     sizeOut,
		LocationBreakdown: locationOut,
		DumpsterDetails:   details,
	}
}

func Expenses(src model.ReportSource, f model.ReportFilter) model.ExpenseReport {
	out := model.ExpenseReport{TotalAmount: decimal.Zero}
	byArea := newGrouper()
	byMethod := newGrouper()
	byMonth := newGrouper()
	for _, e := range src.Expenses {
		if !inRange(e.Date, f) {
			continue
		}
		out.Count++
		out.TotalAmount = out.TotalAmount.Add(e.TotalAmount)
		area := strings.TrimSpace(e.SpecificArea)
		if area == "" {
			area = unassignedAddress
		}
		byArea.add(area, e.TotalAmount)
		byMethod.add(string(e.PaymentMethod), e.TotalAmount)
		byMonth.add(monthKey(e.Date), e.TotalAmount)
	}
	out.ByArea = byArea.sorted()
	out.ByPaymentMethod = byMethod.sorted()
	out.ByMonth = byMonth.sorted()
	return out
}

type grouper map[string]*model.AmountGroup

func newGrouper() grouper {
	return make(grouper)
}

func (g grouper) add(key string, amount decimal.Decimal) {
	group, ok := g[key]
	if !ok {
		group = &model.AmountGroup{Key: key, TotalAmount: decimal.Zero}
		g[key] = group
	}
	group.Count++
	group.TotalAmount = group.TotalAmount.Add(amount)
}

func (g grouper) sorted() []model.AmountGroup {
	out := make([]model.AmountGroup, 0, len(g))
	for _, group := range g {
		out = append(out, *group)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
