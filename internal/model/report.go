package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReportKind string

const (
	ReportDashboard           ReportKind = "dashboard"
	ReportRevenue             ReportKind = "revenue"
	ReportContracts           ReportKind = "contracts"
	ReportDumpsterUtilization ReportKind = "dumpster-utilization"
	ReportExpenses            ReportKind = "expenses"
)

// ReportFilter narrows report input. Zero dates mean unbounded.
type ReportFilter struct {
	StartDate Date
	EndDate   Date
	Status    ContractStatus
}

type FinancialMetrics struct {
	CurrentMonthRevenue  decimal.Decimal `json:"currentMonthRevenue"`
	PendingPayments      decimal.Decimal `json:"pendingPayments"`
	AdditionalCharges    decimal.Decimal `json:"additionalCharges"`
	TotalRevenue         decimal.Decimal `json:"totalRevenue"`
	CurrentMonthExpenses decimal.Decimal `json:"currentMonthExpenses"`
	TotalExpenses        decimal.Decimal `json:"totalExpenses"`
}

type OperationalMetrics struct {
	ActiveContracts    int             `json:"activeContracts"`
	TotalDumpsters     int             `json:"totalDumpsters"`
	DumpstersInUse     int             `json:"dumpstersInUse"`
	DumpstersAvailable int             `json:"dumpstersAvailable"`
	TodayTransfers     int             `json:"todayTransfers"`
	UtilizationRate    decimal.Decimal `json:"utilizationRate"`
}

type CustomerMetrics struct {
	TotalActiveCustomers         int `json:"totalActiveCustomers"`
	NewCustomersThisMonth        int `json:"newCustomersThisMonth"`
	CustomersWithOverduePayments int `json:"customersWithOverduePayments"`
}

type DriverMetrics struct {
	ActiveDrivers         int             `json:"activeDrivers"`
	PendingTransfers      int             `json:"pendingTransfers"`
	PendingDriverPayments decimal.Decimal `json:"pendingDriverPayments"`
}

type MonthlyRevenue struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

type StatusCount struct {
	Status     string          `json:"status"`
	Count      int             `json:"count"`
	Percentage decimal.Decimal `json:"percentage"`
}

type TopCustomer struct {
	CustomerID    uuid.UUID       `json:"customerId"`
	CustomerName  string          `json:"customerName"`
	ContractCount int             `json:"contractCount"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}

type DashboardReport struct {
	FinancialMetrics     FinancialMetrics   `json:"financialMetrics"`
	OperationalMetrics   OperationalMetrics `json:"operationalMetrics"`
	CustomerMetrics      CustomerMetrics    `json:"customerMetrics"`
	DriverMetrics        DriverMetrics      `json:"driverMetrics"`
	RevenueChart         []MonthlyRevenue   `json:"revenueChart"`
	ContractDistribution []StatusCount      `json:"contractDistribution"`
	TopCustomers         []TopCustomer      `json:"topCustomers"`
}

type RevenueSummary struct {
	TotalRevenue         decimal.Decimal `json:"totalRevenue"`
	PaidAmount           decimal.Decimal `json:"paidAmount"`
	PendingAmount        decimal.Decimal `json:"pendingAmount"`
	TotalContracts       int             `json:"totalContracts"`
	PaidContracts        int             `json:"paidContracts"`
	PendingContracts     int             `json:"pendingContracts"`
	AverageContractValue decimal.Decimal `json:"averageContractValue"`
}

type RevenueByMonth struct {
	Month         string          `json:"month"`
	Revenue       decimal.Decimal `json:"revenue"`
	ContractCount int             `json:"contractCount"`
}

type AdditionalCharge struct {
	ChargeType  string          `json:"chargeType"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Count       int             `json:"count"`
}

type RevenueReport struct {
	Summary           RevenueSummary     `json:"summary"`
	RevenueByCustomer []TopCustomer      `json:"revenueByCustomer"`
	RevenueByMonth    []RevenueByMonth   `json:"revenueByMonth"`
	AdditionalCharges []AdditionalCharge `json:"additionalCharges"`
}

type ContractSummary struct {
	TotalContracts     int             `json:"totalContracts"`
	ActiveContracts    int             `json:"activeContracts"`
	FinalizedContracts int             `json:"finalizedContracts"`
	PendingContracts   int             `json:"pendingContracts"`
	CancelledContracts int             `json:"cancelledContracts"`
	AverageDuration    decimal.Decimal `json:"averageDuration"`
	ExpiringIn30Days   int             `json:"expiringIn30Days"`
}

type ContractDetail struct {
	ContractID     uuid.UUID       `json:"contractId"`
	InvoiceNumber  int64           `json:"invoiceNumber"`
	CustomerName   string          `json:"customerName"`
	StartDate      Date            `json:"startDate"`
	EndDate        Date            `json:"endDate"`
	ContractStatus ContractStatus  `json:"contractStatus"`
	Amount         decimal.Decimal `json:"amount"`
	DumpsterSize   string          `json:"dumpsterSize"`
}

type ExpiringContract struct {
	ContractID      uuid.UUID `json:"contractId"`
	CustomerName    string    `json:"customerName"`
	EndDate         Date      `json:"endDate"`
	DaysUntilExpiry int       `json:"daysUntilExpiry"`
}

type ContractReport struct {
	Summary            ContractSummary    `json:"summary"`
	Contracts          []ContractDetail   `json:"contracts"`
	StatusDistribution []StatusCount      `json:"statusDistribution"`
	ExpiringContracts  []ExpiringContract `json:"expiringContracts"`
}

type UtilizationSummary struct {
	TotalDumpsters   int             `json:"totalDumpsters"`
	InUse            int             `json:"inUse"`
	Available        int             `json:"available"`
	Maintenance      int             `json:"maintenance"`
	UtilizationRate  decimal.Decimal `json:"utilizationRate"`
	AverageUsageDays decimal.Decimal `json:"averageUsageDays"`
}

type SizeBreakdown struct {
	Size      string `json:"size"`
	Total     int    `json:"total"`
	InUse     int    `json:"inUse"`
	Available int    `json:"available"`
}

type LocationBreakdown struct {
	Location        string          `json:"location"`
	DumpsterCount   int             `json:"dumpsterCount"`
	UtilizationRate decimal.Decimal `json:"utilizationRate"`
}

type DumpsterDetail struct {
	DumpsterID      uuid.UUID `json:"dumpsterId"`
	Name            string    `json:"name"`
	Size            string    `json:"size"`
	Status          string    `json:"status"`
	Location        string    `json:"location"`
	CurrentContract *string   `json:"currentContract"`
	DaysInUse       int       `json:"daysInUse"`
}

type UtilizationReport struct {
	Summary           UtilizationSummary  `json:"summary"`
	StatusBreakdown   []StatusCount       `json:"statusBreakdown"`
	SizeBreakdown     []SizeBreakdown     `json:"sizeBreakdown"`
	LocationBreakdown []LocationBreakdown `json:"locationBreakdown"`
	DumpsterDetails   []DumpsterDetail    `json:"dumpsterDetails"`
}

type AmountGroup struct {
	Key         string          `json:"key"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Count       int             `json:"count"`
}

type ExpenseReport struct {
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Count           int             `json:"count"`
	ByArea          []AmountGroup   `json:"byArea"`
	ByPaymentMethod []AmountGroup   `json:"byPaymentMethod"`
	ByMonth         []AmountGroup   `json:"byMonth"`
}

// ReportSource is the full data set reports are computed from.
type ReportSource struct {
	Contracts []Contract
	Dumpsters []Dumpster
	Customers []Customer
	Drivers   []Driver
	Transfers []Transfer
	Expenses  []BusinessExpense
}
