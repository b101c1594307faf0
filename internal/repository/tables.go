package repository

import (
	"gorm.io/gorm"

	"github.com/nurpe/dumpster-rentals/internal/model"
)

func NewCustomers(db *gorm.DB) *Table[model.Customer] {
	return NewTable[model.Customer](db, "name ASC", "WorkAddress")
}

func NewWorkAddresses(db *gorm.DB) *Table[model.WorkAddress] {
	return NewTable[model.WorkAddress](db, "address_name ASC")
}

func NewDumpsterStatuses(db *gorm.DB) *Table[model.DumpsterStatus] {
	return NewTable[model.DumpsterStatus](db, "name ASC")
}

func NewDumpsters(db *gorm.DB) *Table[model.Dumpster] {
	return NewTable[model.Dumpster](db, "name ASC", "DumpsterStatus")
}

func NewFixes(db *gorm.DB) *Table[model.Fix] {
	return NewTable[model.Fix](db, "description ASC")
}

func NewDrivers(db *gorm.DB) *Table[model.Driver] {
	return NewTable[model.Driver](db, "last_name ASC, first_name ASC")
}

func NewTransfers(db *gorm.DB) *Table[model.Transfer] {
	return NewTable[model.Transfer](db, "transfer_date DESC", "Driver", "Contract.Customer")
}

func NewExpenses(db *gorm.DB) *Table[model.BusinessExpense] {
	return NewTable[model.BusinessExpense](db, "date DESC")
}
