package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ContractStatus string

const (
	ContractStatusActive    ContractStatus = "ACTIVE"
	ContractStatusInactive  ContractStatus = "INACTIVE"
	ContractStatusPending   ContractStatus = "PENDING"
	ContractStatusCancelled ContractStatus = "CANCELLED"
)

func (s ContractStatus) Valid() bool {
	switch s {
	case ContractStatusActive, ContractStatusInactive, ContractStatusPending, ContractStatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING_PAYMENT"
	PaymentStatusPartial PaymentStatus = "PARTIAL_PAYMENT"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusDelay   PaymentStatus = "DELAY_PAYMENT"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid, PaymentStatusDelay:
		return true
	}
	return false
}

// OverageState records whether extra tons/days were assessed on a contract.
type OverageState string

const (
	OverageNotApplicable      OverageState = "NOT_APPLICABLE"
	OverageApplicableZero     OverageState = "APPLICABLE_ZERO"
	OverageApplicableQuantity OverageState = "APPLICABLE_QUANTITY"
)

func (s OverageState) Valid() bool {
	switch s {
	case OverageNotApplicable, OverageApplicableZero, OverageApplicableQuantity:
		return true
	}
	return false
}

type Contract struct {
	ID                    uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	InvoiceNumber         int64           `json:"invoiceNumber" gorm:"autoIncrement;->"`
	CustomerID            uuid.UUID       `json:"-" gorm:"type:uuid"`
	Customer              Customer        `json:"customer" gorm:"foreignKey:CustomerID"`
	WorkAddressID         uuid.UUID       `json:"-" gorm:"type:uuid"`
	WorkAddress           WorkAddress     `json:"workAddress" gorm:"foreignKey:WorkAddressID"`
	DumpsterID            uuid.UUID       `json:"-" gorm:"type:uuid"`
	Dumpster              Dumpster        `json:"dumpster" gorm:"foreignKey:DumpsterID"`
	FixContract           FixContract     `json:"fixContract" gorm:"foreignKey:ContractID"`
	StartDate             Date            `json:"startDate" gorm:"type:date"`
	EndDate               Date            `json:"endDate" gorm:"type:date"`
	RemovalDate           *Date           `json:"removalDate" gorm:"type:date"`
	ContractStatus        ContractStatus  `json:"contractStatus"`
	ContractPaymentStatus PaymentStatus   `json:"contractPaymentStatus"`
	Description           string          `json:"description"`
	BaseWeight            decimal.Decimal `json:"baseWeight" gorm:"type:numeric(12,2)"`
	CreatedAt             time.Time       `json:"createdAt"`
}

func (Contract) TableName() string { return "contracts" }

// FixContract binds a contract to its pricing schedule and tracks payments.
// The two Payment*Amount fields are quantities (tons, days), not currency.
type FixContract struct {
	ID                              uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ContractID                      uuid.UUID       `json:"contractId" gorm:"type:uuid"`
	FixID                           uuid.UUID       `json:"-" gorm:"type:uuid"`
	Fix                             Fix             `json:"fix" gorm:"foreignKey:FixID"`
	MadePaymentCustomAmount         bool            `json:"madePaymentCustomAmount"`
	MadePaymentLandFillCost         bool            `json:"madePaymentLandFillCost"`
	MadePaymentTonsOverWeightAmount bool            `json:"madePaymentTonsOverWeightAmount"`
	MadePaymentDaysOverTimeAmount   bool            `json:"madePaymentDaysOverTimeAmount"`
	PaymentTonsOverWeightAmount     decimal.Decimal `json:"paymentTonsOverWeightAmount" gorm:"type:numeric(12,2)"`
	PaymentDaysOverTimeAmount       decimal.Decimal `json:"paymentDaysOverTimeAmount" gorm:"type:numeric(12,2)"`
	OverageState                    OverageState    `json:"overageState"`
	Description                     string          `json:"description"`
}

func (FixContract) TableName() string { return "fix_contracts" }

// PaymentsUpdate is the full set of columns Edit Payments may write. Nil
// quantities leave the recorded values untouched.
type PaymentsUpdate struct {
	MadePaymentCustomAmount         bool
	MadePaymentLandFillCost         bool
	MadePaymentTonsOverWeightAmount bool
	MadePaymentDaysOverTimeAmount   bool
	OverageState                    OverageState
	PaymentTonsOverWeightAmount     *decimal.Decimal
	PaymentDaysOverTimeAmount       *decimal.Decimal
}

// DataUpdate is the full set of columns Edit Data may write.
type DataUpdate struct {
	StartDate             Date
	EndDate               Date
	RemovalDate           *Date
	ContractStatus        ContractStatus
	ContractPaymentStatus PaymentStatus
	Description           string
}
