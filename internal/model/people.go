package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleUser    Role = "USER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
}

func (User) TableName() string { return "users" }

type Driver struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	FirstName     string     `json:"firstName" validate:"required"`
	LastName      string     `json:"lastName" validate:"required"`
	LicenseNumber string     `json:"licenseNumber" validate:"required"`
	LicenseType   string     `json:"licenseType"`
	Phone         string     `json:"phone"`
	Email         string     `json:"email" validate:"omitempty,email"`
	IsActive      bool       `json:"isActive"`
	Transfers     []Transfer `json:"transfers,omitempty" gorm:"foreignKey:DriverID" validate:"-"`
}

func (Driver) TableName() string { return "drivers" }

type TransferType string

const (
	TransferDelivery   TransferType = "DELIVERY"
	TransferCollection TransferType = "COLLECTION"
)

type TransferPaymentStatus string

const (
	TransferPending TransferPaymentStatus = "PENDING"
	TransferPaid    TransferPaymentStatus = "PAID"
)

// Transfer is a driver's delivery or collection trip for a contract.
type Transfer struct {
	ID                uuid.UUID             `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ContractID        uuid.UUID             `json:"contractId" gorm:"type:uuid"`
	Contract          *Contract             `json:"contract,omitempty" gorm:"foreignKey:ContractID" validate:"-"`
	DriverID          uuid.UUID             `json:"driverId" gorm:"type:uuid"`
	Driver            *Driver               `json:"driver,omitempty" gorm:"foreignKey:DriverID" validate:"-"`
	PaymentPercentage decimal.Decimal       `json:"paymentPercentage" gorm:"type:numeric(5,2)"`
	TransferDate      Date                  `json:"transferDate" gorm:"type:date"`
	TransferType      TransferType          `json:"transferType" validate:"oneof=DELIVERY COLLECTION"`
	PaymentStatus     TransferPaymentStatus `json:"paymentStatus" validate:"oneof=PENDING PAID"`
	Description       string                `json:"description"`
}

func (Transfer) TableName() string { return "transfers" }

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCard         PaymentMethod = "CREDIT_DEBIT_CARD"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodOthers       PaymentMethod = "OTHERS"
)

type BusinessExpense struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Date          Date            `json:"date" gorm:"type:date"`
	TotalAmount   decimal.Decimal `json:"totalAmount" gorm:"type:numeric(12,2)"`
	Beneficiary   string          `json:"beneficiary" validate:"required"`
	Invoice       string          `json:"invoice"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" validate:"oneof=CASH BANK_TRANSFER CREDIT_DEBIT_CARD CHECK OTHERS"`
	SpecificArea  string          `json:"specificArea"`
	Description   string          `json:"description"`
}

func (BusinessExpense) TableName() string { return "business_expenses" }

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID   uuid.UUID
	Username string
	Role     Role
	TokenID  string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) CanManage() bool {
	return p.Role == RoleAdmin || p.Role == RoleManager
}
