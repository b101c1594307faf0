package model

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID          uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name        string        `json:"name" validate:"required"`
	TaxID       string        `json:"taxId" validate:"required"`
	HomeAddress string        `json:"homeAddress" validate:"required"`
	City        string        `json:"city"`
	State       string        `json:"state"`
	ZipCode     string        `json:"zipCode"`
	Email       string        `json:"email" validate:"required,email"`
	Phone       string        `json:"phone" validate:"required"`
	Description string        `json:"description"`
	CreatedAt   time.Time     `json:"createdAt"`
	WorkAddress []WorkAddress `json:"workAddress" gorm:"foreignKey:CustomerID" validate:"-"`
}

func (Customer) TableName() string { return "customers" }

// WorkAddress is a service site, distinct from the customer's billing address.
type WorkAddress struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	CustomerID     uuid.UUID `json:"customerId" gorm:"type:uuid"`
	AddressName    string    `json:"addressName" validate:"required"`
	Address        string    `json:"address" validate:"required"`
	AddressCity    string    `json:"addressCity"`
	AddressState   string    `json:"addressState"`
	AddressZipCode string    `json:"addressZipCode"`
	ContactName    string    `json:"contactName"`
	ContactPhone   string    `json:"contactPhone"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
}

func (WorkAddress) TableName() string { return "work_addresses" }
