package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DumpsterStatus struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name        string    `json:"name" validate:"required"`
	ColorCode   string    `json:"colorCode"`
	IsActive    bool      `json:"isActive"`
	Description string    `json:"description"`
}

func (DumpsterStatus) TableName() string { return "dumpster_statuses" }

type Dumpster struct {
	ID               uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name             string          `json:"name" validate:"required"`
	Size             int             `json:"size" validate:"min=0"`
	Weight           decimal.Decimal `json:"weight" gorm:"type:numeric(12,2)"`
	Description      string          `json:"description"`
	DumpsterStatusID uuid.UUID       `json:"dumpsterStatusId" gorm:"type:uuid"`
	DumpsterStatus   DumpsterStatus  `json:"dumpsterStatus" gorm:"foreignKey:DumpsterStatusID" validate:"-"`
}

func (Dumpster) TableName() string { return "dumpsters" }

// Fix is an immutable pricing schedule attached to contracts.
type Fix struct {
	ID                   uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	CustomAmount         decimal.Decimal `json:"customAmount" gorm:"type:numeric(12,2)"`
	LandFillCost         decimal.Decimal `json:"landFillCost" gorm:"type:numeric(12,2)"`
	TonsOverWeightAmount decimal.Decimal `json:"tonsOverWeightAmount" gorm:"type:numeric(12,2)"`
	DaysOverTimeAmount   decimal.Decimal `json:"daysOverTimeAmount" gorm:"type:numeric(12,2)"`
	Description          string          `json:"description"`
}

func (Fix) TableName() string { return "fixes" }
