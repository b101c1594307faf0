package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nurpe/dumpster-rentals/internal/model"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Customer").
		Preload("WorkAddress").
		Preload("Dumpster.DumpsterStatus").
		Preload("FixContract.Fix")
}

func (r *ContractRepository) List(ctx context.Context) ([]model.Contract, error) {
	contracts := []model.Contract{}
	if err := r.query(ctx).Order("invoice_number DESC").Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *ContractRepository) Get(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var contract model.Contract
	if err := r.query(ctx).First(&contract, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *ContractRepository) GetFixContract(ctx context.Context, id uuid.UUID) (*model.FixContract, error) {
	var fc model.FixContract
	if err := r.db.WithContext(ctx).Preload("Fix").First(&fc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &fc, nil
}

// Create inserts the contract and its fix binding in one transaction. A
// customer or work address with a nil reference is inserted first.
func (r *ContractRepository) Create(ctx context.Context, c *model.Contract) (uuid.UUID, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if c.CustomerID == uuid.Nil {
			c.Customer.ID = uuid.New()
			if err := tx.Omit(clause.Associations).Create(&c.Customer).Error; err != nil {
				return err
			}
			c.CustomerID = c.Customer.ID
		}
		if c.WorkAddressID == uuid.Nil {
			c.WorkAddress.ID = uuid.New()
			c.WorkAddress.CustomerID = c.CustomerID
			if err := tx.Omit(clause.Associations).Create(&c.WorkAddress).Error; err != nil {
				return err
			}
			c.WorkAddressID = c.WorkAddress.ID
		}

		c.ID = uuid.New()
		if err := tx.Omit(clause.Associations).Create(c).Error; err != nil {
			return err
		}

		c.FixContract.ID = uuid.New()
		c.FixContract.ContractID = c.ID
		return tx.Omit(clause.Associations).Create(&c.FixContract).Error
	})
	if err != nil {
		return uuid.Nil, err
	}
	return c.ID, nil
}

// UpdatePayments writes only fix_contracts columns.
func (r *ContractRepository) UpdatePayments(ctx context.Context, fixContractID uuid.UUID, u model.PaymentsUpdate) error {
	cols := map[string]interface{}{
		"made_payment_custom_amount":           u.MadePaymentCustomAmount,
		"made_payment_land_fill_cost":          u.MadePaymentLandFillCost,
		"made_payment_tons_over_weight_amount": u.MadePaymentTonsOverWeightAmount,
		"made_payment_days_over_time_amount":   u.MadePaymentDaysOverTimeAmount,
		"overage_state":                        u.OverageState,
	}
	if u.PaymentTonsOverWeightAmount != nil {
		cols["payment_tons_over_weight_amount"] = *u.PaymentTonsOverWeightAmount
	}
	if u.PaymentDaysOverTimeAmount != nil {
		cols["payment_days_over_time_amount"] = *u.PaymentDaysOverTimeAmount
	}

	res := r.db.WithContext(ctx).Model(&model.FixContract{}).Where("id = ?", fixContractID).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateData writes only contracts columns.
func (r *ContractRepository) UpdateData(ctx context.Context, contractID uuid.UUID, u model.DataUpdate) error {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE contracts
		SET start_date = ?,
			end_date = ?,
			removal_date = ?,
			contract_status = ?,
			contract_payment_status = ?,
			description = ?
		WHERE id = ?
	`, u.StartDate, u.EndDate, u.RemovalDate, u.ContractStatus, u.ContractPaymentStatus, u.Description, contractID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
