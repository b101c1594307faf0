package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"github.com/nurpe/dumpster-rentals/internal/model"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// LoadSource reads every collection the reports need from one snapshot.
func (r *ReportRepository) LoadSource(ctx context.Context) (model.ReportSource, error) {
	var src model.ReportSource
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Preload("Customer").
			Preload("WorkAddress").
			Preload("Dumpster.DumpsterStatus").
			Preload("FixContract.Fix").
			Order("invoice_number ASC").
			Find(&src.Contracts).Error; err != nil {
			return err
		}
		if err := tx.Preload("DumpsterStatus").Order("name ASC").Find(&src.Dumpsters).Error; err != nil {
			return err
		}
		if err := tx.Order("name ASC").Find(&src.Customers).Error; err != nil {
			return err
		}
		if err := tx.Order("last_name ASC").Find(&src.Drivers).Error; err != nil {
			return err
		}
		if err := tx.Order("transfer_date ASC").Find(&src.Transfers).Error; err != nil {
			return err
		}
		return tx.Order("date ASC").Find(&src.Expenses).Error
	}, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return model.ReportSource{}, err
	}
	return src, nil
}
