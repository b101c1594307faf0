package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		username VARCHAR(64) NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'USER' CHECK (role IN ('ADMIN', 'MANAGER', 'USER'))
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_users_username ON users (username);`,
	`CREATE TABLE IF NOT EXISTS customers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name TEXT NOT NULL,
		tax_id TEXT NOT NULL,
		home_address TEXT NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		zip_code TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL,
		phone TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS work_addresses (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		customer_id UUID NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
		address_name TEXT NOT NULL,
		address TEXT NOT NULL,
		address_city TEXT NOT NULL DEFAULT '',
		address_state TEXT NOT NULL DEFAULT '',
		address_zip_code TEXT NOT NULL DEFAULT '',
		contact_name TEXT NOT NULL DEFAULT '',
		contact_phone TEXT NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
		longitude DOUBLE PRECISION NOT NULL DEFAULT 0
	);`,
	`CREATE INDEX IF NOT EXISTS idx_work_addresses_customer_id ON work_addresses (customer_id);`,
	`CREATE TABLE IF NOT EXISTS dumpster_statuses (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name TEXT NOT NULL,
		color_code VARCHAR(16) NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		description TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE TABLE IF NOT EXISTS dumpsters (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name TEXT NOT NULL,
		size INTEGER NOT NULL,
		weight NUMERIC(12,2) NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT '',
		dumpster_status_id UUID NOT NULL REFERENCES dumpster_statuses(id)
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_dumpsters_name ON dumpsters (name);`,
	`CREATE TABLE IF NOT EXISTS fixes (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		custom_amount NUMERIC(12,2) NOT NULL,
		land_fill_cost NUMERIC(12,2) NOT NULL,
		tons_over_weight_amount NUMERIC(12,2) NOT NULL,
		days_over_time_amount NUMERIC(12,2) NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		invoice_number BIGSERIAL NOT NULL,
		customer_id UUID NOT NULL REFERENCES customers(id),
		work_address_id UUID NOT NULL REFERENCES work_addresses(id),
		dumpster_id UUID NOT NULL REFERENCES dumpsters(id),
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		removal_date DATE,
		contract_status TEXT NOT NULL DEFAULT 'ACTIVE'
			CHECK (contract_status IN ('ACTIVE', 'INACTIVE', 'PENDING', 'CANCELLED')),
		contract_payment_status TEXT NOT NULL DEFAULT 'PENDING_PAYMENT'
			CHECK (contract_payment_status IN ('PENDING_PAYMENT', 'PARTIAL_PAYMENT', 'PAID', 'DELAY_PAYMENT')),
		description TEXT NOT NULL DEFAULT '',
		base_weight NUMERIC(12,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contracts_invoice_number ON contracts (invoice_number);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_customer_id ON contracts (customer_id);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_dumpster_id ON contracts (dumpster_id);`,
	`CREATE TABLE IF NOT EXISTS fix_contracts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id),
		fix_id UUID NOT NULL REFERENCES fixes(id),
		made_payment_custom_amount BOOLEAN NOT NULL DEFAULT FALSE,
		made_payment_land_fill_cost BOOLEAN NOT NULL DEFAULT FALSE,
		made_payment_tons_over_weight_amount BOOLEAN NOT NULL DEFAULT FALSE,
		made_payment_days_over_time_amount BOOLEAN NOT NULL DEFAULT FALSE,
		payment_tons_over_weight_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		payment_days_over_time_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		overage_state TEXT NOT NULL DEFAULT 'NOT_APPLICABLE'
			CHECK (overage_state IN ('NOT_APPLICABLE', 'APPLICABLE_ZERO', 'APPLICABLE_QUANTITY')),
		description TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_fix_contracts_contract_id ON fix_contracts (contract_id);`,
	`CREATE TABLE IF NOT EXISTS drivers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		license_number TEXT NOT NULL,
		license_type TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);`,
	`CREATE TABLE IF NOT EXISTS transfers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id),
		driver_id UUID NOT NULL REFERENCES drivers(id),
		payment_percentage NUMERIC(5,2) NOT NULL DEFAULT 0,
		transfer_date DATE NOT NULL,
		transfer_type TEXT NOT NULL CHECK (transfer_type IN ('DELIVERY', 'COLLECTION')),
		payment_status TEXT NOT NULL DEFAULT 'PENDING' CHECK (payment_status IN ('PENDING', 'PAID')),
		description TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE INDEX IF NOT EXISTS idx_transfers_driver_id ON transfers (driver_id);`,
	`CREATE INDEX IF NOT EXISTS idx_transfers_contract_id ON transfers (contract_id);`,
	`CREATE TABLE IF NOT EXISTS business_expenses (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		date DATE NOT NULL,
		total_amount NUMERIC(12,2) NOT NULL,
		beneficiary TEXT NOT NULL,
		invoice TEXT NOT NULL DEFAULT '',
		payment_method TEXT NOT NULL
			CHECK (payment_method IN ('CASH', 'BANK_TRANSFER', 'CREDIT_DEBIT_CARD', 'CHECK', 'OTHERS')),
		specific_area TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE INDEX IF NOT EXISTS idx_business_expenses_date ON business_expenses (date);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
