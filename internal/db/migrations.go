package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE TABLE IF NOT EXISTS municipalities (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name TEXT NOT NULL,
		code TEXT NOT NULL
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_municipalities_name ON municipalities (name);`,
	`CREATE TABLE IF NOT EXISTS customers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		company TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_customers_name ON customers (name);`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_number BIGINT NOT NULL,
		customer_id UUID REFERENCES customers(id) ON DELETE SET NULL,
		customer_name TEXT NOT NULL,
		ad_type TEXT NOT NULL DEFAULT '',
		start_date DATE,
		end_date DATE,
		rent_cost NUMERIC(18,2) NOT NULL DEFAULT 0,
		discount NUMERIC(18,2) NOT NULL DEFAULT 0,
		total_paid NUMERIC(18,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contracts_number ON contracts (contract_number);`,
	`CREATE TABLE IF NOT EXISTS contract_installments (
		contract_id UUID NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		position INT NOT NULL,
		amount NUMERIC(18,2) NOT NULL,
		months INT NOT NULL DEFAULT 1,
		payment_type TEXT NOT NULL DEFAULT 'monthly',
		PRIMARY KEY (contract_id, position)
	);`,
	`CREATE TABLE IF NOT EXISTS billboards (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		district TEXT NOT NULL DEFAULT '',
		municipality TEXT NOT NULL DEFAULT '',
		size TEXT NOT NULL DEFAULT '',
		level TEXT NOT NULL DEFAULT '',
		monthly_price NUMERIC(18,2) NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'available',
		faces INT NOT NULL DEFAULT 1,
		landmark TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		gps TEXT NOT NULL DEFAULT '',
		contract_id UUID REFERENCES contracts(id) ON DELETE SET NULL,
		customer_name TEXT,
		rent_start DATE,
		rent_end DATE
	);`,
	`CREATE INDEX IF NOT EXISTS idx_billboards_contract_id ON billboards (contract_id) WHERE contract_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_billboards_city ON billboards (city);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
