package infra

import (
	"fmt"

	"vendapos/internal/model"
	"vendapos/internal/repository"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a GORM connection backed by pgx, migrates every table and
// then applies the idempotent SQL patches GORM cannot express (partial and
// expression indexes, FK actions).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates the schema. Integration tests call it
// directly against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto: %w", err)
	}
	if err := db.AutoMigrate(
		&model.Company{},
		&model.Seller{},
		&model.Customer{},
		&model.Product{},
		&model.StockMovement{},
		&model.CashClosure{},
		&model.CashWithdrawal{},
		&model.Budget{},
		&model.BudgetItem{},
		&model.Sale{},
		&model.SaleItem{},
		&model.SalePaymentMethod{},
		&model.FiscalDocument{},
		&model.Printer{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL. Each statement is guarded with
// IF NOT EXISTS so re-running on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// One open closure per (company, seller scope). The shared register has
		// seller_id NULL, which a plain unique index would not compare.
		{"open closure per scope", `
CREATE UNIQUE INDEX IF NOT EXISTS ` + repository.IdxOpenClosurePerScope + `
    ON cash_closures (company_id, COALESCE(seller_id, '00000000-0000-0000-0000-000000000000'::uuid))
    WHERE is_closed = false`},

		{"fiscal numbering", `
CREATE UNIQUE INDEX IF NOT EXISTS ` + repository.IdxFiscalNumber + `
    ON fiscal_documents (company_id, document_type, series, document_number)`},

		{"fiscal retry queue", `
CREATE INDEX IF NOT EXISTS idx_fiscal_documents_pending_retry
    ON fiscal_documents (next_retry_at)
    WHERE status = 'Pendente' AND next_retry_at IS NOT NULL`},

		// Removing a sale keeps its fiscal record for the audit trail.
		{"fiscal sale fk", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_fiscal_documents_sale') THEN
    ALTER TABLE fiscal_documents
      ADD CONSTRAINT fk_fiscal_documents_sale
      FOREIGN KEY (sale_id) REFERENCES sales(id) ON DELETE SET NULL;
  END IF;
END $$`},

		// Closures are never deleted while sales point at them.
		{"sale closure fk", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_sales_cash_closure') THEN
    ALTER TABLE sales
      ADD CONSTRAINT fk_sales_cash_closure
      FOREIGN KEY (cash_closure_id) REFERENCES cash_closures(id) ON DELETE RESTRICT;
  END IF;
END $$`},

		{"stock movement reference", `
CREATE INDEX IF NOT EXISTS idx_stock_movements_reference
    ON stock_movements (company_id, reference_id) WHERE reference_id IS NOT NULL`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
