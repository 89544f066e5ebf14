package database

import (
	"fmt"

	"gescom-backend/models"

	"gorm.io/gorm"
)

// Migrate applies idempotent schema migrations:
// - AutoMigrate (tables/columns)
// - Money column types (NUMERIC(12,2))
// - Helpful indexes
// - Basic CHECK constraints
func Migrate(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(
			&models.CompanySettings{},
			&models.User{},
			&models.Product{},
			&models.Customer{},
			&models.Sale{},
			&models.SaleItem{},
			&models.Supplier{},
			&models.SupplierTransaction{},
			&models.Invoice{},
			&models.InvoiceItem{},
			&models.Quote{},
			&models.QuoteItem{},
			&models.CreditPayment{},
			&models.Check{},
			&models.StockMovement{},
			&models.BackupRecord{},
			&models.IdempotencyKey{},
		); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}

		// sqlite (tests) has no typed NUMERIC alters or DO blocks; the tags
		// on the models are enough there.
		if tx.Dialector.Name() != "postgres" {
			return nil
		}

		alters := []string{
			`ALTER TABLE products       ALTER COLUMN purchase_price TYPE numeric(12,2)`,
			`ALTER TABLE products       ALTER COLUMN price          TYPE numeric(12,2)`,
			`ALTER TABLE customers      ALTER COLUMN credit_limit   TYPE numeric(12,2)`,
			`ALTER TABLE customers      ALTER COLUMN credit_used    TYPE numeric(12,2)`,
			`ALTER TABLE sales          ALTER COLUMN total_amount   TYPE numeric(12,2)`,
			`ALTER TABLE sales          ALTER COLUMN paid_amount    TYPE numeric(12,2)`,
			`ALTER TABLE sales          ALTER COLUMN credit_amount  TYPE numeric(12,2)`,
			`ALTER TABLE sale_items     ALTER COLUMN unit_price     TYPE numeric(12,2)`,
			`ALTER TABLE sale_items     ALTER COLUMN total          TYPE numeric(12,2)`,
			`ALTER TABLE credit_payments ALTER COLUMN amount        TYPE numeric(12,2)`,
		}
		for _, stmt := range alters {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("money type migration failed on: %s - %w", stmt, err)
			}
		}

		indexes := []string{
			`CREATE INDEX IF NOT EXISTS idx_sales_customer_created ON sales (customer_id, created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_credit_payments_sale ON credit_payments (sale_id)`,
			`CREATE INDEX IF NOT EXISTS idx_stock_movements_product_created ON stock_movements (product_id, created_at)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_idempotency_keys_key ON idempotency_keys (key)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		checks := []string{
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'credit_payments'::regclass
					  AND conname  = 'chk_credit_payments_amount_pos'
				) THEN
					ALTER TABLE credit_payments
					ADD CONSTRAINT chk_credit_payments_amount_pos
					CHECK (amount > 0);
				END IF;
			END $$;`,
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'customers'::regclass
					  AND conname  = 'chk_customers_credit_used_nonneg'
				) THEN
					ALTER TABLE customers
					ADD CONSTRAINT chk_customers_credit_used_nonneg
					CHECK (credit_used >= 0);
				END IF;
			END $$;`,
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'sale_items'::regclass
					  AND conname  = 'chk_sale_items_quantity_pos'
				) THEN
					ALTER TABLE sale_items
					ADD CONSTRAINT chk_sale_items_quantity_pos
					CHECK (quantity > 0);
				END IF;
			END $$;`,
		}
		for _, stmt := range checks {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed: %w", err)
			}
		}

		return nil
	})
}

// AutoMigrate runs Migrate against the global connection.
func AutoMigrate() {
	if err := Migrate(DB); err != nil {
		panic(err)
	}
}
