package infra

import (
	"fmt"
	"strings"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the store, runs AutoMigrate for every table and then
// applies the idempotent SQL patches AutoMigrate cannot express.
// A "sqlite:" prefixed DSN opens an embedded SQLite file for local runs;
// anything else is handed to the Postgres driver.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(dialector(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
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
	if db.Dialector.Name() == "sqlite" {
		// SQLite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func dialector(dsn string) gorm.Dialector {
	if path, ok := strings.CutPrefix(dsn, "sqlite:"); ok {
		return sqlite.Open(path)
	}
	return postgres.Open(dsn)
}

// Migrate creates or updates the schema. It works on any gorm dialect; the
// Postgres-only patches are skipped elsewhere.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Barista{},
		&model.Category{},
		&model.Shop{},
		&model.Storage{},
		&model.Equipment{},
		&model.Expense{},
		&model.Supply{},
		&model.WeighedSale{},
		&model.WriteOff{},
		&model.DepositFund{},
		&model.CollectionFund{},
		&model.TransferProduct{},
		&model.Report{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches adds the partial indexes behind the reconciliation
// day queries. Every statement is guarded so re-running is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"partial index for day cash expenses", `
CREATE INDEX IF NOT EXISTS idx_expenses_day_cash
    ON expenses (shop_id, "timestamp")
    WHERE type_cost = 'cash' AND is_global = false AND backdating = false`},
		{"partial index for day weighed sales", `
CREATE INDEX IF NOT EXISTS idx_weighed_sales_day
    ON weighed_sales (shop_id, "timestamp")
    WHERE backdating = false`},
		{"report day lookup", `
CREATE INDEX IF NOT EXISTS idx_reports_shop_day
    ON reports (shop_id, "timestamp")`},
		{"type_cost domain on expenses", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_expenses_type_cost') THEN
    ALTER TABLE expenses ADD CONSTRAINT chk_expenses_type_cost CHECK (type_cost IN ('cash', 'cashless'));
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
