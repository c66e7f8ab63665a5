package infra

import (
	"fmt"

	"github.com/ueservicesllc1-ops/envios-sub002/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate,
// then applies the SQL constraints GORM cannot express.
//
// TranslateError is enabled so a unique-constraint violation surfaces as
// gorm.ErrDuplicatedKey — the register service relies on that to enforce the
// single-open-session invariant without a read-then-write race.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
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

	if err := db.AutoMigrate(
		&model.Product{},
		&model.StockRecord{},
		&model.StockMovement{},
		&model.Sale{},
		&model.SaleItem{},
		&model.AccountingEntry{},
		&model.RegisterSession{},
		&model.Customer{},
		&model.User{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}

	return db, nil
}

// applySchemaPatches creates the constraints AutoMigrate cannot: the partial
// unique index that allows at most one register session with status 'open'.
// Idempotent — safe to re-run on every boot.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_register_open
		   ON register_sessions (status) WHERE status = 'open'`,
	}
	for _, stmt := range patches {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
