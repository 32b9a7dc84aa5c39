package database

import (
	"fmt"
	"time"

	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/legal"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/users"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	migrationNormalizeUserEmails    = "2025-03-01_normalize_user_emails"
	migrationDefaultInvoiceCurrency = "2025-03-14_default_invoice_currency"
)

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

// migration is a one-shot data fix recorded by name once applied.
type migration struct {
	name  string
	apply func(*gorm.DB) error
}

var migrations = []migration{
	{name: migrationNormalizeUserEmails, apply: normalizeUserEmails},
	{name: migrationDefaultInvoiceCurrency, apply: defaultInvoiceCurrency},
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	var appliedNames []string
	if err := db.Model(&migrationRecord{}).Pluck("name", &appliedNames).Error; err != nil {
		return fmt.Errorf("list applied migrations: %w", err)
	}
	applied := make(map[string]struct{}, len(appliedNames))
	for _, name := range appliedNames {
		applied[name] = struct{}{}
	}

	for _, pending := range migrations {
		if _, ok := applied[pending.name]; ok {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := pending.apply(tx); err != nil {
				return err
			}
			return tx.Create(&migrationRecord{Name: pending.name, AppliedAtSeconds: time.Now().UTC().Unix()}).Error
		})
		if err != nil {
			logger.Error("database migration failed", zap.String("migration", pending.name), zap.Error(err))
			return fmt.Errorf("migration %s: %w", pending.name, err)
		}
		logger.Info("database migration applied", zap.String("migration", pending.name))
	}
	return nil
}

// Accounts created before registration normalized addresses could carry mixed case.
func normalizeUserEmails(db *gorm.DB) error {
	return db.Model(&users.User{}).
		Where("email <> LOWER(TRIM(email))").
		Update("email", gorm.Expr("LOWER(TRIM(email))")).Error
}

func defaultInvoiceCurrency(db *gorm.DB) error {
	return db.Model(&legal.Invoice{}).
		Where("currency IS NULL OR currency = ''").
		Update("currency", legal.DefaultCurrency).Error
}
