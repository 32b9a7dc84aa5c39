package database

import (
	"fmt"

	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/config"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/documents"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/legal"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/users"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open establishes a connection with the configured driver and performs schema migrations.
func Open(driver, dsn string, logger *zap.Logger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database dsn is required")
	}

	var dialector gorm.Dialector
	switch driver {
	case "", config.DatabaseDriverSQLite:
		dialector = sqlite.Open(dsn)
	case config.DatabaseDriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("database driver %q is not supported", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, err
	}

	if driver != config.DatabaseDriverPostgres {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db, logger); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("database initialized", zap.String("driver", dialector.Name()))
	}
	return db, nil
}

// Migrate creates every table and applies the named data migrations once.
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	models := []interface{}{&users.User{}, &migrationRecord{}}
	models = append(models, legal.Models()...)
	models = append(models, documents.Models()...)
	if err := db.AutoMigrate(models...); err != nil {
		return err
	}
	return applyMigrations(db, logger)
}
