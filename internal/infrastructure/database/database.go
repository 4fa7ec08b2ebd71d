package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sangkips/pharmacy-pos-api/internal/config"
	"github.com/sangkips/pharmacy-pos-api/internal/domain/entity"
	infraRepo "github.com/sangkips/pharmacy-pos-api/internal/infrastructure/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to the database selected by cfg.Database.Driver
func Open(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.App.Debug {
		logLevel = logger.Info
	}

	switch cfg.Database.Driver {
	case DriverPostgres, "":
		return NewPostgresDB(&cfg.Database, logLevel)
	case DriverSQLite:
		return NewSQLiteDB(cfg.Database.SQLitePath, logLevel)
	default:
		return nil, fmt.Errorf("unsupported database driver %q (use postgres or sqlite)", cfg.Database.Driver)
	}
}

func gormConfig(logLevel logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		// Timestamps are stored in UTC so range filters compare the same way on every driver
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, logLevel logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), gormConfig(logLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Println("Successfully connected to PostgreSQL database")
	return db, nil
}

// NewSQLiteDB opens a single-file store. SQLite allows one writer at a time,
// so the pool is capped at one connection and bill submissions queue on it.
func NewSQLiteDB(path string, logLevel logger.LogLevel) (*gorm.DB, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(logLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	log.Printf("Successfully opened SQLite database at %s", path)
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		// Inventory
		&entity.CatalogItem{},
		&entity.Customer{},

		// Billing
		&entity.Bill{},
		&entity.BillItem{},

		// System
		&entity.Setting{},
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// SeedDefaultData stores the configured payee and store header as settings
// unless they were already edited at runtime.
func SeedDefaultData(db *gorm.DB, cfg *config.Config) error {
	log.Println("Seeding default data...")

	defaults := map[string]string{
		entity.SettingStoreName: cfg.App.Name,
		entity.SettingCurrency:  cfg.Payment.Currency,
	}
	if cfg.Payment.PayeeVPA != "" {
		defaults[entity.SettingPayeeVPA] = cfg.Payment.PayeeVPA
	}
	if cfg.Payment.PayeeName != "" {
		defaults[entity.SettingPayeeName] = cfg.Payment.PayeeName
	}

	settings := infraRepo.NewSettingsRepository(db)
	if err := settings.SetDefaults(context.Background(), defaults); err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}

	log.Println("Default data seeding completed")
	return nil
}
