package database

import (
	"errors"
	"fmt"
	"time"

	"ledger/internal/logger"
	"ledger/internal/models"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Manager handles database operations
type Manager struct {
	db     *gorm.DB
	config *Config
}

// NewManager creates a new database manager
func NewManager(config *Config) (*Manager, error) {
	var dialector gorm.Dialector
	switch config.Driver {
	case DriverMySQL:
		dialector = mysql.Open(config.DSN())
	case DriverSQLite:
		dialector = sqlite.Open(config.DSN())
	default:
		dialector = postgres.New(postgres.Config{
			DSN:                  config.DSN(),
			PreferSimpleProtocol: true, // Required for Supabase Supavisor; harmless for direct connections
		})
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}
	if config.Driver == DriverSQLite {
		// sqlite allows a single writer; queueing on the pool keeps atomic units serialized.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Manager{db: db, config: config}, nil
}

// Migrate brings the schema up to date. Postgres uses the versioned SQL
// migrations; the other drivers are auto-migrated from the models.
func (m *Manager) Migrate() error {
	if m.config.Driver == DriverPostgres {
		return m.RunMigrations()
	}
	logger.Get().Infow("Auto-migrating schema", "driver", m.config.Driver)
	if err := m.db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	return nil
}

// NewMigrator opens a golang-migrate instance over the configured migrations directory.
// Callers must Close it.
func (m *Manager) NewMigrator() (*migrate.Migrate, error) {
	if m.config.Driver != DriverPostgres {
		return nil, fmt.Errorf("versioned migrations are only available for %s, got %s", DriverPostgres, m.config.Driver)
	}
	mig, err := migrate.New("file://"+m.config.MigrationsPath, m.config.MigrateURL())
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return mig, nil
}

// RunMigrations applies pending SQL migrations from the migrations/ directory.
func (m *Manager) RunMigrations() error {
	logger.Get().Info("Running database migrations...")

	mig, err := m.NewMigrator()
	if err != nil {
		return err
	}
	defer CloseMigrator(mig)

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Get().Info("Database migrations completed successfully")
	return nil
}

// Reset drops every ledger table and recreates the schema.
func (m *Manager) Reset() error {
	logger.Get().Warnw("Resetting database", "driver", m.config.Driver)

	if m.config.Driver == DriverPostgres {
		mig, err := m.NewMigrator()
		if err != nil {
			return err
		}
		defer CloseMigrator(mig)
		if err := mig.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration down failed: %w", err)
		}
		if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration up failed: %w", err)
		}
		return nil
	}

	all := models.All()
	// Drop in reverse so dependants go before the tables they reference.
	for i := len(all) - 1; i >= 0; i-- {
		if err := m.db.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	return m.Migrate()
}

// CloseMigrator closes a migrate instance, logging source and database close errors.
func CloseMigrator(mig *migrate.Migrate) {
	srcErr, dbErr := mig.Close()
	if srcErr != nil {
		logger.Get().Warnf("migrate source close error: %v", srcErr)
	}
	if dbErr != nil {
		logger.Get().Warnf("migrate database close error: %v", dbErr)
	}
}

// DB returns the underlying GORM database instance
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Close closes the underlying connection pool.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
