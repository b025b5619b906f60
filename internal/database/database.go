package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/forexfactory/site/internal/config"
	"github.com/forexfactory/site/internal/models"
	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Connect opens the configured database and optionally runs auto-migration.
func Connect(cfg *config.AppConfig, autoMigrate bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.IsDev() {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel), TranslateError: true}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err = openSQLite(cfg.DSN, gcfg)
	default:
		db, err = gorm.Open(mysql.New(mysql.Config{
			DSN:               cfg.DSN,
			DefaultStringSize: 191,
		}), gcfg)
	}
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if autoMigrate {
		if err := Migrate(db); err != nil {
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}
	return db, nil
}

// OpenSQLite opens a SQLite file with the pure-Go driver.
func OpenSQLite(path string) (*gorm.DB, error) {
	return openSQLite(path, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
}

func openSQLite(path string, gcfg *gorm.Config) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
	}, gcfg)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs GORM auto-migration for all models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserSession{},
		&models.Category{},
		&models.Blog{},
		&models.BlogCategory{},
		&models.SeoMeta{},
		&models.Signal{},
		&models.Media{},
	)
}

// IsDuplicate reports whether err is a unique-constraint violation.
// The SQLite dialector only translates cgo driver errors, so modernc
// messages are matched by text.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}
