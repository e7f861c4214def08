package db

import (
	"fmt"
	"strings"
	"time"

	"yatube/internal/logging"
	"yatube/internal/models"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
	// DriverMemory is sqlite kept in memory, gone when the process exits.
	DriverMemory = "memory"

	slowQueryThreshold = 200 * time.Millisecond
)

// DefaultPostgresDSN is used for local development when DATABASE_URL is empty.
const DefaultPostgresDSN = "host=localhost user=postgres password=postgres dbname=yatube port=5432 sslmode=disable"

// DefaultSQLitePath is used for DriverSQLite when DATABASE_URL is empty.
const DefaultSQLitePath = "yatube.db"

// sqlite 默认不检查外键
const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// Open connects to the database behind driver and dsn.
func Open(driver, dsn string, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres, "":
		if dsn == "" {
			dsn = DefaultPostgresDSN
		}
		dialector = postgres.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	case DriverSQLite:
		if dsn == "" {
			dsn = DefaultSQLitePath
		}
		dialector = sqlite.Open(withPragmas(dsn))
	case DriverMemory:
		dialector = sqlite.Open("file::memory:?" + sqlitePragmas)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logging.NewGormLogger(logger, slowQueryThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if driver == DriverMemory {
		// every new connection would open an empty database
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
	}
	logger.Info("database connection established", zap.String("driver", driver))
	return conn, nil
}

// OpenMemory returns a migrated in-memory database.
func OpenMemory(logger *zap.Logger) (*gorm.DB, error) {
	conn, err := Open(DriverMemory, "", logger)
	if err != nil {
		return nil, err
	}
	if err := Migrate(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

func withPragmas(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + sqlitePragmas
	}
	return "file:" + dsn + "?" + sqlitePragmas
}

// Migrate creates or updates the schema.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
