package database

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrUnknownDriver is returned by Dialect for unsupported driver names.
var ErrUnknownDriver = errors.New("database: unknown driver")

// Dialect returns the gorm dialector of driver for dsn. An empty driver is
// inferred from the dsn scheme, falling back to sqlite.
func Dialect(driver, dsn string) (gorm.Dialector, error) {
	if driver == "" {
		driver = inferDriver(dsn)
	}

	switch strings.ToLower(driver) {
	case DriverSQLite, "sqlite3":
		return sqlite.Open(dsn), nil
	case DriverPostgres, "postgresql", "pgx":
		return postgres.Open(dsn), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}

func inferDriver(dsn string) string {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") ||
		strings.Contains(lower, "host=") {
		return DriverPostgres
	}
	return DriverSQLite
}
