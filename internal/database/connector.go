// Package database opens connections for a dialect and applies generated
// statements to them.
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/koba/sqldialect/internal/dialect"
)

// Config holds database connection configuration
type Config struct {
	Dialect  string
	Host     string
	Port     string
	Database string
	User     string
	Password string

	// DSN, when set, is passed to the driver unchanged
	DSN string
}

// driver knows how to reach one vendor through database/sql
type driver struct {
	name        string // database/sql driver name
	defaultPort string
	dsn         func(Config) (string, error)
	tablesQuery string
}

var drivers = map[string]driver{
	"mysql":     mysqlDriver,
	"postgres":  postgresDriver,
	"sqlite":    sqliteDriver,
	"sqlserver": sqlserverDriver,
}

func lookupDriver(dialectName string) (driver, error) {
	drv, ok := drivers[dialectName]
	if !ok {
		return driver{}, dialect.Unsupported(dialectName, "connecting",
			"no database/sql driver is linked for this dialect; apply the generated script with the vendor's own tools")
	}
	return drv, nil
}

// DSN returns the driver name and data source name for cfg
func DSN(cfg Config) (string, string, error) {
	drv, err := lookupDriver(cfg.Dialect)
	if err != nil {
		return "", "", err
	}
	if cfg.DSN != "" {
		return drv.name, cfg.DSN, nil
	}
	if cfg.Port == "" {
		cfg.Port = drv.defaultPort
	}
	dsn, err := drv.dsn(cfg)
	if err != nil {
		return "", "", err
	}
	return drv.name, dsn, nil
}

// Open connects to the database described by cfg and pings it
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	driverName, dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", cfg.Dialect, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", cfg.Dialect, err)
	}
	return db, nil
}
