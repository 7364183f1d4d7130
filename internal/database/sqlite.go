package database

import (
	"github.com/koba/sqldialect/internal/dialect"

	_ "modernc.org/sqlite"
)

var sqliteDriver = driver{
	name: "sqlite",
	dsn:  sqliteDSN,
	tablesQuery: "SELECT name FROM sqlite_master " +
		"WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name",
}

// sqliteDSN uses the database setting as the file path
func sqliteDSN(cfg Config) (string, error) {
	if cfg.Database == "" {
		return "", dialect.Misconfigured("sqlite", "connection", "a database file (or :memory:) is required")
	}
	return cfg.Database, nil
}
