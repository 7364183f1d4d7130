package database

import (
	"fmt"
	"strings"

	_ "github.com/lib/pq"
)

var postgresDriver = driver{
	name:        "postgres",
	defaultPort: "5432",
	dsn:         postgresDSN,
	tablesQuery: `
		SELECT CASE WHEN table_schema = 'public' THEN table_name
		            ELSE table_schema || '.' || table_name END
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		  AND table_schema NOT IN ('pg_catalog', 'information_schema')
		ORDER BY 1
	`,
}

func postgresDSN(cfg Config) (string, error) {
	params := []string{
		"host=" + pqQuote(cfg.Host),
		"port=" + pqQuote(cfg.Port),
		"sslmode=disable",
	}
	if cfg.User != "" {
		params = append(params, "user="+pqQuote(cfg.User))
	}
	if cfg.Password != "" {
		params = append(params, "password="+pqQuote(cfg.Password))
	}
	if cfg.Database != "" {
		params = append(params, "dbname="+pqQuote(cfg.Database))
	}
	return strings.Join(params, " "), nil
}

// pqQuote quotes a key/value connection parameter when it contains spaces
// or quotes
func pqQuote(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return fmt.Sprintf("'%s'", v)
}
