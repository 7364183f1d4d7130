// Package all registers every built-in dialect.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each dialect plugin, which register
// themselves with the dialect registry:
//
//   - "db2"       (internal/dialect/db2)
//   - "mysql"     (internal/dialect/mysql)
//   - "postgres"  (internal/dialect/postgres)
//   - "sqlite"    (internal/dialect/sqlite)
//   - "sqlserver" (internal/dialect/sqlserver)
package all

import (
	_ "github.com/koba/sqldialect/internal/dialect/db2"
	_ "github.com/koba/sqldialect/internal/dialect/mysql"
	_ "github.com/koba/sqldialect/internal/dialect/postgres"
	_ "github.com/koba/sqldialect/internal/dialect/sqlite"
	_ "github.com/koba/sqldialect/internal/dialect/sqlserver"
)
