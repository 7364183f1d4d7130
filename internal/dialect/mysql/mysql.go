// Package mysql provides the MySQL dialect.
package mysql

import (
	"fmt"
	"strings"

	"github.com/koba/sqldialect/internal/dialect"
	"github.com/koba/sqldialect/internal/schema"
)

// Name is the MySQL dialect name.
const Name = "mysql"

func init() {
	dialect.Register(New())
}

// Config is the static MySQL configuration.
var Config = dialect.Config{
	Name:        Name,
	Identifiers: dialect.Identifiers{Quote: "`"},
	Capabilities: dialect.Capabilities{
		SupportsIfNotExists:       true,
		SupportsCreateSchema:      true,
		SupportsDropSchemaCascade: true,
		SupportsDatabaseDDL:       true,
	},
	ReservedWords: []string{
		"add", "all", "alter", "and", "as", "asc", "between", "by", "case",
		"check", "column", "constraint", "create", "cross", "database",
		"default", "delete", "desc", "distinct", "drop", "else", "exists",
		"false", "for", "foreign", "from", "fulltext", "group", "having", "in",
		"index", "inner", "insert", "interval", "into", "is", "join", "key",
		"keys", "left", "like", "limit", "match", "not", "null", "on", "or",
		"order", "outer", "primary", "references", "regexp", "right", "schema",
		"select", "set", "show", "table", "then", "to", "true", "union",
		"unique", "update", "usage", "using", "values", "when", "where", "with",
	},
}

// Dialect is the MySQL dialect.
type Dialect struct {
	*dialect.Base
}

// New returns a MySQL dialect.
func New() *Dialect {
	return &Dialect{Base: dialect.NewBase(Config, dataTypes{dialect.BaseDataTypes{Dialect: Name}}, functions{})}
}

// CreateSchema renders CREATE SCHEMA IF NOT EXISTS name. A schema is a
// database in MySQL and cannot be owned by another principal.
func (d *Dialect) CreateSchema(s schema.Schema) (string, error) {
	if s.Authorization != "" {
		return "", dialect.Unsupported(Name, "CREATE SCHEMA ... AUTHORIZATION",
			"schemas have no owner; grant privileges on the schema instead")
	}
	return d.Base.CreateSchema(s)
}

// DropSchema renders DROP SCHEMA IF EXISTS name. MySQL always drops every
// table in the schema, so a non-cascading drop cannot be expressed.
func (d *Dialect) DropSchema(s schema.Schema, cascade bool) (string, error) {
	if !cascade {
		return "", dialect.Unsupported(Name, "DROP SCHEMA without CASCADE",
			"mysql drops every table in the schema; request a cascading drop explicitly")
	}
	if s.Name == "" {
		return "", dialect.Misconfigured(Name, "DROP SCHEMA", "a schema name is required")
	}
	return "DROP SCHEMA IF EXISTS " + d.Identifier(s.Name), nil
}

// CreateIndex supports FULLTEXT and SPATIAL indexes and BTREE/HASH methods.
// MySQL has no IF NOT EXISTS for indexes.
func (d *Dialect) CreateIndex(idx schema.Index) (string, error) {
	if err := d.CheckIndex(idx); err != nil {
		return "", err
	}
	clauses := dialect.IndexClauses{OmitGuard: true}
	switch t := strings.ToUpper(idx.Type); t {
	case "":
	case "FULLTEXT", "SPATIAL":
		clauses.Prefix = t + " "
	case "BTREE", "HASH":
		clauses.Suffix = " USING " + t
	default:
		return "", dialect.Unsupported(Name, "index type "+idx.Type, "use FULLTEXT, SPATIAL, BTREE or HASH")
	}
	return d.IndexStatement(idx, clauses), nil
}

// DropIndex renders DROP INDEX name ON table.
func (d *Dialect) DropIndex(table, name string) (string, error) {
	if name == "" || table == "" {
		return "", dialect.Misconfigured(Name, "DROP INDEX", "an index name and a table are required")
	}
	return fmt.Sprintf("DROP INDEX %s ON %s", d.Identifier(name), d.Identifier(table)), nil
}

// AlterColumnType renders ALTER TABLE t MODIFY COLUMN c type.
func (d *Dialect) AlterColumnType(table, column, columnType string) (string, error) {
	return fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s %s",
		d.Identifier(table), d.Identifier(column), columnType), nil
}

// AlterColumn renders a single MODIFY COLUMN with the full column
// definition. MODIFY resets every attribute it does not repeat.
func (d *Dialect) AlterColumn(table string, a dialect.ColumnAlteration) ([]string, error) {
	def := d.Identifier(a.Column) + " " + a.Type
	if !a.Nullable {
		def += " NOT NULL"
	}
	if a.Default != nil {
		def += " DEFAULT " + *a.Default
	}
	return []string{fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s", d.Identifier(table), def)}, nil
}

// DropPrimaryKey renders ALTER TABLE t DROP PRIMARY KEY.
func (d *Dialect) DropPrimaryKey(table string) (string, error) {
	return "ALTER TABLE " + d.Identifier(table) + " DROP PRIMARY KEY", nil
}

type dataTypes struct {
	dialect.BaseDataTypes
}

func (dataTypes) UByteType() string    { return "TINYINT UNSIGNED" }
func (dataTypes) UShortType() string   { return "SMALLINT UNSIGNED" }
func (dataTypes) UIntegerType() string { return "INT UNSIGNED" }
func (dataTypes) ULongType() string    { return "BIGINT UNSIGNED" }

// Widens is always false: MySQL has unsigned variants of every integer width.
func (dataTypes) Widens(schema.ColumnKind) bool { return false }

type functions struct {
	dialect.BaseFunctions
}

// Random renders RAND(seed).
func (functions) Random(b *dialect.Builder, seed *int) error {
	if seed == nil {
		return b.Append("RAND()")
	}
	return b.Append("RAND(", *seed, ")")
}
