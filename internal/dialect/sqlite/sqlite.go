// Package sqlite provides the SQLite dialect.
package sqlite

import (
	"fmt"

	"github.com/koba/sqldialect/internal/dialect"
	"github.com/koba/sqldialect/internal/schema"
)

// Name is the SQLite dialect name.
const Name = "sqlite"

func init() {
	dialect.Register(New())
}

// Config is the static SQLite configuration.
var Config = dialect.Config{
	Name:        Name,
	Identifiers: dialect.Identifiers{Quote: `"`},
	Capabilities: dialect.Capabilities{
		SupportsIfNotExists:      true,
		SupportsPartialIndexes:   true,
		AutoincImpliesPrimaryKey: true,
	},
	ReservedWords: []string{
		"abort", "action", "add", "all", "alter", "and", "as", "asc", "between",
		"by", "case", "check", "collate", "column", "commit", "constraint",
		"create", "cross", "default", "delete", "desc", "distinct", "drop",
		"else", "end", "escape", "except", "exists", "foreign", "from", "glob",
		"group", "having", "in", "index", "inner", "insert", "intersect",
		"into", "is", "isnull", "join", "key", "left", "like", "limit", "match",
		"natural", "not", "notnull", "null", "of", "offset", "on", "or",
		"order", "outer", "primary", "references", "regexp", "right",
		"select", "set", "table", "then", "to", "transaction", "union",
		"unique", "update", "using", "values", "when", "where",
	},
}

// Dialect is the SQLite dialect.
type Dialect struct {
	*dialect.Base
}

// New returns a SQLite dialect.
func New() *Dialect {
	return &Dialect{Base: dialect.NewBase(Config, dataTypes{dialect.BaseDataTypes{Dialect: Name}}, functions{})}
}

// CreateSchema always fails: SQLite has no schemas, only attached databases.
func (d *Dialect) CreateSchema(s schema.Schema) (string, error) {
	return "", dialect.Unsupported(Name, "CREATE SCHEMA", "attach a separate database file with ATTACH DATABASE instead")
}

// DropSchema always fails: SQLite has no schemas, only attached databases.
func (d *Dialect) DropSchema(s schema.Schema, cascade bool) (string, error) {
	return "", dialect.Unsupported(Name, "DROP SCHEMA", "detach the database file with DETACH DATABASE instead")
}

// AlterColumnType always fails: SQLite cannot change a column's type in place.
func (d *Dialect) AlterColumnType(table, column, columnType string) (string, error) {
	return "", dialect.Unsupported(Name, "ALTER COLUMN TYPE",
		fmt.Sprintf("rebuild table %s with the new definition of %s", table, column))
}

// AlterColumn always fails: SQLite cannot change a column in place.
func (d *Dialect) AlterColumn(table string, a dialect.ColumnAlteration) ([]string, error) {
	return nil, dialect.Unsupported(Name, "ALTER COLUMN",
		fmt.Sprintf("rebuild table %s with the new definition of %s", table, a.Column))
}

// AddPrimaryKey always fails: the primary key is part of CREATE TABLE.
func (d *Dialect) AddPrimaryKey(table string, columns []string) (string, error) {
	return "", dialect.Unsupported(Name, "ADD PRIMARY KEY", "rebuild table "+table+" with the new key")
}

// DropPrimaryKey always fails for the same reason as AddPrimaryKey.
func (d *Dialect) DropPrimaryKey(table string) (string, error) {
	return "", dialect.Unsupported(Name, "DROP PRIMARY KEY", "rebuild table "+table+" without the key")
}

type dataTypes struct {
	dialect.BaseDataTypes
}

func (dataTypes) ULongType() string    { return "BIGINT" }
func (dataTypes) DateTimeType() string { return "TEXT" }

func (dataTypes) IntegerAutoincType() string { return "INTEGER PRIMARY KEY AUTOINCREMENT" }
func (dataTypes) LongAutoincType() string    { return "INTEGER PRIMARY KEY AUTOINCREMENT" }

// BinaryType is always BLOB; SQLite ignores declared lengths.
func (p dataTypes) BinaryType(length int) (string, error) {
	if length < 0 {
		return "", dialect.Misconfigured(Name, "binary column", fmt.Sprintf("negative length %d", length))
	}
	return "BLOB", nil
}

type functions struct {
	dialect.BaseFunctions
}

// Random renders RANDOM(). SQLite cannot seed its generator.
func (functions) Random(b *dialect.Builder, seed *int) error {
	if seed != nil {
		return dialect.Unsupported(Name, "RANDOM with a seed", "")
	}
	return b.Append("RANDOM()")
}

// CharLength renders LENGTH(expr).
func (functions) CharLength(b *dialect.Builder, expr dialect.Expression) error {
	return b.Append("LENGTH(", expr, ")")
}

// Substring renders SUBSTR(expr, start, length).
func (functions) Substring(b *dialect.Builder, f dialect.Substring) error {
	return dialect.WriteCall(b, "SUBSTR", f.Expr, f.Start, f.Length)
}

// Concat renders a || 'sep' || b.
func (functions) Concat(b *dialect.Builder, f dialect.Concat) error {
	if len(f.Exprs) == 0 {
		return dialect.Misconfigured(Name, "concat", "no expressions to concatenate")
	}
	for i, e := range f.Exprs {
		if i > 0 {
			if err := b.Append(" || "); err != nil {
				return err
			}
			if f.Separator != "" {
				if err := b.Append(dialect.Lit(f.Separator), " || "); err != nil {
					return err
				}
			}
		}
		if err := b.Append(e); err != nil {
			return err
		}
	}
	return nil
}

// GroupConcat renders GROUP_CONCAT([DISTINCT] expr[, 'sep']).
func (functions) GroupConcat(b *dialect.Builder, f dialect.GroupConcat) error {
	if len(f.OrderBy) > 0 {
		return dialect.Unsupported(Name, "GROUP_CONCAT with ORDER BY", "order the rows in a subquery instead")
	}
	if f.Distinct && f.Separator != nil {
		return dialect.Unsupported(Name, "GROUP_CONCAT DISTINCT with a separator",
			"DISTINCT aggregates take a single argument")
	}
	if err := b.Append("GROUP_CONCAT("); err != nil {
		return err
	}
	if f.Distinct {
		if err := b.Append("DISTINCT "); err != nil {
			return err
		}
	}
	if err := b.Append(f.Expr); err != nil {
		return err
	}
	if f.Separator != nil {
		if err := b.Append(", ", dialect.Lit(*f.Separator)); err != nil {
			return err
		}
	}
	return b.Append(")")
}

// Locate renders INSTR(expr, 'substring').
func (functions) Locate(b *dialect.Builder, f dialect.Locate) error {
	return dialect.WriteCall(b, "INSTR", f.Expr, dialect.Lit(f.Substring))
}

// Regexp always fails: REGEXP needs an application-defined regexp() function.
func (functions) Regexp(b *dialect.Builder, f dialect.Regexp) error {
	return dialect.Unsupported(Name, "REGEXP", "register an application-defined regexp() function")
}

var strftimeFormats = map[dialect.DatePart]string{
	dialect.Year:   "%Y",
	dialect.Month:  "%m",
	dialect.Day:    "%d",
	dialect.Hour:   "%H",
	dialect.Minute: "%M",
	dialect.Second: "%S",
}

// Extract renders CAST(STRFTIME('%Y', expr) AS INTEGER).
func (functions) Extract(b *dialect.Builder, f dialect.Extract) error {
	format, ok := strftimeFormats[f.Part]
	if !ok {
		return dialect.Unsupported(Name, "EXTRACT "+string(f.Part), "")
	}
	return b.Append("CAST(STRFTIME(", dialect.Lit(format), ", ", f.Expr, ") AS INTEGER)")
}
