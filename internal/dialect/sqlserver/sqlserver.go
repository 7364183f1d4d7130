// Package sqlserver provides the Microsoft SQL Server dialect.
package sqlserver

import (
	"fmt"
	"strings"

	"github.com/koba/sqldialect/internal/dialect"
	"github.com/koba/sqldialect/internal/schema"
)

// Name is the SQL Server dialect name.
const Name = "sqlserver"

func init() {
	dialect.Register(New())
}

// Config is the static SQL Server configuration.
var Config = dialect.Config{
	Name:        Name,
	Identifiers: dialect.Identifiers{Quote: "[", QuoteEnd: "]"},
	Capabilities: dialect.Capabilities{
		SupportsOnlyIdentifiersInGeneratedKeys: true,
		SupportsMultipleGeneratedKeys:          true,
		SupportsCreateSequence:                 true,
		SupportsCreateSchema:                   true,
		SupportsDatabaseDDL:                    true,
		SupportsPartialIndexes:                 true,
	},
	ReservedWords: []string{
		"add", "all", "alter", "and", "any", "as", "asc", "authorization",
		"backup", "begin", "between", "by", "cascade", "case", "check",
		"clustered", "column", "constraint", "create", "cross", "current",
		"database", "default", "delete", "desc", "distinct", "drop", "else",
		"end", "exec", "exists", "file", "for", "foreign", "from", "full",
		"grant", "group", "having", "identity", "in", "index", "inner",
		"insert", "into", "is", "join", "key", "left", "like", "not", "null",
		"of", "on", "or", "order", "outer", "percent", "primary", "public",
		"references", "right", "schema", "select", "set", "table", "then",
		"to", "top", "union", "unique", "update", "user", "values", "view",
		"when", "where", "with",
	},
}

// Dialect is the SQL Server dialect.
type Dialect struct {
	*dialect.Base
}

// New returns a SQL Server dialect.
func New() *Dialect {
	return &Dialect{Base: dialect.NewBase(Config, dataTypes{dialect.BaseDataTypes{Dialect: Name}}, functions{})}
}

// CreateIndex supports CLUSTERED and NONCLUSTERED indexes.
func (d *Dialect) CreateIndex(idx schema.Index) (string, error) {
	if err := d.CheckIndex(idx); err != nil {
		return "", err
	}
	var clauses dialect.IndexClauses
	switch t := strings.ToUpper(idx.Type); t {
	case "":
	case "CLUSTERED", "NONCLUSTERED":
		clauses.Prefix = t + " "
	default:
		return "", dialect.Unsupported(Name, "index type "+idx.Type, "use CLUSTERED or NONCLUSTERED")
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

// AlterColumnType renders ALTER TABLE t ALTER COLUMN c type.
func (d *Dialect) AlterColumnType(table, column, columnType string) (string, error) {
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s %s",
		d.Identifier(table), d.Identifier(column), columnType), nil
}

// AlterColumn renders ALTER COLUMN c type [NOT] NULL. The column's
// nullability is always restated, since omitting it makes the column
// nullable. Defaults are named constraints and cannot be altered in place.
func (d *Dialect) AlterColumn(table string, a dialect.ColumnAlteration) ([]string, error) {
	if a.SetDefault {
		return nil, dialect.Unsupported(Name, "ALTER COLUMN "+a.Column+" DEFAULT",
			"defaults are named constraints; drop the default constraint and add a new one")
	}
	if !a.SetType && !a.SetNullable {
		return nil, nil
	}
	null := " NULL"
	if !a.Nullable {
		null = " NOT NULL"
	}
	stmt, err := d.AlterColumnType(table, a.Column, a.Type+null)
	if err != nil {
		return nil, err
	}
	return []string{stmt}, nil
}

type dataTypes struct {
	dialect.BaseDataTypes
}

func (dataTypes) BooleanType() string  { return "BIT" }
func (dataTypes) ByteType() string     { return "SMALLINT" }
func (dataTypes) UByteType() string    { return "TINYINT" }
func (dataTypes) FloatType() string    { return "REAL" }
func (dataTypes) DoubleType() string   { return "FLOAT" }
func (dataTypes) TextType() string     { return "VARCHAR(MAX)" }
func (dataTypes) BlobType() string     { return "VARBINARY(MAX)" }
func (dataTypes) UUIDType() string     { return "UNIQUEIDENTIFIER" }
func (dataTypes) DateTimeType() string { return "DATETIME2" }

func (dataTypes) IntegerAutoincType() string { return "INT IDENTITY(1,1)" }
func (dataTypes) LongAutoincType() string    { return "BIGINT IDENTITY(1,1)" }

// BinaryType renders VARBINARY(length), or VARBINARY(MAX) without a length.
func (p dataTypes) BinaryType(length int) (string, error) {
	if length == 0 {
		return "VARBINARY(MAX)", nil
	}
	return p.BaseDataTypes.BinaryType(length)
}

// Widens reports signed byte, ushort and uint, which need the next wider type.
// TINYINT is unsigned, so ubyte is exact.
func (dataTypes) Widens(kind schema.ColumnKind) bool {
	switch kind {
	case schema.KindByte, schema.KindUShort, schema.KindUInt:
		return true
	}
	return false
}

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

// CharLength renders LEN(expr).
func (functions) CharLength(b *dialect.Builder, expr dialect.Expression) error {
	return b.Append("LEN(", expr, ")")
}

// GroupConcat renders STRING_AGG(expr, 'sep') [WITHIN GROUP (ORDER BY ...)].
func (functions) GroupConcat(b *dialect.Builder, f dialect.GroupConcat) error {
	if f.Distinct {
		return dialect.Unsupported(Name, "GROUP_CONCAT DISTINCT", "deduplicate the rows in a subquery first")
	}
	sep := ","
	if f.Separator != nil {
		sep = *f.Separator
	}
	if err := b.Append("STRING_AGG(", f.Expr, ", ", dialect.Lit(sep), ")"); err != nil {
		return err
	}
	if len(f.OrderBy) == 0 {
		return nil
	}
	if err := b.Append(" WITHIN GROUP (ORDER BY "); err != nil {
		return err
	}
	if err := dialect.WriteOrderKeys(b, f.OrderBy); err != nil {
		return err
	}
	return b.Append(")")
}

// Locate renders CHARINDEX('substring', expr).
func (functions) Locate(b *dialect.Builder, f dialect.Locate) error {
	return dialect.WriteCall(b, "CHARINDEX", dialect.Lit(f.Substring), f.Expr)
}

// Regexp always fails: SQL Server has no regular expression predicate.
func (functions) Regexp(b *dialect.Builder, f dialect.Regexp) error {
	return dialect.Unsupported(Name, "REGEXP", "use LIKE or PATINDEX patterns instead")
}

// Extract renders DATEPART(part, expr).
func (functions) Extract(b *dialect.Builder, f dialect.Extract) error {
	return b.Append("DATEPART(", string(f.Part), ", ", f.Expr, ")")
}
