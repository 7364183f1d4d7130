// Package postgres provides the PostgreSQL dialect.
package postgres

import (
	"fmt"
	"strings"

	"github.com/koba/sqldialect/internal/dialect"
	"github.com/koba/sqldialect/internal/schema"
)

// Name is the PostgreSQL dialect name.
const Name = "postgres"

func init() {
	dialect.Register(New())
}

// Config is the static PostgreSQL configuration.
var Config = dialect.Config{
	Name:        Name,
	Identifiers: dialect.Identifiers{Quote: `"`},
	Capabilities: dialect.Capabilities{
		SupportsIfNotExists:           true,
		SupportsMultipleGeneratedKeys: true,
		SupportsCreateSequence:        true,
		SupportsCreateSchema:          true,
		SupportsDropSchemaCascade:     true,
		SupportsDatabaseDDL:           true,
		SupportsPartialIndexes:        true,
	},
	ReservedWords: []string{
		"all", "analyse", "analyze", "and", "any", "array", "as", "asc",
		"asymmetric", "authorization", "binary", "both", "case", "cast", "check",
		"collate", "column", "constraint", "create", "cross", "current_date",
		"current_role", "current_time", "current_timestamp", "current_user",
		"default", "deferrable", "desc", "distinct", "do", "else", "end",
		"except", "false", "fetch", "for", "foreign", "from", "grant", "group",
		"having", "in", "initially", "inner", "intersect", "into", "is", "join",
		"lateral", "leading", "left", "like", "limit", "localtime",
		"localtimestamp", "natural", "not", "null", "offset", "on", "only",
		"or", "order", "outer", "placing", "primary", "references",
		"returning", "right", "select", "session_user", "some", "symmetric",
		"table", "then", "to", "trailing", "true", "union", "unique", "user",
		"using", "variadic", "when", "where", "window", "with",
	},
}

// Dialect is the PostgreSQL dialect.
type Dialect struct {
	*dialect.Base
}

// New returns a PostgreSQL dialect.
func New() *Dialect {
	return &Dialect{Base: dialect.NewBase(Config, dataTypes{dialect.BaseDataTypes{Dialect: Name}}, functions{})}
}

// CreateIndex places the index method in a USING clause before the columns.
func (d *Dialect) CreateIndex(idx schema.Index) (string, error) {
	if err := d.CheckIndex(idx); err != nil {
		return "", err
	}
	return d.IndexStatement(idx, dialect.IndexClauses{Method: idx.Type}), nil
}

// AlterColumnType renders ALTER TABLE t ALTER COLUMN c TYPE type.
func (d *Dialect) AlterColumnType(table, column, columnType string) (string, error) {
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s",
		d.Identifier(table), d.Identifier(column), columnType), nil
}

// AlterColumn uses the TYPE form for type changes and SET/DROP for the rest.
func (d *Dialect) AlterColumn(table string, a dialect.ColumnAlteration) ([]string, error) {
	return d.AlterColumnWith(table, a, d.AlterColumnType)
}

// DropPrimaryKey drops the constraint under the name postgres gives a
// primary key by default, <table>_pkey.
func (d *Dialect) DropPrimaryKey(table string) (string, error) {
	name := table[strings.LastIndex(table, ".")+1:]
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", d.Identifier(table), d.Identifier(name+"_pkey")), nil
}

type dataTypes struct {
	dialect.BaseDataTypes
}

func (dataTypes) ByteType() string           { return "SMALLINT" }
func (dataTypes) DateTimeType() string       { return "TIMESTAMP" }
func (dataTypes) BlobType() string           { return "BYTEA" }
func (dataTypes) UUIDType() string           { return "UUID" }
func (dataTypes) IntegerAutoincType() string { return "SERIAL" }
func (dataTypes) LongAutoincType() string    { return "BIGSERIAL" }

// BinaryType is always BYTEA; PostgreSQL has no length-bounded binary type.
func (p dataTypes) BinaryType(length int) (string, error) {
	if length < 0 {
		return "", dialect.Misconfigured(Name, "binary column", fmt.Sprintf("negative length %d", length))
	}
	return "BYTEA", nil
}

func (p dataTypes) Widens(kind schema.ColumnKind) bool {
	return kind == schema.KindByte || p.BaseDataTypes.Widens(kind)
}

type functions struct {
	dialect.BaseFunctions
}

// Random renders RANDOM(). Seeding is a separate SETSEED call.
func (functions) Random(b *dialect.Builder, seed *int) error {
	if seed != nil {
		return dialect.Unsupported(Name, "RANDOM with a seed", "call SETSEED before RANDOM()")
	}
	return b.Append("RANDOM()")
}

// Substring renders SUBSTRING(expr FROM start FOR length).
func (functions) Substring(b *dialect.Builder, f dialect.Substring) error {
	return b.Append("SUBSTRING(", f.Expr, " FROM ", f.Start, " FOR ", f.Length, ")")
}

// GroupConcat renders STRING_AGG([DISTINCT] expr, 'sep' [ORDER BY ...]).
func (functions) GroupConcat(b *dialect.Builder, f dialect.GroupConcat) error {
	sep := ","
	if f.Separator != nil {
		sep = *f.Separator
	}
	if err := b.Append("STRING_AGG("); err != nil {
		return err
	}
	if f.Distinct {
		if err := b.Append("DISTINCT "); err != nil {
			return err
		}
	}
	if err := b.Append(f.Expr, ", ", dialect.Lit(sep)); err != nil {
		return err
	}
	if len(f.OrderBy) > 0 {
		if err := b.Append(" ORDER BY "); err != nil {
			return err
		}
		if err := dialect.WriteOrderKeys(b, f.OrderBy); err != nil {
			return err
		}
	}
	return b.Append(")")
}

// Locate renders POSITION('substring' IN expr).
func (functions) Locate(b *dialect.Builder, f dialect.Locate) error {
	return b.Append("POSITION(", dialect.Lit(f.Substring), " IN ", f.Expr, ")")
}

// Regexp renders expr ~ pattern, or ~* when case-insensitive.
func (functions) Regexp(b *dialect.Builder, f dialect.Regexp) error {
	op := " ~* "
	if f.CaseSensitive {
		op = " ~ "
	}
	return b.Append(f.Expr, op, f.Pattern)
}
