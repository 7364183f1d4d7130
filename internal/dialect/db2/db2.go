// Package db2 provides the IBM DB2 dialect.
package db2

import (
	"github.com/koba/sqldialect/internal/dialect"
	"github.com/koba/sqldialect/internal/schema"
)

// Name is the DB2 dialect name.
const Name = "db2"

func init() {
	dialect.Register(New())
}

// Config is the static DB2 configuration.
var Config = dialect.Config{
	Name:        Name,
	Identifiers: dialect.Identifiers{Quote: `"`},
	Capabilities: dialect.Capabilities{
		SupportsOnlyIdentifiersInGeneratedKeys: true,
		SupportsIfNotExists:                    false,
		SupportsMultipleGeneratedKeys:          false,
		SupportsCreateSequence:                 true,
		SupportsCreateSchema:                   true,
		SupportsDropSchemaCascade:              false,
		// CREATE/DROP DATABASE only run in the command line processor
		SupportsDatabaseDDL:    false,
		SupportsPartialIndexes: false,
	},
	ReservedWords: []string{
		"all", "and", "any", "as", "asc", "between", "by", "case", "check",
		"column", "constraint", "create", "current", "default", "delete",
		"desc", "distinct", "drop", "else", "end", "except", "exists", "fetch",
		"for", "foreign", "from", "grant", "group", "having", "in", "index",
		"inner", "insert", "intersect", "into", "is", "join", "key", "left",
		"like", "not", "null", "of", "on", "or", "order", "primary",
		"references", "right", "schema", "select", "set", "table", "then",
		"to", "union", "unique", "update", "user", "using", "values", "when",
		"where", "with",
	},
}

// Dialect is the DB2 dialect.
type Dialect struct {
	*dialect.Base
}

// New returns a DB2 dialect.
func New() *Dialect {
	return &Dialect{Base: dialect.NewBase(Config, dataTypes{dialect.BaseDataTypes{Dialect: Name}}, functions{})}
}

// CreateDatabase always fails: DB2 databases are created with the command
// line processor, not through a SQL connection.
func (d *Dialect) CreateDatabase(name string) (string, error) {
	return "", dialect.Unsupported(Name, "CREATE DATABASE",
		"it can only run in the command line processor (CLP), not through a connection")
}

// DropDatabase always fails for the same reason as CreateDatabase.
func (d *Dialect) DropDatabase(name string) (string, error) {
	return "", dialect.Unsupported(Name, "DROP DATABASE",
		"it can only run in the command line processor (CLP), not through a connection")
}

// DropSchema renders DROP SCHEMA name. DB2 has no cascading drop.
func (d *Dialect) DropSchema(s schema.Schema, cascade bool) (string, error) {
	if cascade {
		return "", dialect.Unsupported(Name, "DROP SCHEMA CASCADE",
			"there is no cascading drop in db2; drop each object that uses schema "+s.Name+" first")
	}
	return d.Base.DropSchema(s, false)
}

// CreateIndex places the index in its table's schema. DB2 would otherwise
// create it in the current schema.
func (d *Dialect) CreateIndex(idx schema.Index) (string, error) {
	if idx.Table != "" {
		idx.Name = dialect.IndexInTableSchema(idx.Table, idx.IndexName())
	}
	return d.Base.CreateIndex(idx)
}

// DropPrimaryKey renders ALTER TABLE t DROP PRIMARY KEY.
func (d *Dialect) DropPrimaryKey(table string) (string, error) {
	return "ALTER TABLE " + d.Identifier(table) + " DROP PRIMARY KEY", nil
}

type dataTypes struct {
	dialect.BaseDataTypes
}

func (dataTypes) ByteType() string     { return "SMALLINT" }
func (dataTypes) UByteType() string    { return "SMALLINT" }
func (dataTypes) DateTimeType() string { return "TIMESTAMP" }
func (dataTypes) ULongType() string    { return "BIGINT" }
func (dataTypes) TextType() string     { return "VARCHAR(32704)" }

func (dataTypes) IntegerAutoincType() string {
	return "INT NOT NULL GENERATED ALWAYS AS IDENTITY (START WITH 1, INCREMENT BY 1)"
}

func (dataTypes) LongAutoincType() string {
	return "BIGINT NOT NULL GENERATED ALWAYS AS IDENTITY (START WITH 1, INCREMENT BY 1)"
}

// BinaryType requires a length: DB2 has no unbounded VARBINARY.
func (p dataTypes) BinaryType(length int) (string, error) {
	if length == 0 {
		return "", dialect.Misconfigured(Name, "binary column", "the length of the binary column is missing")
	}
	return p.BaseDataTypes.BinaryType(length)
}

func (p dataTypes) Widens(kind schema.ColumnKind) bool {
	switch kind {
	case schema.KindByte, schema.KindUByte:
		return true
	}
	return p.BaseDataTypes.Widens(kind)
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

// GroupConcat renders LISTAGG(expr, 'sep') WITHIN GROUP (ORDER BY key ASC).
// LISTAGG here takes exactly one ordering key.
func (functions) GroupConcat(b *dialect.Builder, f dialect.GroupConcat) error {
	if len(f.OrderBy) != 1 {
		return dialect.Unsupported(b.Dialect().Name(), "GROUP_CONCAT",
			"LISTAGG requires exactly one column in the WITHIN GROUP (ORDER BY ...) clause")
	}
	if err := b.Append("LISTAGG("); err != nil {
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
	key := f.OrderBy[0]
	return b.Append(") WITHIN GROUP (ORDER BY ", key.Expr, " ", key.Order, ")")
}
