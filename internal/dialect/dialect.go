// Package dialect defines the contracts every SQL vendor plugin satisfies:
// a DataTypeProvider for column types, a FunctionProvider for function
// calls, and a Dialect that composes both and adds DDL builders and
// capability flags.
//
// Base implements every contract method with SQL-92 style defaults driven
// by a Config. A vendor plugin embeds *Base and overrides only the methods
// whose syntax differs; operations a vendor cannot express return an
// *UnsupportedError instead of approximate SQL.
package dialect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/koba/sqldialect/internal/schema"
)

// Capabilities are static per-vendor flags read by callers before generating
// a statement, to pick another code path instead of handling a failure.
type Capabilities struct {
	// SupportsIfNotExists allows IF [NOT] EXISTS guards on DDL.
	SupportsIfNotExists bool
	// SupportsOnlyIdentifiersInGeneratedKeys restricts generated-key
	// retrieval to bare column names rather than expressions.
	SupportsOnlyIdentifiersInGeneratedKeys bool
	// SupportsMultipleGeneratedKeys allows returning more than one generated column.
	SupportsMultipleGeneratedKeys bool
	// SupportsCreateSequence allows CREATE SEQUENCE.
	SupportsCreateSequence bool
	// SupportsCreateSchema allows CREATE SCHEMA and DROP SCHEMA.
	SupportsCreateSchema bool
	// SupportsDropSchemaCascade allows DROP SCHEMA ... CASCADE.
	SupportsDropSchemaCascade bool
	// SupportsDatabaseDDL allows CREATE DATABASE and DROP DATABASE through SQL.
	SupportsDatabaseDDL bool
	// SupportsPartialIndexes allows CREATE INDEX ... WHERE.
	SupportsPartialIndexes bool
	// AutoincImpliesPrimaryKey means the autoincrement column type already
	// declares the primary key, so no table-level PRIMARY KEY may follow.
	AutoincImpliesPrimaryKey bool
}

// Identifiers describes how a vendor quotes identifiers.
type Identifiers struct {
	Quote    string // opening quote: ", `, [
	QuoteEnd string // closing quote, usually the same as Quote
}

// Config is the static description of a dialect.
type Config struct {
	// Name is the lowercase identity token, e.g. "db2".
	Name          string
	Identifiers   Identifiers
	Capabilities  Capabilities
	ReservedWords []string
}

// Dialect is a vendor-specific SQL profile.
type Dialect interface {
	// Name returns the stable lowercase token used by the registry and in errors.
	Name() string
	DataTypes() DataTypeProvider
	Functions() FunctionProvider
	Capabilities() Capabilities

	// QuoteIdentifier always quotes name.
	QuoteIdentifier(name string) string
	// Identifier quotes each dot-separated part of name only when needed.
	Identifier(name string) string

	CreateDatabase(name string) (string, error)
	DropDatabase(name string) (string, error)
	CreateSchema(s schema.Schema) (string, error)
	DropSchema(s schema.Schema, cascade bool) (string, error)
	CreateIndex(idx schema.Index) (string, error)
	DropIndex(table, name string) (string, error)
	AlterColumnType(table, column, columnType string) (string, error)
	// AlterColumn renders the statements that bring an existing column to
	// the state described by a.
	AlterColumn(table string, a ColumnAlteration) ([]string, error)
	AddPrimaryKey(table string, columns []string) (string, error)
	DropPrimaryKey(table string) (string, error)
}

// ColumnAlteration is the target state of an existing column. Type is the
// rendered vendor type; the Set fields name the properties that changed.
type ColumnAlteration struct {
	Column   string
	Type     string
	Nullable bool
	Default  *string

	SetType     bool
	SetNullable bool
	SetDefault  bool
}

var plainIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Base is the default Dialect implementation.
type Base struct {
	config    Config
	types     DataTypeProvider
	functions FunctionProvider
	reserved  map[string]bool
}

var _ Dialect = (*Base)(nil)

// NewBase builds a Base from cfg and the vendor's providers. It panics when
// cfg.Name is not a lowercase token, since that is a programming error in
// a plugin rather than a runtime condition.
func NewBase(cfg Config, types DataTypeProvider, functions FunctionProvider) *Base {
	if cfg.Name == "" || cfg.Name != strings.ToLower(cfg.Name) {
		panic(fmt.Sprintf("dialect: name %q must be a non-empty lowercase token", cfg.Name))
	}
	if cfg.Identifiers.Quote == "" {
		cfg.Identifiers.Quote = `"`
	}
	if cfg.Identifiers.QuoteEnd == "" {
		cfg.Identifiers.QuoteEnd = cfg.Identifiers.Quote
	}
	reserved := make(map[string]bool, len(cfg.ReservedWords))
	for _, w := range cfg.ReservedWords {
		reserved[strings.ToLower(w)] = true
	}
	return &Base{config: cfg, types: types, functions: functions, reserved: reserved}
}

func (d *Base) Name() string                { return d.config.Name }
func (d *Base) DataTypes() DataTypeProvider { return d.types }
func (d *Base) Functions() FunctionProvider { return d.functions }
func (d *Base) Capabilities() Capabilities  { return d.config.Capabilities }

// QuoteIdentifier wraps name in the vendor's quotes, doubling embedded closing quotes.
func (d *Base) QuoteIdentifier(name string) string {
	q := d.config.Identifiers
	return q.Quote + strings.ReplaceAll(name, q.QuoteEnd, q.QuoteEnd+q.QuoteEnd) + q.QuoteEnd
}

// Identifier quotes the parts of a possibly qualified name that are not
// plain identifiers or that collide with reserved words.
func (d *Base) Identifier(name string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		if !plainIdentifier.MatchString(part) || d.reserved[strings.ToLower(part)] {
			parts[i] = d.QuoteIdentifier(part)
		}
	}
	return strings.Join(parts, ".")
}

// CreateDatabase renders CREATE DATABASE [IF NOT EXISTS] name.
func (d *Base) CreateDatabase(name string) (string, error) {
	if !d.config.Capabilities.SupportsDatabaseDDL {
		return "", Unsupported(d.Name(), "CREATE DATABASE", "database lifecycle must be managed outside of SQL")
	}
	if name == "" {
		return "", Misconfigured(d.Name(), "CREATE DATABASE", "a database name is required")
	}
	return "CREATE DATABASE " + d.ifNotExists() + d.Identifier(name), nil
}

// DropDatabase renders DROP DATABASE [IF EXISTS] name.
func (d *Base) DropDatabase(name string) (string, error) {
	if !d.config.Capabilities.SupportsDatabaseDDL {
		return "", Unsupported(d.Name(), "DROP DATABASE", "database lifecycle must be managed outside of SQL")
	}
	if name == "" {
		return "", Misconfigured(d.Name(), "DROP DATABASE", "a database name is required")
	}
	return "DROP DATABASE " + d.ifExists() + d.Identifier(name), nil
}

// CreateSchema renders CREATE SCHEMA [IF NOT EXISTS] name [AUTHORIZATION principal].
func (d *Base) CreateSchema(s schema.Schema) (string, error) {
	if !d.config.Capabilities.SupportsCreateSchema {
		return "", Unsupported(d.Name(), "CREATE SCHEMA", "")
	}
	if s.Name == "" {
		return "", Misconfigured(d.Name(), "CREATE SCHEMA", "a schema name is required")
	}
	var sb strings.Builder
	sb.WriteString("CREATE SCHEMA ")
	sb.WriteString(d.ifNotExists())
	sb.WriteString(d.Identifier(s.Name))
	if s.Authorization != "" {
		sb.WriteString(" AUTHORIZATION ")
		sb.WriteString(d.Principal(s.Authorization))
	}
	return sb.String(), nil
}

// Principal renders an authorization ID. Reserved words stay bare: quoting
// would make the ID case-sensitive and name a different principal.
func (d *Base) Principal(name string) string {
	if plainIdentifier.MatchString(name) {
		return name
	}
	return d.QuoteIdentifier(name)
}

// DropSchema renders DROP SCHEMA [IF EXISTS] name [CASCADE].
func (d *Base) DropSchema(s schema.Schema, cascade bool) (string, error) {
	if !d.config.Capabilities.SupportsCreateSchema {
		return "", Unsupported(d.Name(), "DROP SCHEMA", "")
	}
	if cascade && !d.config.Capabilities.SupportsDropSchemaCascade {
		return "", Unsupported(d.Name(), "DROP SCHEMA CASCADE",
			"drop every object in the schema before dropping the schema")
	}
	if s.Name == "" {
		return "", Misconfigured(d.Name(), "DROP SCHEMA", "a schema name is required")
	}
	stmt := "DROP SCHEMA " + d.ifExists() + d.Identifier(s.Name)
	if cascade {
		stmt += " CASCADE"
	}
	return stmt, nil
}

// CreateIndex renders CREATE [UNIQUE] INDEX name ON table (columns) [WHERE filter].
// An index type has no portable syntax, so plugins that support types
// override this method.
func (d *Base) CreateIndex(idx schema.Index) (string, error) {
	if err := d.CheckIndex(idx); err != nil {
		return "", err
	}
	if idx.Type != "" {
		return "", Unsupported(d.Name(), "index type "+idx.Type, "")
	}
	return d.IndexStatement(idx, IndexClauses{}), nil
}

// CheckIndex validates the parts of idx every dialect needs.
func (d *Base) CheckIndex(idx schema.Index) error {
	if idx.Table == "" {
		return Misconfigured(d.Name(), "CREATE INDEX", "a table is required")
	}
	if len(idx.Columns) == 0 {
		return Misconfigured(d.Name(), "CREATE INDEX "+idx.IndexName(), "at least one column is required")
	}
	if idx.Where != "" && !d.config.Capabilities.SupportsPartialIndexes {
		return Unsupported(d.Name(), "partial index "+idx.IndexName(), "")
	}
	return nil
}

// IndexClauses are the vendor-specific pieces of a CREATE INDEX statement.
type IndexClauses struct {
	Prefix    string // before INDEX, e.g. "FULLTEXT "
	Method    string // USING method, before the column list
	Suffix    string // after the column list
	OmitGuard bool   // no IF NOT EXISTS even when the dialect supports it
}

// IndexStatement assembles CREATE [UNIQUE] [prefix]INDEX [IF NOT EXISTS] name
// ON table [USING method] (columns)[suffix] [WHERE filter].
func (d *Base) IndexStatement(idx schema.Index, c IndexClauses) string {
	var sb strings.Builder
	sb.WriteString("CREATE ")
	if idx.Unique {
		sb.WriteString("UNIQUE ")
	}
	sb.WriteString(c.Prefix)
	sb.WriteString("INDEX ")
	if !c.OmitGuard {
		sb.WriteString(d.ifNotExists())
	}
	sb.WriteString(d.Identifier(idx.IndexName()))
	sb.WriteString(" ON ")
	sb.WriteString(d.Identifier(idx.Table))
	if c.Method != "" {
		sb.WriteString(" USING ")
		sb.WriteString(c.Method)
	}
	sb.WriteString(" (")
	sb.WriteString(d.IdentifierList(idx.Columns))
	sb.WriteString(")")
	sb.WriteString(c.Suffix)
	if idx.Where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(idx.Where)
	}
	return sb.String()
}

// DropIndex renders DROP INDEX [IF EXISTS] name, with name qualified by the
// schema of table.
func (d *Base) DropIndex(table, name string) (string, error) {
	if name == "" {
		return "", Misconfigured(d.Name(), "DROP INDEX", "an index name is required")
	}
	return "DROP INDEX " + d.ifExists() + d.Identifier(IndexInTableSchema(table, name)), nil
}

// IndexInTableSchema qualifies an unqualified index name with the schema of
// table, for vendors that keep an index in a schema of its own.
func IndexInTableSchema(table, name string) string {
	i := strings.LastIndex(table, ".")
	if i < 0 || strings.Contains(name, ".") {
		return name
	}
	return table[:i] + "." + name
}

// AlterColumnType renders ALTER TABLE t ALTER COLUMN c SET DATA TYPE type.
func (d *Base) AlterColumnType(table, column, columnType string) (string, error) {
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DATA TYPE %s",
		d.Identifier(table), d.Identifier(column), columnType), nil
}

// AlterColumn renders one ALTER COLUMN statement per changed property.
func (d *Base) AlterColumn(table string, a ColumnAlteration) ([]string, error) {
	return d.AlterColumnWith(table, a, d.AlterColumnType)
}

// AlterColumnWith is AlterColumn with the type change rendered by alterType,
// so plugins that override AlterColumnType keep their syntax.
func (d *Base) AlterColumnWith(table string, a ColumnAlteration,
	alterType func(table, column, columnType string) (string, error)) ([]string, error) {
	var statements []string
	if a.SetType {
		stmt, err := alterType(table, a.Column, a.Type)
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}

	prefix := fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s ", d.Identifier(table), d.Identifier(a.Column))
	if a.SetNullable {
		if a.Nullable {
			statements = append(statements, prefix+"DROP NOT NULL")
		} else {
			statements = append(statements, prefix+"SET NOT NULL")
		}
	}
	if a.SetDefault {
		if a.Default == nil {
			statements = append(statements, prefix+"DROP DEFAULT")
		} else {
			statements = append(statements, prefix+"SET DEFAULT "+*a.Default)
		}
	}
	return statements, nil
}

// AddPrimaryKey renders ALTER TABLE t ADD PRIMARY KEY (columns).
func (d *Base) AddPrimaryKey(table string, columns []string) (string, error) {
	if len(columns) == 0 {
		return "", Misconfigured(d.Name(), "ADD PRIMARY KEY", "at least one column is required")
	}
	return fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (%s)", d.Identifier(table), d.IdentifierList(columns)), nil
}

// DropPrimaryKey fails by default: the key is a constraint whose name the
// vendor generated.
func (d *Base) DropPrimaryKey(table string) (string, error) {
	return "", Unsupported(d.Name(), "DROP PRIMARY KEY",
		"the key constraint of "+table+" has a generated name; drop it by name first")
}

// IdentifierList renders names separated by ", ".
func (d *Base) IdentifierList(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = d.Identifier(name)
	}
	return strings.Join(quoted, ", ")
}

func (d *Base) ifNotExists() string {
	if d.config.Capabilities.SupportsIfNotExists {
		return "IF NOT EXISTS "
	}
	return ""
}

func (d *Base) ifExists() string {
	if d.config.Capabilities.SupportsIfNotExists {
		return "IF EXISTS "
	}
	return ""
}
