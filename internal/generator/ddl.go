package generator

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/koba/sqldialect/internal/dialect"
	"github.com/koba/sqldialect/internal/diff"
	"github.com/koba/sqldialect/internal/schema"
)

// DDLGenerator generates DDL statements for one dialect
type DDLGenerator struct {
	d      dialect.Dialect
	logger *slog.Logger

	// IfNotExists guards CREATE TABLE and DROP TABLE when the dialect allows it
	IfNotExists bool
}

// NewDDLGenerator creates a new DDL generator. A nil logger discards output.
func NewDDLGenerator(d dialect.Dialect, logger *slog.Logger) *DDLGenerator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &DDLGenerator{d: d, logger: logger.With("dialect", d.Name())}
}

// Dialect returns the dialect statements are generated for
func (g *DDLGenerator) Dialect() dialect.Dialect {
	return g.d
}

// CreateCatalog generates schemas, then tables, then indexes
func (g *DDLGenerator) CreateCatalog(c *schema.Catalog) ([]string, error) {
	var statements []string

	for _, s := range c.Schemas {
		stmt, err := g.d.CreateSchema(s)
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}

	for i := range c.Tables {
		stmt, err := g.CreateTable(&c.Tables[i])
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}

	for i := range c.Tables {
		for _, idx := range c.Tables[i].Indexes {
			stmt, err := g.createIndex(&c.Tables[i], idx)
			if err != nil {
				return nil, err
			}
			statements = append(statements, stmt)
		}
	}

	g.logger.Debug("generated catalog", "tables", len(c.Tables), "statements", len(statements))
	return statements, nil
}

// DropCatalog drops tables in reverse order, then schemas
func (g *DDLGenerator) DropCatalog(c *schema.Catalog) ([]string, error) {
	var statements []string
	for i := len(c.Tables) - 1; i >= 0; i-- {
		stmt, err := g.DropTable(c.Tables[i].QualifiedName())
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	for i := len(c.Schemas) - 1; i >= 0; i-- {
		stmt, err := g.dropSchema(c.Schemas[i])
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	return statements, nil
}

// Migrate generates the statements that turn the old catalog of a diff
// into the new one
func (g *DDLGenerator) Migrate(result *diff.Result) ([]string, error) {
	var statements []string

	for _, change := range result.SchemaChanges {
		if change.Action != diff.ActionAdd {
			continue
		}
		stmt, err := g.d.CreateSchema(change.Schema)
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}

	for _, tableDiff := range result.TableDiffs {
		stmts, err := g.migrateTable(tableDiff)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", tableDiff.TableName, err)
		}
		statements = append(statements, stmts...)
	}

	for _, change := range result.SchemaChanges {
		if change.Action != diff.ActionDrop {
			continue
		}
		stmt, err := g.dropSchema(change.Schema)
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}

	return statements, nil
}

// dropSchema drops a schema whose tables are already gone. Vendors that only
// drop a schema together with its contents get a cascading drop.
func (g *DDLGenerator) dropSchema(s schema.Schema) (string, error) {
	stmt, err := g.d.DropSchema(s, false)
	if dialect.IsUnsupported(err) && g.d.Capabilities().SupportsDropSchemaCascade {
		g.logger.Warn("schema dropped with its contents", "schema", s.Name)
		return g.d.DropSchema(s, true)
	}
	return stmt, err
}

func (g *DDLGenerator) migrateTable(tableDiff *diff.TableDiff) ([]string, error) {
	var statements []string
	add := func(stmt string, err error) error {
		if err != nil {
			return err
		}
		statements = append(statements, stmt)
		return nil
	}

	switch tableDiff.Action {
	case diff.ActionAdd:
		if err := add(g.CreateTable(tableDiff.NewTable)); err != nil {
			return nil, err
		}
		for _, idx := range tableDiff.NewTable.Indexes {
			if err := add(g.createIndex(tableDiff.NewTable, idx)); err != nil {
				return nil, err
			}
		}

	case diff.ActionDrop:
		if err := add(g.DropTable(tableDiff.TableName)); err != nil {
			return nil, err
		}

	case diff.ActionModify:
		table := tableDiff.TableName

		// Drop indexes before the columns they cover change
		for _, idxChange := range tableDiff.IndexChanges {
			if idxChange.Action == diff.ActionDrop || idxChange.Action == diff.ActionModify {
				if err := add(g.d.DropIndex(table, idxChange.IndexName)); err != nil {
					return nil, err
				}
			}
		}

		if tableDiff.PrimaryKeyChanged && len(tableDiff.OldTable.PrimaryKey) > 0 {
			if err := add(g.d.DropPrimaryKey(table)); err != nil {
				return nil, err
			}
		}

		for _, colChange := range tableDiff.ColumnChanges {
			switch colChange.Action {
			case diff.ActionAdd:
				if err := add(g.AddColumn(tableDiff.NewTable, colChange.NewColumn)); err != nil {
					return nil, err
				}
			case diff.ActionDrop:
				if err := add(g.DropColumn(table, colChange.ColumnName)); err != nil {
					return nil, err
				}
			case diff.ActionModify:
				stmts, err := g.ModifyColumn(tableDiff.NewTable, colChange.OldColumn, colChange.NewColumn)
				if err != nil {
					return nil, err
				}
				statements = append(statements, stmts...)
			}
		}

		if tableDiff.PrimaryKeyChanged && len(tableDiff.NewTable.PrimaryKey) > 0 {
			if err := add(g.d.AddPrimaryKey(table, tableDiff.NewTable.PrimaryKey)); err != nil {
				return nil, err
			}
		}

		for _, idxChange := range tableDiff.IndexChanges {
			if idxChange.Action == diff.ActionAdd || idxChange.Action == diff.ActionModify {
				if err := add(g.createIndex(tableDiff.NewTable, *idxChange.NewIndex)); err != nil {
					return nil, err
				}
			}
		}
	}

	return statements, nil
}

// CreateTable generates CREATE TABLE with inline primary and foreign keys
func (g *DDLGenerator) CreateTable(t *schema.Table) (string, error) {
	var parts []string
	name := t.QualifiedName()

	var autoinc *schema.Column
	for i := range t.Columns {
		col := &t.Columns[i]
		def, err := g.columnDefinition(name, col)
		if err != nil {
			return "", err
		}
		if col.Type.Kind.IsAutoinc() {
			autoinc = col
		}
		parts = append(parts, def)
	}

	pk, err := g.primaryKey(t, autoinc)
	if err != nil {
		return "", err
	}
	if pk != "" {
		parts = append(parts, pk)
	}

	for _, fk := range t.ForeignKeys {
		parts = append(parts, g.foreignKeyDefinition(fk))
	}

	return fmt.Sprintf("CREATE TABLE %s%s (\n  %s\n)", g.ifNotExists(), g.d.Identifier(name), strings.Join(parts, ",\n  ")), nil
}

// primaryKey renders the table-level key. Dialects whose autoincrement type
// already declares the key only accept that column as the whole key.
func (g *DDLGenerator) primaryKey(t *schema.Table, autoinc *schema.Column) (string, error) {
	if g.d.Capabilities().AutoincImpliesPrimaryKey && autoinc != nil {
		if len(t.PrimaryKey) > 1 || (len(t.PrimaryKey) == 1 && t.PrimaryKey[0] != autoinc.Name) {
			return "", dialect.Misconfigured(g.d.Name(), "table "+t.QualifiedName(),
				fmt.Sprintf("autoincrement column %s must be the whole primary key", autoinc.Name))
		}
		return "", nil
	}
	if len(t.PrimaryKey) == 0 {
		return "", nil
	}
	return fmt.Sprintf("PRIMARY KEY (%s)", g.identifiers(t.PrimaryKey)), nil
}

// DropTable generates DROP TABLE
func (g *DDLGenerator) DropTable(name string) (string, error) {
	if name == "" {
		return "", dialect.Misconfigured(g.d.Name(), "DROP TABLE", "a table name is required")
	}
	return "DROP TABLE " + g.ifExists() + g.d.Identifier(name), nil
}

// AddColumn generates ALTER TABLE ... ADD COLUMN
func (g *DDLGenerator) AddColumn(t *schema.Table, col *schema.Column) (string, error) {
	def, err := g.columnDefinition(t.QualifiedName(), col)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", g.d.Identifier(t.QualifiedName()), def), nil
}

// DropColumn generates ALTER TABLE ... DROP COLUMN
func (g *DDLGenerator) DropColumn(table, column string) (string, error) {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", g.d.Identifier(table), g.d.Identifier(column)), nil
}

// ModifyColumn alters an existing column from old to col: its type, its
// nullability and its default, whichever differ
func (g *DDLGenerator) ModifyColumn(t *schema.Table, old, col *schema.Column) ([]string, error) {
	typ, err := g.columnType(t.QualifiedName(), col)
	if err != nil {
		return nil, err
	}
	return g.d.AlterColumn(t.QualifiedName(), dialect.ColumnAlteration{
		Column:      col.Name,
		Type:        typ,
		Nullable:    col.Nullable,
		Default:     col.Default,
		SetType:     old.Type != col.Type,
		SetNullable: old.Nullable != col.Nullable,
		SetDefault:  !sameDefault(old.Default, col.Default),
	})
}

func sameDefault(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (g *DDLGenerator) createIndex(t *schema.Table, idx schema.Index) (string, error) {
	if idx.Table == "" {
		idx.Table = t.QualifiedName()
	}
	return g.d.CreateIndex(idx)
}

func (g *DDLGenerator) columnType(table string, col *schema.Column) (string, error) {
	typ, err := dialect.ColumnTypeSQL(g.d.DataTypes(), col.Type)
	if err != nil {
		return "", fmt.Errorf("column %s.%s: %w", table, col.Name, err)
	}
	if g.d.DataTypes().Widens(col.Type.Kind) {
		g.logger.Warn("column stored in a wider type",
			"table", table, "column", col.Name, "kind", col.Type.Kind.String(), "type", typ)
	}
	return typ, nil
}

func (g *DDLGenerator) columnDefinition(table string, col *schema.Column) (string, error) {
	typ, err := g.columnType(table, col)
	if err != nil {
		return "", err
	}
	def := g.d.Identifier(col.Name) + " " + typ

	// Identity types carry their own constraints
	if col.Type.Kind.IsAutoinc() {
		return def, nil
	}

	if !col.Nullable {
		def += " NOT NULL"
	}
	if col.Default != nil {
		def += " DEFAULT " + *col.Default
	}
	return def, nil
}

func (g *DDLGenerator) foreignKeyDefinition(fk schema.ForeignKey) string {
	var sb strings.Builder
	if fk.Name != "" {
		sb.WriteString("CONSTRAINT ")
		sb.WriteString(g.d.Identifier(fk.Name))
		sb.WriteString(" ")
	}
	fmt.Fprintf(&sb, "FOREIGN KEY (%s) REFERENCES %s (%s)",
		g.identifiers(fk.Columns), g.d.Identifier(fk.RefTable), g.identifiers(fk.RefColumns))
	if fk.OnDelete != "" {
		sb.WriteString(" ON DELETE ")
		sb.WriteString(fk.OnDelete)
	}
	if fk.OnUpdate != "" {
		sb.WriteString(" ON UPDATE ")
		sb.WriteString(fk.OnUpdate)
	}
	return sb.String()
}

func (g *DDLGenerator) identifiers(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = g.d.Identifier(name)
	}
	return strings.Join(quoted, ", ")
}

func (g *DDLGenerator) ifNotExists() string {
	if g.IfNotExists && g.d.Capabilities().SupportsIfNotExists {
		return "IF NOT EXISTS "
	}
	return ""
}

func (g *DDLGenerator) ifExists() string {
	if g.IfNotExists && g.d.Capabilities().SupportsIfNotExists {
		return "IF EXISTS "
	}
	return ""
}
