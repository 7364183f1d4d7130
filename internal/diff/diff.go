// Package diff compares two catalogs and reports the schema, table, column
// and index changes needed to move from the first to the second.
package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/koba/sqldialect/internal/schema"
)

// Result holds the complete comparison result. Added schemas and tables are
// listed in the new catalog's order, dropped ones in reverse order of the old
// catalog, so that dependencies are created before and dropped after their
// dependents.
type Result struct {
	SchemaChanges []SchemaChange
	TableDiffs    []*TableDiff
}

// Empty reports whether the catalogs are equivalent
func (r *Result) Empty() bool {
	return len(r.SchemaChanges) == 0 && len(r.TableDiffs) == 0
}

// Compare compares two catalogs and returns the differences
func Compare(old, new *schema.Catalog) *Result {
	result := &Result{}

	oldSchemas := make(map[string]bool, len(old.Schemas))
	for _, s := range old.Schemas {
		oldSchemas[s.Name] = true
	}
	newSchemas := make(map[string]bool, len(new.Schemas))
	for _, s := range new.Schemas {
		newSchemas[s.Name] = true
		if !oldSchemas[s.Name] {
			result.SchemaChanges = append(result.SchemaChanges, SchemaChange{Action: ActionAdd, Schema: s})
		}
	}

	// Added and modified tables
	for i := range new.Tables {
		newTable := &new.Tables[i]
		oldTable := old.Table(newTable.QualifiedName())
		if oldTable == nil {
			result.TableDiffs = append(result.TableDiffs, &TableDiff{
				TableName: newTable.QualifiedName(),
				Action:    ActionAdd,
				NewTable:  newTable,
			})
			continue
		}
		if d := compareTables(oldTable, newTable); d != nil {
			result.TableDiffs = append(result.TableDiffs, d)
		}
	}

	// Dropped tables
	for i := len(old.Tables) - 1; i >= 0; i-- {
		oldTable := &old.Tables[i]
		if new.Table(oldTable.QualifiedName()) == nil {
			result.TableDiffs = append(result.TableDiffs, &TableDiff{
				TableName: oldTable.QualifiedName(),
				Action:    ActionDrop,
				OldTable:  oldTable,
			})
		}
	}

	for i := len(old.Schemas) - 1; i >= 0; i-- {
		if s := old.Schemas[i]; !newSchemas[s.Name] {
			result.SchemaChanges = append(result.SchemaChanges, SchemaChange{Action: ActionDrop, Schema: s})
		}
	}

	return result
}

// Display writes the diff result as a table
func Display(w io.Writer, result *Result) {
	if result.Empty() {
		_, _ = fmt.Fprintln(w, "No differences found.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Object", "Name", "Action", "Detail"})

	for _, change := range result.SchemaChanges {
		t.AppendRow(table.Row{"schema", change.Schema.Name, change.Action, ""})
	}
	for _, d := range result.TableDiffs {
		switch d.Action {
		case ActionAdd:
			t.AppendRow(table.Row{"table", d.TableName, d.Action, fmt.Sprintf("%d columns", len(d.NewTable.Columns))})
		case ActionDrop:
			t.AppendRow(table.Row{"table", d.TableName, d.Action, ""})
		case ActionModify:
			for _, c := range d.ColumnChanges {
				t.AppendRow(table.Row{"column", d.TableName + "." + c.ColumnName, c.Action, columnDetail(c)})
			}
			for _, c := range d.IndexChanges {
				t.AppendRow(table.Row{"index", c.IndexName, c.Action, d.TableName})
			}
			if d.PrimaryKeyChanged {
				t.AppendRow(table.Row{"primary key", d.TableName, ActionModify,
					keyDetail(d.OldTable.PrimaryKey) + " -> " + keyDetail(d.NewTable.PrimaryKey)})
			}
		}
	}
	t.Render()
}

func keyDetail(columns []string) string {
	if len(columns) == 0 {
		return "(none)"
	}
	return "(" + strings.Join(columns, ", ") + ")"
}

func columnDetail(c ColumnChange) string {
	switch c.Action {
	case ActionAdd:
		return c.NewColumn.Type.String()
	case ActionModify:
		if c.TypeChanged() {
			return c.OldColumn.Type.String() + " -> " + c.NewColumn.Type.String()
		}
		return "nullability or default"
	}
	return ""
}
