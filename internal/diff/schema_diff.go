package diff

import (
	"slices"
	"sort"
	"strings"

	"github.com/koba/sqldialect/internal/schema"
)

// Action represents the type of change
type Action string

const (
	ActionAdd    Action = "ADD"
	ActionDrop   Action = "DROP"
	ActionModify Action = "MODIFY"
)

// SchemaChange represents a schema added to or removed from the catalog
type SchemaChange struct {
	Action Action
	Schema schema.Schema
}

// TableDiff represents the differences for one table
type TableDiff struct {
	TableName     string
	Action        Action
	OldTable      *schema.Table
	NewTable      *schema.Table
	ColumnChanges []ColumnChange
	IndexChanges  []IndexChange

	// PrimaryKeyChanged is set when the key columns or their order differ
	PrimaryKeyChanged bool
}

// ColumnChange represents a change to a column
type ColumnChange struct {
	ColumnName string
	Action     Action
	OldColumn  *schema.Column
	NewColumn  *schema.Column
}

// TypeChanged reports whether a modified column changed its logical type
func (c ColumnChange) TypeChanged() bool {
	return c.Action == ActionModify && c.OldColumn.Type != c.NewColumn.Type
}

// IndexChange represents a change to an index
type IndexChange struct {
	IndexName string
	Action    Action
	OldIndex  *schema.Index
	NewIndex  *schema.Index
}

// compareTables compares two versions of a table. Returns nil when equal.
func compareTables(old, new *schema.Table) *TableDiff {
	diff := &TableDiff{
		TableName: new.QualifiedName(),
		Action:    ActionModify,
		OldTable:  old,
		NewTable:  new,
	}

	// Added and modified columns, in the new table's order
	for i := range new.Columns {
		newCol := &new.Columns[i]
		oldCol := old.Column(newCol.Name)
		switch {
		case oldCol == nil:
			diff.ColumnChanges = append(diff.ColumnChanges, ColumnChange{
				ColumnName: newCol.Name,
				Action:     ActionAdd,
				NewColumn:  newCol,
			})
		case !columnsEqual(oldCol, newCol):
			diff.ColumnChanges = append(diff.ColumnChanges, ColumnChange{
				ColumnName: newCol.Name,
				Action:     ActionModify,
				OldColumn:  oldCol,
				NewColumn:  newCol,
			})
		}
	}

	// Dropped columns, in the old table's order
	for i := range old.Columns {
		oldCol := &old.Columns[i]
		if new.Column(oldCol.Name) == nil {
			diff.ColumnChanges = append(diff.ColumnChanges, ColumnChange{
				ColumnName: oldCol.Name,
				Action:     ActionDrop,
				OldColumn:  oldCol,
			})
		}
	}

	oldIndexes := indexesByName(old)
	newIndexes := indexesByName(new)

	for _, name := range sortedKeys(newIndexes) {
		newIdx := newIndexes[name]
		if oldIdx, exists := oldIndexes[name]; exists {
			if !indexesEqual(oldIdx, newIdx) {
				diff.IndexChanges = append(diff.IndexChanges, IndexChange{
					IndexName: name,
					Action:    ActionModify,
					OldIndex:  oldIdx,
					NewIndex:  newIdx,
				})
			}
		} else {
			diff.IndexChanges = append(diff.IndexChanges, IndexChange{
				IndexName: name,
				Action:    ActionAdd,
				NewIndex:  newIdx,
			})
		}
	}

	for _, name := range sortedKeys(oldIndexes) {
		if _, exists := newIndexes[name]; !exists {
			diff.IndexChanges = append(diff.IndexChanges, IndexChange{
				IndexName: name,
				Action:    ActionDrop,
				OldIndex:  oldIndexes[name],
			})
		}
	}

	diff.PrimaryKeyChanged = !slices.Equal(old.PrimaryKey, new.PrimaryKey)

	if len(diff.ColumnChanges) == 0 && len(diff.IndexChanges) == 0 && !diff.PrimaryKeyChanged {
		return nil
	}
	return diff
}

func indexesByName(t *schema.Table) map[string]*schema.Index {
	indexes := make(map[string]*schema.Index, len(t.Indexes))
	for i := range t.Indexes {
		idx := &t.Indexes[i]
		indexes[idx.IndexName()] = idx
	}
	return indexes
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func columnsEqual(a, b *schema.Column) bool {
	if a.Name != b.Name || a.Type != b.Type || a.Nullable != b.Nullable {
		return false
	}
	if (a.Default == nil) != (b.Default == nil) {
		return false
	}
	return a.Default == nil || *a.Default == *b.Default
}

func indexesEqual(a, b *schema.Index) bool {
	return a.IndexName() == b.IndexName() &&
		a.Unique == b.Unique &&
		strings.EqualFold(a.Type, b.Type) &&
		a.Where == b.Where &&
		slices.Equal(a.Columns, b.Columns)
}
