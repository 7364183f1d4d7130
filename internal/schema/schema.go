package schema

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ColumnKind is the logical type of a column, independent of any vendor
type ColumnKind int

const (
	KindInvalid ColumnKind = iota
	KindBool
	KindByte
	KindUByte
	KindShort
	KindUShort
	KindInt
	KindUInt
	KindLong
	KindULong
	KindFloat
	KindDouble
	KindDecimal
	KindChar
	KindVarchar
	KindText
	KindBinary
	KindBlob
	KindUUID
	KindDate
	KindTime
	KindDateTime
	KindIntAutoinc
	KindLongAutoinc
)

var kindNames = map[ColumnKind]string{
	KindBool:        "bool",
	KindByte:        "byte",
	KindUByte:       "ubyte",
	KindShort:       "short",
	KindUShort:      "ushort",
	KindInt:         "int",
	KindUInt:        "uint",
	KindLong:        "long",
	KindULong:       "ulong",
	KindFloat:       "float",
	KindDouble:      "double",
	KindDecimal:     "decimal",
	KindChar:        "char",
	KindVarchar:     "varchar",
	KindText:        "text",
	KindBinary:      "binary",
	KindBlob:        "blob",
	KindUUID:        "uuid",
	KindDate:        "date",
	KindTime:        "time",
	KindDateTime:    "datetime",
	KindIntAutoinc:  "int_autoinc",
	KindLongAutoinc: "long_autoinc",
}

// String returns the catalog name of the kind
func (k ColumnKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseColumnKind resolves a catalog type name such as "varchar" or "long_autoinc"
func ParseColumnKind(name string) (ColumnKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for kind, n := range kindNames {
		if n == name {
			return kind, nil
		}
	}
	return KindInvalid, fmt.Errorf("unknown column type: %q", name)
}

// UnmarshalYAML decodes a kind from its catalog name
func (k *ColumnKind) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	kind, err := ParseColumnKind(name)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*k = kind
	return nil
}

// MarshalYAML encodes a kind as its catalog name
func (k ColumnKind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// IsAutoinc reports whether the kind is an auto-incrementing identity column
func (k ColumnKind) IsAutoinc() bool {
	return k == KindIntAutoinc || k == KindLongAutoinc
}

// ColumnType is a logical column type plus its optional parameters.
// A zero Length means the length was not supplied.
type ColumnType struct {
	Kind      ColumnKind `yaml:"type"`
	Length    int        `yaml:"length,omitempty"`
	Precision int        `yaml:"precision,omitempty"`
	Scale     int        `yaml:"scale,omitempty"`
}

// String renders the type in catalog notation, e.g. varchar(64) or decimal(10,2)
func (t ColumnType) String() string {
	switch {
	case t.Kind == KindDecimal:
		return fmt.Sprintf("%s(%d,%d)", t.Kind, t.Precision, t.Scale)
	case t.Length != 0:
		return fmt.Sprintf("%s(%d)", t.Kind, t.Length)
	}
	return t.Kind.String()
}

// Type returns a ColumnType of the given kind without parameters
func Type(kind ColumnKind) ColumnType {
	return ColumnType{Kind: kind}
}

// Sized returns a ColumnType of the given kind with a length
func Sized(kind ColumnKind, length int) ColumnType {
	return ColumnType{Kind: kind, Length: length}
}

// Decimal returns a decimal ColumnType
func Decimal(precision, scale int) ColumnType {
	return ColumnType{Kind: KindDecimal, Precision: precision, Scale: scale}
}

// Column represents a table column
type Column struct {
	Name     string     `yaml:"name"`
	Type     ColumnType `yaml:",inline"`
	Nullable bool       `yaml:"nullable,omitempty"`
	Default  *string    `yaml:"default,omitempty"`
}

// Schema identifies a database schema and its optional owner
type Schema struct {
	Name          string `yaml:"name"`
	Authorization string `yaml:"authorization,omitempty"`
}

// Index represents an index on a table
type Index struct {
	Name    string   `yaml:"name,omitempty"`
	Table   string   `yaml:"table,omitempty"`
	Columns []string `yaml:"columns"`
	Unique  bool     `yaml:"unique,omitempty"`
	Type    string   `yaml:"type,omitempty"`  // e.g. BTREE, GIN, FULLTEXT
	Where   string   `yaml:"where,omitempty"` // partial index filter
}

// IndexName returns the explicit name or one derived from table and columns
func (i Index) IndexName() string {
	if i.Name != "" {
		return i.Name
	}
	parts := append([]string{i.Table}, i.Columns...)
	name := strings.Join(parts, "_")
	if i.Unique {
		name += "_unique"
	}
	return strings.ReplaceAll(name, ".", "_")
}

// ForeignKey represents a foreign key constraint
type ForeignKey struct {
	Name       string   `yaml:"name"`
	Columns    []string `yaml:"columns"`
	RefTable   string   `yaml:"references"`
	RefColumns []string `yaml:"ref_columns"`
	OnDelete   string   `yaml:"on_delete,omitempty"` // CASCADE, SET NULL, etc.
	OnUpdate   string   `yaml:"on_update,omitempty"`
}

// Table represents a complete table definition
type Table struct {
	Name        string       `yaml:"name"`
	Schema      string       `yaml:"schema,omitempty"`
	Columns     []Column     `yaml:"columns"`
	PrimaryKey  []string     `yaml:"primary_key,omitempty"`
	Indexes     []Index      `yaml:"indexes,omitempty"`
	ForeignKeys []ForeignKey `yaml:"foreign_keys,omitempty"`
}

// QualifiedName returns schema.name, or name when the table has no schema
func (t *Table) QualifiedName() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// Column returns the named column, or nil
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}
