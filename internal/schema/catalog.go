package schema

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is a set of schemas and tables that DDL is generated for
type Catalog struct {
	Schemas []Schema `yaml:"schemas,omitempty"`
	Tables  []Table  `yaml:"tables"`
}

// LoadCatalog reads a catalog from a YAML file
func LoadCatalog(path string) (*Catalog, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("catalog file does not exist: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	catalog, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return catalog, nil
}

// ParseCatalog decodes and validates a YAML catalog
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&catalog); err != nil {
		return nil, err
	}

	// Indexes inherit the owning table
	for ti := range catalog.Tables {
		table := &catalog.Tables[ti]
		for ii := range table.Indexes {
			table.Indexes[ii].Table = table.QualifiedName()
		}
	}

	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// Validate checks that names are unique and that every referenced column exists
func (c *Catalog) Validate() error {
	schemas := make(map[string]bool)
	for _, s := range c.Schemas {
		if s.Name == "" {
			return fmt.Errorf("schema without a name")
		}
		if schemas[s.Name] {
			return fmt.Errorf("duplicate schema: %s", s.Name)
		}
		schemas[s.Name] = true
	}

	tables := make(map[string]bool)
	for i := range c.Tables {
		table := &c.Tables[i]
		if table.Name == "" {
			return fmt.Errorf("table without a name")
		}
		name := table.QualifiedName()
		if tables[name] {
			return fmt.Errorf("duplicate table: %s", name)
		}
		tables[name] = true

		if len(table.Columns) == 0 {
			return fmt.Errorf("table %s has no columns", name)
		}
		columns := make(map[string]bool)
		for _, col := range table.Columns {
			if col.Type.Kind == KindInvalid {
				return fmt.Errorf("table %s: column %s has no type", name, col.Name)
			}
			if columns[col.Name] {
				return fmt.Errorf("table %s: duplicate column %s", name, col.Name)
			}
			columns[col.Name] = true
		}

		check := func(what string, names []string) error {
			for _, n := range names {
				if !columns[n] {
					return fmt.Errorf("table %s: %s references unknown column %s", name, what, n)
				}
			}
			return nil
		}
		if err := check("primary key", table.PrimaryKey); err != nil {
			return err
		}
		for _, idx := range table.Indexes {
			if len(idx.Columns) == 0 {
				return fmt.Errorf("table %s: index %s has no columns", name, idx.IndexName())
			}
			if err := check("index "+idx.IndexName(), idx.Columns); err != nil {
				return err
			}
		}
		for _, fk := range table.ForeignKeys {
			if len(fk.Columns) != len(fk.RefColumns) {
				return fmt.Errorf("table %s: foreign key %s has %d columns but references %d",
					name, fk.Name, len(fk.Columns), len(fk.RefColumns))
			}
			if err := check("foreign key "+fk.Name, fk.Columns); err != nil {
				return err
			}
		}
	}
	return nil
}

// Table returns the table with the given qualified name, or nil
func (c *Catalog) Table(name string) *Table {
	for i := range c.Tables {
		if c.Tables[i].QualifiedName() == name {
			return &c.Tables[i]
		}
	}
	return nil
}
