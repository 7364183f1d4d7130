package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopCatalog = `
schemas:
  - name: sales
    authorization: admin
tables:
  - name: customers
    schema: sales
    columns:
      - name: id
        type: long_autoinc
      - name: email
        type: varchar
        length: 255
      - name: balance
        type: decimal
        precision: 12
        scale: 2
        default: "0"
      - name: note
        type: text
        nullable: true
    primary_key: [id]
    indexes:
      - columns: [email]
        unique: true
  - name: orders
    schema: sales
    columns:
      - name: id
        type: int_autoinc
      - name: customer_id
        type: long
    primary_key: [id]
    foreign_keys:
      - name: fk_orders_customer
        columns: [customer_id]
        references: sales.customers
        ref_columns: [id]
        on_delete: CASCADE
`

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog([]byte(shopCatalog))
	require.NoError(t, err)

	require.Len(t, c.Schemas, 1)
	assert.Equal(t, Schema{Name: "sales", Authorization: "admin"}, c.Schemas[0])
	require.Len(t, c.Tables, 2)

	customers := c.Table("sales.customers")
	require.NotNil(t, customers)
	assert.Equal(t, KindLongAutoinc, customers.Columns[0].Type.Kind)
	assert.Equal(t, Sized(KindVarchar, 255), customers.Columns[1].Type)
	assert.Equal(t, Decimal(12, 2), customers.Columns[2].Type)
	require.NotNil(t, customers.Columns[2].Default)
	assert.Equal(t, "0", *customers.Columns[2].Default)
	assert.True(t, customers.Column("note").Nullable)
	assert.Nil(t, customers.Column("missing"))

	require.Len(t, customers.Indexes, 1)
	assert.Equal(t, "sales.customers", customers.Indexes[0].Table)
	assert.Equal(t, "sales_customers_email_unique", customers.Indexes[0].IndexName())

	orders := c.Table("sales.orders")
	require.NotNil(t, orders)
	assert.Equal(t, "sales.customers", orders.ForeignKeys[0].RefTable)
	assert.Equal(t, []string{"id"}, orders.ForeignKeys[0].RefColumns)
}

func TestParseCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"unknown type", "tables:\n  - name: t\n    columns:\n      - name: a\n        type: money\n", "unknown column type"},
		{"unknown field", "tables:\n  - name: t\n    colums: []\n", "colums"},
		{"no columns", "tables:\n  - name: t\n    columns: []\n", "has no columns"},
		{"duplicate table", "tables:\n  - name: t\n    columns: [{name: a, type: int}]\n  - name: t\n    columns: [{name: a, type: int}]\n", "duplicate table"},
		{"duplicate column", "tables:\n  - name: t\n    columns: [{name: a, type: int}, {name: a, type: int}]\n", "duplicate column"},
		{"missing type", "tables:\n  - name: t\n    columns: [{name: a}]\n", "has no type"},
		{"bad primary key", "tables:\n  - name: t\n    columns: [{name: a, type: int}]\n    primary_key: [b]\n", "unknown column b"},
		{"bad index", "tables:\n  - name: t\n    columns: [{name: a, type: int}]\n    indexes: [{columns: [b]}]\n", "unknown column b"},
		{"fk arity", "tables:\n  - name: t\n    columns: [{name: a, type: int}]\n    foreign_keys: [{name: fk, columns: [a], references: u, ref_columns: [x, y]}]\n", "references 2"},
		{"duplicate schema", "schemas: [{name: s}, {name: s}]\ntables: []\n", "duplicate schema"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(shopCatalog), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Len(t, c.Tables, 2)

	_, err = LoadCatalog(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "does not exist")
}

func TestColumnKind(t *testing.T) {
	for kind, name := range kindNames {
		parsed, err := ParseColumnKind(name)
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
		assert.Equal(t, name, kind.String())
	}

	parsed, err := ParseColumnKind(" VarChar ")
	require.NoError(t, err)
	assert.Equal(t, KindVarchar, parsed)

	assert.True(t, KindIntAutoinc.IsAutoinc())
	assert.False(t, KindInt.IsAutoinc())
	assert.Equal(t, "kind(99)", ColumnKind(99).String())
}

func TestColumnTypeString(t *testing.T) {
	assert.Equal(t, "varchar(64)", Sized(KindVarchar, 64).String())
	assert.Equal(t, "decimal(10,2)", Decimal(10, 2).String())
	assert.Equal(t, "int", Type(KindInt).String())
}

func TestIndexName(t *testing.T) {
	assert.Equal(t, "explicit", Index{Name: "explicit", Table: "t", Columns: []string{"a"}}.IndexName())
	assert.Equal(t, "t_a_b", Index{Table: "t", Columns: []string{"a", "b"}}.IndexName())
	assert.Equal(t, "s_t_a_unique", Index{Table: "s.t", Columns: []string{"a"}, Unique: true}.IndexName())
}
