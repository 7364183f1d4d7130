package dialect

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koba/sqldialect/internal/schema"
)

func newTestDialect() *Base {
	return NewBase(Config{
		Name:          "test",
		ReservedWords: []string{"order", "User"},
		Capabilities: Capabilities{
			SupportsIfNotExists:       true,
			SupportsCreateSchema:      true,
			SupportsDropSchemaCascade: true,
			SupportsDatabaseDDL:       true,
		},
	}, BaseDataTypes{Dialect: "test"}, BaseFunctions{})
}

func TestNewBase_RejectsBadNames(t *testing.T) {
	assert.Panics(t, func() { NewBase(Config{Name: "DB2"}, BaseDataTypes{}, BaseFunctions{}) })
	assert.Panics(t, func() { NewBase(Config{}, BaseDataTypes{}, BaseFunctions{}) })
}

func TestIdentifier(t *testing.T) {
	d := newTestDialect()
	tests := []struct {
		in   string
		want string
	}{
		{"users", "users"},
		{"order", `"order"`},
		{"user", `"user"`},
		{"my table", `"my table"`},
		{"sales.order", `sales."order"`},
		{"1abc", `"1abc"`},
		{`a"b`, `"a""b"`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Identifier(tt.in))
		})
	}
}

func TestQuoteIdentifier_AsymmetricQuotes(t *testing.T) {
	d := NewBase(Config{Name: "brackets", Identifiers: Identifiers{Quote: "[", QuoteEnd: "]"}},
		BaseDataTypes{}, BaseFunctions{})
	assert.Equal(t, "[a]]b]", d.QuoteIdentifier("a]b"))
	assert.Equal(t, "[my col]", d.Identifier("my col"))
}

func TestCapabilities_ReturnedByValue(t *testing.T) {
	d := newTestDialect()
	caps := d.Capabilities()
	caps.SupportsIfNotExists = false
	assert.True(t, d.Capabilities().SupportsIfNotExists)
	assert.Equal(t, d.Capabilities(), d.Capabilities())
}

func TestBase_DatabaseAndSchemaDDL(t *testing.T) {
	d := newTestDialect()

	sql, err := d.CreateDatabase("shop")
	require.NoError(t, err)
	assert.Equal(t, "CREATE DATABASE IF NOT EXISTS shop", sql)

	sql, err = d.DropDatabase("shop")
	require.NoError(t, err)
	assert.Equal(t, "DROP DATABASE IF EXISTS shop", sql)

	_, err = d.CreateDatabase("")
	assert.True(t, IsConfiguration(err))

	sql, err = d.CreateSchema(schema.Schema{Name: "S", Authorization: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "CREATE SCHEMA IF NOT EXISTS S AUTHORIZATION admin", sql)

	sql, err = d.DropSchema(schema.Schema{Name: "S"}, true)
	require.NoError(t, err)
	assert.Equal(t, "DROP SCHEMA IF EXISTS S CASCADE", sql)

	_, err = d.CreateSchema(schema.Schema{})
	assert.True(t, IsConfiguration(err))
}

func TestBase_WithoutCapabilities(t *testing.T) {
	d := NewBase(Config{Name: "bare"}, BaseDataTypes{Dialect: "bare"}, BaseFunctions{})

	_, err := d.CreateDatabase("shop")
	assert.True(t, IsUnsupported(err))
	_, err = d.DropDatabase("shop")
	assert.True(t, IsUnsupported(err))
	_, err = d.CreateSchema(schema.Schema{Name: "S"})
	assert.True(t, IsUnsupported(err))
}

func TestBase_Indexes(t *testing.T) {
	d := newTestDialect()

	sql, err := d.CreateIndex(schema.Index{Table: "users", Columns: []string{"email"}, Unique: true})
	require.NoError(t, err)
	assert.Equal(t, "CREATE UNIQUE INDEX IF NOT EXISTS users_email_unique ON users (email)", sql)

	sql, err = d.CreateIndex(schema.Index{Name: "by_name", Table: "sales.users", Columns: []string{"last", "first"}})
	require.NoError(t, err)
	assert.Equal(t, "CREATE INDEX IF NOT EXISTS by_name ON sales.users (last, first)", sql)

	_, err = d.CreateIndex(schema.Index{Table: "users", Columns: []string{"email"}, Where: "deleted IS NULL"})
	assert.True(t, IsUnsupported(err), "partial indexes need the capability")

	_, err = d.CreateIndex(schema.Index{Table: "users", Columns: []string{"email"}, Type: "GIN"})
	assert.True(t, IsUnsupported(err))

	_, err = d.CreateIndex(schema.Index{Table: "users"})
	assert.True(t, IsConfiguration(err))

	sql, err = d.DropIndex("users", "by_name")
	require.NoError(t, err)
	assert.Equal(t, "DROP INDEX IF EXISTS by_name", sql)

	sql, err = d.AlterColumnType("users", "age", "BIGINT")
	require.NoError(t, err)
	assert.Equal(t, "ALTER TABLE users ALTER COLUMN age SET DATA TYPE BIGINT", sql)
}

func TestBaseDataTypes(t *testing.T) {
	p := BaseDataTypes{Dialect: "test"}
	tests := []struct {
		name string
		typ  schema.ColumnType
		want string
	}{
		{"bool", schema.Type(schema.KindBool), "BOOLEAN"},
		{"ubyte", schema.Type(schema.KindUByte), "SMALLINT"},
		{"ulong", schema.Type(schema.KindULong), "NUMERIC(20)"},
		{"decimal", schema.Decimal(10, 2), "DECIMAL(10, 2)"},
		{"char", schema.Sized(schema.KindChar, 3), "CHAR(3)"},
		{"varchar", schema.Sized(schema.KindVarchar, 64), "VARCHAR(64)"},
		{"binary sized", schema.Sized(schema.KindBinary, 16), "VARBINARY(16)"},
		{"binary unsized", schema.Type(schema.KindBinary), "BLOB"},
		{"long autoinc", schema.Type(schema.KindLongAutoinc), "BIGINT AUTO_INCREMENT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ColumnTypeSQL(p, tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	errs := []schema.ColumnType{
		schema.Type(schema.KindVarchar),
		schema.Sized(schema.KindChar, -1),
		schema.Sized(schema.KindBinary, -5),
		schema.Decimal(2, 5),
		schema.Type(schema.KindInvalid),
	}
	for _, typ := range errs {
		_, err := ColumnTypeSQL(p, typ)
		assert.ErrorIs(t, err, ErrConfiguration, typ.String())
	}

	assert.True(t, p.Widens(schema.KindUInt))
	assert.False(t, p.Widens(schema.KindInt))
}

func TestBaseFunctions(t *testing.T) {
	d := newTestDialect()
	seed := 7
	sep := "','"
	tests := []struct {
		name string
		expr Expression
		want string
	}{
		{"random", Random{}, "RANDOM()"},
		{"seeded random", Random{Seed: &seed}, "RANDOM(7)"},
		{"char length", CharLength{Expr: Col("name")}, "CHAR_LENGTH(name)"},
		{"substring", Substring{Expr: Col("name"), Start: Int(2), Length: Int(3)}, "SUBSTRING(name, 2, 3)"},
		{"concat", Concat{Exprs: []Expression{Col("a"), Col("order")}}, `CONCAT(a, "order")`},
		{"concat ws", Concat{Separator: "-", Exprs: []Expression{Col("a"), Col("b")}}, "CONCAT_WS('-', a, b)"},
		{"group concat", GroupConcat{Expr: Col("name"), Separator: &sep, Distinct: true,
			OrderBy: []OrderKey{By(Col("name"), Desc), By(Col("id"), "")}},
			"GROUP_CONCAT(DISTINCT name ORDER BY name DESC, id ASC SEPARATOR ''',''')"},
		{"locate", Locate{Expr: Col("name"), Substring: "it's"}, "LOCATE('it''s', name)"},
		{"regexp", Regexp{Expr: Col("name"), Pattern: Lit("^a")}, "REGEXP_LIKE(name, '^a', 'i')"},
		{"extract", Extract{Part: Month, Expr: Col("created")}, "EXTRACT(MONTH FROM created)"},
		{"raw", Raw("1 + 1"), "1 + 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(d, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type failing struct{}

func (failing) WriteSQL(b *Builder) error {
	return b.Atomic(func() error {
		if err := b.Append("BROKEN("); err != nil {
			return err
		}
		return Unsupported(b.Dialect().Name(), "broken", "")
	})
}

func TestBuilder_AtomicOnFailure(t *testing.T) {
	d := newTestDialect()

	b := NewBuilder(d)
	require.NoError(t, b.Append("SELECT "))
	err := b.Append(failing{})
	require.Error(t, err)
	assert.Equal(t, "SELECT ", b.String(), "a failed call leaves the builder untouched")

	b = NewBuilder(d)
	require.NoError(t, b.Append("SELECT "))
	err = b.Append(Concat{})
	assert.True(t, IsConfiguration(err))
	assert.Equal(t, 7, b.Len())

	// Nested failures roll back to the outermost call
	b = NewBuilder(d)
	err = b.Append(CharLength{Expr: failing{}})
	require.Error(t, err)
	assert.Empty(t, b.String())
}

func TestBuilder_AppendRejectsUnknownParts(t *testing.T) {
	b := NewBuilder(newTestDialect())
	err := b.Append(3.14)
	assert.Error(t, err)
}

func TestRender_Idempotent(t *testing.T) {
	d := newTestDialect()
	e := GroupConcat{Expr: Col("x"), OrderBy: []OrderKey{By(Col("x"), Asc)}}
	first, err := Render(d, e)
	require.NoError(t, err)
	second, err := Render(d, e)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRegistry(t *testing.T) {
	d := newTestDialect()
	Register(d)

	got, ok := Get("TEST")
	require.True(t, ok)
	assert.Equal(t, "test", got.Name())

	got, err := Lookup("Test")
	require.NoError(t, err)
	assert.Same(t, d, got)

	_, err = Lookup("nosuch")
	assert.ErrorIs(t, err, ErrUnknownDialect)
	assert.Contains(t, err.Error(), "test")

	assert.Contains(t, List(), "test")
	assert.IsNonDecreasing(t, List())
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	d := newTestDialect()
	ctx := WithContext(context.Background(), d)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "test", got.Name())
}

func TestErrors(t *testing.T) {
	err := error(Unsupported("db2", "DROP SCHEMA CASCADE", "drop objects first"))
	assert.Equal(t, "db2: DROP SCHEMA CASCADE is not supported: drop objects first", err.Error())
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.NotErrorIs(t, err, ErrConfiguration)

	var unsupported *UnsupportedError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "db2", unsupported.Dialect)

	assert.Equal(t, "sqlite: REGEXP is not supported", Unsupported("sqlite", "REGEXP", "").Error())

	err = Misconfigured("db2", "binary column", "a length is required")
	assert.Equal(t, "db2: binary column: a length is required", err.Error())
	assert.True(t, IsConfiguration(err))
	assert.False(t, IsUnsupported(err))

	cause := errors.New("syntax error")
	err = &ExecutionError{Dialect: "sqlite", Statement: "CREATE TABEL t", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "CREATE TABEL t")
}

func TestBase_AuthorizationIsNotQuotedForReservedWords(t *testing.T) {
	d := newTestDialect()

	sql, err := d.CreateSchema(schema.Schema{Name: "S", Authorization: "user"})
	require.NoError(t, err)
	assert.Equal(t, "CREATE SCHEMA IF NOT EXISTS S AUTHORIZATION user", sql)

	sql, err = d.CreateSchema(schema.Schema{Name: "S", Authorization: "app owner"})
	require.NoError(t, err)
	assert.Equal(t, `CREATE SCHEMA IF NOT EXISTS S AUTHORIZATION "app owner"`, sql)
}

func TestBase_DropIndexUsesTableSchema(t *testing.T) {
	d := newTestDialect()

	sql, err := d.DropIndex("audit.events", "ev_id")
	require.NoError(t, err)
	assert.Equal(t, "DROP INDEX IF EXISTS audit.ev_id", sql)

	sql, err = d.DropIndex("audit.events", "other.ev_id")
	require.NoError(t, err)
	assert.Equal(t, "DROP INDEX IF EXISTS other.ev_id", sql)

	assert.Equal(t, "ev_id", IndexInTableSchema("events", "ev_id"))
}

func TestBase_AlterColumn(t *testing.T) {
	d := newTestDialect()
	zero := "0"

	tests := []struct {
		name string
		a    ColumnAlteration
		want []string
	}{
		{"type only", ColumnAlteration{Column: "age", Type: "BIGINT", SetType: true},
			[]string{"ALTER TABLE users ALTER COLUMN age SET DATA TYPE BIGINT"}},
		{"becomes nullable", ColumnAlteration{Column: "age", Type: "INT", Nullable: true, SetNullable: true},
			[]string{"ALTER TABLE users ALTER COLUMN age DROP NOT NULL"}},
		{"becomes required with default", ColumnAlteration{Column: "age", Type: "INT", Default: &zero, SetNullable: true, SetDefault: true},
			[]string{"ALTER TABLE users ALTER COLUMN age SET NOT NULL", "ALTER TABLE users ALTER COLUMN age SET DEFAULT 0"}},
		{"default removed", ColumnAlteration{Column: "age", Type: "INT", SetDefault: true},
			[]string{"ALTER TABLE users ALTER COLUMN age DROP DEFAULT"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.AlterColumn("users", tt.a)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBase_PrimaryKey(t *testing.T) {
	d := newTestDialect()

	sql, err := d.AddPrimaryKey("users", []string{"id", "order"})
	require.NoError(t, err)
	assert.Equal(t, `ALTER TABLE users ADD PRIMARY KEY (id, "order")`, sql)

	_, err = d.AddPrimaryKey("users", nil)
	assert.True(t, IsConfiguration(err))

	_, err = d.DropPrimaryKey("users")
	assert.True(t, IsUnsupported(err))
	assert.Contains(t, err.Error(), "users")
}
