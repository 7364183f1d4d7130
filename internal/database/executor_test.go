package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koba/sqldialect/internal/dialect"
	"github.com/koba/sqldialect/internal/dialect/db2"
	"github.com/koba/sqldialect/internal/dialect/postgres"
	"github.com/koba/sqldialect/internal/dialect/sqlite"
	"github.com/koba/sqldialect/internal/generator"
	"github.com/koba/sqldialect/internal/schema"
)

func TestExecutor_Apply(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		stmts     []string
		expectErr bool
	}{
		{
			name: "all statements succeed",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("CREATE TABLE a").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("CREATE INDEX a_x").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectCommit()
			},
			stmts: []string{"CREATE TABLE a (x INT)", "CREATE INDEX a_x ON a (x)"},
		},
		{
			name: "failure rolls back",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("CREATE TABLE a").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("CREATE TABEL b").WillReturnError(errors.New("syntax error"))
				mock.ExpectRollback()
			},
			stmts:     []string{"CREATE TABLE a (x INT)", "CREATE TABEL b (y INT)", "CREATE TABLE c (z INT)"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.setupMock(mock)

			exec := NewExecutor(db, postgres.New(), nil)
			err = exec.Apply(context.Background(), tt.stmts)
			if tt.expectErr {
				require.Error(t, err)
				var execErr *dialect.ExecutionError
				require.ErrorAs(t, err, &execErr)
				assert.Equal(t, "postgres", execErr.Dialect)
				assert.Equal(t, "CREATE TABEL b (y INT)", execErr.Statement)
				assert.EqualError(t, errors.Unwrap(err), "syntax error")
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestExecutor_BeginFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectBegin().WillReturnError(errors.New("connection lost"))

	err = NewExecutor(db, postgres.New(), nil).Apply(context.Background(), []string{"SELECT 1"})
	assert.ErrorContains(t, err, "failed to begin transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_Exec(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE DATABASE shop").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DROP DATABASE shop").WillReturnError(errors.New("database is in use"))

	exec := NewExecutor(db, postgres.New(), nil)
	require.NoError(t, exec.Exec(context.Background(), "CREATE DATABASE shop"))

	err = exec.Exec(context.Background(), "DROP DATABASE shop")
	var execErr *dialect.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "DROP DATABASE shop", execErr.Statement)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_RejectsOtherActiveDialect(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ctx := dialect.WithContext(context.Background(), db2.New())
	err = NewExecutor(db, postgres.New(), nil).Apply(ctx, []string{"CREATE SCHEMA s"})
	assert.ErrorContains(t, err, "active dialect is db2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_Tables(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM information_schema.tables").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("orders").AddRow("sales.customers"))

	tables, err := NewExecutor(db, postgres.New(), nil).Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "sales.customers"}, tables)
	assert.NoError(t, mock.ExpectationsWereMet())

	_, err = NewExecutor(db, db2.New(), nil).Tables(context.Background())
	assert.True(t, dialect.IsUnsupported(err))
}

const library = `
tables:
  - name: authors
    columns:
      - {name: id, type: int_autoinc}
      - {name: name, type: varchar, length: 100}
      - {name: born, type: date, nullable: true}
    primary_key: [id]
    indexes:
      - {columns: [name], unique: true}
  - name: books
    columns:
      - {name: id, type: long_autoinc}
      - {name: author_id, type: int}
      - {name: title, type: text}
      - {name: price, type: decimal, precision: 8, scale: 2, default: "0"}
      - {name: cover, type: binary, nullable: true}
    primary_key: [id]
    indexes:
      - {columns: [title], where: "price > 0"}
    foreign_keys:
      - {name: fk_author, columns: [author_id], references: authors, ref_columns: [id]}
`

func TestSQLite_AppliesGeneratedCatalog(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, Config{Dialect: "sqlite", Database: ":memory:"})
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	catalog, err := schema.ParseCatalog([]byte(library))
	require.NoError(t, err)

	d := sqlite.New()
	g := generator.NewDDLGenerator(d, nil)
	g.IfNotExists = true
	stmts, err := g.CreateCatalog(catalog)
	require.NoError(t, err)

	exec := NewExecutor(db, d, nil)
	defer exec.Close()
	require.NoError(t, exec.Apply(dialect.WithContext(ctx, d), stmts))

	// Guards make a second run a no-op
	require.NoError(t, exec.Apply(ctx, stmts))

	tables, err := exec.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"authors", "books"}, tables)

	_, err = db.ExecContext(ctx, "INSERT INTO authors (name) VALUES ('Le Guin')")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO books (author_id, title) VALUES (1, 'The Dispossessed')")
	require.NoError(t, err)

	var price float64
	require.NoError(t, db.QueryRowContext(ctx, "SELECT price FROM books WHERE id = 1").Scan(&price))
	assert.Zero(t, price)

	// Rendered functions run against the same database
	query, err := dialect.Render(d, dialect.CharLength{Expr: dialect.Col("title")})
	require.NoError(t, err)
	var length int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT "+query+" FROM books").Scan(&length))
	assert.Equal(t, len("The Dispossessed"), length)

	sep := "; "
	query, err = dialect.Render(d, dialect.GroupConcat{Expr: dialect.Col("title"), Separator: &sep})
	require.NoError(t, err)
	var titles string
	require.NoError(t, db.QueryRowContext(ctx, "SELECT "+query+" FROM books").Scan(&titles))
	assert.Equal(t, "The Dispossessed", titles)
}

func TestSQLite_FailedStatementIsExecutionError(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, Config{Dialect: "sqlite", Database: ":memory:"})
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	exec := NewExecutor(db, sqlite.New(), nil)
	defer exec.Close()

	err = exec.Apply(ctx, []string{
		"CREATE TABLE a (x INT NOT NULL)",
		"CREATE TABLE a (x INT NOT NULL)",
	})
	var execErr *dialect.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "sqlite", execErr.Dialect)

	// The transaction was rolled back
	tables, err := exec.Tables(ctx)
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestOpen_Unsupported(t *testing.T) {
	_, err := Open(context.Background(), Config{Dialect: "db2", Database: "SAMPLE"})
	assert.True(t, dialect.IsUnsupported(err))

	_, err = Open(context.Background(), Config{Dialect: "sqlite"})
	assert.True(t, dialect.IsConfiguration(err))
}
