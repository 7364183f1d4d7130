package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/koba/sqldialect/internal/dialect"
)

// Executor runs generated statements for one dialect
type Executor struct {
	db     *sql.DB
	d      dialect.Dialect
	logger *slog.Logger
}

// NewExecutor wraps an open connection. A nil logger discards output.
func NewExecutor(db *sql.DB, d dialect.Dialect, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Executor{db: db, d: d, logger: logger.With("dialect", d.Name())}
}

// Close closes the underlying connection
func (e *Executor) Close() error {
	if e.db != nil {
		return e.db.Close()
	}
	return nil
}

// Apply executes statements in order inside one transaction. The first
// failure rolls the transaction back and is returned as an *ExecutionError.
// Vendors that commit DDL implicitly keep the statements that ran before it.
func (e *Executor) Apply(ctx context.Context, statements []string) error {
	if err := e.checkContext(ctx); err != nil {
		return err
	}
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, stmt := range statements {
		e.logger.Debug("executing", "statement", stmt)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			e.logger.Error("statement failed", "statement", stmt, "error", err)
			return &dialect.ExecutionError{Dialect: e.d.Name(), Statement: stmt, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	e.logger.Info("applied statements", "count", len(statements))
	return nil
}

// Exec executes one statement outside a transaction, for DDL such as
// CREATE DATABASE that vendors refuse inside one
func (e *Executor) Exec(ctx context.Context, stmt string) error {
	if err := e.checkContext(ctx); err != nil {
		return err
	}
	e.logger.Debug("executing", "statement", stmt)
	if _, err := e.db.ExecContext(ctx, stmt); err != nil {
		e.logger.Error("statement failed", "statement", stmt, "error", err)
		return &dialect.ExecutionError{Dialect: e.d.Name(), Statement: stmt, Err: err}
	}
	return nil
}

// checkContext rejects statements rendered for another active dialect
func (e *Executor) checkContext(ctx context.Context) error {
	if active, ok := dialect.FromContext(ctx); ok && active.Name() != e.d.Name() {
		return fmt.Errorf("active dialect is %s but the connection is %s", active.Name(), e.d.Name())
	}
	return nil
}

// Tables lists the user tables visible to the connection
func (e *Executor) Tables(ctx context.Context) ([]string, error) {
	drv, err := lookupDriver(e.d.Name())
	if err != nil {
		return nil, err
	}

	rows, err := e.db.QueryContext(ctx, drv.tablesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to get tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, tableName)
	}
	return tables, rows.Err()
}
