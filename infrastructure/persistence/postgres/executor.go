// Package postgres implements the storage ports on PostgreSQL. Every
// statement goes through a single Execute method returning generic rows, so
// repositories can compose SQL freely and tests can script results without
// a live database.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

// Row is one result row keyed by column name.
type Row map[string]any

// Result carries the rows a statement produced. Mutating statements are
// written with RETURNING, so RowCount doubles as the affected-row count.
type Result struct {
	Rows     []Row
	RowCount int
}

// Executor runs one SQL statement with positional parameters.
type Executor interface {
	Execute(ctx context.Context, sqlText string, params ...any) (*Result, error)
}

// Store is the storage entry point shared by repositories: direct statement
// execution plus transaction scoping.
type Store interface {
	Executor
	WithinTransaction(ctx context.Context, fn func(tx Executor) error) error
}

// Options configures the connection pool.
type Options struct {
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	StatementTimeout time.Duration
}

// DB is the production Store backed by a pgx connection pool.
type DB struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string, opts Options, logger *zap.Logger) (*DB, error) {
	if opts.StatementTimeout > 0 {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "options=" + url.QueryEscape(fmt.Sprintf("-c statement_timeout=%d", opts.StatementTimeout.Milliseconds()))
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logger.Info("Connected to PostgreSQL",
		zap.Int("max_open_conns", opts.MaxOpenConns),
	)

	return &DB{db: db, logger: logger}, nil
}

// Close releases the connection pool.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping verifies the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Execute runs a single statement outside any transaction.
func (d *DB) Execute(ctx context.Context, sqlText string, params ...any) (*Result, error) {
	return runStatement(ctx, d.db, sqlText, params...)
}

// WithinTransaction runs fn inside a transaction, committing when fn
// returns nil and rolling back otherwise.
func (d *DB) WithinTransaction(ctx context.Context, fn func(tx Executor) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				d.logger.Error("Transaction rollback failed", zap.Error(rbErr))
			}
		}
	}()

	if err := fn(txExecutor{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

type txExecutor struct {
	tx *sql.Tx
}

func (e txExecutor) Execute(ctx context.Context, sqlText string, params ...any) (*Result, error) {
	return runStatement(ctx, e.tx, sqlText, params...)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func runStatement(ctx context.Context, q querier, sqlText string, params ...any) (*Result, error) {
	rows, err := q.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result.RowCount = len(result.Rows)
	return result, nil
}
