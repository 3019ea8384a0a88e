// ABOUTME: SQL implementation of the Store interface over database/sql
// ABOUTME: Runs on SQLite (modernc.org/sqlite) or PostgreSQL (pgx) with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect selects placeholder style, schema and error classification.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// SQLStore implements Store on top of a *sql.DB.
type SQLStore struct {
	db      *sql.DB
	pool    *pgxpool.Pool // postgres only
	dialect Dialect
	limiter RentLimiter
	logger  *slog.Logger
}

// Ensure SQLStore implements Store.
var _ Store = (*SQLStore)(nil)

// Option configures a SQLStore.
type Option func(*SQLStore)

// WithRentLimiter sets the hook consulted before every rent.
func WithRentLimiter(l RentLimiter) Option {
	return func(s *SQLStore) {
		if l != nil {
			s.limiter = l
		}
	}
}

// WithLogger sets the logger. The component attribute is added by the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *SQLStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func newSQLStore(db *sql.DB, dialect Dialect, opts []Option) *SQLStore {
	s := &SQLStore{
		db:      db,
		dialect: dialect,
		limiter: Unlimited(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "store", "dialect", string(dialect))
	return s
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string, opts ...Option) (*SQLStore, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Pragmas are per connection; keep one writer so they always apply.
	db.SetMaxOpenConns(1)

	s := newSQLStore(db, DialectSQLite, opts)
	if err := s.createSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	s.logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// NewPostgresStore connects to PostgreSQL through a pgx pool and exposes it as
// a *sql.DB. The schema is created if it doesn't exist.
func NewPostgresStore(ctx context.Context, dsn string, opts ...Option) (*SQLStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	s := newSQLStore(stdlib.OpenDBFromPool(pool), DialectPostgres, opts)
	s.pool = pool

	if err := s.createSchema(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	s.logger.Info("Postgres store initialized", "host", cfg.ConnConfig.Host, "database", cfg.ConnConfig.Database)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLStore) createSchema(ctx context.Context) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.dialect == DialectPostgres {
		serial = "SERIAL PRIMARY KEY"
	}

	// Dates are stored as YYYY-MM-DD text in both dialects.
	statements := []string{
		`CREATE TABLE IF NOT EXISTS user_table (
			id ` + serial + `,
			first_name VARCHAR(100) NOT NULL,
			second_name VARCHAR(100) NOT NULL,
			birth_date TEXT NOT NULL,
			username VARCHAR(16) NOT NULL UNIQUE,
			password TEXT NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS author_table (
			id ` + serial + `,
			name VARCHAR(100) NOT NULL,
			bio VARCHAR(1000) NOT NULL,
			birth_date TEXT NOT NULL,
			author_hash VARCHAR(32) NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS book_table (
			id ` + serial + `,
			name VARCHAR(64) NOT NULL,
			description VARCHAR(1000) NOT NULL,
			publication_date TEXT NOT NULL,
			author_id INTEGER NOT NULL REFERENCES author_table(id),
			genre VARCHAR(32) NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity >= 0),
			book_hash VARCHAR(32) NOT NULL UNIQUE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_book_author ON book_table(author_id)`,
		`CREATE TABLE IF NOT EXISTS rent_table (
			rent_id ` + serial + `,
			reader_id INTEGER NOT NULL REFERENCES user_table(id),
			book_id INTEGER NOT NULL REFERENCES book_table(id),
			issue_date TEXT NOT NULL,
			return_date TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rent_reader ON rent_table(reader_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rent_book ON rent_table(book_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	err := s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

// Dialect returns the SQL dialect in use.
func (s *SQLStore) Dialect() Dialect {
	return s.dialect
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) exec(ctx context.Context, q queryer, query string, args ...any) (sql.Result, error) {
	return q.ExecContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) query(ctx context.Context, q queryer, query string, args ...any) (*sql.Rows, error) {
	return q.QueryContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) queryRow(ctx context.Context, q queryer, query string, args ...any) *sql.Row {
	return q.QueryRowContext(ctx, s.rebind(query), args...)
}

// insert runs an INSERT ... RETURNING <idColumn> and returns the new id.
func (s *SQLStore) insert(ctx context.Context, q queryer, query, idColumn string, args ...any) (int64, error) {
	var id int64
	err := s.queryRow(ctx, q, query+" RETURNING "+idColumn, args...).Scan(&id)
	return id, err
}

// withTx runs fn in a transaction, rolling back on error.
func (s *SQLStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func rowsAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	// SQLite returns "UNIQUE constraint failed" in the error message
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503" // foreign_key_violation
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
