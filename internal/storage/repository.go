package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"

	"fintrack/internal/log"
	"fintrack/internal/ports"
)

// DefaultBackupSuffix names the sibling file written by Backup.
const DefaultBackupSuffix = ".backup"

var sqlb = sq.StatementBuilder.PlaceholderFormat(sq.Question)

var _ ports.Store = (*SQLiteRepository)(nil)

// SQLiteRepository is the file-backed store. The *sql.DB is owned here and
// handed out one scoped connection per operation; statements auto-commit.
// Nothing guards against a second process writing the same file.
type SQLiteRepository struct {
	db           *sql.DB
	path         string
	backupSuffix string
}

type Option func(*SQLiteRepository)

// WithBackupSuffix overrides DefaultBackupSuffix.
func WithBackupSuffix(suffix string) Option {
	return func(r *SQLiteRepository) {
		if suffix != "" {
			r.backupSuffix = suffix
		}
	}
}

func NewSQLiteRepository(dbPath string, opts ...Option) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	repo := &SQLiteRepository{
		db:           db,
		path:         dbPath,
		backupSuffix: DefaultBackupSuffix,
	}
	for _, opt := range opts {
		opt(repo)
	}

	return repo, nil
}

func logger(ctx context.Context) *log.Logger {
	return log.For(ctx, log.ComponentStorage)
}

func dsn(dbPath string) string {
	return dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func openDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Path returns the live database file.
func (r *SQLiteRepository) Path() string {
	return r.path
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// withConn acquires a dedicated connection for the duration of fn and
// always returns it to the pool.
func (r *SQLiteRepository) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	return fn(conn)
}

// exec builds and runs a statement that returns no rows.
func (r *SQLiteRepository) exec(ctx context.Context, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build statement: %w", err)
	}

	var res sql.Result
	err = r.withConn(ctx, func(conn *sql.Conn) error {
		var execErr error
		res, execErr = conn.ExecContext(ctx, query, args...)
		return execErr
	})
	return res, err
}

// queryRow builds a single-row query and scans it into dest.
func (r *SQLiteRepository) queryRow(ctx context.Context, b sq.Sqlizer, dest ...any) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	return r.withConn(ctx, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, query, args...).Scan(dest...)
	})
}

// query builds a multi-row query and calls scan once per row.
func (r *SQLiteRepository) query(ctx context.Context, b sq.Sqlizer, scan func(*sql.Rows) error) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	return r.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			if err := scan(rows); err != nil {
				return err
			}
		}
		return rows.Err()
	})
}
