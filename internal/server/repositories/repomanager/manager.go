// Package repomanager opens the record store named by the configuration
// and prepares it for use (directories, buckets, schema migrations).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/cyclelogin/internal/dbx"
	"github.com/dmitrijs2005/cyclelogin/internal/server/config"
	"github.com/dmitrijs2005/cyclelogin/internal/server/migrations"
	"github.com/dmitrijs2005/cyclelogin/internal/server/repositories/records"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// RepositoryManager prepares a SQL database for the record store.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Records(db *sql.DB) records.Repository
}

// SQLRepositoryManager wires the SQL record store for one dialect.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
}

func NewSQLRepositoryManager(dialect dbx.Dialect) *SQLRepositoryManager {
	return &SQLRepositoryManager{dialect: dialect}
}

func (m *SQLRepositoryManager) Records(db *sql.DB) records.Repository {
	return records.NewSQLRepository(db, m.dialect)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations of the manager's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	dialect, dir := "pgx", "postgres"
	if m.dialect == dbx.DialectSQLite {
		dialect, dir = "sqlite3", "sqlite"
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, dir)
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// Open returns the record store selected by cfg.StorageBackend.
func Open(ctx context.Context, cfg *config.Config) (records.Repository, error) {
	switch cfg.StorageBackend {
	case records.BackendMemory:
		return records.NewMemoryRepository(), nil
	case records.BackendFile:
		return records.NewFileRepository(cfg.DataDir)
	case records.BackendBolt:
		return records.NewBoltRepository(cfg.BoltPath)
	case records.BackendSQLite:
		return openSQL(ctx, "sqlite", cfg.SQLitePath, dbx.DialectSQLite)
	case records.BackendPostgres:
		return openSQL(ctx, "pgx", cfg.DatabaseDSN, dbx.DialectPostgres)
	case records.BackendRedis:
		return records.NewRedisRepository(ctx, cfg.RedisURL, cfg.RedisPrefix)
	case records.BackendS3:
		return records.NewS3Repository(ctx, records.S3Settings{
			User:     cfg.S3RootUser,
			Password: cfg.S3RootPassword,
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3BaseEndpoint,
			Prefix:   cfg.S3Prefix,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func openSQL(ctx context.Context, driver, dsn string, dialect dbx.Dialect) (records.Repository, error) {
	db, err := sqlOpen(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if dialect == dbx.DialectSQLite {
		// One writer at a time; the counter upsert relies on it.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db init error: %w", err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := NewSQLRepositoryManager(dialect)
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return m.Records(db), nil
}
