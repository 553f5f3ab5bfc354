package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/cyclelogin/internal/dbx"
	"github.com/dmitrijs2005/cyclelogin/internal/server/config"
	"github.com/dmitrijs2005/cyclelogin/internal/server/repositories/records"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubGoose(t *testing.T, fn func(dir string) error) {
	t.Helper()
	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return fn(dir)
	}
	t.Cleanup(func() { gooseUpContext = orig })
}

func TestRunMigrations_PicksDialectDirectory(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var dirs []string
	stubGoose(t, func(dir string) error {
		dirs = append(dirs, dir)
		return nil
	})

	require.NoError(t, NewSQLRepositoryManager(dbx.DialectPostgres).RunMigrations(context.Background(), db))
	require.NoError(t, NewSQLRepositoryManager(dbx.DialectSQLite).RunMigrations(context.Background(), db))
	assert.Equal(t, []string{"postgres", "sqlite"}, dirs)
}

func TestRunMigrations_Error(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	stubGoose(t, func(string) error { return errors.New("boom") })

	err = NewSQLRepositoryManager(dbx.DialectPostgres).RunMigrations(context.Background(), db)
	assert.EqualError(t, err, "boom")
}

func TestRecords_ReturnsSQLRepository(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var m RepositoryManager = NewSQLRepositoryManager(dbx.DialectPostgres)
	_, ok := m.Records(db).(*records.SQLRepository)
	assert.True(t, ok)
}

func cfgFor(t *testing.T, backend string) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	dir := t.TempDir()
	c.StorageBackend = backend
	c.DataDir = filepath.Join(dir, "data")
	c.BoltPath = filepath.Join(dir, "c.db")
	c.SQLitePath = filepath.Join(dir, "c.sqlite")
	return c
}

func TestOpen_LocalBackends(t *testing.T) {
	for _, backend := range []string{records.BackendMemory, records.BackendFile, records.BackendBolt, records.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			repo, err := Open(ctx, cfgFor(t, backend))
			require.NoError(t, err)
			defer repo.Close()

			n, err := repo.IncrementCounter(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)
		})
	}
}

func TestOpen_Postgres(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	origOpen := sqlOpen
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		assert.Equal(t, "pgx", driver)
		assert.Equal(t, "postgres://x", dsn)
		return db, nil
	}
	t.Cleanup(func() { sqlOpen = origOpen })

	var migrated string
	stubGoose(t, func(dir string) error {
		migrated = dir
		return nil
	})

	mock.ExpectPing()

	c := cfgFor(t, records.BackendPostgres)
	c.DatabaseDSN = "postgres://x"

	repo, err := Open(context.Background(), c)
	require.NoError(t, err)
	assert.IsType(t, &records.SQLRepository{}, repo)
	assert.Equal(t, "postgres", migrated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_PostgresPingFails(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	origOpen := sqlOpen
	sqlOpen = func(string, string) (*sql.DB, error) { return db, nil }
	t.Cleanup(func() { sqlOpen = origOpen })

	mock.ExpectPing().WillReturnError(errors.New("refused"))
	mock.ExpectClose()

	_, err = Open(context.Background(), cfgFor(t, records.BackendPostgres))
	assert.ErrorContains(t, err, "db init error")
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), cfgFor(t, "etcd"))
	assert.ErrorContains(t, err, `unknown storage backend "etcd"`)
}

func TestOpen_RedisBadURL(t *testing.T) {
	c := cfgFor(t, records.BackendRedis)
	c.RedisURL = "://bad"
	_, err := Open(context.Background(), c)
	assert.Error(t, err)
}
