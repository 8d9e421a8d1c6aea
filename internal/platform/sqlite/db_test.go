package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDBOptions(t *testing.T) {
	opts := DefaultDBOptions()

	assert.Equal(t, time.Hour, opts.ConnMaxLifetime)
	assert.Equal(t, 10*time.Minute, opts.ConnMaxIdleTime)
	assert.Equal(t, 4, opts.MaxOpenConns)
	assert.Equal(t, 1, opts.MaxIdleConns)
	assert.Equal(t, 5*time.Second, opts.PingTimeout)
	assert.True(t, opts.WALMode)
	assert.Equal(t, 5*time.Second, opts.BusyTimeout)
}

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name     string
		dbPath   string
		opts     DBOptions
		expected string
	}{
		{"default options", "/tmp/test.db", DefaultDBOptions(), "/tmp/test.db?_pragma=busy_timeout(5000)"},
		{"without busy timeout", ":memory:", DBOptions{}, ":memory:"},
		{"existing query", "file:test.db?mode=ro", DBOptions{BusyTimeout: 2 * time.Second}, "file:test.db?mode=ro&_pragma=busy_timeout(2000)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildDSN(tt.dbPath, tt.opts))
		})
	}
}

func TestNewInMemoryDB(t *testing.T) {
	ctx := context.Background()
	db, err := NewInMemoryDB(ctx)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.ExecContext(ctx, "CREATE TABLE test (id INTEGER PRIMARY KEY)")
	assert.NoError(t, err)
}

func TestNewDB_CreateDirectory(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	db, err := NewDB(ctx, dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = os.Stat(filepath.Dir(dbPath))
	assert.NoError(t, err, "директория должна быть создана")
}

func TestPragmaSettings(t *testing.T) {
	tdb := NewTestDBFile(t)
	ctx := context.Background()

	var journalMode string
	require.NoError(t, tdb.DB.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", strings.ToLower(journalMode))

	var busyTimeout int
	require.NoError(t, tdb.DB.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&busyTimeout))
	assert.Equal(t, 5000, busyTimeout)
}

func TestIsBusy(t *testing.T) {
	assert.False(t, IsBusy(nil))
	assert.False(t, IsBusy(errors.New("no such table: runs")))
	assert.True(t, IsBusy(errors.New("database is locked (5) (SQLITE_BUSY)")))
	assert.True(t, IsBusy(fmt.Errorf("record run: %w", errors.New("database is locked"))))
}

func TestIsBusy_LockedDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "locked.db")

	opts := DefaultDBOptions()
	opts.BusyTimeout = 0
	opts.MaxOpenConns = 1
	writer, err := NewDBWithOptions(ctx, path, opts)
	require.NoError(t, err)
	defer func() { _ = writer.Close() }()
	other, err := NewDBWithOptions(ctx, path, opts)
	require.NoError(t, err)
	defer func() { _ = other.Close() }()

	_, err = writer.ExecContext(ctx, "CREATE TABLE t (id INTEGER)")
	require.NoError(t, err)

	tx, err := writer.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()
	_, err = tx.ExecContext(ctx, "INSERT INTO t VALUES (1)")
	require.NoError(t, err)

	_, err = other.ExecContext(ctx, "INSERT INTO t VALUES (2)")
	require.Error(t, err)
	assert.True(t, IsBusy(err), "ожидалась ошибка блокировки, получено: %v", err)
}
