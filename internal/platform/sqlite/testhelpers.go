package sqlite

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"testing"
)

// TestDB - файловая БД во временной директории теста.
type TestDB struct {
	DB   *sql.DB
	Path string
}

// NewTestDBFile создает БД в t.TempDir() и закрывает её по завершении теста.
func NewTestDBFile(t testing.TB) *TestDB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := NewDB(context.Background(), path)
	if err != nil {
		t.Fatalf("Failed to create file test DB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return &TestDB{DB: db, Path: path}
}

// ApplyTestMigrations применяет миграции к тестовой БД.
func (tdb *TestDB) ApplyTestMigrations(t testing.TB, fsys fs.FS, dir string) {
	t.Helper()
	if err := ApplyMigrations(tdb.Path, fsys, dir); err != nil {
		t.Fatalf("Failed to apply test migrations: %v", err)
	}
}

// Exec выполняет SQL команду и падает при ошибке.
func (tdb *TestDB) Exec(t testing.TB, query string, args ...any) sql.Result {
	t.Helper()
	result, err := tdb.DB.ExecContext(context.Background(), query, args...)
	if err != nil {
		t.Fatalf("Failed to execute query: %v", err)
	}
	return result
}

// CountRows возвращает количество строк в таблице.
func (tdb *TestDB) CountRows(t testing.TB, tableName string) int {
	t.Helper()
	var count int
	if err := tdb.DB.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+tableName).Scan(&count); err != nil {
		t.Fatalf("Failed to count rows in table %s: %v", tableName, err)
	}
	return count
}

// TableExists проверяет существование таблицы.
func (tdb *TestDB) TableExists(t testing.TB, tableName string) bool {
	t.Helper()
	var count int
	row := tdb.DB.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", tableName)
	if err := row.Scan(&count); err != nil {
		t.Fatalf("Failed to check table existence: %v", err)
	}
	return count > 0
}
