package sqlite

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// BuildMigrateURL строит URL базы для golang-migrate.
// На Windows "C:\db" превращается в "sqlite:///C:/db".
func BuildMigrateURL(dbPath string) (string, error) {
	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	urlPath := filepath.ToSlash(absPath)
	if runtime.GOOS == "windows" && len(urlPath) >= 2 && urlPath[1] == ':' {
		urlPath = "/" + urlPath
	}
	if !strings.HasPrefix(urlPath, "/") {
		urlPath = "/" + urlPath
	}
	return "sqlite://" + urlPath, nil
}

// ApplyMigrations применяет миграции из каталога dir файловой системы fsys
// (обычно embed.FS). Повторный вызов безопасен: migrate.ErrNoChange
// ошибкой не считается.
func ApplyMigrations(dbPath string, fsys fs.FS, dir string) error {
	m, err := newMigrate(dbPath, fsys, dir)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// MigrationVersion возвращает текущую версию схемы и флаг dirty.
// Для базы без миграций возвращает 0 без ошибки.
func MigrationVersion(dbPath string, fsys fs.FS, dir string) (uint, bool, error) {
	m, err := newMigrate(dbPath, fsys, dir)
	if err != nil {
		return 0, false, err
	}
	defer func() { _, _ = m.Close() }()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// ResetMigrations откатывает все миграции. Только для тестов.
func ResetMigrations(dbPath string, fsys fs.FS, dir string) error {
	m, err := newMigrate(dbPath, fsys, dir)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to reset migrations: %w", err)
	}
	return nil
}

func newMigrate(dbPath string, fsys fs.FS, dir string) (*migrate.Migrate, error) {
	databaseURL, err := BuildMigrateURL(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to build database URL: %w", err)
	}
	src, err := iofs.New(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations %q: %w", dir, err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}
