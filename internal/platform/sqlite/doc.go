// Package sqlite содержит инфраструктуру встроенной SQLite базы:
// открытие с настройками пула и PRAGMA, миграции golang-migrate
// из embed.FS и тестовые хелперы.
//
//	db, err := sqlite.NewDB(ctx, "data/housekeeper.db")
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//
//	//go:embed migrations/*.sql
//	var migrations embed.FS
//	err = sqlite.ApplyMigrations("data/housekeeper.db", migrations, "migrations")
package sqlite
