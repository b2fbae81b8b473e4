// Package migration applies versioned SQL files to a SQLite database.
//
// Migration files are named {version}_{description}.sql (for example
// "001_initial_schema.sql") and are read from any fs.FS, typically an
// embedded directory. Applied versions are tracked in schema_migrations
// together with the checksum of the file that was executed; each file runs in
// its own transaction.
//
//	manager := migration.NewManager(migration.NewFileScanner(), migration.NewSQLiteExecutor(db), files, "migrations", logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return err
//	}
package migration
