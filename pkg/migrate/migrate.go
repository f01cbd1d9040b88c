package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/enums"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/migrate/migrations"
)

// Dir is the goose directory inside the embedded filesystem.
const Dir = "."

func dialectFor(driver enums.StorageDriver) (string, error) {
	switch driver {
	case enums.StorageDriverSQLite:
		return "sqlite3", nil
	case enums.StorageDriverPostgres:
		return "postgres", nil
	}
	return "", fmt.Errorf("no migration dialect for driver %q", driver)
}

// Run executes a goose command against the embedded migrations.
func Run(ctx context.Context, db *sql.DB, driver enums.StorageDriver, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if err := ValidateFS(migrations.FS); err != nil {
		return err
	}

	dialect, err := dialectFor(driver)
	if err != nil {
		return err
	}

	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, db, Dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB, driver enums.StorageDriver) error {
	return Run(ctx, db, driver, "up")
}

// Version reports the current schema version.
func Version(db *sql.DB, driver enums.StorageDriver) (int64, error) {
	dialect, err := dialectFor(driver)
	if err != nil {
		return 0, err
	}
	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect(dialect); err != nil {
		return 0, fmt.Errorf("set goose dialect: %w", err)
	}
	return goose.GetDBVersion(db)
}

// embedded exposes the migration set for validation in tests.
func embedded() fs.FS {
	return migrations.FS
}
