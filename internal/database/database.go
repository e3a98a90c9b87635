package database

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Connect opens a SQLite database at the given path (":memory:" for tests).
func Connect(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite permits one writer at a time; a single pooled connection
	// serializes concurrent callers instead of surfacing SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	return db, nil
}

// Backup writes a consistent copy of the live database to path.
func Backup(ctx context.Context, db *sqlx.DB, path string) error {
	if path == "" {
		return errors.New("backup path is required")
	}
	_, err := db.ExecContext(ctx, `VACUUM INTO ?`, path)
	return err
}
