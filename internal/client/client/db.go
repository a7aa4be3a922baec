package client

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/shopkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/shopkeeper/internal/client/repositories/kv"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	_ "modernc.org/sqlite"
)

// sqliteDSN turns a file path into a modernc DSN that waits on locks held by
// other processes instead of failing with SQLITE_BUSY.
func sqliteDSN(path string) string {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// InitDatabase opens the SQLite database at path and applies migrations.
func InitDatabase(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := migrations.Up(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenLocalStore returns the key-value store at path. When the database
// cannot be opened the failure is logged and kv.Disabled is returned, so the
// storefront keeps working without device-local state. The returned func
// closes the database.
func OpenLocalStore(ctx context.Context, path string, log logging.Logger) (kv.Repository, func() error) {
	db, err := InitDatabase(ctx, path)
	if err != nil {
		log.Warn(ctx, "local storage unavailable, guest state will not persist", "path", path, "err", err)
		return kv.Disabled{}, func() error { return nil }
	}
	return kv.NewSQLiteRepository(db), db.Close
}
