package database

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// SQLiteDriver stores elements in SQLite through a single connection, which
// serializes writers and lets ":memory:" databases survive between calls.
type SQLiteDriver struct {
	store *sqlStore
}

var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
}

func (sd *SQLiteDriver) Connect(dsn string) error {
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}
	for _, pragma := range sqlitePragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return errors.Wrapf(err, "applying %q", pragma)
		}
	}
	sd.store = newSQLStore(db, questionMark)
	return nil
}

func (sd *SQLiteDriver) Close() error {
	return sd.store.close()
}

func (sd *SQLiteDriver) Reset(ctx context.Context) error {
	return sd.store.reset(ctx)
}

func (sd *SQLiteDriver) Insert(ctx context.Context, key int64, value string) error {
	return sd.store.insert(ctx, key, value)
}

func (sd *SQLiteDriver) Select(ctx context.Context, key int64) (string, error) {
	return sd.store.selectValue(ctx, key)
}

func (sd *SQLiteDriver) Update(ctx context.Context, key int64, value string) error {
	return sd.store.update(ctx, key, value)
}

func (sd *SQLiteDriver) Delete(ctx context.Context, key int64) error {
	return sd.store.delete(ctx, key)
}
