package database

import (
	"context"
	"database/sql"

	"github.com/go-sql-driver/mysql"
)

type MySQLDriver struct {
	store *sqlStore
}

func (md *MySQLDriver) Connect(dsn string) error {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return err
	}
	// Report matched rather than changed rows, so rewriting an element with
	// the value it already holds is not mistaken for a missing key.
	cfg.ClientFoundRows = true

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}
	md.store = newSQLStore(db, questionMark)
	return nil
}

func (md *MySQLDriver) Close() error {
	return md.store.close()
}

func (md *MySQLDriver) Reset(ctx context.Context) error {
	return md.store.reset(ctx)
}

func (md *MySQLDriver) Insert(ctx context.Context, key int64, value string) error {
	return md.store.insert(ctx, key, value)
}

func (md *MySQLDriver) Select(ctx context.Context, key int64) (string, error) {
	return md.store.selectValue(ctx, key)
}

func (md *MySQLDriver) Update(ctx context.Context, key int64, value string) error {
	return md.store.update(ctx, key, value)
}

func (md *MySQLDriver) Delete(ctx context.Context, key int64) error {
	return md.store.delete(ctx, key)
}
