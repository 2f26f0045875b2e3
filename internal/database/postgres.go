package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// PostgresDriver uses a connection pool: analysis workers hit it concurrently.
type PostgresDriver struct {
	pool *pgxpool.Pool
}

var (
	pgInsertSQL = fmt.Sprintf("INSERT INTO %s (id, value) VALUES ($1, $2)", tableName)
	pgSelectSQL = fmt.Sprintf("SELECT value FROM %s WHERE id = $1", tableName)
	pgUpdateSQL = fmt.Sprintf("UPDATE %s SET value = $1 WHERE id = $2", tableName)
	pgDeleteSQL = fmt.Sprintf("DELETE FROM %s WHERE id = $1", tableName)
)

func (pd *PostgresDriver) Connect(dsn string) error {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return err
	}
	pd.pool = pool
	return nil
}

func (pd *PostgresDriver) Close() error {
	if pd.pool != nil {
		pd.pool.Close()
	}
	return nil
}

func (pd *PostgresDriver) Reset(ctx context.Context) error {
	if _, err := pd.pool.Exec(ctx, createTableSQL); err != nil {
		return errors.Wrap(err, "creating table")
	}
	if _, err := pd.pool.Exec(ctx, "TRUNCATE "+tableName); err != nil {
		return errors.Wrap(err, "truncating table")
	}
	return nil
}

func (pd *PostgresDriver) Insert(ctx context.Context, key int64, value string) error {
	_, err := pd.pool.Exec(ctx, pgInsertSQL, key, value)
	return err
}

func (pd *PostgresDriver) Select(ctx context.Context, key int64) (string, error) {
	var value string
	err := pd.pool.QueryRow(ctx, pgSelectSQL, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

func (pd *PostgresDriver) Update(ctx context.Context, key int64, value string) error {
	tag, err := pd.pool.Exec(ctx, pgUpdateSQL, value, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (pd *PostgresDriver) Delete(ctx context.Context, key int64) error {
	tag, err := pd.pool.Exec(ctx, pgDeleteSQL, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
