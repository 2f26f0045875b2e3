package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
)

// sqlStore implements the element operations over database/sql. Dialects
// differ only in their placeholders.
type sqlStore struct {
	db *sql.DB

	insertSQL string
	selectSQL string
	updateSQL string
	deleteSQL string
}

const createTableSQL = "CREATE TABLE IF NOT EXISTS " + tableName +
	" (id BIGINT PRIMARY KEY, value VARCHAR(64) NOT NULL)"

func newSQLStore(db *sql.DB, placeholder func(n int) string) *sqlStore {
	return &sqlStore{
		db:        db,
		insertSQL: fmt.Sprintf("INSERT INTO %s (id, value) VALUES (%s, %s)", tableName, placeholder(1), placeholder(2)),
		selectSQL: fmt.Sprintf("SELECT value FROM %s WHERE id = %s", tableName, placeholder(1)),
		updateSQL: fmt.Sprintf("UPDATE %s SET value = %s WHERE id = %s", tableName, placeholder(1), placeholder(2)),
		deleteSQL: fmt.Sprintf("DELETE FROM %s WHERE id = %s", tableName, placeholder(1)),
	}
}

func questionMark(int) string { return "?" }

func (s *sqlStore) close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqlStore) reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return errors.Wrap(err, "creating table")
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM "+tableName); err != nil {
		return errors.Wrap(err, "emptying table")
	}
	return nil
}

func (s *sqlStore) insert(ctx context.Context, key int64, value string) error {
	_, err := s.db.ExecContext(ctx, s.insertSQL, key, value)
	return err
}

func (s *sqlStore) selectValue(ctx context.Context, key int64) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.selectSQL, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

func (s *sqlStore) update(ctx context.Context, key int64, value string) error {
	res, err := s.db.ExecContext(ctx, s.updateSQL, value, key)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *sqlStore) delete(ctx context.Context, key int64) error {
	res, err := s.db.ExecContext(ctx, s.deleteSQL, key)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
