// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/danielhkuo/fieldbook/models"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect selects the SQL engine behind the store.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect validates a DATABASE_TYPE value.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql":
		return Postgres, nil
	case "sqlite", "sqlite3", "":
		return SQLite, nil
	}
	return "", errors.Newf("unsupported database type %q (use sqlite or postgres)", s)
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, dialect Dialect, url string) (*sql.DB, error) {
	switch dialect {
	case Postgres:
		conn, err := sql.Open("postgres", url)
		if err != nil {
			return nil, errors.Wrap(err, "database connection failed")
		}
		if err := conn.PingContext(ctx); err != nil {
			conn.Close()
			return nil, errors.Wrap(err, "database ping failed")
		}
		return conn, nil

	case SQLite:
		conn, err := sql.Open("sqlite", sqliteDSN(url))
		if err != nil {
			return nil, errors.Wrap(err, "database connection failed")
		}
		// One connection: SQLite serialises writers anyway, and an in-memory
		// database only lives as long as its connection.
		conn.SetMaxOpenConns(1)
		if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			conn.Close()
			return nil, errors.Wrap(err, "failed to enable foreign keys")
		}
		return conn, nil
	}
	return nil, errors.Newf("unsupported database type %q", dialect)
}

// sqliteDSN makes sure every connection enforces foreign keys, which the
// cascading deletes depend on.
func sqliteDSN(url string) string {
	if strings.Contains(url, "foreign_keys") {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "_pragma=foreign_keys(1)"
}

// Querier is satisfied by both *sql.DB and *sql.Tx, so store code can run
// inside or outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// InTx runs fn inside a transaction. The transaction is committed only if
// fn returns nil; any error rolls everything back.
func InTx(ctx context.Context, conn *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

// IsUniqueViolation reports whether err is a unique/primary key violation
// from either engine.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}

// Placeholders returns "$start, $start+1, ..." for n positional arguments.
func Placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}

// DeleteByID removes one row by primary key. Dependents go with it through
// ON DELETE CASCADE. A missing row is not an error.
func DeleteByID(ctx context.Context, q Querier, table, id string) (models.DeleteResult, error) {
	res, err := q.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		return "", errors.Wrapf(err, "failed to delete from %s", table)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", errors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return models.AlreadyAbsent, nil
	}
	return models.Deleted, nil
}
