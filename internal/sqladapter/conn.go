// Copyright (c) 2012-present The upper.io/db authors. All rights reserved.
//
// Permission is hereby granted, free of charge, to any person obtaining
// a copy of this software and associated documentation files (the
// "Software"), to deal in the Software without restriction, including
// without limitation the rights to use, copy, modify, merge, publish,
// distribute, sublicense, and/or sell copies of the Software, and to
// permit persons to whom the Software is furnished to do so, subject to
// the following conditions:
//
// The above copyright notice and this permission notice shall be
// included in all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
// NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE
// LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION
// OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION
// WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

// Package sqladapter holds the pooled connections sessions dispatch to and
// the process-wide registry that shares them by data-source identity.
package sqladapter

import (
	"context"
	"database/sql"
	"errors"
)

// ErrAlreadyWithinTransaction is returned when a transaction scope is
// requested on a connection that is already transactional.
var ErrAlreadyWithinTransaction = errors.New(`already within a transaction`)

// Conn is a pooled connection. It exposes the verbs a session dispatches
// commands to.
type Conn interface {
	// Query runs a statement that returns rows.
	Query(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error)

	// Update runs a statement and returns the number of affected rows.
	Update(ctx context.Context, query string, args ...interface{}) (int64, error)

	// InsertAndGetID runs an insert and returns the generated identity value.
	InsertAndGetID(ctx context.Context, query string, args ...interface{}) (int64, error)

	// Execute runs a statement and discards its result.
	Execute(ctx context.Context, query string, args ...interface{}) error

	// Transaction runs fn within a transaction scope. The scope commits when
	// fn returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(Conn) error) error

	// Close releases the underlying pool.
	Close() error
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var (
	_ = execQuerier(&sql.DB{})
	_ = execQuerier(&sql.Conn{})
	_ = execQuerier(&sql.Tx{})
)

type pooledConn struct {
	db            *sql.DB
	identityQuery string
}

// NewConn wraps a *sql.DB. identityQuery is the statement that returns the
// last identity value generated on the current physical connection; it's
// used when the driver can't report it through sql.Result.
func NewConn(sqlDB *sql.DB, identityQuery string) Conn {
	return &pooledConn{db: sqlDB, identityQuery: identityQuery}
}

func (c *pooledConn) Query(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error) {
	return queryRows(ctx, c.db, query, args...)
}

func (c *pooledConn) Update(ctx context.Context, query string, args ...interface{}) (int64, error) {
	return update(ctx, c.db, query, args...)
}

func (c *pooledConn) InsertAndGetID(ctx context.Context, query string, args ...interface{}) (int64, error) {
	// The identity value is scoped to the physical connection, both statements
	// must run on the same one.
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	return insertAndGetID(ctx, conn, c.identityQuery, query, args...)
}

func (c *pooledConn) Execute(ctx context.Context, query string, args ...interface{}) error {
	_, err := c.db.ExecContext(ctx, query, args...)
	return err
}

func (c *pooledConn) Transaction(ctx context.Context, fn func(Conn) error) error {
	return TxContext(ctx, c.db, c.identityQuery, fn)
}

func (c *pooledConn) Close() error {
	return c.db.Close()
}

func queryRows(ctx context.Context, eq execQuerier, query string, args ...interface{}) ([]map[string]interface{}, error) {
	rows, err := eq.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return fetchRows(rows)
}

func update(ctx context.Context, eq execQuerier, query string, args ...interface{}) (int64, error) {
	res, err := eq.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func insertAndGetID(ctx context.Context, eq execQuerier, identityQuery string, query string, args ...interface{}) (int64, error) {
	res, err := eq.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	if id, err := res.LastInsertId(); err == nil && id != 0 {
		return id, nil
	}

	var id sql.NullInt64
	if err := eq.QueryRowContext(ctx, identityQuery).Scan(&id); err != nil {
		return 0, err
	}
	return id.Int64, nil
}

// fetchRows copies all rows into maps keyed by column name and closes rows.
func fetchRows(rows *sql.Rows) ([]map[string]interface{}, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	data := []map[string]interface{}{}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		scanArgs := make([]interface{}, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}

		if err := rows.Scan(scanArgs...); err != nil {
			return nil, err
		}

		item := make(map[string]interface{}, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				item[column] = string(b)
				continue
			}
			item[column] = values[i]
		}
		data = append(data, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return data, nil
}
