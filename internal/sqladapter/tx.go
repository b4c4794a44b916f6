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

package sqladapter

import (
	"context"
	"database/sql"
)

// txConn is the dedicated connection handed to a transaction scope. It is
// only valid until the scope returns.
type txConn struct {
	tx            *sql.Tx
	identityQuery string
}

func (t *txConn) Query(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error) {
	return queryRows(ctx, t.tx, query, args...)
}

func (t *txConn) Update(ctx context.Context, query string, args ...interface{}) (int64, error) {
	return update(ctx, t.tx, query, args...)
}

func (t *txConn) InsertAndGetID(ctx context.Context, query string, args ...interface{}) (int64, error) {
	return insertAndGetID(ctx, t.tx, t.identityQuery, query, args...)
}

func (t *txConn) Execute(ctx context.Context, query string, args ...interface{}) error {
	_, err := t.tx.ExecContext(ctx, query, args...)
	return err
}

func (t *txConn) Transaction(ctx context.Context, fn func(Conn) error) error {
	return ErrAlreadyWithinTransaction
}

// Close is a no-op, the scope that created the transaction owns it.
func (t *txConn) Close() error {
	return nil
}

// TxContext begins a transaction on sqlDB and passes a transactional Conn to
// fn. The transaction is committed if fn returns nil and rolled back if fn
// returns an error or panics.
func TxContext(ctx context.Context, sqlDB *sql.DB, identityQuery string, fn func(Conn) error) error {
	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&txConn{tx: tx, identityQuery: identityQuery}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

var (
	_ = Conn(&txConn{})
	_ = Conn(&pooledConn{})
)
