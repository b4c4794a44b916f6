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
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIdentityQuery = `select identity_val_local() from sysibm.sysdummy1`

func newMockConn(t *testing.T) (Conn, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return NewConn(sqlDB, testIdentityQuery), mock
}

func TestConnQuery(t *testing.T) {
	conn, mock := newMockConn(t)

	mock.ExpectQuery(`select * from "users" where id > ?`).
		WithArgs(10).
		WillReturnRows(
			sqlmock.NewRows([]string{"ID", "NAME"}).
				AddRow(int64(11), []byte("ann")).
				AddRow(int64(12), nil),
		)

	data, err := conn.Query(context.Background(), `select * from "users" where id > ?`, 10)
	require.NoError(t, err)
	require.Len(t, data, 2)

	assert.Equal(t, int64(11), data[0]["ID"])
	assert.Equal(t, "ann", data[0]["NAME"])
	assert.Nil(t, data[1]["NAME"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnQueryEmpty(t *testing.T) {
	conn, mock := newMockConn(t)

	mock.ExpectQuery(`select * from "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"ID"}))

	data, err := conn.Query(context.Background(), `select * from "users"`)
	require.NoError(t, err)
	assert.NotNil(t, data)
	assert.Len(t, data, 0)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnUpdate(t *testing.T) {
	conn, mock := newMockConn(t)

	mock.ExpectExec(`delete from "users" where id = ?`).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := conn.Update(context.Background(), `delete from "users" where id = ?`, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnInsertAndGetID(t *testing.T) {
	t.Run("ReportedByDriver", func(t *testing.T) {
		conn, mock := newMockConn(t)

		mock.ExpectExec(`insert into "users" ("name") values (?)`).
			WithArgs("ann").
			WillReturnResult(sqlmock.NewResult(7, 1))

		id, err := conn.InsertAndGetID(context.Background(), `insert into "users" ("name") values (?)`, "ann")
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("IdentityQuery", func(t *testing.T) {
		conn, mock := newMockConn(t)

		mock.ExpectExec(`insert into "users" ("name") values (?)`).
			WithArgs("bob").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(testIdentityQuery).
			WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(42)))

		id, err := conn.InsertAndGetID(context.Background(), `insert into "users" ("name") values (?)`, "bob")
		require.NoError(t, err)
		assert.Equal(t, int64(42), id)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure", func(t *testing.T) {
		conn, mock := newMockConn(t)

		errDuplicate := errors.New("duplicate key")
		mock.ExpectExec(`insert into "users" ("name") values (?)`).
			WithArgs("bob").
			WillReturnError(errDuplicate)

		_, err := conn.InsertAndGetID(context.Background(), `insert into "users" ("name") values (?)`, "bob")
		assert.ErrorIs(t, err, errDuplicate)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestConnExecute(t *testing.T) {
	conn, mock := newMockConn(t)

	mock.ExpectExec(`create table "t" ("id" int)`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := conn.Execute(context.Background(), `create table "t" ("id" int)`)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnTransaction(t *testing.T) {
	t.Run("Commit", func(t *testing.T) {
		conn, mock := newMockConn(t)

		mock.ExpectBegin()
		mock.ExpectExec(`update "users" set "name" = ?`).
			WithArgs("x").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		var affected int64
		err := conn.Transaction(context.Background(), func(tx Conn) error {
			var err error
			affected, err = tx.Update(context.Background(), `update "users" set "name" = ?`, "x")
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), affected)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rollback", func(t *testing.T) {
		conn, mock := newMockConn(t)

		errWork := errors.New("work failed")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := conn.Transaction(context.Background(), func(tx Conn) error {
			return errWork
		})
		assert.ErrorIs(t, err, errWork)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollbackOnPanic", func(t *testing.T) {
		conn, mock := newMockConn(t)

		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = conn.Transaction(context.Background(), func(tx Conn) error {
				panic("boom")
			})
		})

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Nested", func(t *testing.T) {
		conn, mock := newMockConn(t)

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := conn.Transaction(context.Background(), func(tx Conn) error {
			return tx.Transaction(context.Background(), func(Conn) error {
				return nil
			})
		})
		assert.ErrorIs(t, err, ErrAlreadyWithinTransaction)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InsertWithinTransaction", func(t *testing.T) {
		conn, mock := newMockConn(t)

		mock.ExpectBegin()
		mock.ExpectExec(`insert into "users" ("name") values (?)`).
			WithArgs("carl").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(testIdentityQuery).
			WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(9)))
		mock.ExpectCommit()

		var id int64
		err := conn.Transaction(context.Background(), func(tx Conn) error {
			var err error
			id, err = tx.InsertAndGetID(context.Background(), `insert into "users" ("name") values (?)`, "carl")
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, int64(9), id)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
