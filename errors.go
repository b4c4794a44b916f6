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

package db2i

import (
	"errors"
	"fmt"

	"github.com/upper/db2i/internal/sqladapter"
)

// Error values.
var (
	ErrAlreadyWithinTransaction = sqladapter.ErrAlreadyWithinTransaction
	ErrInvalidScheme            = errors.New(`expecting "db2i" scheme`)
	ErrMissingConnURL           = errors.New(`missing DSN`)
	ErrNotConnected             = errors.New(`not connected to a database`)
	ErrUnsupported              = errors.New(`action is not supported by the DBMS`)
	ErrWarnSlowQuery            = errors.New(`slow query`)
)

// ConnectionError is returned when a session could not be bound to a pooled
// connection.
type ConnectionError struct {
	// ID is the data-source identity the session tried to connect to.
	ID  string
	Err error
}

func (e *ConnectionError) Error() string {
	return "unable to connect: " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// QueryError is returned when a dispatched statement fails. It carries the
// statement and the arguments that triggered the failure.
type QueryError struct {
	Query string
	Args  []interface{}
	Err   error
}

func (e *QueryError) Error() string {
	if len(e.Args) > 0 {
		return fmt.Sprintf("%v (query: %s, args: %v)", e.Err, e.Query, e.Args)
	}
	return fmt.Sprintf("%v (query: %s)", e.Err, e.Query)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
