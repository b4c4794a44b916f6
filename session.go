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
	"context"
	"database/sql"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/upper/db2i/internal/sqladapter"
)

var lastSessID uint64

// State is the connection state of a session.
type State uint8

// Session states.
const (
	Disconnected State = iota
	Connected
	InTransaction
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	case InTransaction:
		return "in transaction"
	}
	return "disconnected"
}

// Work is what a transaction callback hands back to the session: either an
// immediate outcome or one that completes later.
type Work interface {
	wait(ctx context.Context) error
}

type immediateWork struct {
	err error
}

func (w immediateWork) wait(context.Context) error {
	return w.err
}

type deferredWork struct {
	done <-chan error
}

func (w deferredWork) wait(ctx context.Context) error {
	select {
	case err, ok := <-w.done:
		if !ok {
			return nil
		}
		return err
	case <-ctx.Done():
		// The work may still be dispatching to the transactional connection,
		// the scope can't end before it does.
		<-w.done
		return ctx.Err()
	}
}

// Immediate returns work that has already finished with err.
func Immediate(err error) Work {
	return immediateWork{err: err}
}

// Deferred returns work that finishes when done yields an error or is closed.
// The transaction scope stays open until then, even if the context is
// canceled first; in that case the scope is rolled back once the work
// finishes and the context's error is returned.
func Deferred(done <-chan error) Work {
	return deferredWork{done: done}
}

// TxFunc is the body of a transaction. It receives the session, which
// dispatches to the transactional connection until the scope ends.
type TxFunc func(sess *Session) Work

// Option configures a Session.
type Option func(*Session)

// WithRegistry makes the session acquire connections from r instead of the
// default registry.
func WithRegistry(r *Registry) Option {
	return func(sess *Session) {
		sess.registry = r
	}
}

// Session dispatches statements to its current connection. The current
// connection is a pooled one, or a transactional one while a transaction is
// running. A Session must not be used by more than one caller at a time.
type Session struct {
	registry *Registry
	sessID   uint64

	mu    sync.Mutex
	conn  sqladapter.Conn
	prior sqladapter.Conn
	inTx  bool
	txID  string
}

// NewSession returns a disconnected session.
func NewSession(opts ...Option) *Session {
	sess := &Session{
		registry: defaultRegistry,
		sessID:   newSessionID(),
	}
	for _, opt := range opts {
		opt(sess)
	}
	return sess
}

// Connect binds the session to the pooled connection registered under id,
// creating it from config if needed. On failure the session is left as it
// was.
func (sess *Session) Connect(id string, config ConnectionConfig) error {
	if sess.InTransaction() {
		return ErrAlreadyWithinTransaction
	}
	if id == "" {
		return &ConnectionError{Err: ErrMissingConnURL}
	}

	options := Translate(config)

	conn, err := sess.registry.Acquire(id, func() (sqladapter.Conn, error) {
		driverName := config.driverName()
		sqlDB, err := sql.Open(driverName, options.DSN(driverName))
		if err != nil {
			return nil, err
		}
		if config.Max > 0 {
			sqlDB.SetMaxOpenConns(config.Max)
		}
		return sqladapter.NewConn(sqlDB, adapterIdentityQuery), nil
	})
	if err != nil {
		LC().Errorf("session %05d: unable to connect: %v", sess.sessID, err)
		return &ConnectionError{ID: id, Err: err}
	}

	sess.mu.Lock()
	sess.conn = conn
	sess.mu.Unlock()

	LC().Debugf("session %05d: connected", sess.sessID)
	return nil
}

// State returns the connection state of the session.
func (sess *Session) State() State {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	switch {
	case sess.conn == nil:
		return Disconnected
	case sess.inTx:
		return InTransaction
	}
	return Connected
}

// InTransaction reports whether a transaction scope is running, even if the
// session was closed within it.
func (sess *Session) InTransaction() bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	return sess.inTx
}

func (sess *Session) current() (sqladapter.Conn, string) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	return sess.conn, sess.txID
}

// Dispatch runs query against the current connection. Inserts return the
// generated identity, updates and deletes the number of affected rows and
// everything else the rows returned.
func (sess *Session) Dispatch(ctx context.Context, cmd Command, query string, args ...interface{}) (*Result, error) {
	conn, txID := sess.current()
	if conn == nil {
		return nil, ErrNotConnected
	}

	var err error
	res := &Result{Command: cmd}

	status := &QueryStatus{
		SessID: sess.sessID,
		TxID:   txID,
		Query:  query,
		Args:   args,
		Start:  time.Now(),
	}

	switch cmd {
	case Insert:
		res.InsertID, err = conn.InsertAndGetID(ctx, query, args...)
	case Update, Delete:
		res.AffectedRows, err = conn.Update(ctx, query, args...)
	default:
		res.Data, err = conn.Query(ctx, query, args...)
	}

	status.End = time.Now()
	status.Err = err

	if err != nil {
		logQuery(status)
		return nil, &QueryError{Query: query, Args: args, Err: err}
	}

	switch cmd {
	case Insert:
		status.LastInsertID = &res.InsertID
	case Update, Delete:
		status.RowsAffected = &res.AffectedRows
	}
	logQuery(status)

	return res, nil
}

// Select translates q and runs it.
func (sess *Session) Select(ctx context.Context, q QueryState, args ...interface{}) (*Result, error) {
	return sess.Dispatch(ctx, Select, SelectSQL(q), args...)
}

// Query runs a statement that returns rows.
func (sess *Session) Query(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error) {
	res, err := sess.Dispatch(ctx, Select, query, args...)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// Insert runs an insert statement and returns the generated identity value.
func (sess *Session) Insert(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := sess.Dispatch(ctx, Insert, query, args...)
	if err != nil {
		return 0, err
	}
	return res.InsertID, nil
}

// Update runs an update statement and returns the number of affected rows.
func (sess *Session) Update(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := sess.Dispatch(ctx, Update, query, args...)
	if err != nil {
		return 0, err
	}
	return res.AffectedRows, nil
}

// Delete runs a delete statement and returns the number of affected rows.
func (sess *Session) Delete(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := sess.Dispatch(ctx, Delete, query, args...)
	if err != nil {
		return 0, err
	}
	return res.AffectedRows, nil
}

// Exec runs a statement and discards its result.
func (sess *Session) Exec(ctx context.Context, query string, args ...interface{}) error {
	conn, txID := sess.current()
	if conn == nil {
		return ErrNotConnected
	}

	status := &QueryStatus{
		SessID: sess.sessID,
		TxID:   txID,
		Query:  query,
		Args:   args,
		Start:  time.Now(),
	}

	err := conn.Execute(ctx, query, args...)

	status.End = time.Now()
	status.Err = err
	logQuery(status)

	if err != nil {
		return &QueryError{Query: query, Args: args, Err: err}
	}
	return nil
}

// CreateTable creates a table from the given schema.
func (sess *Session) CreateTable(ctx context.Context, schema Schema) error {
	return sess.Exec(ctx, CreateTableSQL(schema))
}

// Transaction runs fn within a transaction scope. The connector commits the
// scope when the work succeeds and rolls it back when it fails; there are no
// explicit boundaries to call. While fn runs the session dispatches to the
// transactional connection. The previous connection is restored on every
// exit path, after which the work's error, if any, is returned unchanged. A
// nil fn opens and closes an empty scope.
func (sess *Session) Transaction(ctx context.Context, fn TxFunc) error {
	sess.mu.Lock()
	conn, inTx := sess.conn, sess.inTx
	sess.mu.Unlock()

	if inTx {
		return ErrAlreadyWithinTransaction
	}
	if conn == nil {
		return ErrNotConnected
	}

	txID := uuid.NewString()

	return conn.Transaction(ctx, func(txConn sqladapter.Conn) error {
		sess.swap(txConn, txID)
		defer sess.restore()

		if fn == nil {
			return nil
		}

		work := fn(sess)
		if work == nil {
			return nil
		}
		return work.wait(ctx)
	})
}

// Tx is a shorthand for Transaction with a synchronous body.
func (sess *Session) Tx(ctx context.Context, fn func(sess *Session) error) error {
	if fn == nil {
		return sess.Transaction(ctx, nil)
	}
	return sess.Transaction(ctx, func(sess *Session) Work {
		return Immediate(fn(sess))
	})
}

func (sess *Session) swap(txConn sqladapter.Conn, txID string) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.prior = sess.conn
	sess.conn = txConn
	sess.inTx = true
	sess.txID = txID

	LC().Debugf("session %05d: transaction %s started", sess.sessID, txID)
}

func (sess *Session) restore() {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	LC().Debugf("session %05d: transaction %s finished", sess.sessID, sess.txID)

	sess.conn = sess.prior
	sess.prior = nil
	sess.inTx = false
	sess.txID = ""
}

// Commit is not supported, transaction boundaries are managed by the
// transaction scope.
func (sess *Session) Commit() error {
	return ErrUnsupported
}

// Rollback is not supported, transaction boundaries are managed by the
// transaction scope.
func (sess *Session) Rollback() error {
	return ErrUnsupported
}

// Release detaches the session from its connection.
func (sess *Session) Release() {
	_ = sess.Close()
}

// Close detaches the session from its connection. The pooled connection is
// not closed and stays available to other sessions. Calling Close on a
// detached session is a no-op. Within a transaction scope the session stays
// detached after the scope ends.
func (sess *Session) Close() error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.conn = nil
	sess.prior = nil
	return nil
}

func newSessionID() uint64 {
	if atomic.LoadUint64(&lastSessID) == math.MaxUint64 {
		atomic.StoreUint64(&lastSessID, 1)
		return 1
	}
	return atomic.AddUint64(&lastSessID, 1)
}
