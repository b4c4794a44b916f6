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

// Package db2i is an adapter for DB2 for IBM i. It translates schemas and
// query states into the dialect's SQL, emulating offset pagination with
// row_number(), and runs statements through sessions that share pooled
// connections by data-source identity.
//
// The adapter opens connections with database/sql; the driver named by
// ConnectionConfig.Driver (go_ibm_db by default) must be registered by the
// importing program.
package db2i

import (
	"github.com/upper/db2i/internal/sqladapter"
)

// Adapter is the name of the adapter.
const Adapter = `db2i`

// Registry maps data-source identities to pooled connections.
type Registry = sqladapter.Registry

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return sqladapter.NewRegistry()
}

var defaultRegistry = NewRegistry()

// Open returns a session connected to the data source described by config,
// using config.String() as its identity.
func Open(config ConnectionConfig, opts ...Option) (*Session, error) {
	sess := NewSession(opts...)
	if err := sess.Connect(config.String(), config); err != nil {
		return nil, err
	}
	return sess, nil
}

// CloseAll closes every pooled connection in the default registry. Sessions
// still bound to them fail on their next statement.
func CloseAll() error {
	return defaultRegistry.TeardownAll()
}
