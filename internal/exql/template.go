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

// Package exql compiles dialect layouts into SQL text. A Template carries the
// quoting rules and the text/template layouts of one dialect; compiled
// statements are cached per template.
package exql

import (
	"bytes"
	"strings"
	"sync"
	"text/template"

	"github.com/upper/db2i/internal/cache"
)

var (
	templateCache = templateMap{M: make(map[string]*template.Template)}
)

// Template holds the quoting rules and layouts of a SQL dialect.
type Template struct {
	ColumnSeparator     string
	IdentifierSeparator string
	IdentifierQuote     string
	ValueQuote          string
	IdentifierEscaper   *strings.Replacer
	ValueEscaper        *strings.Replacer
	NullKeyword         string
	TrueKeyword         string
	FalseKeyword        string
	TimestampLayout     string

	OrderByLayout         string
	SelectLayout          string
	PaginatedSelectLayout string
	UnionLayout           string

	CreateTableLayout string
	ColumnLayout      string
	DefaultLayout     string
	IdentityLayout    string
	ForeignKeyLayout  string

	*cache.Cache
}

// Compile executes the given layout against data.
func (layout *Template) Compile(text string, data interface{}) string {
	return mustParse(text, data)
}

func mustParse(text string, data interface{}) string {
	var b bytes.Buffer

	v, ok := templateCache.Get(text)
	if !ok {
		v = template.Must(template.New("").Parse(text))
		templateCache.Set(text, v)
	}

	if err := v.Execute(&b, data); err != nil {
		panic("There was an error compiling the following template:\n" + text + "\nError was: " + err.Error())
	}

	return b.String()
}

type templateMap struct {
	sync.RWMutex
	M map[string]*template.Template
}

func (m *templateMap) Get(k string) (*template.Template, bool) {
	m.RLock()
	defer m.RUnlock()
	v, ok := m.M[k]
	return v, ok
}

func (m *templateMap) Set(k string, v *template.Template) {
	m.Lock()
	defer m.Unlock()
	m.M[k] = v
}
