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
	"strings"

	"github.com/upper/db2i/internal/cache"
	"github.com/upper/db2i/internal/exql"
)

const (
	adapterColumnSeparator     = `.`
	adapterIdentifierSeparator = `, `
	adapterIdentifierQuote     = `"{{.Value}}"`
	adapterValueQuote          = `'{{.Value}}'`
	adapterNullKeyword         = `null`
	adapterTrueKeyword         = `true`
	adapterFalseKeyword        = `false`
	adapterTimestampLayout     = `2006-01-02 15:04:05.000000`

	adapterOrderByLayout = `{{if .}}order by {{.}}{{end}}`

	adapterSelectLayout = `select {{if .Distinct}}distinct {{end}}{{.Columns}}` +
		`{{if .Paginated}}, row_number() over({{.OrderBy}}) rn{{end}}` +
		` from {{.Source}}` +
		`{{if .Where}} where {{.Where}}{{end}}` +
		`{{if and .OrderBy (not .Paginated)}} {{.OrderBy}}{{end}}` +
		`{{if .GroupBy}} group by {{.GroupBy}}{{end}}` +
		`{{if .Having}} having {{.Having}}{{end}}` +
		`{{if .FetchFirst}} fetch first {{.FetchFirst}} rows only{{end}}`

	adapterPaginatedSelectLayout = `select * from ({{.Inner}}) tmp where tmp.rn > {{.Offset}} and tmp.rn <= {{.Upper}}`

	adapterUnionLayout = `{{.Statement}} union {{.Union}}`

	adapterCreateTableLayout = "create table {{.Table}} (\n\t{{.Columns}}" +
		"{{if .PrimaryKey}},\n\tprimary key({{.PrimaryKey}}){{end}}" +
		"{{range .ForeignKeys}},\n\t{{.}}{{end}}" +
		"\n)"

	adapterColumnLayout = `{{.Name}} {{.Type}}{{.Default}}` +
		`{{if .NotNull}} not null{{end}}` +
		`{{if .Unsigned}} unsigned{{end}}` +
		`{{if .Unique}} unique{{end}}` +
		`{{if .Comment}} comment {{.Comment}}{{end}}` +
		`{{.Identity}}`

	adapterDefaultLayout = ` default {{.}}`

	adapterIdentityLayout = ` generated always as identity (start with {{.Start}}, increment by {{.Step}})`

	adapterForeignKeyLayout = `foreign key ({{.Column}}) references {{.Table}} ({{.Field}}) on delete {{.OnDelete}} on update {{.OnUpdate}}`

	// Returns the identity value generated by the last insert on the current
	// connection.
	adapterIdentityQuery = `select identity_val_local() from sysibm.sysdummy1`
)

var template = &exql.Template{
	ColumnSeparator:     adapterColumnSeparator,
	IdentifierSeparator: adapterIdentifierSeparator,
	IdentifierQuote:     adapterIdentifierQuote,
	ValueQuote:          adapterValueQuote,
	IdentifierEscaper:   strings.NewReplacer(`"`, `""`),
	ValueEscaper:        strings.NewReplacer(`'`, `''`),
	NullKeyword:         adapterNullKeyword,
	TrueKeyword:         adapterTrueKeyword,
	FalseKeyword:        adapterFalseKeyword,
	TimestampLayout:     adapterTimestampLayout,

	OrderByLayout:         adapterOrderByLayout,
	SelectLayout:          adapterSelectLayout,
	PaginatedSelectLayout: adapterPaginatedSelectLayout,
	UnionLayout:           adapterUnionLayout,

	CreateTableLayout: adapterCreateTableLayout,
	ColumnLayout:      adapterColumnLayout,
	DefaultLayout:     adapterDefaultLayout,
	IdentityLayout:    adapterIdentityLayout,
	ForeignKeyLayout:  adapterForeignKeyLayout,

	Cache: cache.NewCache(),
}
