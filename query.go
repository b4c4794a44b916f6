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
	"regexp"

	"github.com/upper/db2i/internal/exql"
)

// LimitKind tells which form a Limit takes.
type LimitKind uint8

// Limit kinds.
const (
	NoLimit LimitKind = iota
	LimitCount
	LimitOffsetCount
)

// Limit bounds the rows a select returns. The zero value is NoLimit.
type Limit struct {
	kind   LimitKind
	offset int
	count  int
}

// Count limits a select to its first n rows.
func Count(n int) Limit {
	return Limit{kind: LimitCount, count: n}
}

// OffsetCount limits a select to n rows after skipping offset rows.
func OffsetCount(offset, n int) Limit {
	return Limit{kind: LimitOffsetCount, offset: offset, count: n}
}

// Paginate builds a limit from a page length and an offset. A zero offset
// yields a plain Count.
func Paginate(length, offset int) Limit {
	if offset == 0 {
		return Count(length)
	}
	return OffsetCount(offset, length)
}

// Kind returns the form of the limit.
func (l Limit) Kind() LimitKind {
	return l.kind
}

// Offset returns the number of skipped rows, zero unless the limit is an
// OffsetCount.
func (l Limit) Offset() int {
	return l.offset
}

// Count returns the maximum number of rows.
func (l Limit) Count() int {
	return l.count
}

// QueryState is the pre-rendered state of a select. Clause fragments are
// included verbatim, they're never quoted nor validated.
type QueryState struct {
	// Table is quoted and used as the source unless Join is set.
	Table string

	// Selects is the select list, "*" when empty.
	Selects  string
	Distinct bool

	// Join replaces the default source entirely, it must include its own
	// table reference.
	Join string

	Where   string
	OrderBy string
	GroupBy string
	Having  string
	Union   string

	Limit Limit
}

const selectHashTag = uint8(1)

func (q *QueryState) Hash() uint64 {
	return uint64(exql.QuickHash(
		selectHashTag,
		q.Table,
		q.Selects,
		q.Distinct,
		q.Join,
		q.Where,
		q.OrderBy,
		q.GroupBy,
		q.Having,
		q.Union,
		uint8(q.Limit.kind),
		q.Limit.offset,
		q.Limit.count,
	))
}

var reCountDistinct = regexp.MustCompile(`(?i)count\(distinct\s\S+\)`)

type selectT struct {
	Distinct   bool
	Columns    string
	Paginated  bool
	OrderBy    string
	Source     string
	Where      string
	GroupBy    string
	Having     string
	FetchFirst int
}

type paginatedSelectT struct {
	Inner  string
	Offset int
	Upper  int
}

type unionT struct {
	Statement string
	Union     string
}

// SelectSQL returns the select statement for the given query state.
//
// The dialect has no offset clause, so an OffsetCount limit numbers the rows
// with row_number() over the query's ordering and filters them from an outer
// select; the order by clause is consumed by the window function in that
// case. A union is always appended last, which places it outside of the
// pagination wrapper.
func SelectSQL(q QueryState) string {
	// Cached by hash alone; two states colliding on 64 bits share a statement.
	if s, ok := template.Read(&q); ok {
		return s
	}

	s := compileSelect(q)
	template.Write(&q, s)
	return s
}

func compileSelect(q QueryState) string {
	paginated := q.Limit.kind == LimitOffsetCount

	data := selectT{
		Distinct:  q.Distinct && !reCountDistinct.MatchString(q.Selects),
		Columns:   q.Selects,
		Paginated: paginated,
		OrderBy:   template.Compile(template.OrderByLayout, q.OrderBy),
		Source:    q.Join,
		Where:     q.Where,
		GroupBy:   q.GroupBy,
		Having:    q.Having,
	}

	if data.Columns == "" {
		data.Columns = "*"
	}

	if data.Source == "" {
		data.Source = template.QuoteIdentifier(q.Table)
	}

	if q.Limit.kind == LimitCount && q.Limit.count > 0 {
		data.FetchFirst = q.Limit.count
	}

	sql := template.Compile(template.SelectLayout, data)

	if paginated {
		sql = template.Compile(template.PaginatedSelectLayout, paginatedSelectT{
			Inner:  sql,
			Offset: q.Limit.offset,
			Upper:  q.Limit.offset + q.Limit.count,
		})
	}

	if q.Union != "" {
		sql = template.Compile(template.UnionLayout, unionT{
			Statement: sql,
			Union:     q.Union,
		})
	}

	return sql
}
