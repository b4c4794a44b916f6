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
	"github.com/upper/db2i/internal/exql"
)

// Raw is a default value written as-is, without quoting, as in
// DefaultValue(Raw{Value: "current timestamp"}).
type Raw = exql.Raw

// Schema describes a table. Fields are rendered in the order they appear.
type Schema struct {
	Name   string
	Fields []Field
}

// Field describes a column.
type Field struct {
	Name   string
	Type   string
	Length Length

	// Primary marks the column as the primary key. If more than one field is
	// primary, the last one wins.
	Primary bool

	// AutoIncrement turns a primary column into an identity column.
	AutoIncrement *AutoIncrement

	Default Default

	NotNull  bool
	Unsigned bool
	Unique   bool
	Comment  string

	ForeignKey *ForeignKey
}

// AutoIncrement holds the start value and step of an identity column.
type AutoIncrement struct {
	Start int
	Step  int
}

// Foreign key actions used when ForeignKey leaves them empty.
const (
	DefaultOnDelete = `set null`
	DefaultOnUpdate = `no action`
)

// ForeignKey references a column on another table.
type ForeignKey struct {
	Table    string
	Field    string
	OnDelete string
	OnUpdate string
}

func (fk *ForeignKey) onDelete() string {
	if fk.OnDelete == "" {
		return DefaultOnDelete
	}
	return fk.OnDelete
}

func (fk *ForeignKey) onUpdate() string {
	if fk.OnUpdate == "" {
		return DefaultOnUpdate
	}
	return fk.OnUpdate
}

// Length is either a single size, as in varchar(255), or a precision and
// scale pair, as in decimal(10,2). The zero value means no length.
type Length struct {
	size  int
	scale int
	pair  bool
}

// Size returns a single-valued length.
func Size(n int) Length {
	return Length{size: n}
}

// Precision returns a pair-valued length.
func Precision(precision, scale int) Length {
	return Length{size: precision, scale: scale, pair: true}
}

// Default is the default value of a column. Its zero value means the column
// has no default clause; DefaultNull and DefaultValue set one.
type Default struct {
	set   bool
	value interface{}
}

// DefaultNull returns an explicit null default.
func DefaultNull() Default {
	return Default{set: true}
}

// DefaultValue returns a default with the given value. A nil value is the
// same as DefaultNull.
func DefaultValue(v interface{}) Default {
	return Default{set: true, value: v}
}

// IsSet reports whether a default was given.
func (d Default) IsSet() bool {
	return d.set
}

// IsNull reports whether the default is an explicit null.
func (d Default) IsNull() bool {
	return d.set && d.value == nil
}

// Value returns the default value.
func (d Default) Value() interface{} {
	return d.value
}
