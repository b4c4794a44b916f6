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
	"strconv"
	"strings"
)

var integerTypes = map[string]struct{}{
	"int":      {},
	"integer":  {},
	"smallint": {},
	"bigint":   {},
}

const identityType = "int"

type columnT struct {
	Name     string
	Type     string
	Default  string
	NotNull  bool
	Unsigned bool
	Unique   bool
	Comment  string
	Identity string
}

type identityT struct {
	Start int
	Step  int
}

type foreignKeyT struct {
	Column   string
	Table    string
	Field    string
	OnDelete string
	OnUpdate string
}

type createTableT struct {
	Table       string
	Columns     string
	PrimaryKey  string
	ForeignKeys []string
}

// CreateTableSQL returns the create table statement for the given schema.
//
// Malformed schemas are not rejected, a foreign key without a target field
// renders an empty reference.
func CreateTableSQL(schema Schema) string {
	var (
		columns     = make([]string, 0, len(schema.Fields))
		foreignKeys []string
		primaryKey  string
	)

	for i := range schema.Fields {
		field := &schema.Fields[i]

		column := columnT{
			Name:     template.QuoteIdentifier(field.Name),
			Type:     field.Type,
			NotNull:  field.NotNull,
			Unsigned: field.Unsigned,
			Unique:   field.Unique,
		}

		if field.Primary && field.AutoIncrement != nil {
			if _, ok := integerTypes[strings.ToLower(column.Type)]; !ok {
				column.Type = identityType
			}
			column.Identity = template.Compile(template.IdentityLayout, identityT{
				Start: field.AutoIncrement.Start,
				Step:  field.AutoIncrement.Step,
			})
		}

		column.Type += lengthSQL(field.Length)

		if field.Primary {
			primaryKey = field.Name
		}

		if field.Default.IsSet() {
			column.Default = template.Compile(template.DefaultLayout, template.QuoteValue(field.Default.Value()))
		}

		if field.Comment != "" {
			column.Comment = template.QuoteValue(field.Comment)
		}

		if fk := field.ForeignKey; fk != nil && fk.Table != "" {
			foreignKeys = append(foreignKeys, template.Compile(template.ForeignKeyLayout, foreignKeyT{
				Column:   template.QuoteIdentifier(field.Name),
				Table:    template.QuoteIdentifier(fk.Table),
				Field:    template.QuoteIdentifier(fk.Field),
				OnDelete: fk.onDelete(),
				OnUpdate: fk.onUpdate(),
			}))
		}

		columns = append(columns, template.Compile(template.ColumnLayout, column))
	}

	data := createTableT{
		Table:       template.QuoteIdentifier(schema.Name),
		Columns:     strings.Join(columns, ",\n\t"),
		ForeignKeys: foreignKeys,
	}
	if primaryKey != "" {
		data.PrimaryKey = template.QuoteIdentifier(primaryKey)
	}

	return template.Compile(template.CreateTableLayout, data)
}

func lengthSQL(l Length) string {
	switch {
	case l.pair:
		return "(" + strconv.Itoa(l.size) + "," + strconv.Itoa(l.scale) + ")"
	case l.size != 0:
		return "(" + strconv.Itoa(l.size) + ")"
	}
	return ""
}
