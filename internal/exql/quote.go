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

package exql

import (
	"fmt"
	"strings"
	"time"
)

// Raw is a fragment that is written as-is, without quoting.
type Raw struct {
	Value string
}

func (r Raw) String() string {
	return r.Value
}

// QuoteIdentifier quotes a table or column name. Dotted names are quoted per
// part, "*" is left alone.
func (layout *Template) QuoteIdentifier(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	parts := strings.Split(name, layout.ColumnSeparator)
	for i := range parts {
		part := strings.TrimSpace(parts[i])
		if part == "*" {
			parts[i] = part
			continue
		}
		parts[i] = mustParse(layout.IdentifierQuote, Raw{Value: layout.escapeIdentifier(part)})
	}

	return strings.Join(parts, layout.ColumnSeparator)
}

// QuoteIdentifiers quotes and joins a list of names.
func (layout *Template) QuoteIdentifiers(names ...string) string {
	quoted := make([]string, 0, len(names))
	for i := range names {
		quoted = append(quoted, layout.QuoteIdentifier(names[i]))
	}
	return strings.Join(quoted, layout.IdentifierSeparator)
}

// QuoteValue renders a Go value as a SQL literal.
func (layout *Template) QuoteValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return layout.NullKeyword
	case Raw:
		return v.Value
	case *Raw:
		if v == nil {
			return layout.NullKeyword
		}
		return v.Value
	case string:
		return layout.quoteString(v)
	case []byte:
		return layout.quoteString(string(v))
	case bool:
		if v {
			return layout.TrueKeyword
		}
		return layout.FalseKeyword
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprintf("%v", v)
	case time.Time:
		return layout.quoteString(v.Format(layout.TimestampLayout))
	case fmt.Stringer:
		return layout.quoteString(v.String())
	}
	return layout.quoteString(fmt.Sprintf("%v", value))
}

func (layout *Template) quoteString(s string) string {
	return mustParse(layout.ValueQuote, Raw{Value: layout.escapeValue(s)})
}

func (layout *Template) escapeIdentifier(s string) string {
	if layout.IdentifierEscaper == nil {
		return s
	}
	return layout.IdentifierEscaper.Replace(s)
}

func (layout *Template) escapeValue(s string) string {
	if layout.ValueEscaper == nil {
		return s
	}
	return layout.ValueEscaper.Replace(s)
}
