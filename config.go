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
	"net"
	"sort"
	"strconv"
	"strings"
)

// DefaultDriver is the database/sql driver used when ConnectionConfig.Driver
// is empty.
const DefaultDriver = `go_ibm_db`

// Native option names.
const (
	OptionHost                  = `host`
	OptionUser                  = `user`
	OptionPassword              = `password`
	OptionDatabaseName          = `database name`
	OptionQueryTimeoutMechanism = `query timeout mechanism`
)

// Generic option names the connector does not understand. They're removed
// from the translated option set.
var unsupportedOptions = []string{
	`charset`,
	`connectionString`,
	`database`,
	`max`,
	`port`,
	`protocol`,
	`socketPath`,
	`ssl`,
	`timeout`,
	`type`,
}

// ConnectionConfig is the generic configuration a session connects with.
type ConnectionConfig struct {
	// Database server hostname or IP.
	Host string
	// Database server port, appended to Host when both are present.
	Port int
	// Username for authentication.
	User string
	// Password for authentication.
	Password string
	// Name of the database.
	Database string
	// Value of the native "query timeout mechanism" option.
	Timeout string

	// Generic options of other adapters. They're accepted so that a shared
	// configuration can be passed as-is, but the connector has no use for
	// them and they're discarded.
	Charset          string
	ConnectionString string
	Protocol         string
	SocketPath       string
	SSL              bool
	Type             string

	// Maximum number of open connections in the pool, zero means unlimited.
	Max int

	// Name of the database/sql driver, defaults to DefaultDriver.
	Driver string

	// Extra options, copied into the native option set.
	Options map[string]string
}

func (c ConnectionConfig) driverName() string {
	if c.Driver == "" {
		return DefaultDriver
	}
	return c.Driver
}

// Options is the connector's native option set.
type Options map[string]string

// String renders the options as a data source name for sql.Open. Keys are
// sorted so that equal option sets produce equal strings.
func (o Options) String() string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+quoteOption(o[k]))
	}
	return strings.Join(pairs, ";")
}

// Keywords of the default driver's CLI connection string.
const (
	cliHostname = `HOSTNAME`
	cliPort     = `PORT`
	cliProtocol = `PROTOCOL`
	cliDatabase = `DATABASE`
	cliUID      = `UID`
	cliPWD      = `PWD`
)

var cliKeywords = map[string]string{
	OptionUser:         cliUID,
	OptionPassword:     cliPWD,
	OptionDatabaseName: cliDatabase,
}

// DSN renders the options as the data source name given to the named
// driver. The default driver takes DB2 CLI keywords, so host, user, password
// and database name are renamed and the host is split from its port; other
// options are passed through unchanged. Any other driver gets String().
func (o Options) DSN(driver string) string {
	if driver != DefaultDriver {
		return o.String()
	}

	cli := make(Options, len(o)+2)
	for k, v := range o {
		if k == OptionHost {
			host, port, err := net.SplitHostPort(v)
			if err != nil {
				host, port = v, ""
			}
			cli[cliHostname] = host
			if port != "" {
				cli[cliPort] = port
			}
			cli[cliProtocol] = "TCPIP"
			continue
		}
		if kw, ok := cliKeywords[k]; ok {
			cli[kw] = v
			continue
		}
		cli[k] = v
	}
	return cli.String()
}

// Values containing separators are wrapped in braces.
func quoteOption(v string) string {
	if !strings.ContainsAny(v, ";{}=") {
		return v
	}
	return "{" + strings.Replace(v, "}", "}}", -1) + "}"
}

// Translate maps a generic configuration into the connector's native option
// set. It has no side effects; c is left untouched.
func Translate(c ConnectionConfig) Options {
	opts := make(Options, len(c.Options)+5)

	for k, v := range c.Options {
		opts[k] = v
	}

	set := func(k, v string) {
		if v != "" {
			opts[k] = v
		}
	}

	set(OptionHost, c.Host)
	set(OptionUser, c.User)
	set(OptionPassword, c.Password)
	set(OptionDatabaseName, c.Database)
	set(OptionQueryTimeoutMechanism, c.Timeout)

	if host := opts[OptionHost]; host != "" && c.Port > 0 {
		opts[OptionHost] = host + ":" + strconv.Itoa(c.Port)
	}

	for _, k := range unsupportedOptions {
		delete(opts, k)
	}

	return opts
}
