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
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// LogLevel represents a verbosity level for logs
type LogLevel int8

// Log levels
const (
	LogLevelTrace LogLevel = -1

	LogLevelDebug LogLevel = iota - 1
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelFatal
	LogLevelPanic
)

var logLevels = map[LogLevel]string{
	LogLevelTrace: "TRACE",
	LogLevelDebug: "DEBUG",
	LogLevelInfo:  "INFO",
	LogLevelWarn:  "WARNING",
	LogLevelError: "ERROR",
	LogLevelFatal: "FATAL",
	LogLevelPanic: "PANIC",
}

var logrusLevels = map[LogLevel]logrus.Level{
	LogLevelTrace: logrus.TraceLevel,
	LogLevelDebug: logrus.DebugLevel,
	LogLevelInfo:  logrus.InfoLevel,
	LogLevelWarn:  logrus.WarnLevel,
	LogLevelError: logrus.ErrorLevel,
	LogLevelFatal: logrus.FatalLevel,
	LogLevelPanic: logrus.PanicLevel,
}

func (ll LogLevel) String() string {
	return logLevels[ll]
}

const (
	defaultLogLevel LogLevel = LogLevelWarn
)

// SlowQueryThreshold is the duration above which a query is logged as slow.
var SlowQueryThreshold = time.Second

var (
	reInvisibleChars = regexp.MustCompile(`[\s\r\n\t]+`)
)

// QueryStatus represents the status of a query after being executed.
type QueryStatus struct {
	SessID uint64
	TxID   string

	RowsAffected *int64
	LastInsertID *int64

	Query string
	Args  []interface{}

	Err error

	Start time.Time
	End   time.Time
}

func (q *QueryStatus) String() string {
	lines := make([]string, 0, 8)

	if q.SessID > 0 {
		lines = append(lines, fmt.Sprintf("Session ID:     %05d", q.SessID))
	}

	if q.TxID != "" {
		lines = append(lines, fmt.Sprintf("Transaction ID: %s", q.TxID))
	}

	if query := q.Query; query != "" {
		query = reInvisibleChars.ReplaceAllString(query, ` `)
		query = strings.TrimSpace(query)
		lines = append(lines, fmt.Sprintf("Query:          %s", query))
	}

	if len(q.Args) > 0 {
		lines = append(lines, fmt.Sprintf("Arguments:      %#v", q.Args))
	}

	if q.RowsAffected != nil {
		lines = append(lines, fmt.Sprintf("Rows affected:  %d", *q.RowsAffected))
	}
	if q.LastInsertID != nil {
		lines = append(lines, fmt.Sprintf("Last insert ID: %d", *q.LastInsertID))
	}

	if q.Err != nil {
		lines = append(lines, fmt.Sprintf("Error:          %v", q.Err))
	}

	lines = append(lines, fmt.Sprintf("Time taken:     %0.5fs", q.End.Sub(q.Start).Seconds()))

	return strings.Join(lines, "\n")
}

// LoggingCollector provides different methods for collecting and classifying
// log messages.
type LoggingCollector interface {
	Enabled(LogLevel) bool

	Level() LogLevel

	SetLogger(Logger)
	SetLevel(LogLevel)

	Trace(v ...interface{})
	Tracef(format string, v ...interface{})

	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Warn(v ...interface{})
	Warnf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})

	Fatal(v ...interface{})
	Fatalf(format string, v ...interface{})

	Panic(v ...interface{})
	Panicf(format string, v ...interface{})
}

// Logger represents a logging interface that is compatible with the standard
// "log" and with many other logging libraries, *logrus.Logger included.
type Logger interface {
	Fatal(v ...interface{})
	Fatalf(format string, v ...interface{})

	Print(v ...interface{})
	Printf(format string, v ...interface{})

	Panic(v ...interface{})
	Panicf(format string, v ...interface{})
}

type loggingCollector struct {
	mu     sync.RWMutex
	level  LogLevel
	logger Logger
}

func newDefaultLogger() Logger {
	lg := logrus.New()
	// Filtering is done by the collector.
	lg.SetLevel(logrus.TraceLevel)
	return lg
}

func (c *loggingCollector) Enabled(level LogLevel) bool {
	return level >= c.Level()
}

func (c *loggingCollector) Level() LogLevel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.level
}

func (c *loggingCollector) SetLevel(level LogLevel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.level = level
}

func (c *loggingCollector) Logger() Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.logger
}

// SetLogger sets the logger messages are written to, nil restores the
// default one.
func (c *loggingCollector) SetLogger(logger Logger) {
	if logger == nil {
		logger = newDefaultLogger()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = logger
}

func (c *loggingCollector) logf(level LogLevel, f string, v ...interface{}) {
	if !c.Enabled(level) {
		return
	}

	lg := c.Logger()
	if level == LogLevelPanic {
		lg.Panicf(f, v...)
		return
	}
	if level == LogLevelFatal {
		lg.Fatalf(f, v...)
		return
	}

	if ll, ok := lg.(*logrus.Logger); ok {
		ll.Logf(logrusLevels[level], f, v...)
		return
	}
	lg.Printf("%s: "+f, append([]interface{}{level}, v...)...)
}

func (c *loggingCollector) log(level LogLevel, v ...interface{}) {
	if !c.Enabled(level) {
		return
	}
	c.logf(level, "%s", fmt.Sprint(v...))
}

func (c *loggingCollector) Trace(v ...interface{}) {
	c.log(LogLevelTrace, v...)
}

func (c *loggingCollector) Tracef(format string, v ...interface{}) {
	c.logf(LogLevelTrace, format, v...)
}

func (c *loggingCollector) Debug(v ...interface{}) {
	c.log(LogLevelDebug, v...)
}

func (c *loggingCollector) Debugf(format string, v ...interface{}) {
	c.logf(LogLevelDebug, format, v...)
}

func (c *loggingCollector) Info(v ...interface{}) {
	c.log(LogLevelInfo, v...)
}

func (c *loggingCollector) Infof(format string, v ...interface{}) {
	c.logf(LogLevelInfo, format, v...)
}

func (c *loggingCollector) Warn(v ...interface{}) {
	c.log(LogLevelWarn, v...)
}

func (c *loggingCollector) Warnf(format string, v ...interface{}) {
	c.logf(LogLevelWarn, format, v...)
}

func (c *loggingCollector) Error(v ...interface{}) {
	c.log(LogLevelError, v...)
}

func (c *loggingCollector) Errorf(format string, v ...interface{}) {
	c.logf(LogLevelError, format, v...)
}

func (c *loggingCollector) Fatal(v ...interface{}) {
	c.log(LogLevelFatal, v...)
}

func (c *loggingCollector) Fatalf(format string, v ...interface{}) {
	c.logf(LogLevelFatal, format, v...)
}

func (c *loggingCollector) Panic(v ...interface{}) {
	c.log(LogLevelPanic, v...)
}

func (c *loggingCollector) Panicf(format string, v ...interface{}) {
	c.logf(LogLevelPanic, format, v...)
}

var defaultLoggingCollector LoggingCollector = &loggingCollector{
	level:  defaultLogLevel,
	logger: newDefaultLogger(),
}

// LC returns the logging collector.
func LC() LoggingCollector {
	return defaultLoggingCollector
}

// logQuery classifies a query status: failures are errors, slow queries are
// warnings and everything else is debug output.
func logQuery(status *QueryStatus) {
	switch {
	case status.Err != nil:
		LC().Error(status)
	case status.End.Sub(status.Start) > SlowQueryThreshold:
		slow := *status
		slow.Err = ErrWarnSlowQuery
		LC().Warn(&slow)
	default:
		LC().Debug(status)
	}
}

func init() {
	if level, ok := envLogLevel(EnvLogLevel); ok {
		LC().SetLevel(level)
	}
	if envEnabled(EnvEnableDebug) {
		LC().SetLevel(LogLevelDebug)
	}
}
