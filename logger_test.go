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
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Fatal(v ...interface{}) {
	r.lines = append(r.lines, fmt.Sprint(v...))
}

func (r *recordingLogger) Fatalf(format string, v ...interface{}) {
	r.lines = append(r.lines, fmt.Sprintf(format, v...))
}

func (r *recordingLogger) Print(v ...interface{}) {
	r.lines = append(r.lines, fmt.Sprint(v...))
}

func (r *recordingLogger) Printf(format string, v ...interface{}) {
	r.lines = append(r.lines, fmt.Sprintf(format, v...))
}

func (r *recordingLogger) Panic(v ...interface{}) {
	panic(fmt.Sprint(v...))
}

func (r *recordingLogger) Panicf(format string, v ...interface{}) {
	panic(fmt.Sprintf(format, v...))
}

// withLogger replaces the collector's logger and level for the duration of a
// test.
func withLogger(t *testing.T, logger Logger, level LogLevel) {
	prevLevel := LC().Level()
	LC().SetLevel(level)
	LC().SetLogger(logger)
	t.Cleanup(func() {
		LC().SetLevel(prevLevel)
		LC().SetLogger(nil)
	})
}

func TestLoggingCollectorLevels(t *testing.T) {
	rec := &recordingLogger{}
	withLogger(t, rec, LogLevelWarn)

	LC().Debugf("hidden %d", 1)
	LC().Info("hidden")
	LC().Warnf("shown %d", 2)
	LC().Error("shown", " ", 3)

	require.Len(t, rec.lines, 2)
	assert.Equal(t, "WARNING: shown 2", rec.lines[0])
	assert.Equal(t, "ERROR: shown 3", rec.lines[1])

	assert.True(t, LC().Enabled(LogLevelError))
	assert.False(t, LC().Enabled(LogLevelDebug))

	assert.PanicsWithValue(t, "PANIC", func() {
		LC().Panicf("PANIC")
	})
}

func TestLoggingCollectorLogrus(t *testing.T) {
	var buf bytes.Buffer

	lg := logrus.New()
	lg.SetOutput(&buf)
	lg.SetLevel(logrus.TraceLevel)
	lg.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})

	withLogger(t, lg, LogLevelTrace)

	LC().Tracef("tracing %s", "query")
	LC().Warn("careful")

	out := buf.String()
	assert.Contains(t, out, `level=trace msg="tracing query"`)
	assert.Contains(t, out, `level=warning msg=careful`)
}

func TestLogQuery(t *testing.T) {
	rec := &recordingLogger{}
	withLogger(t, rec, LogLevelDebug)

	now := time.Now()

	logQuery(&QueryStatus{Query: "select 1", Start: now, End: now})
	logQuery(&QueryStatus{Query: "select 2", Start: now, End: now, Err: errors.New("boom")})
	logQuery(&QueryStatus{Query: "select 3", Start: now, End: now.Add(SlowQueryThreshold + time.Millisecond)})

	require.Len(t, rec.lines, 3)
	assert.True(t, strings.HasPrefix(rec.lines[0], "DEBUG: "))
	assert.True(t, strings.HasPrefix(rec.lines[1], "ERROR: "))
	assert.Contains(t, rec.lines[1], "boom")
	assert.True(t, strings.HasPrefix(rec.lines[2], "WARNING: "))
	assert.Contains(t, rec.lines[2], ErrWarnSlowQuery.Error())
}

func TestQueryStatusString(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	affected := int64(3)

	status := &QueryStatus{
		SessID:       12,
		TxID:         "tx-1",
		RowsAffected: &affected,
		Query:        "update \"users\"\n\tset \"active\" = ?",
		Args:         []interface{}{true},
		Start:        start,
		End:          start.Add(1500 * time.Millisecond),
	}

	assert.Equal(t, strings.Join([]string{
		"Session ID:     00012",
		"Transaction ID: tx-1",
		`Query:          update "users" set "active" = ?`,
		"Arguments:      []interface {}{true}",
		"Rows affected:  3",
		"Time taken:     1.50000s",
	}, "\n"), status.String())
}

func TestEnvLogLevel(t *testing.T) {
	testCases := []struct {
		value string
		level LogLevel
		ok    bool
	}{
		{"", 0, false},
		{"debug", LogLevelDebug, true},
		{"TRACE", LogLevelTrace, true},
		{"warn", LogLevelWarn, true},
		{"WARNING", LogLevelWarn, true},
		{" error ", LogLevelError, true},
		{"verbose", 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.value, func(t *testing.T) {
			t.Setenv(EnvLogLevel, tc.value)

			level, ok := envLogLevel(EnvLogLevel)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.level, level)
		})
	}
}

func TestEnvEnabled(t *testing.T) {
	t.Setenv(EnvEnableDebug, "1")
	assert.True(t, envEnabled(EnvEnableDebug))

	t.Setenv(EnvEnableDebug, "no")
	assert.False(t, envEnabled(EnvEnableDebug))
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "WARNING", LogLevelWarn.String())
	assert.Equal(t, "", LogLevel(42).String())
}
