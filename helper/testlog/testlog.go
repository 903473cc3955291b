// Package testlog creates an hclog.Logger backed by testing.T to ease logging
// in tests.
package testlog

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// LogPrinter is the methods of testing.T (or testing.B) needed by the test
// logger.
type LogPrinter interface {
	Logf(format string, args ...interface{})
}

// writer implements io.Writer on top of a LogPrinter.
type writer struct {
	t LogPrinter
}

// Write to an underlying LogPrinter. Never returns an error.
func (w *writer) Write(p []byte) (n int, err error) {
	w.t.Logf("%s", p)
	return len(p), nil
}

// HCLogger returns a new test logger with the Trace level if not specified
// via the LOG_LEVEL environment variable.
func HCLogger(t LogPrinter) hclog.InterceptLogger {
	level := "Trace"
	envLogLevel := os.Getenv("LOG_LEVEL")
	if envLogLevel != "" {
		level = envLogLevel
	}
	opts := &hclog.LoggerOptions{
		Level:           hclog.LevelFromString(level),
		Output:          &writer{t},
		IncludeLocation: true,
	}
	return hclog.NewInterceptLogger(opts)
}
