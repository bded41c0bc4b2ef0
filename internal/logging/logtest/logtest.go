// Package logtest provides loggers for tests. Only _test.go files import it.
package logtest

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// NewLogger returns a debug logger that writes through tb.
func NewLogger(tb testing.TB) *zap.SugaredLogger {
	return zaptest.NewLogger(tb, zaptest.Level(zap.DebugLevel)).Sugar()
}
