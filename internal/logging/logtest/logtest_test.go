package logtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	logger := NewLogger(t)
	assert.True(t, logger.Desugar().Core().Enabled(zapcore.DebugLevel))
	logger.Infow("hello", "pairs", 3)
}
