package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// UseCore swaps the global logger for one writing to core until restore is called
func UseCore(core zapcore.Core) (restore func()) {
	prev := log
	log = zap.New(core)
	return func() { log = prev }
}
