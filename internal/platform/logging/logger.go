// Package logging provides the process-wide zap logger and the request-scoped
// logging middleware used by the HTTP server.
package logging

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TimestampLayout is RFC 3339 UTC with fixed microsecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// Cloud Logging reads severity names, not zap level strings.
var severityNames = map[zapcore.Level]string{
	zapcore.DebugLevel:  "DEBUG",
	zapcore.InfoLevel:   "INFO",
	zapcore.WarnLevel:   "WARNING",
	zapcore.ErrorLevel:  "ERROR",
	zapcore.DPanicLevel: "CRITICAL",
	zapcore.PanicLevel:  "ALERT",
	zapcore.FatalLevel:  "EMERGENCY",
}

type loggerState struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
	err    error
}

var (
	stateOnce sync.Once
	state     loggerState
)

func encodeSeverity(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	name, ok := severityNames[level]
	if !ok {
		name = "DEFAULT"
	}
	enc.AppendString(name)
}

func encodeTimestamp(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(TimestampLayout))
}

// newLogger builds a JSON logger on stdout using the Cloud Logging field names.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stdout"}

	enc := &cfg.EncoderConfig
	enc.MessageKey = "message"
	enc.LevelKey = "severity"
	enc.TimeKey = "timestamp"
	enc.CallerKey = "caller"
	enc.EncodeLevel = encodeSeverity
	enc.EncodeTime = encodeTimestamp

	return cfg.Build(zap.AddCaller())
}

func ensureLogger() {
	stateOnce.Do(func() {
		logger, err := newLogger()
		if err != nil {
			logger = zap.NewNop()
		}
		state = loggerState{logger: logger, sugar: logger.Sugar(), err: err}
	})
}

// Logger returns the process-wide logger, building it on first use.
func Logger() *zap.Logger {
	ensureLogger()
	return state.logger
}

// Sugar shares the core of Logger.
func Sugar() *zap.SugaredLogger {
	ensureLogger()
	return state.sugar
}

// SetLogger swaps the process-wide logger and returns a func that puts the
// previous one back. Call it before any request is served.
func SetLogger(l *zap.Logger) (restore func()) {
	ensureLogger()
	prev := state
	state = loggerState{logger: l, sugar: l.Sugar()}
	return func() { state = prev }
}

// Sync flushes buffered entries; main calls it on exit.
func Sync() error {
	return Logger().Sync()
}

// Err is non-nil when the stdout logger could not be built and a no-op
// logger is in use instead.
func Err() error {
	ensureLogger()
	return state.err
}
