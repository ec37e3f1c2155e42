// Package telemetry wraps zap to produce the structured JSON log lines the
// control loop, order manager, and risk supervisor emit on every decision.
package telemetry

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level mirrors the teacher's named log levels, kept as a closed set so
// call sites read the same way regardless of backend.
type Level string

const (
	LevelInfo   Level = "INFO"
	LevelWarn   Level = "WARN"
	LevelError  Level = "ERROR"
	LevelTrade  Level = "TRADE"
	LevelStatus Level = "STATUS"
	LevelDebug  Level = "DEBUG"
	LevelRisk   Level = "RISK"
	LevelVenue  Level = "VENUE"
)

// Logger is a thin wrapper over *zap.Logger. With derives a Logger that
// tags every line with fixed fields such as "component" and the grid's
// symbol; lines from a Logger not derived that way carry no such tags.
type Logger struct {
	z *zap.Logger
}

// New builds a Logger writing newline-delimited JSON to w (the CLI passes
// os.Stdout via NewStdout).
func New(w zapcore.WriteSyncer, debug bool) *Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), w, level)
	return &Logger{z: zap.New(core)}
}

// NewStdout is the common case: JSON logs to stdout, as gridai's CLI never
// writes its own log files (the operator's process supervisor owns that).
func NewStdout(debug bool) *Logger {
	return New(zapcore.AddSync(os.Stdout), debug)
}

// With returns a derived Logger tagging every subsequent line with the
// given key/value pairs (e.g. component="gridengine", symbol="BTC/USDT").
func (l *Logger) With(keyValues ...interface{}) *Logger {
	fields := make([]zap.Field, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		key, _ := keyValues[i].(string)
		fields = append(fields, zap.Any(key, keyValues[i+1]))
	}
	return &Logger{z: l.z.With(fields...)}
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.z.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.z.Warn(fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.z.Error(fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.z.Debug(fmt.Sprintf(format, args...))
}

// Trade logs a fill event at info level tagged level="TRADE" so operators
// can grep the stream for executions without a separate sink.
func (l *Logger) Trade(format string, args ...interface{}) {
	l.z.Info(fmt.Sprintf(format, args...), zap.String("level", string(LevelTrade)))
}

// Status logs a periodic heartbeat line (tick summary, reconciliation pass).
func (l *Logger) Status(format string, args ...interface{}) {
	l.z.Info(fmt.Sprintf(format, args...), zap.String("level", string(LevelStatus)))
}

// Risk logs a risk-escalation transition.
func (l *Logger) Risk(format string, args ...interface{}) {
	l.z.Warn(fmt.Sprintf(format, args...), zap.String("level", string(LevelRisk)))
}

// Venue logs a venue-adapter call outcome (latency, retry count).
func (l *Logger) Venue(format string, args ...interface{}) {
	l.z.Info(fmt.Sprintf(format, args...), zap.String("level", string(LevelVenue)))
}

func (l *Logger) Sync() error {
	return l.z.Sync()
}

// Uptime is a small helper the health surface uses to report process age.
func Uptime(start time.Time) time.Duration {
	return time.Since(start)
}
