package logging

import (
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the log file created inside the log directory.
const FileName = "scopeping.log"

// NewLogger writes JSON logs to a rotated file in logDir and, when console is
// non-nil, human-readable lines to console as well.
func NewLogger(logDir, level string, console io.Writer) (*zap.Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}
	lvl := ParseLevel(level)

	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(logDir, FileName),
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	})
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(cfg), w, lvl),
	}

	if console != nil {
		ccfg := zap.NewDevelopmentEncoderConfig()
		ccfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(ccfg), zapcore.AddSync(console), lvl))
	}
	return zap.New(zapcore.NewTee(cores...)), nil
}

// ParseLevel maps debug|info|warn|error to a zap level, defaulting to info.
func ParseLevel(s string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return zap.InfoLevel
	}
	return lvl
}
