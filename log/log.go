package log

import (
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLevel keeps the terminal quiet unless something goes wrong.
const DefaultLevel = "warn"

// New returns a logger writing to w.
// Format must be one of: console or json.
// Level must be one of: debug, info, warn or error. Unknown levels fall back to DefaultLevel.
func New(w io.Writer, format string, level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = zapcore.WarnLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if format == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), lvl)
	return zap.New(core, zap.AddCaller())
}

// Nop returns a no-op logger
func Nop() *zap.Logger {
	return zap.NewNop()
}

// ValidLevel reports whether level is understood by New.
func ValidLevel(level string) bool {
	_, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	return err == nil
}
