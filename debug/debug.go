// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go - Cold-path logging for the wait/wake machinery
//
// Purpose:
//   - Reports capability probes, pinning failures, config and store errors.
//   - Backed by a zap core: console to stderr by default, or a rotating
//     lumberjack file when settings.Logger names one.
//
// Notes:
//   - The Drop* API is kept tiny so call sites stay one line.
//   - Logger swaps are atomic; concurrent Drop* calls never see a torn logger.
//
// ⚠️ Never invoke from Monitor/Wakeup/Pause or a consumer's poll loop.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import (
	"os"
	"strings"
	"sync/atomic"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"powerwait/settings"
)

var current atomic.Pointer[zap.Logger]

func init() {
	current.Store(newLogger(zapcore.AddSync(os.Stderr), zapcore.InfoLevel))
}

// Configure installs a logger built from cfg and flushes the one it replaces.
func Configure(cfg settings.Logger) {
	level := parseLevel(cfg.LogLevel)

	sink := zapcore.AddSync(os.Stderr)
	if cfg.FileLogName != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FileLogName,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	}

	prev := current.Swap(newLogger(sink, level))
	_ = prev.Sync()
}

// SetLogger replaces the logger; tests use it with zaptest/observer cores.
func SetLogger(l *zap.Logger) {
	current.Store(l)
}

// Logger returns the active logger.
func Logger() *zap.Logger {
	return current.Load()
}

// DropError logs prefix and err at warn level. A nil err logs just the
// prefix, which is how tagged warnings without a cause are reported.
func DropError(prefix string, err error) {
	l := current.Load()
	if err != nil {
		l.Warn(prefix, zap.Error(err))
		return
	}
	l.Warn(prefix)
}

// DropMessage logs an informational event under a short tag.
func DropMessage(prefix, message string) {
	current.Load().Info(message, zap.String("tag", prefix))
}

func newLogger(sink zapcore.WriteSyncer, level zapcore.Level) *zap.Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), sink, level)
	return zap.New(core)
}

func parseLevel(s string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
