// Package log provides the logging facade used throughout xhook.
// It wraps the Kratos logging system and provides convenient methods for different log levels.
package log

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

// Level represents the logging level.
type Level int32

const (
	// DebugLevel logs are typically voluminous, and are usually disabled in production.
	DebugLevel Level = iota
	// InfoLevel is the default logging priority.
	InfoLevel
	// WarnLevel logs are more important than Info, but don't need individual human review.
	WarnLevel
	// ErrorLevel logs are high-priority.
	ErrorLevel
)

var (
	// Logger is the primary logging interface.
	Logger log.Logger

	// helperStore stores *log.Helper atomically so the logger can be swapped under load.
	helperStore atomic.Pointer[log.Helper]

	// minLevel is the kratos level below which nothing is emitted.
	minLevel atomic.Int32
)

func init() {
	minLevel.Store(int32(log.LevelInfo))
}

// SetLevel sets the global logging level.
func SetLevel(level Level) {
	minLevel.Store(int32(toKratosLevel(level)))
	if Logger != nil {
		SetLogger(Logger)
	}
}

// GetLevel returns the current global logging level.
func GetLevel() Level {
	switch log.Level(minLevel.Load()) {
	case log.LevelDebug:
		return DebugLevel
	case log.LevelWarn:
		return WarnLevel
	case log.LevelError, log.LevelFatal:
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func toKratosLevel(level Level) log.Level {
	switch level {
	case DebugLevel:
		return log.LevelDebug
	case WarnLevel:
		return log.LevelWarn
	case ErrorLevel:
		return log.LevelError
	default:
		return log.LevelInfo
	}
}

// ParseLevel maps a configuration string to a Level, defaulting to InfoLevel.
func ParseLevel(s string) Level {
	switch log.ParseLevel(s) {
	case log.LevelDebug:
		return DebugLevel
	case log.LevelWarn:
		return WarnLevel
	case log.LevelError, log.LevelFatal:
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// SetLogger installs l as the backend of the facade, filtered by the current level.
func SetLogger(l log.Logger) {
	if l == nil {
		Logger = nil
		helperStore.Store(nil)
		return
	}
	Logger = l
	filtered := log.NewFilter(l, log.FilterLevel(log.Level(minLevel.Load())))
	helperStore.Store(log.NewHelper(filtered))
}

// fallbackLogger provides a simple fallback logger when main logger is not initialized
type fallbackLogger struct{}

func (f *fallbackLogger) logFormat(level log.Level, format string, args ...any) {
	if int32(level) < minLevel.Load() {
		return
	}
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	msg := fmt.Sprintf(format, args...)
	formatted := fmt.Sprintf("[%s] [%s] [xhook-log-fallback] %s\n", timestamp, level, msg)
	os.Stderr.WriteString(formatted)
}

var fallback = &fallbackLogger{}

// helper returns the active log helper, or nil when no logger is installed.
func helper() *log.Helper {
	return helperStore.Load()
}

func Debug(a ...any) {
	if h := helper(); h != nil {
		h.Debug(a...)
	} else {
		fallback.logFormat(log.LevelDebug, "%s", fmt.Sprint(a...))
	}
}

func Debugf(format string, a ...any) {
	if h := helper(); h != nil {
		h.Debugf(format, a...)
	} else {
		fallback.logFormat(log.LevelDebug, format, a...)
	}
}

func Debugw(keyvals ...any) {
	if h := helper(); h != nil {
		h.Debugw(keyvals...)
	}
}

func DebugfCtx(ctx context.Context, format string, a ...any) {
	if h := helper(); h != nil {
		h.WithContext(ctx).Debugf(format, a...)
	}
}

func Info(a ...any) {
	if h := helper(); h != nil {
		h.Info(a...)
	} else {
		fallback.logFormat(log.LevelInfo, "%s", fmt.Sprint(a...))
	}
}

func Infof(format string, a ...any) {
	if h := helper(); h != nil {
		h.Infof(format, a...)
	} else {
		fallback.logFormat(log.LevelInfo, format, a...)
	}
}

func Infow(keyvals ...any) {
	if h := helper(); h != nil {
		h.Infow(keyvals...)
	}
}

func Warn(a ...any) {
	if h := helper(); h != nil {
		h.Warn(a...)
	} else {
		fallback.logFormat(log.LevelWarn, "%s", fmt.Sprint(a...))
	}
}

func Warnf(format string, a ...any) {
	if h := helper(); h != nil {
		h.Warnf(format, a...)
	} else {
		fallback.logFormat(log.LevelWarn, format, a...)
	}
}

func Warnw(keyvals ...any) {
	if h := helper(); h != nil {
		h.Warnw(keyvals...)
	}
}

func Error(a ...any) {
	if h := helper(); h != nil {
		h.Error(a...)
	} else {
		fallback.logFormat(log.LevelError, "%s", fmt.Sprint(a...))
	}
}

func Errorf(format string, a ...any) {
	if h := helper(); h != nil {
		h.Errorf(format, a...)
	} else {
		fallback.logFormat(log.LevelError, format, a...)
	}
}

func Errorw(keyvals ...any) {
	if h := helper(); h != nil {
		h.Errorw(keyvals...)
	}
}

func ErrorfCtx(ctx context.Context, format string, a ...any) {
	if h := helper(); h != nil {
		h.WithContext(ctx).Errorf(format, a...)
	}
}
