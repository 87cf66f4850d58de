package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-lynx/xhook/conf"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// InitLogger initializes the logging system from the log configuration.
//
// Parameters:
//   - name: The name of the hosting process
//   - version: The framework version
//   - c: The log configuration; nil means console output at info level
//
// Returns:
//   - io.Closer: releases the file writer, if one was opened
//   - error: An error if initialization fails, nil otherwise
func InitLogger(name, version string, c *conf.Log) (io.Closer, error) {
	if name == "" {
		return nil, fmt.Errorf("process name cannot be empty")
	}
	if c == nil {
		c = &conf.Log{Level: conf.DefaultLogLevel, ConsoleOutput: true}
	}

	var (
		writers []io.Writer
		closer  io.Closer = nopCloser{}
	)
	if c.ConsoleOutput {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
			PartsOrder: []string{
				zerolog.TimestampFieldName,
				zerolog.LevelFieldName,
				zerolog.CallerFieldName,
				zerolog.MessageFieldName,
			},
		})
	}
	if c.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(c.FilePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		fileWriter := &lumberjack.Logger{
			Filename:   c.FilePath,
			MaxSize:    c.MaxSizeMB,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAgeDays,
			Compress:   c.Compress,
		}
		writers = append(writers, fileWriter)
		closer = fileWriter
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	level := ParseLevel(c.Level)
	zerolog.SetGlobalLevel(toZeroLevel(level))
	minLevel.Store(int32(toKratosLevel(level)))

	z := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
	logger := log.With(NewZeroLogLogger(z),
		"caller", log.Caller(5),
		"process.name", name,
		"xhook.version", version,
	)
	SetLogger(logger)
	return closer, nil
}

func toZeroLevel(level Level) zerolog.Level {
	switch level {
	case DebugLevel:
		return zerolog.DebugLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
