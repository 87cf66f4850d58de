// Package log - zerolog adapter for Kratos log.Logger
package log

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/rs/zerolog"
)

type zeroLogLogger struct {
	logger zerolog.Logger
}

// NewZeroLogLogger adapts a zerolog logger to the kratos log.Logger interface.
func NewZeroLogLogger(z zerolog.Logger) log.Logger {
	return zeroLogLogger{logger: z}
}

// Log implements the log.Logger interface.
// It converts Kratos log levels to zerolog levels and handles structured logging.
func (l zeroLogLogger) Log(level log.Level, keyvals ...interface{}) error {
	// Tolerate odd number of keyvals by appending a placeholder value
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "BAD_VALUE")
	}

	var event *zerolog.Event
	switch level {
	case log.LevelDebug:
		event = l.logger.Debug()
	case log.LevelInfo:
		event = l.logger.Info()
	case log.LevelWarn:
		event = l.logger.Warn()
	case log.LevelError:
		event = l.logger.Error()
	case log.LevelFatal:
		// never exit the host process from a log call
		event = l.logger.WithLevel(zerolog.FatalLevel)
	default:
		event = l.logger.Warn().Interface("original_level", level)
	}

	var msg string
	for i := 0; i < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprintf("BAD_KEY_%d", i)
			event = event.Interface("original_key", keyvals[i])
		}

		val := keyvals[i+1]

		if key == log.DefaultMessageKey {
			if str, ok := val.(string); ok {
				msg = str
			} else {
				msg = fmt.Sprint(val)
			}
			continue
		}

		if key == "err" || key == "error" {
			if e, ok := val.(error); ok {
				event = event.Err(e)
				continue
			}
		}

		event = event.Interface(key, val)
	}

	if sc := getStackConfig(); sc.enabled && level >= sc.minLevel {
		if stack := captureStack(); stack != "" {
			event = event.Str("stack", stack)
		}
	}

	event.Msg(msg)
	return nil
}
