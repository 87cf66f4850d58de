package log

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/go-kratos/kratos/v2/log"
)

// stackCfg holds runtime-configurable stack trace settings.
type stackCfg struct {
	enabled        bool
	skip           int
	maxFrames      int
	minLevel       log.Level
	filterPrefixes []string
}

var stconf atomic.Pointer[stackCfg]

func init() {
	stconf.Store(&stackCfg{
		enabled:   true,
		skip:      5,
		maxFrames: 24,
		minLevel:  log.LevelError,
		filterPrefixes: []string{
			"github.com/go-kratos/kratos",
			"github.com/rs/zerolog",
			"github.com/go-lynx/xhook/log",
		},
	})
}

func getStackConfig() *stackCfg {
	if c := stconf.Load(); c != nil {
		return c
	}
	return &stackCfg{enabled: false}
}

// SetStackTrace toggles stack capture for records at or above minLevel.
func SetStackTrace(enabled bool, minLevel Level) {
	cur := getStackConfig()
	next := *cur
	next.enabled = enabled
	next.minLevel = toKratosLevel(minLevel)
	next.filterPrefixes = append([]string(nil), cur.filterPrefixes...)
	stconf.Store(&next)
}

// captureStack collects up to maxFrames frames, skipping logging internals.
// Format: FuncName file:line per line.
func captureStack() string {
	cfg := getStackConfig()
	if !cfg.enabled {
		return ""
	}

	pcs := make([]uintptr, cfg.maxFrames)
	n := runtime.Callers(cfg.skip, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var b strings.Builder
	for {
		fr, more := frames.Next()
		if fr.Function != "" || fr.File != "" {
			if !hasAnyPrefix(fr.Function, cfg.filterPrefixes) && !hasAnyPrefix(fr.File, cfg.filterPrefixes) {
				fmt.Fprintf(&b, "%s %s:%d\n", fr.Function, fr.File, fr.Line)
			}
		}
		if !more {
			break
		}
	}
	return b.String()
}

// hasAnyPrefix reports whether s starts with any prefix in the list.
func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
