package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/rs/zerolog"
)

type recordingLogger struct {
	mu      sync.Mutex
	records [][]any
	levels  []log.Level
}

func (r *recordingLogger) Log(level log.Level, keyvals ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.levels = append(r.levels, level)
	r.records = append(r.records, keyvals)
	return nil
}

func TestFacade_LevelFilter(t *testing.T) {
	rec := &recordingLogger{}
	SetLevel(WarnLevel)
	SetLogger(rec)
	t.Cleanup(func() {
		SetLogger(nil)
		SetLevel(InfoLevel)
	})

	Infof("dropped %d", 1)
	Warnf("kept %d", 2)
	Errorw("msg", "kept", "n", 3)

	if len(rec.records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(rec.records))
	}
	if rec.levels[0] != log.LevelWarn || rec.levels[1] != log.LevelError {
		t.Errorf("unexpected levels: %v", rec.levels)
	}
	if GetLevel() != WarnLevel {
		t.Errorf("GetLevel = %v, want WarnLevel", GetLevel())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug": DebugLevel,
		"INFO":  InfoLevel,
		"warn":  WarnLevel,
		"error": ErrorLevel,
		"bogus": InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestZeroLogLogger_Fields(t *testing.T) {
	SetStackTrace(false, ErrorLevel)
	t.Cleanup(func() { SetStackTrace(true, ErrorLevel) })

	var buf bytes.Buffer
	l := NewZeroLogLogger(zerolog.New(&buf))
	if err := l.Log(log.LevelError, "msg", "bundle skipped", "bundle", "/a.zip", "err", errors.New("boom"), "odd"); err != nil {
		t.Fatalf("Log returned error: %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &out); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if out["message"] != "bundle skipped" {
		t.Errorf("message = %v", out["message"])
	}
	if out["bundle"] != "/a.zip" {
		t.Errorf("bundle = %v", out["bundle"])
	}
	if out["error"] != "boom" {
		t.Errorf("error = %v", out["error"])
	}
	if out["odd"] != "BAD_VALUE" {
		t.Errorf("odd = %v", out["odd"])
	}
	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Errorf("missing level in %s", buf.String())
	}
}
