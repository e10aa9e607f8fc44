package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLogHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "info without attrs",
			level:   slog.LevelInfo,
			message: "snapshot recorded",
			want:    "2024-06-15T14:30:45Z\tINFO\top-1\tsnapshot recorded\n",
		},
		{
			name:    "debug with attrs",
			level:   slog.LevelDebug,
			message: "scan complete",
			attrs:   []slog.Attr{slog.String("source", "laptop"), slog.Int("files", 42)},
			want:    "2024-06-15T14:30:45Z\tDEBUG\top-1\tscan complete\tsource=laptop\tfiles=42\n",
		},
		{
			name:    "value with whitespace is quoted",
			level:   slog.LevelError,
			message: "command failed",
			attrs:   []slog.Attr{slog.String("error", "insert: write error")},
			want:    "2024-06-15T14:30:45Z\tERROR\top-1\tcommand failed\terror=\"insert: write error\"\n",
		},
		{
			name:    "group attr keys are dotted",
			level:   slog.LevelInfo,
			message: "baseline ready",
			attrs:   []slog.Attr{slog.Group("count", slog.Int("local", 2), slog.Int("foreign", 1))},
			want:    "2024-06-15T14:30:45Z\tINFO\top-1\tbaseline ready\tcount.local=2\tcount.foreign=1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &logHandler{w: &buf, opID: "op-1"}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			r.AddAttrs(tt.attrs...)

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestLogHandler_Enabled(t *testing.T) {
	ctx := context.Background()

	all := &logHandler{}
	if !all.Enabled(ctx, slog.LevelDebug) {
		t.Error("handler without level should accept debug")
	}

	warn := &logHandler{level: slog.LevelWarn}
	if warn.Enabled(ctx, slog.LevelInfo) {
		t.Error("warn handler accepted info")
	}
	if !warn.Enabled(ctx, slog.LevelError) {
		t.Error("warn handler rejected error")
	}
}

func TestLogHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &logHandler{w: &buf, opID: "op-1"}
	base := h.WithAttrs([]slog.Attr{slog.String("a", "1")}).(*logHandler)

	h2 := base.WithAttrs([]slog.Attr{slog.String("command", "record")}).(*logHandler)
	if len(base.attrs) != 1 {
		t.Errorf("original handler attrs modified: got %d, want 1", len(base.attrs))
	}

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "done", 0)
	r.AddAttrs(slog.Int("files", 3))
	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "\ta=1\tcommand=record\tfiles=3\n") {
		t.Errorf("Handle() output = %q, want handler attrs before record attrs", got)
	}
}

func TestLogHandler_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&logHandler{w: &buf, opID: "op-1"})

	logger.WithGroup("store").With("path", "/db").Info("opened", "rows", 4)

	got := buf.String()
	if !strings.Contains(got, "\topened\tstore.path=/db\tstore.rows=4\n") {
		t.Errorf("output = %q, want group-prefixed keys", got)
	}
}

func TestNewLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "log")
	var stderr bytes.Buffer

	logger, f, err := newLogger(dir, "test-op", &stderr, slog.LevelInfo)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	defer f.Close()

	logger.Debug("walking", "dir", "sub")
	logger.Info("hello", "k", "v")

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	for _, want := range []string{"\ttest-op\twalking\tdir=sub", "\ttest-op\thello\tk=v"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log file = %q, want line containing %q", data, want)
		}
	}

	if strings.Contains(stderr.String(), "walking") {
		t.Errorf("stderr = %q, debug records should stay in the log file", stderr.String())
	}
	if !strings.Contains(stderr.String(), "\thello\tk=v") {
		t.Errorf("stderr = %q, want the info line", stderr.String())
	}
}
