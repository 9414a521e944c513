package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestFrameHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		opID    string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			opID:    "op-123",
			level:   slog.LevelInfo,
			message: "image displayed",
			want:    "2024-06-15T14:30:45Z\tINFO\top-123\timage displayed\n",
		},
		{
			name:    "warn level",
			opID:    "op-456",
			level:   slog.LevelWarn,
			message: "no images to display",
			want:    "2024-06-15T14:30:45Z\tWARN\top-456\tno images to display\n",
		},
		{
			name:    "with record attrs",
			opID:    "op-789",
			level:   slog.LevelInfo,
			message: "image uploaded",
			attrs:   []slog.Attr{slog.String("filename", "cat.png"), slog.Int("size", 42)},
			want:    "2024-06-15T14:30:45Z\tINFO\top-789\timage uploaded\tfilename=cat.png\tsize=42\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := newFrameHandler(&buf, tt.opID)

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			for _, a := range tt.attrs {
				r.AddAttrs(a)
			}

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestFrameHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := newFrameHandler(&buf, "op-1")

	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "http")}).(*frameHandler)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "request", 0)
	r.AddAttrs(slog.String("path", "/api/images"))

	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "component=http") {
		t.Errorf("expected pre-set attr component=http, got: %q", got)
	}
	if !strings.Contains(got, "path=/api/images") {
		t.Errorf("expected record attr path=/api/images, got: %q", got)
	}
	if len(h.attrs) != 0 {
		t.Errorf("original handler attrs modified: got %d, want 0", len(h.attrs))
	}
}

func TestFrameHandler_ConcurrentLinesStayWhole(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newFrameHandler(&buf, "op-1"))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("tick", "n", i)
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 20 {
		t.Fatalf("got %d lines, want 20", len(lines))
	}
	for _, line := range lines {
		if fields := strings.Split(line, "\t"); len(fields) != 5 {
			t.Errorf("malformed line %q", line)
		}
	}
}

func TestNewLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "log")
	var console bytes.Buffer

	logger, closer, err := newLogger(dir, "test-op", &console)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	logger.Info("hello", "k", "v")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "test-op\thello\tk=v") {
		t.Errorf("log file = %q, want hello line", data)
	}
	if console.String() != string(data) {
		t.Errorf("console = %q, want same as file", console.String())
	}
}
