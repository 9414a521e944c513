package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileName is the rotating log file created under the log directory.
const LogFileName = "picframe.log"

// frameHandler is a custom slog.Handler that formats log records as:
//
//	<timestamp>\t<level>\t<opID>\t<message>\t<key=value ...>
//
// The server logs from many goroutines, so each line is written under mu.
type frameHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	opID  string
	attrs []slog.Attr
}

func newFrameHandler(w io.Writer, opID string) *frameHandler {
	return &frameHandler{mu: &sync.Mutex{}, w: w, opID: opID}
}

func (h *frameHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *frameHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time.UTC().Format("2006-01-02T15:04:05Z")

	line := fmt.Sprintf("%s\t%s\t%s\t%s", ts, r.Level.String(), h.opID, r.Message)
	for _, a := range h.attrs {
		line += fmt.Sprintf("\t%s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		line += fmt.Sprintf("\t%s=%v", a.Key, a.Value)
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.w, line)
	return err
}

func (h *frameHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &frameHandler{
		mu:    h.mu,
		w:     h.w,
		opID:  h.opID,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *frameHandler) WithGroup(string) slog.Handler { return h }

// newLogger creates a structured logger that writes to logDir/picframe.log,
// rotated by size, and to console when it is non-nil.
// It returns the slog.Logger and the file writer to close on shutdown.
func newLogger(logDir string, opID string, console io.Writer) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	file := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, LogFileName),
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
	}

	var w io.Writer = file
	if console != nil {
		w = io.MultiWriter(file, console)
	}
	return slog.New(newFrameHandler(w, opID)), file, nil
}

// slogAdapter wraps *slog.Logger to satisfy the frame.Logger interface.
type slogAdapter struct {
	l *slog.Logger
}

func (a *slogAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a *slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }
