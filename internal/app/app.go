package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"picframe/internal/config"
	"picframe/internal/database"
	"picframe/internal/frame"
	"picframe/internal/fs"
	"picframe/internal/render"
	"picframe/internal/server"
	"picframe/internal/state"
)

// PicframeApp is the application layer between the CLI and FrameService.
// It constructs all dependencies from config and owns their lifecycle.
type PicframeApp struct {
	cfg     *config.Config
	history frame.History
	service *frame.FrameService
	logger  *slog.Logger
	op      *Operation
	logFile io.Closer
}

// Options adjusts how NewApp wires the application.
type Options struct {
	// Console receives a copy of every log line. Nil keeps logs in the file only.
	Console io.Writer
}

// NewApp creates a fully wired PicframeApp from the given config.
// operation identifies the CLI command being run (e.g. "Rotate", "Serve").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string, opts Options) (*PicframeApp, error) {
	clock := frame.RealClock{}
	op := NewOperation(operation, clock.Now())

	logger, logFile, err := newLogger(cfg.LogDir, op.ID, opts.Console)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger = logger.With("op", op.Name)
	adapter := &slogAdapter{l: logger}

	metadata, display, err := state.NewStoresFromConfig(cfg.State, clock, adapter)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating state stores: %w", err)
	}

	if cfg.UploadDir == "" {
		logFile.Close()
		return nil, fmt.Errorf("upload_dir must be set")
	}
	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	images := fs.NewOSImageDirectory(cfg.UploadDir, cfg.UploadIgnore...)

	renderer, err := render.NewRendererFromConfig(cfg.Display)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	history, err := database.NewHistoryFromConfig(cfg.History)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating display history: %w", err)
	}

	svc := frame.NewFrameService(metadata, display, images, renderer, history, adapter, clock, frame.MathRandom{}, frame.UUIDGenerator{})

	return &PicframeApp{
		cfg:     cfg,
		history: history,
		service: svc,
		logger:  logger,
		op:      op,
		logFile: logFile,
	}, nil
}

// Service exposes the underlying FrameService.
func (a *PicframeApp) Service() *frame.FrameService {
	return a.service
}

// Logger returns the application logger.
func (a *PicframeApp) Logger() *slog.Logger {
	return a.logger
}

// Failed reports whether any operation run through the app returned an error.
func (a *PicframeApp) Failed() bool {
	return a.op.Failed()
}

// Rotate runs one rotation cycle. An empty catalog is logged, not failed,
// but is still reported so the caller can exit non-zero.
func (a *PicframeApp) Rotate(ctx context.Context) (string, error) {
	name, err := a.service.Rotate(ctx)
	return name, a.op.Track(err)
}

// Display renders filename on the panel.
func (a *PicframeApp) Display(ctx context.Context, filename string) error {
	return a.op.Track(a.service.Display(ctx, filename))
}

// Upload stores the bytes from r as a new image attributed to uploaderAddress.
func (a *PicframeApp) Upload(originalName, uploaderAddress string, r io.Reader) (string, error) {
	name, err := a.service.Upload(originalName, uploaderAddress, r)
	return name, a.op.Track(err)
}

// Delete removes filename and its attribution.
func (a *PicframeApp) Delete(filename string) error {
	return a.op.Track(a.service.Delete(filename))
}

// SetDisplayName stores a display name for a client address.
func (a *PicframeApp) SetDisplayName(address, name string) (string, error) {
	stored, err := a.service.SetDisplayName(address, name)
	return stored, a.op.Track(err)
}

// ListImages returns the catalog, optionally restricted to one uploader.
func (a *PicframeApp) ListImages(filterAddress string) ([]*frame.ImageSummary, error) {
	images, err := a.service.ListImages(filterAddress)
	return images, a.op.Track(err)
}

// ListUsers returns every uploader with image counts.
func (a *PicframeApp) ListUsers() ([]*frame.UserSummary, error) {
	users, err := a.service.ListUsers()
	return users, a.op.Track(err)
}

// CurrentImage returns the filename recorded as displayed, or "".
func (a *PicframeApp) CurrentImage() (string, error) {
	current, err := a.service.CurrentImage()
	return current, a.op.Track(err)
}

// GetHistory returns the most recent display events.
func (a *PicframeApp) GetHistory(limit int) ([]*frame.DisplayEvent, error) {
	events, err := a.service.GetHistory(limit)
	return events, a.op.Track(err)
}

// Serve runs the HTTP front end until ctx is cancelled.
func (a *PicframeApp) Serve(ctx context.Context) error {
	srv := server.New(a.cfg.Server, a.service, a.logger)
	if err := srv.Start(ctx); err != nil {
		return a.op.Track(err)
	}
	<-ctx.Done()
	srv.Stop()
	return nil
}

// Close records how the operation ended and releases all resources.
func (a *PicframeApp) Close() error {
	var firstErr error

	if a.history != nil {
		if err := a.history.Close(); err != nil {
			firstErr = fmt.Errorf("closing display history: %w", err)
		}
	}

	a.logger.Debug("operation finished", "status", a.op.Status, "duration", time.Since(a.op.Started).Round(time.Millisecond))

	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}
