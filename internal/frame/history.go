package frame

import (
	"fmt"
	"time"
)

// History records display attempts for later inspection.
type History interface {
	// StartDisplayEvent records a new attempt in StatusRendering.
	StartDisplayEvent(event *DisplayEvent) error

	// FinishDisplayEvent sets the final status of an attempt.
	FinishDisplayEvent(id string, status string, errMsg string, finishedAt time.Time) error

	// ListDisplayEvents returns the most recent attempts, newest first.
	ListDisplayEvents(limit int) ([]*DisplayEvent, error)

	// Close releases the underlying storage.
	Close() error
}

// GetHistory returns the most recent display events, ordered newest first.
// Without a configured history it returns no events.
func (s *FrameService) GetHistory(limit int) ([]*DisplayEvent, error) {
	if s.history == nil {
		return nil, nil
	}
	events, err := s.history.ListDisplayEvents(limit)
	if err != nil {
		return nil, fmt.Errorf("listing display events: %w", err)
	}
	return events, nil
}

func (s *FrameService) startEvent(filename, trigger string) string {
	if s.history == nil {
		return ""
	}
	event := &DisplayEvent{
		ID:        s.idgen.New(),
		Filename:  filename,
		Trigger:   trigger,
		Status:    StatusRendering,
		StartedAt: s.clock.Now(),
	}
	if err := s.history.StartDisplayEvent(event); err != nil {
		s.logger.Warn("recording display event failed", "filename", filename, "error", err)
		return ""
	}
	return event.ID
}

func (s *FrameService) finishEvent(id, status string, cause error) {
	if s.history == nil || id == "" {
		return
	}
	var msg string
	if cause != nil {
		msg = cause.Error()
	}
	if err := s.history.FinishDisplayEvent(id, status, msg, s.clock.Now()); err != nil {
		s.logger.Warn("finishing display event failed", "id", id, "error", err)
	}
}
