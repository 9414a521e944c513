package app

import "time"

// Operation tracks one CLI invocation for logging. Every log line carries its
// ID so lines from the server and from timer-driven rotations can be told apart.
type Operation struct {
	ID      string
	Name    string
	Status  string // "success" or "error"
	Started time.Time
}

// NewOperation creates an operation named after the CLI command being run.
func NewOperation(name string, started time.Time) *Operation {
	return &Operation{
		ID:      started.UTC().Format("20060102T150405Z"),
		Name:    name,
		Status:  "success",
		Started: started,
	}
}

// Track marks the operation failed when err is non-nil and returns err.
func (op *Operation) Track(err error) error {
	if err != nil {
		op.Status = "error"
	}
	return err
}

// Failed reports whether any tracked step returned an error.
func (op *Operation) Failed() bool {
	return op.Status == "error"
}
