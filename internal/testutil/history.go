package testutil

import (
	"testing"

	"picframe/internal/database"
)

// NewTestHistory returns an in-memory SQLite history closed at test cleanup.
func NewTestHistory(t *testing.T) *database.SQLiteHistory {
	t.Helper()

	h, err := database.NewSQLiteHistory(":memory:")
	if err != nil {
		t.Fatalf("failed to create test history: %v", err)
	}
	t.Cleanup(func() {
		h.Close()
	})
	return h
}
