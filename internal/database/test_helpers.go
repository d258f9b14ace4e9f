package database

import (
	"path/filepath"
	"testing"
)

// NewTestDB opens a throwaway sqlite database with the full schema
// applied. The cleanup closes it; the file lives in the test's temp
// directory and disappears with it.
func NewTestDB(t *testing.T) (*DB, func()) {
	t.Helper()

	config := Config{
		Type:       "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "posescout_test.db"),
	}

	db, err := NewDB(config)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return db, cleanup
}
