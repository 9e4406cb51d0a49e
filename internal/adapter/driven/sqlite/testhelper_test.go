package sqlite

import (
	"context"
	"testing"
)

// setupTestDB creates a migrated in-memory database for one test. The name
// is derived from t.Name(), so writer and reader share it while parallel
// tests stay isolated.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := openDB(context.Background(), ":memory:", memoryDSN(t.Name()))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := RunMigrations(db.Writer); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return db
}
