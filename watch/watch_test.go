package watch

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/framehub/datacat/dbopen"

	_ "modernc.org/sqlite"
)

func TestOnChange_FiresOnWrite(t *testing.T) {
	// WHAT: A write through the same pool triggers the action via the
	// MaxUpdatedAt detector.
	// WHY: The render cache must be purged when datasets change.
	db := dbopen.OpenMemory(t, dbopen.WithSchema(
		`CREATE TABLE datasets (id TEXT PRIMARY KEY, updated_at INTEGER NOT NULL)`))

	w := New(db, Options{
		Interval: 10 * time.Millisecond,
		Detector: MaxUpdatedAt("datasets"),
	})

	var fired atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.OnChange(ctx, func() error {
		fired.Add(1)
		return nil
	})

	// Let the watcher seed its initial version.
	time.Sleep(30 * time.Millisecond)

	if _, err := db.Exec(`INSERT INTO datasets (id, updated_at) VALUES ('d1', 42)`); err != nil {
		t.Fatalf("insert: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for fired.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if fired.Load() == 0 {
		t.Fatal("action never fired after write")
	}
	if w.Version() != 42 {
		t.Errorf("version: got %d, want 42", w.Version())
	}
}

func TestOnChange_ErrorRetries(t *testing.T) {
	// WHAT: A failing action does not advance the version and is retried.
	db := dbopen.OpenMemory(t, dbopen.WithSchema(
		`CREATE TABLE datasets (id TEXT PRIMARY KEY, updated_at INTEGER NOT NULL)`))

	w := New(db, Options{
		Interval: 10 * time.Millisecond,
		Detector: MaxUpdatedAt("datasets"),
	})

	var calls atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.OnChange(ctx, func() error {
		if calls.Add(1) == 1 {
			return context.DeadlineExceeded // any error
		}
		return nil
	})

	time.Sleep(30 * time.Millisecond)
	db.Exec(`INSERT INTO datasets (id, updated_at) VALUES ('d1', 7)`)

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if calls.Load() < 2 {
		t.Fatal("failed action was not retried")
	}
	if w.Stats().Errors == 0 {
		t.Error("error counter not incremented")
	}
}

func TestPragmaDataVersion(t *testing.T) {
	// WHAT: The built-in detector reads an integer without error.
	db := dbopen.OpenMemory(t)
	if _, err := PragmaDataVersion(context.Background(), db); err != nil {
		t.Fatalf("data_version: %v", err)
	}
}
