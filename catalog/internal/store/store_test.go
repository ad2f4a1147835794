package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	db.Exec("PRAGMA foreign_keys=ON")
	if err := ApplySchema(db); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestApplySchema(t *testing.T) {
	// WHAT: Verify schema creates all tables without error.
	// WHY: Schema is the foundation — if it fails, nothing works.
	db := openTestDB(t)
	for _, table := range []string{"datasets", "features", "examples", "fetch_log", "search_log"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestApplySchema_MigratesColumns(t *testing.T) {
	// WHAT: A database created before the etag/last_modified columns existed
	// gains them from ApplySchema, and the new fields round-trip.
	// WHY: CREATE TABLE IF NOT EXISTS alone would leave old databases
	// permanently behind the current schema.
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	// The examples table as shipped before the conditional-GET columns.
	_, err = db.Exec(`CREATE TABLE examples (
		id            TEXT PRIMARY KEY,
		dataset_id    TEXT NOT NULL,
		content_hash  TEXT NOT NULL,
		body_html     TEXT NOT NULL,
		body_markdown TEXT NOT NULL DEFAULT '',
		status_code   INTEGER NOT NULL DEFAULT 0,
		fetched_at    INTEGER NOT NULL
	)`)
	if err != nil {
		t.Fatalf("old table: %v", err)
	}

	if err := ApplySchema(db); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	// Idempotent: a second run must not fail on the now-present columns.
	if err := ApplySchema(db); err != nil {
		t.Fatalf("second apply: %v", err)
	}

	s := NewStore(db)
	ctx := context.Background()
	err = s.InsertExample(ctx, &Example{
		ID: "ex-m", DatasetID: "ds-m", ContentHash: "h",
		BodyHTML: "<table>m</table>", StatusCode: 200,
		ETag: `"v1"`, LastModified: "Mon, 02 Jan 2006 15:04:05 GMT",
	})
	if err != nil {
		t.Fatalf("insert into migrated table: %v", err)
	}
	got, err := s.LatestExample(ctx, "ds-m")
	if err != nil || got == nil {
		t.Fatalf("latest: %v %v", got, err)
	}
	if got.ETag != `"v1"` || got.LastModified == "" {
		t.Errorf("migrated columns: %+v", got)
	}
}

func TestInsertAndGetDataset(t *testing.T) {
	// WHAT: Insert a dataset and retrieve it by ID and by name+version.
	db := openTestDB(t)
	s := NewStore(db)
	ctx := context.Background()

	d := &Dataset{
		ID:          "ds-001",
		Name:        "mt_opt",
		Version:     "1.0.0",
		Description: "Robotic manipulation episodes.",
		Homepage:    "https://example.org/mt_opt",
		ExampleURL:  "https://example.org/examples/mt_opt-1.0.0.html",
	}
	if err := s.InsertDataset(ctx, d); err != nil {
		t.Fatalf("insert dataset: %v", err)
	}

	got, err := s.GetDataset(ctx, "ds-001")
	if err != nil {
		t.Fatalf("get dataset: %v", err)
	}
	if got == nil {
		t.Fatal("dataset not found")
	}
	if got.Name != "mt_opt" {
		t.Errorf("name: got %q", got.Name)
	}
	if got.CreatedAt == 0 || got.UpdatedAt == 0 {
		t.Error("timestamps should be set on insert")
	}
	if got.ConfigJSON != "{}" {
		t.Errorf("config default: got %q", got.ConfigJSON)
	}

	byNV, err := s.GetDatasetByNameVersion(ctx, "mt_opt", "1.0.0")
	if err != nil {
		t.Fatalf("get by name+version: %v", err)
	}
	if byNV == nil || byNV.ID != "ds-001" {
		t.Errorf("name+version lookup: got %+v", byNV)
	}
}

func TestGetDataset_NotFound(t *testing.T) {
	// WHAT: Missing dataset returns (nil, nil), not an error.
	db := openTestDB(t)
	s := NewStore(db)

	got, err := s.GetDataset(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestUniqueNameVersion(t *testing.T) {
	// WHAT: Inserting the same name+version twice fails on the unique index.
	db := openTestDB(t)
	s := NewStore(db)
	ctx := context.Background()

	s.InsertDataset(ctx, &Dataset{ID: "a", Name: "bridge", Version: "1.0.0"})
	err := s.InsertDataset(ctx, &Dataset{ID: "b", Name: "bridge", Version: "1.0.0"})
	if err == nil {
		t.Error("duplicate name+version should fail")
	}
	// A new version of the same dataset is fine.
	if err := s.InsertDataset(ctx, &Dataset{ID: "c", Name: "bridge", Version: "2.0.0"}); err != nil {
		t.Errorf("new version: %v", err)
	}
}

func TestUpdateAndDeleteDataset(t *testing.T) {
	// WHAT: Update mutable fields, then delete with cascade to features.
	db := openTestDB(t)
	s := NewStore(db)
	ctx := context.Background()

	s.InsertDataset(ctx, &Dataset{ID: "ds-u", Name: "old_name", Version: "1.0.0"})
	s.ReplaceFeatures(ctx, "ds-u", []*Feature{{Name: "action", Dtype: "float32"}})

	d, _ := s.GetDataset(ctx, "ds-u")
	d.Name = "new_name"
	d.Description = "updated"
	if err := s.UpdateDataset(ctx, d); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.GetDataset(ctx, "ds-u")
	if got.Name != "new_name" || got.Description != "updated" {
		t.Errorf("update not applied: %+v", got)
	}

	if err := s.DeleteDataset(ctx, "ds-u"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := s.GetDataset(ctx, "ds-u"); got != nil {
		t.Error("dataset should be deleted")
	}
	feats, _ := s.ListFeatures(ctx, "ds-u")
	if len(feats) != 0 {
		t.Error("features should be cascade-deleted")
	}
}

func TestReplaceFeatures_OrderAndSwap(t *testing.T) {
	// WHAT: ReplaceFeatures assigns positions from slice order and a second
	// call fully replaces the first schema.
	db := openTestDB(t)
	s := NewStore(db)
	ctx := context.Background()

	s.InsertDataset(ctx, &Dataset{ID: "ds-f", Name: "rlds", Version: "1.0.0"})

	err := s.ReplaceFeatures(ctx, "ds-f", []*Feature{
		{Name: "observation", Dtype: "uint8", ShapeJSON: "[224,224,3]"},
		{Name: "action", Dtype: "float32", ShapeJSON: "[7]"},
		{Name: "reward", Dtype: "float32"},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	feats, err := s.ListFeatures(ctx, "ds-f")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(feats) != 3 {
		t.Fatalf("count: got %d, want 3", len(feats))
	}
	if feats[0].Name != "observation" || feats[0].Position != 0 {
		t.Errorf("first feature: %+v", feats[0])
	}
	if feats[2].Name != "reward" || feats[2].ShapeJSON != "[]" {
		t.Errorf("third feature: %+v", feats[2])
	}

	// Second replace swaps the schema entirely.
	s.ReplaceFeatures(ctx, "ds-f", []*Feature{{Name: "steps", Dtype: "int64"}})
	feats, _ = s.ListFeatures(ctx, "ds-f")
	if len(feats) != 1 || feats[0].Name != "steps" {
		t.Errorf("after swap: %+v", feats)
	}
}

func TestInsertAndLatestExample(t *testing.T) {
	// WHAT: LatestExample returns the newest snapshot with the body intact.
	db := openTestDB(t)
	s := NewStore(db)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	s.InsertDataset(ctx, &Dataset{ID: "ds-e", Name: "droid", Version: "1.0.0"})
	s.InsertExample(ctx, &Example{ID: "ex-1", DatasetID: "ds-e", ContentHash: "h1",
		BodyHTML: "<table>old</table>", StatusCode: 200, FetchedAt: now})
	s.InsertExample(ctx, &Example{ID: "ex-2", DatasetID: "ds-e", ContentHash: "h2",
		BodyHTML: "<table>new</table>", StatusCode: 200, FetchedAt: now + 1})

	got, err := s.LatestExample(ctx, "ds-e")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got == nil || got.ID != "ex-2" {
		t.Fatalf("latest: got %+v", got)
	}
	if got.BodyHTML != "<table>new</table>" {
		t.Errorf("body: got %q", got.BodyHTML)
	}

	if got, _ := s.LatestExample(ctx, "no-such"); got != nil {
		t.Error("missing dataset should yield nil example")
	}

	// Markdown rendition is cached on the row after derivation.
	if err := s.SetExampleMarkdown(ctx, "ex-2", "| new |"); err != nil {
		t.Fatalf("set markdown: %v", err)
	}
	got, _ = s.LatestExample(ctx, "ds-e")
	if got.BodyMarkdown != "| new |" {
		t.Errorf("markdown: got %q", got.BodyMarkdown)
	}
	if got.BodyHTML != "<table>new</table>" {
		t.Errorf("body must stay verbatim, got %q", got.BodyHTML)
	}
}

func TestFetchLog(t *testing.T) {
	// WHAT: Insert and retrieve fetch log entries, newest first.
	db := openTestDB(t)
	s := NewStore(db)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	s.InsertDataset(ctx, &Dataset{ID: "ds-fl", Name: "fl", Version: "1.0.0"})
	s.InsertFetchLog(ctx, &FetchLogEntry{ID: "fl-1", DatasetID: "ds-fl", Status: "ok", StatusCode: 200, DurationMs: 150, FetchedAt: now})
	s.InsertFetchLog(ctx, &FetchLogEntry{ID: "fl-2", DatasetID: "ds-fl", Status: "error", StatusCode: 500, ErrorMessage: "server error", DurationMs: 50, FetchedAt: now + 1})

	history, err := s.FetchHistory(ctx, "ds-fl", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("count: got %d, want 2", len(history))
	}
	if history[0].Status != "error" {
		t.Errorf("first should be error, got %s", history[0].Status)
	}
}

func TestSearch(t *testing.T) {
	// WHAT: FTS5 search matches names and descriptions and logs the query.
	db := openTestDB(t)
	s := NewStore(db)
	ctx := context.Background()

	s.InsertDataset(ctx, &Dataset{ID: "d1", Name: "mt_opt", Version: "1.0.0",
		Description: "robotic manipulation with a fleet of robots"})
	s.InsertDataset(ctx, &Dataset{ID: "d2", Name: "imagenet", Version: "1.0.0",
		Description: "image classification benchmark"})
	s.InsertDataset(ctx, &Dataset{ID: "d3", Name: "squad", Version: "1.0.0",
		Description: "question answering over wikipedia"})

	results, err := s.Search(ctx, "robotic", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results: got %d, want 1", len(results))
	}
	if results[0].DatasetID != "d1" {
		t.Errorf("hit: got %s", results[0].DatasetID)
	}

	log, err := s.ListSearchLog(ctx, 10)
	if err != nil {
		t.Fatalf("search log: %v", err)
	}
	if len(log) != 1 || log[0].Query != "robotic" {
		t.Errorf("search log: %+v", log)
	}
}

func TestSearch_UpdateReindexes(t *testing.T) {
	// WHAT: Updating a dataset description is reflected in FTS results.
	// WHY: The au trigger must keep the index in sync or search rots.
	db := openTestDB(t)
	s := NewStore(db)
	ctx := context.Background()

	s.InsertDataset(ctx, &Dataset{ID: "d1", Name: "cifar10", Version: "1.0.0", Description: "tiny images"})

	d, _ := s.GetDataset(ctx, "d1")
	d.Description = "autonomous driving scenes"
	s.UpdateDataset(ctx, d)

	if res, _ := s.Search(ctx, "driving", 10); len(res) != 1 {
		t.Errorf("new term should match, got %d results", len(res))
	}
	if res, _ := s.Search(ctx, "tiny", 10); len(res) != 0 {
		t.Errorf("old term should no longer match, got %d results", len(res))
	}
}

func TestStats(t *testing.T) {
	// WHAT: Stats returns correct aggregate counts.
	db := openTestDB(t)
	s := NewStore(db)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	s.InsertDataset(ctx, &Dataset{ID: "ds-st", Name: "st", Version: "1.0.0"})
	s.ReplaceFeatures(ctx, "ds-st", []*Feature{
		{Name: "a", Dtype: "int64"},
		{Name: "b", Dtype: "string"},
	})
	s.InsertExample(ctx, &Example{ID: "ex-st", DatasetID: "ds-st", ContentHash: "h", BodyHTML: "x", FetchedAt: now})
	s.InsertFetchLog(ctx, &FetchLogEntry{ID: "fl-st", DatasetID: "ds-st", Status: "ok", FetchedAt: now})

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Datasets != 1 || stats.Features != 2 || stats.Examples != 1 || stats.FetchLogs != 1 {
		t.Errorf("stats: %+v", stats)
	}
}
