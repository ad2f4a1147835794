package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/framehub/datacat/dbopen"

	_ "modernc.org/sqlite"
)

func noopValidator(_ string) error { return nil }

func newTestService(t *testing.T) *Service {
	t.Helper()
	db := dbopen.OpenMemory(t)
	if err := ApplySchema(db); err != nil {
		t.Fatalf("schema: %v", err)
	}
	svc, err := New(db, nil, nil, WithURLValidator(noopValidator))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestAddDataset_WithFeatures(t *testing.T) {
	// WHAT: Adding a dataset persists it, its feature schema, and assigns
	// defaults.
	svc := newTestService(t)
	ctx := context.Background()

	d := &Dataset{Name: "mt_opt", Description: "robotic manipulation"}
	feats := []*Feature{
		{Name: "observation", Dtype: "uint8", ShapeJSON: "[512,640,3]"},
		{Name: "action", Dtype: "float32", ShapeJSON: "[7]"},
	}
	if err := svc.AddDataset(ctx, d, feats); err != nil {
		t.Fatalf("add: %v", err)
	}
	if d.ID == "" {
		t.Error("ID should be generated")
	}
	if d.Version != "1.0.0" {
		t.Errorf("version default: got %q", d.Version)
	}

	got, err := svc.GetDataset(ctx, d.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "mt_opt" {
		t.Errorf("name: got %q", got.Name)
	}

	fs, _ := svc.Features(ctx, d.ID)
	if len(fs) != 2 || fs[0].Name != "observation" {
		t.Errorf("features: %+v", fs)
	}
}

func TestAddDataset_PerSplitFeatures(t *testing.T) {
	// WHAT: The same feature name in different splits is a valid schema.
	// WHY: Per-split schemas repeat names with split-specific shapes; only a
	// repeat within one split is a duplicate.
	svc := newTestService(t)
	ctx := context.Background()

	d := &Dataset{Name: "cifar10"}
	feats := []*Feature{
		{Name: "image", Dtype: "uint8", Split: "train", ShapeJSON: "[32,32,3]"},
		{Name: "image", Dtype: "uint8", Split: "test", ShapeJSON: "[32,32,3]"},
		{Name: "label", Dtype: "int64", Split: "train"},
	}
	if err := svc.AddDataset(ctx, d, feats); err != nil {
		t.Fatalf("add with per-split features: %v", err)
	}

	fs, err := svc.Features(ctx, d.ID)
	if err != nil {
		t.Fatalf("features: %v", err)
	}
	if len(fs) != 3 {
		t.Fatalf("features: got %d, want 3", len(fs))
	}
	if fs[0].Split != "train" || fs[1].Split != "test" {
		t.Errorf("splits not preserved: %+v", fs)
	}
}

func TestAddDataset_Duplicate(t *testing.T) {
	// WHAT: The same name+version is rejected with ErrDuplicateDataset.
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.AddDataset(ctx, &Dataset{Name: "bridge", Version: "1.0.0"}, nil); err != nil {
		t.Fatalf("first add: %v", err)
	}
	err := svc.AddDataset(ctx, &Dataset{Name: "bridge", Version: "1.0.0"}, nil)
	if !errors.Is(err, ErrDuplicateDataset) {
		t.Errorf("expected ErrDuplicateDataset, got: %v", err)
	}
	if err := svc.AddDataset(ctx, &Dataset{Name: "bridge", Version: "2.0.0"}, nil); err != nil {
		t.Errorf("new version should be fine: %v", err)
	}
}

func TestAddDataset_InvalidInput(t *testing.T) {
	// WHAT: Validation failures surface as ErrInvalidInput.
	svc := newTestService(t)
	ctx := context.Background()

	err := svc.AddDataset(ctx, &Dataset{Name: "Bad Name"}, nil)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("name: expected ErrInvalidInput, got: %v", err)
	}
	err = svc.AddDataset(ctx, &Dataset{Name: "ok"}, []*Feature{{Name: "f"}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("features: expected ErrInvalidInput, got: %v", err)
	}
}

func TestAddDataset_SSRFValidation(t *testing.T) {
	// WHAT: With the default validator, private example URLs are rejected.
	db := dbopen.OpenMemory(t)
	if err := ApplySchema(db); err != nil {
		t.Fatalf("schema: %v", err)
	}
	svc, err := New(db, nil, nil) // default safeweb validator
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	err = svc.AddDataset(context.Background(), &Dataset{
		Name: "sneaky", ExampleURL: "http://169.254.169.254/latest/",
	}, nil)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got: %v", err)
	}
}

func TestUpdateDataset_MergesUnsetFields(t *testing.T) {
	// WHAT: Update keeps existing values for unset fields and detects
	// name+version collisions.
	svc := newTestService(t)
	ctx := context.Background()

	a := &Dataset{Name: "alpha", Version: "1.0.0", Description: "first"}
	b := &Dataset{Name: "beta", Version: "1.0.0"}
	svc.AddDataset(ctx, a, nil)
	svc.AddDataset(ctx, b, nil)

	if err := svc.UpdateDataset(ctx, &Dataset{ID: a.ID, Homepage: "https://example.org"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := svc.GetDataset(ctx, a.ID)
	if got.Name != "alpha" || got.Description != "first" || got.Homepage != "https://example.org" {
		t.Errorf("merge: %+v", got)
	}

	// Renaming onto an occupied name+version slot fails.
	err := svc.UpdateDataset(ctx, &Dataset{ID: a.ID, Name: "beta"})
	if !errors.Is(err, ErrDuplicateDataset) {
		t.Errorf("expected ErrDuplicateDataset, got: %v", err)
	}
}

func TestGetDataset_NotFound(t *testing.T) {
	// WHAT: Missing datasets surface as ErrNotFound.
	svc := newTestService(t)
	if _, err := svc.GetDataset(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
	if _, err := svc.GetDatasetByNameVersion(context.Background(), "no", "1.0.0"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestLoadExample_Success(t *testing.T) {
	// WHAT: LoadExample fetches the example page once, shows it verbatim,
	// and persists a snapshot.
	body := "<table class=\"dataframe\"><tr><td>step 0</td></tr></table>"
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(body))
	}))
	defer srv.Close()

	svc := newTestService(t)
	ctx := context.Background()

	d := &Dataset{Name: "droid", ExampleURL: srv.URL}
	svc.AddDataset(ctx, d, nil)

	// Before the trigger: empty surface, enabled control.
	if s := svc.ExampleState(d.ID); s.Content != "" || !s.Enabled {
		t.Errorf("initial surface: %+v", s)
	}

	surface, err := svc.LoadExample(ctx, d.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if surface.Content != body || !surface.OK {
		t.Errorf("surface: %+v", surface)
	}

	// Second load: same surface, no second request.
	again, err := svc.LoadExample(ctx, d.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Content != body || hits != 1 {
		t.Errorf("second load: hits=%d surface=%+v", hits, again)
	}

	ex, err := svc.LatestExample(ctx, d.ID)
	if err != nil || ex == nil {
		t.Fatalf("snapshot: %v %v", ex, err)
	}
	if ex.BodyHTML != body {
		t.Errorf("persisted body: %q", ex.BodyHTML)
	}

	hist, _ := svc.FetchHistory(ctx, d.ID, 10)
	if len(hist) != 1 || hist[0].Status != "ok" {
		t.Errorf("history: %+v", hist)
	}
}

func TestLoadExample_Failure(t *testing.T) {
	// WHAT: A 500 response yields the fixed error message and the trigger
	// stays disabled.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := newTestService(t)
	ctx := context.Background()

	d := &Dataset{Name: "flaky", ExampleURL: srv.URL}
	svc.AddDataset(ctx, d, nil)

	surface, err := svc.LoadExample(ctx, d.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if surface.Content != ExampleErrorMessage || surface.OK {
		t.Errorf("surface: %+v", surface)
	}
	if svc.ExampleState(d.ID).Enabled {
		t.Error("trigger must stay disabled after failure")
	}
	hist, _ := svc.FetchHistory(ctx, d.ID, 10)
	if len(hist) != 1 || hist[0].Status != "error" || hist[0].StatusCode != 500 {
		t.Errorf("history: %+v", hist)
	}
}

func TestLoadExample_Guards(t *testing.T) {
	// WHAT: Unknown datasets and datasets without an example URL error out
	// before any network activity.
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.LoadExample(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}

	d := &Dataset{Name: "no_example"}
	svc.AddDataset(ctx, d, nil)
	if _, err := svc.LoadExample(ctx, d.ID); !errors.Is(err, ErrNoExampleURL) {
		t.Errorf("expected ErrNoExampleURL, got: %v", err)
	}
}

func TestPage_RendersDataset(t *testing.T) {
	// WHAT: Page renders name, description, feature table and citation.
	svc := newTestService(t)
	ctx := context.Background()

	d := &Dataset{
		Name:        "squad",
		Version:     "3.0.0",
		Description: "Reading comprehension questions.",
		Citation:    "@article{squad}",
	}
	svc.AddDataset(ctx, d, []*Feature{
		{Name: "context", Dtype: "string"},
		{Name: "question", Dtype: "string"},
	})

	page, err := svc.Page(ctx, d.ID)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	for _, want := range []string{"# squad", "Reading comprehension", "| context |", "@article{squad}"} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestExampleMarkdown_Sanitized(t *testing.T) {
	// WHAT: The markdown rendition strips scripts but the stored snapshot
	// keeps the payload verbatim.
	body := `<table><tr><th>a</th></tr><tr><td>1</td></tr></table><script>x()</script>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	svc := newTestService(t)
	ctx := context.Background()
	d := &Dataset{Name: "clean_me", ExampleURL: srv.URL}
	svc.AddDataset(ctx, d, nil)
	svc.LoadExample(ctx, d.ID)

	md, err := svc.ExampleMarkdown(ctx, d.ID)
	if err != nil {
		t.Fatalf("markdown: %v", err)
	}
	if strings.Contains(md, "script") {
		t.Errorf("script leaked into markdown: %q", md)
	}
	if !strings.Contains(md, "| a |") {
		t.Errorf("table lost: %q", md)
	}

	ex, _ := svc.LatestExample(ctx, d.ID)
	if ex.BodyHTML != body {
		t.Error("stored snapshot must stay verbatim")
	}
}

func TestSearchAndStats(t *testing.T) {
	// WHAT: Service-level search and stats pass through to the store.
	svc := newTestService(t)
	ctx := context.Background()

	svc.AddDataset(ctx, &Dataset{Name: "mt_opt", Description: "robotic manipulation"}, nil)
	svc.AddDataset(ctx, &Dataset{Name: "cifar10", Description: "tiny images"}, []*Feature{
		{Name: "image", Dtype: "uint8"},
	})

	res, err := svc.Search(ctx, "robotic", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res) != 1 || res[0].Name != "mt_opt" {
		t.Errorf("search: %+v", res)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Datasets != 2 || stats.Features != 1 {
		t.Errorf("stats: %+v", stats)
	}

	entries, _ := svc.SearchLog(ctx, 10)
	if len(entries) != 1 {
		t.Errorf("search log: %+v", entries)
	}
}
